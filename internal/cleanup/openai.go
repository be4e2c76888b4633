// Package cleanup implements the optional lyrics-proofreading
// collaborator on the OpenAI chat completions API.
package cleanup

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"
)

// Client calls the OpenAI chat completions API to repair OCR and
// extraction artifacts in lyric lines. It satisfies format.Cleaner.
type Client struct {
	apiKey     string
	model      string
	httpClient *http.Client
	stats      *Stats
}

func NewClient(apiKey, model string, timeout time.Duration, stats *Stats) *Client {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		apiKey: apiKey,
		model:  model,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		stats: stats,
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

const cleanPromptTemplate = `You are a lyrics proofreader. Fix any OCR/extraction errors in these lyrics.

Song: %q
Section: %s

Extracted lyrics:
%s

Instructions:
1. Fix any merged words (e.g., "Jesuswalked" -> "Jesus walked")
2. Fix any missing letters from ligatures (e.g., "rst" -> "first", "lled" -> "filled")
3. Fix obvious spelling errors
4. Keep the original line breaks and structure
5. Do NOT add or remove lines
6. Do NOT change the meaning or wording (unless it's clearly an error)
7. Return ONLY the corrected lyrics, nothing else

Corrected lyrics:`

// Clean sends one section's lines for proofreading and returns the
// repaired lines. Any response that is not plain text with the same
// line count is an error; the caller falls back to the input.
func (c *Client) Clean(ctx context.Context, songTitle, sectionName string, lines []string) ([]string, error) {
	start := time.Now()
	out, err := c.clean(ctx, songTitle, sectionName, lines)
	if c.stats != nil {
		c.stats.Record(time.Since(start).Milliseconds(), err == nil)
	}
	return out, err
}

func (c *Client) clean(ctx context.Context, songTitle, sectionName string, lines []string) ([]string, error) {
	prompt := fmt.Sprintf(cleanPromptTemplate, songTitle, sectionName, strings.Join(lines, "\n"))

	reqBody := chatRequest{
		Model:       c.model,
		Messages:    []chatMessage{{Role: "user", Content: prompt}},
		Temperature: 0.1,
		MaxTokens:   1000,
	}
	body, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, "https://api.openai.com/v1/chat/completions", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("openai api: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("openai api status %d: %s", resp.StatusCode, truncate(string(respBody), 200))
	}

	var apiResp chatResponse
	if err := json.Unmarshal(respBody, &apiResp); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if apiResp.Error != nil {
		return nil, fmt.Errorf("openai error: %s: %s", apiResp.Error.Type, apiResp.Error.Message)
	}
	if len(apiResp.Choices) == 0 {
		return nil, fmt.Errorf("empty response from openai")
	}

	text := stripCodeBlock(apiResp.Choices[0].Message.Content)
	cleaned := splitLines(text)
	if len(cleaned) != len(lines) {
		return nil, fmt.Errorf("cleaned text has %d lines, want %d", len(cleaned), len(lines))
	}
	return cleaned, nil
}

var codeBlockRe = regexp.MustCompile("(?s)^```[a-z]*\\s*(.*?)\\s*```$")

func stripCodeBlock(s string) string {
	s = strings.TrimSpace(s)
	if m := codeBlockRe.FindStringSubmatch(s); len(m) > 1 {
		return m[1]
	}
	return s
}

func splitLines(text string) []string {
	var out []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			out = append(out, line)
		}
	}
	return out
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

// Close releases resources.
func (c *Client) Close() {
	c.httpClient.CloseIdleConnections()
}
