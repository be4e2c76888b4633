package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"github.com/lyricast/lyricast/internal/cleanup"
	"github.com/lyricast/lyricast/internal/compose"
	"github.com/lyricast/lyricast/internal/extract"
	"github.com/lyricast/lyricast/internal/format"
	"github.com/lyricast/lyricast/internal/order"
	"github.com/lyricast/lyricast/internal/parser"
	"github.com/lyricast/lyricast/internal/setlist"
	"github.com/lyricast/lyricast/internal/song"
)

var generateCmd = &cobra.Command{
	Use:   "generate [files...]",
	Short: "Convert lyric sheets into a slide deck JSON document",
	Long: `Generate runs the conversion pipeline on each given lyric sheet (or every
supported file in --songs) and writes the composed slides as JSON, one
song object per sheet, in setlist order.

Performance order comes from --order (single file), from a --setlist
song_order.md, or falls back to the order sections appear on the sheet.`,
	RunE: runGenerate,
}

func init() {
	generateCmd.Flags().String("songs", "", "directory of lyric sheets to convert")
	generateCmd.Flags().String("setlist", "", "song_order.md file mapping song titles to order specs")
	generateCmd.Flags().String("order", "", "order spec for a single file, e.g. V1-C-V2-C-Va")
	generateCmd.Flags().Bool("clean", false, "run AI lyrics cleanup (requires OPENAI_API_KEY)")
	generateCmd.Flags().Bool("reuse-verse", false, "bare V tokens repeat the first verse instead of advancing")
	generateCmd.Flags().String("out", "", "output file (default: stdout)")

	rootCmd.AddCommand(generateCmd)
}

type songOutput struct {
	Title  string             `json:"title"`
	File   string             `json:"file"`
	Order  string             `json:"order,omitempty"`
	Slides []song.SlideRecord `json:"slides"`
}

func runGenerate(cmd *cobra.Command, args []string) error {
	songsDir, _ := cmd.Flags().GetString("songs")
	setlistPath, _ := cmd.Flags().GetString("setlist")
	orderSpec, _ := cmd.Flags().GetString("order")
	clean, _ := cmd.Flags().GetBool("clean")
	reuseVerse, _ := cmd.Flags().GetBool("reuse-verse")
	outPath, _ := cmd.Flags().GetString("out")

	files := args
	if songsDir != "" {
		entries, err := os.ReadDir(songsDir)
		if err != nil {
			return fmt.Errorf("read songs dir: %w", err)
		}
		for _, e := range entries {
			if !e.IsDir() && parser.IsSupportedExtension(e.Name()) {
				files = append(files, filepath.Join(songsDir, e.Name()))
			}
		}
		sort.Strings(files)
	}
	if len(files) == 0 {
		return fmt.Errorf("no lyric sheets given (pass files or --songs)")
	}
	if orderSpec != "" && len(files) > 1 {
		return fmt.Errorf("--order applies to a single file; use --setlist for multiple songs")
	}

	var sl *setlist.Setlist
	if setlistPath != "" {
		f, err := os.Open(setlistPath)
		if err != nil {
			return fmt.Errorf("open setlist: %w", err)
		}
		sl, err = setlist.Parse(f)
		f.Close()
		if err != nil {
			return fmt.Errorf("parse setlist: %w", err)
		}
	}

	log := slog.New(slog.NewTextHandler(os.Stderr, nil))
	var cleaner format.Cleaner
	if clean {
		key := os.Getenv("OPENAI_API_KEY")
		if key == "" {
			log.Warn("--clean set but OPENAI_API_KEY is empty, cleanup disabled")
		} else {
			model := os.Getenv("OPENAI_MODEL")
			if model == "" {
				model = "gpt-4o-mini"
			}
			client := cleanup.NewClient(key, model, 15*time.Second, nil)
			defer client.Close()
			cleaner = client
		}
	}

	ctx := context.Background()
	var out []songOutput
	for _, file := range files {
		result, err := convertOne(ctx, file, orderSpec, sl, cleaner, reuseVerse, log)
		if err != nil {
			return fmt.Errorf("%s: %w", filepath.Base(file), err)
		}
		out = append(out, result)
	}

	enc := json.NewEncoder(os.Stdout)
	if outPath != "" {
		f, err := os.Create(outPath)
		if err != nil {
			return fmt.Errorf("create output: %w", err)
		}
		defer f.Close()
		enc = json.NewEncoder(f)
	}
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func convertOne(ctx context.Context, file, orderSpec string, sl *setlist.Setlist, cleaner format.Cleaner, reuseVerse bool, log *slog.Logger) (songOutput, error) {
	f, err := os.Open(file)
	if err != nil {
		return songOutput{}, err
	}
	defer f.Close()

	p, err := parser.ForFile(file, parser.PDFOptions{TwoColumn: true, FallbackPdftotext: true})
	if err != nil {
		return songOutput{}, err
	}
	lines, err := p.Parse(f, filepath.Base(file))
	if err != nil {
		return songOutput{}, err
	}

	sections, err := extract.Sections(lines)
	if err != nil {
		return songOutput{}, err
	}

	title := song.TitleFromFilename(file)
	spec := orderSpec
	if spec == "" && sl != nil {
		if found, ok := sl.OrderFor(title); ok {
			spec = found
		}
	}

	var resolved song.ResolvedOrder
	if spec == "" {
		for _, l := range sections.Labels() {
			sec, _ := sections.Lookup(l)
			resolved = append(resolved, song.Binding{Token: l.Display(), Section: sec})
		}
	} else {
		resolved, err = order.Resolve(spec, sections, order.Options{ReuseVerse: reuseVerse})
		if err != nil {
			return songOutput{}, err
		}
	}

	formatter := format.New(cleaner, 15*time.Second, title, log)
	slides := compose.New(formatter).Compose(ctx, resolved)

	log.Info("composed song", "file", filepath.Base(file), "sections", sections.Len(), "slides", len(slides))
	return songOutput{Title: title, File: filepath.Base(file), Order: spec, Slides: slides}, nil
}
