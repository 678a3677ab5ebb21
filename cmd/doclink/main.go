package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/tsawler/doclink"
)

func main() {
	cmd := &cli.Command{
		Name:  "doclink",
		Usage: "Link in-text references to figures, tables, and equations",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "input",
				Aliases:  []string{"i"},
				Usage:    "Input JSON file with per-page text blocks and layout elements",
				Required: true,
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Output JSON file path (default: stdout)",
			},
			&cli.FloatFlag{
				Name:  "threshold",
				Usage: "Minimum edge weight for accepting a reference-to-figure match",
				Value: 0.5,
			},
			&cli.IntFlag{
				Name:  "parallelism",
				Usage: "Maximum pages processed concurrently (default: all CPUs)",
				Value: 0,
			},
			&cli.BoolFlag{
				Name:  "quiet",
				Usage: "Suppress warnings",
			},
		},
		Action: linkDocument,
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}

func linkDocument(ctx context.Context, cmd *cli.Command) error {
	data, err := os.ReadFile(cmd.String("input"))
	if err != nil {
		return fmt.Errorf("reading input: %w", err)
	}

	input, err := doclink.ParseInput(data)
	if err != nil {
		return err
	}

	linker := doclink.New(input).MatchThreshold(cmd.Float("threshold"))
	if n := cmd.Int("parallelism"); n > 0 {
		linker = linker.Parallelism(int(n))
	}

	doc, warnings, err := linker.Process(ctx)
	if err != nil {
		return fmt.Errorf("linking document: %w", err)
	}

	if len(warnings) > 0 && !cmd.Bool("quiet") {
		fmt.Fprintln(os.Stderr, doclink.FormatWarnings(warnings))
	}

	stats := doc.MappingStats
	fmt.Fprintf(os.Stderr, "Linked %d pages: %d figures, %d/%d references matched\n",
		doc.PageCount(), len(doc.Figures), stats.MatchedReferences, stats.TotalReferences)

	out := os.Stdout
	if path := cmd.String("output"); path != "" {
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("creating output: %w", err)
		}
		defer f.Close()
		out = f
	}
	return doclink.WriteJSON(doc, out)
}
