package main

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/davecgh/go-spew/spew"
	"github.com/spf13/cobra"

	"github.com/tsawler/tabulate"
	"github.com/tsawler/tabulate/format"
)

func newDemoCommand(logger func() *slog.Logger) *cobra.Command {
	var (
		count int
		out   string
		seed  uint64
		dump  bool
		font  string
	)

	cmd := &cobra.Command{
		Use:   "demo",
		Short: "Save generated people to a document and read them back",
		Long: `Generate random people, save them to --out and, for XLSX output,
import the file again and print every person.

Examples:
  tabulate demo
  tabulate demo --count 20 --out people.pdf
  tabulate demo --seed 42 --dump
  tabulate demo --out people.pdf --font DejaVuSans.ttf`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if count < 0 {
				return fmt.Errorf("--count must not be negative, got %d", count)
			}
			log := logger()

			people := randomPeople(count, seed)
			exp := tabulate.Export(people).Logger(log)
			if font != "" {
				ttf, err := os.ReadFile(font)
				if err != nil {
					return fmt.Errorf("reading font: %w", err)
				}
				exp = exp.Font(ttf)
			}
			start := time.Now()
			if err := exp.SaveToFile(out); err != nil {
				return err
			}
			log.Info("saved people", slog.String("path", out), slog.Int("count", len(people)),
				slog.Duration("took", time.Since(start)))

			if f := format.Detect(out); !f.Importable() {
				fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d people to %s (%s output is not importable)\n", len(people), out, f)
				return nil
			}

			loaded, err := tabulate.Import[Person]().Logger(log).FromFile(out)
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			if dump {
				spew.Fdump(w, loaded)
				return nil
			}
			for _, p := range loaded {
				fmt.Fprintf(w, "%s %s (%d)\n", p.FirstName, p.LastName, p.Age)
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&count, "count", "n", 100, "Number of people to generate")
	cmd.Flags().StringVarP(&out, "out", "o", "people.xlsx", "Output file; the extension selects the format")
	cmd.Flags().Uint64Var(&seed, "seed", 0, "Random seed; 0 picks one at random")
	cmd.Flags().BoolVar(&dump, "dump", false, "Dump the imported records in full")
	cmd.Flags().StringVar(&font, "font", "", "TrueType font for PDF output")

	return cmd
}
