package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/tsawler/tabulate/docx"
	"github.com/tsawler/tabulate/format"
	"github.com/tsawler/tabulate/htmldoc"
	"github.com/tsawler/tabulate/model"
	"github.com/tsawler/tabulate/xlsx"
)

func newInspectCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "inspect FILE",
		Short: "Print the metadata and tables of an XLSX, DOCX or HTML file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			meta, tables, err := readTables(args[0])
			if err != nil {
				return err
			}
			return printTables(cmd.OutOrStdout(), meta, tables)
		},
	}
}

// readTables opens path with the reader for its detected format.
func readTables(path string) (model.Metadata, []*model.Table, error) {
	f, err := detectFile(path)
	if err != nil {
		return model.Metadata{}, nil, err
	}

	switch f {
	case format.XLSX:
		r, err := xlsx.Open(path)
		if err != nil {
			return model.Metadata{}, nil, err
		}
		defer r.Close()

		var tables []*model.Table
		for i := 0; i < r.SheetCount(); i++ {
			s, err := r.Sheet(i)
			if err != nil {
				return model.Metadata{}, nil, err
			}
			tables = append(tables, s.Table())
		}
		return r.Metadata(), tables, nil

	case format.DOCX:
		r, err := docx.Open(path)
		if err != nil {
			return model.Metadata{}, nil, err
		}
		defer r.Close()
		return r.Metadata(), r.Tables(), nil

	case format.HTML:
		r, err := htmldoc.Open(path)
		if err != nil {
			return model.Metadata{}, nil, err
		}
		defer r.Close()
		return r.Metadata(), r.Tables(), nil

	default:
		return model.Metadata{}, nil, fmt.Errorf("inspect %s: cannot read %s documents", path, f)
	}
}

// detectFile prefers the content over the extension.
func detectFile(path string) (format.Format, error) {
	file, err := os.Open(path)
	if err != nil {
		return format.Unknown, err
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return format.Unknown, err
	}

	f, err := format.DetectFromReader(file, info.Size())
	if err != nil {
		return format.Unknown, err
	}
	if f == format.Unknown {
		f = format.Detect(path)
	}
	return f, nil
}

func printTables(w io.Writer, meta model.Metadata, tables []*model.Table) error {
	if meta.Title != "" {
		fmt.Fprintf(w, "Title:   %s\n", meta.Title)
	}
	if meta.Creator != "" {
		fmt.Fprintf(w, "Creator: %s\n", meta.Creator)
	}

	for i, t := range tables {
		name := t.Title
		if name == "" {
			name = fmt.Sprintf("Table %d", i+1)
		}
		fmt.Fprintf(w, "\n== %s (%d rows) ==\n", name, t.RowCount())
		tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
		for _, row := range t.Rows {
			texts := make([]string, len(row))
			for i, c := range row {
				texts[i] = c.PlainText()
			}
			fmt.Fprintln(tw, strings.Join(texts, "\t"))
		}
		if err := tw.Flush(); err != nil {
			return err
		}
	}
	return nil
}
