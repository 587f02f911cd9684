package main

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/xiebiao/library/internal/application/library"
	"github.com/xiebiao/library/internal/domain/book"
)

// csv列顺序
const csvColumns = 6 // isbn,title,author,publisher,year,copies

func newImportCmd(configPath *string) *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Add books from a CSV file (isbn,title,author,publisher,year,copies)",
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(file)
			if err != nil {
				return err
			}
			defer f.Close()

			// 先完整解析，格式错误时不上架任何图书
			reqs, err := parseBookCSV(f)
			if err != nil {
				return err
			}

			a, err := bootstrap(cmd.Context(), *configPath)
			if err != nil {
				return err
			}
			defer a.Close()

			out := cmd.OutOrStdout()
			var added, skipped, failed int
			for _, req := range reqs {
				_, err := a.lib.AddBook(cmd.Context(), req)
				switch {
				case err == nil:
					added++
				case errors.Is(err, book.ErrISBNDuplicate):
					skipped++
					fmt.Fprintf(out, "skip %s: already exists\n", req.ISBN)
				default:
					failed++
					fmt.Fprintf(out, "fail %s: %v\n", req.ISBN, err)
				}
			}

			fmt.Fprintf(out, "imported %d, skipped %d, failed %d\n", added, skipped, failed)
			if failed > 0 {
				return fmt.Errorf("%d rows failed", failed)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "CSV file to import")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

// parseBookCSV 解析图书CSV，首行为表头（以isbn开头）时跳过
func parseBookCSV(r io.Reader) ([]library.AddBookRequest, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = csvColumns
	cr.TrimLeadingSpace = true

	var reqs []library.AddBookRequest
	for line := 1; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parse csv: %w", err)
		}
		if line == 1 && strings.EqualFold(strings.TrimSpace(rec[0]), "isbn") {
			continue
		}

		year, err := strconv.Atoi(strings.TrimSpace(rec[4]))
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid year %q", line, rec[4])
		}
		copies, err := strconv.Atoi(strings.TrimSpace(rec[5]))
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid copies %q", line, rec[5])
		}

		reqs = append(reqs, library.AddBookRequest{
			ISBN:            strings.TrimSpace(rec[0]),
			Title:           strings.TrimSpace(rec[1]),
			Author:          strings.TrimSpace(rec[2]),
			Publisher:       strings.TrimSpace(rec[3]),
			PublicationYear: year,
			TotalCopies:     copies,
		})
	}
	return reqs, nil
}
