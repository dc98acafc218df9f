// Package codec parses and serializes annotation datasets as delimited text.
package codec

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/abbrevlab/annotab/internal/domain"
)

// Canonical column order for encoded output.
var header = []string{"sentence", "abbreviation", "long_form", "domain", "completed"}

// Column name fallbacks accepted on decode, matched case-insensitively.
// Source files come from several annotation pipelines that never agreed
// on a schema.
var (
	sentenceColumns     = []string{"sentence", "text", "context"}
	abbreviationColumns = []string{"abbreviation", "abbr", "acronym", "short_form", "sf"}
	longFormColumns     = []string{"long_form", "longform", "expansion", "lf"}
	domainColumns       = []string{"domain", "category"}
	completedColumns    = []string{"completed", "done", "checked"}
)

// Decode reads delimited text with a header row into rows. Decoding is
// best-effort: unknown columns are ignored, missing cells default to the
// empty string and unparseable completion tokens default to false. Only a
// structurally unreadable input (no header row) returns an error.
func Decode(r io.Reader) ([]*domain.Row, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	if len(records) == 0 {
		return nil, nil
	}

	head := make([]string, len(records[0]))
	for i, cell := range records[0] {
		head[i] = cleanCell(cell)
	}

	cols := columnIndexes{
		sentence:     findColumn(head, sentenceColumns),
		abbreviation: findColumn(head, abbreviationColumns),
		longForm:     findColumn(head, longFormColumns),
		domain:       findColumn(head, domainColumns),
		completed:    findColumn(head, completedColumns),
	}

	rows := make([]*domain.Row, 0, len(records)-1)
	for _, record := range records[1:] {
		row := &domain.Row{
			Sentence:     cellAt(record, cols.sentence),
			Abbreviation: cellAt(record, cols.abbreviation),
			LongForm:     cellAt(record, cols.longForm),
			Domain:       cellAt(record, cols.domain),
		}
		row.Completed = domain.ParseCompleted(cellAt(record, cols.completed))
		rows = append(rows, row)
	}
	return rows, nil
}

// Encode writes the full row sequence as delimited text in the canonical
// column order. Booleans are rendered as "true"/"false" regardless of the
// token the source file used.
func Encode(w io.Writer, rows []*domain.Row) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, row := range rows {
		record := []string{
			row.Sentence,
			row.Abbreviation,
			row.LongForm,
			row.Domain,
			strconv.FormatBool(row.Completed),
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}
	writer.Flush()
	return writer.Error()
}

type columnIndexes struct {
	sentence     int
	abbreviation int
	longForm     int
	domain       int
	completed    int
}

func findColumn(head []string, candidates []string) int {
	for i, col := range head {
		for _, cand := range candidates {
			if strings.EqualFold(col, cand) {
				return i
			}
		}
	}
	return -1
}

func cellAt(record []string, idx int) string {
	if idx < 0 || idx >= len(record) {
		return ""
	}
	return cleanCell(record[idx])
}

func cleanCell(v string) string {
	v = strings.TrimSpace(v)
	v = strings.TrimPrefix(v, "\ufeff")
	return v
}
