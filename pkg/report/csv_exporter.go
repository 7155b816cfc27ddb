package report

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/samber/lo"
)

// WriteCSV writes the pivot header then one record per slot row. Idle judges have no cell in the
// row and are written empty.
func WriteCSV(w io.Writer, data Dataset) error {
	if len(data.Headers) == 0 {
		return fmt.Errorf("pivot has no columns")
	}

	records := make([][]string, 0, len(data.Rows)+1)
	records = append(records, data.Headers)
	for _, row := range data.Rows {
		records = append(records, lo.Map(data.Headers, func(header string, _ int) string { return row[header] }))
	}
	return csv.NewWriter(w).WriteAll(records)
}
