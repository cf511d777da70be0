package steps

import (
	"fmt"
	"strconv"

	messages "github.com/cucumber/messages/go/v21"
)

// tableRecords turns a data table with a header row into one map per row
func tableRecords(table *messages.PickleTable) []map[string]string {
	if table == nil || len(table.Rows) == 0 {
		return nil
	}
	header := table.Rows[0].Cells
	records := make([]map[string]string, 0, len(table.Rows)-1)
	for _, row := range table.Rows[1:] {
		rec := make(map[string]string, len(header))
		for j, cell := range row.Cells {
			if j < len(header) {
				rec[header[j].Value] = cell.Value
			}
		}
		records = append(records, rec)
	}
	return records
}

func intField(rec map[string]string, key string) (int, error) {
	v, ok := rec[key]
	if !ok {
		return 0, fmt.Errorf("table has no %q column", key)
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("column %q: %w", key, err)
	}
	return n, nil
}
