package google

import (
	"fmt"
	"strings"
)

// matchingRows returns the 1-based sheet row numbers whose column col equals
// key. The header row is never matched.
func matchingRows(values [][]any, col int, key string) []int {
	var rows []int
	for i, row := range values {
		if i == 0 {
			continue
		}
		cells := toStrings(row)
		if col >= len(cells) {
			continue
		}
		if cells[col] == key {
			rows = append(rows, i+1)
		}
	}
	return rows
}

func toStrings(row []any) []string {
	out := make([]string, len(row))
	for i, v := range row {
		switch x := v.(type) {
		case nil:
		case string:
			out[i] = strings.TrimSpace(x)
		default:
			out[i] = strings.TrimSpace(fmt.Sprint(x))
		}
	}
	return out
}
