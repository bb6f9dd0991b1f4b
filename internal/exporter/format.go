package exporter

import (
	"strconv"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
)

// formatFloat writes the shortest representation that reads back to the same value.
func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// formatInt formats an int value for CSV output
func formatInt(i int) string {
	return strconv.Itoa(i)
}

// formatBool formats a boolean value for CSV output
func formatBool(b bool) string {
	if b {
		return "true"
	}
	return "false"
}

// formatElement renders one cell; missing cells are empty.
func formatElement(e series.Element, t series.Type) string {
	if e.IsNA() {
		return ""
	}
	switch t {
	case series.Float:
		return formatFloat(e.Float())
	case series.Int:
		i, err := e.Int()
		if err != nil {
			return ""
		}
		return formatInt(i)
	case series.Bool:
		b, err := e.Bool()
		if err != nil {
			return ""
		}
		return formatBool(b)
	default:
		return e.String()
	}
}

// frameRecords converts a dataframe into a header row and string records.
func frameRecords(df dataframe.DataFrame) ([]string, [][]string) {
	headers := df.Names()
	cols := make([]series.Series, len(headers))
	for i, name := range headers {
		cols[i] = df.Col(name)
	}

	records := make([][]string, df.Nrow())
	for r := range records {
		row := make([]string, len(cols))
		for c, col := range cols {
			row[c] = formatElement(col.Elem(r), col.Type())
		}
		records[r] = row
	}
	return headers, records
}

// cellValue returns the typed value of a cell for spreadsheet output, nil when missing.
func cellValue(e series.Element, t series.Type) interface{} {
	if e.IsNA() {
		return nil
	}
	switch t {
	case series.Float:
		return e.Float()
	case series.Int:
		if i, err := e.Int(); err == nil {
			return i
		}
		return nil
	case series.Bool:
		if b, err := e.Bool(); err == nil {
			return b
		}
		return nil
	default:
		return e.String()
	}
}
