package dataprocessing

import (
	"fmt"
	"time"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"

	"solarcli/internal/errors"
)

// MeasurementTable is a station export sorted by timestamp. The timestamp column keeps
// its original text; the parsed instants are held alongside, row for row.
// A table is never modified in place: every transformation returns a new one.
type MeasurementTable struct {
	frame           dataframe.DataFrame
	timestamps      []time.Time
	timestampColumn string
}

// NewMeasurementTable wraps a frame whose rows match timestamps one to one.
func NewMeasurementTable(frame dataframe.DataFrame, timestamps []time.Time, timestampColumn string) (*MeasurementTable, error) {
	if frame.Err != nil {
		return nil, errors.NewParsingError("invalid measurement frame", frame.Err)
	}
	if frame.Nrow() != len(timestamps) {
		return nil, errors.NewSchemaError(
			fmt.Sprintf("frame has %d rows but %d timestamps", frame.Nrow(), len(timestamps)), nil)
	}
	return &MeasurementTable{frame: frame, timestamps: timestamps, timestampColumn: timestampColumn}, nil
}

// withFrame returns a table sharing the timestamp index with a transformed frame.
func (t *MeasurementTable) withFrame(frame dataframe.DataFrame) *MeasurementTable {
	return &MeasurementTable{frame: frame, timestamps: t.timestamps, timestampColumn: t.timestampColumn}
}

// Frame returns the underlying dataframe, timestamp column included.
func (t *MeasurementTable) Frame() dataframe.DataFrame {
	return t.frame
}

// Rows returns the number of rows.
func (t *MeasurementTable) Rows() int {
	return t.frame.Nrow()
}

// TimestampColumn returns the name of the timestamp column.
func (t *MeasurementTable) TimestampColumn() string {
	return t.timestampColumn
}

// Timestamps returns a copy of the parsed timestamps in row order.
func (t *MeasurementTable) Timestamps() []time.Time {
	out := make([]time.Time, len(t.timestamps))
	copy(out, t.timestamps)
	return out
}

// Columns returns the measurement column names in file order, without the timestamp column.
func (t *MeasurementTable) Columns() []string {
	names := t.frame.Names()
	cols := make([]string, 0, len(names))
	for _, name := range names {
		if name != t.timestampColumn {
			cols = append(cols, name)
		}
	}
	return cols
}

// HasColumn reports whether a measurement column with exactly this name exists.
func (t *MeasurementTable) HasColumn(name string) bool {
	if name == t.timestampColumn {
		return false
	}
	for _, n := range t.frame.Names() {
		if n == name {
			return true
		}
	}
	return false
}

// IsNumeric reports whether the column exists and holds Int or Float values.
func (t *MeasurementTable) IsNumeric(name string) bool {
	if !t.HasColumn(name) {
		return false
	}
	return isNumericType(t.frame.Col(name).Type())
}

// Values returns a numeric column as float64, with NaN for missing cells.
func (t *MeasurementTable) Values(name string) ([]float64, error) {
	if !t.HasColumn(name) {
		return nil, errors.NewMissingColumnsError(name)
	}
	col := t.frame.Col(name)
	if !isNumericType(col.Type()) {
		return nil, errors.NewDataQualityError(fmt.Sprintf("column %s is not numeric (%s)", name, col.Type()))
	}
	return col.Float(), nil
}

// Flags returns a boolean column such as Outliers.
func (t *MeasurementTable) Flags(name string) ([]bool, error) {
	if !t.HasColumn(name) {
		return nil, errors.NewMissingColumnsError(name)
	}
	flags, err := t.frame.Col(name).Bool()
	if err != nil {
		return nil, errors.NewDataQualityError(fmt.Sprintf("column %s is not boolean: %v", name, err))
	}
	return flags, nil
}

// MissingCount returns the number of missing cells of a column.
func (t *MeasurementTable) MissingCount(name string) int {
	n := 0
	for _, na := range t.frame.Col(name).IsNaN() {
		if na {
			n++
		}
	}
	return n
}

// RequireColumns fails with a data-quality error naming every absent column.
func RequireColumns(t *MeasurementTable, columns ...string) error {
	var missing []string
	for _, c := range columns {
		if !t.HasColumn(c) {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		return errors.NewMissingColumnsError(missing...)
	}
	return nil
}

func isNumericType(t series.Type) bool {
	return t == series.Int || t == series.Float
}
