// Package soql renders SoQL query fragments for Socrata resource endpoints.
package soql

import (
	"fmt"
	"time"
)

// Socrata query parameter names.
const (
	ParamLimit  = "$limit"
	ParamOffset = "$offset"
	ParamWhere  = "$where"
	ParamSelect = "$select"
)

// DateSemantics identifies how a dataset's date column is typed on the
// Socrata side, which dictates the literal format in filter expressions.
type DateSemantics string

const (
	// CalendarDate columns compare against bare date literals (YYYY-MM-DD).
	CalendarDate DateSemantics = "calendar_date"

	// FloatingTimestamp columns compare against full timestamp literals
	// (YYYY-MM-DDTHH:MM:SS).
	FloatingTimestamp DateSemantics = "floating_timestamp"
)

// Where renders a half-open date-range filter for column col:
// start is inclusive, endExcl is exclusive.
//
// A caller passing start >= endExcl gets a filter matching zero rows;
// that is not an error.
func Where(col string, sem DateSemantics, start, endExcl time.Time) string {
	if sem == CalendarDate {
		return fmt.Sprintf("%s >= '%s' AND %s < '%s'",
			col, start.Format("2006-01-02"), col, endExcl.Format("2006-01-02"))
	}
	// floating_timestamp: anchor both bounds at midnight.
	return fmt.Sprintf("%s >= '%sT00:00:00' AND %s < '%sT00:00:00'",
		col, start.Format("2006-01-02"), col, endExcl.Format("2006-01-02"))
}
