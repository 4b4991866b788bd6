package annotation

import (
	"strings"
	"time"
)

// DefaultDateFormat is used when a DateStamp is created without an
// explicit format.
const DefaultDateFormat = "MM/DD/YYYY"

// layoutReplacer translates the date token vocabulary into Go reference
// layouts. Longer tokens are listed first so "YYYY" wins over "YY".
var layoutReplacer = strings.NewReplacer(
	"YYYY", "2006",
	"YY", "06",
	"MM", "01",
	"DD", "02",
)

// FormatDate renders ts using a token format such as "MM/DD/YYYY" or
// "YYYY-MM-DD". Unknown characters are kept verbatim as separators.
func FormatDate(ts time.Time, format string) string {
	if format == "" {
		format = DefaultDateFormat
	}
	return ts.Format(layoutReplacer.Replace(format))
}
