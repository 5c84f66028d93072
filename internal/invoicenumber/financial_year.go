package invoicenumber

import (
	"fmt"
	"time"
)

// FinancialYear labels the financial year containing t, e.g. "2025-26" for
// any date from April 2025 through March 2026 when startMonth is 4.
func FinancialYear(t time.Time, startMonth int) string {
	if startMonth < 1 || startMonth > 12 {
		startMonth = int(time.April)
	}
	year := t.Year()
	if int(t.Month()) < startMonth {
		year--
	}
	if startMonth == int(time.January) {
		return fmt.Sprintf("%d", year)
	}
	return fmt.Sprintf("%d-%02d", year, (year+1)%100)
}
