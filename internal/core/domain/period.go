package domain

import (
	"fmt"
	"time"
)

const periodLayout = "2006-01"

// Period is a calendar month.
type Period struct {
	Year  int        `json:"year"`
	Month time.Month `json:"month"`
}

// PeriodOf returns the period containing t, evaluated in UTC.
func PeriodOf(t time.Time) Period {
	u := t.UTC()
	return Period{Year: u.Year(), Month: u.Month()}
}

// ParsePeriod parses "YYYY-MM".
func ParsePeriod(s string) (Period, error) {
	t, err := time.Parse(periodLayout, s)
	if err != nil {
		return Period{}, fmt.Errorf("invalid period %q, expected YYYY-MM: %w", s, err)
	}
	return PeriodOf(t), nil
}

// NewPeriod validates year and month.
func NewPeriod(year, month int) (Period, error) {
	if year < 1900 || year > 9999 || month < 1 || month > 12 {
		return Period{}, fmt.Errorf("invalid period %04d-%02d", year, month)
	}
	return Period{Year: year, Month: time.Month(month)}, nil
}

func (p Period) String() string {
	return fmt.Sprintf("%04d-%02d", p.Year, int(p.Month))
}

// Start is the first instant of the period in UTC.
func (p Period) Start() time.Time {
	return time.Date(p.Year, p.Month, 1, 0, 0, 0, 0, time.UTC)
}

// End is the first instant of the following period (exclusive bound).
func (p Period) End() time.Time {
	return p.Start().AddDate(0, 1, 0)
}
