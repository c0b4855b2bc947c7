package domain

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// TaxYear identifies a fiscal year (April to March) by its starting calendar year.
// The 2023/24 year of assessment runs 1 April 2023 to 31 March 2024 and is
// represented as TaxYear(2023).
type TaxYear int

// ParseTaxYear accepts "2023", "2023/24" and "2023/2024" (also with a dash)
// and returns the starting-year representation.
func ParseTaxYear(s string) (TaxYear, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("tax year cannot be empty")
	}

	// Split off a "/24" or "-2024" suffix if present
	sep := strings.IndexAny(s, "/-")
	startPart := s
	if sep >= 0 {
		startPart = s[:sep]
	}

	start, err := strconv.Atoi(startPart)
	if err != nil {
		return 0, fmt.Errorf("invalid tax year %q: %w", s, err)
	}
	if start < 1900 || start > 2200 {
		return 0, fmt.Errorf("tax year %d out of range", start)
	}

	// If an end part is present it must be start+1 (full or two-digit form)
	if sep >= 0 {
		endPart := s[sep+1:]
		end, err := strconv.Atoi(endPart)
		if err != nil {
			return 0, fmt.Errorf("invalid tax year %q: %w", s, err)
		}
		want := start + 1
		if end != want && end != want%100 {
			return 0, fmt.Errorf("tax year %q: end year does not follow start year", s)
		}
	}

	return TaxYear(start), nil
}

// String renders the year of assessment in the conventional "2023/24" form.
func (y TaxYear) String() string {
	return fmt.Sprintf("%d/%02d", int(y), (int(y)+1)%100)
}

// Start returns the first instant of the fiscal year (1 April, 00:00 UTC).
func (y TaxYear) Start() time.Time {
	return time.Date(int(y), time.April, 1, 0, 0, 0, 0, time.UTC)
}

// End returns the last instant of the fiscal year (31 March, 23:59:59 UTC).
func (y TaxYear) End() time.Time {
	return time.Date(int(y)+1, time.March, 31, 23, 59, 59, 0, time.UTC)
}

// Contains reports whether t falls within the fiscal year.
func (y TaxYear) Contains(t time.Time) bool {
	return !t.Before(y.Start()) && !t.After(y.End())
}

// TaxYearOf returns the tax year that contains t.
func TaxYearOf(t time.Time) TaxYear {
	year := t.Year()
	if t.Month() < time.April {
		year--
	}
	return TaxYear(year)
}
