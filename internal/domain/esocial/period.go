package esocial

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Period identifies the payroll run being reported.
type Period struct {
	Year  int `json:"year"`
	Month int `json:"month"`
}

func NewPeriod(year, month int) Period {
	return Period{Year: year, Month: month}
}

// ParsePeriod accepts "MM/YYYY" and "YYYY-MM".
func ParsePeriod(raw string) (Period, error) {
	raw = strings.TrimSpace(raw)
	var yearPart, monthPart string
	switch {
	case strings.Contains(raw, "/"):
		parts := strings.SplitN(raw, "/", 2)
		monthPart, yearPart = parts[0], parts[1]
	case strings.Contains(raw, "-"):
		parts := strings.SplitN(raw, "-", 2)
		yearPart, monthPart = parts[0], parts[1]
	default:
		return Period{}, fmt.Errorf("%w: %q", ErrInvalidPeriod, raw)
	}
	year, err := strconv.Atoi(yearPart)
	if err != nil || len(yearPart) != 4 {
		return Period{}, fmt.Errorf("%w: %q", ErrInvalidPeriod, raw)
	}
	month, err := strconv.Atoi(monthPart)
	if err != nil {
		return Period{}, fmt.Errorf("%w: %q", ErrInvalidPeriod, raw)
	}
	p := Period{Year: year, Month: month}
	if err := p.Validate(); err != nil {
		return Period{}, err
	}
	return p, nil
}

func (p Period) IsZero() bool {
	return p.Year == 0 && p.Month == 0
}

func (p Period) Validate() error {
	if p.IsZero() {
		return ErrEmptyPeriod
	}
	if p.Year < 1900 || p.Year > 9999 || p.Month < 1 || p.Month > 12 {
		return fmt.Errorf("%w: %04d-%02d", ErrInvalidPeriod, p.Year, p.Month)
	}
	return nil
}

// String formats the period as "MM/YYYY".
func (p Period) String() string {
	return fmt.Sprintf("%02d/%04d", p.Month, p.Year)
}

// Compact formats the period as "YYYYMM".
func (p Period) Compact() string {
	return fmt.Sprintf("%04d%02d", p.Year, p.Month)
}

// PaymentDate anchors the period to day, clamped to the last day of the month.
func (p Period) PaymentDate(day int) time.Time {
	if day < 1 {
		day = 1
	}
	last := time.Date(p.Year, time.Month(p.Month)+1, 0, 0, 0, 0, 0, time.UTC).Day()
	if day > last {
		day = last
	}
	return time.Date(p.Year, time.Month(p.Month), day, 0, 0, 0, 0, time.UTC)
}

func (p *Period) UnmarshalJSON(data []byte) error {
	var text string
	if err := json.Unmarshal(data, &text); err == nil {
		parsed, err := ParsePeriod(text)
		if err != nil {
			return err
		}
		*p = parsed
		return nil
	}
	type plain Period
	var v plain
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*p = Period(v)
	return nil
}

func FormatDate(t time.Time) string {
	return t.Format("2006-01-02")
}
