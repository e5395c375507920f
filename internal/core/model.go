package core

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// DateLayout is the storage and display layout for dates.
const DateLayout = "02/01/2006"

var dateLayouts = []string{
	DateLayout,
	"02/01/2006 15:04:05",
	"02/01/2006 15:04",
	"2006-01-02",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	time.RFC3339,
}

// Date is a calendar day without time zone. The zero value means "absent".
type Date struct {
	t time.Time
}

// NewDate returns the given calendar day.
func NewDate(year int, month time.Month, day int) Date {
	return Date{t: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates t to its calendar day in t's own location.
func DateOf(t time.Time) Date {
	if t.IsZero() {
		return Date{}
	}
	return NewDate(t.Year(), t.Month(), t.Day())
}

// Today returns the current local calendar day.
func Today() Date {
	return DateOf(time.Now())
}

// ParseDate accepts DD/MM/YYYY (optionally with a time) and ISO forms.
// Anything else, including blanks, yields the zero Date.
func ParseDate(s string) Date {
	s = strings.TrimSpace(s)
	if s == "" {
		return Date{}
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return DateOf(t)
		}
	}
	return Date{}
}

func (d Date) IsZero() bool { return d.t.IsZero() }

func (d Date) Year() int         { return d.t.Year() }
func (d Date) Month() time.Month { return d.t.Month() }
func (d Date) Day() int          { return d.t.Day() }

// Time returns midnight UTC of d.
func (d Date) Time() time.Time { return d.t }

// String formats d as DD/MM/YYYY, or "" when absent.
func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.t.Format(DateLayout)
}

// ISO formats d as YYYY-MM-DD, or "" when absent.
func (d Date) ISO() string {
	if d.IsZero() {
		return ""
	}
	return d.t.Format("2006-01-02")
}

// MonthKey formats d as YYYY-MM for monthly grouping.
func (d Date) MonthKey() string {
	if d.IsZero() {
		return ""
	}
	return d.t.Format("2006-01")
}

// AddDays shifts d by n days. Absent stays absent.
func (d Date) AddDays(n int) Date {
	if d.IsZero() {
		return d
	}
	return Date{t: d.t.AddDate(0, 0, n)}
}

// DaysSince returns the whole-day difference d - other, or 0 if either is absent.
func (d Date) DaysSince(other Date) int {
	if d.IsZero() || other.IsZero() {
		return 0
	}
	return int(d.epochDay() - other.epochDay())
}

// epochDay counts days since 1970-01-01. d is always midnight UTC, so the
// division is exact on both sides of the epoch.
func (d Date) epochDay() int64 { return d.t.Unix() / 86400 }

func (d Date) Before(other Date) bool { return d.t.Before(other.t) }
func (d Date) After(other Date) bool  { return d.t.After(other.t) }
func (d Date) Equal(other Date) bool  { return d.t.Equal(other.t) }

func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(d.String())
}

func (d *Date) UnmarshalJSON(b []byte) error {
	var s *string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	if s == nil {
		*d = Date{}
		return nil
	}
	*d = ParseDate(*s)
	return nil
}

// ParseMoney reads plain ("1234.56"), pt-BR ("1.234,56") and currency-prefixed
// ("R$ 1.234,56") amounts. Unparseable input yields zero.
func ParseMoney(s string) decimal.Decimal {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "R$")
	s = strings.ReplaceAll(s, " ", "")
	s = strings.ReplaceAll(s, "\u00a0", "")
	if s == "" {
		return decimal.Zero
	}

	switch {
	case strings.Contains(s, ","):
		s = strings.ReplaceAll(s, ".", "")
		s = strings.Replace(s, ",", ".", 1)
	case strings.Count(s, ".") > 1:
		s = strings.ReplaceAll(s, ".", "")
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// FormatMoney renders d for storage: plain decimal point, no grouping, every
// significant digit kept. Rounding belongs to FormatBRL.
func FormatMoney(d decimal.Decimal) string {
	return d.String()
}

// FormatBRL renders d as "R$ 1.234,56" (negative: "R$ -1.234,56").
func FormatBRL(d decimal.Decimal) string {
	fixed := d.Abs().StringFixed(2)
	intPart, frac, _ := strings.Cut(fixed, ".")

	var b strings.Builder
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(r)
	}

	sign := ""
	if d.IsNegative() && !d.Round(2).IsZero() {
		sign = "-"
	}
	return "R$ " + sign + b.String() + "," + frac
}

// ParseInt reads whole numbers, tolerating a decimal part ("5.0") and pt-BR commas.
// Unparseable input yields 0.
func ParseInt(s string) int {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	if n, err := strconv.Atoi(s); err == nil {
		return n
	}
	return int(ParseMoney(s).IntPart())
}

// OrderKey is the normalized purchase-order number used for every join.
type OrderKey string

// NewOrderKey trims and upper-cases a raw purchase-order number.
func NewOrderKey(raw string) OrderKey {
	return OrderKey(strings.ToUpper(strings.TrimSpace(raw)))
}

func (k OrderKey) IsZero() bool   { return k == "" }
func (k OrderKey) String() string { return string(k) }

// normalizeText is the comparison form for free-text identifiers (NF numbers, suppliers).
func normalizeText(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

func containsFold(s, sub string) bool {
	return strings.Contains(strings.ToUpper(s), strings.ToUpper(strings.TrimSpace(sub)))
}
