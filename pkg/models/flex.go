package models

import (
	"bytes"
	"encoding/json"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/goldthwaiteeverette61/football-app-sub000/pkg/deadline"
)

// FlexString accepts a JSON string, number, bool or null and keeps its text.
// The scheme API is inconsistent about quoting numeric fields.
type FlexString string

func (f *FlexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*f = ""
		return nil
	}

	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = FlexString(s)
		return nil
	}

	// numbers and booleans are kept verbatim; objects and arrays degrade to empty
	switch data[0] {
	case '{', '[':
		*f = ""
	default:
		*f = FlexString(data)
	}
	return nil
}

func (f FlexString) String() string {
	return string(f)
}

// Decimal parses the value as an amount. Empty or malformed values are zero.
func (f FlexString) Decimal() decimal.Decimal {
	return parseAmount(string(f))
}

// FlexInt accepts a JSON number or a numeric string. Anything else is zero.
type FlexInt int64

func (f *FlexInt) UnmarshalJSON(data []byte) error {
	var s FlexString
	if err := s.UnmarshalJSON(data); err != nil {
		return err
	}

	text := strings.TrimSpace(string(s))
	if n, err := strconv.ParseInt(text, 10, 64); err == nil {
		*f = FlexInt(n)
		return nil
	}
	if v, err := strconv.ParseFloat(text, 64); err == nil {
		*f = FlexInt(int64(v))
		return nil
	}
	*f = 0
	return nil
}

// TimeValue holds a timestamp that arrives either as epoch milliseconds or as
// one of the heterogeneous date strings handled by the deadline package.
type TimeValue struct {
	Text     string
	Millis   int64
	IsNumber bool
}

func (t *TimeValue) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	*t = TimeValue{}

	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}

	if data[0] == '"' {
		return json.Unmarshal(data, &t.Text)
	}

	if v, err := strconv.ParseFloat(string(data), 64); err == nil {
		t.Millis = int64(v)
		t.IsNumber = true
		t.Text = string(data)
	}
	return nil
}

func (t TimeValue) MarshalJSON() ([]byte, error) {
	if t.IsNumber {
		return []byte(strconv.FormatInt(t.Millis, 10)), nil
	}
	if t.Text == "" {
		return []byte("null"), nil
	}
	return json.Marshal(t.Text)
}

// IsZero reports whether no timestamp was supplied.
func (t TimeValue) IsZero() bool {
	return !t.IsNumber && strings.TrimSpace(t.Text) == ""
}

// Instant resolves the value, reading zoneless strings in loc.
func (t TimeValue) Instant(loc *time.Location) (time.Time, bool) {
	if t.IsNumber {
		return deadline.FromMillis(t.Millis), true
	}
	return deadline.ParseIn(t.Text, loc)
}

var amountPrefix = regexp.MustCompile(`^[+-]?\d+(\.\d+)?([eE][+-]?\d+)?`)

// parseAmount reads amounts the way a lenient float parser does: the longest
// leading numeric prefix counts, so "100.00元" is 100. Empty, null and inputs
// with no numeric prefix become zero.
func parseAmount(raw string) decimal.Decimal {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return decimal.Zero
	}

	if d, err := decimal.NewFromString(raw); err == nil {
		return d
	}
	prefix := amountPrefix.FindString(raw)
	if prefix == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(prefix)
	if err != nil {
		return decimal.Zero
	}
	return d
}
