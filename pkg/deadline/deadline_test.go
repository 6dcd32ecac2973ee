package deadline

import (
	"testing"
	"time"
)

var shanghai = time.FixedZone("CST", 8*60*60)

func TestParseIn_FormatVariantsAgree(t *testing.T) {
	want := time.Date(2025, 9, 27, 20, 0, 0, 0, shanghai)

	variants := []string{
		"2025-09-27 20:00:00",
		"2025-09-27 20:00:00.0",
		"2025-09-27 20:00:00.123456",
		"2025-09-27T20:00:00",
		"2025-09-27T20:00:00.000",
		"2025/09/27 20:00:00",
		"2025/09/27 20:00:00.5",
		"2025-09-27 20:00",
		"2025/09/27T20:00",
		"2025-9-27 20:00:00",
		"  2025-09-27 20:00:00  ",
	}

	for _, raw := range variants {
		t.Run(raw, func(t *testing.T) {
			got, ok := ParseIn(raw, shanghai)
			if !ok {
				t.Fatalf("ParseIn(%q) failed", raw)
			}
			if got.UnixMilli() != want.UnixMilli() {
				t.Errorf("ParseIn(%q) = %v, want %v", raw, got, want)
			}
		})
	}
}

func TestParseIn_ZonelessIsNotUTC(t *testing.T) {
	got, ok := ParseIn("2025-09-27 20:00:00", shanghai)
	if !ok {
		t.Fatal("expected parse to succeed")
	}

	utc := time.Date(2025, 9, 27, 20, 0, 0, 0, time.UTC)
	if got.Equal(utc) {
		t.Error("zoneless timestamp was read as UTC")
	}
	if got.UTC().Hour() != 12 {
		t.Errorf("expected 12:00 UTC, got %v", got.UTC())
	}
}

func TestParseIn_GenericFallbacks(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want time.Time
	}{
		{
			name: "rfc3339 with offset keeps its zone",
			raw:  "2025-09-27T20:00:00+09:00",
			want: time.Date(2025, 9, 27, 11, 0, 0, 0, time.UTC),
		},
		{
			name: "rfc3339 utc",
			raw:  "2025-09-27T20:00:00Z",
			want: time.Date(2025, 9, 27, 20, 0, 0, 0, time.UTC),
		},
		{
			name: "rfc1123z",
			raw:  "Sat, 27 Sep 2025 20:00:00 +0800",
			want: time.Date(2025, 9, 27, 12, 0, 0, 0, time.UTC),
		},
		{
			name: "iso date only is utc midnight",
			raw:  "2025-09-27",
			want: time.Date(2025, 9, 27, 0, 0, 0, 0, time.UTC),
		},
		{
			name: "slash separated date only is local midnight",
			raw:  "2025/09/27",
			want: time.Date(2025, 9, 27, 0, 0, 0, 0, shanghai),
		},
		{
			name: "single digit dash date needs slash rewrite",
			raw:  "2025-9-7",
			want: time.Date(2025, 9, 7, 0, 0, 0, 0, shanghai),
		},
		{
			name: "month name",
			raw:  "Sep 27, 2025 20:00:00",
			want: time.Date(2025, 9, 27, 20, 0, 0, 0, shanghai),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseIn(tt.raw, shanghai)
			if !ok {
				t.Fatalf("ParseIn(%q) failed", tt.raw)
			}
			if !got.Equal(tt.want) {
				t.Errorf("ParseIn(%q) = %v, want %v", tt.raw, got, tt.want)
			}
		})
	}
}

func TestParseIn_Unparseable(t *testing.T) {
	for _, raw := range []string{"", "   ", "-", "not a date", ".5", "2025-13", "20:00:00"} {
		if got, ok := ParseIn(raw, shanghai); ok {
			t.Errorf("ParseIn(%q) = %v, expected failure", raw, got)
		}
	}
}

func TestParseIn_NilLocationUsesLocal(t *testing.T) {
	got, ok := ParseIn("2025-09-27 20:00:00", nil)
	if !ok {
		t.Fatal("expected parse to succeed")
	}
	want := time.Date(2025, 9, 27, 20, 0, 0, 0, time.Local)
	if !got.Equal(want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestFromMillis(t *testing.T) {
	ms := int64(1758974400000)
	if got := FromMillis(ms).UnixMilli(); got != ms {
		t.Errorf("FromMillis round trip = %d, want %d", got, ms)
	}
}
