package settlement

import (
	"testing"

	"github.com/goldthwaiteeverette61/football-app-sub000/pkg/logger"
)

func TestEvaluate_NoResult(t *testing.T) {
	inputs := []string{"", "-", " - ", "2-1", "2:", ":1", "a:b", "2:1:0", "-1:0", "2.5:1", "2 : 1", "１:０", " 2:1", "2:1 ", "\t1:0", "1:0\n"}

	for _, score := range inputs {
		for _, pool := range []string{"HAD", "HHAD", "XYZ"} {
			if got, ok := Evaluate(score, pool, "-1"); ok {
				t.Errorf("Evaluate(%q, %s) = %s, want no result", score, pool, got)
			}
		}
	}
}

func TestEvaluate_HAD(t *testing.T) {
	tests := []struct {
		score string
		want  Selection
	}{
		{"2:1", Home},
		{"1:2", Away},
		{"1:1", Draw},
		{"0:0", Draw},
		{"10:9", Home},
	}

	for _, tt := range tests {
		got, ok := Evaluate(tt.score, "HAD", "")
		if !ok || got != tt.want {
			t.Errorf("Evaluate(%q, HAD) = (%s, %v), want %s", tt.score, got, ok, tt.want)
		}
	}
}

func TestEvaluate_HADIgnoresGoalLine(t *testing.T) {
	got, ok := Evaluate("2:1", "HAD", "-3")
	if !ok || got != Home {
		t.Errorf("Expected HAD to ignore goal line, got %s", got)
	}
}

func TestEvaluate_HHAD(t *testing.T) {
	tests := []struct {
		name  string
		score string
		line  string
		want  Selection
	}{
		{"home gives one, wins by one", "2:1", "-1", Draw},
		{"home receives one on nil draw", "0:0", "1", Home},
		{"home gives one, wins by two", "3:1", "-1", Home},
		{"home gives one, draws", "1:1", "-1", Away},
		{"home receives two, loses by one", "0:1", "+2", Home},
		{"half line", "1:1", "-0.5", Away},
		{"scenario one-nil minus one", "1:0", "-1", Draw},
		{"zero line", "1:1", "0", Draw},
		{"lowercase pool code", "2:1", "-1", Draw},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pool := "HHAD"
			if tt.name == "lowercase pool code" {
				pool = "hhad"
			}
			got, ok := Evaluate(tt.score, pool, tt.line)
			if !ok || got != tt.want {
				t.Errorf("Evaluate(%q, %s, %q) = (%s, %v), want %s", tt.score, pool, tt.line, got, ok, tt.want)
			}
		})
	}
}

func TestEvaluate_MalformedGoalLine(t *testing.T) {
	e := NewEvaluator(logger.Nop())
	for _, line := range []string{"", "abc", "one"} {
		got, ok := e.Evaluate("2:1", "HHAD", line)
		if !ok || got != Home {
			t.Errorf("Expected malformed goal line %q to compare unadjusted, got (%s, %v)", line, got, ok)
		}
	}
}

func TestEvaluate_UnknownPoolCode(t *testing.T) {
	e := NewEvaluator(logger.Nop())
	got, ok := e.Evaluate("0:2", "TTG", "5")
	if !ok || got != Away {
		t.Errorf("Expected unknown pool to be evaluated like HAD, got (%s, %v)", got, ok)
	}
}

func TestEvaluate_Deterministic(t *testing.T) {
	first, _ := Evaluate("3:2", "HHAD", "-1")
	for i := 0; i < 100; i++ {
		if got, _ := Evaluate("3:2", "HHAD", "-1"); got != first {
			t.Fatalf("Evaluation changed between calls: %s != %s", got, first)
		}
	}
}

func TestParseScore(t *testing.T) {
	s, ok := ParseScore(" 3:0 ")
	if !ok {
		t.Fatal("Expected padded score to parse")
	}
	if s.Home != 3 || s.Away != 0 {
		t.Errorf("Unexpected score %+v", s)
	}
}
