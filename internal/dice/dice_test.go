package dice

import (
	"math/rand"
	"testing"

	"gopkg.in/yaml.v3"
)

func TestParse(t *testing.T) {
	tests := []struct {
		notation string
		min, max int
		str      string
	}{
		{"", 0, 0, "0"},
		{"20", 20, 20, "20"},
		{"2-3", 2, 3, "2-3"},
		{"3-2", 2, 3, "3-2"},
		{"1d6", 1, 6, "1d6"},
		{"d8", 1, 8, "1d8"},
		{"2d4+1", 3, 9, "2d4+1"},
		{"3D6 - 2", 1, 16, "3d6-2"},
		{"1d4-5", 0, 0, "1d4-5"},
	}

	for _, tt := range tests {
		t.Run(tt.notation, func(t *testing.T) {
			e, err := Parse(tt.notation)
			if err != nil {
				t.Fatalf("Parse(%q) error: %v", tt.notation, err)
			}
			if e.Min() != tt.min || e.Max() != tt.max {
				t.Errorf("Parse(%q) bounds = [%d,%d], want [%d,%d]", tt.notation, e.Min(), e.Max(), tt.min, tt.max)
			}
			if e.String() != tt.str {
				t.Errorf("String() = %q, want %q", e.String(), tt.str)
			}
		})
	}
}

func TestParseInvalid(t *testing.T) {
	for _, notation := range []string{"abc", "0d6", "2d0", "1d", "2x6", "-3", "1d6+"} {
		if _, err := Parse(notation); err == nil {
			t.Errorf("Parse(%q) should fail", notation)
		}
	}
}

func TestRollStaysWithinBounds(t *testing.T) {
	r := rand.New(rand.NewSource(42))
	for _, notation := range []string{"2d6+1", "4-9", "9-4", "1d20", "7"} {
		e := MustParse(notation)
		for i := 0; i < 500; i++ {
			v := e.Roll(r)
			if v < e.Min() || v > e.Max() {
				t.Fatalf("%s rolled %d outside [%d,%d]", notation, v, e.Min(), e.Max())
			}
			v = e.RollRange(r)
			if v < e.Min() || v > e.Max() {
				t.Fatalf("%s RollRange %d outside [%d,%d]", notation, v, e.Min(), e.Max())
			}
		}
	}
}

func TestRollIsDeterministic(t *testing.T) {
	e := MustParse("3d6+2")
	a := rand.New(rand.NewSource(7))
	b := rand.New(rand.NewSource(7))
	for i := 0; i < 50; i++ {
		if x, y := e.Roll(a), e.Roll(b); x != y {
			t.Fatalf("roll %d differs under same seed: %d vs %d", i, x, y)
		}
	}
}

func TestBetweenSwapsBounds(t *testing.T) {
	r := rand.New(rand.NewSource(1))
	seen := map[int]bool{}
	for i := 0; i < 200; i++ {
		v := Between(r, 5, 3)
		if v < 3 || v > 5 {
			t.Fatalf("Between(5,3) = %d", v)
		}
		seen[v] = true
	}
	if len(seen) != 3 {
		t.Errorf("expected all of 3..5 to appear, saw %v", seen)
	}
}

func TestYAMLRoundTrip(t *testing.T) {
	var doc struct {
		Budget Expr `yaml:"budget"`
		Count  Expr `yaml:"count"`
	}
	if err := yaml.Unmarshal([]byte("budget: 4d6+10\ncount: 2-3\n"), &doc); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if doc.Budget.Count != 4 || doc.Budget.Sides != 6 || doc.Budget.Bonus != 10 {
		t.Errorf("budget parsed as %+v", doc.Budget)
	}
	if doc.Count.Min() != 2 || doc.Count.Max() != 3 {
		t.Errorf("count parsed as [%d,%d]", doc.Count.Min(), doc.Count.Max())
	}

	out, err := yaml.Marshal(doc)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if string(out) != "budget: 4d6+10\ncount: 2-3\n" {
		t.Errorf("Marshal = %q", out)
	}

	if err := yaml.Unmarshal([]byte("budget: nonsense\n"), &doc); err == nil {
		t.Error("expected error for bad notation")
	}
}
