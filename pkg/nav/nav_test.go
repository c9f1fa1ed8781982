package nav

import (
	"strconv"
	"testing"
)

type bounds struct{ min, max int }

func (b bounds) Min() int { return b.min }
func (b bounds) Max() int { return b.max }

func TestResolveScenarios(t *testing.T) {
	b := bounds{1, 500}
	st := NewState(b)

	tests := []struct {
		name  string
		input string
		next  int
		prev  int
		want  int
	}{
		{"steps forward from typed id", "10", 3, 0, 13},
		{"clamped at lower bound", "1", 0, 5, 1},
		{"empty input uses first id", "", 0, 0, 1},
		{"whitespace input uses first id", "   ", 0, 0, 1},
		{"unparseable input falls back to min", "abc", 0, 0, 1},
		{"unparseable input still steps", "12x", 2, 0, 3},
		{"clamped at upper bound", "499", 4, 0, 500},
		{"above range", "9000", 0, 0, 500},
		{"below range", "-3", 0, 0, 1},
		{"surrounding spaces", " 42 ", 0, 0, 42},
		{"explicit plus sign", "+7", 0, 0, 7},
		{"overflowing numeral saturates high", "99999999999999999999999", 0, 2, 500},
		{"overflowing negative numeral saturates low", "-99999999999999999999999", 3, 0, 1},
		{"out of range base shifted then clamped", "600", 0, 5, 500},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Resolve(tt.input, tt.next, tt.prev, st, b)
			if got != tt.want {
				t.Errorf("Resolve(%q, %d, %d) = %d, want %d", tt.input, tt.next, tt.prev, got, tt.want)
			}
		})
	}
}

func TestResolveIdentity(t *testing.T) {
	b := bounds{3, 60}
	st := NewState(b)

	for i := b.min; i <= b.max; i++ {
		if got := Resolve(strconv.Itoa(i), 0, 0, st, b); got != i {
			t.Errorf("Resolve(%d) = %d", i, got)
		}
	}
}

func TestResolveEqualOpposingShifts(t *testing.T) {
	b := bounds{1, 40}
	st := NewState(b)

	for i := b.min; i <= b.max; i++ {
		for k := 0; k < 8; k++ {
			s := strconv.Itoa(i)
			_ = Resolve(s, k, 0, st, b)
			if got := Resolve(s, k, k, st, b); got != i {
				t.Errorf("Resolve(%d, %d, %d) = %d, want %d", i, k, k, got, i)
			}
		}
	}
}

func TestResolveIdempotentClamp(t *testing.T) {
	b := bounds{5, 20}
	st := NewState(b)

	for _, in := range []string{"-10", "0", "5", "13", "20", "21", "1000", "junk", ""} {
		first := Resolve(in, 0, 0, st, b)
		second := Resolve(strconv.Itoa(first), 0, 0, st, b)
		if first != second {
			t.Errorf("Resolve not idempotent for %q: %d then %d", in, first, second)
		}
	}
}

func TestResolveDoesNotMutateState(t *testing.T) {
	b := bounds{1, 10}
	st := NewState(b)
	before := st

	Resolve("7", 2, 1, st, b)
	if st != before {
		t.Errorf("state changed: %+v -> %+v", before, st)
	}
}

func TestNewState(t *testing.T) {
	st := NewState(bounds{4, 9})
	if st.Input != "4" || st.LastExplicitID != 4 || st.Current != 4 {
		t.Errorf("unexpected initial state %+v", st)
	}
	if st.NextClicks != 0 || st.PrevClicks != 0 {
		t.Errorf("counters must start at zero: %+v", st)
	}
}

func TestReduceStepsAndReset(t *testing.T) {
	b := bounds{1, 500}
	st := NewState(b)

	st = Reduce(st, TextChanged{Text: "10"}, b)
	if st.Current != 10 {
		t.Fatalf("Expected 10 after typing, got %d", st.Current)
	}

	for i := 0; i < 3; i++ {
		st = Reduce(st, StepNext{}, b)
	}
	if st.Current != 13 || st.NextClicks != 3 {
		t.Fatalf("Expected 13 with 3 next clicks, got %+v", st)
	}

	st = Reduce(st, StepPrev{}, b)
	if st.Current != 12 {
		t.Fatalf("Expected 12, got %d", st.Current)
	}

	// Typing a new id must discard the accumulated steps.
	st = Reduce(st, TextChanged{Text: "200"}, b)
	if st.NextClicks != 0 || st.PrevClicks != 0 {
		t.Errorf("Expected counters reset, got %+v", st)
	}
	if st.Current != 200 {
		t.Errorf("Expected 200, got %d", st.Current)
	}

	st = Reduce(st, StepNext{}, b)
	if st.Current != 201 {
		t.Errorf("Expected 201, got %d", st.Current)
	}
}

func TestResetOnlyOnValueChange(t *testing.T) {
	b := bounds{1, 100}
	st := NewState(b)
	st = Reduce(st, TextChanged{Text: "50"}, b)
	st = Reduce(st, StepNext{}, b)
	st = Reduce(st, StepNext{}, b)

	same := Reduce(st, TextChanged{Text: "50"}, b)
	if same.NextClicks != 2 || same.Current != 52 {
		t.Errorf("Unchanged text must not reset counters, got %+v", same)
	}
}

func TestStepsDoNotReset(t *testing.T) {
	b := bounds{1, 100}
	st := Reduce(NewState(b), TextChanged{Text: "20"}, b)
	st = Reduce(st, StepPrev{}, b)
	st = Reduce(st, StepNext{}, b)
	st = Reduce(st, StepNext{}, b)

	if st.NextClicks != 2 || st.PrevClicks != 1 {
		t.Errorf("Step events must accumulate, got %+v", st)
	}
	if st.Current != 21 {
		t.Errorf("Expected 21, got %d", st.Current)
	}
}

func TestClearingInputKeepsDisplayedSpectrum(t *testing.T) {
	b := bounds{1, 100}
	st := Reduce(NewState(b), TextChanged{Text: "30"}, b)
	st = Reduce(st, StepNext{}, b)
	st = Reduce(st, StepNext{}, b)

	st = Reduce(st, TextChanged{Text: ""}, b)
	if st.Current != 32 || st.LastExplicitID != 32 {
		t.Fatalf("Expected to stay on 32, got %+v", st)
	}

	st = Reduce(st, StepNext{}, b)
	if st.Current != 33 {
		t.Errorf("Expected step relative to displayed spectrum, got %d", st.Current)
	}
}

func TestTypedIDIsClampedIntoLastExplicit(t *testing.T) {
	b := bounds{1, 100}
	st := Reduce(NewState(b), TextChanged{Text: "250"}, b)
	if st.LastExplicitID != 100 || st.Current != 100 {
		t.Errorf("Expected clamp to 100, got %+v", st)
	}
}
