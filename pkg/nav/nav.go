// Package nav resolves the selected spectrum identifier from the identifier text field
// and the accumulated step counters.
//
// Navigation is modelled as a reducer: Reduce(state, event) returns the next state and
// never performs I/O, so the same logic drives the terminal UI, tests and any other
// front end.
package nav

import (
	"errors"
	"math"
	"strconv"
	"strings"
)

// Bounds is the identifier domain navigation is clamped to.
type Bounds interface {
	Min() int
	Max() int
}

// State is the per-session navigation state.
type State struct {
	Input          string // current text of the identifier field
	LastExplicitID int    // base used when the field is empty
	NextClicks     int
	PrevClicks     int
	Current        int // resolved identifier shown to the user
}

// NewState returns the session start state: the field shows the first identifier.
func NewState(b Bounds) State {
	return State{
		Input:          strconv.Itoa(b.Min()),
		LastExplicitID: b.Min(),
		Current:        b.Min(),
	}
}

// Resolve computes the effective identifier for a text value and step counters.
// Unparseable text falls back to the lower bound; the result is always within bounds.
// Resolve does not modify st.
func Resolve(raw string, next, prev int, st State, b Bounds) int {
	base, ok := parse(raw)
	switch {
	case strings.TrimSpace(raw) == "":
		base = st.LastExplicitID
	case !ok:
		base = b.Min()
	}

	return clamp(addSat(base, next-prev), b)
}

// Reset handles a value-level change of the identifier field: both step counters return
// to zero so steps stay relative to the displayed spectrum. It is a no-op when text
// equals the current field value.
func Reset(st State, text string, b Bounds) State {
	if text == st.Input {
		return st
	}

	st.Input = text
	st.NextClicks = 0
	st.PrevClicks = 0

	if strings.TrimSpace(text) == "" {
		st.LastExplicitID = st.Current
	} else if id, ok := parse(text); ok {
		st.LastExplicitID = clamp(id, b)
	}

	st.Current = Resolve(st.Input, 0, 0, st, b)
	return st
}

// Event is a user interaction fed to Reduce.
type Event interface {
	event()
}

// TextChanged carries the new value of the identifier field.
type TextChanged struct {
	Text string
}

// StepNext advances by one spectrum.
type StepNext struct{}

// StepPrev goes back by one spectrum.
type StepPrev struct{}

func (TextChanged) event() {}
func (StepNext) event()    {}
func (StepPrev) event()    {}

// Reduce applies one event and re-resolves the current identifier.
func Reduce(st State, ev Event, b Bounds) State {
	switch e := ev.(type) {
	case TextChanged:
		return Reset(st, e.Text, b)
	case StepNext:
		st.NextClicks++
	case StepPrev:
		st.PrevClicks++
	default:
		return st
	}

	st.Current = Resolve(st.Input, st.NextClicks, st.PrevClicks, st, b)
	return st
}

// parse reads an integer identifier. Numerals beyond the int range saturate.
func parse(raw string) (int, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, false
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		if errors.Is(err, strconv.ErrRange) {
			return n, true
		}
		return 0, false
	}
	return n, true
}

func clamp(id int, b Bounds) int {
	if id < b.Min() {
		return b.Min()
	}
	if id > b.Max() {
		return b.Max()
	}
	return id
}

func addSat(a, delta int) int {
	if delta > 0 && a > math.MaxInt-delta {
		return math.MaxInt
	}
	if delta < 0 && a < math.MinInt-delta {
		return math.MinInt
	}
	return a + delta
}
