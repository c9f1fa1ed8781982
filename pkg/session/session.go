// Package session owns the navigation state of one opened run and turns navigation
// events into rendered frames.
package session

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/ChrisMcGann/mzview/pkg/core"
	"github.com/ChrisMcGann/mzview/pkg/filter"
	"github.com/ChrisMcGann/mzview/pkg/index"
	"github.com/ChrisMcGann/mzview/pkg/nav"
	"github.com/ChrisMcGann/mzview/pkg/plot"
	"github.com/ChrisMcGann/mzview/pkg/render"
	"github.com/ChrisMcGann/mzview/pkg/tic"
)

// Frame is the result of one resolution.
type Frame struct {
	Seq      uint64
	State    nav.State
	Record   *core.Spectrum // nil when the resolved id has no record
	Spectrum plot.Payload
	TIC      plot.Payload
	Err      error // set by Serve when the record could not be loaded
}

// Option configures a Session.
type Option func(*Session)

// WithFilter sets the peak filters applied to every displayed record.
func WithFilter(cfg filter.Config) Option {
	return func(s *Session) { s.filter = cfg }
}

// WithLogger sets the logger used for recoverable problems.
func WithLogger(l *log.Logger) Option {
	return func(s *Session) { s.logger = l }
}

// Session is the explicit context of one opened run: the reader, the identifier
// domain and the TIC cache are fixed at construction; only the navigation state
// changes afterwards.
type Session struct {
	reader core.RunReader
	label  string
	index  *index.Index
	tic    *tic.Cache
	filter filter.Config
	logger *log.Logger

	mu    sync.Mutex
	state nav.State
	seq   uint64
}

// New builds the index and TIC cache of a run. An empty index or a TIC trace that is
// not aligned with the identifiers is fatal.
func New(reader core.RunReader, label string, opts ...Option) (*Session, error) {
	idx, err := index.Build(reader.Offsets())
	if err != nil {
		return nil, fmt.Errorf("failed to index run %s: %w", label, err)
	}

	samples, err := reader.TIC()
	if err != nil {
		return nil, fmt.Errorf("failed to read TIC of run %s: %w", label, err)
	}

	cache, err := tic.Build(samples, idx.IDs())
	if err != nil {
		return nil, fmt.Errorf("failed to build TIC of run %s: %w", label, err)
	}

	s := &Session{
		reader: reader,
		label:  label,
		index:  idx,
		tic:    cache,
		logger: log.Default(),
		state:  nav.NewState(idx),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Label returns the run label used in plot titles.
func (s *Session) Label() string { return s.label }

// Index returns the identifier domain of the run.
func (s *Session) Index() *index.Index { return s.index }

// State returns a snapshot of the navigation state.
func (s *Session) State() nav.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Apply reduces one event and renders the resulting frame.
func (s *Session) Apply(ev nav.Event) (Frame, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state = nav.Reduce(s.state, ev, s.index)
	return s.render()
}

// Current renders the current state without changing it.
func (s *Session) Current() (Frame, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.render()
}

// Serve reduces events in arrival order and sends a frame after each batch. Events that
// are already queued when a batch starts are folded into it, so superseded frames are
// never rendered. A frame whose record failed to load carries the error in Err.
// Serve returns when events is closed or ctx is done.
func (s *Session) Serve(ctx context.Context, events <-chan nav.Event, frames chan<- Frame) error {
	for {
		var ev nav.Event
		var ok bool
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok = <-events:
			if !ok {
				return nil
			}
		}

		f, err := s.applyBatch(ev, events)
		if err != nil {
			s.logger.Printf("session %s: %v", s.label, err)
			f.Err = err
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case frames <- f:
		}
	}
}

func (s *Session) applyBatch(first nav.Event, pending <-chan nav.Event) (Frame, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state = nav.Reduce(s.state, first, s.index)
	for {
		select {
		case ev, ok := <-pending:
			if !ok {
				return s.render()
			}
			s.state = nav.Reduce(s.state, ev, s.index)
		default:
			return s.render()
		}
	}
}

// render must be called with mu held.
func (s *Session) render() (Frame, error) {
	s.seq++
	f := Frame{Seq: s.seq, State: s.state}
	id := s.state.Current

	// ids inside [min, max] that the run skips never reach the reader
	var rec *core.Spectrum
	err := core.ErrSpectrumNotFound
	if s.index.Contains(id) {
		rec, err = s.reader.Spectrum(id)
	}
	if errors.Is(err, core.ErrSpectrumNotFound) {
		s.logger.Printf("spectrum %d not available in run %s", id, s.label)
		f.Spectrum = render.Unavailable(id, s.label)
		f.TIC = render.TICWithoutMarker(s.tic)
		return f, nil
	}
	if err != nil {
		return Frame{Seq: f.Seq, State: f.State}, fmt.Errorf("failed to load spectrum %d: %w", id, err)
	}

	if s.filter.Enabled() {
		rec = filtered(rec, s.filter)
	}

	f.Record = rec
	f.Spectrum = render.Spectrum(rec, s.label)
	f.TIC = render.TIC(s.tic, id, rec.RetentionTime)
	return f, nil
}

// filtered applies cfg to a copy of rec.
func filtered(rec *core.Spectrum, cfg filter.Config) *core.Spectrum {
	out := *rec
	out.Peaks = append([]core.Peak(nil), rec.Peaks...)
	cfg.Apply(&out)
	return &out
}
