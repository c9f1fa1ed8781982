// Package tui is the terminal front end of the viewer: an identifier field, step keys,
// and braille renderings of the spectrum and TIC payloads.
package tui

import (
	"context"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/ChrisMcGann/mzview/pkg/nav"
	"github.com/ChrisMcGann/mzview/pkg/session"
)

// eventBuffer bounds the events queued between two session batches.
const eventBuffer = 64

// ExportOptions controls where ctrl+s writes plots.
type ExportOptions struct {
	Dir    string
	Width  int
	Height int
}

// Model holds the TUI state.
type Model struct {
	// Data
	Session  *session.Session
	Frame    session.Frame
	HasFrame bool
	Err      error
	Status   string

	// UI State
	WindowSize tea.WindowSizeMsg
	lastSeq    uint64

	// Components
	Input        textinput.Model
	Keys         KeyMap
	Help         help.Model
	SpectrumView *Chart
	TICView      *Chart

	// Session loop
	events chan nav.Event
	frames chan session.Frame // newest frame not yet shown

	export ExportOptions
}

// New returns the initial model for a session.
func New(s *session.Session, export ExportOptions) Model {
	ti := textinput.New()
	ti.Placeholder = "Spectrum id"
	ti.Prompt = "ID: "
	ti.CharLimit = 20
	ti.Width = 20
	ti.SetValue(s.State().Input)
	ti.Focus()

	return Model{
		Session:      s,
		Input:        ti,
		Keys:         DefaultKeyMap(),
		Help:         help.New(),
		SpectrumView: NewChart(80, 14),
		TICView:      NewChart(80, 8),
		events:       make(chan nav.Event, eventBuffer),
		frames:       make(chan session.Frame, 1),
		export:       export,
	}
}

// Start renders the start state and runs the session loop until ctx is done. Events
// queued by Update are reduced strictly in the order the keys were pressed.
func (m Model) Start(ctx context.Context) {
	f, err := m.Session.Current()
	if err != nil {
		f.Err = err
	}
	m.publish(f)

	out := make(chan session.Frame)
	go m.Session.Serve(ctx, m.events, out)
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case f := <-out:
				m.publish(f)
			}
		}
	}()
}

// publish hands f to the UI, replacing a frame the UI has not picked up yet.
func (m Model) publish(f session.Frame) {
	for {
		select {
		case m.frames <- f:
			return
		default:
		}
		select {
		case <-m.frames:
		default:
		}
	}
}

// Init waits for the first frame.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, waitFrame(m.frames))
}

// Run starts the program on the alternate screen and blocks until the user quits.
func Run(s *session.Session, export ExportOptions) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	m := New(s, export)
	m.Start(ctx)
	_, err := tea.NewProgram(m, tea.WithAltScreen()).Run()
	return err
}
