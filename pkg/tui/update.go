package tui

import (
	"fmt"
	"log"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/ChrisMcGann/mzview/pkg/export"
	"github.com/ChrisMcGann/mzview/pkg/nav"
	"github.com/ChrisMcGann/mzview/pkg/session"
)

// MsgFrame carries a rendered frame.
type MsgFrame session.Frame

// MsgError indicates an error occurred.
type MsgError error

// MsgExported lists the files written by an export.
type MsgExported []string

// waitFrame blocks until the session loop publishes a frame.
func waitFrame(frames <-chan session.Frame) tea.Cmd {
	return func() tea.Msg {
		return MsgFrame(<-frames)
	}
}

// send queues ev for the session loop. Update runs on one goroutine, so the queue
// holds events in key press order.
func (m Model) send(ev nav.Event) {
	m.events <- ev
}

func exportCmd(f session.Frame, opts ExportOptions) tea.Cmd {
	return func() tea.Msg {
		id := f.State.Current
		paths, err := export.Files(opts.Dir, fmt.Sprintf("spectrum-%d", id), f.Spectrum, opts.Width, opts.Height, true)
		if err != nil {
			return MsgError(err)
		}
		ticPaths, err := export.Files(opts.Dir, fmt.Sprintf("tic-%d", id), f.TIC, opts.Width, opts.Height, false)
		if err != nil {
			return MsgError(err)
		}
		return MsgExported(append(paths, ticPaths...))
	}
}

// Update handles events.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.WindowSize = msg
		m.Help.Width = msg.Width
		m.layout()
		return m, nil

	case MsgFrame:
		f := session.Frame(msg)
		next := waitFrame(m.frames)
		if f.Seq <= m.lastSeq {
			return m, next
		}
		m.lastSeq = f.Seq
		if f.Err != nil {
			m.Err = f.Err
			log.Printf("error: %v", f.Err)
			return m, next
		}
		m.Frame = f
		m.HasFrame = true
		m.Err = nil
		m.SpectrumView.SetPayload(f.Spectrum)
		m.TICView.SetPayload(f.TIC)
		return m, next

	case MsgExported:
		m.Status = "Exported " + strings.Join(msg, ", ")
		return m, nil

	case MsgError:
		m.Err = msg
		log.Printf("error: %v", msg)
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.Keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.Keys.Next):
			m.send(nav.StepNext{})
			return m, nil
		case key.Matches(msg, m.Keys.Prev):
			m.send(nav.StepPrev{})
			return m, nil
		case key.Matches(msg, m.Keys.Export):
			if !m.HasFrame {
				return m, nil
			}
			m.Status = "Exporting..."
			return m, exportCmd(m.Frame, m.export)
		}

		before := m.Input.Value()
		m.Input, cmd = m.Input.Update(msg)
		if after := m.Input.Value(); after != before {
			m.send(nav.TextChanged{Text: after})
		}
		return m, cmd
	}

	m.Input, cmd = m.Input.Update(msg)
	return m, cmd
}

// infoWidth is the space kept right of the spectrum for the info panel.
const infoWidth = 40

// layout sizes the charts to the window: the spectrum gets two thirds of the space
// left after the header and footer.
func (m *Model) layout() {
	w := m.WindowSize.Width
	h := m.WindowSize.Height - 8
	if h < 6 {
		h = 6
	}
	specW := w
	if w > 2*infoWidth {
		specW = w - infoWidth
	}
	spec := h * 2 / 3
	m.SpectrumView.Resize(specW, spec)
	m.TICView.Resize(w, h-spec)
}
