package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/ChrisMcGann/mzview/pkg/render"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	chartTitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("205"))

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245")).
			Border(lipgloss.NormalBorder()).
			BorderForeground(lipgloss.Color("63")).
			Padding(0, 1)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))
)

// View renders the screen.
func (m Model) View() string {
	var b strings.Builder

	header := lipgloss.JoinHorizontal(lipgloss.Center,
		titleStyle.Render("mzview "+m.Session.Label()),
		"  ",
		m.Input.View(),
		dimStyle.Render(fmt.Sprintf("  [%d..%d]", m.Session.Index().Min(), m.Session.Index().Max())),
	)
	b.WriteString(header)
	b.WriteString("\n")

	if !m.HasFrame {
		b.WriteString(dimStyle.Render("Loading..."))
		b.WriteString("\n")
		b.WriteString(m.footer())
		return b.String()
	}

	b.WriteString(chartTitleStyle.Render(m.Frame.Spectrum.Layout.Title))
	b.WriteString("\n")
	spectrum := m.SpectrumView.View()
	if m.Frame.Record != nil && len(m.Frame.Record.Peaks) > 0 {
		info := infoStyle.Render(strings.Join(render.InfoLines(m.Frame.Record), "\n"))
		spectrum = lipgloss.JoinHorizontal(lipgloss.Top, spectrum, info)
	}
	b.WriteString(spectrum)
	b.WriteString("\n")

	b.WriteString(chartTitleStyle.Render(m.Frame.TIC.Layout.Title))
	b.WriteString("\n")
	b.WriteString(m.TICView.View())
	b.WriteString("\n")

	b.WriteString(m.footer())
	return b.String()
}

func (m Model) footer() string {
	var lines []string
	if m.Err != nil {
		lines = append(lines, errorStyle.Render("Error: "+m.Err.Error()))
	} else if m.Status != "" {
		lines = append(lines, dimStyle.Render(m.Status))
	}
	lines = append(lines, m.Help.View(m.Keys))
	return strings.Join(lines, "\n")
}
