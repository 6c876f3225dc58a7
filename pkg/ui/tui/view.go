package tui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/lipgloss"
)

const banner = "IGDM • Instagram DM generator"

// View renders the current phase
func (m Model) View() string {
	sections := []string{logoStyle.Render(banner)}

	switch m.phase {
	case PhaseGenerating:
		sections = append(sections, m.renderProgress())
	case PhaseEditing:
		sections = append(sections, m.renderEditor())
	default:
		sections = append(sections, m.renderReview())
	}

	if m.status != "" {
		sections = append(sections, "  "+statusStyle(m.statusIsErr).Render(m.status))
	}

	if m.phase != PhaseGenerating {
		var keys help.KeyMap = m.keys
		if m.phase == PhaseEditing {
			keys = editKeys{m.keys}
		}
		sections = append(sections, helpStyle.Render(m.help.View(keys)))
	}

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// renderProgress renders the live generation panel
func (m Model) renderProgress() string {
	title := titleStyle.Render(" GENERATING ")

	pct := 0.0
	if m.total > 0 {
		pct = float64(m.done) / float64(m.total)
	}

	lines := []string{
		fmt.Sprintf("%s Generating messages...", m.spinner.View()),
		m.progress.ViewAs(pct),
		stat("Done:", fmt.Sprintf("%d/%d", m.done, m.total)),
	}
	if m.failed > 0 {
		lines = append(lines, fmt.Sprintf("%s %s", statsLabelStyle.Render("Failed:"), errorStyle.Render(fmt.Sprint(m.failed))))
	}
	if m.current != "" {
		lines = append(lines, stat("Last:", m.current))
	}

	return panelStyle.Render(lipgloss.JoinVertical(lipgloss.Left, append([]string{title}, lines...)...))
}

// renderReview renders the results table
func (m Model) renderReview() string {
	title := titleStyle.Render(" RESULTS ")

	saved := warningStyle.Render("unsaved")
	if m.savedPath != "" && !m.dirty {
		saved = successStyle.Render(m.savedPath)
	}
	summary := fmt.Sprintf("%s  %s  %s",
		stat("Rows:", fmt.Sprint(m.rows.Len())),
		stat("Failed:", fmt.Sprint(m.rows.Failed())),
		statsLabelStyle.Render("Export:")+" "+saved,
	)

	body := m.grid.View()
	if m.rows.Len() == 0 {
		body = dimStyle.Render("No rows. Press a to add one.")
	}

	return panelStyle.Render(lipgloss.JoinVertical(lipgloss.Left, title, summary, "", body))
}

// renderEditor renders the cell editor
func (m Model) renderEditor() string {
	title := titleStyle.Render(" EDIT " + m.editColumn + " ")

	who := ""
	if row, err := m.rows.Row(m.editRow); err == nil {
		who = row.Username
	}

	return panelStyle.Render(lipgloss.JoinVertical(lipgloss.Left,
		title,
		stat("Row:", who),
		"",
		m.editor.View(),
	))
}

func stat(label, value string) string {
	return fmt.Sprintf("%s %s", statsLabelStyle.Render(label), statsValueStyle.Render(value))
}
