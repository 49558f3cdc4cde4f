package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/compquiz/internal/game"
	"github.com/verte-zerg/compquiz/internal/levels"
	"github.com/verte-zerg/compquiz/internal/model"
	"github.com/verte-zerg/compquiz/internal/stats"
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#C89A3A"))
	textStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0"))
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	accentStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A"))
	correctStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#52C41A"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	badgeStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#1E1E1E")).Background(lipgloss.Color("#C89A3A")).Padding(0, 1)
	footerStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
)

// View implements tea.Model.
func (m *Model) View() string {
	var body string
	var bindings []key.Binding
	switch m.session.Mode() {
	case game.ModeMenu:
		body = m.viewMenu()
		bindings = []key.Binding{m.keys.Normal, m.keys.Timed, m.keys.MenuOut}
	case game.ModeTimedSetup:
		body = m.viewSetup()
		start := m.keys.Start
		start.SetEnabled(m.session.CanStartTimed())
		bindings = []key.Binding{m.keys.Shorter, m.keys.Longer, m.keys.Toggle, start, m.keys.Back}
	case game.ModePlay:
		body = m.viewPlay()
		bindings = m.playBindings()
	case game.ModeTimedResults:
		body = m.viewResults()
		bindings = []key.Binding{m.keys.Done}
	}
	if m.status != "" {
		body += "\n\n" + errorStyle.Render(m.status)
	}

	content := lipgloss.NewStyle().Width(m.contentWidth()).Render(body)
	footer := footerStyle.Render(m.help.ShortHelpView(append(bindings, m.keys.Quit)))
	if m.width <= 0 || m.height <= 0 {
		return content + "\n\n" + footer
	}
	bodyHeight := maxInt(1, m.height-1)
	return lipgloss.Place(m.width, bodyHeight, lipgloss.Center, lipgloss.Center, content) + "\n" +
		lipgloss.Place(m.width, 1, lipgloss.Center, lipgloss.Center, footer)
}

func (m *Model) contentWidth() int {
	if m.width <= 0 {
		return 72
	}
	return maxInt(20, int(float64(m.width)*0.70))
}

func (m *Model) viewMenu() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Python Comprehension Quiz"))
	b.WriteString("\n\n")
	b.WriteString(textStyle.Render("Select Game Mode"))
	b.WriteString("\n\n")
	b.WriteString(accentStyle.Render("[n]") + " Normal Mode  " + mutedStyle.Render("practice at your own pace"))
	b.WriteString("\n")
	b.WriteString(accentStyle.Render("[t]") + " Timed Mode   " + mutedStyle.Render("answer as many as you can"))
	return b.String()
}

func (m *Model) viewSetup() string {
	cfg := m.session.TimedConfig()
	var b strings.Builder
	b.WriteString(titleStyle.Render("Timed Mode Setup"))
	b.WriteString("\n\n")
	fmt.Fprintf(&b, "Time limit  %s %s\n\n",
		textStyle.Render(fmt.Sprintf("%ds", cfg.TimeLimit)),
		mutedStyle.Render("("+stats.FormatDuration(cfg.TimeLimit)+")"))
	b.WriteString("Levels      ")
	for i, level := range levels.Universe {
		if i > 0 {
			b.WriteString(" ")
		}
		label := fmt.Sprintf("%d", level)
		if cfg.Levels.Contains(level) {
			b.WriteString(badgeStyle.Render(label))
		} else {
			b.WriteString(mutedStyle.Padding(0, 1).Render(label))
		}
	}
	b.WriteString("\n\n")
	if m.session.CanStartTimed() {
		b.WriteString(accentStyle.Render("[enter] Start"))
	} else {
		b.WriteString(mutedStyle.Render("[enter] Start (select at least one level)"))
	}
	return b.String()
}

func (m *Model) viewPlay() string {
	width := m.contentWidth()
	var b strings.Builder
	b.WriteString(m.viewHeader())
	b.WriteString("\n\n")

	q, ok := m.session.Question()
	switch {
	case m.session.Loading():
		b.WriteString(m.spinner.View() + " " + mutedStyle.Render("Loading question..."))
	case m.session.FetchFailed():
		b.WriteString(errorStyle.Render("Error loading question"))
		if !m.session.IsTimed() {
			b.WriteString("\n" + mutedStyle.Render("Pick a level with alt+1-6 to try again."))
		}
	case ok:
		b.WriteString(badgeStyle.Render(fmt.Sprintf("Level %d", q.Level)))
		b.WriteString("\n\n")
		b.WriteString(wrapText(q.Prompt, textStyle, width))
		if len(q.Context) > 0 {
			b.WriteString("\n\n" + mutedStyle.Render("Context:"))
			for _, entry := range q.Context {
				b.WriteString("\n")
				b.WriteString(wrapText(entry.Name+" = "+entry.Value, accentStyle, width))
			}
		}
		b.WriteString("\n\n")
		b.WriteString(m.input.View())
		if m.session.Submitting() {
			b.WriteString("\n" + mutedStyle.Render("Checking..."))
		}
		if v, ok := m.session.Verdict(); ok {
			b.WriteString("\n\n")
			b.WriteString(renderVerdict(v, width))
		}
	}
	if !m.session.IsTimed() {
		b.WriteString("\n\n")
		b.WriteString(m.viewLevelSelector())
	}
	return b.String()
}

func (m *Model) viewHeader() string {
	score, total := m.session.Score(), m.session.Total()
	parts := []string{
		titleStyle.Render("Score") + " " + textStyle.Render(fmt.Sprintf("%d/%d", score, total)),
		mutedStyle.Render(stats.FormatAccuracy(score, total)),
	}
	if timed, ok := m.session.Timed(); ok {
		clock := stats.FormatClock(timed.Remaining)
		style := textStyle
		if timed.Remaining <= 10 {
			style = errorStyle
		}
		parts = append(parts, titleStyle.Render("Time")+" "+style.Render(clock))
	}
	return strings.Join(parts, "   ")
}

func (m *Model) viewLevelSelector() string {
	selected := m.session.SelectedLevel()
	var b strings.Builder
	b.WriteString(mutedStyle.Render("Level "))
	for i, level := range levels.Universe {
		if i > 0 {
			b.WriteString(" ")
		}
		label := fmt.Sprintf("%d", level)
		if level == selected {
			b.WriteString(badgeStyle.Render(label))
		} else {
			b.WriteString(mutedStyle.Padding(0, 1).Render(label))
		}
	}
	return b.String()
}

func renderVerdict(v model.Verdict, width int) string {
	switch {
	case v.Correct:
		return correctStyle.Render("✓ Correct!")
	case v.HasError():
		return errorStyle.Render("✗ Error") + "\n" + wrapText(v.Error, errorStyle, width)
	default:
		var b strings.Builder
		b.WriteString(errorStyle.Render("✗ Incorrect"))
		b.WriteString("\n")
		b.WriteString(wrapText("Expected: "+v.Expected, textStyle, width))
		b.WriteString("\n")
		b.WriteString(wrapText("Got:      "+v.UserResult, textStyle, width))
		return b.String()
	}
}

func (m *Model) playBindings() []key.Binding {
	v, hasVerdict := m.session.Verdict()
	submit := m.keys.Submit
	submit.SetEnabled(m.session.CanSubmit())
	next := m.keys.Next
	next.SetEnabled(hasVerdict && v.Correct)
	retry := m.keys.Retry
	retry.SetEnabled(hasVerdict && !v.Correct)
	if m.session.IsTimed() {
		return []key.Binding{submit, next, retry}
	}
	return []key.Binding{submit, next, retry, m.keys.Switch, m.keys.Menu}
}

func (m *Model) viewResults() string {
	score, total := m.session.Score(), m.session.Total()
	var b strings.Builder
	b.WriteString(titleStyle.Render("Time's Up!"))
	b.WriteString("\n\n")
	fmt.Fprintf(&b, "Final Score  %s\n", textStyle.Render(fmt.Sprintf("%d/%d", score, total)))
	fmt.Fprintf(&b, "Accuracy     %s\n\n", textStyle.Render(stats.FormatAccuracy(score, total)))
	if m.resultsErr != "" {
		b.WriteString(errorStyle.Render(m.resultsErr))
		return b.String()
	}
	var table strings.Builder
	if err := stats.RenderLevelTable(&table, m.results.Levels); err != nil {
		m.logger.Error().Err(err).Msg("failed to render level table")
	}
	if err := stats.RenderAnswerTimes(&table, m.results.Elapsed); err != nil {
		m.logger.Error().Err(err).Msg("failed to render answer times")
	}
	b.WriteString(mutedStyle.Render(strings.TrimRight(table.String(), "\n")))
	return b.String()
}

func lipglossWidth(s string) int {
	return lipgloss.Width(s)
}
