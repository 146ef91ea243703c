package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog/log"

	"github.com/tensorplex-labs/typescribe/internal/render"
	"github.com/tensorplex-labs/typescribe/internal/submission"
)

var (
	accent = lipgloss.Color("#7C3AED")

	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(accent)
	taglineStyle = lipgloss.NewStyle().Faint(true)
	labelStyle   = lipgloss.NewStyle().Bold(true)
	lockedStyle  = lipgloss.NewStyle().Faint(true)
	spinnerStyle = lipgloss.NewStyle().Foreground(accent)
	helpStyle    = lipgloss.NewStyle().Faint(true)
	statusStyle  = lipgloss.NewStyle().Italic(true)

	panelStyle   = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	errorStyle   = panelStyle.BorderForeground(lipgloss.Color("#DC2626")).Foreground(lipgloss.Color("#FCA5A5"))
	successStyle = panelStyle.BorderForeground(lipgloss.Color("#16A34A")).Foreground(lipgloss.Color("#86EFAC"))
	loadingStyle = panelStyle.BorderForeground(accent)
	blockStyle   = lipgloss.NewStyle().Bold(true).Underline(true)
)

var inputLabels = [inputCount]string{
	inputSDKName: "SDK Name",
	inputVersion: "Version",
	inputBaseURL: "API Base URL",
	inputDocURL:  "Documentation URL",
	inputDocFile: "Or documentation file",
}

func (m *Model) View() string {
	var b strings.Builder
	st := m.coord.State()

	b.WriteString(titleStyle.Render("Type-Scribe AI"))
	b.WriteString("\n")
	b.WriteString(taglineStyle.Render("Generate TypeScript SDKs from your API documentation"))
	b.WriteString("\n\n")

	if m.busy() {
		b.WriteString(m.loadingView(st))
		b.WriteString("\n")
	}
	if msg := st.ErrorMessage(); msg != "" {
		b.WriteString(errorStyle.Render(msg))
		b.WriteString("\n")
	}
	if st.Phase == submission.PhaseSucceeded && st.Result != nil && st.Result.Message != "" {
		b.WriteString(successStyle.Render(st.Result.Message))
		b.WriteString("\n")
	}

	for i := range m.inputs {
		label := inputLabels[i]
		if i == inputDocFile && m.form.HasFile() {
			label += " (" + m.form.Snapshot().FileName + " selected, ctrl+x to remove)"
		}
		if m.locked(i) {
			b.WriteString(lockedStyle.Render(label + " 🔒"))
		} else {
			b.WriteString(labelStyle.Render(label))
		}
		b.WriteString("\n")
		b.WriteString(m.inputs[i].View())
		b.WriteString("\n")
	}

	if !m.display.Empty() {
		b.WriteString("\n")
		b.WriteString(m.resultView())
	}

	if m.status != "" {
		b.WriteString("\n")
		b.WriteString(statusStyle.Render(m.status))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(helpStyle.Render(m.help()))
	b.WriteString("\n")
	return b.String()
}

func (m *Model) loadingView(st submission.State) string {
	frame := render.FrameAt(st.Elapsed(m.now()))
	lines := []string{
		m.spinner.View() + " " + frame.Glyph + " " + frame.Title,
		frame.Message,
		frame.Fact,
		helpStyle.Render(frame.Hint),
	}
	return loadingStyle.Render(strings.Join(lines, "\n"))
}

func (m *Model) resultView() string {
	var b strings.Builder
	for _, blk := range m.display.Blocks() {
		header := blk.Title + "  [" + blk.CopyLabel + "]"
		if blk.Downloadable {
			header += "  [Download " + blk.DownloadName + "]"
		}
		b.WriteString(blockStyle.Render(header))
		b.WriteString("\n")
		b.WriteString(m.highlight(blk.Text))
		b.WriteString("\n\n")
	}
	return b.String()
}

func (m *Model) highlight(code string) string {
	if m.opts.NoColor {
		return code
	}
	var b strings.Builder
	if err := render.HighlightTerminal(&b, code); err != nil {
		log.Debug().Err(err).Msg("highlight failed, showing plain text")
		return code
	}
	return b.String()
}

func (m *Model) help() string {
	switch {
	case m.busy():
		return "esc cancel • ctrl+c quit"
	case m.focus == focusResult:
		keys := "c copy code"
		if m.display.HasExample() {
			keys += " • e copy example"
		}
		return keys + " • d download • tab form • ctrl+c quit"
	}
	return "tab/shift+tab move • enter submit • ctrl+p preset • ctrl+x clear file • ctrl+c quit"
}
