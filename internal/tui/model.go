// Package tui is the terminal front end: a bubbletea form over one
// submission coordinator.
package tui

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog/log"

	"github.com/tensorplex-labs/typescribe/internal/render"
	"github.com/tensorplex-labs/typescribe/internal/sdkapi"
	"github.com/tensorplex-labs/typescribe/internal/submission"
)

// Input positions, in tab order. focusResult is the result pane after the inputs.
const (
	inputSDKName = iota
	inputVersion
	inputBaseURL
	inputDocURL
	inputDocFile
	inputCount

	focusResult = inputCount
)

// Options configure the terminal form.
type Options struct {
	// OutDir receives downloads; empty means the working directory.
	OutDir    string
	NoColor   bool
	Clipboard render.Clipboard
}

type settledMsg struct {
	state submission.State
}

// refreshMsg re-renders once a copied label has had time to revert.
type refreshMsg struct{}

// Model is the bubbletea model of the terminal form.
type Model struct {
	ctx   context.Context
	coord *submission.Coordinator
	form  *submission.Form
	opts  Options

	inputs  []textinput.Model
	focus   int
	spinner spinner.Model

	loadedFile string
	presetIdx  int
	display    *render.Display
	status     string
	now        func() time.Time
}

// New returns a model ready for tea.NewProgram.
func New(ctx context.Context, api sdkapi.SDKAPIInterface, opts Options) *Model {
	if opts.Clipboard == nil {
		opts.Clipboard = render.SystemClipboard{}
	}
	m := &Model{
		ctx:     ctx,
		coord:   submission.NewCoordinator(api),
		form:    submission.NewForm(),
		opts:    opts,
		inputs:  newInputs(),
		spinner: spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(spinnerStyle)),
		now:     time.Now,
	}
	m.loadInputs()
	m.inputs[inputSDKName].Focus()
	return m
}

func newInputs() []textinput.Model {
	placeholders := [inputCount]string{
		inputSDKName: "e.g. WeatherSdk",
		inputVersion: submission.DefaultVersion,
		inputBaseURL: "https://api.example.com/v1",
		inputDocURL:  "https://example.com/openapi.json",
		inputDocFile: "path/to/openapi.yaml",
	}
	inputs := make([]textinput.Model, inputCount)
	for i := range inputs {
		ti := textinput.New()
		ti.Placeholder = placeholders[i]
		ti.Prompt = "› "
		ti.CharLimit = 2048
		ti.Width = 60
		inputs[i] = ti
	}
	return inputs
}

func (m *Model) Init() tea.Cmd {
	return textinput.Blink
}

func (m *Model) busy() bool {
	return m.coord.Busy()
}

// Update handles keys and submission results.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case settledMsg:
		return m.settled(msg.state)

	case spinner.TickMsg:
		if !m.busy() {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case refreshMsg:
		return m, nil
	}

	return m.updateFocused(msg)
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		m.coord.Cancel()
		return m, tea.Quit
	case "esc":
		if m.coord.Cancel() {
			m.status = "Cancelling..."
		}
		return m, nil
	}

	if m.busy() {
		// every input is locked while a request is outstanding
		return m, nil
	}

	switch msg.String() {
	case "tab", "down":
		return m, m.setFocus((m.focus + 1) % m.focusSlots())
	case "shift+tab", "up":
		return m, m.setFocus((m.focus + m.focusSlots() - 1) % m.focusSlots())
	case "ctrl+p":
		return m, m.nextPreset()
	case "ctrl+x":
		m.form.ClearDocFile()
		m.loadedFile = ""
		m.inputs[inputDocFile].SetValue("")
		m.status = "Documentation file removed."
		return m, nil
	case "enter":
		if m.focus == inputDocFile && m.fileNeedsLoading() {
			m.loadFile()
			return m, nil
		}
		return m, m.submit()
	}

	if m.focus == focusResult {
		return m.handleResultKey(msg)
	}
	return m.updateFocused(msg)
}

func (m *Model) handleResultKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "c":
		return m, m.copy(render.BlockCode)
	case "e":
		return m, m.copy(render.BlockExample)
	case "d":
		path, err := m.display.Download(m.opts.OutDir)
		if err != nil {
			m.status = err.Error()
			return m, nil
		}
		m.status = "Saved " + path
	}
	return m, nil
}

// updateFocused forwards msg to the focused input unless it is locked, then
// mirrors the input into the form.
func (m *Model) updateFocused(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.focus >= inputCount || m.locked(m.focus) {
		return m, nil
	}
	var cmd tea.Cmd
	before := m.inputs[m.focus].Value()
	m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
	if after := m.inputs[m.focus].Value(); after != before {
		m.syncInput(m.focus, after)
	}
	return m, cmd
}

func (m *Model) syncInput(i int, v string) {
	switch i {
	case inputSDKName:
		m.form.SetSDKName(v)
	case inputVersion:
		m.form.SetVersion(v)
	case inputBaseURL:
		m.form.SetBaseURL(v)
	case inputDocURL:
		m.form.SetDocURL(v)
		if v != "" {
			m.loadedFile = ""
			m.inputs[inputDocFile].SetValue("")
		}
	}
}

func (m *Model) locked(i int) bool {
	submitting := m.busy()
	if i == inputDocURL {
		return m.form.DocURLLocked(submitting)
	}
	return m.form.ConfigLocked(submitting)
}

func (m *Model) focusSlots() int {
	if m.display.Empty() {
		return inputCount
	}
	return inputCount + 1
}

func (m *Model) setFocus(i int) tea.Cmd {
	m.focus = i
	var cmd tea.Cmd
	for j := range m.inputs {
		if j == i {
			cmd = m.inputs[j].Focus()
			continue
		}
		m.inputs[j].Blur()
	}
	return cmd
}

func (m *Model) fileNeedsLoading() bool {
	path := strings.TrimSpace(m.inputs[inputDocFile].Value())
	return path != "" && path != m.loadedFile
}

// loadFile reads the path typed into the file input and selects it, which
// clears the documentation URL.
func (m *Model) loadFile() {
	path := strings.TrimSpace(m.inputs[inputDocFile].Value())
	data, err := os.ReadFile(path)
	if err != nil {
		m.status = fmt.Sprintf("Could not read %s: %v", path, err)
		return
	}
	m.form.SetDocFile(filepath.Base(path), data)
	m.loadedFile = path
	m.inputs[inputDocURL].SetValue("")
	m.status = fmt.Sprintf("Loaded %s (%d bytes).", filepath.Base(path), len(data))
	log.Debug().Str("path", path).Int("bytes", len(data)).Msg("documentation file selected")
}

func (m *Model) nextPreset() tea.Cmd {
	presets := submission.Presets()
	p := presets[m.presetIdx%len(presets)]
	m.presetIdx++
	if err := m.coord.ApplyPreset(m.form, p.Name); err != nil {
		m.status = err.Error()
		return nil
	}
	m.loadedFile = ""
	m.loadInputs()
	m.status = "Preset: " + p.Description
	return nil
}

// loadInputs copies the form into the inputs.
func (m *Model) loadInputs() {
	v := m.form.Snapshot()
	m.inputs[inputSDKName].SetValue(v.SDKName)
	m.inputs[inputVersion].SetValue(v.Version)
	m.inputs[inputBaseURL].SetValue(v.BaseURL)
	m.inputs[inputDocURL].SetValue(v.DocURL)
	if !v.HasFile {
		m.inputs[inputDocFile].SetValue("")
	}
}

func (m *Model) submit() tea.Cmd {
	if m.fileNeedsLoading() {
		m.loadFile()
	}
	m.closeDisplay()
	m.status = ""

	done, err := m.coord.Start(m.ctx, m.form.Clone())
	if err != nil {
		m.status = err.Error()
		return nil
	}
	m.setFocus(m.focus % inputCount)
	wait := func() tea.Msg {
		return settledMsg{state: <-done}
	}
	return tea.Batch(wait, m.spinner.Tick)
}

func (m *Model) settled(st submission.State) (tea.Model, tea.Cmd) {
	m.status = ""
	if st.Phase != submission.PhaseSucceeded || st.Result == nil {
		if errors.Is(st.Err, context.Canceled) {
			log.Info().Msg("generation cancelled")
		}
		return m, nil
	}
	res := st.Result
	m.display = render.NewDisplay(res.Code, res.UsageExample, render.SuggestedName(res.Message),
		render.WithClipboard(m.opts.Clipboard))
	if m.display.Empty() {
		return m, nil
	}
	return m, m.setFocus(focusResult)
}

func (m *Model) copy(kind render.BlockKind) tea.Cmd {
	if err := m.display.Copy(kind); err != nil {
		m.status = err.Error()
		return nil
	}
	return tea.Tick(render.CopiedResetDelay+100*time.Millisecond, func(time.Time) tea.Msg {
		return refreshMsg{}
	})
}

func (m *Model) closeDisplay() {
	if m.display != nil {
		m.display.Close()
		m.display = nil
	}
}

// Run starts the terminal form and blocks until the user quits.
func Run(ctx context.Context, api sdkapi.SDKAPIInterface, opts Options) error {
	m := New(ctx, api, opts)
	defer m.closeDisplay()

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("run terminal form: %w", err)
	}
	return nil
}
