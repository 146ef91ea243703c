package tui

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tensorplex-labs/typescribe/internal/render"
	"github.com/tensorplex-labs/typescribe/internal/sdkapi"
	"github.com/tensorplex-labs/typescribe/internal/submission"
)

type stubAPI struct {
	calls int32
	last  atomic.Value
	fn    func(ctx context.Context) (sdkapi.GenerationResult, error)
}

func (s *stubAPI) Generate(ctx context.Context, _ sdkapi.SDKConfig, src sdkapi.DocumentationSource) (sdkapi.GenerationResult, error) {
	atomic.AddInt32(&s.calls, 1)
	s.last.Store(src)
	return s.fn(ctx)
}

func weather(context.Context) (sdkapi.GenerationResult, error) {
	return sdkapi.GenerationResult{
		Code:         "export class WeatherSdk {}",
		Message:      "Done. SDK Name: Weather",
		UsageExample: "new WeatherSdk()",
	}, nil
}

func newTestModel(t *testing.T, fn func(ctx context.Context) (sdkapi.GenerationResult, error)) (*Model, *stubAPI, *render.MemoryClipboard) {
	t.Helper()
	api := &stubAPI{fn: fn}
	cb := &render.MemoryClipboard{}
	m := New(context.Background(), api, Options{OutDir: t.TempDir(), NoColor: true, Clipboard: cb})
	t.Cleanup(m.closeDisplay)
	return m, api, cb
}

func key(t tea.KeyType) tea.KeyMsg { return tea.KeyMsg{Type: t} }

func typeText(m *Model, s string) {
	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)})
}

// drain runs cmd and feeds any settled submission back into the model.
func drain(m *Model, cmd tea.Cmd) {
	if cmd == nil {
		return
	}
	switch msg := cmd().(type) {
	case tea.BatchMsg:
		for _, c := range msg {
			drain(m, c)
		}
	case settledMsg:
		m.Update(msg)
	}
}

func fill(m *Model) {
	typeText(m, "WeatherSdk")
	m.Update(key(tea.KeyTab))
	m.Update(key(tea.KeyTab))
	typeText(m, "https://api.weather.example/v1")
	m.Update(key(tea.KeyTab))
	typeText(m, "https://docs.weather.example")
}

func TestModel_TypingUpdatesForm(t *testing.T) {
	m, _, _ := newTestModel(t, weather)
	assert.Equal(t, submission.DefaultVersion, m.inputs[inputVersion].Value())

	fill(m)
	v := m.form.Snapshot()
	assert.Equal(t, "WeatherSdk", v.SDKName)
	assert.Equal(t, "1.0.0", v.Version)
	assert.Equal(t, "https://api.weather.example/v1", v.BaseURL)
	assert.Equal(t, "https://docs.weather.example", v.DocURL)
	assert.Equal(t, inputDocURL, m.focus)
}

func TestModel_SubmitSuccess(t *testing.T) {
	m, api, cb := newTestModel(t, weather)
	fill(m)

	_, cmd := m.Update(key(tea.KeyEnter))
	drain(m, cmd)

	assert.EqualValues(t, 1, atomic.LoadInt32(&api.calls))
	require.False(t, m.display.Empty())
	assert.Equal(t, focusResult, m.focus)
	assert.Contains(t, m.View(), "Generated SDK Code")
	assert.Contains(t, m.View(), "SDK Usage Example")
	assert.Contains(t, m.View(), "Done. SDK Name: Weather")

	_, cmd = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'c'}})
	assert.NotNil(t, cmd, "a tick re-renders the reverted label")
	assert.Equal(t, "export class WeatherSdk {}", cb.Text())
	assert.True(t, m.display.Copied(render.BlockCode))
	assert.Contains(t, m.View(), "Copied!")

	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'e'}})
	assert.Equal(t, "new WeatherSdk()", cb.Text())

	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'d'}})
	b, err := os.ReadFile(filepath.Join(m.opts.OutDir, "weather-sdk.ts"))
	require.NoError(t, err)
	assert.Equal(t, "export class WeatherSdk {}", string(b))
}

func TestModel_ValidationNeverCallsBackend(t *testing.T) {
	m, api, _ := newTestModel(t, weather)

	_, cmd := m.Update(key(tea.KeyEnter))
	drain(m, cmd)

	assert.Zero(t, atomic.LoadInt32(&api.calls))
	assert.Equal(t, submission.PhaseFailed, m.coord.State().Phase)
	assert.Contains(t, m.View(), "Please fill in all SDK configuration fields.")
	assert.True(t, m.display.Empty())
}

func TestModel_FileSelectionClearsURL(t *testing.T) {
	m, api, _ := newTestModel(t, weather)
	fill(m)

	path := filepath.Join(t.TempDir(), "openapi.yaml")
	require.NoError(t, os.WriteFile(path, []byte("openapi: 3.0.0"), 0o600))

	m.Update(key(tea.KeyTab))
	require.Equal(t, inputDocFile, m.focus)
	typeText(m, path)
	m.Update(key(tea.KeyEnter))

	assert.True(t, m.form.HasFile())
	assert.Empty(t, m.form.Snapshot().DocURL)
	assert.Empty(t, m.inputs[inputDocURL].Value())
	assert.True(t, m.locked(inputDocURL))

	// the url input ignores typing while a file is selected
	m.Update(key(tea.KeyShiftTab))
	typeText(m, "https://ignored.example")
	assert.Empty(t, m.form.Snapshot().DocURL)

	_, cmd := m.Update(key(tea.KeyEnter))
	drain(m, cmd)
	src := api.last.Load().(sdkapi.DocumentationSource)
	assert.Equal(t, sdkapi.SourceFile, src.Kind)
	assert.Equal(t, "openapi.yaml", src.FileName)

	m.Update(key(tea.KeyCtrlX))
	assert.False(t, m.form.HasFile())
	assert.False(t, m.locked(inputDocURL))
}

func TestModel_MissingFileReportsStatus(t *testing.T) {
	m, _, _ := newTestModel(t, weather)
	m.setFocus(inputDocFile)
	typeText(m, filepath.Join(t.TempDir(), "missing.yaml"))
	m.Update(key(tea.KeyEnter))

	assert.False(t, m.form.HasFile())
	assert.Contains(t, m.status, "Could not read")
}

func TestModel_Presets(t *testing.T) {
	m, api, _ := newTestModel(t, weather)

	m.Update(key(tea.KeyCtrlP))
	first := submission.Presets()[0]
	assert.Equal(t, first.SDKName, m.inputs[inputSDKName].Value())
	assert.Equal(t, first.DocURL, m.inputs[inputDocURL].Value())
	assert.Equal(t, first.SDKName, m.form.Snapshot().SDKName)

	m.Update(key(tea.KeyCtrlP))
	assert.Equal(t, submission.Presets()[1].SDKName, m.form.Snapshot().SDKName)
	assert.Zero(t, atomic.LoadInt32(&api.calls))
}

func TestModel_LockedAndCancelWhileSubmitting(t *testing.T) {
	started := make(chan struct{})
	m, _, _ := newTestModel(t, func(ctx context.Context) (sdkapi.GenerationResult, error) {
		close(started)
		<-ctx.Done()
		return sdkapi.GenerationResult{}, &sdkapi.GenerateError{Err: ctx.Err()}
	})
	fill(m)

	_, cmd := m.Update(key(tea.KeyEnter))
	require.NotNil(t, cmd)
	<-started

	assert.True(t, m.busy())
	assert.Contains(t, m.View(), render.LoadingTitle)
	typeText(m, "more")
	assert.Equal(t, "https://docs.weather.example", m.form.Snapshot().DocURL, "inputs are locked")

	m.Update(key(tea.KeyEsc))
	done := make(chan struct{})
	go func() {
		defer close(done)
		drain(m, cmd)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("submission did not settle after cancel")
	}

	st := m.coord.State()
	assert.Equal(t, submission.PhaseFailed, st.Phase)
	assert.Contains(t, st.ErrorMessage(), "Failed to generate SDK: ")
}

func TestModel_Quit(t *testing.T) {
	m, _, _ := newTestModel(t, weather)
	_, cmd := m.Update(key(tea.KeyCtrlC))
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}
