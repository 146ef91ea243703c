package render

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHighlightTerminal(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, HighlightTerminal(&buf, "export const x: number = 1;"))
	out := buf.String()
	assert.Contains(t, out, "\x1b[")
	assert.Contains(t, out, "export")
}

func TestHighlightedHTML(t *testing.T) {
	out := HighlightedHTML("const a = \"<b>\";")
	assert.True(t, strings.Contains(out, "<pre"))
	assert.NotContains(t, out, "<b>")
}

func TestFrameAt(t *testing.T) {
	f0 := FrameAt(0)
	assert.Equal(t, loadingMessages[0], f0.Message)
	assert.Equal(t, didYouKnow[0], f0.Fact)
	assert.Equal(t, titleGlyphs[0], f0.Glyph)
	assert.Equal(t, LoadingTitle, f0.Title)

	f := FrameAt(11 * time.Second)
	assert.Equal(t, loadingMessages[2], f.Message)
	assert.Equal(t, didYouKnow[1], f.Fact)
	assert.Equal(t, titleGlyphs[3], f.Glyph)

	wrapped := FrameAt(time.Duration(len(loadingMessages)) * messageInterval)
	assert.Equal(t, loadingMessages[0], wrapped.Message)

	assert.Equal(t, f0, FrameAt(-time.Second))
}
