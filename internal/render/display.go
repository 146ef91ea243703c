// Package render presents a generation result: code and usage example blocks
// with copy and download actions, syntax highlighting and the loading indicator.
package render

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// CopiedResetDelay is how long a "Copied!" label stays up after a copy.
const CopiedResetDelay = 2 * time.Second

// ErrNothingToDownload is returned when the display holds no code.
var ErrNothingToDownload = errors.New("no generated code to download")

// BlockKind identifies a copyable block.
type BlockKind string

const (
	BlockCode    BlockKind = "code"
	BlockExample BlockKind = "example"
)

// ParseBlockKind maps a route or key name to a block kind.
func ParseBlockKind(s string) (BlockKind, error) {
	switch BlockKind(s) {
	case BlockCode, BlockExample:
		return BlockKind(s), nil
	}
	return "", fmt.Errorf("unknown block %q", s)
}

// Block is one rendered section of the result.
type Block struct {
	Kind         BlockKind `json:"kind"`
	Title        string    `json:"title"`
	Language     string    `json:"language"`
	Text         string    `json:"text"`
	CopyLabel    string    `json:"copy_label"`
	Copied       bool      `json:"copied"`
	Downloadable bool      `json:"downloadable"`
	DownloadName string    `json:"download_name,omitempty"`
}

// Option tunes a Display.
type Option func(*Display)

// WithClipboard replaces the system clipboard.
func WithClipboard(c Clipboard) Option {
	return func(d *Display) { d.clipboard = c }
}

// WithResetDelay changes how long copied flags stay set.
func WithResetDelay(delay time.Duration) Option {
	return func(d *Display) { d.resetDelay = delay }
}

// WithOnChange registers a callback run whenever a copied flag flips.
func WithOnChange(fn func()) Option {
	return func(d *Display) { d.onChange = fn }
}

// Display renders a generated SDK. The only state it owns is one transient
// "copied" flag per block.
type Display struct {
	code          string
	example       string
	suggestedName string

	clipboard  Clipboard
	resetDelay time.Duration
	onChange   func()

	mu     sync.Mutex
	copied map[BlockKind]bool
	timers map[BlockKind]*time.Timer
	gen    map[BlockKind]int
}

// NewDisplay builds a display for code and an optional usage example.
// suggestedName feeds the download file name.
func NewDisplay(code, usageExample, suggestedName string, opts ...Option) *Display {
	d := &Display{
		code:          code,
		example:       usageExample,
		suggestedName: suggestedName,
		clipboard:     SystemClipboard{},
		resetDelay:    CopiedResetDelay,
		copied:        make(map[BlockKind]bool),
		timers:        make(map[BlockKind]*time.Timer),
		gen:           make(map[BlockKind]int),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Empty reports whether there is nothing to render.
func (d *Display) Empty() bool {
	return d == nil || d.code == ""
}

// HasExample reports whether the usage example block is shown.
func (d *Display) HasExample() bool {
	return !d.Empty() && d.example != ""
}

// Text returns the literal text of a block.
func (d *Display) Text(kind BlockKind) string {
	if d.Empty() {
		return ""
	}
	switch kind {
	case BlockCode:
		return d.code
	case BlockExample:
		return d.example
	}
	return ""
}

// Blocks returns the sections to render: none when there is no code, the
// code block, and the example block only when an example is present.
func (d *Display) Blocks() []Block {
	if d.Empty() {
		return nil
	}
	blocks := []Block{{
		Kind:         BlockCode,
		Title:        "Generated SDK Code",
		Language:     Language,
		Text:         d.code,
		CopyLabel:    d.CopyLabel(BlockCode),
		Copied:       d.Copied(BlockCode),
		Downloadable: true,
		DownloadName: d.DownloadName(),
	}}
	if d.HasExample() {
		blocks = append(blocks, Block{
			Kind:      BlockExample,
			Title:     "SDK Usage Example",
			Language:  Language,
			Text:      d.example,
			CopyLabel: d.CopyLabel(BlockExample),
			Copied:    d.Copied(BlockExample),
		})
	}
	return blocks
}

// Copy writes the block's literal text to the clipboard and raises its
// copied flag until the reset delay passes.
func (d *Display) Copy(kind BlockKind) error {
	text := d.Text(kind)
	if text == "" {
		return fmt.Errorf("nothing to copy for block %q", kind)
	}
	if err := d.clipboard.WriteAll(text); err != nil {
		return fmt.Errorf("copy %s: %w", kind, err)
	}

	d.mu.Lock()
	d.copied[kind] = true
	if t, ok := d.timers[kind]; ok {
		t.Stop()
	}
	d.gen[kind]++
	gen := d.gen[kind]
	d.timers[kind] = time.AfterFunc(d.resetDelay, func() { d.reset(kind, gen) })
	d.mu.Unlock()

	log.Debug().Str("block", string(kind)).Int("bytes", len(text)).Msg("copied to clipboard")
	d.changed()
	return nil
}

// reset lowers the flag unless a later copy re-armed it.
func (d *Display) reset(kind BlockKind, gen int) {
	d.mu.Lock()
	if d.gen[kind] != gen {
		d.mu.Unlock()
		return
	}
	d.copied[kind] = false
	delete(d.timers, kind)
	d.mu.Unlock()
	d.changed()
}

func (d *Display) changed() {
	if d.onChange != nil {
		d.onChange()
	}
}

// Copied reports the transient copied flag of a block.
func (d *Display) Copied(kind BlockKind) bool {
	if d == nil {
		return false
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.copied[kind]
}

// CopyLabel is the button text of a block's copy action.
func (d *Display) CopyLabel(kind BlockKind) string {
	if d.Copied(kind) {
		return "Copied!"
	}
	if kind == BlockExample {
		return "Copy Example"
	}
	return "Copy Code"
}

// DownloadName is the file name of the code download.
func (d *Display) DownloadName() string {
	return DownloadFileName(d.suggestedName)
}

// Download writes the code to dir and returns the file path.
func (d *Display) Download(dir string) (string, error) {
	if d.Empty() {
		return "", ErrNothingToDownload
	}
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create download dir: %w", err)
	}
	name := d.DownloadName()
	if filepath.Base(name) != name {
		return "", fmt.Errorf("invalid download name %q", name)
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(d.code), 0o644); err != nil {
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	log.Info().Str("path", path).Msg("sdk downloaded")
	return path, nil
}

// Close stops pending reset timers.
func (d *Display) Close() {
	if d == nil {
		return
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	for kind, t := range d.timers {
		t.Stop()
		delete(d.timers, kind)
	}
}
