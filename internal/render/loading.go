package render

import "time"

const (
	messageInterval = 5 * time.Second
	factInterval    = 10 * time.Second
	glyphInterval   = 1500 * time.Millisecond
)

var loadingMessages = []string{
	"🔍 Analyzing provided documentation...",
	"🧠 Understanding API endpoints and data models...",
	"🏗️ Designing the SDK structure...",
	"⚙️ Generating core API client methods...",
	"📝 Creating TypeScript type definitions...",
	"🔗 Integrating request/response handling...",
	"✨ Polishing code for readability...",
	"📖 Writing usage examples...",
	"✅ Running final checks and packaging the SDK...",
	"⏳ Almost there! Just a few more steps to go...",
}

var didYouKnow = []string{
	"💡 Did you know? Type-Scribe AI uses LLMs to infer API behavior.",
	"🌟 SDKs improve developer experience by hiding raw HTTP calls.",
	"💡 TypeScript's static types catch errors before runtime.",
	"🌟 Documentation can come from OpenAPI, Markdown, PDF and more.",
	"💡 The goal: SDK development in one click.",
}

var titleGlyphs = []string{"🧠", "🤖", "⚙️", "✨"}

// LoadingTitle heads the loading indicator.
const LoadingTitle = "Generating your SDK..."

// LoadingHint sets expectations about duration.
const LoadingHint = "This process can take up to 2-3 minutes due to complex AI computations."

// LoadingFrame is what the loading indicator shows at one instant.
type LoadingFrame struct {
	Glyph   string `json:"glyph"`
	Title   string `json:"title"`
	Message string `json:"message"`
	Fact    string `json:"fact"`
	Hint    string `json:"hint"`
}

// FrameAt returns the indicator frame for the time spent loading: the status
// message rotates every 5s, the fact every 10s and the glyph every 1.5s.
func FrameAt(elapsed time.Duration) LoadingFrame {
	if elapsed < 0 {
		elapsed = 0
	}
	return LoadingFrame{
		Glyph:   pick(titleGlyphs, elapsed, glyphInterval),
		Title:   LoadingTitle,
		Message: pick(loadingMessages, elapsed, messageInterval),
		Fact:    pick(didYouKnow, elapsed, factInterval),
		Hint:    LoadingHint,
	}
}

func pick(items []string, elapsed, every time.Duration) string {
	return items[int(elapsed/every)%len(items)]
}
