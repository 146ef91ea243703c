package webui

import (
	"github.com/tensorplex-labs/typescribe/internal/render"
	"github.com/tensorplex-labs/typescribe/internal/submission"
)

const (
	pageTitle   = "Type-Scribe AI"
	pageTagline = "Generate TypeScript SDKs from your API documentation"

	// refreshInterval is how often the page reloads while a request is running.
	refreshInterval = 1
)

// StdResponse represents the standardized response structure
type StdResponse[T any] struct {
	Body  T       `json:"body"`
	Error *string `json:"error,omitempty"`
}

// StateView is the JSON snapshot served by /api/state.
type StateView struct {
	Phase        submission.Phase      `json:"phase"`
	Error        string                `json:"error,omitempty"`
	Message      string                `json:"message,omitempty"`
	Form         submission.FormValues `json:"form"`
	DocURLLocked bool                  `json:"doc_url_locked"`
	ConfigLocked bool                  `json:"config_locked"`
	Loading      *render.LoadingFrame  `json:"loading,omitempty"`
	Blocks       []render.Block        `json:"blocks,omitempty"`
	DownloadName string                `json:"download_name,omitempty"`
	Presets      []submission.Preset   `json:"presets"`
}

// GenerateView is the body of a successful /api/generate call.
type GenerateView struct {
	Code         string `json:"sdk_code"`
	Message      string `json:"message"`
	UsageExample string `json:"sdk_usage_example,omitempty"`
	DownloadName string `json:"download_name"`
}
