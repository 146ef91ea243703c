// Package submission owns the generation form fields, validates them and
// drives a single generation request through an explicit state machine.
package submission

import (
	"strings"

	"github.com/tensorplex-labs/typescribe/internal/sdkapi"
)

// DefaultVersion prefills the version field of a new form.
const DefaultVersion = "1.0.0"

const (
	msgMissingConfig = "Please fill in all SDK configuration fields."
	msgMissingSource = "Please provide either a documentation URL or upload a file."
)

// ValidationError is a local input problem; it never reaches the network.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// Form holds the mutable field values of one front end. A documentation URL
// and a documentation file are mutually exclusive: setting one clears the other.
// Form is not safe for concurrent use.
type Form struct {
	sdkName string
	version string
	baseURL string
	docURL  string

	fileName string
	fileData []byte
	hasFile  bool
}

// FormValues is a read-only view of a Form.
type FormValues struct {
	SDKName  string `json:"sdk_name"`
	Version  string `json:"version"`
	BaseURL  string `json:"base_url"`
	DocURL   string `json:"doc_url"`
	FileName string `json:"file_name,omitempty"`
	HasFile  bool   `json:"has_file"`
}

// NewForm returns an empty form with the default version.
func NewForm() *Form {
	return &Form{version: DefaultVersion}
}

func (f *Form) SetSDKName(v string) { f.sdkName = v }
func (f *Form) SetVersion(v string) { f.version = v }
func (f *Form) SetBaseURL(v string) { f.baseURL = v }

// SetDocURL sets the documentation URL and drops any selected file.
func (f *Form) SetDocURL(u string) {
	f.docURL = u
	f.ClearDocFile()
}

// SetDocFile selects a documentation file and clears the URL.
func (f *Form) SetDocFile(name string, data []byte) {
	f.fileName = name
	f.fileData = data
	f.hasFile = true
	f.docURL = ""
}

// ClearDocFile drops the selected file, if any.
func (f *Form) ClearDocFile() {
	f.fileName = ""
	f.fileData = nil
	f.hasFile = false
}

// HasFile reports whether a documentation file is selected.
func (f *Form) HasFile() bool { return f.hasFile }

// DocURLLocked reports whether the documentation URL input is disabled:
// a selected file or an in-flight submission each lock it.
func (f *Form) DocURLLocked(submitting bool) bool {
	return f.hasFile || submitting
}

// ConfigLocked reports whether the SDK configuration inputs are disabled.
func (f *Form) ConfigLocked(submitting bool) bool {
	return submitting
}

// Snapshot returns the current field values.
func (f *Form) Snapshot() FormValues {
	return FormValues{
		SDKName:  f.sdkName,
		Version:  f.version,
		BaseURL:  f.baseURL,
		DocURL:   f.docURL,
		FileName: f.fileName,
		HasFile:  f.hasFile,
	}
}

// Validate checks that all configuration fields and one documentation
// source are present.
func (f *Form) Validate() error {
	if blank(f.sdkName) || blank(f.version) || blank(f.baseURL) {
		return &ValidationError{Message: msgMissingConfig}
	}
	if blank(f.docURL) && !f.hasFile {
		return &ValidationError{Message: msgMissingSource}
	}
	return nil
}

// Request validates the form and builds fresh request values from it. A
// selected file wins over a URL.
func (f *Form) Request() (sdkapi.SDKConfig, sdkapi.DocumentationSource, error) {
	if err := f.Validate(); err != nil {
		return sdkapi.SDKConfig{}, sdkapi.DocumentationSource{}, err
	}

	cfg := sdkapi.SDKConfig{
		SDKName: f.sdkName,
		Version: f.version,
		BaseURL: f.baseURL,
	}
	if f.hasFile {
		data := make([]byte, len(f.fileData))
		copy(data, f.fileData)
		return cfg, sdkapi.FileSource(f.fileName, data), nil
	}
	return cfg, sdkapi.URLSource(f.docURL), nil
}

// Clone returns an independent copy, safe to hand to a submission running
// on another goroutine.
func (f *Form) Clone() *Form {
	c := *f
	if f.fileData != nil {
		c.fileData = append([]byte(nil), f.fileData...)
	}
	return &c
}

// apply overwrites the fields from a preset and drops any selected file.
func (f *Form) apply(p Preset) {
	f.sdkName = p.SDKName
	f.version = p.Version
	f.baseURL = p.BaseURL
	f.SetDocURL(p.DocURL)
}

func blank(s string) bool {
	return strings.TrimSpace(s) == ""
}
