package sdkapi

import "fmt"

// SDKConfig is the per-submission SDK configuration. All fields are required;
// URL well-formedness is left to the backend.
type SDKConfig struct {
	SDKName string `json:"sdk_name"`
	Version string `json:"version"`
	BaseURL string `json:"base_url"`
}

// SourceKind tags a DocumentationSource.
type SourceKind int

const (
	SourceURL SourceKind = iota + 1
	SourceFile
)

func (k SourceKind) String() string {
	switch k {
	case SourceURL:
		return "url"
	case SourceFile:
		return "file"
	}
	return fmt.Sprintf("SourceKind(%d)", int(k))
}

// DocumentationSource is exactly one of a documentation URL or an uploaded
// documentation file.
type DocumentationSource struct {
	Kind     SourceKind
	URL      string
	FileName string
	Data     []byte
}

// URLSource builds a URL documentation source.
func URLSource(u string) DocumentationSource {
	return DocumentationSource{Kind: SourceURL, URL: u}
}

// FileSource builds a file documentation source. The data is not copied.
func FileSource(name string, data []byte) DocumentationSource {
	return DocumentationSource{Kind: SourceFile, FileName: name, Data: data}
}

// GenerationResult is what the backend returns on success.
type GenerationResult struct {
	Code         string `json:"sdk_code"`
	Message      string `json:"message"`
	UsageExample string `json:"sdk_usage_example,omitempty"`
}

// ----------------------------- Wire Types -----------------------------

const (
	fieldSDKName = "sdk_name"
	fieldVersion = "version"
	fieldBaseURL = "base_url"
	fieldDocURL  = "doc_url"
	fieldDocFile = "doc_file"

	generatePath = "/generate-sdk"
)

type generateResponse struct {
	SDKCode         string  `json:"sdk_code"`
	Message         string  `json:"message"`
	SDKUsageExample *string `json:"sdk_usage_example,omitempty"`
}

// unknownErrorBody stands in for an error body that is not JSON.
var unknownErrorBody = map[string]string{"detail": "Unknown error"}
