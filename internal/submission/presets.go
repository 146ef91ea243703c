package submission

import (
	"errors"
	"fmt"
	"sort"
)

// ErrUnknownPreset is returned for a preset name that is not registered.
var ErrUnknownPreset = errors.New("unknown preset")

// Preset prefills the form with a known example API.
type Preset struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	SDKName     string `json:"sdk_name"`
	Version     string `json:"version"`
	BaseURL     string `json:"base_url"`
	DocURL      string `json:"doc_url"`
}

var presets = map[string]Preset{
	"petstore": {
		Name:        "petstore",
		Description: "Swagger Petstore (OpenAPI 3)",
		SDKName:     "PetStoreSdk",
		Version:     "1.0.0",
		BaseURL:     "https://petstore3.swagger.io/api/v3",
		DocURL:      "https://petstore3.swagger.io/api/v3/openapi.json",
	},
	"jsonplaceholder": {
		Name:        "jsonplaceholder",
		Description: "JSONPlaceholder fake REST API",
		SDKName:     "JsonPlaceholderSdk",
		Version:     "1.0.0",
		BaseURL:     "https://jsonplaceholder.typicode.com",
		DocURL:      "https://github.com/typicode/jsonplaceholder/blob/master/README.md",
	},
	"github": {
		Name:        "github",
		Description: "GitHub REST API",
		SDKName:     "GitHubSdk",
		Version:     "2022.11.28",
		BaseURL:     "https://api.github.com",
		DocURL:      "https://raw.githubusercontent.com/github/rest-api-description/main/descriptions/api.github.com/api.github.com.json",
	},
}

// Presets lists the registered presets sorted by name.
func Presets() []Preset {
	out := make([]Preset, 0, len(presets))
	for _, p := range presets {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// LookupPreset returns the preset registered under name.
func LookupPreset(name string) (Preset, error) {
	p, ok := presets[name]
	if !ok {
		return Preset{}, fmt.Errorf("%w: %q", ErrUnknownPreset, name)
	}
	return p, nil
}
