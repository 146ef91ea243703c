package render

import (
	"strings"
	"unicode"
)

const (
	sdkNameMarker = "SDK Name: "

	// PlaceholderName is used when the backend message carries no SDK name.
	PlaceholderName = "generated-sdk"

	// DownloadExtension is appended to every downloaded SDK file.
	DownloadExtension = ".ts"
)

// SuggestedName scrapes the SDK name from the backend's free-text message:
// the first whitespace-delimited token after "SDK Name: ", or PlaceholderName.
func SuggestedName(message string) string {
	_, after, found := strings.Cut(message, sdkNameMarker)
	if !found {
		return PlaceholderName
	}
	fields := strings.Fields(after)
	if len(fields) == 0 {
		return PlaceholderName
	}
	return fields[0]
}

// DownloadFileName derives "<name>-sdk.ts" from a suggested name: lower-cased,
// whitespace removed, path separators and ".." dropped so the result is a
// single file name, an existing "sdk" suffix folded into the one appended.
func DownloadFileName(suggested string) string {
	name := strings.Map(func(r rune) rune {
		switch {
		case unicode.IsSpace(r):
			return -1
		case r == '/' || r == '\\':
			return '-'
		}
		return unicode.ToLower(r)
	}, suggested)

	for strings.Contains(name, "..") {
		name = strings.ReplaceAll(name, "..", "")
	}
	name = strings.TrimSuffix(name, "sdk")
	name = strings.Trim(name, "-_.")
	if name == "" {
		name = strings.TrimSuffix(PlaceholderName, "-sdk")
	}
	return name + "-sdk" + DownloadExtension
}
