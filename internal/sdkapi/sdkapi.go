// Package sdkapi provides the client for the SDK generation backend.
package sdkapi

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog/log"

	"github.com/tensorplex-labs/typescribe/internal/config"
	"github.com/tensorplex-labs/typescribe/internal/utils/logger"
)

// SDKAPIInterface is the interface for the generation call used by the front ends.
type SDKAPIInterface interface {
	Generate(ctx context.Context, cfg SDKConfig, src DocumentationSource) (GenerationResult, error)
}

// SDKAPI is a REST client wrapper for the generation backend. It makes a
// single attempt per call: no retry, no caching.
type SDKAPI struct {
	client  *resty.Client
	BaseURL string
}

// Option tunes the client.
type Option func(*SDKAPI)

// WithTimeout bounds each request. Zero keeps the transport default.
func WithTimeout(d time.Duration) Option {
	return func(s *SDKAPI) {
		if d > 0 {
			s.client.SetTimeout(d)
		}
	}
}

// WithHTTPClient swaps the underlying transport.
func WithHTTPClient(hc *http.Client) Option {
	return func(s *SDKAPI) {
		s.client = resty.NewWithClient(hc).
			SetBaseURL(s.BaseURL).
			SetJSONMarshaler(sonic.Marshal).
			SetJSONUnmarshaler(sonic.Unmarshal).
			SetLogger(logger.Resty())
	}
}

// NewSDKAPI constructs a client for the configured backend.
func NewSDKAPI(cfg *config.BackendEnvConfig, opts ...Option) (*SDKAPI, error) {
	if cfg == nil || strings.TrimSpace(cfg.BackendURL) == "" {
		return nil, ErrMissingBackendURL
	}

	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BackendURL), "/")
	client := resty.New().
		SetBaseURL(baseURL).
		SetJSONMarshaler(sonic.Marshal).
		SetJSONUnmarshaler(sonic.Unmarshal).
		SetLogger(logger.Resty())

	s := &SDKAPI{
		client:  client,
		BaseURL: baseURL,
	}
	for _, opt := range opts {
		opt(s)
	}

	log.Debug().Str("base_url", baseURL).Msg("sdk api client initialized")
	return s, nil
}

// Generate posts the configuration and documentation source to
// {base}/generate-sdk as multipart/form-data and returns the parsed result.
// Every failure is reported as a *GenerateError.
func (s *SDKAPI) Generate(ctx context.Context, cfg SDKConfig, src DocumentationSource) (GenerationResult, error) {
	if s == nil || s.client == nil || s.BaseURL == "" {
		return GenerationResult{}, ErrMissingBackendURL
	}

	res, err := s.generate(ctx, cfg, src)
	if err != nil {
		log.Error().Err(err).Str("path", generatePath).Str("sdk_name", cfg.SDKName).Msg("generate-sdk failed")
		return GenerationResult{}, &GenerateError{Err: err}
	}
	return res, nil
}

func (s *SDKAPI) generate(ctx context.Context, cfg SDKConfig, src DocumentationSource) (GenerationResult, error) {
	r := s.client.R().
		SetContext(ctx).
		SetHeader("Accept", "application/json").
		SetMultipartFormData(map[string]string{
			fieldSDKName: cfg.SDKName,
			fieldVersion: cfg.Version,
			fieldBaseURL: cfg.BaseURL,
		})

	switch src.Kind {
	case SourceURL:
		r.SetMultipartFormData(map[string]string{fieldDocURL: src.URL})
	case SourceFile:
		r.SetFileReader(fieldDocFile, src.FileName, bytes.NewReader(src.Data))
	default:
		return GenerationResult{}, fmt.Errorf("unsupported documentation source %s", src.Kind)
	}

	log.Debug().
		Str("sdk_name", cfg.SDKName).
		Str("source", src.Kind.String()).
		Msg("posting generate-sdk request")

	resp, err := r.Post(generatePath)
	if err != nil {
		return GenerationResult{}, fmt.Errorf("generate sdk: %w", err)
	}

	if !resp.IsSuccess() {
		log.Error().Int("status", resp.StatusCode()).Str("body", resp.String()).Msg("generate-sdk non-2xx")
		return GenerationResult{}, newBackendError(resp.StatusCode(), resp.Status(), resp.Body())
	}

	var out generateResponse
	if err := sonic.Unmarshal(resp.Body(), &out); err != nil {
		return GenerationResult{}, fmt.Errorf("decode generate-sdk response: %w", err)
	}

	res := GenerationResult{
		Code:    out.SDKCode,
		Message: out.Message,
	}
	if out.SDKUsageExample != nil {
		res.UsageExample = *out.SDKUsageExample
	}
	return res, nil
}

func newBackendError(code int, status string, body []byte) *BackendError {
	var detail any
	if err := sonic.Unmarshal(body, &detail); err != nil || detail == nil {
		detail = unknownErrorBody
	}

	pretty, err := sonic.ConfigStd.MarshalIndent(detail, "", "  ")
	if err != nil {
		pretty = []byte(fmt.Sprint(detail))
	}

	return &BackendError{
		StatusCode: code,
		StatusText: reasonPhrase(code, status),
		Details:    string(pretty),
	}
}

// reasonPhrase keeps the backend's own status text ("418 I'm a teapot" gives
// "I'm a teapot") and falls back to the standard text for the code.
func reasonPhrase(code int, status string) string {
	text := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(status), strconv.Itoa(code)))
	if text == "" {
		return http.StatusText(code)
	}
	return text
}
