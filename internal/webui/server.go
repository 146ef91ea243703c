// Package webui serves the browser form: a server-rendered page over one
// form and one submission coordinator, plus a small JSON API.
package webui

import (
	"context"
	"errors"
	"net"
	"strconv"
	"sync"
	"time"

	"github.com/bytedance/sonic"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/rs/zerolog/log"

	"github.com/tensorplex-labs/typescribe/internal/config"
	"github.com/tensorplex-labs/typescribe/internal/render"
	"github.com/tensorplex-labs/typescribe/internal/sdkapi"
	"github.com/tensorplex-labs/typescribe/internal/submission"
)

// Server is a single-user web front end.
type Server struct {
	App    *fiber.App
	config *config.ServerEnvConfig

	coord *submission.Coordinator

	formMu sync.Mutex
	form   *submission.Form

	// displayMu is taken by coordinator listeners; never acquire formMu while holding it.
	displayMu sync.Mutex
	display   *render.Display

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	copyResetDelay time.Duration
	unsubscribe    func()
}

// Option tunes a Server.
type Option func(*Server)

// WithCopyResetDelay changes how long "Copied!" labels stay up.
func WithCopyResetDelay(d time.Duration) Option {
	return func(s *Server) { s.copyResetDelay = d }
}

// NewServer builds the fiber app and registers every route.
func NewServer(serverConfig *config.ServerEnvConfig, api sdkapi.SDKAPIInterface, opts ...Option) *Server {
	if serverConfig == nil {
		serverConfig = &config.ServerEnvConfig{
			Host:      config.DefaultServerHost,
			Port:      config.DefaultServerPort,
			BodyLimit: config.DefaultBodyLimit,
		}
	}

	log.Info().
		Any("serverConfig", serverConfig).
		Msg("Server configuration loaded")

	app := fiber.New(fiber.Config{
		Prefork:               false,
		ErrorHandler:          fiberErrHandler,
		JSONEncoder:           sonic.Marshal,
		JSONDecoder:           sonic.Unmarshal,
		BodyLimit:             serverConfig.BodyLimit,
		DisableStartupMessage: true,
		// form values outlive the request in the shared Form
		Immutable: true,
	})

	app.Use(recover.New())
	app.Use(compress.New(compress.Config{Level: compress.LevelBestSpeed}))

	ctx, cancel := context.WithCancel(context.Background())
	s := &Server{
		App:    app,
		config: serverConfig,
		coord:  submission.NewCoordinator(api),
		form:   submission.NewForm(),
		ctx:    ctx,
		cancel: cancel,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.unsubscribe = s.coord.Subscribe(s.onStateChange)
	s.routes()
	return s
}

func (s *Server) routes() {
	s.App.Get("/", s.handleIndex)
	s.App.Get("/health", s.handleHealth)
	s.App.Post("/generate", s.handleGenerate)
	s.App.Post("/cancel", s.handleCancel)
	s.App.Post("/presets/:name", s.handlePreset)
	s.App.Post("/file/clear", s.handleClearFile)
	s.App.Post("/copy/:block", s.handleCopy)
	s.App.Get("/download", s.handleDownload)

	api := s.App.Group("/api", ZstdMiddleware(nil))
	api.Get("/state", s.handleState)
	api.Post("/generate", s.handleAPIGenerate)
}

// onStateChange keeps the displayed result in step with the coordinator:
// a new submission drops the old result, a success builds a fresh display.
func (s *Server) onStateChange(st submission.State) {
	s.displayMu.Lock()
	defer s.displayMu.Unlock()

	switch st.Phase {
	case submission.PhaseSubmitting, submission.PhaseIdle:
		s.setDisplayLocked(nil)
	case submission.PhaseSucceeded:
		res := st.Result
		opts := []render.Option{render.WithClipboard(&render.MemoryClipboard{})}
		if s.copyResetDelay > 0 {
			opts = append(opts, render.WithResetDelay(s.copyResetDelay))
		}
		s.setDisplayLocked(render.NewDisplay(res.Code, res.UsageExample, render.SuggestedName(res.Message), opts...))
	}
}

func (s *Server) setDisplayLocked(d *render.Display) {
	if s.display != nil {
		s.display.Close()
	}
	s.display = d
}

func (s *Server) currentDisplay() *render.Display {
	s.displayMu.Lock()
	defer s.displayMu.Unlock()
	return s.display
}

func fiberErrHandler(ctx *fiber.Ctx, err error) error {
	// Status code defaults to 500
	code := fiber.StatusInternalServerError

	// Retrieve the custom status code if it's a *fiber.Error
	var e *fiber.Error
	if errors.As(err, &e) {
		code = e.Code
	}

	log.Error().
		Err(err).
		Int("status_code", code).
		Str("path", ctx.Path()).
		Str("method", ctx.Method()).
		Msg("Fiber error handler triggered")

	return ctx.Status(code).JSON(createResponse(map[string]interface{}{}, err))
}

// Addr is the host:port the server listens on.
func (s *Server) Addr() string {
	return net.JoinHostPort(s.config.Host, strconv.Itoa(s.config.Port))
}

// Start listens until Shutdown is called.
func (s *Server) Start() error {
	log.Info().Str("addr", s.Addr()).Msg("web form listening")
	return s.App.Listen(s.Addr())
}

// Shutdown cancels any in-flight request, waits for background submissions
// and stops the listener.
func (s *Server) Shutdown(ctx context.Context) error {
	s.cancel()
	s.coord.Cancel()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		log.Warn().Msg("background submission still running at shutdown")
	}

	if s.unsubscribe != nil {
		s.unsubscribe()
	}
	s.displayMu.Lock()
	s.setDisplayLocked(nil)
	s.displayMu.Unlock()

	return s.App.ShutdownWithContext(ctx)
}
