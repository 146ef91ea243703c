package submission

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/tensorplex-labs/typescribe/internal/sdkapi"
)

// ErrSubmissionInFlight rejects a submission or mutation while a request is outstanding.
var ErrSubmissionInFlight = errors.New("a generation request is already in progress")

// Coordinator owns the submission state and runs at most one generation
// request at a time.
type Coordinator struct {
	api sdkapi.SDKAPIInterface
	now func() time.Time

	mu        sync.Mutex // protects state, cancel, listeners
	state     State
	cancel    context.CancelFunc
	listeners map[int]func(State)
	nextID    int

	inFlight atomic.Bool
}

// NewCoordinator returns an idle coordinator calling api for each submission.
func NewCoordinator(api sdkapi.SDKAPIInterface) *Coordinator {
	return &Coordinator{
		api:       api,
		now:       time.Now,
		state:     idle(),
		listeners: make(map[int]func(State)),
	}
}

// State returns the current state.
func (c *Coordinator) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Subscribe registers fn for every state change and returns a function that
// removes it. fn runs on the goroutine that changed the state.
func (c *Coordinator) Subscribe(fn func(State)) func() {
	c.mu.Lock()
	defer c.mu.Unlock()
	id := c.nextID
	c.nextID++
	c.listeners[id] = fn
	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		delete(c.listeners, id)
	}
}

// Submit validates the form and, when valid, performs one generation request.
// It blocks until the request settles and returns the settled state. The only
// error it returns is ErrSubmissionInFlight; every other failure is carried in
// the returned state.
func (c *Coordinator) Submit(ctx context.Context, form *Form) (State, error) {
	reqCtx, cancel, ok := c.claim(ctx)
	if !ok {
		return c.State(), ErrSubmissionInFlight
	}
	return c.run(reqCtx, cancel, form), nil
}

// Start is Submit without blocking: the single-flight guard is claimed and
// the state is Submitting before it returns, so Cancel works immediately.
// The request runs on its own goroutine and the settled state is delivered
// on the returned channel.
func (c *Coordinator) Start(ctx context.Context, form *Form) (<-chan State, error) {
	reqCtx, cancel, ok := c.claim(ctx)
	if !ok {
		return nil, ErrSubmissionInFlight
	}
	done := make(chan State, 1)
	go func() {
		done <- c.run(reqCtx, cancel, form)
	}()
	return done, nil
}

// Busy reports whether a request is outstanding.
func (c *Coordinator) Busy() bool {
	return c.inFlight.Load()
}

// claim takes the single-flight guard, registers the request's cancel func
// and enters Submitting in one critical section.
func (c *Coordinator) claim(ctx context.Context) (context.Context, context.CancelFunc, bool) {
	c.mu.Lock()
	if !c.inFlight.CompareAndSwap(false, true) {
		c.mu.Unlock()
		log.Warn().Msg("submission rejected: request already in flight")
		return nil, nil, false
	}
	reqCtx, cancel := context.WithCancel(ctx)
	c.cancel = cancel
	c.state = submitting(c.now())
	st := c.state
	fns := c.listenersLocked()
	c.mu.Unlock()

	notify(fns, st)
	return reqCtx, cancel, true
}

func (c *Coordinator) run(ctx context.Context, cancel context.CancelFunc, form *Form) State {
	defer cancel()

	cfg, src, err := form.Request()
	if err != nil {
		log.Debug().Err(err).Msg("submission failed validation")
		return c.settle(failed(err))
	}

	log.Info().
		Str("sdk_name", cfg.SDKName).
		Str("version", cfg.Version).
		Str("source", src.Kind.String()).
		Msg("submitting generation request")

	res, err := c.call(ctx, cfg, src)
	if err != nil {
		return c.settle(failed(err))
	}

	log.Info().Str("sdk_name", cfg.SDKName).Int("code_bytes", len(res.Code)).Msg("generation succeeded")
	return c.settle(succeeded(res))
}

// call runs the request and turns a panic into an ordinary failure so callers
// only ever see the one error contract.
func (c *Coordinator) call(ctx context.Context, cfg sdkapi.SDKConfig, src sdkapi.DocumentationSource) (res sdkapi.GenerationResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Msg("generation request panicked")
			err = &sdkapi.GenerateError{Err: fmt.Errorf("%v", r)}
		}
	}()
	return c.api.Generate(ctx, cfg, src)
}

// Cancel aborts the in-flight request, if any. The submission then settles
// as failed with the cancellation error.
func (c *Coordinator) Cancel() bool {
	c.mu.Lock()
	cancel := c.cancel
	c.mu.Unlock()
	if cancel == nil || !c.inFlight.Load() {
		return false
	}
	log.Info().Msg("cancelling in-flight generation request")
	cancel()
	return true
}

// ApplyPreset overwrites the form from the named preset, clears any file and
// any displayed error. It never submits.
func (c *Coordinator) ApplyPreset(form *Form, name string) error {
	p, err := LookupPreset(name)
	if err != nil {
		return err
	}

	c.mu.Lock()
	if c.inFlight.Load() {
		c.mu.Unlock()
		return ErrSubmissionInFlight
	}
	form.apply(p)
	var fns []func(State)
	clearErr := c.state.Phase == PhaseFailed
	if clearErr {
		c.state = idle()
		fns = c.listenersLocked()
	}
	c.mu.Unlock()

	notify(fns, idle())
	log.Debug().Str("preset", name).Msg("preset applied")
	return nil
}

// Reset returns to idle, dropping any result or error.
func (c *Coordinator) Reset() error {
	c.mu.Lock()
	if c.inFlight.Load() {
		c.mu.Unlock()
		return ErrSubmissionInFlight
	}
	c.state = idle()
	fns := c.listenersLocked()
	c.mu.Unlock()

	notify(fns, idle())
	return nil
}

// settle records the outcome and releases the single-flight guard before
// listeners run, so a listener may start the next submission.
func (c *Coordinator) settle(s State) State {
	c.mu.Lock()
	c.cancel = nil
	c.state = s
	fns := c.listenersLocked()
	c.inFlight.Store(false)
	c.mu.Unlock()

	notify(fns, s)
	return s
}

func (c *Coordinator) listenersLocked() []func(State) {
	fns := make([]func(State), 0, len(c.listeners))
	for _, fn := range c.listeners {
		fns = append(fns, fn)
	}
	return fns
}

func notify(fns []func(State), s State) {
	for _, fn := range fns {
		fn(s)
	}
}
