package submission

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/tensorplex-labs/typescribe/internal/sdkapi"
)

type stubAPI struct {
	calls int32
	fn    func(ctx context.Context, cfg sdkapi.SDKConfig, src sdkapi.DocumentationSource) (sdkapi.GenerationResult, error)
}

func (s *stubAPI) Generate(ctx context.Context, cfg sdkapi.SDKConfig, src sdkapi.DocumentationSource) (sdkapi.GenerationResult, error) {
	atomic.AddInt32(&s.calls, 1)
	return s.fn(ctx, cfg, src)
}

type CoordinatorTestSuite struct {
	suite.Suite
	api    *stubAPI
	coord  *Coordinator
	form   *Form
	phases []Phase
	mu     sync.Mutex
}

func (s *CoordinatorTestSuite) SetupTest() {
	s.api = &stubAPI{fn: func(context.Context, sdkapi.SDKConfig, sdkapi.DocumentationSource) (sdkapi.GenerationResult, error) {
		return sdkapi.GenerationResult{Code: "export class A {}", Message: "ok"}, nil
	}}
	s.coord = NewCoordinator(s.api)
	s.form = filledForm()
	s.phases = nil
	s.coord.Subscribe(func(st State) {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.phases = append(s.phases, st.Phase)
	})
}

func (s *CoordinatorTestSuite) observed() []Phase {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Phase(nil), s.phases...)
}

func (s *CoordinatorTestSuite) TestStartsIdle() {
	st := s.coord.State()
	s.Equal(PhaseIdle, st.Phase)
	s.False(st.Loading())
	s.Empty(st.ErrorMessage())
	s.Nil(st.Result)
}

func (s *CoordinatorTestSuite) TestSuccess() {
	st, err := s.coord.Submit(context.Background(), s.form)
	s.Require().NoError(err)
	s.Equal(PhaseSucceeded, st.Phase)
	s.Require().NotNil(st.Result)
	s.Equal("export class A {}", st.Result.Code)
	s.Nil(st.Err)
	s.Equal([]Phase{PhaseSubmitting, PhaseSucceeded}, s.observed())
}

func (s *CoordinatorTestSuite) TestValidationNeverCallsAPI() {
	for _, mutate := range []func(*Form){
		func(f *Form) { f.SetSDKName("") },
		func(f *Form) { f.SetVersion("") },
		func(f *Form) { f.SetBaseURL("") },
		func(f *Form) { f.SetDocURL("") },
	} {
		f := filledForm()
		mutate(f)
		st, err := s.coord.Submit(context.Background(), f)
		s.Require().NoError(err)
		s.Equal(PhaseFailed, st.Phase)
		s.NotEmpty(st.ErrorMessage())
		var ve *ValidationError
		s.ErrorAs(st.Err, &ve)
	}
	s.EqualValues(0, atomic.LoadInt32(&s.api.calls))
}

func (s *CoordinatorTestSuite) TestTransportErrorSettlesFailed() {
	s.api.fn = func(context.Context, sdkapi.SDKConfig, sdkapi.DocumentationSource) (sdkapi.GenerationResult, error) {
		return sdkapi.GenerationResult{}, &sdkapi.GenerateError{Err: errors.New("connection refused")}
	}
	st, err := s.coord.Submit(context.Background(), s.form)
	s.Require().NoError(err)
	s.Equal(PhaseFailed, st.Phase)
	s.Equal("Failed to generate SDK: connection refused", st.ErrorMessage())
	s.Nil(st.Result)
}

func (s *CoordinatorTestSuite) TestNewSubmissionDropsPreviousResultAndError() {
	_, err := s.coord.Submit(context.Background(), s.form)
	s.Require().NoError(err)

	release := make(chan struct{})
	seen := make(chan State, 1)
	s.api.fn = func(context.Context, sdkapi.SDKConfig, sdkapi.DocumentationSource) (sdkapi.GenerationResult, error) {
		seen <- s.coord.State()
		<-release
		return sdkapi.GenerationResult{}, errors.New("boom")
	}

	done := make(chan State, 1)
	go func() {
		st, _ := s.coord.Submit(context.Background(), s.form)
		done <- st
	}()

	mid := <-seen
	s.Equal(PhaseSubmitting, mid.Phase)
	s.Nil(mid.Result, "stale result is never visible while submitting")
	s.Nil(mid.Err)
	close(release)

	final := <-done
	s.Equal(PhaseFailed, final.Phase)
	s.Nil(final.Result, "error and result are never both set")
}

func (s *CoordinatorTestSuite) TestSingleFlight() {
	release := make(chan struct{})
	started := make(chan struct{})
	s.api.fn = func(context.Context, sdkapi.SDKConfig, sdkapi.DocumentationSource) (sdkapi.GenerationResult, error) {
		close(started)
		<-release
		return sdkapi.GenerationResult{Code: "c"}, nil
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = s.coord.Submit(context.Background(), s.form)
	}()
	<-started

	st, err := s.coord.Submit(context.Background(), s.form)
	s.ErrorIs(err, ErrSubmissionInFlight)
	s.Equal(PhaseSubmitting, st.Phase)
	s.ErrorIs(s.coord.ApplyPreset(s.form, "petstore"), ErrSubmissionInFlight)
	s.ErrorIs(s.coord.Reset(), ErrSubmissionInFlight)

	close(release)
	<-done
	s.EqualValues(1, atomic.LoadInt32(&s.api.calls))
	s.Equal(PhaseSucceeded, s.coord.State().Phase)
}

func (s *CoordinatorTestSuite) TestStartClaimsGuardBeforeReturning() {
	release := make(chan struct{})
	s.api.fn = func(context.Context, sdkapi.SDKConfig, sdkapi.DocumentationSource) (sdkapi.GenerationResult, error) {
		<-release
		return sdkapi.GenerationResult{Code: "c"}, nil
	}

	done, err := s.coord.Start(context.Background(), s.form)
	s.Require().NoError(err)
	s.True(s.coord.Busy())

	_, err = s.coord.Start(context.Background(), s.form)
	s.ErrorIs(err, ErrSubmissionInFlight)

	close(release)
	st := <-done
	s.Equal(PhaseSucceeded, st.Phase)
	s.False(s.coord.Busy())
}

func (s *CoordinatorTestSuite) TestCancel() {
	s.False(s.coord.Cancel(), "nothing to cancel")

	started := make(chan struct{})
	s.api.fn = func(ctx context.Context, _ sdkapi.SDKConfig, _ sdkapi.DocumentationSource) (sdkapi.GenerationResult, error) {
		close(started)
		<-ctx.Done()
		return sdkapi.GenerationResult{}, &sdkapi.GenerateError{Err: ctx.Err()}
	}

	done := make(chan State, 1)
	go func() {
		st, _ := s.coord.Submit(context.Background(), s.form)
		done <- st
	}()
	<-started
	s.True(s.coord.Cancel())

	select {
	case st := <-done:
		s.Equal(PhaseFailed, st.Phase)
		s.ErrorIs(st.Err, context.Canceled)
	case <-time.After(2 * time.Second):
		s.Fail("submission did not settle after cancel")
	}
}

func (s *CoordinatorTestSuite) TestCancelRightAfterStart() {
	s.api.fn = func(ctx context.Context, _ sdkapi.SDKConfig, _ sdkapi.DocumentationSource) (sdkapi.GenerationResult, error) {
		<-ctx.Done()
		return sdkapi.GenerationResult{}, &sdkapi.GenerateError{Err: ctx.Err()}
	}

	done, err := s.coord.Start(context.Background(), s.form)
	s.Require().NoError(err)
	s.True(s.coord.Cancel(), "cancel is registered before Start returns")

	select {
	case st := <-done:
		s.Equal(PhaseFailed, st.Phase)
		s.ErrorIs(st.Err, context.Canceled)
	case <-time.After(2 * time.Second):
		s.Fail("submission did not settle after cancel")
	}
}

func (s *CoordinatorTestSuite) TestStartEntersSubmittingBeforeReturning() {
	f := NewForm()
	f.SetDocFile("README.md", []byte("x"))
	_, err := s.coord.Submit(context.Background(), f)
	s.Require().NoError(err)
	s.Require().Equal(PhaseFailed, s.coord.State().Phase)

	release := make(chan struct{})
	s.api.fn = func(context.Context, sdkapi.SDKConfig, sdkapi.DocumentationSource) (sdkapi.GenerationResult, error) {
		<-release
		return sdkapi.GenerationResult{Code: "c"}, nil
	}

	done, err := s.coord.Start(context.Background(), s.form)
	s.Require().NoError(err)
	s.Equal(PhaseSubmitting, s.coord.State().Phase)

	s.ErrorIs(s.coord.ApplyPreset(s.form, "petstore"), ErrSubmissionInFlight)
	s.Equal(PhaseSubmitting, s.coord.State().Phase, "preset never overwrites the submitting state")
	s.Equal("WeatherSdk", s.form.Snapshot().SDKName)

	close(release)
	s.Equal(PhaseSucceeded, (<-done).Phase)
}

func (s *CoordinatorTestSuite) TestPanicBecomesFailure() {
	s.api.fn = func(context.Context, sdkapi.SDKConfig, sdkapi.DocumentationSource) (sdkapi.GenerationResult, error) {
		panic("kaboom")
	}
	st, err := s.coord.Submit(context.Background(), s.form)
	s.Require().NoError(err)
	s.Equal(PhaseFailed, st.Phase)
	s.Contains(st.ErrorMessage(), "Failed to generate SDK: kaboom")

	_, err = s.coord.Submit(context.Background(), s.form)
	s.NoError(err, "guard released after panic")
}

func (s *CoordinatorTestSuite) TestApplyPreset() {
	f := NewForm()
	f.SetDocFile("README.md", []byte("x"))
	_, err := s.coord.Submit(context.Background(), f)
	s.Require().NoError(err)
	s.Equal(PhaseFailed, s.coord.State().Phase)
	before := atomic.LoadInt32(&s.api.calls)

	s.Require().NoError(s.coord.ApplyPreset(f, "petstore"))
	snap := f.Snapshot()
	s.Equal("PetStoreSdk", snap.SDKName)
	s.Equal("https://petstore3.swagger.io/api/v3/openapi.json", snap.DocURL)
	s.False(snap.HasFile)
	s.Equal(PhaseIdle, s.coord.State().Phase, "error cleared")
	s.Equal(before, atomic.LoadInt32(&s.api.calls), "presets never submit")

	s.ErrorIs(s.coord.ApplyPreset(f, "missing"), ErrUnknownPreset)
}

func (s *CoordinatorTestSuite) TestApplyPresetKeepsResult() {
	_, err := s.coord.Submit(context.Background(), s.form)
	s.Require().NoError(err)
	s.Require().NoError(s.coord.ApplyPreset(s.form, "github"))
	s.Equal(PhaseSucceeded, s.coord.State().Phase)
}

func (s *CoordinatorTestSuite) TestUnsubscribe() {
	var n int32
	unsubscribe := s.coord.Subscribe(func(State) { atomic.AddInt32(&n, 1) })
	_, _ = s.coord.Submit(context.Background(), s.form)
	s.EqualValues(2, atomic.LoadInt32(&n))

	unsubscribe()
	_, _ = s.coord.Submit(context.Background(), s.form)
	s.EqualValues(2, atomic.LoadInt32(&n))
}

func (s *CoordinatorTestSuite) TestElapsed() {
	now := time.Unix(1000, 0)
	st := submitting(now)
	s.Equal(3*time.Second, st.Elapsed(now.Add(3*time.Second)))
	s.Zero(idle().Elapsed(now))
}

func TestCoordinatorTestSuite(t *testing.T) {
	suite.Run(t, new(CoordinatorTestSuite))
}
