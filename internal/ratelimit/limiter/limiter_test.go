package limiter

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"inkwell/internal/ratelimit/limiter/mocks"
	"inkwell/internal/ratelimit/models"
	"inkwell/internal/sharedstore"
	dErrors "inkwell/pkg/domain-errors"
	"inkwell/pkg/platform/circuit"
	"inkwell/pkg/platform/tracer"
	"inkwell/pkg/platform/tracer/tracertest"
	"inkwell/pkg/testutil"
)

// LimiterSuite tests sliding-window admission.
//
// Justification: the limiter is the only thing between a credential-stuffing
// script and the login handler. "Exactly max admitted per window" and
// "store outage never takes the API down" are the two contracts checked here.
type LimiterSuite struct {
	suite.Suite
	store   *sharedstore.MemoryStore
	limiter *Limiter
	now     time.Time
}

func TestLimiterSuite(t *testing.T) {
	suite.Run(t, new(LimiterSuite))
}

func (s *LimiterSuite) SetupTest() {
	s.now = time.Unix(1_700_000_000, 0)
	s.store = sharedstore.NewMemoryStore(sharedstore.WithClock(func() time.Time { return s.now }))
	var err error
	s.limiter, err = New(s.store, WithLogger(slog.New(slog.DiscardHandler)))
	s.Require().NoError(err)
}

func (s *LimiterSuite) admit(scope models.Scope, id string, limit models.Limit) *models.Result {
	res, err := s.limiter.Admit(context.Background(), scope, id, limit)
	s.Require().NoError(err)
	return res
}

// =============================================================================
// Window arithmetic
// =============================================================================

func (s *LimiterSuite) TestExactlyMaxAdmitted() {
	limit := models.Limit{Window: 15 * time.Minute, Max: 5}

	for i := range 5 {
		res := s.admit(models.ScopeAuth, "198.51.100.7", limit)
		s.True(res.Allowed, "request %d", i+1)
		s.Equal(4-i, res.Remaining)
		s.Equal(5, res.Limit)
	}

	res := s.admit(models.ScopeAuth, "198.51.100.7", limit)
	s.False(res.Allowed)
	s.Equal(0, res.Remaining)
	s.Equal(15*time.Minute, res.RetryAfter)
}

func (s *LimiterSuite) TestRejectedAttemptsStillCount() {
	limit := models.Limit{Window: time.Minute, Max: 1}

	s.True(s.admit(models.ScopeAIGeneration, "u1", limit).Allowed)
	s.now = s.now.Add(30 * time.Second)
	s.False(s.admit(models.ScopeAIGeneration, "u1", limit).Allowed)

	// The first entry has left the window but the rejected one has not.
	s.now = s.now.Add(31 * time.Second)
	s.False(s.admit(models.ScopeAIGeneration, "u1", limit).Allowed)
}

func (s *LimiterSuite) TestRetryAtResetIsAdmitted() {
	limit := models.Limit{Window: 15 * time.Minute, Max: 5}

	for range 5 {
		s.Require().True(s.admit(models.ScopeAuth, "198.51.100.8", limit).Allowed)
		s.now = s.now.Add(time.Second)
	}
	rejected := s.admit(models.ScopeAuth, "198.51.100.8", limit)
	s.Require().False(rejected.Allowed)
	s.Equal(15*time.Minute-4*time.Second, rejected.RetryAfter)

	// The rejected attempt stays in the window, so the reset time covers
	// enough expiries for the next request to fit.
	s.now = rejected.ResetAt
	res := s.admit(models.ScopeAuth, "198.51.100.8", limit)
	s.True(res.Allowed, "client that waited Retry-After must be admitted")
	s.Equal(0, res.Remaining)
}

func (s *LimiterSuite) TestRepeatedRejectionsPushResetOut() {
	limit := models.Limit{Window: time.Minute, Max: 2}

	s.Require().True(s.admit(models.ScopeAIGeneration, "u2", limit).Allowed)
	s.Require().True(s.admit(models.ScopeAIGeneration, "u2", limit).Allowed)
	s.now = s.now.Add(10 * time.Second)
	first := s.admit(models.ScopeAIGeneration, "u2", limit)
	s.now = s.now.Add(10 * time.Second)
	second := s.admit(models.ScopeAIGeneration, "u2", limit)
	s.Require().False(first.Allowed)
	s.Require().False(second.Allowed)
	s.True(second.ResetAt.After(first.ResetAt))

	s.now = second.ResetAt
	s.True(s.admit(models.ScopeAIGeneration, "u2", limit).Allowed)
}

func (s *LimiterSuite) TestWindowSlides() {
	limit := models.Limit{Window: time.Minute, Max: 2}

	s.True(s.admit(models.ScopeGeneralAPI, "u1", limit).Allowed)
	s.now = s.now.Add(40 * time.Second)
	s.True(s.admit(models.ScopeGeneralAPI, "u1", limit).Allowed)

	s.now = s.now.Add(21 * time.Second)
	res := s.admit(models.ScopeGeneralAPI, "u1", limit)
	s.True(res.Allowed, "first entry expired at t+60s")
	s.Equal(s.now.Add(-21*time.Second).Add(time.Minute), res.ResetAt)
}

func (s *LimiterSuite) TestScopesAndIdentifiersAreIsolated() {
	limit := models.Limit{Window: time.Minute, Max: 1}

	s.True(s.admit(models.ScopeAuth, "1.1.1.1", limit).Allowed)
	s.True(s.admit(models.ScopeGeneralAPI, "1.1.1.1", limit).Allowed)
	s.True(s.admit(models.ScopeAuth, "2.2.2.2", limit).Allowed)
	s.False(s.admit(models.ScopeAuth, "1.1.1.1", limit).Allowed)
}

func (s *LimiterSuite) TestConcurrentCallersNeverOvershoot() {
	limit := models.Limit{Window: time.Minute, Max: 10}

	result := testutil.RunConcurrent(50, func(int) error {
		res, err := s.limiter.Admit(context.Background(), models.ScopeBookCreation, "author-1", limit)
		if err != nil {
			return err
		}
		if !res.Allowed {
			return dErrors.New(dErrors.CodeRateLimitExceeded, "limited")
		}
		return nil
	})

	s.EqualValues(10, result.Successes)
	s.EqualValues(40, result.Rejected)
	s.EqualValues(0, result.Errors)
}

func (s *LimiterSuite) TestRetractFreesTheSlot() {
	limit := models.Limit{Window: time.Minute, Max: 1}

	first := s.admit(models.ScopeAuth, "ip", limit)
	s.Require().True(first.Allowed)
	s.limiter.Retract(context.Background(), models.ScopeAuth, first)

	s.True(s.admit(models.ScopeAuth, "ip", limit).Allowed)
	s.False(s.admit(models.ScopeAuth, "ip", limit).Allowed)
}

func (s *LimiterSuite) TestRejectsInvalidLimit() {
	_, err := s.limiter.Admit(context.Background(), models.ScopeAuth, "ip", models.Limit{Window: time.Minute})
	s.Error(err)
}

// =============================================================================
// Store failure handling
// =============================================================================

func (s *LimiterSuite) TestStoreDownFailsOpen() {
	s.store.SetUnavailable(true)

	res := s.admit(models.ScopeAuth, "ip", models.Limit{Window: time.Minute, Max: 1})
	s.True(res.Allowed)
	s.True(res.Degraded)

	// Retracting a degraded result must not touch the store.
	s.limiter.Retract(context.Background(), models.ScopeAuth, res)
}

func (s *LimiterSuite) TestStoreDownFailClosedScope() {
	s.store.SetUnavailable(true)

	res := s.admit(models.ScopeAuth, "ip", models.Limit{Window: time.Minute, Max: 1, FailClosed: true})
	s.False(res.Allowed)
	s.True(res.Degraded)
}

func (s *LimiterSuite) TestSlowStoreIsBoundedByTimeout() {
	ctrl := gomock.NewController(s.T())
	store := mocks.NewMockWindowStore(ctrl)
	store.EXPECT().
		SlideWindow(gomock.Any(), "rl:auth:ip", time.Minute, gomock.Any(), 1).
		DoAndReturn(func(ctx context.Context, _ string, _ time.Duration, _ string, _ int) (*sharedstore.WindowState, error) {
			<-ctx.Done()
			return nil, ctx.Err()
		})

	l, err := New(store, WithStoreTimeout(20*time.Millisecond), WithLogger(slog.New(slog.DiscardHandler)))
	s.Require().NoError(err)

	start := time.Now()
	res, err := l.Admit(context.Background(), models.ScopeAuth, "ip", models.Limit{Window: time.Minute, Max: 1})
	s.Require().NoError(err)
	s.True(res.Allowed)
	s.True(res.Degraded)
	s.Less(time.Since(start), time.Second)
}

func (s *LimiterSuite) TestOpenBreakerSkipsStore() {
	ctrl := gomock.NewController(s.T())
	store := mocks.NewMockWindowStore(ctrl)
	store.EXPECT().
		SlideWindow(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return(nil, errors.New("connection refused")).
		Times(2)

	breaker := circuit.New("test", circuit.WithFailureThreshold(2), circuit.WithRetryInterval(time.Hour))
	l, err := New(store, WithBreaker(breaker), WithLogger(slog.New(slog.DiscardHandler)))
	s.Require().NoError(err)

	limit := models.Limit{Window: time.Minute, Max: 1}
	for range 5 {
		res, err := l.Admit(context.Background(), models.ScopeGeneralAPI, "u", limit)
		s.Require().NoError(err)
		s.True(res.Allowed)
		s.True(res.Degraded)
	}
	s.Equal(circuit.StateOpen, breaker.State())
}

func (s *LimiterSuite) TestRetractFailureIsSwallowed() {
	ctrl := gomock.NewController(s.T())
	store := mocks.NewMockWindowStore(ctrl)
	store.EXPECT().RemoveMember(gomock.Any(), "rl:auth:ip", "ticket").Return(sharedstore.ErrUnavailable)

	l, err := New(store, WithLogger(slog.New(slog.DiscardHandler)))
	s.Require().NoError(err)

	l.Retract(context.Background(), models.ScopeAuth, &models.Result{Key: "rl:auth:ip", Ticket: "ticket"})
}

// =============================================================================
// Tracing
// =============================================================================

func (s *LimiterSuite) TestAdmitEmitsDecisionSpan() {
	rec := tracertest.New()
	l, err := New(s.store, WithTracer(rec), WithLogger(slog.New(slog.DiscardHandler)))
	s.Require().NoError(err)
	limit := models.Limit{Window: time.Minute, Max: 1}

	_, err = l.Admit(context.Background(), models.ScopeAuth, "198.51.100.7", limit)
	s.Require().NoError(err)
	_, err = l.Admit(context.Background(), models.ScopeAuth, "198.51.100.7", limit)
	s.Require().NoError(err)

	spans := rec.Named(tracer.SpanRateLimitAdmit)
	s.Require().Len(spans, 2)
	s.Equal("auth", spans[0].Attrs[tracer.AttrScope])
	s.Equal(true, spans[0].Attrs[tracer.AttrAllowed])
	s.Equal(false, spans[1].Attrs[tracer.AttrAllowed])
	s.Equal(time.Minute.Milliseconds(), spans[1].Attrs[tracer.AttrRetryAfterMs])
	s.Equal("198.51.100.0", spans[0].Attrs[tracer.AttrSourcePrefix])
	s.NoError(spans[1].Err)
}

func (s *LimiterSuite) TestAdmitSpanCarriesStoreError() {
	rec := tracertest.New()
	l, err := New(s.store, WithTracer(rec), WithLogger(slog.New(slog.DiscardHandler)))
	s.Require().NoError(err)
	s.store.SetUnavailable(true)

	res, err := l.Admit(context.Background(), models.ScopeAuth, "ip", models.Limit{Window: time.Minute, Max: 1})
	s.Require().NoError(err)
	s.True(res.Degraded)

	spans := rec.Named(tracer.SpanRateLimitAdmit)
	s.Require().Len(spans, 1)
	s.Equal("subject", spans[0].Attrs[tracer.AttrIdentifierKind])
	s.Error(spans[0].Err)
	s.Equal(true, spans[0].Attrs[tracer.AttrDegraded])
}

func TestNew_RequiresStore(t *testing.T) {
	if _, err := New(nil); err == nil {
		t.Fatal("expected error for nil store")
	}
}
