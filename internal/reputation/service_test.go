package reputation

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"inkwell/internal/reputation/mocks"
	"inkwell/internal/sharedstore"
	dErrors "inkwell/pkg/domain-errors"
	"inkwell/pkg/platform/audit"
	"inkwell/pkg/platform/middleware/requesttime"
	"inkwell/pkg/platform/tracer"
	"inkwell/pkg/platform/tracer/tracertest"
)

type captureRecorder struct {
	mu     sync.Mutex
	events []audit.Event
}

func (c *captureRecorder) Record(_ context.Context, event audit.Event) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, event)
}

func (c *captureRecorder) actions() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, 0, len(c.events))
	for _, e := range c.events {
		out = append(out, e.Action)
	}
	return out
}

type ReputationSuite struct {
	suite.Suite
	now      time.Time
	store    *sharedstore.MemoryStore
	recorder *captureRecorder
	service  *Service
}

func TestReputationSuite(t *testing.T) {
	suite.Run(t, new(ReputationSuite))
}

func (s *ReputationSuite) SetupTest() {
	s.now = time.Unix(1_700_000_000, 0)
	s.store = sharedstore.NewMemoryStore(sharedstore.WithClock(func() time.Time { return s.now }))
	s.recorder = &captureRecorder{}
	svc, err := New(s.store,
		WithLogger(slog.New(slog.DiscardHandler)),
		WithAudit(audit.NewLogger(slog.New(slog.DiscardHandler), s.recorder)),
	)
	s.Require().NoError(err)
	s.service = svc
}

func (s *ReputationSuite) ctx() context.Context {
	return requesttime.WithTime(context.Background(), s.now)
}

// =============================================================================
// Block / IsBlocked / Unblock
// =============================================================================

func (s *ReputationSuite) TestBlockThenIsBlocked() {
	entry, err := s.service.Block(s.ctx(), "203.0.113.9", time.Hour, "credential stuffing", WithActor("ops"))
	s.Require().NoError(err)
	s.True(s.now.Add(time.Hour).Equal(entry.ExpiresAt), "expires at %s", entry.ExpiresAt)
	s.Equal(SourceManual, entry.Source)

	blocked, err := s.service.IsBlocked(s.ctx(), "203.0.113.9")
	s.Require().NoError(err)
	s.True(blocked)

	got, err := s.service.Get(s.ctx(), "203.0.113.9")
	s.Require().NoError(err)
	s.Equal("credential stuffing", got.Reason)
	s.Equal("ops", got.Actor)

	s.Require().Len(s.recorder.events, 1)
	ev := s.recorder.events[0]
	s.Equal(audit.ActionIPBlocked, ev.Action)
	s.Equal(audit.CategorySecurity, ev.Category)
	s.Equal("203.0.113.9", ev.SourceAddress)
	s.Equal("1h0m0s", ev.Metadata["duration"])
	s.Equal("ops", ev.Metadata["actor"])
}

// Justification: the store TTL and the embedded expiry must agree, so a
// block is gone exactly when its duration elapses.
func (s *ReputationSuite) TestBlockExpires() {
	_, err := s.service.Block(s.ctx(), "198.51.100.1", time.Minute, "test")
	s.Require().NoError(err)

	s.now = s.now.Add(time.Minute)
	blocked, err := s.service.IsBlocked(s.ctx(), "198.51.100.1")
	s.Require().NoError(err)
	s.False(blocked)
}

func (s *ReputationSuite) TestReblockReplacesEntry() {
	_, err := s.service.Block(s.ctx(), "198.51.100.1", time.Minute, "first")
	s.Require().NoError(err)
	_, err = s.service.Block(s.ctx(), "198.51.100.1", time.Hour, "second", WithSource(SourceAutoBlock))
	s.Require().NoError(err)

	got, err := s.service.Get(s.ctx(), "198.51.100.1")
	s.Require().NoError(err)
	s.Equal("second", got.Reason)
	s.Equal(SourceAutoBlock, got.Source)
	s.True(s.now.Add(time.Hour).Equal(got.ExpiresAt), "expires at %s", got.ExpiresAt)
}

func (s *ReputationSuite) TestUnblockIsIdempotent() {
	_, err := s.service.Block(s.ctx(), "198.51.100.2", time.Hour, "x")
	s.Require().NoError(err)

	s.Require().NoError(s.service.Unblock(s.ctx(), "198.51.100.2"))
	s.Require().NoError(s.service.Unblock(s.ctx(), "198.51.100.2"))

	blocked, err := s.service.IsBlocked(s.ctx(), "198.51.100.2")
	s.Require().NoError(err)
	s.False(blocked)
	s.Equal([]string{audit.ActionIPBlocked, audit.ActionIPUnblocked, audit.ActionIPUnblocked}, s.recorder.actions())
}

func (s *ReputationSuite) TestGetUnknownIsNotFound() {
	_, err := s.service.Get(s.ctx(), "192.0.2.1")
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))

	blocked, err := s.service.IsBlocked(s.ctx(), "")
	s.Require().NoError(err)
	s.False(blocked)
}

func (s *ReputationSuite) TestBlockValidation() {
	cases := []struct {
		name       string
		identifier string
		duration   time.Duration
		reason     string
	}{
		{"empty identifier", "", time.Hour, "r"},
		{"zero duration", "192.0.2.1", 0, "r"},
		{"negative duration", "192.0.2.1", -time.Second, "r"},
		{"oversized reason", "192.0.2.1", time.Hour, string(make([]byte, 501))},
		{"oversized identifier", string(make([]byte, 129)), time.Hour, "r"},
	}
	for _, tc := range cases {
		s.Run(tc.name, func() {
			_, err := s.service.Block(s.ctx(), tc.identifier, tc.duration, tc.reason)
			s.True(dErrors.HasCode(err, dErrors.CodeValidation), "got %v", err)
		})
	}
	s.Empty(s.recorder.events)
}

func (s *ReputationSuite) TestStoreDownIsStoreUnavailable() {
	s.store.SetUnavailable(true)

	_, err := s.service.Block(s.ctx(), "192.0.2.1", time.Hour, "r")
	s.True(dErrors.HasCode(err, dErrors.CodeStoreUnavailable))

	_, err = s.service.IsBlocked(s.ctx(), "192.0.2.1")
	s.True(dErrors.HasCode(err, dErrors.CodeStoreUnavailable))

	_, err = s.service.RecordViolation(s.ctx(), "192.0.2.1", time.Minute)
	s.True(dErrors.HasCode(err, dErrors.CodeStoreUnavailable))

	s.Empty(s.recorder.events, "no audit event for a block that was not stored")
}

// =============================================================================
// RecordViolation
// =============================================================================

func (s *ReputationSuite) TestViolationsCountInsideLookback() {
	for i := 1; i <= 3; i++ {
		n, err := s.service.RecordViolation(s.ctx(), "192.0.2.5", 10*time.Minute)
		s.Require().NoError(err)
		s.Equal(i, n)
		s.now = s.now.Add(time.Minute)
	}

	s.now = s.now.Add(7 * time.Minute)
	n, err := s.service.RecordViolation(s.ctx(), "192.0.2.5", 10*time.Minute)
	s.Require().NoError(err)
	s.Equal(3, n, "the first violation aged out")

	other, err := s.service.RecordViolation(s.ctx(), "192.0.2.6", 10*time.Minute)
	s.Require().NoError(err)
	s.Equal(1, other)
}

func (s *ReputationSuite) TestRecordViolationRejectsBadLookback() {
	_, err := s.service.RecordViolation(s.ctx(), "192.0.2.5", 0)
	s.True(dErrors.HasCode(err, dErrors.CodeValidation))
}

// =============================================================================
// Store interaction
// =============================================================================

func (s *ReputationSuite) TestCorruptEntryTreatedAsBlocked() {
	ctrl := gomock.NewController(s.T())
	store := mocks.NewMockStore(ctrl)
	svc, err := New(store, WithLogger(slog.New(slog.DiscardHandler)))
	s.Require().NoError(err)

	store.EXPECT().Get(gomock.Any(), "block:192.0.2.7").Return([]byte("{not json"), true, nil)

	blocked, err := svc.IsBlocked(s.ctx(), "192.0.2.7")
	s.Require().NoError(err)
	s.True(blocked)
}

func (s *ReputationSuite) TestStoreCallIsBounded() {
	ctrl := gomock.NewController(s.T())
	store := mocks.NewMockStore(ctrl)
	svc, err := New(store, WithStoreTimeout(10*time.Millisecond))
	s.Require().NoError(err)

	store.EXPECT().Get(gomock.Any(), gomock.Any()).DoAndReturn(
		func(ctx context.Context, _ string) ([]byte, bool, error) {
			<-ctx.Done()
			return nil, false, ctx.Err()
		})

	_, err = svc.IsBlocked(s.ctx(), "192.0.2.8")
	s.True(dErrors.HasCode(err, dErrors.CodeStoreUnavailable))
	s.True(errors.Is(err, context.DeadlineExceeded))
}

func (s *ReputationSuite) TestLookupsAreTraced() {
	rec := tracertest.New()
	svc, err := New(s.store, WithTracer(rec), WithLogger(slog.New(slog.DiscardHandler)))
	s.Require().NoError(err)
	_, err = svc.Block(s.ctx(), "203.0.113.9", time.Hour, "x")
	s.Require().NoError(err)

	_, err = svc.IsBlocked(s.ctx(), "203.0.113.9")
	s.Require().NoError(err)
	_, err = svc.IsBlocked(s.ctx(), "198.51.100.4")
	s.Require().NoError(err)
	_, err = svc.RecordViolation(s.ctx(), "198.51.100.4", time.Minute)
	s.Require().NoError(err)

	checks := rec.Named(tracer.SpanReputationCheck)
	s.Require().Len(checks, 2)
	s.Equal(true, checks[0].Attrs[tracer.AttrBlocked])
	s.Equal("203.0.113.0", checks[0].Attrs[tracer.AttrSourcePrefix])
	s.Equal(false, checks[1].Attrs[tracer.AttrBlocked])

	violations := rec.Named(tracer.SpanReputationViolate)
	s.Require().Len(violations, 1)
	s.Equal(int64(1), violations[0].Attrs[tracer.AttrViolations])
}

func (s *ReputationSuite) TestFailedLookupSpanCarriesError() {
	rec := tracertest.New()
	svc, err := New(s.store, WithTracer(rec))
	s.Require().NoError(err)
	s.store.SetUnavailable(true)

	_, err = svc.IsBlocked(s.ctx(), "192.0.2.8")
	s.Require().Error(err)

	checks := rec.Named(tracer.SpanReputationCheck)
	s.Require().Len(checks, 1)
	s.Error(checks[0].Err)
}

func (s *ReputationSuite) TestNew_RequiresStore() {
	_, err := New(nil)
	s.Error(err)
}
