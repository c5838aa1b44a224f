package token_test

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"inkwell/internal/sharedstore"
	"inkwell/internal/token"
	"inkwell/internal/token/mocks"
	dErrors "inkwell/pkg/domain-errors"
	"inkwell/pkg/platform/audit"
	"inkwell/pkg/platform/middleware/requesttime"
)

const (
	accessSecret  = "access-secret-for-tests"
	refreshSecret = "refresh-secret-for-tests"
)

// TokenServiceSuite covers credential issuance, verification and rotation.
//
// Justification: the e2e features only see "401 or not". These tests pin the
// individual rejection reasons (algorithm confusion, kind confusion, expiry on
// the request clock, epoch revocation, replay) which all collapse to the same
// generic response at the HTTP layer.
type TokenServiceSuite struct {
	suite.Suite
	ctrl     *gomock.Controller
	subjects *mocks.MockSubjectLookup
	consumed *sharedstore.MemoryStore
	service  *token.Service
	now      time.Time
	ctx      context.Context
	subject  string
	recorder *captureRecorder
}

type captureRecorder struct {
	mu     sync.Mutex
	events []audit.Event
}

func (c *captureRecorder) Record(_ context.Context, event audit.Event) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, event)
}

func TestTokenServiceSuite(t *testing.T) {
	suite.Run(t, new(TokenServiceSuite))
}

func (s *TokenServiceSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.subjects = mocks.NewMockSubjectLookup(s.ctrl)
	s.now = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	s.consumed = sharedstore.NewMemoryStore(sharedstore.WithClock(func() time.Time { return s.now }))
	s.ctx = requesttime.WithTime(context.Background(), s.now)
	s.subject = uuid.NewString()
	s.recorder = &captureRecorder{}

	var err error
	s.service, err = token.New(token.Config{
		AccessSecret:   accessSecret,
		RefreshSecret:  refreshSecret,
		Issuer:         "inkwell",
		Audience:       "inkwell-api",
		AccessTTL:      time.Hour,
		RefreshTTL:     24 * time.Hour,
		ReuseDetection: true,
	}, token.WithSubjectLookup(s.subjects), token.WithConsumedStore(s.consumed),
		token.WithAudit(audit.NewLogger(slog.New(slog.DiscardHandler), s.recorder)))
	s.Require().NoError(err)
}

func (s *TokenServiceSuite) at(t time.Time) context.Context {
	return requesttime.WithTime(context.Background(), t)
}

func (s *TokenServiceSuite) issue(epoch int64) *token.CredentialPair {
	pair, err := s.service.Issue(s.ctx, s.subject, "author", token.WithEpoch(epoch))
	s.Require().NoError(err)
	return pair
}

func (s *TokenServiceSuite) forge(method jwt.SigningMethod, key any, claims token.Claims) string {
	signed, err := jwt.NewWithClaims(method, claims).SignedString(key)
	s.Require().NoError(err)
	return signed
}

func (s *TokenServiceSuite) baseClaims(kind token.Kind) token.Claims {
	return token.Claims{
		Role: "author",
		Kind: kind,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   s.subject,
			ID:        uuid.NewString(),
			Issuer:    "inkwell",
			Audience:  jwt.ClaimStrings{"inkwell-api"},
			IssuedAt:  jwt.NewNumericDate(s.now),
			ExpiresAt: jwt.NewNumericDate(s.now.Add(time.Hour)),
		},
	}
}

// =============================================================================
// Construction
// =============================================================================

func (s *TokenServiceSuite) TestNewRejectsEqualSecrets() {
	_, err := token.New(token.Config{AccessSecret: "same", RefreshSecret: "same", Issuer: "i", Audience: "a"})
	s.Error(err)
}

func (s *TokenServiceSuite) TestNewRequiresIssuerAndAudience() {
	_, err := token.New(token.Config{AccessSecret: "a", RefreshSecret: "b"})
	s.Error(err)
}

// =============================================================================
// Issue / ValidateAccess
// =============================================================================

func (s *TokenServiceSuite) TestIssueThenValidate() {
	pair := s.issue(3)

	s.Equal("Bearer", pair.TokenType)
	s.Equal(s.now.Add(time.Hour), pair.AccessExpiresAt)
	s.Equal(s.now.Add(24*time.Hour), pair.RefreshExpiresAt)

	claims, err := s.service.ValidateAccess(s.ctx, pair.AccessToken)
	s.Require().NoError(err)
	s.Equal(s.subject, claims.SubjectID())
	s.Equal("author", claims.Role)
	s.Equal(token.KindAccess, claims.Kind)
	s.EqualValues(3, claims.Epoch)
	s.NotEmpty(claims.ID)
}

func (s *TokenServiceSuite) TestIssueRequiresSubject() {
	_, err := s.service.Issue(s.ctx, "", "author")
	s.True(dErrors.HasCode(err, dErrors.CodeBadRequest))
}

func (s *TokenServiceSuite) TestRefreshPresentedAsAccess() {
	pair := s.issue(0)

	_, err := s.service.ValidateAccess(s.ctx, pair.RefreshToken)
	s.True(dErrors.HasCode(err, dErrors.CodeWrongCredentialKind))
}

func (s *TokenServiceSuite) TestExpiryUsesRequestClock() {
	pair := s.issue(0)

	_, err := s.service.ValidateAccess(s.at(s.now.Add(59*time.Minute)), pair.AccessToken)
	s.NoError(err)

	_, err = s.service.ValidateAccess(s.at(s.now.Add(61*time.Minute)), pair.AccessToken)
	s.True(dErrors.HasCode(err, dErrors.CodeExpiredToken))
}

func (s *TokenServiceSuite) TestRejectsForgedAndMalformed() {
	cases := []struct {
		name string
		raw  func() string
	}{
		{"empty", func() string { return "" }},
		{"garbage", func() string { return "not-a-jwt" }},
		{"hs512 header", func() string {
			return s.forge(jwt.SigningMethodHS512, []byte(accessSecret), s.baseClaims(token.KindAccess))
		}},
		{"alg none", func() string {
			return s.forge(jwt.SigningMethodNone, jwt.UnsafeAllowNoneSignatureType, s.baseClaims(token.KindAccess))
		}},
		{"access kind signed with refresh secret", func() string {
			return s.forge(jwt.SigningMethodHS256, []byte(refreshSecret), s.baseClaims(token.KindAccess))
		}},
		{"unknown kind", func() string {
			return s.forge(jwt.SigningMethodHS256, []byte(accessSecret), s.baseClaims("admin"))
		}},
		{"wrong issuer", func() string {
			c := s.baseClaims(token.KindAccess)
			c.Issuer = "someone-else"
			return s.forge(jwt.SigningMethodHS256, []byte(accessSecret), c)
		}},
		{"wrong audience", func() string {
			c := s.baseClaims(token.KindAccess)
			c.Audience = jwt.ClaimStrings{"other-api"}
			return s.forge(jwt.SigningMethodHS256, []byte(accessSecret), c)
		}},
		{"no expiry", func() string {
			c := s.baseClaims(token.KindAccess)
			c.ExpiresAt = nil
			return s.forge(jwt.SigningMethodHS256, []byte(accessSecret), c)
		}},
		{"no subject", func() string {
			c := s.baseClaims(token.KindAccess)
			c.Subject = ""
			return s.forge(jwt.SigningMethodHS256, []byte(accessSecret), c)
		}},
	}

	for _, tc := range cases {
		s.Run(tc.name, func() {
			_, err := s.service.ValidateAccess(s.ctx, tc.raw())
			s.Require().Error(err)
			s.True(dErrors.HasCode(err, dErrors.CodeInvalidToken), "got %v", err)
		})
	}
}

// =============================================================================
// Rotate
// =============================================================================

func (s *TokenServiceSuite) TestRotateIssuesFreshPair() {
	pair := s.issue(2)
	s.subjects.EXPECT().TokenState(gomock.Any(), s.subject).
		Return(&token.SubjectState{Role: "editor", Active: true, TokenEpoch: 2}, nil)

	rotated, err := s.service.Rotate(s.ctx, pair.RefreshToken)
	s.Require().NoError(err)
	s.NotEqual(pair.RefreshToken, rotated.RefreshToken)

	claims, err := s.service.ValidateAccess(s.ctx, rotated.AccessToken)
	s.Require().NoError(err)
	s.Equal("editor", claims.Role, "role comes from the subject, not the old credential")
	s.EqualValues(2, claims.Epoch)
}

func (s *TokenServiceSuite) TestRotateRejectsReuse() {
	pair := s.issue(0)
	s.subjects.EXPECT().TokenState(gomock.Any(), s.subject).
		Return(&token.SubjectState{Role: "author", Active: true}, nil).Times(2)

	s.subjects.EXPECT().RevokeAll(gomock.Any(), s.subject).Return(int64(1), nil)

	_, err := s.service.Rotate(s.ctx, pair.RefreshToken)
	s.Require().NoError(err)

	_, err = s.service.Rotate(s.ctx, pair.RefreshToken)
	s.True(dErrors.HasCode(err, dErrors.CodeInvalidToken))

	s.Require().Len(s.recorder.events, 1)
	s.Equal(audit.ActionRefreshReused, s.recorder.events[0].Action)
	s.Equal(s.subject, s.recorder.events[0].SubjectID)
	s.Equal("true", s.recorder.events[0].Metadata["family_revoked"])
	s.Equal("1", s.recorder.events[0].Metadata["token_epoch"])
}

func (s *TokenServiceSuite) TestReuseRevokesTheRotatedFamily() {
	var epoch int64
	s.subjects.EXPECT().TokenState(gomock.Any(), s.subject).
		DoAndReturn(func(context.Context, string) (*token.SubjectState, error) {
			return &token.SubjectState{Role: "author", Active: true, TokenEpoch: epoch}, nil
		}).AnyTimes()
	s.subjects.EXPECT().RevokeAll(gomock.Any(), s.subject).
		DoAndReturn(func(context.Context, string) (int64, error) {
			epoch++
			return epoch, nil
		})

	original := s.issue(0)
	rotated, err := s.service.Rotate(s.ctx, original.RefreshToken)
	s.Require().NoError(err)

	_, err = s.service.Rotate(s.ctx, original.RefreshToken)
	s.Require().True(dErrors.HasCode(err, dErrors.CodeInvalidToken))
	s.EqualValues(1, epoch)

	_, err = s.service.Rotate(s.ctx, rotated.RefreshToken)
	s.True(dErrors.HasCode(err, dErrors.CodeInvalidToken), "pair rotated before the replay must be revoked")
}

func (s *TokenServiceSuite) TestReuseStillRejectedWhenRevocationFails() {
	pair := s.issue(0)
	s.subjects.EXPECT().TokenState(gomock.Any(), s.subject).
		Return(&token.SubjectState{Role: "author", Active: true}, nil).Times(2)
	s.subjects.EXPECT().RevokeAll(gomock.Any(), s.subject).Return(int64(0), errors.New("db down"))

	_, err := s.service.Rotate(s.ctx, pair.RefreshToken)
	s.Require().NoError(err)
	_, err = s.service.Rotate(s.ctx, pair.RefreshToken)
	s.True(dErrors.HasCode(err, dErrors.CodeInvalidToken))

	s.Require().Len(s.recorder.events, 1)
	s.Equal("false", s.recorder.events[0].Metadata["family_revoked"])
}

func (s *TokenServiceSuite) TestRotateRejectsStaleEpoch() {
	pair := s.issue(1)
	s.subjects.EXPECT().TokenState(gomock.Any(), s.subject).
		Return(&token.SubjectState{Role: "author", Active: true, TokenEpoch: 2}, nil)

	_, err := s.service.Rotate(s.ctx, pair.RefreshToken)
	s.True(dErrors.HasCode(err, dErrors.CodeInvalidToken))
}

func (s *TokenServiceSuite) TestRotateMissingOrInactiveSubject() {
	pair := s.issue(0)

	s.Run("missing", func() {
		s.subjects.EXPECT().TokenState(gomock.Any(), s.subject).
			Return(nil, dErrors.New(dErrors.CodeNotFound, "no such subject"))
		_, err := s.service.Rotate(s.ctx, pair.RefreshToken)
		s.True(dErrors.HasCode(err, dErrors.CodeSubjectNotFound))
	})

	s.Run("inactive", func() {
		s.subjects.EXPECT().TokenState(gomock.Any(), s.subject).
			Return(&token.SubjectState{Active: false}, nil)
		_, err := s.service.Rotate(s.ctx, pair.RefreshToken)
		s.True(dErrors.HasCode(err, dErrors.CodeSubjectNotFound))
	})
}

func (s *TokenServiceSuite) TestRotateRejectsAccessCredential() {
	pair := s.issue(0)

	_, err := s.service.Rotate(s.ctx, pair.AccessToken)
	s.True(dErrors.HasCode(err, dErrors.CodeWrongCredentialKind))
}

func (s *TokenServiceSuite) TestRotateLookupFailureIsInternal() {
	pair := s.issue(0)
	s.subjects.EXPECT().TokenState(gomock.Any(), s.subject).Return(nil, errors.New("db down"))

	_, err := s.service.Rotate(s.ctx, pair.RefreshToken)
	s.True(dErrors.HasCode(err, dErrors.CodeInternal))
}

func (s *TokenServiceSuite) TestRotateFailsClosedWhenDenylistUnavailable() {
	pair := s.issue(0)
	consumed := mocks.NewMockConsumedStore(s.ctrl)
	consumed.EXPECT().SetIfAbsent(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return(false, sharedstore.ErrUnavailable)
	s.subjects.EXPECT().TokenState(gomock.Any(), s.subject).
		Return(&token.SubjectState{Role: "author", Active: true}, nil)

	svc, err := token.New(token.Config{
		AccessSecret: accessSecret, RefreshSecret: refreshSecret,
		Issuer: "inkwell", Audience: "inkwell-api", ReuseDetection: true,
	}, token.WithSubjectLookup(s.subjects), token.WithConsumedStore(consumed))
	s.Require().NoError(err)

	_, err = svc.Rotate(s.ctx, pair.RefreshToken)
	s.True(dErrors.HasCode(err, dErrors.CodeStoreUnavailable))
}

func (s *TokenServiceSuite) TestRotateDenylistKeyUsesJTIAndRemainingLifetime() {
	pair := s.issue(0)
	refreshClaims, err := s.service.ValidateRefresh(s.ctx, pair.RefreshToken)
	s.Require().NoError(err)

	consumed := mocks.NewMockConsumedStore(s.ctrl)
	consumed.EXPECT().
		SetIfAbsent(gomock.Any(), "refresh:consumed:"+refreshClaims.ID, []byte(s.subject), 12*time.Hour).
		Return(true, nil)
	s.subjects.EXPECT().TokenState(gomock.Any(), s.subject).
		Return(&token.SubjectState{Role: "author", Active: true}, nil)

	svc, err := token.New(token.Config{
		AccessSecret: accessSecret, RefreshSecret: refreshSecret,
		Issuer: "inkwell", Audience: "inkwell-api", RefreshTTL: 24 * time.Hour, ReuseDetection: true,
	}, token.WithSubjectLookup(s.subjects), token.WithConsumedStore(consumed))
	s.Require().NoError(err)

	_, err = svc.Rotate(s.at(s.now.Add(12*time.Hour)), pair.RefreshToken)
	s.NoError(err)
}
