// Package admission composes reputation, authentication, rate limiting and
// input screening into the ordered checks every route passes before its
// handler runs.
package admission

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"inkwell/internal/admission/metrics"
	rlconfig "inkwell/internal/ratelimit/config"
	"inkwell/internal/ratelimit/models"
	"inkwell/internal/reputation"
	"inkwell/internal/token"
	dErrors "inkwell/pkg/domain-errors"
	"inkwell/pkg/platform/audit"
	"inkwell/pkg/platform/httputil"
	"inkwell/pkg/platform/middleware/request"
	"inkwell/pkg/platform/privacy"
	"inkwell/pkg/platform/validation"
	"inkwell/pkg/requestcontext"
)

//go:generate mockgen -source=pipeline.go -destination=mocks/mocks.go -package=mocks

// Reputation answers and updates the blocklist.
type Reputation interface {
	IsBlocked(ctx context.Context, identifier string) (bool, error)
	Block(ctx context.Context, identifier string, duration time.Duration, reason string, opts ...reputation.BlockOption) (*reputation.BlockEntry, error)
	RecordViolation(ctx context.Context, identifier string, lookback time.Duration) (int, error)
}

// TokenValidator verifies access credentials.
type TokenValidator interface {
	ValidateAccess(ctx context.Context, tokenString string) (*token.Claims, error)
}

// RateLimiter admits and retracts sliding-window entries.
type RateLimiter interface {
	Admit(ctx context.Context, scope models.Scope, identifier string, limit models.Limit) (*models.Result, error)
	Retract(ctx context.Context, scope models.Scope, res *models.Result)
}

// BlockPolicy controls automatic blocking of offending source addresses.
type BlockPolicy struct {
	// ViolationThreshold blocks a source once it collects this many
	// rate-limit violations within ViolationLookback. Zero disables it.
	ViolationThreshold int
	ViolationLookback  time.Duration
	ViolationBlockFor  time.Duration

	// MaliciousBlockFor blocks a source that trips the input screen.
	// Zero disables it.
	MaliciousBlockFor time.Duration
}

// RateLimitedResponse is the 429 body.
type RateLimitedResponse struct {
	Error            string    `json:"error"`
	ErrorDescription string    `json:"error_description"`
	RetryAfter       int       `json:"retry_after"`
	ResetAt          time.Time `json:"reset_at"`
}

// Pipeline runs the admission checks.
type Pipeline struct {
	reputation Reputation
	tokens     TokenValidator
	limiter    RateLimiter
	limits     rlconfig.Table
	screener   *Screener
	blocks     BlockPolicy
	audit      *audit.Logger
	logger     *slog.Logger
	metrics    *metrics.Metrics
}

// Option configures a Pipeline.
type Option func(*Pipeline)

func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) {
		if logger != nil {
			p.logger = logger
		}
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(p *Pipeline) {
		p.metrics = m
	}
}

// WithAudit sets where rejections and domain events are recorded.
func WithAudit(l *audit.Logger) Option {
	return func(p *Pipeline) {
		if l != nil {
			p.audit = l
		}
	}
}

// WithScreener replaces the default malicious-input screener.
func WithScreener(s *Screener) Option {
	return func(p *Pipeline) {
		if s != nil {
			p.screener = s
		}
	}
}

// WithBlockPolicy enables automatic blocking.
func WithBlockPolicy(b BlockPolicy) Option {
	return func(p *Pipeline) {
		p.blocks = b
	}
}

// New creates a pipeline. limits must hold a budget for every scope a
// policy will name.
func New(rep Reputation, tokens TokenValidator, limiter RateLimiter, limits rlconfig.Table, opts ...Option) (*Pipeline, error) {
	if rep == nil {
		return nil, errors.New("reputation is required")
	}
	if tokens == nil {
		return nil, errors.New("token validator is required")
	}
	if limiter == nil {
		return nil, errors.New("rate limiter is required")
	}
	if limits == nil {
		return nil, errors.New("rate limit table is required")
	}
	p := &Pipeline{
		reputation: rep,
		tokens:     tokens,
		limiter:    limiter,
		limits:     limits,
		screener:   NewScreener(validation.MaxBodySize),
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.audit == nil {
		p.audit = audit.NewLogger(p.logger, nil)
	}
	return p, nil
}

// Admit returns middleware enforcing policy. It panics when policy names a
// scope with no configured budget, so misconfigured routes fail at startup.
func (p *Pipeline) Admit(policy Policy) func(http.Handler) http.Handler {
	var limit models.Limit
	if policy.Scope != "" {
		l, ok := p.limits.Lookup(policy.Scope)
		if !ok {
			panic(fmt.Sprintf("admission: no rate limit configured for scope %q", policy.Scope))
		}
		limit = l
	}
	scopeLabel := string(policy.Scope)
	if scopeLabel == "" {
		scopeLabel = "none"
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ctx := r.Context()
			source := requestcontext.ClientIP(ctx)

			// 1. reputation
			if !gated(ctx) && p.rejectBlocked(ctx, w, r, scopeLabel) {
				return
			}

			// 2. authentication
			principal, reason := p.authenticate(ctx, r, policy.Auth)
			if policy.Auth == AuthRequired && principal == nil {
				meta := requestMetadata(r)
				meta["reason"] = reason
				w.Header().Set("WWW-Authenticate", `Bearer error="invalid_token"`)
				p.reject(ctx, w, scopeLabel, OutcomeUnauthorized, audit.Event{
					Action:   audit.ActionAuthRejected,
					Metadata: meta,
				})
				return
			}
			if principal != nil {
				ctx = WithPrincipal(ctx, principal)
				r = r.WithContext(ctx)
			}

			// 3. rate limit
			var admitted *models.Result
			if policy.Scope != "" {
				identifier := source
				if principal != nil {
					identifier = principal.SubjectID
				}
				if identifier == "" {
					identifier = "unknown"
				}
				res, err := p.limiter.Admit(ctx, policy.Scope, identifier, limit)
				if err != nil {
					p.logger.ErrorContext(ctx, "rate limit check failed", "scope", policy.Scope, "error", err)
					httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeInternal, "rate limit check failed"))
					return
				}
				setRateLimitHeaders(w, res)
				if res.Degraded && res.Allowed && p.metrics != nil {
					p.metrics.IncrementFailOpen("ratelimit")
				}
				if !res.Allowed {
					p.rejectRateLimited(ctx, w, r, policy.Scope, identifier, source, res)
					return
				}
				admitted = res
			}

			// 4. screen
			if policy.Screen {
				match, err := p.screener.Scan(r)
				if err != nil {
					p.logger.WarnContext(ctx, "request body could not be screened", "error", err)
					httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
						Error:            "bad_request",
						ErrorDescription: "Request body could not be read",
					})
					p.observeOutcome(scopeLabel, OutcomeBadRequest)
					return
				}
				if match != nil {
					p.rejectMalicious(ctx, w, r, scopeLabel, source, match)
					return
				}
			}

			// 5. handoff
			p.observeOutcome(scopeLabel, OutcomeAdmitted)
			if p.metrics != nil {
				p.metrics.ObservePass(time.Since(start).Seconds())
			}
			if policy.CountFailuresOnly && admitted != nil {
				rec := request.NewStatusRecorder(w)
				next.ServeHTTP(rec, r)
				if rec.Status() < http.StatusBadRequest {
					p.limiter.Retract(ctx, policy.Scope, admitted)
				}
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

type gatedKey struct{}

func gated(ctx context.Context) bool {
	ok, _ := ctx.Value(gatedKey{}).(bool)
	return ok
}

// Gate runs the reputation check on its own. Mount it ahead of middleware
// that rejects by itself (body limits, content type) so a blocked source is
// always answered 403 and audited. Admit skips the check for requests that
// passed Gate.
func (p *Pipeline) Gate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if p.rejectBlocked(ctx, w, r, "gate") {
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(ctx, gatedKey{}, true)))
	})
}

func (p *Pipeline) rejectBlocked(ctx context.Context, w http.ResponseWriter, r *http.Request, scope string) bool {
	if !p.checkBlocked(ctx, requestcontext.ClientIP(ctx)) {
		return false
	}
	p.reject(ctx, w, scope, OutcomeForbidden, audit.Event{
		Action:   audit.ActionBlockedRequest,
		Metadata: requestMetadata(r),
	})
	return true
}

// ReportDomainEvent records a domain audit event attributed to the
// request's principal and source address.
func (p *Pipeline) ReportDomainEvent(ctx context.Context, action, resource, resourceID string, metadata map[string]string) {
	p.audit.Domain(ctx, audit.Event{
		Action:     action,
		SubjectID:  SubjectID(ctx),
		Resource:   resource,
		ResourceID: resourceID,
		Metadata:   metadata,
	})
}

func (p *Pipeline) checkBlocked(ctx context.Context, source string) bool {
	if source == "" {
		return false
	}
	blocked, err := p.reputation.IsBlocked(ctx, source)
	if err != nil {
		p.logger.ErrorContext(ctx, "reputation check failed, admitting",
			"source_prefix", privacy.AnonymizeIP(source),
			"error", err,
		)
		if p.metrics != nil {
			p.metrics.IncrementFailOpen("reputation")
		}
		return false
	}
	return blocked
}

// authenticate returns the principal for a valid credential, or nil and a
// short reason.
func (p *Pipeline) authenticate(ctx context.Context, r *http.Request, mode AuthMode) (*Principal, string) {
	if mode == AuthNone {
		return nil, ""
	}
	raw, ok := bearerToken(r)
	if !ok {
		return nil, "missing_credential"
	}
	claims, err := p.tokens.ValidateAccess(ctx, raw)
	if err != nil {
		reason := "invalid_credential"
		switch {
		case dErrors.HasCode(err, dErrors.CodeExpiredToken):
			reason = "expired_credential"
		case dErrors.HasCode(err, dErrors.CodeWrongCredentialKind):
			reason = "wrong_credential_kind"
		}
		if mode == AuthRequired {
			p.logger.WarnContext(ctx, "unauthorized access", "reason", reason)
		}
		return nil, reason
	}
	return &Principal{
		SubjectID: claims.SubjectID(),
		Role:      claims.Role,
		TokenKind: claims.Kind,
		TokenID:   claims.ID,
	}, ""
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	scheme, rest, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	rest = strings.TrimSpace(rest)
	if rest == "" || len(rest) > validation.MaxRefreshTokenLength {
		return "", false
	}
	return rest, true
}

func (p *Pipeline) rejectRateLimited(ctx context.Context, w http.ResponseWriter, r *http.Request, scope models.Scope, identifier, source string, res *models.Result) {
	retryAfter := res.RetryAfterSeconds()
	meta := requestMetadata(r)
	meta["scope"] = string(scope)
	meta["identifier"] = identifier
	meta["limit"] = strconv.Itoa(res.Limit)
	meta["reset_at"] = res.ResetAt.UTC().Format(time.RFC3339)
	if res.Degraded {
		meta["degraded"] = "true"
	}

	p.audit.Security(ctx, audit.Event{
		Action:    audit.ActionRateLimitExceeded,
		SubjectID: SubjectID(ctx),
		Metadata:  meta,
	})
	if !res.Degraded {
		p.countViolation(ctx, source)
	}

	w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
	httputil.WriteJSON(w, http.StatusTooManyRequests, RateLimitedResponse{
		Error:            "rate_limit_exceeded",
		ErrorDescription: "Too many requests, retry after the reset time",
		RetryAfter:       retryAfter,
		ResetAt:          res.ResetAt.UTC(),
	})
	p.observeOutcome(string(scope), OutcomeTooManyRequests)
}

func (p *Pipeline) countViolation(ctx context.Context, source string) {
	b := p.blocks
	if b.ViolationThreshold <= 0 || source == "" {
		return
	}
	count, err := p.reputation.RecordViolation(ctx, source, b.ViolationLookback)
	if err != nil {
		p.logger.ErrorContext(ctx, "failed to record violation",
			"source_prefix", privacy.AnonymizeIP(source),
			"error", err,
		)
		return
	}
	if count < b.ViolationThreshold {
		return
	}
	reason := fmt.Sprintf("%d rate limit violations within %s", count, b.ViolationLookback)
	p.block(ctx, source, b.ViolationBlockFor, reason, reputation.SourceAutoBlock)
}

func (p *Pipeline) rejectMalicious(ctx context.Context, w http.ResponseWriter, r *http.Request, scope, source string, match *Match) {
	meta := requestMetadata(r)
	meta["field"] = match.Field
	meta["pattern"] = match.Pattern
	p.audit.Security(ctx, audit.Event{
		Action:    audit.ActionMaliciousInputDetected,
		SubjectID: SubjectID(ctx),
		Metadata:  meta,
	})
	if p.metrics != nil {
		p.metrics.IncrementScreenHit(match.Pattern)
	}
	if p.blocks.MaliciousBlockFor > 0 && source != "" {
		p.block(ctx, source, p.blocks.MaliciousBlockFor, "malicious input: "+match.Pattern, reputation.SourceMaliciousInput)
	}
	httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
		Error:            "bad_request",
		ErrorDescription: "Request contains disallowed content",
	})
	p.observeOutcome(scope, OutcomeBadRequest)
}

func (p *Pipeline) block(ctx context.Context, source string, d time.Duration, reason string, src reputation.Source) {
	if _, err := p.reputation.Block(ctx, source, d, reason, reputation.WithSource(src)); err != nil {
		p.logger.ErrorContext(ctx, "automatic block failed",
			"source_prefix", privacy.AnonymizeIP(source),
			"trigger", string(src),
			"error", err,
		)
		return
	}
	p.logger.WarnContext(ctx, "source blocked automatically",
		"source_prefix", privacy.AnonymizeIP(source),
		"trigger", string(src),
		"duration", d.String(),
	)
	if p.metrics != nil {
		p.metrics.IncrementAutoBlock(string(src))
	}
}

func (p *Pipeline) reject(ctx context.Context, w http.ResponseWriter, scope string, outcome Outcome, event audit.Event) {
	p.audit.Security(ctx, event)
	switch outcome {
	case OutcomeForbidden:
		httputil.WriteJSON(w, http.StatusForbidden, httputil.ErrorResponse{
			Error:            "forbidden",
			ErrorDescription: "Access denied",
		})
	case OutcomeUnauthorized:
		httputil.WriteJSON(w, http.StatusUnauthorized, httputil.ErrorResponse{
			Error:            "unauthorized",
			ErrorDescription: "Invalid or expired credentials",
		})
	}
	p.observeOutcome(scope, outcome)
}

func (p *Pipeline) observeOutcome(scope string, outcome Outcome) {
	if p.metrics != nil {
		p.metrics.ObserveOutcome(scope, string(outcome))
	}
}

func setRateLimitHeaders(w http.ResponseWriter, res *models.Result) {
	h := w.Header()
	h.Set("X-RateLimit-Limit", strconv.Itoa(res.Limit))
	h.Set("X-RateLimit-Remaining", strconv.Itoa(res.Remaining))
	h.Set("X-RateLimit-Reset", strconv.FormatInt(res.ResetAt.Unix(), 10))
}

func requestMetadata(r *http.Request) map[string]string {
	return map[string]string{
		"method": r.Method,
		"path":   r.URL.Path,
	}
}
