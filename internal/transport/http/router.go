// Package httptransport assembles the public router: shared middleware,
// admission policies per route, and the operator surface.
package httptransport

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"inkwell/internal/admin"
	"inkwell/internal/admission"
	authhandler "inkwell/internal/auth/handler"
	"inkwell/internal/content"
	"inkwell/internal/platform/health"
	ratelimitmw "inkwell/internal/ratelimit/middleware"
	"inkwell/internal/ratelimit/models"
	adminmw "inkwell/pkg/platform/middleware/admin"
	"inkwell/pkg/platform/middleware/device"
	"inkwell/pkg/platform/middleware/metadata"
	"inkwell/pkg/platform/middleware/request"
	"inkwell/pkg/platform/middleware/requesttime"
	"inkwell/pkg/platform/validation"
)

// Deps holds everything the router mounts. Admin and Throttle are optional.
type Deps struct {
	Logger         *slog.Logger
	Pipeline       *admission.Pipeline
	Auth           *authhandler.Handler
	Content        *content.Handler
	Admin          *admin.Handler
	AdminToken     string
	Health         *health.Handler
	Metadata       *metadata.Middleware
	Throttle       *ratelimitmw.GlobalThrottle
	Latency        *request.Metrics
	RequestTimeout time.Duration
}

// Policies maps each public route to its admission policy.
var Policies = struct {
	Register, Login, Refresh, LogoutAll, Me, Books, Generations, Admin admission.Policy
}{
	Register:    admission.Policy{Scope: models.ScopeAuth},
	Login:       admission.Policy{Scope: models.ScopeAuth, CountFailuresOnly: true},
	Refresh:     admission.Policy{Scope: models.ScopeAuth, CountFailuresOnly: true},
	LogoutAll:   admission.Policy{Scope: models.ScopeGeneralAPI, Auth: admission.AuthRequired},
	Me:          admission.Policy{Scope: models.ScopeGeneralAPI, Auth: admission.AuthRequired},
	Books:       admission.Policy{Scope: models.ScopeBookCreation, Auth: admission.AuthRequired, Screen: true},
	Generations: admission.Policy{Scope: models.ScopeAIGeneration, Auth: admission.AuthRequired, Screen: true},
	Admin:       admission.Policy{Scope: models.ScopeGeneralAPI, Auth: admission.AuthNone},
}

// NewRouter wires all endpoints with middleware.
func NewRouter(d Deps) (http.Handler, error) {
	if d.Pipeline == nil || d.Auth == nil || d.Content == nil || d.Health == nil {
		return nil, errors.New("pipeline, auth, content and health handlers are required")
	}
	if d.Admin != nil && d.AdminToken == "" {
		return nil, errors.New("admin token is required to mount the admin surface")
	}
	logger := d.Logger
	if logger == nil {
		logger = slog.Default()
	}
	meta := d.Metadata
	if meta == nil {
		meta = metadata.NewMiddleware(nil)
	}
	timeout := d.RequestTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	r := chi.NewRouter()
	r.Use(request.RequestID)
	r.Use(request.Recovery(logger))
	r.Use(meta.Handler)
	r.Use(device.Middleware)
	r.Use(requesttime.Middleware)
	r.Use(request.Logger(logger))
	if d.Latency != nil {
		r.Use(request.LatencyMiddleware(d.Latency))
	}

	// Health and metrics bypass throttling and admission.
	d.Health.Register(r)
	r.Handle("/metrics", promhttp.Handler())

	p := d.Pipeline
	r.Group(func(r chi.Router) {
		if d.Throttle != nil {
			r.Use(d.Throttle.Middleware)
		}
		r.Use(p.Gate)
		r.Use(request.Timeout(timeout))
		r.Use(request.BodyLimit(validation.MaxBodySize))
		r.Use(request.ContentTypeJSON)

		d.Auth.Register(r, authhandler.Routes{
			Register:  p.Admit(Policies.Register),
			Login:     p.Admit(Policies.Login),
			Refresh:   p.Admit(Policies.Refresh),
			LogoutAll: p.Admit(Policies.LogoutAll),
			Me:        p.Admit(Policies.Me),
		})
		d.Content.Register(r, content.Routes{
			Books:       p.Admit(Policies.Books),
			Generations: p.Admit(Policies.Generations),
		})

		if d.Admin != nil {
			r.Group(func(r chi.Router) {
				r.Use(p.Admit(Policies.Admin))
				r.Use(adminmw.RequireAdminToken(d.AdminToken, logger))
				d.Admin.Register(r)
			})
		}
	})

	return r, nil
}
