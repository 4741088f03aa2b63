package server

import (
	"time"

	"github.com/sirupsen/logrus"

	"github.com/waggy/go-wizard/pkg/metrics"
	"github.com/waggy/go-wizard/pkg/render"
	"github.com/waggy/go-wizard/pkg/wizard"
)

// DefaultCookieName names the cookie that carries the draft session id.
const DefaultCookieName = "waggy_wizard"

// DefaultIdleTimeout bounds how long an unused controller stays cached.
const DefaultIdleTimeout = 30 * time.Minute

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the request logger.
func WithLogger(logger logrus.FieldLogger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithMetrics instruments requests and controllers and mounts /metrics.
func WithMetrics(recorder *metrics.Recorder) Option {
	return func(s *Server) {
		s.metrics = recorder
	}
}

// WithLocale sets the default locale context. A "lang" query parameter
// overrides the locale per request.
func WithLocale(lctx render.Context) Option {
	return func(s *Server) {
		if lctx.Locale != "" {
			s.locale = lctx
		}
	}
}

// WithTheme selects the go-theme manifest and variant passed to the
// renderer.
func WithTheme(name, variant string) Option {
	return func(s *Server) {
		s.themeName = name
		s.themeVariant = variant
	}
}

// WithCookie overrides the session cookie name and Secure flag.
func WithCookie(name string, secure bool) Option {
	return func(s *Server) {
		if name != "" {
			s.cookieName = name
		}
		s.secureCookie = secure
	}
}

// WithControllerOptions forwards options to every controller the server
// creates.
func WithControllerOptions(options ...wizard.Option) Option {
	return func(s *Server) {
		s.controllerOptions = append(s.controllerOptions, options...)
	}
}

// WithIdleTimeout sets how long a controller may sit unused before it is
// dropped from the cache. Zero disables eviction.
func WithIdleTimeout(timeout time.Duration) Option {
	return func(s *Server) {
		if timeout >= 0 {
			s.idleTimeout = timeout
		}
	}
}

// WithClock replaces time.Now for idle tracking.
func WithClock(now func() time.Time) Option {
	return func(s *Server) {
		if now != nil {
			s.now = now
		}
	}
}
