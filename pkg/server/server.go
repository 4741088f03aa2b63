// Package server serves provider wizards as server-rendered HTML pages.
// Unsaved input is kept as a session draft so it survives reloads and
// process restarts.
package server

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"

	"github.com/waggy/go-wizard/internal/logging"
	"github.com/waggy/go-wizard/pkg/metrics"
	"github.com/waggy/go-wizard/pkg/model"
	"github.com/waggy/go-wizard/pkg/render"
	"github.com/waggy/go-wizard/pkg/renderers/html"
	"github.com/waggy/go-wizard/pkg/session"
	"github.com/waggy/go-wizard/pkg/wizard"
)

// Server routes wizard requests to per-session controllers.
type Server struct {
	backend  wizard.Backend
	renderer *html.Renderer
	store    session.Store

	logger            logrus.FieldLogger
	metrics           *metrics.Recorder
	locale            render.Context
	themeName         string
	themeVariant      string
	cookieName        string
	secureCookie      bool
	controllerOptions []wizard.Option

	idleTimeout time.Duration
	now         func() time.Time

	mu          sync.Mutex
	controllers map[string]*cachedController
	lastSweep   time.Time
}

type cachedController struct {
	ctl      *wizard.Controller
	lastUsed time.Time
}

// New builds a server over backend. Drafts are written to store.
func New(backend wizard.Backend, renderer *html.Renderer, store session.Store, options ...Option) *Server {
	s := &Server{
		backend:     backend,
		renderer:    renderer,
		store:       store,
		logger:      logging.NewNop(),
		locale:      render.Context{Locale: "en", FallbackLocale: "en"},
		cookieName:  DefaultCookieName,
		idleTimeout: DefaultIdleTimeout,
		now:         time.Now,
		controllers: make(map[string]*cachedController),
	}
	for _, opt := range options {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// Handler returns the router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	if s.metrics != nil {
		r.Use(func(next http.Handler) http.Handler {
			return s.metrics.Instrument(routePattern, next)
		})
	}

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("ok"))
	})
	if s.metrics != nil {
		r.Handle("/metrics", s.metrics.Handler())
	}
	r.Handle(html.AssetsPrefix+"/*", http.StripPrefix(html.AssetsPrefix+"/", http.FileServerFS(html.AssetsFS())))

	r.Route("/wizard/{providerServiceID}", func(r chi.Router) {
		r.Get("/", s.handle(s.show))
		r.Post("/field", s.handle(s.field))
		r.Post("/toggle", s.handle(s.toggle))
		r.Post("/save", s.handle(s.save))
		r.Post("/back", s.handle(s.back))
		r.Post("/retry", s.handle(s.retry))
		r.Post("/dismiss", s.handle(s.dismiss))
	})
	return r
}

// request carries the per-request wizard state to an action.
type request struct {
	sessionID string
	ctl       *wizard.Controller
	lctx      render.Context
	notice    string
}

// action mutates the controller and returns the HTTP status for the page.
type action func(ctx context.Context, r *http.Request, req *request) (int, error)

func (s *Server) handle(fn action) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		providerServiceID, err := strconv.ParseInt(chi.URLParam(r, "providerServiceID"), 10, 64)
		if err != nil || providerServiceID <= 0 {
			http.Error(w, "invalid provider service id", http.StatusBadRequest)
			return
		}
		if r.Method == http.MethodPost {
			if err := r.ParseForm(); err != nil {
				http.Error(w, "invalid form", http.StatusBadRequest)
				return
			}
		}

		ctx := r.Context()
		sessionID := s.sessionID(w, r)
		log := s.logger.WithFields(logrus.Fields{
			"session":             sessionID,
			"provider_service_id": providerServiceID,
			"request_id":          middleware.GetReqID(ctx),
		})

		draft, hasDraft := s.loadDraft(ctx, log, sessionID, providerServiceID)
		req := &request{
			sessionID: sessionID,
			ctl:       s.controller(ctx, log, sessionID, providerServiceID, draft, hasDraft),
			lctx:      s.localeFor(r, draft),
		}

		status, err := fn(ctx, r, req)
		if err != nil {
			log.WithError(err).Debug("wizard action failed")
		}

		snap := req.ctl.Snapshot()
		if snap.Status == wizard.StatusCompleted {
			s.forget(ctx, log, sessionID, providerServiceID)
		} else if r.Method == http.MethodPost {
			s.saveDraft(ctx, log, sessionID, snap, req.lctx.Locale)
		}
		if status == http.StatusOK && snap.Status == wizard.StatusError {
			status = http.StatusBadGateway
		}

		page, err := s.renderer.RenderPage(ctx, html.Page{
			Snapshot:     snap,
			Context:      req.lctx,
			Action:       "/wizard/" + strconv.FormatInt(providerServiceID, 10),
			Notice:       req.notice,
			ThemeName:    s.themeName,
			ThemeVariant: s.themeVariant,
		})
		if err != nil {
			log.WithError(err).Error("render wizard page")
			http.Error(w, "unable to render wizard", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", s.renderer.ContentType())
		w.Header().Set("Cache-Control", "no-store")
		w.WriteHeader(status)
		_, _ = w.Write(page)
	}
}

func (s *Server) show(_ context.Context, _ *http.Request, _ *request) (int, error) {
	return http.StatusOK, nil
}

// field applies posted values without contacting the backend.
func (s *Server) field(_ context.Context, r *http.Request, req *request) (int, error) {
	if err := s.apply(r, req); err != nil {
		return statusFor(err), err
	}
	return http.StatusOK, nil
}

func (s *Server) toggle(_ context.Context, r *http.Request, req *request) (int, error) {
	key := strings.TrimSpace(r.PostForm.Get("key"))
	option := r.PostForm.Get("option")
	if key == "" {
		return http.StatusBadRequest, errors.New("server: toggle without key")
	}
	req.ctl.ToggleOption(key, option)
	return http.StatusOK, nil
}

func (s *Server) save(ctx context.Context, r *http.Request, req *request) (int, error) {
	if err := s.apply(r, req); err != nil {
		return statusFor(err), err
	}
	next := r.PostForm.Get("next") == "1"
	if err := req.ctl.Save(ctx, next); err != nil {
		return statusFor(err), err
	}
	if !next {
		req.notice = req.lctx.Translate("wizard.notice.saved", "Your changes were saved.")
	}
	return http.StatusOK, nil
}

func (s *Server) back(ctx context.Context, r *http.Request, req *request) (int, error) {
	if err := s.apply(r, req); err != nil {
		return statusFor(err), err
	}
	if err := req.ctl.Back(ctx); err != nil {
		return statusFor(err), err
	}
	return http.StatusOK, nil
}

func (s *Server) retry(ctx context.Context, _ *http.Request, req *request) (int, error) {
	if err := req.ctl.Retry(ctx); err != nil {
		return statusFor(err), err
	}
	return http.StatusOK, nil
}

func (s *Server) dismiss(ctx context.Context, _ *http.Request, req *request) (int, error) {
	req.ctl.Dismiss(ctx)
	return http.StatusOK, nil
}

// apply decodes the posted fields of the loaded step and feeds each one to
// the controller. A form posted for another step is rejected.
func (s *Server) apply(r *http.Request, req *request) error {
	snap := req.ctl.Snapshot()
	if !snap.HasStep {
		return wizard.ErrNoStep
	}
	if raw := r.PostForm.Get("step_id"); raw != "" && raw != strconv.FormatInt(snap.Step.ID, 10) {
		req.notice = req.lctx.Translate("wizard.notice.stale", "This step changed in another window. Please review it again.")
		return ErrStaleForm
	}
	changes, err := s.renderer.Decode(snap.Step, snap.Values, r.PostForm, req.lctx)
	if err != nil {
		return err
	}
	for _, field := range snap.Step.Fields {
		value, ok := changes[field.Key]
		if !ok || unchanged(snap.Values, field.Key, value) {
			continue
		}
		req.ctl.OnFieldChange(field.Key, value)
	}
	return nil
}

// unchanged reports whether a posted value matches what the controller
// already holds. An empty post for a key with no value counts as unchanged.
func unchanged(values model.Values, key string, value any) bool {
	if values.Equal(key, value) {
		return true
	}
	if _, ok := values[key]; ok {
		return false
	}
	switch typed := value.(type) {
	case nil:
		return true
	case string:
		return typed == ""
	}
	return false
}

// Active returns the number of cached controllers.
func (s *Server) Active() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.controllers)
}

// controller returns the cached controller for the session, creating and
// loading one on first use. A draft for the loaded step is restored.
// Controllers idle for longer than the idle timeout are dropped; their
// drafts stay in the store.
func (s *Server) controller(ctx context.Context, log logrus.FieldLogger, sessionID string, providerServiceID int64, draft session.Draft, hasDraft bool) *wizard.Controller {
	key := controllerKey(sessionID, providerServiceID)
	now := s.now()

	s.mu.Lock()
	s.sweepLocked(now)
	cached, ok := s.controllers[key]
	if ok && s.expired(cached, now) {
		ok = false
	}
	if !ok {
		options := append(append([]wizard.Option(nil), s.controllerOptions...), wizard.WithLogger(log))
		if s.metrics != nil {
			options = append(options, wizard.WithHooks(s.metrics.Hooks()))
		}
		cached = &cachedController{ctl: wizard.New(s.backend, providerServiceID, options...)}
		s.controllers[key] = cached
	}
	cached.lastUsed = now
	ctl := cached.ctl
	s.mu.Unlock()

	if ok {
		return ctl
	}
	if err := ctl.LoadWizard(ctx); err != nil {
		log.WithError(err).Warn("load wizard")
		return ctl
	}
	if hasDraft {
		if err := ctl.Restore(draft.StepID, draft.Values, draft.Errors); err != nil {
			log.WithError(err).Debug("discarding draft")
		}
	}
	return ctl
}

func (s *Server) expired(cached *cachedController, now time.Time) bool {
	return s.idleTimeout > 0 && now.Sub(cached.lastUsed) >= s.idleTimeout
}

// sweepLocked drops idle controllers, at most once per quarter of the idle
// timeout. s.mu must be held.
func (s *Server) sweepLocked(now time.Time) {
	if s.idleTimeout <= 0 || now.Sub(s.lastSweep) < s.idleTimeout/4 {
		return
	}
	s.lastSweep = now
	for key, cached := range s.controllers {
		if s.expired(cached, now) {
			delete(s.controllers, key)
		}
	}
}

func (s *Server) forget(ctx context.Context, log logrus.FieldLogger, sessionID string, providerServiceID int64) {
	s.mu.Lock()
	delete(s.controllers, controllerKey(sessionID, providerServiceID))
	s.mu.Unlock()
	if err := s.store.Delete(ctx, sessionID); err != nil {
		log.WithError(err).Warn("delete draft")
	}
}

func (s *Server) loadDraft(ctx context.Context, log logrus.FieldLogger, sessionID string, providerServiceID int64) (session.Draft, bool) {
	draft, err := s.store.Load(ctx, sessionID)
	if err != nil {
		if !errors.Is(err, session.ErrNotFound) {
			log.WithError(err).Warn("load draft")
		}
		return session.Draft{}, false
	}
	if draft.ProviderServiceID != providerServiceID {
		return session.Draft{}, false
	}
	return draft, true
}

func (s *Server) saveDraft(ctx context.Context, log logrus.FieldLogger, sessionID string, snap wizard.Snapshot, locale string) {
	if !snap.HasStep {
		return
	}
	draft := session.Draft{
		ProviderServiceID: snap.ProviderServiceID,
		StepID:            snap.Step.ID,
		Locale:            locale,
		Values:            snap.Values,
		Errors:            map[string]string(snap.Errors),
		UpdatedAt:         time.Now().UTC(),
	}
	if err := s.store.Save(ctx, sessionID, draft); err != nil {
		log.WithError(err).Warn("save draft")
	}
}

// sessionID reads the session cookie, issuing a new id when absent.
func (s *Server) sessionID(w http.ResponseWriter, r *http.Request) string {
	if cookie, err := r.Cookie(s.cookieName); err == nil && strings.TrimSpace(cookie.Value) != "" {
		return cookie.Value
	}
	id := session.NewID()
	http.SetCookie(w, &http.Cookie{
		Name:     s.cookieName,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		Secure:   s.secureCookie,
		SameSite: http.SameSiteLaxMode,
	})
	return id
}

func (s *Server) localeFor(r *http.Request, draft session.Draft) render.Context {
	lctx := s.locale
	if lang := strings.TrimSpace(r.URL.Query().Get("lang")); lang != "" {
		lctx.Locale = lang
	} else if draft.Locale != "" {
		lctx.Locale = draft.Locale
	}
	return lctx
}

func controllerKey(sessionID string, providerServiceID int64) string {
	return sessionID + ":" + strconv.FormatInt(providerServiceID, 10)
}

func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if pattern := rctx.RoutePattern(); pattern != "" {
			return pattern
		}
	}
	return "unmatched"
}
