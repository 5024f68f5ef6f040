package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/turbolytics/formsync/internal"
	"github.com/turbolytics/formsync/internal/catalog"
	"github.com/turbolytics/formsync/internal/trigger"
)

// Syncer runs one synchronization.
type Syncer interface {
	Sync(ctx context.Context, variant internal.Variant) (*catalog.Catalog, error)
}

type Server struct {
	logger   *zap.Logger
	syncer   Syncer
	triggers *trigger.Registry
	notifier internal.Notifier
}

func New(syncer Syncer, triggers *trigger.Registry, logger *zap.Logger) *Server {
	return &Server{
		logger:   logger,
		syncer:   syncer,
		triggers: triggers,
	}
}

// RegisterNotifier exposes the notifier's delivery counters on the stats
// route when it keeps any.
func (s *Server) RegisterNotifier(n internal.Notifier) {
	s.notifier = n
	s.logger.Info("notifier registered", zap.String("notifier", fmt.Sprintf("%T", n)))
}

func (s *Server) logMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		defer func() {
			s.logger.Info("request",
				zap.String("request_id", middleware.GetReqID(r.Context())),
				zap.String("from", r.RemoteAddr),
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Int("bytes", ww.BytesWritten()),
				zap.Duration("duration", time.Since(start)),
			)
		}()

		next.ServeHTTP(ww, r)
	})
}

func (s *Server) Routes() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(s.logMiddleware)
	r.Use(middleware.Recoverer)

	r.Get("/health", s.health)
	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/menu", s.menu)
		r.Get("/stats", s.stats)
		r.Post("/actions/{action}", s.action)
		r.Post("/hooks/form-submit", s.formSubmit)
	})

	return r
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func (s *Server) menu(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.triggers.Menu())
}

// Stats reports the trigger state and, when available, notifier delivery
// counters.
type Stats struct {
	Variant  internal.Variant        `json:"variant"`
	Trigger  trigger.State           `json:"trigger"`
	Notifier *internal.NotifierStats `json:"notifier,omitempty"`
}

func (s *Server) stats(w http.ResponseWriter, r *http.Request) {
	st := Stats{
		Variant: s.triggers.Variant,
		Trigger: s.triggers.State.Current(),
	}
	if reporter, ok := s.notifier.(internal.StatsReporter); ok {
		ns := reporter.Stats()
		st.Notifier = &ns
	}
	s.writeJSON(w, http.StatusOK, st)
}

func (s *Server) action(w http.ResponseWriter, r *http.Request) {
	action := trigger.Action(chi.URLParam(r, "action"))

	var variant internal.Variant
	switch action {
	case trigger.ActionActivateTrigger:
	case trigger.ActionUpdateEmployerForm:
		variant = internal.VariantEmployers
	case trigger.ActionUpdateEvents:
		variant = internal.VariantEvents
	default:
		http.Error(w, "unknown action", http.StatusNotFound)
		return
	}

	if !s.triggers.Allows(action) {
		http.Error(w, "action not available", http.StatusConflict)
		return
	}

	if action == trigger.ActionActivateTrigger {
		s.writeJSON(w, http.StatusOK, s.triggers.Activate())
		return
	}
	s.run(w, r, variant)
}

func (s *Server) formSubmit(w http.ResponseWriter, r *http.Request) {
	if !s.triggers.AcceptsFormSubmit() {
		s.logger.Warn("form submission ignored, trigger not active")
		http.Error(w, "trigger not active", http.StatusConflict)
		return
	}
	s.run(w, r, internal.VariantEvents)
}

func (s *Server) run(w http.ResponseWriter, r *http.Request, variant internal.Variant) {
	// runs outlive the request that started them
	c, err := s.syncer.Sync(context.WithoutCancel(r.Context()), variant)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	s.writeJSON(w, http.StatusOK, c)
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("writing response", zap.Error(err))
	}
}

func (s *Server) Start(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:    addr,
		Handler: s.Routes(),
	}

	s.logger.Info("starting formsync server", zap.String("addr", addr))

	go func() {
		<-ctx.Done()
		s.logger.Info("shutting down formsync server")
		if err := srv.Shutdown(context.Background()); err != nil {
			s.logger.Error("server shutdown", zap.Error(err))
		}
	}()

	if err := srv.ListenAndServe(); err != http.ErrServerClosed {
		return err
	}
	return nil
}
