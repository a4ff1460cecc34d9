package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/petrodeal/docgen-cli/internal/model"
	"github.com/petrodeal/docgen-cli/internal/validator"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		e, err := initEnv(ctx, "serve")
		if err != nil {
			return err
		}
		defer e.Close()

		if err := e.Store.Migrate(ctx); err != nil {
			return eris.Wrap(err, "migrate store")
		}

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		limiter := rate.NewLimiter(rate.Limit(cfg.Server.RatePerSecond), cfg.Server.RateBurst)
		srv := &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: newRouter(e, limiter),
		}

		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()

		zap.L().Info("starting server", zap.Int("port", port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return eris.Wrap(err, "server listen")
		}
		return nil
	},
}

// newRouter builds the API with logging, CORS and rate limiting applied to
// every route.
func newRouter(e *env, limiter *rate.Limiter) http.Handler {
	r := chi.NewRouter()
	r.Use(requestLogger)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "Authorization"},
	}))
	r.Use(rateLimit(limiter))

	r.Get("/health", func(w http.ResponseWriter, req *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Post("/api/generate", func(w http.ResponseWriter, req *http.Request) {
		var body model.GenerateRequest
		if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if body.TemplateID == "" {
			writeError(w, http.StatusBadRequest, "template_id is required")
			return
		}

		resp, err := e.Engine.Generate(req.Context(), body)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, resp)
	})

	r.Post("/api/validate", func(w http.ResponseWriter, req *http.Request) {
		var body struct {
			TemplateID  string `json:"template_id"`
			VesselID    *int64 `json:"vessel_id,omitempty"`
			PortID      *int64 `json:"port_id,omitempty"`
			CompanyID   *int64 `json:"company_id,omitempty"`
			RenderCheck bool   `json:"render_check,omitempty"`
		}
		if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if body.TemplateID == "" {
			writeError(w, http.StatusBadRequest, "template_id is required")
			return
		}

		var refs []model.EntityRef
		if body.VesselID != nil {
			refs = append(refs, model.EntityRef{Kind: model.KindVessel, ID: *body.VesselID})
		}
		if body.PortID != nil {
			refs = append(refs, model.EntityRef{Kind: model.KindPort, ID: *body.PortID})
		}
		if body.CompanyID != nil {
			refs = append(refs, model.EntityRef{Kind: model.KindCompany, ID: *body.CompanyID})
		}

		rep, err := e.Validator.Validate(req.Context(), validator.Options{
			TemplateID:  body.TemplateID,
			Refs:        refs,
			RenderCheck: body.RenderCheck,
		})
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, rep)
	})

	r.Get("/api/templates/{id}/suggestions", func(w http.ResponseWriter, req *http.Request) {
		templateID := chi.URLParam(req, "id")
		state := model.SuggestionState(req.URL.Query().Get("state"))

		suggestions, err := e.Store.ListSuggestions(req.Context(), templateID, state)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, suggestions)
	})

	r.Post("/api/templates/{id}/review", func(w http.ResponseWriter, req *http.Request) {
		templateID := chi.URLParam(req, "id")
		var body struct {
			Action        string   `json:"action"`
			SuggestionID  string   `json:"suggestion_id,omitempty"`
			Field         string   `json:"field,omitempty"`
			SuggestionIDs []string `json:"suggestion_ids,omitempty"`
		}
		if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		switch body.Action {
		case "approve":
			s, err := e.Reviewer.Approve(req.Context(), body.SuggestionID)
			respondSuggestion(w, s, err)
		case "reject":
			s, err := e.Reviewer.Reject(req.Context(), body.SuggestionID)
			respondSuggestion(w, s, err)
		case "custom":
			s, err := e.Reviewer.Override(req.Context(), body.SuggestionID, body.Field)
			respondSuggestion(w, s, err)
		case "auto_apply":
			n, err := e.Reviewer.AutoApplyHighConfidence(req.Context(), templateID)
			respondCount(w, n, err)
		case "apply_selected":
			n, err := e.Reviewer.ApplySelected(req.Context(), templateID, body.SuggestionIDs)
			respondCount(w, n, err)
		default:
			writeError(w, http.StatusBadRequest, "unknown action")
		}
	})

	return r
}

func respondSuggestion(w http.ResponseWriter, s *model.Suggestion, err error) {
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s)
}

func respondCount(w http.ResponseWriter, n int, err error) {
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"committed": n})
}

// writeDomainError maps sentinel errors onto HTTP status codes.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, model.ErrTemplateNotFound), errors.Is(err, model.ErrEntityNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, model.ErrUnreadableTemplate):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, model.ErrSuggestionFinal):
		writeError(w, http.StatusConflict, err.Error())
	default:
		zap.L().Error("request failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		zap.L().Info("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int64("duration_ms", time.Since(start).Milliseconds()),
		)
	})
}

func rateLimit(limiter *rate.Limiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !limiter.Allow() {
				writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
