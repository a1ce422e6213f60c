package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ridebase/catalog-cli/internal/consolidate"
	"github.com/ridebase/catalog-cli/internal/review"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API for consolidation and review",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		env, err := initEnv(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		api := &apiServer{
			env:  env,
			gate: review.NewGate(env.Store),
		}

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: api.routes(),
		}

		// Graceful shutdown
		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			_ = srv.Shutdown(ctx)
		}()

		zap.L().Info("starting server", zap.Int("port", port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return eris.Wrap(err, "server listen")
		}

		return nil
	},
}

type apiServer struct {
	env  *consolidatorEnv
	gate *review.Gate
}

func (s *apiServer) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))

	r.Get("/health", s.handleHealth)
	r.Post("/consolidate", s.handleConsolidate)
	r.Post("/consolidate/batch", s.handleBatch)
	r.Route("/review", func(r chi.Router) {
		r.Get("/pending", s.handlePending)
		r.Post("/{id}/accept", s.handleAction(review.ActionAccept))
		r.Post("/{id}/reject", s.handleAction(review.ActionReject))
		r.Post("/{id}/flag", s.handleAction(review.ActionFlag))
		r.Post("/{id}/edit", s.handleEdit)
	})
	return r
}

func (s *apiServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *apiServer) handleConsolidate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		SKU     string   `json:"sku"`
		Sources []string `json:"sources"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.SKU == "" {
		writeError(w, http.StatusBadRequest, "sku is required")
		return
	}

	sources, err := parseSources(req.Sources)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	rec, err := s.env.Consolidator.Consolidate(r.Context(), req.SKU, sources)
	if err != nil {
		var noData *consolidate.NoDataFoundError
		if errors.As(err, &noData) {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		zap.L().Error("consolidate failed", zap.String("sku", req.SKU), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "consolidation failed")
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (s *apiServer) handleBatch(w http.ResponseWriter, r *http.Request) {
	var req struct {
		SKUs    []string `json:"skus"`
		Sources []string `json:"sources"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(req.SKUs) == 0 {
		writeError(w, http.StatusBadRequest, "skus is required")
		return
	}

	sources, err := parseSources(req.Sources)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	result := s.env.Consolidator.ConsolidateBatch(r.Context(), req.SKUs, sources)
	writeJSON(w, http.StatusOK, batchOutput(result))
}

func (s *apiServer) handlePending(w http.ResponseWriter, r *http.Request) {
	items, err := s.gate.Pending(r.Context(), 0)
	if err != nil {
		zap.L().Error("list pending failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "list pending failed")
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (s *apiServer) handleAction(action review.Action) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")

		var (
			item any
			err  error
		)
		switch action {
		case review.ActionAccept:
			item, err = s.gate.Accept(r.Context(), id)
		case review.ActionReject:
			item, err = s.gate.Reject(r.Context(), id)
		default:
			item, err = s.gate.Flag(r.Context(), id)
		}
		if err != nil {
			writeReviewError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, item)
	}
}

func (s *apiServer) handleEdit(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Fields map[string]any `json:"fields"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(req.Fields) == 0 {
		writeError(w, http.StatusBadRequest, "fields is required")
		return
	}

	item, err := s.gate.Edit(r.Context(), chi.URLParam(r, "id"), req.Fields)
	if err != nil {
		writeReviewError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

// writeReviewError maps gate errors to status codes: terminal-state
// transitions are conflicts, everything else is a server error.
func writeReviewError(w http.ResponseWriter, err error) {
	var transition *review.TransitionError
	if errors.As(err, &transition) {
		writeError(w, http.StatusConflict, err.Error())
		return
	}
	zap.L().Error("review action failed", zap.Error(err))
	writeError(w, http.StatusInternalServerError, err.Error())
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
