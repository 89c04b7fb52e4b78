package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/rpgo/withholding-calculator/internal/calculation"
	"github.com/rpgo/withholding-calculator/internal/config"
	"github.com/rpgo/withholding-calculator/internal/domain"
	"go.uber.org/zap"
)

// DefaultMaxBodyBytes caps request bodies when no limit is configured.
const DefaultMaxBodyBytes int64 = 1 << 20

// DefaultsFunc supplies input defaults per request so the default month
// follows the calendar.
type DefaultsFunc func() config.Defaults

type handler struct {
	engine      *calculation.CalculationEngine
	defaults    DefaultsFunc
	logger      *zap.Logger
	maxBodySize int64
	version     string
}

// NewHandler constructs the HTTP handler that serves the withholding API.
func NewHandler(engine *calculation.CalculationEngine, defaults DefaultsFunc, logger *zap.Logger, maxBodySize int64, version string) http.Handler {
	if engine == nil {
		engine = calculation.NewCalculationEngine()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if maxBodySize <= 0 {
		maxBodySize = DefaultMaxBodyBytes
	}
	trimmedVersion := strings.TrimSpace(version)
	if trimmedVersion == "" {
		trimmedVersion = "dev"
	}

	h := &handler{engine: engine, defaults: defaults, logger: logger, maxBodySize: maxBodySize, version: trimmedVersion}

	mux := http.NewServeMux()
	mux.HandleFunc("/api/withholding", h.handleWithholding)
	mux.HandleFunc("/api/schedule", h.handleSchedule)
	mux.HandleFunc("/api/brackets", h.handleBrackets)
	mux.HandleFunc("/api/version", h.handleVersion)
	return mux
}

// Serve runs the handler on addr until ctx is cancelled, then shuts down gracefully.
func Serve(ctx context.Context, addr string, h http.Handler, logger *zap.Logger) error {
	if logger == nil {
		logger = zap.NewNop()
	}
	srv := &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("withholding API listening", zap.String("op", "server.Serve"), zap.String("address", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		logger.Info("shutting down withholding API", zap.String("op", "server.Serve"))
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown failed: %w", err)
		}
		return nil
	}
}

func (h *handler) currentDefaults() config.Defaults {
	if h.defaults == nil {
		in := calculation.DefaultTaxInputs()
		return config.Defaults{
			CurrentMonth:     in.CurrentMonth,
			Threshold:        in.Threshold,
			Insurance:        in.Insurance,
			SpecialDeduction: in.SpecialDeduction,
		}
	}
	return h.defaults()
}

func (h *handler) handleWithholding(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleWithholding"
	if r.Method != http.MethodPost {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	var doc config.InputDocument
	if status, err := h.decode(w, r, &doc); err != nil {
		h.respondError(w, status, err.Error(), op)
		return
	}

	in := doc.Resolve(h.currentDefaults())
	if err := config.ValidateTaxInputs(in); err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error(), op)
		return
	}

	res := h.engine.Calculate(in)
	h.logger.Debug("withholding calculated",
		zap.String("op", op),
		zap.Int("projected_month", res.ProjectedMonth),
		zap.String("current_month_tax", res.CurrentMonthTax.StringFixed(2)),
	)
	h.writeJSON(w, http.StatusOK, domain.CaseResult{Inputs: in, Result: res})
}

func (h *handler) handleSchedule(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleSchedule"
	if r.Method != http.MethodPost {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	var doc config.ScheduleDocument
	if status, err := h.decode(w, r, &doc); err != nil {
		h.respondError(w, status, err.Error(), op)
		return
	}

	req := doc.Resolve(h.currentDefaults())
	if err := config.ValidateScheduleRequest(req); err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error(), op)
		return
	}

	schedule, err := h.engine.ProjectSchedule(req)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error(), op)
		return
	}
	h.writeJSON(w, http.StatusOK, schedule)
}

func (h *handler) handleBrackets(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}
	h.writeJSON(w, http.StatusOK, calculation.Brackets())
}

func (h *handler) handleVersion(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]string{
		"version": h.version,
	})
}

// decode reads a size-limited JSON body into dst, returning the HTTP status to
// use on failure.
func (h *handler) decode(w http.ResponseWriter, r *http.Request, dst any) (int, error) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBodySize)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			return http.StatusRequestEntityTooLarge, fmt.Errorf("request body exceeds limit of %d bytes", h.maxBodySize)
		}
		return http.StatusBadRequest, fmt.Errorf("invalid JSON body: %w", err)
	}
	return http.StatusOK, nil
}

func (h *handler) respondError(w http.ResponseWriter, status int, msg string, op string) {
	h.logger.Warn("withholding request failed",
		zap.String("op", op),
		zap.Int("status", status),
		zap.String("error", msg),
	)
	h.writeJSON(w, status, map[string]string{"error": msg})
}

func (h *handler) writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.logger.Error("failed to write JSON response", zap.Error(err))
	}
}
