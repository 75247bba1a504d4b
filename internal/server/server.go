package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/iwvelando/emi-reconcile/internal/scenario"
	"github.com/iwvelando/emi-reconcile/pkg/chart"
	"github.com/iwvelando/emi-reconcile/pkg/constants"
	"github.com/iwvelando/emi-reconcile/pkg/loans"
	"github.com/iwvelando/emi-reconcile/pkg/normalize"
	"github.com/iwvelando/emi-reconcile/pkg/output"
	"github.com/iwvelando/emi-reconcile/pkg/table"
)

type handler struct {
	runner      *scenario.Runner
	logger      *zap.Logger
	maxBodySize int64
	version     string
}

// NewHandler constructs the HTTP handler that serves the calculator and
// reconciliation API.
func NewHandler(runner *scenario.Runner, logger *zap.Logger, maxBodySize int64, version string) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}

	if maxBodySize <= 0 {
		maxBodySize = constants.DefaultMaxBodyBytes
	}

	trimmedVersion := strings.TrimSpace(version)
	if trimmedVersion == "" {
		trimmedVersion = "dev"
	}

	h := &handler{runner: runner, logger: logger, maxBodySize: maxBodySize, version: trimmedVersion}

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Route("/api", func(r chi.Router) {
		// Expected figures, yearly schedule and slider positions
		r.Post("/emi", h.handleEMI)

		// Captured run reconciliation
		r.Post("/reconcile", h.handleReconcile)

		// Version endpoint for client metadata
		r.Get("/version", h.handleVersion)
	})

	return r
}

type emiRequest struct {
	Name       string           `json:"name"`
	Parameters loans.Parameters `json:"parameters"`
	StartMonth string           `json:"startMonth"`
}

// reconcileRequest mirrors a run file. The workbook arrives as its label and
// value rows since the server never reads paths supplied by clients. Cells
// may be text or JSON numbers.
type reconcileRequest struct {
	emiRequest
	Summary     map[string]string    `json:"summary,omitempty"`
	Chart       []chart.StaticSeries `json:"chart,omitempty"`
	TableHTML   string               `json:"tableHtml,omitempty"`
	Spreadsheet [][]interface{}      `json:"spreadsheet,omitempty"`
}

type reconcileResponse struct {
	Result   *scenario.Result `json:"result"`
	Passed   bool             `json:"passed"`
	Duration string           `json:"duration"`
}

// sheetRows serves workbook rows posted inline.
type sheetRows [][]string

func (s sheetRows) Rows(string) ([][]string, error) { return s, nil }

func newSheetRows(cells [][]interface{}) (sheetRows, error) {
	rows := make(sheetRows, len(cells))
	for i, row := range cells {
		rows[i] = make([]string, len(row))
		for j, cell := range row {
			if text, ok := cell.(string); ok {
				rows[i][j] = text
				continue
			}
			n, err := normalize.Value(cell)
			if err != nil {
				return nil, fmt.Errorf("spreadsheet row %d cell %d: %w", i+1, j+1, err)
			}
			rows[i][j] = normalize.Text(n)
		}
	}
	return rows, nil
}

func (h *handler) handleEMI(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleEMI"

	var req emiRequest
	if !h.decode(w, r, &req, op) {
		return
	}

	res, err := h.runner.Run(r.Context(), h.inputs(req), scenario.Sources{})
	if err != nil {
		h.respondErrorWithOp(w, statusFor(err), err.Error(), op)
		return
	}
	h.writeJSON(w, http.StatusOK, res)
}

func (h *handler) handleReconcile(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleReconcile"

	start := time.Now()
	var req reconcileRequest
	if !h.decode(w, r, &req, op) {
		return
	}

	src := scenario.Sources{Summary: req.Summary}
	if len(req.Chart) > 0 {
		src.Chart = chart.NewStaticProvider(req.Chart...)
	}
	if req.TableHTML != "" {
		provider, err := table.NewHTMLProviderFromString(req.TableHTML)
		if err != nil {
			h.respondErrorWithOp(w, http.StatusBadRequest, fmt.Sprintf("failed to parse table markup: %v", err), op)
			return
		}
		src.Table = provider
	}
	if len(req.Spreadsheet) > 0 {
		rows, err := newSheetRows(req.Spreadsheet)
		if err != nil {
			h.respondErrorWithOp(w, http.StatusBadRequest, err.Error(), op)
			return
		}
		src.Spreadsheet = rows
	}

	res, err := h.runner.Run(r.Context(), h.inputs(req.emiRequest), src)
	if err != nil {
		h.respondErrorWithOp(w, statusFor(err), err.Error(), op)
		return
	}

	if r.URL.Query().Get("format") == constants.OutputFormatCSV {
		var buf bytes.Buffer
		if err := output.WriteCSV(&buf, []*scenario.Result{res}); err != nil {
			h.respondErrorWithOp(w, http.StatusInternalServerError, fmt.Sprintf("failed to render CSV: %v", err), op)
			return
		}
		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(buf.Bytes())
		return
	}

	h.writeJSON(w, http.StatusOK, reconcileResponse{
		Result:   res,
		Passed:   res.Passed(),
		Duration: time.Since(start).String(),
	})
}

func (h *handler) handleVersion(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{
		"version": h.version,
	})
}

func (h *handler) inputs(req emiRequest) scenario.Inputs {
	params := req.Parameters
	if params.TenureUnit == "" {
		params.TenureUnit = loans.Years
	} else if unit, err := loans.ParseTenureUnit(string(params.TenureUnit)); err == nil {
		params.TenureUnit = unit
	}
	return scenario.Inputs{Name: req.Name, Parameters: params, StartMonth: req.StartMonth}
}

// decode reads a JSON body capped at the configured size. It writes the error
// response itself and reports whether decoding succeeded.
func (h *handler) decode(w http.ResponseWriter, r *http.Request, dst interface{}, op string) bool {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBodySize)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			h.respondErrorWithOp(w, http.StatusRequestEntityTooLarge,
				fmt.Sprintf("request body exceeds limit of %d bytes", h.maxBodySize), op)
			return false
		}
		h.respondErrorWithOp(w, http.StatusBadRequest, fmt.Sprintf("failed to decode request: %v", err), op)
		return false
	}
	return true
}

func statusFor(err error) int {
	if errors.Is(err, loans.ErrInvalidParameter) {
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}

func (h *handler) respondErrorWithOp(w http.ResponseWriter, status int, msg string, op string) {
	if h.logger != nil {
		h.logger.Error("request failed",
			zap.String("op", op),
			zap.Int("status", status),
			zap.String("error", msg),
		)
	}

	h.writeJSON(w, status, map[string]string{"error": msg})
}

func (h *handler) writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil && h.logger != nil {
		h.logger.Error("failed to write JSON response", zap.Error(err))
	}
}
