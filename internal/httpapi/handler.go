// Package httpapi exposes the capture operation over HTTP:
//
//	GET  /describe  tool metadata with the parameter schema
//	POST /run       take a screenshot, returns {"image_path": ...}
//	GET  /healthz   liveness
//
// Errors are JSON objects of the form {"detail": "<message>"}.
package httpapi

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"github.com/invopop/jsonschema"
	"github.com/rs/zerolog"

	"github.com/ironsheep/screenshot-mcp/internal/capture"
	"github.com/ironsheep/screenshot-mcp/internal/schema"
)

// maxBodyBytes bounds POST /run bodies.
const maxBodyBytes = 64 * 1024

// ToolDescription is one entry of the GET /describe response.
type ToolDescription struct {
	Name        string             `json:"name"`
	Description string             `json:"description"`
	Parameters  *jsonschema.Schema `json:"parameters"`
}

// DescribeResponse is the GET /describe body.
type DescribeResponse struct {
	Tools []ToolDescription `json:"tools"`
}

// RunResponse is the POST /run success body.
type RunResponse struct {
	ImagePath string `json:"image_path"`
}

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Detail string `json:"detail"`
}

// Handler serves the HTTP surface.
type Handler struct {
	capture *capture.Service
	logger  zerolog.Logger
	mux     *http.ServeMux
}

// New returns the HTTP handler for svc.
func New(svc *capture.Service, logger zerolog.Logger) *Handler {
	h := &Handler{
		capture: svc,
		logger:  logger.With().Str("component", "http").Logger(),
		mux:     http.NewServeMux(),
	}
	h.mux.HandleFunc("/describe", h.handleDescribe)
	h.mux.HandleFunc("/run", h.handleRun)
	h.mux.HandleFunc("/healthz", h.handleHealthz)
	return h
}

// RequestIDHeader carries the request id; one is generated when absent.
const RequestIDHeader = "X-Request-ID"

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	id := r.Header.Get(RequestIDHeader)
	if id == "" {
		id = uuid.NewString()
	}
	w.Header().Set(RequestIDHeader, id)

	rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
	h.mux.ServeHTTP(rec, r)

	h.logger.Info().
		Str("request_id", id).
		Str("method", r.Method).
		Str("path", r.URL.Path).
		Int("status", rec.status).
		Dur("elapsed", time.Since(start)).
		Msg("request")
}

// Describe returns the tool metadata served on GET /describe.
func Describe() DescribeResponse {
	return DescribeResponse{
		Tools: []ToolDescription{{
			Name:        capture.ToolName,
			Description: capture.ToolDescription,
			Parameters:  schema.For(capture.Request{}),
		}},
	}
}

func (h *Handler) handleDescribe(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodGet) {
		return
	}
	writeJSON(w, http.StatusOK, Describe())
}

func (h *Handler) handleHealthz(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodGet) {
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) handleRun(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodPost) {
		return
	}

	var req capture.Request
	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(body).Decode(&req); err != nil {
		writeError(w, http.StatusUnprocessableEntity, errors.Wrap(err, "invalid request body"))
		return
	}

	res, err := h.capture.Capture(r.Context(), req)
	if err != nil {
		writeError(w, StatusFor(err, req.Mode), err)
		return
	}
	writeJSON(w, http.StatusOK, RunResponse{ImagePath: res.ImagePath})
}

// StatusFor maps a capture error to its HTTP status. Capture failures in
// display mode are the caller's fault (a display that does not exist) and
// map to 400; other capture failures are 500.
func StatusFor(err error, mode capture.Mode) int {
	switch capture.KindOf(err) {
	case capture.KindNone:
		return http.StatusOK
	case capture.KindMissingField, capture.KindUnknownMode, capture.KindInvalidArgument:
		return http.StatusUnprocessableEntity
	case capture.KindResolutionFailure:
		return http.StatusNotFound
	case capture.KindCaptureFailure:
		if mode == capture.ModeDisplay {
			return http.StatusBadRequest
		}
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

func allowMethod(w http.ResponseWriter, r *http.Request, method string) bool {
	if r.Method == method || (method == http.MethodGet && r.Method == http.MethodHead) {
		return true
	}
	w.Header().Set("Allow", method)
	writeJSON(w, http.StatusMethodNotAllowed, ErrorResponse{Detail: "Method Not Allowed"})
	return false
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, ErrorResponse{Detail: err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}
