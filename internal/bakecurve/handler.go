package bakecurve

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"bakecurve-service/internal/platform/metrics"

	"github.com/go-chi/chi/v5"
)

// maxBodyBytes bounds an uploaded recording; a day of 5 s samples with
// eight channels is well under this.
const maxBodyBytes = 32 << 20

// Handler exposes curve analysis HTTP endpoints using go-chi.
type Handler struct {
	svc     *Service
	log     *slog.Logger
	metrics *metrics.Metrics
}

// NewHandler returns a Handler that uses the given Service, Logger, and optional Metrics.
// Metrics may be nil to disable metric recording (e.g. in tests).
func NewHandler(svc *Service, log *slog.Logger, m *metrics.Metrics) *Handler {
	return &Handler{svc: svc, log: log, metrics: m}
}

// Routes mounts every recording endpoint on r.
func (h *Handler) Routes(r chi.Router) {
	r.Get("/archive/recordings", h.ListArchivedRecordings)
	r.Route("/recordings/{recording_id}", func(r chi.Router) {
		r.Post("/samples", h.AnalyzeSamples)
		r.Get("/trace", h.GetTrace)
		r.Get("/archive", h.GetArchive)
		r.Route("/curves", func(r chi.Router) {
			r.Get("/", h.ListCurves)
			r.Get("/current", h.CurrentCurve)
			r.Post("/{index}/select", h.SelectCurve)
			r.Get("/{index}/landmarks", h.GetLandmarks)
		})
	})
}

type analyzeRequest struct {
	SamplePeriod float64  `json:"sample_period"`
	Samples      []Sample `json:"samples"`
}

type curvesResponse struct {
	RecordingID  RecordingID    `json:"recording_id"`
	Count        int            `json:"count"`
	CurrentIndex int            `json:"current_index"`
	Curves       []CurveSummary `json:"curves"`
	Message      string         `json:"message,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// AnalyzeSamples handles POST /recordings/{recording_id}/samples.
// Body: { "sample_period": 5, "samples": [ { "timestamp": 0, "channels": [...] }, ... ] }.
func (h *Handler) AnalyzeSamples(w http.ResponseWriter, r *http.Request) {
	id := RecordingID(chi.URLParam(r, "recording_id"))
	if id == "" {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	var req analyzeRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		h.log.Debug("invalid samples body", slog.String("error", err.Error()))
		h.writeError(w, http.StatusBadRequest, err)
		return
	}

	result, err := h.svc.Analyze(r.Context(), id, req.Samples, req.SamplePeriod)
	if err != nil {
		h.log.Info("samples rejected",
			slog.String("recording_id", string(id)),
			slog.Int("samples", len(req.Samples)),
			slog.String("error", err.Error()))
		h.writeError(w, statusFor(err), err)
		return
	}

	if h.metrics != nil {
		h.metrics.IncRecordingsAnalyzed()
		h.metrics.AddCurvesDetected(len(result.Curves))
		h.metrics.AddCandidatesDiscarded(result.Discarded)
		if result.Degraded {
			h.metrics.IncDegradedResolutions()
		}
	}
	writeJSON(w, http.StatusCreated, result)
}

// ListCurves handles GET /recordings/{recording_id}/curves.
func (h *Handler) ListCurves(w http.ResponseWriter, r *http.Request) {
	id := RecordingID(chi.URLParam(r, "recording_id"))

	summaries, current, err := h.svc.Curves(id)
	if err != nil {
		h.writeError(w, statusFor(err), err)
		return
	}

	resp := curvesResponse{
		RecordingID:  id,
		Count:        len(summaries),
		CurrentIndex: current,
		Curves:       summaries,
	}
	if len(summaries) == 0 {
		resp.Message = ErrNoCurves.Error()
	}
	writeJSON(w, http.StatusOK, resp)
}

// CurrentCurve handles GET /recordings/{recording_id}/curves/current.
func (h *Handler) CurrentCurve(w http.ResponseWriter, r *http.Request) {
	id := RecordingID(chi.URLParam(r, "recording_id"))

	c, err := h.svc.CurrentCurve(id)
	if err != nil {
		h.writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

// SelectCurve handles POST /recordings/{recording_id}/curves/{index}/select.
func (h *Handler) SelectCurve(w http.ResponseWriter, r *http.Request) {
	id := RecordingID(chi.URLParam(r, "recording_id"))
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		h.writeError(w, http.StatusBadRequest, err)
		return
	}

	c, err := h.svc.SelectCurve(id, index)
	if err != nil {
		h.writeError(w, statusFor(err), err)
		return
	}

	h.log.Debug("curve selected",
		slog.String("recording_id", string(id)),
		slog.Int("index", index))
	writeJSON(w, http.StatusOK, c.Summary())
}

// GetLandmarks handles GET /recordings/{recording_id}/curves/{index}/landmarks.
func (h *Handler) GetLandmarks(w http.ResponseWriter, r *http.Request) {
	id := RecordingID(chi.URLParam(r, "recording_id"))
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		h.writeError(w, http.StatusBadRequest, err)
		return
	}

	rep, err := h.svc.Landmarks(id, index)
	if err != nil {
		h.writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, rep)
}

// GetTrace handles GET /recordings/{recording_id}/trace.
func (h *Handler) GetTrace(w http.ResponseWriter, r *http.Request) {
	id := RecordingID(chi.URLParam(r, "recording_id"))

	events, err := h.svc.Trace(id)
	if err != nil {
		h.writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, events)
}

// GetArchive handles GET /recordings/{recording_id}/archive.
func (h *Handler) GetArchive(w http.ResponseWriter, r *http.Request) {
	id := RecordingID(chi.URLParam(r, "recording_id"))

	curves, err := h.svc.ArchivedCurves(r.Context(), id)
	if err != nil {
		h.writeError(w, statusFor(err), err)
		return
	}
	if curves == nil {
		curves = []ArchivedCurve{}
	}
	writeJSON(w, http.StatusOK, curves)
}

// ListArchivedRecordings handles GET /archive/recordings.
func (h *Handler) ListArchivedRecordings(w http.ResponseWriter, r *http.Request) {
	ids, err := h.svc.ArchivedRecordings(r.Context())
	if err != nil {
		h.writeError(w, statusFor(err), err)
		return
	}
	if ids == nil {
		ids = []RecordingID{}
	}
	writeJSON(w, http.StatusOK, ids)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, ErrInvalidSamples), errors.Is(err, ErrMissingTemperature):
		return http.StatusBadRequest
	case errors.Is(err, ErrRecordingNotFound), errors.Is(err, ErrNoCurves), errors.Is(err, ErrCurveIndexOutOfRange):
		return http.StatusNotFound
	case errors.Is(err, ErrArchiveDisabled):
		return http.StatusNotImplemented
	default:
		return http.StatusInternalServerError
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, err error) {
	if status >= http.StatusInternalServerError {
		h.log.Error("request failed", slog.String("error", err.Error()))
	}
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
