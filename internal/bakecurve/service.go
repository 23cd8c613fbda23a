package bakecurve

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"bakecurve-service/internal/scurve"
)

// DefaultSamplePeriod is the probe logging interval assumed when a request
// does not carry one, in seconds.
const DefaultSamplePeriod = 5.0

// DefaultPublishTimeout bounds how long Analyze waits on the publisher.
const DefaultPublishTimeout = 5 * time.Second

// Archiver persists curve summaries outside the process.
type Archiver interface {
	SaveCurves(ctx context.Context, id RecordingID, analyzedAt time.Time, curves []CurveSummary) error
	ListCurves(ctx context.Context, id RecordingID) ([]ArchivedCurve, error)
	RecordingIDs(ctx context.Context) ([]RecordingID, error)
}

// ErrArchiveDisabled is returned by archive reads when no archive is configured.
var ErrArchiveDisabled = errors.New("curve archive disabled")

// Publisher announces freshly analyzed curves to downstream consumers.
type Publisher interface {
	PublishCurves(ctx context.Context, id RecordingID, analyzedAt time.Time, curves []CurveSummary) error
}

// AnalysisResult is what Analyze reports back for one recording.
type AnalysisResult struct {
	RecordingID  RecordingID    `json:"recording_id"`
	SampleCount  int            `json:"sample_count"`
	SamplePeriod float64        `json:"sample_period"`
	Curves       []CurveSummary `json:"curves"`
	CurrentIndex int            `json:"current_index"`
	Discarded    int            `json:"discarded_candidates"`
	Assignment   RoleAssignment `json:"assignment"`
	Degraded     bool           `json:"degraded"`
	Warnings     []string       `json:"warnings,omitempty"`
	Message      string         `json:"message,omitempty"`
	AnalyzedAt   time.Time      `json:"analyzed_at"`
}

// Service runs the resolve, detect, normalize pipeline and delegates storage
// to Repository.
type Service struct {
	repo           Repository
	detector       *Detector
	log            *slog.Logger
	samplePeriod   float64
	archive        Archiver
	publisher      Publisher
	publishTimeout time.Duration
	now            func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithArchiver persists summaries after every analysis.
func WithArchiver(a Archiver) Option {
	return func(s *Service) { s.archive = a }
}

// WithPublisher publishes summaries after every analysis.
func WithPublisher(p Publisher) Option {
	return func(s *Service) { s.publisher = p }
}

// WithPublishTimeout bounds each publish. Non-positive values keep the default.
func WithPublishTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.publishTimeout = d
		}
	}
}

// WithSamplePeriod sets the default sample period in seconds.
func WithSamplePeriod(seconds float64) Option {
	return func(s *Service) {
		if seconds > 0 {
			s.samplePeriod = seconds
		}
	}
}

// NewService returns a Service that stores results in repo and segments with
// det. A nil det uses DefaultDetectorConfig.
func NewService(repo Repository, det *Detector, log *slog.Logger, opts ...Option) *Service {
	if det == nil {
		det = NewDetector(DefaultDetectorConfig())
	}
	s := &Service{
		repo:           repo,
		detector:       det,
		log:            log,
		samplePeriod:   DefaultSamplePeriod,
		publishTimeout: DefaultPublishTimeout,
		now:            func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Analyze validates samples, detects and normalizes their curves, and loads
// them as the recording's registry, replacing any earlier analysis of id.
// Zero curves is a normal outcome reported through the result message.
func (s *Service) Analyze(ctx context.Context, id RecordingID, samples []Sample, samplePeriod float64) (AnalysisResult, error) {
	if samplePeriod <= 0 {
		samplePeriod = s.samplePeriod
	}
	if err := Validate(samples); err != nil {
		return AnalysisResult{}, err
	}

	res, err := ResolveRoles(samples)
	if err != nil {
		return AnalysisResult{}, fmt.Errorf("resolve roles for %s: %w", id, err)
	}
	if res.Degraded {
		s.log.Warn("role resolution degraded",
			slog.String("recording_id", string(id)),
			slog.Any("warnings", res.Warnings))
	}

	det := s.detector.Detect(NewSeries(samples, res))
	curves := Normalize(samples, res, det.Segments)

	rec := &Recording{
		ID:           id,
		Samples:      samples,
		SamplePeriod: samplePeriod,
		Resolution:   res,
		Registry:     NewRegistry(curves),
		Trace:        det.Trace,
		Discarded:    det.Discarded,
		AnalyzedAt:   s.now(),
	}
	s.repo.SaveRecording(rec)

	result := AnalysisResult{
		RecordingID:  id,
		SampleCount:  len(samples),
		SamplePeriod: samplePeriod,
		Curves:       rec.Registry.Summaries(),
		CurrentIndex: rec.Registry.CurrentIndex(),
		Discarded:    det.Discarded,
		Assignment:   res.Assignment,
		Degraded:     res.Degraded,
		Warnings:     res.Warnings,
		AnalyzedAt:   rec.AnalyzedAt,
	}
	if len(curves) == 0 {
		result.Message = ErrNoCurves.Error()
	}

	s.log.Info("recording analyzed",
		slog.String("recording_id", string(id)),
		slog.Int("samples", len(samples)),
		slog.Int("curves", len(curves)),
		slog.Int("discarded", det.Discarded),
		slog.String("method", string(res.Assignment.Method)))
	for _, c := range curves {
		s.log.Debug("curve retained",
			slog.String("recording_id", string(id)),
			slog.Int("curve_number", c.CurveNumber),
			slog.Int("start_index", c.StartIndex),
			slog.Int("end_index", c.EndIndex),
			slog.Float64("peak_temperature", c.PeakTemperature),
			slog.String("end_reason", string(c.EndReason)))
	}

	s.export(ctx, id, rec.AnalyzedAt, result.Curves)
	return result, nil
}

// export hands summaries to the optional archive and publisher. Failures are
// logged only; the analysis itself already succeeded.
func (s *Service) export(ctx context.Context, id RecordingID, at time.Time, curves []CurveSummary) {
	if s.archive != nil {
		if err := s.archive.SaveCurves(ctx, id, at, curves); err != nil {
			s.log.Error("archive curves failed",
				slog.String("recording_id", string(id)),
				slog.String("error", err.Error()))
		}
	}
	if s.publisher != nil {
		pctx, cancel := context.WithTimeout(ctx, s.publishTimeout)
		defer cancel()
		if err := s.publisher.PublishCurves(pctx, id, at, curves); err != nil {
			s.log.Error("publish curves failed",
				slog.String("recording_id", string(id)),
				slog.String("error", err.Error()))
		}
	}
}

// Curves returns the recording's curve summaries and current index.
func (s *Service) Curves(id RecordingID) ([]CurveSummary, int, error) {
	return s.repo.Curves(id)
}

// CurrentCurve returns the recording's current curve.
func (s *Service) CurrentCurve(id RecordingID) (NormalizedCurve, error) {
	return s.repo.CurrentCurve(id)
}

// SelectCurve makes index the recording's current curve.
func (s *Service) SelectCurve(id RecordingID, index int) (NormalizedCurve, error) {
	return s.repo.SelectCurve(id, index)
}

// Trace returns the detector trace of the recording's last analysis.
func (s *Service) Trace(id RecordingID) ([]TraceEvent, error) {
	return s.repo.Trace(id)
}

// Landmarks reports S-curve landmarks and zone timing for one curve.
func (s *Service) Landmarks(id RecordingID, index int) (scurve.Report, error) {
	c, err := s.repo.Curve(id, index)
	if err != nil {
		return scurve.Report{}, err
	}
	period, err := s.repo.SamplePeriod(id)
	if err != nil {
		return scurve.Report{}, err
	}
	minutes, core := c.CoreSeries()
	return scurve.Analyze(minutes, core, period), nil
}

// ArchivedCurves returns the archived summaries of id, which survive
// restarts and may come from an earlier analysis than the loaded one.
func (s *Service) ArchivedCurves(ctx context.Context, id RecordingID) ([]ArchivedCurve, error) {
	if s.archive == nil {
		return nil, ErrArchiveDisabled
	}
	curves, err := s.archive.ListCurves(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("list archived curves for %s: %w", id, err)
	}
	return curves, nil
}

// ArchivedRecordings lists every recording id with archived curves.
func (s *Service) ArchivedRecordings(ctx context.Context) ([]RecordingID, error) {
	if s.archive == nil {
		return nil, ErrArchiveDisabled
	}
	ids, err := s.archive.RecordingIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("list archived recordings: %w", err)
	}
	return ids, nil
}

// RecordingCount returns the number of loaded recordings.
func (s *Service) RecordingCount() int {
	return s.repo.RecordingCount()
}
