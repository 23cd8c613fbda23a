package bakecurve

import (
	"errors"
	"sync"
)

// Repository defines the concurrency-safe contract for accessing analyzed
// recordings and their curve registries.
type Repository interface {
	// SaveRecording stores rec, replacing any recording with the same id
	// along with its registry and selection.
	SaveRecording(rec *Recording)

	// Curves returns the curve summaries of a recording in detection order
	// and the current index (-1 when there are no curves).
	Curves(id RecordingID) (summaries []CurveSummary, current int, err error)

	// SelectCurve makes index the current curve of the recording.
	SelectCurve(id RecordingID, index int) (NormalizedCurve, error)

	// CurrentCurve returns the current curve of the recording.
	CurrentCurve(id RecordingID) (NormalizedCurve, error)

	// Curve returns one curve without changing the selection.
	Curve(id RecordingID, index int) (NormalizedCurve, error)

	// Trace returns the detector trace recorded for the recording.
	Trace(id RecordingID) ([]TraceEvent, error)

	// SamplePeriod returns the sample period, in seconds, the recording was
	// analyzed with.
	SamplePeriod(id RecordingID) (float64, error)

	// RecordingCount returns the number of loaded recordings.
	// Used for metrics.
	RecordingCount() int
}

// ErrRecordingNotFound is returned when a recording id has not been analyzed.
var ErrRecordingNotFound = errors.New("recording not found")

// InMemoryRepository is a concurrency-safe in-memory implementation of Repository.
// It uses a Store for persistence; by default that is an InMemoryStore.
type InMemoryRepository struct {
	mu    sync.RWMutex
	store Store
}

// NewInMemoryRepository constructs a new repository with a default in-memory store.
func NewInMemoryRepository() *InMemoryRepository {
	return NewInMemoryRepositoryWithStore(NewInMemoryStore())
}

// NewInMemoryRepositoryWithStore constructs a repository that uses the given Store.
func NewInMemoryRepositoryWithStore(store Store) *InMemoryRepository {
	return &InMemoryRepository{store: store}
}

// SaveRecording implements Repository.SaveRecording.
func (r *InMemoryRepository) SaveRecording(rec *Recording) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if rec.Registry == nil {
		rec.Registry = NewRegistry(nil)
	}
	r.store.SetRecording(rec)
}

// Curves implements Repository.Curves.
func (r *InMemoryRepository) Curves(id RecordingID) ([]CurveSummary, int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rec, ok := r.store.GetRecording(id)
	if !ok {
		return nil, -1, ErrRecordingNotFound
	}
	return rec.Registry.Summaries(), rec.Registry.CurrentIndex(), nil
}

// SelectCurve implements Repository.SelectCurve.
func (r *InMemoryRepository) SelectCurve(id RecordingID, index int) (NormalizedCurve, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.store.GetRecording(id)
	if !ok {
		return NormalizedCurve{}, ErrRecordingNotFound
	}
	return rec.Registry.Select(index)
}

// CurrentCurve implements Repository.CurrentCurve.
func (r *InMemoryRepository) CurrentCurve(id RecordingID) (NormalizedCurve, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rec, ok := r.store.GetRecording(id)
	if !ok {
		return NormalizedCurve{}, ErrRecordingNotFound
	}
	return rec.Registry.Current()
}

// Curve implements Repository.Curve.
func (r *InMemoryRepository) Curve(id RecordingID, index int) (NormalizedCurve, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rec, ok := r.store.GetRecording(id)
	if !ok {
		return NormalizedCurve{}, ErrRecordingNotFound
	}
	return rec.Registry.Curve(index)
}

// Trace implements Repository.Trace.
func (r *InMemoryRepository) Trace(id RecordingID) ([]TraceEvent, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rec, ok := r.store.GetRecording(id)
	if !ok {
		return nil, ErrRecordingNotFound
	}
	// Copy to avoid exposing the recording's slice.
	out := make([]TraceEvent, len(rec.Trace))
	copy(out, rec.Trace)
	return out, nil
}

// SamplePeriod implements Repository.SamplePeriod.
func (r *InMemoryRepository) SamplePeriod(id RecordingID) (float64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rec, ok := r.store.GetRecording(id)
	if !ok {
		return 0, ErrRecordingNotFound
	}
	return rec.SamplePeriod, nil
}

// RecordingCount implements Repository.RecordingCount.
func (r *InMemoryRepository) RecordingCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.store.ListRecordingIDs())
}
