package bakecurve

// Store is the persistence abstraction for analyzed recordings.
// The Repository uses Store for all reads and writes; callers of Repository
// do not need to know which Store is used.
type Store interface {
	GetRecording(id RecordingID) (*Recording, bool)
	SetRecording(rec *Recording)
	ListRecordingIDs() []RecordingID
}

// InMemoryStore is an in-memory implementation of Store.
type InMemoryStore struct {
	recordings map[RecordingID]*Recording
}

// NewInMemoryStore returns a new empty in-memory store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		recordings: make(map[RecordingID]*Recording),
	}
}

// GetRecording implements Store.GetRecording.
func (s *InMemoryStore) GetRecording(id RecordingID) (*Recording, bool) {
	rec, ok := s.recordings[id]
	return rec, ok
}

// SetRecording implements Store.SetRecording. An existing recording with the
// same id is replaced wholesale.
func (s *InMemoryStore) SetRecording(rec *Recording) {
	s.recordings[rec.ID] = rec
}

// ListRecordingIDs implements Store.ListRecordingIDs.
func (s *InMemoryStore) ListRecordingIDs() []RecordingID {
	ids := make([]RecordingID, 0, len(s.recordings))
	for id := range s.recordings {
		ids = append(ids, id)
	}
	return ids
}
