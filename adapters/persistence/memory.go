package persistence

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/filipposta/legacy-premium-api/internal/domain/docstore"
	"github.com/filipposta/legacy-premium-api/pkg/apperror"
)

// MemoryDocStore is a map-backed Store with the same semantics as the
// Postgres adapter. Unit tests and local development run on it.
type MemoryDocStore struct {
	mu       sync.RWMutex
	data     map[string]map[string]map[string]any
	notifier *docNotifier

	// FailQuery forces Query to return this error; tests use it to
	// simulate store outages.
	FailQuery error
	// FailGetIDs forces Get to fail for the listed document ids.
	FailGetIDs map[string]error
	// FailDeleteIDs forces Delete to fail for the listed ids.
	FailDeleteIDs map[string]error
}

func NewMemoryDocStore() *MemoryDocStore {
	return &MemoryDocStore{
		data:     make(map[string]map[string]map[string]any),
		notifier: newDocNotifier(),
	}
}

func cloneDoc(data map[string]any) map[string]any {
	out := make(map[string]any, len(data))
	for k, v := range data {
		out[k] = v
	}
	return out
}

func (s *MemoryDocStore) Get(ctx context.Context, collection, id string) (*docstore.Document, error) {
	if err, ok := s.FailGetIDs[id]; ok {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	data, ok := s.data[collection][id]
	if !ok {
		return nil, apperror.NewNotFound(collection+" document", id)
	}
	return &docstore.Document{ID: id, Data: cloneDoc(data)}, nil
}

func (s *MemoryDocStore) Set(ctx context.Context, collection, id string, data map[string]any, merge bool) error {
	s.mu.Lock()
	if s.data[collection] == nil {
		s.data[collection] = make(map[string]map[string]any)
	}
	if merge {
		if existing, ok := s.data[collection][id]; ok {
			merged := cloneDoc(existing)
			for k, v := range data {
				merged[k] = v
			}
			s.data[collection][id] = merged
		} else {
			s.data[collection][id] = cloneDoc(data)
		}
	} else {
		s.data[collection][id] = cloneDoc(data)
	}
	stored := cloneDoc(s.data[collection][id])
	s.mu.Unlock()

	s.notifier.notify(collection, id, &docstore.Document{ID: id, Data: stored})
	return nil
}

func (s *MemoryDocStore) Add(ctx context.Context, collection string, data map[string]any) (string, error) {
	id := uuid.NewString()
	if err := s.Set(ctx, collection, id, data, false); err != nil {
		return "", err
	}
	return id, nil
}

func (s *MemoryDocStore) Delete(ctx context.Context, collection, id string) error {
	if err, ok := s.FailDeleteIDs[id]; ok {
		return err
	}

	s.mu.Lock()
	_, existed := s.data[collection][id]
	delete(s.data[collection], id)
	s.mu.Unlock()

	if existed {
		s.notifier.notify(collection, id, nil)
	}
	return nil
}

func (s *MemoryDocStore) Query(ctx context.Context, collection string, filter docstore.Filter, limit int) ([]docstore.Document, error) {
	if s.FailQuery != nil {
		return nil, s.FailQuery
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var docs []docstore.Document
	for id, data := range s.data[collection] {
		if len(docs) >= limit {
			break
		}
		if data[filter.Field] == filter.Value {
			docs = append(docs, docstore.Document{ID: id, Data: cloneDoc(data)})
		}
	}
	return docs, nil
}

func (s *MemoryDocStore) Subscribe(collection, id string, onNext func(*docstore.Document), onError func(error)) docstore.UnsubscribeFunc {
	return s.notifier.subscribe(collection, id, onNext, onError)
}
