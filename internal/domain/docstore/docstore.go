package docstore

import "context"

// Collection names the service reads and writes.
const (
	CollectionUsers        = "users"
	CollectionUserSettings = "userSettings"
	CollectionProfileViews = "profileViews"
)

// Document is one schemaless record in a collection.
type Document struct {
	ID   string
	Data map[string]any
}

// Filter is a single field-equals condition. That is the only query
// shape the service needs.
type Filter struct {
	Field string
	Value any
}

// UnsubscribeFunc detaches a document subscription.
type UnsubscribeFunc func()

// Store is the generic per-document storage port. Get returns a
// not-found error for missing documents; Delete of a missing document
// is a no-op.
type Store interface {
	Get(ctx context.Context, collection, id string) (*Document, error)
	Set(ctx context.Context, collection, id string, data map[string]any, merge bool) error
	Add(ctx context.Context, collection string, data map[string]any) (string, error)
	Delete(ctx context.Context, collection, id string) error
	Query(ctx context.Context, collection string, filter Filter, limit int) ([]Document, error)
	Subscribe(collection, id string, onNext func(*Document), onError func(error)) UnsubscribeFunc
}
