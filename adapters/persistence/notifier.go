package persistence

import (
	"sync"

	"github.com/filipposta/legacy-premium-api/internal/domain/docstore"
)

type docSubscriber struct {
	onNext  func(*docstore.Document)
	onError func(error)
}

// docNotifier fans document changes out to per-document subscribers.
// It only sees writes issued through the owning store adapter, so it
// is a process-local view of the document, not a cross-node one.
type docNotifier struct {
	mu     sync.Mutex
	nextID int
	subs   map[string]map[int]docSubscriber
}

func newDocNotifier() *docNotifier {
	return &docNotifier{subs: make(map[string]map[int]docSubscriber)}
}

func docKey(collection, id string) string {
	return collection + "/" + id
}

func (n *docNotifier) subscribe(collection, id string, onNext func(*docstore.Document), onError func(error)) docstore.UnsubscribeFunc {
	n.mu.Lock()
	defer n.mu.Unlock()

	key := docKey(collection, id)
	if n.subs[key] == nil {
		n.subs[key] = make(map[int]docSubscriber)
	}
	subID := n.nextID
	n.nextID++
	n.subs[key][subID] = docSubscriber{onNext: onNext, onError: onError}

	return func() {
		n.mu.Lock()
		defer n.mu.Unlock()
		delete(n.subs[key], subID)
		if len(n.subs[key]) == 0 {
			delete(n.subs, key)
		}
	}
}

// notify delivers the new document state; nil means deleted.
func (n *docNotifier) notify(collection, id string, doc *docstore.Document) {
	n.mu.Lock()
	subs := make([]docSubscriber, 0, len(n.subs[docKey(collection, id)]))
	for _, s := range n.subs[docKey(collection, id)] {
		subs = append(subs, s)
	}
	n.mu.Unlock()

	for _, s := range subs {
		s.onNext(doc)
	}
}

func (n *docNotifier) notifyError(collection, id string, err error) {
	n.mu.Lock()
	subs := make([]docSubscriber, 0, len(n.subs[docKey(collection, id)]))
	for _, s := range n.subs[docKey(collection, id)] {
		subs = append(subs, s)
	}
	n.mu.Unlock()

	for _, s := range subs {
		if s.onError != nil {
			s.onError(err)
		}
	}
}
