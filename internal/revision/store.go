package revision

import (
	"log/slog"
	"sync"

	"github.com/erazemk/taller/internal/model"
)

// Store is a State shared between goroutines. Subscribers are notified
// synchronously after every action that changed the state.
type Store struct {
	mu    sync.Mutex
	state State

	subMu  sync.Mutex
	nextID int
	subs   map[int]func(State)
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{subs: make(map[int]func(State))}
}

// Dispatch applies a and reports whether it matched anything.
func (st *Store) Dispatch(a Action) bool {
	applied, _ := st.dispatch(a, false)
	return applied
}

// DispatchDropped applies a as Dispatch does and also returns the images that
// were attached before the action and no longer are. Both are computed under
// the same lock, so a dropped image is not referenced by the state at return.
func (st *Store) DispatchDropped(a Action) (bool, []model.Image) {
	return st.dispatch(a, true)
}

func (st *Store) dispatch(a Action, track bool) (bool, []model.Image) {
	st.mu.Lock()
	var before []model.Image
	if track {
		before = st.state.images()
	}
	applied := Reduce(&st.state, a)
	var snap State
	var dropped []model.Image
	if applied {
		snap = st.state.Clone()
		if track {
			dropped = droppedImages(before, st.state.images())
		}
	}
	st.mu.Unlock()

	if !applied {
		slog.Debug("revision action missed", "action", actionName(a))
		return false, nil
	}
	st.notify(snap)
	return true, dropped
}

// droppedImages returns the distinct images of before that are absent from
// after, in order of first appearance.
func droppedImages(before, after []model.Image) []model.Image {
	kept := make(map[model.Image]bool, len(after))
	for _, img := range after {
		kept[img] = true
	}
	var dropped []model.Image
	seen := make(map[model.Image]bool)
	for _, img := range before {
		if kept[img] || seen[img] {
			continue
		}
		seen[img] = true
		dropped = append(dropped, img)
	}
	return dropped
}

// Snapshot returns a deep copy of the current state. Absent collections are
// returned empty rather than nil.
func (st *Store) Snapshot() State {
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.state.Clone().normalized()
}

// Subscribe registers fn to be called with a snapshot after each change. The
// returned function removes the subscription.
func (st *Store) Subscribe(fn func(State)) func() {
	st.subMu.Lock()
	defer st.subMu.Unlock()
	id := st.nextID
	st.nextID++
	st.subs[id] = fn
	return func() {
		st.subMu.Lock()
		defer st.subMu.Unlock()
		delete(st.subs, id)
	}
}

func (st *Store) notify(snap State) {
	st.subMu.Lock()
	fns := make([]func(State), 0, len(st.subs))
	for _, fn := range st.subs {
		fns = append(fns, fn)
	}
	st.subMu.Unlock()

	for _, fn := range fns {
		fn(snap)
	}
}

func actionName(a Action) string {
	switch a.(type) {
	case LoadCategories:
		return "load_categories"
	case ResetAll:
		return "reset_all"
	case Activate:
		return "activate"
	case Deactivate:
		return "deactivate"
	case AddItem:
		return "add_item"
	case RemoveItem:
		return "remove_item"
	case AddImage:
		return "add_image"
	case RemoveImage:
		return "remove_image"
	case UpdateImage:
		return "update_image"
	case SetImages:
		return "set_images"
	default:
		return "unknown"
	}
}

// Registry holds one Store per employee.
type Registry struct {
	mu     sync.Mutex
	stores map[string]*Store
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{stores: make(map[string]*Store)}
}

// Get returns the store for key, creating it on first use.
func (r *Registry) Get(key string) *Store {
	r.mu.Lock()
	defer r.mu.Unlock()
	st, ok := r.stores[key]
	if !ok {
		st = NewStore()
		r.stores[key] = st
	}
	return st
}

// Drop forgets the store for key and returns it, or nil if there was none.
func (r *Registry) Drop(key string) *Store {
	r.mu.Lock()
	defer r.mu.Unlock()
	st := r.stores[key]
	delete(r.stores, key)
	return st
}
