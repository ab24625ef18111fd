package store

import (
	"fmt"
	"slices"
	"sync"

	perrors "github.com/abgdnv/catalog/internal/product/errors"
	"github.com/abgdnv/catalog/internal/product/model"
)

type subscription struct {
	id       uint64
	listener Listener
}

// inMemory implements ProductStore with a copy-on-write slice.
// writeMu orders a mutation together with its delivery, mu guards the snapshot
// for readers and subMu guards the subscriber list.
type inMemory struct {
	writeMu  sync.Mutex
	mu       sync.RWMutex
	products []model.Product

	subMu  sync.Mutex
	subs   []subscription
	nextID uint64
}

// NewInMemoryStore creates a ProductStore holding a copy of initial.
func NewInMemoryStore(initial []model.Product) ProductStore {
	return &inMemory{
		products: clone(initial),
	}
}

func (s *inMemory) GetAll() []model.Product {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return clone(s.products)
}

func (s *inMemory) FindByReference(reference string) (model.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	idx := slices.IndexFunc(s.products, byReference(reference))
	if idx < 0 {
		return model.Product{}, perrors.ErrProductNotFound
	}
	return s.products[idx], nil
}

func (s *inMemory) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.products)
}

func (s *inMemory) Subscribe(l Listener) func() {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	s.subMu.Lock()
	s.nextID++
	id := s.nextID
	s.subs = append(s.subs, subscription{id: id, listener: l})
	s.subMu.Unlock()

	l(s.GetAll())

	var once sync.Once
	return func() {
		once.Do(func() {
			s.subMu.Lock()
			defer s.subMu.Unlock()
			s.subs = slices.DeleteFunc(s.subs, func(sub subscription) bool { return sub.id == id })
		})
	}
}

func (s *inMemory) Add(p model.Product) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	s.mu.Lock()
	if slices.ContainsFunc(s.products, byReference(p.Reference)) {
		s.mu.Unlock()
		return fmt.Errorf("add product %q: %w", p.Reference, perrors.ErrDuplicateReference)
	}
	next := make([]model.Product, len(s.products), len(s.products)+1)
	copy(next, s.products)
	next = append(next, p)
	s.products = next
	s.mu.Unlock()

	s.publish(next)
	return nil
}

func (s *inMemory) Update(p model.Product) bool {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	s.mu.Lock()
	idx := slices.IndexFunc(s.products, byReference(p.Reference))
	if idx < 0 {
		s.mu.Unlock()
		return false
	}
	next := clone(s.products)
	next[idx] = p
	s.products = next
	s.mu.Unlock()

	s.publish(next)
	return true
}

func (s *inMemory) Delete(p model.Product) int {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	s.mu.Lock()
	next := slices.DeleteFunc(clone(s.products), byReference(p.Reference))
	removed := len(s.products) - len(next)
	if removed == 0 {
		s.mu.Unlock()
		return 0
	}
	s.products = next
	s.mu.Unlock()

	s.publish(next)
	return removed
}

func (s *inMemory) Reset(products []model.Product) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	next := clone(products)
	s.mu.Lock()
	s.products = next
	s.mu.Unlock()

	s.publish(next)
}

// publish must be called with writeMu held.
func (s *inMemory) publish(snapshot []model.Product) {
	s.subMu.Lock()
	subs := slices.Clone(s.subs)
	s.subMu.Unlock()

	for _, sub := range subs {
		sub.listener(clone(snapshot))
	}
}

func byReference(reference string) func(model.Product) bool {
	return func(p model.Product) bool {
		return p.Reference == reference
	}
}

// clone never returns nil so an empty catalog encodes as [].
func clone(products []model.Product) []model.Product {
	out := make([]model.Product, len(products))
	copy(out, products)
	return out
}
