// Package store keeps the product catalog as an ordered snapshot and
// notifies subscribers with the full snapshot after every change.
package store

import "github.com/abgdnv/catalog/internal/product/model"

// Listener receives a private copy of the catalog snapshot.
// Listeners run synchronously on the mutating goroutine and must not
// call Subscribe or mutate the store; use a goroutine or a channel for that.
type Listener func(products []model.Product)

// ProductStore is the single source of truth for the catalog.
type ProductStore interface {
	// GetAll returns a copy of the current snapshot in insertion order.
	GetAll() []model.Product

	// FindByReference returns the first product with the given reference.
	// Returns ErrProductNotFound if no product matches.
	FindByReference(reference string) (model.Product, error)

	// Count returns the number of products in the snapshot.
	Count() int

	// Subscribe registers l and delivers the current snapshot to it before returning.
	// Every later change is delivered in the order it was applied.
	Subscribe(l Listener) (unsubscribe func())

	// Add appends p to the end of the catalog.
	// Returns ErrDuplicateReference if a product with the same reference exists.
	Add(p model.Product) error

	// Update replaces the first product whose reference equals p.Reference.
	// Reports whether a product matched; a miss changes nothing and publishes nothing.
	Update(p model.Product) bool

	// Delete removes every product whose reference equals p.Reference and returns how many were removed.
	// A miss changes nothing and publishes nothing.
	Delete(p model.Product) int

	// Reset replaces the whole catalog.
	Reset(products []model.Product)
}
