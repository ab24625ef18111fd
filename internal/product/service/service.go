// Package service provides the catalog business logic on top of the product store.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/abgdnv/catalog/internal/platform/messaging"
	perrors "github.com/abgdnv/catalog/internal/product/errors"
	"github.com/abgdnv/catalog/internal/product/events"
	"github.com/abgdnv/catalog/internal/product/metrics"
	"github.com/abgdnv/catalog/internal/product/model"
	"github.com/abgdnv/catalog/internal/product/search"
	"github.com/abgdnv/catalog/internal/product/store"
	"github.com/abgdnv/catalog/internal/product/upload"
	"github.com/google/uuid"
)

// Sources recorded on added products.
const (
	SourceAPI    = "api"
	SourceUpload = "upload"
)

// maxReferenceBumps bounds how many later timestamps an upload tries
// when its placeholder reference is taken.
const maxReferenceBumps = 100

// ProductService defines the catalog operations.
type ProductService interface {
	// List returns the products matching query, sorted by column and order.
	List(query string, column search.Column, order search.Order) search.Result

	// Get returns the product with the given reference.
	// Returns ErrProductNotFound if no product matches.
	Get(reference string) (model.Product, error)

	// Create appends a product.
	// Returns ErrDuplicateReference if the reference is taken.
	Create(ctx context.Context, product model.Product) (model.Product, error)

	// Upload validates an image, appends a placeholder product for it and
	// starts its background analysis.
	// Returns an *upload.ValidationError if the file is rejected.
	Upload(ctx context.Context, file upload.File, content []byte) (model.Product, error)

	// Update replaces the product with the same reference.
	// Returns ErrProductNotFound if no product matches.
	Update(ctx context.Context, product model.Product) (model.Product, error)

	// Delete removes every product with the given reference and returns how many were removed.
	// Returns ErrProductNotFound if none matched.
	Delete(ctx context.Context, reference string) (int, error)

	// Count returns the number of products in the catalog.
	Count() int

	// Subscribe follows catalog snapshots, see store.ProductStore.
	Subscribe(l store.Listener) (unsubscribe func())
}

// AnalysisDispatcher starts a background analysis of an uploaded image.
type AnalysisDispatcher interface {
	Dispatch(reference, fileName, contentType string, content []byte)
}

// Service implements ProductService.
type Service struct {
	store      store.ProductStore
	dispatcher AnalysisDispatcher
	publisher  messaging.Publisher
	logger     *slog.Logger
	now        func() time.Time
}

// NewService creates a Service. A nil dispatcher disables analysis and a nil
// publisher disables events.
func NewService(st store.ProductStore, dispatcher AnalysisDispatcher, publisher messaging.Publisher, logger *slog.Logger) *Service {
	if publisher == nil {
		publisher = messaging.NoopPublisher{}
	}
	return &Service{
		store:      st,
		dispatcher: dispatcher,
		publisher:  publisher,
		logger:     logger.With("component", "service"),
		now:        time.Now,
	}
}

func (s *Service) List(query string, column search.Column, order search.Order) search.Result {
	return search.Render(s.store.GetAll(), query, column, order)
}

func (s *Service) Get(reference string) (model.Product, error) {
	p, err := s.store.FindByReference(reference)
	if err != nil {
		return model.Product{}, fmt.Errorf("failed to fetch product %s: %w", reference, err)
	}
	return p, nil
}

func (s *Service) Create(ctx context.Context, product model.Product) (model.Product, error) {
	if err := s.store.Add(product); err != nil {
		return model.Product{}, fmt.Errorf("failed to create product %s: %w", product.Reference, err)
	}
	metrics.ProductsAdded.WithLabelValues(SourceAPI).Inc()
	s.publish(ctx, events.ProductAddedEvent{
		EventID:    uuid.New(),
		Source:     SourceAPI,
		Product:    product,
		OccurredAt: s.now().UTC(),
	})
	return product, nil
}

func (s *Service) Upload(ctx context.Context, file upload.File, content []byte) (model.Product, error) {
	if err := upload.Validate(file); err != nil {
		var validationErr *upload.ValidationError
		if errors.As(err, &validationErr) {
			metrics.UploadsRejected.WithLabelValues(string(validationErr.Reason)).Inc()
		}
		return model.Product{}, err
	}

	now := s.now()
	product := upload.NewPlaceholderProduct(file, now)
	var err error
	for range maxReferenceBumps {
		if err = s.store.Add(product); !errors.Is(err, perrors.ErrDuplicateReference) {
			break
		}
		now = now.Add(time.Millisecond)
		product.Reference = upload.Reference(now)
	}
	if err != nil {
		return model.Product{}, fmt.Errorf("failed to add product for %s: %w", file.Name, err)
	}
	metrics.ProductsAdded.WithLabelValues(SourceUpload).Inc()
	s.logger.InfoContext(ctx, "Placeholder product created from image", "reference", product.Reference, "file", file.Name)

	if s.dispatcher != nil {
		s.dispatcher.Dispatch(product.Reference, file.Name, file.Type, content)
	}
	s.publish(ctx, events.ProductAddedEvent{
		EventID:    uuid.New(),
		Source:     SourceUpload,
		Product:    product,
		OccurredAt: now.UTC(),
	})
	return product, nil
}

func (s *Service) Update(ctx context.Context, product model.Product) (model.Product, error) {
	if !s.store.Update(product) {
		return model.Product{}, fmt.Errorf("failed to update product %s: %w", product.Reference, perrors.ErrProductNotFound)
	}
	metrics.ProductsUpdated.Inc()
	s.publish(ctx, events.ProductUpdatedEvent{
		EventID:    uuid.New(),
		Product:    product,
		OccurredAt: s.now().UTC(),
	})
	return product, nil
}

func (s *Service) Delete(ctx context.Context, reference string) (int, error) {
	removed := s.store.Delete(model.Product{Reference: reference})
	if removed == 0 {
		return 0, fmt.Errorf("failed to delete product %s: %w", reference, perrors.ErrProductNotFound)
	}
	metrics.ProductsDeleted.Add(float64(removed))
	s.publish(ctx, events.ProductDeletedEvent{
		EventID:    uuid.New(),
		Reference:  reference,
		Removed:    removed,
		OccurredAt: s.now().UTC(),
	})
	return removed, nil
}

func (s *Service) Count() int {
	return s.store.Count()
}

func (s *Service) Subscribe(l store.Listener) func() {
	return s.store.Subscribe(l)
}

// publish sends event and only logs a failure; the catalog change already happened.
func (s *Service) publish(ctx context.Context, event messaging.Event) {
	if err := s.publisher.Publish(ctx, event); err != nil {
		metrics.EventsPublishFailed.Inc()
		s.logger.WarnContext(ctx, "Failed to publish catalog event",
			"subject", event.Subject(), "error", err)
		return
	}
	s.logger.DebugContext(ctx, "Catalog event published", "subject", event.Subject())
}

