package service

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/abgdnv/catalog/internal/platform/messaging"
	perrors "github.com/abgdnv/catalog/internal/product/errors"
	"github.com/abgdnv/catalog/internal/product/events"
	"github.com/abgdnv/catalog/internal/product/metrics"
	"github.com/abgdnv/catalog/internal/product/model"
	"github.com/abgdnv/catalog/internal/product/search"
	"github.com/abgdnv/catalog/internal/product/seed"
	"github.com/abgdnv/catalog/internal/product/store"
	"github.com/abgdnv/catalog/internal/product/upload"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockPublisher struct {
	mock.Mock
}

func (m *mockPublisher) Publish(ctx context.Context, event messaging.Event) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

type mockDispatcher struct {
	mock.Mock
}

func (m *mockDispatcher) Dispatch(reference, fileName, contentType string, content []byte) {
	m.Called(reference, fileName, contentType, content)
}

var fixedNow = time.UnixMilli(1700000000000)

func newTestService(t *testing.T, initial []model.Product) (*Service, *mockPublisher, *mockDispatcher) {
	t.Helper()
	publisher := new(mockPublisher)
	dispatcher := new(mockDispatcher)
	svc := NewService(store.NewInMemoryStore(initial), dispatcher, publisher, slog.New(slog.DiscardHandler))
	svc.now = func() time.Time { return fixedNow }
	return svc, publisher, dispatcher
}

func sample(ref string) model.Product {
	return model.Product{
		Reference:      ref,
		Name:           "Producto " + ref,
		Brand:          "Marca",
		Description:    "Descripción de prueba",
		Price:          "10,00",
		AvailableCount: 3,
		Department:     "Hogar",
	}
}

func Test_Service_List(t *testing.T) {
	// given
	svc, _, _ := newTestService(t, seed.Products())

	// when
	res := svc.List("sony", search.ColumnNone, search.Asc)

	// then
	require.Len(t, res.Products, 1)
	assert.Equal(t, "131-XYZAB", res.Products[0].Reference)
	assert.Equal(t, "1 de 12 productos", res.Summary)
}

func Test_Service_Get(t *testing.T) {
	testCases := []struct {
		name        string
		reference   string
		expectError error
	}{
		{name: "Success - product found", reference: "A-1"},
		{name: "Error - product not found", reference: "Z-9", expectError: perrors.ErrProductNotFound},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// given
			svc, _, _ := newTestService(t, []model.Product{sample("A-1")})

			// when
			found, err := svc.Get(tc.reference)

			// then
			if tc.expectError != nil {
				assert.ErrorIs(t, err, tc.expectError)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, sample("A-1"), found)
		})
	}
}

func Test_Service_Create(t *testing.T) {
	t.Run("Success - product added and event published", func(t *testing.T) {
		// given
		svc, publisher, _ := newTestService(t, nil)
		publisher.On("Publish", mock.Anything, mock.MatchedBy(func(e events.ProductAddedEvent) bool {
			return e.Product.Reference == "A-1" && e.Source == SourceAPI
		})).Return(nil).Once()
		before := testutil.ToFloat64(metrics.ProductsAdded.WithLabelValues(SourceAPI))

		// when
		created, err := svc.Create(context.Background(), sample("A-1"))

		// then
		require.NoError(t, err)
		assert.Equal(t, "A-1", created.Reference)
		assert.Equal(t, 1, svc.Count())
		assert.Equal(t, before+1, testutil.ToFloat64(metrics.ProductsAdded.WithLabelValues(SourceAPI)))
		publisher.AssertExpectations(t)
	})

	t.Run("Error - duplicate reference publishes nothing", func(t *testing.T) {
		// given
		svc, publisher, _ := newTestService(t, []model.Product{sample("A-1")})

		// when
		_, err := svc.Create(context.Background(), sample("A-1"))

		// then
		assert.ErrorIs(t, err, perrors.ErrDuplicateReference)
		assert.Equal(t, 1, svc.Count())
		publisher.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything)
	})

	t.Run("Publish failure is not returned", func(t *testing.T) {
		// given
		svc, publisher, _ := newTestService(t, nil)
		publisher.On("Publish", mock.Anything, mock.Anything).Return(errors.New("broker down")).Once()
		before := testutil.ToFloat64(metrics.EventsPublishFailed)

		// when
		_, err := svc.Create(context.Background(), sample("A-1"))

		// then
		require.NoError(t, err)
		assert.Equal(t, 1, svc.Count())
		assert.Equal(t, before+1, testutil.ToFloat64(metrics.EventsPublishFailed))
	})
}

func Test_Service_Upload(t *testing.T) {
	content := []byte("\x89PNG\r\n\x1a\n")

	t.Run("Success - placeholder added and analysis dispatched", func(t *testing.T) {
		// given
		svc, publisher, dispatcher := newTestService(t, seed.Products())
		publisher.On("Publish", mock.Anything, mock.Anything).Return(nil).Once()
		dispatcher.On("Dispatch", "IMG-1700000000000", "mi-foto_nueva.png", "image/png", content).Once()
		file := upload.File{Name: "mi-foto_nueva.png", Type: "image/png", Size: int64(len(content))}

		// when
		created, err := svc.Upload(context.Background(), file, content)

		// then
		require.NoError(t, err)
		assert.Equal(t, "IMG-1700000000000", created.Reference)
		assert.Equal(t, "mi foto nueva", created.Name)
		all := svc.List("", search.ColumnNone, search.Asc).Products
		assert.Equal(t, created, all[len(all)-1])
		dispatcher.AssertExpectations(t)
		publisher.AssertExpectations(t)
	})

	t.Run("Reference collision moves to the next millisecond", func(t *testing.T) {
		// given
		svc, publisher, dispatcher := newTestService(t, []model.Product{{Reference: "IMG-1700000000000"}})
		publisher.On("Publish", mock.Anything, mock.Anything).Return(nil)
		dispatcher.On("Dispatch", mock.Anything, mock.Anything, mock.Anything, mock.Anything)

		// when
		created, err := svc.Upload(context.Background(), upload.File{Name: "a.jpg", Type: "image/jpeg", Size: 10}, content)

		// then
		require.NoError(t, err)
		assert.Equal(t, "IMG-1700000000001", created.Reference)
		assert.Equal(t, 2, svc.Count())
	})

	testCases := []struct {
		name   string
		file   upload.File
		reason upload.Reason
	}{
		{name: "Error - wrong type", file: upload.File{Name: "a.png", Type: "image/gif", Size: 10}, reason: upload.ReasonType},
		{name: "Error - wrong extension", file: upload.File{Name: "a.gif", Type: "image/png", Size: 10}, reason: upload.ReasonExtension},
		{name: "Error - too large", file: upload.File{Name: "a.png", Type: "image/png", Size: upload.MaxFileSize + 1}, reason: upload.ReasonSize},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// given
			svc, publisher, dispatcher := newTestService(t, nil)
			counter := metrics.UploadsRejected.WithLabelValues(string(tc.reason))
			before := testutil.ToFloat64(counter)

			// when
			_, err := svc.Upload(context.Background(), tc.file, content)

			// then
			var validationErr *upload.ValidationError
			require.ErrorAs(t, err, &validationErr)
			assert.Equal(t, tc.reason, validationErr.Reason)
			assert.Equal(t, 0, svc.Count())
			assert.Equal(t, before+1, testutil.ToFloat64(counter))
			dispatcher.AssertNotCalled(t, "Dispatch", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
			publisher.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything)
		})
	}
}

func Test_Service_Upload_WithoutDispatcher(t *testing.T) {
	// given
	svc := NewService(store.NewInMemoryStore(nil), nil, nil, slog.New(slog.DiscardHandler))

	// when
	_, err := svc.Upload(context.Background(), upload.File{Name: "a.png", Type: "image/png", Size: 1}, []byte{1})

	// then
	require.NoError(t, err)
	assert.Equal(t, 1, svc.Count())
}

func Test_Service_Update(t *testing.T) {
	t.Run("Success - product replaced", func(t *testing.T) {
		// given
		svc, publisher, _ := newTestService(t, []model.Product{sample("A-1"), sample("B-2")})
		publisher.On("Publish", mock.Anything, mock.AnythingOfType("events.ProductUpdatedEvent")).Return(nil).Once()
		changed := sample("A-1")
		changed.Price = "11,50"

		// when
		updated, err := svc.Update(context.Background(), changed)

		// then
		require.NoError(t, err)
		assert.Equal(t, changed, updated)
		found, _ := svc.Get("A-1")
		assert.Equal(t, "11,50", found.Price)
		publisher.AssertExpectations(t)
	})

	t.Run("Error - product not found", func(t *testing.T) {
		// given
		svc, publisher, _ := newTestService(t, []model.Product{sample("A-1")})

		// when
		_, err := svc.Update(context.Background(), sample("Z-9"))

		// then
		assert.ErrorIs(t, err, perrors.ErrProductNotFound)
		publisher.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything)
	})
}

func Test_Service_Delete(t *testing.T) {
	t.Run("Success - every match removed", func(t *testing.T) {
		// given
		svc, publisher, _ := newTestService(t, []model.Product{sample("A-1"), sample("B-2")})
		publisher.On("Publish", mock.Anything, mock.MatchedBy(func(e events.ProductDeletedEvent) bool {
			return e.Reference == "A-1" && e.Removed == 1
		})).Return(nil).Once()

		// when
		removed, err := svc.Delete(context.Background(), "A-1")

		// then
		require.NoError(t, err)
		assert.Equal(t, 1, removed)
		assert.Equal(t, 1, svc.Count())
		publisher.AssertExpectations(t)
	})

	t.Run("Error - product not found", func(t *testing.T) {
		// given
		svc, publisher, _ := newTestService(t, []model.Product{sample("A-1")})

		// when
		_, err := svc.Delete(context.Background(), "Z-9")

		// then
		assert.ErrorIs(t, err, perrors.ErrProductNotFound)
		assert.Equal(t, 1, svc.Count())
		publisher.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything)
	})
}
