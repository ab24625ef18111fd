// Package metrics declares the Prometheus collectors of the catalog.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ProductsAdded counts products added to the catalog, by source (api, upload).
	ProductsAdded = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "catalog_products_added_total",
		Help: "The total number of products added to the catalog",
	}, []string{"source"})

	ProductsUpdated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "catalog_products_updated_total",
		Help: "The total number of products updated",
	})

	ProductsDeleted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "catalog_products_deleted_total",
		Help: "The total number of products removed from the catalog",
	})

	// CatalogSize follows the number of products in the latest snapshot.
	CatalogSize = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "catalog_products",
		Help: "The number of products currently in the catalog",
	})

	// UploadsRejected counts rejected image uploads, by validation reason.
	UploadsRejected = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "catalog_uploads_rejected_total",
		Help: "The total number of image uploads rejected by validation",
	}, []string{"reason"})

	// AnalysisRequests counts background analysis calls, by outcome.
	AnalysisRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "catalog_analysis_requests_total",
		Help: "The total number of image analysis requests sent to the analysis backend",
	}, []string{"outcome"})

	// VisionRequests counts image descriptions requested from the language model, by outcome.
	VisionRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "catalog_vision_requests_total",
		Help: "The total number of product extraction requests sent to the language model",
	}, []string{"outcome"})

	EventsPublishFailed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "catalog_events_publish_failed_total",
		Help: "The total number of catalog events that could not be published",
	})
)
