package analysis

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/abgdnv/catalog/internal/product/metrics"
)

// Analyzer is the call a Dispatcher runs in the background.
type Analyzer interface {
	Analyze(ctx context.Context, fileName, contentType string, content []byte) ([]byte, error)
}

// Dispatcher runs analysis calls detached from the caller. Outcomes are
// logged and counted, never returned.
type Dispatcher struct {
	analyzer Analyzer
	timeout  time.Duration
	logger   *slog.Logger
	wg       sync.WaitGroup
}

// NewDispatcher creates a Dispatcher bounding every call by timeout.
func NewDispatcher(analyzer Analyzer, timeout time.Duration, logger *slog.Logger) *Dispatcher {
	return &Dispatcher{
		analyzer: analyzer,
		timeout:  timeout,
		logger:   logger.With("component", "analysis-dispatcher"),
	}
}

// Dispatch starts the analysis of an image that was saved as product reference.
func (d *Dispatcher) Dispatch(reference, fileName, contentType string, content []byte) {
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
		defer cancel()

		reply, err := d.analyzer.Analyze(ctx, fileName, contentType, content)
		outcome := Classify(err)
		metrics.AnalysisRequests.WithLabelValues(string(outcome)).Inc()

		log := d.logger.With("reference", reference, "file", fileName, "outcome", outcome)
		switch outcome {
		case OutcomeSuccess:
			log.Info("File analysis completed", "reply_bytes", len(reply))
			log.Debug("File analysis reply", "reply", string(reply))
		case OutcomeUnavailable:
			log.Warn("Analysis backend unavailable, continuing without analysis", "error", err)
		case OutcomeClientError:
			log.Warn("Analysis request rejected, continuing without analysis", "error", err)
		case OutcomeServerError:
			log.Warn("Analysis backend failed, continuing without analysis", "error", err)
		default:
			log.Warn("Unknown error during analysis, continuing without analysis", "error", err)
		}
	}()
}

// Wait blocks until every dispatched call has finished.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}
