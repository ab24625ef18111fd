package app

import (
	"context"
	"fmt"
	"log/slog"

	platformconfig "github.com/abgdnv/catalog/internal/platform/config"
	"github.com/abgdnv/catalog/internal/platform/messaging"
	pnats "github.com/abgdnv/catalog/internal/platform/messaging/nats"
	psqs "github.com/abgdnv/catalog/internal/platform/messaging/sqs"
	"github.com/abgdnv/catalog/internal/product/events"
)

// SetupPublisher connects the configured event driver. The returned func
// releases the connection.
func SetupPublisher(ctx context.Context, cfg platformconfig.EventsConfig, logger *slog.Logger) (messaging.Publisher, func(), error) {
	switch cfg.Driver {
	case platformconfig.EventsDriverNATS:
		nc, err := pnats.NewClient(cfg.NATS.Url, cfg.NATS.Timeout)
		if err != nil {
			return nil, nil, err
		}
		js, err := pnats.NewJetStreamContext(nc)
		if err != nil {
			return nil, nil, err
		}
		if err := pnats.EnsureStream(ctx, js, cfg.NATS.Stream, events.SubjectPrefix+">"); err != nil {
			nc.Close()
			return nil, nil, err
		}
		logger.Info("Publishing catalog events to NATS", "stream", cfg.NATS.Stream)
		return pnats.NewNatsPublisher(js), func() { _ = nc.Drain() }, nil

	case platformconfig.EventsDriverSQS:
		client, err := psqs.NewClient(ctx, cfg.SQS.Region, cfg.SQS.Endpoint)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create SQS client: %w", err)
		}
		logger.Info("Publishing catalog events to SQS", "queue", cfg.SQS.QueueURL)
		return psqs.NewPublisher(client, cfg.SQS.QueueURL), func() {}, nil

	default:
		logger.Info("Catalog events are disabled")
		return messaging.NoopPublisher{}, func() {}, nil
	}
}
