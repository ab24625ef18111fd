package config

import (
	"fmt"
	"strings"
	"time"
)

// Supported event drivers.
const (
	EventsDriverNone = "none"
	EventsDriverNATS = "nats"
	EventsDriverSQS  = "sqs"
)

// EventsConfig selects where catalog change events are published.
type EventsConfig struct {
	Driver string     `koanf:"driver"`
	NATS   NATSConfig `koanf:"nats"`
	SQS    SQSConfig  `koanf:"sqs"`
}

type NATSConfig struct {
	Url     string        `koanf:"url"`
	Timeout time.Duration `koanf:"timeout"`
	Stream  string        `koanf:"stream"`
}

type SQSConfig struct {
	Region   string `koanf:"region"`
	Endpoint string `koanf:"endpoint"`
	QueueURL string `koanf:"queueurl"`
}

// String returns a string representation of the events configuration.
func (c *EventsConfig) String() string {
	var b strings.Builder
	b.WriteString("\n--- Events ---\n")
	b.WriteString(fmt.Sprintf("  driver: %s\n", c.Driver))
	switch c.Driver {
	case EventsDriverNATS:
		b.WriteString(fmt.Sprintf("  nats.url: %s\n", c.NATS.Url))
		b.WriteString(fmt.Sprintf("  nats.timeout: %s\n", c.NATS.Timeout))
		b.WriteString(fmt.Sprintf("  nats.stream: %s\n", c.NATS.Stream))
	case EventsDriverSQS:
		b.WriteString(fmt.Sprintf("  sqs.region: %s\n", c.SQS.Region))
		b.WriteString(fmt.Sprintf("  sqs.endpoint: %s\n", c.SQS.Endpoint))
		b.WriteString(fmt.Sprintf("  sqs.queueurl: %s\n", c.SQS.QueueURL))
	}
	return b.String()
}

func (c *EventsConfig) Validate() error {
	switch c.Driver {
	case "", EventsDriverNone:
		return nil
	case EventsDriverNATS:
		return c.NATS.Validate()
	case EventsDriverSQS:
		return c.SQS.Validate()
	default:
		return fmt.Errorf("unknown events driver: %q", c.Driver)
	}
}

func (c *NATSConfig) Validate() error {
	if c.Url == "" {
		return fmt.Errorf("NATS URL is not configured")
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("nats dial timeout is not configured")
	}
	if c.Stream == "" {
		return fmt.Errorf("nats stream name is not configured")
	}
	return nil
}

func (c *SQSConfig) Validate() error {
	if c.Region == "" {
		return fmt.Errorf("SQS region is not configured")
	}
	if c.QueueURL == "" {
		return fmt.Errorf("SQS queue URL is not configured")
	}
	return nil
}
