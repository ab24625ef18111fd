package config

import (
	"fmt"
	"strings"
	"time"
)

// ShutdownConfig bounds how long each listener may drain after a stop signal.
// Open event streams are closed first, so the budget covers in-flight requests.
type ShutdownConfig struct {
	Timeout time.Duration `koanf:"timeout"`
}

func (c *ShutdownConfig) String() string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("  shutdown.timeout: %v\n", c.Timeout))
	return b.String()
}

func (c *ShutdownConfig) Validate() error {
	if c.Timeout <= 0 {
		return fmt.Errorf("shutdown.timeout must be greater than 0")
	}
	return nil
}
