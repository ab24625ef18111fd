package config

import (
	"fmt"
	"net"
	"strings"
)

// PProfConfig controls the profiling listener. It is kept off the API port.
type PProfConfig struct {
	Enabled bool   `koanf:"enabled"`
	Addr    string `koanf:"addr"`
}

func (c *PProfConfig) String() string {
	var b strings.Builder
	b.WriteString("\n--- Diagnostics ---\n")
	b.WriteString(fmt.Sprintf("  pprof.enabled: %t\n", c.Enabled))
	b.WriteString(fmt.Sprintf("  pprof.addr: %s\n", c.Addr))
	return b.String()
}

// Validate only checks the address when profiling is enabled.
func (c *PProfConfig) Validate() error {
	if !c.Enabled {
		return nil
	}
	if _, _, err := net.SplitHostPort(c.Addr); err != nil {
		return fmt.Errorf("pprof.addr %q is not a host:port: %w", c.Addr, err)
	}
	return nil
}
