package foyer

import (
	"github.com/foyerweb/foyer/config"
)

// ServerWithConfigProvider derives the transport configuration from a
// config provider, falling back to DefaultServerConfig for anything the
// provider does not set. Expected keys, all under "server": read_timeout,
// write_timeout, idle_timeout, read_header_timeout (durations) and
// max_header_bytes.
func ServerWithConfigProvider(p config.Provider) HTTPServerOption {
	return func(s *HTTPServer) {
		cfg := DefaultServerConfig()
		if d := p.GetDuration("server.read_timeout"); d > 0 {
			cfg.ReadTimeout = d
		}
		if d := p.GetDuration("server.write_timeout"); d > 0 {
			cfg.WriteTimeout = d
		}
		if d := p.GetDuration("server.idle_timeout"); d > 0 {
			cfg.IdleTimeout = d
		}
		if d := p.GetDuration("server.read_header_timeout"); d > 0 {
			cfg.ReadHeaderTimeout = d
		}
		if n := p.GetInt("server.max_header_bytes"); n > 0 {
			cfg.MaxHeaderBytes = n
		}
		WithServerConfig(cfg)(s)
	}
}
