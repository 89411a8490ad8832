package foyer

import (
	"context"
	"crypto/tls"
	"errors"
	"time"

	"github.com/quic-go/quic-go"
	"github.com/quic-go/quic-go/http3"
)

// HTTP3Config holds the QUIC-level knobs for the HTTP/3 front door.
type HTTP3Config struct {
	MaxIdleTimeout        time.Duration
	MaxIncomingStreams    int64
	MaxIncomingUniStreams int64
	HandshakeIdleTimeout  time.Duration
	EnableDatagrams       bool

	TLSConfig *tls.Config
}

// DefaultHTTP3Config returns the settings the HTTP/3 server runs with when
// the caller does not provide any.
func DefaultHTTP3Config() *HTTP3Config {
	return &HTTP3Config{
		MaxIdleTimeout:        30 * time.Second,
		MaxIncomingStreams:    100,
		MaxIncomingUniStreams: 100,
		HandshakeIdleTimeout:  10 * time.Second,
		EnableDatagrams:       false,
	}
}

// HTTP3Server serves the same front controller over HTTP/3. The dispatch
// chain is transport-agnostic — the HTTPServer is just an http.Handler — so
// requests arriving over QUIC flow through the identical pre-processing,
// routing and rendering as TCP ones.
type HTTP3Server struct {
	front      *HTTPServer
	quicServer *http3.Server
	config     *HTTP3Config
	log        Logger
}

// NewHTTP3Server wraps a front controller for HTTP/3 serving. config may be
// nil for defaults, but it (or the defaults) must carry a TLS config before
// ListenAndServe: QUIC has no cleartext mode.
func NewHTTP3Server(front *HTTPServer, config *HTTP3Config, logger Logger) *HTTP3Server {
	if config == nil {
		config = DefaultHTTP3Config()
	}
	if logger == nil {
		logger = GetDefaultLogger()
	}
	return &HTTP3Server{
		front:  front,
		config: config,
		log:    logger,
	}
}

// ListenAndServe serves HTTP/3 on addr (a UDP address) until the server is
// closed.
func (s *HTTP3Server) ListenAndServe(addr string) error {
	if s.config.TLSConfig == nil {
		return errors.New("web: HTTP/3 requires a TLS configuration")
	}

	tlsConf := s.config.TLSConfig.Clone()
	tlsConf.NextProtos = append(tlsConf.NextProtos, "h3")

	s.quicServer = &http3.Server{
		Addr:      addr,
		Handler:   s.front,
		TLSConfig: tlsConf,
		QuicConfig: &quic.Config{
			MaxIdleTimeout:        s.config.MaxIdleTimeout,
			MaxIncomingStreams:    s.config.MaxIncomingStreams,
			MaxIncomingUniStreams: s.config.MaxIncomingUniStreams,
			HandshakeIdleTimeout:  s.config.HandshakeIdleTimeout,
			EnableDatagrams:       s.config.EnableDatagrams,
		},
	}

	s.log.Info("HTTP/3 server listening on %s", addr)
	return s.quicServer.ListenAndServe()
}

// Shutdown closes the QUIC listener. In-flight streams are not drained;
// callers wanting a graceful stop should quiesce traffic first.
func (s *HTTP3Server) Shutdown(ctx context.Context) error {
	if s.quicServer == nil {
		return nil
	}
	s.log.Info("HTTP/3 server shutting down")
	return s.quicServer.Close()
}
