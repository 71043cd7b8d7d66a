// Package httpx serves internal HTTP endpoints of the app.
package httpx

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strconv"
	"syscall"
	"time"

	"github.com/giongto35/socketrtc/pkg/logger"
)

// Server is an HTTP server bound to its listener on creation,
// so the actual port is known before serving.
type Server struct {
	srv  http.Server
	ls   net.Listener
	roll int
	log  *logger.Logger
}

type Option func(*Server)

// WithPortRoll makes the server try up to n subsequent ports
// when the port of the address is busy.
func WithPortRoll(n int) Option            { return func(s *Server) { s.roll = n } }
func WithLogger(log *logger.Logger) Option { return func(s *Server) { s.log = log } }

func Listen(address string, opts ...Option) (*Server, error) {
	s := &Server{
		srv: http.Server{
			IdleTimeout:       120 * time.Second,
			ReadHeaderTimeout: 10 * time.Second,
			WriteTimeout:      60 * time.Second,
		},
		log: logger.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	ls, err := listen(address, s.roll, s.log)
	if err != nil {
		return nil, err
	}
	s.ls = ls
	return s, nil
}

// Serve starts serving the handler in the background.
func (s *Server) Serve(h http.Handler) {
	s.srv.Handler = h
	go func() {
		err := s.srv.Serve(s.ls)
		if errors.Is(err, http.ErrServerClosed) {
			s.log.Debug().Msgf("http server %v was closed", s.Addr())
			return
		}
		s.log.Error().Err(err).Msg("http server")
	}()
}

func (s *Server) Shutdown(ctx context.Context) error {
	err := s.srv.Shutdown(ctx)
	// closes the listener if Serve was never called
	_ = s.ls.Close()
	return err
}

func (s *Server) Addr() string { return s.ls.Addr().String() }

func (s *Server) Port() int {
	if tcp, ok := s.ls.Addr().(*net.TCPAddr); ok {
		return tcp.Port
	}
	return 0
}

func listen(address string, roll int, log *logger.Logger) (net.Listener, error) {
	ls, err := net.Listen("tcp", address)
	if err == nil || roll <= 0 || !errors.Is(err, syscall.EADDRINUSE) {
		return ls, err
	}
	host, p, err2 := net.SplitHostPort(address)
	if err2 != nil {
		return nil, err
	}
	port, err2 := strconv.Atoi(p)
	if err2 != nil {
		return nil, err
	}
	for next := port + 1; next <= port+roll; next++ {
		log.Debug().Msgf("port %v is busy, trying %v", port, next)
		if ls, err = net.Listen("tcp", net.JoinHostPort(host, strconv.Itoa(next))); err == nil {
			return ls, nil
		}
	}
	return nil, err
}

// Mux prepends the prefix to every handler pattern.
type Mux struct {
	*http.ServeMux
	prefix string
}

func NewMux(prefix string) *Mux { return &Mux{ServeMux: http.NewServeMux(), prefix: prefix} }

func (m *Mux) Handle(pattern string, h http.Handler) { m.ServeMux.Handle(m.prefix+pattern, h) }

func (m *Mux) HandleFunc(pattern string, fn http.HandlerFunc) {
	m.ServeMux.HandleFunc(m.prefix+pattern, fn)
}

func (m *Mux) Path(pattern string) string { return m.prefix + pattern }
