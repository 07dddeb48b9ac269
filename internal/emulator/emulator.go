package emulator

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/gorilla/websocket"
	"github.com/grandcat/zeroconf"
	"go.uber.org/zap"

	"github.com/chihiros-control/chihirosctl/internal/discovery"
	"github.com/chihiros-control/chihirosctl/internal/logging"
)

const (
	// writeWait bounds a single notification write to a client.
	writeWait = 10 * time.Second

	// readWait bounds the wait for the next client frame. Clients that go
	// quiet this long are considered gone.
	readWait = 5 * time.Minute
)

// Config holds the emulator configuration.
type Config struct {
	Host       string
	Port       int
	DeviceName string // advertised BLE name, picks the emulated model
	Instance   string // mDNS instance name (empty = disabled)
}

// Server emulates a BLE bridge with a single Chihiros device behind it.
// It serves the same /uart WebSocket endpoint a real bridge daemon does
// and answers queries from an in-memory device model.
type Server struct {
	config *Config
	state  *deviceState

	upgrader websocket.Upgrader
	listener net.Listener
	httpSrv  *http.Server
	mdns     *zeroconf.Server

	wg          sync.WaitGroup
	mu          sync.Mutex
	activeConns map[string]*websocket.Conn
}

// New creates an emulator serving the given device name.
func New(config *Config) *Server {
	s := &Server{
		config:      config,
		state:       newDeviceState(config.DeviceName),
		activeConns: make(map[string]*websocket.Conn),
	}
	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
	}
	return s
}

// Handler returns the emulator's HTTP handler. Exposed so tests can mount
// it on an httptest server.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/uart", s.handleUART)
	return mux
}

// Start listens, optionally announces the bridge over mDNS, and blocks
// until a shutdown signal arrives.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)

	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	s.listener = listener

	logging.Info("Starting bridge emulator",
		zap.String("addr", listener.Addr().String()),
		zap.String("device", s.config.DeviceName),
	)

	if s.config.Instance != "" {
		port := listener.Addr().(*net.TCPAddr).Port
		mdns, err := zeroconf.Register(
			s.config.Instance,
			discovery.ServiceType,
			discovery.ServiceDomain,
			port,
			[]string{"devices=" + s.config.DeviceName},
			nil,
		)
		if err != nil {
			_ = listener.Close()
			return fmt.Errorf("failed to register mDNS service: %w", err)
		}
		s.mdns = mdns
		logging.Info("Announced bridge over mDNS",
			zap.String("instance", s.config.Instance),
			zap.String("service", discovery.ServiceType),
		)
	}

	s.httpSrv = &http.Server{Handler: s.Handler()}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	errChan := make(chan error, 1)
	go func() {
		errChan <- s.httpSrv.Serve(listener)
	}()

	select {
	case <-sigChan:
		logging.Info("Shutdown signal received, stopping emulator...")
		return s.Shutdown(context.Background())
	case err := <-errChan:
		if err == http.ErrServerClosed {
			return nil
		}
		return err
	}
}

// Shutdown stops the mDNS announcement, closes every client and waits for
// the connection handlers to drain.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.mdns != nil {
		s.mdns.Shutdown()
	}

	if s.httpSrv != nil {
		if err := s.httpSrv.Shutdown(ctx); err != nil {
			logging.Error("Error shutting down HTTP server", zap.Error(err))
		}
	}

	s.mu.Lock()
	for addr, conn := range s.activeConns {
		logging.Info("Closing active connection", zap.String("remote_addr", addr))
		_ = conn.Close()
	}
	s.mu.Unlock()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		logging.Info("All connections closed gracefully")
	case <-ctx.Done():
		logging.Warn("Shutdown timeout, forcing close")
	case <-time.After(10 * time.Second):
		logging.Warn("Shutdown timeout after 10 seconds, forcing close")
	}

	logging.Sync()
	return nil
}

// handleUART upgrades the request and runs the frame loop for one client.
func (s *Server) handleUART(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logging.Error("WebSocket upgrade failed", zap.Error(err))
		return
	}

	remoteAddr := r.RemoteAddr

	s.mu.Lock()
	s.activeConns[remoteAddr] = conn
	s.mu.Unlock()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer func() {
			_ = conn.Close()
			s.mu.Lock()
			delete(s.activeConns, remoteAddr)
			s.mu.Unlock()
			logging.LogConnection(remoteAddr, "connection_closed")
		}()

		logging.LogConnection(remoteAddr, "websocket_upgraded")
		s.frameLoop(conn, remoteAddr)
	}()
}

// frameLoop reads command frames from one client and writes back whatever
// notifications the device model produces.
func (s *Server) frameLoop(conn *websocket.Conn, remoteAddr string) {
	for {
		if err := conn.SetReadDeadline(time.Now().Add(readWait)); err != nil {
			return
		}

		msgType, data, err := conn.ReadMessage()
		if err != nil {
			logging.Info("Connection closed or error reading frame",
				zap.String("remote_addr", remoteAddr),
				zap.Error(err),
			)
			return
		}
		if msgType != websocket.BinaryMessage {
			logging.Warn("Ignoring non-binary message",
				zap.String("remote_addr", remoteAddr),
			)
			continue
		}

		logging.LogRawBytes("emulator read", data)

		replies, err := s.state.Handle(data)
		if err != nil {
			logging.Warn("Rejected malformed frame",
				zap.String("remote_addr", remoteAddr),
				zap.Error(err),
			)
			continue
		}

		for _, reply := range replies {
			if err := conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				return
			}
			logging.LogRawBytes("emulator write", reply)
			if err := conn.WriteMessage(websocket.BinaryMessage, reply); err != nil {
				logging.Error("Failed to write notification",
					zap.String("remote_addr", remoteAddr),
					zap.Error(err),
				)
				return
			}
		}
	}
}

// ActiveConnections returns the number of connected clients.
func (s *Server) ActiveConnections() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.activeConns)
}
