package transport

import (
	"context"
	"fmt"
	"net/url"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/chihiros-control/chihirosctl/internal/logging"
)

const (
	// dialTimeout bounds the initial WebSocket handshake.
	dialTimeout = 10 * time.Second

	// writeWait bounds a single frame write to the bridge.
	writeWait = 10 * time.Second

	// notifyBuffer is the inbound channel depth. The devices notify rarely;
	// a small buffer absorbs bursts without stalling the read loop.
	notifyBuffer = 16
)

// Bridge is a Transport backed by a BLE bridge daemon reachable over
// WebSocket. The bridge forwards each binary message to the device's write
// characteristic and relays every notification back as a binary message.
type Bridge struct {
	conn *websocket.Conn
	addr string

	notify chan []byte

	mu      sync.Mutex // serializes writes and Close
	closed  bool
	readErr error
}

// DialBridge connects to a bridge endpoint. The address may be a bare
// host:port or a ws:// / wss:// URL; bare addresses get the default
// /uart path appended.
func DialBridge(ctx context.Context, addr string) (*Bridge, error) {
	u, err := bridgeURL(addr)
	if err != nil {
		return nil, err
	}

	dialer := websocket.Dialer{HandshakeTimeout: dialTimeout}
	conn, _, err := dialer.DialContext(ctx, u, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to bridge %s: %w", addr, err)
	}

	b := &Bridge{
		conn:   conn,
		addr:   addr,
		notify: make(chan []byte, notifyBuffer),
	}
	go b.readLoop()

	logging.Info("Connected to bridge", zap.String("bridge", addr))
	return b, nil
}

// bridgeURL normalizes a user-supplied bridge address to a WebSocket URL.
func bridgeURL(addr string) (string, error) {
	if addr == "" {
		return "", fmt.Errorf("bridge address is empty")
	}
	u, err := url.Parse(addr)
	if err != nil || u.Scheme == "" {
		// Bare host:port form.
		return fmt.Sprintf("ws://%s/uart", addr), nil
	}
	switch u.Scheme {
	case "ws", "wss":
		return u.String(), nil
	default:
		return "", fmt.Errorf("unsupported bridge URL scheme %q", u.Scheme)
	}
}

// Write implements Transport.
func (b *Bridge) Write(ctx context.Context, frame []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return fmt.Errorf("bridge %s is closed", b.addr)
	}
	if b.readErr != nil {
		// The read loop already saw the connection die; fail fast instead
		// of writing into a dead socket.
		return fmt.Errorf("bridge %s connection lost: %w", b.addr, b.readErr)
	}

	deadline := time.Now().Add(writeWait)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	if err := b.conn.SetWriteDeadline(deadline); err != nil {
		return fmt.Errorf("failed to set write deadline: %w", err)
	}

	logging.LogRawBytes("bridge write", frame)
	if err := b.conn.WriteMessage(websocket.BinaryMessage, frame); err != nil {
		return fmt.Errorf("failed to write frame to bridge %s: %w", b.addr, err)
	}
	return nil
}

// Notifications implements Transport.
func (b *Bridge) Notifications() <-chan []byte {
	return b.notify
}

// Close implements Transport.
func (b *Bridge) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil
	}
	b.closed = true
	return b.conn.Close()
}

// readLoop relays inbound binary messages onto the notify channel until the
// connection drops. Text and control messages from the bridge are ignored;
// only binary messages carry device notifications.
func (b *Bridge) readLoop() {
	defer close(b.notify)
	for {
		msgType, data, err := b.conn.ReadMessage()
		if err != nil {
			b.mu.Lock()
			if !b.closed {
				b.readErr = err
				logging.Warn("Bridge read loop ended",
					zap.String("bridge", b.addr),
					zap.Error(err),
				)
			}
			b.mu.Unlock()
			return
		}
		if msgType != websocket.BinaryMessage {
			continue
		}
		logging.LogRawBytes("bridge notify", data)
		b.notify <- data
	}
}
