package hostbridge

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/gorilla/websocket"
)

// Message is one frame exchanged with the host shell. Type uses the shell's
// versioned event names (e.g. "V1.REQUIRE_CONTEXT").
type Message struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Shell event names understood by the bridge.
const (
	MsgRequireContext   = "V1.REQUIRE_CONTEXT"
	MsgShowNotification = "V1.SHOW_NOTIFICATION"
	MsgShowModal        = "V1.SHOW_MODAL"
	MsgNavigate         = "V1.NAVIGATE"
	MsgGetPermissions   = "V1.GET_PERMISSIONS"
	MsgGetSettings      = "V1.GET_SETTINGS"
	MsgGetStorageItem   = "V1.GET_STORAGE_ITEM"
)

// Messenger is the transport to the host shell. Request sends a frame and
// blocks for the host's reply; Notify is fire-and-forget.
type Messenger interface {
	Request(ctx context.Context, msg Message) (*Message, error)
	Notify(ctx context.Context, msg Message) error
	Close() error
}

// WebSocketMessenger talks to the host shell over a websocket. The shell
// answers each request frame with exactly one reply frame, so a single
// mutex serializing request/reply pairs is sufficient.
type WebSocketMessenger struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

// DialWebSocket connects to the host shell endpoint.
func DialWebSocket(ctx context.Context, endpoint string) (*WebSocketMessenger, error) {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to dial host shell: %w", err)
	}
	return &WebSocketMessenger{conn: conn}, nil
}

// Request sends msg and waits for the host's reply frame.
func (m *WebSocketMessenger) Request(ctx context.Context, msg Message) (*Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if deadline, ok := ctx.Deadline(); ok {
		_ = m.conn.SetReadDeadline(deadline)
		_ = m.conn.SetWriteDeadline(deadline)
	}

	if err := m.conn.WriteJSON(msg); err != nil {
		return nil, fmt.Errorf("failed to send %s: %w", msg.Type, err)
	}

	var reply Message
	if err := m.conn.ReadJSON(&reply); err != nil {
		return nil, fmt.Errorf("failed to read reply to %s: %w", msg.Type, err)
	}
	return &reply, nil
}

// Notify sends msg without waiting for a reply.
func (m *WebSocketMessenger) Notify(ctx context.Context, msg Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if deadline, ok := ctx.Deadline(); ok {
		_ = m.conn.SetWriteDeadline(deadline)
	}
	if err := m.conn.WriteJSON(msg); err != nil {
		return fmt.Errorf("failed to send %s: %w", msg.Type, err)
	}
	return nil
}

// Close shuts down the websocket connection.
func (m *WebSocketMessenger) Close() error {
	return m.conn.Close()
}
