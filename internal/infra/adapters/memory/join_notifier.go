package memory

import (
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/soundroomhq/soundroom/internal/application/constant"
)

// JoinNotifier holds the short-lived connections of users waiting for
// their join request to be resolved, keyed by request id.
type JoinNotifier interface {
	Watch(requestID uuid.UUID, conn *websocket.Conn)
	Unwatch(requestID uuid.UUID)
	// Notify writes the payload to the watcher, if one is connected, and
	// closes the watch.
	Notify(requestID uuid.UUID, payload any)
}

type joinNotifier struct {
	watchers map[uuid.UUID]*safeWS

	mu sync.Mutex
}

func NewJoinNotifier() JoinNotifier {
	return &joinNotifier{
		watchers: make(map[uuid.UUID]*safeWS),
	}
}

func (n *joinNotifier) Watch(requestID uuid.UUID, conn *websocket.Conn) {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.watchers[requestID] = &safeWS{conn: conn}
}

func (n *joinNotifier) Unwatch(requestID uuid.UUID) {
	n.mu.Lock()
	defer n.mu.Unlock()

	delete(n.watchers, requestID)
}

func (n *joinNotifier) Notify(requestID uuid.UUID, payload any) {
	n.mu.Lock()
	ws, ok := n.watchers[requestID]
	delete(n.watchers, requestID)
	n.mu.Unlock()

	if !ok {
		return
	}

	if err := ws.writeJSON(payload); err != nil {
		slog.Error("notify join watcher", slog.Any(constant.Error, err))
	}

	_ = ws.conn.Close()
}
