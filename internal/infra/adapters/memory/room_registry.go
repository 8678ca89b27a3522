package memory

import (
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/soundroomhq/soundroom/internal/application/constant"
	"github.com/soundroomhq/soundroom/internal/application/metric"
	"github.com/soundroomhq/soundroom/internal/domain/events"
)

// RoomRegistry tracks live session connections per room, in memory.
// A registration is keyed by membership, so one membership holds at most
// one live connection.
type RoomRegistry interface {
	Register(roomID, membershipID uuid.UUID, conn *websocket.Conn)
	// Unregister drops the membership's connection. Safe to call twice.
	Unregister(roomID, membershipID uuid.UUID)

	// Broadcast writes the payload to every connection currently registered
	// in the room. Connections that fail to accept the write are dropped.
	Broadcast(roomID uuid.UUID, payload any)
	WriteTo(roomID, membershipID uuid.UUID, payload any)

	ConnectedMemberships(roomID uuid.UUID) []uuid.UUID
	// CloseRoom closes and forgets every connection in the room.
	CloseRoom(roomID uuid.UUID)
}

type safeWS struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (s *safeWS) writeJSON(payload any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.conn.WriteJSON(payload)
}

type roomRegistry struct {
	// rooms хранит map[room_id]map[membership_id]*ws.conn
	rooms map[uuid.UUID]map[uuid.UUID]*safeWS

	mu sync.RWMutex
}

func NewRoomRegistry() RoomRegistry {
	return &roomRegistry{
		rooms: make(map[uuid.UUID]map[uuid.UUID]*safeWS, 10),
	}
}

func (r *roomRegistry) Register(roomID, membershipID uuid.UUID, conn *websocket.Conn) {
	r.mu.Lock()
	defer r.mu.Unlock()

	conns, ok := r.rooms[roomID]
	if !ok {
		conns = make(map[uuid.UUID]*safeWS, 10)
		r.rooms[roomID] = conns
	}

	if _, exists := conns[membershipID]; !exists {
		metric.IncrementSessionConnections()
	}

	conns[membershipID] = &safeWS{conn: conn}
}

func (r *roomRegistry) Unregister(roomID, membershipID uuid.UUID) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.removeLocked(roomID, membershipID)
}

func (r *roomRegistry) removeLocked(roomID, membershipID uuid.UUID) {
	conns, ok := r.rooms[roomID]
	if !ok {
		return
	}

	if _, exists := conns[membershipID]; exists {
		delete(conns, membershipID)

		metric.DecrementSessionConnections()
	}

	if len(conns) == 0 {
		delete(r.rooms, roomID)
	}
}

func (r *roomRegistry) Broadcast(roomID uuid.UUID, payload any) {
	// Snapshot under the read lock, write outside it. Each connection has
	// its own write mutex, so a slow socket never blocks the registry.
	r.mu.RLock()
	snapshot := make(map[uuid.UUID]*safeWS, len(r.rooms[roomID]))
	for membershipID, ws := range r.rooms[roomID] {
		snapshot[membershipID] = ws
	}
	r.mu.RUnlock()

	var failed []uuid.UUID

	for membershipID, ws := range snapshot {
		if err := ws.writeJSON(payload); err != nil {
			slog.Error(
				"broadcast to session connection",
				slog.Any(constant.Error, err),
				slog.Any(constant.RoomID, roomID),
				slog.Any(constant.MembershipID, membershipID),
			)

			failed = append(failed, membershipID)
		}
	}

	if len(failed) > 0 {
		r.mu.Lock()
		for _, membershipID := range failed {
			r.removeLocked(roomID, membershipID)
		}
		r.mu.Unlock()
	}

	metric.RecordRoomBroadcast(broadcastType(payload))
}

// broadcastType labels the broadcast metric with the frame's type when the
// payload is an envelope, which relayed client frames may not be.
func broadcastType(payload any) string {
	if env, ok := payload.(events.Envelope); ok {
		return env.Type
	}

	return "raw"
}

func (r *roomRegistry) WriteTo(roomID, membershipID uuid.UUID, payload any) {
	r.mu.RLock()
	ws, ok := r.rooms[roomID][membershipID]
	r.mu.RUnlock()

	if !ok {
		return
	}

	if err := ws.writeJSON(payload); err != nil {
		slog.Error(
			"write to session connection",
			slog.Any(constant.Error, err),
			slog.Any(constant.RoomID, roomID),
			slog.Any(constant.MembershipID, membershipID),
		)
	}
}

func (r *roomRegistry) ConnectedMemberships(roomID uuid.UUID) []uuid.UUID {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]uuid.UUID, 0, len(r.rooms[roomID]))

	for membershipID := range r.rooms[roomID] {
		ids = append(ids, membershipID)
	}

	return ids
}

func (r *roomRegistry) CloseRoom(roomID uuid.UUID) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for membershipID, ws := range r.rooms[roomID] {
		_ = ws.conn.Close()

		delete(r.rooms[roomID], membershipID)

		metric.DecrementSessionConnections()
	}

	delete(r.rooms, roomID)
}
