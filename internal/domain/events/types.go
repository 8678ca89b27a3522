package events

import (
	"encoding/json"

	"github.com/google/uuid"

	"github.com/soundroomhq/soundroom/internal/domain/models"
)

// Envelope is the symmetric frame exchanged over a room session in both
// directions: {type, action, data}. Unrecognized type/action pairs are
// relayed to the room verbatim for forward compatibility.
type Envelope struct {
	Type   string          `json:"type"`
	Action string          `json:"action"`
	Data   json.RawMessage `json:"data"`
}

// Frame builds an outbound envelope from an already-typed payload.
func Frame(typ, action string, data any) (Envelope, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return Envelope{}, err
	}

	return Envelope{Type: typ, Action: action, Data: raw}, nil
}

// Message types.
const (
	TypeMember      = "member"
	TypeChat        = "chat"
	TypePlaylist    = "playlist"
	TypePlayback    = "playback"
	TypeJoinRequest = "join_request"
	TypeMemberRole  = "member_role"
)

// Inbound actions.
const (
	ActionLeaveSession = "leave_session"
	ActionLeaveRoom    = "leave_room"
	ActionRemoveMember = "remove_member"
	ActionSendMessage  = "send_message"
	ActionAddTrack     = "add_track"
	ActionRemoveTrack  = "remove_track"
	ActionReorderTrack = "reorder_track"
	ActionPlay         = "play"
	ActionStop         = "stop"
	ActionResolve      = "resolve"
	ActionChangeRole   = "change_role"
)

// Outbound actions.
const (
	ActionSessionJoined   = "session_joined"
	ActionSessionLeft     = "session_left"
	ActionMemberLeft      = "member_left"
	ActionMemberRemoved   = "member_removed"
	ActionMessageReceived = "message_received"
	ActionPlaylistUpdated = "playlist_updated"
	ActionStateUpdated    = "state_updated"
	ActionRequestCreated  = "request_created"
	ActionRequestResolved = "request_resolved"
	ActionRoleChanged     = "role_changed"
)

// SessionJoinedEvent announces a member's live session plus the current
// roster and room snapshot.
type SessionJoinedEvent struct {
	Member models.RosterEntry   `json:"member"`
	Roster []models.RosterEntry `json:"roster"`
	Room   *models.Room         `json:"room"`
}

// SessionLeftEvent announces a member dropping the live session (presence
// reverts to active; membership is kept).
type SessionLeftEvent struct {
	Member models.RosterEntry   `json:"member"`
	Roster []models.RosterEntry `json:"roster"`
}

// MemberLeftEvent announces a membership deleted via the leave protocol.
type MemberLeftEvent struct {
	Member models.RosterEntry   `json:"member"`
	Roster []models.RosterEntry `json:"roster"`
}

// MemberRemovedEvent announces a privileged removal.
type MemberRemovedEvent struct {
	MembershipID uuid.UUID            `json:"membership_id"`
	Roster       []models.RosterEntry `json:"roster"`
}

type SendMessagePayload struct {
	MembershipID uuid.UUID  `json:"membership_id"`
	Body         string     `json:"body"`
	ReplyToID    *uuid.UUID `json:"reply_to_id,omitempty"`
}

type MessageReceivedEvent struct {
	ID           uuid.UUID  `json:"id"`
	RoomID       uuid.UUID  `json:"room_id"`
	MembershipID uuid.UUID  `json:"membership_id"`
	Body         string     `json:"body"`
	ReplyToID    *uuid.UUID `json:"reply_to_id,omitempty"`
	CreatedAt    string     `json:"created_at"`
}

type AddTrackPayload struct {
	MembershipID uuid.UUID `json:"membership_id"`
	TrackID      uuid.UUID `json:"track_id"`
}

type RemoveTrackPayload struct {
	MembershipID uuid.UUID `json:"membership_id"`
	Position     int       `json:"position"`
}

type ReorderTrackPayload struct {
	MembershipID uuid.UUID `json:"membership_id"`
	TrackID      uuid.UUID `json:"track_id"`
	FromPosition int       `json:"from_position"`
	ToPosition   int       `json:"to_position"`
}

type PlaylistUpdatedEvent struct {
	Tracks []models.PlaylistTrack `json:"tracks"`
}

type PlaybackPayload struct {
	MembershipID    uuid.UUID `json:"membership_id"`
	EntryIndex      int       `json:"entry_index"`
	PositionSeconds int       `json:"position_seconds"`
}

type PlaybackStateEvent struct {
	MembershipID    uuid.UUID            `json:"membership_id"`
	State           models.PlaybackState `json:"state"`
	EntryIndex      int                  `json:"entry_index"`
	PositionSeconds int                  `json:"position_seconds"`
}

type ResolveRequestPayload struct {
	MembershipID uuid.UUID `json:"membership_id"`
	RequestID    uuid.UUID `json:"request_id"`
	Accept       bool      `json:"accept"`
}

type RequestCreatedEvent struct {
	RequestID   uuid.UUID                `json:"request_id"`
	UserID      uuid.UUID                `json:"user_id"`
	DisplayName string                   `json:"display_name"`
	AvatarURL   string                   `json:"avatar_url"`
	Status      models.JoinRequestStatus `json:"status"`
}

type RequestResolvedEvent struct {
	RequestID uuid.UUID                `json:"request_id"`
	Status    models.JoinRequestStatus `json:"status"`
}

type ChangeRolePayload struct {
	MembershipID uuid.UUID         `json:"membership_id"`
	TargetID     uuid.UUID         `json:"target_id"`
	NewRole      models.MemberRole `json:"new_role"`
}

type RoleChangedEvent struct {
	MembershipID uuid.UUID         `json:"membership_id"`
	NewRole      models.MemberRole `json:"new_role"`
}

type RemoveMemberPayload struct {
	MembershipID uuid.UUID `json:"membership_id"`
	TargetID     uuid.UUID `json:"target_id"`
}

type LeavePayload struct {
	MembershipID uuid.UUID `json:"membership_id"`
}

// ActionResult reports the outcome of one inbound action back to the
// acting connection only.
type ActionResult struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}
