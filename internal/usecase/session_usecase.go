package usecase

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/soundroomhq/soundroom/internal/apperr"
	"github.com/soundroomhq/soundroom/internal/application/constant"
	"github.com/soundroomhq/soundroom/internal/domain/events"
	"github.com/soundroomhq/soundroom/internal/domain/models"
	"github.com/soundroomhq/soundroom/internal/infra/adapters/memory"
	"github.com/soundroomhq/soundroom/internal/infra/adapters/postgres/repository"
)

// SessionUsecase is the room session coordinator: it owns the lifecycle of
// a live room connection and the dispatch of inbound action envelopes.
// Authoritative state lives in the repositories and is read fresh on every
// action; nothing room-scoped is cached per connection.
type SessionUsecase interface {
	// Connect validates the caller's membership, flips presence to
	// connected, registers the connection and broadcasts the join.
	Connect(ctx context.Context, userID, roomID uuid.UUID, conn *websocket.Conn) (*models.Membership, error)

	// Disconnect reverts presence to active, broadcasts the session exit
	// and unregisters. It tolerates the membership or room having been
	// deleted concurrently.
	Disconnect(ctx context.Context, membership *models.Membership)

	// HandleEnvelope applies one inbound frame. It reports whether the
	// connection should close afterwards.
	HandleEnvelope(ctx context.Context, membership *models.Membership, env events.Envelope) (quit bool)
}

type sessionUsecase struct {
	membershipUsecase  MembershipUsecase
	playlistUsecase    PlaylistUsecase
	joinRequestUsecase JoinRequestUsecase
	chatUsecase        ChatUsecase

	roomRepo repository.RoomRepository
	registry memory.RoomRegistry
}

func NewSessionUsecase(
	membershipUsecase MembershipUsecase,
	playlistUsecase PlaylistUsecase,
	joinRequestUsecase JoinRequestUsecase,
	chatUsecase ChatUsecase,
	roomRepo repository.RoomRepository,
	registry memory.RoomRegistry,
) SessionUsecase {
	return &sessionUsecase{
		membershipUsecase:  membershipUsecase,
		playlistUsecase:    playlistUsecase,
		joinRequestUsecase: joinRequestUsecase,
		chatUsecase:        chatUsecase,
		roomRepo:           roomRepo,
		registry:           registry,
	}
}

func (uc *sessionUsecase) Connect(ctx context.Context, userID, roomID uuid.UUID, conn *websocket.Conn) (*models.Membership, error) {
	room, err := uc.roomRepo.GetRoomByID(ctx, roomID)
	if err != nil {
		return nil, apperr.NotFound("room not found")
	}

	membership, err := uc.membershipUsecase.GetMembershipByRoomAndUser(ctx, roomID, userID)
	if err != nil {
		if apperr.Is(err, apperr.KindNotFound) {
			return nil, apperr.Forbidden("not a member of this room")
		}
		return nil, err
	}

	if err = uc.membershipUsecase.SetPresence(ctx, membership.ID, models.PresenceConnected); err != nil {
		return nil, err
	}

	membership.Presence = models.PresenceConnected

	uc.registry.Register(roomID, membership.ID, conn)

	roster, err := uc.membershipUsecase.RoomRoster(ctx, roomID)
	if err != nil {
		slog.Error("roster after connect", slog.Any(constant.Error, err), slog.Any(constant.RoomID, roomID))
		roster = nil
	}

	uc.broadcast(roomID, events.TypeMember, events.ActionSessionJoined, events.SessionJoinedEvent{
		Member: rosterEntryOf(membership, roster),
		Roster: roster,
		Room:   room,
	})

	return membership, nil
}

func (uc *sessionUsecase) Disconnect(ctx context.Context, membership *models.Membership) {
	uc.registry.Unregister(membership.RoomID, membership.ID)

	// The membership may be gone: the member left mid-session or the room
	// was torn down. Cleanup must not fail on that.
	current, err := uc.membershipUsecase.GetMembership(ctx, membership.ID)
	if err != nil {
		return
	}

	if err = uc.membershipUsecase.SetPresence(ctx, current.ID, models.PresenceActive); err != nil {
		slog.Error("presence cleanup", slog.Any(constant.Error, err), slog.Any(constant.MembershipID, membership.ID))
	}

	current.Presence = models.PresenceActive

	roster, err := uc.membershipUsecase.RoomRoster(ctx, current.RoomID)
	if err != nil {
		return
	}

	uc.broadcast(current.RoomID, events.TypeMember, events.ActionSessionLeft, events.SessionLeftEvent{
		Member: rosterEntryOf(current, roster),
		Roster: roster,
	})
}

func (uc *sessionUsecase) HandleEnvelope(ctx context.Context, membership *models.Membership, env events.Envelope) bool {
	switch {
	case env.Type == events.TypeMember && env.Action == events.ActionLeaveSession:
		return uc.handleLeaveSession(membership, env)

	case env.Type == events.TypeMember && env.Action == events.ActionLeaveRoom:
		return uc.handleLeaveRoom(ctx, membership, env)

	case env.Type == events.TypeMember && env.Action == events.ActionRemoveMember:
		uc.handleRemoveMember(ctx, membership, env)

	case env.Type == events.TypeChat && env.Action == events.ActionSendMessage:
		uc.handleSendMessage(ctx, membership, env)

	case env.Type == events.TypePlaylist:
		uc.handlePlaylistAction(ctx, membership, env)

	case env.Type == events.TypePlayback:
		uc.handlePlayback(ctx, membership, env)

	case env.Type == events.TypeJoinRequest && env.Action == events.ActionResolve:
		uc.handleResolve(ctx, membership, env)

	case env.Type == events.TypeMemberRole && env.Action == events.ActionChangeRole:
		uc.handleChangeRole(ctx, membership, env)

	default:
		// Unknown frames relay to the room verbatim so clients can ship
		// their own message types without a server release.
		uc.registry.Broadcast(membership.RoomID, env)
	}

	return false
}

func (uc *sessionUsecase) handleLeaveSession(membership *models.Membership, env events.Envelope) bool {
	var payload events.LeavePayload
	if !uc.decode(membership, env.Data, &payload) {
		return false
	}

	return payload.MembershipID == membership.ID
}

func (uc *sessionUsecase) handleLeaveRoom(ctx context.Context, membership *models.Membership, env events.Envelope) bool {
	var payload events.LeavePayload
	if !uc.decode(membership, env.Data, &payload) {
		return false
	}

	if payload.MembershipID != membership.ID {
		return false
	}

	// Leave broadcasts the departure and any promotion itself, so the REST
	// leave path announces the same way this one does.
	if _, err := uc.membershipUsecase.Leave(ctx, membership.ID); err != nil {
		uc.respondError(membership, err)
		return false
	}

	return true
}

func (uc *sessionUsecase) handleRemoveMember(ctx context.Context, membership *models.Membership, env events.Envelope) {
	var payload events.RemoveMemberPayload
	if !uc.decode(membership, env.Data, &payload) {
		return
	}

	if payload.MembershipID != membership.ID {
		return
	}

	target, err := uc.membershipUsecase.RemoveMember(ctx, membership.ID, payload.TargetID)
	if err != nil {
		uc.respondError(membership, err)
		return
	}

	roster, err := uc.membershipUsecase.RoomRoster(ctx, membership.RoomID)
	if err != nil {
		roster = nil
	}

	uc.broadcast(membership.RoomID, events.TypeMember, events.ActionMemberRemoved, events.MemberRemovedEvent{
		MembershipID: target.ID,
		Roster:       roster,
	})
}

func (uc *sessionUsecase) handleSendMessage(ctx context.Context, membership *models.Membership, env events.Envelope) {
	var payload events.SendMessagePayload
	if !uc.decode(membership, env.Data, &payload) {
		return
	}

	if payload.MembershipID != membership.ID {
		return
	}

	message, err := uc.chatUsecase.SendMessage(ctx, membership.ID, payload.Body, payload.ReplyToID)
	if err != nil {
		uc.respondError(membership, err)
		return
	}

	uc.broadcast(membership.RoomID, events.TypeChat, events.ActionMessageReceived, events.MessageReceivedEvent{
		ID:           message.ID,
		RoomID:       message.RoomID,
		MembershipID: membership.ID,
		Body:         message.Body,
		ReplyToID:    message.ReplyToID,
		CreatedAt:    message.CreatedAt.Format(time.RFC3339),
	})
}

func (uc *sessionUsecase) handlePlaylistAction(ctx context.Context, membership *models.Membership, env events.Envelope) {
	room, err := uc.roomRepo.GetRoomByID(ctx, membership.RoomID)
	if err != nil {
		uc.respondError(membership, apperr.Internal("lookup room", err))
		return
	}

	switch env.Action {
	case events.ActionAddTrack:
		var payload events.AddTrackPayload
		if !uc.decode(membership, env.Data, &payload) {
			return
		}
		if payload.MembershipID != membership.ID {
			return
		}

		err = uc.playlistUsecase.AppendTrack(ctx, room.PlaylistID, payload.TrackID)

	case events.ActionRemoveTrack:
		var payload events.RemoveTrackPayload
		if !uc.decode(membership, env.Data, &payload) {
			return
		}
		if payload.MembershipID != membership.ID {
			return
		}

		err = uc.playlistUsecase.RemoveTrackAt(ctx, room.PlaylistID, payload.Position)

	case events.ActionReorderTrack:
		var payload events.ReorderTrackPayload
		if !uc.decode(membership, env.Data, &payload) {
			return
		}
		if payload.MembershipID != membership.ID {
			return
		}

		err = uc.playlistUsecase.MoveTrack(ctx, room.PlaylistID, payload.TrackID, payload.FromPosition, payload.ToPosition)

	default:
		uc.registry.Broadcast(membership.RoomID, env)
		return
	}

	if err != nil {
		uc.respondError(membership, err)
		return
	}

	tracks, err := uc.playlistUsecase.Tracks(ctx, room.PlaylistID)
	if err != nil {
		uc.respondError(membership, err)
		return
	}

	uc.broadcast(membership.RoomID, events.TypePlaylist, events.ActionPlaylistUpdated, events.PlaylistUpdatedEvent{
		Tracks: tracks,
	})
}

func (uc *sessionUsecase) handlePlayback(ctx context.Context, membership *models.Membership, env events.Envelope) {
	var payload events.PlaybackPayload
	if !uc.decode(membership, env.Data, &payload) {
		return
	}

	if payload.MembershipID != membership.ID {
		return
	}

	var state models.PlaybackState

	switch env.Action {
	case events.ActionPlay:
		state = models.PlaybackPlaying
	case events.ActionStop:
		state = models.PlaybackStopped
	default:
		uc.registry.Broadcast(membership.RoomID, env)
		return
	}

	// Last writer wins: the snapshot records what was last broadcast.
	err := uc.roomRepo.UpdatePlayback(ctx, membership.RoomID, state, payload.PositionSeconds, payload.EntryIndex)
	if err != nil {
		uc.respondError(membership, apperr.Internal("update playback", err))
		return
	}

	uc.broadcast(membership.RoomID, events.TypePlayback, events.ActionStateUpdated, events.PlaybackStateEvent{
		MembershipID:    membership.ID,
		State:           state,
		EntryIndex:      payload.EntryIndex,
		PositionSeconds: payload.PositionSeconds,
	})
}

func (uc *sessionUsecase) handleResolve(ctx context.Context, membership *models.Membership, env events.Envelope) {
	var payload events.ResolveRequestPayload
	if !uc.decode(membership, env.Data, &payload) {
		return
	}

	if payload.MembershipID != membership.ID {
		return
	}

	request, _, err := uc.joinRequestUsecase.Resolve(ctx, membership.UserID, payload.RequestID, payload.Accept)
	if err != nil {
		uc.respondError(membership, err)
		return
	}

	uc.broadcast(membership.RoomID, events.TypeJoinRequest, events.ActionRequestResolved, events.RequestResolvedEvent{
		RequestID: request.ID,
		Status:    request.Status,
	})
}

func (uc *sessionUsecase) handleChangeRole(ctx context.Context, membership *models.Membership, env events.Envelope) {
	var payload events.ChangeRolePayload
	if !uc.decode(membership, env.Data, &payload) {
		return
	}

	if payload.MembershipID != membership.ID {
		return
	}

	if err := uc.membershipUsecase.ChangeRole(ctx, membership.ID, payload.TargetID, payload.NewRole); err != nil {
		uc.respondError(membership, err)
		return
	}

	uc.broadcast(membership.RoomID, events.TypeMemberRole, events.ActionRoleChanged, events.RoleChangedEvent{
		MembershipID: payload.TargetID,
		NewRole:      payload.NewRole,
	})
}

func (uc *sessionUsecase) decode(membership *models.Membership, data json.RawMessage, out any) bool {
	if err := json.Unmarshal(data, out); err != nil {
		uc.respond(membership, events.ActionResult{Success: false, Message: "malformed payload"})
		return false
	}

	return true
}

func (uc *sessionUsecase) broadcast(roomID uuid.UUID, typ, action string, data any) {
	frame, err := events.Frame(typ, action, data)
	if err != nil {
		slog.Error("frame broadcast event",
			slog.Any(constant.Error, err),
			slog.Any(constant.RoomID, roomID),
		)
		return
	}

	uc.registry.Broadcast(roomID, frame)
}

// respond writes an action result to the acting connection only.
func (uc *sessionUsecase) respond(membership *models.Membership, result events.ActionResult) {
	uc.registry.WriteTo(membership.RoomID, membership.ID, result)
}

func (uc *sessionUsecase) respondError(membership *models.Membership, err error) {
	uc.respond(membership, events.ActionResult{Success: false, Message: apperr.Detail(err)})
}

// rosterEntryOf finds the membership's roster entry, synthesizing a bare
// one when the roster is unavailable.
func rosterEntryOf(membership *models.Membership, roster []models.RosterEntry) models.RosterEntry {
	for _, entry := range roster {
		if entry.MembershipID == membership.ID {
			return entry
		}
	}

	return models.RosterEntry{
		MembershipID: membership.ID,
		UserID:       membership.UserID,
		Role:         membership.Role,
		Presence:     membership.Presence,
	}
}
