package usecase

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	"github.com/soundroomhq/soundroom/internal/apperr"
	"github.com/soundroomhq/soundroom/internal/domain/events"
	"github.com/soundroomhq/soundroom/internal/domain/models"
	"github.com/soundroomhq/soundroom/internal/infra/adapters/memory"
	"github.com/soundroomhq/soundroom/internal/infra/adapters/postgres/repository"
)

// LeaveOutcome describes what the leave protocol did besides deleting the
// membership.
type LeaveOutcome struct {
	RoomDeleted bool
	// NewOwner is set when ownership moved to another member.
	NewOwner *models.Membership
}

type MembershipUsecase interface {
	GetMembership(ctx context.Context, id uuid.UUID) (*models.Membership, error)
	GetMembershipByRoomAndUser(ctx context.Context, roomID, userID uuid.UUID) (*models.Membership, error)
	Roster(ctx context.Context, userID, roomID uuid.UUID) ([]models.RosterEntry, error)
	// RoomRoster is Roster without the caller-membership gate, for the
	// session coordinator's own broadcasts.
	RoomRoster(ctx context.Context, roomID uuid.UUID) ([]models.RosterEntry, error)

	SetPresence(ctx context.Context, membershipID uuid.UUID, presence models.Presence) error

	// ChangeRole reassigns the target's role. Granting owner transfers
	// ownership: the current owner steps down to manager.
	ChangeRole(ctx context.Context, actorID, targetID uuid.UUID, role models.MemberRole) error

	// RemoveMember evicts the target from the room and finalizes their
	// join request as removed.
	RemoveMember(ctx context.Context, actorID, targetID uuid.UUID) (*models.Membership, error)

	// Leave deletes the caller's membership. A departing owner hands the
	// room to the earliest-joined manager, else the earliest-joined member,
	// and the room is deleted when nobody is left.
	Leave(ctx context.Context, membershipID uuid.UUID) (*LeaveOutcome, error)
}

type membershipUsecase struct {
	membershipRepo  repository.MembershipRepository
	joinRequestRepo repository.JoinRequestRepository
	roomRepo        repository.RoomRepository
	playlistRepo    repository.PlaylistRepository
	registry        memory.RoomRegistry
}

func NewMembershipUsecase(
	membershipRepo repository.MembershipRepository,
	joinRequestRepo repository.JoinRequestRepository,
	roomRepo repository.RoomRepository,
	playlistRepo repository.PlaylistRepository,
	registry memory.RoomRegistry,
) MembershipUsecase {
	return &membershipUsecase{
		membershipRepo:  membershipRepo,
		joinRequestRepo: joinRequestRepo,
		roomRepo:        roomRepo,
		playlistRepo:    playlistRepo,
		registry:        registry,
	}
}

func (uc *membershipUsecase) GetMembership(ctx context.Context, id uuid.UUID) (*models.Membership, error) {
	membership, err := uc.membershipRepo.GetMembershipByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.NotFound("membership not found")
		}
		return nil, apperr.Internal("lookup membership", err)
	}

	return membership, nil
}

func (uc *membershipUsecase) GetMembershipByRoomAndUser(ctx context.Context, roomID, userID uuid.UUID) (*models.Membership, error) {
	membership, err := uc.membershipRepo.GetMembershipByRoomAndUser(ctx, roomID, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.NotFound("membership not found")
		}
		return nil, apperr.Internal("lookup membership", err)
	}

	return membership, nil
}

func (uc *membershipUsecase) Roster(ctx context.Context, userID, roomID uuid.UUID) ([]models.RosterEntry, error) {
	if _, err := uc.GetMembershipByRoomAndUser(ctx, roomID, userID); err != nil {
		if apperr.Is(err, apperr.KindNotFound) {
			return nil, apperr.Forbidden("not a member of this room")
		}
		return nil, err
	}

	return uc.RoomRoster(ctx, roomID)
}

func (uc *membershipUsecase) RoomRoster(ctx context.Context, roomID uuid.UUID) ([]models.RosterEntry, error) {
	roster, err := uc.membershipRepo.Roster(ctx, roomID)
	if err != nil {
		return nil, apperr.Internal("room roster", err)
	}

	return roster, nil
}

func (uc *membershipUsecase) SetPresence(ctx context.Context, membershipID uuid.UUID, presence models.Presence) error {
	if err := uc.membershipRepo.UpdatePresence(ctx, membershipID, presence); err != nil {
		return apperr.Internal("update presence", err)
	}

	return nil
}

func (uc *membershipUsecase) ChangeRole(ctx context.Context, actorID, targetID uuid.UUID, role models.MemberRole) error {
	if !role.Valid() {
		return apperr.Validation("unknown role")
	}

	if actorID == targetID {
		return apperr.Forbidden("cannot change your own role")
	}

	actor, err := uc.GetMembership(ctx, actorID)
	if err != nil {
		return err
	}

	target, err := uc.GetMembership(ctx, targetID)
	if err != nil {
		return err
	}

	if actor.RoomID != target.RoomID {
		return apperr.Validation("memberships belong to different rooms")
	}

	if !actor.Role.AtLeast(models.RoleManager) {
		return apperr.Forbidden("only the owner or a manager can change roles")
	}

	if target.Role == models.RoleOwner {
		return apperr.Forbidden("the owner's role cannot be changed")
	}

	if role == models.RoleOwner {
		if actor.Role != models.RoleOwner {
			return apperr.Forbidden("only the owner can transfer ownership")
		}

		// Ownership transfer: the target takes over, the old owner stays
		// on as a manager.
		if err = uc.membershipRepo.UpdateRole(ctx, target.ID, models.RoleOwner); err != nil {
			return apperr.Internal("promote new owner", err)
		}

		if err = uc.membershipRepo.UpdateRole(ctx, actor.ID, models.RoleManager); err != nil {
			return apperr.Internal("demote old owner", err)
		}

		return nil
	}

	if err = uc.membershipRepo.UpdateRole(ctx, target.ID, role); err != nil {
		return apperr.Internal("update role", err)
	}

	return nil
}

func (uc *membershipUsecase) RemoveMember(ctx context.Context, actorID, targetID uuid.UUID) (*models.Membership, error) {
	if actorID == targetID {
		return nil, apperr.Forbidden("cannot remove yourself; leave instead")
	}

	actor, err := uc.GetMembership(ctx, actorID)
	if err != nil {
		return nil, err
	}

	target, err := uc.GetMembership(ctx, targetID)
	if err != nil {
		return nil, err
	}

	if actor.RoomID != target.RoomID {
		return nil, apperr.Validation("memberships belong to different rooms")
	}

	if !actor.Role.AtLeast(models.RoleManager) {
		return nil, apperr.Forbidden("only the owner or a manager can remove members")
	}

	if target.Role.AtLeast(actor.Role) {
		return nil, apperr.Forbidden("cannot remove a member of equal or higher role")
	}

	if err = uc.membershipRepo.DeleteMembership(ctx, target.ID); err != nil {
		return nil, apperr.Internal("delete membership", err)
	}

	if err = uc.joinRequestRepo.MarkRemoved(ctx, target.RoomID, target.UserID); err != nil {
		return nil, apperr.Internal("finalize join request", err)
	}

	uc.registry.Unregister(target.RoomID, target.ID)

	return target, nil
}

func (uc *membershipUsecase) Leave(ctx context.Context, membershipID uuid.UUID) (*LeaveOutcome, error) {
	membership, err := uc.GetMembership(ctx, membershipID)
	if err != nil {
		return nil, err
	}

	outcome := &LeaveOutcome{}

	if membership.Role == models.RoleOwner {
		successor, err := uc.pickSuccessor(ctx, membership)
		if err != nil {
			return nil, err
		}

		if successor == nil {
			// Last member out deletes the room.
			if err = uc.deleteRoom(ctx, membership.RoomID); err != nil {
				return nil, err
			}

			outcome.RoomDeleted = true

			return outcome, nil
		}

		if err = uc.membershipRepo.UpdateRole(ctx, successor.ID, models.RoleOwner); err != nil {
			return nil, apperr.Internal("promote successor", err)
		}

		successor.Role = models.RoleOwner
		outcome.NewOwner = successor
	}

	if err = uc.membershipRepo.DeleteMembership(ctx, membership.ID); err != nil {
		return nil, apperr.Internal("delete membership", err)
	}

	if err = uc.markLeft(ctx, membership); err != nil {
		return nil, err
	}

	uc.registry.Unregister(membership.RoomID, membership.ID)

	uc.announceLeave(ctx, membership, outcome)

	return outcome, nil
}

// announceLeave tells the room's live connections who left and, after an
// ownership transfer, who owns the room now. It runs on every leave path,
// not just the one that came in over a session connection.
func (uc *membershipUsecase) announceLeave(ctx context.Context, departed *models.Membership, outcome *LeaveOutcome) {
	roster, err := uc.RoomRoster(ctx, departed.RoomID)
	if err != nil {
		roster = nil
	}

	frame, err := events.Frame(events.TypeMember, events.ActionMemberLeft, events.MemberLeftEvent{
		Member: rosterEntryOf(departed, nil),
		Roster: roster,
	})
	if err == nil {
		uc.registry.Broadcast(departed.RoomID, frame)
	}

	if outcome.NewOwner == nil {
		return
	}

	frame, err = events.Frame(events.TypeMemberRole, events.ActionRoleChanged, events.RoleChangedEvent{
		MembershipID: outcome.NewOwner.ID,
		NewRole:      models.RoleOwner,
	})
	if err == nil {
		uc.registry.Broadcast(departed.RoomID, frame)
	}
}

// pickSuccessor returns the earliest-joined manager, else the
// earliest-joined member, else nil when the owner is alone.
func (uc *membershipUsecase) pickSuccessor(ctx context.Context, owner *models.Membership) (*models.Membership, error) {
	memberships, err := uc.membershipRepo.ListMembershipsByRoom(ctx, owner.RoomID)
	if err != nil {
		return nil, apperr.Internal("list memberships", err)
	}

	for _, role := range []models.MemberRole{models.RoleManager, models.RoleMember} {
		for i := range memberships {
			if memberships[i].ID != owner.ID && memberships[i].Role == role {
				return &memberships[i], nil
			}
		}
	}

	return nil, nil
}

func (uc *membershipUsecase) markLeft(ctx context.Context, membership *models.Membership) error {
	request, err := uc.joinRequestRepo.GetOpenJoinRequest(ctx, membership.RoomID, membership.UserID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			// Room creators never filed a join request.
			return nil
		}
		return apperr.Internal("lookup join request", err)
	}

	if err = uc.joinRequestRepo.UpdateStatus(ctx, request.ID, models.JoinRequestLeft); err != nil {
		return apperr.Internal("finalize join request", err)
	}

	return nil
}

func (uc *membershipUsecase) deleteRoom(ctx context.Context, roomID uuid.UUID) error {
	room, err := uc.roomRepo.GetRoomByID(ctx, roomID)
	if err != nil {
		return apperr.Internal("lookup room", err)
	}

	uc.registry.CloseRoom(roomID)

	if err = uc.roomRepo.DeleteRoom(ctx, roomID); err != nil {
		return apperr.Internal("delete room", err)
	}

	if err = uc.playlistRepo.DeletePlaylist(ctx, room.PlaylistID); err != nil {
		return apperr.Internal("delete room playlist", err)
	}

	return nil
}
