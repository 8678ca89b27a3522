package usecase

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"github.com/google/uuid"

	"github.com/soundroomhq/soundroom/internal/apperr"
	"github.com/soundroomhq/soundroom/internal/application/constant"
	"github.com/soundroomhq/soundroom/internal/domain/events"
	"github.com/soundroomhq/soundroom/internal/domain/models"
	"github.com/soundroomhq/soundroom/internal/infra/adapters/memory"
	"github.com/soundroomhq/soundroom/internal/infra/adapters/postgres/repository"
)

type JoinRequestUsecase interface {
	// RequestToJoin files a pending request. A user with an open request or
	// an existing membership cannot file another one.
	RequestToJoin(ctx context.Context, userID, roomID uuid.UUID) (*models.JoinRequest, error)

	// Resolve accepts or rejects a pending request. Accepting creates the
	// membership. Owner or manager only.
	Resolve(ctx context.Context, actorID, requestID uuid.UUID, accept bool) (*models.JoinRequest, *models.Membership, error)

	// ListPending returns the room's queue for privileged members.
	ListPending(ctx context.Context, userID, roomID uuid.UUID) ([]models.JoinRequest, error)

	// OpenRequest returns the user's pending or accepted request for the
	// room, if any.
	OpenRequest(ctx context.Context, userID, roomID uuid.UUID) (*models.JoinRequest, error)
}

type joinRequestUsecase struct {
	joinRequestRepo repository.JoinRequestRepository
	membershipRepo  repository.MembershipRepository
	roomRepo        repository.RoomRepository
	userRepo        repository.UserRepository
	registry        memory.RoomRegistry
	notifier        memory.JoinNotifier
}

func NewJoinRequestUsecase(
	joinRequestRepo repository.JoinRequestRepository,
	membershipRepo repository.MembershipRepository,
	roomRepo repository.RoomRepository,
	userRepo repository.UserRepository,
	registry memory.RoomRegistry,
	notifier memory.JoinNotifier,
) JoinRequestUsecase {
	return &joinRequestUsecase{
		joinRequestRepo: joinRequestRepo,
		membershipRepo:  membershipRepo,
		roomRepo:        roomRepo,
		userRepo:        userRepo,
		registry:        registry,
		notifier:        notifier,
	}
}

func (uc *joinRequestUsecase) RequestToJoin(ctx context.Context, userID, roomID uuid.UUID) (*models.JoinRequest, error) {
	if _, err := uc.roomRepo.GetRoomByID(ctx, roomID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.NotFound("room not found")
		}
		return nil, apperr.Internal("lookup room", err)
	}

	if _, err := uc.membershipRepo.GetMembershipByRoomAndUser(ctx, roomID, userID); err == nil {
		return nil, apperr.Conflict("already a member of this room")
	} else if !errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.Internal("lookup membership", err)
	}

	if _, err := uc.joinRequestRepo.GetOpenJoinRequest(ctx, roomID, userID); err == nil {
		return nil, apperr.Conflict("a join request is already open")
	} else if !errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.Internal("lookup join request", err)
	}

	request := models.NewJoinRequest(roomID, userID)

	if err := uc.joinRequestRepo.CreateJoinRequest(ctx, request); err != nil {
		return nil, apperr.Internal("create join request", err)
	}

	uc.broadcastCreated(ctx, request)

	return request, nil
}

func (uc *joinRequestUsecase) OpenRequest(ctx context.Context, userID, roomID uuid.UUID) (*models.JoinRequest, error) {
	request, err := uc.joinRequestRepo.GetOpenJoinRequest(ctx, roomID, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.NotFound("no open join request")
		}
		return nil, apperr.Internal("lookup join request", err)
	}

	return request, nil
}

// broadcastCreated tells connected room members a new request is waiting.
func (uc *joinRequestUsecase) broadcastCreated(ctx context.Context, request *models.JoinRequest) {
	user, err := uc.userRepo.GetUserByID(ctx, request.UserID)
	if err != nil {
		slog.Error("lookup requesting user", slog.Any(constant.Error, err))
		return
	}

	frame, err := events.Frame(events.TypeJoinRequest, events.ActionRequestCreated, events.RequestCreatedEvent{
		RequestID:   request.ID,
		UserID:      user.ID,
		DisplayName: user.DisplayName,
		AvatarURL:   user.AvatarURL,
		Status:      request.Status,
	})
	if err != nil {
		slog.Error("frame request created event", slog.Any(constant.Error, err))
		return
	}

	uc.registry.Broadcast(request.RoomID, frame)
}

func (uc *joinRequestUsecase) Resolve(ctx context.Context, actorID, requestID uuid.UUID, accept bool) (*models.JoinRequest, *models.Membership, error) {
	request, err := uc.joinRequestRepo.GetJoinRequestByID(ctx, requestID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil, apperr.NotFound("join request not found")
		}
		return nil, nil, apperr.Internal("lookup join request", err)
	}

	actor, err := uc.membershipRepo.GetMembershipByRoomAndUser(ctx, request.RoomID, actorID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil, apperr.Forbidden("not a member of this room")
		}
		return nil, nil, apperr.Internal("lookup membership", err)
	}

	if !actor.Role.AtLeast(models.RoleManager) {
		return nil, nil, apperr.Forbidden("only the owner or a manager can resolve join requests")
	}

	if request.Status.Finalized() {
		return nil, nil, apperr.Conflict("join request is already resolved")
	}

	if !accept {
		if err = uc.joinRequestRepo.UpdateStatus(ctx, request.ID, models.JoinRequestRejected); err != nil {
			return nil, nil, apperr.Internal("reject join request", err)
		}

		request.Status = models.JoinRequestRejected

		uc.notifyResolved(request)

		return request, nil, nil
	}

	if err = uc.joinRequestRepo.UpdateStatus(ctx, request.ID, models.JoinRequestAccepted); err != nil {
		return nil, nil, apperr.Internal("accept join request", err)
	}

	request.Status = models.JoinRequestAccepted

	membership := models.NewMembership(request.RoomID, request.UserID, models.RoleMember)

	if err = uc.membershipRepo.CreateMembership(ctx, membership); err != nil {
		return nil, nil, apperr.Internal("create membership", err)
	}

	uc.notifyResolved(request)

	return request, membership, nil
}

// notifyResolved wakes the requester's waiting connection, if any.
func (uc *joinRequestUsecase) notifyResolved(request *models.JoinRequest) {
	frame, err := events.Frame(events.TypeJoinRequest, events.ActionRequestResolved, events.RequestResolvedEvent{
		RequestID: request.ID,
		Status:    request.Status,
	})
	if err != nil {
		slog.Error("frame request resolved event", slog.Any(constant.Error, err))
		return
	}

	uc.notifier.Notify(request.ID, frame)
}

func (uc *joinRequestUsecase) ListPending(ctx context.Context, userID, roomID uuid.UUID) ([]models.JoinRequest, error) {
	actor, err := uc.membershipRepo.GetMembershipByRoomAndUser(ctx, roomID, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.Forbidden("not a member of this room")
		}
		return nil, apperr.Internal("lookup membership", err)
	}

	if !actor.Role.AtLeast(models.RoleManager) {
		return nil, apperr.Forbidden("only the owner or a manager can view join requests")
	}

	requests, err := uc.joinRequestRepo.ListPendingByRoom(ctx, roomID)
	if err != nil {
		return nil, apperr.Internal("list join requests", err)
	}

	return requests, nil
}
