package usecase

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	"github.com/soundroomhq/soundroom/internal/apperr"
	"github.com/soundroomhq/soundroom/internal/domain/models"
	"github.com/soundroomhq/soundroom/internal/infra/adapters/memory"
	"github.com/soundroomhq/soundroom/internal/infra/adapters/postgres/repository"
)

type RoomUsecase interface {
	// CreateRoom makes the room, its dedicated playlist and the creator's
	// owner membership. When sourcePlaylistID is set, the new playlist
	// starts as a copy of it.
	CreateRoom(ctx context.Context, userID uuid.UUID, name string, sourcePlaylistID *uuid.UUID) (*models.Room, error)
	GetRoom(ctx context.Context, userID, roomID uuid.UUID) (*models.Room, error)
	ListRooms(ctx context.Context, userID uuid.UUID) ([]models.Room, error)
	// UpdateRoom renames the room. Owner or manager only.
	UpdateRoom(ctx context.Context, userID, roomID uuid.UUID, name string) (*models.Room, error)
	// DeleteRoom tears the room down: connections closed, rows cascaded,
	// the room playlist erased. Owner only.
	DeleteRoom(ctx context.Context, userID, roomID uuid.UUID) error
}

type roomUsecase struct {
	roomRepo       repository.RoomRepository
	playlistRepo   repository.PlaylistRepository
	membershipRepo repository.MembershipRepository
	registry       memory.RoomRegistry
}

func NewRoomUsecase(
	roomRepo repository.RoomRepository,
	playlistRepo repository.PlaylistRepository,
	membershipRepo repository.MembershipRepository,
	registry memory.RoomRegistry,
) RoomUsecase {
	return &roomUsecase{
		roomRepo:       roomRepo,
		playlistRepo:   playlistRepo,
		membershipRepo: membershipRepo,
		registry:       registry,
	}
}

func (uc *roomUsecase) CreateRoom(ctx context.Context, userID uuid.UUID, name string, sourcePlaylistID *uuid.UUID) (*models.Room, error) {
	if name == "" {
		return nil, apperr.Validation("room name is required")
	}

	playlist := models.NewPlaylist(name, models.PlaylistRoom, nil)

	if err := uc.playlistRepo.CreatePlaylist(ctx, playlist); err != nil {
		return nil, apperr.Internal("create room playlist", err)
	}

	if sourcePlaylistID != nil {
		if _, err := uc.playlistRepo.GetPlaylistByID(ctx, *sourcePlaylistID); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, apperr.NotFound("source playlist not found")
			}
			return nil, apperr.Internal("lookup source playlist", err)
		}

		if err := uc.playlistRepo.CopyEntries(ctx, *sourcePlaylistID, playlist.ID); err != nil {
			return nil, apperr.Internal("copy source playlist", err)
		}
	}

	room := models.NewRoom(name, playlist.ID)

	if err := uc.roomRepo.CreateRoom(ctx, room); err != nil {
		return nil, apperr.Internal("create room", err)
	}

	owner := models.NewMembership(room.ID, userID, models.RoleOwner)

	if err := uc.membershipRepo.CreateMembership(ctx, owner); err != nil {
		return nil, apperr.Internal("create owner membership", err)
	}

	return room, nil
}

func (uc *roomUsecase) GetRoom(ctx context.Context, userID, roomID uuid.UUID) (*models.Room, error) {
	if _, err := uc.requireMember(ctx, roomID, userID); err != nil {
		return nil, err
	}

	room, err := uc.roomRepo.GetRoomByID(ctx, roomID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.NotFound("room not found")
		}
		return nil, apperr.Internal("lookup room", err)
	}

	return room, nil
}

func (uc *roomUsecase) ListRooms(ctx context.Context, userID uuid.UUID) ([]models.Room, error) {
	rooms, err := uc.roomRepo.ListRoomsForUser(ctx, userID)
	if err != nil {
		return nil, apperr.Internal("list rooms", err)
	}

	return rooms, nil
}

func (uc *roomUsecase) UpdateRoom(ctx context.Context, userID, roomID uuid.UUID, name string) (*models.Room, error) {
	if name == "" {
		return nil, apperr.Validation("room name is required")
	}

	membership, err := uc.requireMember(ctx, roomID, userID)
	if err != nil {
		return nil, err
	}

	if !membership.Role.AtLeast(models.RoleManager) {
		return nil, apperr.Forbidden("only the owner or a manager can rename a room")
	}

	room, err := uc.roomRepo.GetRoomByID(ctx, roomID)
	if err != nil {
		return nil, apperr.Internal("lookup room", err)
	}

	room.Name = name

	if err = uc.roomRepo.UpdateRoom(ctx, room); err != nil {
		return nil, apperr.Internal("update room", err)
	}

	return room, nil
}

func (uc *roomUsecase) DeleteRoom(ctx context.Context, userID, roomID uuid.UUID) error {
	membership, err := uc.requireMember(ctx, roomID, userID)
	if err != nil {
		return err
	}

	if membership.Role != models.RoleOwner {
		return apperr.Forbidden("only the owner can delete a room")
	}

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

func (uc *roomUsecase) requireMember(ctx context.Context, roomID, userID uuid.UUID) (*models.Membership, error) {
	membership, err := uc.membershipRepo.GetMembershipByRoomAndUser(ctx, roomID, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.Forbidden("not a member of this room")
		}
		return nil, apperr.Internal("lookup membership", err)
	}

	return membership, nil
}
