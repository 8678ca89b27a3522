package usecase

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/soundroomhq/soundroom/internal/apperr"
	"github.com/soundroomhq/soundroom/internal/domain/models"
	"github.com/soundroomhq/soundroom/internal/infra/adapters/postgres/repository"
)

const defaultHistoryLimit = 50

type ChatUsecase interface {
	// SendMessage appends to the room's history. The sender must hold the
	// membership the message is attributed to.
	SendMessage(ctx context.Context, membershipID uuid.UUID, body string, replyToID *uuid.UUID) (*models.ChatMessage, error)
	History(ctx context.Context, userID, roomID uuid.UUID, before time.Time, limit int) ([]models.ChatMessage, error)
	Search(ctx context.Context, userID, roomID uuid.UUID, term string) ([]models.ChatMessage, error)
}

type chatUsecase struct {
	messageRepo    repository.MessageRepository
	membershipRepo repository.MembershipRepository
}

func NewChatUsecase(
	messageRepo repository.MessageRepository,
	membershipRepo repository.MembershipRepository,
) ChatUsecase {
	return &chatUsecase{
		messageRepo:    messageRepo,
		membershipRepo: membershipRepo,
	}
}

func (uc *chatUsecase) SendMessage(ctx context.Context, membershipID uuid.UUID, body string, replyToID *uuid.UUID) (*models.ChatMessage, error) {
	if body == "" {
		return nil, apperr.Validation("message body is required")
	}

	membership, err := uc.membershipRepo.GetMembershipByID(ctx, membershipID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.NotFound("membership not found")
		}
		return nil, apperr.Internal("lookup membership", err)
	}

	message := models.NewChatMessage(membership.RoomID, membership.ID, body, replyToID)

	if err = uc.messageRepo.CreateMessage(ctx, message); err != nil {
		return nil, apperr.Internal("create message", err)
	}

	return message, nil
}

func (uc *chatUsecase) History(ctx context.Context, userID, roomID uuid.UUID, before time.Time, limit int) ([]models.ChatMessage, error) {
	if err := uc.requireMember(ctx, roomID, userID); err != nil {
		return nil, err
	}

	if limit <= 0 || limit > 200 {
		limit = defaultHistoryLimit
	}

	messages, err := uc.messageRepo.ListMessages(ctx, roomID, before, limit)
	if err != nil {
		return nil, apperr.Internal("list messages", err)
	}

	return messages, nil
}

func (uc *chatUsecase) Search(ctx context.Context, userID, roomID uuid.UUID, term string) ([]models.ChatMessage, error) {
	if term == "" {
		return nil, apperr.Validation("search term is required")
	}

	if err := uc.requireMember(ctx, roomID, userID); err != nil {
		return nil, err
	}

	messages, err := uc.messageRepo.SearchMessages(ctx, roomID, term, defaultHistoryLimit)
	if err != nil {
		return nil, apperr.Internal("search messages", err)
	}

	return messages, nil
}

func (uc *chatUsecase) requireMember(ctx context.Context, roomID, userID uuid.UUID) error {
	_, err := uc.membershipRepo.GetMembershipByRoomAndUser(ctx, roomID, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return apperr.Forbidden("not a member of this room")
		}
		return apperr.Internal("lookup membership", err)
	}

	return nil
}
