package usecase

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/soundroomhq/soundroom/internal/apperr"
	"github.com/soundroomhq/soundroom/internal/domain/models"
	"github.com/soundroomhq/soundroom/internal/infra/adapters/postgres/repository"
)

// TokenPair is what a successful login or refresh hands the client.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

type AuthUsecase interface {
	Register(ctx context.Context, displayName, email, password string) (*models.User, error)
	Login(ctx context.Context, email, password string) (*TokenPair, error)
	// Refresh rotates the presented refresh token: the old one is revoked
	// and a fresh pair is issued.
	Refresh(ctx context.Context, refreshToken string) (*TokenPair, error)
	// Logout revokes every live refresh token of the user.
	Logout(ctx context.Context, userID uuid.UUID) error

	// VerifyAccessToken parses and validates an access token, returning the
	// subject user.
	VerifyAccessToken(ctx context.Context, token string) (*models.User, error)

	GetUser(ctx context.Context, id uuid.UUID) (*models.User, error)
}

type authUsecase struct {
	jwtSecret  []byte
	accessTTL  time.Duration
	refreshTTL time.Duration

	userRepo  repository.UserRepository
	tokenRepo repository.RefreshTokenRepository
}

func NewAuthUsecase(
	jwtSecret []byte,
	accessTTL time.Duration,
	refreshTTL time.Duration,
	userRepo repository.UserRepository,
	tokenRepo repository.RefreshTokenRepository,
) AuthUsecase {
	return &authUsecase{
		jwtSecret:  jwtSecret,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		userRepo:   userRepo,
		tokenRepo:  tokenRepo,
	}
}

func (uc *authUsecase) Register(ctx context.Context, displayName, email, password string) (*models.User, error) {
	if displayName == "" || email == "" {
		return nil, apperr.Validation("display name and email are required")
	}

	if len(password) < 8 {
		return nil, apperr.Validation("password must be at least 8 characters")
	}

	if _, err := uc.userRepo.GetUserByEmail(ctx, email); err == nil {
		return nil, apperr.Conflict("email already registered")
	} else if !errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.Internal("lookup user", err)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperr.Internal("hash password", err)
	}

	user := models.NewUser(displayName, email, string(hashed), "")

	if err = uc.userRepo.CreateUser(ctx, user); err != nil {
		return nil, apperr.Internal("create user", err)
	}

	return user, nil
}

func (uc *authUsecase) Login(ctx context.Context, email, password string) (*TokenPair, error) {
	user, err := uc.userRepo.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.Unauthorized("invalid credentials")
		}
		return nil, apperr.Internal("lookup user", err)
	}

	if user.Status != models.UserActive {
		return nil, apperr.Forbidden("account is disabled")
	}

	if err = bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, apperr.Unauthorized("invalid credentials")
	}

	return uc.issuePair(ctx, user)
}

func (uc *authUsecase) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	stored, err := uc.tokenRepo.GetByToken(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.Unauthorized("unknown refresh token")
		}
		return nil, apperr.Internal("lookup refresh token", err)
	}

	if !stored.Live(time.Now()) {
		return nil, apperr.Unauthorized("refresh token expired or revoked")
	}

	user, err := uc.userRepo.GetUserByID(ctx, stored.UserID)
	if err != nil {
		return nil, apperr.Internal("lookup user", err)
	}

	if user.Status != models.UserActive {
		return nil, apperr.Forbidden("account is disabled")
	}

	if err = uc.tokenRepo.RevokeToken(ctx, stored.ID); err != nil {
		return nil, apperr.Internal("revoke refresh token", err)
	}

	return uc.issuePair(ctx, user)
}

func (uc *authUsecase) Logout(ctx context.Context, userID uuid.UUID) error {
	if err := uc.tokenRepo.RevokeAllForUser(ctx, userID); err != nil {
		return apperr.Internal("revoke refresh tokens", err)
	}

	return nil
}

func (uc *authUsecase) VerifyAccessToken(ctx context.Context, token string) (*models.User, error) {
	parsed, err := jwt.ParseWithClaims(token, &jwt.RegisteredClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return uc.jwtSecret, nil
	})
	if err != nil || !parsed.Valid {
		return nil, apperr.Unauthorized("invalid access token")
	}

	claims, ok := parsed.Claims.(*jwt.RegisteredClaims)
	if !ok {
		return nil, apperr.Unauthorized("invalid access token")
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, apperr.Unauthorized("invalid access token subject")
	}

	user, err := uc.userRepo.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.Unauthorized("unknown user")
		}
		return nil, apperr.Internal("lookup user", err)
	}

	if user.Status != models.UserActive {
		return nil, apperr.Forbidden("account is disabled")
	}

	return user, nil
}

func (uc *authUsecase) GetUser(ctx context.Context, id uuid.UUID) (*models.User, error) {
	user, err := uc.userRepo.GetUserByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.NotFound("user not found")
		}
		return nil, apperr.Internal("lookup user", err)
	}

	return user, nil
}

func (uc *authUsecase) issuePair(ctx context.Context, user *models.User) (*TokenPair, error) {
	now := time.Now()

	claims := &jwt.RegisteredClaims{
		Subject:   user.ID.String(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(uc.accessTTL)),
	}

	access, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(uc.jwtSecret)
	if err != nil {
		return nil, apperr.Internal("sign access token", err)
	}

	refresh := models.NewRefreshToken(user.ID, randomToken(), now.Add(uc.refreshTTL))

	if err = uc.tokenRepo.CreateToken(ctx, refresh); err != nil {
		return nil, apperr.Internal("store refresh token", err)
	}

	return &TokenPair{AccessToken: access, RefreshToken: refresh.Token}, nil
}

func randomToken() string {
	buf := make([]byte, 32)
	_, _ = rand.Read(buf)

	return hex.EncodeToString(buf)
}
