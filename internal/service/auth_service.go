package service

import (
	"context"
	"errors"
	"log"
	"os"
	"time"

	"branching-chat-be/internal/dto"
	"branching-chat-be/internal/entity"
	"branching-chat-be/internal/pkg/serverutils"
	"branching-chat-be/internal/repository/specification"
	"branching-chat-be/internal/repository/unitofwork"
	"branching-chat-be/pkg/events"
	pktNats "branching-chat-be/pkg/nats"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

type IAuthService interface {
	Register(ctx context.Context, req *dto.RegisterRequest) (*dto.AuthResponse, error)
	Login(ctx context.Context, req *dto.LoginRequest) (*dto.AuthResponse, error)
	Me(ctx context.Context, userId uuid.UUID) (*dto.UserProfileResponse, error)
	UpdateKeys(ctx context.Context, userId uuid.UUID, req *dto.UpdateKeysRequest) error
}

type authService struct {
	uowFactory     unitofwork.RepositoryFactory
	eventPublisher *pktNats.Publisher
}

func NewAuthService(uowFactory unitofwork.RepositoryFactory, eventPublisher *pktNats.Publisher) IAuthService {
	return &authService{
		uowFactory:     uowFactory,
		eventPublisher: eventPublisher,
	}
}

func toProfile(user *entity.User) dto.UserProfileResponse {
	return dto.UserProfileResponse{
		Id:              user.Id,
		Email:           user.Email,
		FullName:        user.FullName,
		HasOpenAIKey:    user.OpenAIKey != nil && *user.OpenAIKey != "",
		HasAnthropicKey: user.AnthropicKey != nil && *user.AnthropicKey != "",
		CreatedAt:       user.CreatedAt,
	}
}

func generateToken(userId uuid.UUID) (string, error) {
	claims := jwt.MapClaims{
		"user_id": userId.String(),
		"exp":     time.Now().Add(24 * time.Hour).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		secret = "default_secret"
	}
	return token.SignedString([]byte(secret))
}

func (s *authService) Register(ctx context.Context, req *dto.RegisterRequest) (*dto.AuthResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	existing, err := uow.UserRepository().FindOne(ctx, specification.ByEmail{Email: req.Email})
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, errors.New("email already registered")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	hashStr := string(hash)

	user := &entity.User{
		Id:           uuid.New(),
		Email:        req.Email,
		FullName:     req.FullName,
		PasswordHash: &hashStr,
		CreatedAt:    time.Now(),
	}
	if err := uow.UserRepository().Create(ctx, user); err != nil {
		return nil, err
	}

	if s.eventPublisher != nil {
		evt := events.BaseEvent{
			Type: "USER_REGISTERED",
			Data: map[string]interface{}{
				"user_id": user.Id,
				"email":   user.Email,
			},
			OccurredAt: time.Now(),
		}
		// Notification-side event; registration itself already succeeded.
		if err := s.eventPublisher.Publish(ctx, evt); err != nil {
			log.Printf("[WARN] Failed to publish USER_REGISTERED event: %v", err)
		}
	}

	token, err := generateToken(user.Id)
	if err != nil {
		return nil, err
	}
	return &dto.AuthResponse{Token: token, User: toProfile(user)}, nil
}

func (s *authService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.AuthResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	user, err := uow.UserRepository().FindOne(ctx, specification.ByEmail{Email: req.Email})
	if err != nil || user == nil {
		return nil, errors.New("invalid credentials")
	}
	if user.PasswordHash == nil {
		return nil, errors.New("invalid credentials")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(*user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, errors.New("invalid credentials")
	}

	token, err := generateToken(user.Id)
	if err != nil {
		return nil, err
	}
	return &dto.AuthResponse{Token: token, User: toProfile(user)}, nil
}

func (s *authService) Me(ctx context.Context, userId uuid.UUID) (*dto.UserProfileResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	user, err := uow.UserRepository().FindOne(ctx, specification.ByID{ID: userId})
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, serverutils.NewNotFoundError("user not found")
	}
	profile := toProfile(user)
	return &profile, nil
}

func (s *authService) UpdateKeys(ctx context.Context, userId uuid.UUID, req *dto.UpdateKeysRequest) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	user, err := uow.UserRepository().FindOne(ctx, specification.ByID{ID: userId})
	if err != nil {
		return err
	}
	if user == nil {
		return serverutils.NewNotFoundError("user not found")
	}

	// nil leaves the key untouched; empty string clears it.
	if req.OpenAIKey != nil {
		if *req.OpenAIKey == "" {
			user.OpenAIKey = nil
		} else {
			user.OpenAIKey = req.OpenAIKey
		}
	}
	if req.AnthropicKey != nil {
		if *req.AnthropicKey == "" {
			user.AnthropicKey = nil
		} else {
			user.AnthropicKey = req.AnthropicKey
		}
	}

	now := time.Now()
	user.UpdatedAt = &now
	return uow.UserRepository().Update(ctx, user)
}
