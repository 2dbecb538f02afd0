package service

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"ai-assistant-be/internal/dto"
	"ai-assistant-be/internal/entity"
	"ai-assistant-be/internal/repository/contract"
	"ai-assistant-be/internal/repository/device"
	"ai-assistant-be/internal/repository/specification"

	"ai-assistant-be/pkg/events"
	pktNats "ai-assistant-be/pkg/nats"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

var ErrNoDeviceSession = errors.New("no remembered session on this device")

type IAuthService interface {
	Register(ctx context.Context, req *dto.RegisterRequest) (*dto.LoginResponse, error)
	Login(ctx context.Context, req *dto.LoginRequest, userAgent string) (*dto.LoginResponse, error)
	// DeviceLogin restores the login remembered on this device, if any.
	DeviceLogin(ctx context.Context) (*dto.LoginResponse, error)
	Logout(ctx context.Context) error
}

type authService struct {
	userRepo       contract.UserRepository
	devices        *device.SessionStore
	eventPublisher *pktNats.Publisher
}

func NewAuthService(userRepo contract.UserRepository, devices *device.SessionStore, eventPublisher *pktNats.Publisher) IAuthService {
	return &authService{
		userRepo:       userRepo,
		devices:        devices,
		eventPublisher: eventPublisher,
	}
}

func (s *authService) Register(ctx context.Context, req *dto.RegisterRequest) (*dto.LoginResponse, error) {
	existing, _ := s.userRepo.FindOne(ctx, specification.ByEmail{Email: req.Email})
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
		Name:         req.Name,
		PasswordHash: &hashStr,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	if req.RememberDevice {
		if err := s.devices.CreateSession(user.Email, user.Name); err != nil {
			fmt.Printf("[WARN] Failed to persist device session: %v\n", err)
		}
	}

	if s.eventPublisher != nil {
		event := events.New(events.UserRegistered, map[string]interface{}{
			"user_id": user.Id,
			"email":   user.Email,
		})
		if err := s.eventPublisher.Publish(ctx, event); err != nil {
			fmt.Printf("[WARN] Failed to publish USER_REGISTERED event: %v\n", err)
		}
	}

	return s.issueToken(ctx, user)
}

func (s *authService) Login(ctx context.Context, req *dto.LoginRequest, userAgent string) (*dto.LoginResponse, error) {
	user, err := s.userRepo.FindOne(ctx, specification.ByEmail{Email: req.Email})
	if err != nil || user == nil {
		return nil, errors.New("invalid credentials")
	}
	if user.PasswordHash == nil {
		return nil, errors.New("invalid credentials")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(*user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, errors.New("invalid credentials")
	}

	if req.RememberDevice {
		if err := s.devices.CreateSession(user.Email, user.Name); err != nil {
			fmt.Printf("[WARN] Failed to persist device session: %v\n", err)
		}
	}

	if s.eventPublisher != nil {
		event := events.New(events.UserLogin, map[string]interface{}{
			"user_id": user.Id,
			"device":  userAgent,
			"time":    time.Now().Format(time.RFC822),
		})
		if err := s.eventPublisher.Publish(ctx, event); err != nil {
			fmt.Printf("[WARN] Failed to publish USER_LOGIN event: %v\n", err)
		}
	}

	return s.issueToken(ctx, user)
}

func (s *authService) DeviceLogin(ctx context.Context) (*dto.LoginResponse, error) {
	session, ok := s.devices.GetSession()
	if !ok {
		return nil, ErrNoDeviceSession
	}

	user, err := s.userRepo.FindOne(ctx, specification.ByEmail{Email: session.Email})
	if err != nil {
		return nil, err
	}
	if user == nil {
		// Account deleted since the device last signed in.
		_ = s.devices.ClearSession()
		return nil, ErrNoDeviceSession
	}
	return s.issueToken(ctx, user)
}

func (s *authService) Logout(ctx context.Context) error {
	return s.devices.ClearSession()
}

func (s *authService) issueToken(ctx context.Context, user *entity.User) (*dto.LoginResponse, error) {
	claims := jwt.MapClaims{
		"user_id": user.Id.String(),
		"email":   user.Email,
		"exp":     time.Now().Add(24 * time.Hour).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		secret = "default_secret"
	}
	signedToken, err := token.SignedString([]byte(secret))
	if err != nil {
		return nil, err
	}

	return &dto.LoginResponse{
		AccessToken: signedToken,
		User: dto.UserDTO{
			Id:    user.Id,
			Email: user.Email,
			Name:  user.Name,
		},
		ProfileComplete: user.IsProfileComplete(),
	}, nil
}
