package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"ai-assistant-be/internal/dto"
	"ai-assistant-be/internal/repository/contract"
	"ai-assistant-be/internal/repository/device"
	"ai-assistant-be/internal/repository/specification"

	"ai-assistant-be/pkg/events"
	pktNats "ai-assistant-be/pkg/nats"

	"github.com/google/uuid"
)

type IUserService interface {
	GetProfile(ctx context.Context, userId uuid.UUID) (*dto.UserDTO, error)
	ExportData(ctx context.Context, userId uuid.UUID) (*dto.ExportDataResponse, error)
	DeleteAccount(ctx context.Context, userId uuid.UUID) error
}

type userService struct {
	userRepo       contract.UserRepository
	chatRepo       contract.ChatRepository
	devices        *device.SessionStore
	eventPublisher *pktNats.Publisher
}

func NewUserService(userRepo contract.UserRepository, chatRepo contract.ChatRepository, devices *device.SessionStore, eventPublisher *pktNats.Publisher) IUserService {
	return &userService{
		userRepo:       userRepo,
		chatRepo:       chatRepo,
		devices:        devices,
		eventPublisher: eventPublisher,
	}
}

func (s *userService) GetProfile(ctx context.Context, userId uuid.UUID) (*dto.UserDTO, error) {
	user, err := s.userRepo.FindOne(ctx, specification.ByID{ID: userId})
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, errors.New("user not found")
	}
	return &dto.UserDTO{
		Id:    user.Id,
		Email: user.Email,
		Name:  user.Name,
	}, nil
}

// ExportData collects everything the account owns into one JSON-serializable
// document. Trashed sessions are included so the export is a faithful copy.
func (s *userService) ExportData(ctx context.Context, userId uuid.UUID) (*dto.ExportDataResponse, error) {
	user, err := s.userRepo.FindOne(ctx, specification.ByID{ID: userId})
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, errors.New("user not found")
	}

	sessions, err := s.chatRepo.FetchAll(ctx, user.Email)
	if err != nil {
		return nil, err
	}

	return &dto.ExportDataResponse{
		User: dto.UserDTO{
			Id:    user.Id,
			Email: user.Email,
			Name:  user.Name,
		},
		ExportedAt: time.Now().UTC().Format(time.RFC3339),
		Sessions:   toSessionDTOs(sessions),
	}, nil
}

// DeleteAccount removes the user row, every chat document they own, and the
// device session remembering them.
func (s *userService) DeleteAccount(ctx context.Context, userId uuid.UUID) error {
	user, err := s.userRepo.FindOne(ctx, specification.ByID{ID: userId})
	if err != nil {
		return err
	}
	if user == nil {
		return errors.New("user not found")
	}

	if err := s.chatRepo.DeleteAllByUser(ctx, user.Email); err != nil {
		return err
	}
	if err := s.userRepo.Delete(ctx, userId); err != nil {
		return err
	}
	if session, ok := s.devices.GetSession(); ok && session.Email == user.Email {
		_ = s.devices.ClearSession()
	}

	if s.eventPublisher != nil {
		event := events.New(events.UserDeleted, map[string]interface{}{
			"user_id": userId,
			"time":    time.Now().Format(time.RFC822),
		})
		if err := s.eventPublisher.Publish(ctx, event); err != nil {
			fmt.Printf("[WARN] Failed to publish USER_DELETED event: %v\n", err)
		}
	}
	return nil
}
