package service

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"sync"
	"time"

	"ai-assistant-be/internal/constant"
	"ai-assistant-be/internal/dto"
	"ai-assistant-be/internal/entity"
	"ai-assistant-be/internal/pkg/logger"
	"ai-assistant-be/internal/repository/contract"
	"ai-assistant-be/pkg/enrich"
)

const chatLoggerModule = "CHAT_SERVICE"

// DefaultSendTimeout bounds one model round trip. The guard on the session
// is released when the timeout fires, so a hung upstream cannot wedge the
// conversation.
const DefaultSendTimeout = 120 * time.Second

var (
	ErrSendInFlight         = errors.New("a message is already being processed for this session")
	ErrSessionNotFound      = errors.New("chat session not found")
	ErrConfirmationRequired = errors.New("destructive operation requires confirmation")
)

type IChatService interface {
	CreateNewSession(ctx context.Context, userEmail string) (*dto.CreateSessionResponse, error)
	Send(ctx context.Context, userEmail string, req *dto.SendMessageRequest) (*dto.SendMessageResponse, error)
	ListSessions(ctx context.Context, userEmail string) ([]*dto.ChatSessionResponse, error)
	Trash(ctx context.Context, userEmail, sessionId string) error
	Restore(ctx context.Context, userEmail, sessionId string) error
	Pin(ctx context.Context, userEmail string, req *dto.PinSessionRequest) error
	PermanentlyDelete(ctx context.Context, userEmail string, req *dto.PermanentDeleteRequest) error
	EmptyTrash(ctx context.Context, userEmail string, req *dto.EmptyTrashRequest) (int, error)
	SweepExpiredTrash(ctx context.Context, userEmail string) (int, error)
	Subscribe(ctx context.Context, userEmail string, onChange func([]*dto.ChatSessionResponse)) (func(), error)
}

// Generator is the slice of the enrichment pipeline the service depends on.
type Generator interface {
	Generate(ctx context.Context, history []entity.Message, text string, attachments []entity.Attachment) (string, error)
}

type chatService struct {
	chatRepo    contract.ChatRepository
	pipeline    Generator
	log         logger.ILogger
	sendTimeout time.Duration

	mu       sync.Mutex
	inFlight map[string]bool
}

var _ Generator = (*enrich.Pipeline)(nil)

func NewChatService(chatRepo contract.ChatRepository, pipeline Generator, log logger.ILogger, sendTimeout time.Duration) IChatService {
	if sendTimeout <= 0 {
		sendTimeout = DefaultSendTimeout
	}
	return &chatService{
		chatRepo:    chatRepo,
		pipeline:    pipeline,
		log:         log,
		sendTimeout: sendTimeout,
		inFlight:    make(map[string]bool),
	}
}

func (s *chatService) CreateNewSession(ctx context.Context, userEmail string) (*dto.CreateSessionResponse, error) {
	session := newSession()
	if err := s.chatRepo.Save(ctx, userEmail, session); err != nil {
		return nil, err
	}
	return &dto.CreateSessionResponse{
		Id:    session.Id,
		Title: session.Title,
		Date:  session.Date,
	}, nil
}

func (s *chatService) Send(ctx context.Context, userEmail string, req *dto.SendMessageRequest) (*dto.SendMessageResponse, error) {
	text := strings.TrimSpace(req.Text)
	if text == "" && len(req.Attachments) == 0 {
		return nil, nil
	}

	session, err := s.resolveSession(ctx, userEmail, req.SessionId)
	if err != nil {
		return nil, err
	}

	guardKey := userEmail + "/" + session.Id
	if !s.acquire(guardKey) {
		return nil, ErrSendInFlight
	}
	defer s.release(guardKey)

	history := session.Messages

	userMsg := entity.Message{
		Role:      constant.ChatMessageRoleUser,
		Text:      text,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
	session.Messages = append(session.Messages, userMsg)
	if len(history) == 0 {
		session.Title = deriveTitle(text)
	}
	if err := s.chatRepo.Save(ctx, userEmail, session); err != nil {
		return nil, err
	}

	replyText := s.generate(ctx, history, text, toAttachments(req.Attachments))
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	replyMsg := entity.Message{
		Role:      constant.ChatMessageRoleModel,
		Text:      replyText,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
	session.Messages = append(session.Messages, replyMsg)
	if err := s.chatRepo.Save(ctx, userEmail, session); err != nil {
		return nil, err
	}

	return &dto.SendMessageResponse{
		SessionId: session.Id,
		Title:     session.Title,
		Sent:      toMessageDTO(userMsg),
		Reply:     toMessageDTO(replyMsg),
	}, nil
}

// generate runs the pipeline under the send timeout. The pipeline already
// converts transport failures into fixed reply strings; a timeout or cancel
// is converted here so the user message persisted above is always answered.
func (s *chatService) generate(ctx context.Context, history []entity.Message, text string, attachments []entity.Attachment) string {
	genCtx, cancel := context.WithTimeout(ctx, s.sendTimeout)
	defer cancel()

	reply, err := s.pipeline.Generate(genCtx, history, text, attachments)
	if err != nil {
		s.log.Warn(chatLoggerModule, "generation aborted", map[string]interface{}{
			"error": err.Error(),
		})
		return constant.MsgConnectionFailed
	}
	return reply
}

func (s *chatService) resolveSession(ctx context.Context, userEmail, sessionId string) (*entity.ChatSession, error) {
	if sessionId == "" {
		return newSession(), nil
	}
	session, err := s.chatRepo.FindOne(ctx, userEmail, sessionId)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, ErrSessionNotFound
	}
	return session, nil
}

func (s *chatService) ListSessions(ctx context.Context, userEmail string) ([]*dto.ChatSessionResponse, error) {
	sessions, err := s.chatRepo.FetchAll(ctx, userEmail)
	if err != nil {
		return nil, err
	}
	return toSessionDTOs(sessions), nil
}

func (s *chatService) Trash(ctx context.Context, userEmail, sessionId string) error {
	return s.chatRepo.MoveToTrash(ctx, userEmail, sessionId)
}

func (s *chatService) Restore(ctx context.Context, userEmail, sessionId string) error {
	return s.chatRepo.Restore(ctx, userEmail, sessionId)
}

func (s *chatService) Pin(ctx context.Context, userEmail string, req *dto.PinSessionRequest) error {
	return s.chatRepo.SetPinned(ctx, userEmail, req.SessionId, req.Pinned)
}

func (s *chatService) PermanentlyDelete(ctx context.Context, userEmail string, req *dto.PermanentDeleteRequest) error {
	if !req.Confirm {
		return ErrConfirmationRequired
	}
	return s.chatRepo.PermanentlyDelete(ctx, userEmail, req.SessionId)
}

func (s *chatService) EmptyTrash(ctx context.Context, userEmail string, req *dto.EmptyTrashRequest) (int, error) {
	if !req.Confirm {
		return 0, ErrConfirmationRequired
	}
	deleted, err := s.chatRepo.EmptyTrash(ctx, userEmail)
	if err != nil {
		return deleted, err
	}
	s.log.Info(chatLoggerModule, "trash emptied", map[string]interface{}{
		"user":    userEmail,
		"deleted": deleted,
	})
	return deleted, nil
}

func (s *chatService) SweepExpiredTrash(ctx context.Context, userEmail string) (int, error) {
	return s.chatRepo.SweepExpiredTrash(ctx, userEmail)
}

// Subscribe streams sessions to onChange and opportunistically sweeps
// expired trash in the background so long-dead sessions disappear without a
// dedicated scheduler.
func (s *chatService) Subscribe(ctx context.Context, userEmail string, onChange func([]*dto.ChatSessionResponse)) (func(), error) {
	unsubscribe, err := s.chatRepo.Subscribe(ctx, userEmail, func(sessions []*entity.ChatSession) {
		onChange(toSessionDTOs(sessions))
	})
	if err != nil {
		return nil, err
	}

	go func() {
		sweepCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if swept, err := s.chatRepo.SweepExpiredTrash(sweepCtx, userEmail); err != nil {
			s.log.Warn(chatLoggerModule, "trash sweep failed", map[string]interface{}{
				"user":  userEmail,
				"error": err.Error(),
			})
		} else if swept > 0 {
			s.log.Info(chatLoggerModule, "expired trash swept", map[string]interface{}{
				"user":  userEmail,
				"swept": swept,
			})
		}
	}()

	return unsubscribe, nil
}

func (s *chatService) acquire(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.inFlight[key] {
		return false
	}
	s.inFlight[key] = true
	return true
}

func (s *chatService) release(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.inFlight, key)
}

func newSession() *entity.ChatSession {
	return &entity.ChatSession{
		Id:       strconv.FormatInt(time.Now().UnixMilli(), 10),
		Title:    constant.DefaultSessionTitle,
		Date:     time.Now().UTC().Format(time.RFC3339),
		Messages: []entity.Message{},
	}
}

func deriveTitle(text string) string {
	title := strings.TrimSpace(text)
	if line, _, found := strings.Cut(title, "\n"); found {
		title = line
	}
	runes := []rune(title)
	if len(runes) > constant.SessionTitleMaxRunes {
		title = string(runes[:constant.SessionTitleMaxRunes])
	}
	if title == "" {
		return constant.DefaultSessionTitle
	}
	return title
}

func toAttachments(dtos []dto.AttachmentDTO) []entity.Attachment {
	if len(dtos) == 0 {
		return nil
	}
	attachments := make([]entity.Attachment, 0, len(dtos))
	for _, a := range dtos {
		attachments = append(attachments, entity.Attachment{
			Kind:     a.Type,
			MimeType: a.MimeType,
			Data:     a.Data,
			Name:     a.Name,
		})
	}
	return attachments
}

func toMessageDTO(m entity.Message) *dto.ChatMessageDTO {
	return &dto.ChatMessageDTO{
		Role:      m.Role,
		Text:      m.Text,
		Timestamp: m.Timestamp,
	}
}

func toSessionDTOs(sessions []*entity.ChatSession) []*dto.ChatSessionResponse {
	out := make([]*dto.ChatSessionResponse, 0, len(sessions))
	for _, s := range sessions {
		messages := make([]dto.ChatMessageDTO, 0, len(s.Messages))
		for _, m := range s.Messages {
			messages = append(messages, *toMessageDTO(m))
		}
		out = append(out, &dto.ChatSessionResponse{
			Id:        s.Id,
			Title:     s.Title,
			Date:      s.Date,
			Messages:  messages,
			IsPinned:  s.IsPinned,
			DeletedAt: s.DeletedAt,
		})
	}
	return out
}
