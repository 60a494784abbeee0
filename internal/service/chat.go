package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"planner/internal/config"
	"planner/internal/domain"
	"planner/internal/domain/models"
	"planner/internal/domain/repositories"
	"planner/internal/domain/services"
	"planner/internal/tenant"
)

// chatService implements the ChatService interface
type chatService struct {
	projectRepo      repositories.ProjectRepository
	documentRepo     repositories.DocumentRepository
	sessionRepo      repositories.SessionRepository
	conversationRepo repositories.ConversationRepository
	engine           services.ConversationEngine
	engineTimeout    time.Duration
	freshness        time.Duration
	logger           *slog.Logger
}

// NewChatService creates a new chat service
func NewChatService(
	projectRepo repositories.ProjectRepository,
	documentRepo repositories.DocumentRepository,
	sessionRepo repositories.SessionRepository,
	conversationRepo repositories.ConversationRepository,
	engine services.ConversationEngine,
	engineTimeout time.Duration,
	freshness time.Duration,
	logger *slog.Logger,
) services.ChatService {
	return &chatService{
		projectRepo:      projectRepo,
		documentRepo:     documentRepo,
		sessionRepo:      sessionRepo,
		conversationRepo: conversationRepo,
		engine:           engine,
		engineTimeout:    engineTimeout,
		freshness:        freshness,
		logger:           logger,
	}
}

// ConversationID derives the conversation id for a project/session pair:
// one thread per session per project.
func ConversationID(projectID, sessionID string) string {
	return fmt.Sprintf("conv-%s-%s", projectID, sessionID)
}

// Chat runs one conversation turn.
func (s *chatService) Chat(ctx context.Context, req *services.ChatRequest) (*services.ChatResult, error) {
	if err := s.validateChat(req); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	session, err := s.sessionRepo.Get(ctx, req.SessionID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("no session, join a project first: %w", domain.ErrUnauthorized)
		}
		return nil, err
	}
	if !session.IsActive {
		return nil, fmt.Errorf("session is inactive, rejoin the project: %w", domain.ErrUnauthorized)
	}
	if session.ProjectID != req.ProjectID {
		return nil, fmt.Errorf("session belongs to another project: %w", domain.ErrForbidden)
	}

	if _, err := s.sessionRepo.TouchActivity(ctx, req.SessionID); err != nil {
		return nil, err
	}
	if err := s.projectRepo.Ensure(ctx, req.ProjectID); err != nil {
		return nil, err
	}

	conversationID := ConversationID(req.ProjectID, req.SessionID)
	if err := s.conversationRepo.Ensure(ctx, conversationID, req.ProjectID, &req.SessionID); err != nil {
		return nil, err
	}

	conversation, err := s.conversationRepo.Get(ctx, conversationID)
	if err != nil {
		return nil, err
	}

	if err := s.conversationRepo.AppendMessage(ctx, conversationID, models.RoleUser, req.Message); err != nil {
		return nil, err
	}

	// Snapshot the document so the response can report whether the
	// engine changed it during the turn.
	docBefore, err := s.documentRepo.Get(ctx, req.ProjectID)
	if err != nil {
		return nil, err
	}

	reply, staged, wrote, err := s.runEngine(ctx, req, conversation.Messages)
	if err != nil {
		// Detail stays server-side; the user gets a generic retry
		// message. The user message remains in history, and the
		// staged document write is discarded with the binding.
		s.logger.Error("conversation engine failed",
			"project_id", req.ProjectID,
			"session_id", req.SessionID,
			"error", err,
		)
		return nil, fmt.Errorf("please try again: %w", domain.ErrEngineFailure)
	}

	// Commit the staged write only now that the whole engine call
	// succeeded. The parent context carries no engine deadline, so a
	// turn that finishes near the timeout still lands its write.
	if wrote && staged != docBefore {
		if err := s.documentRepo.Replace(ctx, req.ProjectID, staged); err != nil {
			return nil, err
		}
	}

	if err := s.conversationRepo.AppendMessage(ctx, conversationID, models.RoleAssistant, reply.Response); err != nil {
		return nil, err
	}
	if err := s.projectRepo.Touch(ctx, req.ProjectID); err != nil {
		return nil, err
	}

	result := &services.ChatResult{Response: reply.Response}
	if wrote && staged != docBefore {
		result.Document = &staged
	}

	activeUsers, err := s.sessionRepo.ActiveByProject(ctx, req.ProjectID, s.freshness)
	if err != nil {
		return nil, err
	}
	result.ActiveUsers = activeUsers

	return result, nil
}

// runEngine invokes the engine with the tenant binding and a bounded
// timeout. The binding lives on engineCtx only, so document access is
// scoped to this call even under concurrent multi-project traffic.
// Document writes stay staged on the binding; the staged content is
// returned so the caller can commit it once the call succeeded.
func (s *chatService) runEngine(ctx context.Context, req *services.ChatRequest, history []models.Message) (reply *services.EngineReply, staged string, wrote bool, err error) {
	engineCtx, cancel := context.WithTimeout(ctx, s.engineTimeout)
	defer cancel()

	engineCtx = tenant.Bind(engineCtx, req.ProjectID, s.documentRepo)

	reply, err = s.engine.Respond(engineCtx, &services.EngineRequest{
		Message: req.Message,
		History: history,
	})
	if err != nil {
		return nil, "", false, err
	}

	staged, wrote = tenant.Staged(engineCtx)
	return reply, staged, wrote, nil
}

// History returns the flattened, chronologically sorted message history
// across all of the project's conversations.
func (s *chatService) History(ctx context.Context, projectID string) (*services.History, error) {
	conversations, err := s.conversationRepo.ByProject(ctx, projectID)
	if err != nil {
		return nil, err
	}

	entries := s.flatten(ctx, conversations)

	document, err := s.documentRepo.Get(ctx, projectID)
	if err != nil {
		return nil, err
	}

	activeUsers, err := s.sessionRepo.ActiveByProject(ctx, projectID, s.freshness)
	if err != nil {
		return nil, err
	}

	return &services.History{
		Entries:     entries,
		Document:    document,
		ActiveUsers: activeUsers,
	}, nil
}

// flatten merges per-conversation message lists into one timeline.
// Conversations arrive ordered by creation; messages keep append order.
// The stable sort therefore breaks timestamp ties by conversation
// creation order, then append order - deterministic across reads.
func (s *chatService) flatten(ctx context.Context, conversations []models.Conversation) []models.HistoryEntry {
	names := s.resolveNames(ctx, conversations)

	entries := make([]models.HistoryEntry, 0)
	for _, conversation := range conversations {
		for _, message := range conversation.Messages {
			entry := models.HistoryEntry{
				Role:           message.Role,
				Content:        message.Content,
				Timestamp:      message.Timestamp,
				ConversationID: conversation.ID,
			}
			if message.Role == models.RoleUser && conversation.SessionID != nil {
				entry.UserName = names[*conversation.SessionID]
			}
			entries = append(entries, entry)
		}
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Timestamp.Before(entries[j].Timestamp)
	})

	return entries
}

// resolveNames maps each conversation's originating session to its
// display name. Unknown sessions resolve to nil, not an error.
func (s *chatService) resolveNames(ctx context.Context, conversations []models.Conversation) map[string]*string {
	names := make(map[string]*string)
	for _, conversation := range conversations {
		if conversation.SessionID == nil {
			continue
		}
		sessionID := *conversation.SessionID
		if _, seen := names[sessionID]; seen {
			continue
		}

		session, err := s.sessionRepo.Get(ctx, sessionID)
		if err != nil {
			names[sessionID] = nil
			continue
		}
		names[sessionID] = session.UserName
	}
	return names
}

// ClearHistory empties every conversation of the project without
// deleting the conversation records.
func (s *chatService) ClearHistory(ctx context.Context, projectID string) error {
	conversations, err := s.conversationRepo.ByProject(ctx, projectID)
	if err != nil {
		return err
	}

	for _, conversation := range conversations {
		if err := s.conversationRepo.ClearMessages(ctx, conversation.ID); err != nil {
			return err
		}
	}

	s.logger.Info("project history cleared",
		"project_id", projectID,
		"conversations", len(conversations),
	)
	return nil
}

func (s *chatService) validateChat(req *services.ChatRequest) error {
	return validation.ValidateStruct(req,
		validation.Field(&req.SessionID, validation.Required),
		validation.Field(&req.ProjectID,
			validation.Required,
			validation.Length(1, config.MaxProjectIDLength),
		),
		validation.Field(&req.Message,
			validation.Required,
			validation.Length(1, config.MaxMessageLength),
		),
	)
}
