package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	conversationRepo "staybot/database/repository/conversation"
	"staybot/models"
	"staybot/services/booking"
	"staybot/services/extraction"
	"staybot/services/intelligence"
	"staybot/services/prompt"
	"staybot/utils"
)

// DefaultChatService drives the booking conversation. Each call is one turn:
// load or create the user's conversation, ask the model, act on its reply
// and persist transcript and state in a single save.
type DefaultChatService struct {
	Repo      conversationRepo.ConversationRepository
	LLM       intelligence.Provider
	Hotel     booking.HotelAPI
	Extractor FieldExtractor
	Locker    TurnLocker
	Logger    *zap.Logger
}

var _ ChatService = (*DefaultChatService)(nil)

// NewDefaultChatService wires the service with the default extractor and an
// in-process turn lock.
func NewDefaultChatService(
	repo conversationRepo.ConversationRepository,
	llm intelligence.Provider,
	hotel booking.HotelAPI,
	logger *zap.Logger,
) *DefaultChatService {
	return &DefaultChatService{
		Repo:      repo,
		LLM:       llm,
		Hotel:     hotel,
		Extractor: extraction.NewDefault(),
		Locker:    NewLocalTurnLocker(),
		Logger:    logger,
	}
}

// HandleMessage runs one turn and returns the reply text. On any error
// nothing from the turn is persisted.
func (s *DefaultChatService) HandleMessage(ctx context.Context, userID, message string) (string, error) {
	if strings.TrimSpace(userID) == "" || strings.TrimSpace(message) == "" {
		return "", &utils.ClientInputError{Message: "Missing required fields"}
	}

	log := s.Logger.With(zap.String("userId", userID))

	unlock, err := s.Locker.Lock(ctx, userID)
	if err != nil {
		return "", fmt.Errorf("lock turn: %w", err)
	}
	defer unlock()

	conv, err := s.loadOrCreate(ctx, userID)
	if err != nil {
		log.Error("failed to load conversation", zap.Error(err))
		return "", err
	}

	conv.Messages = append(conv.Messages, models.Message{Role: models.RoleUser, Content: message})

	reply, err := s.LLM.Complete(ctx, intelligence.CompletionRequest{
		System:    prompt.Build(conv.BookingState),
		Messages:  conv.Messages,
		Functions: intelligence.BookingFunctions(),
	})
	if err != nil {
		log.Error("completion failed", zap.Error(err))
		return "", err
	}

	var out models.Message
	if reply.FunctionCall != nil {
		log = log.With(zap.String("function", reply.FunctionCall.Name))
		out, err = s.dispatch(ctx, conv, reply.FunctionCall)
		if err != nil {
			log.Error("function call failed", zap.Error(err))
			return "", err
		}
	} else {
		s.Extractor.Apply(&conv.BookingState, reply.Content)
		conv.BookingState.UpdateStage()
		out = models.Message{Role: models.RoleAssistant, Content: reply.Content}
	}

	conv.Messages = append(conv.Messages, out)
	if err := s.Repo.Save(ctx, conv); err != nil {
		log.Error("failed to save conversation", zap.Error(err))
		return "", fmt.Errorf("save conversation: %w", err)
	}

	log.Info("turn completed",
		zap.String("stage", string(conv.BookingState.Stage)),
		zap.Int("messages", len(conv.Messages)),
		zap.Int64("version", conv.Version),
	)
	return out.Content, nil
}

// loadOrCreate finds the user's conversation or creates a zeroed one.
func (s *DefaultChatService) loadOrCreate(ctx context.Context, userID string) (*models.Conversation, error) {
	conv, err := s.Repo.FindByUserID(ctx, userID)
	if err == nil {
		return conv, nil
	}
	if !errors.Is(err, conversationRepo.ErrNotFound) {
		return nil, fmt.Errorf("find conversation: %w", err)
	}

	conv, err = s.Repo.Create(ctx, userID)
	if errors.Is(err, utils.ErrConflict) {
		// Another instance created it first.
		conv, err = s.Repo.FindByUserID(ctx, userID)
		if err != nil {
			return nil, fmt.Errorf("find conversation after create race: %w", err)
		}
		return conv, nil
	}
	if err != nil {
		return nil, fmt.Errorf("create conversation: %w", err)
	}
	s.Logger.Info("conversation created", zap.String("userId", userID))
	return conv, nil
}

// dispatch runs a model function call against the hotel services and wraps
// the payload as a function-result message. A successful booking resets the
// booking state.
func (s *DefaultChatService) dispatch(ctx context.Context, conv *models.Conversation, call *intelligence.FunctionCall) (models.Message, error) {
	switch call.Name {
	case intelligence.FuncGetRoomOptions:
		payload, err := s.Hotel.GetRoomOptions(ctx)
		if err != nil {
			return models.Message{}, fmt.Errorf("get room options: %w", err)
		}
		return models.Message{Role: models.RoleFunction, Name: call.Name, Content: string(payload)}, nil

	case intelligence.FuncBookRoom:
		payload, err := s.Hotel.BookRoom(ctx, call.Arguments)
		if err != nil {
			return models.Message{}, fmt.Errorf("book room: %w", err)
		}
		conv.BookingState.Reset()
		return models.Message{Role: models.RoleFunction, Name: call.Name, Content: string(payload)}, nil

	default:
		return models.Message{}, fmt.Errorf("model called unknown function %q", call.Name)
	}
}
