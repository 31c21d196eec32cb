package assistant

//go:generate mockgen -destination=./service_mock_test.go -package=assistant -source=service.go Service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"partselect-chat/internal/domain"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"
)

var (
	// ErrEmptyQuery is returned when the query has no text.
	ErrEmptyQuery = errors.New("query is empty")
	// ErrInvalidDocument is returned for documents without a part number or content.
	ErrInvalidDocument = errors.New("document needs a part number and content")
)

// Service defines the business logic for the assistant.
type Service interface {
	// GetMessage answers the query in the context of the conversation's memory.
	GetMessage(ctx context.Context, conversationID, query string) (*domain.Turn, error)
	// ClearMemory forgets everything the conversation remembered.
	ClearMemory(ctx context.Context, conversationID string)
	// AddDocument stores product text for context retrieval.
	AddDocument(ctx context.Context, doc Document) error
}

// service is the concrete implementation of the Service interface.
type service struct {
	llm       LLMClient
	retriever ContextRetriever
	cache     ReplyCache
	memory    *memory
	group     singleflight.Group
	logger    logrus.FieldLogger
}

// NewService is the constructor for the assistant.
func NewService(llm LLMClient, retriever ContextRetriever, cache ReplyCache, logger logrus.FieldLogger) Service {
	return &service{
		llm:       llm,
		retriever: retriever,
		cache:     cache,
		memory:    newMemory(memoryCap),
		logger:    logger,
	}
}

// GetMessage implements the Service interface.
func (s *service) GetMessage(ctx context.Context, conversationID, query string) (*domain.Turn, error) {
	if strings.TrimSpace(query) == "" {
		return nil, ErrEmptyQuery
	}
	if conversationID == "" {
		conversationID = DefaultConversation
	}

	docs, err := s.retriever.Retrieve(ctx, query, contextDocuments)
	if err != nil {
		return nil, fmt.Errorf("could not retrieve context: %w", err)
	}

	prompt := Prompt{
		System:  SystemPrompt,
		History: s.memory.Recent(conversationID, historyWindow),
		User:    userPrompt(strings.Join(docs, " "), query),
	}

	reply, err := s.shared(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("could not generate reply: %w", err)
	}

	s.memory.Append(conversationID,
		domain.Turn{Role: domain.RoleUser, Content: query},
		domain.Turn{Role: domain.RoleAssistant, Content: reply},
	)

	return &domain.Turn{Role: domain.RoleAssistant, Content: reply}, nil
}

// shared runs identical prompts in flight as one model call. The call is detached from any
// single caller, so one caller going away does not fail the others; each caller still stops
// waiting when its own context ends.
func (s *service) shared(ctx context.Context, prompt Prompt) (string, error) {
	key := cacheKey(prompt)
	ch := s.group.DoChan(key, func() (interface{}, error) {
		callCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), completionTimeout)
		defer cancel()
		return s.complete(callCtx, key, prompt)
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return "", res.Err
		}
		return res.Val.(string), nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// complete answers from the cache, falling back to the model. Cache failures are only logged.
func (s *service) complete(ctx context.Context, key string, prompt Prompt) (string, error) {
	log := s.logger.WithField("cache_key", key)

	cached, ok, err := s.cache.Get(ctx, key)
	if err != nil {
		log.WithError(err).Warn("reply cache read failed")
	}
	if ok {
		log.Debug("reply cache hit")
		return cached, nil
	}

	reply, err := s.llm.Complete(ctx, prompt)
	if err != nil {
		return "", err
	}

	if err := s.cache.Set(ctx, key, reply); err != nil {
		log.WithError(err).Warn("reply cache write failed")
	}
	return reply, nil
}

// ClearMemory implements the Service interface.
func (s *service) ClearMemory(ctx context.Context, conversationID string) {
	if conversationID == "" {
		conversationID = DefaultConversation
	}
	s.memory.Clear(conversationID)
}

// AddDocument implements the Service interface.
func (s *service) AddDocument(ctx context.Context, doc Document) error {
	if doc.PartNumber == "" || strings.TrimSpace(doc.Content) == "" {
		return ErrInvalidDocument
	}
	if err := s.retriever.AddDocument(ctx, doc); err != nil {
		return fmt.Errorf("could not add document: %w", err)
	}
	return nil
}
