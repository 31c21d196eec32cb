package conversation

import (
	"context"
	"errors"
	"strings"
	"sync"

	"partselect-chat/internal/domain"

	"github.com/google/uuid"
)

// ErrClosed is returned by Send once the conversation has been closed.
var ErrClosed = errors.New("conversation closed")

// Service holds one conversation and drives its send workflow.
type Service interface {
	// ID identifies the conversation to the assistant service.
	ID() uuid.UUID

	// Send appends a user turn for text followed by the assistant's reply, and returns the reply.
	// Blank text is ignored: nothing is appended and both results are nil.
	Send(ctx context.Context, text string) (*domain.Turn, error)

	// SelectSuggestion puts a canned question in the draft and sends it.
	SelectSuggestion(ctx context.Context, text string) (*domain.Turn, error)

	// Turns returns a copy of the conversation, oldest first.
	Turns() []domain.Turn

	Draft() string
	SetDraft(text string)

	// Close stops the send queue. Pending sends return ErrClosed.
	Close()
}

// sendJob is one queued send.
type sendJob struct {
	ctx  context.Context
	text string
	done chan sendResult
}

type sendResult struct {
	reply *domain.Turn
	err   error
}

// service is the concrete implementation of the Service interface.
type service struct {
	id     uuid.UUID
	client MessageClient

	mu    sync.RWMutex
	turns []domain.Turn
	draft string

	jobs      chan *sendJob
	quit      chan struct{}
	closeOnce sync.Once
}

// NewService starts a conversation seeded with the greeting.
func NewService(client MessageClient) Service {
	s := &service{
		id:     uuid.New(),
		client: client,
		turns:  []domain.Turn{domain.Greeting()},
		jobs:   make(chan *sendJob),
		quit:   make(chan struct{}),
	}
	go s.run()
	return s
}

func (s *service) ID() uuid.UUID {
	return s.id
}

// Send implements the Service interface.
// Sends are handled one at a time in the order they were queued, so each user turn is
// immediately followed by its own reply.
func (s *service) Send(ctx context.Context, text string) (*domain.Turn, error) {
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}

	s.SetDraft("")

	job := &sendJob{ctx: ctx, text: text, done: make(chan sendResult, 1)}
	select {
	case s.jobs <- job:
	case <-s.quit:
		return nil, ErrClosed
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	select {
	case res := <-job.done:
		return res.reply, res.err
	case <-s.quit:
		return nil, ErrClosed
	}
}

// SelectSuggestion implements the Service interface.
func (s *service) SelectSuggestion(ctx context.Context, text string) (*domain.Turn, error) {
	s.SetDraft(text)
	return s.Send(ctx, text)
}

func (s *service) Turns() []domain.Turn {
	s.mu.RLock()
	defer s.mu.RUnlock()

	turns := make([]domain.Turn, len(s.turns))
	copy(turns, s.turns)
	return turns
}

func (s *service) Draft() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.draft
}

func (s *service) SetDraft(text string) {
	s.mu.Lock()
	s.draft = text
	s.mu.Unlock()
}

func (s *service) Close() {
	s.closeOnce.Do(func() {
		close(s.quit)
	})
}

// run is the conversation's single send worker.
func (s *service) run() {
	for {
		select {
		case <-s.quit:
			return
		case job := <-s.jobs:
			job.done <- s.process(job)
		}
	}
}

func (s *service) process(job *sendJob) sendResult {
	// A caller that gave up while queued gets nothing appended.
	if err := job.ctx.Err(); err != nil {
		return sendResult{err: err}
	}

	s.appendTurn(domain.Turn{Role: domain.RoleUser, Content: job.text})

	reply := s.client.GetMessage(job.ctx, s.id, job.text)
	s.appendTurn(reply)

	return sendResult{reply: &reply}
}

// appendTurn is the only way turns are added.
func (s *service) appendTurn(turn domain.Turn) {
	s.mu.Lock()
	s.turns = append(s.turns, turn)
	s.mu.Unlock()
}
