package domain

import (
	"errors"
	"fmt"
)

// Roles a turn can carry.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	// RoleSystem only ever appears in prompts the backend builds for the model.
	RoleSystem = "system"
)

const (
	greetingContent = "Hi, how can I help you today?"
	fallbackContent = "I'm sorry, there was an error processing your request. Please try again later."
)

// SuggestedQuestions are the canned one-click questions offered by the widgets.
var SuggestedQuestions = []string{
	"What are common refrigerator problems?",
	"How do I replace a dishwasher pump?",
	"What's the lifespan of a washing machine?",
}

// Wire headers shared by the exchange client and the assistant service.
const (
	HeaderRequestID      = "X-Request-ID"
	HeaderConversationID = "X-Conversation-ID"
)

// ErrInvalidTurn is returned by Validate for turns that break the reply schema.
var ErrInvalidTurn = errors.New("invalid turn")

// Turn is one message in a conversation. Content is markdown.
type Turn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Greeting is the assistant turn every conversation starts with.
func Greeting() Turn {
	return Turn{Role: RoleAssistant, Content: greetingContent}
}

// Fallback is substituted for the assistant reply whenever an exchange fails.
func Fallback() Turn {
	return Turn{Role: RoleAssistant, Content: fallbackContent}
}

// IsSuggestedQuestion reports whether q is one of the canned questions.
func IsSuggestedQuestion(q string) bool {
	for _, s := range SuggestedQuestions {
		if s == q {
			return true
		}
	}
	return false
}

// Validate checks the turn has a conversation role and some content.
func (t Turn) Validate() error {
	switch t.Role {
	case RoleUser, RoleAssistant:
		if t.Content == "" {
			return fmt.Errorf("%w: missing content", ErrInvalidTurn)
		}
		return nil
	case "":
		return fmt.Errorf("%w: missing role", ErrInvalidTurn)
	default:
		return fmt.Errorf("%w: unknown role %q", ErrInvalidTurn, t.Role)
	}
}
