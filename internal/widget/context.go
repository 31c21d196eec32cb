package widget

import (
	"context"
	"net/http"

	"partselect-chat/internal/conversation"
)

// contextKey is a private type to avoid key collisions in the context.
type contextKey string

const conversationKey = contextKey("conversation")

// setConversation returns a new request carrying the visitor's conversation.
func setConversation(r *http.Request, conv conversation.Service) *http.Request {
	ctx := context.WithValue(r.Context(), conversationKey, conv)
	return r.WithContext(ctx)
}

// getConversation retrieves the conversation the middleware resolved, if the visitor has one.
func getConversation(ctx context.Context) (conversation.Service, bool) {
	conv, ok := ctx.Value(conversationKey).(conversation.Service)
	return conv, ok
}
