package widget

import (
	"embed"
	"html/template"
	"net/http"
	"strings"

	"partselect-chat/internal/conversation"
	"partselect-chat/internal/domain"
	"partselect-chat/internal/render"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	jsoniter "github.com/json-iterator/go"
	"github.com/sirupsen/logrus"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

//go:embed templates/chat.html
var templateFS embed.FS

var chatPage = template.Must(template.ParseFS(templateFS, "templates/chat.html"))

// cookieName holds the visitor's conversation id.
const cookieName = "conversation_id"

// Handler is the HTTP surface of the chat widget.
type Handler struct {
	registry *conversation.Registry
	renderer *render.HTMLRenderer
	logger   logrus.FieldLogger
}

// NewHandler creates a new handler.
func NewHandler(registry *conversation.Registry, renderer *render.HTMLRenderer, logger logrus.FieldLogger) *Handler {
	return &Handler{
		registry: registry,
		renderer: renderer,
		logger:   logger,
	}
}

// RegisterRoutes attaches the widget endpoints to the router.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.conversationMiddleware)

		r.Get("/", h.handleIndex)
		r.Post("/send", h.handleSend)
		r.Post("/suggestion", h.handleSuggestion)
		r.Get("/api/conversation", h.handleGetConversation)
	})

	r.Post("/reset", h.handleReset)
}

// --- DTOs ---

type messageView struct {
	Role string
	HTML template.HTML
}

type pageData struct {
	Messages    []messageView
	Suggestions []string
	Draft       string
}

type conversationResponse struct {
	ID    string        `json:"id"`
	Turns []domain.Turn `json:"turns"`
	Draft string        `json:"draft"`
}

// conversationMiddleware attaches the visitor's conversation when the cookie names one this
// process knows. Visitors without one are served the greeting until they send something.
func (h *Handler) conversationMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if conv, ok := h.lookup(r); ok {
			r = setConversation(r, conv)
		}
		next.ServeHTTP(w, r)
	})
}

// ensureConversation returns the visitor's conversation, starting one and setting the cookie
// if there is none yet.
func (h *Handler) ensureConversation(w http.ResponseWriter, r *http.Request) conversation.Service {
	if conv, ok := getConversation(r.Context()); ok {
		return conv
	}

	conv := h.registry.Create()
	http.SetCookie(w, &http.Cookie{
		Name:     cookieName,
		Value:    conv.ID().String(),
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	h.logger.WithField("conversation_id", conv.ID().String()).Info("started conversation")
	return conv
}

func (h *Handler) lookup(r *http.Request) (conversation.Service, bool) {
	cookie, err := r.Cookie(cookieName)
	if err != nil {
		return nil, false
	}
	id, err := uuid.Parse(cookie.Value)
	if err != nil {
		return nil, false
	}
	return h.registry.Get(id)
}

// --- Handlers ---

// handleIndex renders the conversation, the suggested questions and the input.
func (h *Handler) handleIndex(w http.ResponseWriter, r *http.Request) {
	turns, draft := []domain.Turn{domain.Greeting()}, ""
	if conv, ok := getConversation(r.Context()); ok {
		turns, draft = conv.Turns(), conv.Draft()
	}

	data := pageData{
		Messages:    make([]messageView, 0, len(turns)),
		Suggestions: domain.SuggestedQuestions,
		Draft:       draft,
	}
	for _, turn := range turns {
		data.Messages = append(data.Messages, messageView{
			Role: turn.Role,
			HTML: h.renderer.Render(turn.Content),
		})
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := chatPage.Execute(w, data); err != nil {
		h.logger.WithError(err).Error("could not render chat page")
	}
}

// handleSend submits the typed message.
func (h *Handler) handleSend(w http.ResponseWriter, r *http.Request) {
	message := r.PostFormValue("message")
	if _, ok := getConversation(r.Context()); !ok && strings.TrimSpace(message) == "" {
		http.Redirect(w, r, "/#bottom", http.StatusSeeOther)
		return
	}

	conv := h.ensureConversation(w, r)
	conv.SetDraft(message)
	if _, err := conv.Send(r.Context(), message); err != nil {
		h.logger.WithField("conversation_id", conv.ID().String()).WithError(err).Warn("send abandoned")
	}

	http.Redirect(w, r, "/#bottom", http.StatusSeeOther)
}

// handleSuggestion sends one of the canned questions.
func (h *Handler) handleSuggestion(w http.ResponseWriter, r *http.Request) {
	question := r.PostFormValue("question")
	if !domain.IsSuggestedQuestion(question) {
		writeError(w, http.StatusBadRequest, "Unknown suggested question")
		return
	}

	conv := h.ensureConversation(w, r)

	if _, err := conv.SelectSuggestion(r.Context(), question); err != nil {
		h.logger.WithField("conversation_id", conv.ID().String()).WithError(err).Warn("suggestion abandoned")
	}

	http.Redirect(w, r, "/#bottom", http.StatusSeeOther)
}

// handleGetConversation returns the conversation as JSON. Visitors without one get the
// greeting and an empty id.
func (h *Handler) handleGetConversation(w http.ResponseWriter, r *http.Request) {
	conv, ok := getConversation(r.Context())
	if !ok {
		writeJSON(w, http.StatusOK, conversationResponse{Turns: []domain.Turn{domain.Greeting()}})
		return
	}

	writeJSON(w, http.StatusOK, conversationResponse{
		ID:    conv.ID().String(),
		Turns: conv.Turns(),
		Draft: conv.Draft(),
	})
}

// handleReset drops the visitor's conversation. The next page load starts from the greeting.
func (h *Handler) handleReset(w http.ResponseWriter, r *http.Request) {
	if conv, ok := h.lookup(r); ok {
		h.registry.Remove(conv.ID())
	}

	http.SetCookie(w, &http.Cookie{
		Name:   cookieName,
		Value:  "",
		Path:   "/",
		MaxAge: -1,
	})
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// writeJSON is a helper function for sending json responses.
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

// writeError is a helper for sending a standardized json error.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
