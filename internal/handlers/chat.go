package handlers

import (
	"errors"
	"html/template"
	"net/http"
	"time"

	"microblog-server/internal/middleware"
	"microblog-server/internal/models"
	"microblog-server/internal/repository"
	"microblog-server/internal/services"

	"github.com/go-chi/chi/v5"
)

// ChatHandler handles the chat pages and conversation fragments
type ChatHandler struct {
	messages *services.MessageService
	media    *services.MediaService
}

// NewChatHandler creates a new chat handler
func NewChatHandler(messages *services.MessageService, media *services.MediaService) *ChatHandler {
	return &ChatHandler{
		messages: messages,
		media:    media,
	}
}

// messageView is a message prepared for rendering
type messageView struct {
	Body           template.HTML
	SenderUsername string
	Mine           bool
	CreatedAt      time.Time
}

// conversationData feeds the chat fragment template
type conversationData struct {
	Recipient string
	Messages  []messageView
}

func messageViews(messages []*models.Message, current *models.User) []messageView {
	views := make([]messageView, 0, len(messages))
	for _, m := range messages {
		views = append(views, messageView{
			Body:           template.HTML(m.Body),
			SenderUsername: m.SenderUsername,
			Mine:           current != nil && current.ID == m.SenderID,
			CreatedAt:      m.CreatedAt,
		})
	}
	return views
}

// ChatPage handles GET /chat/{username}: the page shell. The message list
// starts empty; the client fetches and polls the fragment endpoint.
func (h *ChatHandler) ChatPage(w http.ResponseWriter, r *http.Request) {
	current := middleware.CurrentUser(r.Context())
	username := chi.URLParam(r, "username")

	recipient, _, err := h.messages.Conversation(r.Context(), current.ID, username)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		NotFound(w, r)
		return
	case errors.Is(err, services.ErrSelfAction):
		setFlash(w, "warning", "You cannot chat with yourself.")
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	case err != nil:
		serverError(w, r, err, "Failed to open chat")
		return
	}

	data := conversationData{Recipient: recipient.Username}
	renderPage(w, http.StatusOK, "chat", newPage(w, r, "Chat with "+recipient.Username, data))
}

// SendMessage handles POST /chat/{username}: persists the message and
// answers with the full updated conversation fragment.
func (h *ChatHandler) SendMessage(w http.ResponseWriter, r *http.Request) {
	current := middleware.CurrentUser(r.Context())
	username := chi.URLParam(r, "username")

	_, err := h.messages.Send(r.Context(), current.ID, username, r.FormValue("message"))
	switch {
	case errors.Is(err, repository.ErrNotFound):
		NotFound(w, r)
		return
	case errors.Is(err, services.ErrSelfAction):
		setFlash(w, "warning", "You cannot chat with yourself.")
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	case errors.Is(err, services.ErrEmptyBody):
		http.Error(w, "message must not be empty", http.StatusBadRequest)
		return
	case err != nil:
		serverError(w, r, err, "Failed to send message")
		return
	}

	h.Fragment(w, r)
}

// Fragment handles GET /chat/{username}/messages: the conversation
// fragment for polling and post-send refresh.
func (h *ChatHandler) Fragment(w http.ResponseWriter, r *http.Request) {
	current := middleware.CurrentUser(r.Context())
	username := chi.URLParam(r, "username")

	recipient, messages, err := h.messages.Conversation(r.Context(), current.ID, username)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		NotFound(w, r)
		return
	case errors.Is(err, services.ErrSelfAction):
		http.Error(w, "cannot chat with yourself", http.StatusForbidden)
		return
	case err != nil:
		serverError(w, r, err, "Failed to load conversation")
		return
	}

	renderChatFragment(w, conversationData{
		Recipient: recipient.Username,
		Messages:  messageViews(messages, current),
	})
}

// partnerView is a conversation partner prepared for rendering
type partnerView struct {
	Username string
	ImageURL string
}

// Conversations handles GET /messages: the list of users the current
// user has exchanged messages with.
func (h *ChatHandler) Conversations(w http.ResponseWriter, r *http.Request) {
	current := middleware.CurrentUser(r.Context())

	partners, err := h.messages.Partners(r.Context(), current.ID)
	if err != nil {
		serverError(w, r, err, "Failed to list conversations")
		return
	}

	views := make([]partnerView, 0, len(partners))
	for _, p := range partners {
		views = append(views, partnerView{
			Username: p.Username,
			ImageURL: h.media.URL(services.ImageProfile, p.ImageFile),
		})
	}

	renderPage(w, http.StatusOK, "messages", newPage(w, r, "Messages", views))
}
