// Package http exposes the webhook endpoint the messaging platform delivers
// user events to, plus health probes.
package http

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// maxBodyBytes bounds webhook payloads; the platform sends small JSON bodies.
const maxBodyBytes = 1 << 20

const signatureHeader = "X-Signature"

// Bot handles one user event and returns the ordered replies to send back.
type Bot interface {
	Handle(ctx context.Context, userID, text string) []string
	HandleImage(ctx context.Context, userID, imageURL string) []string
}

// Replier sends reply messages back through the platform's reply API.
type Replier interface {
	Reply(ctx context.Context, replyToken string, messages []string) error
}

type Server struct {
	http.Server
	bot           Bot
	replier       Replier
	channelSecret []byte
}

// Webhook payload shapes, matching the platform's delivery format.
type webhookPayload struct {
	Events []webhookEvent `json:"events"`
}

type webhookEvent struct {
	ReplyToken string `json:"replyToken"`
	Source     struct {
		UserID string `json:"userId"`
	} `json:"source"`
	Message struct {
		Type     string `json:"type"`
		Text     string `json:"text"`
		ImageURL string `json:"imageUrl"`
	} `json:"message"`
}

// NewServer configures routes and returns a ready-to-run server.
func NewServer(addr, channelSecret string, bot Bot, replier Replier) *Server {
	s := &Server{
		Server: http.Server{
			Addr:         addr,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		bot:           bot,
		replier:       replier,
		channelSecret: []byte(channelSecret),
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", handleHealth)
	r.Get("/readyz", handleReady)
	r.Post("/callback", s.handleCallback)

	s.Handler = r
	return s
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func handleReady(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

func (s *Server) handleCallback(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		slog.ErrorContext(ctx, "Failed reading webhook body", "error", err)
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	if !s.verifySignature(body, r.Header.Get(signatureHeader)) {
		slog.WarnContext(ctx, "Webhook signature mismatch", "remote", r.RemoteAddr)
		http.Error(w, "invalid signature", http.StatusBadRequest)
		return
	}

	var payload webhookPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		slog.ErrorContext(ctx, "Malformed webhook payload", "error", err)
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	for _, ev := range payload.Events {
		s.dispatch(ctx, ev)
	}

	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

// verifySignature checks the HMAC-SHA256 base64 digest the platform computes
// over the raw request body with the channel secret.
func (s *Server) verifySignature(body []byte, signature string) bool {
	if len(s.channelSecret) == 0 || signature == "" {
		return false
	}
	mac := hmac.New(sha256.New, s.channelSecret)
	mac.Write(body)
	expected := base64.StdEncoding.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}

func (s *Server) dispatch(ctx context.Context, ev webhookEvent) {
	if ev.Source.UserID == "" {
		slog.WarnContext(ctx, "Webhook event without user id", "type", ev.Message.Type)
		return
	}

	var replies []string
	switch ev.Message.Type {
	case "text":
		replies = s.bot.Handle(ctx, ev.Source.UserID, ev.Message.Text)
	case "image":
		replies = s.bot.HandleImage(ctx, ev.Source.UserID, ev.Message.ImageURL)
	default:
		slog.InfoContext(ctx, "Ignoring unsupported message type",
			"type", ev.Message.Type, "user_id", ev.Source.UserID)
		return
	}
	if len(replies) == 0 || s.replier == nil {
		return
	}

	if err := s.replier.Reply(ctx, ev.ReplyToken, replies); err != nil {
		slog.ErrorContext(ctx, "Failed sending replies",
			"error", err, "user_id", ev.Source.UserID, "count", len(replies))
	}
}
