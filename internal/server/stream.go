package server

import (
	"context"
	"net/http"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/gokatarajesh/dsa-vault/internal/question"
	ws "github.com/gokatarajesh/dsa-vault/pkg/http/ws"
)

// SnapshotPayload is the body of a ws.TypeSnapshot message.
type SnapshotPayload struct {
	Op         question.Op         `json:"op,omitempty"`
	ID         string              `json:"id,omitempty"`
	Questions  []question.Question `json:"questions"`
	Topics     []string            `json:"topics"`
	Statistics question.Statistics `json:"statistics"`
}

func newSnapshot(op question.Op, id string, questions []question.Question) SnapshotPayload {
	return SnapshotPayload{
		Op:         op,
		ID:         id,
		Questions:  questions,
		Topics:     question.DistinctTopics(questions),
		Statistics: question.Stats(questions),
	}
}

// StreamHandler pushes the collection to WebSocket clients on connect and
// after every mutation.
type StreamHandler struct {
	repo   *question.Repository
	hub    *ws.Hub
	logger zerolog.Logger

	// mu orders a new client's initial snapshot against broadcasts, so no
	// client is left on a snapshot older than the last one queued to it.
	mu sync.Mutex
}

func NewStreamHandler(repo *question.Repository, hub *ws.Hub, logger zerolog.Logger) *StreamHandler {
	return &StreamHandler{
		repo:   repo,
		hub:    hub,
		logger: logger.With().Str("component", "question_stream").Logger(),
	}
}

// Broadcast is a question.Repository subscriber.
func (s *StreamHandler) Broadcast(ev question.Event) {
	msg, err := ws.NewMessage(ws.TypeSnapshot, newSnapshot(ev.Op, ev.ID, ev.Snapshot))
	if err != nil {
		s.logger.Error().Err(err).Msg("encode snapshot failed")
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	_ = s.hub.Broadcast(msg)
}

// HandleWebSocket handles GET /ws/questions.
func (s *StreamHandler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := WSUpgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}

	client := ws.NewConnection(conn, s.logger)
	id := s.join(r.Context(), client)
	go client.WritePump()

	client.ReadPump(func(msg ws.Message) error {
		if msg.Type != ws.TypePing {
			reply, err := ws.NewMessage(ws.TypeError, ws.ErrorPayload{Code: "unknown_message_type", Message: msg.Type})
			if err != nil {
				return err
			}
			return client.Send(reply)
		}
		return client.Send(ws.Message{Type: ws.TypePong, RequestID: msg.RequestID})
	})
	s.hub.Unregister(id)
}

// join registers client and queues the current collection as its first
// message. Broadcasts wait until both are done.
func (s *StreamHandler) join(ctx context.Context, client *ws.Connection) uuid.UUID {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.hub.Register(client)
	msg, err := ws.NewMessage(ws.TypeSnapshot, newSnapshot("", "", s.repo.List(ctx)))
	if err == nil {
		err = client.Send(msg)
	}
	if err != nil {
		s.logger.Warn().Err(err).Msg("initial snapshot failed")
	}
	return id
}
