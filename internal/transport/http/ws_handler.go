package http

import (
	"log"
	"net/http"

	"github.com/gorilla/websocket"

	"trivia-quiz-service/internal/domain"
	"trivia-quiz-service/internal/quiz"
)

// WSHandler streams leaderboard snapshots to connected clients so they can
// update without polling. Every change notification triggers a re-query of
// the sink; the pushed payload is always a fresh List.
type WSHandler struct {
	service  *quiz.QuizService
	upgrader websocket.Upgrader
}

func NewWSHandler(service *quiz.QuizService) *WSHandler {
	return &WSHandler{
		service: service,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

type errorPayload struct {
	Message string `json:"message"`
}

// ServeLeaderboard upgrades the request and pushes the current leaderboard,
// then again after every result-set change, until the client disconnects.
func (h *WSHandler) ServeLeaderboard(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("ws upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	send := make(chan outboundMessage[any], 16)
	refresh := make(chan struct{}, 1)
	closeSignals := make(chan struct{})
	writerDone := make(chan struct{})
	refreshDone := make(chan struct{})

	go func() {
		defer close(writerDone)
		for msg := range send {
			if err := conn.WriteJSON(msg); err != nil {
				log.Printf("ws write error: %v", err)
				return
			}
		}
	}()

	push := func() {
		results, stats, err := h.service.Leaderboard(r.Context())
		if err != nil {
			select {
			case send <- outboundMessage[any]{Type: "error", Payload: errorPayload{Message: err.Error()}}:
			case <-closeSignals:
			}
			return
		}
		if results == nil {
			results = []domain.Result{}
		}
		select {
		case send <- outboundMessage[any]{Type: "leaderboard", Payload: leaderboardResponse{Results: results, Stats: stats}}:
		case <-closeSignals:
		}
	}

	go func() {
		defer close(refreshDone)
		for {
			select {
			case <-refresh:
				push()
			case <-closeSignals:
				return
			}
		}
	}()

	cancel, err := h.service.SubscribeChanges(r.Context(), func() {
		select {
		case refresh <- struct{}{}:
		default:
			// a refresh is already pending; coalesce
		}
	})
	if err != nil {
		log.Printf("ws subscribe failed: %v", err)
		cancel = func() {}
	}

	push()

	// Drain client frames until disconnect; inbound content is ignored, the
	// feed is one-way.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}

	cancel()
	close(closeSignals)
	<-refreshDone
	close(send)
	<-writerDone
}
