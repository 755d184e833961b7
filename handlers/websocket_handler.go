package handlers

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/Dosada05/swiss-tournament/brackets"
	"github.com/Dosada05/swiss-tournament/services"
)

const clientSendBuffer = 256

type WebSocketHandler struct {
	hub               *brackets.Hub
	tournamentService services.TournamentService
	upgrader          websocket.Upgrader
}

// NewWebSocketHandler разрешает подключения только с перечисленных Origin.
// "*" разрешает любые.
func NewWebSocketHandler(hub *brackets.Hub, ts services.TournamentService, allowedOrigins []string) *WebSocketHandler {
	allowAll := false
	allowed := make(map[string]struct{}, len(allowedOrigins))
	for _, o := range allowedOrigins {
		if o == "*" {
			allowAll = true
		}
		allowed[o] = struct{}{}
	}

	return &WebSocketHandler{
		hub:               hub,
		tournamentService: ts,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				if allowAll || origin == "" {
					return true
				}
				_, ok := allowed[origin]
				return ok
			},
		},
	}
}

// ServeWs обрабатывает GET /ws?room=standings|pairings
func (h *WebSocketHandler) ServeWs(w http.ResponseWriter, r *http.Request) {
	room := r.URL.Query().Get("room")
	if room == "" {
		room = brackets.RoomStandings
	}
	if room != brackets.RoomStandings && room != brackets.RoomPairings {
		badRequestResponse(w, r, fmt.Errorf("unknown room %q", room))
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade сам отправляет HTTP ошибку клиенту.
		slog.Warn("failed to upgrade websocket connection", slog.Any("error", err))
		return
	}

	client := &brackets.Client{
		Hub:  h.hub,
		Conn: conn,
		Send: make(chan []byte, clientSendBuffer),
		Room: room,
	}

	// Клиент регистрируется до чтения снимка, поэтому ни одно событие после
	// этого момента не теряется.
	if !h.hub.RegisterClient(client) {
		closeConn(conn, websocket.CloseGoingAway, "server is shutting down")
		return
	}

	initial, err := h.initialMessage(r, room)
	if err != nil {
		slog.Error("failed to build initial websocket message", slog.String("room", room), slog.Any("error", err))
		h.hub.UnregisterClient(client)
		closeConn(conn, websocket.CloseInternalServerErr, "standings unavailable")
		return
	}
	client.Enqueue(initial)

	go client.WritePump()
	go client.ReadPump()
}

func closeConn(conn *websocket.Conn, code int, reason string) {
	msg := websocket.FormatCloseMessage(code, reason)
	_ = conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second))
	conn.Close()
}

func (h *WebSocketHandler) initialMessage(r *http.Request, room string) ([]byte, error) {
	msg := brackets.WebSocketMessage{
		ID:     uuid.NewString(),
		RoomID: room,
		SentAt: time.Now().UTC(),
	}

	switch room {
	case brackets.RoomPairings:
		round, err := h.tournamentService.GeneratePairings(r.Context())
		if err != nil {
			return nil, err
		}
		msg.Type, msg.Payload = brackets.EventPairingsUpdated, round
	default:
		standings, err := h.tournamentService.ComputeStandings(r.Context())
		if err != nil {
			return nil, err
		}
		msg.Type, msg.Payload = brackets.EventStandingsUpdated, standings
	}

	return json.Marshal(msg)
}
