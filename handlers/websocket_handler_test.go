package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/Dosada05/swiss-tournament/brackets"
	"github.com/Dosada05/swiss-tournament/models"
	"github.com/Dosada05/swiss-tournament/repositories"
	"github.com/Dosada05/swiss-tournament/services"
)

func newWebSocketTestServer(t *testing.T, origins []string) (*httptest.Server, *brackets.Hub, services.TournamentService) {
	t.Helper()
	hub := brackets.NewHub(nil)
	go hub.Run()
	t.Cleanup(hub.Stop)

	store := repositories.NewMemoryStore()
	ts := services.NewTournamentService(store.Players(), store.Matches(), store, brackets.NewSwissGenerator(models.ByePolicyDrop), hub, nil)

	srv := httptest.NewServer(http.HandlerFunc(NewWebSocketHandler(hub, ts, origins).ServeWs))
	t.Cleanup(srv.Close)
	return srv, hub, ts
}

func wsURL(srv *httptest.Server, query string) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws" + query
}

func readMessage(t *testing.T, conn *websocket.Conn) brackets.WebSocketMessage {
	t.Helper()
	if err := conn.SetReadDeadline(time.Now().Add(2 * time.Second)); err != nil {
		t.Fatalf("SetReadDeadline: %v", err)
	}
	var msg brackets.WebSocketMessage
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("ReadJSON: %v", err)
	}
	return msg
}

func TestServeWsSendsInitialAndUpdates(t *testing.T) {
	srv, hub, ts := newWebSocketTestServer(t, []string{"*"})
	if _, err := ts.RegisterPlayer(context.Background(), "A"); err != nil {
		t.Fatalf("RegisterPlayer: %v", err)
	}

	conn, _, err := websocket.DefaultDialer.Dial(wsURL(srv, "?room=standings"), nil)
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	defer conn.Close()

	initial := readMessage(t, conn)
	if initial.Type != brackets.EventStandingsUpdated || initial.RoomID != brackets.RoomStandings {
		t.Fatalf("initial message = %+v", initial)
	}
	if rows, ok := initial.Payload.([]interface{}); !ok || len(rows) != 1 {
		t.Fatalf("initial payload = %#v", initial.Payload)
	}

	// Клиент регистрируется в хабе асинхронно.
	deadline := time.Now().Add(2 * time.Second)
	for hub.ClientCount(brackets.RoomStandings) != 1 {
		if time.Now().After(deadline) {
			t.Fatal("client was not registered")
		}
		time.Sleep(5 * time.Millisecond)
	}

	if _, err := ts.RegisterPlayer(context.Background(), "B"); err != nil {
		t.Fatalf("RegisterPlayer: %v", err)
	}
	update := readMessage(t, conn)
	if update.Type != brackets.EventStandingsUpdated {
		t.Fatalf("update type = %q", update.Type)
	}
}

func TestServeWsPairingsRoom(t *testing.T) {
	srv, _, ts := newWebSocketTestServer(t, []string{"*"})
	for _, name := range []string{"A", "B", "C"} {
		if _, err := ts.RegisterPlayer(context.Background(), name); err != nil {
			t.Fatalf("RegisterPlayer: %v", err)
		}
	}

	conn, _, err := websocket.DefaultDialer.Dial(wsURL(srv, "?room=pairings"), nil)
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	defer conn.Close()

	msg := readMessage(t, conn)
	if msg.Type != brackets.EventPairingsUpdated {
		t.Fatalf("type = %q", msg.Type)
	}
	raw, _ := json.Marshal(msg.Payload)
	var round models.RoundPairings
	if err := json.Unmarshal(raw, &round); err != nil {
		t.Fatalf("payload: %v", err)
	}
	if len(round.Pairs) != 1 || round.Unpaired == nil || round.Unpaired.ID != 3 {
		t.Fatalf("round = %+v", round)
	}
}

func TestServeWsRejects(t *testing.T) {
	srv, _, _ := newWebSocketTestServer(t, []string{"https://allowed.example"})

	resp, err := http.Get(srv.URL + "/ws?room=lobby")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("unknown room status = %d, want 400", resp.StatusCode)
	}

	header := http.Header{"Origin": []string{"https://evil.example"}}
	_, resp, err = websocket.DefaultDialer.Dial(wsURL(srv, ""), header)
	if err == nil {
		t.Fatal("expected dial with foreign origin to fail")
	}
	if resp == nil || resp.StatusCode != http.StatusForbidden {
		t.Fatalf("foreign origin response = %+v", resp)
	}
}

func TestServeWsAfterHubStop(t *testing.T) {
	srv, hub, _ := newWebSocketTestServer(t, []string{"*"})
	hub.Stop()

	conn, _, err := websocket.DefaultDialer.Dial(wsURL(srv, "?room=standings"), nil)
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	defer conn.Close()

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, _, err = conn.ReadMessage()
	var closeErr *websocket.CloseError
	if !errors.As(err, &closeErr) {
		t.Fatalf("ReadMessage() error = %v, want a close frame", err)
	}
}
