package websocket

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	gws "github.com/gorilla/websocket"

	"bridgewatch/internal/dto"
	"bridgewatch/internal/logger"
	"bridgewatch/internal/models"
)

var testUpgrader = gws.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// startHubServer runs a hub and an httptest server that registers every
// incoming websocket connection with it.
func startHubServer(t *testing.T, hub *HubService) *httptest.Server {
	t.Helper()

	go hub.Run()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		connection, err := testUpgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("Upgrade failed: %v", err)
			return
		}
		hub.Register(connection)
	}))
	t.Cleanup(server.Close)

	return server
}

func dial(t *testing.T, server *httptest.Server) *gws.Conn {
	t.Helper()

	url := "ws" + strings.TrimPrefix(server.URL, "http")
	conn, _, err := gws.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("Dial failed: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	return conn
}

func TestHub_PingsIdleClients(t *testing.T) {
	hub := NewHubService(logger.New(t.TempDir()), nil)
	hub.pingPeriod = 20 * time.Millisecond
	server := startHubServer(t, hub)

	conn := dial(t, server)

	pinged := make(chan struct{}, 1)
	conn.SetPingHandler(func(appData string) error {
		select {
		case pinged <- struct{}{}:
		default:
		}
		return nil
	})

	// ReadMessage drives control frame processing.
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	select {
	case <-pinged:
	case <-time.After(2 * time.Second):
		t.Fatal("Expected a keepalive ping from the hub")
	}
}

func TestHub_BroadcastEventReachesClient(t *testing.T) {
	hub := NewHubService(logger.New(t.TempDir()), nil)
	server := startHubServer(t, hub)

	conn := dial(t, server)

	// Wait for the register to land in the hub's run loop.
	deadline := time.Now().Add(2 * time.Second)
	for hub.GetClientCount() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("Client was never registered")
		}
		time.Sleep(5 * time.Millisecond)
	}

	hub.BroadcastEvent(dto.Event{Kind: "alert", Alert: &models.Alert{AlertType: "WATER", Value: 1}})

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, message, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("Expected broadcast message, got error: %v", err)
	}
	if !strings.Contains(string(message), `"kind":"alert"`) {
		t.Errorf("Unexpected event payload: %s", message)
	}
}
