package hub

import (
	"context"
	"encoding/json"
	"net"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gobwas/ws"
	"github.com/gobwas/ws/wsutil"
)

func dialWS(t *testing.T, url string) (conn net.Conn, read func() Event, write func(controlMessage)) {
	t.Helper()

	wsURL := "ws" + strings.TrimPrefix(url, "http")
	c, _, _, err := ws.Dial(context.Background(), wsURL)
	if err != nil {
		t.Fatalf("dial failed: %v", err)
	}

	read = func() Event {
		t.Helper()
		c.SetReadDeadline(time.Now().Add(2 * time.Second))
		data, err := wsutil.ReadServerText(c)
		if err != nil {
			t.Fatalf("read failed: %v", err)
		}
		var evt Event
		if err := json.Unmarshal(data, &evt); err != nil {
			t.Fatalf("unmarshal failed: %v", err)
		}
		return evt
	}
	write = func(msg controlMessage) {
		t.Helper()
		data, _ := json.Marshal(msg)
		if err := wsutil.WriteClientText(c, data); err != nil {
			t.Fatalf("write failed: %v", err)
		}
	}
	return c, read, write
}

func waitForConns(t *testing.T, h *Hub, n int) {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for h.ConnCount() != n {
		select {
		case <-deadline:
			t.Fatalf("expected %d connections, have %d", n, h.ConnCount())
		case <-time.After(5 * time.Millisecond):
		}
	}
}

func waitForMembers(t *testing.T, h *Hub, topic string, n int) {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for h.TopicMembers(topic) != n {
		select {
		case <-deadline:
			t.Fatalf("expected %d members of %s, have %d", n, topic, h.TopicMembers(topic))
		case <-time.After(5 * time.Millisecond):
		}
	}
}

func TestWSHandler_BroadcastDelivery(t *testing.T) {
	h := newTestHub()
	defer h.Close()

	srv := httptest.NewServer(WSHandler(h))
	defer srv.Close()

	conn, read, _ := dialWS(t, srv.URL)
	defer conn.Close()
	waitForConns(t, h, 1)

	h.Broadcast("priority_alerts", []string{"alert"})

	evt := read()
	if evt.Name != "priority_alerts" {
		t.Errorf("expected priority_alerts, got %q", evt.Name)
	}
}

func TestWSHandler_JoinLeave(t *testing.T) {
	h := newTestHub()
	defer h.Close()

	srv := httptest.NewServer(WSHandler(h))
	defer srv.Close()

	conn, read, write := dialWS(t, srv.URL)
	defer conn.Close()
	waitForConns(t, h, 1)

	topic := Topic("d1")
	write(controlMessage{Action: "join", Topic: topic})
	waitForMembers(t, h, topic, 1)

	h.PublishToTopic(topic, "disaster_updated", map[string]any{"id": "d1"})
	if evt := read(); evt.Name != "disaster_updated" {
		t.Errorf("expected disaster_updated, got %q", evt.Name)
	}

	write(controlMessage{Action: "leave", Topic: topic})
	waitForMembers(t, h, topic, 0)
}

func TestWSHandler_DisconnectUnregisters(t *testing.T) {
	h := newTestHub()
	defer h.Close()

	srv := httptest.NewServer(WSHandler(h))
	defer srv.Close()

	conn, _, write := dialWS(t, srv.URL)
	waitForConns(t, h, 1)

	write(controlMessage{Action: "join", Topic: Topic("d1")})
	waitForMembers(t, h, Topic("d1"), 1)

	conn.Close()
	waitForConns(t, h, 0)
	waitForMembers(t, h, Topic("d1"), 0)

	// Publishing after the disconnect must not panic or deliver.
	h.PublishToTopic(Topic("d1"), "disaster_updated", nil)
	h.Broadcast("priority_alerts", nil)
}
