package server

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"google.golang.org/protobuf/proto"
)

type textEnvelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

func dial(t *testing.T, url string) *websocket.Conn {
	t.Helper()
	wsURL := "ws" + strings.TrimPrefix(url, "http")
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial %s: %v", wsURL, err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func sendText(t *testing.T, conn *websocket.Conn, msgType string, payload any) {
	t.Helper()
	raw, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	data, _ := json.Marshal(textEnvelope{Type: msgType, Payload: raw})
	if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
		t.Fatalf("write %s: %v", msgType, err)
	}
}

func readText(t *testing.T, conn *websocket.Conn) textEnvelope {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(3 * time.Second))
	msgType, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if msgType != websocket.TextMessage {
		t.Fatalf("expected text frame, got %d", msgType)
	}
	var env textEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		t.Fatalf("decode envelope: %v", err)
	}
	return env
}

// waitForState reads states until ok accepts one.
func waitForState(t *testing.T, conn *websocket.Conn, ok func(stateDTO) bool) stateDTO {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		env := readText(t, conn)
		if env.Type != "state" {
			continue
		}
		var state stateDTO
		if err := json.Unmarshal(env.Payload, &state); err != nil {
			t.Fatalf("decode state: %v", err)
		}
		if ok(state) {
			return state
		}
	}
	t.Fatal("timed out waiting for state")
	return stateDTO{}
}

func TestWSDrawCurvedSection(t *testing.T) {
	_, srv := newTestApp(t)
	conn := dial(t, srv.URL+"/ws?room=r1&name=ada&format=json")

	hello := readText(t, conn)
	if hello.Type != "hello" {
		t.Fatalf("expected hello, got %s", hello.Type)
	}
	var h helloDTO
	if err := json.Unmarshal(hello.Payload, &h); err != nil {
		t.Fatalf("decode hello: %v", err)
	}
	if h.Editor == "" || h.Room != "r1" || h.Road != "default" {
		t.Fatalf("unexpected hello %+v", h)
	}

	click := buttonPayload{Button: "primary", Phase: "started"}
	sendText(t, conn, "pointer", pointerPayload{Point: &vec3DTO{X: 0, Y: 0, Z: 0}})
	sendText(t, conn, "button", click)
	sendText(t, conn, "pointer", pointerPayload{Point: &vec3DTO{X: 0, Y: 0, Z: -1}})
	sendText(t, conn, "button", click)
	sendText(t, conn, "pointer", pointerPayload{Point: &vec3DTO{X: 5, Y: 0, Z: -5}})

	state := waitForState(t, conn, func(s stateDTO) bool {
		return s.Session != nil && s.Session.Phase == "ready_to_commit"
	})
	if state.Session.Arc == nil || len(state.Session.Arc.Points) != arcSamples {
		t.Fatalf("expected sampled arc in session, got %+v", state.Session.Arc)
	}
	if state.Session.Arc.Direction != "right" {
		t.Errorf("expected right curve, got %s", state.Session.Arc.Direction)
	}

	sendText(t, conn, "button", click)
	state = waitForState(t, conn, func(s stateDTO) bool { return len(s.Sections) == 1 })
	if len(state.Nodes) != 2 {
		t.Errorf("expected 2 nodes, got %d", len(state.Nodes))
	}
	if state.Session.Phase != "idle" {
		t.Errorf("expected idle session, got %s", state.Session.Phase)
	}
	sec := state.Sections[0]
	if sec.Variant != "curved" || sec.Arc == nil || sec.Road != "default" {
		t.Errorf("unexpected section %+v", sec)
	}
	if len(state.Edits) != 1 || state.Edits[0].Kind != "build" || state.Edits[0].Editor != h.Editor {
		t.Errorf("expected one build edit, got %+v", state.Edits)
	}

	sendText(t, conn, "delete_section", deleteSectionPayload{ID: sec.ID})
	waitForState(t, conn, func(s stateDTO) bool { return len(s.Sections) == 0 && len(s.Nodes) == 0 })
}

func TestWSErrorReply(t *testing.T) {
	_, srv := newTestApp(t)
	conn := dial(t, srv.URL+"/ws?format=json")
	readText(t, conn)

	sendText(t, conn, "bogus", struct{}{})
	sendText(t, conn, "select_road", selectRoadPayload{Name: "missing"})
	var errs []string
	deadline := time.Now().Add(3 * time.Second)
	for len(errs) < 2 && time.Now().Before(deadline) {
		env := readText(t, conn)
		if env.Type != "error" {
			continue
		}
		var e errorDTO
		if err := json.Unmarshal(env.Payload, &e); err != nil {
			t.Fatalf("decode error: %v", err)
		}
		errs = append(errs, e.Message)
	}
	if len(errs) != 2 {
		t.Fatalf("expected 2 error replies, got %v", errs)
	}
	if !strings.Contains(errs[0], "bogus") || !strings.Contains(errs[1], "missing") {
		t.Errorf("unexpected error messages %v", errs)
	}
}

func TestWSBinaryFrames(t *testing.T) {
	_, srv := newTestApp(t)
	conn := dial(t, srv.URL+"/ws?room=bin")

	readEnvelope := func() (string, map[string]any) {
		_ = conn.SetReadDeadline(time.Now().Add(3 * time.Second))
		msgType, data, err := conn.ReadMessage()
		if err != nil {
			t.Fatalf("read: %v", err)
		}
		if msgType != websocket.BinaryMessage {
			t.Fatalf("expected binary frame, got %d", msgType)
		}
		env, err := decodeEnvelope(data, false)
		if err != nil {
			t.Fatalf("decode: %v", err)
		}
		m := env.AsMap()
		payload, _ := m["payload"].(map[string]any)
		return env.Fields["type"].GetStringValue(), payload
	}

	if kind, _ := readEnvelope(); kind != "hello" {
		t.Fatalf("expected hello, got %s", kind)
	}

	env, err := toEnvelope("variant", variantPayload{Variant: "straight"})
	if err != nil {
		t.Fatalf("envelope: %v", err)
	}
	data, err := proto.Marshal(env)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if err := conn.WriteMessage(websocket.BinaryMessage, data); err != nil {
		t.Fatalf("write: %v", err)
	}

	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		kind, payload := readEnvelope()
		if kind != "state" {
			continue
		}
		session, _ := payload["session"].(map[string]any)
		if session["variant"] == "straight" {
			return
		}
	}
	t.Fatal("variant change never reached the session")
}
