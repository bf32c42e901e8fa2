package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	. "RoadEditor/internal/editor"

	"github.com/gorilla/websocket"
	"google.golang.org/protobuf/encoding/protojson"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

var errUnknownMessage = errors.New("unknown message type")

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type pointerPayload struct {
	Point *vec3DTO `json:"point"`
}

type buttonPayload struct {
	Button string `json:"button"`
	Phase  string `json:"phase"`
	OverUI bool   `json:"over_ui"`
}

type toolPayload struct {
	Active bool `json:"active"`
}

type variantPayload struct {
	Variant string `json:"variant"`
}

type selectRoadPayload struct {
	Name string `json:"name"`
}

type deleteSectionPayload struct {
	ID int64 `json:"id"`
}

type helloDTO struct {
	Editor string `json:"editor"`
	Room   string `json:"room"`
	Road   string `json:"road"`
}

type errorDTO struct {
	Message string `json:"message"`
}

type liveConn struct {
	conn     *websocket.Conn
	asJSON   bool
	sendTick *time.Ticker
}

// send writes one envelope: a binary protobuf frame, or a text frame in
// JSON mode.
func (lc *liveConn) send(msgType string, payload any) error {
	envelope, err := toEnvelope(msgType, payload)
	if err != nil {
		return err
	}
	data, err := encodeEnvelope(envelope, lc.asJSON)
	if err != nil {
		return err
	}
	frame := websocket.BinaryMessage
	if lc.asJSON {
		frame = websocket.TextMessage
	}
	return lc.conn.WriteMessage(frame, data)
}

func parseButton(s string) (Button, bool) {
	switch strings.ToLower(s) {
	case "", "primary", "left":
		return ButtonPrimary, true
	case "secondary", "right":
		return ButtonSecondary, true
	case "middle":
		return ButtonMiddle, true
	}
	return ButtonPrimary, false
}

func parseButtonPhase(s string) (ButtonPhase, bool) {
	switch strings.ToLower(s) {
	case "", "started", "pressed":
		return PhaseStarted, true
	case "held":
		return PhaseHeld, true
	case "released":
		return PhaseReleased, true
	}
	return PhaseStarted, false
}

// decodeInbound accepts a JSON text envelope or a protobuf Struct envelope
// of the same shape.
func decodeInbound(msgType int, data []byte) (inboundMessage, error) {
	var inbound inboundMessage
	if msgType == websocket.BinaryMessage {
		envelope, err := decodeEnvelope(data, false)
		if err != nil {
			return inbound, fmt.Errorf("protobuf unmarshal error: %w", err)
		}
		if data, err = protojson.Marshal(envelope); err != nil {
			return inbound, err
		}
	}
	if err := json.Unmarshal(data, &inbound); err != nil {
		return inbound, fmt.Errorf("invalid JSON message: %w", err)
	}
	return inbound, nil
}

// handleInbound turns one client message into room input.
func (a *App) handleInbound(room *Room, editorID string, inbound inboundMessage) error {
	decode := func(v any) error {
		if len(inbound.Payload) == 0 {
			return nil
		}
		if err := json.Unmarshal(inbound.Payload, v); err != nil {
			return fmt.Errorf("invalid %s payload: %w", inbound.Type, err)
		}
		return nil
	}

	var ev Event
	switch inbound.Type {
	case "pointer":
		var p pointerPayload
		if err := decode(&p); err != nil {
			return err
		}
		target := TargetEvent{}
		if p.Point != nil {
			v := p.Point.vec()
			target.Point = &v
		}
		ev = target
	case "button":
		var p buttonPayload
		if err := decode(&p); err != nil {
			return err
		}
		button, ok := parseButton(p.Button)
		if !ok {
			return fmt.Errorf("unknown button %q", p.Button)
		}
		phase, ok := parseButtonPhase(p.Phase)
		if !ok {
			return fmt.Errorf("unknown button phase %q", p.Phase)
		}
		ev = InteractionEvent{Button: button, Phase: phase, OverUI: p.OverUI}
	case "tool":
		var p toolPayload
		if err := decode(&p); err != nil {
			return err
		}
		ev = ToolEvent{Active: p.Active}
	case "variant":
		var p variantPayload
		if err := decode(&p); err != nil {
			return err
		}
		v, ok := ParseVariant(p.Variant)
		if !ok {
			return fmt.Errorf("unknown variant %q", p.Variant)
		}
		ev = VariantEvent{Variant: v}
	case "select_road":
		var p selectRoadPayload
		if err := decode(&p); err != nil {
			return err
		}
		if p.Name == "" {
			ev = RoadSelectedEvent{}
			break
		}
		rd, err := a.Roads.Load(p.Name)
		if err != nil {
			return err
		}
		ev = RoadSelectedEvent{Road: rd}
	case "delete_section":
		var p deleteSectionPayload
		if err := decode(&p); err != nil {
			return err
		}
		return room.DeleteSection(editorID, EntityID(p.ID))
	default:
		return fmt.Errorf("%w: %q", errUnknownMessage, inbound.Type)
	}
	if !room.QueueInput(editorID, ev) {
		return fmt.Errorf("editor %s left room %s", editorID, room.ID)
	}
	return nil
}

func (a *App) serveWS(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	roomID := strings.TrimSpace(query.Get("room"))
	if roomID == "" {
		roomID = "default"
	}
	name := strings.TrimSpace(query.Get("name"))
	if name == "" {
		name = "Anon"
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Println("upgrade:", err)
		return
	}
	defer conn.Close()

	rate := a.Settings.UpdateRateHz
	lc := &liveConn{
		conn:     conn,
		asJSON:   query.Get("format") == "json",
		sendTick: time.NewTicker(time.Duration(1000.0/rate) * time.Millisecond),
	}
	defer lc.sendTick.Stop()

	rd := a.defaultRoad()
	room, ed := a.Hub.Join(roomID, name, rd)
	defer room.RemoveEditor(ed.ID)
	log.Printf("editor %s (%s) joined room %s", ed.ID, name, roomID)

	if err := lc.send("hello", helloDTO{Editor: ed.ID, Room: roomID, Road: rd.Name}); err != nil {
		log.Printf("ws send hello: %v", err)
		return
	}

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()
	replies := make(chan errorDTO, 8)

	go func() {
		defer cancel()
		for {
			msgType, data, err := conn.ReadMessage()
			if err != nil {
				return
			}
			inbound, err := decodeInbound(msgType, data)
			if err == nil {
				err = a.handleInbound(room, ed.ID, inbound)
			}
			if err != nil {
				log.Printf("editor %s: %v", ed.ID, err)
				select {
				case replies <- errorDTO{Message: err.Error()}:
				default:
				}
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			log.Printf("editor %s left room %s", ed.ID, roomID)
			return
		case reply := <-replies:
			if err := lc.send("error", reply); err != nil {
				return
			}
		case <-lc.sendTick.C:
			room.Mu.Lock()
			state := buildStateLocked(room, ed.ID)
			room.Mu.Unlock()
			if err := lc.send("state", state); err != nil {
				return
			}
		}
	}
}
