package server

import (
	"encoding/json"
	"fmt"

	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"
)

type outboundMessage struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

// toEnvelope converts an outbound message into a protobuf Struct, going
// through the JSON form of its DTOs so field names match the text encoding.
func toEnvelope(msgType string, payload any) (*structpb.Struct, error) {
	data, err := json.Marshal(outboundMessage{Type: msgType, Payload: payload})
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", msgType, err)
	}
	var envelope structpb.Struct
	if err := protojson.Unmarshal(data, &envelope); err != nil {
		return nil, fmt.Errorf("convert %s: %w", msgType, err)
	}
	return &envelope, nil
}

// encodeEnvelope renders an envelope as binary protobuf or, for text
// clients, as JSON.
func encodeEnvelope(envelope *structpb.Struct, asJSON bool) ([]byte, error) {
	if asJSON {
		return protojson.Marshal(envelope)
	}
	data, err := proto.Marshal(envelope)
	if err != nil {
		return nil, fmt.Errorf("marshal error: %w", err)
	}
	return data, nil
}

// decodeEnvelope is the inverse of encodeEnvelope.
func decodeEnvelope(data []byte, asJSON bool) (*structpb.Struct, error) {
	var envelope structpb.Struct
	var err error
	if asJSON {
		err = protojson.Unmarshal(data, &envelope)
	} else {
		err = proto.Unmarshal(data, &envelope)
	}
	if err != nil {
		return nil, err
	}
	return &envelope, nil
}
