package ws

import (
	"encoding/json"
	"fmt"
)

// Encode wraps a payload in an envelope and marshals it.
func Encode(t string, payload any) ([]byte, error) {
	var raw json.RawMessage
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("encode %s payload: %w", t, err)
		}
		raw = b
	}
	return json.Marshal(Envelope{T: t, P: raw})
}

// DecodeEnvelope parses the outer frame without touching the payload.
func DecodeEnvelope(data []byte) (Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return Envelope{}, fmt.Errorf("decode envelope: %w", err)
	}
	if env.T == "" {
		return Envelope{}, fmt.Errorf("decode envelope: missing type")
	}
	return env, nil
}

// DecodePayload parses an envelope payload into a concrete message type.
func DecodePayload[T any](env Envelope) (T, error) {
	var msg T
	if len(env.P) == 0 {
		return msg, nil
	}
	if err := json.Unmarshal(env.P, &msg); err != nil {
		return msg, fmt.Errorf("decode %s payload: %w", env.T, err)
	}
	return msg, nil
}
