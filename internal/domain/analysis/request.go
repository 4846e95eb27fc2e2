package analysis

import (
	"bytes"
	"encoding/json"
	"io"

	"ray_analysis/internal/errors"
)

// Field keeps a raw JSON value together with whether the key was present.
type Field struct {
	Value   any
	Present bool
}

type Request struct {
	Type         string
	TimeSettings Field
	GameSettings Field
	Game         Field
	GameTree     Field
}

func field(obj map[string]any, key string) Field {
	v, ok := obj[key]
	return Field{Value: v, Present: ok}
}

// ParseRequest decodes one protocol line. Anything that is not a single JSON
// object yields ErrInvalidRequest; a missing or non-string "request" leaves
// Type empty for the dispatcher to reject.
func ParseRequest(line []byte) (Request, error) {
	dec := json.NewDecoder(bytes.NewReader(line))
	var v any
	if err := dec.Decode(&v); err != nil {
		return Request{}, errors.ErrInvalidRequest
	}
	if _, err := dec.Token(); err != io.EOF {
		return Request{}, errors.ErrInvalidRequest
	}
	obj, ok := v.(map[string]any)
	if !ok {
		return Request{}, errors.ErrInvalidRequest
	}
	req := Request{
		TimeSettings: field(obj, "timeSettings"),
		GameSettings: field(obj, "gameSettings"),
		Game:         field(obj, "game"),
		GameTree:     field(obj, "gameTree"),
	}
	req.Type, _ = obj["request"].(string)
	return req, nil
}
