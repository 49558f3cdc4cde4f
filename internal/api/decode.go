package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/verte-zerg/compquiz/internal/model"
)

type questionPayload struct {
	ID             json.RawMessage `json:"id"`
	Level          int             `json:"level"`
	Prompt         string          `json:"prompt"`
	ContextDisplay orderedContext  `json:"context_display"`
}

type verdictPayload struct {
	Correct    *bool           `json:"correct"`
	Expected   json.RawMessage `json:"expected"`
	UserResult json.RawMessage `json:"user_result"`
	Error      json.RawMessage `json:"error"`
}

type checkPayload struct {
	Code string `json:"code"`
	ID   string `json:"id"`
}

// orderedContext decodes a JSON object keeping the key order of the document.
type orderedContext []model.ContextEntry

func (c *orderedContext) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if tok == nil {
		*c = nil
		return nil
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("context_display: expected object, got %v", tok)
	}
	var entries []model.ContextEntry
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("context_display: expected key, got %v", keyTok)
		}
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return fmt.Errorf("context_display %q: %w", key, err)
		}
		entries = append(entries, model.ContextEntry{Name: key, Value: displayValue(raw)})
	}
	if _, err := dec.Token(); err != nil {
		return err
	}
	*c = entries
	return nil
}

// displayValue renders a JSON value for display: strings unquoted, null empty,
// anything else as compact JSON.
func displayValue(raw json.RawMessage) string {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return ""
	}
	if trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(trimmed, &s); err == nil {
			return s
		}
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, trimmed); err != nil {
		return string(trimmed)
	}
	return buf.String()
}

func decodeQuestion(r io.Reader) (model.Question, error) {
	var payload questionPayload
	if err := json.NewDecoder(r).Decode(&payload); err != nil {
		return model.Question{}, fmt.Errorf("decode question: %w", err)
	}
	id := displayValue(payload.ID)
	if id == "" {
		return model.Question{}, fmt.Errorf("decode question: missing id")
	}
	if strings.TrimSpace(payload.Prompt) == "" {
		return model.Question{}, fmt.Errorf("decode question: missing prompt")
	}
	return model.Question{
		ID:      id,
		Level:   payload.Level,
		Prompt:  payload.Prompt,
		Context: []model.ContextEntry(payload.ContextDisplay),
	}, nil
}

func decodeVerdict(r io.Reader) (model.Verdict, error) {
	var payload verdictPayload
	if err := json.NewDecoder(r).Decode(&payload); err != nil {
		return model.Verdict{}, fmt.Errorf("decode verdict: %w", err)
	}
	errText := displayValue(payload.Error)
	if payload.Correct == nil && errText == "" {
		return model.Verdict{}, fmt.Errorf("decode verdict: missing correct flag")
	}
	v := model.Verdict{
		Correct: payload.Correct != nil && *payload.Correct,
		Error:   errText,
	}
	if !v.Correct && errText == "" {
		v.Expected = displayValue(payload.Expected)
		v.UserResult = displayValue(payload.UserResult)
	}
	if v.Correct {
		v.Error = ""
	}
	return v, nil
}
