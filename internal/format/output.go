// Package format renders CLI payloads as JSON, EDN or plain text.
package format

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

const (
	JSON = "json"
	EDN  = "edn"
	Text = "text"
)

// Texter is implemented by payloads that have a human-readable rendering.
// Payloads without one are printed as indented JSON by the text format.
type Texter interface {
	Text() string
}

// Write writes v in the requested format (json when empty).
func Write(w io.Writer, v any, format string, pretty bool) error {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", JSON:
		return WriteJSON(w, v, pretty)
	case EDN:
		return WriteEDN(w, v, pretty)
	case Text:
		return WriteText(w, v)
	default:
		return fmt.Errorf("unknown format: %s (expected json, edn or text)", format)
	}
}

func WriteJSON(w io.Writer, v any, pretty bool) error {
	var b []byte
	var err error
	if pretty {
		b, err = json.MarshalIndent(v, "", "  ")
	} else {
		b, err = json.Marshal(v)
	}
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(b))
	return err
}

func WriteText(w io.Writer, v any) error {
	t, ok := v.(Texter)
	if !ok {
		return WriteJSON(w, v, true)
	}
	s := t.Text()
	if !strings.HasSuffix(s, "\n") {
		s += "\n"
	}
	_, err := io.WriteString(w, s)
	return err
}
