package cli

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"strings"

	"github.com/aretw0/clearance/pkg/domain"
)

// JSONHandler speaks JSON Lines: one turn object out, one answer in.
// An answer line is a JSON string, a JSON object (forms) or raw text.
type JSONHandler struct {
	Reader  *bufio.Reader
	Encoder *json.Encoder
}

type jsonTurn struct {
	*domain.Turn
	ValidationError string `json:"validation_error,omitempty"`
}

// NewJSONHandler creates a handler for JSON IO.
func NewJSONHandler(r io.Reader, w io.Writer) *JSONHandler {
	return &JSONHandler{
		Reader:  bufio.NewReader(r),
		Encoder: json.NewEncoder(w),
	}
}

func (h *JSONHandler) Output(_ context.Context, turn *domain.Turn) error {
	return h.Encoder.Encode(jsonTurn{Turn: turn, ValidationError: turn.ValidationMessage()})
}

func (h *JSONHandler) Input(ctx context.Context, _ domain.View) (any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	for {
		text, err := h.Reader.ReadString('\n')
		text = strings.TrimSpace(text)
		if text == "" {
			if err != nil {
				return nil, err
			}
			continue
		}

		var str string
		if json.Unmarshal([]byte(text), &str) == nil {
			return str, nil
		}
		var obj map[string]any
		if json.Unmarshal([]byte(text), &obj) == nil {
			return obj, nil
		}
		return text, nil
	}
}
