package llmparser

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrMalformedResponse is returned when the reply holds no decodable JSON object
	ErrMalformedResponse = errors.New("malformed llm response")
	// ErrNoItems is returned when the reply names items but none is on the menu
	ErrNoItems = errors.New("llm response has no menu items")
)

// Response is the JSON document the model is asked to return
type Response struct {
	Restaurant string         `json:"restaurant"`
	Items      []ResponseItem `json:"items"`
}

// ResponseItem is one order line as the model wrote it
type ResponseItem struct {
	Name          string         `json:"name"`
	Quantity      float64        `json:"quantity"`
	Size          string         `json:"size"`
	Modifications []Modification `json:"modifications"`
}

// Modification accepts either a plain string or a {"type", "item"} object
type Modification string

func (m *Modification) UnmarshalJSON(data []byte) error {
	var text string
	if err := json.Unmarshal(data, &text); err == nil {
		*m = Modification(strings.TrimSpace(text))
		return nil
	}

	var obj struct {
		Type string `json:"type"`
		Item string `json:"item"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}
	*m = Modification(describe(strings.ToLower(obj.Type), strings.TrimSpace(obj.Item)))
	return nil
}

func describe(kind, item string) string {
	if item == "" {
		return ""
	}
	switch kind {
	case "remove":
		return "no " + item
	case "extra":
		return "extra " + item
	case "add":
		return "add " + item
	case "substitute":
		return "sub " + item
	case "on_side", "side":
		return item + " on the side"
	}
	return item
}

// DecodeResponse extracts the JSON object between the first '{' and the last '}'
func DecodeResponse(raw string) (*Response, error) {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start < 0 || end < start {
		return nil, fmt.Errorf("%w: no JSON object found", ErrMalformedResponse)
	}

	var resp Response
	if err := json.Unmarshal([]byte(raw[start:end+1]), &resp); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	return &resp, nil
}
