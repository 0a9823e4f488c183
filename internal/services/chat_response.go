package services

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrShapeMismatch means the provider answered with valid JSON that does not
// carry a reply text in content[0].text.
var ErrShapeMismatch = errors.New("provider response has no reply text")

type providerResponse struct {
	Content json.RawMessage `json:"content"`
}

type contentBlock struct {
	Type string  `json:"type"`
	Text *string `json:"text"`
}

// ExtractReply pulls the first content block's text out of a Messages API
// body. A body that is not a JSON object is a decode error; anything else
// missing is ErrShapeMismatch.
func ExtractReply(body []byte) (string, error) {
	var resp providerResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("failed to decode provider response: %w", err)
	}

	if len(resp.Content) == 0 {
		return "", fmt.Errorf("%w: content missing", ErrShapeMismatch)
	}

	var blocks []json.RawMessage
	if err := json.Unmarshal(resp.Content, &blocks); err != nil {
		return "", fmt.Errorf("%w: content is not an array", ErrShapeMismatch)
	}
	if len(blocks) == 0 {
		return "", fmt.Errorf("%w: content is empty", ErrShapeMismatch)
	}

	var first contentBlock
	if err := json.Unmarshal(blocks[0], &first); err != nil || first.Text == nil {
		return "", fmt.Errorf("%w: first content block has no text", ErrShapeMismatch)
	}
	if *first.Text == "" {
		return "", fmt.Errorf("%w: first content block text is empty", ErrShapeMismatch)
	}

	return *first.Text, nil
}
