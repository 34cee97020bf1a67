package models

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"
)

const pngDataURLPrefix = "data:image/png;base64,"

// Screenshot holds PNG bytes of the rendered schematic area.
// It crosses JSON boundaries as a PNG data URL.
type Screenshot []byte

// EncodePNG returns the base64 text form of a PNG image
func EncodePNG(data []byte) string {
	return base64.StdEncoding.EncodeToString(data)
}

// DecodePNG accepts plain base64 or a data URL and returns the image bytes
func DecodePNG(text string) ([]byte, error) {
	text = strings.TrimSpace(text)
	if i := strings.Index(text, ","); strings.HasPrefix(text, "data:") && i >= 0 {
		text = text[i+1:]
	}
	data, err := base64.StdEncoding.DecodeString(text)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	return data, nil
}

// MarshalJSON encodes the screenshot as a data URL, or null when empty
func (s Screenshot) MarshalJSON() ([]byte, error) {
	if len(s) == 0 {
		return []byte("null"), nil
	}
	return json.Marshal(pngDataURLPrefix + EncodePNG(s))
}

// UnmarshalJSON accepts null, plain base64 or a data URL
func (s *Screenshot) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*s = nil
		return nil
	}
	var text string
	if err := json.Unmarshal(data, &text); err != nil {
		return fmt.Errorf("screenshot must be a string: %w", err)
	}
	if text == "" {
		*s = nil
		return nil
	}
	decoded, err := DecodePNG(text)
	if err != nil {
		return err
	}
	*s = decoded
	return nil
}
