package ipsqr

import (
	"encoding/json"
	"fmt"

	"ipsqr-service/internal/status"
)

// Format selects the output shape of a record.
type Format string

const (
	// FormatArray renders the record as a map keyed by canonical name.
	FormatArray Format = "array"
	// FormatJSON renders the record as a JSON object.
	FormatJSON Format = "json"
)

// ParseFormat accepts "array" and "json".
func ParseFormat(s string) (Format, error) {
	switch f := Format(s); f {
	case FormatArray, FormatJSON:
		return f, nil
	default:
		return "", fmt.Errorf("format %q: %w", s, status.ErrUnsupportedFormat)
	}
}

// Render returns map[string]string for FormatArray and the JSON text for FormatJSON.
func Render(r *Record, format Format) (any, error) {
	switch format {
	case FormatArray:
		return r.Map(), nil
	case FormatJSON:
		b, err := json.Marshal(r)
		if err != nil {
			return nil, fmt.Errorf("render: %w", err)
		}
		return string(b), nil
	default:
		return nil, fmt.Errorf("format %q: %w", format, status.ErrUnsupportedFormat)
	}
}
