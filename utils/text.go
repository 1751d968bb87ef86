package utils

import "strings"

// TrimLineEnding removes a single trailing "\n" or "\r\n". Earlier line
// breaks belong to the payload.
func TrimLineEnding(s string) string {
	if strings.HasSuffix(s, "\r\n") {
		return s[:len(s)-2]
	}
	return strings.TrimSuffix(s, "\n")
}
