package utils

import (
	"fmt"

	"github.com/microcosm-cc/bluemonday"
)

// MaxPayloadBytes caps inbound engine payloads and host command frames.
const MaxPayloadBytes = 1 << 20 // 1MB

var popupPolicy = bluemonday.UGCPolicy()

// SanitizeHTML strips unsafe markup from marker popup/title content before
// it is handed to the engine document.
func SanitizeHTML(s string) string {
	return popupPolicy.Sanitize(s)
}

// ValidatePayloadSize rejects oversized payloads to prevent abuse of the
// injection path.
func ValidatePayloadSize(data []byte) error {
	if len(data) > MaxPayloadBytes {
		return fmt.Errorf("payload too large: %d bytes (max %d)", len(data), MaxPayloadBytes)
	}
	return nil
}
