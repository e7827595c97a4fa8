package compliance

import (
	"crypto/sha256"
	"fmt"
	"strings"
)

// ContentHash returns a stable SHA-256 hex key for a listing.
// Only case is folded, matching the scan in Evaluate; whitespace is kept as is
// because it takes part in multi-word term matches. Title and description are
// separated by NUL so fields cannot bleed into each other.
func ContentHash(title, description string) string {
	h := sha256.Sum256([]byte(strings.ToLower(title) + "\x00" + strings.ToLower(description)))
	return fmt.Sprintf("%x", h)
}
