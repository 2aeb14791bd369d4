package utils

import (
	"fmt"

	"github.com/google/uuid"
)

// GenerateID returns a unique identifier with a type prefix, e.g.
// "auction_3f1c...". The prefix makes identifiers self-describing in logs
// and storage.
func GenerateID(prefix string) string {
	return fmt.Sprintf("%s_%s", prefix, uuid.NewString())
}
