package apiclient

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"
)

// NewRequestID returns a random UUID, or a timestamp based id when the system's secure
// random source fails.
func NewRequestID() string {
	id, err := uuid.NewRandom()
	if err != nil {
		return fallbackRequestID()
	}
	return id.String()
}

func fallbackRequestID() string {
	return fmt.Sprintf("req_%d_%x", time.Now().UnixMilli(), rand.Uint64())
}
