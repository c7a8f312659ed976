package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

var (
	errInvalidUUID     = errors.New("must be a valid UUID")
	errNotUUIDv7       = errors.New("must be a version 7 UUID")
	errFutureTimestamp = errors.New("embeds a timestamp too far in the future")
)

// maxIDClockSkew is how far ahead of the server clock a client-generated ID may be
const maxIDClockSkew = time.Minute

// newActivityID returns a time-ordered UUIDv7
func newActivityID() (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", fmt.Errorf("failed to generate activity id: %w", err)
	}
	return id.String(), nil
}

// validateActivityID checks a client-supplied activity ID. Clients generate
// UUIDv7 IDs offline, so the embedded timestamp may not run ahead of now.
func validateActivityID(id string, now time.Time) error {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return errInvalidUUID
	}

	if parsed.Version() != 7 {
		return fmt.Errorf("%w: got version %d", errNotUUIDv7, parsed.Version())
	}

	sec, nsec := parsed.Time().UnixTime()
	if time.Unix(sec, nsec).After(now.Add(maxIDClockSkew)) {
		return errFutureTimestamp
	}

	return nil
}
