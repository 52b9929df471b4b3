// Package revocation records sessions that were ended before their token
// expired: explicit logout and inactivity timeouts.
package revocation

import (
	"fmt"
	"time"

	"crm/pkg/platform/sentinel"
)

const revokedSessionKeyPrefix = "session:revoked:"

func revokedKey(sessionID string) string {
	return revokedSessionKeyPrefix + sessionID
}

// checkRetention rejects a revocation that would expire immediately; a
// zero entry would let the token back in.
func checkRetention(sessionID string, ttl time.Duration) error {
	if ttl <= 0 {
		return fmt.Errorf("revoke session %s for %s: %w", sessionID, ttl, sentinel.ErrInvalidState)
	}
	return nil
}
