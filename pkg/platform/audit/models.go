package audit

import (
	"context"
	mathrand "math/rand"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	id "crm/pkg/domain"
)

// Result records whether the audited action went through.
type Result string

const (
	ResultSuccess Result = "success"
	ResultFailure Result = "failure"
)

// Action names written by the assignment and authorization flows.
const (
	ActionPermissionDenied     = "permission_denied"
	ActionTeamAssignment       = "team_assignment"
	ActionUserAssignment       = "user_assignment"
	ActionSessionTimeout       = "session_timeout"
	ActionPermissionCreated    = "permission_created"
	ActionPermissionUpdated    = "permission_updated"
	ActionPermissionDeleted    = "permission_deleted"
	ActionRoleCreated          = "role_created"
	ActionRoleUpdated          = "role_updated"
	ActionRoleDeleted          = "role_deleted"
	ActionPermissionAttached   = "role_permission_attached"
	ActionPermissionDetached   = "role_permission_detached"
	ActionKeywordRuleCreated   = "keyword_rule_created"
	ActionKeywordRuleUpdated   = "keyword_rule_updated"
	ActionKeywordRuleDeleted   = "keyword_rule_deleted"
	ActionKeywordRuleToggled   = "keyword_rule_toggled"
	ActionConversationReleased = "conversation_released"
)

// Entry is an append-only record of an authorization decision or an
// assignment action. Entries are never mutated once stored.
type Entry struct {
	ID         string
	IdentityID id.IdentityID
	Action     string
	Resource   string
	ResourceID string
	Details    map[string]any
	Result     Result
	Timestamp  time.Time
	RequestID  string
}

// Store persists audit entries.
type Store interface {
	Append(ctx context.Context, entry Entry) error
	ListByIdentity(ctx context.Context, identityID id.IdentityID) ([]Entry, error)
	ListRecent(ctx context.Context, limit int) ([]Entry, error)
}

var (
	entropyMu sync.Mutex
	entropy   = ulid.Monotonic(mathrand.New(mathrand.NewSource(time.Now().UnixNano())), 0) //nolint:gosec // ids only need to be sortable
)

// NewEntryID returns a lexicographically sortable entry identifier.
func NewEntryID(at time.Time) string {
	entropyMu.Lock()
	defer entropyMu.Unlock()
	return ulid.MustNew(ulid.Timestamp(at), entropy).String()
}
