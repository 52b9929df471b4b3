// Package service decides whether an identity may perform a named action
// and manages the role/permission catalogue behind that decision.
package service

import (
	"context"
	"errors"
	"log/slog"

	"crm/internal/authz/metrics"
	"crm/internal/authz/models"
	"crm/internal/authz/store"
	id "crm/pkg/domain"
	dErrors "crm/pkg/domain-errors"
	audit "crm/pkg/platform/audit"
	platformstrings "crm/pkg/platform/strings"
	"crm/pkg/requestcontext"
)

// AdminSentinel is returned by GetUserPermissions for admins.
const AdminSentinel = "*"

var defaultAdminAliases = []string{"admin", "administrador", "administrator", "administradora"}

type PermissionStore interface {
	FindIdentity(ctx context.Context, identityID id.IdentityID) (*models.Identity, error)
	HasActivePermission(ctx context.Context, roleID id.RoleID, name string) (bool, error)
	ListActivePermissionNames(ctx context.Context, roleID id.RoleID) ([]string, error)
}

type AuditPublisher interface {
	Emit(ctx context.Context, entry audit.Entry) error
}

// Evaluator answers permission questions. Every evaluation method fails
// closed: a store error yields false and a warning, never an error.
type Evaluator struct {
	store          PermissionStore
	adminAliases   map[string]struct{}
	logger         *slog.Logger
	auditPublisher AuditPublisher
	metrics        *metrics.Metrics
}

// Option configures both the Evaluator and the RBACService.
type Option func(*options)

type options struct {
	logger         *slog.Logger
	auditPublisher AuditPublisher
	metrics        *metrics.Metrics
	adminAliases   []string
}

func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

func WithAuditPublisher(publisher AuditPublisher) Option {
	return func(o *options) {
		o.auditPublisher = publisher
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(o *options) {
		o.metrics = m
	}
}

// WithAdminAliases replaces the role names that get the superuser bypass.
// Matching is case-insensitive on the trimmed role name.
func WithAdminAliases(aliases []string) Option {
	return func(o *options) {
		if len(aliases) > 0 {
			o.adminAliases = aliases
		}
	}
}

func buildOptions(opts []Option) options {
	o := options{
		logger:       slog.Default(),
		adminAliases: defaultAdminAliases,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

func NewEvaluator(permissions PermissionStore, opts ...Option) (*Evaluator, error) {
	if permissions == nil {
		return nil, dErrors.New(dErrors.CodeInternal, "permission store is required")
	}
	o := buildOptions(opts)
	return &Evaluator{
		store:          permissions,
		adminAliases:   platformstrings.FoldSet(o.adminAliases),
		logger:         o.logger,
		auditPublisher: o.auditPublisher,
		metrics:        o.metrics,
	}, nil
}

// loadIdentity returns nil when the identity cannot be used for a grant.
func (e *Evaluator) loadIdentity(ctx context.Context, identityID id.IdentityID) *models.Identity {
	if identityID.IsNil() {
		return nil
	}
	identity, err := e.store.FindIdentity(ctx, identityID)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			e.metrics.IncEvaluationError()
			e.logger.WarnContext(ctx, "permission evaluation failed, denying",
				"identity_id", identityID,
				"error", err,
				"request_id", requestcontext.RequestID(ctx),
			)
		}
		return nil
	}
	if !identity.IsActive {
		return nil
	}
	return identity
}

func (e *Evaluator) isAdminRole(role string) bool {
	_, ok := e.adminAliases[platformstrings.Fold(role)]
	return ok
}

// evaluate checks one permission for an already loaded, active identity.
func (e *Evaluator) evaluate(ctx context.Context, identity *models.Identity, name string, access *models.AccessContext) bool {
	if e.isAdminRole(identity.Role) {
		e.metrics.IncAdminBypass()
		return true
	}
	if identity.RoleID.IsNil() {
		return false
	}
	granted, err := e.store.HasActivePermission(ctx, identity.RoleID, name)
	if err != nil {
		e.metrics.IncEvaluationError()
		e.logger.WarnContext(ctx, "permission evaluation failed, denying",
			"identity_id", identity.ID,
			"permission", name,
			"error", err,
			"request_id", requestcontext.RequestID(ctx),
		)
		return false
	}
	if !granted {
		return false
	}
	return contextAllows(identity, access)
}

// contextAllows applies the team and data partition restrictions. A data
// key missing on either side imposes no restriction.
func contextAllows(identity *models.Identity, access *models.AccessContext) bool {
	if access == nil {
		return true
	}
	if !access.TeamID.IsNil() && access.TeamID != identity.TeamID {
		return false
	}
	if access.DataKey != "" && identity.DataKey != "" && access.DataKey != identity.DataKey {
		return false
	}
	return true
}

func (e *Evaluator) record(granted bool) bool {
	if granted {
		e.metrics.IncGranted()
	} else {
		e.metrics.IncDenied()
	}
	return granted
}

// HasPermission reports whether identityID may perform name, optionally
// narrowed by access.
func (e *Evaluator) HasPermission(ctx context.Context, identityID id.IdentityID, name string, access *models.AccessContext) bool {
	identity := e.loadIdentity(ctx, identityID)
	if identity == nil {
		return e.record(false)
	}
	return e.record(e.evaluate(ctx, identity, name, access))
}

// HasAnyPermission stops at the first granted name, in input order. An
// empty list grants nothing.
func (e *Evaluator) HasAnyPermission(ctx context.Context, identityID id.IdentityID, names []string, access *models.AccessContext) bool {
	if len(names) == 0 {
		return e.record(false)
	}
	identity := e.loadIdentity(ctx, identityID)
	if identity == nil {
		return e.record(false)
	}
	for _, name := range names {
		if e.evaluate(ctx, identity, name, access) {
			return e.record(true)
		}
	}
	return e.record(false)
}

// HasAllPermissions stops at the first denied name. An empty list is
// vacuously granted to any active identity.
func (e *Evaluator) HasAllPermissions(ctx context.Context, identityID id.IdentityID, names []string, access *models.AccessContext) bool {
	identity := e.loadIdentity(ctx, identityID)
	if identity == nil {
		return e.record(false)
	}
	for _, name := range names {
		if !e.evaluate(ctx, identity, name, access) {
			return e.record(false)
		}
	}
	return e.record(true)
}

func (e *Evaluator) IsAdmin(ctx context.Context, identityID id.IdentityID) bool {
	identity := e.loadIdentity(ctx, identityID)
	return identity != nil && e.isAdminRole(identity.Role)
}

// BelongsToTeam compares against the primary team only.
func (e *Evaluator) BelongsToTeam(ctx context.Context, identityID id.IdentityID, teamID id.TeamID) bool {
	identity := e.loadIdentity(ctx, identityID)
	return identity != nil && !teamID.IsNil() && identity.TeamID == teamID
}

// GetUserPermissions lists the active permission names reachable through
// the identity's role, or ["*"] for admins.
func (e *Evaluator) GetUserPermissions(ctx context.Context, identityID id.IdentityID) ([]string, error) {
	identity, err := e.store.FindIdentity(ctx, identityID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "user not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load user")
	}
	if !identity.IsActive {
		return []string{}, nil
	}
	if e.isAdminRole(identity.Role) {
		return []string{AdminSentinel}, nil
	}
	if identity.RoleID.IsNil() {
		return []string{}, nil
	}
	names, err := e.store.ListActivePermissionNames(ctx, identity.RoleID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load permissions")
	}
	return names, nil
}

// LogAction hands the entry to the audit sink. Failures are logged and
// never returned.
func (e *Evaluator) LogAction(ctx context.Context, entry audit.Entry) {
	if e.auditPublisher == nil {
		return
	}
	if err := e.auditPublisher.Emit(ctx, entry); err != nil {
		e.logger.WarnContext(ctx, "failed to record audit entry",
			"action", entry.Action,
			"error", err,
			"request_id", requestcontext.RequestID(ctx),
		)
	}
}
