package service

//go:generate mockgen -source=evaluator.go -destination=mocks/mocks.go -package=mocks PermissionStore,AuditPublisher

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"crm/internal/authz/models"
	"crm/internal/authz/service/mocks"
	"crm/internal/authz/store"
	id "crm/pkg/domain"
	audit "crm/pkg/platform/audit"
)

// =============================================================================
// Evaluator against the in-memory store
// =============================================================================

type EvaluatorSuite struct {
	suite.Suite
	ctx       context.Context
	store     *store.InMemoryStore
	evaluator *Evaluator
	roleID    id.RoleID
}

func TestEvaluatorSuite(t *testing.T) {
	suite.Run(t, new(EvaluatorSuite))
}

func (s *EvaluatorSuite) SetupTest() {
	s.ctx = context.Background()
	s.store = store.NewInMemoryStore()

	role := &models.Role{Name: "Atendente", IsActive: true}
	s.Require().NoError(s.store.CreateRole(s.ctx, role))
	s.roleID = role.ID
	for _, name := range []string{"teams:manage", "conversas:atribuir"} {
		p, err := models.NewPermission(name, "", "")
		s.Require().NoError(err)
		s.Require().NoError(s.store.CreatePermission(s.ctx, p))
		s.Require().NoError(s.store.AttachPermission(s.ctx, role.ID, p.ID))
	}

	s.save(models.Identity{ID: 1, Role: "Administrador", TeamID: 9, IsActive: true})
	s.save(models.Identity{ID: 2, Role: "atendente", RoleID: role.ID, TeamID: 7, DataKey: "sec-a", IsActive: true})
	s.save(models.Identity{ID: 3, Role: "atendente", RoleID: role.ID, TeamID: 7, IsActive: true})
	s.save(models.Identity{ID: 4, Role: "admin", IsActive: false})
	s.save(models.Identity{ID: 5, Role: "atendente", IsActive: true})

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	ev, err := NewEvaluator(s.store, WithLogger(logger))
	s.Require().NoError(err)
	s.evaluator = ev
}

func (s *EvaluatorSuite) save(identity models.Identity) {
	s.Require().NoError(s.store.SaveIdentity(s.ctx, &identity))
}

func (s *EvaluatorSuite) TestAdminAliases() {
	s.Run("locale alias Administrador is admin", func() {
		s.True(s.evaluator.HasPermission(s.ctx, 1, "teams:manage", nil))
	})

	s.Run("admin passes every permission and context", func() {
		s.True(s.evaluator.HasPermission(s.ctx, 1, "anything:at-all", nil))
		s.True(s.evaluator.HasPermission(s.ctx, 1, "teams:manage", &models.AccessContext{TeamID: 42, DataKey: "other"}))
	})

	s.Run("alias matching ignores case and padding", func() {
		for i, role := range []string{"ADMIN", " administrator ", "Administradora"} {
			identityID := id.IdentityID(100 + i)
			s.save(models.Identity{ID: identityID, Role: role, IsActive: true})
			s.True(s.evaluator.IsAdmin(s.ctx, identityID), role)
		}
	})

	s.Run("inactive admin is denied", func() {
		s.False(s.evaluator.HasPermission(s.ctx, 4, "teams:manage", nil))
		s.False(s.evaluator.IsAdmin(s.ctx, 4))
	})

	s.Run("custom aliases replace defaults", func() {
		ev, err := NewEvaluator(s.store, WithAdminAliases([]string{"Gestor"}))
		s.Require().NoError(err)
		s.save(models.Identity{ID: 50, Role: "gestor", IsActive: true})
		s.True(ev.IsAdmin(s.ctx, 50))
		s.False(ev.IsAdmin(s.ctx, 1))
	})
}

func (s *EvaluatorSuite) TestRoleGrants() {
	s.Run("granted permission passes", func() {
		s.True(s.evaluator.HasPermission(s.ctx, 2, "teams:manage", nil))
	})

	s.Run("ungranted permission fails", func() {
		s.False(s.evaluator.HasPermission(s.ctx, 2, "permissao:gerenciar", nil))
	})

	s.Run("permission names match exactly", func() {
		s.False(s.evaluator.HasPermission(s.ctx, 2, "Teams:Manage", nil))
	})

	s.Run("identity without role has nothing", func() {
		s.False(s.evaluator.HasPermission(s.ctx, 5, "teams:manage", nil))
	})

	s.Run("inactive identity loses its role grants", func() {
		s.save(models.Identity{ID: 6, Role: "atendente", RoleID: s.roleID, TeamID: 7, IsActive: false})
		s.False(s.evaluator.HasPermission(s.ctx, 6, "teams:manage", nil))
		s.False(s.evaluator.BelongsToTeam(s.ctx, 6, 7))
	})

	s.Run("unknown identity is denied", func() {
		s.False(s.evaluator.HasPermission(s.ctx, 999, "teams:manage", nil))
		s.False(s.evaluator.HasPermission(s.ctx, 0, "teams:manage", nil))
	})
}

func (s *EvaluatorSuite) TestAccessContext() {
	s.Run("team mismatch denies a granted permission", func() {
		s.False(s.evaluator.HasPermission(s.ctx, 2, "teams:manage", &models.AccessContext{TeamID: 8}))
	})

	s.Run("matching team passes", func() {
		s.True(s.evaluator.HasPermission(s.ctx, 2, "teams:manage", &models.AccessContext{TeamID: 7}))
	})

	s.Run("data key mismatch denies", func() {
		s.False(s.evaluator.HasPermission(s.ctx, 2, "teams:manage", &models.AccessContext{DataKey: "sec-b"}))
	})

	s.Run("data key match passes", func() {
		s.True(s.evaluator.HasPermission(s.ctx, 2, "teams:manage", &models.AccessContext{DataKey: "sec-a"}))
	})

	s.Run("identity without data key is unrestricted", func() {
		s.True(s.evaluator.HasPermission(s.ctx, 3, "teams:manage", &models.AccessContext{DataKey: "sec-b"}))
	})

	s.Run("empty context data key is unrestricted", func() {
		s.True(s.evaluator.HasPermission(s.ctx, 2, "teams:manage", &models.AccessContext{}))
	})
}

func (s *EvaluatorSuite) TestAnyAndAll() {
	s.True(s.evaluator.HasAnyPermission(s.ctx, 2, []string{"x:y", "teams:manage"}, nil))
	s.False(s.evaluator.HasAnyPermission(s.ctx, 2, []string{"x:y", "z:w"}, nil))
	s.False(s.evaluator.HasAnyPermission(s.ctx, 2, nil, nil))

	s.True(s.evaluator.HasAllPermissions(s.ctx, 2, []string{"teams:manage", "conversas:atribuir"}, nil))
	s.False(s.evaluator.HasAllPermissions(s.ctx, 2, []string{"teams:manage", "x:y"}, nil))
	s.True(s.evaluator.HasAllPermissions(s.ctx, 2, nil, nil))
	s.False(s.evaluator.HasAllPermissions(s.ctx, 999, nil, nil))
}

func (s *EvaluatorSuite) TestBelongsToTeam() {
	s.True(s.evaluator.BelongsToTeam(s.ctx, 2, 7))
	s.False(s.evaluator.BelongsToTeam(s.ctx, 2, 8))
	s.False(s.evaluator.BelongsToTeam(s.ctx, 999, 7))

	s.Run("secondary memberships are not consulted", func() {
		s.save(models.Identity{ID: 60, Role: "atendente", TeamID: 7, TeamIDs: []id.TeamID{7, 8}, IsActive: true})
		s.False(s.evaluator.BelongsToTeam(s.ctx, 60, 8))
	})
}

func (s *EvaluatorSuite) TestGetUserPermissions() {
	s.Run("admin gets wildcard", func() {
		perms, err := s.evaluator.GetUserPermissions(s.ctx, 1)
		s.Require().NoError(err)
		s.Equal([]string{AdminSentinel}, perms)
	})

	s.Run("role permissions are flattened", func() {
		perms, err := s.evaluator.GetUserPermissions(s.ctx, 2)
		s.Require().NoError(err)
		s.Equal([]string{"conversas:atribuir", "teams:manage"}, perms)
	})

	s.Run("unknown identity is not found", func() {
		_, err := s.evaluator.GetUserPermissions(s.ctx, 999)
		s.Error(err)
	})
}

// =============================================================================
// Fail-closed and short-circuit behaviour against mocks
// =============================================================================

type EvaluatorMockSuite struct {
	suite.Suite
	ctrl      *gomock.Controller
	store     *mocks.MockPermissionStore
	publisher *mocks.MockAuditPublisher
	evaluator *Evaluator
	ctx       context.Context
}

func TestEvaluatorMockSuite(t *testing.T) {
	suite.Run(t, new(EvaluatorMockSuite))
}

func (s *EvaluatorMockSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.store = mocks.NewMockPermissionStore(s.ctrl)
	s.publisher = mocks.NewMockAuditPublisher(s.ctrl)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s.evaluator, _ = NewEvaluator(s.store, WithLogger(logger), WithAuditPublisher(s.publisher))
	s.ctx = context.Background()
}

func (s *EvaluatorMockSuite) TearDownTest() {
	s.ctrl.Finish()
}

func (s *EvaluatorMockSuite) agent() *models.Identity {
	return &models.Identity{ID: 2, Role: "atendente", RoleID: 3, TeamID: 7, IsActive: true}
}

func (s *EvaluatorMockSuite) TestNew() {
	_, err := NewEvaluator(nil)
	s.Error(err)
	s.Contains(err.Error(), "permission store is required")
}

func (s *EvaluatorMockSuite) TestIdentityLookupFailureDenies() {
	s.store.EXPECT().FindIdentity(gomock.Any(), id.IdentityID(2)).Return(nil, errors.New("db down"))
	s.False(s.evaluator.HasPermission(s.ctx, 2, "teams:manage", nil))
}

func (s *EvaluatorMockSuite) TestPermissionLookupFailureDenies() {
	s.store.EXPECT().FindIdentity(gomock.Any(), id.IdentityID(2)).Return(s.agent(), nil)
	s.store.EXPECT().HasActivePermission(gomock.Any(), id.RoleID(3), "teams:manage").Return(false, errors.New("timeout"))
	s.False(s.evaluator.HasPermission(s.ctx, 2, "teams:manage", nil))
}

func (s *EvaluatorMockSuite) TestAnyShortCircuitsInOrder() {
	s.store.EXPECT().FindIdentity(gomock.Any(), id.IdentityID(2)).Return(s.agent(), nil)
	gomock.InOrder(
		s.store.EXPECT().HasActivePermission(gomock.Any(), id.RoleID(3), "a:first").Return(false, nil),
		s.store.EXPECT().HasActivePermission(gomock.Any(), id.RoleID(3), "b:second").Return(true, nil),
	)
	// "c:third" is never looked up
	s.True(s.evaluator.HasAnyPermission(s.ctx, 2, []string{"a:first", "b:second", "c:third"}, nil))
}

func (s *EvaluatorMockSuite) TestAllShortCircuitsOnFirstDenial() {
	s.store.EXPECT().FindIdentity(gomock.Any(), id.IdentityID(2)).Return(s.agent(), nil)
	s.store.EXPECT().HasActivePermission(gomock.Any(), id.RoleID(3), "a:first").Return(false, nil)
	s.False(s.evaluator.HasAllPermissions(s.ctx, 2, []string{"a:first", "b:second"}, nil))
}

func (s *EvaluatorMockSuite) TestAdminSkipsPermissionLookup() {
	s.store.EXPECT().FindIdentity(gomock.Any(), id.IdentityID(1)).
		Return(&models.Identity{ID: 1, Role: "Administrador", IsActive: true}, nil)
	s.True(s.evaluator.HasPermission(s.ctx, 1, "teams:manage", nil))
}

func (s *EvaluatorMockSuite) TestLogActionSwallowsErrors() {
	entry := audit.Entry{IdentityID: 2, Action: audit.ActionPermissionDenied, Result: audit.ResultFailure}
	s.publisher.EXPECT().Emit(gomock.Any(), entry).Return(errors.New("audit buffer full"))
	s.NotPanics(func() { s.evaluator.LogAction(s.ctx, entry) })
}

func (s *EvaluatorMockSuite) TestGetUserPermissionsStoreFailure() {
	s.store.EXPECT().FindIdentity(gomock.Any(), id.IdentityID(2)).Return(s.agent(), nil)
	s.store.EXPECT().ListActivePermissionNames(gomock.Any(), id.RoleID(3)).Return(nil, errors.New("db down"))
	_, err := s.evaluator.GetUserPermissions(s.ctx, 2)
	s.Error(err)
}
