package users

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/stockbook-app/stockbook/internal/perms"
	"github.com/stockbook-app/stockbook/internal/shared"
)

// RepositoryPort defines data access methods for user administration.
type RepositoryPort interface {
	ListProfiles(ctx context.Context) ([]ProfileRow, error)
	ListRoles(ctx context.Context) ([]RoleRow, error)
	ListPermissions(ctx context.Context) ([]PermissionRow, error)
	UpsertRole(ctx context.Context, userID, role string) error
	UpsertFlags(ctx context.Context, userID string, flags Flags) error
}

// Service handles user administration logic.
type Service struct {
	repo   RepositoryPort
	audit  *shared.AuditLogger
	logger *slog.Logger
}

// NewService builds Service instance. audit may be nil in tests.
func NewService(repo RepositoryPort, audit *shared.AuditLogger, logger *slog.Logger) *Service {
	return &Service{repo: repo, audit: audit, logger: logger}
}

// List merges profiles, roles and permission flags into the administration
// view. The three tables are fetched concurrently; missing role rows default
// to "user" and missing permission rows to all-false, matching the
// resolver's defaults.
func (s *Service) List(ctx context.Context) ([]Account, error) {
	var (
		profiles []ProfileRow
		roles    []RoleRow
		flags    []PermissionRow
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		profiles, err = s.repo.ListProfiles(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		roles, err = s.repo.ListRoles(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		flags, err = s.repo.ListPermissions(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	roleByUser := make(map[string]string, len(roles))
	for _, r := range roles {
		roleByUser[r.UserID] = r.Role
	}
	flagsByUser := make(map[string]PermissionRow, len(flags))
	for _, f := range flags {
		flagsByUser[f.UserID] = f
	}

	accounts := make([]Account, 0, len(profiles))
	for _, p := range profiles {
		role, ok := roleByUser[p.ID]
		if !ok {
			role = perms.RoleUser
		}
		f := flagsByUser[p.ID]
		accounts = append(accounts, Account{
			ID:        p.ID,
			Email:     p.Email,
			FullName:  p.FullName,
			Role:      role,
			CanAdd:    f.CanAdd,
			CanEdit:   f.CanEdit,
			CanDelete: f.CanDelete,
			IsBlocked: f.IsBlocked,
		})
	}
	return accounts, nil
}

// SetRole promotes or demotes a user.
func (s *Service) SetRole(ctx context.Context, actorID, userID, role string) error {
	if role != perms.RoleAdmin && role != perms.RoleUser {
		return fmt.Errorf("%w: unknown role %q", shared.ErrValidation, role)
	}
	if userID == "" {
		return fmt.Errorf("%w: user id required", shared.ErrValidation)
	}
	if err := s.repo.UpsertRole(ctx, userID, role); err != nil {
		return err
	}
	s.recordAudit(ctx, actorID, "user.set_role", userID, map[string]any{"role": role})
	return nil
}

// SetFlags replaces the stored permission flags for a user.
func (s *Service) SetFlags(ctx context.Context, actorID, userID string, flags Flags) error {
	if userID == "" {
		return fmt.Errorf("%w: user id required", shared.ErrValidation)
	}
	if err := s.repo.UpsertFlags(ctx, userID, flags); err != nil {
		return err
	}
	s.recordAudit(ctx, actorID, "user.set_permissions", userID, map[string]any{
		"can_add":    flags.CanAdd,
		"can_edit":   flags.CanEdit,
		"can_delete": flags.CanDelete,
		"is_blocked": flags.IsBlocked,
	})
	return nil
}

func (s *Service) recordAudit(ctx context.Context, actorID, action, userID string, meta map[string]any) {
	if s.audit == nil {
		return
	}
	err := s.audit.Record(ctx, shared.AuditLog{
		ActorID:  actorID,
		Action:   action,
		Entity:   "user",
		EntityID: userID,
		Meta:     meta,
	})
	if err != nil && s.logger != nil {
		s.logger.Warn("record audit", slog.String("action", action), slog.Any("error", err))
	}
}
