package commands

import (
	"context"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"
	"time"

	application "ijaism/contexts/editorial-workflow/manuscript-service/application"
	"ijaism/contexts/editorial-workflow/manuscript-service/domain/entities"
	domainerrors "ijaism/contexts/editorial-workflow/manuscript-service/domain/errors"
	"ijaism/contexts/editorial-workflow/manuscript-service/domain/services"
	"ijaism/contexts/editorial-workflow/manuscript-service/ports"
	contractsv1 "ijaism/contracts/gen/events/v1"
)

type CreateUserCommand struct {
	ActorID  string
	Email    string
	FullName string
	Role     string
}

type CreateUserUseCase struct {
	Users  ports.UserRepository
	Clock  ports.Clock
	IDGen  ports.IDGenerator
	Logger *slog.Logger
}

func (uc CreateUserUseCase) Execute(ctx context.Context, cmd CreateUserCommand) (entities.User, error) {
	logger := application.ResolveLogger(uc.Logger)
	access := application.AccessResolver{Users: uc.Users}
	actor, err := access.Principal(ctx, cmd.ActorID)
	if err != nil {
		return entities.User{}, err
	}
	role, ok := entities.ParseRole(cmd.Role)
	if !ok {
		return entities.User{}, fmt.Errorf("%w: unknown role %q", domainerrors.ErrValidation, cmd.Role)
	}
	if !services.CanAssignRole(actor, "", "", role) {
		return entities.User{}, domainerrors.ErrAuthorization
	}
	user, audit, err := newUser(ctx, uc.IDGen, uc.Clock.Now(), cmd.Email, cmd.FullName, role, actor.UserID)
	if err != nil {
		return entities.User{}, err
	}
	if err := uc.Users.CreateUser(ctx, user, &audit); err != nil {
		return entities.User{}, err
	}
	logger.Info("user created",
		"event", "user_created",
		"module", "editorial-workflow/manuscript-service",
		"layer", "application",
		"user_id", user.UserID,
		"role", string(user.Role),
		"actor_id", actor.UserID,
	)
	return user, nil
}

func newUser(
	ctx context.Context,
	ids ports.IDGenerator,
	now time.Time,
	email string,
	fullName string,
	role entities.Role,
	createdBy string,
) (entities.User, entities.RoleChangeAudit, error) {
	address, err := mail.ParseAddress(strings.TrimSpace(email))
	if err != nil {
		return entities.User{}, entities.RoleChangeAudit{}, fmt.Errorf("%w: email is invalid", domainerrors.ErrValidation)
	}
	if strings.TrimSpace(fullName) == "" {
		return entities.User{}, entities.RoleChangeAudit{}, fmt.Errorf("%w: full name is required", domainerrors.ErrValidation)
	}
	userID, err := ids.NewID(ctx)
	if err != nil {
		return entities.User{}, entities.RoleChangeAudit{}, err
	}
	auditID, err := ids.NewID(ctx)
	if err != nil {
		return entities.User{}, entities.RoleChangeAudit{}, err
	}
	now = now.UTC()
	user := entities.User{
		UserID:    userID,
		Email:     strings.ToLower(address.Address),
		FullName:  strings.TrimSpace(fullName),
		Role:      role,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	audit := entities.RoleChangeAudit{
		AuditID:   auditID,
		UserID:    userID,
		NewRole:   role,
		ChangedBy: createdBy,
		ChangedAt: now,
	}
	return user, audit, nil
}

type ChangeRoleCommand struct {
	ActorID string
	UserID  string
	Role    string
}

type ChangeRoleUseCase struct {
	Users  ports.UserRepository
	Clock  ports.Clock
	IDGen  ports.IDGenerator
	Logger *slog.Logger
}

func (uc ChangeRoleUseCase) Execute(ctx context.Context, cmd ChangeRoleCommand) (entities.User, error) {
	logger := application.ResolveLogger(uc.Logger)
	access := application.AccessResolver{Users: uc.Users}
	actor, err := access.Principal(ctx, cmd.ActorID)
	if err != nil {
		return entities.User{}, err
	}
	role, ok := entities.ParseRole(cmd.Role)
	if !ok {
		return entities.User{}, fmt.Errorf("%w: unknown role %q", domainerrors.ErrValidation, cmd.Role)
	}
	target, err := uc.Users.GetUser(ctx, strings.TrimSpace(cmd.UserID))
	if err != nil {
		return entities.User{}, err
	}
	if !services.CanAssignRole(actor, target.UserID, target.Role, role) {
		logger.Warn("role change denied",
			"event", "user_role_change_denied",
			"module", "editorial-workflow/manuscript-service",
			"layer", "application",
			"actor_id", actor.UserID,
			"actor_role", string(actor.Role),
			"user_id", target.UserID,
			"current_role", string(target.Role),
			"requested_role", string(role),
		)
		return entities.User{}, domainerrors.ErrAuthorization
	}
	if target.Role == role {
		return target, nil
	}

	now := uc.Clock.Now().UTC()
	auditID, err := uc.IDGen.NewID(ctx)
	if err != nil {
		return entities.User{}, err
	}
	audit := entities.RoleChangeAudit{
		AuditID:      auditID,
		UserID:       target.UserID,
		PreviousRole: target.Role,
		NewRole:      role,
		ChangedBy:    actor.UserID,
		ChangedAt:    now,
	}
	eventID, err := uc.IDGen.NewID(ctx)
	if err != nil {
		return entities.User{}, err
	}
	event, err := newEditorialEnvelope(eventID, contractsv1.EventUserRoleChanged, "user_id", target.UserID, now, map[string]any{
		"user_id":       target.UserID,
		"previous_role": string(target.Role),
		"new_role":      string(role),
		"changed_by":    actor.UserID,
		"changed_at":    now.Format(time.RFC3339),
	})
	if err != nil {
		return entities.User{}, err
	}
	if err := uc.Users.ChangeRole(ctx, audit, []ports.EventEnvelope{event}); err != nil {
		return entities.User{}, err
	}

	target.Role = role
	target.UpdatedAt = now
	logger.Info("user role changed",
		"event", "user_role_changed",
		"module", "editorial-workflow/manuscript-service",
		"layer", "application",
		"user_id", target.UserID,
		"previous_role", string(audit.PreviousRole),
		"new_role", string(role),
		"actor_id", actor.UserID,
	)
	return target, nil
}

// BootstrapAdminUseCase creates the first mother_admin so a fresh
// deployment has someone who can create the remaining accounts.
type BootstrapAdminUseCase struct {
	Users  ports.UserRepository
	Clock  ports.Clock
	IDGen  ports.IDGenerator
	Logger *slog.Logger
}

func (uc BootstrapAdminUseCase) Execute(ctx context.Context, email string, fullName string) (entities.User, bool, error) {
	logger := application.ResolveLogger(uc.Logger)
	admins, err := uc.Users.ListUsers(ctx, ports.UserFilter{Role: entities.RoleMotherAdmin})
	if err != nil {
		return entities.User{}, false, err
	}
	if len(admins) > 0 {
		return admins[0], false, nil
	}
	if strings.TrimSpace(fullName) == "" {
		fullName = "Mother Admin"
	}
	user, audit, err := newUser(ctx, uc.IDGen, uc.Clock.Now(), email, fullName, entities.RoleMotherAdmin, "system")
	if err != nil {
		return entities.User{}, false, err
	}
	if err := uc.Users.CreateUser(ctx, user, &audit); err != nil {
		return entities.User{}, false, err
	}
	logger.Info("bootstrap admin created",
		"event", "user_bootstrap_admin_created",
		"module", "editorial-workflow/manuscript-service",
		"layer", "application",
		"user_id", user.UserID,
	)
	return user, true, nil
}
