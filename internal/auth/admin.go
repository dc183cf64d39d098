package auth

import (
	"context"
	"fmt"

	"kukacrm/internal/logging"
	"kukacrm/internal/types"
)

// UserStore is the slice of the record store user management needs.
type UserStore interface {
	UserLister
	CreateUser(ctx context.Context, in types.UserInput) (types.User, error)
	DeleteUser(ctx context.Context, id string) error
}

// UserAdmin performs user management on behalf of an admin session.
type UserAdmin struct {
	session *Session
	store   UserStore
}

// NewUserAdmin binds user management to session.
func NewUserAdmin(session *Session, store UserStore) *UserAdmin {
	return &UserAdmin{session: session, store: store}
}

// List returns every user.
func (a *UserAdmin) List(ctx context.Context) ([]types.User, error) {
	if _, err := a.session.Require(types.RoleAdmin); err != nil {
		return nil, err
	}
	return a.store.ListUsers(ctx)
}

// Add creates a user. Username and password are required.
func (a *UserAdmin) Add(ctx context.Context, in types.UserInput) (types.User, error) {
	if _, err := a.session.Require(types.RoleAdmin); err != nil {
		return types.User{}, err
	}
	user, err := a.store.CreateUser(ctx, in)
	if err != nil {
		return types.User{}, err
	}
	a.session.Audit().Event(logging.AuditUserCreate, user.ID, true)
	return user, nil
}

// Delete removes the user with id after the delete guard allows it.
// Unknown ids yield a *types.NotFoundError.
func (a *UserAdmin) Delete(ctx context.Context, id string) error {
	if _, err := a.session.Require(types.RoleAdmin); err != nil {
		return err
	}

	users, err := a.store.ListUsers(ctx)
	if err != nil {
		return err
	}
	var target *types.User
	for i := range users {
		if users[i].ID == id {
			target = &users[i]
			break
		}
	}
	if target == nil {
		return &types.NotFoundError{Kind: "usuário", Key: id}
	}

	if err := GuardDeleteUser(target.Username).Err(); err != nil {
		logging.AuthWarn("Blocked deletion of %s (%s)", target.Username, target.ID)
		a.session.Audit().Event(logging.AuditGuardBlock, target.ID, false)
		return fmt.Errorf("não é possível excluir o administrador principal: %w", err)
	}

	if err := a.store.DeleteUser(ctx, id); err != nil {
		return err
	}
	logging.Auth("Deleted user %s (%s)", target.Username, target.ID)
	a.session.Audit().Event(logging.AuditUserDelete, target.ID, true)
	return nil
}
