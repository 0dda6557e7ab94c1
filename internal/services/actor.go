package services

import (
	"slices"

	"github.com/yukikurage/task-hierarchy-api/internal/models"
)

// Actor is the resolved identity a request acts as.
type Actor struct {
	ID        uint64
	Role      models.Role
	ManagerID *uint64
}

// ActorFromUser builds an Actor from a stored user.
func ActorFromUser(u *models.User) Actor {
	return Actor{ID: u.ID, Role: u.Role, ManagerID: u.ManagerID}
}

// Require fails with ErrRoleNotPermitted unless the actor holds one of roles.
func (a Actor) Require(roles ...models.Role) error {
	if slices.Contains(roles, a.Role) {
		return nil
	}
	return ErrRoleNotPermitted
}

func (a Actor) IsDirector() bool { return a.Role == models.RoleDirector }
func (a Actor) IsManager() bool  { return a.Role == models.RoleManager }
