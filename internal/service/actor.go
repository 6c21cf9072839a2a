package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/sgt-project/sgt-api/internal/domain"
	"github.com/sgt-project/sgt-api/internal/domain/access"
	"github.com/sgt-project/sgt-api/internal/store"
)

// Actor is the authenticated user performing an operation. The identity
// collaborator (JWT middleware) builds one per request; services never
// authenticate, they only authorize.
type Actor struct {
	ID       uuid.UUID
	Username string
	Role     domain.Role
}

// Access converts the actor to the shape the permission evaluator takes.
func (a Actor) Access() access.Actor {
	return access.Actor{ID: a.ID, Role: a.Role}
}

// resolveMembership computes the actor's relationship to a board. The
// owner check is structural; the assignment check hits the store.
func resolveMembership(ctx context.Context, boards store.BoardStore, board *domain.Board, actor Actor) (access.Membership, error) {
	m := access.Membership{IsOwner: board.OwnerID == actor.ID}
	if m.IsOwner {
		return m, nil
	}
	assigned, err := boards.IsAssigned(ctx, board.ID, actor.ID)
	if err != nil {
		return access.Membership{}, err
	}
	m.IsAssigned = assigned
	return m, nil
}
