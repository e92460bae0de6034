package parties

import (
	"github.com/bananalabs-oss/lobby/internal/models"
	"github.com/google/uuid"
)

// Principal is the acting user. Admin is set only by the router's admin guard
// after it has read users.is_admin from the store.
type Principal struct {
	ID    uuid.UUID
	Admin bool
}

func Member(id uuid.UUID) Principal {
	return Principal{ID: id}
}

// authorize is the single leader-or-admin check for kick and promote. It must
// run before any write of the operation.
func authorize(party *models.Party, actor Principal, denied error) error {
	if actor.Admin || actor.ID == party.LeaderID {
		return nil
	}
	return denied
}
