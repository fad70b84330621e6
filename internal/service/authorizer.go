package service

import "github.com/asfi50/jnucsu-backend/internal/domain"

// Union roles carried in the JWT role claim
const (
	RoleMember    = "member"
	RoleModerator = "moderator"
	RoleAdmin     = "admin"
)

// Actor is the authenticated caller of a state-machine operation
type Actor struct {
	ID   string
	Role string
}

// Authorizer centralizes the capability checks consulted by every
// moderation operation, instead of re-deriving them per call site.
type Authorizer interface {
	CanModerate(actor Actor) bool
	IsOwner(actor Actor, item *domain.ContentItem) bool
}

type roleAuthorizer struct{}

// NewAuthorizer creates the role-claim based Authorizer
func NewAuthorizer() Authorizer {
	return roleAuthorizer{}
}

func (roleAuthorizer) CanModerate(actor Actor) bool {
	return actor.Role == RoleModerator || actor.Role == RoleAdmin
}

func (roleAuthorizer) IsOwner(actor Actor, item *domain.ContentItem) bool {
	return actor.ID != "" && actor.ID == item.OwnerID
}
