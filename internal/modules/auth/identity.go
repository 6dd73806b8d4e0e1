package auth

import (
	"gearvault/internal/domain"
)

// Identity turns a bearer token into the principal used by every service
// call. Deactivated accounts cannot log in again; tokens already issued
// stay valid until they expire.
type Identity struct {
	tokens tokenService
}

func NewIdentity(tokens tokenService) *Identity {
	return &Identity{tokens: tokens}
}

func (i *Identity) Verify(token string) (domain.Principal, error) {
	claims, err := i.tokens.ValidateToken(token)
	if err != nil {
		return domain.Principal{}, err
	}

	roles := make([]domain.Role, 0, len(claims.Roles))
	for _, r := range claims.Roles {
		roles = append(roles, domain.Role(r))
	}
	return domain.Principal{UserID: claims.UserID, Roles: roles}, nil
}
