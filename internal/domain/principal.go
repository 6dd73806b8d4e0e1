package domain

type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// Principal is the verified caller of a single operation.
type Principal struct {
	UserID int64
	Roles  []Role
}

func (p Principal) IsZero() bool {
	return p.UserID == 0
}

func (p Principal) HasRole(role Role) bool {
	for _, r := range p.Roles {
		if r == role {
			return true
		}
	}
	return false
}
