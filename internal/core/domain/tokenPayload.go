package domain

type UserRole string

const (
	Admin   UserRole = "admin"
	AppUser UserRole = "appuser"
)

// TokenPayload is what the identity provider vouches for.
type TokenPayload struct {
	UserID string
	Role   UserRole
}

// CanAccess reports whether the caller may touch data owned by ownerID.
func (p *TokenPayload) CanAccess(ownerID string) bool {
	return p.Role == Admin || p.UserID == ownerID
}
