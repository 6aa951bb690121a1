package security

import (
	"strings"

	"contest_arena/internal/common"
	"contest_arena/internal/domain/model"
)

const bearerPrefix = "Bearer "

// Guard resolves callers from an Authorization header and gates them by role.
type Guard struct {
	tokens *TokenManager
}

func NewGuard(tokens *TokenManager) *Guard {
	return &Guard{tokens: tokens}
}

// Authenticate returns the caller behind header. A missing header, a scheme
// other than Bearer, and any verification failure all yield the same
// common.ErrUnauthorized.
func (g *Guard) Authenticate(header string) (model.Identity, error) {
	if !strings.HasPrefix(header, bearerPrefix) {
		return model.Identity{}, common.ErrUnauthorized
	}
	token := strings.TrimSpace(header[len(bearerPrefix):])
	userID, role, err := g.tokens.Verify(token)
	if err != nil {
		return model.Identity{}, common.ErrUnauthorized
	}
	return model.Identity{UserID: userID, Role: role}, nil
}

// RequireRole is the second-stage check that runs after authentication.
func RequireRole(id model.Identity, role string) error {
	if id.UserID == "" {
		return common.ErrUnauthorized
	}
	if id.Role != role {
		return common.Errorf("role %q required: %w", role, common.ErrForbidden)
	}
	return nil
}
