package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"vibex-storefront/internal/models"
)

// Claims is what the storefront reads out of an access token. The signature
// is verified by the gateway, not here.
type Claims struct {
	UserID    string    `json:"userId"`
	Email     string    `json:"email"`
	Roles     []string  `json:"roles"`
	ExpiresAt time.Time `json:"expiresAt"`
}

var ErrMalformedToken = errors.New("malformed access token")

func ParseClaims(token string) (*Claims, error) {
	mc := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, mc); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedToken, err)
	}

	claims := &Claims{
		UserID: firstString(mc, "userId", "id", "uid"),
		Email:  firstString(mc, "email"),
		Roles:  normalizeRoles(mc),
	}
	if claims.UserID == "" {
		claims.UserID = firstString(mc, "sub")
	}
	if claims.Email == "" {
		if sub := firstString(mc, "sub"); strings.Contains(sub, "@") {
			claims.Email = sub
		}
	}
	if exp, err := mc.GetExpirationTime(); err == nil && exp != nil {
		claims.ExpiresAt = exp.Time
	}
	return claims, nil
}

// IsExpired reports whether the token's exp has passed. Tokens without exp never expire here.
func (c *Claims) IsExpired(now time.Time) bool {
	return !c.ExpiresAt.IsZero() && !now.Before(c.ExpiresAt)
}

func (c *Claims) HasRole(role string) bool {
	for _, r := range c.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// PrimaryRole maps roles to the storefront area to show: Admin wins over User,
// otherwise the first role without its ROLE_ prefix. Empty when there are no roles.
func PrimaryRole(roles []string) string {
	if len(roles) == 0 {
		return ""
	}
	for _, r := range roles {
		if r == models.RoleAdmin || strings.Contains(r, "ADMIN") {
			return "Admin"
		}
	}
	for _, r := range roles {
		if r == models.RoleUser || strings.Contains(r, "USER") {
			return "User"
		}
	}
	return strings.TrimPrefix(roles[0], "ROLE_")
}

func firstString(mc jwt.MapClaims, keys ...string) string {
	for _, k := range keys {
		switch v := mc[k].(type) {
		case string:
			if v != "" {
				return v
			}
		case float64:
			return fmt.Sprintf("%.0f", v)
		}
	}
	return ""
}

// normalizeRoles reads roles, authorities or role and prefixes each with ROLE_.
func normalizeRoles(mc jwt.MapClaims) []string {
	var raw []string
	switch {
	case isList(mc["roles"]):
		raw = roleList(mc["roles"])
	case isList(mc["authorities"]):
		raw = roleList(mc["authorities"])
	default:
		if r, ok := mc["role"].(string); ok && r != "" {
			raw = []string{r}
		}
	}

	seen := make(map[string]bool, len(raw))
	roles := make([]string, 0, len(raw))
	for _, r := range raw {
		if r == "" {
			continue
		}
		if !strings.HasPrefix(r, "ROLE_") {
			r = "ROLE_" + strings.ToUpper(r)
		}
		if !seen[r] {
			seen[r] = true
			roles = append(roles, r)
		}
	}
	return roles
}

func isList(v any) bool {
	_, ok := v.([]any)
	return ok
}

// roleList accepts plain strings and {"authority": "..."} objects.
func roleList(v any) []string {
	items, _ := v.([]any)
	out := make([]string, 0, len(items))
	for _, item := range items {
		switch r := item.(type) {
		case string:
			out = append(out, r)
		case map[string]any:
			if a, ok := r["authority"].(string); ok {
				out = append(out, a)
			}
		}
	}
	return out
}
