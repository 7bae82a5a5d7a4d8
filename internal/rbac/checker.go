package rbac

import (
	"context"
	"strings"
)

// Checker resolves the portal's permissions ("exam:create", "attempt:*")
// for a role.
type Checker struct {
	perms map[string][]string
}

func NewChecker(rp map[string][]string) *Checker {
	if rp == nil {
		rp = RolePermissions
	}
	return &Checker{perms: rp}
}

func (c *Checker) Has(role, perm string) bool {
	for _, p := range c.perms[role] {
		if p == "*" || p == perm {
			return true
		}
		if prefix, ok := strings.CutSuffix(p, "*"); ok && strings.HasPrefix(perm, prefix) {
			return true
		}
	}
	return false
}

func (c *Checker) Any(role string, perms ...string) bool {
	for _, p := range perms {
		if c.Has(role, p) {
			return true
		}
	}
	return false
}

// OwnerOr decides access to one exam or submission. The owner and admins
// always pass; anyone else needs the override permission, if one is given.
func (c *Checker) OwnerOr(role, subject, owner, override string) bool {
	switch {
	case subject != "" && subject == owner:
		return true
	case role == RoleAdmin:
		return true
	case override != "":
		return c.Has(role, override)
	}
	return false
}

type roleKey struct{}

func WithRole(ctx context.Context, role string) context.Context {
	return context.WithValue(ctx, roleKey{}, role)
}

func RoleFromContext(ctx context.Context) string {
	s, _ := ctx.Value(roleKey{}).(string)
	return s
}

// IsAdmin reports whether the request runs with the admin role.
func IsAdmin(ctx context.Context) bool { return RoleFromContext(ctx) == RoleAdmin }

// Can reports whether the role stored in ctx holds perm.
func Can(ctx context.Context, perm string) bool {
	role := RoleFromContext(ctx)
	return role != "" && defaultChecker.Has(role, perm)
}

// CanAccess applies OwnerOr to the role stored in ctx.
func CanAccess(ctx context.Context, subject, owner, override string) bool {
	return defaultChecker.OwnerOr(RoleFromContext(ctx), subject, owner, override)
}
