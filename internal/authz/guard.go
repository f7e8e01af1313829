// Package authz holds the ownership and role rules applied before any
// mutation or restricted read.
package authz

import (
	"quill/internal/errs"
	"quill/internal/models"
)

// Principal is the authenticated caller.
type Principal struct {
	ID   uint
	Role models.Role
}

func (p *Principal) IsAdmin() bool { return p != nil && p.Role == models.RoleAdmin }

// Owned is implemented by resources with an owning user.
// ok is false for resources nobody owns, such as guest comments.
type Owned interface {
	OwnerID() (id uint, ok bool)
}

// CanMutate is the ownership predicate: admins may mutate anything,
// everyone else only what they own.
func CanMutate(res Owned, p *Principal) bool {
	if p == nil {
		return false
	}
	if p.Role == models.RoleAdmin {
		return true
	}
	owner, ok := res.OwnerID()
	return ok && owner == p.ID
}

// RequirePrincipal fails with Unauthenticated when there is no caller.
func RequirePrincipal(p *Principal) error {
	if p == nil {
		return errs.Unauthenticated("Not authorized to access this route")
	}
	return nil
}

// AuthorizeMutation applies CanMutate and reports the failure kind.
func AuthorizeMutation(res Owned, p *Principal, what string) error {
	if err := RequirePrincipal(p); err != nil {
		return err
	}
	if !CanMutate(res, p) {
		return errs.Forbidden("Not authorized to modify this " + what)
	}
	return nil
}

// AuthorizeAuthorListing allows listing a user's posts to that user and admins.
func AuthorizeAuthorListing(target uint, p *Principal) error {
	if err := RequirePrincipal(p); err != nil {
		return err
	}
	if p.ID != target && p.Role != models.RoleAdmin {
		return errs.Forbidden("Not authorized to view these posts")
	}
	return nil
}

// RequireRole fails unless the caller holds one of roles.
func RequireRole(p *Principal, roles ...models.Role) error {
	if err := RequirePrincipal(p); err != nil {
		return err
	}
	for _, r := range roles {
		if p.Role == r {
			return nil
		}
	}
	return errs.Forbidden("User role " + string(p.Role) + " is not authorized to access this route")
}

// CanView reports whether p may read a post that is not published.
func CanView(post *models.Post, p *Principal) bool {
	return post.IsPublished() || CanMutate(post, p)
}
