package auth

import "errors"

// ErrPermissionDenied indicates the acting identity does not own the
// target resource.
var ErrPermissionDenied = errors.New("not enough permission")

// Authorize decides whether the identity may mutate a resource owned by
// ownerID. Ownership equals self-identity exclusively; there is no role
// system. Pure decision, no I/O.
func Authorize(identity *Identity, ownerID int64) error {
	if identity == nil || identity.ID != ownerID {
		return ErrPermissionDenied
	}
	return nil
}
