package auth

type Decision bool

const (
	Deny  Decision = false
	Allow Decision = true
)

// Authorize allows an operation only when the caller owns the resource.
// The comparison is exact and case-sensitive.
func Authorize(resourceOwnerID, callerUserID string) Decision {
	if callerUserID == "" || resourceOwnerID != callerUserID {
		return Deny
	}
	return Allow
}
