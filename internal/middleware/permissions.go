package middleware

// Resource is anything whose access can be gated on an owning identity.
type Resource interface {
	OwnerID() string
}

// Authorizer decides whether a caller may act on a resource.
type Authorizer interface {
	Authorize(callerID string, resource Resource) bool
}

// AuthenticatedOnly permits any authenticated caller, regardless of the
// resource. Doctor and mapping mutation is deliberately this permissive:
// any logged-in account may edit any row.
type AuthenticatedOnly struct{}

func (AuthenticatedOnly) Authorize(callerID string, _ Resource) bool {
	return callerID != ""
}

// OwnerOnly permits only the caller whose identity owns the resource.
type OwnerOnly struct{}

func (OwnerOnly) Authorize(callerID string, resource Resource) bool {
	if callerID == "" || resource == nil {
		return false
	}
	return resource.OwnerID() == callerID
}
