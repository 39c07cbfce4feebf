package services

import "context"

// Actor identifies the authenticated caller on whose behalf a service
// operation runs. OrganisationID is set for accessor roles only.
type Actor struct {
	UserID         int
	RoleID         int
	OrganisationID *string
}

func persistentContext(ctx context.Context) context.Context {
	if ctx == nil {
		return context.Background()
	}
	return context.WithoutCancel(ctx)
}
