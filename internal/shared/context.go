package shared

import "context"

type companyContextKey struct{}

// ContextWithCompany stores the active company scope in context.
func ContextWithCompany(ctx context.Context, companyID string) context.Context {
	return context.WithValue(ctx, companyContextKey{}, companyID)
}

// CompanyFromContext extracts the active company scope from context.
func CompanyFromContext(ctx context.Context) string {
	id, _ := ctx.Value(companyContextKey{}).(string)
	return id
}
