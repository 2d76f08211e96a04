// Package tenancy carries the current cloud, organization, project and user
// through a context.Context for the duration of one request or sync job.
package tenancy

import "context"

// Scope is the tenancy of one logical operation.
type Scope struct {
	Cloud     string
	OrgID     string
	ProjectID string
	UserID    string
}

type scopeKey struct{}

// WithScope returns a copy of ctx carrying s.
func WithScope(ctx context.Context, s Scope) context.Context {
	return context.WithValue(ctx, scopeKey{}, s)
}

// FromContext returns the scope carried by ctx, or the zero Scope.
func FromContext(ctx context.Context) Scope {
	if s, ok := ctx.Value(scopeKey{}).(Scope); ok {
		return s
	}
	return Scope{}
}

// WithCloud returns a copy of ctx whose scope has its cloud replaced.
func WithCloud(ctx context.Context, cloud string) context.Context {
	s := FromContext(ctx)
	s.Cloud = cloud
	return WithScope(ctx, s)
}

// Cloud returns the current cloud and whether one is set.
func Cloud(ctx context.Context) (string, bool) {
	c := FromContext(ctx).Cloud
	return c, c != ""
}
