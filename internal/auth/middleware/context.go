package auth

import "context"

// subjectKey is unexported so only this package can write the subject.
type subjectKey struct{}

// WithSubject stores the authenticated user ID for downstream handlers.
func WithSubject(ctx context.Context, sub string) context.Context {
	return context.WithValue(ctx, subjectKey{}, sub)
}

// SubjectFromContext returns the authenticated user ID, or "" when the
// request never passed JWTMiddleware.
func SubjectFromContext(ctx context.Context) string {
	s, _ := ctx.Value(subjectKey{}).(string)
	return s
}
