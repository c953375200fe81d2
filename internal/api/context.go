package api

import (
	"context"

	"github.com/terra-clan/portfolio/internal/models"
)

type contextKey string

const visitorContextKey contextKey = "visitor"

// VisitorFromContext extracts the visitor session from context
func VisitorFromContext(ctx context.Context) *models.Visitor {
	v, ok := ctx.Value(visitorContextKey).(*models.Visitor)
	if !ok {
		return nil
	}
	return v
}

// ContextWithVisitor adds the visitor session to context
func ContextWithVisitor(ctx context.Context, v *models.Visitor) context.Context {
	return context.WithValue(ctx, visitorContextKey, v)
}
