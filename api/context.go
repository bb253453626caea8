package api

import (
	"context"

	"github.com/rpupo63/builders-showcase-backend/errs"
	"github.com/rpupo63/builders-showcase-backend/models"
)

type keyType string

const (
	externalUserIDKey keyType = "externalUserID"
	builderKey        keyType = "builder"
)

// ctxWithIdentity stores the identity provider's user id and the builder it maps to.
func ctxWithIdentity(ctx context.Context, externalUserID string, builder *models.Builder) context.Context {
	ctx = context.WithValue(ctx, externalUserIDKey, externalUserID)
	return context.WithValue(ctx, builderKey, builder)
}

// ctxGetBuilder returns the signed in builder, or nil for anonymous requests.
func ctxGetBuilder(ctx context.Context) *models.Builder {
	builder, _ := ctx.Value(builderKey).(*models.Builder)
	return builder
}

// ctxRequireBuilder is ctxGetBuilder for routes behind authenticate.
func ctxRequireBuilder(ctx context.Context) (*models.Builder, error) {
	if builder := ctxGetBuilder(ctx); builder != nil {
		return builder, nil
	}
	return nil, errs.Unauthorized
}
