package authentication

import (
	"context"

	"github.com/miguelfer1410/cdp-sub001/shared"
)

// ClaimsFromContext returns the decoded token claims, or nil when the
// request never went through the Roles middleware.
func ClaimsFromContext(ctx context.Context) map[string]interface{} {
	claims, ok := ctx.Value("claims").(map[string]interface{})
	if !ok {
		return nil
	}
	return claims
}

// CallerIdFromContext identifies the member behind the request. Admins get
// an empty id, which the services treat as not ownership-scoped.
func CallerIdFromContext(ctx context.Context) string {
	claims := ClaimsFromContext(ctx)
	if claims == nil {
		return ""
	}
	if isAdmin, ok := claims[shared.ROLE_ADMIN].(bool); ok && isAdmin {
		return ""
	}
	memberId, _ := claims["memberId"].(string)
	return memberId
}
