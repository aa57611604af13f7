package auth

import (
	"context"
)

// ActorInfo describes an authenticated caller.
type ActorInfo struct {
	UserID      string   `json:"user_id"`
	KeyType     string   `json:"key_type"` // 'standard', 'admin'
	KeyName     string   `json:"key_name"`
	Permissions []string `json:"permissions"`
}

// Authorizer validates API keys and checks permissions in one call.
// Session mechanics live with the external identity provider; this interface
// is the only contract the backend depends on.
type Authorizer interface {
	// Authorize validates the API key and checks whether the caller may
	// perform operation on resource. Returns ActorInfo when authorized.
	Authorize(ctx context.Context, apiKey, operation, resource string) (*ActorInfo, error)
}
