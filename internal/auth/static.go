package auth

import (
	"context"
	"errors"
)

const (
	// LocalDevAPIKey is the hardcoded API key for local development only.
	LocalDevAPIKey = "sk_local_curio_dev_key"
)

// StaticAuthorizer resolves a fixed set of API keys to users. It backs local
// development and tests; production deployments plug in a real identity
// provider behind the same interface.
type StaticAuthorizer struct {
	keys map[string]string // apiKey -> userID
}

// NewStaticAuthorizer creates an authorizer that accepts only LocalDevAPIKey.
func NewStaticAuthorizer() *StaticAuthorizer {
	return &StaticAuthorizer{keys: map[string]string{LocalDevAPIKey: "curio-dev"}}
}

// NewStaticAuthorizerWithKeys creates an authorizer over an explicit key map.
func NewStaticAuthorizerWithKeys(keys map[string]string) *StaticAuthorizer {
	m := make(map[string]string, len(keys))
	for k, v := range keys {
		m[k] = v
	}
	return &StaticAuthorizer{keys: m}
}

// Authorize validates the API key and resolves the owning user.
func (a *StaticAuthorizer) Authorize(ctx context.Context, apiKey, operation, resource string) (*ActorInfo, error) {
	userID, ok := a.keys[apiKey]
	if !ok {
		return nil, errors.New("invalid API key")
	}
	return &ActorInfo{
		UserID:      userID,
		KeyType:     "standard",
		KeyName:     "Static Key",
		Permissions: []string{"*"},
	}, nil
}
