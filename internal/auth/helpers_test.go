package auth

import (
	"context"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractAPIKey(t *testing.T) {
	r := httptest.NewRequest("GET", "/", nil)
	_, err := ExtractAPIKey(r)
	assert.Error(t, err, "missing header must fail")

	r.Header.Set("Authorization", "Token abc")
	_, err = ExtractAPIKey(r)
	assert.Error(t, err, "non-bearer scheme must fail")

	r.Header.Set("Authorization", "Bearer sk_test_123")
	key, err := ExtractAPIKey(r)
	require.NoError(t, err)
	assert.Equal(t, "sk_test_123", key)
}

func TestStaticAuthorizer(t *testing.T) {
	a := NewStaticAuthorizerWithKeys(map[string]string{"sk_k1": "user-1"})

	actor, err := a.Authorize(context.Background(), "sk_k1", "write", "collections")
	require.NoError(t, err)
	assert.Equal(t, "user-1", actor.UserID)

	_, err = a.Authorize(context.Background(), "sk_bogus", "write", "collections")
	assert.Error(t, err)
}

func TestActorContextRoundTrip(t *testing.T) {
	ctx := WithActor(context.Background(), &ActorInfo{UserID: "u1"})
	actor := ActorFromContext(ctx)
	require.NotNil(t, actor)
	assert.Equal(t, "u1", actor.UserID)

	assert.Nil(t, ActorFromContext(context.Background()))
}
