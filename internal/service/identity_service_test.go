package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/boatmemories/backend/internal/models"
)

func TestCreateAnonymousAndResolve(t *testing.T) {
	ctx := context.Background()
	identities := newFakeIdentityStore()
	svc := NewIdentityService(identities, newFakeMemoryStore(), "test-secret")

	identity, token, err := svc.CreateAnonymous(ctx)
	require.NoError(t, err)
	require.True(t, identity.Anonymous)
	require.NotEmpty(t, token)

	resolved, err := svc.Resolve(ctx, token)
	require.NoError(t, err)
	require.Equal(t, identity.ID, resolved.ID)
}

func TestResolveRejectsBadTokens(t *testing.T) {
	ctx := context.Background()
	svc := NewIdentityService(newFakeIdentityStore(), newFakeMemoryStore(), "test-secret")
	other := NewIdentityService(newFakeIdentityStore(), newFakeMemoryStore(), "other-secret")

	_, token, err := other.CreateAnonymous(ctx)
	require.NoError(t, err)

	_, err = svc.Resolve(ctx, token)
	require.ErrorIs(t, err, ErrValidation)
	_, err = svc.Resolve(ctx, "not-a-jwt")
	require.ErrorIs(t, err, ErrValidation)
}

func TestUpgradeSetsEmailAndMergesMemories(t *testing.T) {
	ctx := context.Background()
	identities := newFakeIdentityStore()
	memories := newFakeMemoryStore()
	svc := NewIdentityService(identities, memories, "test-secret")

	primary, _, err := svc.CreateAnonymous(ctx)
	require.NoError(t, err)
	secondary, secondaryToken, err := svc.CreateAnonymous(ctx)
	require.NoError(t, err)

	require.NoError(t, memories.Insert(ctx, &models.Memory{ID: "m1", OwnerID: secondary.ID, PhotoURLs: []string{"p"}}))

	upgraded, token, err := svc.Upgrade(ctx, primary.ID, "a@b.com", secondaryToken)
	require.NoError(t, err)
	require.False(t, upgraded.Anonymous)
	require.Equal(t, "a@b.com", upgraded.Email)
	require.NotEmpty(t, token)

	moved, err := memories.Get(ctx, "m1")
	require.NoError(t, err)
	require.Equal(t, primary.ID, moved.OwnerID)
}

func TestUpgradeRejectsInvalidEmail(t *testing.T) {
	ctx := context.Background()
	svc := NewIdentityService(newFakeIdentityStore(), newFakeMemoryStore(), "test-secret")
	identity, _, err := svc.CreateAnonymous(ctx)
	require.NoError(t, err)

	_, _, err = svc.Upgrade(ctx, identity.ID, "not-an-email", "")
	require.ErrorIs(t, err, ErrValidation)
}
