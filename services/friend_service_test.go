package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"safesphere/models"
	apierrors "safesphere/utils/errors"
)

func TestFriendService_SendRequest(t *testing.T) {
	ctx := context.Background()
	stack := newTestStack(t)
	alice := stack.register(t, "Alice", "alice@example.com")
	bob := stack.register(t, "Bob", "bob@example.com")

	t.Run("unknown target", func(t *testing.T) {
		_, err := stack.friends.SendRequest(ctx, alice, "ghost@example.com")
		assert.ErrorIs(t, err, apierrors.ErrTargetNotFound)
	})

	t.Run("self request", func(t *testing.T) {
		_, err := stack.friends.SendRequest(ctx, alice, alice.Email)
		assert.ErrorIs(t, err, apierrors.ErrSelfFriendRequest)
	})

	t.Run("duplicate pending request", func(t *testing.T) {
		req, err := stack.friends.SendRequest(ctx, alice, bob.Email)
		require.NoError(t, err)
		assert.Equal(t, models.FriendRequestPending, req.Status)
		assert.Equal(t, alice.ID, req.FromUserID)
		assert.Equal(t, bob.ID, req.ToUserID)

		_, err = stack.friends.SendRequest(ctx, alice, bob.Email)
		assert.ErrorIs(t, err, apierrors.ErrDuplicateRequest)
	})

	t.Run("reverse request is allowed while one is pending", func(t *testing.T) {
		_, err := stack.friends.SendRequest(ctx, bob, alice.Email)
		assert.NoError(t, err)
	})
}

func TestFriendService_ListIncomingRequests(t *testing.T) {
	ctx := context.Background()
	stack := newTestStack(t)
	alice := stack.register(t, "Alice", "alice@example.com")
	bob := stack.register(t, "Bob", "bob@example.com")

	incoming, err := stack.friends.ListIncomingRequests(ctx, bob)
	require.NoError(t, err)
	assert.NotNil(t, incoming)
	assert.Empty(t, incoming)

	_, err = stack.friends.SendRequest(ctx, alice, bob.Email)
	require.NoError(t, err)

	incoming, err = stack.friends.ListIncomingRequests(ctx, bob)
	require.NoError(t, err)
	require.Len(t, incoming, 1)
	assert.Equal(t, alice.ID, incoming[0].FromUser.ID)
	assert.Equal(t, "Alice", incoming[0].FromUser.Name)
}

func TestFriendService_Respond(t *testing.T) {
	ctx := context.Background()
	stack := newTestStack(t)
	alice := stack.register(t, "Alice", "alice@example.com")
	bob := stack.register(t, "Bob", "bob@example.com")
	carol := stack.register(t, "Carol", "carol@example.com")

	req, err := stack.friends.SendRequest(ctx, alice, bob.Email)
	require.NoError(t, err)

	_, err = stack.friends.Respond(ctx, 999, bob, ActionAccept)
	assert.ErrorIs(t, err, apierrors.ErrRequestNotFound)

	_, err = stack.friends.Respond(ctx, req.ID, carol, ActionAccept)
	assert.ErrorIs(t, err, apierrors.ErrRequestNotFound, "only the addressee may respond")

	_, err = stack.friends.Respond(ctx, req.ID, bob, FriendAction("maybe"))
	assert.ErrorIs(t, err, apierrors.ErrInvalidAction)

	resolved, err := stack.friends.Respond(ctx, req.ID, bob, ActionReject)
	require.NoError(t, err)
	assert.Equal(t, models.FriendRequestRejected, resolved.Status)

	_, err = stack.friends.Respond(ctx, req.ID, bob, ActionAccept)
	assert.ErrorIs(t, err, apierrors.ErrRequestNotPending)

	friends, err := stack.friends.ListFriends(ctx, alice.ID)
	require.NoError(t, err)
	assert.Empty(t, friends)
}

func TestFriendService_AcceptIsOneDirectional(t *testing.T) {
	ctx := context.Background()
	stack := newTestStack(t)
	alice := stack.register(t, "Alice", "alice@example.com")
	bob := stack.register(t, "Bob", "bob@example.com")

	stack.befriend(t, alice, bob)

	aliceFriends, err := stack.friends.ListFriends(ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, aliceFriends, 1)
	assert.Equal(t, bob.ID, aliceFriends[0].ID)

	bobFriends, err := stack.friends.ListFriends(ctx, bob.ID)
	require.NoError(t, err)
	assert.Empty(t, bobFriends)

	ids, err := stack.friends.FriendIDs(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, []int64{bob.ID}, ids)

	_, err = stack.friends.SendRequest(ctx, alice, bob.Email)
	assert.ErrorIs(t, err, apierrors.ErrAlreadyFriends)

	// Bob can still request the reverse edge
	req, err := stack.friends.SendRequest(ctx, bob, alice.Email)
	require.NoError(t, err)
	_, err = stack.friends.Respond(ctx, req.ID, alice, ActionAccept)
	require.NoError(t, err)

	bobFriends, err = stack.friends.ListFriends(ctx, bob.ID)
	require.NoError(t, err)
	require.Len(t, bobFriends, 1)
	assert.Equal(t, alice.ID, bobFriends[0].ID)
}
