package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"safesphere/models"
	"safesphere/store"
)

const testSecret = "test-session-secret"

type recordingNotifier struct {
	mu    sync.Mutex
	calls []dispatchCall
}

type dispatchCall struct {
	UserID int64
	Status models.SafetyStatus
}

func (n *recordingNotifier) Dispatch(userID int64, status models.SafetyStatus) bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.calls = append(n.calls, dispatchCall{UserID: userID, Status: status})
	return true
}

func (n *recordingNotifier) Calls() []dispatchCall {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]dispatchCall(nil), n.calls...)
}

type testStack struct {
	store    *store.MemoryStore
	auth     *AuthService
	friends  *FriendService
	safety   *SafetyService
	users    *UserService
	geo      *MemoryGeoIndex
	notifier *recordingNotifier
}

func newTestStack(t *testing.T) *testStack {
	t.Helper()
	db := store.NewMemoryStore()
	friends := NewFriendService(db)
	notifier := &recordingNotifier{}
	geo := NewMemoryGeoIndex()
	return &testStack{
		store:    db,
		auth:     NewAuthService(db, store.NewMemorySessionStore(), testSecret, time.Hour, WithHashCost(bcrypt.MinCost), WithGeoIndex(geo)),
		friends:  friends,
		safety:   NewSafetyService(db, friends, notifier),
		users:    NewUserService(db, friends, geo),
		geo:      geo,
		notifier: notifier,
	}
}

func (s *testStack) register(t *testing.T, name, email string) models.User {
	t.Helper()
	res, err := s.auth.Register(context.Background(), RegisterInput{Name: name, Email: email, Password: "password123"})
	require.NoError(t, err)
	return res.User
}

// befriend makes from list to as a friend
func (s *testStack) befriend(t *testing.T, from, to models.User) {
	t.Helper()
	ctx := context.Background()
	req, err := s.friends.SendRequest(ctx, from, to.Email)
	require.NoError(t, err)
	_, err = s.friends.Respond(ctx, req.ID, to, ActionAccept)
	require.NoError(t, err)
}
