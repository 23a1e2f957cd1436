// Package store holds the repository interfaces the services depend on and
// the backends that implement them.
package store

import (
	"context"
	"errors"
	"time"

	"safesphere/models"
)

var (
	ErrNotFound          = errors.New("store: not found")
	ErrDuplicateEmail    = errors.New("store: duplicate email")
	ErrDuplicateRequest  = errors.New("store: duplicate pending friend request")
	ErrAlreadyFriends    = errors.New("store: friend edge already exists")
	ErrRequestNotPending = errors.New("store: friend request is not pending")
)

type UserStore interface {
	// CreateUser assigns the next user id and fails with ErrDuplicateEmail
	// when the email is taken.
	CreateUser(ctx context.Context, u models.User) (models.User, error)
	GetUser(ctx context.Context, id int64) (models.User, error)
	GetUserByEmail(ctx context.Context, email string) (models.User, error)
	// ListUsers returns every user ordered by id.
	ListUsers(ctx context.Context) ([]models.User, error)
	UpdateProfile(ctx context.Context, id int64, upd models.ProfileUpdate) (models.User, error)
	// SetStatus records a safety status change. When alert is non-nil it is
	// appended in the same step and returned with its assigned id.
	SetStatus(ctx context.Context, id int64, status models.SafetyStatus, at time.Time, alert *models.Alert) (models.User, *models.Alert, error)
}

type FriendStore interface {
	// CreateFriendRequest fails with ErrDuplicateRequest when a pending request
	// for the same ordered pair exists, and with ErrAlreadyFriends when the
	// requester already has an edge to the target.
	CreateFriendRequest(ctx context.Context, r models.FriendRequest) (models.FriendRequest, error)
	GetFriendRequest(ctx context.Context, id int64) (models.FriendRequest, error)
	ListIncomingRequests(ctx context.Context, toUserID int64) ([]models.FriendRequest, error)
	// ResolveFriendRequest moves a pending request addressed to toUserID into
	// status. Accepting creates one edge FromUserID -> ToUserID.
	ResolveFriendRequest(ctx context.Context, id, toUserID int64, status models.FriendRequestStatus, at time.Time) (models.FriendRequest, *models.FriendEdge, error)
	ListFriendEdges(ctx context.Context, userID int64) ([]models.FriendEdge, error)
}

type AlertStore interface {
	// ListAlerts returns alerts owned by any of userIDs ordered by id.
	ListAlerts(ctx context.Context, userIDs []int64) ([]models.Alert, error)
}

type LocationStore interface {
	CreateLocation(ctx context.Context, l models.Location) (models.Location, error)
	ListLocations(ctx context.Context, userID int64) ([]models.Location, error)
}

type Store interface {
	UserStore
	FriendStore
	AlertStore
	LocationStore
}

type SessionStore interface {
	CreateSession(ctx context.Context, s models.Session) error
	// GetSession returns ErrNotFound for unknown and expired sessions.
	GetSession(ctx context.Context, id string) (models.Session, error)
	// DeleteSession is a no-op for unknown ids.
	DeleteSession(ctx context.Context, id string) error
}

var (
	_ Store        = (*MemoryStore)(nil)
	_ Store        = (*MongoStore)(nil)
	_ SessionStore = (*MemorySessionStore)(nil)
	_ SessionStore = (*RedisSessionStore)(nil)
)
