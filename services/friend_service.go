package services

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"safesphere/metrics"
	"safesphere/models"
	"safesphere/store"
	apierrors "safesphere/utils/errors"
)

type FriendAction string

const (
	ActionAccept FriendAction = "accept"
	ActionReject FriendAction = "reject"
)

// FriendService manages friend requests and the directed friend edges they
// produce. Accepting a request creates a single edge requester -> acceptor,
// so the acceptor does not list the requester as a friend.
type FriendService struct {
	store store.Store
	now   func() time.Time
}

type IncomingRequest struct {
	ID        int64                      `json:"id"`
	FromUser  models.User                `json:"from_user"`
	Status    models.FriendRequestStatus `json:"status"`
	CreatedAt time.Time                  `json:"created_at"`
}

func NewFriendService(s store.Store) *FriendService {
	return &FriendService{store: s, now: time.Now}
}

func (s *FriendService) SendRequest(ctx context.Context, requester models.User, targetEmail string) (models.FriendRequest, error) {
	target, err := s.store.GetUserByEmail(ctx, targetEmail)
	if errors.Is(err, store.ErrNotFound) {
		return models.FriendRequest{}, apierrors.ErrTargetNotFound
	}
	if err != nil {
		return models.FriendRequest{}, apierrors.Internal(err, "failed to look up user")
	}
	if target.ID == requester.ID {
		return models.FriendRequest{}, apierrors.ErrSelfFriendRequest
	}

	req, err := s.store.CreateFriendRequest(ctx, models.FriendRequest{
		FromUserID: requester.ID,
		ToUserID:   target.ID,
		CreatedAt:  s.now().UTC(),
	})
	switch {
	case errors.Is(err, store.ErrDuplicateRequest):
		return models.FriendRequest{}, apierrors.ErrDuplicateRequest
	case errors.Is(err, store.ErrAlreadyFriends):
		return models.FriendRequest{}, apierrors.ErrAlreadyFriends
	case err != nil:
		return models.FriendRequest{}, apierrors.Internal(err, "failed to create friend request")
	}

	metrics.FriendRequests.WithLabelValues("sent").Inc()
	slog.InfoContext(ctx, "Friend request sent", "friend_request_id", req.ID, "from_user_id", req.FromUserID, "to_user_id", req.ToUserID)
	return req, nil
}

// ListIncomingRequests returns pending requests addressed to user with the requester's profile
func (s *FriendService) ListIncomingRequests(ctx context.Context, user models.User) ([]IncomingRequest, error) {
	reqs, err := s.store.ListIncomingRequests(ctx, user.ID)
	if err != nil {
		return nil, apierrors.Internal(err, "failed to list friend requests")
	}

	out := make([]IncomingRequest, 0, len(reqs))
	for _, r := range reqs {
		from, err := s.store.GetUser(ctx, r.FromUserID)
		if err != nil {
			slog.WarnContext(ctx, "Skipping friend request with unknown sender", "friend_request_id", r.ID, "error", err)
			continue
		}
		out = append(out, IncomingRequest{
			ID:        r.ID,
			FromUser:  from,
			Status:    r.Status,
			CreatedAt: r.CreatedAt,
		})
	}
	return out, nil
}

// Respond accepts or rejects a pending request addressed to responder
func (s *FriendService) Respond(ctx context.Context, requestID int64, responder models.User, action FriendAction) (models.FriendRequest, error) {
	req, err := s.store.GetFriendRequest(ctx, requestID)
	if errors.Is(err, store.ErrNotFound) || (err == nil && req.ToUserID != responder.ID) {
		return models.FriendRequest{}, apierrors.ErrRequestNotFound
	}
	if err != nil {
		return models.FriendRequest{}, apierrors.Internal(err, "failed to load friend request")
	}

	var status models.FriendRequestStatus
	switch action {
	case ActionAccept:
		status = models.FriendRequestAccepted
	case ActionReject:
		status = models.FriendRequestRejected
	default:
		return models.FriendRequest{}, apierrors.ErrInvalidAction
	}

	resolved, edge, err := s.store.ResolveFriendRequest(ctx, requestID, responder.ID, status, s.now().UTC())
	switch {
	case errors.Is(err, store.ErrNotFound):
		return models.FriendRequest{}, apierrors.ErrRequestNotFound
	case errors.Is(err, store.ErrRequestNotPending):
		return models.FriendRequest{}, apierrors.ErrRequestNotPending
	case err != nil:
		return models.FriendRequest{}, apierrors.Internal(err, "failed to update friend request")
	}

	metrics.FriendRequests.WithLabelValues(string(action)).Inc()
	if edge != nil {
		slog.InfoContext(ctx, "Friend request accepted", "friend_request_id", resolved.ID, "user_id", edge.UserID, "friend_id", edge.FriendID)
	} else {
		slog.InfoContext(ctx, "Friend request rejected", "friend_request_id", resolved.ID)
	}
	return resolved, nil
}

// ListFriends resolves user's outgoing accepted edges to profiles
func (s *FriendService) ListFriends(ctx context.Context, userID int64) ([]models.User, error) {
	edges, err := s.store.ListFriendEdges(ctx, userID)
	if err != nil {
		return nil, apierrors.Internal(err, "failed to list friends")
	}

	friends := make([]models.User, 0, len(edges))
	for _, e := range edges {
		if e.Status != models.FriendRequestAccepted {
			continue
		}
		friend, err := s.store.GetUser(ctx, e.FriendID)
		if err != nil {
			slog.WarnContext(ctx, "Skipping edge to unknown user", "edge_id", e.ID, "error", err)
			continue
		}
		friends = append(friends, friend)
	}
	return friends, nil
}

// FriendIDs lists the ids of userID's accepted friends
func (s *FriendService) FriendIDs(ctx context.Context, userID int64) ([]int64, error) {
	edges, err := s.store.ListFriendEdges(ctx, userID)
	if err != nil {
		return nil, err
	}
	ids := make([]int64, 0, len(edges))
	for _, e := range edges {
		if e.Status == models.FriendRequestAccepted {
			ids = append(ids, e.FriendID)
		}
	}
	return ids, nil
}
