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

// StatusNotifier receives every status transition for fan-out. It must not block.
type StatusNotifier interface {
	Dispatch(userID int64, status models.SafetyStatus) bool
}

type SafetyService struct {
	store    store.Store
	friends  *FriendService
	notifier StatusNotifier
	now      func() time.Time
}

type SafetyStatus struct {
	UserID     int64               `json:"user_id"`
	IsSafe     bool                `json:"is_safe"`
	Status     models.SafetyStatus `json:"status"`
	LastUpdate time.Time           `json:"last_update"`
}

func NewSafetyService(s store.Store, friends *FriendService, notifier StatusNotifier) *SafetyService {
	return &SafetyService{store: s, friends: friends, notifier: notifier, now: time.Now}
}

var alertTemplates = map[models.SafetyStatus]models.Alert{
	models.StatusAlert:  {Type: models.AlertEmergency, Message: "Emergency alert sent"},
	models.StatusDanger: {Type: models.AlertDanger, Message: "User marked as in danger"},
}

func (s *SafetyService) MarkSafe(ctx context.Context, caller models.User, userID int64) (SafetyStatus, error) {
	return s.transition(ctx, caller, userID, models.StatusSafe)
}

func (s *SafetyService) MarkAlert(ctx context.Context, caller models.User, userID int64) (SafetyStatus, error) {
	return s.transition(ctx, caller, userID, models.StatusAlert)
}

func (s *SafetyService) MarkDanger(ctx context.Context, caller models.User, userID int64) (SafetyStatus, error) {
	return s.transition(ctx, caller, userID, models.StatusDanger)
}

func (s *SafetyService) transition(ctx context.Context, caller models.User, userID int64, status models.SafetyStatus) (SafetyStatus, error) {
	if caller.ID != userID {
		return SafetyStatus{}, apierrors.ErrNotAuthorized
	}

	now := s.now().UTC()
	var alert *models.Alert
	if tmpl, ok := alertTemplates[status]; ok {
		tmpl.CreatedAt = now
		alert = &tmpl
	}

	user, created, err := s.store.SetStatus(ctx, userID, status, now, alert)
	if errors.Is(err, store.ErrNotFound) {
		return SafetyStatus{}, apierrors.ErrUserNotFound
	}
	if err != nil {
		return SafetyStatus{}, apierrors.Internal(err, "failed to update safety status")
	}

	metrics.StatusTransitions.WithLabelValues(string(status)).Inc()
	if created != nil {
		slog.InfoContext(ctx, "Alert recorded", "alert_id", created.ID, "user_id", userID, "type", created.Type)
	}
	if s.notifier != nil {
		s.notifier.Dispatch(userID, status)
	}
	return statusOf(user), nil
}

// GetStatus is readable without authentication.
func (s *SafetyService) GetStatus(ctx context.Context, userID int64) (SafetyStatus, error) {
	user, err := s.store.GetUser(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		return SafetyStatus{}, apierrors.ErrUserNotFound
	}
	if err != nil {
		return SafetyStatus{}, apierrors.Internal(err, "failed to load user")
	}
	return statusOf(user), nil
}

// ListAlerts returns the viewer's alerts and those of users the viewer lists as friends
func (s *SafetyService) ListAlerts(ctx context.Context, viewer models.User) ([]models.Alert, error) {
	friendIDs, err := s.friends.FriendIDs(ctx, viewer.ID)
	if err != nil {
		return nil, apierrors.Internal(err, "failed to list friends")
	}
	alerts, err := s.store.ListAlerts(ctx, append([]int64{viewer.ID}, friendIDs...))
	if err != nil {
		return nil, apierrors.Internal(err, "failed to list alerts")
	}
	return alerts, nil
}

func statusOf(u models.User) SafetyStatus {
	return SafetyStatus{
		UserID:     u.ID,
		IsSafe:     u.IsSafe,
		Status:     u.Status,
		LastUpdate: u.LastSafeUpdate,
	}
}
