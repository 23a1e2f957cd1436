package models

import "time"

type FriendRequestStatus string

const (
	FriendRequestPending  FriendRequestStatus = "pending"
	FriendRequestAccepted FriendRequestStatus = "accepted"
	FriendRequestRejected FriendRequestStatus = "rejected"
)

type FriendRequest struct {
	ID         int64               `json:"id" bson:"_id"`
	FromUserID int64               `json:"from_user_id" bson:"from_user_id"`
	ToUserID   int64               `json:"to_user_id" bson:"to_user_id"`
	Status     FriendRequestStatus `json:"status" bson:"status"`
	CreatedAt  time.Time           `json:"created_at" bson:"created_at"`
}

// FriendEdge is a directed "is friends with" relation from UserID to FriendID
type FriendEdge struct {
	ID        int64               `json:"id" bson:"_id"`
	UserID    int64               `json:"user_id" bson:"user_id"`
	FriendID  int64               `json:"friend_id" bson:"friend_id"`
	Status    FriendRequestStatus `json:"status" bson:"status"`
	CreatedAt time.Time           `json:"created_at" bson:"created_at"`
}

type AlertType string

const (
	AlertEmergency AlertType = "emergency_alert"
	AlertDanger    AlertType = "danger_alert"
)

type Alert struct {
	ID        int64     `json:"id" bson:"_id"`
	UserID    int64     `json:"user_id" bson:"user_id"`
	Type      AlertType `json:"type" bson:"type"`
	Message   string    `json:"message" bson:"message"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
}
