package models

import "time"

type SafetyStatus string

const (
	StatusSafe   SafetyStatus = "safe"
	StatusAlert  SafetyStatus = "alert"
	StatusDanger SafetyStatus = "danger"
)

type User struct {
	ID             int64        `json:"id" bson:"_id"`
	Name           string       `json:"name" bson:"name"`
	Email          string       `json:"email" bson:"email"`
	Phone          *string      `json:"phone" bson:"phone,omitempty"`
	PasswordHash   string       `json:"-" bson:"password_hash"`
	IsSafe         bool         `json:"is_safe" bson:"is_safe"`
	Status         SafetyStatus `json:"status" bson:"status"`
	LastSafeUpdate time.Time    `json:"last_safe_update" bson:"last_safe_update"`
	CreatedAt      time.Time    `json:"created_at" bson:"created_at"`
	Latitude       *float64     `json:"latitude" bson:"latitude,omitempty"`
	Longitude      *float64     `json:"longitude" bson:"longitude,omitempty"`
}

// ProfileUpdate carries a partial profile change; nil fields are left untouched
type ProfileUpdate struct {
	Name      *string
	Phone     *string
	Latitude  *float64
	Longitude *float64
}

// Apply copies every non-nil field of p onto u
func (p ProfileUpdate) Apply(u *User) {
	if p.Name != nil {
		u.Name = *p.Name
	}
	if p.Phone != nil {
		phone := *p.Phone
		u.Phone = &phone
	}
	if p.Latitude != nil {
		lat := *p.Latitude
		u.Latitude = &lat
	}
	if p.Longitude != nil {
		lon := *p.Longitude
		u.Longitude = &lon
	}
}

// Clone returns a deep copy so callers never share pointer fields with the store
func (u User) Clone() User {
	if u.Phone != nil {
		phone := *u.Phone
		u.Phone = &phone
	}
	if u.Latitude != nil {
		lat := *u.Latitude
		u.Latitude = &lat
	}
	if u.Longitude != nil {
		lon := *u.Longitude
		u.Longitude = &lon
	}
	return u
}

type Session struct {
	ID        string    `json:"id" bson:"_id"`
	UserID    int64     `json:"user_id" bson:"user_id"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
	ExpiresAt time.Time `json:"expires_at" bson:"expires_at"`
}

func (s Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && !now.Before(s.ExpiresAt)
}
