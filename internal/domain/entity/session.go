package entity

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Session is the authenticated session the realtime connection opens with
type Session struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID    int64              `bson:"user_id" json:"user_id"`
	DeviceID  string             `bson:"device_id" json:"device_id"`
	Token     string             `bson:"token" json:"-"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
	ExpiresAt *time.Time         `bson:"expires_at,omitempty" json:"expires_at,omitempty"`
	Status    SessionStatus      `bson:"status" json:"status"`
}

type SessionStatus string

const (
	SessionStatusActive  SessionStatus = "active"
	SessionStatusRevoked SessionStatus = "revoked"
)

// IsActive reports whether the session can be used at the given time
func (s *Session) IsActive(now time.Time) bool {
	if s == nil || s.Token == "" || s.Status != SessionStatusActive {
		return false
	}
	return s.ExpiresAt == nil || now.Before(*s.ExpiresAt)
}
