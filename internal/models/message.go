package models

import "time"

// Message is a direct message between two users. Only Read changes after creation.
type Message struct {
	ID         uint64    `gorm:"primarykey" json:"id"`
	FromUserID uint64    `gorm:"not null;index" json:"from_user_id"`
	ToUserID   uint64    `gorm:"not null;index" json:"to_user_id"`
	Body       string    `gorm:"column:message;type:text;not null" json:"message"`
	Timestamp  time.Time `gorm:"not null;index" json:"timestamp"`
	Read       bool      `gorm:"not null;default:false" json:"read"`
}

// Involves reports whether the message was exchanged between a and b.
func (m Message) Involves(a, b uint64) bool {
	return (m.FromUserID == a && m.ToUserID == b) || (m.FromUserID == b && m.ToUserID == a)
}
