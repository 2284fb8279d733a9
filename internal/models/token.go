package models

import "time"

// BlacklistedToken records a revoked refresh token by its jti.
type BlacklistedToken struct {
	ID        uint      `gorm:"primaryKey"`
	JTI       string    `gorm:"column:jti;size:64;uniqueIndex;not null"`
	UserID    uint      `gorm:"not null;index"`
	User      *User     `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	ExpiresAt time.Time `gorm:"index"`
	CreatedAt time.Time
}
