// models/user.go
package models

import (
	"time"
)

// Language is the closed set of interface languages a user can pick
type Language string

const (
	LanguageRU Language = "ru"
	LanguageEN Language = "en"
)

// Valid reports whether l is one of the supported languages
func (l Language) Valid() bool {
	return l == LanguageRU || l == LanguageEN
}

type User struct {
	ID        uint      `gorm:"primaryKey" json:"id_user"`
	Username  string    `gorm:"not null;index" json:"username"`
	Language  Language  `gorm:"type:varchar(2);not null;index" json:"language"`
	CreatedAt time.Time `json:"-"`

	// Relationships
	Awards []UserAchievement `gorm:"foreignKey:UserID" json:"-"`
}

// UserAchievement is an award: one achievement granted to one user.
// A user holds any achievement at most once.
type UserAchievement struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	UserID        uint      `gorm:"not null;uniqueIndex:idx_users_achievements_pair;index" json:"id_user"`
	AchievementID uint      `gorm:"not null;uniqueIndex:idx_users_achievements_pair;index" json:"id_achievement"`
	AwardedAt     time.Time `gorm:"not null;index" json:"date"`

	// Relationships
	User        User        `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	Achievement Achievement `gorm:"foreignKey:AchievementID;constraint:OnDelete:CASCADE" json:"-"`
}

func (User) TableName() string {
	return "users"
}

func (UserAchievement) TableName() string {
	return "users_achievements"
}
