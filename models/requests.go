// models/requests.go - Request and response payloads
package models

import "time"

// CreateUserRequest is accepted by POST /users/create
type CreateUserRequest struct {
	Username string   `json:"username" form:"username" query:"username" validate:"required,min=1,max=64"`
	Language Language `json:"language" form:"language" query:"language" validate:"required,enum"`
}

// CreateAchievementRequest is accepted by POST /achievements/create
type CreateAchievementRequest struct {
	AchievementName string `json:"achievement_name" form:"achievement_name" query:"achievement_name" validate:"required,min=1,max=128"`
	Scores          *int   `json:"scores" form:"scores" query:"scores" validate:"required,min=0"`
	Description     string `json:"description" form:"description" query:"description" validate:"max=1024"`
}

// SetAchievementRequest is accepted by POST /set_achievement
type SetAchievementRequest struct {
	UserID        uint `json:"id_user" form:"id_user" query:"id_user" validate:"required,gt=0"`
	AchievementID uint `json:"id_achievement" form:"id_achievement" query:"id_achievement" validate:"required,gt=0"`
}

// LocalizedAward is one row of a user's achievement list with text in
// the user's language
type LocalizedAward struct {
	AwardID         uint      `json:"award_id"`
	AchievementID   uint      `json:"id_achievement"`
	AchievementName string    `json:"achievement_name"`
	Description     string    `json:"description"`
	Scores          int       `json:"scores"`
	AwardedAt       time.Time `json:"awarded_at"`
}
