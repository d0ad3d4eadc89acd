// models/achievement.go
package models

import "time"

type Achievement struct {
	ID          uint   `gorm:"primaryKey" json:"id_achievement"`
	Name        string `gorm:"not null;index" json:"achievement_name"`
	Scores      int    `gorm:"not null;default:0;check:chk_achievements_scores,scores >= 0" json:"scores"`
	Description string `gorm:"type:text;not null" json:"description"`

	CreatedAt time.Time `json:"-"`
}

func (Achievement) TableName() string {
	return "achievements"
}
