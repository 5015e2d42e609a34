package models

import "time"

// Student represents a learner belonging to a single group.
type Student struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	Name       string    `gorm:"size:255;not null" json:"name"`
	Email      string    `gorm:"size:255;uniqueIndex;not null" json:"email"`
	GroupID    uint      `gorm:"not null;index" json:"group_id"`
	TotalStars int       `gorm:"not null;default:0;check:total_stars >= 0" json:"total_stars"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
	Group      Group     `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"group"`
}
