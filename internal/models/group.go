package models

import (
	"fmt"
	"strings"
	"time"
)

// Level is a school level (e.g. "1ère année") that groups belong to.
type Level struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:128;not null" json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Group is a cohort of students sharing a level and group number. Tasks are assigned per group.
type Group struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	LevelID     uint      `gorm:"not null;index" json:"level_id"`
	GroupNumber int       `gorm:"not null" json:"group_number"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	Level       Level     `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"level"`
	Students    []Student `json:"-"`
}

// Label renders the human readable group name.
func (g Group) Label() string {
	name := strings.TrimSpace(g.Level.Name)
	if name == "" {
		return fmt.Sprintf("Group %d", g.GroupNumber)
	}
	return fmt.Sprintf("%s - %d", name, g.GroupNumber)
}
