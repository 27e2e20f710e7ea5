package models

import "time"

type DietFeedback struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	UserID     uint      `gorm:"index;not null" json:"user_id"`
	User       User      `json:"-" gorm:"foreignKey:UserID"`
	PlanText   string    `gorm:"type:text" json:"plan"`
	Rating     int       `json:"rating"`
	Feedback   string    `json:"feedback"`
	Compliance string    `json:"compliance"` // Yes, Partially, No
	CreatedAt  time.Time `gorm:"index" json:"created_at"`
}

func (DietFeedback) TableName() string {
	return "diet_feedback"
}
