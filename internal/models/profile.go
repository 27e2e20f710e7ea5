package models

import "time"

// Profile is one fitness survey submission. Rows are never updated; the
// most recent one is the user's current profile.
type Profile struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	UserID         uint      `gorm:"index;not null" json:"user_id"`
	User           User      `json:"-" gorm:"foreignKey:UserID"`
	Name           string    `json:"name"`
	Gender         string    `json:"gender"`
	BodyType       string    `json:"body_type"`
	ActivityLevel  string    `json:"activity_level"`
	Height         float64   `json:"height"` // meters
	Weight         float64   `json:"weight"` // kilograms
	BMI            float64   `gorm:"column:bmi" json:"bmi"`
	Goal           string    `json:"goal"`
	WeightLossRate string    `json:"weight_loss_rate"`
	WorkoutType    string    `json:"workout_type"`
	GymFocus       string    `json:"gym_focus"`
	CreatedAt      time.Time `gorm:"index" json:"created_at"`
}
