package models

import "time"

type DietPlan struct {
	ID               uint        `gorm:"primaryKey" json:"id"`
	UserID           uint        `gorm:"index:idx_diet_user_fingerprint;not null" json:"user_id"`
	User             User        `json:"-" gorm:"foreignKey:UserID"`
	Fingerprint      string      `gorm:"column:profile_fingerprint;index:idx_diet_user_fingerprint;size:64" json:"fingerprint"`
	PlanText         string      `gorm:"type:text" json:"plan"`
	DietType         string      `json:"diet_type"`
	Allergens        StringArray `gorm:"type:jsonb" json:"allergens"`
	OtherAllergy     string      `json:"other_allergy"`
	HealthConditions StringArray `gorm:"type:jsonb" json:"health_conditions"`
	Supplements      StringArray `gorm:"type:jsonb" json:"supplements"`
	CreatedAt        time.Time   `gorm:"index" json:"created_at"`
}

type WorkoutPlan struct {
	ID              uint        `gorm:"primaryKey" json:"id"`
	UserID          uint        `gorm:"index;not null" json:"user_id"`
	User            User        `json:"-" gorm:"foreignKey:UserID"`
	PlanText        string      `gorm:"type:text" json:"plan"`
	WorkoutTimePref string      `json:"workout_time_pref"`
	DurationPref    string      `json:"duration_pref"`
	Injuries        StringArray `gorm:"type:jsonb" json:"injuries"`
	Equipment       StringArray `gorm:"type:jsonb" json:"equipment"`
	CreatedAt       time.Time   `gorm:"index" json:"created_at"`
}
