package profiles

import (
	"strings"

	"nutrivision-go/internal/validation"
)

// Survey option values offered on the profile page.
var (
	Genders         = []string{"Male", "Female", "Other"}
	BodyTypes       = []string{"Ectomorph : Lean Body", "Mesomorph : Average Body", "Endomorph : Bulky or Fat"}
	ActivityLevels  = []string{"Low: 1-2 days a week", "Moderate: 3-5 days a week", "High: Almost Everyday"}
	Goals           = []string{"Lose Fat", "Gain Muscle", "Maintain"}
	WeightLossRates = []string{"0.5 kg/week", "0.8 kg/week", "1.0 kg/week"}
	WorkoutTypes    = []string{"Gym", "Bodyweight"}
	GymFocuses      = []string{"Cardio Heavy", "Strength Training Focused", "Mix of Both"}
)

const (
	GoalLoseFat    = "Lose Fat"
	WorkoutTypeGym = "Gym"
)

type Survey struct {
	Name           string  `json:"name"`
	Gender         string  `json:"gender"`
	BodyType       string  `json:"body_type"`
	ActivityLevel  string  `json:"activity_level"`
	Height         float64 `json:"height"`
	Weight         float64 `json:"weight"`
	Goal           string  `json:"goal"`
	WeightLossRate string  `json:"weight_loss_rate"`
	WorkoutType    string  `json:"workout_type"`
	GymFocus       string  `json:"gym_focus"`
}

const surveySchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["name", "gender", "body_type", "activity_level", "height", "weight", "goal", "workout_type"],
  "properties": {
    "name": {"type": "string", "minLength": 1},
    "gender": {"enum": ["Male", "Female", "Other"]},
    "body_type": {"enum": ["Ectomorph : Lean Body", "Mesomorph : Average Body", "Endomorph : Bulky or Fat"]},
    "activity_level": {"enum": ["Low: 1-2 days a week", "Moderate: 3-5 days a week", "High: Almost Everyday"]},
    "height": {"type": "number", "exclusiveMinimum": 0, "maximum": 3},
    "weight": {"type": "number", "exclusiveMinimum": 0, "maximum": 300},
    "goal": {"enum": ["Lose Fat", "Gain Muscle", "Maintain"]},
    "weight_loss_rate": {"type": "string"},
    "workout_type": {"enum": ["Gym", "Bodyweight"]},
    "gym_focus": {"type": "string"}
  },
  "allOf": [
    {
      "if": {"properties": {"goal": {"const": "Lose Fat"}}, "required": ["goal"]},
      "then": {"properties": {"weight_loss_rate": {"enum": ["0.5 kg/week", "0.8 kg/week", "1.0 kg/week"]}}}
    },
    {
      "if": {"properties": {"workout_type": {"const": "Gym"}}, "required": ["workout_type"]},
      "then": {"properties": {"gym_focus": {"enum": ["Cardio Heavy", "Strength Training Focused", "Mix of Both"]}}}
    }
  ]
}`

var schema = validation.MustCompile("profile", surveySchema)

// normalize trims free text and blanks the follow-up answers whose
// question was not asked.
func (s Survey) normalize() Survey {
	s.Name = strings.TrimSpace(s.Name)
	if s.Goal != GoalLoseFat {
		s.WeightLossRate = ""
	}
	if s.WorkoutType != WorkoutTypeGym {
		s.GymFocus = ""
	}
	return s
}
