package plans

import (
	"sort"
	"strings"

	"nutrivision-go/internal/validation"
)

// DietSurvey holds the diet-specific answers collected on the diet page.
type DietSurvey struct {
	DietType         string   `json:"diet_type"`
	Allergens        []string `json:"allergens"`
	OtherAllergy     string   `json:"other_allergy"`
	HealthConditions []string `json:"health_conditions"`
	Supplements      []string `json:"supplements"`
}

// WorkoutSurvey holds the workout preferences collected on the workout page.
type WorkoutSurvey struct {
	TimePref     string   `json:"workout_time_pref"`
	DurationPref string   `json:"duration_pref"`
	Injuries     []string `json:"injuries"`
	Equipment    []string `json:"equipment"`
}

const dietSurveySchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["diet_type", "health_conditions", "supplements"],
  "properties": {
    "diet_type": {"enum": ["Vegetarian", "Eggetarian", "Non-Vegetarian", "Vegan"]},
    "allergens": {"type": ["array", "null"], "items": {"type": "string"}},
    "other_allergy": {"type": "string"},
    "health_conditions": {"type": "array", "minItems": 1, "items": {"type": "string"}},
    "supplements": {"type": "array", "minItems": 1, "items": {"type": "string"}}
  },
  "anyOf": [
    {"properties": {"allergens": {"type": "array", "minItems": 1}}, "required": ["allergens"]},
    {"properties": {"other_allergy": {"type": "string", "minLength": 1}}, "required": ["other_allergy"]}
  ]
}`

const workoutSurveySchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["workout_time_pref", "duration_pref", "equipment"],
  "properties": {
    "workout_time_pref": {"enum": ["Morning", "Afternoon", "Evening", "Night"]},
    "duration_pref": {"enum": ["20 mins", "30 mins", "45 mins", "1 hour", "90 mins", "2 hours"]},
    "injuries": {"type": ["array", "null"], "items": {"type": "string"}},
    "equipment": {"type": "array", "minItems": 1, "items": {"type": "string"}}
  }
}`

var (
	dietSchema    = validation.MustCompile("diet survey", dietSurveySchema)
	workoutSchema = validation.MustCompile("workout survey", workoutSurveySchema)
)

func (s DietSurvey) normalize() DietSurvey {
	s.DietType = strings.TrimSpace(s.DietType)
	s.Allergens = normalizeList(s.Allergens)
	s.OtherAllergy = strings.TrimSpace(s.OtherAllergy)
	s.HealthConditions = normalizeList(s.HealthConditions)
	s.Supplements = normalizeList(s.Supplements)
	return s
}

func (s WorkoutSurvey) normalize() WorkoutSurvey {
	s.TimePref = strings.TrimSpace(s.TimePref)
	s.DurationPref = strings.TrimSpace(s.DurationPref)
	s.Injuries = normalizeList(s.Injuries)
	s.Equipment = normalizeList(s.Equipment)
	return s
}

// normalizeList trims, drops blanks and duplicates, and sorts, so that the
// order in which options were picked does not matter. An empty result is
// an empty (non-nil) slice.
func normalizeList(in []string) []string {
	seen := make(map[string]bool, len(in))
	out := []string{}
	for _, v := range in {
		v = strings.TrimSpace(v)
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}
