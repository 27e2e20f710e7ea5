package plans

import (
	_ "embed"
	"strings"
	"text/template"

	"nutrivision-go/internal/models"
	"nutrivision-go/internal/profiles"
)

//go:embed diet_prompt.tmpl
var dietPromptText string

//go:embed workout_prompt.tmpl
var workoutPromptText string

const (
	dietSystemPrompt    = "You are a certified dietitian and nutrition expert helping users make safe, balanced diet plans."
	workoutSystemPrompt = "You are a professional fitness coach."

	dietTemperature    = 0.5
	dietMaxTokens      = 2000
	workoutTemperature = 0.5
	workoutMaxTokens   = 1500
)

var promptFuncs = template.FuncMap{
	"lower": strings.ToLower,
	"list": func(items []string) string {
		if len(items) == 0 {
			return "None"
		}
		return strings.Join(items, ", ")
	},
}

var (
	dietPrompt    = template.Must(template.New("diet").Funcs(promptFuncs).Parse(dietPromptText))
	workoutPrompt = template.Must(template.New("workout").Funcs(promptFuncs).Parse(workoutPromptText))
)

type dietPromptData struct {
	DietType         string
	Gender           string
	BodyType         string
	ActivityLevel    string
	BMI              float64
	Goal             string
	WeightLossRate   string
	Feedback         *models.DietFeedback
	Allergies        []string
	HealthConditions []string
	Supplements      []string
}

type workoutPromptData struct {
	Gender        string
	WorkoutType   string
	Goal          string
	ActivityLevel string
	GymFocus      string
	TimePref      string
	DurationPref  string
	Injuries      []string
	Equipment     []string
}

// buildDietPrompt expects a normalized survey.
func buildDietPrompt(p *models.Profile, s DietSurvey, fb *models.DietFeedback) (string, error) {
	data := dietPromptData{
		DietType:         s.DietType,
		Gender:           p.Gender,
		BodyType:         p.BodyType,
		ActivityLevel:    p.ActivityLevel,
		BMI:              p.BMI,
		Goal:             p.Goal,
		Feedback:         fb,
		Allergies:        s.Allergens,
		HealthConditions: s.HealthConditions,
		Supplements:      s.Supplements,
	}
	if p.Goal == profiles.GoalLoseFat {
		data.WeightLossRate = p.WeightLossRate
	}
	if s.OtherAllergy != "" {
		data.Allergies = append(append([]string{}, s.Allergens...), s.OtherAllergy)
	}

	var b strings.Builder
	if err := dietPrompt.Execute(&b, data); err != nil {
		return "", err
	}
	return b.String(), nil
}

func buildWorkoutPrompt(p *models.Profile, s WorkoutSurvey) (string, error) {
	data := workoutPromptData{
		Gender:        p.Gender,
		WorkoutType:   p.WorkoutType,
		Goal:          p.Goal,
		ActivityLevel: p.ActivityLevel,
		GymFocus:      p.GymFocus,
		TimePref:      s.TimePref,
		DurationPref:  s.DurationPref,
		Injuries:      s.Injuries,
		Equipment:     s.Equipment,
	}

	var b strings.Builder
	if err := workoutPrompt.Execute(&b, data); err != nil {
		return "", err
	}
	return b.String(), nil
}
