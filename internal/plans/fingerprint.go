package plans

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"

	"github.com/pkg/errors"

	"nutrivision-go/internal/models"
)

// DietFingerprint is the cache key for a diet plan. It hashes a canonical
// JSON encoding (sorted keys, normalized lists) of the profile attributes
// used by the diet prompt and the diet answers, so it is stable across
// restarts and insensitive to answer ordering.
func DietFingerprint(p *models.Profile, s DietSurvey) (string, error) {
	s = s.normalize()
	canonical := map[string]any{
		"gender":            p.Gender,
		"body_type":         p.BodyType,
		"activity_level":    p.ActivityLevel,
		"bmi":               p.BMI,
		"goal":              p.Goal,
		"weight_loss_rate":  p.WeightLossRate,
		"diet_type":         s.DietType,
		"allergens":         s.Allergens,
		"other_allergy":     s.OtherAllergy,
		"health_conditions": s.HealthConditions,
		"supplements":       s.Supplements,
	}
	// Maps marshal with sorted keys. A non-finite BMI does not encode.
	b, err := json.Marshal(canonical)
	if err != nil {
		return "", errors.Wrap(err, "encode diet fingerprint")
	}
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:]), nil
}
