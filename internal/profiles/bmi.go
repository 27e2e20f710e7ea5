package profiles

import "math"

// MinPlausibleBMI is the floor below which a stored BMI is treated as bad
// survey data and plan generation is refused.
const MinPlausibleBMI = 10

// BMI returns weight / height², rounded to two decimals. Height is in
// meters, weight in kilograms; both must be positive.
func BMI(heightM, weightKg float64) float64 {
	return math.Round(weightKg/(heightM*heightM)*100) / 100
}

func BMICategory(bmi float64) string {
	switch {
	case bmi < 18.5:
		return "Underweight"
	case bmi < 25.0:
		return "Normal weight"
	case bmi < 30.0:
		return "Overweight"
	default:
		return "Obese"
	}
}
