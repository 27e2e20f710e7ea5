package dashboard

import (
	"bytes"
	"context"
	"io"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/xuri/excelize/v2"

	"nutrivision-go/internal/apperr"
	"nutrivision-go/internal/models"
	"nutrivision-go/internal/profiles"
)

type fakeProfiles []models.Profile

func (f fakeProfiles) History(context.Context, uint) ([]models.Profile, error) { return f, nil }

type fakeDiets []models.DietPlan

func (f fakeDiets) List(context.Context, uint) ([]models.DietPlan, error) { return f, nil }

type fakeWorkouts []models.WorkoutPlan

func (f fakeWorkouts) List(context.Context, uint) ([]models.WorkoutPlan, error) { return f, nil }

var day = time.Date(2025, 2, 1, 8, 30, 0, 0, time.UTC)

func sampleService() *Service {
	history := fakeProfiles{
		{Name: "Sam", ActivityLevel: "Moderate: 3-5 days a week", Height: 1.8, Weight: 90, BMI: 27.78, CreatedAt: day},
		{Name: "Sam", ActivityLevel: "Sedentary: little or no exercise", BMI: 0, CreatedAt: day.AddDate(0, 0, 3)},
		{Name: "Sam", ActivityLevel: "Moderate: 3-5 days a week", Height: 1.8, Weight: 85, BMI: 26.23, CreatedAt: day.AddDate(0, 0, 10)},
	}
	diets := fakeDiets{
		{DietType: "Vegan", Allergens: models.StringArray{"Nuts"}, OtherAllergy: "Kiwi", PlanText: "### Day 1", CreatedAt: day},
	}
	workouts := fakeWorkouts{
		{WorkoutTimePref: "Morning", DurationPref: "30 mins", Equipment: models.StringArray{"Mat"}, PlanText: "Day 1: Legs", CreatedAt: day},
		{WorkoutTimePref: "Evening", DurationPref: "1 hour", PlanText: "Day 1: Arms", CreatedAt: day},
	}
	return NewService(history, diets, workouts)
}

func TestSummary(t *testing.T) {
	s, err := sampleService().Summary(context.Background(), 1)
	if err != nil {
		t.Fatal(err)
	}
	if s.Latest.Weight != 85 {
		t.Fatalf("latest should be the newest row, got %+v", s.Latest)
	}
	if len(s.BMITrend) != 2 || s.BMITrend[0].BMI != 27.78 || s.BMITrend[1].BMI != 26.23 {
		t.Fatalf("unexpected trend %+v", s.BMITrend)
	}
	want := []ActivityCount{
		{"Moderate: 3-5 days a week", 2},
		{"Sedentary: little or no exercise", 1},
	}
	if len(s.ActivityDistribution) != len(want) {
		t.Fatalf("distribution = %+v", s.ActivityDistribution)
	}
	for i := range want {
		if s.ActivityDistribution[i] != want[i] {
			t.Fatalf("distribution[%d] = %+v, want %+v", i, s.ActivityDistribution[i], want[i])
		}
	}
	if s.DietPlansGenerated != 1 || s.WorkoutPlansGenerated != 2 {
		t.Fatalf("counts = %d/%d", s.DietPlansGenerated, s.WorkoutPlansGenerated)
	}
}

// profileRows backs a profiles.Service so the summary reads history through
// the same component the profile page writes with.
type profileRows struct{ rows []models.Profile }

func (r *profileRows) Create(_ context.Context, p *models.Profile) error {
	r.rows = append(r.rows, *p)
	return nil
}

func (r *profileRows) Latest(_ context.Context, _ uint) (*models.Profile, error) {
	if len(r.rows) == 0 {
		return nil, apperr.ErrNotFound
	}
	return &r.rows[len(r.rows)-1], nil
}

func (r *profileRows) History(_ context.Context, _ uint) ([]models.Profile, error) {
	return r.rows, nil
}

func TestSummaryFromSavedProfiles(t *testing.T) {
	log := logrus.New()
	log.SetOutput(io.Discard)
	svc := profiles.NewService(&profileRows{}, log)
	ctx := context.Background()
	for _, w := range []float64{90, 85} {
		_, err := svc.SaveProfile(ctx, 1, profiles.Survey{
			Name: "Sam", Gender: "Male", BodyType: "Mesomorph : Average Body",
			ActivityLevel: "Moderate: 3-5 days a week", Height: 1.8, Weight: w,
			Goal: "Maintain", WorkoutType: "Bodyweight",
		})
		if err != nil {
			t.Fatal(err)
		}
	}

	s, err := NewService(svc, fakeDiets{}, fakeWorkouts{}).Summary(ctx, 1)
	if err != nil {
		t.Fatal(err)
	}
	if s.Latest.Weight != 85 || len(s.BMITrend) != 2 || s.BMITrend[0].BMI != 27.78 {
		t.Fatalf("summary = %+v", s)
	}
}

func TestSummaryWithoutProfile(t *testing.T) {
	svc := NewService(fakeProfiles{}, fakeDiets{}, fakeWorkouts{})
	if _, err := svc.Summary(context.Background(), 1); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestExport(t *testing.T) {
	var buf bytes.Buffer
	if err := sampleService().Export(context.Background(), 1, &buf); err != nil {
		t.Fatal(err)
	}

	f, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	profiles, err := f.GetRows(sheetProfiles)
	if err != nil {
		t.Fatal(err)
	}
	if len(profiles) != 4 || profiles[0][0] != "Date" || profiles[1][0] != "2025-02-01 08:30" {
		t.Fatalf("unexpected profile sheet %v", profiles)
	}

	diets, err := f.GetRows(sheetDiets)
	if err != nil {
		t.Fatal(err)
	}
	if len(diets) != 2 || diets[1][2] != "Nuts, Kiwi" || diets[1][3] != "None" || diets[1][5] != "### Day 1" {
		t.Fatalf("unexpected diet sheet %v", diets)
	}

	workouts, err := f.GetRows(sheetWorkouts)
	if err != nil {
		t.Fatal(err)
	}
	if len(workouts) != 3 || workouts[2][1] != "Evening" {
		t.Fatalf("unexpected workout sheet %v", workouts)
	}
}
