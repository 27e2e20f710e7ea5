package dashboard

import (
	"context"
	"io"
	"strings"

	"github.com/pkg/errors"
	"github.com/xuri/excelize/v2"
)

const (
	ExportFilename = "nutrivision_summary.xlsx"
	ExportMIMEType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

	sheetProfiles = "Profile History"
	sheetDiets    = "Diet Plans"
	sheetWorkouts = "Workout Plans"

	dateLayout = "2006-01-02 15:04"
)

// Export writes the user's profile history and plans as an xlsx workbook.
func (s *Service) Export(ctx context.Context, userID uint, w io.Writer) error {
	d, err := s.load(ctx, userID)
	if err != nil {
		return err
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetProfiles); err != nil {
		return errors.Wrap(err, "rename sheet")
	}
	for _, name := range []string{sheetDiets, sheetWorkouts} {
		if _, err := f.NewSheet(name); err != nil {
			return errors.Wrapf(err, "create sheet %s", name)
		}
	}

	header, err := f.NewStyle(&excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#DDEBF7"}, Pattern: 1},
		Font: &excelize.Font{Bold: true},
	})
	if err != nil {
		return errors.Wrap(err, "header style")
	}

	profileRows := make([][]interface{}, 0, len(d.history))
	for _, p := range d.history {
		profileRows = append(profileRows, []interface{}{
			p.CreatedAt.Format(dateLayout), p.Name, p.Gender, p.BodyType, p.ActivityLevel,
			p.Height, p.Weight, p.BMI, p.Goal, p.WeightLossRate, p.WorkoutType, p.GymFocus,
		})
	}
	dietRows := make([][]interface{}, 0, len(d.diets))
	for _, p := range d.diets {
		dietRows = append(dietRows, []interface{}{
			p.CreatedAt.Format(dateLayout), p.DietType, join(p.Allergens, p.OtherAllergy),
			join(p.HealthConditions), join(p.Supplements), p.PlanText,
		})
	}
	workoutRows := make([][]interface{}, 0, len(d.workouts))
	for _, p := range d.workouts {
		workoutRows = append(workoutRows, []interface{}{
			p.CreatedAt.Format(dateLayout), p.WorkoutTimePref, p.DurationPref,
			join(p.Injuries), join(p.Equipment), p.PlanText,
		})
	}

	sheets := []struct {
		name    string
		columns []interface{}
		rows    [][]interface{}
	}{
		{sheetProfiles, []interface{}{"Date", "Name", "Gender", "Body Type", "Activity Level", "Height (m)", "Weight (kg)", "BMI", "Goal", "Weight Loss Rate", "Workout Type", "Gym Focus"}, profileRows},
		{sheetDiets, []interface{}{"Date", "Diet Type", "Allergies", "Health Conditions", "Supplements", "Plan"}, dietRows},
		{sheetWorkouts, []interface{}{"Date", "Time Preference", "Duration", "Injuries", "Equipment", "Plan"}, workoutRows},
	}
	for _, sh := range sheets {
		if err := writeSheet(f, sh.name, header, sh.columns, sh.rows); err != nil {
			return err
		}
	}

	if err := f.Write(w); err != nil {
		return errors.Wrap(err, "write workbook")
	}
	return nil
}

func writeSheet(f *excelize.File, sheet string, headerStyle int, columns []interface{}, rows [][]interface{}) error {
	if err := f.SetSheetRow(sheet, "A1", &columns); err != nil {
		return errors.Wrapf(err, "%s header", sheet)
	}
	last, _ := excelize.CoordinatesToCellName(len(columns), 1)
	if err := f.SetCellStyle(sheet, "A1", last, headerStyle); err != nil {
		return errors.Wrapf(err, "%s header style", sheet)
	}
	for i, row := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return errors.Wrapf(err, "%s row %d", sheet, i+1)
		}
	}
	return nil
}

func join(items []string, extra ...string) string {
	all := append(append([]string{}, items...), extra...)
	out := all[:0]
	for _, s := range all {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	if len(out) == 0 {
		return "None"
	}
	return strings.Join(out, ", ")
}
