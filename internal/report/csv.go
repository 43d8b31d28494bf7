package report

import (
	"encoding/csv"
	"os"
	"strconv"

	"quantum-energy-scheduler/internal/model"
)

// WriteScheduleCSV writes the decoded schedule to path, one row per hour.
func WriteScheduleCSV(path string, schedule []model.ScheduleEntry) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	header := []string{
		"index",
		"hour",
		"action",
		"magnitude",
		"grid_balance",
		"efficiency",
		"clipped",
	}
	if err := w.Write(header); err != nil {
		return err
	}

	for i, e := range schedule {
		row := []string{
			strconv.Itoa(i),
			e.Hour,
			string(e.Action),
			fmtFloat(e.Magnitude),
			fmtFloat(e.GridBalance),
			strconv.Itoa(e.Efficiency),
			strconv.FormatBool(e.Clipped),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	return w.Error()
}

func fmtFloat(x float64) string {
	return strconv.FormatFloat(x, 'f', 2, 64)
}
