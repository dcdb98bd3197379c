package export

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/sadopc/taskr/internal/api"
)

func ToCSV(tasks []api.Task, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create csv file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	if err := w.Write([]string{"ID", "Name", "Done", "Created At", "Updated At"}); err != nil {
		return err
	}

	for _, t := range tasks {
		row := []string{
			strconv.FormatInt(t.ID, 10),
			t.Name,
			strconv.FormatBool(t.Done),
			formatTime(t.CreatedAt),
			formatTime(t.UpdatedAt),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}

// formatTime renders t in local time, or "" for the zero time.
func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Local().Format(time.RFC3339)
}
