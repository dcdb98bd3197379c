package export

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/sadopc/taskr/internal/api"
)

type jsonExport struct {
	ExportedAt string     `json:"exported_at"`
	Count      int        `json:"count"`
	Done       int        `json:"done"`
	Tasks      []jsonTask `json:"tasks"`
}

type jsonTask struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	Done      bool   `json:"done"`
	CreatedAt string `json:"created_at,omitempty"`
	UpdatedAt string `json:"updated_at,omitempty"`
}

func ToJSON(tasks []api.Task, path string) error {
	export := jsonExport{
		ExportedAt: time.Now().UTC().Format(time.RFC3339),
		Count:      len(tasks),
		Tasks:      make([]jsonTask, 0, len(tasks)),
	}

	for _, t := range tasks {
		if t.Done {
			export.Done++
		}
		export.Tasks = append(export.Tasks, jsonTask{
			ID:        t.ID,
			Name:      t.Name,
			Done:      t.Done,
			CreatedAt: formatTime(t.CreatedAt),
			UpdatedAt: formatTime(t.UpdatedAt),
		})
	}

	data, err := json.MarshalIndent(export, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write json file: %w", err)
	}
	return nil
}
