// Package export writes a page of tasks to CSV or JSON.
package export

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/sadopc/taskr/internal/api"
)

type Format string

const (
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
)

// Formats lists the supported formats in picker order.
var Formats = []Format{FormatCSV, FormatJSON}

func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatCSV, FormatJSON:
		return f, nil
	}
	return "", fmt.Errorf("unknown export format %q (want csv or json)", s)
}

// FileName is taskr-export-YYYY-MM-DD.<format>.
func FileName(f Format, now time.Time) string {
	return fmt.Sprintf("taskr-export-%s.%s", now.Format("2006-01-02"), f)
}

// Write exports tasks into dir and returns the file path.
func Write(f Format, tasks []api.Task, dir string) (string, error) {
	path := filepath.Join(dir, FileName(f, time.Now()))
	var err error
	switch f {
	case FormatCSV:
		err = ToCSV(tasks, path)
	case FormatJSON:
		err = ToJSON(tasks, path)
	default:
		err = fmt.Errorf("unknown export format %q", f)
	}
	if err != nil {
		return "", err
	}
	return path, nil
}
