package ingest

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"
)

// quarantineReport is the sidecar written next to every quarantined file.
type quarantineReport struct {
	OriginalPath   string    `json:"original_path"`
	QuarantinePath string    `json:"quarantine_path"`
	Timestamp      time.Time `json:"timestamp"`
	Errors         []string  `json:"errors"`
}

// quarantine moves a failed file out of the drop directory and writes a
// sibling .errors.json describing what was wrong. The timestamp prefix
// keeps repeated failures of the same file from overwriting each other.
func quarantine(path, quarantineDir string, now time.Time, errs []string) (string, error) {
	if err := os.MkdirAll(quarantineDir, 0o755); err != nil {
		return "", err
	}

	qpath := filepath.Join(quarantineDir,
		now.Format("20060102_150405")+"_"+filepath.Base(path))
	if err := os.Rename(path, qpath); err != nil {
		return "", err
	}

	report := quarantineReport{
		OriginalPath:   path,
		QuarantinePath: qpath,
		Timestamp:      now,
		Errors:         errs,
	}
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return qpath, err
	}
	if err := os.WriteFile(qpath+".errors.json", data, 0o644); err != nil {
		return qpath, err
	}
	return qpath, nil
}
