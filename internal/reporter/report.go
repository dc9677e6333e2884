package reporter

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	syncerrors "postman-sync/internal/errors"
	"postman-sync/internal/reconcile"
)

// Run is one preview or sync as written to the report directory
type Run struct {
	ID            string            `json:"id"`
	Command       string            `json:"command"`
	CollectionUID string            `json:"collection_uid"`
	Timestamp     time.Time         `json:"timestamp"`
	Options       reconcile.Options `json:"options"`
	Report        reconcile.Report  `json:"report"`
}

// Reporter writes run reports to disk
type Reporter struct {
	config ReportingConfig
}

// ReportingConfig holds the configuration for reporting
type ReportingConfig struct {
	Format    []string `yaml:"format"`
	OutputDir string   `yaml:"output_dir"`
}

// NewReporter creates a new instance of Reporter
func NewReporter(config ReportingConfig) *Reporter {
	return &Reporter{
		config: config,
	}
}

// Enabled reports whether an output directory is configured
func (r *Reporter) Enabled() bool {
	return r != nil && r.config.OutputDir != ""
}

// Save writes the run in every configured format and returns the written paths
func (r *Reporter) Save(run Run) ([]string, error) {
	if !r.Enabled() {
		return nil, nil
	}

	if err := os.MkdirAll(r.config.OutputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create report directory: %w", err)
	}

	base := filepath.Join(r.config.OutputDir, fmt.Sprintf("%s_%s", run.Command, run.Timestamp.Format("20060102_150405")))

	var written []string
	for _, format := range r.config.Format {
		var (
			path string
			err  error
		)
		switch format {
		case "json":
			path, err = r.writeJSON(base, run)
		case "markdown":
			path, err = r.writeMarkdown(base, run)
		default:
			return written, syncerrors.NewUnsupportedOptionError("report format", format, "json", "markdown")
		}
		if err != nil {
			return written, fmt.Errorf("failed to generate %s report: %w", format, err)
		}
		written = append(written, path)
	}

	return written, nil
}

func (r *Reporter) writeJSON(base string, run Run) (string, error) {
	data, err := json.MarshalIndent(run, "", "  ")
	if err != nil {
		return "", err
	}
	path := base + ".json"
	return path, os.WriteFile(path, data, 0644)
}

func (r *Reporter) writeMarkdown(base string, run Run) (string, error) {
	path := base + ".md"
	return path, os.WriteFile(path, []byte(Preview(run.Report)), 0644)
}
