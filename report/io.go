package report

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// reportPermissions is the file permission mode for written reports.
const reportPermissions = 0o644

// ReadFile reads and parses a report from the given path.
func ReadFile(path string) (*Report, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read report: %w", err)
	}
	return Parse(data)
}

// Parse parses report JSON data.
func Parse(data []byte) (*Report, error) {
	var r Report
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("failed to parse report JSON: %w", err)
	}
	if r.Version > CurrentVersion {
		return nil, fmt.Errorf("report version %d is newer than supported version %d", r.Version, CurrentVersion)
	}
	if r.Waves == nil {
		r.Waves = []Wave{}
	}
	for i := range r.Waves {
		if r.Waves[i].Projects == nil {
			r.Waves[i].Projects = []Project{}
		}
	}
	return &r, nil
}

// WriteFile writes the report to the given path.
func (r *Report) WriteFile(path string) error {
	data, err := r.Marshal()
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, reportPermissions)
}

// WriteTo writes the report to the given writer.
func (r *Report) WriteTo(w io.Writer) (int64, error) {
	data, err := r.Marshal()
	if err != nil {
		return 0, err
	}
	n, err := w.Write(data)
	return int64(n), err
}

// Marshal serializes the report as indented JSON. Commands are written
// verbatim, without HTML escaping.
func (r *Report) Marshal() ([]byte, error) {
	var buf bytes.Buffer
	encoder := json.NewEncoder(&buf)
	encoder.SetEscapeHTML(false)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(r); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
