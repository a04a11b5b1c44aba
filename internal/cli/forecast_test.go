package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const workedSeries = `[{"month":"2026-01","units":500,"amount":22500},{"month":"2026-02","units":520,"amount":23400},{"month":"2026-03","units":510,"amount":22950}]`

func TestParseSeries(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantLen   int
		wantMonth string
		wantErr   bool
	}{
		{name: "bare array", input: workedSeries, wantLen: 3, wantMonth: "2026-01"},
		{name: "wrapped in data", input: `{"data":` + workedSeries + `}`, wantLen: 3, wantMonth: "2026-01"},
		{name: "numeric months", input: `[{"month":1,"units":10,"amount":5},{"month":2,"units":20,"amount":9}]`, wantLen: 2},
		{name: "empty", input: "  ", wantErr: true},
		{name: "malformed", input: `[{"units":`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			points, err := parseSeries([]byte(tt.input))
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(points) != tt.wantLen || string(points[0].Month) != tt.wantMonth {
				t.Errorf("unexpected points %+v", points)
			}
		})
	}
}

func TestReadSeriesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "series.json")
	if err := os.WriteFile(path, []byte(workedSeries), 0600); err != nil {
		t.Fatal(err)
	}

	points, err := readSeriesFile(strings.NewReader(""), path)
	if err != nil || len(points) != 3 {
		t.Fatalf("readSeriesFile() = %v, %v", points, err)
	}

	if _, err := readSeriesFile(strings.NewReader(`[{"units":-1,"amount":0}]`), "-"); err == nil {
		t.Error("expected negative units to be rejected")
	}
	if _, err := readSeriesFile(strings.NewReader(`[{"month":"March","units":1,"amount":0}]`), "-"); err == nil {
		t.Error("expected a bad month to be rejected")
	}
	if _, err := readSeriesFile(nil, filepath.Join(dir, "missing.json")); err == nil {
		t.Error("expected a missing file to be reported")
	}
}

func TestForecastPredictCmd(t *testing.T) {
	outputFormat = "table"

	t.Run("worked example", func(t *testing.T) {
		var out bytes.Buffer
		cmd := newForecastPredictCmd()
		cmd.SetIn(strings.NewReader(workedSeries))
		cmd.SetOut(&out)
		cmd.SetArgs([]string{"--file", "-"})

		if err := cmd.Execute(); err != nil {
			t.Fatalf("Execute() error = %v", err)
		}
		for _, want := range []string{"520 units", "= stable", "medium (3 months)"} {
			if !strings.Contains(out.String(), want) {
				t.Errorf("output %q missing %q", out.String(), want)
			}
		}
	})

	t.Run("single point", func(t *testing.T) {
		cmd := newForecastPredictCmd()
		cmd.SetIn(strings.NewReader(`[{"units":500,"amount":22500}]`))
		cmd.SetOut(&bytes.Buffer{})
		cmd.SetErr(&bytes.Buffer{})
		cmd.SetArgs([]string{})

		err := cmd.Execute()
		if err == nil || !strings.Contains(err.Error(), "at least 2") {
			t.Errorf("expected insufficient data error, got %v", err)
		}
	})
}
