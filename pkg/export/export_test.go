package export

import (
	"bytes"
	"strings"
	"testing"
)

func sampleDataset() Dataset {
	return Dataset{
		Headers: []string{"Day", "Course", "Room"},
		Rows: []map[string]string{
			{"Day": "Monday", "Course": "CS101", "Room": "R-201"},
			{"Day": "Wednesday", "Course": "CS205", "Room": "R-105"},
		},
	}
}

func TestCSVExporterRender(t *testing.T) {
	out, err := NewCSVExporter().Render(sampleDataset())
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(out)), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected header plus two rows, got %d lines", len(lines))
	}
	if lines[0] != "Day,Course,Room" {
		t.Fatalf("unexpected header line: %s", lines[0])
	}
	if !strings.Contains(lines[1], "CS101") {
		t.Fatalf("unexpected first row: %s", lines[1])
	}
}

func TestCSVExporterRendersMissingCellsEmpty(t *testing.T) {
	data := sampleDataset()
	data.Rows = []map[string]string{{"Day": "Friday"}}

	out, err := NewCSVExporter().Render(data)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(out)), "\n")
	if lines[1] != "Friday,," {
		t.Fatalf("unexpected row: %s", lines[1])
	}
}

func TestCSVExporterRequiresHeaders(t *testing.T) {
	if _, err := NewCSVExporter().Render(Dataset{}); err == nil {
		t.Fatal("expected error for empty headers")
	}
}

func TestPDFExporterRender(t *testing.T) {
	out, err := NewPDFExporter().Render(sampleDataset(), "Weekly Timetable")
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !bytes.HasPrefix(out, []byte("%PDF")) {
		t.Fatal("output is not a PDF document")
	}
}

func TestPDFExporterRequiresHeaders(t *testing.T) {
	if _, err := NewPDFExporter().Render(Dataset{}, ""); err == nil {
		t.Fatal("expected error for empty headers")
	}
}
