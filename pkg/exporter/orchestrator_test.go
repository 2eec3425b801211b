package exporter

import (
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/yoke88/dbatools/pkg/diagnostic"
)

// mockBackend implements TabularBackend for orchestrator tests
type mockBackend struct {
	probeErr error
	writeErr error
	written  []string
	records  [][]diagnostic.Record
}

func (m *mockBackend) Probe() error { return m.probeErr }
func (m *mockBackend) Ext() string  { return "mock" }
func (m *mockBackend) WriteTable(path string, row diagnostic.Row, records []diagnostic.Record) error {
	if m.writeErr != nil {
		return m.writeErr
	}
	m.written = append(m.written, path)
	m.records = append(m.records, records)
	return nil
}

func stream(rows ...diagnostic.Row) <-chan diagnostic.Row {
	ch := make(chan diagnostic.Row, len(rows))
	for _, row := range rows {
		ch <- row
	}
	close(ch)
	return ch
}

func planRow(name string, number int, plans ...string) diagnostic.Row {
	rec := diagnostic.NewRecord()
	rec.Set("A", diagnostic.NumberValue(1))
	rec.Set(diagnostic.QueryPlanColumn, diagnostic.SequenceValue(plans...))
	return diagnostic.Row{
		Name:        name,
		Number:      number,
		SQLInstance: `HOST\INST`,
		Result:      []diagnostic.Record{rec},
	}
}

func TestExportScenario(t *testing.T) {
	// the canonical round trip: one row, one embedded plan, csv output
	dir := t.TempDir()
	exp, err := New("csv", dir, Suffix("S1"))
	if err != nil {
		t.Fatalf("New: %s", err)
	}

	rec := diagnostic.NewRecord()
	rec.Set("A", diagnostic.NumberValue(1))
	rec.Set(diagnostic.QueryPlanColumn, diagnostic.SequenceValue("<plan1/>"))
	row := diagnostic.Row{
		Name:        "Top Queries",
		Number:      1,
		SQLInstance: `HOST\INST`,
		Result:      []diagnostic.Record{rec},
	}

	if err := exp.Export(stream(row)); err != nil {
		t.Fatalf("Export: %s", err)
	}

	plan, err := os.ReadFile(filepath.Join(dir, "HOST$INST-DQ-1-Top-Queries-1-S1.sqlplan"))
	if err != nil {
		t.Fatalf("plan artifact missing: %s", err)
	}
	if string(plan) != "<plan1/>" {
		t.Errorf("plan content = %q", plan)
	}

	table, err := os.ReadFile(filepath.Join(dir, "HOST$INST-DQ-1-Top-Queries-S1.csv"))
	if err != nil {
		t.Fatalf("csv missing: %s", err)
	}
	lines := strings.Split(strings.TrimSpace(string(table)), "\n")
	if !slices.Equal(lines, []string{"A", "1"}) {
		t.Errorf("csv lines = %v", lines)
	}
}

func TestExportEmptyResultSkipped(t *testing.T) {
	dir := t.TempDir()
	exp, err := New("csv", dir, Suffix("S1"))
	if err != nil {
		t.Fatalf("New: %s", err)
	}

	row := diagnostic.Row{Name: "Empty", Number: 2, SQLInstance: "HOST"}
	if err := exp.Export(stream(row)); err != nil {
		t.Errorf("Export of empty row = %s, want nil", err)
	}

	entries, _ := os.ReadDir(dir)
	if len(entries) != 0 {
		t.Errorf("skipped row produced %d files", len(entries))
	}
}

func TestExportNoSpecialColumns(t *testing.T) {
	dir := t.TempDir()
	exp, err := New("csv", dir, Suffix("S1"))
	if err != nil {
		t.Fatalf("New: %s", err)
	}

	rec := diagnostic.NewRecord()
	rec.Set("A", diagnostic.NumberValue(1))
	rec.Set("B", diagnostic.TextValue("x"))
	row := diagnostic.Row{Name: "Plain", Number: 3, SQLInstance: "HOST", Result: []diagnostic.Record{rec}}

	if err := exp.Export(stream(row)); err != nil {
		t.Fatalf("Export: %s", err)
	}

	entries, _ := os.ReadDir(dir)
	if len(entries) != 1 {
		t.Fatalf("got %d files, want only the csv", len(entries))
	}
	if filepath.Ext(entries[0].Name()) != ".csv" {
		t.Errorf("unexpected file %s", entries[0].Name())
	}
}

func TestExportPlanCountAndSuppression(t *testing.T) {
	dir := t.TempDir()
	exp, err := New("csv", dir, Suffix("S1"))
	if err != nil {
		t.Fatalf("New: %s", err)
	}

	row := planRow("Top Queries", 1, "<p1/>", "<p2/>", "<p3/>")
	if err := exp.Export(stream(row)); err != nil {
		t.Fatalf("Export: %s", err)
	}
	for i := 1; i <= 3; i++ {
		p := filepath.Join(dir, "HOST$INST-DQ-1-Top-Queries-"+string(rune('0'+i))+"-S1.sqlplan")
		if _, err := os.Stat(p); err != nil {
			t.Errorf("plan %d missing: %s", i, err)
		}
	}

	// suppressed: no .sqlplan files, but the column is still extracted
	// from the tabular residual
	suppressed := t.TempDir()
	exp2, err := New("csv", suppressed, Suffix("S1"), SuppressPlans(true))
	if err != nil {
		t.Fatalf("New: %s", err)
	}
	if err := exp2.Export(stream(planRow("Top Queries", 1, "<p1/>"))); err != nil {
		t.Fatalf("Export: %s", err)
	}
	entries, _ := os.ReadDir(suppressed)
	if len(entries) != 1 {
		t.Fatalf("suppressed export produced %d files, want 1", len(entries))
	}
	data, _ := os.ReadFile(filepath.Join(suppressed, entries[0].Name()))
	if strings.Contains(string(data), "<p1/>") {
		t.Error("suppressed plan leaked into tabular output")
	}
}

func TestExportIdempotenceAsymmetry(t *testing.T) {
	// repeating an identical export doubles csv rows but leaves
	// artifacts byte-identical
	dir := t.TempDir()
	row := planRow("Top Queries", 1, "<p1/>")

	for i := 0; i < 2; i++ {
		exp, err := New("csv", dir, Suffix("S1"))
		if err != nil {
			t.Fatalf("New: %s", err)
		}
		if err := exp.Export(stream(row)); err != nil {
			t.Fatalf("Export: %s", err)
		}
	}

	csvData, _ := os.ReadFile(filepath.Join(dir, "HOST$INST-DQ-1-Top-Queries-S1.csv"))
	lines := strings.Split(strings.TrimSpace(string(csvData)), "\n")
	if len(lines) != 3 { // header + 2 data rows
		t.Errorf("csv lines = %v, want doubled data", lines)
	}

	plan, _ := os.ReadFile(filepath.Join(dir, "HOST$INST-DQ-1-Top-Queries-1-S1.sqlplan"))
	if string(plan) != "<p1/>" {
		t.Errorf("plan content after second run = %q", plan)
	}
}

func TestExportUnknownFormat(t *testing.T) {
	_, err := New("parquet", t.TempDir())
	if err == nil {
		t.Fatal("New with unknown format succeeded")
	}
}

func TestExportRowFailuresDoNotAbort(t *testing.T) {
	backend := &mockBackend{writeErr: errors.New("disk full")}
	e := &Exporter{dir: t.TempDir(), suffix: "S1", backend: backend, raiseErrors: true}

	good := planRow("One", 1, "<p/>")
	alsoGood := planRow("Two", 2, "<p/>")

	err := e.Export(stream(good, alsoGood))
	if err == nil {
		t.Fatal("Export did not report failures")
	}
	// both rows attempted, both failed, both named
	if !strings.Contains(err.Error(), `"One"`) || !strings.Contains(err.Error(), `"Two"`) {
		t.Errorf("error %q does not name both rows", err)
	}
}

func TestExportSummaryErrorWithoutRaise(t *testing.T) {
	backend := &mockBackend{writeErr: errors.New("disk full")}
	e := &Exporter{dir: t.TempDir(), suffix: "S1", backend: backend}

	err := e.Export(stream(planRow("One", 1, "<p/>")))
	if !errors.Is(err, ErrRowsFailed) {
		t.Errorf("err = %v, want ErrRowsFailed", err)
	}
}
