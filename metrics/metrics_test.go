package metrics

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRegistryRecords(t *testing.T) {
	r := NewRegistry()
	r.Page(24)
	r.Page(0)
	r.Prepared(100, 80, 3, 5, 1)
	r.Clustered(75, 123.5)
	r.Stage("descriptive")()

	if got := testutil.ToFloat64(r.PagesFetched); got != 2 {
		t.Errorf("pages: got %v, want 2", got)
	}
	if got := testutil.ToFloat64(r.ListingsScraped); got != 24 {
		t.Errorf("listings: got %v, want 24", got)
	}
	if got := testutil.ToFloat64(r.MissingValues.WithLabelValues("mileage")); got != 5 {
		t.Errorf("missing mileage: got %v, want 5", got)
	}
	if got := testutil.ToFloat64(r.Inertia); got != 123.5 {
		t.Errorf("inertia: got %v, want 123.5", got)
	}
}

func TestNilRegistryIsNoop(t *testing.T) {
	var r *Registry
	r.Page(3)
	r.Prepared(1, 1, 0, 0, 0)
	r.Clustered(1, 1)
	r.Stage("x")()
	if err := r.WriteTextfile("/nonexistent/dir/file.prom"); err != nil {
		t.Errorf("nil registry should not write: %v", err)
	}
}

func TestWriteTextfile(t *testing.T) {
	r := NewRegistry()
	r.Prepared(10, 8, 0, 1, 0)
	path := filepath.Join(t.TempDir(), "vehicle.prom")

	if err := r.WriteTextfile(path); err != nil {
		t.Fatalf("WriteTextfile: %v", err)
	}
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(b), "vehicle_rows_retained 8") {
		t.Errorf("textfile missing retained gauge:\n%s", b)
	}
}
