package storage

import (
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"vehicle-insights/models"
)

func sampleRaw() []*models.RawListing {
	return []*models.RawListing{
		{
			Title: "FIAT ARGO 1.0", Brand: "FIAT", Model: "ARGO", Version: "1.0 FIREFLY DRIVE",
			FabricationYear: "2020", ModelYear: "2021", Mileage: "35000", Transmission: "Manual",
			Doors: "4", BodyType: "Hatchback", Color: "Prata", Price: "62990", City: "Florianópolis",
			Seller: "Particular", Attributes: "Único dono, IPVA pago",
			Description: "Revisado;\nsem detalhes\tpronto", Link: "https://www.webmotors.com.br/comprar/123",
		},
		{
			Brand: "BMW", Model: "X1", BodyType: "Utilitário esportivo", Price: "None", Mileage: "None",
			ModelYear: "2019", Link: "https://www.webmotors.com.br/comprar/456",
		},
	}
}

func TestCSVRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "raw", "base.csv")

	w, err := NewCSVWriter(path)
	if err != nil {
		t.Fatalf("NewCSVWriter: %v", err)
	}
	if err := w.WriteRaw(sampleRaw()); err != nil {
		t.Fatalf("WriteRaw: %v", err)
	}
	if w.Rows() != 2 {
		t.Errorf("Rows() = %d, want 2", w.Rows())
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(string(b), utf8BOM+"Titulo;Marca;") {
		t.Errorf("file should start with a BOM and the ';' header, got %q", string(b[:20]))
	}
	if n := strings.Count(string(b), "\n"); n != 3 {
		t.Errorf("expected 3 lines, got %d", n)
	}

	got, err := ReadRawCSV(path)
	if err != nil {
		t.Fatalf("ReadRawCSV: %v", err)
	}
	want := sampleRaw()
	want[0].Description = "Revisado, sem detalhes pronto"
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestDecodeCommaSeparatedEnglishHeaders(t *testing.T) {
	in := "price,brand,model,model_year,mileage,body_type,extra\n" +
		"85990,HONDA,CIVIC,2019,42000,Sedã,x\n" +
		"120000,TOYOTA,COROLLA,2022,,Sedã,y\n"

	got, err := DecodeRawCSV(strings.NewReader(in))
	if err != nil {
		t.Fatalf("DecodeRawCSV: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(got))
	}
	if got[0].Brand != "HONDA" || got[0].Price != "85990" || got[0].BodyType != "Sedã" {
		t.Errorf("row 0: %+v", got[0])
	}
	if got[1].Mileage != "" || got[1].Title != "" {
		t.Errorf("row 1: %+v", got[1])
	}
}

func TestDecodeTabSeparated(t *testing.T) {
	in := "Marca\tModelo\tAno_Mod\tQuilometragem\tTipo_Carroceria\tPreco\n" +
		"JEEP\tCOMPASS\t2021\t50000\tUtilitário esportivo\t140000\n"

	got, err := DecodeRawCSV(strings.NewReader(in))
	if err != nil {
		t.Fatalf("DecodeRawCSV: %v", err)
	}
	if len(got) != 1 || got[0].Model != "COMPASS" || got[0].Price != "140000" {
		t.Errorf("unexpected rows: %+v", got)
	}
}

func TestDecodeMissingColumn(t *testing.T) {
	in := "Marca;Modelo;Preco\nFIAT;ARGO;60000\n"
	_, err := DecodeRawCSV(strings.NewReader(in))
	if !errors.Is(err, ErrMissingColumn) {
		t.Fatalf("expected ErrMissingColumn, got %v", err)
	}
	for _, col := range []string{"Ano_Mod", "Quilometragem", "Tipo_Carroceria"} {
		if !strings.Contains(err.Error(), col) {
			t.Errorf("error should name %s: %v", col, err)
		}
	}
}

func TestReadRawCSVMissingFile(t *testing.T) {
	if _, err := ReadRawCSV(filepath.Join(t.TempDir(), "nope.csv")); err == nil {
		t.Fatal("expected error for a missing file")
	}
}

func TestInsertQueryPlaceholders(t *testing.T) {
	batch := []*models.Listing{
		{Brand: "FIAT", Price: sql.NullFloat64{Float64: 60000, Valid: true}},
		{Brand: "BMW", ClusterID: sql.NullInt64{Int64: 2, Valid: true}},
	}
	query, args := insertQuery("run-1", batch)

	if len(args) != 2*listingColumns {
		t.Fatalf("expected %d args, got %d", 2*listingColumns, len(args))
	}
	if !strings.Contains(query, "($1,$2,") || !strings.Contains(query, "$30)") {
		t.Errorf("unexpected placeholders: %s", query)
	}
	if args[0] != "run-1" || args[listingColumns] != "run-1" {
		t.Errorf("run id not bound to every row: %v", args)
	}
	if p := args[listingColumns+7].(sql.NullFloat64); p.Valid {
		t.Errorf("missing price should bind as NULL, got %+v", p)
	}
	if c := args[listingColumns+11].(sql.NullInt64); !c.Valid || c.Int64 != 2 {
		t.Errorf("cluster id: %+v", c)
	}
}
