package storage

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"vehicle-insights/models"
)

// RawHeader is the column layout of the raw listings CSV.
var RawHeader = []string{
	"Titulo", "Marca", "Modelo", "Versao", "Ano_Fab", "Ano_Mod", "Quilometragem", "Cambio",
	"Portas", "Tipo_Carroceria", "Cor", "Preco", "Cidade", "Vendedor", "Atributos", "Descricao", "Link",
}

const (
	csvDelimiter = ';'
	utf8BOM      = "\uFEFF"
)

var cellReplacer = strings.NewReplacer("\n", " ", "\r", " ", "\t", " ", ";", ",")

// CSVWriter writes raw listings to a ';'-separated, BOM-prefixed CSV file
// that spreadsheet tools open without an import dialog.
// It is safe for concurrent use.
type CSVWriter struct {
	mu     sync.Mutex
	file   *os.File
	writer *csv.Writer
	rows   int
}

// NewCSVWriter creates (or truncates) the CSV file at the given path and
// writes the header row. Intermediate directories are created automatically.
func NewCSVWriter(path string) (*CSVWriter, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("csv: create output dir: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("csv: create file %q: %w", path, err)
	}
	if _, err := f.WriteString(utf8BOM); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("csv: write bom: %w", err)
	}

	w := csv.NewWriter(f)
	w.Comma = csvDelimiter

	if err := w.Write(RawHeader); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("csv: write header: %w", err)
	}
	w.Flush()

	return &CSVWriter{file: f, writer: w}, nil
}

// WriteRaw appends every listing to the file. Line breaks, tabs and ';'
// inside values are replaced so each record stays on a single line.
func (c *CSVWriter) WriteRaw(listings []*models.RawListing) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, l := range listings {
		if err := c.writer.Write(rawRow(l)); err != nil {
			return fmt.Errorf("csv: write row: %w", err)
		}
		c.rows++
	}

	c.writer.Flush()
	return c.writer.Error()
}

// Rows returns the number of data rows written so far.
func (c *CSVWriter) Rows() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.rows
}

// Close flushes and closes the underlying file.
func (c *CSVWriter) Close() error {
	c.writer.Flush()
	return c.file.Close()
}

func rawRow(l *models.RawListing) []string {
	row := []string{
		l.Title, l.Brand, l.Model, l.Version, l.FabricationYear, l.ModelYear, l.Mileage,
		l.Transmission, l.Doors, l.BodyType, l.Color, l.Price, l.City, l.Seller,
		l.Attributes, l.Description, l.Link,
	}
	for i, v := range row {
		row[i] = cellReplacer.Replace(v)
	}
	return row
}
