package storage

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"vehicle-insights/models"
)

// ErrMissingColumn is returned when the CSV lacks a column the analysis needs.
var ErrMissingColumn = errors.New("csv: missing required column")

// columnAliases maps every accepted header name (lower case) to its field
// index in RawHeader.
var columnAliases = map[string]int{
	"titulo": 0, "title": 0,
	"marca": 1, "brand": 1,
	"modelo": 2, "model": 2,
	"versao": 3, "version": 3,
	"ano_fab": 4, "fabrication_year": 4,
	"ano_mod": 5, "model_year": 5,
	"quilometragem": 6, "mileage": 6,
	"cambio": 7, "transmission": 7,
	"portas": 8, "doors": 8,
	"tipo_carroceria": 9, "body_type": 9,
	"cor": 10, "color": 10,
	"preco": 11, "price": 11,
	"cidade": 12, "city": 12,
	"vendedor": 13, "seller": 13,
	"atributos": 14, "attributes": 14,
	"descricao": 15, "description": 15,
	"link": 16,
}

// requiredColumns are the fields the analysis cannot work without.
var requiredColumns = []int{1, 2, 5, 6, 9, 11}

// ReadRawCSV loads a raw listings file. Columns are matched by header name,
// so their order does not matter and unknown columns are ignored. The
// delimiter (';', ',' or tab) is detected from the header line and a leading
// UTF-8 BOM is skipped.
func ReadRawCSV(path string) ([]*models.RawListing, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("csv: open %q: %w", path, err)
	}
	defer f.Close()

	listings, err := DecodeRawCSV(f)
	if err != nil {
		return nil, fmt.Errorf("csv: read %q: %w", path, err)
	}
	return listings, nil
}

// DecodeRawCSV is ReadRawCSV over an arbitrary reader.
func DecodeRawCSV(r io.Reader) ([]*models.RawListing, error) {
	br := bufio.NewReader(r)
	if b, err := br.Peek(len(utf8BOM)); err == nil && string(b) == utf8BOM {
		_, _ = br.Discard(len(utf8BOM))
	}

	first, err := br.Peek(br.Size())
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, bufio.ErrBufferFull) {
		return nil, err
	}
	if i := bytes.IndexByte(first, '\n'); i >= 0 {
		first = first[:i]
	}

	cr := csv.NewReader(br)
	cr.Comma = sniffDelimiter(first)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: empty file", ErrMissingColumn)
		}
		return nil, fmt.Errorf("header: %w", err)
	}
	index, err := mapColumns(header)
	if err != nil {
		return nil, err
	}

	var listings []*models.RawListing
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		listings = append(listings, fromRecord(rec, index))
	}
	return listings, nil
}

func sniffDelimiter(line []byte) rune {
	best, count := csvDelimiter, 0
	for _, d := range []rune{';', ',', '\t'} {
		if n := bytes.Count(line, []byte(string(d))); n > count {
			best, count = d, n
		}
	}
	return best
}

// mapColumns returns, for every RawHeader field, its column position or -1.
func mapColumns(header []string) ([]int, error) {
	index := make([]int, len(RawHeader))
	for i := range index {
		index[i] = -1
	}
	for pos, name := range header {
		key := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, utf8BOM)))
		if field, ok := columnAliases[key]; ok && index[field] < 0 {
			index[field] = pos
		}
	}
	var missing []string
	for _, field := range requiredColumns {
		if index[field] < 0 {
			missing = append(missing, RawHeader[field])
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrMissingColumn, strings.Join(missing, ", "))
	}
	return index, nil
}

func fromRecord(rec []string, index []int) *models.RawListing {
	get := func(field int) string {
		pos := index[field]
		if pos < 0 || pos >= len(rec) {
			return ""
		}
		return rec[pos]
	}
	return &models.RawListing{
		Title:           get(0),
		Brand:           get(1),
		Model:           get(2),
		Version:         get(3),
		FabricationYear: get(4),
		ModelYear:       get(5),
		Mileage:         get(6),
		Transmission:    get(7),
		Doors:           get(8),
		BodyType:        get(9),
		Color:           get(10),
		Price:           get(11),
		City:            get(12),
		Seller:          get(13),
		Attributes:      get(14),
		Description:     get(15),
		Link:            get(16),
	}
}
