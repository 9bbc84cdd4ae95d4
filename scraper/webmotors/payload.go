package webmotors

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"vehicle-insights/models"
)

const (
	listingBaseURL = "https://www.webmotors.com.br/comprar/"
	privateSeller  = "Particular"
)

// scalar accepts a JSON string, number, boolean or null and keeps its text.
// The search API is not consistent about quoting numeric fields.
type scalar string

func (s *scalar) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case bytes.Equal(b, []byte("null")):
		*s = ""
	case len(b) > 0 && b[0] == '"':
		var str string
		if err := json.Unmarshal(b, &str); err != nil {
			return err
		}
		*s = scalar(str)
	case len(b) > 0 && (b[0] == '{' || b[0] == '['):
		return fmt.Errorf("webmotors: expected scalar, got %s", b[:1])
	default:
		*s = scalar(b)
	}
	return nil
}

type named struct {
	Value scalar `json:"Value"`
}

type searchPage struct {
	SearchResults []searchResult `json:"SearchResults"`
}

type searchResult struct {
	UniqueID      scalar        `json:"UniqueId"`
	LongComment   scalar        `json:"LongComment"`
	Specification specification `json:"Specification"`
	Seller        struct {
		City        scalar `json:"City"`
		FantasyName scalar `json:"FantasyName"`
	} `json:"Seller"`
	Prices struct {
		Price scalar `json:"Price"`
	} `json:"Prices"`
}

type specification struct {
	Title           scalar `json:"Title"`
	Make            named  `json:"Make"`
	Model           named  `json:"Model"`
	Version         named  `json:"Version"`
	YearFabrication scalar `json:"YearFabrication"`
	YearModel       scalar `json:"YearModel"`
	Odometer        scalar `json:"Odometer"`
	Transmission    scalar `json:"Transmission"`
	NumberPorts     scalar `json:"NumberPorts"`
	BodyType        scalar `json:"BodyType"`
	Color           struct {
		Primary scalar `json:"Primary"`
	} `json:"Color"`
	VehicleAttributes []struct {
		Name scalar `json:"Name"`
	} `json:"VehicleAttributes"`
}

var descriptionReplacer = strings.NewReplacer("\n", " ", "\r", " ", ";", ",")

// decodePage parses one search page into raw listings.
func decodePage(body []byte) ([]*models.RawListing, error) {
	var page searchPage
	if err := json.Unmarshal(body, &page); err != nil {
		return nil, fmt.Errorf("webmotors: decode page: %w", err)
	}
	out := make([]*models.RawListing, 0, len(page.SearchResults))
	for i := range page.SearchResults {
		out = append(out, page.SearchResults[i].flatten())
	}
	return out, nil
}

func (r *searchResult) flatten() *models.RawListing {
	spec := r.Specification

	attrs := make([]string, 0, len(spec.VehicleAttributes))
	for _, a := range spec.VehicleAttributes {
		if a.Name != "" {
			attrs = append(attrs, string(a.Name))
		}
	}
	seller := string(r.Seller.FantasyName)
	if strings.TrimSpace(seller) == "" {
		seller = privateSeller
	}

	return &models.RawListing{
		Title:           string(spec.Title),
		Brand:           string(spec.Make.Value),
		Model:           string(spec.Model.Value),
		Version:         string(spec.Version.Value),
		FabricationYear: string(spec.YearFabrication),
		ModelYear:       string(spec.YearModel),
		Mileage:         string(spec.Odometer),
		Transmission:    string(spec.Transmission),
		Doors:           string(spec.NumberPorts),
		BodyType:        string(spec.BodyType),
		Color:           string(spec.Color.Primary),
		Price:           string(r.Prices.Price),
		City:            string(r.Seller.City),
		Seller:          seller,
		Attributes:      strings.Join(attrs, ", "),
		Description:     descriptionReplacer.Replace(string(r.LongComment)),
		Link:            listingBaseURL + string(r.UniqueID),
	}
}
