package services

import (
	"vehicle-insights/models"
	"vehicle-insights/utils"
)

// Preparer turns raw records into the working set every analysis reads.
type Preparer struct {
	logger     *utils.Logger
	cleaner    *Cleaner
	priceFloor float64
}

// NewPreparer creates a Preparer keeping used vehicles priced above priceFloor.
func NewPreparer(logger *utils.Logger, cleaner *Cleaner, priceFloor float64) *Preparer {
	return &Preparer{logger: logger, cleaner: cleaner, priceFloor: priceFloor}
}

// Prepare coerces, enriches and filters raw records.
func (p *Preparer) Prepare(raw []*models.RawListing) ([]*models.Listing, models.PrepareSummary) {
	all, st := p.cleaner.Clean(raw)
	kept := p.Filter(all)

	summary := models.PrepareSummary{
		TotalLoaded:      len(all),
		Retained:         len(kept),
		MissingPrice:     st.MissingPrice,
		MissingMileage:   st.MissingMileage,
		MissingModelYear: st.MissingModelYear,
	}
	for i, l := range kept {
		if i == 0 || l.ModelYear < summary.MinModelYear {
			summary.MinModelYear = l.ModelYear
		}
		if i == 0 || l.ModelYear > summary.MaxModelYear {
			summary.MaxModelYear = l.ModelYear
		}
	}

	p.logger.Info("[preparer] Loaded %d records, retained %d used vehicles priced above %.0f (model years %d-%d)",
		summary.TotalLoaded, summary.Retained, p.priceFloor, summary.MinModelYear, summary.MaxModelYear)
	if summary.MissingPrice > 0 || summary.MissingMileage > 0 {
		p.logger.Warn("[preparer] Missing values: price=%d mileage=%d model-year=%d",
			summary.MissingPrice, summary.MissingMileage, summary.MissingModelYear)
	}
	return kept, summary
}

// Filter keeps used listings with a known price strictly above the floor.
// Filter(Filter(x)) == Filter(x).
func (p *Preparer) Filter(listings []*models.Listing) []*models.Listing {
	kept := make([]*models.Listing, 0, len(listings))
	for _, l := range listings {
		if l.Condition != models.ConditionUsed {
			continue
		}
		if !l.Price.Valid || l.Price.Float64 <= p.priceFloor {
			continue
		}
		kept = append(kept, l)
	}
	return kept
}
