package services

import (
	"vehicle-insights/models"
	"vehicle-insights/stats"
	"vehicle-insights/utils"
)

// SensitivityEstimator estimates how fast prices fall with mileage for the
// most frequent models of each focus group.
type SensitivityEstimator struct {
	logger    *utils.Logger
	groups    []models.GroupKey
	topModels int
	minSample int
	scale     float64
}

func NewSensitivityEstimator(logger *utils.Logger, groups []models.GroupKey, topModels, minSample int, scale float64) *SensitivityEstimator {
	return &SensitivityEstimator{
		logger:    logger,
		groups:    groups,
		topModels: topModels,
		minSample: minSample,
		scale:     scale,
	}
}

// Estimate returns, per focus group, the index of every top model with at
// least minSample listings. Groups without such a model are omitted.
func (e *SensitivityEstimator) Estimate(listings []*models.Listing) models.SensitivityReport {
	report := models.SensitivityReport{Scale: e.scale}

	for _, key := range e.groups {
		members := inGroup(listings, key)
		if len(members) == 0 {
			continue
		}
		sg := models.SensitivityGroup{Key: key}
		for _, m := range topModels(members, e.topModels) {
			ls := ofModel(members, m)
			if len(ls) < e.minSample {
				e.logger.Debug("[sensitivity] %s: %s has %d listings (< %d), skipped", key, m, len(ls), e.minSample)
				continue
			}
			row := UsageSensitivity(ls, e.scale)
			row.Model = m
			sg.Rows = append(sg.Rows, row)
		}
		if len(sg.Rows) > 0 {
			report.Groups = append(report.Groups, sg)
		}
	}
	return report
}

// UsageSensitivity splits listings at their median mileage and compares the
// two halves: ((priceLow - priceHigh) / (mileageHigh - mileageLow)) * scale.
// The index is 0 when the mileage gap is not positive or undefined.
func UsageSensitivity(listings []*models.Listing, scale float64) models.SensitivityRow {
	row := models.SensitivityRow{
		N:           len(listings),
		MedianPrice: nullMedian(prices(listings)),
	}

	cut, ok := stats.Median(mileages(listings))
	if !ok {
		return row
	}
	var low, high []*models.Listing
	for _, l := range listings {
		if !l.Mileage.Valid {
			continue
		}
		if l.Mileage.Float64 <= cut {
			low = append(low, l)
		} else {
			high = append(high, l)
		}
	}

	row.LowPrice = nullMedian(prices(low))
	row.HighPrice = nullMedian(prices(high))
	row.LowMileage = nullMedian(mileages(low))
	row.HighMileage = nullMedian(mileages(high))

	if !row.LowPrice.Valid || !row.HighPrice.Valid || !row.LowMileage.Valid || !row.HighMileage.Valid {
		return row
	}
	gap := row.HighMileage.Float64 - row.LowMileage.Float64
	if gap <= 0 {
		return row
	}
	row.ISU = (row.LowPrice.Float64 - row.HighPrice.Float64) / gap * scale
	return row
}
