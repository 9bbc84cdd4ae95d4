package services

import (
	"database/sql"

	"vehicle-insights/models"
)

// listing builds a working-set row; a negative mileage argument means missing.
func listing(category, body, model string, price, mileage float64, modelYear int) *models.Listing {
	l := &models.Listing{
		Brand:     category + "-brand",
		Model:     model,
		BodyType:  body,
		Price:     sql.NullFloat64{Float64: price, Valid: true},
		ModelYear: modelYear,
		Category:  category,
		Condition: models.ConditionUsed,
		Age:       2025 - modelYear,
	}
	if mileage >= 0 {
		l.Mileage = sql.NullFloat64{Float64: mileage, Valid: true}
	}
	return l
}

// scenario returns 12 listings: 2 categories x 2 body types, 3 each.
func scenario() []*models.Listing {
	return []*models.Listing{
		listing(models.CategoryVolume, "Hatchback", "ARGO", 50000, 40000, 2020),
		listing(models.CategoryVolume, "Hatchback", "ARGO", 60000, 30000, 2021),
		listing(models.CategoryVolume, "Hatchback", "ONIX", 70000, 20000, 2022),

		listing(models.CategoryVolume, "Sedã", "CRONOS", 80000, 50000, 2019),
		listing(models.CategoryVolume, "Sedã", "CRONOS", 90000, 45000, 2020),
		listing(models.CategoryVolume, "Sedã", "VIRTUS", 130000, 10000, 2023),

		listing(models.CategoryLuxury, "Hatchback", "A3", 150000, 35000, 2020),
		listing(models.CategoryLuxury, "Hatchback", "A3", 160000, 25000, 2021),
		listing(models.CategoryLuxury, "Hatchback", "118I", 200000, 10000, 2023),

		listing(models.CategoryLuxury, "Sedã", "320I", 210000, 60000, 2019),
		listing(models.CategoryLuxury, "Sedã", "320I", 240000, 30000, 2021),
		listing(models.CategoryLuxury, "Sedã", "C200", 300000, 15000, 2022),
	}
}
