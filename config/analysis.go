package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"vehicle-insights/models"
)

// MinClusterInits is the fewest k-means++ initializations a run may use.
const MinClusterInits = 20

// Analysis holds every tunable of the analytical pipeline.
type Analysis struct {
	ReferenceYear int     `yaml:"reference_year"`
	PriceFloor    float64 `yaml:"price_floor"`

	LuxuryBrands   []string `yaml:"luxury_brands"`
	EmergingBrands []string `yaml:"emerging_brands"`

	FocusGroups []models.GroupKey `yaml:"focus_groups"`
	TopModels   int               `yaml:"top_models"`

	CoverageMultipliers []float64 `yaml:"coverage_multipliers"`

	MinSensitivitySample int     `yaml:"min_sensitivity_sample"`
	SensitivityScale     float64 `yaml:"sensitivity_scale"`

	ClusterCount     int     `yaml:"cluster_count"`
	ClusterInits     int     `yaml:"cluster_inits"`
	ClusterSeed      uint64  `yaml:"cluster_seed"`
	ClusterMaxIter   int     `yaml:"cluster_max_iter"`
	ClusterTolerance float64 `yaml:"cluster_tolerance"`
}

// DefaultAnalysis returns the parameters of the Florianopolis study.
func DefaultAnalysis() Analysis {
	return Analysis{
		ReferenceYear: 2025,
		PriceFloor:    5000,
		LuxuryBrands: []string{
			"BMW", "MERCEDES-BENZ", "LAND ROVER", "PORSCHE", "AUDI", "RAM", "VOLVO",
			"MINI", "ZEEKR", "JAGUAR", "JEEP", "LEXUS", "DODGE", "MASERATI",
			"ASTON MARTIN", "FERRARI", "TESLA", "INFINITI",
		},
		EmergingBrands: []string{
			"BYD", "GWM", "MG", "CAOA CHERY", "JAECOO", "OMODA", "LEAPMOTOR",
		},
		FocusGroups: []models.GroupKey{
			{Category: models.CategoryLuxury, BodyType: "Utilitário esportivo"},
			{Category: models.CategoryVolume, BodyType: "Utilitário esportivo"},
			{Category: models.CategoryVolume, BodyType: "Hatchback"},
			{Category: models.CategoryVolume, BodyType: "Picape"},
			{Category: models.CategoryVolume, BodyType: "Sedã"},
		},
		TopModels:            5,
		CoverageMultipliers:  []float64{1, 2},
		MinSensitivitySample: 10,
		SensitivityScale:     10000,
		ClusterCount:         3,
		ClusterInits:         20,
		ClusterSeed:          42,
		ClusterMaxIter:       300,
		ClusterTolerance:     1e-4,
	}
}

// LoadAnalysis reads a YAML file on top of DefaultAnalysis. Keys absent from
// the file keep their default value.
func LoadAnalysis(path string) (Analysis, error) {
	a := DefaultAnalysis()
	b, err := os.ReadFile(path)
	if err != nil {
		return a, fmt.Errorf("config: read analysis file %q: %w", path, err)
	}
	if err := yaml.Unmarshal(b, &a); err != nil {
		return a, fmt.Errorf("config: parse analysis file %q: %w", path, err)
	}
	if err := a.Validate(); err != nil {
		return a, err
	}
	return a, nil
}

// Save writes the analysis parameters as YAML.
func (a Analysis) Save(path string) error {
	b, err := yaml.Marshal(a)
	if err != nil {
		return fmt.Errorf("config: marshal analysis: %w", err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("config: write analysis file: %w", err)
	}
	return nil
}

// Validate rejects parameter sets the pipeline cannot run with.
func (a Analysis) Validate() error {
	switch {
	case a.ClusterCount < 1:
		return fmt.Errorf("config: cluster_count must be >= 1, got %d", a.ClusterCount)
	case a.ClusterInits < MinClusterInits:
		return fmt.Errorf("config: cluster_inits must be >= %d, got %d", MinClusterInits, a.ClusterInits)
	case len(a.CoverageMultipliers) == 0:
		return fmt.Errorf("config: coverage_multipliers must not be empty")
	case a.TopModels < 1:
		return fmt.Errorf("config: top_models must be >= 1, got %d", a.TopModels)
	case a.MinSensitivitySample < 1:
		return fmt.Errorf("config: min_sensitivity_sample must be >= 1, got %d", a.MinSensitivitySample)
	case a.SensitivityScale <= 0:
		return fmt.Errorf("config: sensitivity_scale must be positive")
	}
	for _, k := range a.CoverageMultipliers {
		if k <= 0 {
			return fmt.Errorf("config: coverage multiplier must be positive, got %v", k)
		}
	}
	return nil
}
