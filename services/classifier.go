package services

import "vehicle-insights/models"

// Classifier maps a brand onto its market category.
type Classifier struct {
	luxury   map[string]struct{}
	emerging map[string]struct{}
}

// NewClassifier builds a Classifier from the two membership lists. Matching is
// case-exact; a brand listed in both is Luxury.
func NewClassifier(luxury, emerging []string) *Classifier {
	c := &Classifier{
		luxury:   make(map[string]struct{}, len(luxury)),
		emerging: make(map[string]struct{}, len(emerging)),
	}
	for _, b := range luxury {
		c.luxury[b] = struct{}{}
	}
	for _, b := range emerging {
		c.emerging[b] = struct{}{}
	}
	return c
}

// Classify returns Luxury, Emerging or, for any other brand, Volume.
func (c *Classifier) Classify(brand string) string {
	if _, ok := c.luxury[brand]; ok {
		return models.CategoryLuxury
	}
	if _, ok := c.emerging[brand]; ok {
		return models.CategoryEmerging
	}
	return models.CategoryVolume
}
