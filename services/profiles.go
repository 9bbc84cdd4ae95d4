package services

import (
	"vehicle-insights/models"
	"vehicle-insights/utils"
)

// FocusProfiler builds median profiles for a fixed list of focus groups and
// their most frequent models.
type FocusProfiler struct {
	logger    *utils.Logger
	groups    []models.GroupKey
	topModels int
}

func NewFocusProfiler(logger *utils.Logger, groups []models.GroupKey, topModels int) *FocusProfiler {
	return &FocusProfiler{logger: logger, groups: groups, topModels: topModels}
}

// Profile returns the focus-group profiles in configured order. Groups with
// no members are skipped.
func (p *FocusProfiler) Profile(listings []*models.Listing) models.FocusReport {
	var report models.FocusReport

	for _, key := range p.groups {
		members := inGroup(listings, key)
		if len(members) == 0 {
			p.logger.Debug("[profiles] Focus group %s has no listings, skipped", key)
			continue
		}
		report.Groups = append(report.Groups, models.FocusGroupProfile{Key: key, Profile: profileOf(members)})

		fm := models.FocusGroupModels{Key: key}
		for _, m := range topModels(members, p.topModels) {
			fm.Models = append(fm.Models, models.ModelProfile{Model: m, Profile: profileOf(ofModel(members, m))})
		}
		report.Models = append(report.Models, fm)
	}
	return report
}
