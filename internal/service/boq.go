package service

import (
	"github.com/ansindait/aci-system-sub001/internal/models"
)

type boqKey struct {
	city     string
	siteName string
}

// UnionBoq concatenates lookup results, dropping documents already seen by id.
func UnionBoq(lists ...[]models.BoqDocument) []models.BoqDocument {
	seen := map[string]struct{}{}
	var out []models.BoqDocument
	for _, list := range lists {
		for _, d := range list {
			if d.ID != "" {
				if _, ok := seen[d.ID]; ok {
					continue
				}
				seen[d.ID] = struct{}{}
			}
			out = append(out, d)
		}
	}
	return out
}

// MergeBoq folds milestone documents into one record per (city, siteName), in the
// order each pair is first seen. A later document of the same milestone replaces
// the earlier one; unknown milestones are ignored.
func MergeBoq(docs []models.BoqDocument) []models.MergedBoq {
	index := map[boqKey]int{}
	var out []models.MergedBoq
	for _, d := range docs {
		k := boqKey{city: d.City, siteName: d.SiteName}
		i, ok := index[k]
		if !ok {
			out = append(out, models.MergedBoq{City: d.City, SiteName: d.SiteName})
			i = len(out) - 1
			index[k] = i
		}
		out[i].Set(d.BoqType, d.Items)
	}
	return out
}

// SelectBoq returns the first merged record, or nil when there is none.
func SelectBoq(docs []models.BoqDocument) *models.MergedBoq {
	merged := MergeBoq(docs)
	if len(merged) == 0 {
		return nil
	}
	return &merged[0]
}
