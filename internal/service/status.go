package service

import (
	"strconv"
	"strings"

	"github.com/ansindait/aci-system-sub001/internal/models"
)

const (
	SiteStatusCompleted  = "Completed"
	SiteStatusInProgress = "In Progress"
	SiteStatusNoData     = "-"
)

// DeriveSiteStatus summarizes the five division ratios. A division is complete when
// it has at least one upload and has met its target.
func DeriveSiteStatus(p models.ProgressResult) string {
	allZero := true
	allComplete := true
	for _, d := range models.Divisions() {
		ratio := p.Ratio(d)
		if ratio != models.ZeroRatio {
			allZero = false
		}
		uploaded, target := ParseRatio(ratio)
		if !(uploaded > 0 && uploaded >= target) {
			allComplete = false
		}
	}
	switch {
	case allZero:
		return SiteStatusNoData
	case allComplete:
		return SiteStatusCompleted
	default:
		return SiteStatusInProgress
	}
}

// ParseRatio splits "uploaded/target". Unparseable parts read as 0.
func ParseRatio(ratio string) (uploaded, target int) {
	left, right, _ := strings.Cut(ratio, "/")
	uploaded, _ = strconv.Atoi(strings.TrimSpace(left))
	target, _ = strconv.Atoi(strings.TrimSpace(right))
	return uploaded, target
}
