// Package checklist holds the per-division upload checklist and its completion targets.
//
// The tables are fixed at build time. Callers only get copies, so the package behaves
// as immutable configuration.
package checklist

import (
	"regexp"

	"github.com/ansindait/aci-system-sub001/internal/models"
)

type Entry struct {
	Title    string          `json:"title"`
	Division models.Division `json:"division"`
}

// SectionName is the title without its "<Letter>. " prefix, the value upload events
// carry in their section field.
func (e Entry) SectionName() string {
	return SectionName(e.Title)
}

var entries = [...]Entry{
	{"A. Visit", models.DivisionPermit},

	{"A. Survey", models.DivisionSND},
	{"B. SND Kasar", models.DivisionSND},
	{"C. SND Detail", models.DivisionSND},
	{"D. Approval SND", models.DivisionSND},

	{"A. Material Delivery", models.DivisionCW},
	{"B. Digging Hole", models.DivisionCW},
	{"C. Install Pole", models.DivisionCW},
	{"D. Pole Foundation", models.DivisionCW},
	{"E. Pulling Cable", models.DivisionCW},
	{"F. Install Closure", models.DivisionCW},
	{"G. Install ODP", models.DivisionCW},
	{"H. Grounding", models.DivisionCW},

	{"A. Install Panel", models.DivisionEL},
	{"B. Splicing", models.DivisionEL},
	{"C. OTDR Test", models.DivisionEL},
	{"D. Power Meter Test", models.DivisionEL},
	{"E. Commissioning", models.DivisionEL},

	{"A. Redline Drawing", models.DivisionDocument},
	{"B. ABD Document", models.DivisionDocument},
	{"C. BAST", models.DivisionDocument},
	{"D. Material Return", models.DivisionDocument},
}

// sectionPhotoMax is the expected number of uploads per entry. Entries not listed
// expect a single upload.
var sectionPhotoMax = map[string]int{
	"A. Visit": 3,

	"A. Survey":     5,
	"B. SND Kasar":  2,
	"C. SND Detail": 2,

	"A. Material Delivery": 5,
	"B. Digging Hole":      50,
	"C. Install Pole":      50,
	"D. Pole Foundation":   20,
	"E. Pulling Cable":     10,
	"F. Install Closure":   5,
	"G. Install ODP":       5,
	"H. Grounding":         5,

	"A. Install Panel":    2,
	"B. Splicing":         10,
	"C. OTDR Test":        4,
	"D. Power Meter Test": 4,

	"A. Redline Drawing": 2,
}

// sectionMaterialCodeMap links entries whose target comes from the After DRM BOQ.
var sectionMaterialCodeMap = map[string]string{
	"B. Digging Hole":    "200000690",
	"C. Install Pole":    "200000691",
	"E. Pulling Cable":   "200001183",
	"F. Install Closure": "200000964",
	"G. Install ODP":     "200001034",
}

const fallbackTarget = 1

var titlePrefix = regexp.MustCompile(`^[A-Za-z]\.\s+`)

func Entries() []Entry {
	out := make([]Entry, len(entries))
	copy(out, entries[:])
	return out
}

func SectionName(title string) string {
	return titlePrefix.ReplaceAllString(title, "")
}

func DefaultTarget(title string) (int, bool) {
	n, ok := sectionPhotoMax[title]
	return n, ok
}

// TargetOrFallback is the default target, or 1 when the entry has none.
func TargetOrFallback(title string) int {
	if n, ok := sectionPhotoMax[title]; ok {
		return n
	}
	return fallbackTarget
}

func MaterialCode(title string) (string, bool) {
	code, ok := sectionMaterialCodeMap[title]
	return code, ok
}

type Item struct {
	Title         string          `json:"title" yaml:"title"`
	Section       string          `json:"section" yaml:"section"`
	Division      models.Division `json:"division" yaml:"division"`
	DefaultTarget int             `json:"default_target" yaml:"default_target"`
	MaterialCode  string          `json:"material_code,omitempty" yaml:"material_code,omitempty"`
}

// Describe flattens the tables for display.
func Describe() []Item {
	out := make([]Item, 0, len(entries))
	for _, e := range entries {
		code, _ := MaterialCode(e.Title)
		out = append(out, Item{
			Title:         e.Title,
			Section:       e.SectionName(),
			Division:      e.Division,
			DefaultTarget: TargetOrFallback(e.Title),
			MaterialCode:  code,
		})
	}
	return out
}
