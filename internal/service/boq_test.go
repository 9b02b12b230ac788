package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ansindait/aci-system-sub001/internal/models"
)

func TestMergeBoqByCityAndSite(t *testing.T) {
	item := func(code string, bt models.BoqType, qty string) []models.BoqItem {
		return []models.BoqItem{models.NewBoqItem(code, "", bt, qty)}
	}
	docs := []models.BoqDocument{
		{ID: "1", City: "Bandung", SiteName: "S1", BoqType: models.BoqBeforeDrm, Items: item("1", models.BoqBeforeDrm, "4")},
		{ID: "2", City: "Cimahi", SiteName: "S1", BoqType: models.BoqAfterDrm, Items: item("2", models.BoqAfterDrm, "9")},
		{ID: "3", City: "Bandung", SiteName: "S1", BoqType: models.BoqAfterDrm, Items: item("3", models.BoqAfterDrm, "5")},
		{ID: "4", City: "Bandung", SiteName: "S1", BoqType: models.BoqConstructionDone, Items: item("4", models.BoqConstructionDone, "6")},
		{ID: "5", City: "Bandung", SiteName: "S1", BoqType: models.BoqAbd, Items: item("5", models.BoqAbd, "7")},
		{ID: "6", City: "Bandung", SiteName: "S1", BoqType: "Unknown BOQ", Items: item("6", models.BoqAbd, "8")},
	}

	merged := MergeBoq(docs)
	require.Len(t, merged, 2)
	assert.Equal(t, "Bandung", merged[0].City)
	assert.Equal(t, "Cimahi", merged[1].City)
	require.Len(t, merged[0].BeforeDrmBoq, 1)
	require.Len(t, merged[0].AfterDrmBoq, 1)
	require.Len(t, merged[0].ConstDoneBoq, 1)
	require.Len(t, merged[0].AbdBoq, 1)
	assert.Equal(t, "3", merged[0].AfterDrmBoq[0].MaterialCode)
	assert.Equal(t, "5", merged[0].Items(models.BoqAbd)[0].MaterialCode)

	first := SelectBoq(docs)
	require.NotNil(t, first)
	assert.Equal(t, "Bandung", first.City)
	assert.Nil(t, SelectBoq(nil))
}

func TestMergeBoqLaterMilestoneWins(t *testing.T) {
	docs := []models.BoqDocument{
		{ID: "1", City: "Bandung", SiteName: "S1", BoqType: models.BoqAfterDrm, Items: []models.BoqItem{models.NewBoqItem("old", "", models.BoqAfterDrm, "1")}},
		{ID: "2", City: "Bandung", SiteName: "S1", BoqType: models.BoqAfterDrm, Items: []models.BoqItem{models.NewBoqItem("new", "", models.BoqAfterDrm, "2")}},
	}
	merged := SelectBoq(docs)
	require.NotNil(t, merged)
	assert.Equal(t, "new", merged.AfterDrmBoq[0].MaterialCode)
}

func TestUnionBoqDropsRepeatedIDs(t *testing.T) {
	a := []models.BoqDocument{{ID: "1"}, {ID: "2"}}
	b := []models.BoqDocument{{ID: "2"}, {ID: "3"}, {}, {}}

	got := UnionBoq(a, b)
	ids := make([]string, 0, len(got))
	for _, d := range got {
		ids = append(ids, d.ID)
	}
	assert.Equal(t, []string{"1", "2", "3", "", ""}, ids)
}

func TestEntryTarget(t *testing.T) {
	boq := &models.MergedBoq{AfterDrmBoq: []models.BoqItem{
		models.NewBoqItem("200000690", "", models.BoqAfterDrm, "25"),
		models.NewBoqItem("200000691", "", models.BoqAfterDrm, "n/a"),
	}}
	assert.Equal(t, 25, EntryTarget("B. Digging Hole", boq))
	assert.Equal(t, 50, EntryTarget("C. Install Pole", boq))
	assert.Equal(t, 10, EntryTarget("E. Pulling Cable", boq))
	assert.Equal(t, 3, EntryTarget("A. Visit", boq))
	assert.Equal(t, 1, EntryTarget("C. BAST", nil))
	assert.Equal(t, 50, EntryTarget("B. Digging Hole", nil))
}
