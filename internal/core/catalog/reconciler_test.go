package catalog

import (
	"encoding/json"
	"strings"
	"testing"

	"catalog-normalizer/internal/infrastructure/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testEngineConfig() config.EngineConfig {
	return config.EngineConfig{
		IDSeed:       100000,
		DefaultDiet:  DietRegular,
		SampleLimit:  20,
		ChangeLogCap: 500,
	}
}

func reconcileJSON(t *testing.T, input string) (*Document, *ChangeReport) {
	t.Helper()
	raw, err := ParseRawDocument([]byte(input))
	require.NoError(t, err)

	rc := NewReconciler(testEngineConfig())
	doc, err := rc.Reconcile(raw)
	require.NoError(t, err)
	return doc, rc.Report()
}

func TestReconcileFlatListShape(t *testing.T) {
	doc, report := reconcileJSON(t, `{
		"indian": {
			"vegan": [
				{"id": "1", "title": "Chana Masala Curry", "calories": "350"},
				{"id": "2", "title": "Masala Dosa", "calories": 280}
			]
		}
	}`)

	records, ok := doc.Catalog.Lookup("Indian", DietVegan, MealDinner)
	require.True(t, ok)
	require.Len(t, records, 1)
	assert.Equal(t, "Chana Masala Curry", records[0].Title)
	assert.Equal(t, 350.0, records[0].Calories)

	records, ok = doc.Catalog.Lookup("Indian", DietVegan, MealBreakfast)
	require.True(t, ok)
	require.Len(t, records, 1)
	assert.Equal(t, "Masala Dosa", records[0].Title)

	assert.Equal(t, 2, report.Summary.RecordsIn)
	assert.Equal(t, 2, report.Summary.RecordsOut)
}

func TestReconcileBucketedByMealTypeShape(t *testing.T) {
	doc, _ := reconcileJSON(t, `{
		"Italian": {
			"vegetarian": {
				"breakfast": [{"id": "b1", "title": "Plain Frittata Base"}],
				"dinner":    [{"id": "d1", "title": "Plain Risotto Base"}]
			}
		}
	}`)

	// 桶位的餐別鍵作為提示生效
	_, ok := doc.Catalog.Lookup("Italian", DietVegetarian, MealBreakfast)
	assert.True(t, ok)
	_, ok = doc.Catalog.Lookup("Italian", DietVegetarian, MealDinner)
	assert.True(t, ok)
}

func TestReconcileNestedArraysFlattened(t *testing.T) {
	doc, _ := reconcileJSON(t, `{
		"thai": {
			"regular": [
				[{"id": "n1", "title": "Pad Thai"}],
				{"id": "n2", "title": "Green Papaya Salad"}
			]
		}
	}`)

	assert.Equal(t, 2, doc.Catalog.RecordCount())
}

func TestReconcileDropsUnknownRegion(t *testing.T) {
	doc, report := reconcileJSON(t, `{
		"atlantis": {
			"vegan": [{"id": "x", "title": "Kelp Bowl"}]
		},
		"indian": {
			"vegan": [{"id": "y", "title": "Dal"}]
		}
	}`)

	_, hasAtlantis := doc.Catalog["atlantis"]
	assert.False(t, hasAtlantis)
	assert.Equal(t, 1, doc.Catalog.RecordCount())
	assert.Equal(t, 1, report.DroppedRegions["atlantis"])
	assert.Equal(t, 1, report.Summary.DroppedRegions)
	assert.Equal(t, 1, report.Summary.DroppedRecords)
}

func TestReconcileUnknownDietBecomesDefault(t *testing.T) {
	doc, report := reconcileJSON(t, `{
		"indian": {
			"fruitarian": [{"id": "f1", "title": "Fruit Plate"}]
		}
	}`)

	records, ok := doc.Catalog.Lookup("Indian", DietRegular, MealLunch)
	require.True(t, ok)
	require.Len(t, records, 1)
	assert.Equal(t, DietRegular, report.DietRemaps["fruitarian"])
	// 飲食不變式：記錄的 diets 含其桶位飲食
	assert.Contains(t, records[0].Diets, DietRegular)
}

func TestReconcileVeganCascadeToVegetarian(t *testing.T) {
	doc, report := reconcileJSON(t, `{
		"indian": {
			"vegan": [{"id": "v1", "title": "Kheer", "ingredients": "rice milk sugar cardamom"}]
		}
	}`)

	// 只有乳蛋類違規 → 蛋奶素
	records, ok := doc.Catalog.Lookup("Indian", DietVegetarian, MealLunch)
	require.True(t, ok)
	require.Len(t, records, 1)
	assert.Equal(t, "v1", records[0].ID)
	assert.Equal(t, DietVegetarian, records[0].Diets[0], "target diet comes first")

	_, stillVegan := doc.Catalog["Indian"][DietVegan]
	assert.False(t, stillVegan)

	require.Len(t, report.Demotions, 1)
	assert.Equal(t, DietVegan, report.Demotions[0].FromDiet)
	assert.Equal(t, DietVegetarian, report.Demotions[0].ToDiet)
	assert.Contains(t, report.Demotions[0].OffendingTerms, "milk")
}

func TestReconcileVeganCascadeToRegular(t *testing.T) {
	doc, report := reconcileJSON(t, `{
		"indian": {
			"vegan": [{"id": "v2", "title": "Butter Chicken", "ingredients": "chicken butter milk"}]
		}
	}`)

	// 肉類違規壓過乳蛋類 → 一般
	records, ok := doc.Catalog.Lookup("Indian", DietRegular, MealLunch)
	require.True(t, ok)
	require.Len(t, records, 1)
	assert.Equal(t, DietRegular, records[0].Diets[0])

	require.Len(t, report.Demotions, 1)
	assert.Equal(t, DietRegular, report.Demotions[0].ToDiet)
	assert.Contains(t, report.Demotions[0].OffendingTerms, "chicken")
	assert.Contains(t, report.Demotions[0].OffendingTerms, "milk")
}

func TestReconcileVegetarianCascade(t *testing.T) {
	doc, report := reconcileJSON(t, `{
		"japanese": {
			"vegetarian": [{"id": "s1", "title": "Salmon Onigiri", "tags": ["fish"]}]
		}
	}`)

	// 蛋奶素違規一律降到一般，絕不留在原桶
	_, stillVegetarian := doc.Catalog["Japanese"][DietVegetarian]
	assert.False(t, stillVegetarian)

	records, ok := doc.Catalog.Lookup("Japanese", DietRegular, MealLunch)
	require.True(t, ok)
	require.Len(t, records, 1)

	require.Len(t, report.Demotions, 1)
	assert.Equal(t, DietVegetarian, report.Demotions[0].FromDiet)
	assert.Equal(t, DietRegular, report.Demotions[0].ToDiet)
}

func TestReconcileKetoNotViolationChecked(t *testing.T) {
	doc, report := reconcileJSON(t, `{
		"american": {
			"keto": [{"id": "k1", "title": "Bacon and Eggs", "mealType": "breakfast"}]
		}
	}`)

	records, ok := doc.Catalog.Lookup("American", DietKeto, MealBreakfast)
	require.True(t, ok)
	require.Len(t, records, 1)
	assert.Empty(t, report.Demotions)
}

func TestReconcileOptionFlattening(t *testing.T) {
	doc, _ := reconcileJSON(t, `{
		"mexican": {
			"vegan": [{
				"id": "7",
				"foods": ["Rice", "Beans"],
				"options": ["Option 1", "Option 2"]
			}]
		}
	}`)

	assert.Equal(t, 2, doc.Catalog.RecordCount())

	var ids []string
	var titles []string
	for _, diets := range doc.Catalog {
		for _, meals := range diets {
			for _, records := range meals {
				for _, rec := range records {
					ids = append(ids, rec.ID)
					titles = append(titles, rec.Title)
				}
			}
		}
	}
	assert.ElementsMatch(t, []string{"7_0", "7_1"}, ids)
	// 選項字串是佔位標題，讓位給食物名稱
	assert.ElementsMatch(t, []string{"Rice & Beans", "Rice & Beans"}, titles)
}

func TestReconcileIDUniquenessAcrossCollisions(t *testing.T) {
	doc, report := reconcileJSON(t, `{
		"indian": {
			"vegan":      [{"id": "1", "title": "Dal Tadka"}],
			"vegetarian": [{"id": "1", "title": "Palak Paneer Saag"}],
			"regular":    [{"id": 1, "title": "Rogan Josh Stew"}]
		}
	}`)

	seen := make(map[string]bool)
	for _, diets := range doc.Catalog {
		for _, meals := range diets {
			for _, records := range meals {
				for _, rec := range records {
					assert.False(t, seen[rec.ID], "duplicate output id %s", rec.ID)
					seen[rec.ID] = true
				}
			}
		}
	}
	assert.Len(t, seen, 3)
	// 兩次重新分配都掛在同一個原始 id 下，缺一不可
	assert.Len(t, report.IDReassignments["1"], 2)
}

func TestReconcileDeterminism(t *testing.T) {
	input := `{
		"indian": {
			"vegan": [
				{"id": "1", "title": "Dal"},
				{"id": "1", "title": "Chana"},
				{"options": ["A", "B"], "id": "9"}
			],
			"unknown-diet": [{"title": "Mystery Bowl"}]
		},
		"narnia": {"vegan": [{"id": "n", "title": "Snow Soup"}]},
		"thai": {"veg": {"dinner": [{"title": "Green Curry"}]}}
	}`

	run := func() ([]byte, map[string][]string) {
		raw, err := ParseRawDocument([]byte(input))
		require.NoError(t, err)
		rc := NewReconciler(testEngineConfig())
		doc, err := rc.Reconcile(raw)
		require.NoError(t, err)
		out, err := json.Marshal(doc)
		require.NoError(t, err)
		return out, rc.Report().IDReassignments
	}

	// 整份輸出文件（含 __meta__）逐位元相同，不只目錄部分
	firstDoc, firstIDs := run()
	secondDoc, secondIDs := run()

	assert.Equal(t, string(firstDoc), string(secondDoc))
	assert.Equal(t, firstIDs, secondIDs)
}

func TestReconcileDietInvariant(t *testing.T) {
	doc, _ := reconcileJSON(t, `{
		"indian": {
			"vegan": [
				{"id": "a", "title": "Dal"},
				{"id": "b", "title": "Kheer", "ingredients": "milk"},
				{"id": "c", "title": "Fish Curry", "ingredients": "fish"}
			],
			"keto": [{"id": "d", "title": "Paneer Bhurji Scramble"}]
		}
	}`)

	// 每筆輸出記錄的 diets 都含其所在桶位的飲食鍵
	for _, diets := range doc.Catalog {
		for diet, meals := range diets {
			for _, records := range meals {
				for _, rec := range records {
					assert.Contains(t, rec.Diets, diet,
						"record %s stored under %s", rec.ID, diet)
				}
			}
		}
	}
}

func TestReconcileMetaBlock(t *testing.T) {
	doc, report := reconcileJSON(t, `{
		"indian": {"vegan": [{"id": "1", "title": "Dal"}]},
		"atlantis": {"vegan": [{"id": "2", "title": "Kelp"}]}
	}`)

	require.NotNil(t, doc.Meta)
	assert.NotEmpty(t, doc.Meta["change_log"])
	assert.NotEmpty(t, report.RunID)

	// 執行識別碼與時間戳只屬於次要報告，主文件必須可重現
	assert.NotContains(t, doc.Meta, "run_id")
	assert.NotContains(t, doc.Meta, "generated_at")

	summary, ok := doc.Meta["summary"].(Summary)
	require.True(t, ok)
	assert.Equal(t, 2, summary.RecordsIn)
	assert.Equal(t, 1, summary.RecordsOut)
	assert.Equal(t, 1, summary.DroppedRegions)

	// __meta__ 與地區鍵平鋪在同一層
	encoded, err := json.Marshal(doc)
	require.NoError(t, err)
	var round map[string]interface{}
	require.NoError(t, json.Unmarshal(encoded, &round))
	assert.Contains(t, round, MetaKey)
	assert.Contains(t, round, "Indian")
}

func TestReconcileNonObjectRecordsSilentlyDropped(t *testing.T) {
	doc, report := reconcileJSON(t, `{
		"indian": {
			"vegan": ["just a string", 42, {"id": "ok", "title": "Dal"}]
		}
	}`)

	assert.Equal(t, 1, doc.Catalog.RecordCount())
	assert.Equal(t, 2, report.Summary.DroppedRecords)
}

func TestReconcileUnrecognizedBucketShapeSkipped(t *testing.T) {
	doc, report := reconcileJSON(t, `{
		"indian": {
			"vegan":      "not a bucket",
			"vegetarian": [{"id": "ok", "title": "Palak Paneer Saag"}]
		}
	}`)

	// 非列表也非餐別物件的桶位整個略過，但在變更記錄留痕
	assert.Equal(t, 1, doc.Catalog.RecordCount())

	var noted bool
	for _, line := range report.ChangeLog {
		if strings.Contains(line, "unrecognized shape") {
			noted = true
		}
	}
	assert.True(t, noted, "skipped bucket must appear in the change log")
}

func TestReconcileMetaKeyIgnoredOnRead(t *testing.T) {
	doc, _ := reconcileJSON(t, `{
		"__meta__": {"change_log": ["stale"]},
		"indian": {"vegan": [{"id": "1", "title": "Dal"}]}
	}`)

	assert.Equal(t, 1, doc.Catalog.RecordCount())
	// 舊的 __meta__ 不會滲進新的輸出
	assert.NotContains(t, doc.Meta["change_log"], "stale")
}
