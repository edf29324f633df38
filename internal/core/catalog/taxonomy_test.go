package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanonicalRegionSynonyms(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"indian", "Indian"},
		{"  India ", "Indian"},
		{"North Indian", "Indian"},
		{"GREEK", "Mediterranean"},
		{"tex-mex", "Mexican"},
		{"lebanese", "Middle Eastern"},
		{"usa", "American"},
		{"atlantis", ""}, // 未知地區對不上任何鍵
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, CanonicalRegion(tt.raw), "raw %q", tt.raw)
	}
}

func TestCanonicalDietSynonyms(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"vegan", DietVegan},
		{"Plant Based", DietVegan},
		{"veg", DietVegetarian},
		{"pure veg", DietVegetarian},
		{"non-veg", DietRegular},
		{"KETO", DietKeto},
		{"gluten free", DietGlutenFree},
		{"diabetic friendly", DietDiabetic},
		{"fruitarian", DietRegular}, // 未知飲食收斂到預設
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, CanonicalDiet(tt.raw, DietRegular), "raw %q", tt.raw)
	}
}

func TestFixedEnumerationSizes(t *testing.T) {
	assert.Len(t, CanonicalRegions, 9)
	assert.Len(t, CanonicalDiets, 7)
	assert.Len(t, CanonicalMealTypes, 4)
}

func TestDemotionPolicyTable(t *testing.T) {
	// 純素 + 只有乳蛋類違規 → 蛋奶素
	assert.Equal(t, DietVegetarian, DemotionTarget(DietVegan, []string{"milk"}))
	assert.Equal(t, DietVegetarian, DemotionTarget(DietVegan, []string{"cheese", "honey"}))

	// 純素 + 任何肉類違規 → 一般
	assert.Equal(t, DietRegular, DemotionTarget(DietVegan, []string{"milk", "chicken"}))
	assert.Equal(t, DietRegular, DemotionTarget(DietVegan, []string{"fish"}))

	// 蛋奶素 + 肉類違規 → 一般，絕不降到蛋奶素自身
	assert.Equal(t, DietRegular, DemotionTarget(DietVegetarian, []string{"fish"}))
	assert.Equal(t, DietRegular, DemotionTarget(DietVegetarian, []string{"bacon", "gelatin"}))

	// 其他飲食不觸發降級
	assert.Equal(t, "", DemotionTarget(DietKeto, []string{"chicken"}))
	assert.Equal(t, "", DemotionTarget(DietRegular, []string{"beef"}))

	// 沒有違規詞就沒有降級
	assert.Equal(t, "", DemotionTarget(DietVegan, nil))
}

func TestViolationTermSets(t *testing.T) {
	vegan := violationTermsFor(DietVegan)
	vegetarian := violationTermsFor(DietVegetarian)

	// 純素集合是蛋奶素集合的超集（額外排除乳蛋蜜）
	assert.Greater(t, len(vegan), len(vegetarian))
	for _, term := range vegetarian {
		assert.Contains(t, vegan, term)
	}
	assert.Contains(t, vegan, "milk")
	assert.Contains(t, vegan, "egg")
	assert.Contains(t, vegan, "honey")
	assert.NotContains(t, vegetarian, "milk")

	// 其餘飲食不掃描
	assert.Nil(t, violationTermsFor(DietKeto))
	assert.Nil(t, violationTermsFor(DietRegular))
}
