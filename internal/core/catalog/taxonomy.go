package catalog

import "strings"

// 餐別枚舉
const (
	MealBreakfast = "breakfast"
	MealLunch     = "lunch"
	MealDinner    = "dinner"
	MealSnacks    = "snacks"
)

// 飲食類型枚舉
const (
	DietRegular    = "Regular"
	DietVegetarian = "Vegetarian"
	DietVegan      = "Vegan"
	DietKeto       = "Keto"
	DietPaleo      = "Paleo"
	DietGlutenFree = "Gluten-Free"
	DietDiabetic   = "Diabetic"
)

// CanonicalMealTypes 固定的餐別順序（輸出時依此排序）
var CanonicalMealTypes = []string{MealBreakfast, MealLunch, MealDinner, MealSnacks}

// CanonicalRegions 固定的九個地區
var CanonicalRegions = []string{
	"Indian",
	"Chinese",
	"Japanese",
	"Thai",
	"Italian",
	"Mexican",
	"Mediterranean",
	"American",
	"Middle Eastern",
}

// CanonicalDiets 固定的七種飲食類型
var CanonicalDiets = []string{
	DietRegular,
	DietVegetarian,
	DietVegan,
	DietKeto,
	DietPaleo,
	DietGlutenFree,
	DietDiabetic,
}

// regionSynonyms 地區別名表，鍵為小寫後的輸入
// 對不上任何鍵的地區整組丟棄（並記錄），這是沿用既有行為的決定
var regionSynonyms = map[string]string{
	"indian":         "Indian",
	"india":          "Indian",
	"north indian":   "Indian",
	"south indian":   "Indian",
	"chinese":        "Chinese",
	"china":          "Chinese",
	"cantonese":      "Chinese",
	"sichuan":        "Chinese",
	"japanese":       "Japanese",
	"japan":          "Japanese",
	"thai":           "Thai",
	"thailand":       "Thai",
	"italian":        "Italian",
	"italy":          "Italian",
	"mexican":        "Mexican",
	"mexico":         "Mexican",
	"tex-mex":        "Mexican",
	"mediterranean":  "Mediterranean",
	"greek":          "Mediterranean",
	"greece":         "Mediterranean",
	"american":       "American",
	"usa":            "American",
	"us":             "American",
	"western":        "American",
	"middle eastern": "Middle Eastern",
	"middle-eastern": "Middle Eastern",
	"middle east":    "Middle Eastern",
	"lebanese":       "Middle Eastern",
	"persian":        "Middle Eastern",
	"arabic":         "Middle Eastern",
}

// dietSynonyms 飲食類型別名表，對不上的收斂到預設飲食（Regular）
var dietSynonyms = map[string]string{
	"regular":           DietRegular,
	"normal":            DietRegular,
	"standard":          DietRegular,
	"omnivore":          DietRegular,
	"non veg":           DietRegular,
	"non-veg":           DietRegular,
	"nonveg":            DietRegular,
	"non vegetarian":    DietRegular,
	"vegetarian":        DietVegetarian,
	"veg":               DietVegetarian,
	"pure veg":          DietVegetarian,
	"lacto-ovo":         DietVegetarian,
	"vegan":             DietVegan,
	"plant based":       DietVegan,
	"plant-based":       DietVegan,
	"keto":              DietKeto,
	"ketogenic":         DietKeto,
	"keto diet":         DietKeto,
	"low carb":          DietKeto,
	"paleo":             DietPaleo,
	"paleolithic":       DietPaleo,
	"caveman":           DietPaleo,
	"gluten-free":       DietGlutenFree,
	"gluten free":       DietGlutenFree,
	"gf":                DietGlutenFree,
	"celiac":            DietGlutenFree,
	"diabetic":          DietDiabetic,
	"diabetes":          DietDiabetic,
	"diabetic friendly": DietDiabetic,
	"low sugar":         DietDiabetic,
}

// CanonicalRegion 將原始地區鍵映射為固定地區，對不上時回傳空字串
func CanonicalRegion(raw string) string {
	return regionSynonyms[strings.ToLower(strings.TrimSpace(raw))]
}

// CanonicalDiet 將原始飲食鍵映射為固定飲食類型，對不上時回傳 defaultDiet
func CanonicalDiet(raw, defaultDiet string) string {
	if diet, ok := dietSynonyms[strings.ToLower(strings.TrimSpace(raw))]; ok {
		return diet
	}
	return defaultDiet
}

// IsCanonicalRegion 檢查是否為固定地區之一
func IsCanonicalRegion(region string) bool {
	for _, r := range CanonicalRegions {
		if r == region {
			return true
		}
	}
	return false
}

// IsCanonicalDiet 檢查是否為固定飲食類型之一
func IsCanonicalDiet(diet string) bool {
	for _, d := range CanonicalDiets {
		if d == diet {
			return true
		}
	}
	return false
}

// 餐別關鍵字族，標題與標籤中出現即推斷對應餐別
// 比對順序固定：breakfast → dinner → snacks，都沒中則為 lunch（政策預設）
var (
	breakfastKeywords = []string{
		"pancake", "oat", "oatmeal", "cereal", "toast", "waffle",
		"omelet", "omelette", "porridge", "muesli", "granola",
		"idli", "dosa", "paratha", "poha", "upma", "croissant", "bagel",
	}
	dinnerKeywords = []string{
		"curry", "roast", "stew", "soup", "biryani", "casserole", "grilled",
	}
	snackKeywords = []string{
		"bar", "chips", "nuts", "cookie", "popcorn", "crackers",
		"trail mix", "samosa", "pakora", "bhel",
	}
)

// 素食違規關鍵字（肉類與海鮮）
var fleshViolationTerms = []string{
	"chicken", "beef", "pork", "lamb", "mutton", "turkey", "bacon",
	"ham", "sausage", "meat", "fish", "salmon", "tuna", "anchovy",
	"shrimp", "prawn", "crab", "oyster", "gelatin",
}

// 純素額外違規關鍵字（乳製品、蛋與蜂蜜）
// Vegan 的違規集合 = fleshViolationTerms ∪ dairyEggViolationTerms
var dairyEggViolationTerms = []string{
	"milk", "cheese", "butter", "cream", "yogurt", "yoghurt",
	"ghee", "paneer", "whey", "egg", "honey",
}

// violationCategory 違規類別，決定降級目標
type violationCategory int

const (
	categoryNone violationCategory = iota
	categoryDairyEgg
	categoryFlesh
)

// demotionPolicy 降級決策表：(原飲食, 違規類別) → 目標飲食
// 明確的表格取代巢狀條件，方便測試與擴充
var demotionPolicy = map[string]map[violationCategory]string{
	DietVegan: {
		categoryDairyEgg: DietVegetarian,
		categoryFlesh:    DietRegular,
	},
	DietVegetarian: {
		categoryDairyEgg: DietRegular,
		categoryFlesh:    DietRegular,
	},
}

// violationTermsFor 回傳某飲食類型需要掃描的違規關鍵字，不需檢查時回傳 nil
func violationTermsFor(diet string) []string {
	switch diet {
	case DietVegan:
		terms := make([]string, 0, len(fleshViolationTerms)+len(dairyEggViolationTerms))
		terms = append(terms, fleshViolationTerms...)
		terms = append(terms, dairyEggViolationTerms...)
		return terms
	case DietVegetarian:
		return fleshViolationTerms
	default:
		return nil
	}
}

// classifyViolations 將找到的違規詞歸類：只要有肉類詞即為 categoryFlesh，
// 否則全為乳蛋類時為 categoryDairyEgg
func classifyViolations(terms []string) violationCategory {
	if len(terms) == 0 {
		return categoryNone
	}
	for _, term := range terms {
		for _, flesh := range fleshViolationTerms {
			if term == flesh {
				return categoryFlesh
			}
		}
	}
	return categoryDairyEgg
}

// DemotionTarget 依決策表查出降級目標，無需降級時回傳空字串
func DemotionTarget(diet string, terms []string) string {
	category := classifyViolations(terms)
	if category == categoryNone {
		return ""
	}
	if targets, ok := demotionPolicy[diet]; ok {
		return targets[category]
	}
	return ""
}
