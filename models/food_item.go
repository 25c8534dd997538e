package models

import "gorm.io/gorm"

// FoodKind distinguishes where a food record came from. The three
// variants carry the same nutrition columns; the tag replaces
// presence-of-field sniffing at the call sites.
type FoodKind string

const (
	FoodKindCatalog FoodKind = "catalog" // shared reference data
	FoodKindCustom  FoodKind = "custom"  // user-authored, reusable
	FoodKindAdHoc   FoodKind = "adhoc"   // quick-add, single use
)

func (k FoodKind) Valid() bool {
	switch k {
	case FoodKindCatalog, FoodKindCustom, FoodKindAdHoc:
		return true
	}
	return false
}

// AmountUnit is the closed set of units amounts are expressed in.
// No conversion between units is performed anywhere.
type AmountUnit string

const (
	UnitGram  AmountUnit = "gram"
	UnitMl    AmountUnit = "ml"
	UnitPiece AmountUnit = "piece"
	UnitCup   AmountUnit = "cup"
	UnitTbsp  AmountUnit = "tbsp"
	UnitTsp   AmountUnit = "tsp"
)

func (u AmountUnit) Valid() bool {
	switch u {
	case UnitGram, UnitMl, UnitPiece, UnitCup, UnitTbsp, UnitTsp:
		return true
	}
	return false
}

// FoodItem is a reference nutrition record. Macros are per serving.
type FoodItem struct {
	gorm.Model
	Name        string     `gorm:"not null"`
	Kind        FoodKind   `gorm:"size:16;not null;default:'catalog'"`
	OwnerID     *uint      `gorm:"index"` // nil for catalog foods
	ServingSize float64    `gorm:"not null"`
	ServingUnit AmountUnit `gorm:"size:8;not null"`
	Calories    float64
	Protein     float64
	Carbs       float64
	Fat         float64
}

// NutritionFor scales the per-serving macros to an arbitrary amount in
// the food's serving unit.
func (f *FoodItem) NutritionFor(amount float64) Nutrition {
	if f.ServingSize <= 0 {
		return Nutrition{}
	}
	per := Nutrition{Calories: f.Calories, Protein: f.Protein, Carbs: f.Carbs, Fat: f.Fat}
	return per.Scale(amount / f.ServingSize)
}
