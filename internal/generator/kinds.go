package generator

import (
	"github.com/shopspring/decimal"

	"github.com/willfong/ledgergen/internal/config"
	apperrors "github.com/willfong/ledgergen/internal/errors"
	"github.com/willfong/ledgergen/internal/models"
	"github.com/willfong/ledgergen/internal/utils"
)

// AmountStrategy selects how a kind's amount is drawn.
type AmountStrategy int

const (
	// StrategyUniform draws from the type table's [low, high) range.
	StrategyUniform AmountStrategy = iota
	// StrategyTiered draws from the card payment tiers.
	StrategyTiered
	// StrategyTransfer splits into rent, bills and incoming money.
	StrategyTransfer
	// StrategyIncome is the stipend or lump-sum band, chosen by event kind.
	StrategyIncome
)

// WeightedCategory is a merchant category with its selection weight.
type WeightedCategory struct {
	Name   string
	Weight float64
}

// Kind describes everything type-specific about a transaction: how its
// amount is drawn, whether cost of living scales it, which merchant
// categories it can land in and which products it is booked on.
type Kind struct {
	Type         models.TransactionType
	Strategy     AmountStrategy
	CostOfLiving bool
	Categories   []WeightedCategory
	Products     []models.Product
}

var (
	anyProduct     = []models.Product{models.ProductCurrent, models.ProductSavings, models.ProductDeposit}
	depositOnly    = []models.Product{models.ProductDeposit}
	incomeProducts = []models.Product{models.ProductCurrent, models.ProductSavings}
)

func single(category string) []WeightedCategory {
	return []WeightedCategory{{Name: category, Weight: 1}}
}

// kinds is the closed set of transaction kinds. Adding a type means adding a
// row here; nothing else branches on type names.
var kinds = []Kind{
	{
		Type:         models.TxTypeCardPayment,
		Strategy:     StrategyTiered,
		CostOfLiving: true,
		Categories: []WeightedCategory{
			{Name: models.CategoryFood, Weight: 0.45},
			{Name: models.CategoryTransport, Weight: 0.18},
			{Name: models.CategoryShopping, Weight: 0.12},
			{Name: models.CategoryEntertainment, Weight: 0.08},
			{Name: models.CategoryUtilities, Weight: 0.10},
			{Name: models.CategoryEducation, Weight: 0.04},
			{Name: models.CategoryPersonalCare, Weight: 0.03},
		},
		Products: anyProduct,
	},
	{
		Type:       models.TxTypeTransfer,
		Strategy:   StrategyTransfer,
		Categories: single(models.CategoryTransfers),
		Products:   anyProduct,
	},
	{
		Type:       models.TxTypeTopup,
		Strategy:   StrategyIncome,
		Categories: single(models.CategoryIncome),
		Products:   incomeProducts,
	},
	{
		Type:       models.TxTypeFee,
		Strategy:   StrategyUniform,
		Categories: single(models.CategoryFees),
		Products:   anyProduct,
	},
	{
		Type:       models.TxTypeReward,
		Strategy:   StrategyUniform,
		Categories: single(models.CategoryIncome),
		Products:   anyProduct,
	},
	{
		Type:       models.TxTypeInterest,
		Strategy:   StrategyUniform,
		Categories: single(models.CategoryFinancial),
		Products:   depositOnly,
	},
	{
		Type:     models.TxTypeCardRefund,
		Strategy: StrategyUniform,
		Categories: []WeightedCategory{
			{Name: models.CategoryFood, Weight: 1},
			{Name: models.CategoryShopping, Weight: 1},
			{Name: models.CategoryTransport, Weight: 1},
		},
		Products: anyProduct,
	},
	{
		Type:       models.TxTypeExchange,
		Strategy:   StrategyUniform,
		Categories: single(models.CategoryOther),
		Products:   depositOnly,
	},
}

// ForcedType is the type pinned to stipend and lump-sum dates.
const ForcedType = models.TxTypeTopup

// KindFor looks up a kind by type.
func KindFor(t models.TransactionType) (Kind, bool) {
	for _, k := range kinds {
		if k.Type == t {
			return k, true
		}
	}
	return Kind{}, false
}

// AllKinds returns the enumeration in declaration order.
func AllKinds() []Kind {
	out := make([]Kind, len(kinds))
	copy(out, kinds)
	return out
}

// PickCategory draws a category by weight.
func (k Kind) PickCategory(rng *utils.Random) string {
	if len(k.Categories) == 1 {
		return k.Categories[0].Name
	}
	weights := make([]float64, len(k.Categories))
	for i, c := range k.Categories {
		weights[i] = c.Weight
	}
	i := rng.WeightedPickFloat(weights)
	if i < 0 {
		return k.Categories[0].Name
	}
	return k.Categories[i].Name
}

// PickProduct draws a product uniformly.
func (k Kind) PickProduct(rng *utils.Random) models.Product {
	return k.Products[rng.IntN(len(k.Products))]
}

// ReachableCategories lists categories with positive weight.
func (k Kind) ReachableCategories() []string {
	var out []string
	for _, c := range k.Categories {
		if c.Weight > 0 {
			out = append(out, c.Name)
		}
	}
	return out
}

// TransactionTypeSpec is one row of the type table.
type TransactionTypeSpec struct {
	Type        models.TransactionType
	Probability float64
	AmountLow   decimal.Decimal
	AmountHigh  decimal.Decimal
}

// TypeTable draws types for free events. The forced type is excluded and the
// remaining probabilities renormalized; zero-probability types are never
// drawn.
type TypeTable struct {
	specs       []TransactionTypeSpec
	freeTypes   []models.TransactionType
	freeWeights []float64
}

// NewTypeTable validates specs against the kind enumeration.
func NewTypeTable(specs []TransactionTypeSpec) (*TypeTable, error) {
	tt := &TypeTable{specs: specs}
	total := 0.0
	for _, s := range specs {
		if _, ok := KindFor(s.Type); !ok {
			return nil, apperrors.Configuration(apperrors.CodeUnknownType, "unknown transaction type %q", s.Type).
				WithContext("known", knownTypeNames())
		}
		if s.Probability < 0 {
			return nil, apperrors.Configuration(apperrors.CodeInvalidConfig,
				"transaction type %q has negative probability %v", s.Type, s.Probability)
		}
		if s.Type == ForcedType {
			continue
		}
		tt.freeTypes = append(tt.freeTypes, s.Type)
		tt.freeWeights = append(tt.freeWeights, s.Probability)
		total += s.Probability
	}
	if total <= 0 {
		return nil, apperrors.Configuration(apperrors.CodeInvalidConfig,
			"no transaction type other than %s has a positive probability", ForcedType)
	}
	return tt, nil
}

// TypeTableFromConfig converts configured rows.
func TypeTableFromConfig(rows []config.TransactionTypeConfig) (*TypeTable, error) {
	specs := make([]TransactionTypeSpec, 0, len(rows))
	for _, r := range rows {
		specs = append(specs, TransactionTypeSpec{
			Type:        models.TransactionType(r.Name),
			Probability: r.Probability,
			AmountLow:   decimal.NewFromFloat(r.AmountLow),
			AmountHigh:  decimal.NewFromFloat(r.AmountHigh),
		})
	}
	return NewTypeTable(specs)
}

// Draw picks a type for a free event.
func (tt *TypeTable) Draw(rng *utils.Random) models.TransactionType {
	return tt.freeTypes[rng.WeightedPickFloat(tt.freeWeights)]
}

// FreeProbabilities returns the renormalized probabilities of free types.
func (tt *TypeTable) FreeProbabilities() map[models.TransactionType]float64 {
	total := 0.0
	for _, w := range tt.freeWeights {
		total += w
	}
	out := make(map[models.TransactionType]float64, len(tt.freeTypes))
	for i, t := range tt.freeTypes {
		out[t] = tt.freeWeights[i] / total
	}
	return out
}

// Specs returns the table rows.
func (tt *TypeTable) Specs() []TransactionTypeSpec {
	return tt.specs
}

// Reachable returns the kinds that can appear in a ledger: the forced type
// plus every free type with positive probability.
func (tt *TypeTable) Reachable() []Kind {
	forced, _ := KindFor(ForcedType)
	out := []Kind{forced}
	for i, t := range tt.freeTypes {
		if tt.freeWeights[i] > 0 {
			k, _ := KindFor(t)
			out = append(out, k)
		}
	}
	return out
}

func knownTypeNames() []string {
	names := make([]string, len(kinds))
	for i, k := range kinds {
		names[i] = string(k.Type)
	}
	return names
}
