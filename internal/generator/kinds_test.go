package generator

import (
	"math"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/willfong/ledgergen/internal/config"
	apperrors "github.com/willfong/ledgergen/internal/errors"
	"github.com/willfong/ledgergen/internal/models"
	"github.com/willfong/ledgergen/internal/utils"
)

func TestKindEnumeration(t *testing.T) {
	for _, k := range AllKinds() {
		if len(k.Products) == 0 {
			t.Errorf("%s has no products", k.Type)
		}
		if len(k.ReachableCategories()) == 0 {
			t.Errorf("%s has no reachable categories", k.Type)
		}
		if k.CostOfLiving && k.Type != models.TxTypeCardPayment {
			t.Errorf("%s should not be cost-of-living scaled", k.Type)
		}
	}

	interest, _ := KindFor(models.TxTypeInterest)
	if len(interest.Products) != 1 || interest.Products[0] != models.ProductDeposit {
		t.Errorf("Interest products = %v", interest.Products)
	}
	if _, ok := KindFor("Cheque"); ok {
		t.Error("unknown type resolved to a kind")
	}
}

func TestPickCategoryRespectsWeights(t *testing.T) {
	k := Kind{
		Type: models.TxTypeCardRefund,
		Categories: []WeightedCategory{
			{Name: models.CategoryFood, Weight: 0},
			{Name: models.CategoryShopping, Weight: 1},
		},
	}
	rng := utils.NewRandom(7)
	for i := 0; i < 500; i++ {
		if c := k.PickCategory(rng); c != models.CategoryShopping {
			t.Fatalf("zero-weight category %q picked", c)
		}
	}
	if got := k.ReachableCategories(); len(got) != 1 {
		t.Errorf("ReachableCategories() = %v", got)
	}
}

func TestTypeTableDefault(t *testing.T) {
	tt, err := TypeTableFromConfig(config.DefaultConfig().Generate.TransactionTypes)
	if err != nil {
		t.Fatal(err)
	}

	probs := tt.FreeProbabilities()
	if _, ok := probs[ForcedType]; ok {
		t.Error("forced type must not be drawn for free events")
	}
	sum := 0.0
	for _, p := range probs {
		sum += p
	}
	if math.Abs(sum-1) > 1e-9 {
		t.Errorf("free probabilities sum to %f", sum)
	}
	// 0.60 renormalized over 0.98.
	if math.Abs(probs[models.TxTypeCardPayment]-0.60/0.98) > 1e-9 {
		t.Errorf("card payment probability = %f", probs[models.TxTypeCardPayment])
	}

	reachable := tt.Reachable()
	if reachable[0].Type != ForcedType || len(reachable) != 8 {
		t.Errorf("unexpected reachable kinds: %d", len(reachable))
	}
}

func TestTypeTableZeroProbabilityNeverDrawn(t *testing.T) {
	tt, err := NewTypeTable([]TransactionTypeSpec{
		{Type: models.TxTypeCardPayment, Probability: 1},
		{Type: models.TxTypeFee, Probability: 0, AmountLow: decimal.NewFromInt(-15), AmountHigh: decimal.NewFromInt(-1)},
		{Type: models.TxTypeTransfer, Probability: 0},
	})
	if err != nil {
		t.Fatal(err)
	}

	rng := utils.NewRandom(99)
	for i := 0; i < 2000; i++ {
		if got := tt.Draw(rng); got != models.TxTypeCardPayment {
			t.Fatalf("draw %d returned zero-probability type %s", i, got)
		}
	}
	if n := len(tt.Reachable()); n != 2 {
		t.Errorf("Reachable() = %d kinds, want Topup and Card Payment", n)
	}
}

func TestTypeTableErrors(t *testing.T) {
	_, err := NewTypeTable([]TransactionTypeSpec{{Type: "Cheque", Probability: 1}})
	if !apperrors.Is(err, apperrors.CodeUnknownType) {
		t.Errorf("unknown type: got %v", err)
	}

	_, err = NewTypeTable([]TransactionTypeSpec{
		{Type: models.TxTypeTopup, Probability: 1},
		{Type: models.TxTypeFee, Probability: 0},
	})
	if !apperrors.Is(err, apperrors.CodeInvalidConfig) {
		t.Errorf("no free weight: got %v", err)
	}

	_, err = NewTypeTable([]TransactionTypeSpec{{Type: models.TxTypeFee, Probability: -1}})
	if !apperrors.Is(err, apperrors.CodeInvalidConfig) {
		t.Errorf("negative weight: got %v", err)
	}
}
