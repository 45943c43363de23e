package odds

import (
	"errors"
	"math"
	"testing"

	"github.com/atarjan/memebet/internal/models"
)

func TestPriceDirection(t *testing.T) {
	tests := []struct {
		name      string
		baseOdds  float64
		direction models.Direction
		want      float64
	}{
		{"up skews in bettor's favor", 2.0, models.DirectionUp, 2.2},
		{"down skews against", 2.0, models.DirectionDown, 1.8},
		{"up on minimal odds", 1.0, models.DirectionUp, 1.1},
		{"down on minimal odds", 1.0, models.DirectionDown, 0.9},
		{"up on fractional odds", 1.85, models.DirectionUp, 2.035},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := PriceDirection(tt.baseOdds, tt.direction)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("PriceDirection(%v, %v) = %v, want %v", tt.baseOdds, tt.direction, got, tt.want)
			}
		})
	}
}

func TestPriceDirectionOrdering(t *testing.T) {
	// For any positive base odds, up must price strictly above down.
	for _, base := range []float64{1.0, 1.5, 2.0, 3.7, 10.0} {
		up := PriceDirection(base, models.DirectionUp)
		down := PriceDirection(base, models.DirectionDown)
		if up <= down {
			t.Errorf("base %v: up odds %v not greater than down odds %v", base, up, down)
		}
	}
}

func TestPotentialPayout(t *testing.T) {
	if got := PotentialPayout(100, 2.2); math.Abs(got-220.0) > 1e-9 {
		t.Errorf("PotentialPayout(100, 2.2) = %v, want 220", got)
	}
	if got := PotentialPayout(333, 1.85); math.Abs(got-616.05) > 1e-9 {
		t.Errorf("PotentialPayout(333, 1.85) = %v, want 616.05", got)
	}
}

func TestValidateAmount(t *testing.T) {
	tests := []struct {
		name    string
		amount  int64
		balance int64
		wantErr error
	}{
		{"valid stake", 100, 10000, nil},
		{"full balance", 10000, 10000, nil},
		{"zero amount", 0, 10000, ErrInvalidAmount},
		{"negative amount", -5, 10, ErrInvalidAmount},
		{"above balance", 500, 100, ErrInsufficientBalance},
		{"above balance with zero balance", 1, 0, ErrInsufficientBalance},
		{"above hard cap", 1_500_000, 2_000_000, ErrAmountExceedsLimit},
		{"exactly at hard cap", 1_000_000, 2_000_000, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateAmount(tt.amount, tt.balance)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidateAmount(%d, %d) = %v, want %v", tt.amount, tt.balance, err, tt.wantErr)
			}
		})
	}
}

func TestValidateAmountCheckOrder(t *testing.T) {
	// A negative amount with a tiny balance must report InvalidAmount, not
	// InsufficientBalance: the amount check runs first.
	if err := ValidateAmount(-5, 10); !errors.Is(err, ErrInvalidAmount) {
		t.Errorf("ValidateAmount(-5, 10) = %v, want ErrInvalidAmount", err)
	}

	// A stake above both the balance and the cap must report the balance
	// failure: the balance check runs before the hard cap.
	if err := ValidateAmount(2_000_000, 500); !errors.Is(err, ErrInsufficientBalance) {
		t.Errorf("ValidateAmount(2000000, 500) = %v, want ErrInsufficientBalance", err)
	}
}
