package hashtag

import (
	"errors"
	"testing"

	"github.com/simpledeal-network/simpledeal/internal/domain"
)

func TestSplitEscrow(t *testing.T) {
	tests := []struct {
		name           string
		itemValue      uint64
		fee            uint64
		fraction       uint64
		wantSeeker     string
		wantProvider   string
		wantMaintainer string
	}{
		{"even split", 100, 6, 100, "100", "100", "6"},
		{"all to provider", 100, 6, 0, "0", "200", "6"},
		{"all to seeker", 100, 6, 200, "200", "0", "6"},
		{"odd fee loses a unit", 100, 7, 50, "50", "150", "6"},
		{"zero fee", 100, 0, 30, "30", "170", "0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			split, err := SplitEscrow(
				domain.NewValue(tt.itemValue),
				domain.NewValue(tt.fee),
				domain.NewValue(tt.fraction),
			)
			if err != nil {
				t.Fatalf("SplitEscrow: %v", err)
			}
			if got := split.Seeker.String(); got != tt.wantSeeker {
				t.Errorf("seeker = %s, want %s", got, tt.wantSeeker)
			}
			if got := split.Provider.String(); got != tt.wantProvider {
				t.Errorf("provider = %s, want %s", got, tt.wantProvider)
			}
			if got := split.Maintainer.String(); got != tt.wantMaintainer {
				t.Errorf("maintainer = %s, want %s", got, tt.wantMaintainer)
			}
		})
	}
}

func TestSplitEscrow_FractionOutOfRange(t *testing.T) {
	_, err := SplitEscrow(domain.NewValue(100), domain.NewValue(6), domain.NewValue(201))
	if !errors.Is(err, domain.ErrFractionOutOfRange) {
		t.Fatalf("err = %v, want ErrFractionOutOfRange", err)
	}
}

func TestSplitEscrow_Conserves(t *testing.T) {
	// Seeker + Provider must equal 2*itemValue for every legal fraction.
	value := domain.NewValue(37)
	for fraction := uint64(0); fraction <= 74; fraction++ {
		split, err := SplitEscrow(value, domain.NewValue(9), domain.NewValue(fraction))
		if err != nil {
			t.Fatalf("fraction %d: %v", fraction, err)
		}
		total, err := split.Seeker.Add(split.Provider)
		if err != nil {
			t.Fatalf("fraction %d: %v", fraction, err)
		}
		if total.String() != "74" {
			t.Errorf("fraction %d: seeker+provider = %s, want 74", fraction, total)
		}
	}
}
