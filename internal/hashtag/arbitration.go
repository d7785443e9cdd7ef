package hashtag

import (
	"fmt"

	"github.com/simpledeal-network/simpledeal/internal/domain"
)

// ─── Arbitration Engine ─────────────────────────────────────────────────────

// Split is the three-way disbursement of a disputed item's escrow pool.
// Seeker + Provider always equals 2*itemValue; Maintainer equals the
// custodied fee (2*(fee/2), one unit short of the nominal fee when the
// fee is odd — accepted rounding loss, never hoarded as dust).
type Split struct {
	Seeker     domain.Value
	Provider   domain.Value
	Maintainer domain.Value
}

// SplitEscrow computes the resolve disbursement as a pure function of
// the item's frozen numbers and the maintainer's proposed fraction.
// seekerFraction must lie in [0, 2*itemValue]. No other component
// recomputes this split.
func SplitEscrow(itemValue, feeSnapshot, seekerFraction domain.Value) (Split, error) {
	pool, err := itemValue.Double()
	if err != nil {
		return Split{}, err
	}
	if seekerFraction.Cmp(pool) > 0 {
		return Split{}, fmt.Errorf("fraction %s exceeds 2*itemValue %s: %w",
			seekerFraction, pool, domain.ErrFractionOutOfRange)
	}
	providerCut, err := pool.Sub(seekerFraction)
	if err != nil {
		return Split{}, err
	}
	maintainerCut, err := feeSnapshot.Half().Double()
	if err != nil {
		return Split{}, err
	}
	return Split{
		Seeker:     seekerFraction.Copy(),
		Provider:   providerCut,
		Maintainer: maintainerCut,
	}, nil
}
