// Package totals recomputes an order's derived monetary amounts from its
// line groups.
//
// Implementations: StandardCalculator, MockCalculator.
package totals

import (
	"github.com/dukerupert/njord/internal/domain"
)

// Compile-time checks that both calculators satisfy the domain contract.
var (
	_ domain.TotalsCalculator = (*StandardCalculator)(nil)
	_ domain.TotalsCalculator = (*MockCalculator)(nil)
)
