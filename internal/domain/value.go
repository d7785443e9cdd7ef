package domain

import (
	"fmt"
	"math/big"
)

// ─── Value Arithmetic ───────────────────────────────────────────────────────
// Token amounts live in the same 256-bit non-negative domain as the
// external value ledger. Value wraps math/big with checked operations:
// any computation that would leave [0, 2^256) fails instead of wrapping.

// maxValue is 2^256 − 1, the largest representable amount.
var maxValue = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 256), big.NewInt(1))

// Value is a non-negative token amount.
// The zero Value is valid and equals 0.
type Value struct {
	Int *big.Int
}

// NewValue returns a Value for a small literal amount.
func NewValue(v uint64) Value {
	return Value{Int: new(big.Int).SetUint64(v)}
}

// ParseValue parses a base-10 amount. Negative or out-of-range
// amounts are rejected.
func ParseValue(s string) (Value, error) {
	i, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return Value{}, fmt.Errorf("invalid value %q", s)
	}
	if i.Sign() < 0 || i.Cmp(maxValue) > 0 {
		return Value{}, fmt.Errorf("value %s: %w", s, ErrOverflow)
	}
	return Value{Int: i}, nil
}

// MustParseValue is ParseValue for literals in tests and seeds.
func MustParseValue(s string) Value {
	v, err := ParseValue(s)
	if err != nil {
		panic(err)
	}
	return v
}

func (v Value) bigint() *big.Int {
	if v.Int == nil {
		return new(big.Int)
	}
	return v.Int
}

// String formats the amount in base 10.
func (v Value) String() string { return v.bigint().String() }

// BigInt returns an independent big.Int copy of the amount.
func (v Value) BigInt() *big.Int { return new(big.Int).Set(v.bigint()) }

// IsZero reports whether the amount is 0.
func (v Value) IsZero() bool { return v.bigint().Sign() == 0 }

// Cmp compares v against o (-1, 0, +1).
func (v Value) Cmp(o Value) int { return v.bigint().Cmp(o.bigint()) }

// Equals reports amount equality.
func (v Value) Equals(o Value) bool { return v.Cmp(o) == 0 }

// Copy returns an independent copy of the amount.
func (v Value) Copy() Value {
	return Value{Int: new(big.Int).Set(v.bigint())}
}

// Add returns v + o, failing with ErrOverflow past 2^256 − 1.
func (v Value) Add(o Value) (Value, error) {
	sum := new(big.Int).Add(v.bigint(), o.bigint())
	if sum.Cmp(maxValue) > 0 {
		return Value{}, fmt.Errorf("add %s + %s: %w", v, o, ErrOverflow)
	}
	return Value{Int: sum}, nil
}

// Sub returns v − o, failing with ErrOverflow if the result would be
// negative (the domain has no negative amounts).
func (v Value) Sub(o Value) (Value, error) {
	if v.Cmp(o) < 0 {
		return Value{}, fmt.Errorf("sub %s - %s underflows: %w", v, o, ErrOverflow)
	}
	return Value{Int: new(big.Int).Sub(v.bigint(), o.bigint())}, nil
}

// Double returns 2*v with the same overflow check as Add.
func (v Value) Double() (Value, error) {
	return v.Add(v)
}

// Half returns v/2 rounded down. Floor division is the single rounding
// rule used on both sides of a deposit, so the required amount is
// deterministic for seeker and provider alike.
func (v Value) Half() Value {
	return Value{Int: new(big.Int).Rsh(v.bigint(), 1)}
}

// MarshalJSON encodes the amount as a base-10 string, matching the
// external ledger's representation.
func (v Value) MarshalJSON() ([]byte, error) {
	return []byte(`"` + v.String() + `"`), nil
}

// UnmarshalJSON decodes a base-10 string amount.
func (v *Value) UnmarshalJSON(b []byte) error {
	if len(b) < 2 || b[0] != '"' || b[len(b)-1] != '"' {
		return fmt.Errorf("value must be a decimal string, got %s", b)
	}
	parsed, err := ParseValue(string(b[1 : len(b)-1]))
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}
