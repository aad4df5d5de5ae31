package constant

import "math/big"

// Four-state truth tables for the bitwise operators. Z participates as X.

func andBit(a, b Bit) Bit {
	if a == L0 || b == L0 {
		return L0
	}
	if a == L1 && b == L1 {
		return L1
	}
	return LX
}

func orBit(a, b Bit) Bit {
	if a == L1 || b == L1 {
		return L1
	}
	if a == L0 && b == L0 {
		return L0
	}
	return LX
}

func xorBit(a, b Bit) Bit {
	if a.IsUnknown() || b.IsUnknown() {
		return LX
	}
	if a != b {
		return L1
	}
	return L0
}

func notBit(a Bit) Bit {
	switch a {
	case L0:
		return L1
	case L1:
		return L0
	default:
		return LX
	}
}

func (i Integer) binaryBitwise(o Integer, f func(a, b Bit) Bit) Integer {
	w := max(i.Width(), o.Width())
	l, r := i.Resize(w), o.Resize(w)
	bits := make([]Bit, w)
	for n := 0; n < w; n++ {
		bits[n] = f(l.bits[n], r.bits[n])
	}
	return Integer{bits: bits, signed: i.signed && o.signed}
}

// And computes the bitwise four-state AND.
func (i Integer) And(o Integer) Integer { return i.binaryBitwise(o, andBit) }

// Or computes the bitwise four-state OR.
func (i Integer) Or(o Integer) Integer { return i.binaryBitwise(o, orBit) }

// Xor computes the bitwise four-state XOR.
func (i Integer) Xor(o Integer) Integer { return i.binaryBitwise(o, xorBit) }

// Xnor computes the bitwise four-state XNOR.
func (i Integer) Xnor(o Integer) Integer {
	return i.binaryBitwise(o, func(a, b Bit) Bit { return notBit(xorBit(a, b)) })
}

// Not computes the bitwise four-state complement.
func (i Integer) Not() Integer {
	bits := make([]Bit, len(i.bits))
	for n, b := range i.bits {
		bits[n] = notBit(b)
	}
	return Integer{bits: bits, signed: i.signed}
}

func (i Integer) arith(o Integer, f func(l, r *big.Int) *big.Int) Integer {
	w := max(i.Width(), o.Width())
	signed := i.signed && o.signed
	lb, lok := i.Big()
	rb, rok := o.Big()
	if !lok || !rok {
		return AllX(w, signed)
	}
	return FromBig(w, f(lb, rb), signed)
}

// Add computes two's complement addition truncated to the larger width.
func (i Integer) Add(o Integer) Integer {
	return i.arith(o, func(l, r *big.Int) *big.Int { return new(big.Int).Add(l, r) })
}

// Sub computes two's complement subtraction truncated to the larger width.
func (i Integer) Sub(o Integer) Integer {
	return i.arith(o, func(l, r *big.Int) *big.Int { return new(big.Int).Sub(l, r) })
}

// Mul computes multiplication truncated to the larger width.
func (i Integer) Mul(o Integer) Integer {
	return i.arith(o, func(l, r *big.Int) *big.Int { return new(big.Int).Mul(l, r) })
}

// Div computes truncating division. ok is false when the divisor is a
// known zero; an unknown operand instead yields an all-X result.
func (i Integer) Div(o Integer) (Integer, bool) {
	w := max(i.Width(), o.Width())
	signed := i.signed && o.signed
	lb, lok := i.Big()
	rb, rok := o.Big()
	if !lok || !rok {
		return AllX(w, signed), true
	}
	if rb.Sign() == 0 {
		return AllX(w, signed), false
	}
	return FromBig(w, new(big.Int).Quo(lb, rb), signed), true
}

// Mod computes the remainder of truncating division; same zero-divisor
// contract as Div.
func (i Integer) Mod(o Integer) (Integer, bool) {
	w := max(i.Width(), o.Width())
	signed := i.signed && o.signed
	lb, lok := i.Big()
	rb, rok := o.Big()
	if !lok || !rok {
		return AllX(w, signed), true
	}
	if rb.Sign() == 0 {
		return AllX(w, signed), false
	}
	return FromBig(w, new(big.Int).Rem(lb, rb), signed), true
}

// Pow computes exponentiation per the IEEE power operator table for
// negative exponents.
func (i Integer) Pow(o Integer) Integer {
	w := i.Width()
	signed := i.signed && o.signed
	lb, lok := i.Big()
	rb, rok := o.Big()
	if !lok || !rok {
		return AllX(w, signed)
	}
	if rb.Sign() >= 0 {
		return FromBig(w, new(big.Int).Exp(lb, rb, nil), signed)
	}
	// Negative exponent: only |base| <= 1 has a defined integer result.
	switch {
	case lb.Sign() == 0:
		return AllX(w, signed)
	case lb.Cmp(big.NewInt(1)) == 0:
		return FromBig(w, big.NewInt(1), signed)
	case lb.Cmp(big.NewInt(-1)) == 0:
		if rb.Bit(0) == 1 {
			return FromBig(w, big.NewInt(-1), signed)
		}
		return FromBig(w, big.NewInt(1), signed)
	default:
		return FromBig(w, big.NewInt(0), signed)
	}
}

// Neg computes two's complement negation.
func (i Integer) Neg() Integer {
	b, ok := i.Big()
	if !ok {
		return AllX(i.Width(), i.signed)
	}
	return FromBig(i.Width(), new(big.Int).Neg(b), i.signed)
}

// Shl shifts left by o. Any unknown bit in either operand produces an
// all-X result of the left operand's width.
func (i Integer) Shl(o Integer) Integer {
	amt, ok := o.Uint64()
	if !ok || i.HasUnknown() {
		return AllX(i.Width(), i.signed)
	}
	bits := make([]Bit, len(i.bits))
	for n := range bits {
		if uint64(n) >= amt {
			bits[n] = i.bits[n-int(amt)]
		}
	}
	return Integer{bits: bits, signed: i.signed}
}

// Shr shifts right. Arithmetic shifts on signed values fill with the sign
// bit; logical shifts fill with zero. Unknown operand bits produce all-X.
func (i Integer) Shr(o Integer, arithmetic bool) Integer {
	amt, ok := o.Uint64()
	if !ok || i.HasUnknown() {
		return AllX(i.Width(), i.signed)
	}
	var fill Bit
	if arithmetic && i.signed && len(i.bits) > 0 {
		fill = i.bits[len(i.bits)-1]
	}
	bits := make([]Bit, len(i.bits))
	for n := range bits {
		src := uint64(n) + amt
		if src < uint64(len(i.bits)) {
			bits[n] = i.bits[src]
		} else {
			bits[n] = fill
		}
	}
	return Integer{bits: bits, signed: i.signed}
}

// ReduceAnd computes the unary AND reduction.
func (i Integer) ReduceAnd() Bit {
	out := L1
	for _, b := range i.bits {
		out = andBit(out, b)
	}
	return out
}

// ReduceOr computes the unary OR reduction.
func (i Integer) ReduceOr() Bit {
	out := L0
	for _, b := range i.bits {
		out = orBit(out, b)
	}
	return out
}

// ReduceXor computes the unary XOR reduction.
func (i Integer) ReduceXor() Bit {
	out := L0
	for _, b := range i.bits {
		out = xorBit(out, b)
	}
	return out
}

// LogicValue collapses the value to a single truth bit: 1 if any bit is 1,
// X if no bit is 1 but some are unknown, 0 otherwise.
func (i Integer) LogicValue() Bit {
	sawUnknown := false
	for _, b := range i.bits {
		if b == L1 {
			return L1
		}
		if b.IsUnknown() {
			sawUnknown = true
		}
	}
	if sawUnknown {
		return LX
	}
	return L0
}

// Equal computes logical equality (==). Any unknown bit involved in the
// comparison makes the result X unless a known bit pair already differs.
func (i Integer) Equal(o Integer) Bit {
	w := max(i.Width(), o.Width())
	l, r := i.Resize(w), o.Resize(w)
	unknown := false
	for n := 0; n < w; n++ {
		a, b := l.bits[n], r.bits[n]
		if a.IsUnknown() || b.IsUnknown() {
			unknown = true
			continue
		}
		if a != b {
			return L0
		}
	}
	if unknown {
		return LX
	}
	return L1
}

// CaseEqual computes case equality (===): exact bit match including X and Z.
func (i Integer) CaseEqual(o Integer) bool {
	w := max(i.Width(), o.Width())
	l, r := i.Resize(w), o.Resize(w)
	for n := 0; n < w; n++ {
		if l.bits[n] != r.bits[n] {
			return false
		}
	}
	return true
}

// WildcardEqual computes wildcard equality (==?): X and Z bits in the
// right operand match anything; remaining positions compare like Equal.
func (i Integer) WildcardEqual(o Integer) Bit {
	w := max(i.Width(), o.Width())
	l, r := i.Resize(w), o.Resize(w)
	unknown := false
	for n := 0; n < w; n++ {
		if r.bits[n].IsUnknown() {
			continue
		}
		if l.bits[n].IsUnknown() {
			unknown = true
			continue
		}
		if l.bits[n] != r.bits[n] {
			return L0
		}
	}
	if unknown {
		return LX
	}
	return L1
}

// Less computes the relational less-than predicate; any unknown operand
// bit makes the result X.
func (i Integer) Less(o Integer) Bit {
	lb, lok := i.Big()
	rb, rok := o.Big()
	if !lok || !rok {
		return LX
	}
	if lb.Cmp(rb) < 0 {
		return L1
	}
	return L0
}
