package constant

import (
	"math/big"
	"strings"
)

// Bit is a single four-state logic bit.
type Bit uint8

const (
	L0 Bit = iota
	L1
	LX
	LZ
)

// IsUnknown returns true for the X and Z states.
func (b Bit) IsUnknown() bool { return b == LX || b == LZ }

func (b Bit) rune() byte {
	switch b {
	case L0:
		return '0'
	case L1:
		return '1'
	case LX:
		return 'x'
	default:
		return 'z'
	}
}

// Integer is a fixed-width four-state integer value. Bits are stored
// LSB first; the slice length is the bit width.
type Integer struct {
	bits   []Bit
	signed bool
}

// NewInteger builds a known two-state value of the given width from v.
// Bits above the width are truncated.
func NewInteger(width int, v uint64, signed bool) Integer {
	bits := make([]Bit, width)
	for i := 0; i < width; i++ {
		if v&(1<<uint(i)) != 0 {
			bits[i] = L1
		}
	}
	return Integer{bits: bits, signed: signed}
}

// FromBig builds a value of the given width from b, truncating to width.
// Negative values are encoded in two's complement.
func FromBig(width int, b *big.Int, signed bool) Integer {
	bits := make([]Bit, width)
	v := new(big.Int).Set(b)
	if v.Sign() < 0 {
		mod := new(big.Int).Lsh(big.NewInt(1), uint(width))
		v.Mod(v, mod)
	}
	for i := 0; i < width; i++ {
		if v.Bit(i) == 1 {
			bits[i] = L1
		}
	}
	return Integer{bits: bits, signed: signed}
}

// FromBits builds a value directly from a bit slice (LSB first).
func FromBits(bits []Bit, signed bool) Integer {
	return Integer{bits: bits, signed: signed}
}

// AllX returns a width-bit value with every bit unknown.
func AllX(width int, signed bool) Integer {
	bits := make([]Bit, width)
	for i := range bits {
		bits[i] = LX
	}
	return Integer{bits: bits, signed: signed}
}

// Fill returns a width-bit value with every bit set to b.
func Fill(width int, b Bit, signed bool) Integer {
	bits := make([]Bit, width)
	for i := range bits {
		bits[i] = b
	}
	return Integer{bits: bits, signed: signed}
}

// Width returns the bit width.
func (i Integer) Width() int { return len(i.bits) }

// IsSigned reports whether the value is interpreted as signed.
func (i Integer) IsSigned() bool { return i.signed }

// Bit returns the bit at position n (0 = LSB). Out-of-range reads yield X.
func (i Integer) Bit(n int) Bit {
	if n < 0 || n >= len(i.bits) {
		return LX
	}
	return i.bits[n]
}

// HasUnknown reports whether any bit is X or Z.
func (i Integer) HasUnknown() bool {
	for _, b := range i.bits {
		if b.IsUnknown() {
			return true
		}
	}
	return false
}

// AsSigned returns a copy with the given signedness flag.
func (i Integer) AsSigned(signed bool) Integer {
	return Integer{bits: i.bits, signed: signed}
}

// Big returns the numeric value as a big.Int, interpreting the bits per
// the signedness flag. The second result is false if any bit is unknown.
func (i Integer) Big() (*big.Int, bool) {
	if i.HasUnknown() {
		return nil, false
	}
	v := new(big.Int)
	for n := len(i.bits) - 1; n >= 0; n-- {
		v.Lsh(v, 1)
		if i.bits[n] == L1 {
			v.Or(v, big.NewInt(1))
		}
	}
	if i.signed && len(i.bits) > 0 && i.bits[len(i.bits)-1] == L1 {
		mod := new(big.Int).Lsh(big.NewInt(1), uint(len(i.bits)))
		v.Sub(v, mod)
	}
	return v, true
}

// Uint64 returns the low 64 bits as an unsigned value; ok is false if any
// bit is unknown.
func (i Integer) Uint64() (uint64, bool) {
	if i.HasUnknown() {
		return 0, false
	}
	var v uint64
	for n := 0; n < len(i.bits) && n < 64; n++ {
		if i.bits[n] == L1 {
			v |= 1 << uint(n)
		}
	}
	return v, true
}

// Int64 returns the numeric value as an int64; ok is false if any bit is
// unknown or the value does not fit.
func (i Integer) Int64() (int64, bool) {
	b, ok := i.Big()
	if !ok || !b.IsInt64() {
		return 0, false
	}
	return b.Int64(), true
}

// Resize returns a copy extended or truncated to the given width.
// Signed values extend with the sign bit, unsigned with zero; an unknown
// MSB extends with itself so that X and Z fills are preserved.
func (i Integer) Resize(width int) Integer {
	if width == len(i.bits) {
		return i
	}
	bits := make([]Bit, width)
	n := copy(bits, i.bits)
	if n < width {
		var ext Bit
		if len(i.bits) > 0 {
			msb := i.bits[len(i.bits)-1]
			if msb.IsUnknown() {
				ext = msb
			} else if i.signed {
				ext = msb
			}
		}
		for ; n < width; n++ {
			bits[n] = ext
		}
	}
	return Integer{bits: bits, signed: i.signed}
}

// Slice extracts width bits starting at lsb. Bits outside the value read
// as X, matching out-of-bounds hardware read semantics.
func (i Integer) Slice(lsb, width int) Integer {
	bits := make([]Bit, width)
	for n := 0; n < width; n++ {
		bits[n] = i.Bit(lsb + n)
	}
	return Integer{bits: bits, signed: false}
}

// SetSlice returns a copy with width bits starting at lsb replaced by the
// low bits of v. Writes outside the value are dropped.
func (i Integer) SetSlice(lsb int, v Integer) Integer {
	bits := make([]Bit, len(i.bits))
	copy(bits, i.bits)
	for n := 0; n < v.Width(); n++ {
		if lsb+n >= 0 && lsb+n < len(bits) {
			bits[lsb+n] = v.Bit(n)
		}
	}
	return Integer{bits: bits, signed: i.signed}
}

// Concat joins values MSB-first: the first argument occupies the most
// significant bits of the result. The result is unsigned.
func Concat(parts ...Integer) Integer {
	total := 0
	for _, p := range parts {
		total += p.Width()
	}
	bits := make([]Bit, 0, total)
	for n := len(parts) - 1; n >= 0; n-- {
		bits = append(bits, parts[n].bits...)
	}
	return Integer{bits: bits}
}

// Replicate repeats the value count times, MSB-first.
func (i Integer) Replicate(count int) Integer {
	bits := make([]Bit, 0, len(i.bits)*count)
	for n := 0; n < count; n++ {
		bits = append(bits, i.bits...)
	}
	return Integer{bits: bits}
}

// String renders the value in Verilog literal notation: decimal when fully
// known, binary otherwise.
func (i Integer) String() string {
	var sb strings.Builder
	if b, ok := i.Big(); ok {
		sb.WriteString(intToString(len(i.bits)))
		sb.WriteString("'d")
		sb.WriteString(b.String())
		return sb.String()
	}
	sb.WriteString(intToString(len(i.bits)))
	sb.WriteString("'b")
	for n := len(i.bits) - 1; n >= 0; n-- {
		sb.WriteByte(i.bits[n].rune())
	}
	return sb.String()
}

func intToString(n int) string {
	return big.NewInt(int64(n)).String()
}
