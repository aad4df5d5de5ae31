package types_test

import (
	"testing"

	"github.com/brightclark/slang/internal/types"
)

func TestBitWidth(t *testing.T) {
	packedStruct := &types.Struct{
		Packed: true,
		Fields: []*types.Field{
			{Name: "a", Type: types.Packed(3, false, false), Index: 0},
			{Name: "b", Type: types.Packed(5, false, false), Index: 1},
		},
	}
	cases := []struct {
		typ  types.Type
		want int
	}{
		{types.BitType, 1},
		{types.IntType, 32},
		{types.Packed(17, true, true), 17},
		{&types.FixedArray{Elem: types.Packed(4, false, false), Size: 3, Packed: true}, 12},
		{&types.FixedArray{Elem: types.IntType, Size: 3}, 0},
		{packedStruct, 8},
		{types.RealT, 0},
		{types.StringT, 0},
	}
	for _, tc := range cases {
		if got := types.BitWidth(tc.typ); got != tc.want {
			t.Errorf("BitWidth(%s) = %d, want %d", tc.typ, got, tc.want)
		}
	}
}

func TestMatchesIsStructural(t *testing.T) {
	if !types.Matches(types.IntType, types.Packed(32, true, false)) {
		t.Fatal("int must match an anonymous 32-bit signed two-state vector")
	}
	if types.Matches(types.IntType, types.IntegerT) {
		t.Fatal("two-state int must not match four-state integer")
	}
	if types.Matches(types.Packed(8, true, false), types.Packed(8, false, false)) {
		t.Fatal("signedness is part of the type")
	}
	a := &types.FixedArray{Elem: types.IntType, Size: 4}
	b := &types.FixedArray{Elem: types.Packed(32, true, false), Size: 4}
	if !types.Matches(a, b) {
		t.Fatal("array matching must recurse into the element type")
	}
}

func TestFourStateness(t *testing.T) {
	if types.IsFourState(types.BitType) || !types.IsFourState(types.LogicType) {
		t.Fatal("bit is two-state, logic is four-state")
	}
	mixed := &types.Struct{
		Fields: []*types.Field{
			{Name: "a", Type: types.BitType},
			{Name: "b", Type: types.LogicType, Index: 1},
		},
	}
	if !types.IsFourState(mixed) {
		t.Fatal("a struct with any four-state field is four-state")
	}
}

func TestIntegralClassification(t *testing.T) {
	packedArr := &types.FixedArray{Elem: types.BitType, Size: 4, Packed: true}
	unpackedArr := &types.FixedArray{Elem: types.BitType, Size: 4}
	if !types.IsIntegral(packedArr) || types.IsIntegral(unpackedArr) {
		t.Fatal("packedness decides whether an array is integral")
	}
	if !types.IsAggregate(unpackedArr) || types.IsAggregate(packedArr) {
		t.Fatal("unpacked arrays are aggregates, packed ones are not")
	}
	if !types.IsNumeric(types.RealT) || types.IsNumeric(types.StringT) {
		t.Fatal("real is numeric, string is not")
	}
}

func TestTypeStrings(t *testing.T) {
	cases := []struct {
		typ  types.Type
		want string
	}{
		{types.IntType, "int"},
		{types.Packed(8, false, false), "bit [7:0]"},
		{types.Packed(8, true, true), "logic signed [7:0]"},
		{&types.FixedArray{Elem: types.IntType, Size: 4}, "int $[4]"},
		{types.ErrType, "<error>"},
	}
	for _, tc := range cases {
		if got := tc.typ.String(); got != tc.want {
			t.Errorf("String() = %q, want %q", got, tc.want)
		}
	}
}
