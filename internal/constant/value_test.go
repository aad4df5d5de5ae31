package constant

import "testing"

func TestValueKinds(t *testing.T) {
	if Invalid().IsConstant() {
		t.Fatal("invalid value should not be constant")
	}
	if (Value{}).Kind() != KindInvalid {
		t.Fatal("zero value should be the not-a-constant marker")
	}

	v := IntValue(NewInteger(8, 5, false))
	if !v.IsConstant() || !v.IsInteger() {
		t.Fatal("integer value misclassified")
	}
	if got, _ := v.Integer().Uint64(); got != 5 {
		t.Fatalf("integer payload = %d", got)
	}
}

func TestValueTruthiness(t *testing.T) {
	if !IntValue(NewInteger(8, 1, false)).IsTrue() {
		t.Fatal("1 should be true")
	}
	if !IntValue(NewInteger(8, 0, false)).IsFalse() {
		t.Fatal("0 should be false")
	}

	// An unknown truth bit is neither true nor false.
	x := IntValue(AllX(1, false))
	if x.IsTrue() || x.IsFalse() {
		t.Fatal("x should be neither true nor false")
	}

	if !RealValue(0.5).IsTrue() || !RealValue(0).IsFalse() {
		t.Fatal("real truthiness wrong")
	}
	if !NullValue().IsFalse() {
		t.Fatal("null should be false")
	}
	if Invalid().IsTrue() || Invalid().IsFalse() {
		t.Fatal("invalid should be neither true nor false")
	}
}

func TestValueAccessorPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected a panic from a wrong-kind accessor")
		}
	}()
	RealValue(1.5).Integer()
}

func TestValueString(t *testing.T) {
	cases := []struct {
		v    Value
		want string
	}{
		{IntValue(NewInteger(8, 5, false)), "8'd5"},
		{RealValue(2.5), "2.5"},
		{StringValue("hi"), `"hi"`},
		{NullValue(), "null"},
		{ElementsValue([]Value{IntValue(NewInteger(4, 1, false)), IntValue(NewInteger(4, 2, false))}), "'{4'd1, 4'd2}"},
		{Invalid(), "<not constant>"},
	}
	for _, tc := range cases {
		if got := tc.v.String(); got != tc.want {
			t.Fatalf("String = %q, want %q", got, tc.want)
		}
	}
}
