package generator

import "testing"

func TestOrderIsTotal(t *testing.T) {
	levels := []Order{
		OrderNone, OrderLogicalOr, OrderLogicalAnd, OrderLogicalNot, OrderComparison,
		OrderAdditive, OrderMultiplicative, OrderUnary, OrderExponentiation, OrderAtomic,
	}
	for i := 1; i < len(levels); i++ {
		if levels[i-1] >= levels[i] {
			t.Errorf("%v should bind looser than %v", levels[i-1], levels[i])
		}
		if levels[i-1].Tighter() != levels[i] {
			t.Errorf("%v.Tighter() = %v, want %v", levels[i-1], levels[i-1].Tighter(), levels[i])
		}
	}
	if OrderAtomic.Tighter() != OrderAtomic {
		t.Error("Atomic must be the tightest level")
	}
}

func TestParenthesize(t *testing.T) {
	tests := []struct {
		order    Order
		required Order
		want     string
	}{
		{OrderAdditive, OrderMultiplicative, "(a)"},
		{OrderAdditive, OrderAdditive, "a"},
		{OrderAtomic, OrderAtomic, "a"},
		{OrderMultiplicative, OrderNone, "a"},
		{OrderLogicalNot, OrderComparison, "(a)"},
	}
	for _, tt := range tests {
		if got := parenthesize("a", tt.order, tt.required); got != tt.want {
			t.Errorf("parenthesize(%v, %v) = %q, want %q", tt.order, tt.required, got, tt.want)
		}
	}
}

func TestOrderString(t *testing.T) {
	if OrderMultiplicative.String() != "Multiplicative" {
		t.Errorf("got %q", OrderMultiplicative.String())
	}
	if Order(42).String() != "Order(?)" {
		t.Errorf("got %q", Order(42).String())
	}
}
