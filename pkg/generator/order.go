package generator

// Order is the binding strength of the outermost operator of a generated
// expression. Larger values bind tighter.
type Order int

// Precedence levels for MicroPython, loosest first.
const (
	// OrderNone is required where no wrapping is ever needed: call arguments,
	// list elements, statement context.
	OrderNone Order = iota
	OrderLogicalOr
	OrderLogicalAnd
	// OrderLogicalNot sits below comparisons: "not a == b" is "not (a == b)".
	OrderLogicalNot
	OrderComparison
	OrderAdditive
	OrderMultiplicative
	// OrderUnary is arithmetic sign.
	OrderUnary
	// OrderExponentiation binds tighter than sign: "-x ** 2" is "-(x ** 2)".
	OrderExponentiation
	// OrderAtomic covers literals, calls, member and index access.
	OrderAtomic
)

var orderNames = map[Order]string{
	OrderNone:           "None",
	OrderLogicalOr:      "LogicalOr",
	OrderLogicalAnd:     "LogicalAnd",
	OrderLogicalNot:     "LogicalNot",
	OrderComparison:     "Comparison",
	OrderAdditive:       "Additive",
	OrderMultiplicative: "Multiplicative",
	OrderUnary:          "Unary",
	OrderExponentiation: "Exponentiation",
	OrderAtomic:         "Atomic",
}

func (o Order) String() string {
	if name, ok := orderNames[o]; ok {
		return name
	}
	return "Order(?)"
}

// Tighter returns the next stronger level. Operands of non-associative
// operators request it so an equal-precedence child gets parenthesized.
func (o Order) Tighter() Order {
	if o >= OrderAtomic {
		return OrderAtomic
	}
	return o + 1
}

// parenthesize wraps code when its order binds looser than required.
// Equal orders are left alone.
func parenthesize(code string, order, required Order) string {
	if order < required {
		return "(" + code + ")"
	}
	return code
}
