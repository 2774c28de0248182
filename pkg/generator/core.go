package generator

import (
	"math"
	"strconv"
	"strings"

	"github.com/zurustar/blockpy/pkg/block"
)

func registerCore(g *Generator) {
	g.Register("math_number", mathNumber)
	g.Register("math_arithmetic", mathArithmetic)
	g.Register("math_single", mathSingle)
	g.Register("logic_boolean", logicBoolean)
	g.Register("logic_null", logicNull)
	g.Register("logic_compare", logicCompare)
	g.Register("logic_operation", logicOperation)
	g.Register("logic_negate", logicNegate)
	g.Register("variables_get", variablesGet)
	g.Register("variables_set", variablesSet)
	g.Register("controls_if", controlsIf)
	g.Register("controls_repeat_ext", controlsRepeat)
	g.Register("controls_whileUntil", controlsWhileUntil)
	g.Register("controls_forEach", controlsForEach)
}

// formatNumber renders a numeric field as a MicroPython literal.
func formatNumber(s string) (string, Order, bool) {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return "", OrderNone, false
	}
	switch {
	case math.IsNaN(f):
		return "float('nan')", OrderAtomic, true
	case math.IsInf(f, 1):
		return "float('inf')", OrderAtomic, true
	case math.IsInf(f, -1):
		return "-float('inf')", OrderUnary, true
	}

	var code string
	if f == math.Trunc(f) && math.Abs(f) < 1e15 {
		code = strconv.FormatInt(int64(f), 10)
	} else {
		code = strconv.FormatFloat(f, 'g', -1, 64)
	}
	if strings.HasPrefix(code, "-") {
		return code, OrderUnary, true
	}
	return code, OrderAtomic, true
}

func mathNumber(c *Context, b *block.Block) (Result, error) {
	code, order, ok := formatNumber(b.Field("NUM"))
	if !ok {
		return Result{}, newError(b, ErrInvalidField, "NUM=%q is not a number", b.Field("NUM"))
	}
	return Expr(code, order), nil
}

type binaryOp struct {
	symbol string
	order  Order
}

var arithmeticOps = map[string]binaryOp{
	"ADD":      {" + ", OrderAdditive},
	"MINUS":    {" - ", OrderAdditive},
	"MULTIPLY": {" * ", OrderMultiplicative},
	"DIVIDE":   {" / ", OrderMultiplicative},
	"POWER":    {" ** ", OrderExponentiation},
}

func mathArithmetic(c *Context, b *block.Block) (Result, error) {
	op, ok := arithmeticOps[b.Field("OP")]
	if !ok {
		return Result{}, unhandled(b, "OP", b.Field("OP"))
	}

	// Both + and * may absorb an equal left operand. ** is right-associative
	// and its right operand may carry a sign.
	leftOrder, rightOrder := op.order, op.order.Tighter()
	if op.order == OrderExponentiation {
		leftOrder, rightOrder = op.order.Tighter(), OrderUnary
	}
	a, err := c.ValueToCode(b, "A", leftOrder, "0")
	if err != nil {
		return Result{}, err
	}
	z, err := c.ValueToCode(b, "B", rightOrder, "0")
	if err != nil {
		return Result{}, err
	}
	return Expr(a+op.symbol+z, op.order), nil
}

func mathSingle(c *Context, b *block.Block) (Result, error) {
	switch op := b.Field("OP"); op {
	case "NEG":
		x, err := c.ValueToCode(b, "NUM", OrderUnary, "0")
		if err != nil {
			return Result{}, err
		}
		if strings.HasPrefix(x, "-") {
			x = " " + x
		}
		return Expr("-"+x, OrderUnary), nil
	case "ABS":
		x, err := c.ValueToCode(b, "NUM", OrderNone, "0")
		if err != nil {
			return Result{}, err
		}
		return Expr("abs("+x+")", OrderAtomic), nil
	default:
		return Result{}, unhandled(b, "OP", op)
	}
}

func logicBoolean(c *Context, b *block.Block) (Result, error) {
	if b.Field("BOOL") == "TRUE" {
		return Expr("True", OrderAtomic), nil
	}
	return Expr("False", OrderAtomic), nil
}

func logicNull(c *Context, b *block.Block) (Result, error) {
	return Expr("None", OrderAtomic), nil
}

var compareOps = map[string]string{
	"EQ":  " == ",
	"NEQ": " != ",
	"LT":  " < ",
	"LTE": " <= ",
	"GT":  " > ",
	"GTE": " >= ",
}

// logicCompare wraps comparison operands so Python never chains them.
func logicCompare(c *Context, b *block.Block) (Result, error) {
	op, ok := compareOps[b.Field("OP")]
	if !ok {
		return Result{}, unhandled(b, "OP", b.Field("OP"))
	}
	required := OrderComparison.Tighter()
	a, err := c.ValueToCode(b, "A", required, "0")
	if err != nil {
		return Result{}, err
	}
	z, err := c.ValueToCode(b, "B", required, "0")
	if err != nil {
		return Result{}, err
	}
	return Expr(a+op+z, OrderComparison), nil
}

func logicOperation(c *Context, b *block.Block) (Result, error) {
	op, order := " and ", OrderLogicalAnd
	switch b.Field("OP") {
	case "AND":
	case "OR":
		op, order = " or ", OrderLogicalOr
	default:
		return Result{}, unhandled(b, "OP", b.Field("OP"))
	}

	// A single missing operand takes the identity of the operator.
	def := "False"
	if order == OrderLogicalAnd && (b.Input("A") != nil || b.Input("B") != nil) {
		def = "True"
	}
	a, err := c.ValueToCode(b, "A", order, def)
	if err != nil {
		return Result{}, err
	}
	z, err := c.ValueToCode(b, "B", order, def)
	if err != nil {
		return Result{}, err
	}
	return Expr(a+op+z, order), nil
}

func logicNegate(c *Context, b *block.Block) (Result, error) {
	x, err := c.ValueToCode(b, "BOOL", OrderLogicalNot, "True")
	if err != nil {
		return Result{}, err
	}
	return Expr("not "+x, OrderLogicalNot), nil
}

func variablesGet(c *Context, b *block.Block) (Result, error) {
	return Expr(c.VariableName(b.Field(block.VarField)), OrderAtomic), nil
}

func variablesSet(c *Context, b *block.Block) (Result, error) {
	v, err := c.ValueToCode(b, "VALUE", OrderNone, "0")
	if err != nil {
		return Result{}, err
	}
	return Stmt(c.VariableName(b.Field(block.VarField)) + " = " + v + "\n"), nil
}

// branch generates a statement socket with the statement prefix applied,
// substituting pass for an empty body.
func (c *Context) branch(b *block.Block, socket string, loop bool) (string, error) {
	code, err := c.StatementToCode(b, socket)
	if err != nil {
		return "", err
	}
	code = c.instrument(c.Options().StatementPrefix, b, code)
	if loop {
		code = c.instrument(c.Options().LoopTrap, b, code)
	}
	if code == "" {
		return pass, nil
	}
	return code, nil
}

func controlsIf(c *Context, b *block.Block) (Result, error) {
	var sb strings.Builder
	for n := 0; n <= b.MutationInt("elseif"); n++ {
		cond, err := c.ValueToCode(b, "IF"+strconv.Itoa(n), OrderNone, "False")
		if err != nil {
			return Result{}, err
		}
		body, err := c.branch(b, "DO"+strconv.Itoa(n), false)
		if err != nil {
			return Result{}, err
		}
		if n == 0 {
			sb.WriteString("if " + cond + ":\n")
		} else {
			sb.WriteString("elif " + cond + ":\n")
		}
		sb.WriteString(body)
	}
	if b.MutationInt("else") > 0 || b.Input("ELSE") != nil {
		body, err := c.branch(b, "ELSE", false)
		if err != nil {
			return Result{}, err
		}
		sb.WriteString("else:\n" + body)
	}
	return Stmt(sb.String()), nil
}

func controlsRepeat(c *Context, b *block.Block) (Result, error) {
	times, err := c.ValueToCode(b, "TIMES", OrderNone, "0")
	if err != nil {
		return Result{}, err
	}
	if n, ok := intLiteral(times); ok {
		times = strconv.Itoa(n)
	} else {
		times = "int(" + times + ")"
	}
	body, err := c.branch(b, "DO", true)
	if err != nil {
		return Result{}, err
	}
	count := c.Temp("count")
	return Stmt("for " + count + " in range(" + times + "):\n" + body), nil
}

func controlsWhileUntil(c *Context, b *block.Block) (Result, error) {
	var cond string
	var err error
	switch mode := b.Field("MODE"); mode {
	case "", "WHILE":
		cond, err = c.ValueToCode(b, "BOOL", OrderNone, "False")
	case "UNTIL":
		cond, err = c.ValueToCode(b, "BOOL", OrderLogicalNot, "False")
		cond = "not " + cond
	default:
		return Result{}, unhandled(b, "MODE", mode)
	}
	if err != nil {
		return Result{}, err
	}
	body, err := c.branch(b, "DO", true)
	if err != nil {
		return Result{}, err
	}
	return Stmt("while " + cond + ":\n" + body), nil
}

func controlsForEach(c *Context, b *block.Block) (Result, error) {
	name := c.VariableName(b.Field(block.VarField))
	list, err := c.ValueToCode(b, "LIST", OrderNone, "[]")
	if err != nil {
		return Result{}, err
	}
	body, err := c.branch(b, "DO", true)
	if err != nil {
		return Result{}, err
	}
	return Stmt("for " + name + " in " + list + ":\n" + body), nil
}
