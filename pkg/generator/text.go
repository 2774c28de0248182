package generator

import (
	"strconv"
	"strings"

	"github.com/zurustar/blockpy/pkg/block"
)

func registerText(g *Generator) {
	g.Register("text", text)
	g.Register("text_join", textJoin)
	g.Register("text_append", textAppend)
	g.Register("text_length", textLength)
	g.Register("text_isEmpty", textIsEmpty)
	g.Register("text_indexOf", textIndexOf)
	g.Register("text_charAt", textCharAt)
	g.Register("text_getSubstring", textGetSubstring)
	g.Register("text_changeCase", textChangeCase)
	g.Register("text_trim", textTrim)
	g.Register("text_print", textPrint)
	g.Register("text_prompt_ext", textPrompt)
	g.Register("text_prompt", textPrompt)
	g.Register("text_count", textCount)
	g.Register("text_replace", textReplace)
	g.Register("text_reverse", textReverse)
}

func text(c *Context, b *block.Block) (Result, error) {
	return Expr(quote(b.Field("TEXT")), OrderAtomic), nil
}

// textJoin is specialised by arity: nothing, one str(), a two-way "+", or a
// join over a comprehension for three or more.
func textJoin(c *Context, b *block.Block) (Result, error) {
	n := b.ItemCount()
	elements := make([]string, n)
	for i := range elements {
		el, err := c.ValueToCode(b, "ADD"+strconv.Itoa(i), OrderNone, "''")
		if err != nil {
			return Result{}, err
		}
		elements[i] = el
	}

	switch n {
	case 0:
		return Expr("''", OrderAtomic), nil
	case 1:
		return Expr("str("+elements[0]+")", OrderAtomic), nil
	case 2:
		return Expr("str("+elements[0]+") + str("+elements[1]+")", OrderAdditive), nil
	default:
		x := c.Temp("x")
		code := "''.join([str(" + x + ") for " + x + " in [" + strings.Join(elements, ", ") + "]])"
		return Expr(code, OrderAtomic), nil
	}
}

func textAppend(c *Context, b *block.Block) (Result, error) {
	name := c.VariableName(b.Field(block.VarField))
	value, err := c.ValueToCode(b, "TEXT", OrderNone, "''")
	if err != nil {
		return Result{}, err
	}
	return Stmt(name + " = str(" + name + ") + str(" + value + ")\n"), nil
}

func textLength(c *Context, b *block.Block) (Result, error) {
	s, err := c.ValueToCode(b, "VALUE", OrderNone, "''")
	if err != nil {
		return Result{}, err
	}
	return Expr("len("+s+")", OrderAtomic), nil
}

func textIsEmpty(c *Context, b *block.Block) (Result, error) {
	s, err := c.ValueToCode(b, "VALUE", OrderNone, "''")
	if err != nil {
		return Result{}, err
	}
	return Expr("not len("+s+")", OrderLogicalNot), nil
}

// textIndexOf uses find/rfind, which already return -1 when absent; one-based
// workspaces shift that to 0.
func textIndexOf(c *Context, b *block.Block) (Result, error) {
	method := "rfind"
	if b.Field("END") == "FIRST" {
		method = "find"
	}
	sub, err := c.ValueToCode(b, "FIND", OrderNone, "''")
	if err != nil {
		return Result{}, err
	}
	s, err := c.ValueToCode(b, "VALUE", OrderAtomic, "''")
	if err != nil {
		return Result{}, err
	}
	code := s + "." + method + "(" + sub + ")"
	if c.Options().OneBasedIndex {
		return Expr(code+" + 1", OrderAdditive), nil
	}
	return Expr(code, OrderAtomic), nil
}

func textCharAt(c *Context, b *block.Block) (Result, error) {
	where := b.Field("WHERE")
	if where == "" {
		where = "FROM_START"
	}
	s, err := c.ValueToCode(b, "VALUE", OrderAtomic, "''")
	if err != nil {
		return Result{}, err
	}

	switch where {
	case "FIRST":
		return Expr(s+"[0]", OrderAtomic), nil
	case "LAST":
		return Expr(s+"[-1]", OrderAtomic), nil
	case "FROM_START":
		at, err := c.adjustedIndex(b, "AT", 0, false)
		if err != nil {
			return Result{}, err
		}
		return Expr(s+"["+at+"]", OrderAtomic), nil
	case "FROM_END":
		at, err := c.adjustedIndex(b, "AT", 1, true)
		if err != nil {
			return Result{}, err
		}
		return Expr(s+"["+at+"]", OrderAtomic), nil
	case "RANDOM":
		c.DeclareImport("import_random", "import random")
		name, err := c.ProvideFunction("text_random_letter",
			"def "+FunctionNamePlaceholder+"(text):",
			"    x = int(random.random() * len(text))",
			"    return text[x]")
		if err != nil {
			return Result{}, err
		}
		return Expr(name+"("+s+")", OrderAtomic), nil
	}
	return Result{}, unhandled(b, "WHERE", where)
}

func textGetSubstring(c *Context, b *block.Block) (Result, error) {
	s, err := c.ValueToCode(b, "STRING", OrderAtomic, "''")
	if err != nil {
		return Result{}, err
	}
	at1, at2, err := sliceBounds(c, b)
	if err != nil {
		return Result{}, err
	}
	return Expr(s+"["+at1+" : "+at2+"]", OrderAtomic), nil
}

var caseMethods = map[string]string{
	"UPPERCASE": ".upper()",
	"LOWERCASE": ".lower()",
	"TITLECASE": ".title()",
}

func textChangeCase(c *Context, b *block.Block) (Result, error) {
	method, ok := caseMethods[b.Field("CASE")]
	if !ok {
		return Result{}, unhandled(b, "CASE", b.Field("CASE"))
	}
	s, err := c.ValueToCode(b, "TEXT", OrderAtomic, "''")
	if err != nil {
		return Result{}, err
	}
	return Expr(s+method, OrderAtomic), nil
}

var trimMethods = map[string]string{
	"LEFT":  ".lstrip()",
	"RIGHT": ".rstrip()",
	"BOTH":  ".strip()",
}

func textTrim(c *Context, b *block.Block) (Result, error) {
	method, ok := trimMethods[b.Field("MODE")]
	if !ok {
		return Result{}, unhandled(b, "MODE", b.Field("MODE"))
	}
	s, err := c.ValueToCode(b, "TEXT", OrderAtomic, "''")
	if err != nil {
		return Result{}, err
	}
	return Expr(s+method, OrderAtomic), nil
}

func textPrint(c *Context, b *block.Block) (Result, error) {
	msg, err := c.ValueToCode(b, "TEXT", OrderNone, "''")
	if err != nil {
		return Result{}, err
	}
	return Stmt("print(" + msg + ")\n"), nil
}

// textPrompt serves both text_prompt (message in a field) and
// text_prompt_ext (message in a socket).
func textPrompt(c *Context, b *block.Block) (Result, error) {
	name, err := c.ProvideFunction("text_prompt",
		"def "+FunctionNamePlaceholder+"(msg):",
		"    try:",
		"        return raw_input(msg)",
		"    except NameError:",
		"        return input(msg)")
	if err != nil {
		return Result{}, err
	}

	var msg string
	if b.HasField("TEXT") {
		msg = quote(b.Field("TEXT"))
	} else {
		msg, err = c.ValueToCode(b, "TEXT", OrderNone, "''")
		if err != nil {
			return Result{}, err
		}
	}
	code := name + "(" + msg + ")"
	if b.Field("TYPE") == "NUMBER" {
		code = "float(" + code + ")"
	}
	return Expr(code, OrderAtomic), nil
}

func textCount(c *Context, b *block.Block) (Result, error) {
	s, err := c.ValueToCode(b, "TEXT", OrderAtomic, "''")
	if err != nil {
		return Result{}, err
	}
	sub, err := c.ValueToCode(b, "SUB", OrderNone, "''")
	if err != nil {
		return Result{}, err
	}
	return Expr(s+".count("+sub+")", OrderAtomic), nil
}

func textReplace(c *Context, b *block.Block) (Result, error) {
	s, err := c.ValueToCode(b, "TEXT", OrderAtomic, "''")
	if err != nil {
		return Result{}, err
	}
	from, err := c.ValueToCode(b, "FROM", OrderNone, "''")
	if err != nil {
		return Result{}, err
	}
	to, err := c.ValueToCode(b, "TO", OrderNone, "''")
	if err != nil {
		return Result{}, err
	}
	return Expr(s+".replace("+from+", "+to+")", OrderAtomic), nil
}

func textReverse(c *Context, b *block.Block) (Result, error) {
	s, err := c.ValueToCode(b, "TEXT", OrderAtomic, "''")
	if err != nil {
		return Result{}, err
	}
	return Expr(s+"[::-1]", OrderAtomic), nil
}
