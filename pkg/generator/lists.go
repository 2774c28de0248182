package generator

import (
	"strconv"
	"strings"

	"github.com/zurustar/blockpy/pkg/block"
)

func registerLists(g *Generator) {
	g.Register("lists_create_empty", listsCreateEmpty)
	g.Register("lists_create_with", listsCreateWith)
	g.Register("lists_repeat", listsRepeat)
	g.Register("lists_length", listsLength)
	g.Register("lists_isEmpty", listsIsEmpty)
	g.Register("lists_indexOf", listsIndexOf)
	g.Register("lists_getIndex", listsGetIndex)
	g.Register("lists_setIndex", listsSetIndex)
	g.Register("lists_getSublist", listsGetSublist)
	g.Register("lists_sort", listsSort)
	g.Register("lists_split", listsSplit)
	g.Register("lists_reverse", listsReverse)
}

func listsCreateEmpty(c *Context, b *block.Block) (Result, error) {
	return Expr("[]", OrderAtomic), nil
}

func listsCreateWith(c *Context, b *block.Block) (Result, error) {
	elements := make([]string, b.ItemCount())
	for i := range elements {
		el, err := c.ValueToCode(b, "ADD"+strconv.Itoa(i), OrderNone, "None")
		if err != nil {
			return Result{}, err
		}
		elements[i] = el
	}
	return Expr("["+strings.Join(elements, ", ")+"]", OrderAtomic), nil
}

func listsRepeat(c *Context, b *block.Block) (Result, error) {
	item, err := c.ValueToCode(b, "ITEM", OrderNone, "None")
	if err != nil {
		return Result{}, err
	}
	times, err := c.ValueToCode(b, "NUM", OrderMultiplicative.Tighter(), "0")
	if err != nil {
		return Result{}, err
	}
	return Expr("["+item+"] * "+times, OrderMultiplicative), nil
}

func listsLength(c *Context, b *block.Block) (Result, error) {
	list, err := c.ValueToCode(b, "VALUE", OrderNone, "[]")
	if err != nil {
		return Result{}, err
	}
	return Expr("len("+list+")", OrderAtomic), nil
}

func listsIsEmpty(c *Context, b *block.Block) (Result, error) {
	list, err := c.ValueToCode(b, "VALUE", OrderNone, "[]")
	if err != nil {
		return Result{}, err
	}
	return Expr("not len("+list+")", OrderLogicalNot), nil
}

// listsIndexOf finds the first or last occurrence of an item. The helpers
// turn a missing item into -1 (zero-based) or 0 (one-based).
func listsIndexOf(c *Context, b *block.Block) (Result, error) {
	item, err := c.ValueToCode(b, "FIND", OrderNone, "[]")
	if err != nil {
		return Result{}, err
	}
	list, err := c.ValueToCode(b, "VALUE", OrderNone, "''")
	if err != nil {
		return Result{}, err
	}

	errorIndex, firstAdjust, lastAdjust := " -1", "", " - 1"
	if c.Options().OneBasedIndex {
		errorIndex, firstAdjust, lastAdjust = " 0", " + 1", ""
	}

	var name string
	if b.Field("END") == "FIRST" {
		name, err = c.ProvideFunction("first_index",
			"def "+FunctionNamePlaceholder+"(my_list, elem):",
			"    try: index = my_list.index(elem)"+firstAdjust,
			"    except: index ="+errorIndex,
			"    return index")
	} else {
		name, err = c.ProvideFunction("last_index",
			"def "+FunctionNamePlaceholder+"(my_list, elem):",
			"    try: index = len(my_list) - my_list[::-1].index(elem)"+lastAdjust,
			"    except: index ="+errorIndex,
			"    return index")
	}
	if err != nil {
		return Result{}, err
	}
	return Expr(name+"("+list+", "+item+")", OrderAtomic), nil
}

func provideRemoveRandomItem(c *Context) (string, error) {
	return c.ProvideFunction("lists_remove_random_item",
		"def "+FunctionNamePlaceholder+"(myList):",
		"    x = int(random.random() * len(myList))",
		"    return myList.pop(x)")
}

// listsGetIndex covers MODE (GET, GET_REMOVE, REMOVE) × WHERE (FIRST, LAST,
// FROM_START, FROM_END, RANDOM). REMOVE produces a statement.
func listsGetIndex(c *Context, b *block.Block) (Result, error) {
	mode := b.Field("MODE")
	if mode == "" {
		mode = "GET"
	}
	where := b.Field("WHERE")
	if where == "" {
		where = "FROM_START"
	}
	listOrder := OrderAtomic
	if where == "RANDOM" {
		listOrder = OrderNone
	}
	list, err := c.ValueToCode(b, "VALUE", listOrder, "[]")
	if err != nil {
		return Result{}, err
	}

	// indexed builds the three mode shapes around one position.
	indexed := func(at, popArg string) (Result, bool) {
		switch mode {
		case "GET":
			return Expr(list+"["+at+"]", OrderAtomic), true
		case "GET_REMOVE":
			return Expr(list+".pop("+popArg+")", OrderAtomic), true
		case "REMOVE":
			return Stmt(list + ".pop(" + popArg + ")\n"), true
		}
		return Result{}, false
	}

	switch where {
	case "FIRST":
		if res, ok := indexed("0", "0"); ok {
			return res, nil
		}
	case "LAST":
		if res, ok := indexed("-1", ""); ok {
			return res, nil
		}
	case "FROM_START", "FROM_END":
		delta, negate := 0, false
		if where == "FROM_END" {
			delta, negate = 1, true
		}
		at, err := c.adjustedIndex(b, "AT", delta, negate)
		if err != nil {
			return Result{}, err
		}
		if res, ok := indexed(at, at); ok {
			return res, nil
		}
	case "RANDOM":
		c.DeclareImport("import_random", "import random")
		switch mode {
		case "GET":
			return Expr("random.choice("+list+")", OrderAtomic), nil
		case "GET_REMOVE", "REMOVE":
			name, err := provideRemoveRandomItem(c)
			if err != nil {
				return Result{}, err
			}
			code := name + "(" + list + ")"
			if mode == "REMOVE" {
				return Stmt(code + "\n"), nil
			}
			return Expr(code, OrderAtomic), nil
		}
	}
	return Result{}, unhandled(b, "MODE", mode, "WHERE", where)
}

// listsSetIndex covers MODE (SET, INSERT) × the five WHERE positions. The
// random case evaluates the list once, caching compound list expressions
// in a temporary.
func listsSetIndex(c *Context, b *block.Block) (Result, error) {
	list, listOrder, err := c.valueWithOrder(b, "LIST", OrderAtomic, "[]")
	if err != nil {
		return Result{}, err
	}
	mode := b.Field("MODE")
	if mode == "" {
		mode = "SET"
	}
	where := b.Field("WHERE")
	if where == "" {
		where = "FROM_START"
	}
	value, err := c.ValueToCode(b, "TO", OrderNone, "None")
	if err != nil {
		return Result{}, err
	}

	at := func(pos string) (Result, bool) {
		switch mode {
		case "SET":
			return Stmt(list + "[" + pos + "] = " + value + "\n"), true
		case "INSERT":
			return Stmt(list + ".insert(" + pos + ", " + value + ")\n"), true
		}
		return Result{}, false
	}

	switch where {
	case "FIRST":
		if res, ok := at("0"); ok {
			return res, nil
		}
	case "LAST":
		switch mode {
		case "SET":
			return Stmt(list + "[-1] = " + value + "\n"), nil
		case "INSERT":
			return Stmt(list + ".append(" + value + ")\n"), nil
		}
	case "FROM_START", "FROM_END":
		delta, negate := 0, false
		if where == "FROM_END" {
			delta, negate = 1, true
		}
		pos, err := c.adjustedIndex(b, "AT", delta, negate)
		if err != nil {
			return Result{}, err
		}
		if res, ok := at(pos); ok {
			return res, nil
		}
	case "RANDOM":
		if mode != "SET" && mode != "INSERT" {
			break
		}
		c.DeclareImport("import_random", "import random")
		var code string
		if !(listOrder == OrderAtomic && isIdentifier(list)) {
			listVar := c.Temp("tmp_list")
			code = listVar + " = " + list + "\n"
			list = listVar
		}
		xVar := c.Temp("tmp_x")
		code += xVar + " = int(random.random() * len(" + list + "))\n"
		res, _ := at(xVar)
		return Stmt(code + res.Code), nil
	}
	return Result{}, unhandled(b, "MODE", mode, "WHERE", where)
}

// sliceBounds resolves the two endpoints of a sublist or substring. An
// elided bound is "". A FROM_END end position of zero must mean "through the
// end": a literal zero is elided, a dynamic one falls back to sys.maxsize.
func sliceBounds(c *Context, b *block.Block) (string, string, error) {
	where1 := b.Field("WHERE1")
	where2 := b.Field("WHERE2")

	var at1 string
	switch where1 {
	case "FROM_START":
		v, err := c.adjustedIndex(b, "AT1", 0, false)
		if err != nil {
			return "", "", err
		}
		if v != "0" {
			at1 = v
		}
	case "FROM_END":
		v, err := c.adjustedIndex(b, "AT1", 1, true)
		if err != nil {
			return "", "", err
		}
		at1 = v
	case "FIRST":
	default:
		return "", "", unhandled(b, "WHERE1", where1, "WHERE2", where2)
	}

	var at2 string
	switch where2 {
	case "FROM_START":
		v, err := c.adjustedIndex(b, "AT2", 1, false)
		if err != nil {
			return "", "", err
		}
		at2 = v
	case "FROM_END":
		v, err := c.adjustedIndex(b, "AT2", 0, true)
		if err != nil {
			return "", "", err
		}
		if _, literal := intLiteral(v); !literal {
			c.DeclareImport("import_sys", "import sys")
			at2 = v + " or sys.maxsize"
		} else if v != "0" {
			at2 = v
		}
	case "LAST":
	default:
		return "", "", unhandled(b, "WHERE1", where1, "WHERE2", where2)
	}
	return at1, at2, nil
}

func listsGetSublist(c *Context, b *block.Block) (Result, error) {
	list, err := c.ValueToCode(b, "LIST", OrderAtomic, "[]")
	if err != nil {
		return Result{}, err
	}
	at1, at2, err := sliceBounds(c, b)
	if err != nil {
		return Result{}, err
	}
	return Expr(list+"["+at1+" : "+at2+"]", OrderAtomic), nil
}

// listsSort sorts a copy of the list. The ordering key and direction are
// passed to one shared helper, so every sort block in a pass reuses it.
func listsSort(c *Context, b *block.Block) (Result, error) {
	list, err := c.ValueToCode(b, "LIST", OrderNone, "[]")
	if err != nil {
		return Result{}, err
	}
	kind := b.Field("TYPE")
	switch kind {
	case "NUMERIC", "TEXT", "IGNORE_CASE":
	case "CASE_INSENSITIVE":
		kind = "IGNORE_CASE"
	default:
		return Result{}, unhandled(b, "TYPE", kind)
	}
	reverse := "True"
	if b.Field("DIRECTION") == "1" {
		reverse = "False"
	}

	name, err := c.ProvideFunction("lists_sort",
		"def "+FunctionNamePlaceholder+"(my_list, type, reverse):",
		"    def try_float(s):",
		"        try:",
		"            return float(s)",
		"        except:",
		"            return 0",
		"    key_funcs = {",
		"        \"NUMERIC\": try_float,",
		"        \"TEXT\": str,",
		"        \"IGNORE_CASE\": lambda s: str(s).lower()",
		"    }",
		"    key_func = key_funcs[type]",
		"    list_cpy = list(my_list)",
		"    return sorted(list_cpy, key=key_func, reverse=reverse)")
	if err != nil {
		return Result{}, err
	}
	return Expr(name+"("+list+", \""+kind+"\", "+reverse+")", OrderAtomic), nil
}

// listsSplit splits text into a list or joins a list into text. For JOIN the
// delimiter is the receiver.
func listsSplit(c *Context, b *block.Block) (Result, error) {
	switch mode := b.Field("MODE"); mode {
	case "SPLIT":
		input, err := c.ValueToCode(b, "INPUT", OrderAtomic, "''")
		if err != nil {
			return Result{}, err
		}
		delim, err := c.ValueToCode(b, "DELIM", OrderNone, "")
		if err != nil {
			return Result{}, err
		}
		return Expr(input+".split("+delim+")", OrderAtomic), nil
	case "JOIN":
		input, err := c.ValueToCode(b, "INPUT", OrderNone, "[]")
		if err != nil {
			return Result{}, err
		}
		delim, err := c.ValueToCode(b, "DELIM", OrderAtomic, "''")
		if err != nil {
			return Result{}, err
		}
		return Expr(delim+".join("+input+")", OrderAtomic), nil
	default:
		return Result{}, unhandled(b, "MODE", mode)
	}
}

func listsReverse(c *Context, b *block.Block) (Result, error) {
	list, err := c.ValueToCode(b, "LIST", OrderNone, "[]")
	if err != nil {
		return Result{}, err
	}
	return Expr("list(reversed("+list+"))", OrderAtomic), nil
}
