package generator

import (
	"errors"
	"strings"
	"testing"

	"github.com/zurustar/blockpy/pkg/block"
)

func getIndex(mode, where string, at *block.Block) *block.Block {
	b := block.New("lists_getIndex").
		SetField("MODE", mode).SetField("WHERE", where).
		SetInput("VALUE", variable("xs"))
	if at != nil {
		b.SetInput("AT", at)
	}
	return b
}

func TestListsGetIndex(t *testing.T) {
	tests := []struct {
		name      string
		mode      string
		where     string
		at        *block.Block
		oneBased  bool
		want      string
		statement bool
	}{
		{"get first", "GET", "FIRST", nil, false, "xs[0]", false},
		{"get last", "GET", "LAST", nil, false, "xs[-1]", false},
		{"get from start", "GET", "FROM_START", num("2"), false, "xs[2]", false},
		{"get from end", "GET", "FROM_END", num("2"), false, "xs[-3]", false},
		{"get random", "GET", "RANDOM", nil, false, "random.choice(xs)", false},
		{"get_remove first", "GET_REMOVE", "FIRST", nil, false, "xs.pop(0)", false},
		{"get_remove last", "GET_REMOVE", "LAST", nil, false, "xs.pop()", false},
		{"get_remove from start", "GET_REMOVE", "FROM_START", num("2"), false, "xs.pop(2)", false},
		{"get_remove from end", "GET_REMOVE", "FROM_END", num("2"), false, "xs.pop(-3)", false},
		{"get_remove random", "GET_REMOVE", "RANDOM", nil, false, "lists_remove_random_item(xs)", false},
		{"remove first", "REMOVE", "FIRST", nil, false, "xs.pop(0)\n", true},
		{"remove last", "REMOVE", "LAST", nil, false, "xs.pop()\n", true},
		{"remove from start", "REMOVE", "FROM_START", num("2"), false, "xs.pop(2)\n", true},
		{"remove from end", "REMOVE", "FROM_END", num("2"), false, "xs.pop(-3)\n", true},
		{"remove random", "REMOVE", "RANDOM", nil, false, "lists_remove_random_item(xs)\n", true},

		{"one-based from start", "GET", "FROM_START", num("2"), true, "xs[1]", false},
		{"one-based from end", "GET", "FROM_END", num("2"), true, "xs[-2]", false},
		{"one-based default position", "GET", "FROM_START", nil, true, "xs[0]", false},
		{"zero-based default position", "GET", "FROM_START", nil, false, "xs[0]", false},
		{"dynamic from start", "GET", "FROM_START", variable("i"), false, "xs[int(i)]", false},
		{"dynamic one-based from start", "GET", "FROM_START", variable("i"), true, "xs[int(i - 1)]", false},
		{"dynamic from end", "GET", "FROM_END", variable("i"), false, "xs[-int(i + 1)]", false},
		{"dynamic one-based from end", "GET", "FROM_END", variable("i"), true, "xs[-int(i)]", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, _ := run(t, block.Options{OneBasedIndex: tt.oneBased}, getIndex(tt.mode, tt.where, tt.at))
			if res.Code != tt.want {
				t.Errorf("got %q, want %q", res.Code, tt.want)
			}
			if res.IsStatement() != tt.statement {
				t.Errorf("IsStatement = %v, want %v", res.IsStatement(), tt.statement)
			}
			if !tt.statement && res.Order != OrderAtomic {
				t.Errorf("order = %v, want Atomic", res.Order)
			}
		})
	}
}

func TestListsGetIndexRandomDeclarations(t *testing.T) {
	_, c := run(t, block.Options{}, getIndex("REMOVE", "RANDOM", nil))
	if got := c.imports.values(); len(got) != 1 || got[0] != "import random" {
		t.Errorf("imports = %v", got)
	}
	helpers := c.helpers.values()
	if len(helpers) != 1 || !strings.HasPrefix(helpers[0], "def lists_remove_random_item(myList):") {
		t.Errorf("helpers = %v", helpers)
	}
}

func TestListsGetIndexUnhandled(t *testing.T) {
	b := getIndex("GET", "SIDEWAYS", nil)
	_, err := New().Generate(block.NewWorkspace(block.Options{}, printOf(b)))
	if !errors.Is(err, ErrUnhandledCombination) {
		t.Fatalf("expected ErrUnhandledCombination, got %v", err)
	}
	if !strings.Contains(err.Error(), "MODE=GET WHERE=SIDEWAYS") {
		t.Errorf("error does not name the fields: %v", err)
	}
}

func TestListsSetIndex(t *testing.T) {
	tests := []struct {
		name     string
		mode     string
		where    string
		list     *block.Block
		at       *block.Block
		oneBased bool
		want     string
	}{
		{"set first", "SET", "FIRST", variable("xs"), nil, false, "xs[0] = 'a'\n"},
		{"insert first", "INSERT", "FIRST", variable("xs"), nil, false, "xs.insert(0, 'a')\n"},
		{"set last", "SET", "LAST", variable("xs"), nil, false, "xs[-1] = 'a'\n"},
		{"insert last", "INSERT", "LAST", variable("xs"), nil, false, "xs.append('a')\n"},
		{"set from start", "SET", "FROM_START", variable("xs"), num("3"), false, "xs[3] = 'a'\n"},
		{"set from end", "SET", "FROM_END", variable("xs"), num("1"), false, "xs[-2] = 'a'\n"},
		{"one-based insert from start", "INSERT", "FROM_START", variable("xs"), num("1"), true, "xs.insert(0, 'a')\n"},
		{
			"random with variable list", "SET", "RANDOM", variable("xs"), nil, false,
			"tmp_x = int(random.random() * len(xs))\nxs[tmp_x] = 'a'\n",
		},
		{
			"random with compound list", "INSERT", "RANDOM", block.New("lists_create_empty"), nil, false,
			"tmp_list = []\ntmp_x = int(random.random() * len(tmp_list))\ntmp_list.insert(tmp_x, 'a')\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := block.New("lists_setIndex").
				SetField("MODE", tt.mode).SetField("WHERE", tt.where).
				SetInput("LIST", tt.list).
				SetInput("TO", str("a"))
			if tt.at != nil {
				b.SetInput("AT", tt.at)
			}
			res, _ := run(t, block.Options{OneBasedIndex: tt.oneBased}, b)
			if !res.IsStatement() {
				t.Error("lists_setIndex must be a statement")
			}
			if res.Code != tt.want {
				t.Errorf("got %q, want %q", res.Code, tt.want)
			}
		})
	}
}

func TestListsRandomSetIndexInsideProcedureIsGlobal(t *testing.T) {
	set := block.New("lists_setIndex").
		SetField("MODE", "SET").SetField("WHERE", "RANDOM").
		SetInput("LIST", variable("xs")).
		SetInput("TO", num("0"))
	def := block.New("procedures_defnoreturn").SetField("NAME", "shuffle_one").
		SetInput("STACK", set)

	got := generate(t, block.NewWorkspace(block.Options{}, def))
	if !strings.Contains(got, "    global xs, tmp_x\n") {
		t.Errorf("temporary missing from global line:\n%s", got)
	}
}

func TestListsGetSublist(t *testing.T) {
	tests := []struct {
		name     string
		where1   string
		at1      *block.Block
		where2   string
		at2      *block.Block
		oneBased bool
		want     string
		sys      bool
	}{
		{"whole list", "FIRST", nil, "LAST", nil, false, "xs[ : ]", false},
		{"from start to end zero", "FROM_START", num("1"), "FROM_END", num("0"), false, "xs[1 : ]", false},
		{"start elided", "FROM_START", num("0"), "FROM_START", num("2"), false, "xs[ : 3]", false},
		{"both from end", "FROM_END", num("2"), "FROM_END", num("1"), false, "xs[-3 : -1]", false},
		{"dynamic end from end", "FROM_START", num("1"), "FROM_END", variable("i"), false, "xs[1 : -int(i) or sys.maxsize]", true},
		{"one-based start elided", "FROM_START", num("1"), "FROM_START", num("2"), true, "xs[ : 2]", false},
		{"one-based last from end", "FIRST", nil, "FROM_END", num("1"), true, "xs[ : ]", false},
		{"one-based second to last", "FIRST", nil, "FROM_END", num("2"), true, "xs[ : -1]", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := block.New("lists_getSublist").
				SetField("WHERE1", tt.where1).SetField("WHERE2", tt.where2).
				SetInput("LIST", variable("xs"))
			if tt.at1 != nil {
				b.SetInput("AT1", tt.at1)
			}
			if tt.at2 != nil {
				b.SetInput("AT2", tt.at2)
			}
			res, c := run(t, block.Options{OneBasedIndex: tt.oneBased}, b)
			if res.Code != tt.want {
				t.Errorf("got %q, want %q", res.Code, tt.want)
			}
			imports := c.imports.values()
			if hasSys := len(imports) == 1 && imports[0] == "import sys"; hasSys != tt.sys {
				t.Errorf("imports = %v, want sys import: %v", imports, tt.sys)
			}
		})
	}
}

func TestListsSort(t *testing.T) {
	tests := []struct {
		typ       string
		direction string
		want      string
	}{
		{"NUMERIC", "1", `lists_sort(xs, "NUMERIC", False)`},
		{"TEXT", "-1", `lists_sort(xs, "TEXT", True)`},
		{"IGNORE_CASE", "1", `lists_sort(xs, "IGNORE_CASE", False)`},
		{"CASE_INSENSITIVE", "-1", `lists_sort(xs, "IGNORE_CASE", True)`},
	}
	for _, tt := range tests {
		t.Run(tt.typ, func(t *testing.T) {
			b := block.New("lists_sort").
				SetField("TYPE", tt.typ).SetField("DIRECTION", tt.direction).
				SetInput("LIST", variable("xs"))
			res, c := run(t, block.Options{}, b)
			if res.Code != tt.want {
				t.Errorf("got %q, want %q", res.Code, tt.want)
			}
			helpers := c.helpers.values()
			if len(helpers) != 1 || !strings.Contains(helpers[0], "list_cpy = list(my_list)") {
				t.Errorf("sort helper missing or wrong: %v", helpers)
			}
		})
	}

	bad := block.New("lists_sort").SetField("TYPE", "SHUFFLE")
	if _, err := New().Generate(block.NewWorkspace(block.Options{}, printOf(bad))); !errors.Is(err, ErrUnhandledCombination) {
		t.Errorf("expected ErrUnhandledCombination, got %v", err)
	}
}

func TestListsSplit(t *testing.T) {
	tests := []struct {
		name string
		b    *block.Block
		want string
	}{
		{
			"split",
			block.New("lists_split").SetField("MODE", "SPLIT").
				SetInput("INPUT", str("a,b")).SetInput("DELIM", str(",")),
			"'a,b'.split(',')",
		},
		{
			"split on whitespace",
			block.New("lists_split").SetField("MODE", "SPLIT").
				SetInput("INPUT", str("a b")),
			"'a b'.split()",
		},
		{
			"join",
			block.New("lists_split").SetField("MODE", "JOIN").
				SetInput("INPUT", variable("xs")).SetInput("DELIM", str(",")),
			"','.join(xs)",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, _ := run(t, block.Options{}, tt.b)
			if res.Code != tt.want {
				t.Errorf("got %q, want %q", res.Code, tt.want)
			}
		})
	}
}

func TestListsSimpleKinds(t *testing.T) {
	product := block.New("math_arithmetic").SetField("OP", "MULTIPLY").
		SetInput("A", variable("n")).
		SetInput("B", num("2"))

	tests := []struct {
		name  string
		b     *block.Block
		want  string
		order Order
	}{
		{"empty", block.New("lists_create_empty"), "[]", OrderAtomic},
		{
			"create with gap",
			block.New("lists_create_with").SetMutation("items", "3").
				SetInput("ADD0", num("1")).SetInput("ADD2", num("3")),
			"[1, None, 3]", OrderAtomic,
		},
		{
			"repeat wraps product count",
			block.New("lists_repeat").SetInput("ITEM", num("0")).SetInput("NUM", product),
			"[0] * (n * 2)", OrderMultiplicative,
		},
		{"length", block.New("lists_length").SetInput("VALUE", variable("xs")), "len(xs)", OrderAtomic},
		{"is empty", block.New("lists_isEmpty").SetInput("VALUE", variable("xs")), "not len(xs)", OrderLogicalNot},
		{"reverse", block.New("lists_reverse").SetInput("LIST", variable("xs")), "list(reversed(xs))", OrderAtomic},
		{
			"index of last",
			block.New("lists_indexOf").SetField("END", "LAST").
				SetInput("VALUE", variable("xs")).SetInput("FIND", num("5")),
			"last_index(xs, 5)", OrderAtomic,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, _ := run(t, block.Options{}, tt.b)
			if res.Code != tt.want || res.Order != tt.order {
				t.Errorf("got %q (%v), want %q (%v)", res.Code, res.Order, tt.want, tt.order)
			}
		})
	}
}

func TestListsIndexOfHelpers(t *testing.T) {
	tests := []struct {
		end      string
		oneBased bool
		lines    []string
	}{
		{"FIRST", false, []string{"    try: index = my_list.index(elem)\n", "    except: index = -1\n"}},
		{"FIRST", true, []string{"    try: index = my_list.index(elem) + 1\n", "    except: index = 0\n"}},
		{"LAST", false, []string{"    try: index = len(my_list) - my_list[::-1].index(elem) - 1\n", "    except: index = -1\n"}},
		{"LAST", true, []string{"    try: index = len(my_list) - my_list[::-1].index(elem)\n", "    except: index = 0\n"}},
	}
	for _, tt := range tests {
		b := block.New("lists_indexOf").SetField("END", tt.end).
			SetInput("VALUE", variable("xs")).SetInput("FIND", num("1"))
		got := generate(t, block.NewWorkspace(block.Options{OneBasedIndex: tt.oneBased}, printOf(b)))
		for _, line := range tt.lines {
			if !strings.Contains(got, line) {
				t.Errorf("END=%s oneBased=%v: missing %q in\n%s", tt.end, tt.oneBased, line, got)
			}
		}
	}
}
