// Package generator converts a block workspace into MicroPython source text.
//
// Every block kind has a Handler. Expression handlers return the code and the
// Order of its outermost operator. Statement handlers return newline-terminated
// lines. Child sockets are resolved through Context.ValueToCode, which
// parenthesizes a child that binds looser than its parent requires.
//
// Helpers, imports and procedure definitions accumulate in the per-pass
// Context and are prepended to the program body in a fixed order: imports,
// variable initialisations, helpers, procedures.
package generator

import (
	"errors"
	"log/slog"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/zurustar/blockpy/pkg/block"
	"github.com/zurustar/blockpy/pkg/logger"
)

// Indent is one level of block indentation in the generated code.
const Indent = "    "

// pass is the body of an otherwise empty block.
const pass = Indent + "pass\n"

// Result is the output of a Handler.
type Result struct {
	Code  string
	Order Order

	statement bool
}

// Expr returns an expression result.
func Expr(code string, order Order) Result {
	return Result{Code: code, Order: order}
}

// Stmt returns a statement result. code is empty or ends in a newline.
func Stmt(code string) Result {
	return Result{Code: code, Order: OrderNone, statement: true}
}

// IsStatement reports whether the result is statement-shaped.
func (r Result) IsStatement() bool {
	return r.statement
}

// Handler generates code for one block kind.
type Handler func(c *Context, b *block.Block) (Result, error)

// Generator holds the block kind registry. It is not modified by Generate and
// may be shared between goroutines once built.
type Generator struct {
	handlers map[string]Handler
	log      *slog.Logger
}

// New creates a Generator with every built-in block kind registered.
func New() *Generator {
	g := &Generator{
		handlers: map[string]Handler{},
		log:      logger.Component("generator"),
	}
	registerCore(g)
	registerLists(g)
	registerText(g)
	registerProcedures(g)
	return g
}

// Register installs the handler for a block kind, replacing any previous one.
func (g *Generator) Register(kind string, h Handler) {
	g.handlers[kind] = h
}

// Kinds returns the registered block kinds in sorted order.
func (g *Generator) Kinds() []string {
	kinds := make([]string, 0, len(g.handlers))
	for k := range g.handlers {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	return kinds
}

// Generate converts every top-level chain of ws into one MicroPython program.
// It returns the complete source or the first error; never partial output.
func (g *Generator) Generate(ws *block.Workspace) (string, error) {
	if ws == nil {
		return "", errors.New("generator: workspace is nil")
	}
	c := newContext(g, ws)

	var body strings.Builder
	for _, top := range ws.TopBlocks {
		code, err := c.chainToCode(top)
		if err != nil {
			return "", err
		}
		body.WriteString(code)
	}

	out := c.finish(body.String())
	g.log.Debug("generation finished",
		"blocks", ws.CountBlocks(),
		"helpers", len(c.helperNames),
		"procedures", len(c.procOrder),
		"bytes", len(out))
	return out, nil
}

// GenerateChain converts a single entry chain. Procedure definitions among the
// workspace's top blocks are still emitted so the chain can call them.
func (g *Generator) GenerateChain(ws *block.Workspace, entry *block.Block) (string, error) {
	if ws == nil {
		return "", errors.New("generator: workspace is nil")
	}
	c := newContext(g, ws)

	for _, top := range ws.TopBlocks {
		if top == entry || !isProcedureDefinition(top.Kind) {
			continue
		}
		if _, err := c.chainToCode(top); err != nil {
			return "", err
		}
	}
	body, err := c.chainToCode(entry)
	if err != nil {
		return "", err
	}
	return c.finish(body), nil
}

// quote returns a MicroPython string literal, preferring single quotes the
// way repr() does.
func quote(s string) string {
	r := strings.NewReplacer("\\", "\\\\", "\n", "\\n", "\r", "\\r", "\t", "\\t")
	s = r.Replace(s)
	q := "'"
	if strings.Contains(s, "'") {
		if !strings.Contains(s, "\"") {
			q = "\""
		} else {
			s = strings.ReplaceAll(s, "'", "\\'")
		}
	}
	return q + s + q
}

// intLiteral reports whether code is a plain decimal literal and returns its
// integer part.
func intLiteral(code string) (int, bool) {
	s := strings.TrimSpace(code)
	if s == "" {
		return 0, false
	}
	digits := strings.TrimPrefix(s, "-")
	if digits == "" {
		return 0, false
	}
	dot := false
	for i, r := range digits {
		switch {
		case r >= '0' && r <= '9':
		case r == '.' && !dot && i > 0 && i < len(digits)-1:
			dot = true
		default:
			return 0, false
		}
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return int(math.Trunc(f)), true
}

// adjustedIndex converts a user supplied position into a zero-based offset.
// delta is added to the position; negate turns it into an offset from the
// end. With one-based indexing the position is shifted down by one first.
// Literal positions are folded, dynamic ones become int(...) expressions.
func (c *Context) adjustedIndex(b *block.Block, socket string, delta int, negate bool) (string, error) {
	defaultAt := "0"
	if c.Options().OneBasedIndex {
		delta--
		defaultAt = "1"
	}
	required := OrderNone
	if delta != 0 {
		required = OrderAdditive
	}
	at, err := c.ValueToCode(b, socket, required, defaultAt)
	if err != nil {
		return "", err
	}

	if n, ok := intLiteral(at); ok {
		n += delta
		if negate {
			n = -n
		}
		return strconv.Itoa(n), nil
	}

	switch {
	case delta > 0:
		at = "int(" + at + " + " + strconv.Itoa(delta) + ")"
	case delta < 0:
		at = "int(" + at + " - " + strconv.Itoa(-delta) + ")"
	default:
		at = "int(" + at + ")"
	}
	if negate {
		at = "-" + at
	}
	return at, nil
}
