package generator

import (
	"fmt"
	"log/slog"
	"strings"
	"text/template"

	"github.com/zurustar/blockpy/pkg/block"
)

// FunctionNamePlaceholder is the single substitution slot of a helper
// template. It is replaced by the helper's mangled name.
const FunctionNamePlaceholder = "{{.Name}}"

// definitions is an insertion-ordered map from key to source text.
type definitions struct {
	order []string
	code  map[string]string
}

func newDefinitions() *definitions {
	return &definitions{code: map[string]string{}}
}

// add stores code under key unless it is already present.
func (d *definitions) add(key, code string) bool {
	if _, ok := d.code[key]; ok {
		return false
	}
	d.order = append(d.order, key)
	d.code[key] = code
	return true
}

func (d *definitions) values() []string {
	out := make([]string, 0, len(d.order))
	for _, k := range d.order {
		out = append(out, d.code[k])
	}
	return out
}

// procedure is a user procedure whose global line is resolved when the pass
// finishes, once every temporary is known.
type procedure struct {
	name   string
	args   []string
	params map[string]bool
	body   string
}

// Context is the state of one generation pass. It is created by
// Generator.Generate and must not be shared between passes.
type Context struct {
	gen     *Generator
	ws      *block.Workspace
	log     *slog.Logger
	names   *Names
	imports *definitions
	helpers *definitions

	helperNames map[string]string
	procedures  map[string]*procedure
	procOrder   []string
	varInits    []string

	// active holds the blocks currently being generated, for cycle detection.
	active map[*block.Block]bool
}

func newContext(g *Generator, ws *block.Workspace) *Context {
	c := &Context{
		gen:         g,
		ws:          ws,
		log:         g.log,
		names:       NewNames(),
		imports:     newDefinitions(),
		helpers:     newDefinitions(),
		helperNames: map[string]string{},
		procedures:  map[string]*procedure{},
		active:      map[*block.Block]bool{},
	}
	// Workspace variables claim their names before any helper or temporary.
	for _, name := range ws.AllVariableNames() {
		c.varInits = append(c.varInits, c.VariableName(name)+" = None")
	}
	return c
}

// Options returns the workspace options of this pass.
func (c *Context) Options() block.Options {
	return c.ws.Options
}

// VariableName returns the identifier of a user variable.
func (c *Context) VariableName(name string) string {
	return c.names.Name(name, NameVariable)
}

// ProcedureName returns the identifier of a user procedure.
func (c *Context) ProcedureName(name string) string {
	return c.names.Name(name, NameProcedure)
}

// Temp allocates a fresh engine temporary derived from base.
func (c *Context) Temp(base string) string {
	return c.names.DistinctName(base, NameDeveloper)
}

// DeclareImport records an import statement once per key.
func (c *Context) DeclareImport(key, statement string) {
	if c.imports.add(key, statement) {
		c.log.Debug("import declared", "key", key, "statement", statement)
	}
}

// ProvideFunction registers a helper function once per key and returns its
// name. lines form a template whose only slot is FunctionNamePlaceholder.
// Later calls with the same key return the first name without re-rendering.
func (c *Context) ProvideFunction(key string, lines ...string) (string, error) {
	if name, ok := c.helperNames[key]; ok {
		return name, nil
	}
	tmpl, err := template.New(key).Option("missingkey=error").Parse(strings.Join(lines, "\n"))
	if err != nil {
		return "", fmt.Errorf("helper %s: %w", key, err)
	}

	name := c.names.DistinctName(key, NameProcedure)
	var sb strings.Builder
	if err := tmpl.Execute(&sb, struct{ Name string }{name}); err != nil {
		return "", fmt.Errorf("helper %s: %w", key, err)
	}
	c.helperNames[key] = name
	c.helpers.add(key, sb.String())
	c.log.Debug("helper registered", "key", key, "name", name)
	return name, nil
}

func (c *Context) defineProcedure(p *procedure) {
	if _, ok := c.procedures[p.name]; !ok {
		c.procOrder = append(c.procOrder, p.name)
	}
	c.procedures[p.name] = p
}

// globalsFor lists the names a procedure must declare global: every used
// workspace variable that is not a parameter, then every temporary.
func (c *Context) globalsFor(p *procedure) []string {
	var globals []string
	for _, name := range c.ws.UsedVariableNames() {
		if !p.params[name] {
			globals = append(globals, c.VariableName(name))
		}
	}
	return append(globals, c.names.DeveloperNames()...)
}

func (c *Context) renderProcedure(p *procedure) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "def %s(%s):\n", p.name, strings.Join(p.args, ", "))
	if globals := c.globalsFor(p); len(globals) > 0 {
		sb.WriteString(Indent + "global " + strings.Join(globals, ", ") + "\n")
	}
	sb.WriteString(p.body)
	return sb.String()
}

// finish prepends every accumulated declaration to body.
func (c *Context) finish(body string) string {
	var sections []string
	if imports := c.imports.values(); len(imports) > 0 {
		sections = append(sections, strings.Join(imports, "\n"))
	}
	if len(c.varInits) > 0 {
		sections = append(sections, strings.Join(c.varInits, "\n"))
	}
	for _, h := range c.helpers.values() {
		sections = append(sections, strings.TrimRight(h, "\n"))
	}
	for _, name := range c.procOrder {
		sections = append(sections, strings.TrimRight(c.renderProcedure(c.procedures[name]), "\n"))
	}
	if len(sections) == 0 {
		return body
	}
	defs := strings.Join(sections, "\n\n") + "\n"
	if body == "" {
		return defs
	}
	return defs + "\n\n" + body
}

// ValueToCode generates the block connected to socket and parenthesizes it
// if it binds looser than required. An unconnected socket yields
// defaultLiteral verbatim.
func (c *Context) ValueToCode(b *block.Block, socket string, required Order, defaultLiteral string) (string, error) {
	code, _, err := c.valueWithOrder(b, socket, required, defaultLiteral)
	return code, err
}

// valueWithOrder is ValueToCode that also reports the order of the result.
// Defaults are reported as atomic.
func (c *Context) valueWithOrder(b *block.Block, socket string, required Order, defaultLiteral string) (string, Order, error) {
	child := b.Input(socket)
	if child == nil || child.Disabled {
		return defaultLiteral, OrderAtomic, nil
	}
	res, err := c.blockToCode(child)
	if err != nil {
		return "", OrderNone, err
	}
	if res.IsStatement() {
		return "", OrderNone, newError(child, ErrStatementInValue, "socket %s of %s", socket, b.Kind)
	}
	if res.Code == "" {
		return defaultLiteral, OrderAtomic, nil
	}
	return parenthesize(res.Code, res.Order, required), res.Order, nil
}

// StatementToCode generates the chain in socket, indented one level.
func (c *Context) StatementToCode(b *block.Block, socket string) (string, error) {
	code, err := c.chainToCode(b.Input(socket))
	if err != nil {
		return "", err
	}
	return prefixLines(code, Indent), nil
}

// blockToCode runs the registered handler for a single block.
func (c *Context) blockToCode(b *block.Block) (Result, error) {
	if c.active[b] {
		return Result{}, newError(b, ErrCyclicGraph, "block reached again through its own inputs")
	}
	handler, ok := c.gen.handlers[b.Kind]
	if !ok {
		msg := "no generator registered"
		if s := suggestKind(b.Kind, c.gen.Kinds()); s != "" {
			msg = fmt.Sprintf("no generator registered, did you mean %q?", s)
		}
		return Result{}, newError(b, ErrUnknownBlockKind, "%s", msg)
	}

	c.active[b] = true
	defer delete(c.active, b)
	return handler(c, b)
}

// chainToCode generates a statement chain starting at first. Chain blocks stay
// active until the whole chain is done, so a next link back into the chain
// or a nested reference to an earlier sibling is reported as a cycle.
func (c *Context) chainToCode(first *block.Block) (string, error) {
	var sb strings.Builder
	var chain []*block.Block
	defer func() {
		for _, b := range chain {
			delete(c.active, b)
		}
	}()

	for b := first; b != nil; b = b.Next {
		if c.active[b] {
			return "", newError(b, ErrCyclicGraph, "statement chain loops back")
		}
		if !b.Disabled {
			res, err := c.blockToCode(b)
			if err != nil {
				return "", err
			}
			code := res.Code
			if !res.IsStatement() && code != "" {
				// A naked value in statement position.
				code += "\n"
			}
			sb.WriteString(commentLines(b.Comment))
			sb.WriteString(code)
		}
		c.active[b] = true
		chain = append(chain, b)
	}
	return sb.String(), nil
}

// instrument prepends the configured statement prefix or loop trap to a body.
func (c *Context) instrument(tmpl string, b *block.Block, body string) string {
	if tmpl == "" {
		return body
	}
	code := strings.ReplaceAll(tmpl, "%1", quote(b.ID))
	return prefixLines(strings.TrimRight(code, "\n")+"\n", Indent) + body
}

// prefixLines indents every non-empty line of text.
func prefixLines(text, prefix string) string {
	if text == "" {
		return ""
	}
	lines := strings.SplitAfter(text, "\n")
	var sb strings.Builder
	for _, line := range lines {
		if line != "" && line != "\n" {
			sb.WriteString(prefix)
		}
		sb.WriteString(line)
	}
	return sb.String()
}

func commentLines(comment string) string {
	comment = strings.TrimRight(comment, "\n")
	if comment == "" {
		return ""
	}
	return prefixLines(comment+"\n", "# ")
}
