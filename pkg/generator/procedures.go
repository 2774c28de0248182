package generator

import (
	"strconv"
	"strings"

	"github.com/zurustar/blockpy/pkg/block"
)

func registerProcedures(g *Generator) {
	g.Register("procedures_defreturn", proceduresDef)
	g.Register("procedures_defnoreturn", proceduresDef)
	g.Register("procedures_callreturn", proceduresCallReturn)
	g.Register("procedures_callnoreturn", proceduresCallNoReturn)
	g.Register("procedures_ifreturn", proceduresIfReturn)
}

func isProcedureDefinition(kind string) bool {
	return kind == "procedures_defreturn" || kind == "procedures_defnoreturn"
}

// proceduresDef records a definition in the pass and emits nothing in place.
// The global line is added when the pass finishes.
func proceduresDef(c *Context, b *block.Block) (Result, error) {
	name := c.ProcedureName(b.Field("NAME"))

	raw := b.Arguments()
	p := &procedure{
		name:   name,
		args:   make([]string, len(raw)),
		params: make(map[string]bool, len(raw)),
	}
	for i, arg := range raw {
		p.args[i] = c.VariableName(arg)
		p.params[arg] = true
	}

	branch, err := c.StatementToCode(b, "STACK")
	if err != nil {
		return Result{}, err
	}
	opts := c.Options()
	branch = c.instrument(opts.StatementPrefix, b, branch)
	branch = c.instrument(opts.LoopTrap, b, branch)

	ret, err := c.ValueToCode(b, "RETURN", OrderNone, "")
	if err != nil {
		return Result{}, err
	}
	switch {
	case ret != "":
		branch += Indent + "return " + ret + "\n"
	case branch == "":
		branch = pass
	}
	p.body = branch

	c.defineProcedure(p)
	c.log.Debug("procedure defined", "name", name, "args", len(p.args))
	return Stmt(""), nil
}

func procedureCall(c *Context, b *block.Block) (string, error) {
	name := c.ProcedureName(b.Field("NAME"))
	n := len(b.Arguments())
	args := make([]string, n)
	for i := range args {
		arg, err := c.ValueToCode(b, "ARG"+strconv.Itoa(i), OrderNone, "None")
		if err != nil {
			return "", err
		}
		args[i] = arg
	}
	return name + "(" + strings.Join(args, ", ") + ")", nil
}

func proceduresCallReturn(c *Context, b *block.Block) (Result, error) {
	code, err := procedureCall(c, b)
	if err != nil {
		return Result{}, err
	}
	return Expr(code, OrderAtomic), nil
}

func proceduresCallNoReturn(c *Context, b *block.Block) (Result, error) {
	code, err := procedureCall(c, b)
	if err != nil {
		return Result{}, err
	}
	return Stmt(code + "\n"), nil
}

// proceduresIfReturn returns early from the enclosing procedure. The "value"
// mutation says whether the procedure has a return value.
func proceduresIfReturn(c *Context, b *block.Block) (Result, error) {
	cond, err := c.ValueToCode(b, "CONDITION", OrderNone, "False")
	if err != nil {
		return Result{}, err
	}
	code := "if " + cond + ":\n"
	if b.MutationBool("value") {
		v, err := c.ValueToCode(b, "VALUE", OrderNone, "None")
		if err != nil {
			return Result{}, err
		}
		code += Indent + "return " + v + "\n"
	} else {
		code += Indent + "return\n"
	}
	return Stmt(code), nil
}
