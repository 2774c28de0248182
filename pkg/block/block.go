// Package block defines the visual program graph that the generator consumes.
// Both the workspace loader and the generator depend on this package; the
// generator only ever reads it.
package block

import "strconv"

// VarField is the field name that holds a variable reference.
const VarField = "VAR"

// Block is a single node of the program graph.
type Block struct {
	// ID is opaque and only used for instrumentation (statement prefix, loop trap)
	// and error reporting.
	ID string

	// Kind selects the generator function, e.g. "lists_getIndex".
	Kind string

	// Fields maps a field name to its literal value.
	Fields map[string]string

	// Inputs maps a socket name to the connected child. Value sockets hold an
	// expression block, statement sockets hold the first block of a chain.
	Inputs map[string]*Block

	// Next is the following statement in the chain, nil at the end.
	Next *Block

	Mutation Mutation
	Comment  string
	Disabled bool
}

// Mutation carries the extra shape information of variadic blocks.
type Mutation struct {
	// Attrs holds the mutation attributes (items, elseif, else, value, name).
	Attrs map[string]string
	// Args holds procedure parameter names in declaration order.
	Args []string
}

// New creates an empty block of the given kind.
func New(kind string) *Block {
	return &Block{
		Kind:   kind,
		Fields: map[string]string{},
		Inputs: map[string]*Block{},
	}
}

// WithID sets the block id and returns the block.
func (b *Block) WithID(id string) *Block {
	b.ID = id
	return b
}

// SetField sets a field value and returns the block for chaining.
func (b *Block) SetField(name, value string) *Block {
	if b.Fields == nil {
		b.Fields = map[string]string{}
	}
	b.Fields[name] = value
	return b
}

// SetInput connects child to the named socket and returns the block.
func (b *Block) SetInput(name string, child *Block) *Block {
	if b.Inputs == nil {
		b.Inputs = map[string]*Block{}
	}
	b.Inputs[name] = child
	return b
}

// SetMutation sets a mutation attribute and returns the block.
func (b *Block) SetMutation(name, value string) *Block {
	if b.Mutation.Attrs == nil {
		b.Mutation.Attrs = map[string]string{}
	}
	b.Mutation.Attrs[name] = value
	return b
}

// SetArgs sets the procedure parameter names and returns the block.
func (b *Block) SetArgs(args ...string) *Block {
	b.Mutation.Args = args
	return b
}

// Then links next after b and returns next, so chains read top to bottom.
func (b *Block) Then(next *Block) *Block {
	b.Next = next
	return next
}

// Field returns the value of the named field, or "" when absent.
func (b *Block) Field(name string) string {
	return b.Fields[name]
}

// HasField reports whether the block defines the named field.
func (b *Block) HasField(name string) bool {
	_, ok := b.Fields[name]
	return ok
}

// Input returns the child connected to the named socket, or nil.
func (b *Block) Input(name string) *Block {
	return b.Inputs[name]
}

// MutationInt returns a numeric mutation attribute, 0 when absent or malformed.
func (b *Block) MutationInt(name string) int {
	n, err := strconv.Atoi(b.Mutation.Attrs[name])
	if err != nil || n < 0 {
		return 0
	}
	return n
}

// MutationBool reports whether a mutation attribute is set to "1" or "true".
func (b *Block) MutationBool(name string) bool {
	v := b.Mutation.Attrs[name]
	return v == "1" || v == "true"
}

// ItemCount returns the arity of variadic blocks such as lists_create_with.
func (b *Block) ItemCount() int {
	return b.MutationInt("items")
}

// Arguments returns the procedure parameter names.
func (b *Block) Arguments() []string {
	return b.Mutation.Args
}

// Walk visits b, its inputs and its next chain depth-first. A block reachable
// more than once is visited once, so Walk terminates on cyclic graphs.
// Returning false from fn stops descending below that block.
func (b *Block) Walk(fn func(*Block) bool) {
	seen := map[*Block]bool{}
	var visit func(*Block)
	visit = func(cur *Block) {
		for ; cur != nil; cur = cur.Next {
			if seen[cur] {
				return
			}
			seen[cur] = true
			if !fn(cur) {
				continue
			}
			for _, name := range sortedKeys(cur.Inputs) {
				visit(cur.Inputs[name])
			}
		}
	}
	visit(b)
}
