package block

import "sort"

// Options are the workspace-level settings that affect generation.
type Options struct {
	// OneBasedIndex makes list and text positions start at 1.
	OneBasedIndex bool

	// StatementPrefix is emitted at the start of every procedure body.
	// "%1" is replaced with the quoted block id.
	StatementPrefix string

	// LoopTrap is emitted at the start of every loop body. "%1" is replaced
	// with the quoted block id.
	LoopTrap string
}

// Variable is a workspace variable declaration.
type Variable struct {
	ID   string
	Name string
	Type string
}

// Workspace is a set of top-level block chains plus their shared settings.
type Workspace struct {
	TopBlocks []*Block
	Variables []Variable
	Options   Options
}

// NewWorkspace creates a workspace with the given options and top blocks.
func NewWorkspace(opts Options, top ...*Block) *Workspace {
	return &Workspace{
		TopBlocks: top,
		Options:   opts,
	}
}

// UsedVariableNames returns the names of all variables referenced by a block,
// in first-reference order.
func (w *Workspace) UsedVariableNames() []string {
	var names []string
	seen := map[string]bool{}
	for _, top := range w.TopBlocks {
		top.Walk(func(b *Block) bool {
			if name, ok := b.Fields[VarField]; ok && !seen[name] {
				seen[name] = true
				names = append(names, name)
			}
			return true
		})
	}
	return names
}

// AllVariableNames returns declared variables followed by any used but
// undeclared ones.
func (w *Workspace) AllVariableNames() []string {
	var names []string
	seen := map[string]bool{}
	for _, v := range w.Variables {
		if !seen[v.Name] {
			seen[v.Name] = true
			names = append(names, v.Name)
		}
	}
	for _, name := range w.UsedVariableNames() {
		if !seen[name] {
			seen[name] = true
			names = append(names, name)
		}
	}
	return names
}

// CountBlocks returns the number of distinct blocks in the workspace.
func (w *Workspace) CountBlocks() int {
	n := 0
	for _, top := range w.TopBlocks {
		top.Walk(func(*Block) bool {
			n++
			return true
		})
	}
	return n
}

func sortedKeys(m map[string]*Block) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
