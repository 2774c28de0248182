package generator

import (
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// NameType is the namespace of a logical name.
type NameType int

const (
	// NameVariable is a user variable.
	NameVariable NameType = iota
	// NameProcedure is a user procedure or a helper function.
	NameProcedure
	// NameDeveloper is an engine-internal temporary.
	NameDeveloper
)

// reservedWords may never be produced as an output identifier.
var reservedWords = []string{
	// keywords
	"False", "None", "True", "and", "as", "assert", "async", "await", "break",
	"class", "continue", "def", "del", "elif", "else", "except", "finally",
	"for", "from", "global", "if", "import", "in", "is", "lambda", "nonlocal",
	"not", "or", "pass", "raise", "return", "try", "while", "with", "yield",
	// builtins
	"abs", "all", "any", "bin", "bool", "bytearray", "bytes", "callable", "chr",
	"classmethod", "dict", "dir", "divmod", "enumerate", "eval", "exec",
	"filter", "float", "getattr", "globals", "hasattr", "hash", "hex", "id",
	"input", "int", "isinstance", "issubclass", "iter", "len", "list", "locals",
	"map", "max", "memoryview", "min", "next", "object", "oct", "open", "ord",
	"pow", "print", "property", "range", "raw_input", "repr", "reversed",
	"round", "set", "setattr", "slice", "sorted", "staticmethod", "str", "sum",
	"super", "tuple", "type", "zip", "Exception", "NameError", "ValueError",
	// modules
	"math", "random", "sys", "time", "utime", "machine", "micropython", "gc",
	"os", "uos", "network", "struct", "ustruct", "json", "ujson",
}

type nameKey struct {
	name string
	typ  NameType
}

// Names maps logical names to collision-free MicroPython identifiers. The
// same (name, type) pair always maps to the same identifier, and distinct
// pairs never share one.
type Names struct {
	reserved  map[string]bool
	db        map[nameKey]string
	taken     map[string]bool
	developer []string
}

// NewNames creates a table with the MicroPython reserved words plus extra.
func NewNames(extra ...string) *Names {
	n := &Names{
		reserved: map[string]bool{},
		db:       map[nameKey]string{},
		taken:    map[string]bool{},
	}
	for _, w := range reservedWords {
		n.reserved[w] = true
	}
	for _, w := range extra {
		n.reserved[w] = true
	}
	return n
}

// Name returns the identifier for a logical name, allocating it on first use.
func (n *Names) Name(name string, t NameType) string {
	key := nameKey{name, t}
	if out, ok := n.db[key]; ok {
		return out
	}
	out := n.DistinctName(name, t)
	n.db[key] = out
	return out
}

// DistinctName allocates an identifier derived from base that has never been
// handed out before.
func (n *Names) DistinctName(base string, t NameType) string {
	safe := SafeName(base)
	candidate := safe
	for i := 2; n.taken[candidate] || n.reserved[candidate]; i++ {
		candidate = safe + strconv.Itoa(i)
	}
	n.taken[candidate] = true
	if t == NameDeveloper {
		n.developer = append(n.developer, candidate)
	}
	return candidate
}

// DeveloperNames returns every temporary allocated so far, oldest first.
func (n *Names) DeveloperNames() []string {
	return append([]string(nil), n.developer...)
}

// SafeName turns an arbitrary name into an ASCII identifier. Accents are
// dropped ("příliš" becomes "prilis"), anything else outside [A-Za-z0-9_]
// becomes an underscore.
func SafeName(name string) string {
	// transform chains carry state, so build one per call.
	foldMarks := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(foldMarks, name)
	if err != nil {
		folded = name
	}

	var sb strings.Builder
	for _, r := range folded {
		switch {
		case r == '_', r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			sb.WriteRune(r)
		default:
			sb.WriteByte('_')
		}
	}
	out := sb.String()
	if out == "" {
		return "unnamed"
	}
	if out[0] >= '0' && out[0] <= '9' {
		out = "my_" + out
	}
	return out
}

// isIdentifier reports whether code is a bare identifier.
func isIdentifier(code string) bool {
	if code == "" {
		return false
	}
	for i, r := range code {
		switch {
		case r == '_', r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case i > 0 && r >= '0' && r <= '9':
		default:
			return false
		}
	}
	return true
}
