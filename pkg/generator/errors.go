package generator

import (
	"errors"
	"fmt"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"

	"github.com/zurustar/blockpy/pkg/block"
)

// Sentinel errors. Every generation failure wraps exactly one of them.
var (
	// ErrUnknownBlockKind means no generator is registered for a block kind.
	ErrUnknownBlockKind = errors.New("unknown block kind")

	// ErrUnhandledCombination means a block's mode/where fields select a case
	// the generator does not implement.
	ErrUnhandledCombination = errors.New("unhandled field combination")

	// ErrCyclicGraph means a block is reachable from itself.
	ErrCyclicGraph = errors.New("cyclic block graph")

	// ErrStatementInValue means a statement-shaped block sits in a value socket.
	ErrStatementInValue = errors.New("statement block in value socket")

	// ErrInvalidField means a field holds a value that cannot be emitted.
	ErrInvalidField = errors.New("invalid field value")
)

// GenerateError is a fatal generation error tied to the offending block.
// Generation stops at the first one; there is no partial output.
type GenerateError struct {
	// Kind is the block kind being generated.
	Kind string

	// BlockID is the id of the offending block, possibly empty.
	BlockID string

	// Message describes the offending fields, e.g. "MODE=REMOVE WHERE=SIDEWAYS".
	Message string

	Err error
}

// Error implements the error interface.
func (e *GenerateError) Error() string {
	var sb strings.Builder
	sb.WriteString("generator error")
	if e.Kind != "" {
		sb.WriteString(" in ")
		sb.WriteString(e.Kind)
	}
	if e.BlockID != "" {
		fmt.Fprintf(&sb, " (block %q)", e.BlockID)
	}
	sb.WriteString(": ")
	sb.WriteString(e.Err.Error())
	if e.Message != "" {
		sb.WriteString(": ")
		sb.WriteString(e.Message)
	}
	return sb.String()
}

// Unwrap returns the sentinel.
func (e *GenerateError) Unwrap() error {
	return e.Err
}

func newError(b *block.Block, err error, format string, args ...any) *GenerateError {
	return &GenerateError{
		Kind:    b.Kind,
		BlockID: b.ID,
		Message: fmt.Sprintf(format, args...),
		Err:     err,
	}
}

// unhandled reports a field combination, given as name/value pairs.
func unhandled(b *block.Block, fields ...string) *GenerateError {
	parts := make([]string, 0, len(fields)/2)
	for i := 0; i+1 < len(fields); i += 2 {
		parts = append(parts, fields[i]+"="+fields[i+1])
	}
	return newError(b, ErrUnhandledCombination, "%s", strings.Join(parts, " "))
}

// suggestKind returns the registered kind closest to kind, or "".
func suggestKind(kind string, known []string) string {
	if kind == "" || len(known) == 0 {
		return ""
	}
	if ranks := fuzzy.RankFindFold(kind, known); len(ranks) > 0 {
		best := ranks[0]
		for _, r := range ranks[1:] {
			if r.Distance < best.Distance {
				best = r
			}
		}
		return best.Target
	}

	best, bestDist := "", 4
	for _, k := range known {
		if d := fuzzy.LevenshteinDistance(strings.ToLower(kind), strings.ToLower(k)); d < bestDist {
			best, bestDist = k, d
		}
	}
	return best
}
