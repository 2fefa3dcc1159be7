package analyzer

import "fmt"

// Position identifies a point in a source file for error and
// violation reporting. Line is 1-indexed (tree-sitter's 0-indexed row
// plus one), Column is 0-indexed as tree-sitter exposes it, which is
// the convention the text formatter expects downstream.
type Position struct {
	File   string
	Line   int
	Column int
}

func (p Position) String() string {
	return fmt.Sprintf("%s:%d:%d", p.File, p.Line, p.Column)
}

// CallSite is a single call expression encountered while walking a
// function or method body: where it was written, and the name as it
// appears in source (not yet resolved to a QualifiedName).
type CallSite struct {
	Position Position
	Name     string
}

// CallChain is the ordered sequence of call sites from a handler body
// down to a violation site. An empty chain means the violation sits
// directly inside the handler.
type CallChain []CallSite

// Clone returns a copy safe to retain after the traversal stack that
// produced it continues to mutate.
func (c CallChain) Clone() CallChain {
	if len(c) == 0 {
		return nil
	}
	out := make(CallChain, len(c))
	copy(out, c)
	return out
}
