package analyzer

import (
	"context"
	"fmt"
	"os"
	"sync"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/python"
)

// ParseStatus reports whether a file parsed cleanly. A failed parse is
// not fatal to a run: the engine does not traverse into the file, and
// the handler finder or engine records a parse-error diagnostic for it.
type ParseStatus int

const (
	ParseOK ParseStatus = iota
	ParseFailed
)

// ParsedFile is the parser adapter's output: a syntax tree plus enough
// bookkeeping to recover source positions and text for any node in it.
// One ParsedFile exists per distinct project path for the life of a
// run; see FileCache.
type ParsedFile struct {
	Path   string
	Source []byte
	Tree   *sitter.Tree
	Root   *sitter.Node

	Status       ParseStatus
	ErrorMessage string
	ErrorAt      Position
}

func (pf *ParsedFile) content(node *sitter.Node) string {
	return node.Content(pf.Source)
}

func (pf *ParsedFile) positionOf(node *sitter.Node) Position {
	pt := node.StartPoint()
	return Position{File: pf.Path, Line: int(pt.Row) + 1, Column: int(pt.Column)}
}

// FileCache parses each project path at most once and serves every
// later lookup from memory, for the whole run rather than per handler
// (§5 of the design: write-once per key, no synchronization beyond a
// mutex because parsing itself touches the filesystem).
type FileCache struct {
	mu    sync.Mutex
	files map[string]*ParsedFile
}

func NewFileCache() *FileCache {
	return &FileCache{files: make(map[string]*ParsedFile)}
}

// Parse returns the ParsedFile for path, parsing it on first access and
// caching the result (including parse failures) for the remainder of
// the run.
func (c *FileCache) Parse(path string) (*ParsedFile, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if pf, ok := c.files[path]; ok {
		return pf, nil
	}

	source, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	pf := &ParsedFile{Path: path, Source: source}

	parser := sitter.NewParser()
	parser.SetLanguage(python.GetLanguage())
	defer parser.Close()

	tree, err := parser.ParseCtx(context.Background(), nil, source)
	if err != nil || tree == nil || tree.RootNode() == nil {
		pf.Status = ParseFailed
		pf.ErrorMessage = parseErrorMessage(err)
		pf.ErrorAt = Position{File: path, Line: 1, Column: 0}
		c.files[path] = pf
		return pf, nil
	}

	root := tree.RootNode()
	if root.HasError() {
		pf.Status = ParseFailed
		pf.ErrorMessage = "syntax error"
		pf.ErrorAt = firstErrorPosition(root, path)
		c.files[path] = pf
		return pf, nil
	}

	pf.Status = ParseOK
	pf.Tree = tree
	pf.Root = root
	c.files[path] = pf
	return pf, nil
}

// Count reports how many distinct paths have been parsed so far.
// Exposed for the cache-coherence invariant's tests.
func (c *FileCache) Count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.files)
}

func parseErrorMessage(err error) string {
	if err != nil {
		return err.Error()
	}
	return "parser returned no tree"
}

// firstErrorPosition walks the tree looking for the first ERROR node
// tree-sitter produced, so diagnostics point at the actual offending
// line rather than the top of the file.
func firstErrorPosition(root *sitter.Node, file string) Position {
	var walk func(n *sitter.Node) *sitter.Node
	walk = func(n *sitter.Node) *sitter.Node {
		if n.Type() == "ERROR" || n.IsMissing() {
			return n
		}
		for i := 0; i < int(n.ChildCount()); i++ {
			if found := walk(n.Child(i)); found != nil {
				return found
			}
		}
		return nil
	}
	if bad := walk(root); bad != nil {
		pt := bad.StartPoint()
		return Position{File: file, Line: int(pt.Row) + 1, Column: int(pt.Column)}
	}
	return Position{File: file, Line: 1, Column: 0}
}
