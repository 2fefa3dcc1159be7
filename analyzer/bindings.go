package analyzer

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
)

// DefKind distinguishes the three flavors of Definition the name
// resolver produces (§3 of the design: Function, Class, Imported).
type DefKind int

const (
	FunctionDef DefKind = iota
	ClassDef
	ImportedDef
)

// ImportRef is the unresolved half of an Imported definition: the
// dotted module path as written, plus the symbol name for
// "from M import X" forms. The import resolver turns this into either
// a concrete file or an external marker.
type ImportRef struct {
	Module string // dotted module path, e.g. "infra.aws"
	Symbol string // non-empty for "from M import X"; empty for "import M"
}

// Definition is a binding target: a function/method body, a class (with
// its method table), or an import reference pending resolution.
type Definition struct {
	Kind DefKind
	File string
	Pos  Position
	Name string // local declared name; methods carry "Class.method"

	Node *sitter.Node // function/class body, nil for ImportedDef

	Methods map[string]*Definition // ClassDef only
	Nested  map[string]*Definition // ClassDef only: nested class defs

	Import *ImportRef // ImportedDef only
}

// FileBindings is the per-file name resolver's output: a map from
// locally visible identifier to what it's bound to, plus the set of
// modules reached through "from M import *" for best-effort wildcard
// probing.
type FileBindings struct {
	File      string
	Top       map[string]*Definition
	Wildcards []string
}

// BuildBindings walks pf's top-level statements and produces its
// binding map. Only module scope is resolved; §4.2 explicitly leaves
// function-body locals untracked because call-graph reachability at
// this fidelity doesn't need them.
func BuildBindings(pf *ParsedFile) *FileBindings {
	fb := &FileBindings{File: pf.Path, Top: make(map[string]*Definition)}
	if pf.Status != ParseOK {
		return fb
	}

	body := pf.Root
	for i := 0; i < int(body.NamedChildCount()); i++ {
		bindTopLevelStatement(body.NamedChild(i), pf, fb)
	}
	return fb
}

func bindTopLevelStatement(stmt *sitter.Node, pf *ParsedFile, fb *FileBindings) {
	switch stmt.Type() {
	case "decorated_definition":
		inner := stmt.ChildByFieldName("definition")
		if inner == nil {
			return
		}
		bindTopLevelStatement(inner, pf, fb)
	case "function_definition":
		def := bindFunction(stmt, pf, "")
		fb.Top[def.Name] = def
	case "class_definition":
		def := bindClass(stmt, pf)
		fb.Top[def.Name] = def
	case "import_statement":
		bindImportStatement(stmt, pf, fb)
	case "import_from_statement":
		bindImportFromStatement(stmt, pf, fb)
	}
}

func bindFunction(node *sitter.Node, pf *ParsedFile, qualifierPrefix string) *Definition {
	name := ""
	if n := node.ChildByFieldName("name"); n != nil {
		name = pf.content(n)
	}
	qualified := name
	if qualifierPrefix != "" {
		qualified = qualifierPrefix + "." + name
	}
	return &Definition{
		Kind: FunctionDef,
		File: pf.Path,
		Pos:  pf.positionOf(node),
		Name: qualified,
		Node: node,
	}
}

func bindClass(node *sitter.Node, pf *ParsedFile) *Definition {
	name := ""
	if n := node.ChildByFieldName("name"); n != nil {
		name = pf.content(n)
	}

	def := &Definition{
		Kind:    ClassDef,
		File:    pf.Path,
		Pos:     pf.positionOf(node),
		Name:    name,
		Node:    node,
		Methods: make(map[string]*Definition),
		Nested:  make(map[string]*Definition),
	}

	block := node.ChildByFieldName("body")
	if block == nil {
		return def
	}
	for i := 0; i < int(block.NamedChildCount()); i++ {
		child := block.NamedChild(i)
		if child.Type() == "decorated_definition" {
			if inner := child.ChildByFieldName("definition"); inner != nil {
				child = inner
			}
		}
		switch child.Type() {
		case "function_definition":
			m := bindFunction(child, pf, name)
			methodName := ""
			if n := child.ChildByFieldName("name"); n != nil {
				methodName = pf.content(n)
			}
			def.Methods[methodName] = m
		case "class_definition":
			nested := bindClass(child, pf)
			def.Nested[nested.Name] = nested
		}
	}
	return def
}

func bindImportStatement(stmt *sitter.Node, pf *ParsedFile, fb *FileBindings) {
	for i := 0; i < int(stmt.NamedChildCount()); i++ {
		item := stmt.NamedChild(i)
		switch item.Type() {
		case "dotted_name":
			full := pf.content(item)
			root := strings.SplitN(full, ".", 2)[0]
			fb.Top[root] = &Definition{
				Kind:   ImportedDef,
				File:   pf.Path,
				Pos:    pf.positionOf(stmt),
				Name:   root,
				Import: &ImportRef{Module: root},
			}
		case "aliased_import":
			nameNode := item.ChildByFieldName("name")
			aliasNode := item.ChildByFieldName("alias")
			if nameNode == nil || aliasNode == nil {
				continue
			}
			module := pf.content(nameNode)
			alias := pf.content(aliasNode)
			fb.Top[alias] = &Definition{
				Kind:   ImportedDef,
				File:   pf.Path,
				Pos:    pf.positionOf(stmt),
				Name:   alias,
				Import: &ImportRef{Module: module},
			}
		}
	}
}

func bindImportFromStatement(stmt *sitter.Node, pf *ParsedFile, fb *FileBindings) {
	moduleNode := stmt.ChildByFieldName("module_name")
	module, ok := moduleSpec(moduleNode, pf)
	if !ok {
		return
	}

	for i := 0; i < int(stmt.NamedChildCount()); i++ {
		item := stmt.NamedChild(i)
		switch item.Type() {
		case "wildcard_import":
			fb.Wildcards = append(fb.Wildcards, module)
		case "dotted_name":
			if item == moduleNode {
				continue
			}
			symbol := pf.content(item)
			fb.Top[symbol] = &Definition{
				Kind:   ImportedDef,
				File:   pf.Path,
				Pos:    pf.positionOf(stmt),
				Name:   symbol,
				Import: &ImportRef{Module: module, Symbol: symbol},
			}
		case "aliased_import":
			nameNode := item.ChildByFieldName("name")
			aliasNode := item.ChildByFieldName("alias")
			if nameNode == nil || aliasNode == nil {
				continue
			}
			symbol := pf.content(nameNode)
			alias := pf.content(aliasNode)
			fb.Top[alias] = &Definition{
				Kind:   ImportedDef,
				File:   pf.Path,
				Pos:    pf.positionOf(stmt),
				Name:   alias,
				Import: &ImportRef{Module: module, Symbol: symbol},
			}
		}
	}
}

// moduleSpec renders a module_name field (dotted_name or relative_import)
// into a dot-joined string the import resolver understands, using a
// leading-dot count to mark relative imports ("." → ".", ".." → "..pkg").
func moduleSpec(node *sitter.Node, pf *ParsedFile) (string, bool) {
	if node == nil {
		return "", false
	}
	switch node.Type() {
	case "dotted_name":
		return pf.content(node), true
	case "relative_import":
		dots := ""
		var rest string
		for i := 0; i < int(node.ChildCount()); i++ {
			c := node.Child(i)
			switch c.Type() {
			case "import_prefix":
				dots = pf.content(c)
			case "dotted_name":
				rest = pf.content(c)
			}
		}
		return dots + rest, true
	default:
		return "", false
	}
}

// IsRelative splits a module spec produced by moduleSpec into its
// number of leading dots (zero for an absolute import) and the rest.
func IsRelative(spec string) (dots int, rest string) {
	i := 0
	for i < len(spec) && spec[i] == '.' {
		i++
	}
	return i, spec[i:]
}
