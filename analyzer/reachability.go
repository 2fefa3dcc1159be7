package analyzer

import (
	"path/filepath"
	"sort"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
)

// Engine is the reachability engine (§4.5): starting from a handler, it
// lazily explores every function/class reachable through resolvable
// calls, applying the rule registry at each call site and recording
// the call chain from handler to violation.
//
// The file-binding map and ParsedFile cache persist for the whole run;
// the VisitKey set is reset before each handler so that a helper shared
// by two handlers is reported against both, with its own chain each
// time (§4.5, "per-handler reset").
type Engine struct {
	Cache       *FileCache
	Resolver    *ImportResolver
	Rules       *RuleRegistry
	Violations  *ViolationSink
	Diagnostics *DiagnosticSink

	bindings map[string]*FileBindings
	visited  map[string]bool
}

func NewEngine(cache *FileCache, resolver *ImportResolver, rules *RuleRegistry) *Engine {
	return &Engine{
		Cache:       cache,
		Resolver:    resolver,
		Rules:       rules,
		Violations:  &ViolationSink{},
		Diagnostics: NewDiagnosticSink(),
		bindings:    make(map[string]*FileBindings),
	}
}

// RunHandler traverses every call reachable from h, recording
// violations and diagnostics onto the engine's sinks.
func (e *Engine) RunHandler(h Handler) {
	e.visited = make(map[string]bool)
	e.visitDefinition(h.Def, nil)
}

func (e *Engine) bindingsFor(path string) (*FileBindings, *ParsedFile, bool) {
	pf, err := e.Cache.Parse(path)
	if err != nil {
		return nil, nil, false
	}
	if pf.Status != ParseOK {
		e.Diagnostics.Add(Diagnostic{Kind: ParseErrorDiagnostic, Position: pf.ErrorAt, Detail: pf.ErrorMessage})
		return nil, pf, false
	}
	if fb, ok := e.bindings[path]; ok {
		return fb, pf, true
	}
	fb := BuildBindings(pf)
	e.bindings[path] = fb
	return fb, pf, true
}

func (e *Engine) qualifiedDefName(def *Definition) string {
	return e.Resolver.ModulePath(def.File) + "." + def.Name
}

func (e *Engine) visitDefinition(def *Definition, chain CallChain) {
	if def == nil {
		return
	}

	if def.Kind == ImportedDef {
		e.warnUnresolvedImport(def.File, def.Pos, def.Import.Module)
		return
	}

	key := def.File + "\x00" + e.qualifiedDefName(def)
	if e.visited[key] {
		return
	}
	e.visited[key] = true

	if def.Kind == ClassDef {
		// Nothing executes merely by naming a class; only its __init__
		// (resolved separately at the constructor call site) runs.
		return
	}

	fb, pf, ok := e.bindingsFor(def.File)
	if !ok || pf == nil {
		return
	}

	localClasses := localClassInstances(def.Node, pf, fb)
	calls := collectCalls(def.Node)
	sortCallsBySourceOrder(calls)

	for _, callNode := range calls {
		e.visitCall(callNode, pf, fb, localClasses, chain)
	}
}

func (e *Engine) visitCall(callNode *sitter.Node, pf *ParsedFile, fb *FileBindings, localClasses map[string]string, chain CallChain) {
	functionNode := callNode.ChildByFieldName("function")
	if functionNode == nil {
		return
	}
	pos := pf.positionOf(callNode)
	rawName := pf.content(functionNode)

	qualifiedName, next, diag := e.resolveCallee(functionNode, pf, fb, localClasses)
	if qualifiedName == "" {
		qualifiedName = rawName
	}

	matches := e.Rules.Match(qualifiedName)
	for _, rule := range matches {
		e.Violations.Add(Violation{
			Code:      rule.Code,
			Message:   rule.Message,
			Position:  pos,
			CallChain: chain.Clone(),
		})
	}

	// A call that already matched a rule names a known third-party
	// constructor (boto3.client, psycopg2.connect, ...); warning that its
	// module can't be resolved as a project file on top of the violation
	// itself would be noise, not signal.
	if diag != nil && len(matches) == 0 {
		e.Diagnostics.Add(*diag)
	}

	if next == nil {
		return
	}

	newChain := append(chain.Clone(), CallSite{Position: pos, Name: rawName})
	e.visitDefinition(next, newChain)
}

// resolveCallee resolves a call's callee expression to (a) the
// QualifiedName used for rule matching and (b) the concrete Definition
// to recurse into, if any. It never fails loudly: an unresolvable
// callee yields ("", nil, nil) and the caller falls back to the raw
// written name for rule matching, per §4.2/§4.5.
func (e *Engine) resolveCallee(functionNode *sitter.Node, pf *ParsedFile, fb *FileBindings, localClasses map[string]string) (qualifiedName string, next *Definition, diag *Diagnostic) {
	if chain, pure := dottedChain(functionNode, pf); pure && len(chain) > 0 {
		return e.resolveDottedChain(chain, pf, fb)
	}

	// obj.method() where obj is a bare identifier bound to a tracked
	// class instance (§4.2, §4.5's class-instantiation bullet).
	if functionNode.Type() == "attribute" {
		objNode := functionNode.ChildByFieldName("object")
		attrNode := functionNode.ChildByFieldName("attribute")
		if objNode != nil && attrNode != nil && objNode.Type() == "identifier" {
			varName := pf.content(objNode)
			methodName := pf.content(attrNode)
			if className, ok := localClasses[varName]; ok {
				if classDef, ok := fb.Top[className]; ok && classDef.Kind == ClassDef {
					qn := e.Resolver.ModulePath(pf.Path) + "." + classDef.Name + "." + methodName
					if m, has := classDef.Methods[methodName]; has {
						return qn, m, nil
					}
					return qn, nil, nil
				}
			}
		}
	}

	return "", nil, nil
}

func (e *Engine) resolveDottedChain(chain []string, pf *ParsedFile, fb *FileBindings) (string, *Definition, *Diagnostic) {
	leftmost := chain[0]
	def, found := fb.Top[leftmost]
	if !found {
		if ok, qn, next := e.resolveViaWildcards(fb, chain, pf.Path); ok {
			return qn, next, nil
		}
		return strings.Join(chain, "."), nil, nil
	}

	switch def.Kind {
	case ImportedDef:
		return e.resolveImportedChain(def.Import, chain, pf.Path)

	case FunctionDef:
		if len(chain) == 1 {
			return e.Resolver.ModulePath(pf.Path) + "." + def.Name, def, nil
		}
		return strings.Join(chain, "."), nil, nil

	case ClassDef:
		qn := e.Resolver.ModulePath(pf.Path) + "." + def.Name
		if len(chain) == 1 {
			if ctor, has := def.Methods["__init__"]; has {
				return qn, ctor, nil
			}
			return qn, nil, nil
		}
		return strings.Join(chain, "."), nil, nil
	}

	return strings.Join(chain, "."), nil, nil
}

func (e *Engine) resolveImportedChain(ref *ImportRef, chain []string, fromFile string) (string, *Definition, *Diagnostic) {
	qualifiedName := importedQualifiedName(ref, chain)

	targetPath, resolved := e.Resolver.Resolve(ref.Module, fromFile)
	if !resolved {
		return qualifiedName, nil, &Diagnostic{
			Kind:     UnresolvedImportDiagnostic,
			Position: Position{File: fromFile, Line: 1, Column: 0},
			Detail:   "cannot resolve import " + ref.Module,
		}
	}

	targetFB, targetPF, ok := e.bindingsFor(targetPath)
	if !ok || targetPF == nil {
		return qualifiedName, nil, nil
	}

	symbolChain := importedSymbolChain(ref, chain)
	if next := lookupSymbolChain(targetFB, symbolChain); next != nil {
		return qualifiedName, next, nil
	}

	// "from package import submodule": ref.Symbol may name a submodule
	// file rather than a definition inside the package's __init__, with
	// the rest of the chain resolved against that file instead.
	if ref.Symbol != "" && len(symbolChain) > 0 && symbolChain[0] == ref.Symbol {
		if subPath, ok := e.Resolver.ResolveSymbolInPackage(filepath.Dir(targetPath), ref.Symbol); ok {
			if subFB, subPF, ok := e.bindingsFor(subPath); ok && subPF != nil {
				return qualifiedName, lookupSymbolChain(subFB, symbolChain[1:]), nil
			}
		}
	}

	return qualifiedName, nil, nil
}

// importedQualifiedName renders the rule-matching QualifiedName for a
// call site whose leftmost segment is an import binding. For
// "from M import X" forms, chain[0] already stands in for M.X; for
// plain "import M" / "import M.sub" forms, any attrs in `chain` that
// duplicate the extra module-path segments are collapsed so
// "infra.aws.S3Client" isn't rendered "infra.aws.aws.S3Client".
func importedQualifiedName(ref *ImportRef, chain []string) string {
	if ref.Symbol != "" {
		parts := append([]string{ref.Module, ref.Symbol}, chain[1:]...)
		return strings.Join(parts, ".")
	}
	attrs := importedSymbolChain(ref, chain)
	parts := append([]string{ref.Module}, attrs...)
	return strings.Join(parts, ".")
}

// importedSymbolChain returns the attribute path relative to the
// resolved target module: for "from M import X" it's [X, ...chain[1:]];
// for "import M"/"import M.sub" it's chain[1:] with any segments that
// restate the module's own path (e.g. "sub" in "M.sub") stripped.
func importedSymbolChain(ref *ImportRef, chain []string) []string {
	if ref.Symbol != "" {
		return append([]string{ref.Symbol}, chain[1:]...)
	}
	moduleSegments := strings.Split(ref.Module, ".")
	attrs := chain[1:]
	extra := len(moduleSegments) - 1
	if extra > 0 && len(attrs) >= extra {
		matches := true
		for i := 0; i < extra; i++ {
			if attrs[i] != moduleSegments[i+1] {
				matches = false
				break
			}
		}
		if matches {
			return attrs[extra:]
		}
	}
	return attrs
}

// lookupSymbolChain resolves a one-hop symbol path (a bare symbol, or a
// symbol plus constructor call) against a target file's top-level
// bindings. Deeper attribute chains and re-exported imports are left
// unresolved, matching the spec's one-hop restriction on wildcard and
// cross-module chasing.
func lookupSymbolChain(targetFB *FileBindings, symbolChain []string) *Definition {
	if len(symbolChain) != 1 {
		return nil
	}
	tdef, ok := targetFB.Top[symbolChain[0]]
	if !ok {
		return nil
	}
	switch tdef.Kind {
	case FunctionDef:
		return tdef
	case ClassDef:
		if ctor, has := tdef.Methods["__init__"]; has {
			return ctor
		}
	}
	return nil
}

func (e *Engine) resolveViaWildcards(fb *FileBindings, chain []string, fromFile string) (bool, string, *Definition) {
	for _, wildcardModule := range fb.Wildcards {
		targetPath, ok := e.Resolver.Resolve(wildcardModule, fromFile)
		if !ok {
			continue
		}
		targetFB, _, ok2 := e.bindingsFor(targetPath)
		if !ok2 {
			continue
		}
		if _, ok3 := targetFB.Top[chain[0]]; !ok3 {
			continue
		}
		qn := wildcardModule + "." + strings.Join(chain, ".")
		next := lookupSymbolChain(targetFB, chain)
		return true, qn, next
	}
	return false, "", nil
}

func (e *Engine) warnUnresolvedImport(file string, pos Position, module string) {
	e.Diagnostics.Add(Diagnostic{
		Kind:     UnresolvedImportDiagnostic,
		Position: Position{File: file, Line: pos.Line, Column: pos.Column},
		Detail:   "cannot resolve import " + module,
	})
}

// dottedChain flattens an identifier or attribute-access AST node into
// its dotted segments, e.g. "pkg.mod.Thing" → ["pkg","mod","Thing"].
// ok is false for anything other than a pure identifier/attribute
// chain (a call, subscript, etc. breaks the chain).
func dottedChain(node *sitter.Node, pf *ParsedFile) (chain []string, ok bool) {
	switch node.Type() {
	case "identifier":
		return []string{pf.content(node)}, true
	case "attribute":
		objNode := node.ChildByFieldName("object")
		attrNode := node.ChildByFieldName("attribute")
		if objNode == nil || attrNode == nil {
			return nil, false
		}
		base, baseOK := dottedChain(objNode, pf)
		if !baseOK {
			return nil, false
		}
		return append(base, pf.content(attrNode)), true
	default:
		return nil, false
	}
}

// collectCalls gathers every "call" node within body in document order,
// without descending into nested function/class definitions or lambdas
// — those only execute (and so only get traversed) if and when they are
// themselves called along some resolved path (§4.5).
func collectCalls(body *sitter.Node) []*sitter.Node {
	var calls []*sitter.Node
	var walk func(n *sitter.Node, isRoot bool)
	walk = func(n *sitter.Node, isRoot bool) {
		if n == nil {
			return
		}
		switch n.Type() {
		case "function_definition", "class_definition", "lambda":
			if !isRoot {
				return
			}
		case "call":
			calls = append(calls, n)
		}
		for i := 0; i < int(n.ChildCount()); i++ {
			walk(n.Child(i), false)
		}
	}
	walk(body, true)
	return calls
}

func sortCallsBySourceOrder(calls []*sitter.Node) {
	sort.SliceStable(calls, func(i, j int) bool {
		pi, pj := calls[i].StartPoint(), calls[j].StartPoint()
		if pi.Row != pj.Row {
			return pi.Row < pj.Row
		}
		return pi.Column < pj.Column
	})
}

// localClassInstances scans a function body for simple
// "name = ProjectClass(...)" assignments, enabling the one
// attribute-call resolution pattern the spec allows without full
// dataflow: obj.method() after obj = SomeClass(...) (§4.2, §4.5).
func localClassInstances(body *sitter.Node, pf *ParsedFile, fb *FileBindings) map[string]string {
	result := make(map[string]string)
	var walk func(n *sitter.Node, isRoot bool)
	walk = func(n *sitter.Node, isRoot bool) {
		if n == nil {
			return
		}
		switch n.Type() {
		case "function_definition", "class_definition", "lambda":
			if !isRoot {
				return
			}
		case "assignment":
			left := n.ChildByFieldName("left")
			right := n.ChildByFieldName("right")
			if left != nil && right != nil && left.Type() == "identifier" && right.Type() == "call" {
				if fn := right.ChildByFieldName("function"); fn != nil && fn.Type() == "identifier" {
					className := pf.content(fn)
					if def, ok := fb.Top[className]; ok && def.Kind == ClassDef {
						result[pf.content(left)] = className
					}
				}
			}
		}
		for i := 0; i < int(n.ChildCount()); i++ {
			walk(n.Child(i), false)
		}
	}
	walk(body, true)
	return result
}
