package analyzer

import (
	"os"
	"path/filepath"
	"strings"
)

// ImportResolver maps a module reference written in one project file to
// a concrete source file under the project root, or reports that the
// reference is external (§4.3).
type ImportResolver struct {
	Root string
}

func NewImportResolver(root string) *ImportResolver {
	abs, err := filepath.Abs(root)
	if err != nil {
		abs = root
	}
	return &ImportResolver{Root: abs}
}

// Resolve returns the absolute path of the project file that `spec`
// (a module reference as rendered by moduleSpec, dots-prefixed for
// relative imports) names from the perspective of `fromFile`. ok is
// false when the reference does not map into the project, meaning it
// should be treated as external.
func (r *ImportResolver) Resolve(spec string, fromFile string) (path string, ok bool) {
	dots, rest := IsRelative(spec)
	if dots > 0 {
		return r.resolveRelative(dots, rest, fromFile)
	}
	return r.resolveAbsolute(rest)
}

func (r *ImportResolver) resolveAbsolute(dotted string) (string, bool) {
	if dotted == "" {
		return "", false
	}
	segments := strings.Split(dotted, ".")
	return r.probe(r.Root, segments)
}

func (r *ImportResolver) resolveRelative(dots int, rest string, fromFile string) (string, bool) {
	base := filepath.Dir(fromFile)
	// "." refers to the package containing fromFile; each extra dot
	// climbs one more directory, mirroring Python's relative-import
	// semantics.
	for i := 1; i < dots; i++ {
		base = filepath.Dir(base)
	}
	var segments []string
	if rest != "" {
		segments = strings.Split(rest, ".")
	}
	return r.probe(base, segments)
}

func (r *ImportResolver) probe(base string, segments []string) (string, bool) {
	if len(segments) == 0 {
		// "from . import X" with no module segments: X itself is
		// resolved by the caller against the package directory.
		initPath := filepath.Join(base, "__init__.py")
		if fileExists(initPath) {
			return initPath, true
		}
		return "", false
	}

	dir := filepath.Join(base, filepath.Join(segments[:len(segments)-1]...))
	last := segments[len(segments)-1]

	asFile := filepath.Join(dir, last+".py")
	if fileExists(asFile) {
		return asFile, true
	}

	asPackage := filepath.Join(dir, last, "__init__.py")
	if fileExists(asPackage) {
		return asPackage, true
	}

	return "", false
}

// ResolveSymbolInPackage handles "from . import X" / "from M import X"
// where X turns out to be a submodule rather than an attribute of M:
// probes base/X.py and base/X/__init__.py alongside the module itself.
func (r *ImportResolver) ResolveSymbolInPackage(moduleDir string, symbol string) (string, bool) {
	asFile := filepath.Join(moduleDir, symbol+".py")
	if fileExists(asFile) {
		return asFile, true
	}
	asPackage := filepath.Join(moduleDir, symbol, "__init__.py")
	if fileExists(asPackage) {
		return asPackage, true
	}
	return "", false
}

// ModulePath renders an absolute file path as the dotted module name a
// QualifiedName prefix would carry, e.g. "infra/aws.py" → "infra.aws".
// Used to build the per-definition qualified name for VisitKey.
func (r *ImportResolver) ModulePath(absPath string) string {
	rel, err := filepath.Rel(r.Root, absPath)
	if err != nil {
		rel = absPath
	}
	rel = strings.TrimSuffix(rel, ".py")
	rel = strings.TrimSuffix(rel, string(filepath.Separator)+"__init__")
	rel = strings.ReplaceAll(rel, string(filepath.Separator), ".")
	return rel
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
