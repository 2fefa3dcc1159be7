package analyzer

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// DefaultHandlerPatterns mirrors the common serverless entry-point
// naming conventions: AWS Lambda's lambda_handler, the bare handler
// used by most other providers, and anything ending in _handler.
var DefaultHandlerPatterns = []string{"handler", "lambda_handler", "*_handler"}

// Handler is a discovered serverless entry point: the function
// Definition plus the file it lives in.
type Handler struct {
	File string
	Def  *Definition
}

// HandlerFinder walks a file tree enumerating top-level functions whose
// name matches a handler glob, skipping files under any exclude glob.
// Exclusion only narrows which files are scanned *for handlers* — the
// reachability engine is free to follow imports into excluded files,
// since that's exactly where shared utility code (and the heavy calls
// worth flagging) tends to live (§4.6).
type HandlerFinder struct {
	Patterns []string
	Excludes []string
	Cache    *FileCache
}

func NewHandlerFinder(cache *FileCache, patterns, excludes []string) *HandlerFinder {
	if len(patterns) == 0 {
		patterns = DefaultHandlerPatterns
	}
	return &HandlerFinder{Patterns: patterns, Excludes: excludes, Cache: cache}
}

// Find walks the given roots (files or directories) and returns every
// matching handler, sorted by (file, line) for deterministic emission.
func (hf *HandlerFinder) Find(roots []string) ([]Handler, []Diagnostic, error) {
	var (
		handlers    []Handler
		diagnostics []Diagnostic
	)

	var files []string
	for _, root := range roots {
		found, err := hf.collectSourceFiles(root)
		if err != nil {
			return nil, nil, err
		}
		files = append(files, found...)
	}

	for _, path := range files {
		if hf.isExcluded(path) {
			continue
		}
		pf, err := hf.Cache.Parse(path)
		if err != nil {
			continue
		}
		if pf.Status != ParseOK {
			diagnostics = append(diagnostics, Diagnostic{
				Kind:     ParseErrorDiagnostic,
				Position: pf.ErrorAt,
				Detail:   pf.ErrorMessage,
			})
			continue
		}

		bindings := BuildBindings(pf)
		for _, def := range bindings.Top {
			if def.Kind == FunctionDef && hf.matchesHandlerName(def.Name) {
				handlers = append(handlers, Handler{File: path, Def: def})
			}
		}
	}

	sort.Slice(handlers, func(i, j int) bool {
		if handlers[i].File != handlers[j].File {
			return handlers[i].File < handlers[j].File
		}
		return handlers[i].Def.Pos.Line < handlers[j].Def.Pos.Line
	})

	return handlers, diagnostics, nil
}

func (hf *HandlerFinder) matchesHandlerName(name string) bool {
	for _, pattern := range hf.Patterns {
		if ok, _ := doublestar.Match(pattern, name); ok {
			return true
		}
	}
	return false
}

func (hf *HandlerFinder) isExcluded(path string) bool {
	for _, pattern := range hf.Excludes {
		if ok, _ := doublestar.Match(pattern, path); ok {
			return true
		}
		if rel, err := filepath.Rel(".", path); err == nil {
			if ok, _ := doublestar.Match(pattern, rel); ok {
				return true
			}
		}
	}
	return false
}

func (hf *HandlerFinder) collectSourceFiles(root string) ([]string, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		if strings.HasSuffix(root, ".py") {
			return []string{root}, nil
		}
		return nil, nil
	}

	var files []string
	err = filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if strings.HasSuffix(path, ".py") {
			files = append(files, path)
		}
		return nil
	})
	return files, err
}
