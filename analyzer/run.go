package analyzer

// Config is the input contract the CLI/config layer hands to the core
// (§6): where the project lives, what to scan, how handlers are
// named, what to skip, and which rules are active.
type Config struct {
	ProjectRoot     string
	Targets         []string
	HandlerPatterns []string
	Excludes        []string
	EnabledRules    map[string]bool
	CustomRules     []CustomRuleSpec
}

// Result is the output contract (§6): the ordered violation and
// diagnostic streams, plus run-level counts the CLI layer likes to
// print in its summary footer.
type Result struct {
	Violations   []Violation
	Diagnostics  []Diagnostic
	HandlerCount int
	FileCount    int
}

// Run executes one full check: find handlers, then for each, run the
// reachability engine to completion, accumulating violations and
// diagnostics in emission order (handler 1's violations, then handler
// 2's, ...). This is the one entry point the CLI layer calls.
func Run(cfg Config) (*Result, error) {
	cache := NewFileCache()
	resolver := NewImportResolver(cfg.ProjectRoot)
	registry := NewRuleRegistry(cfg.EnabledRules, cfg.CustomRules)
	finder := NewHandlerFinder(cache, cfg.HandlerPatterns, cfg.Excludes)

	handlers, handlerDiags, err := finder.Find(cfg.Targets)
	if err != nil {
		return nil, err
	}

	engine := NewEngine(cache, resolver, registry)
	for _, d := range handlerDiags {
		engine.Diagnostics.Add(d)
	}

	for _, h := range handlers {
		engine.RunHandler(h)
	}

	return &Result{
		Violations:   engine.Violations.All(),
		Diagnostics:  engine.Diagnostics.All(),
		HandlerCount: len(handlers),
		FileCount:    cache.Count(),
	}, nil
}
