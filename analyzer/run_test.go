package analyzer

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, root, rel, content string) string {
	t.Helper()
	path := filepath.Join(root, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestRun_DirectHit(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "h.py", `import boto3
def lambda_handler(event, context):
    c = boto3.client("s3")
    return c
`)

	result, err := Run(Config{ProjectRoot: root, Targets: []string{root}})
	require.NoError(t, err)

	require.Len(t, result.Violations, 1)
	v := result.Violations[0]
	assert.Equal(t, "PW001", v.Code)
	assert.Equal(t, 3, v.Position.Line)
	assert.Equal(t, 8, v.Position.Column)
	assert.Empty(t, v.CallChain)
}

func TestRun_ModuleScopeIsClean(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "h.py", `import boto3
c = boto3.client("s3")
def lambda_handler(e, x): return c
`)

	result, err := Run(Config{ProjectRoot: root, Targets: []string{root}})
	require.NoError(t, err)
	assert.Empty(t, result.Violations)
}

func TestRun_IndirectViaImport(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "h.py", `from infra.aws import S3Client
def handler(e, x):
    return S3Client().get()
`)
	writeFile(t, root, "infra/aws.py", `import boto3
class S3Client:
    def __init__(self):
        self.c = boto3.client("s3")
    def get(self): return self.c
`)

	result, err := Run(Config{ProjectRoot: root, Targets: []string{root}})
	require.NoError(t, err)

	require.Len(t, result.Violations, 1)
	v := result.Violations[0]
	assert.Equal(t, "PW001", v.Code)
	assert.Equal(t, filepath.Join(root, "infra/aws.py"), v.Position.File)
	assert.Equal(t, 4, v.Position.Line)

	require.Len(t, v.CallChain, 1)
	assert.Equal(t, "S3Client", v.CallChain[0].Name)
	assert.Equal(t, filepath.Join(root, "h.py"), v.CallChain[0].Position.File)
	assert.Equal(t, 3, v.CallChain[0].Position.Line)
}

func TestRun_IndirectViaImportedSubmodule(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "h.py", `from infra import aws
def handler(e, x):
    return aws.S3Client().get()
`)
	writeFile(t, root, "infra/__init__.py", ``)
	writeFile(t, root, "infra/aws.py", `import boto3
class S3Client:
    def __init__(self):
        self.c = boto3.client("s3")
    def get(self): return self.c
`)

	result, err := Run(Config{ProjectRoot: root, Targets: []string{root}})
	require.NoError(t, err)

	require.Len(t, result.Violations, 1)
	v := result.Violations[0]
	assert.Equal(t, "PW001", v.Code)
	assert.Equal(t, filepath.Join(root, "infra/aws.py"), v.Position.File)
	assert.Equal(t, 4, v.Position.Line)

	require.Len(t, v.CallChain, 1)
	assert.Equal(t, "aws.S3Client", v.CallChain[0].Name)
}

func TestRun_CycleTerminates(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "a.py", `from b import f as b_f

def handler(e, x):
    return b_f()

def g():
    return b_f()
`)
	writeFile(t, root, "b.py", `from a import g as a_g

def f():
    return a_g()
`)

	done := make(chan *Result, 1)
	go func() {
		result, err := Run(Config{ProjectRoot: root, Targets: []string{root}})
		require.NoError(t, err)
		done <- result
	}()

	select {
	case result := <-done:
		assert.Empty(t, result.Violations)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not terminate on a mutually recursive call graph")
	}
}

func TestRun_ParseErrorIsolation(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "broken.py", `def lambda_handler(e, x):
    if True
        return 1
`)
	writeFile(t, root, "ok.py", `import boto3
def handler(e, x):
    return boto3.client("s3")
`)

	result, err := Run(Config{ProjectRoot: root, Targets: []string{root}})
	require.NoError(t, err)

	require.Len(t, result.Violations, 1)
	assert.Equal(t, "PW001", result.Violations[0].Code)

	var parseErrors int
	for _, d := range result.Diagnostics {
		if d.Kind == ParseErrorDiagnostic {
			parseErrors++
		}
	}
	assert.Equal(t, 1, parseErrors)
}

func TestRun_UnresolvedImportWarnsOnce(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "h.py", `import boto3
import some_thirdparty

def lambda_handler(e, x):
    boto3.client("s3")
    some_thirdparty.foo()
    some_thirdparty.foo()
    return None
`)

	result, err := Run(Config{ProjectRoot: root, Targets: []string{root}})
	require.NoError(t, err)

	require.Len(t, result.Violations, 1)
	assert.Equal(t, "PW001", result.Violations[0].Code)

	var unresolved int
	for _, d := range result.Diagnostics {
		if d.Kind == UnresolvedImportDiagnostic {
			unresolved++
		}
	}
	assert.Equal(t, 1, unresolved)
}

func TestRun_SharedHelperReachedByTwoHandlers(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "h.py", `import boto3

def make_client():
    return boto3.client("s3")

def handler_one(e, x):
    return make_client()

def handler_two(e, x):
    return make_client()
`)

	result, err := Run(Config{ProjectRoot: root, Targets: []string{root}})
	require.NoError(t, err)

	require.Len(t, result.Violations, 2)
	assert.Equal(t, result.Violations[0].Position, result.Violations[1].Position)
	require.Len(t, result.Violations[0].CallChain, 1)
	require.Len(t, result.Violations[1].CallChain, 1)
	assert.NotEqual(t, result.Violations[0].CallChain[0].Name, "")
}

func TestRun_CallToUndefinedNameIsSilent(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "h.py", `def lambda_handler(e, x):
    return totally_undefined_thing()
`)

	result, err := Run(Config{ProjectRoot: root, Targets: []string{root}})
	require.NoError(t, err)
	assert.Empty(t, result.Violations)
	assert.Empty(t, result.Diagnostics)
}

func TestRun_CustomRule(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "h.py", `import legacy_sdk

def handler(e, x):
    return legacy_sdk.Client()
`)

	result, err := Run(Config{
		ProjectRoot: root,
		Targets:     []string{root},
		CustomRules: []CustomRuleSpec{
			{Pattern: "legacy_sdk.Client", Message: "construct legacy_sdk.Client at module scope"},
		},
	})
	require.NoError(t, err)

	require.Len(t, result.Violations, 1)
	assert.Equal(t, "PWC001", result.Violations[0].Code)
}
