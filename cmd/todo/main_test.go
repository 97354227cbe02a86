package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mytodo/todo/internal/config"
)

// result captures one CLI invocation.
type result struct {
	stdout string
	stderr string
	code   int
}

// isolate gives the test its own config home and clears env overrides.
func isolate(t *testing.T) string {
	t.Helper()
	config.ResetGlobalConfigCache()
	t.Cleanup(config.ResetGlobalConfigCache)
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv(config.EnvDBFile, "")
	t.Setenv(config.EnvIndexFile, "")
	t.Setenv(config.EnvDebug, "")
	return filepath.Join(t.TempDir(), "task_db.json")
}

// run executes the CLI against the backing file at path.
func run(t *testing.T, path string, args ...string) result {
	t.Helper()
	root, app := newRootCmd()

	var stdout, stderr bytes.Buffer
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetArgs(append([]string{"--file", path}, args...))

	code := ExitSuccess
	if err := root.Execute(); err != nil {
		code = reportError(&stderr, err, app.humanOutput)
	}
	return result{stdout: stdout.String(), stderr: stderr.String(), code: code}
}

func TestAddThenFind(t *testing.T) {
	path := isolate(t)

	res := run(t, path, "add", "Buy milk", "2 liters")
	require.Equal(t, ExitSuccess, res.code, res.stderr)
	assert.Empty(t, res.stdout)

	res = run(t, path, "find", "milk")
	require.Equal(t, ExitSuccess, res.code, res.stderr)
	assert.Equal(t, `[
    {
        "description": "2 liters",
        "id": 1,
        "title": "Buy milk"
    }
]
`, res.stdout)
}

func TestFind_NoMatch(t *testing.T) {
	path := isolate(t)
	require.Equal(t, ExitSuccess, run(t, path, "add", "Buy milk", "2 liters").code)

	res := run(t, path, "find", "xyz")
	require.Equal(t, ExitSuccess, res.code, res.stderr)
	assert.Equal(t, `[
    {
        "info": "No matching tasks",
        "query": "xyz"
    }
]
`, res.stdout)
}

func TestFind_NoMatchStrict(t *testing.T) {
	path := isolate(t)

	res := run(t, path, "find", "--strict", "xyz")
	assert.Equal(t, ExitNotFound, res.code)
	assert.Equal(t, "[]\n", res.stdout)
	assert.Empty(t, res.stderr)
}

func TestFind_CaseInsensitive(t *testing.T) {
	path := isolate(t)
	require.Equal(t, ExitSuccess, run(t, path, "add", "ABC upper", "").code)
	require.Equal(t, ExitSuccess, run(t, path, "add", "lower", "abc").code)

	upper := run(t, path, "find", "ABC")
	lower := run(t, path, "find", "abc")
	require.Equal(t, ExitSuccess, upper.code)
	assert.Equal(t, upper.stdout, lower.stdout)
	assert.Contains(t, upper.stdout, `"id": 2`)
	assert.Contains(t, upper.stdout, `"id": 1`)
}

func TestShow_MoreThanExist(t *testing.T) {
	path := isolate(t)
	require.Equal(t, ExitSuccess, run(t, path, "add", "only", "one").code)

	res := run(t, path, "show", "5")
	require.Equal(t, ExitSuccess, res.code, res.stderr)
	assert.Equal(t, `[
    {
        "description": "one",
        "id": 1,
        "title": "only"
    }
]
`, res.stdout)
}

func TestShow_EmptyStore(t *testing.T) {
	path := isolate(t)

	res := run(t, path, "show", "3")
	require.Equal(t, ExitSuccess, res.code, res.stderr)
	assert.Equal(t, "[]\n", res.stdout)

	// Opening the store creates the backing file.
	_, err := os.Stat(path)
	assert.NoError(t, err)
}

func TestDoneThenShow(t *testing.T) {
	path := isolate(t)
	require.Equal(t, ExitSuccess, run(t, path, "add", "first", "a").code)
	require.Equal(t, ExitSuccess, run(t, path, "add", "second", "b").code)

	res := run(t, path, "done", "1")
	require.Equal(t, ExitSuccess, res.code, res.stderr)
	assert.Empty(t, res.stdout)

	res = run(t, path, "show", "10")
	require.Equal(t, ExitSuccess, res.code, res.stderr)
	assert.Equal(t, `[
    {
        "description": "b",
        "id": 2,
        "title": "second"
    }
]
`, res.stdout)
}

func TestDone_UnknownID(t *testing.T) {
	path := isolate(t)
	require.Equal(t, ExitSuccess, run(t, path, "add", "keep", "").code)
	before, err := os.ReadFile(path)
	require.NoError(t, err)

	res := run(t, path, "done", "42")
	assert.Equal(t, ExitSuccess, res.code)
	assert.Empty(t, res.stdout)

	after, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, string(before), string(after))

	res = run(t, path, "done", "--strict", "42")
	assert.Equal(t, ExitNotFound, res.code)
	assert.Contains(t, res.stderr, "task 42 not found")
}

func TestNumericArgumentsRejected(t *testing.T) {
	path := isolate(t)

	for _, args := range [][]string{{"show", "five"}, {"done", "x1"}, {"get", "1.5"}} {
		res := run(t, path, args...)
		assert.Equal(t, ExitError, res.code, "args %v", args)
		assert.Contains(t, res.stderr, "must be an integer", "args %v", args)
	}

	// Parsing fails before the store is opened.
	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err), "backing file should not be created")
}

func TestWrongArgCount(t *testing.T) {
	path := isolate(t)

	res := run(t, path, "add", "only-title")
	assert.Equal(t, ExitError, res.code)
	assert.Contains(t, res.stderr, "accepts 2 arg(s)")
}

func TestGet(t *testing.T) {
	path := isolate(t)
	require.Equal(t, ExitSuccess, run(t, path, "add", "Buy milk", "2 liters").code)

	res := run(t, path, "get", "1")
	require.Equal(t, ExitSuccess, res.code, res.stderr)
	assert.Equal(t, `{
    "description": "2 liters",
    "id": 1,
    "title": "Buy milk"
}
`, res.stdout)

	res = run(t, path, "get", "2")
	assert.Equal(t, ExitNotFound, res.code)
}

func TestBackingFileFormat(t *testing.T) {
	path := isolate(t)
	require.Equal(t, ExitSuccess, run(t, path, "add", "Купить хлеб", "<b>&</b>").code)
	require.Equal(t, ExitSuccess, run(t, path, "add", "second", "").code)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, `[
    {
        "title": "second",
        "description": "",
        "id": 2
    },
    {
        "title": "Купить хлеб",
        "description": "<b>&</b>",
        "id": 1
    }
]`, string(data))
}

func TestMalformedBackingFile(t *testing.T) {
	path := isolate(t)
	require.NoError(t, os.WriteFile(path, []byte("garbage"), 0644))

	res := run(t, path, "show", "3")
	require.Equal(t, ExitSuccess, res.code, res.stderr)
	assert.Equal(t, "[]\n", res.stdout)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "garbage", string(data))
}

func TestUnwritableLocation(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), "missing-dir", "task_db.json")

	res := run(t, path, "add", "a", "b")
	assert.Equal(t, ExitDataError, res.code)
	assert.Contains(t, res.stderr, `"error"`)
}

func TestHumanOutput(t *testing.T) {
	path := isolate(t)

	res := run(t, path, "--human", "add", "Buy milk", "2 liters")
	require.Equal(t, ExitSuccess, res.code, res.stderr)
	assert.Equal(t, "Added #1 Buy milk\n", res.stdout)

	res = run(t, path, "--human", "show", "1")
	assert.Equal(t, "#1 Buy milk\n    2 liters\n", res.stdout)

	res = run(t, path, "--human", "find", "bread")
	assert.Equal(t, "No matching tasks for \"bread\"\n", res.stdout)

	res = run(t, path, "--human", "done", "1")
	assert.Equal(t, "Completed #1 (0 remaining)\n", res.stdout)

	res = run(t, path, "--human", "get", "1")
	assert.Equal(t, ExitNotFound, res.code)
	assert.Equal(t, "error: task 1 not found\n", res.stderr)
}

func TestFileFromEnvironment(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), "env_tasks.json")
	t.Setenv(config.EnvDBFile, path)

	root, _ := newRootCmd()
	var stdout bytes.Buffer
	root.SetOut(&stdout)
	root.SetErr(&stdout)
	root.SetArgs([]string{"add", "from", "env"})
	require.NoError(t, root.Execute())

	_, err := os.Stat(path)
	assert.NoError(t, err)
}

func TestVerboseLogsToStderr(t *testing.T) {
	path := isolate(t)

	res := run(t, path, "--verbose", "add", "a", "b")
	require.Equal(t, ExitSuccess, res.code)
	assert.Contains(t, res.stderr, "persisted tasks")
	assert.Empty(t, res.stdout)
}
