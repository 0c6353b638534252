package deploy

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/patternlab/ctlaunch/internal/compat"
	"github.com/patternlab/ctlaunch/internal/links"
	"github.com/patternlab/ctlaunch/internal/schema"
	"github.com/patternlab/ctlaunch/internal/storage"
)

type fakeRunner struct {
	results []Result
	errs    []error
	calls   []Command
}

func (f *fakeRunner) Run(_ context.Context, cmd Command) (Result, error) {
	f.calls = append(f.calls, cmd)
	i := len(f.calls) - 1
	var res Result
	var err error
	if i < len(f.results) {
		res = f.results[i]
	}
	if i < len(f.errs) {
		err = f.errs[i]
	}
	return res, err
}

var testCID = "baed" + strings.Repeat("reia", 13)

const testUUID = "3f2b8c1e-9a4d-4f6b-8e2a-1c5d7e9f0a3b"

func testCLI(t *testing.T) CLI {
	t.Helper()
	cli, err := NewCLI("deno task ct", "/labs", "")
	require.NoError(t, err)
	return cli
}

func envOf(cmd Command) map[string]string {
	env := make(map[string]string)
	for _, kv := range cmd.Env {
		k, v, _ := strings.Cut(kv, "=")
		env[k] = v
	}
	return env
}

func TestNewCLI(t *testing.T) {
	cli := testCLI(t)
	assert.Equal(t, []string{"deno", "task", "ct"}, cli.Command)
	assert.Equal(t, filepath.Join("/labs", "claude.key"), cli.Identity)

	_, err := NewCLI("   ", "/labs", "")
	assert.Error(t, err)

	custom, err := NewCLI("ct", "", "/keys/me.key")
	require.NoError(t, err)
	assert.Equal(t, "/keys/me.key", custom.Identity)
}

func TestParseTarget(t *testing.T) {
	for in, want := range map[string]storage.Target{
		"":           storage.TargetLocal,
		"local":      storage.TargetLocal,
		"PROD":       storage.TargetProd,
		"production": storage.TargetProd,
	} {
		got, err := ParseTarget(in)
		require.NoError(t, err)
		assert.Equal(t, want, got, in)
	}
	_, err := ParseTarget("staging")
	assert.Error(t, err)
}

func TestURLs(t *testing.T) {
	assert.Equal(t, "http://localhost:8000/my-space", SpaceURL("http://localhost:8000/", "my-space"))
	assert.Equal(t, "http://localhost:8000/my%20space/abc", ArtifactURL("http://localhost:8000", "my space", "abc"))
}

func TestExtractID(t *testing.T) {
	tests := []struct {
		name   string
		output string
		want   string
	}{
		{"cid on its own line", "Compiling...\n" + testCID + "\nDone\n", testCID},
		{"cid trailing", "Created charm " + testCID + "\n", testCID},
		{"uuid on its own line", "ok\n  " + testUUID + "\n", testUUID},
		{"charm prefix", "created charm: " + testUUID + " in space", testUUID},
		{"uuid in url", "open http://localhost:8000/space/" + testUUID + "?x=1", testUUID},
		{"own-line cid beats later uuid", testCID + "\ncharm: " + testUUID, testCID},
		{"nothing", "Deployed successfully", ""},
		{"short baed prefix is not an id", "baedshort\n", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ExtractID(tt.output, DefaultIDMatchers)
			assert.Equal(t, tt.want != "", ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExtractIDRejectsInvalidUUID(t *testing.T) {
	matchers := []IDMatcher{{
		Name:     "loose",
		Pattern:  DefaultIDMatchers[3].Pattern,
		Validate: func(string) bool { return false },
	}}
	_, ok := ExtractID("charm: "+testUUID, matchers)
	assert.False(t, ok)
}

func TestNetworkHint(t *testing.T) {
	for _, out := range []string{
		"error: Connection refused (os error 111)",
		"TypeError: fetch failed",
		"getaddrinfo ENOTFOUND toolshed",
		"request Timed Out",
	} {
		_, ok := NetworkHint(out)
		assert.True(t, ok, out)
	}
	_, ok := NetworkHint("error: pattern does not compile")
	assert.False(t, ok)
}

func TestDeploySuccessWithID(t *testing.T) {
	runner := &fakeRunner{results: []Result{{Stdout: "Task ct\n" + testCID + "\n"}}}
	d := NewDeployer(testCLI(t), DefaultEndpoints(), runner, WithDeployLogger(zap.NewNop()))

	outcome, err := d.Deploy(context.Background(), Request{Path: "/p/counter.tsx", Space: "demo", Target: storage.TargetLocal})
	require.NoError(t, err)
	assert.Equal(t, StatusDeployed, outcome.Status)
	assert.Equal(t, testCID, outcome.ID)
	assert.NoError(t, outcome.Err())
	assert.Equal(t, "http://localhost:8000/demo/"+testCID, outcome.URL())

	require.Len(t, runner.calls, 1)
	cmd := runner.calls[0]
	assert.Equal(t, "deno", cmd.Name)
	assert.Equal(t, []string{"task", "ct", "charm", "new", "--space", "demo", "/p/counter.tsx"}, cmd.Args)
	assert.Equal(t, "/labs", cmd.Dir)
	assert.Equal(t, DefaultLocalEndpoint, envOf(cmd)[EnvAPIURL])
	assert.Equal(t, filepath.Join("/labs", "claude.key"), envOf(cmd)[EnvIdentity])
}

func TestDeploySuccessWithoutID(t *testing.T) {
	runner := &fakeRunner{results: []Result{{Stdout: "all good\n"}}}
	d := NewDeployer(testCLI(t), DefaultEndpoints(), runner)

	outcome, err := d.Deploy(context.Background(), Request{Path: "/p/a.tsx", Space: "demo", Target: storage.TargetProd})
	require.NoError(t, err)
	assert.Equal(t, StatusNoID, outcome.Status)
	assert.Empty(t, outcome.ID)
	assert.Equal(t, DefaultProdEndpoint+"/demo", outcome.URL())
	assert.Equal(t, DefaultProdEndpoint, envOf(runner.calls[0])[EnvAPIURL])
}

func TestDeployFailureProdAddsNetworkHint(t *testing.T) {
	runner := &fakeRunner{results: []Result{{Stdout: "starting\n", Stderr: "error: fetch failed\n", ExitCode: 1}}}
	d := NewDeployer(testCLI(t), DefaultEndpoints(), runner)

	outcome, err := d.Deploy(context.Background(), Request{Path: "/p/a.tsx", Space: "demo", Target: storage.TargetProd})
	require.NoError(t, err)
	assert.Equal(t, StatusFailed, outcome.Status)
	assert.Equal(t, "starting\nerror: fetch failed\n", outcome.Output)
	assert.Equal(t, NetworkHintText, outcome.Hint)

	var failed *FailedError
	require.ErrorAs(t, outcome.Err(), &failed)
	assert.Equal(t, 1, failed.ExitCode)
	assert.Contains(t, failed.Error(), "a.tsx")
}

func TestDeployFailureLocalHasNoHint(t *testing.T) {
	runner := &fakeRunner{results: []Result{{Stderr: "connection refused", ExitCode: 1}}}
	d := NewDeployer(testCLI(t), DefaultEndpoints(), runner)

	outcome, err := d.Deploy(context.Background(), Request{Path: "/p/a.tsx", Space: "demo", Target: storage.TargetLocal})
	require.NoError(t, err)
	assert.Equal(t, StatusFailed, outcome.Status)
	assert.Empty(t, outcome.Hint)
}

func TestDeployRunnerErrorIsFailure(t *testing.T) {
	runner := &fakeRunner{errs: []error{errors.New("deno: timed out after 5m0s")}}
	d := NewDeployer(testCLI(t), DefaultEndpoints(), runner)

	outcome, err := d.Deploy(context.Background(), Request{Path: "/p/a.tsx", Space: "demo", Target: storage.TargetProd})
	require.NoError(t, err)
	assert.Equal(t, StatusFailed, outcome.Status)
	assert.Contains(t, outcome.Output, "timed out")
	assert.NotEmpty(t, outcome.Hint)
	assert.Error(t, outcome.Err())
}

func TestDeployRejectsIncompleteRequest(t *testing.T) {
	d := NewDeployer(testCLI(t), DefaultEndpoints(), &fakeRunner{})
	_, err := d.Deploy(context.Background(), Request{Space: "demo"})
	assert.Error(t, err)
	_, err = d.Deploy(context.Background(), Request{Path: "/p/a.tsx"})
	assert.Error(t, err)
}

func TestParseInspection(t *testing.T) {
	out := []byte("Task ct charm inspect\n" +
		`{"name": "Counter", "source": {"value": 1}, "result": {"count": 2, "label": "x"}}` + "\n")

	got, err := ParseInspection(out)
	require.NoError(t, err)
	assert.Equal(t, "Counter", got.Name)

	result, ok := got.Result.(*schema.Object)
	require.True(t, ok)
	assert.Equal(t, []string{"count", "label"}, result.Keys)

	_, err = ParseInspection([]byte("not json"))
	assert.Error(t, err)
	_, err = ParseInspection([]byte(`[1, 2]`))
	assert.Error(t, err)
}

func TestCLIInspector(t *testing.T) {
	runner := &fakeRunner{
		results: []Result{
			{Stdout: `{"source": {}, "result": {"v": 1}}`},
			{Stderr: "charm not found", ExitCode: 2},
		},
	}
	insp := NewCLIInspector(testCLI(t), DefaultEndpoints(), storage.TargetLocal, runner, nil)

	got, err := insp.Inspect(context.Background(), storage.ArtifactRecord{ID: "abc", Space: "demo", APIURL: "http://other:9000"})
	require.NoError(t, err)
	assert.Empty(t, got.Name)
	assert.Equal(t, []string{"task", "ct", "charm", "inspect", "--space", "demo", "--charm", "abc", "--json"}, runner.calls[0].Args)
	assert.Equal(t, "http://other:9000", envOf(runner.calls[0])[EnvAPIURL])

	_, err = insp.Inspect(context.Background(), storage.ArtifactRecord{ID: "gone", Space: "demo"})
	assert.ErrorContains(t, err, "charm not found")
	assert.Equal(t, DefaultLocalEndpoint, envOf(runner.calls[1])[EnvAPIURL])
}

func TestInspectorFeedsEngine(t *testing.T) {
	runner := &fakeRunner{results: []Result{
		{Stdout: `{"name": "Counter", "source": {}, "result": {"count": 1}}`},
		{Stdout: `{"name": "Display", "source": {"count": 0}, "result": {}}`},
	}}
	insp := NewCLIInspector(testCLI(t), DefaultEndpoints(), storage.TargetLocal, runner, nil)

	got := links.NewEngine(insp).Generate(context.Background(), []storage.ArtifactRecord{
		{ID: "p", Space: "demo"},
		{ID: "c", Space: "demo"},
	}, 10)
	require.Len(t, got, 1)
	assert.Equal(t, compat.Compatible, got[0].Verdict)
	assert.Equal(t, "Counter", got[0].Source.Name)
}

func TestLinkerBuildsRefs(t *testing.T) {
	runner := &fakeRunner{results: []Result{{}}}
	l := NewLinker(testCLI(t), runner, zap.NewNop())

	s := links.Suggestion{
		Source: links.Endpoint{
			Artifact: storage.ArtifactRecord{ID: "src", APIURL: "http://recorded:8000"},
			Field:    schema.FlatField{Path: []string{"items", "first"}},
		},
		Target: links.Endpoint{
			Artifact: storage.ArtifactRecord{ID: "tgt"},
			Field:    schema.FlatField{Path: []string{"input"}},
		},
	}
	req := LinkRequestFor(s, "demo", DefaultLocalEndpoint)
	assert.Equal(t, "src/items/first", req.SourceRef())
	assert.Equal(t, "tgt/input", req.TargetRef())

	require.NoError(t, l.Link(context.Background(), req))
	assert.Equal(t, []string{"task", "ct", "charm", "link", "--space", "demo", "src/items/first", "tgt/input"}, runner.calls[0].Args)
	assert.Equal(t, "http://recorded:8000", envOf(runner.calls[0])[EnvAPIURL])
}

func TestLinkerSurfacesStderr(t *testing.T) {
	runner := &fakeRunner{results: []Result{{Stderr: "cell not writable\n", ExitCode: 1}}}
	l := NewLinker(testCLI(t), runner, nil)

	err := l.Link(context.Background(), LinkRequest{Space: "demo", SourceID: "a", SourcePath: []string{"x"}, TargetID: "b", TargetPath: []string{"y"}})
	assert.ErrorContains(t, err, "cell not writable")

	assert.Error(t, l.Link(context.Background(), LinkRequest{Space: "demo", SourceID: "a"}))
}

func TestExecRunner(t *testing.T) {
	r := NewExecRunner(10*time.Second, zap.NewNop())

	res, err := r.Run(context.Background(), Command{
		Name: "sh",
		Args: []string{"-c", `echo "api=$CT_API_URL"; echo oops >&2; exit 3`},
		Env:  []string{EnvAPIURL + "=http://x"},
	})
	require.NoError(t, err)
	assert.Equal(t, 3, res.ExitCode)
	assert.False(t, res.Success())
	assert.Equal(t, "api=http://x\n", res.Stdout)
	assert.Equal(t, "oops\n", res.Stderr)
	assert.Equal(t, "api=http://x\noops\n", res.Combined())

	_, err = r.Run(context.Background(), Command{Name: "definitely-not-a-real-binary-ctlaunch"})
	assert.Error(t, err)
}

func TestExecRunnerTimeout(t *testing.T) {
	r := NewExecRunner(50*time.Millisecond, nil)
	_, err := r.Run(context.Background(), Command{Name: "sleep", Args: []string{"5"}})
	assert.ErrorContains(t, err, "timed out")
}
