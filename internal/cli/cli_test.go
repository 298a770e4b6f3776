package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/tansive/rallyclient/internal/common/httpclient"
	"github.com/tansive/rallyclient/internal/rally"
)

func init() {
	color.NoColor = true
}

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var buf bytes.Buffer
	root := newRootCmd()
	root.SetOut(&buf)
	root.SetErr(&buf)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return buf.String(), err
}

// setupRally starts a fake Rally server and points the environment at it.
func setupRally(t *testing.T, handler http.HandlerFunc) string {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == rally.APIPath+"/"+rally.AuthorizeEndpoint {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"OperationResult":{"Errors":[],"SecurityToken":"tok"}}`))
			return
		}
		handler(w, r)
	}))
	t.Cleanup(srv.Close)

	t.Setenv(EnvURL, srv.URL)
	t.Setenv(EnvUsername, "me@example.com")
	t.Setenv(EnvPassword, "secret")
	return filepath.Join(t.TempDir(), "config.yaml")
}

func TestConfigCommand_WritesFile(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "rally", "config.yaml")

	out, err := runCLI(t, "--config", cfgPath, "config", "--server", "rally.example.com/", "--username", "me@example.com")
	require.NoError(t, err)
	assert.Contains(t, out, "Server configured: https://rally.example.com")

	b, err := os.ReadFile(cfgPath)
	require.NoError(t, err)
	var stored map[string]string
	require.NoError(t, yaml.Unmarshal(b, &stored))
	assert.Equal(t, map[string]string{
		"version":    configVersion,
		"server_url": "https://rally.example.com",
		"username":   "me@example.com",
	}, stored)

	// updating one field keeps the other
	t.Setenv(EnvURL, "")
	t.Setenv(EnvUsername, "")
	_, err = runCLI(t, "--config", cfgPath, "config", "--username", "other@example.com")
	require.NoError(t, err)
	cfg, err := LoadConfig(cfgPath)
	require.NoError(t, err)
	assert.Equal(t, "https://rally.example.com", cfg.ServerURL)
	assert.Equal(t, "other@example.com", cfg.Username)
}

func TestConfigCommand_Invalid(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "config.yaml")
	_, err := runCLI(t, "--config", cfgPath, "config", "--server", "rally.example.com")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "username is required")
	assert.NoFileExists(t, cfgPath)
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("server_url: https://file.example.com\nusername: file-user\n"), 0o600))

	t.Setenv(EnvURL, "")
	t.Setenv(EnvUsername, "env-user")
	t.Setenv(EnvPassword, "pw")
	cfg, err := LoadConfig(cfgPath)
	require.NoError(t, err)
	assert.Equal(t, "https://file.example.com", cfg.ServerURL)
	assert.Equal(t, "env-user", cfg.Username)
	assert.Equal(t, "pw", cfg.Password)
	assert.NoError(t, cfg.Validate())
}

func TestLoadConfig_MissingFileUsesDefaults(t *testing.T) {
	t.Setenv(EnvURL, "")
	t.Setenv(EnvUsername, "")
	t.Setenv(EnvPassword, "")
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, rally.DefaultURL, cfg.ServerURL)

	err = cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "username is required")
	assert.Contains(t, err.Error(), "RALLY_PASSWORD is required")
}

func TestMorphServer(t *testing.T) {
	assert.Equal(t, "https://rally1.rallydev.com", MorphServer("rally1.rallydev.com/"))
	assert.Equal(t, "http://localhost:8080", MorphServer("http://localhost:8080"))
	assert.Equal(t, "", MorphServer(""))
}

func TestVersionCommand(t *testing.T) {
	out, err := runCLI(t, "version", "-j")
	require.NoError(t, err)
	var v map[string]string
	require.NoError(t, json.Unmarshal([]byte(out), &v))
	assert.Equal(t, getCLIVersion(), v["version"])
}

func TestProjectsCommand(t *testing.T) {
	cfgPath := setupRally(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, rally.APIPath+"/project", r.URL.Path)
		assert.Equal(t, `(Name = "Wombat")`, r.URL.Query().Get("query"))
		assert.Equal(t, "Name,State,ObjectID", r.URL.Query().Get("fetch"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"QueryResult":{"Errors":[],"Warnings":[],"TotalResultCount":1,"StartIndex":1,"PageSize":20,
"Results":[{"ObjectID":14018981482,"Name":"Wombat","State":"Open"}]}}`))
	})

	out, err := runCLI(t, "--config", cfgPath, "projects", "--query", `(Name = "Wombat")`)
	require.NoError(t, err)
	assert.Contains(t, out, "OBJECTID")
	assert.Contains(t, out, "14018981482  Wombat")
	assert.Contains(t, out, "1 of 1 projects")
}

func TestQueryCommand_FieldAndYAML(t *testing.T) {
	cfgPath := setupRally(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, rally.APIPath+"/hierarchicalrequirement", r.URL.Path)
		assert.Equal(t, "2000", r.URL.Query().Get("pagesize"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"QueryResult":{"Errors":[],"TotalResultCount":2,"Results":[{"Name":"a"},{"Name":"b"}]}}`))
	})

	out, err := runCLI(t, "--config", cfgPath, "query", "hierarchicalrequirement", "--pagesize", "2000", "--field", "QueryResult.Results.#.Name")
	require.NoError(t, err)
	assert.Equal(t, "- a\n- b\n", out)

	out, err = runCLI(t, "--config", cfgPath, "query", "hierarchicalrequirement", "--pagesize", "2000", "--field", "QueryResult.TotalResultCount")
	require.NoError(t, err)
	assert.Equal(t, "2\n", out)

	_, err = runCLI(t, "--config", cfgPath, "query", "hierarchicalrequirement", "--pagesize", "2000", "--field", "Nope")
	assert.Error(t, err)
}

func TestCreateFeatureCommand(t *testing.T) {
	var sent map[string]any
	cfgPath := setupRally(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, rally.APIPath+"/portfolioitem/feature/create", r.URL.Path)
		assert.Equal(t, "tok", r.URL.Query().Get("key"))
		body, _ := io.ReadAll(r.Body)
		assert.NoError(t, json.Unmarshal(body, &sent))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"CreateResult":{"Errors":[],"Object":{"ObjectID":9,"FormattedID":"F9","Name":"Checkout",
"State":{"_refObjectName":"Developing","_type":"State"}}}}`))
	})

	out, err := runCLI(t, "--config", cfgPath, "create-feature",
		"--workspace", "12352608129", "--project", "14018981482",
		"--name", "Checkout", "--set", "c_Team=Payments", "--set", "Ready=true")
	require.NoError(t, err)
	assert.Contains(t, out, "Created feature F9: Checkout")
	assert.Contains(t, out, "State: Developing")

	assert.Equal(t, map[string]any{
		"name":      "Checkout",
		"workspace": "workspace/12352608129",
		"project":   "project/14018981482",
		"state":     "Developing",
		"c_Team":    "Payments",
		"Ready":     true,
	}, sent["feature"])
}

func TestCreateFeatureCommand_GeneratesName(t *testing.T) {
	var name string
	cfgPath := setupRally(t, func(w http.ResponseWriter, r *http.Request) {
		var sent struct {
			Feature struct {
				Name string `json:"name"`
			} `json:"feature"`
		}
		body, _ := io.ReadAll(r.Body)
		assert.NoError(t, json.Unmarshal(body, &sent))
		name = sent.Feature.Name
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"CreateResult":{"Errors":[],"Object":{"ObjectID":9,"Name":"x"}}}`))
	})

	_, err := runCLI(t, "--config", cfgPath, "create-feature", "--workspace", "1", "--project", "2", "-j")
	require.NoError(t, err)
	assert.Regexp(t, `^Feature [0-9a-f]{8}$`, name)
}

func TestCreateFeatureCommand_RequiresIDs(t *testing.T) {
	cfgPath := setupRally(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected")
	})
	_, err := runCLI(t, "--config", cfgPath, "create-feature", "--project", "2")
	assert.Error(t, err)
}

func TestParseSets(t *testing.T) {
	attrs, err := parseSets([]string{"a=1", "b=text", "c={\"x\":true}", "d="})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{
		"a": float64(1),
		"b": "text",
		"c": map[string]any{"x": true},
		"d": "",
	}, attrs)

	_, err = parseSets([]string{"novalue"})
	assert.Error(t, err)
	_, err = parseSets([]string{"=x"})
	assert.Error(t, err)
}

func TestErrorMessage(t *testing.T) {
	te := &httpclient.TransportError{StatusCode: 401, Method: "GET", URL: "https://x/y?key=secret", Body: "denied"}
	msg := errorMessage(rally.ErrSecurityToken.Err(te))
	assert.Equal(t, "failed to retrieve security token from Rally: GET returned HTTP 401\ndenied", msg)
	assert.NotContains(t, msg, "secret")

	msg = errorMessage(rally.ErrCreateFailed.MsgErr("unable to create feature", assert.AnError))
	assert.Equal(t, "unable to create feature; "+assert.AnError.Error(), msg)
}
