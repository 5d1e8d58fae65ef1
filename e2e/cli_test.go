package e2e_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/partygame/internal/api"
	"github.com/mcoot/partygame/internal/api/response"
	"github.com/mcoot/partygame/internal/cli"
	"github.com/mcoot/partygame/internal/factory"
)

// cliRunner runs partyctl commands in-process against a server
type cliRunner struct {
	serverURL   string
	sessionFile string
}

func newCLIRunner(t *testing.T, serverURL string) *cliRunner {
	t.Helper()
	t.Setenv("PARTYCTL_SESSION", "")

	return &cliRunner{
		serverURL:   serverURL,
		sessionFile: filepath.Join(t.TempDir(), "session"),
	}
}

func (r *cliRunner) run(args ...string) (string, error) {
	fullArgs := append([]string{
		"--server", r.serverURL,
		"--session-file", r.sessionFile,
		"--output", "json",
	}, args...)

	var out bytes.Buffer
	cmd := cli.NewRootCmd()
	cmd.SetArgs(fullArgs)
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	err := cmd.Execute()
	return out.String(), err
}

func runJSON[T any](t *testing.T, r *cliRunner, args ...string) T {
	t.Helper()
	output, err := r.run(args...)
	require.NoError(t, err, output)

	var v T
	require.NoError(t, json.Unmarshal([]byte(output), &v), output)
	return v
}

// testServer manages a real HTTP server for e2e tests
type testServer struct {
	addr     string
	shutdown func()
}

func startTestServer(t *testing.T) *testServer {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

	app, err := factory.New(factory.Config{
		Logger:      logger,
		StorageType: factory.StorageTypeSQLite,
		SQLitePath:  filepath.Join(t.TempDir(), "e2e.db"),
	})
	require.NoError(t, err)

	router := api.NewRouter(api.RouterConfig{
		Logger:     logger,
		Controller: app.SessionController,
		Catalog:    app.CatalogService,
		Metrics:    app.Metrics,
	})

	serverConfig := api.DefaultServerConfig()
	serverConfig.Addr = "127.0.0.1:0"
	server := api.NewServer(router, serverConfig, logger)
	require.NoError(t, server.Listen())

	go func() {
		if err := server.Serve(); err != nil {
			t.Logf("server error: %v", err)
		}
	}()

	serverURL := "http://" + server.Addr()
	waitForServer(t, serverURL+"/api/v1/health")

	return &testServer{
		addr: serverURL,
		shutdown: func() {
			_ = server.Shutdown(context.Background())
			_ = app.Close()
		},
	}
}

func waitForServer(t *testing.T, url string) {
	t.Helper()

	client := &http.Client{Timeout: 100 * time.Millisecond}
	deadline := time.Now().Add(5 * time.Second)

	for time.Now().Before(deadline) {
		resp, err := client.Get(url)
		if err == nil {
			_ = resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return
			}
		}
		time.Sleep(50 * time.Millisecond)
	}

	t.Fatal("server did not become ready")
}

func TestCLIHealth(t *testing.T) {
	ts := startTestServer(t)
	defer ts.shutdown()

	r := newCLIRunner(t, ts.addr)
	result := runJSON[response.Health](t, r, "health")
	assert.Equal(t, "ok", result.Status)
}

func TestCLIGameFlow(t *testing.T) {
	ts := startTestServer(t)
	defer ts.shutdown()

	r := newCLIRunner(t, ts.addr)

	// Catalog
	runJSON[response.Catalog](t, r, "challenge", "catalog", "add",
		"--id", "karaoke", "--title", "Karaoke", "--topology", "solo", "--points", "2", "--reusable",
		"--settings", `{"type":"karaoke","song":"any"}`)
	catalog := runJSON[response.Catalog](t, r, "challenge", "catalog", "list")
	require.Len(t, catalog.Challenges, 1)

	// Session setup; create makes the session current
	session := runJSON[response.Session](t, r, "session", "create")
	require.NotEmpty(t, session.ID)
	data, err := os.ReadFile(r.sessionFile)
	require.NoError(t, err)
	assert.Equal(t, session.ID, string(data))

	ada := runJSON[response.PlayerCreated](t, r, "player", "add", "Ada").Player
	bo := runJSON[response.PlayerCreated](t, r, "player", "add", "Bo").Player

	session = runJSON[response.Session](t, r, "session", "config", "--duration", "2")
	assert.Equal(t, 2, session.DurationValue)

	pool := runJSON[response.Catalog](t, r, "challenge", "import")
	require.Len(t, pool.Challenges, 1)
	assert.Equal(t, "karaoke", pool.Challenges[0].Variant)

	// Play two rounds
	session = runJSON[response.Session](t, r, "game", "start")
	assert.Equal(t, "selecting", session.Phase)

	session = runJSON[response.Session](t, r, "game", "select", "karaoke")
	assert.Equal(t, "awaiting_result", session.Phase)

	participants := runJSON[response.Participants](t, r, "game", "participants")
	require.Len(t, participants.Participants, 1)
	assert.Equal(t, ada.ID, participants.Participants[0].ID)

	runJSON[response.Session](t, r, "result", "--winner", ada.ID)

	runJSON[response.Session](t, r, "game", "select")
	session = runJSON[response.Session](t, r, "result", "--skip")
	assert.Equal(t, "finished", session.Phase)

	standings := runJSON[response.Standings](t, r, "standings")
	assert.True(t, standings.Finished)
	require.Len(t, standings.Standings, 2)
	assert.Equal(t, ada.ID, standings.Standings[0].Participant.ID)
	assert.Equal(t, 2, standings.Standings[0].Score)
	assert.Equal(t, bo.ID, standings.Standings[1].Participant.ID)
	assert.Equal(t, []response.Participant{{ID: ada.ID, Kind: "player"}}, standings.Winners)
}

func TestCLIErrors(t *testing.T) {
	ts := startTestServer(t)
	defer ts.shutdown()

	r := newCLIRunner(t, ts.addr)

	// No current session
	_, err := r.run("standings")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no session selected")

	runJSON[response.Session](t, r, "session", "create")

	// API errors surface with their code
	_, err = r.run("game", "start")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "INSUFFICIENT_PARTICIPANTS")
	var reqErr *cli.RequestError
	require.ErrorAs(t, err, &reqErr)
	assert.Equal(t, http.StatusConflict, reqErr.Status)
	assert.NotEmpty(t, reqErr.RequestID)

	_, err = r.run("result", "--skip", "--winner", "x")
	require.Error(t, err)

	_, err = r.run("result", "--score", "nope")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "want id=points")
}
