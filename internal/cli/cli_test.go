package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-dashboard/pkg/config"
	"github.com/noah-isme/sma-dashboard/pkg/credential"
	appErrors "github.com/noah-isme/sma-dashboard/pkg/errors"
)

type harness struct {
	api    *fakeAPI
	app    *App
	out    *bytes.Buffer
	errOut *bytes.Buffer
	dir    string
}

func newHarness(t *testing.T, input string) *harness {
	t.Helper()
	api := newFakeAPI(t)
	dir := t.TempDir()
	cfg := &config.Config{
		Client: config.ClientConfig{
			BaseURL:          api.srv.URL,
			Timeout:          2 * time.Second,
			SearchDebounce:   10 * time.Millisecond,
			FeedbackTTL:      time.Second,
			DefaultPageLimit: 10,
		},
		Credential: config.CredentialConfig{Store: config.CredentialStoreMemory},
		Import:     config.ImportConfig{Workers: 2},
		Export:     config.ExportConfig{Dir: dir},
	}
	h := &harness{api: api, out: &bytes.Buffer{}, errOut: &bytes.Buffer{}, dir: dir}
	app, err := NewApp(context.Background(), cfg, Streams{In: strings.NewReader(input), Out: h.out, Err: h.errOut}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = app.Close() })
	require.NoError(t, app.Tokens.SetToken(context.Background(), validToken))
	h.app = app
	return h
}

func (h *harness) run(args ...string) error {
	cmd := newRootCommand(&rootOptions{streams: h.app.Streams, app: h.app})
	cmd.SetArgs(args)
	cmd.SetOut(h.out)
	cmd.SetErr(h.errOut)
	return cmd.ExecuteContext(context.Background())
}

func TestLoginStoresVerifiedToken(t *testing.T) {
	h := newHarness(t, validToken+"\n")
	require.NoError(t, h.app.Tokens.ClearToken(context.Background()))

	require.NoError(t, h.run("login"))
	token, err := h.app.Tokens.Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, validToken, token)
	assert.Contains(t, h.out.String(), "logged in")
}

func TestLoginRejectsBadToken(t *testing.T) {
	h := newHarness(t, "")

	err := h.run("login", "--token", "nope")
	require.Error(t, err)
	_, err = h.app.Tokens.Token(context.Background())
	assert.ErrorIs(t, err, credential.ErrNoCredential)
}

func TestLogoutClearsToken(t *testing.T) {
	h := newHarness(t, "")
	require.NoError(t, h.run("logout"))
	_, err := h.app.Tokens.Token(context.Background())
	assert.ErrorIs(t, err, credential.ErrNoCredential)
}

func TestListShowsRequestedPage(t *testing.T) {
	h := newHarness(t, "")
	h.api.seed("class", 12)

	require.NoError(t, h.run("list", "class", "--limit", "5", "--page", "3"))
	out := h.out.String()
	assert.Contains(t, out, "CLASS NAME")
	assert.Contains(t, out, "Class 11")
	assert.Contains(t, out, "Showing 11 to 12 of 12 (page 3 of 3)")
}

func TestListPageBeyondLastIsClamped(t *testing.T) {
	h := newHarness(t, "")
	h.api.seed("class", 12)

	require.NoError(t, h.run("list", "class", "--limit", "5", "--page", "9"))
	assert.Contains(t, h.out.String(), "Showing 11 to 12 of 12")
}

func TestListEmptySearch(t *testing.T) {
	h := newHarness(t, "")
	h.api.seed("class", 3)

	require.NoError(t, h.run("list", "class", "--search", "zzz"))
	assert.Contains(t, h.out.String(), "No class records found")
}

func TestCreateValidatesBeforeSending(t *testing.T) {
	h := newHarness(t, "")

	err := h.run("create", "class", "--set", "description=x")
	require.Error(t, err)
	assert.Equal(t, "Class name is required", errorText(err))
	assert.Zero(t, h.api.posts)
}

func TestCreatePrintsSuccess(t *testing.T) {
	h := newHarness(t, "")

	require.NoError(t, h.run("create", "class", "--set", "name=Class 9"))
	assert.Contains(t, h.out.String(), "Class created successfully")
	assert.Contains(t, h.out.String(), "id: c1")
	assert.Equal(t, 1, h.api.count("class"))
}

func TestCreateRejectsMalformedSet(t *testing.T) {
	h := newHarness(t, "")
	assert.Error(t, h.run("create", "class", "--set", "name"))
}

func TestUpdateKeepsExistingFields(t *testing.T) {
	h := newHarness(t, "")
	h.api.seed("class", 1)

	require.NoError(t, h.run("update", "class", "c1", "--set", "description=Top"))
	require.Len(t, h.api.puts, 1)
	assert.Equal(t, "Class 1", h.api.puts[0]["name"])
	assert.Equal(t, "Top", h.api.puts[0]["description"])
	assert.Contains(t, h.out.String(), "Class updated successfully")
}

func TestDeleteDeclined(t *testing.T) {
	h := newHarness(t, "n\n")
	h.api.seed("class", 1)

	require.NoError(t, h.run("delete", "class", "c1"))
	assert.Contains(t, h.out.String(), "delete cancelled")
	assert.Equal(t, 1, h.api.count("class"))
	assert.Contains(t, h.errOut.String(), "Are you sure")
}

func TestDeleteConfirmedAndAlreadyGone(t *testing.T) {
	h := newHarness(t, "y\n")
	h.api.seed("class", 1)

	require.NoError(t, h.run("delete", "class", "c1"))
	assert.Zero(t, h.api.count("class"))

	require.NoError(t, h.run("delete", "class", "c1", "--yes"))
	assert.Equal(t, 2, strings.Count(h.out.String(), "Class deleted successfully"))
}

func TestExpiredSessionClearsTokenOnce(t *testing.T) {
	h := newHarness(t, "")
	require.NoError(t, h.app.Tokens.SetToken(context.Background(), "stale"))

	err := h.run("list", "class")
	require.Error(t, err)
	assert.Equal(t, appErrors.MessageSessionExpired, errorText(err))
	assert.Equal(t, 1, strings.Count(h.errOut.String(), MessageRelogin))
	_, err = h.app.Tokens.Token(context.Background())
	assert.ErrorIs(t, err, credential.ErrNoCredential)
}

func TestExportWritesCSV(t *testing.T) {
	h := newHarness(t, "")
	h.api.seed("class", 3)

	require.NoError(t, h.run("export", "class", "--output", "classes.csv"))
	body, err := os.ReadFile(filepath.Join(h.dir, "classes.csv"))
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(body)), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "ID,Class name,Description", lines[0])
	assert.Contains(t, h.out.String(), "exported 3 class records")
}

func TestImportCreatesRows(t *testing.T) {
	h := newHarness(t, "")
	path := filepath.Join(h.dir, "classes.csv")
	require.NoError(t, os.WriteFile(path, []byte("Class name,Description\nClass A,first\nClass B,\n"), 0o644))

	require.NoError(t, h.run("import", "class", path))
	assert.Contains(t, h.out.String(), "imported 2 class records, 0 failed")
	assert.Equal(t, 2, h.api.count("class"))
}

func TestBrowsePagesAndQuits(t *testing.T) {
	h := newHarness(t, "n\ng 3\nq\n")
	h.api.seed("class", 12)

	require.NoError(t, h.run("browse", "class", "--limit", "5"))
	out := h.out.String()
	assert.Contains(t, out, "Showing 1 to 5 of 12")
	assert.Contains(t, out, "Showing 6 to 10 of 12")
	assert.Contains(t, out, "Showing 11 to 12 of 12")
}

func TestUnknownResource(t *testing.T) {
	h := newHarness(t, "")
	assert.Error(t, h.run("list", "nothing"))
}
