package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/envmanager/pkg/envmanager"
)

const table = `Name|Environment|BaseURL
Quotes|acc|https://acc.quotes.example.com
Quotes|prod|https://quotes.example.com
Orders|prod|https://orders.example.com/api/
`

// setup points envctl at a fresh file store and a definitions table.
func setup(t *testing.T) {
	t.Helper()

	dir := t.TempDir()
	path := filepath.Join(dir, "apis.psv")
	require.NoError(t, os.WriteFile(path, []byte(table), 0o600))

	t.Setenv("ENVCTL_APP_ID", "com.example.envctl")
	t.Setenv("ENVCTL_STORE", "file")
	t.Setenv("ENVCTL_STORE_DIR", filepath.Join(dir, "store"))
	t.Setenv("ENVCTL_TABLE", path)
	t.Setenv("ENVCTL_DEFINITIONS", "")
	t.Setenv("ENVCTL_PRODUCTION", "false")
	t.Setenv("ENVCTL_PRODUCTION_MAP", "")
	t.Setenv("ENVCTL_LOG_LEVEL", "error")
	t.Setenv("ENVCTL_LOG_FORMAT", "text")
	t.Setenv("APP_ENV", "development")
}

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	err := run(context.Background(), args, &stdout, &stderr)
	return stdout.String(), err
}

func TestRun_SelectAndResolve(t *testing.T) {
	setup(t)

	out, err := runCLI(t, "current", "Quotes")
	require.NoError(t, err)
	assert.Equal(t, "acc\n", out)

	out, err = runCLI(t, "select", "Quotes", "prod")
	require.NoError(t, err)
	assert.Equal(t, "Quotes: acc -> prod\n", out)

	out, err = runCLI(t, "select", "Quotes", "prod")
	require.NoError(t, err)
	assert.Empty(t, out)

	out, err = runCLI(t, "url", "Quotes", "v1/latest")
	require.NoError(t, err)
	assert.Equal(t, "https://quotes.example.com/v1/latest\n", out)

	out, err = runCLI(t, "url", "Orders")
	require.NoError(t, err)
	assert.Equal(t, "https://orders.example.com/api/\n", out)
}

func TestRun_List(t *testing.T) {
	setup(t)

	out, err := runCLI(t, "list")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[0], "* acc")
	assert.Contains(t, lines[1], "  prod")
	assert.True(t, strings.HasPrefix(lines[2], "Orders"))
}

func TestRun_CustomEnvironments(t *testing.T) {
	setup(t)

	out, err := runCLI(t, "add", "Quotes", "local", "http://localhost:8080")
	require.NoError(t, err)
	assert.Equal(t, "Quotes|local|http://localhost:8080\n", out)

	_, err = runCLI(t, "select", "Quotes", "local")
	require.NoError(t, err)

	out, err = runCLI(t, "url", "Quotes", "health")
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8080/health\n", out)

	_, err = runCLI(t, "remove", "Quotes", "local")
	require.NoError(t, err)

	out, err = runCLI(t, "current", "Quotes")
	require.NoError(t, err)
	assert.Equal(t, "acc\n", out)
}

func TestRun_Production(t *testing.T) {
	setup(t)
	t.Setenv("ENVCTL_PRODUCTION_MAP", "Quotes:prod,Orders:prod")
	t.Setenv("APP_ENV", "production")

	out, err := runCLI(t, "current", "Quotes")
	require.NoError(t, err)
	assert.Equal(t, "prod\n", out)

	_, err = runCLI(t, "add", "Quotes", "dev", "http://localhost:8080")
	assert.ErrorIs(t, err, envmanager.ErrProductionMode)

	t.Setenv("ENVCTL_PRODUCTION_MAP", "Quotes:prod")
	_, err = runCLI(t, "current", "Quotes")
	assert.ErrorContains(t, err, "no production environment set for service 'Orders'")
}

func TestProductionFromEnv(t *testing.T) {
	t.Setenv("APP_ENV", "development")
	pred := productionFromEnv
	assert.False(t, pred())

	t.Setenv("APP_ENV", "production")
	assert.True(t, pred())
}

func TestRun_Errors(t *testing.T) {
	setup(t)

	_, err := runCLI(t)
	assert.ErrorIs(t, err, errUsage)

	_, err = runCLI(t, "select", "Quotes")
	assert.ErrorIs(t, err, errUsage)

	_, err = runCLI(t, "current", "Unknown")
	assert.ErrorIs(t, err, errUnknownAPI)

	_, err = runCLI(t, "select", "Quotes", "staging")
	assert.ErrorContains(t, err, "not declared")

	_, err = runCLI(t, "add", "Quotes", "local", "not a url")
	assert.Error(t, err)
}
