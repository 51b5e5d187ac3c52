package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"ms-restaurant/internal/auth"

	"github.com/joho/godotenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parseOutput(t *testing.T, out string) map[string]string {
	t.Helper()
	values, err := godotenv.Unmarshal(out)
	require.NoError(t, err)
	return values
}

func TestRunPrintsVerifiableHash(t *testing.T) {
	var stdout, stderr bytes.Buffer
	require.NoError(t, run("s3cret", "", 16, "", strings.NewReader(""), &stdout, &stderr))

	values := parseOutput(t, stdout.String())
	assert.True(t, auth.VerifyAdminPassword("s3cret", values["ADMIN_PASSWORD_SALT"], values["ADMIN_PASSWORD_HASH"]))
	assert.False(t, auth.VerifyAdminPassword("other", values["ADMIN_PASSWORD_SALT"], values["ADMIN_PASSWORD_HASH"]))
	assert.Empty(t, stderr.String())
}

func TestRunReadsPasswordFromArgThenStdin(t *testing.T) {
	var stdout bytes.Buffer
	require.NoError(t, run("", "from-arg", 8, "", strings.NewReader("ignored\n"), &stdout, &bytes.Buffer{}))
	values := parseOutput(t, stdout.String())
	assert.True(t, auth.VerifyAdminPassword("from-arg", values["ADMIN_PASSWORD_SALT"], values["ADMIN_PASSWORD_HASH"]))

	stdout.Reset()
	require.NoError(t, run("", "", 8, "", strings.NewReader("from-stdin\r\n"), &stdout, &bytes.Buffer{}))
	values = parseOutput(t, stdout.String())
	assert.True(t, auth.VerifyAdminPassword("from-stdin", values["ADMIN_PASSWORD_SALT"], values["ADMIN_PASSWORD_HASH"]))
}

func TestRunRejectsBadInput(t *testing.T) {
	err := run("", "", 16, "", strings.NewReader(""), &bytes.Buffer{}, &bytes.Buffer{})
	assert.ErrorContains(t, err, "password is required")

	err = run("pw", "", 4, "", strings.NewReader(""), &bytes.Buffer{}, &bytes.Buffer{})
	assert.ErrorContains(t, err, "between 8 and 1024")
}

func TestRunWritesEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env.local")
	require.NoError(t, os.WriteFile(path, []byte("PORT=4000\nADMIN_PASSWORD_SALT=old\n"), 0o600))

	var stdout, stderr bytes.Buffer
	require.NoError(t, run("pw", "", 16, path, strings.NewReader(""), &stdout, &stderr))
	assert.Contains(t, stderr.String(), "Updated "+path)

	written, err := godotenv.Read(path)
	require.NoError(t, err)
	printed := parseOutput(t, stdout.String())
	assert.Equal(t, "4000", written["PORT"])
	assert.Equal(t, printed["ADMIN_PASSWORD_SALT"], written["ADMIN_PASSWORD_SALT"])
	assert.Equal(t, printed["ADMIN_PASSWORD_HASH"], written["ADMIN_PASSWORD_HASH"])
}

func TestUpdateEnvFileCreatesMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "new.env")
	require.NoError(t, updateEnvFile(path, "c2FsdA==", "aGFzaA=="))

	written, err := godotenv.Read(path)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"ADMIN_PASSWORD_SALT": "c2FsdA==", "ADMIN_PASSWORD_HASH": "aGFzaA=="}, written)
}
