package commander

import (
	"encoding/base64"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPersistResultWritesCanonicalAndAuditFiles(t *testing.T) {
	dir := t.TempDir()
	b64 := base64.StdEncoding.EncodeToString([]byte("PASS\nEND ./run.sh\n"))

	require.NoError(t, persistResult(dir, "alice", b64))

	canonical, err := os.ReadFile(filepath.Join(dir, "alice.txt"))
	require.NoError(t, err)
	assert.Equal(t, "PASS\nEND ./run.sh\n", string(canonical))

	_, err = os.Stat(filepath.Join(dir, "alice.txt.zst"))
	assert.NoError(t, err)
}

func TestPersistResultRejectsInvalidBase64(t *testing.T) {
	dir := t.TempDir()
	err := persistResult(dir, "bob", "not-valid-base64!!")
	assert.Error(t, err)
}

func TestPersistResultCreatesResultsDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "results")
	b64 := base64.StdEncoding.EncodeToString([]byte("ok"))

	require.NoError(t, persistResult(dir, "carol", b64))

	_, err := os.Stat(filepath.Join(dir, "carol.txt"))
	assert.NoError(t, err)
}
