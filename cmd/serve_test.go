package cmd

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fzft/bucketmap/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), config.CONFIG_NAME)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestServeCommand_Usage(t *testing.T) {
	cmd := serve()
	assert.Equal(t, "serve", cmd.Use)
	assert.Equal(t, "Start the server", cmd.Short)

	addr := cmd.Flags().Lookup("addr")
	require.NotNil(t, addr)
	assert.Equal(t, config.DEFAULT_ADDR, addr.DefValue)
	assert.NotNil(t, cmd.Flags().ShorthandLookup("c"))
}

func TestServeCommand_ContextCancellation(t *testing.T) {
	path := writeConfig(t, "[log]\nlevel = \"error\"\n")
	cmd := serve()
	cmd.SetArgs([]string{"--config", path, "--addr", "127.0.0.1:0"})
	cmd.SetOut(new(bytes.Buffer))
	cmd.SetErr(new(bytes.Buffer))

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	assert.NoError(t, cmd.ExecuteContext(ctx))
}

func TestServeCommand_InvalidConfig(t *testing.T) {
	path := writeConfig(t, "[table]\nbuckets = 0\n")
	cmd := serve()
	cmd.SetArgs([]string{"--config", path})
	cmd.SetOut(new(bytes.Buffer))
	cmd.SetErr(new(bytes.Buffer))

	err := cmd.Execute()
	assert.ErrorIs(t, err, config.ErrInvalidConfig)
}

func TestLoadConfigAddrOverride(t *testing.T) {
	path := writeConfig(t, "[table]\nhasher = \"charsum\"\nmax_keys = 3\n")
	cmd := serve()
	require.NoError(t, cmd.ParseFlags([]string{"--config", path, "--addr", "0.0.0.0:7000"}))

	conf, err := loadConfig(cmd)
	require.NoError(t, err)
	assert.Equal(t, "0.0.0.0:7000", conf.Server.Addr)

	keyspace, err := newKeyspace(conf)
	require.NoError(t, err)
	for _, k := range []string{"a", "b", "c", "d"} {
		keyspace.SetKey(k, []byte(k))
	}
	assert.Equal(t, 3, keyspace.DBSize())
	assert.Equal(t, int64(1), keyspace.EvictedKeys())
}
