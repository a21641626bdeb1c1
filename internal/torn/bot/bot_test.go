package bot

import (
	"context"
	"path/filepath"
	"testing"

	"tornbot/config"
	"tornbot/pkg/storage/jsonfile"
	"tornbot/pkg/storage/memory"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// go test -v --run TestOpenStore
func TestOpenStore(t *testing.T) {
	dir := t.TempDir()

	s, check, err := OpenStore(config.StorageConfig{
		Driver:   config.StorageJSON,
		KeysFile: filepath.Join(dir, "user_keys.json"),
		TOSFile:  filepath.Join(dir, "accepted_tos.json"),
	}, config.PostgresConfig{}, zap.NewNop())
	require.NoError(t, err)
	assert.IsType(t, &jsonfile.Store{}, s)
	assert.Nil(t, check)
	require.NoError(t, s.SetKey(context.Background(), "1", "k"))
	require.NoError(t, s.Close())

	s, _, err = OpenStore(config.StorageConfig{Driver: config.StorageMemory}, config.PostgresConfig{}, zap.NewNop())
	require.NoError(t, err)
	assert.IsType(t, &memory.Store{}, s)

	_, _, err = OpenStore(config.StorageConfig{Driver: "redis"}, config.PostgresConfig{}, zap.NewNop())
	assert.ErrorContains(t, err, "unknown storage driver")
}
