package game

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultFormations(t *testing.T) {
	fs, err := DefaultFormations()
	require.NoError(t, err)
	assert.Equal(t, []string{"4-3-3", "4-4-2", "legacy"}, fs.Names())

	legacy, err := fs.Get(DefaultFormation)
	require.NoError(t, err)
	require.Len(t, legacy.Slots, 11)
	assert.Equal(t, RoleGoalkeeper, legacy.RoleFor(2))
	assert.Equal(t, RoleDefender, legacy.RoleFor(3))
	assert.Equal(t, RoleMidfielder, legacy.RoleFor(8))
	assert.Equal(t, RoleAttacker, legacy.RoleFor(9))
	assert.Equal(t, RoleAttacker, legacy.RoleFor(30), "past the end reuses the last slot")

	_, err = fs.Get("1-1-8")
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestLoadFormations(t *testing.T) {
	dir := t.TempDir()

	t.Run("overlay", func(t *testing.T) {
		path := filepath.Join(dir, "extra.yaml")
		require.NoError(t, os.WriteFile(path, []byte(`
formations:
  "3-5-2":
    - goalkeeper
    - defender
    - midfielder
    - attacker
`), 0644))

		fs, err := LoadFormations(path)
		require.NoError(t, err)
		f, err := fs.Get("3-5-2")
		require.NoError(t, err)
		assert.Equal(t, []Role{RoleGoalkeeper, RoleDefender, RoleMidfielder, RoleAttacker}, f.Slots)
		_, err = fs.Get(DefaultFormation)
		assert.NoError(t, err, "embedded tables stay available")
	})

	t.Run("unknown role", func(t *testing.T) {
		path := filepath.Join(dir, "bad.yaml")
		require.NoError(t, os.WriteFile(path, []byte("formations:\n  odd: [sweeper]\n"), 0644))

		_, err := LoadFormations(path)
		assert.Error(t, err)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := LoadFormations(filepath.Join(dir, "nope.yaml"))
		assert.Error(t, err)
	})

	t.Run("empty path", func(t *testing.T) {
		fs, err := LoadFormations("")
		require.NoError(t, err)
		assert.Len(t, fs, 3)
	})
}

func TestFormationWithoutSlots(t *testing.T) {
	assert.Equal(t, RoleMidfielder, Formation{}.RoleFor(0))
}
