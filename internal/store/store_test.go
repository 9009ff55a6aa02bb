package store

import (
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(filepath.Join(t.TempDir(), "theremin.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestPresetRepository_CRUD(t *testing.T) {
	s := testStore(t)
	repo := s.Presets()

	p := &Preset{
		ID:     uuid.NewString(),
		Name:   "chipmunk",
		Speed:  1.8,
		Pitch:  7,
		Volume: 0.6,
	}
	require.NoError(t, repo.Create(p))

	got, err := repo.GetByID(p.ID)
	require.NoError(t, err)
	assert.Equal(t, "chipmunk", got.Name)
	assert.Equal(t, 1.8, got.Speed)
	assert.Equal(t, 7.0, got.Pitch)
	assert.Equal(t, 0.6, got.Volume)

	byName, err := repo.GetByName("chipmunk")
	require.NoError(t, err)
	assert.Equal(t, p.ID, byName.ID)

	p.Speed = 0.75
	p.Name = "slowed"
	require.NoError(t, repo.Update(p))

	got, err = repo.GetByID(p.ID)
	require.NoError(t, err)
	assert.Equal(t, "slowed", got.Name)
	assert.Equal(t, 0.75, got.Speed)

	list, err := repo.List()
	require.NoError(t, err)
	assert.Len(t, list, 1)

	require.NoError(t, repo.Delete(p.ID))
	_, err = repo.GetByID(p.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPresetRepository_NotFound(t *testing.T) {
	s := testStore(t)
	repo := s.Presets()

	_, err := repo.GetByID("missing")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = repo.GetByName("missing")
	assert.ErrorIs(t, err, ErrNotFound)

	err = repo.Update(&Preset{ID: "missing"})
	assert.ErrorIs(t, err, ErrNotFound)

	err = repo.Delete("missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPresetRepository_UniqueName(t *testing.T) {
	s := testStore(t)
	repo := s.Presets()

	require.NoError(t, repo.Create(&Preset{ID: uuid.NewString(), Name: "dup"}))
	err := repo.Create(&Preset{ID: uuid.NewString(), Name: "dup"})
	assert.Error(t, err)
}

func TestSettingsRepository(t *testing.T) {
	s := testStore(t)
	repo := s.Settings()

	_, err := repo.Get(SettingVolume)
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, repo.Set(SettingVolume, "0.5"))
	value, err := repo.Get(SettingVolume)
	require.NoError(t, err)
	assert.Equal(t, "0.5", value)

	// Set replaces the existing value
	require.NoError(t, repo.Set(SettingVolume, "0.8"))
	value, err = repo.Get(SettingVolume)
	require.NoError(t, err)
	assert.Equal(t, "0.8", value)
}

func TestSettingsRepository_Float(t *testing.T) {
	s := testStore(t)
	repo := s.Settings()

	assert.Equal(t, 1.0, repo.GetFloat(SettingVolume, 1.0))

	require.NoError(t, repo.SetFloat(SettingVolume, 0.35))
	assert.Equal(t, 0.35, repo.GetFloat(SettingVolume, 1.0))

	// Malformed value falls back to the default
	require.NoError(t, repo.Set(SettingCameraIndex, "not-a-number"))
	assert.Equal(t, 2.0, repo.GetFloat(SettingCameraIndex, 2.0))
}
