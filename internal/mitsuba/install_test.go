package mitsuba_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mitsuba-export/internal/mitsuba"
)

func TestLocate(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "dist", "python"), 0755))

	inst, err := mitsuba.Locate(dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "dist"), inst.Dist)
	assert.Equal(t, filepath.Join(dir, "dist", "python"), inst.Python)
	assert.Equal(t, mitsuba.DefaultVersion, inst.Version)
	assert.Equal(t, "scalar_rgb", inst.Variant)
}

func TestLocateMissing(t *testing.T) {
	_, err := mitsuba.Locate("")
	assert.Error(t, err)

	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "dist"), 0755))
	_, err = mitsuba.Locate(dir)
	assert.ErrorContains(t, err, "python")
}
