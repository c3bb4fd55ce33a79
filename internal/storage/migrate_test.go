package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestImportJSON(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	// Seed the document store.
	src, err := OpenJSON(dir, zerolog.Nop())
	require.NoError(t, err)
	project := mustCreateProject(t, src, "Migrated")
	created := mustCreateRequirement(t, src, project.ID, "auth", "security")
	require.NoError(t, src.Close())

	dst, err := OpenSQLite(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { _ = dst.Close() })

	result, err := dst.ImportJSON(ctx, dir, true)
	require.NoError(t, err)
	assert.Equal(t, ImportResult{Projects: 1, Requirements: 1, Tags: 2}, result)

	// Ids and timestamps survive the move.
	gotProject, err := dst.GetProjectByID(ctx, project.ID)
	require.NoError(t, err)
	assert.Equal(t, project, gotProject)

	listed, err := dst.ListRequirementsByProject(ctx, project.ID)
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, created.ID, listed[0].ID)
	assert.Equal(t, created.CreatedAt, listed[0].CreatedAt)
	assert.ElementsMatch(t, []string{"auth", "security"}, listed[0].Tags)

	// Source files were archived.
	_, err = os.Stat(filepath.Join(dir, projectsFile))
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(filepath.Join(dir, projectsFile+".migrated"))
	assert.NoError(t, err)
}

func TestImportJSONMissingFiles(t *testing.T) {
	dst, err := OpenSQLite(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { _ = dst.Close() })

	result, err := dst.ImportJSON(context.Background(), t.TempDir(), false)
	require.NoError(t, err)
	assert.Equal(t, ImportResult{}, result)
}
