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

func TestJSONStoreInitializesFiles(t *testing.T) {
	dir := t.TempDir()
	_, err := OpenJSON(dir, zerolog.Nop())
	require.NoError(t, err)

	for _, name := range []string{projectsFile, requirementsFile} {
		data, err := os.ReadFile(filepath.Join(dir, name))
		require.NoError(t, err)
		assert.JSONEq(t, "[]", string(data))
	}
}

func TestJSONStorePersistsAcrossReopen(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	first, err := OpenJSON(dir, zerolog.Nop())
	require.NoError(t, err)
	project := mustCreateProject(t, first, "Persistent")
	created := mustCreateRequirement(t, first, project.ID, "auth")
	require.NoError(t, first.Close())

	second, err := OpenJSON(dir, zerolog.Nop())
	require.NoError(t, err)

	gotProject, err := second.GetProjectByID(ctx, project.ID)
	require.NoError(t, err)
	assert.Equal(t, project, gotProject)

	listed, err := second.ListRequirements(ctx)
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, created, listed[0])
}

func TestJSONStoreRejectsCorruptFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, projectsFile), []byte("{not json"), 0o644))

	_, err := OpenJSON(dir, zerolog.Nop())
	assert.Error(t, err)
}

func TestJSONStoreCascadeRemovesRequirementsFromDisk(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	s, err := OpenJSON(dir, zerolog.Nop())
	require.NoError(t, err)

	project := mustCreateProject(t, s, "Doomed")
	mustCreateRequirement(t, s, project.ID, "auth")

	deleted, err := s.DeleteProject(ctx, project.ID)
	require.NoError(t, err)
	require.True(t, deleted)

	// Both documents reflect the cascade after reopening.
	reopened, err := OpenJSON(dir, zerolog.Nop())
	require.NoError(t, err)
	projects, err := reopened.ListProjects(ctx)
	require.NoError(t, err)
	assert.Empty(t, projects)
	requirements, err := reopened.ListRequirements(ctx)
	require.NoError(t, err)
	assert.Empty(t, requirements)
}
