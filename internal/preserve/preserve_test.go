package preserve

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0644))
}

func readDirNames(t *testing.T, dir string) map[string]string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)

	contents := make(map[string]string)
	for _, entry := range entries {
		data, err := os.ReadFile(filepath.Join(dir, entry.Name()))
		require.NoError(t, err)
		contents[entry.Name()] = string(data)
	}
	return contents
}

func TestPreserve_CopiesAndSkips(t *testing.T) {
	installDir := t.TempDir()
	backupDir := filepath.Join(t.TempDir(), "backup")

	writeFile(t, installDir, "app.db", "database")
	writeFile(t, installDir, "settings.db", "settings")

	report, err := Preserve(installDir, backupDir, []string{"app.db", "settings.db", "external.db"})
	require.NoError(t, err)

	require.Equal(t, []string{"app.db", "settings.db"}, report.Copied)
	require.Equal(t, []string{"external.db"}, report.Skipped)

	backedUp := readDirNames(t, backupDir)
	require.Equal(t, map[string]string{
		"app.db":      "database",
		"settings.db": "settings",
	}, backedUp)
}

func TestPreserve_Idempotent(t *testing.T) {
	installDir := t.TempDir()
	backupDir := filepath.Join(t.TempDir(), "backup")

	writeFile(t, installDir, "app.db", "database")

	first, err := Preserve(installDir, backupDir, []string{"app.db", "missing.db"})
	require.NoError(t, err)
	after1 := readDirNames(t, backupDir)

	second, err := Preserve(installDir, backupDir, []string{"app.db", "missing.db"})
	require.NoError(t, err)
	after2 := readDirNames(t, backupDir)

	require.Equal(t, first, second)
	require.Equal(t, after1, after2)
}

func TestPreserve_OverwritesPriorBackup(t *testing.T) {
	installDir := t.TempDir()
	backupDir := t.TempDir()

	writeFile(t, backupDir, "app.db", "stale backup")
	writeFile(t, installDir, "app.db", "fresh state")

	_, err := Preserve(installDir, backupDir, []string{"app.db"})
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(backupDir, "app.db"))
	require.NoError(t, err)
	require.Equal(t, "fresh state", string(data))
}

func TestPreserve_AllMissingIsNotAnError(t *testing.T) {
	installDir := t.TempDir()
	backupDir := filepath.Join(t.TempDir(), "backup")

	report, err := Preserve(installDir, backupDir, []string{"a.db", "b.db"})
	require.NoError(t, err)
	require.Empty(t, report.Copied)
	require.Equal(t, []string{"a.db", "b.db"}, report.Skipped)

	// the backup dir is still created
	info, err := os.Stat(backupDir)
	require.NoError(t, err)
	require.True(t, info.IsDir())
}
