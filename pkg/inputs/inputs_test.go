package inputs

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, root, rel, content string) {
	t.Helper()
	path := filepath.Join(root, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func paths(docs []Document) []string {
	var out []string
	for _, d := range docs {
		out = append(out, d.Path)
	}
	return out
}

func TestDiscoverFindsDocumentsSorted(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "notes/brief.md", "# Brief")
	writeFile(t, root, "README.md", "# Readme")
	writeFile(t, root, "interview.txt", "raw transcript")
	writeFile(t, root, "main.go", "package main") // not a document

	docs, err := Discover(root)
	require.NoError(t, err)
	assert.Equal(t, []string{"README.md", "interview.txt", "notes/brief.md"}, paths(docs))
}

func TestDiscoverHonorsGitignore(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, ".gitignore", "drafts/\nscratch.md\n")
	writeFile(t, root, "keep.md", "kept")
	writeFile(t, root, "scratch.md", "ignored")
	writeFile(t, root, "drafts/wip.md", "ignored too")

	docs, err := Discover(root)
	require.NoError(t, err)
	assert.Equal(t, []string{"keep.md"}, paths(docs))
}

func TestDiscoverSkipsHiddenDirsAndFiles(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, ".prdpilot/cache.md", "internal")
	writeFile(t, root, ".hidden.md", "hidden file")
	writeFile(t, root, "visible.md", "ok")

	docs, err := Discover(root)
	require.NoError(t, err)
	assert.Equal(t, []string{"visible.md"}, paths(docs))
}

func TestDiscoverEmptyTree(t *testing.T) {
	docs, err := Discover(t.TempDir())
	require.NoError(t, err)
	assert.Empty(t, docs)
}
