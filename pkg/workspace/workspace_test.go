package workspace

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

func paths(templates []Template) []string {
	out := make([]string, len(templates))
	for i, tpl := range templates {
		out[i] = filepath.ToSlash(tpl.Path)
	}
	return out
}

func TestDiscoverTemplatesFindsHTMLOnly(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "index.html", "<html></html>")
	writeFile(t, root, "pages/about.htm", "<html></html>")
	writeFile(t, root, "styles.css", "body{}")
	writeFile(t, root, "app.js", "console.log(1)")

	templates, err := DiscoverTemplates(root)
	require.NoError(t, err)
	assert.Equal(t, []string{"index.html", "pages/about.htm"}, paths(templates))
}

func TestDiscoverTemplatesHonorsIgnoreRules(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "index.html", "<html></html>")
	writeFile(t, root, "drafts/wip.html", "<html></html>")
	writeFile(t, root, "generated.html", "<html></html>")
	writeFile(t, root, ".gitignore", "drafts/\n")
	writeFile(t, root, ".pagewright/.ignore", "generated.html\n")

	templates, err := DiscoverTemplates(root)
	require.NoError(t, err)
	assert.Equal(t, []string{"index.html"}, paths(templates))
}

func TestDiscoverTemplatesSkipsToolingDirs(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "index.html", "<html></html>")
	writeFile(t, root, "node_modules/pkg/index.html", "<html></html>")
	writeFile(t, root, "dist/index.html", "<html></html>")

	templates, err := DiscoverTemplates(root)
	require.NoError(t, err)
	assert.Equal(t, []string{"index.html"}, paths(templates))
}
