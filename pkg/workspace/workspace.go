// Package workspace locates the HTML templates of a project directory so the
// CLI can offer them as editing targets.
package workspace

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	ignore "github.com/sabhiram/go-gitignore"
)

// Template is one discovered editing target.
type Template struct {
	Path string // relative to the project root
	Size int64
}

// templateExtensions are the files offered as editing targets.
var templateExtensions = map[string]bool{
	".html": true,
	".htm":  true,
}

// skippedDirs are never descended into regardless of ignore rules.
var skippedDirs = map[string]bool{
	".git":         true,
	".pagewright":  true,
	"node_modules": true,
	"vendor":       true,
	"dist":         true,
	"build":        true,
}

// DiscoverTemplates walks the project root for HTML templates, honoring
// .gitignore and .pagewright/.ignore rules. Results come back sorted by path.
func DiscoverTemplates(rootDir string) ([]Template, error) {
	rules := getIgnoreRules(rootDir)

	var templates []Template
	err := filepath.Walk(rootDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil // unreadable entries are skipped, not fatal
		}

		rel, relErr := filepath.Rel(rootDir, path)
		if relErr != nil || rel == "." {
			return nil
		}

		if info.IsDir() {
			if skippedDirs[info.Name()] {
				return filepath.SkipDir
			}
			if rules != nil && rules.MatchesPath(rel+"/") {
				return filepath.SkipDir
			}
			return nil
		}

		if !templateExtensions[strings.ToLower(filepath.Ext(path))] {
			return nil
		}
		if rules != nil && rules.MatchesPath(rel) {
			return nil
		}

		templates = append(templates, Template{Path: rel, Size: info.Size()})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan %s: %w", rootDir, err)
	}

	sort.Slice(templates, func(i, j int) bool { return templates[i].Path < templates[j].Path })
	return templates, nil
}

// getIgnoreRules combines .gitignore and .pagewright/.ignore into one rule
// set. Nil when neither file exists.
func getIgnoreRules(rootDir string) *ignore.GitIgnore {
	var allRules []string

	if rules, err := readIgnoreFile(filepath.Join(rootDir, ".gitignore")); err == nil {
		allRules = append(allRules, rules...)
	}
	if rules, err := readIgnoreFile(filepath.Join(rootDir, ".pagewright", ".ignore")); err == nil {
		allRules = append(allRules, rules...)
	}

	if len(allRules) == 0 {
		return nil
	}
	return ignore.CompileIgnoreLines(allRules...)
}

// readIgnoreFile reads a single ignore file and returns its lines.
func readIgnoreFile(path string) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var lines []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	return lines, scanner.Err()
}
