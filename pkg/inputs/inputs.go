// Package inputs discovers candidate source documents on disk: the files
// a user would feed into the pipeline's input-processing stage. Discovery
// honors .gitignore so build artifacts never show up as documents.
package inputs

import (
	"bufio"
	"os"
	"path/filepath"
	"sort"
	"strings"

	ignore "github.com/sabhiram/go-gitignore"
)

// documentExtensions are the file types treated as source documents.
var documentExtensions = map[string]bool{
	".md":       true,
	".markdown": true,
	".txt":      true,
	".rst":      true,
	".adoc":     true,
}

// Document is one discovered source file.
type Document struct {
	Path string
	Size int64
}

// ignoreRules reads .gitignore and .prdpilot/.ignore under rootDir.
func ignoreRules(rootDir string) *ignore.GitIgnore {
	var allRules []string

	for _, name := range []string{
		filepath.Join(rootDir, ".gitignore"),
		filepath.Join(rootDir, ".prdpilot", ".ignore"),
	} {
		if rules, err := readIgnoreFile(name); err == nil {
			allRules = append(allRules, rules...)
		}
	}

	if len(allRules) == 0 {
		return nil
	}
	return ignore.CompileIgnoreLines(allRules...)
}

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

// Discover walks rootDir and returns the source documents under it,
// sorted by path. Hidden directories and gitignored paths are skipped.
func Discover(rootDir string) ([]Document, error) {
	rules := ignoreRules(rootDir)

	var docs []Document
	err := filepath.Walk(rootDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		rel, relErr := filepath.Rel(rootDir, path)
		if relErr != nil || rel == "." {
			return nil
		}

		if info.IsDir() {
			if strings.HasPrefix(info.Name(), ".") {
				return filepath.SkipDir
			}
			if rules != nil && rules.MatchesPath(rel+"/") {
				return filepath.SkipDir
			}
			return nil
		}

		if strings.HasPrefix(info.Name(), ".") {
			return nil
		}
		if !documentExtensions[strings.ToLower(filepath.Ext(path))] {
			return nil
		}
		if rules != nil && rules.MatchesPath(rel) {
			return nil
		}

		docs = append(docs, Document{Path: rel, Size: info.Size()})
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(docs, func(i, j int) bool { return docs[i].Path < docs[j].Path })
	return docs, nil
}
