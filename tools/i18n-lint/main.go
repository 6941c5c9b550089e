// Copyright (c) 2026 ToeiRei
// AllSQLAdmin - database credential vault and connection broker
// This source code is licensed under the MIT license found in the LICENSE file.

// i18n-lint checks the locale files against the message ids used in the Go
// sources. It fails when an id is used but missing from a locale, and warns
// about ids no source file uses.
//
// Usage (from the repository root):
//
//	go run ./tools/i18n-lint
package main

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	localesDir    = "internal/i18n/locales"
	primaryLocale = "en.yaml"
)

// usedKeyRe matches i18n.T("some.id", ...).
var usedKeyRe = regexp.MustCompile(`i18n\.T\("([^"]+)"`)

// Report is the outcome of one lint run.
type Report struct {
	// Missing maps a locale file name to the ids it lacks.
	Missing map[string][]string
	// Orphaned lists ids of the primary locale no source file uses.
	Orphaned []string
}

// Failed reports whether the run found blocking problems.
func (r Report) Failed() bool {
	for _, ids := range r.Missing {
		if len(ids) > 0 {
			return true
		}
	}
	return false
}

func main() {
	r, err := lint(".", localesDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "i18n-lint: %v\n", err)
		os.Exit(2)
	}
	files := make([]string, 0, len(r.Missing))
	for f := range r.Missing {
		files = append(files, f)
	}
	sort.Strings(files)
	for _, f := range files {
		for _, id := range r.Missing[f] {
			fmt.Printf("missing  %s: %s\n", f, id)
		}
	}
	for _, id := range r.Orphaned {
		fmt.Printf("orphaned %s\n", id)
	}
	if r.Failed() {
		os.Exit(1)
	}
}

// lint compares the ids used under root with every locale in dir.
func lint(root, dir string) (Report, error) {
	used, err := findUsedKeys(root)
	if err != nil {
		return Report{}, err
	}
	locales, err := filepath.Glob(filepath.Join(dir, "*.yaml"))
	if err != nil {
		return Report{}, err
	}
	if len(locales) == 0 {
		return Report{}, fmt.Errorf("no locale files in %s", dir)
	}

	r := Report{Missing: map[string][]string{}}
	for _, path := range locales {
		keys, err := loadKeysFromLocale(path)
		if err != nil {
			return Report{}, fmt.Errorf("%s: %w", path, err)
		}
		name := filepath.Base(path)
		var missing []string
		for id := range used {
			if _, ok := keys[id]; !ok {
				missing = append(missing, id)
			}
		}
		sort.Strings(missing)
		r.Missing[name] = missing

		if name == primaryLocale {
			for id := range keys {
				if _, ok := used[id]; !ok {
					r.Orphaned = append(r.Orphaned, id)
				}
			}
			sort.Strings(r.Orphaned)
		}
	}
	return r, nil
}

// findUsedKeys scans non-test .go files under root, skipping tools and
// hidden or underscore directories.
func findUsedKeys(root string) (map[string]struct{}, error) {
	keys := make(map[string]struct{})
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			name := d.Name()
			if path != root && (name == "tools" || strings.HasPrefix(name, ".") || strings.HasPrefix(name, "_")) {
				return filepath.SkipDir
			}
			return nil
		}
		if !strings.HasSuffix(path, ".go") || strings.HasSuffix(path, "_test.go") {
			return nil
		}
		content, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		for _, m := range usedKeyRe.FindAllStringSubmatch(string(content), -1) {
			keys[m[1]] = struct{}{}
		}
		return nil
	})
	return keys, err
}

// loadKeysFromLocale reads a yaml locale and returns its flattened ids.
func loadKeysFromLocale(path string) (map[string]struct{}, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var data map[string]any
	if err := yaml.Unmarshal(content, &data); err != nil {
		return nil, err
	}
	keys := make(map[string]struct{})
	flatten("", data, keys)
	return keys, nil
}

func flatten(prefix string, node any, keys map[string]struct{}) {
	m, ok := node.(map[string]any)
	if !ok {
		if prefix != "" {
			keys[prefix] = struct{}{}
		}
		return
	}
	for k, v := range m {
		p := k
		if prefix != "" {
			p = prefix + "." + k
		}
		flatten(p, v, keys)
	}
}
