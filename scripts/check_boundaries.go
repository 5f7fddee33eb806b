package main

import (
	"fmt"
	"go/parser"
	"go/token"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

const modulePath = "ijaism"

type violation struct {
	File   string
	Line   int
	Import string
	Rule   string
}

// layerAllowlist names, per layer, the in-module prefixes a file may import
// relative to its own service. Layers not listed are unrestricted.
var layerAllowlist = map[string][]string{
	"domain":      {"/domain"},
	"ports":       {"/domain", "/ports"},
	"application": {"/application", "/domain", "/ports"},
}

func main() {
	root := "contexts"
	if len(os.Args) > 1 {
		root = os.Args[1]
	}
	violations := collectViolations(root)
	if len(violations) == 0 {
		fmt.Println("boundary checks passed")
		return
	}

	sort.Slice(violations, func(i, j int) bool {
		if violations[i].File == violations[j].File {
			if violations[i].Line == violations[j].Line {
				return violations[i].Import < violations[j].Import
			}
			return violations[i].Line < violations[j].Line
		}
		return violations[i].File < violations[j].File
	})

	fmt.Println("boundary violations found:")
	for _, v := range violations {
		fmt.Printf("- %s:%d imports %q (%s)\n", v.File, v.Line, v.Import, v.Rule)
	}
	os.Exit(1)
}

func collectViolations(root string) []violation {
	var violations []violation

	_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() || !strings.HasSuffix(path, ".go") || strings.HasSuffix(path, "_test.go") {
			return nil
		}

		rel, relErr := filepath.Rel(filepath.Dir(filepath.Clean(root)), path)
		if relErr != nil {
			return nil
		}
		parts := strings.Split(filepath.ToSlash(rel), "/")
		if len(parts) < 4 || parts[0] != "contexts" {
			return nil
		}

		servicePrefix := fmt.Sprintf("%s/contexts/%s/%s", modulePath, parts[1], parts[2])
		violations = append(violations, validateFile(path, filepath.ToSlash(rel), parts[3], servicePrefix)...)
		return nil
	})

	return violations
}

func validateFile(path string, normalizedPath string, layer string, servicePrefix string) []violation {
	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, path, nil, parser.ImportsOnly)
	if err != nil {
		return []violation{{File: normalizedPath, Line: 1, Rule: "file must parse"}}
	}

	var violations []violation
	for _, imp := range file.Imports {
		importPath := strings.Trim(imp.Path.Value, "\"")
		line := fset.Position(imp.Pos()).Line
		violations = append(violations, validateImport(normalizedPath, line, layer, importPath, servicePrefix)...)
	}
	return violations
}

func validateImport(file string, line int, layer string, importPath string, servicePrefix string) []violation {
	var violations []violation
	add := func(rule string) {
		violations = append(violations, violation{File: file, Line: line, Import: importPath, Rule: rule})
	}

	if hasPrefix(importPath, modulePath+"/contexts") && !hasPrefix(importPath, servicePrefix) {
		add("cross-module imports are forbidden")
	}

	allowed, restricted := layerAllowlist[layer]
	if !restricted {
		return violations
	}
	if strings.Contains(importPath, "/adapters/") {
		add(layer + " must not import adapters")
	}
	if hasPrefix(importPath, modulePath+"/internal") {
		add(layer + " must not import runtime infrastructure")
	}

	prefixes := make([]string, 0, len(allowed)+1)
	for _, suffix := range allowed {
		prefixes = append(prefixes, servicePrefix+suffix)
	}
	if layer != "domain" {
		prefixes = append(prefixes, modulePath+"/contracts")
	}
	if !isStdlib(importPath) && !isAllowed(importPath, prefixes) {
		add(layer + " import is outside explicit allowlist")
	}
	return violations
}

func hasPrefix(path string, prefix string) bool {
	return path == prefix || strings.HasPrefix(path, prefix+"/")
}

func isAllowed(importPath string, allowedPrefixes []string) bool {
	for _, p := range allowedPrefixes {
		if hasPrefix(importPath, p) {
			return true
		}
	}
	return false
}

// Standard library paths have no dot in their first element.
func isStdlib(importPath string) bool {
	first, _, _ := strings.Cut(importPath, "/")
	return !strings.Contains(first, ".") && first != modulePath
}
