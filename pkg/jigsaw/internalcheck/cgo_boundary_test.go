package internalcheck

import (
	"fmt"
	"go/parser"
	"go/token"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"golang.org/x/tools/go/packages"
)

const (
	modulePath  = "github.com/meshkit/jigsaw-go"
	backendPath = modulePath + "/pkg/jigsaw/internal/backend"
)

// Files excluded by build constraints are checked too, so the cgo build of
// the backend is covered without a C toolchain.
func TestNativeImportsStayInBackend(t *testing.T) {
	cfg := &packages.Config{Mode: packages.NeedName | packages.NeedFiles}
	pkgs, err := packages.Load(cfg, modulePath+"/...")
	if err != nil {
		t.Fatalf("load packages: %v", err)
	}

	fset := token.NewFileSet()
	var findings []string
	sawBackend := false
	for _, pkg := range pkgs {
		if pkg.PkgPath == backendPath {
			sawBackend = true
			continue
		}
		files := append(append([]string(nil), pkg.GoFiles...), pkg.IgnoredFiles...)
		for _, path := range files {
			if filepath.Ext(path) != ".go" {
				continue
			}
			f, err := parser.ParseFile(fset, path, nil, parser.ImportsOnly)
			if err != nil {
				t.Fatalf("parse %s: %v", path, err)
			}
			for _, imp := range f.Imports {
				name, _ := strconv.Unquote(imp.Path.Value)
				if name == "C" || name == "unsafe" {
					findings = append(findings, fmt.Sprintf("%s: import %q outside %s",
						fset.Position(imp.Pos()), name, backendPath))
				}
			}
		}
	}

	if !sawBackend {
		t.Fatalf("package %s not found", backendPath)
	}
	if len(findings) > 0 {
		t.Fatalf("cgo boundary violation:\n%s", strings.Join(findings, "\n"))
	}
}
