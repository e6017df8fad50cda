package domain_test

import (
	"go/parser"
	"go/token"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const modulePath = "github.com/tauri-wasm/tauri-go"

// TestDomainHasNoExternalDependencies verifies that the domain layer
// does not import from application, infrastructure or adapter packages.
// This is a critical hexagonal architecture requirement.
func TestDomainHasNoExternalDependencies(t *testing.T) {
	domainPath := "../domain"
	fset := token.NewFileSet()

	for _, pkg := range []string{"entities", "errors", "ports"} {
		files, err := filepath.Glob(filepath.Join(domainPath, pkg, "*.go"))
		require.NoError(t, err, "failed to glob %s files", pkg)

		for _, file := range files {
			// Test files can import testing and testify
			if strings.HasSuffix(file, "_test.go") {
				continue
			}
			checkFileImports(t, fset, file, pkg)
		}
	}
}

func checkFileImports(t *testing.T, fset *token.FileSet, filename, pkg string) {
	t.Helper()

	f, err := parser.ParseFile(fset, filename, nil, parser.ImportsOnly)
	require.NoError(t, err, "failed to parse %s", filename)

	forbiddenPackages := []string{
		modulePath + "/application",
		modulePath + "/infrastructure",
		modulePath + "/hostkit",
		modulePath + "/host",
		modulePath + "/log",
		modulePath + "/internal",
	}

	for _, imp := range f.Imports {
		importPath := strings.Trim(imp.Path.Value, `"`)

		for _, forbidden := range forbiddenPackages {
			assert.False(t, importPath == forbidden || strings.HasPrefix(importPath, forbidden+"/"),
				"domain/%s package (%s) must not import from %s (violates hexagonal architecture)",
				pkg, filepath.Base(filename), forbidden)
		}

		// Domain can only import:
		// - Standard library
		// - Other domain packages
		if strings.HasPrefix(importPath, modulePath+"/") {
			assert.True(t,
				strings.HasPrefix(importPath, modulePath+"/domain/"),
				"domain/%s package (%s) imports non-domain package: %s",
				pkg, filepath.Base(filename), importPath)
		}
		assert.NotEqual(t, "syscall/js", importPath,
			"domain/%s package (%s) must stay target independent", pkg, filepath.Base(filename))
	}
}

// TestDomainEntitiesPortsErrorsExist verifies that required domain packages exist
func TestDomainEntitiesPortsErrorsExist(t *testing.T) {
	domainPath := "../domain"

	// Check that subdirectories exist
	requiredDirs := []string{"entities", "errors", "ports"}

	for _, dir := range requiredDirs {
		fullPath := filepath.Join(domainPath, dir)
		pattern := filepath.Join(fullPath, "*.go")
		files, err := filepath.Glob(pattern)

		require.NoError(t, err, "failed to check %s directory", dir)
		assert.NotEmpty(t, files, "domain/%s should contain Go files", dir)
	}
}
