// Copyright © 2024 The ELPS authors

package analysis

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
}

func TestScanWorkspace_Basic(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "rules.drl"), `package com.acme;

global java.util.List results;

function int twice(int n) {
    return n * 2;
}

declare Order
    amount : int
end

query "big orders"
    Order(amount > 100)
end

rule "Discount"
when
    $o : Order()
then
    results.add($o);
end
`)

	syms, err := ScanWorkspace(context.Background(), dir)
	require.NoError(t, err)

	kinds := make(map[string]SymbolKind)
	for _, s := range syms {
		kinds[s.Name] = s.Kind
		assert.Equal(t, "com.acme", s.Package)
		assert.Equal(t, filepath.Join(dir, "rules.drl"), s.File)
	}
	assert.Equal(t, map[string]SymbolKind{
		"results":    SymGlobal,
		"twice":      SymFunction,
		"Order":      SymType,
		"big orders": SymQuery,
		"Discount":   SymRule,
	}, kinds)
}

func TestScanWorkspace_SkipsHiddenAndOtherFiles(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.drl"), "rule \"A\"\nwhen\nthen\nend\n")
	writeFile(t, filepath.Join(dir, "sub", "b.drl"), "rule \"B\"\nwhen\nthen\nend\n")
	writeFile(t, filepath.Join(dir, ".git", "c.drl"), "rule \"C\"\nwhen\nthen\nend\n")
	writeFile(t, filepath.Join(dir, "node_modules", "d.drl"), "rule \"D\"\nwhen\nthen\nend\n")
	writeFile(t, filepath.Join(dir, "notes.txt"), "rule \"E\"\nwhen\nthen\nend\n")

	syms, err := ScanWorkspace(context.Background(), dir)
	require.NoError(t, err)

	var names []string
	for _, s := range syms {
		names = append(names, s.Name)
	}
	assert.ElementsMatch(t, []string{"A", "B"}, names)
}

func TestScanWorkspace_RecoversFromSyntaxErrors(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "broken.drl"), `rule "Broken"
when
    not(Person(
then
end

rule "Fine"
when
then
end
`)
	syms, err := ScanWorkspace(context.Background(), dir)
	require.NoError(t, err)
	var names []string
	for _, s := range syms {
		names = append(names, s.Name)
	}
	assert.Contains(t, names, "Fine")
}

func TestScanWorkspace_EmptyDir(t *testing.T) {
	syms, err := ScanWorkspace(context.Background(), t.TempDir())
	require.NoError(t, err)
	assert.Empty(t, syms)
}

func TestScanWorkspace_Canceled(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.drl"), "rule \"A\"\nwhen\nthen\nend\n")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := ScanWorkspace(ctx, dir)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestShouldSkipDir(t *testing.T) {
	assert.True(t, shouldSkipDir(".git"))
	assert.True(t, shouldSkipDir("node_modules"))
	assert.False(t, shouldSkipDir("."))
	assert.False(t, shouldSkipDir("rules"))
}

func TestAnalyzeFile(t *testing.T) {
	cfg := &Config{
		ExtraGlobals: []ExternalSymbol{
			{Name: "Discount", Kind: SymRule, File: "other.drl"},
		},
	}
	parsed, r := AnalyzeFile([]byte("rule \"Discount\"\nwhen\nthen\nend\n"), "rules.drl", cfg)
	require.NotNil(t, parsed)
	assert.Empty(t, parsed.Errors)
	require.Len(t, r.Duplicates, 1)
	assert.Equal(t, "other.drl", r.Duplicates[0].First.File)
}
