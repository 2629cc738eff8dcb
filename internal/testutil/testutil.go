// Package testutil builds small Czech dictionaries on disk for tests.
package testutil

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/ulikunitz/xz"

	"github.com/Mofl2328/languagetool/stemmer"
)

// CzechConfig matches the engine configuration of the Czech tagger.
var CzechConfig = stemmer.Config{
	Encoding:    "iso8859-2",
	Separator:   '+',
	UsePrefixes: true,
	UseInfixes:  true,
}

// CzechEntries returns (form, lemma, tag) triples covering the cases the
// tagger distinguishes: lowercase-only entries, multi-tag entries, several
// lemmas per form and entries under both casings.
func CzechEntries() [][3]string {
	return [][3]string{
		{"praha", "praha", "NNFS1"},
		{"kniha", "kniha", "NNFS1"},
		{"knihu", "kniha", "NNFS1+NNFS4"},
		{"knihy", "kniha", "NNFS2+NNFP1+NNFP4"},
		{"je", "být", "VB-S---3P"},
		{"je", "on", "PPXP4"},
		{"Mír", "Mír", "NNIS1"},
		{"mír", "mír", "NNIS1+NNIS4"},
		{"nejkrásnější", "krásný", "AAFS1----3A"},
		{"pes", "pes", "NNMS1"},
		{"psa", "pes", "NNMS2+NNMS4"},
		{"v", "v", "RR--6"},
		{"žluťoučký", "žluťoučký", "AAMS1----1A"},
	}
}

// WriteDictionary compiles entries and writes them to dir/name.
func WriteDictionary(t *testing.T, dir, name string, entries [][3]string) string {
	t.Helper()
	a, err := stemmer.Build(entries, CzechConfig)
	if err != nil {
		t.Fatalf("build dictionary: %v", err)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, a.Bytes(), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

// WriteCompressedDictionary is WriteDictionary with xz compression; name
// should end in ".xz".
func WriteCompressedDictionary(t *testing.T, dir, name string, entries [][3]string) string {
	t.Helper()
	a, err := stemmer.Build(entries, CzechConfig)
	if err != nil {
		t.Fatalf("build dictionary: %v", err)
	}
	var buf bytes.Buffer
	w, err := xz.NewWriter(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := a.WriteTo(w); err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

// ResourceDir creates a resource root holding cs/czech.dict built from
// CzechEntries and returns the root.
func ResourceDir(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	WriteDictionary(t, filepath.Join(root, "cs"), "czech.dict", CzechEntries())
	return root
}

// CompressedResourceDir is ResourceDir with cs/czech.dict.xz instead.
func CompressedResourceDir(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	WriteCompressedDictionary(t, filepath.Join(root, "cs"), "czech.dict.xz", CzechEntries())
	return root
}
