package cs

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/Mofl2328/languagetool"
	"github.com/Mofl2328/languagetool/stemmer"
)

// EnvResourceDir overrides the resource root when New is given none.
const EnvResourceDir = "LANGUAGETOOL_RESOURCES"

// DefaultResourceDir is used when neither New nor the environment name one.
const DefaultResourceDir = "resource"

// ResourceFile is the dictionary location relative to the resource root.
var ResourceFile = filepath.Join("cs", "czech.dict")

// EngineConfig is how the Czech dictionary was compiled.
var EngineConfig = stemmer.Config{
	Encoding:    "iso8859-2",
	Separator:   '+',
	UsePrefixes: true,
	UseInfixes:  true,
}

// Dictionary is the lookup side of a morphological dictionary engine.
//
// Lookup returns lemma/tag pairs flattened into one slice
// ([lemma, tag, lemma, tag, ...]) or nil when the word is unknown.
// Implementations must be safe for concurrent use, since a Tagger shares one
// Dictionary across all its callers.
type Dictionary interface {
	Lookup(word string) []string
}

// entry is one typed lookup result.
type entry struct {
	lemma string
	tag   string
}

// lookup queries d and pairs up the flat result. A trailing unpaired
// element is ignored.
func lookup(d Dictionary, word string) []entry {
	raw := d.Lookup(word)
	if len(raw) < 2 {
		return nil
	}
	entries := make([]entry, 0, len(raw)/2)
	for i := 0; i+1 < len(raw); i += 2 {
		entries = append(entries, entry{lemma: raw[i], tag: raw[i+1]})
	}
	return entries
}

// resolveResourceDir picks the resource root: the explicit one, the
// environment override, or the default.
func resolveResourceDir(dir string) string {
	if dir != "" {
		return dir
	}
	if env := os.Getenv(EnvResourceDir); env != "" {
		return env
	}
	return DefaultResourceDir
}

// resourcePath returns the dictionary file under root, preferring the plain
// file and falling back to its xz-compressed variant.
func resourcePath(root string) (string, error) {
	path := filepath.Join(root, ResourceFile)
	if _, err := os.Stat(path); err == nil {
		return path, nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return path, err
	}
	xzPath := path + ".xz"
	if _, err := os.Stat(xzPath); err == nil {
		return xzPath, nil
	}
	return path, &fs.PathError{Op: "stat", Path: path, Err: fs.ErrNotExist}
}

// openResource opens the Czech dictionary under root.
func openResource(root string) (Dictionary, error) {
	path, err := resourcePath(root)
	if err != nil {
		return nil, &languagetool.ResourceError{Path: path, Err: err}
	}
	d, err := stemmer.Open(path, EngineConfig)
	if err != nil {
		return nil, &languagetool.ResourceError{Path: path, Err: err}
	}
	return d, nil
}
