// Package stemmer answers "stem and form" queries against a morphological
// dictionary stored as an FSA. Every dictionary entry is a byte sequence
//
//	form SEP code SEP tag
//
// where form and tag are text in the dictionary encoding and code describes
// how to turn the form into its lemma (see [Config]).
package stemmer

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/edsrzf/mmap-go"
	"github.com/ulikunitz/xz"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"

	"github.com/Mofl2328/languagetool/fsa"
)

var (
	ErrEncoding  = errors.New("stemmer: unsupported encoding")
	ErrSeparator = errors.New("stemmer: separator mismatch")
	ErrFlags     = errors.New("stemmer: lemma encoding flags mismatch")
)

// Config fixes how a dictionary is read.
//
// Lemma codes are letters counted from 'A'. With UseInfixes the code holds
// three of them (infix position, infix length, bytes to strip from the end);
// otherwise with UsePrefixes two (bytes to strip from the start and from the
// end); otherwise one (bytes to strip from the end). The rest of the code is
// appended literally.
type Config struct {
	Encoding    string
	Separator   byte
	UsePrefixes bool
	UseInfixes  bool
}

func (c Config) flags() fsa.Flags {
	var f fsa.Flags
	if c.UsePrefixes {
		f |= fsa.FlagPrefixes
	}
	if c.UseInfixes {
		f |= fsa.FlagInfixes
	}
	return f
}

func (c Config) codeLen() int {
	switch {
	case c.UseInfixes:
		return 3
	case c.UsePrefixes:
		return 2
	default:
		return 1
	}
}

func (c Config) encoding() (encoding.Encoding, error) {
	enc, err := htmlindex.Get(c.Encoding)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrEncoding, c.Encoding)
	}
	return enc, nil
}

// Dictionary is an opened dictionary. Lookup is safe for concurrent use;
// Close must not race with it.
type Dictionary struct {
	fsa    *fsa.FSA
	cfg    Config
	enc    encoding.Encoding
	path   string
	mapped mmap.MMap
}

// Info describes an opened dictionary.
type Info struct {
	Path      string
	Encoding  string
	Separator byte
	Flags     fsa.Flags
	Nodes     int
	Arcs      int
	Checksum  string
	Mapped    bool
}

// Open reads the dictionary at path. Files ending in ".xz" are decompressed
// into memory; anything else is memory-mapped read-only.
func Open(path string, cfg Config) (*Dictionary, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open dictionary: %w", err)
	}
	defer f.Close()

	if strings.HasSuffix(path, ".xz") {
		xzr, err := xz.NewReader(bufio.NewReader(f))
		if err != nil {
			return nil, fmt.Errorf("xz reader: %w", err)
		}
		d, err := Load(xzr, cfg)
		if err != nil {
			return nil, err
		}
		d.path = path
		return d, nil
	}

	st, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat dictionary: %w", err)
	}
	if st.Size() == 0 {
		return nil, fmt.Errorf("%s: %w: empty file", path, fsa.ErrMalformed)
	}
	m, err := mmap.Map(f, mmap.RDONLY, 0)
	if err != nil {
		return nil, fmt.Errorf("mmap dictionary: %w", err)
	}
	a, err := fsa.Read(m)
	if err != nil {
		m.Unmap()
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	d, err := New(a, cfg)
	if err != nil {
		m.Unmap()
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	d.path = path
	d.mapped = m
	return d, nil
}

// Load reads a whole dictionary from r into memory.
func Load(r io.Reader, cfg Config) (*Dictionary, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read dictionary: %w", err)
	}
	a, err := fsa.Read(data)
	if err != nil {
		return nil, err
	}
	return New(a, cfg)
}

// New wraps an automaton whose header must agree with cfg.
func New(a *fsa.FSA, cfg Config) (*Dictionary, error) {
	enc, err := cfg.encoding()
	if err != nil {
		return nil, err
	}
	if a.Separator() != cfg.Separator {
		return nil, fmt.Errorf("%w: dictionary uses %q, configured %q", ErrSeparator, a.Separator(), cfg.Separator)
	}
	if a.Flags() != cfg.flags() {
		return nil, fmt.Errorf("%w: dictionary has %02b, configured %02b", ErrFlags, a.Flags(), cfg.flags())
	}
	return &Dictionary{fsa: a, cfg: cfg, enc: enc}, nil
}

// Lookup returns the analyses of word as a flat slice alternating lemma and
// tag, in dictionary order, or nil when the dictionary has no entry.
func (d *Dictionary) Lookup(word string) []string {
	sep := d.cfg.Separator
	form, err := d.enc.NewEncoder().Bytes([]byte(word))
	if err != nil || len(form) == 0 || bytes.IndexByte(form, sep) >= 0 {
		return nil
	}
	n, _, ok := d.fsa.Walk(d.fsa.Root(), form)
	if !ok {
		return nil
	}
	n, _, ok = d.fsa.Step(n, sep)
	if !ok {
		return nil
	}

	var out []string
	dec := d.enc.NewDecoder()
	d.fsa.Completions(n, func(entry []byte) bool {
		i := bytes.IndexByte(entry, sep)
		if i < 0 {
			return true
		}
		lemma, err := dec.Bytes(decodeLemma(form, entry[:i], d.cfg.codeLen()))
		if err != nil {
			return true
		}
		tag, err := dec.Bytes(entry[i+1:])
		if err != nil {
			return true
		}
		out = append(out, string(lemma), string(tag))
		return true
	})
	return out
}

// Info reports header data and statistics.
func (d *Dictionary) Info() Info {
	return Info{
		Path:      d.path,
		Encoding:  d.cfg.Encoding,
		Separator: d.fsa.Separator(),
		Flags:     d.fsa.Flags(),
		Nodes:     d.fsa.NodeCount(),
		Arcs:      d.fsa.ArcCount(),
		Checksum:  d.fsa.Checksum(),
		Mapped:    d.mapped != nil,
	}
}

// Close releases the file mapping, if any.
func (d *Dictionary) Close() error {
	if d.mapped == nil {
		return nil
	}
	err := d.mapped.Unmap()
	d.mapped = nil
	return err
}
