package stemmer

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/Mofl2328/languagetool/fsa"
)

// maxCode is the largest count a single code letter can carry.
const maxCode = 0xff - 'A'

var ErrCodeRange = errors.New("stemmer: form too long to encode")

// decodeLemma applies code to form. Codes that do not fit the form yield
// the literal part alone.
func decodeLemma(form, code []byte, n int) []byte {
	if len(code) < n {
		return code
	}
	v := make([]int, n)
	for i := range v {
		v[i] = int(code[i]) - 'A'
		if v[i] < 0 {
			return code[n:]
		}
	}
	rest := code[n:]
	size := len(form)

	var out []byte
	switch n {
	case 3:
		pos, length, strip := v[0], v[1], v[2]
		if strip > size || pos+length > size-strip {
			return rest
		}
		out = append(out, form[:pos]...)
		out = append(out, form[pos+length:size-strip]...)
	case 2:
		pre, strip := v[0], v[1]
		if strip > size || pre > size-strip {
			return rest
		}
		out = append(out, form[pre:size-strip]...)
	default:
		strip := v[0]
		if strip > size {
			return rest
		}
		out = append(out, form[:size-strip]...)
	}
	return append(out, rest...)
}

// encodeLemma returns the shortest code that turns form into lemma.
func encodeLemma(form, lemma []byte, n int) ([]byte, error) {
	var counts []int
	var keep int

	switch n {
	case 3:
		cp := commonPrefix(form, lemma)
		counts, keep = []int{0, 0, len(form) - cp}, cp
		for pos := 0; pos <= cp; pos++ {
			for length := 1; pos+length <= len(form); length++ {
				c := pos + commonPrefix(form[pos+length:], lemma[pos:])
				if c > keep {
					counts = []int{pos, length, len(form) - pos - length - (c - pos)}
					keep = c
				}
			}
		}
	case 2:
		cp := commonPrefix(form, lemma)
		counts, keep = []int{0, len(form) - cp}, cp
		for pre := 1; pre <= len(form); pre++ {
			c := commonPrefix(form[pre:], lemma)
			if c > keep {
				counts = []int{pre, len(form) - pre - c}
				keep = c
			}
		}
	default:
		cp := commonPrefix(form, lemma)
		counts, keep = []int{len(form) - cp}, cp
	}

	code := make([]byte, 0, n+len(lemma)-keep)
	for _, c := range counts {
		if c > maxCode {
			return nil, fmt.Errorf("%w: %d", ErrCodeRange, c)
		}
		code = append(code, byte('A'+c))
	}
	return append(code, lemma[keep:]...), nil
}

func commonPrefix(a, b []byte) int {
	i := 0
	for i < len(a) && i < len(b) && a[i] == b[i] {
		i++
	}
	return i
}

// EncodeEntry builds the automaton sequence for one (form, lemma, tag)
// triple under cfg.
func EncodeEntry(form, lemma, tag string, cfg Config) ([]byte, error) {
	enc, err := cfg.encoding()
	if err != nil {
		return nil, err
	}
	e := enc.NewEncoder()
	f, err := e.Bytes([]byte(form))
	if err != nil {
		return nil, fmt.Errorf("encode form %q: %w", form, err)
	}
	l, err := e.Bytes([]byte(lemma))
	if err != nil {
		return nil, fmt.Errorf("encode lemma %q: %w", lemma, err)
	}
	t, err := e.Bytes([]byte(tag))
	if err != nil {
		return nil, fmt.Errorf("encode tag %q: %w", tag, err)
	}
	if bytes.IndexByte(f, cfg.Separator) >= 0 || bytes.IndexByte(l, cfg.Separator) >= 0 {
		return nil, fmt.Errorf("%w: %q in %q/%q", ErrSeparator, cfg.Separator, form, lemma)
	}
	code, err := encodeLemma(f, l, cfg.codeLen())
	if err != nil {
		return nil, err
	}

	seq := make([]byte, 0, len(f)+len(code)+len(t)+2)
	seq = append(seq, f...)
	seq = append(seq, cfg.Separator)
	seq = append(seq, code...)
	seq = append(seq, cfg.Separator)
	return append(seq, t...), nil
}

// Build compiles entries of (form, lemma, tag) triples into an automaton
// readable under cfg.
func Build(entries [][3]string, cfg Config) (*fsa.FSA, error) {
	seqs := make([][]byte, 0, len(entries))
	for _, e := range entries {
		seq, err := EncodeEntry(e[0], e[1], e[2], cfg)
		if err != nil {
			return nil, err
		}
		seqs = append(seqs, seq)
	}
	return fsa.Build(cfg.Separator, cfg.flags(), seqs)
}
