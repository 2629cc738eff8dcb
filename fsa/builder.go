package fsa

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"slices"

	"github.com/zeebo/blake3"
)

var (
	ErrUnsorted = errors.New("fsa: input not sorted")
	ErrEmpty    = errors.New("fsa: empty sequence")
	ErrFinished = errors.New("fsa: builder already finished")
)

type bnode struct {
	arcs []barc
	id   int
}

type barc struct {
	label  byte
	final  bool
	target *bnode
}

// Builder constructs a minimal automaton from sequences added in strictly
// increasing byte order, merging equivalent states as soon as the input
// moves past them.
type Builder struct {
	flags     Flags
	separator byte
	root      *bnode
	register  map[string]*bnode
	prev      []byte
	count     int
	done      bool
}

// NewBuilder returns a builder whose header records separator and flags.
func NewBuilder(separator byte, flags Flags) *Builder {
	return &Builder{
		flags:     flags,
		separator: separator,
		root:      &bnode{id: -1},
		register:  make(map[string]*bnode),
	}
}

// Len returns the number of sequences added so far.
func (b *Builder) Len() int { return b.count }

// Add appends seq. Sequences must be non-empty and strictly increasing.
func (b *Builder) Add(seq []byte) error {
	if b.done {
		return ErrFinished
	}
	if len(seq) == 0 {
		return ErrEmpty
	}
	if b.count > 0 && bytes.Compare(seq, b.prev) <= 0 {
		return fmt.Errorf("%w: %q after %q", ErrUnsorted, seq, b.prev)
	}

	n := b.root
	i := 0
	for i < len(seq) && i < len(b.prev) && seq[i] == b.prev[i] {
		n = n.arcs[len(n.arcs)-1].target
		i++
	}
	if len(n.arcs) > 0 {
		b.replaceOrRegister(n)
	}

	var last *bnode
	for ; i < len(seq); i++ {
		child := &bnode{id: -1}
		n.arcs = append(n.arcs, barc{label: seq[i], target: child})
		last, n = n, child
	}
	last.arcs[len(last.arcs)-1].final = true

	b.prev = append(b.prev[:0], seq...)
	b.count++
	return nil
}

// replaceOrRegister minimizes the chain hanging off the last arc of n.
func (b *Builder) replaceOrRegister(n *bnode) {
	a := &n.arcs[len(n.arcs)-1]
	child := a.target
	if len(child.arcs) > 0 {
		b.replaceOrRegister(child)
	}
	key := signature(child)
	if r, ok := b.register[key]; ok {
		a.target = r
		return
	}
	child.id = len(b.register)
	b.register[key] = child
}

func signature(n *bnode) string {
	sig := make([]byte, 0, len(n.arcs)*6)
	for _, a := range n.arcs {
		var fl byte
		if a.final {
			fl = arcFinal
		}
		sig = append(sig, a.label, fl)
		sig = binary.LittleEndian.AppendUint32(sig, uint32(a.target.id))
	}
	return string(sig)
}

// Finish minimizes the remaining states and encodes the automaton.
// The builder cannot be used afterwards.
func (b *Builder) Finish() (*FSA, error) {
	if b.done {
		return nil, ErrFinished
	}
	b.done = true
	if len(b.root.arcs) > 0 {
		b.replaceOrRegister(b.root)
	}
	return Read(b.encode())
}

// encode lays nodes out in topological order (reverse post-order from the
// root) so that every arc points forward.
func (b *Builder) encode() []byte {
	var post []*bnode
	seen := make(map[*bnode]bool)
	var visit func(n *bnode)
	visit = func(n *bnode) {
		seen[n] = true
		for _, a := range n.arcs {
			if !seen[a.target] {
				visit(a.target)
			}
		}
		post = append(post, n)
	}
	visit(b.root)

	index := make(map[*bnode]uint32, len(post))
	order := make([]*bnode, len(post))
	for i, n := range post {
		pos := len(post) - 1 - i
		order[pos] = n
		index[n] = uint32(pos)
	}

	arcCount := 0
	for _, n := range order {
		arcCount += len(n.arcs)
	}

	out := make([]byte, 0, headerSize+len(order)*nodeSize+arcCount*arcSize+checksumSize)
	out = append(out, magic...)
	out = append(out, Version, byte(b.flags), b.separator, 0)
	out = binary.LittleEndian.AppendUint32(out, uint32(len(order)))
	out = binary.LittleEndian.AppendUint32(out, uint32(arcCount))

	first := uint32(0)
	for _, n := range order {
		out = binary.LittleEndian.AppendUint32(out, first)
		out = binary.LittleEndian.AppendUint32(out, uint32(len(n.arcs)))
		first += uint32(len(n.arcs))
	}
	for _, n := range order {
		for _, a := range n.arcs {
			var fl byte
			if a.final {
				fl = arcFinal
			}
			out = append(out, a.label, fl)
			out = binary.LittleEndian.AppendUint32(out, index[a.target])
		}
	}

	sum := blake3.Sum256(out)
	return append(out, sum[:]...)
}

// Build is a convenience wrapper that sorts a copy of seqs, drops
// duplicates and builds the automaton.
func Build(separator byte, flags Flags, seqs [][]byte) (*FSA, error) {
	sorted := make([][]byte, len(seqs))
	copy(sorted, seqs)
	slices.SortFunc(sorted, bytes.Compare)

	b := NewBuilder(separator, flags)
	for i, s := range sorted {
		if i > 0 && bytes.Equal(s, sorted[i-1]) {
			continue
		}
		if err := b.Add(s); err != nil {
			return nil, err
		}
	}
	return b.Finish()
}
