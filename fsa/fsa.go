// Package fsa implements the read side of the finite-state automata that
// back morphological dictionaries: a compact, acyclic, deterministic
// automaton over bytes whose arcs carry the "final" marker.
//
// An encoded automaton is a single byte slice and can be traversed in place,
// which lets callers memory-map dictionary files without copying them.
//
// Layout (all integers little-endian):
//
//	magic     [4]byte  "\fsa"
//	version   byte
//	flags     byte     FlagPrefixes | FlagInfixes
//	separator byte     annotation separator used by the entries
//	reserved  byte
//	nodes     uint32
//	arcs      uint32
//	node table nodes × (firstArc uint32, numArcs uint32)
//	arc table  arcs × (label byte, flags byte, target uint32)
//	checksum  [32]byte BLAKE3 of everything above
package fsa

import (
	"bytes"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"sort"

	"github.com/zeebo/blake3"
)

// Version is the only layout version this package reads and writes.
const Version = 1

const (
	headerSize   = 16
	nodeSize     = 8
	arcSize      = 6
	checksumSize = 32

	arcFinal = 1 << 0
)

var magic = []byte("\\fsa")

// Flags describe how the dictionary entries stored in the automaton encode
// their lemmas. The automaton itself does not interpret them.
type Flags byte

const (
	FlagPrefixes Flags = 1 << 0
	FlagInfixes  Flags = 1 << 1
)

var (
	ErrMalformed = errors.New("fsa: malformed automaton")
	ErrVersion   = errors.New("fsa: unsupported version")
	ErrChecksum  = errors.New("fsa: checksum mismatch")
)

// Node identifies a state. The root is always node 0.
type Node uint32

// FSA is a read-only automaton. It is safe for concurrent use.
type FSA struct {
	data      []byte
	flags     Flags
	separator byte
	nodeCount uint32
	arcCount  uint32
	nodes     []byte
	arcs      []byte
}

// Read validates data and returns an automaton that traverses it in place.
// data must not be modified while the FSA is in use.
func Read(data []byte) (*FSA, error) {
	if len(data) < headerSize+checksumSize {
		return nil, fmt.Errorf("%w: %d bytes is shorter than the header", ErrMalformed, len(data))
	}
	if !bytes.Equal(data[:4], magic) {
		return nil, fmt.Errorf("%w: bad magic %q", ErrMalformed, data[:4])
	}
	if data[4] != Version {
		return nil, fmt.Errorf("%w: %d", ErrVersion, data[4])
	}

	nodeCount := binary.LittleEndian.Uint32(data[8:12])
	arcCount := binary.LittleEndian.Uint32(data[12:16])
	if nodeCount == 0 {
		return nil, fmt.Errorf("%w: no root node", ErrMalformed)
	}
	want := uint64(headerSize) + uint64(nodeCount)*nodeSize + uint64(arcCount)*arcSize + checksumSize
	if uint64(len(data)) != want {
		return nil, fmt.Errorf("%w: size %d, header implies %d", ErrMalformed, len(data), want)
	}

	body := data[:len(data)-checksumSize]
	sum := blake3.Sum256(body)
	if !bytes.Equal(sum[:], data[len(body):]) {
		return nil, ErrChecksum
	}

	nodesEnd := headerSize + int(nodeCount)*nodeSize
	f := &FSA{
		data:      data,
		flags:     Flags(data[5]),
		separator: data[6],
		nodeCount: nodeCount,
		arcCount:  arcCount,
		nodes:     data[headerSize:nodesEnd],
		arcs:      data[nodesEnd:len(body)],
	}
	if err := f.validate(); err != nil {
		return nil, err
	}
	return f, nil
}

// validate checks arc ranges and that every arc points to a later node.
// Nodes are stored in topological order, so the check also rules out cycles.
func (f *FSA) validate() error {
	for n := uint32(0); n < f.nodeCount; n++ {
		first, count := f.nodeArcs(Node(n))
		if uint64(first)+uint64(count) > uint64(f.arcCount) {
			return fmt.Errorf("%w: node %d arcs out of range", ErrMalformed, n)
		}
		prev := -1
		for i := first; i < first+count; i++ {
			label, _, target := f.arc(i)
			if int(label) <= prev {
				return fmt.Errorf("%w: node %d arcs not sorted", ErrMalformed, n)
			}
			prev = int(label)
			if target <= Node(n) || uint32(target) >= f.nodeCount {
				return fmt.Errorf("%w: node %d has arc to %d", ErrMalformed, n, target)
			}
		}
	}
	return nil
}

func (f *FSA) nodeArcs(n Node) (first, count uint32) {
	off := int(n) * nodeSize
	return binary.LittleEndian.Uint32(f.nodes[off:]), binary.LittleEndian.Uint32(f.nodes[off+4:])
}

func (f *FSA) arc(i uint32) (label byte, final bool, target Node) {
	off := int(i) * arcSize
	return f.arcs[off], f.arcs[off+1]&arcFinal != 0, Node(binary.LittleEndian.Uint32(f.arcs[off+2:]))
}

// Root returns the start state.
func (f *FSA) Root() Node { return 0 }

// Flags returns the entry encoding flags recorded in the header.
func (f *FSA) Flags() Flags { return f.flags }

// Separator returns the annotation separator recorded in the header.
func (f *FSA) Separator() byte { return f.separator }

// NodeCount returns the number of states.
func (f *FSA) NodeCount() int { return int(f.nodeCount) }

// ArcCount returns the number of transitions.
func (f *FSA) ArcCount() int { return int(f.arcCount) }

// Checksum returns the hex-encoded BLAKE3 digest stored in the trailer.
func (f *FSA) Checksum() string {
	return hex.EncodeToString(f.data[len(f.data)-checksumSize:])
}

// Bytes returns the encoded automaton.
func (f *FSA) Bytes() []byte { return f.data }

// WriteTo writes the encoded automaton to w.
func (f *FSA) WriteTo(w io.Writer) (int64, error) {
	n, err := w.Write(f.data)
	return int64(n), err
}

// Step follows the arc labelled b out of node n.
func (f *FSA) Step(n Node, b byte) (next Node, final, ok bool) {
	first, count := f.nodeArcs(n)
	i := sort.Search(int(count), func(i int) bool {
		label, _, _ := f.arc(first + uint32(i))
		return label >= b
	})
	if i == int(count) {
		return 0, false, false
	}
	label, final, target := f.arc(first + uint32(i))
	if label != b {
		return 0, false, false
	}
	return target, final, true
}

// Walk follows seq from n. final reports whether the last arc taken was
// final; it is false for an empty seq.
func (f *FSA) Walk(n Node, seq []byte) (next Node, final, ok bool) {
	next, ok = n, true
	for _, b := range seq {
		next, final, ok = f.Step(next, b)
		if !ok {
			return 0, false, false
		}
	}
	return next, final, true
}

// Contains reports whether seq is accepted.
func (f *FSA) Contains(seq []byte) bool {
	if len(seq) == 0 {
		return false
	}
	_, final, ok := f.Walk(f.Root(), seq)
	return ok && final
}

// Completions calls fn for every accepted suffix reachable from n, in label
// order. The slice passed to fn is reused between calls. Returning false
// from fn stops the enumeration.
func (f *FSA) Completions(n Node, fn func(suffix []byte) bool) {
	buf := make([]byte, 0, 64)
	f.completions(n, buf, fn)
}

func (f *FSA) completions(n Node, buf []byte, fn func([]byte) bool) bool {
	first, count := f.nodeArcs(n)
	for i := first; i < first+count; i++ {
		label, final, target := f.arc(i)
		buf = append(buf, label)
		if final && !fn(buf) {
			return false
		}
		if !f.completions(target, buf, fn) {
			return false
		}
		buf = buf[:len(buf)-1]
	}
	return true
}
