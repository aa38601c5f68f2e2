package graph

import "github.com/cwbudde/algo-soundscape/dsp/core"

// Quantum describes one render block.
type Quantum struct {
	// Index increases by one per rendered block and is never zero.
	Index      uint64
	Time       float64 // seconds at the first frame
	Frames     int
	SampleRate float64
}

// SampleTime returns the time of frame i within the quantum.
func (q Quantum) SampleTime(i int) float64 {
	return q.Time + float64(i)/q.SampleRate
}

// Block is one quantum of stereo audio. Mono producers alias R to L and set
// Mono so panners can treat them as a single channel.
type Block struct {
	L, R []float64
	Mono bool
}

// Node produces one block per quantum. Nodes with several consumers must
// return the same block for repeated calls within a quantum.
type Node interface {
	Process(q Quantum) Block
}

// Finisher is implemented by one-shot nodes. A mixer detaches a finished
// input and calls Release exactly once.
type Finisher interface {
	Finished() bool
	Release()
}

// output is the per-node block cache.
type output struct {
	l, r    []float64
	quantum uint64
	block   Block
}

func newOutput(size int) output {
	return output{l: make([]float64, size), r: make([]float64, size)}
}

// cached returns the block already produced for q, if any.
func (o *output) cached(q Quantum) (Block, bool) {
	if o.quantum == q.Index {
		return o.block, true
	}
	return Block{}, false
}

func (o *output) mono(q Quantum) []float64 {
	o.l = core.EnsureLen(o.l, q.Frames)
	return o.l
}

func (o *output) stereo(q Quantum) ([]float64, []float64) {
	o.l = core.EnsureLen(o.l, q.Frames)
	o.r = core.EnsureLen(o.r, q.Frames)
	return o.l, o.r
}

func (o *output) store(q Quantum, b Block) Block {
	o.quantum = q.Index
	o.block = b
	return b
}

// inputs is the summing junction shared by multi-input nodes.
type inputs struct {
	nodes []Node
}

func (in *inputs) connect(n Node) bool {
	for _, existing := range in.nodes {
		if existing == n {
			return false
		}
	}
	in.nodes = append(in.nodes, n)
	return true
}

func (in *inputs) disconnect(n Node) bool {
	for i, existing := range in.nodes {
		if existing == n {
			in.nodes = append(in.nodes[:i], in.nodes[i+1:]...)
			return true
		}
	}
	return false
}

func (in *inputs) contains(n Node) bool {
	for _, existing := range in.nodes {
		if existing == n {
			return true
		}
	}
	return false
}

// mix sums all inputs into l and r and reports whether every input was mono.
// Finished one-shot inputs are dropped after their last block and released.
func (in *inputs) mix(q Quantum, l, r []float64) bool {
	core.Zero(l)
	core.Zero(r)

	mono := len(in.nodes) > 0
	write := 0
	for _, n := range in.nodes {
		b := n.Process(q)
		for i := range l {
			l[i] += b.L[i]
			r[i] += b.R[i]
		}
		if !b.Mono {
			mono = false
		}

		if f, ok := n.(Finisher); ok && f.Finished() {
			f.Release()
			continue
		}
		in.nodes[write] = n
		write++
	}
	for i := write; i < len(in.nodes); i++ {
		in.nodes[i] = nil
	}
	in.nodes = in.nodes[:write]
	return mono
}
