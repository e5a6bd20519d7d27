package projector

import "github.com/vk/optbind/internal/options"

// State reports whether a collection has been projected.
type State int

const (
	NotLoaded State = iota
	Loaded
)

func (s State) String() string {
	if s == Loaded {
		return "loaded"
	}
	return "not-loaded"
}

// Projection holds the last projected entries. It starts NotLoaded and moves
// to Loaded on the first Set; later sets replace the entries only.
type Projection struct {
	state   State
	seq     uint64
	entries []options.Entry
}

// State returns the load state.
func (p *Projection) State() State { return p.state }

// Loaded reports whether entries have been set at least once.
func (p *Projection) Loaded() bool { return p.state == Loaded }

// Seq returns the sequence number of the request that produced the entries.
func (p *Projection) Seq() uint64 { return p.seq }

// Entries returns the projected entries, nil before the first load.
func (p *Projection) Entries() []options.Entry { return p.entries }

// Len returns the number of projected entries.
func (p *Projection) Len() int { return len(p.entries) }

// Set replaces the entries with the result of request seq.
func (p *Projection) Set(seq uint64, entries []options.Entry) {
	p.state = Loaded
	p.seq = seq
	p.entries = entries
}
