package indexer

import (
	"errors"
	"fmt"

	"curveOps/internal/alchemy"
)

var (
	ErrBatchSize     = errors.New("batch size must be greater than zero")
	ErrInvertedRange = errors.New("to block is before from block")
	// ErrGenesisWindow is returned for a scan ending at block 0, which the
	// transfer query would send as "latest".
	ErrGenesisWindow = errors.New("scan cannot end at block 0")
)

// Window is an inclusive block span fetched with one paged transfer query.
type Window struct {
	From uint64
	To   uint64
}

// Blocks returns the number of blocks the window covers.
func (w Window) Blocks() uint64 {
	return w.To - w.From + 1
}

// Query narrows base to the window.
func (w Window) Query(base alchemy.Query) alchemy.Query {
	base.FromBlock = w.From
	base.ToBlock = w.To
	return base
}

// Windows cuts [from, to] into consecutive windows of at most size blocks.
// The last window is short when the span is not a multiple of size.
func Windows(from, to, size uint64) ([]Window, error) {
	switch {
	case size == 0:
		return nil, ErrBatchSize
	case to < from:
		return nil, fmt.Errorf("%w: %d < %d", ErrInvertedRange, to, from)
	case to == 0:
		return nil, ErrGenesisWindow
	}

	out := make([]Window, 0, (to-from)/size+1)
	for start := from; ; start += size {
		end := to
		if to-start >= size {
			end = start + size - 1
		}
		out = append(out, Window{From: start, To: end})
		if end == to {
			return out, nil
		}
	}
}
