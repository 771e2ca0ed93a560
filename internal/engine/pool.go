package engine

import (
	"encoding/binary"
	"fmt"

	"github.com/zeebo/blake3"
)

// AllocationPolicy selects how the pool picks the next reveal number.
type AllocationPolicy int

const (
	// AllocSequential scans the pool in increasing order and returns the
	// first free number. Deterministic, O(N) worst case per call; fine for
	// the observed pool sizes (100, 8888).
	AllocSequential AllocationPolicy = iota

	// AllocHashed derives a candidate from a blake3 digest of the seed,
	// reduced into the shard, and falls back to a linear forward scan from
	// the shard cursor when the candidate is taken. Bounds per-call cost by
	// the shard width. Note the seed is low-entropy (typically the current
	// time), so the result is predictable to an observer who knows the
	// submission time; the drop deliberately trades unpredictability for
	// determinism.
	AllocHashed
)

// ParseAllocationPolicy maps a config string to a policy.
func ParseAllocationPolicy(s string) (AllocationPolicy, error) {
	switch s {
	case "sequential":
		return AllocSequential, nil
	case "hashed":
		return AllocHashed, nil
	}
	return 0, fmt.Errorf("unknown allocation policy %q", s)
}

// shard owns a contiguous sub-range of the pool with its own used set and
// scan cursor. Splitting the pool keeps the fallback scan bounded by the
// shard width instead of the whole pool.
type shard struct {
	start  uint16 // first assignable number in the shard
	width  uint16 // number of slots in the shard
	used   map[uint16]struct{}
	cursor uint16 // next candidate for the fallback scan; never retreats
}

// end returns the last assignable number in the shard.
func (s *shard) end() uint16 { return s.start + s.width - 1 }

// exhausted reports whether every slot in the shard is taken.
func (s *shard) exhausted() bool { return len(s.used) == int(s.width) }

// take marks n as used. Returns false if n was already taken.
func (s *shard) take(n uint16) bool {
	if _, dup := s.used[n]; dup {
		return false
	}
	s.used[n] = struct{}{}
	return true
}

// scanFrom walks forward from the cursor to the shard end and takes the
// first free slot, advancing the cursor past it. Returns 0 when the scan
// exhausts the shard.
func (s *shard) scanFrom() uint16 {
	if s.cursor < s.start {
		s.cursor = s.start
	}
	for n := s.cursor; n >= s.start && n <= s.end(); n++ {
		if s.take(n) {
			s.cursor = n + 1
			return n
		}
	}
	return 0
}

// ShardState is the persistable view of one shard, used by the hosting
// layer to round-trip cursors through storage.
type ShardState struct {
	ID     int
	Start  uint16
	Width  uint16
	Cursor uint16
}

// Pool tracks which numbers in a bounded range have been assigned. Numbers
// start at 1 so that 0 can stand for "unassigned" on tickets. The pool only
// ever grows its used set; a number handed out is never returned.
//
// The pool itself is not synchronized: callers serialize access the same
// way they serialize the sale ledger (the engine holds a per-drop lock, the
// hosting layer a row lock).
type Pool struct {
	policy AllocationPolicy
	shards []*shard
	low    uint16
	high   uint16
	usedN  int
}

// NewPool builds a pool over [low, high] split into shards of at most
// shardWidth slots. low must be at least 1 (0 is the unassigned sentinel)
// and shardWidth at least 1; a zero shardWidth means one shard for the
// whole range.
func NewPool(low, high, shardWidth uint16, policy AllocationPolicy) *Pool {
	if low == 0 || high < low {
		panic("engine: pool range must be within [1, 65535] and non-empty")
	}
	if shardWidth == 0 {
		shardWidth = high - low + 1
	}
	p := &Pool{policy: policy, low: low, high: high}
	for start := uint32(low); start <= uint32(high); start += uint32(shardWidth) {
		width := uint32(shardWidth)
		if start+width-1 > uint32(high) {
			width = uint32(high) - start + 1
		}
		p.shards = append(p.shards, &shard{
			start:  uint16(start),
			width:  uint16(width),
			used:   make(map[uint16]struct{}),
			cursor: uint16(start),
		})
	}
	return p
}

// AllocateNext returns the next available number under the pool's policy
// and marks it used. The seed feeds the hashed policy; the sequential
// policy ignores it. Fails with ErrNoAvailableNumbers when every slot in
// every shard is taken.
func (p *Pool) AllocateNext(seed int64) (uint16, error) {
	switch p.policy {
	case AllocHashed:
		return p.allocateHashed(seed)
	default:
		return p.allocateSequential()
	}
}

// allocateSequential scans low..high in increasing order and takes the
// first free number.
func (p *Pool) allocateSequential() (uint16, error) {
	for _, s := range p.shards {
		if s.exhausted() {
			continue
		}
		for n := s.start; n >= s.start && n <= s.end(); n++ {
			if s.take(n) {
				p.usedN++
				return n, nil
			}
		}
	}
	return 0, ErrNoAvailableNumbers
}

// allocateHashed derives a candidate from the seed digest. The digest picks
// both the starting shard and the slot within it; a taken (or zero)
// candidate falls back to the shard's cursor scan, and an exhausted shard
// hands over to the next one so the pool as a whole only fails once every
// slot is used.
func (p *Pool) allocateHashed(seed int64) (uint16, error) {
	h := seedDigest(seed)
	first := int(h % uint64(len(p.shards)))
	for i := 0; i < len(p.shards); i++ {
		s := p.shards[(first+i)%len(p.shards)]
		if s.exhausted() {
			continue
		}
		candidate := s.start + uint16(h%uint64(s.width))
		if candidate != 0 && s.take(candidate) {
			p.usedN++
			return candidate, nil
		}
		if n := s.scanFrom(); n != 0 {
			p.usedN++
			return n, nil
		}
		// Cursor ran off the end but earlier slots may still be free
		// (freed-by-restore is impossible, but a hashed hit behind the
		// cursor leaves holes). Full shard scan as the last resort.
		for n := s.start; n >= s.start && n <= s.end(); n++ {
			if s.take(n) {
				p.usedN++
				return n, nil
			}
		}
	}
	return 0, ErrNoAvailableNumbers
}

// MarkUsed records n as already assigned, skipping allocation. The hosting
// layer uses it to rebuild a pool from persisted numbers. Returns false
// when n is outside the pool or already marked.
func (p *Pool) MarkUsed(n uint16) bool {
	s := p.shardOf(n)
	if s == nil {
		return false
	}
	if !s.take(n) {
		return false
	}
	p.usedN++
	return true
}

// RestoreCursor sets a shard's scan cursor, used when rebuilding a pool
// from storage. Cursors never retreat: a value behind the current cursor
// is ignored.
func (p *Pool) RestoreCursor(shardID int, cursor uint16) {
	if shardID < 0 || shardID >= len(p.shards) {
		return
	}
	if s := p.shards[shardID]; cursor > s.cursor {
		s.cursor = cursor
	}
}

// ShardStates returns the persistable state of every shard in order.
func (p *Pool) ShardStates() []ShardState {
	out := make([]ShardState, len(p.shards))
	for i, s := range p.shards {
		out[i] = ShardState{ID: i, Start: s.start, Width: s.width, Cursor: s.cursor}
	}
	return out
}

// IsUsed reports whether n has been assigned.
func (p *Pool) IsUsed(n uint16) bool {
	s := p.shardOf(n)
	if s == nil {
		return false
	}
	_, ok := s.used[n]
	return ok
}

// UsedCount returns how many numbers have been assigned.
func (p *Pool) UsedCount() int { return p.usedN }

// Size returns the total number of assignable slots.
func (p *Pool) Size() int { return int(p.high) - int(p.low) + 1 }

// Low and High bound the assignable range.
func (p *Pool) Low() uint16  { return p.low }
func (p *Pool) High() uint16 { return p.high }

func (p *Pool) shardOf(n uint16) *shard {
	if n < p.low || n > p.high {
		return nil
	}
	for _, s := range p.shards {
		if n >= s.start && n <= s.end() {
			return s
		}
	}
	return nil
}

// seedDigest reduces the seed to a uint64 via blake3. The hash only spreads
// the low-entropy seed across the range; it adds no unpredictability.
func seedDigest(seed int64) uint64 {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], uint64(seed))
	sum := blake3.Sum256(buf[:])
	return binary.LittleEndian.Uint64(sum[:8])
}
