package pool

import (
	"errors"
	"math/rand"
	"sync"
	"time"
)

// ErrPoolClosed is returned when a value is offered to a closed pool.
var ErrPoolClosed = errors.New("parameter pool is closed")

// Config tunes how long values live and how many are held per type.
type Config struct {
	// TTL bounds how long a value stays sampleable. Zero disables expiry.
	TTL time.Duration

	// CapPerType is the most values held per semantic type. When the cap
	// is reached the oldest value is dropped to admit the new one. Zero
	// means unbounded.
	CapPerType int

	// SweepInterval is how often expired values are swept out in the
	// background. Zero disables the sweeper; expired values then linger
	// until a Sample skips past them or Sweep is called directly.
	SweepInterval time.Duration
}

// DefaultConfig returns the settings used by the load generator CLI.
func DefaultConfig() Config {
	return Config{
		TTL:           5 * time.Minute,
		CapPerType:    1000,
		SweepInterval: time.Minute,
	}
}

// Stats is a point-in-time snapshot of pool activity.
type Stats struct {
	Held    int
	ByType  map[SemanticType]int
	Hits    int64
	Misses  int64
	Dropped int64
	Expired int64
	Added   int64
	Uptime  time.Duration
}

// HitRate returns the percentage of Sample/Take calls that found a value.
func (s Stats) HitRate() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}
	return float64(s.Hits) / float64(total) * 100
}

// Pool holds values produced by earlier API responses, grouped by semantic
// type, so later requests can reference entities the run itself created.
// Values age out on a TTL, which keeps a long run referencing recent
// entities instead of ones the server may have deleted.
type Pool struct {
	mu     sync.Mutex
	byType map[SemanticType][]*ParameterValue
	cfg    Config
	rng    *rand.Rand

	startedAt time.Time
	closed    bool
	stopSweep chan struct{}
	sweepWG   sync.WaitGroup

	hits    int64
	misses  int64
	dropped int64
	expired int64
	added   int64
}

// New creates a pool and, when configured, starts its background sweeper.
func New(cfg Config) *Pool {
	p := &Pool{
		byType:    make(map[SemanticType][]*ParameterValue),
		cfg:       cfg,
		rng:       rand.New(rand.NewSource(time.Now().UnixNano())),
		startedAt: time.Now(),
		stopSweep: make(chan struct{}),
	}
	if cfg.SweepInterval > 0 {
		p.sweepWG.Add(1)
		go p.sweepLoop()
	}
	return p
}

// Put admits a value, dropping the oldest value of the same type if the
// per-type cap is already full.
func (p *Pool) Put(v *ParameterValue) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return ErrPoolClosed
	}

	values := p.byType[v.SemanticType]
	if p.cfg.CapPerType > 0 && len(values) >= p.cfg.CapPerType {
		values = values[1:]
		p.dropped++
	}
	p.byType[v.SemanticType] = append(values, v)
	p.added++
	return nil
}

// Sample returns a random live value of the given type, or nil when none is
// available. The value stays in the pool so several requests can reference
// the same entity.
func (p *Pool) Sample(t SemanticType) *ParameterValue {
	p.mu.Lock()
	defer p.mu.Unlock()

	live := p.liveLocked(t)
	if len(live) == 0 {
		p.misses++
		return nil
	}
	v := live[p.rng.Intn(len(live))]
	v.Touch()
	p.hits++
	return v
}

// Take removes and returns a random live value of the given type, or nil.
// Used for flows that consume the entity, like deletes.
func (p *Pool) Take(t SemanticType) *ParameterValue {
	p.mu.Lock()
	defer p.mu.Unlock()

	values := p.byType[t]
	liveIdx := make([]int, 0, len(values))
	for i, v := range values {
		if !v.IsExpired() {
			liveIdx = append(liveIdx, i)
		}
	}
	if len(liveIdx) == 0 {
		p.misses++
		return nil
	}

	i := liveIdx[p.rng.Intn(len(liveIdx))]
	v := values[i]
	p.byType[t] = append(values[:i], values[i+1:]...)
	v.Touch()
	p.hits++
	return v
}

// Len reports how many live values of the given type are held.
func (p *Pool) Len(t SemanticType) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.liveLocked(t))
}

// liveLocked filters out expired values. Caller holds p.mu.
func (p *Pool) liveLocked(t SemanticType) []*ParameterValue {
	values := p.byType[t]
	live := make([]*ParameterValue, 0, len(values))
	for _, v := range values {
		if !v.IsExpired() {
			live = append(live, v)
		}
	}
	return live
}

// Sweep drops expired values and returns how many were removed.
func (p *Pool) Sweep() int {
	p.mu.Lock()
	defer p.mu.Unlock()

	removed := 0
	for t, values := range p.byType {
		kept := values[:0]
		for _, v := range values {
			if v.IsExpired() {
				removed++
			} else {
				kept = append(kept, v)
			}
		}
		p.byType[t] = kept
	}
	p.expired += int64(removed)
	return removed
}

func (p *Pool) sweepLoop() {
	defer p.sweepWG.Done()

	ticker := time.NewTicker(p.cfg.SweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-p.stopSweep:
			return
		case <-ticker.C:
			p.Sweep()
		}
	}
}

// Stats returns a snapshot of pool activity.
func (p *Pool) Stats() Stats {
	p.mu.Lock()
	defer p.mu.Unlock()

	s := Stats{
		ByType:  make(map[SemanticType]int, len(p.byType)),
		Hits:    p.hits,
		Misses:  p.misses,
		Dropped: p.dropped,
		Expired: p.expired,
		Added:   p.added,
		Uptime:  time.Since(p.startedAt),
	}
	for t, values := range p.byType {
		if len(values) == 0 {
			continue
		}
		s.ByType[t] = len(values)
		s.Held += len(values)
	}
	return s
}

// Close stops the sweeper. Safe to call once; later Puts fail with
// ErrPoolClosed while Sample and Take drain what is already held.
func (p *Pool) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return ErrPoolClosed
	}
	p.closed = true
	p.mu.Unlock()

	if p.cfg.SweepInterval > 0 {
		close(p.stopSweep)
		p.sweepWG.Wait()
	}
	return nil
}
