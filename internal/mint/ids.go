package mint

import (
	"fmt"
	"math/rand/v2"
	"strings"
	"sync"
	"time"
)

const (
	idRandLen = 7
	idSeqLen  = 2
)

const idAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"

// IDGenerator produces collision-resistant identifiers of the form
// prefix_<epoch-ms>_<suffix>. The suffix carries a per-millisecond
// sequence in its tail so ids issued within the same tick never collide.
type IDGenerator struct {
	mu     sync.Mutex
	lastMs int64
	seq    int
	now    func() time.Time
}

// NewIDGenerator creates an IDGenerator using the wall clock.
func NewIDGenerator() *IDGenerator {
	return &IDGenerator{now: time.Now}
}

// Next returns a fresh identifier with the given prefix. It is safe for
// concurrent use and never fails.
func (g *IDGenerator) Next(prefix string) string {
	g.mu.Lock()
	ms := g.now().UnixMilli()
	if ms == g.lastMs {
		g.seq++
	} else {
		g.lastMs = ms
		g.seq = 0
	}
	seq := g.seq
	g.mu.Unlock()

	var b strings.Builder
	b.Grow(idRandLen + idSeqLen)
	for i := 0; i < idRandLen; i++ {
		b.WriteByte(idAlphabet[rand.IntN(len(idAlphabet))])
	}
	// Sequence tail, base-36, wraps after 36^2 ids per millisecond at
	// which point the random head still separates them.
	b.WriteByte(idAlphabet[(seq/len(idAlphabet))%len(idAlphabet)])
	b.WriteByte(idAlphabet[seq%len(idAlphabet)])

	return fmt.Sprintf("%s_%d_%s", prefix, ms, b.String())
}
