// Package naming generates the short, pseudo-random 8.3-style file names
// used by benchmark manifests, and owns the pseudo-random Stream from which
// both names and block addresses are drawn.
package naming

import (
	"math"
	"math/rand"
	"strconv"
	"time"

	lru "github.com/hashicorp/golang-lru"
	log "github.com/sirupsen/logrus"
)

const (
	// BaseLen is the length of a name's base: seven random characters and
	// a suffix character.
	BaseLen = 8
	// NameLen is the length of a generated name: the base, a '.' separator,
	// and a three-digit index extension.
	NameLen = BaseLen + 1 + 3

	// randomChars is the number of random characters in a name's base.
	randomChars = BaseLen - 1
	// maxUniqueAttempts bounds regenerations of a colliding name.
	maxUniqueAttempts = 64
)

const base36 = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// Stream is a seeded pseudo-random stream. A Stream of a given seed always
// produces the same sequence of values. It's not safe for concurrent use.
type Stream struct {
	rnd  *rand.Rand
	seed uint32
}

// NewStream returns a Stream of the given seed.
func NewStream(seed uint32) *Stream {
	return &Stream{rnd: rand.New(rand.NewSource(int64(seed))), seed: seed}
}

// SeedFromClock derives a seed from a coarse, centisecond reading of |t|,
// reduced modulo the maximum uint32.
func SeedFromClock(t time.Time) uint32 {
	var centis = uint64(t.UnixNano() / int64(10*time.Millisecond))
	return uint32(centis % math.MaxUint32)
}

// Seed of the Stream.
func (s *Stream) Seed() uint32 { return s.seed }

// Uint32 draws the next value of the Stream.
func (s *Stream) Uint32() uint32 { return s.rnd.Uint32() }

// Intn draws a value uniformly from [0, n). It panics if n <= 0.
func (s *Stream) Intn(n int) int { return s.rnd.Intn(n) }

// Generator builds names from a Stream.
type Generator struct {
	stream *Stream
	issued *lru.Cache // Names already issued. Nil if uniqueness isn't tracked.
}

// NewGenerator returns a Generator drawing from the Stream. Names are not
// checked for uniqueness: with seven base36 characters, a collision among a
// few hundred names is improbable but possible.
func NewGenerator(stream *Stream) *Generator {
	return &Generator{stream: stream}
}

// NewUniqueGenerator returns a Generator which regenerates a name which
// collides with any of the |capacity| most recently issued names.
//
// Names end with their suffix and index modulo 1000, so names of a single
// suffix can collide only if they're generated for more than 1000 indices.
// Below that count, a unique Generator issues the same names as NewGenerator.
func NewUniqueGenerator(stream *Stream, capacity int) (*Generator, error) {
	var issued, err = lru.New(capacity)
	if err != nil {
		return nil, err
	}
	return &Generator{stream: stream, issued: issued}, nil
}

// Name returns a NameLen name composed of random characters, the |suffix|,
// and |index| modulo 1000 as a zero-padded extension.
func (g *Generator) Name(suffix byte, index int) string {
	var name = g.build(suffix, index)
	if g.issued == nil {
		return name
	}

	for attempt := 1; attempt != maxUniqueAttempts; attempt++ {
		if ok, _ := g.issued.ContainsOrAdd(name, nil); !ok {
			return name
		}
		log.WithFields(log.Fields{"name": name, "attempt": attempt}).Debug("regenerating colliding name")
		name = g.build(suffix, index)
	}
	log.WithField("name", name).Warn("accepting colliding name after exhausting regenerations")
	g.issued.Add(name, nil)
	return name
}

func (g *Generator) build(suffix byte, index int) string {
	var b = make([]byte, 0, NameLen)

	b = appendBase36(b, g.stream.Uint32(), 4)
	b = appendBase36(b, g.stream.Uint32(), randomChars-4)
	b = append(b, suffix, '.')

	var ext = index % 1000
	if ext < 0 {
		ext += 1000
	}
	switch {
	case ext < 10:
		b = append(b, '0', '0')
	case ext < 100:
		b = append(b, '0')
	}
	return string(strconv.AppendInt(b, int64(ext), 10))
}

// appendBase36 appends |count| base36 digits of |v|, least-significant first.
func appendBase36(b []byte, v uint32, count int) []byte {
	for i := 0; i != count; i++ {
		b = append(b, base36[v%36])
		v /= 36
	}
	return b
}
