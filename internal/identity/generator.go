package identity

import (
	"math/rand"
	"sync"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
)

// Generator produces UUIDv4-shaped device identifiers from a
// non-cryptographic random source. Collisions are possible and accepted.
type Generator struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewGenerator creates a Generator seeded with seed. A zero seed uses the
// current time.
func NewGenerator(seed int64) *Generator {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Generator{rng: rand.New(rand.NewSource(seed))}
}

// NewID returns a new identifier in canonical 8-4-4-4-12 form.
func (g *Generator) NewID() (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	id, err := uuid.NewRandomFromReader(g.rng)
	if err != nil {
		return "", errors.Wrap(err, "generate device id")
	}
	return id.String(), nil
}
