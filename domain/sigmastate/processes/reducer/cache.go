package reducer

import (
	"encoding/binary"
	"sync"

	"github.com/thub1271/sigmastate-interpreter/domain/sigmastate/model/externalapi"
	"github.com/thub1271/sigmastate-interpreter/domain/sigmastate/sigma"
	"github.com/thub1271/sigmastate-interpreter/domain/sigmastate/utils/hashes"
	"github.com/thub1271/sigmastate-interpreter/domain/sigmastate/validation"
)

// cachedReduction is a finished reduction of a deserialize-free script. The
// recorded cost is only the evaluation part; the caller's already-spent cost
// is added back (and budget-checked) on every hit.
type cachedReduction struct {
	value    sigma.SigmaBoolean
	evalCost uint64
}

// reductionCache is a capacity-bounded cache of finished reductions, keyed by
// a digest of the script bytes and the registry configuration. Eviction picks
// a random entry; the bound is the point, not the policy. Concurrent lookups
// and insertions are safe; racing writers for the same key compute equal
// values, so last-writer-wins is fine.
type reductionCache struct {
	mutex    sync.RWMutex
	cache    map[externalapi.DomainHash]cachedReduction
	capacity int
}

func newReductionCache(capacity int) *reductionCache {
	return &reductionCache{
		cache:    make(map[externalapi.DomainHash]cachedReduction, capacity+1),
		capacity: capacity,
	}
}

func (c *reductionCache) get(key *externalapi.DomainHash) (cachedReduction, bool) {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	entry, ok := c.cache[*key]
	return entry, ok
}

func (c *reductionCache) add(key *externalapi.DomainHash, entry cachedReduction) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.cache[*key] = entry

	if len(c.cache) > c.capacity {
		c.evictRandom()
	}
}

func (c *reductionCache) evictRandom() {
	for key := range c.cache {
		delete(c.cache, key)
		break
	}
}

// reductionCacheKey digests the script bytes together with the registry
// fingerprint. The script bytes are length-prefixed so the script/fingerprint
// boundary is unambiguous; without it a (script, fingerprint) pair could
// collide with a different split of the same concatenation. Two registries
// with equal fingerprints validate identically, so entries may be shared
// across them.
func reductionCacheKey(scriptBytes []byte, registry *validation.Registry) *externalapi.DomainHash {
	writer := hashes.NewTreeDigestHashWriter()
	var lengthBytes [8]byte
	binary.LittleEndian.PutUint64(lengthBytes[:], uint64(len(scriptBytes)))
	writer.InfallibleWrite(lengthBytes[:])
	writer.InfallibleWrite(scriptBytes)
	writer.InfallibleWrite(registry.Fingerprint())
	return writer.Finalize()
}
