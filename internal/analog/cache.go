package analog

import (
	"encoding/binary"
	"fmt"
	"hash/fnv"
	"math"
	"sync"

	"github.com/couchcryptid/cyclone-analog-service/internal/domain"
)

// encodingCache is a thread-safe LRU of encoded track vectors keyed by storm
// SID, resample length, and a fingerprint of the track positions. Encoded
// vectors are recomputed on every refine cycle otherwise; the pool barely
// changes between cycles, so caching skips almost all of that work. The
// fingerprint guards against a re-published track reusing a SID with revised
// coordinates. Cached slices are shared and must be treated as read-only.
type encodingCache struct {
	maxEntries int
	mu         sync.Mutex
	entries    map[string]*cacheEntry
	head       *cacheEntry // most recently used
	tail       *cacheEntry // least recently used
}

type cacheEntry struct {
	key   string
	value []float64
	prev  *cacheEntry
	next  *cacheEntry
}

func newEncodingCache(maxEntries int) *encodingCache {
	return &encodingCache{
		maxEntries: maxEntries,
		entries:    make(map[string]*cacheEntry),
	}
}

func encodingKey(track domain.Track, nPoints int) string {
	h := fnv.New64a()
	var buf [8]byte
	for _, series := range [][]float64{track.Lat, track.Lon} {
		for _, v := range series {
			binary.LittleEndian.PutUint64(buf[:], math.Float64bits(v))
			h.Write(buf[:])
		}
	}
	return fmt.Sprintf("%s|%d|%x", track.Attrs.SID, nPoints, h.Sum64())
}

func (c *encodingCache) get(key string) ([]float64, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	c.moveToFront(e)
	return e.value, true
}

func (c *encodingCache) put(key string, value []float64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.entries[key]; ok {
		e.value = value
		c.moveToFront(e)
		return
	}

	e := &cacheEntry{key: key, value: value}
	c.entries[key] = e
	c.addToFront(e)

	if len(c.entries) > c.maxEntries {
		c.evictTail()
	}
}

func (c *encodingCache) moveToFront(e *cacheEntry) {
	if e == c.head {
		return
	}
	c.remove(e)
	c.addToFront(e)
}

func (c *encodingCache) addToFront(e *cacheEntry) {
	e.next = c.head
	e.prev = nil
	if c.head != nil {
		c.head.prev = e
	}
	c.head = e
	if c.tail == nil {
		c.tail = e
	}
}

func (c *encodingCache) remove(e *cacheEntry) {
	if e.prev != nil {
		e.prev.next = e.next
	} else {
		c.head = e.next
	}
	if e.next != nil {
		e.next.prev = e.prev
	} else {
		c.tail = e.prev
	}
}

func (c *encodingCache) evictTail() {
	if c.tail == nil {
		return
	}
	delete(c.entries, c.tail.key)
	c.remove(c.tail)
}
