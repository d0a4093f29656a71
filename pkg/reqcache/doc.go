// Package reqcache caches partial-update responses and replays them.
//
// An element opts in with data-cache. When it issues a request the cache
// derives a key (data-cache-key, or the verb, URL and sorted parameters),
// and a live entry for that key cancels the network request and replays the
// stored payload through the exchange layer's own completion path. The
// replay emits the same AfterRequest and AfterSwap events a round trip
// would, so nothing downstream can tell the two apart.
//
// A successful response to an opted-in element is stored with the element's
// data-cache-ttl, or the default TTL. Entries are evicted lazily: Get never
// returns an entry past its expiry.
//
// Prefetcher fills the same store speculatively when the pointer enters or
// focus lands on an element carrying data-prefetch.
package reqcache
