// Package kvcache is a caching façade over a remote key-value store.
//
// A Cache owns a bounded pool of store connections and a namespace. Every key
// is stored as "<name>:<key>", so several caches can share one store and
// DeleteAll only ever touches its own keys.
//
// Components:
//   - provider.Options: opens the store (Redis, in-process memory, BigCache, Ristretto).
//   - codec.Codec[V]: (de)serializes V <-> []byte.
//   - internal pool: Min reserved slots dialed lazily, Max concurrent holders.
//
// TTL policy:
//
//	NoTTL            store without expiry
//	Seconds(n), n>0  store with expiry
//	Seconds(n), n<=0 skip the write, return (value, nil)
//	ParseTTL("abc")  skip the write, return (value, nil)
//
// Cache-aside:
//
//	u, err := users.Wrap(ctx, "u:1", func(ctx context.Context) (User, error) {
//		return db.LoadUser(ctx, 1)
//	}, kvcache.WithTTL(kvcache.Seconds(300)))
//
// Wrap takes no lock: concurrent misses for one key each run the compute
// function and write its result.
package kvcache
