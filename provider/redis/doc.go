// Package redis adapts go-redis v9 to the kvcache provider contract.
//
// Each pooled connection is a *redis.Conn pinned to one server connection, so
// the commands of a cache operation run on the connection the pool handed out.
// Keys uses SCAN MATCH rather than KEYS.
package redis
