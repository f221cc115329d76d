// Package sessions holds the client's token pair and its persistence.
//
// A Session is immutable: refreshing produces a new value which replaces the old one
// through a Holder, so concurrent readers never observe a half-updated session.
// Persistence goes through the Store key-value abstraction. A Store should be scoped to
// one client profile; MemoryStore, RedisStore and SealedStore are provided.
package sessions
