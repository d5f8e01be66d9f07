// Package cache memoizes console read operations keyed by the exact request
// that produced them.
//
// Entries live in per-resource-type stores and are torn down through five
// overlapping invalidation channels: explicit key, resource type, exact tag,
// prefix tag, and passive observation of /eos/out/ broadcasts. Expiry is
// lazy; there is no background sweeper.
package cache
