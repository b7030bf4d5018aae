// Package searcher answers queries over the ingested library through two
// independent retrieval surfaces: full-text search backed by SQLite FTS5
// and semantic search over stored embedding vectors.
//
// Hybrid queries run both surfaces concurrently and return their result
// sets side by side as labeled sections. The sections are never fused,
// re-ranked, or deduplicated: a lexical bm25 score and a cosine
// similarity measure different things, and collapsing them into one list
// hides which surface produced a hit. A chunk matching both ways simply
// appears in both sections.
//
// Each surface degrades independently. If the embedding endpoint is
// down, a hybrid response still carries lexical results together with a
// status block naming the failed surface; callers decide whether a
// degraded answer is good enough.
//
// Results are decorated for reading, not just ranking: a citation such
// as "Moby-Dick — Chapter 3: The Spouter-Inn", an excerpt centered on
// the first match, and prev/next navigation so a caller can walk the
// book outward from any hit.
//
// Hybrid responses are cached in an in-memory LRU keyed by query and
// options, with a TTL. Ingestion invalidates the whole cache.
package searcher
