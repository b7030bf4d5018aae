// Package types defines the domain model shared across ingestion and
// search: books, chunks, search results, and the error taxonomy.
//
// A Book is one ingested EPUB source. Its text is decomposed into an
// ordered hierarchy of Chunks with deterministic IDs of the form
// {book_id}_{0001}, which makes re-ingestion idempotent. SearchResult
// values are derived at query time and carry citation, preview, and
// navigation metadata for the serving layer.
package types
