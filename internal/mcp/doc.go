// Package mcp exposes the library over the Model Context Protocol so
// MCP clients can ingest and search books through four tools:
//
//   - ingest_book: parse an EPUB, chunk it, store it, embed it
//   - search_library: hybrid, lexical, or semantic retrieval
//   - get_reading_context: a chunk with neighbors and outline
//   - library_status: statistics and health
//
// The server speaks stdio. Tool responses are indented JSON carrying
// chunk identity, book title and author, scores, previews, and
// navigation links, so a client can quote a passage with its citation
// and keep reading from any hit.
//
// Parameter problems map to JSON-RPC error codes in the -32xxx range;
// an unreachable embedding backend degrades semantic results rather
// than failing lexical ones.
package mcp
