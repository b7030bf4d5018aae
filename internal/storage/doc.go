// Package storage provides SQLite-based persistence for the book library.
//
// The storage layer manages:
//   - Book metadata from ingested EPUBs
//   - Text chunks with their position in the book hierarchy
//   - Vector embeddings for chunks
//   - The FTS5 full-text search index
//
// # Database Schema
//
// Tables:
//   - books: Bibliographic metadata, one row per ingested EPUB
//   - chunks: Chapter and paragraph chunks in document order
//   - embeddings: Vector embeddings, at most one per chunk
//   - chunks_fts: FTS5 full-text search index, trigger-synced
//
// Chunks carry a deterministic text identity (book uuid + zero-padded
// ordinal) alongside the integer rowid that backs the FTS index.
// Re-ingesting the same book therefore produces the same chunk IDs.
//
// # Basic Usage
//
//	db, err := storage.NewSQLiteStore("~/.shelfgrep/library.db")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer db.Close()
//
// # Transactions
//
// A book and its chunks are stored atomically; a failure anywhere
// rolls back the book row too, so no orphan book is left behind:
//
//	tx, err := db.BeginTx(ctx)
//	if err != nil {
//	    return err
//	}
//	defer tx.Rollback()
//
//	if err := tx.InsertBook(ctx, book); err != nil {
//	    return err
//	}
//	if err := tx.InsertChunks(ctx, chunks); err != nil {
//	    return err
//	}
//	return tx.Commit()
//
// # Search
//
// Lexical search uses FTS5 BM25 ranking; ties break on document order:
//
//	results, err := db.SearchText(ctx, "white whale", 10)
//
// Semantic search scans stored embeddings with cosine similarity and a
// minimum threshold. Chunks whose embedding pass failed have no row in
// the embeddings table and never appear:
//
//	results, err := db.SearchVector(ctx, queryVector, 0.1, 10)
//
// # Build Tags
//
// The storage package supports two build configurations:
//
// CGO Build (sqlite_vec tag):
//
//   - Uses github.com/mattn/go-sqlite3 driver
//
//   - Includes sqlite-vec extension for fast vector operations
//
//   - Requires C compiler
//
//     CGO_ENABLED=1 go build -tags "sqlite_vec"
//
// Pure Go Build (purego tag):
//
//   - Uses modernc.org/sqlite driver
//
//   - Pure Go vector operations (slower)
//
//   - No C compiler needed
//
//     CGO_ENABLED=0 go build -tags "purego"
package storage
