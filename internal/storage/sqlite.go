package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/shelfgrep/shelfgrep/pkg/types"
)

// ErrNotFound is returned when a requested entity doesn't exist
var ErrNotFound = errors.New("not found")

// SQLiteStore implements the Store interface using SQLite
type SQLiteStore struct {
	db *sql.DB
}

var (
	_ Store = (*SQLiteStore)(nil)
	_ Tx    = (*sqliteTx)(nil)
)

// openDatabase opens a SQLite database with appropriate settings
func openDatabase(dbPath string) (*sql.DB, error) {
	db, err := sql.Open(DriverName, dbPath)
	if err != nil {
		return nil, err
	}

	// Enable WAL mode for better concurrency
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	// Set connection pool settings
	db.SetMaxOpenConns(1) // SQLite benefits from single writer
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	// Enable foreign keys
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	return db, nil
}

// NewSQLiteStore creates a new SQLite store instance
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := openDatabase(dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Apply migrations
	if err := ApplyMigrations(context.Background(), db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to apply migrations: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Close closes the database connection
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// BeginTx starts a new transaction
func (s *SQLiteStore) BeginTx(ctx context.Context) (Tx, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	return &sqliteTx{tx: tx, store: s}, nil
}

// querier is an interface that both *sql.DB and *sql.Tx implement
type querier interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// sqliteTx wraps a SQL transaction
type sqliteTx struct {
	tx    *sql.Tx
	store *SQLiteStore
}

func (t *sqliteTx) Commit() error {
	return t.tx.Commit()
}

func (t *sqliteTx) Rollback() error {
	return t.tx.Rollback()
}

// querier returns the transaction querier
func (t *sqliteTx) querier() querier {
	return t.tx
}

// querier returns the DB querier
func (s *SQLiteStore) querier() querier {
	return s.db
}

// Book operations

const bookColumns = `id, title, author, publisher, published, language, isbn,
       description, genre, total_words, file_path, processed_at`

// insertBookWithQuerier is the internal implementation that uses a querier
func (s *SQLiteStore) insertBookWithQuerier(ctx context.Context, q querier, book *types.Book) error {
	if err := book.Validate(); err != nil {
		return err
	}

	// Duplicate detection keys on (file_path, title), not the uuid, so
	// re-ingesting the same file is caught before any chunk work.
	filePath, title := book.SourceKey()
	var existingID string
	err := q.QueryRowContext(ctx,
		"SELECT id FROM books WHERE file_path = ? AND title = ?",
		filePath, title).Scan(&existingID)
	if err == nil {
		return fmt.Errorf("%w: book %q from %s (id %s)", types.ErrDuplicateSource, title, filePath, existingID)
	}
	if err != sql.ErrNoRows {
		return fmt.Errorf("failed to check for duplicate book: %w", err)
	}

	query := `
		INSERT INTO books (id, title, author, publisher, published, language, isbn,
		                   description, genre, total_words, file_path, processed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	now := time.Now()
	if book.ProcessedAt.IsZero() {
		book.ProcessedAt = now
	}
	_, err = q.ExecContext(ctx, query,
		book.ID, book.Title, book.Author, book.Publisher, book.Published,
		book.Language, book.ISBN, book.Description, book.Genre,
		book.TotalWords, book.FilePath, book.ProcessedAt)
	if err != nil {
		return fmt.Errorf("failed to insert book: %w", err)
	}
	return nil
}

func (s *SQLiteStore) InsertBook(ctx context.Context, book *types.Book) error {
	return s.insertBookWithQuerier(ctx, s.querier(), book)
}

func scanBook(row interface{ Scan(...interface{}) error }) (*types.Book, error) {
	var book types.Book
	var processedAt sql.NullTime
	err := row.Scan(
		&book.ID, &book.Title, &book.Author, &book.Publisher, &book.Published,
		&book.Language, &book.ISBN, &book.Description, &book.Genre,
		&book.TotalWords, &book.FilePath, &processedAt,
	)
	if err != nil {
		return nil, err
	}
	if processedAt.Valid {
		book.ProcessedAt = processedAt.Time
	}
	return &book, nil
}

// getBookWithQuerier is the internal implementation that uses a querier
func (s *SQLiteStore) getBookWithQuerier(ctx context.Context, q querier, bookID string) (*types.Book, error) {
	query := `SELECT ` + bookColumns + ` FROM books WHERE id = ?`
	book, err := scanBook(q.QueryRowContext(ctx, query, bookID))
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return book, nil
}

func (s *SQLiteStore) GetBook(ctx context.Context, bookID string) (*types.Book, error) {
	return s.getBookWithQuerier(ctx, s.querier(), bookID)
}

// getBookBySourceWithQuerier is the internal implementation that uses a querier
func (s *SQLiteStore) getBookBySourceWithQuerier(ctx context.Context, q querier, filePath, title string) (*types.Book, error) {
	query := `SELECT ` + bookColumns + ` FROM books WHERE file_path = ? AND title = ?`
	book, err := scanBook(q.QueryRowContext(ctx, query, filePath, title))
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return book, nil
}

func (s *SQLiteStore) GetBookBySource(ctx context.Context, filePath, title string) (*types.Book, error) {
	return s.getBookBySourceWithQuerier(ctx, s.querier(), filePath, title)
}

// updateBookGenreWithQuerier is the internal implementation that uses a querier
func (s *SQLiteStore) updateBookGenreWithQuerier(ctx context.Context, q querier, bookID, genre string) error {
	result, err := q.ExecContext(ctx, "UPDATE books SET genre = ? WHERE id = ?", genre, bookID)
	if err != nil {
		return fmt.Errorf("failed to update book genre: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLiteStore) UpdateBookGenre(ctx context.Context, bookID, genre string) error {
	return s.updateBookGenreWithQuerier(ctx, s.querier(), bookID, genre)
}

// listBooksWithQuerier is the internal implementation that uses a querier
func (s *SQLiteStore) listBooksWithQuerier(ctx context.Context, q querier) ([]*types.Book, error) {
	query := `SELECT ` + bookColumns + ` FROM books ORDER BY title, author`
	rows, err := q.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	books := make([]*types.Book, 0)
	for rows.Next() {
		book, err := scanBook(rows)
		if err != nil {
			return nil, err
		}
		books = append(books, book)
	}
	return books, rows.Err()
}

func (s *SQLiteStore) ListBooks(ctx context.Context) ([]*types.Book, error) {
	return s.listBooksWithQuerier(ctx, s.querier())
}

// deleteBookWithQuerier is the internal implementation that uses a querier.
// Chunks and embeddings cascade.
func (s *SQLiteStore) deleteBookWithQuerier(ctx context.Context, q querier, bookID string) error {
	result, err := q.ExecContext(ctx, "DELETE FROM books WHERE id = ?", bookID)
	if err != nil {
		return fmt.Errorf("failed to delete book: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLiteStore) DeleteBook(ctx context.Context, bookID string) error {
	return s.deleteBookWithQuerier(ctx, s.querier(), bookID)
}

// Chunk operations

const chunkColumns = `chunk_id, book_id, chunk_type, title, content,
       chapter_number, section_number, paragraph_number, parent_chunk_id,
       start_pos, end_pos, word_count, char_count`

// insertChunksWithQuerier is the internal implementation that uses a querier.
// Callers that need all-or-nothing semantics for a book run this inside
// a transaction together with InsertBook.
func (s *SQLiteStore) insertChunksWithQuerier(ctx context.Context, q querier, chunks []*types.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}

	query := `
		INSERT INTO chunks (chunk_id, book_id, chunk_type, title, content,
		                    chapter_number, section_number, paragraph_number,
		                    parent_chunk_id, start_pos, end_pos, word_count, char_count)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	for _, chunk := range chunks {
		if err := chunk.Validate(); err != nil {
			return fmt.Errorf("invalid chunk %s: %w", chunk.ID, err)
		}
		var parentID interface{}
		if chunk.ParentID != nil {
			parentID = *chunk.ParentID
		}
		_, err := q.ExecContext(ctx, query,
			chunk.ID, chunk.BookID, string(chunk.Type), chunk.Title, chunk.Content,
			chunk.ChapterNumber, chunk.SectionNumber, chunk.ParagraphNumber,
			parentID, chunk.StartPos, chunk.EndPos, chunk.WordCount, chunk.CharCount)
		if err != nil {
			return fmt.Errorf("failed to insert chunk %s: %w", chunk.ID, err)
		}
	}
	return nil
}

// InsertChunks stores a chunk batch in its own transaction, so a
// failure on any chunk leaves none of the batch behind.
func (s *SQLiteStore) InsertChunks(ctx context.Context, chunks []*types.Chunk) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if err := s.insertChunksWithQuerier(ctx, tx, chunks); err != nil {
		return err
	}
	return tx.Commit()
}

func scanChunk(row interface{ Scan(...interface{}) error }) (*types.Chunk, error) {
	var chunk types.Chunk
	var chunkType string
	var title sql.NullString
	var parentID sql.NullString

	err := row.Scan(
		&chunk.ID, &chunk.BookID, &chunkType, &title, &chunk.Content,
		&chunk.ChapterNumber, &chunk.SectionNumber, &chunk.ParagraphNumber,
		&parentID, &chunk.StartPos, &chunk.EndPos, &chunk.WordCount, &chunk.CharCount,
	)
	if err != nil {
		return nil, err
	}

	chunk.Type = types.ChunkType(chunkType)
	if title.Valid {
		chunk.Title = title.String
	}
	if parentID.Valid {
		id := parentID.String
		chunk.ParentID = &id
	}
	return &chunk, nil
}

// getChunkWithQuerier is the internal implementation that uses a querier
func (s *SQLiteStore) getChunkWithQuerier(ctx context.Context, q querier, chunkID string) (*types.Chunk, error) {
	query := `SELECT ` + chunkColumns + ` FROM chunks WHERE chunk_id = ?`
	chunk, err := scanChunk(q.QueryRowContext(ctx, query, chunkID))
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return chunk, nil
}

func (s *SQLiteStore) GetChunk(ctx context.Context, chunkID string) (*types.Chunk, error) {
	return s.getChunkWithQuerier(ctx, s.querier(), chunkID)
}

// listChunksByBookWithQuerier returns a book's chunks in document order
func (s *SQLiteStore) listChunksByBookWithQuerier(ctx context.Context, q querier, bookID string) ([]*types.Chunk, error) {
	query := `
		SELECT ` + chunkColumns + `
		FROM chunks
		WHERE book_id = ?
		ORDER BY chapter_number, section_number, paragraph_number
	`
	rows, err := q.QueryContext(ctx, query, bookID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	chunks := make([]*types.Chunk, 0)
	for rows.Next() {
		chunk, err := scanChunk(rows)
		if err != nil {
			return nil, err
		}
		chunks = append(chunks, chunk)
	}
	return chunks, rows.Err()
}

func (s *SQLiteStore) ListChunksByBook(ctx context.Context, bookID string) ([]*types.Chunk, error) {
	return s.listChunksByBookWithQuerier(ctx, s.querier(), bookID)
}

// listChunksMissingEmbeddingWithQuerier finds chunks with no stored
// vector, for the embedding retry pass. A non-positive limit returns all.
func (s *SQLiteStore) listChunksMissingEmbeddingWithQuerier(ctx context.Context, q querier, limit int) ([]*types.Chunk, error) {
	query := `
		SELECT ` + chunkColumns + `
		FROM chunks c
		WHERE NOT EXISTS (SELECT 1 FROM embeddings e WHERE e.chunk_id = c.chunk_id)
		ORDER BY c.book_id, c.chapter_number, c.section_number, c.paragraph_number
	`
	args := []interface{}{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	chunks := make([]*types.Chunk, 0)
	for rows.Next() {
		chunk, err := scanChunk(rows)
		if err != nil {
			return nil, err
		}
		chunks = append(chunks, chunk)
	}
	return chunks, rows.Err()
}

func (s *SQLiteStore) ListChunksMissingEmbedding(ctx context.Context, limit int) ([]*types.Chunk, error) {
	return s.listChunksMissingEmbeddingWithQuerier(ctx, s.querier(), limit)
}

// getChunkNeighborsWithQuerier resolves a chunk's prev/next in document
// order within its book, plus the chapter-level outline.
func (s *SQLiteStore) getChunkNeighborsWithQuerier(ctx context.Context, q querier, chunkID string) (*Neighbors, error) {
	current, err := s.getChunkWithQuerier(ctx, q, chunkID)
	if err != nil {
		return nil, err
	}

	neighbors := &Neighbors{}

	prevQuery := `
		SELECT ` + chunkColumns + `
		FROM chunks
		WHERE book_id = ?
		  AND (chapter_number, section_number, paragraph_number) < (?, ?, ?)
		ORDER BY chapter_number DESC, section_number DESC, paragraph_number DESC
		LIMIT 1
	`
	prev, err := scanChunk(q.QueryRowContext(ctx, prevQuery,
		current.BookID, current.ChapterNumber, current.SectionNumber, current.ParagraphNumber))
	if err != nil && err != sql.ErrNoRows {
		return nil, err
	}
	if err == nil {
		neighbors.Prev = prev
	}

	nextQuery := `
		SELECT ` + chunkColumns + `
		FROM chunks
		WHERE book_id = ?
		  AND (chapter_number, section_number, paragraph_number) > (?, ?, ?)
		ORDER BY chapter_number, section_number, paragraph_number
		LIMIT 1
	`
	next, err := scanChunk(q.QueryRowContext(ctx, nextQuery,
		current.BookID, current.ChapterNumber, current.SectionNumber, current.ParagraphNumber))
	if err != nil && err != sql.ErrNoRows {
		return nil, err
	}
	if err == nil {
		neighbors.Next = next
	}

	outlineQuery := `
		SELECT chunk_id, title, chapter_number
		FROM chunks
		WHERE book_id = ? AND chunk_type = ?
		ORDER BY chapter_number
	`
	rows, err := q.QueryContext(ctx, outlineQuery, current.BookID, string(types.ChunkChapter))
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var entry types.OutlineEntry
		var title sql.NullString
		if err := rows.Scan(&entry.ChunkID, &title, &entry.ChapterNumber); err != nil {
			return nil, err
		}
		if title.Valid {
			entry.Title = title.String
		}
		neighbors.Outline = append(neighbors.Outline, entry)
	}
	return neighbors, rows.Err()
}

func (s *SQLiteStore) GetChunkNeighbors(ctx context.Context, chunkID string) (*Neighbors, error) {
	return s.getChunkNeighborsWithQuerier(ctx, s.querier(), chunkID)
}

// Embedding operations

// upsertEmbeddingWithQuerier is the internal implementation that uses a querier
func (s *SQLiteStore) upsertEmbeddingWithQuerier(ctx context.Context, q querier, embedding *Embedding) error {
	query := `
		INSERT INTO embeddings (chunk_id, vector, dimension, provider, model, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(chunk_id) DO UPDATE SET
			vector = excluded.vector,
			dimension = excluded.dimension,
			provider = excluded.provider,
			model = excluded.model
	`
	now := time.Now()
	result, err := q.ExecContext(ctx, query,
		embedding.ChunkID, embedding.Vector, embedding.Dimension,
		embedding.Provider, embedding.Model, now)
	if err != nil {
		return fmt.Errorf("failed to upsert embedding: %w", err)
	}

	if embedding.ID == 0 {
		id, err := result.LastInsertId()
		if err == nil {
			embedding.ID = id
		}
	}

	embedding.CreatedAt = now
	return nil
}

func (s *SQLiteStore) UpsertEmbedding(ctx context.Context, embedding *Embedding) error {
	return s.upsertEmbeddingWithQuerier(ctx, s.querier(), embedding)
}

// getEmbeddingWithQuerier is the internal implementation that uses a querier
func (s *SQLiteStore) getEmbeddingWithQuerier(ctx context.Context, q querier, chunkID string) (*Embedding, error) {
	query := `
		SELECT id, chunk_id, vector, dimension, provider, model, created_at
		FROM embeddings
		WHERE chunk_id = ?
	`
	var embedding Embedding
	err := q.QueryRowContext(ctx, query, chunkID).Scan(
		&embedding.ID, &embedding.ChunkID, &embedding.Vector,
		&embedding.Dimension, &embedding.Provider, &embedding.Model,
		&embedding.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &embedding, nil
}

func (s *SQLiteStore) GetEmbedding(ctx context.Context, chunkID string) (*Embedding, error) {
	return s.getEmbeddingWithQuerier(ctx, s.querier(), chunkID)
}

// deleteEmbeddingWithQuerier is the internal implementation that uses a querier
func (s *SQLiteStore) deleteEmbeddingWithQuerier(ctx context.Context, q querier, chunkID string) error {
	_, err := q.ExecContext(ctx, "DELETE FROM embeddings WHERE chunk_id = ?", chunkID)
	return err
}

func (s *SQLiteStore) DeleteEmbedding(ctx context.Context, chunkID string) error {
	return s.deleteEmbeddingWithQuerier(ctx, s.querier(), chunkID)
}

// Search operations

func (s *SQLiteStore) SearchText(ctx context.Context, query string, limit int) ([]LexicalResult, error) {
	return searchText(ctx, s.db, query, limit)
}

func (s *SQLiteStore) SearchVector(ctx context.Context, vector []float32, threshold float64, limit int) ([]VectorResult, error) {
	return searchVector(ctx, s.db, vector, threshold, limit)
}

// Status operations

func (s *SQLiteStore) Stats(ctx context.Context) (*LibraryStats, error) {
	stats := &LibraryStats{}

	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM books").Scan(&stats.BooksCount)
	if err != nil {
		return nil, err
	}

	err = s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM chunks").Scan(&stats.ChunksCount)
	if err != nil {
		return nil, err
	}

	err = s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM embeddings").Scan(&stats.EmbeddingsCount)
	if err != nil {
		return nil, err
	}
	stats.PendingEmbeddings = stats.ChunksCount - stats.EmbeddingsCount

	// Calculate database size
	var pageCount, pageSize int
	err = s.db.QueryRowContext(ctx, "PRAGMA page_count").Scan(&pageCount)
	if err == nil {
		_ = s.db.QueryRowContext(ctx, "PRAGMA page_size").Scan(&pageSize)
		stats.DatabaseSizeMB = float64(pageCount*pageSize) / (1024 * 1024)
	}

	stats.Health = HealthStatus{
		DatabaseAccessible:  true,
		EmbeddingsAvailable: stats.EmbeddingsCount > 0,
		FTSIndexBuilt:       true, // FTS table is created with migrations
	}

	return stats, nil
}

// Transaction implementations.
// Write operations use the internal helper that takes a querier; reads
// inside a transaction see uncommitted rows the same way.

func (t *sqliteTx) InsertBook(ctx context.Context, book *types.Book) error {
	return t.store.insertBookWithQuerier(ctx, t.querier(), book)
}

func (t *sqliteTx) GetBook(ctx context.Context, bookID string) (*types.Book, error) {
	return t.store.getBookWithQuerier(ctx, t.querier(), bookID)
}

func (t *sqliteTx) GetBookBySource(ctx context.Context, filePath, title string) (*types.Book, error) {
	return t.store.getBookBySourceWithQuerier(ctx, t.querier(), filePath, title)
}

func (t *sqliteTx) UpdateBookGenre(ctx context.Context, bookID, genre string) error {
	return t.store.updateBookGenreWithQuerier(ctx, t.querier(), bookID, genre)
}

func (t *sqliteTx) ListBooks(ctx context.Context) ([]*types.Book, error) {
	return t.store.listBooksWithQuerier(ctx, t.querier())
}

func (t *sqliteTx) DeleteBook(ctx context.Context, bookID string) error {
	return t.store.deleteBookWithQuerier(ctx, t.querier(), bookID)
}

func (t *sqliteTx) InsertChunks(ctx context.Context, chunks []*types.Chunk) error {
	return t.store.insertChunksWithQuerier(ctx, t.querier(), chunks)
}

func (t *sqliteTx) GetChunk(ctx context.Context, chunkID string) (*types.Chunk, error) {
	return t.store.getChunkWithQuerier(ctx, t.querier(), chunkID)
}

func (t *sqliteTx) ListChunksByBook(ctx context.Context, bookID string) ([]*types.Chunk, error) {
	return t.store.listChunksByBookWithQuerier(ctx, t.querier(), bookID)
}

func (t *sqliteTx) ListChunksMissingEmbedding(ctx context.Context, limit int) ([]*types.Chunk, error) {
	return t.store.listChunksMissingEmbeddingWithQuerier(ctx, t.querier(), limit)
}

func (t *sqliteTx) GetChunkNeighbors(ctx context.Context, chunkID string) (*Neighbors, error) {
	return t.store.getChunkNeighborsWithQuerier(ctx, t.querier(), chunkID)
}

func (t *sqliteTx) UpsertEmbedding(ctx context.Context, embedding *Embedding) error {
	return t.store.upsertEmbeddingWithQuerier(ctx, t.querier(), embedding)
}

func (t *sqliteTx) GetEmbedding(ctx context.Context, chunkID string) (*Embedding, error) {
	return t.store.getEmbeddingWithQuerier(ctx, t.querier(), chunkID)
}

func (t *sqliteTx) DeleteEmbedding(ctx context.Context, chunkID string) error {
	return t.store.deleteEmbeddingWithQuerier(ctx, t.querier(), chunkID)
}

func (t *sqliteTx) SearchText(ctx context.Context, query string, limit int) ([]LexicalResult, error) {
	return t.store.SearchText(ctx, query, limit)
}

func (t *sqliteTx) SearchVector(ctx context.Context, vector []float32, threshold float64, limit int) ([]VectorResult, error) {
	return t.store.SearchVector(ctx, vector, threshold, limit)
}

func (t *sqliteTx) Stats(ctx context.Context) (*LibraryStats, error) {
	return t.store.Stats(ctx)
}

func (t *sqliteTx) Close() error {
	// Transactions don't close the underlying connection
	return nil
}

func (t *sqliteTx) BeginTx(ctx context.Context) (Tx, error) {
	// SQLite does not support true nested transactions
	return nil, errors.New("nested transactions not supported")
}
