package storage

import (
	"context"
	"database/sql"
	"encoding/binary"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/shelfgrep/shelfgrep/pkg/types"
)

// resultColumns are the chunk + book fields every search row carries.
const resultColumns = `c.chunk_id, c.book_id, c.chunk_type, c.title, c.content,
       c.chapter_number, c.section_number, c.paragraph_number, c.parent_chunk_id,
       c.start_pos, c.end_pos, c.word_count, c.char_count,
       b.title, b.author`

func scanResultRow(rows *sql.Rows) (*types.Chunk, string, string, float64, error) {
	var chunk types.Chunk
	var chunkType string
	var title, parentID, bookAuthor sql.NullString
	var bookTitle string
	var score float64

	err := rows.Scan(
		&chunk.ID, &chunk.BookID, &chunkType, &title, &chunk.Content,
		&chunk.ChapterNumber, &chunk.SectionNumber, &chunk.ParagraphNumber,
		&parentID, &chunk.StartPos, &chunk.EndPos, &chunk.WordCount, &chunk.CharCount,
		&bookTitle, &bookAuthor, &score,
	)
	if err != nil {
		return nil, "", "", 0, err
	}

	chunk.Type = types.ChunkType(chunkType)
	if title.Valid {
		chunk.Title = title.String
	}
	if parentID.Valid {
		id := parentID.String
		chunk.ParentID = &id
	}
	var author string
	if bookAuthor.Valid {
		author = bookAuthor.String
	}
	return &chunk, bookTitle, author, score, nil
}

// searchText performs BM25 full-text search using FTS5. Rank ties break
// on document order so results from the same book read top to bottom.
func searchText(ctx context.Context, db *sql.DB, query string, limit int) ([]LexicalResult, error) {
	sanitized := sanitizeFTSQuery(query)
	if sanitized == "" {
		return nil, fmt.Errorf("empty search query")
	}
	if limit <= 0 {
		return []LexicalResult{}, nil
	}

	sqlQuery := `
		SELECT ` + resultColumns + `,
		       bm25(chunks_fts) as score
		FROM chunks_fts
		INNER JOIN chunks c ON chunks_fts.rowid = c.id
		INNER JOIN books b ON c.book_id = b.id
		WHERE chunks_fts MATCH ?
		ORDER BY score, c.book_id, c.chapter_number, c.section_number, c.paragraph_number
		LIMIT ?
	`
	rows, err := db.QueryContext(ctx, sqlQuery, sanitized, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to execute FTS search: %w", err)
	}
	defer func() { _ = rows.Close() }()

	results := make([]LexicalResult, 0, limit)
	for rows.Next() {
		chunk, bookTitle, bookAuthor, score, err := scanResultRow(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan result: %w", err)
		}
		// Convert BM25 score (negative, lower is better) to a positive
		// normalized score. BM25 scores are typically in range [-50, 0].
		results = append(results, LexicalResult{
			Chunk:      chunk,
			BookTitle:  bookTitle,
			BookAuthor: bookAuthor,
			Score:      1.0 / (1.0 + math.Abs(score)/50.0),
		})
	}
	return results, rows.Err()
}

// searchVector performs vector similarity search using cosine similarity.
// Chunks without a stored embedding never appear.
func searchVector(ctx context.Context, db *sql.DB, queryVector []float32, threshold float64, limit int) ([]VectorResult, error) {
	if limit <= 0 {
		return []VectorResult{}, nil
	}
	// Use optimized SQL-based search when sqlite-vec is available
	if VectorExtensionAvailable {
		return searchVectorOptimized(ctx, db, queryVector, threshold, limit)
	}
	// Fall back to Go-based computation for purego builds
	return searchVectorFallback(ctx, db, queryVector, threshold, limit)
}

// searchVectorOptimized uses the sqlite-vec extension to compute
// distances at the database layer.
func searchVectorOptimized(ctx context.Context, db *sql.DB, queryVector []float32, threshold float64, limit int) ([]VectorResult, error) {
	queryVectorBlob := serializeVector(queryVector)

	// vec_distance_cosine returns distance (lower is better); convert
	// to similarity to keep one score convention across build modes.
	query := `
		SELECT ` + resultColumns + `,
		       1.0 - vec_distance_cosine(e.vector, ?) as similarity
		FROM chunks c
		INNER JOIN embeddings e ON c.chunk_id = e.chunk_id
		INNER JOIN books b ON c.book_id = b.id
		WHERE (1.0 - vec_distance_cosine(e.vector, ?)) >= ?
		ORDER BY similarity DESC
		LIMIT ?
	`
	rows, err := db.QueryContext(ctx, query, queryVectorBlob, queryVectorBlob, threshold, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to execute vector search: %w", err)
	}
	defer func() { _ = rows.Close() }()

	results := make([]VectorResult, 0, limit)
	for rows.Next() {
		chunk, bookTitle, bookAuthor, similarity, err := scanResultRow(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan result: %w", err)
		}
		results = append(results, VectorResult{
			Chunk:      chunk,
			BookTitle:  bookTitle,
			BookAuthor: bookAuthor,
			Similarity: similarity,
		})
	}
	return results, rows.Err()
}

// searchVectorFallback computes cosine similarity in Go. Used when the
// sqlite-vec extension is not available (purego builds).
func searchVectorFallback(ctx context.Context, db *sql.DB, queryVector []float32, threshold float64, limit int) ([]VectorResult, error) {
	query := `
		SELECT ` + resultColumns + `,
		       e.vector
		FROM chunks c
		INNER JOIN embeddings e ON c.chunk_id = e.chunk_id
		INNER JOIN books b ON c.book_id = b.id
	`
	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query embeddings: %w", err)
	}
	defer func() { _ = rows.Close() }()

	candidates := make([]VectorResult, 0, 256)
	for rows.Next() {
		var chunk types.Chunk
		var chunkType string
		var title, parentID, bookAuthor sql.NullString
		var bookTitle string
		var vectorBlob []byte

		err := rows.Scan(
			&chunk.ID, &chunk.BookID, &chunkType, &title, &chunk.Content,
			&chunk.ChapterNumber, &chunk.SectionNumber, &chunk.ParagraphNumber,
			&parentID, &chunk.StartPos, &chunk.EndPos, &chunk.WordCount, &chunk.CharCount,
			&bookTitle, &bookAuthor, &vectorBlob,
		)
		if err != nil {
			return nil, err
		}

		vector := deserializeVector(vectorBlob)
		if len(vector) != len(queryVector) {
			continue // Dimension mismatch, skip
		}

		similarity := cosineSimilarity(queryVector, vector)
		if similarity < threshold {
			continue
		}

		chunk.Type = types.ChunkType(chunkType)
		if title.Valid {
			chunk.Title = title.String
		}
		if parentID.Valid {
			id := parentID.String
			chunk.ParentID = &id
		}
		var author string
		if bookAuthor.Valid {
			author = bookAuthor.String
		}
		candidates = append(candidates, VectorResult{
			Chunk:      &chunk,
			BookTitle:  bookTitle,
			BookAuthor: author,
			Similarity: similarity,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// Sort by similarity (descending) and return top K
	sort.Slice(candidates, func(i, j int) bool {
		return candidates[i].Similarity > candidates[j].Similarity
	})
	if limit > len(candidates) {
		limit = len(candidates)
	}
	return candidates[:limit], nil
}

// serializeVector converts a float32 slice to a byte blob (little-endian)
func serializeVector(vector []float32) []byte {
	blob := make([]byte, len(vector)*4)
	for i, v := range vector {
		binary.LittleEndian.PutUint32(blob[i*4:], math.Float32bits(v))
	}
	return blob
}

// deserializeVector converts a byte blob back to a float32 slice
func deserializeVector(blob []byte) []float32 {
	vector := make([]float32, len(blob)/4)
	for i := range vector {
		bits := binary.LittleEndian.Uint32(blob[i*4:])
		vector[i] = math.Float32frombits(bits)
	}
	return vector
}

// cosineSimilarity computes the cosine similarity between two vectors.
// A zero-magnitude vector yields 0 rather than a division error.
func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) {
		return 0
	}

	var dotProduct, normA, normB float64
	for i := range a {
		dotProduct += float64(a[i] * b[i])
		normA += float64(a[i] * a[i])
		normB += float64(b[i] * b[i])
	}

	if normA == 0 || normB == 0 {
		return 0
	}

	return dotProduct / (math.Sqrt(normA) * math.Sqrt(normB))
}

// sanitizeFTSQuery rewrites a user query as FTS5 string literals so
// punctuation and operator keywords are matched as text rather than
// interpreted as query syntax. Each whitespace-separated token becomes
// a quoted string with internal quotes doubled; the unicode61
// tokenizer then normalizes the literal the same way chunk content was
// normalized at index time, so "don't" matches the indexed tokens.
func sanitizeFTSQuery(query string) string {
	fields := strings.Fields(query)
	if len(fields) == 0 {
		return ""
	}

	quoted := make([]string, len(fields))
	for i, f := range fields {
		quoted[i] = `"` + strings.ReplaceAll(f, `"`, `""`) + `"`
	}
	return strings.Join(quoted, " ")
}

// SerializeVector is an exported helper for callers storing embeddings
func SerializeVector(vector []float32) []byte {
	return serializeVector(vector)
}

// DeserializeVector is an exported helper for callers reading embeddings
func DeserializeVector(blob []byte) []float32 {
	return deserializeVector(blob)
}

// CosineSimilarity is an exported helper for testing
func CosineSimilarity(a, b []float32) float64 {
	return cosineSimilarity(a, b)
}
