// Package document defines the chunk-level data model shared by ingestion,
// retrieval, and the vector store: a Chunk is the atomic unit stored and
// searched, owned by its parent Document.
package document

import "time"

// Chunk is one embedded unit of a Document, the atomic row in the vector
// store. Chunks are immutable once created; only deletion ever touches them,
// and deletion is always by document_id (§3: "either all its chunks are
// visible or none are").
type Chunk struct {
	ID              string
	DocumentID      string
	KnowledgebaseID string
	Text            string
	ChunkIndex      int
	DocumentName    string
	FileType        string
	UploadDate      time.Time
	Author          string
	Language        string
	Keywords        []string
	Embedding       []float32
}

// Dim reports the embedding's dimension, or 0 if the chunk has not been
// embedded yet.
func (c Chunk) Dim() int {
	return len(c.Embedding)
}

// SearchResult is a Chunk surfaced by a similarity search, carrying the
// score the collection's metric produced and whatever metadata the caller's
// filter selected on.
type SearchResult struct {
	ID           string
	DocumentID   string
	Text         string
	Score        float32
	DocumentName string
	ChunkIndex   int
	Metadata     map[string]any
}

// FromChunk builds a SearchResult view of a Chunk with the given score,
// the shape every vector store backend returns to internal/retrieval.
func FromChunk(c Chunk, score float32) SearchResult {
	return SearchResult{
		ID:           c.ID,
		DocumentID:   c.DocumentID,
		Text:         c.Text,
		Score:        score,
		DocumentName: c.DocumentName,
		ChunkIndex:   c.ChunkIndex,
		Metadata: map[string]any{
			"knowledgebase_id": c.KnowledgebaseID,
			"file_type":        c.FileType,
			"language":         c.Language,
			"keywords":         c.Keywords,
		},
	}
}
