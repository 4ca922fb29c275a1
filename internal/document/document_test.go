package document

import "testing"

func TestFromChunk_CopiesScoreAndMetadata(t *testing.T) {
	c := Chunk{
		ID:              "c1",
		DocumentID:      "d1",
		KnowledgebaseID: "kb1",
		Text:            "hello",
		ChunkIndex:      2,
		DocumentName:    "doc.pdf",
		FileType:        "pdf",
		Language:        "en",
		Keywords:        []string{"a", "b"},
		Embedding:       []float32{0.1, 0.2, 0.3},
	}

	res := FromChunk(c, 0.87)

	if res.ID != c.ID || res.DocumentID != c.DocumentID || res.Text != c.Text {
		t.Fatalf("unexpected identity fields: %+v", res)
	}
	if res.Score != 0.87 {
		t.Errorf("expected score 0.87, got %v", res.Score)
	}
	if res.Metadata["knowledgebase_id"] != "kb1" {
		t.Errorf("expected knowledgebase_id metadata, got %v", res.Metadata)
	}
}

func TestChunk_Dim(t *testing.T) {
	c := Chunk{Embedding: make([]float32, 768)}
	if c.Dim() != 768 {
		t.Errorf("expected dim 768, got %d", c.Dim())
	}
	var empty Chunk
	if empty.Dim() != 0 {
		t.Errorf("expected dim 0 for unembedded chunk, got %d", empty.Dim())
	}
}

func TestNewChunkID_IsDeterministic(t *testing.T) {
	a := NewChunkID("doc-1", 3)
	b := NewChunkID("doc-1", 3)
	if a != b {
		t.Errorf("expected deterministic chunk IDs, got %q and %q", a, b)
	}
	c := NewChunkID("doc-1", 4)
	if a == c {
		t.Errorf("expected different chunk index to produce different ID")
	}
}
