package document

import (
	"fmt"

	docid "github.com/ragcore-ai/engine/ai/commons/document/id"
)

// idGenerator is the chunk ID strategy: deterministic (document_id +
// chunk_index) so re-ingesting the same document produces the same chunk
// IDs and upserts cleanly rather than duplicating rows.
var idGenerator docid.Generator = docid.NewSha256Generator(nil)

// NewChunkID derives a stable chunk ID from its owning document and
// position, grounded on ai/commons/document/id's Sha256Generator.
func NewChunkID(documentID string, chunkIndex int) string {
	return idGenerator.GenerateId(documentID, fmt.Sprintf("%d", chunkIndex))
}
