package vectorstore

// IndexKind is the ANN index family chosen by corpus size (§4.6).
type IndexKind string

const (
	IndexHNSW   IndexKind = "HNSW"
	IndexIVFPQ  IndexKind = "IVF_PQ"
	IndexIVFSQ8 IndexKind = "IVF_SQ8"
)

// IndexParams is the union of every index's build parameters; only the
// fields relevant to Kind are meaningful.
type IndexParams struct {
	Kind            IndexKind
	M               int // HNSW
	EfConstruction  int // HNSW
	NList           int // IVF family
	PQM             int // IVF_PQ
}

// SelectIndex picks the index family and build parameters for a corpus of
// the given size, per the §4.6 table. korean toggles the Korean-optimized
// parameter column.
func SelectIndex(corpusSize int64, korean bool) IndexParams {
	switch {
	case corpusSize < 100_000:
		if korean {
			return IndexParams{Kind: IndexHNSW, M: 24, EfConstruction: 300}
		}
		return IndexParams{Kind: IndexHNSW, M: 16, EfConstruction: 200}
	case corpusSize < 1_000_000:
		if korean {
			return IndexParams{Kind: IndexIVFPQ, NList: 2048, PQM: 16}
		}
		return IndexParams{Kind: IndexIVFPQ, NList: 1024, PQM: 8}
	default:
		if korean {
			return IndexParams{Kind: IndexIVFSQ8, NList: 4096}
		}
		return IndexParams{Kind: IndexIVFSQ8, NList: 2048}
	}
}

// SearchParams is the per-request tuning handed to the backend: ef for HNSW
// collections, nprobe for IVF collections.
type SearchParams struct {
	Ef     int
	NProbe int
}

// baseEf and baseNProbe are the "balanced" bases the adaptive table scales
// from; Korean-optimized bases are higher per §4.6.
func baseParams(index IndexParams, korean bool) (ef, nprobe int) {
	switch index.Kind {
	case IndexHNSW:
		if korean {
			return 120, 0
		}
		return 96, 0
	default:
		if korean {
			return 0, index.NList / 8
		}
		return 0, index.NList / 16
	}
}

// AdaptiveSearchParams scales the base ef/nprobe by query complexity per the
// §4.6 table: fast (<0.3) narrows the search, deep (>0.7) widens it.
func AdaptiveSearchParams(index IndexParams, complexity float64, korean bool) SearchParams {
	baseEf, baseNProbe := baseParams(index, korean)

	var efFactor, nprobeFactor float64
	switch {
	case complexity < 0.3:
		efFactor, nprobeFactor = 0.75, 0.5
	case complexity > 0.7:
		efFactor, nprobeFactor = 1.5, 2.0
	default:
		efFactor, nprobeFactor = 1.0, 1.0
	}

	return SearchParams{
		Ef:     int(float64(baseEf) * efFactor),
		NProbe: int(float64(baseNProbe) * nprobeFactor),
	}
}
