package sigildex

// Candidate is a detected symbol-like region on a scanned page, prior to
// human confirmation. Candidates are value records: once the crop and the
// metadata line are written, the detector holds no further reference.
//
// The JSON field names are the on-disk metadata contract and must not
// change; one candidate is serialized per line of a source's
// candidates.jsonl file.
type Candidate struct {
	SourceID   string  `json:"source_id"`
	SourceSlug string  `json:"source_slug"`
	Page       int     `json:"page"`
	Contour    int     `json:"contour"`
	BBox       BBox    `json:"bbox"`
	Area       float64 `json:"area"`
	Perimeter  float64 `json:"perimeter"`

	// Compactness is perimeter squared over area, a shape-complexity
	// measure. Line-drawn sigils score high; solid blobs score low.
	Compactness float64 `json:"compactness"`

	Path string `json:"path"`
}
