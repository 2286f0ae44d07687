package domain

import "time"

// PDFEntry is a derived view over one storage object. It is recomputed on
// every catalog fetch and never persisted.
type PDFEntry struct {
	Name      string    `json:"name"`
	Path      string    `json:"path"`
	Size      int64     `json:"size"`
	CreatedAt time.Time `json:"created_at"`
	URL       string    `json:"url"`
}

// DocumentChunk is a stored fragment of a source document's extracted
// text, ordered by chunk index within the document.
type DocumentChunk struct {
	ID         string
	Content    string
	FileName   string
	ChunkIndex int
}
