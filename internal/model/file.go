package model

// StoredFile describes a blob held by the blob store.
// It is created on upload and never modified afterwards.
type StoredFile struct {
	ID       string       `json:"id"`
	Filename string       `json:"filename"`
	Length   int64        `json:"length"`
	Metadata FileMetadata `json:"metadata"`
}

// FileMetadata is the fixed set of tags stored alongside a blob.
// ContentType is required; Thumbnail is optional and empty when absent.
type FileMetadata struct {
	ContentType string `json:"contentType"`
	Thumbnail   string `json:"thumbnail"`
}
