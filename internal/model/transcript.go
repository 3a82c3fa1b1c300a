package model

// Word is the finest-grained recognized unit within a segment.
type Word struct {
	Start      float64 `json:"start"`
	End        float64 `json:"end"`
	Text       string  `json:"text"`
	Confidence float64 `json:"confidence"`
}

// Segment is a contiguous span of recognized speech.
type Segment struct {
	ID         int     `json:"id"`
	Seek       int     `json:"seek"`
	Start      float64 `json:"start"`
	End        float64 `json:"end"`
	Text       string  `json:"text"`
	Tokens     []int   `json:"tokens"`
	Confidence float64 `json:"confidence"`
	Words      []Word  `json:"words"`
}

// Transcript is the word-level transcript of one stored file.
// At most one Transcript exists per FileID.
type Transcript struct {
	FileID   string    `json:"file_id"`
	Text     string    `json:"text"`
	Segments []Segment `json:"segments"`
}
