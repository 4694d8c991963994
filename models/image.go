package models

// Image represents a scanned document or photo attached to a case.
// URL points at the blob store, or at a local-only fallback location when
// the upload failed; local-only URLs are not re-uploaded automatically.
type Image struct {
	ID         string      `json:"id"`
	URL        string      `json:"url"`
	Type       string      `json:"type"`
	Summary    string      `json:"summary"`
	Date       string      `json:"date"`
	Deadline   *string     `json:"deadline,omitempty"`
	NextAction string      `json:"nextAction"`
	AIAnalysis *AIAnalysis `json:"aiAnalysis,omitempty"`
}

// ImageIDs returns the ids of the given images in order
func ImageIDs(images []Image) []string {
	ids := make([]string, 0, len(images))
	for _, img := range images {
		ids = append(ids, img.ID)
	}
	return ids
}
