package models

// Promotion status constants. State machine:
//
//	analyzing -> ready  (classifier succeeded)
//	analyzing -> error  (classifier or fetch failed)
//	error     -> analyzing (manual retry)
//
// Delete is valid from any state. A ready promotion can be consumed by
// moving it into a case, which removes it and creates an Image.
const (
	PromotionStatusAnalyzing = "analyzing"
	PromotionStatusReady     = "ready"
	PromotionStatusError     = "error"
)

// Promotion is a staged document captured before the user knows which
// case it belongs to.
type Promotion struct {
	ID         string      `json:"id"`
	URL        string      `json:"url"`
	Name       string      `json:"name"`
	DateAdded  string      `json:"dateAdded"`
	Status     string      `json:"status"`
	AIAnalysis *AIAnalysis `json:"aiAnalysis,omitempty"`
}

// IsValidPromotionStatus checks if the status is a known value
func IsValidPromotionStatus(status string) bool {
	switch status {
	case PromotionStatusAnalyzing, PromotionStatusReady, PromotionStatusError:
		return true
	}
	return false
}
