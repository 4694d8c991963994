package models

// AIAnalysis is the opaque classifier result stored on images and
// promotions. Dates are YYYY-MM-DD strings; nil means not detected.
type AIAnalysis struct {
	Summary      string  `json:"summary"`
	Type         string  `json:"type"`
	LegalBasis   string  `json:"legalBasis"`
	Deadline     string  `json:"deadline"`
	DeadlineDate *string `json:"deadlineDate,omitempty"`
	NextAction   string  `json:"nextAction"`
	Confidence   float64 `json:"confidence"`
	FilingDate   *string `json:"filingDate,omitempty"`
}
