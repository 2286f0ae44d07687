package domain

import "time"

// QuestionType enumerates the supported test question forms.
type QuestionType string

const (
	QuestionMultipleChoice QuestionType = "multiple_choice"
	QuestionTrueFalse      QuestionType = "true_false"
	QuestionOpen           QuestionType = "open"
)

// Difficulty enumerates question difficulty grades. The values are
// user-facing and intentionally German.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "leicht"
	DifficultyMedium Difficulty = "mittel"
	DifficultyHard   Difficulty = "schwer"
)

// TestQuestion is one generated question. Ephemeral: produced by the
// model, returned to the caller, never stored.
type TestQuestion struct {
	Question    string       `json:"question"`
	Type        QuestionType `json:"type"`
	Difficulty  Difficulty   `json:"difficulty"`
	Answer      string       `json:"answer"`
	Explanation string       `json:"explanation,omitempty"`
}

// Complete reports whether the question carries every required field.
// Incomplete questions are dropped rather than repaired.
func (q TestQuestion) Complete() bool {
	return q.Question != "" && q.Answer != "" && q.Type != "" && q.Difficulty != ""
}

// GenerationRecord is one append-only fact marking a successful
// generation. Records are never updated or deleted by this service.
type GenerationRecord struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	PDFName     string    `json:"pdf_name"`
	GeneratedAt time.Time `json:"generated_at"`
}

// RateLimitStatus is derived from the generation records inside the
// trailing window; it is never stored.
type RateLimitStatus struct {
	Allowed   bool       `json:"allowed"`
	Remaining int        `json:"remaining"`
	Limit     int        `json:"limit"`
	Current   int        `json:"current"`
	ResetTime *time.Time `json:"reset_time,omitempty"`
}
