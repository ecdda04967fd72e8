package services

import "time"

// SurveyResults is the full aggregated view for one survey. Both the
// admin dashboard and the CSV exporter consume these fields verbatim.
type SurveyResults struct {
	SurveyID          uint             `json:"surveyId"`
	SurveyTitle       string           `json:"surveyTitle"`
	SurveyDescription string           `json:"surveyDescription"`
	SurveyCreatedAt   time.Time        `json:"surveyCreatedAt"`
	TotalResponses    int              `json:"totalResponses"`
	TotalQuestions    int              `json:"totalQuestions"`
	QuestionResults   []QuestionResult `json:"questionResults"`
	Respondents       []Respondent     `json:"respondents"`
}

type QuestionResult struct {
	QuestionID     uint              `json:"questionId"`
	QuestionText   string            `json:"questionText"`
	QuestionType   string            `json:"questionType"`
	OrderNumber    *int              `json:"orderNumber"`
	Required       bool              `json:"required"`
	TotalAnswers   int               `json:"totalAnswers"`
	CompletionRate float64           `json:"completionRate"`
	Answers        []AnswerSummary   `json:"answers"`
	Analytics      QuestionAnalytics `json:"analytics"`
}

// QuestionAnalytics is a single fixed shape serving every question
// type; fields not applicable to the dispatched type stay nil/empty.
type QuestionAnalytics struct {
	AverageRating      *float64           `json:"averageRating"`
	MedianRating       *float64           `json:"medianRating"`
	MinRating          *int               `json:"minRating"`
	MaxRating          *int               `json:"maxRating"`
	RatingDistribution map[string]int     `json:"ratingDistribution"`
	OptionCounts       map[string]int     `json:"optionCounts"`
	OptionPercentages  map[string]float64 `json:"optionPercentages"`
	MostPopularOption  *string            `json:"mostPopularOption"`
	LeastPopularOption *string            `json:"leastPopularOption"`
	AverageTextLength  *int               `json:"averageTextLength"`
	MinTextLength      *int               `json:"minTextLength"`
	MaxTextLength      *int               `json:"maxTextLength"`
	CommonKeywords     []string           `json:"commonKeywords"`
	CustomMetrics      map[string]any     `json:"customMetrics"`
}

type AnswerSummary struct {
	AnswerID    uint           `json:"answerId"`
	AnswerText  *string        `json:"answerText"`
	RatingValue *int           `json:"ratingValue"`
	SubmittedAt time.Time      `json:"submittedAt"`
	Respondent  RespondentInfo `json:"respondent"`
}

type RespondentInfo struct {
	RespondentID string  `json:"respondentId"`
	Name         string  `json:"name"`
	Email        *string `json:"email"`
	IsAnonymous  bool    `json:"isAnonymous"`
}

// Respondent is one logical submitter: an authenticated user (all of
// their answers merged) or a single anonymous answer.
type Respondent struct {
	RespondentID          string           `json:"respondentId"`
	Name                  string           `json:"name"`
	Email                 *string          `json:"email"`
	IsAnonymous           bool             `json:"isAnonymous"`
	TotalAnswersSubmitted int              `json:"totalAnswersSubmitted"`
	FirstSubmissionAt     time.Time        `json:"firstSubmissionAt"`
	Responses             []ResponseDetail `json:"responses"`
}

type ResponseDetail struct {
	QuestionID   uint      `json:"questionId"`
	QuestionText string    `json:"questionText"`
	AnswerText   *string   `json:"answerText"`
	RatingValue  *int      `json:"ratingValue"`
	SubmittedAt  time.Time `json:"submittedAt"`
}
