package services

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleResults() *SurveyResults {
	avg := 3.8
	most := "Yes"
	least := "No"
	email := "alice@example.com"
	return &SurveyResults{
		SurveyID:          1,
		SurveyTitle:       "Team Pulse",
		SurveyDescription: "Quarterly feedback",
		SurveyCreatedAt:   time.Date(2026, time.March, 10, 12, 0, 0, 0, time.UTC),
		TotalResponses:    2,
		TotalQuestions:    2,
		QuestionResults: []QuestionResult{
			{
				QuestionID:     10,
				QuestionText:   "How satisfied are you?",
				QuestionType:   "RATING",
				OrderNumber:    intPtr(1),
				Required:       true,
				TotalAnswers:   2,
				CompletionRate: 100,
				Analytics: QuestionAnalytics{
					AverageRating:      &avg,
					RatingDistribution: map[string]int{"3": 1, "5": 1},
					CustomMetrics:      map[string]any{},
				},
			},
			{
				QuestionID:     11,
				QuestionText:   "Would you recommend us?",
				QuestionType:   "MULTIPLE_CHOICE",
				OrderNumber:    intPtr(2),
				TotalAnswers:   2,
				CompletionRate: 100,
				Analytics: QuestionAnalytics{
					OptionCounts:       map[string]int{"Yes": 2, "No": 0},
					OptionPercentages:  map[string]float64{"Yes": 100, "No": 0},
					MostPopularOption:  &most,
					LeastPopularOption: &least,
					CustomMetrics:      map[string]any{},
				},
			},
		},
		Respondents: []Respondent{
			{
				RespondentID:          "user_7",
				Name:                  "Alice Chen",
				Email:                 &email,
				TotalAnswersSubmitted: 2,
				FirstSubmissionAt:     time.Date(2026, time.March, 11, 9, 30, 0, 0, time.UTC),
				Responses: []ResponseDetail{
					{
						QuestionID:   10,
						QuestionText: "How satisfied are you?",
						AnswerText:   strPtr("RATING:5"),
						RatingValue:  intPtr(5),
						SubmittedAt:  time.Date(2026, time.March, 11, 9, 30, 0, 0, time.UTC),
					},
				},
			},
			{
				RespondentID:          "anonymous_3",
				Name:                  "Anonymous User",
				IsAnonymous:           true,
				TotalAnswersSubmitted: 1,
				FirstSubmissionAt:     time.Date(2026, time.March, 11, 10, 0, 0, 0, time.UTC),
			},
		},
	}
}

func TestRenderAnalysisCSV(t *testing.T) {
	t.Run("full report contains every section", func(t *testing.T) {
		out := string(RenderAnalysisCSV(sampleResults(), DefaultExportOptions()))

		assert.Contains(t, out, "=== SURVEY ANALYSIS REPORT ===")
		assert.Contains(t, out, "Survey Title,Team Pulse")
		assert.Contains(t, out, "Total Responses,2")
		assert.Contains(t, out, "=== QUESTION ANALYSIS ===")
		assert.Contains(t, out, "How satisfied are you?")
		assert.Contains(t, out, "Average Rating,3.80")
		assert.Contains(t, out, "=== RESPONDENT DATA ===")
		assert.Contains(t, out, "user_7,Alice Chen,alice@example.com")
		assert.Contains(t, out, "anonymous_3,Anonymous User,N/A,true")
		assert.Contains(t, out, "=== RAW RESPONSES ===")
		assert.Contains(t, out, "RATING:5")
	})

	t.Run("option breakdown is ordered by count", func(t *testing.T) {
		out := string(RenderAnalysisCSV(sampleResults(), DefaultExportOptions()))

		yes := strings.Index(out, "Yes,2,100.0%")
		no := strings.Index(out, "No,0,0.0%")
		require.Greater(t, yes, -1)
		require.Greater(t, no, -1)
		assert.Less(t, yes, no)
	})

	t.Run("sections can be disabled", func(t *testing.T) {
		out := string(RenderAnalysisCSV(sampleResults(), ExportOptions{}))

		assert.Contains(t, out, "=== SURVEY ANALYSIS REPORT ===")
		assert.NotContains(t, out, "=== QUESTION ANALYSIS ===")
		assert.NotContains(t, out, "=== RESPONDENT DATA ===")
		assert.NotContains(t, out, "=== RAW RESPONSES ===")
	})

	t.Run("empty survey still renders section placeholders", func(t *testing.T) {
		results := &SurveyResults{SurveyID: 2, SurveyTitle: "Empty"}
		out := string(RenderAnalysisCSV(results, DefaultExportOptions()))

		assert.Contains(t, out, "No question data available")
		assert.Contains(t, out, "No respondent data available")
	})
}

func TestExportFilename(t *testing.T) {
	name := ExportFilename(42)
	assert.True(t, strings.HasPrefix(name, "survey_42_analysis_"))
	assert.True(t, strings.HasSuffix(name, ".csv"))
}
