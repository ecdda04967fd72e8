package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/feedbackflow/backend/models"
	"github.com/feedbackflow/backend/repository"
	"go.uber.org/zap"
)

// ErrSurveyNotFound reports that no survey exists for the requested id.
var ErrSurveyNotFound = errors.New("survey not found")

const anonymousName = "Anonymous User"

// SurveyService assembles aggregated survey results. It is stateless:
// every call works on its own freshly loaded snapshot, so concurrent
// calls need no coordination.
type SurveyService struct {
	surveys repository.SurveyRepository
	answers repository.AnswerRepository
	log     *zap.Logger
}

func NewSurveyService(surveys repository.SurveyRepository, answers repository.AnswerRepository, log *zap.Logger) *SurveyService {
	return &SurveyService{surveys: surveys, answers: answers, log: log}
}

// GetSurveyResults builds the full results view for one survey: survey
// metadata, respondent groups sorted by first submission, and
// per-question results with type-specific analytics.
func (s *SurveyService) GetSurveyResults(surveyID uint) (*SurveyResults, error) {
	survey, err := s.surveys.FindByIDWithQuestions(surveyID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: id %d", ErrSurveyNotFound, surveyID)
		}
		return nil, err
	}

	allAnswers, err := s.answers.FindBySurveyID(surveyID)
	if err != nil {
		return nil, err
	}

	respondents := groupRespondents(allAnswers)

	questionResults := make([]QuestionResult, 0, len(survey.Questions))
	for _, question := range survey.Questions {
		var questionAnswers []models.Answer
		for _, a := range allAnswers {
			if a.QuestionID == question.ID {
				questionAnswers = append(questionAnswers, a)
			}
		}

		completionRate := 0.0
		if len(respondents) > 0 {
			completionRate = float64(len(questionAnswers)) / float64(len(respondents)) * 100
		}

		summaries := make([]AnswerSummary, 0, len(questionAnswers))
		for _, a := range questionAnswers {
			summaries = append(summaries, AnswerSummary{
				AnswerID:    a.ID,
				AnswerText:  a.AnswerText,
				RatingValue: a.RatingValue,
				SubmittedAt: a.CreatedAt,
				Respondent:  respondentInfo(&a),
			})
		}
		sort.SliceStable(summaries, func(i, j int) bool {
			return summaries[i].SubmittedAt.Before(summaries[j].SubmittedAt)
		})

		questionResults = append(questionResults, QuestionResult{
			QuestionID:     question.ID,
			QuestionText:   question.QuestionText,
			QuestionType:   question.Type,
			OrderNumber:    question.OrderNumber,
			Required:       question.Required,
			TotalAnswers:   len(questionAnswers),
			CompletionRate: completionRate,
			Answers:        summaries,
			Analytics:      buildQuestionAnalytics(question, questionAnswers),
		})
	}

	// Display order: ascending order number, questions without one last.
	sort.SliceStable(questionResults, func(i, j int) bool {
		return orderValue(questionResults[i].OrderNumber) < orderValue(questionResults[j].OrderNumber)
	})

	s.log.Debug("Assembled survey results",
		zap.Uint("surveyID", surveyID),
		zap.Int("respondents", len(respondents)),
		zap.Int("questions", len(questionResults)),
	)

	return &SurveyResults{
		SurveyID:          survey.ID,
		SurveyTitle:       survey.Title,
		SurveyDescription: survey.Description,
		SurveyCreatedAt:   survey.CreatedAt,
		TotalResponses:    len(respondents),
		TotalQuestions:    len(survey.Questions),
		QuestionResults:   questionResults,
		Respondents:       respondents,
	}, nil
}

func orderValue(n *int) int {
	if n == nil {
		return math.MaxInt
	}
	return *n
}

// respondentKey identifies the logical submitter of one answer.
// Authenticated answers share one key per user; anonymous answers each
// get their own key and are never merged.
func respondentKey(a *models.Answer) string {
	if a.UserID != nil {
		return fmt.Sprintf("user_%d", *a.UserID)
	}
	return fmt.Sprintf("anonymous_%d", a.ID)
}

func respondentInfo(a *models.Answer) RespondentInfo {
	info := RespondentInfo{
		RespondentID: respondentKey(a),
		Name:         anonymousName,
		IsAnonymous:  a.UserID == nil,
	}
	if a.User != nil {
		info.Name = a.User.Name
		email := a.User.Email
		info.Email = &email
		info.IsAnonymous = false
	}
	return info
}

// groupRespondents partitions a survey's answers into one group per
// logical respondent, sorted ascending by first submission time.
func groupRespondents(answers []models.Answer) []Respondent {
	grouped := make(map[string][]models.Answer)
	var keyOrder []string

	for _, a := range answers {
		key := respondentKey(&a)
		if _, ok := grouped[key]; !ok {
			keyOrder = append(keyOrder, key)
		}
		grouped[key] = append(grouped[key], a)
	}

	respondents := make([]Respondent, 0, len(keyOrder))
	for _, key := range keyOrder {
		group := grouped[key]
		first := group[0]

		details := make([]ResponseDetail, 0, len(group))
		firstSubmission := first.CreatedAt
		for _, a := range group {
			details = append(details, ResponseDetail{
				QuestionID:   a.QuestionID,
				QuestionText: a.Question.QuestionText,
				AnswerText:   a.AnswerText,
				RatingValue:  a.RatingValue,
				SubmittedAt:  a.CreatedAt,
			})
			if a.CreatedAt.Before(firstSubmission) {
				firstSubmission = a.CreatedAt
			}
		}

		// Present each respondent's answers in display order.
		questionOrder := make(map[uint]int, len(group))
		for _, a := range group {
			questionOrder[a.QuestionID] = orderValue(a.Question.OrderNumber)
		}
		sort.SliceStable(details, func(i, j int) bool {
			oi, oj := questionOrder[details[i].QuestionID], questionOrder[details[j].QuestionID]
			if oi != oj {
				return oi < oj
			}
			return details[i].QuestionID < details[j].QuestionID
		})

		r := Respondent{
			RespondentID:          key,
			Name:                  anonymousName,
			IsAnonymous:           first.UserID == nil,
			TotalAnswersSubmitted: len(group),
			FirstSubmissionAt:     firstSubmission,
			Responses:             details,
		}
		if first.User != nil {
			r.Name = first.User.Name
			email := first.User.Email
			r.Email = &email
			r.IsAnonymous = false
		}
		respondents = append(respondents, r)
	}

	sort.SliceStable(respondents, func(i, j int) bool {
		return respondents[i].FirstSubmissionAt.Before(respondents[j].FirstSubmissionAt)
	})
	return respondents
}

var nonAlphanumeric = regexp.MustCompile(`[^a-z0-9\s]+`)

// buildQuestionAnalytics computes type-specific statistics for one
// question over its complete answer list. The returned record always
// has every field present; only those relevant to the dispatched type
// are populated.
func buildQuestionAnalytics(question models.Question, answers []models.Answer) QuestionAnalytics {
	analytics := QuestionAnalytics{
		RatingDistribution: map[string]int{},
		OptionCounts:       map[string]int{},
		OptionPercentages:  map[string]float64{},
		CommonKeywords:     []string{},
		CustomMetrics:      map[string]any{},
	}

	if len(answers) == 0 {
		return analytics
	}

	switch questionType := strings.ToUpper(question.Type); questionType {
	case "RATING":
		ratingAnalytics(answers, &analytics)
	case "MULTIPLE_CHOICE", "RADIO", "DROPDOWN":
		optionAnalytics(question, answers, &analytics)
	case "TEXT", "LONG_TEXT":
		textAnalytics(answers, &analytics)
	default:
		analytics.CustomMetrics["totalAnswers"] = len(answers)
		analytics.CustomMetrics["questionType"] = questionType
	}

	return analytics
}

// ratingAnalytics keeps ratings in [0,5]; null or out-of-range values
// are dropped silently and never surface as errors.
func ratingAnalytics(answers []models.Answer, analytics *QuestionAnalytics) {
	var ratings []int
	for _, a := range answers {
		if a.RatingValue == nil || *a.RatingValue < 0 || *a.RatingValue > 5 {
			continue
		}
		ratings = append(ratings, *a.RatingValue)
		analytics.RatingDistribution[strconv.Itoa(*a.RatingValue)]++
	}

	totalRatings := 0
	for _, count := range analytics.RatingDistribution {
		totalRatings += count
	}
	analytics.CustomMetrics["totalRatings"] = totalRatings
	analytics.CustomMetrics["uniqueRatings"] = len(analytics.RatingDistribution)

	if len(ratings) == 0 {
		return
	}

	sum := 0
	for _, r := range ratings {
		sum += r
	}
	avg := float64(sum) / float64(len(ratings))

	sort.Ints(ratings)
	var median float64
	if len(ratings)%2 == 0 {
		median = float64(ratings[len(ratings)/2-1]+ratings[len(ratings)/2]) / 2.0
	} else {
		median = float64(ratings[len(ratings)/2])
	}

	minRating, maxRating := ratings[0], ratings[len(ratings)-1]
	analytics.AverageRating = &avg
	analytics.MedianRating = &median
	analytics.MinRating = &minRating
	analytics.MaxRating = &maxRating
}

// optionAnalytics seeds the tally from the question's predefined
// options and counts every non-empty answer value, predefined or not.
// An unparseable options payload is treated as "no predefined options".
func optionAnalytics(question models.Question, answers []models.Answer, analytics *QuestionAnalytics) {
	counts := newTally()

	predefined := 0
	if question.OptionsJSON != nil && strings.TrimSpace(*question.OptionsJSON) != "" {
		var options []string
		if err := json.Unmarshal([]byte(*question.OptionsJSON), &options); err == nil {
			for _, opt := range options {
				if opt = strings.TrimSpace(opt); opt != "" {
					counts.seed(opt)
					predefined++
				}
			}
		}
	}

	answered := 0
	for _, a := range answers {
		if a.AnswerText == nil {
			continue
		}
		text := strings.TrimSpace(*a.AnswerText)
		if text == "" {
			continue
		}
		counts.add(text)
		answered++
	}

	analytics.OptionCounts = counts.toMap()
	if answered > 0 {
		for key, count := range analytics.OptionCounts {
			analytics.OptionPercentages[key] = float64(count) / float64(answered) * 100
		}
	}

	if counts.len() > 0 {
		most, least := counts.extremes()
		analytics.MostPopularOption = &most
		analytics.LeastPopularOption = &least
	}

	analytics.CustomMetrics["totalAnswers"] = len(answers)
	analytics.CustomMetrics["uniqueOptions"] = counts.len()
	analytics.CustomMetrics["predefinedOptions"] = predefined
}

func textAnalytics(answers []models.Answer, analytics *QuestionAnalytics) {
	var lengths []int
	for _, a := range answers {
		if a.AnswerText != nil {
			lengths = append(lengths, len(*a.AnswerText))
		}
	}

	nonEmpty := 0
	for _, a := range answers {
		if a.AnswerText != nil && strings.TrimSpace(*a.AnswerText) != "" {
			nonEmpty++
		}
	}
	analytics.CustomMetrics["totalTextAnswers"] = nonEmpty
	analytics.CustomMetrics["emptyAnswers"] = len(answers) - nonEmpty

	if len(lengths) == 0 {
		return
	}

	sum, minLen, maxLen := 0, lengths[0], lengths[0]
	for _, l := range lengths {
		sum += l
		if l < minLen {
			minLen = l
		}
		if l > maxLen {
			maxLen = l
		}
	}
	avg := sum / len(lengths)
	analytics.AverageTextLength = &avg
	analytics.MinTextLength = &minLen
	analytics.MaxTextLength = &maxLen

	totalWords := 0
	for _, a := range answers {
		if a.AnswerText != nil && strings.TrimSpace(*a.AnswerText) != "" {
			totalWords += len(strings.Fields(*a.AnswerText))
		}
	}
	if nonEmpty > 0 {
		analytics.CustomMetrics["averageLength"] = float64(sum) / float64(len(lengths))
		analytics.CustomMetrics["totalWords"] = totalWords
		analytics.CustomMetrics["averageWords"] = float64(totalWords) / float64(nonEmpty)
	}

	analytics.CommonKeywords = extractCommonKeywords(answers)
}

// extractCommonKeywords returns up to 5 tokens ordered by descending
// frequency across the question's answers. Tokens are lower-cased,
// stripped to [a-z0-9], and must be longer than 2 characters. Ties
// keep first-encountered order.
func extractCommonKeywords(answers []models.Answer) []string {
	frequency := newTally()

	for _, a := range answers {
		if a.AnswerText == nil || strings.TrimSpace(*a.AnswerText) == "" {
			continue
		}
		cleaned := nonAlphanumeric.ReplaceAllString(strings.ToLower(*a.AnswerText), "")
		for _, word := range strings.Fields(cleaned) {
			if len(word) > 2 {
				frequency.add(word)
			}
		}
	}

	keywords := make([]string, len(frequency.keys))
	copy(keywords, frequency.keys)
	sort.SliceStable(keywords, func(i, j int) bool {
		return frequency.counts[keywords[i]] > frequency.counts[keywords[j]]
	})

	if len(keywords) > 5 {
		keywords = keywords[:5]
	}
	return keywords
}
