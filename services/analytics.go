package services

import (
	"fmt"
	"sort"
	"time"

	"github.com/feedbackflow/backend/models"
	"github.com/feedbackflow/backend/repository"
	"go.uber.org/zap"
)

type TrendPoint struct {
	Date      string `json:"date"` // "Jan 2" display label
	Responses int    `json:"responses"`
	FullDate  string `json:"fullDate"` // yyyy-mm-dd
}

type DashboardOverview struct {
	TotalSurveys        int64 `json:"totalSurveys"`
	ActiveSurveys       int64 `json:"activeSurveys"`
	TotalResponses      int64 `json:"totalResponses"`
	ResponsesThisWeek   int64 `json:"responsesThisWeek"`
	ResponsesLastWeek   int64 `json:"responsesLastWeek"`
	NewSurveysThisMonth int64 `json:"newSurveysThisMonth"`
}

type SurveyPerformance struct {
	SurveyID       uint      `json:"surveyId"`
	SurveyTitle    string    `json:"surveyTitle"`
	TotalResponses int       `json:"totalResponses"`
	Status         string    `json:"status"`
	CreatedAt      time.Time `json:"createdAt"`
}

type RecentResponse struct {
	ResponseID            uint      `json:"responseId"`
	SurveyID              uint      `json:"surveyId"`
	SurveyName            string    `json:"surveyName"`
	SubmittedAt           time.Time `json:"submittedAt"`
	UserName              string    `json:"userName"`
	IsAnonymous           bool      `json:"isAnonymous"`
	TotalQuestions        int       `json:"totalQuestions"`
	CompletionTimeSeconds *int      `json:"completionTimeSeconds,omitempty"`
	FormattedTime         string    `json:"formattedTime"`
}

// AnalyticsService feeds the admin dashboard: cross-survey trends,
// counts, and recent activity.
type AnalyticsService struct {
	surveys   repository.SurveyRepository
	answers   repository.AnswerRepository
	responses repository.ResponseRepository
	users     repository.UserRepository
	log       *zap.Logger
}

func NewAnalyticsService(surveys repository.SurveyRepository, answers repository.AnswerRepository,
	responses repository.ResponseRepository, users repository.UserRepository, log *zap.Logger) *AnalyticsService {
	return &AnalyticsService{surveys: surveys, answers: answers, responses: responses, users: users, log: log}
}

// ResponseTrends buckets answer volume per day over the last N days,
// zero-filling days without activity.
func (s *AnalyticsService) ResponseTrends(days int) ([]TrendPoint, error) {
	if days <= 0 {
		days = 7
	}

	start := time.Now().AddDate(0, 0, -days)
	answers, err := s.answers.FindCreatedAfter(start)
	if err != nil {
		return nil, err
	}

	byDate := make(map[string]int)
	for _, a := range answers {
		byDate[a.CreatedAt.Format("2006-01-02")]++
	}

	trends := make([]TrendPoint, 0, days)
	for i := days - 1; i >= 0; i-- {
		day := time.Now().AddDate(0, 0, -i)
		key := day.Format("2006-01-02")
		trends = append(trends, TrendPoint{
			Date:      day.Format("Jan 2"),
			Responses: byDate[key],
			FullDate:  key,
		})
	}
	return trends, nil
}

func (s *AnalyticsService) DashboardOverview() (*DashboardOverview, error) {
	surveys, err := s.surveys.FindAll()
	if err != nil {
		return nil, err
	}

	var active int64
	for _, survey := range surveys {
		if survey.Status == models.StatusActive {
			active++
		}
	}

	totalAnswers, err := s.answers.Count()
	if err != nil {
		return nil, err
	}

	now := time.Now()
	oneWeekAgo := now.AddDate(0, 0, -7)
	twoWeeksAgo := now.AddDate(0, 0, -14)

	thisWeek, err := s.answers.CountCreatedBetween(oneWeekAgo, now)
	if err != nil {
		return nil, err
	}
	lastWeek, err := s.answers.CountCreatedBetween(twoWeeksAgo, oneWeekAgo)
	if err != nil {
		return nil, err
	}

	firstOfMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	newThisMonth, err := s.surveys.CountCreatedAfter(firstOfMonth)
	if err != nil {
		return nil, err
	}

	return &DashboardOverview{
		TotalSurveys:        int64(len(surveys)),
		ActiveSurveys:       active,
		TotalResponses:      totalAnswers,
		ResponsesThisWeek:   thisWeek,
		ResponsesLastWeek:   lastWeek,
		NewSurveysThisMonth: newThisMonth,
	}, nil
}

// SurveyPerformance lists every survey with its response volume,
// sorted by response count descending.
func (s *AnalyticsService) SurveyPerformance() ([]SurveyPerformance, error) {
	surveys, err := s.surveys.FindAll()
	if err != nil {
		return nil, err
	}

	performance := make([]SurveyPerformance, 0, len(surveys))
	for _, survey := range surveys {
		answers, err := s.answers.FindBySurveyID(survey.ID)
		if err != nil {
			return nil, err
		}
		performance = append(performance, SurveyPerformance{
			SurveyID:       survey.ID,
			SurveyTitle:    survey.Title,
			TotalResponses: len(answers),
			Status:         survey.Status,
			CreatedAt:      survey.CreatedAt,
		})
	}

	sort.SliceStable(performance, func(i, j int) bool {
		return performance[i].TotalResponses > performance[j].TotalResponses
	})
	return performance, nil
}

// RecentResponses returns the latest submission events with respondent
// and survey context for the dashboard activity feed.
func (s *AnalyticsService) RecentResponses(limit int) ([]RecentResponse, error) {
	if limit <= 0 {
		limit = 10
	}

	responses, err := s.responses.FindRecent(limit)
	if err != nil {
		return nil, err
	}

	recent := make([]RecentResponse, 0, len(responses))
	for _, response := range responses {
		item := RecentResponse{
			ResponseID:            response.ID,
			SurveyID:              response.SurveyID,
			SurveyName:            "Unknown survey",
			SubmittedAt:           response.CreatedAt,
			UserName:              anonymousName,
			IsAnonymous:           true,
			CompletionTimeSeconds: response.CompletionTimeSeconds,
			FormattedTime:         formatTimeAgo(response.CreatedAt),
		}

		if survey, err := s.surveys.FindByIDWithQuestions(response.SurveyID); err == nil {
			item.SurveyName = survey.Title
			item.TotalQuestions = len(survey.Questions)
		}
		if response.UserID != nil {
			if user, err := s.users.FindByID(*response.UserID); err == nil {
				item.UserName = user.Name
				item.IsAnonymous = false
			}
		}

		recent = append(recent, item)
	}
	return recent, nil
}

// AverageCompletionTime returns the mean completion duration in
// seconds for a survey, or nil when no timed responses exist.
func (s *AnalyticsService) AverageCompletionTime(surveyID uint) (*float64, error) {
	responses, err := s.responses.FindBySurveyID(surveyID)
	if err != nil {
		return nil, err
	}

	sum, count := 0, 0
	for _, r := range responses {
		if r.CompletionTimeSeconds != nil && *r.CompletionTimeSeconds > 0 {
			sum += *r.CompletionTimeSeconds
			count++
		}
	}
	if count == 0 {
		return nil, nil
	}
	avg := float64(sum) / float64(count)
	return &avg, nil
}

// FormatCompletionTime renders seconds as "45s", "1m 30s" or "1h 5m".
func FormatCompletionTime(seconds *float64) string {
	if seconds == nil || *seconds <= 0 {
		return "N/A"
	}
	s := *seconds
	switch {
	case s < 60:
		return fmt.Sprintf("%.0fs", s)
	case s < 3600:
		return fmt.Sprintf("%dm %.0fs", int(s)/60, float64(int(s)%60))
	default:
		return fmt.Sprintf("%dh %dm", int(s)/3600, (int(s)%3600)/60)
	}
}

func formatTimeAgo(t time.Time) string {
	d := time.Since(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return plural(int(d.Minutes()), "minute")
	case d < 24*time.Hour:
		return plural(int(d.Hours()), "hour")
	case d < 7*24*time.Hour:
		return plural(int(d.Hours()/24), "day")
	default:
		return plural(int(d.Hours()/(24*7)), "week")
	}
}

func plural(n int, unit string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s ago", unit)
	}
	return fmt.Sprintf("%d %ss ago", n, unit)
}
