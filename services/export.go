package services

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"sort"
	"strconv"
	"time"

	"go.uber.org/zap"
)

const exportTimeLayout = "2006-01-02 15:04:05"

type ExportOptions struct {
	IncludeQuestionAnalysis bool `json:"includeQuestionAnalysis"`
	IncludeRespondentData   bool `json:"includeRespondentData"`
	IncludeRawResponses     bool `json:"includeRawResponses"`
}

func DefaultExportOptions() ExportOptions {
	return ExportOptions{
		IncludeQuestionAnalysis: true,
		IncludeRespondentData:   true,
		IncludeRawResponses:     true,
	}
}

// ExportService renders the assembled results view as a sectioned CSV
// analysis report. It adds no aggregation of its own.
type ExportService struct {
	results *SurveyService
	log     *zap.Logger
}

func NewExportService(results *SurveyService, log *zap.Logger) *ExportService {
	return &ExportService{results: results, log: log}
}

func (s *ExportService) ExportSurveyAnalysisCSV(surveyID uint, options ExportOptions) ([]byte, error) {
	results, err := s.results.GetSurveyResults(surveyID)
	if err != nil {
		return nil, err
	}
	return RenderAnalysisCSV(results, options), nil
}

// RenderAnalysisCSV writes the report for an already-assembled results
// view. Split out so it can be fed synthetic views in tests.
func RenderAnalysisCSV(results *SurveyResults, options ExportOptions) []byte {
	buf := &bytes.Buffer{}
	w := csv.NewWriter(buf)

	writeOverviewSection(w, results)

	if options.IncludeQuestionAnalysis {
		writeQuestionSection(w, results.QuestionResults)
	}
	if options.IncludeRespondentData {
		writeRespondentSection(w, results.Respondents)
	}
	if options.IncludeRawResponses {
		writeRawResponseSection(w, results.Respondents)
	}

	w.Flush()
	return buf.Bytes()
}

func writeOverviewSection(w *csv.Writer, results *SurveyResults) {
	w.Write([]string{"=== SURVEY ANALYSIS REPORT ==="})
	w.Write(nil)
	w.Write([]string{"Survey Title", results.SurveyTitle})
	w.Write([]string{"Survey Description", results.SurveyDescription})
	w.Write([]string{"Survey ID", strconv.FormatUint(uint64(results.SurveyID), 10)})
	w.Write([]string{"Created At", results.SurveyCreatedAt.Format(exportTimeLayout)})
	w.Write([]string{"Total Responses", strconv.Itoa(results.TotalResponses)})
	w.Write([]string{"Total Questions", strconv.Itoa(results.TotalQuestions)})
	w.Write(nil)
}

func writeQuestionSection(w *csv.Writer, questions []QuestionResult) {
	w.Write([]string{"=== QUESTION ANALYSIS ==="})
	w.Write(nil)

	if len(questions) == 0 {
		w.Write([]string{"No question data available"})
		w.Write(nil)
		return
	}

	w.Write([]string{"Question ID", "Question Text", "Question Type", "Order", "Required",
		"Total Answers", "Completion Rate %", "Average Rating", "Most Popular Option"})
	for _, q := range questions {
		w.Write([]string{
			strconv.FormatUint(uint64(q.QuestionID), 10),
			q.QuestionText,
			q.QuestionType,
			orderLabel(q.OrderNumber),
			strconv.FormatBool(q.Required),
			strconv.Itoa(q.TotalAnswers),
			fmt.Sprintf("%.1f", q.CompletionRate),
			floatLabel(q.Analytics.AverageRating),
			stringLabel(q.Analytics.MostPopularOption),
		})
	}
	w.Write(nil)

	for _, q := range questions {
		writeQuestionDetail(w, q)
	}
}

func writeQuestionDetail(w *csv.Writer, q QuestionResult) {
	w.Write([]string{fmt.Sprintf("--- Question %s Detailed Analysis ---", orderLabel(q.OrderNumber))})
	w.Write([]string{"Question:", q.QuestionText})
	w.Write([]string{"Type:", q.QuestionType})

	a := q.Analytics
	if a.AverageRating != nil {
		w.Write([]string{"Rating Statistics:"})
		w.Write([]string{"Average Rating", fmt.Sprintf("%.2f", *a.AverageRating)})
		w.Write([]string{"Median Rating", floatLabel(a.MedianRating)})
		w.Write([]string{"Min Rating", intLabel(a.MinRating)})
		w.Write([]string{"Max Rating", intLabel(a.MaxRating)})

		if len(a.RatingDistribution) > 0 {
			total := 0
			for _, count := range a.RatingDistribution {
				total += count
			}
			w.Write([]string{"Rating Distribution:"})
			w.Write([]string{"Rating", "Count", "Percentage"})
			for rating := 0; rating <= 5; rating++ {
				key := strconv.Itoa(rating)
				count, ok := a.RatingDistribution[key]
				if !ok {
					continue
				}
				pct := float64(count) / float64(total) * 100
				w.Write([]string{key, strconv.Itoa(count), fmt.Sprintf("%.1f%%", pct)})
			}
		}
	}

	if len(a.OptionCounts) > 0 {
		w.Write([]string{"Option Breakdown:"})
		w.Write([]string{"Option", "Count", "Percentage"})
		for _, option := range sortedOptionKeys(a.OptionCounts) {
			w.Write([]string{
				option,
				strconv.Itoa(a.OptionCounts[option]),
				fmt.Sprintf("%.1f%%", a.OptionPercentages[option]),
			})
		}
		w.Write([]string{"Most Popular", stringLabel(a.MostPopularOption)})
		w.Write([]string{"Least Popular", stringLabel(a.LeastPopularOption)})
	}

	if a.AverageTextLength != nil {
		w.Write([]string{"Text Statistics:"})
		w.Write([]string{"Average Length", intLabel(a.AverageTextLength)})
		w.Write([]string{"Min Length", intLabel(a.MinTextLength)})
		w.Write([]string{"Max Length", intLabel(a.MaxTextLength)})
		if len(a.CommonKeywords) > 0 {
			w.Write(append([]string{"Common Keywords"}, a.CommonKeywords...))
		}
	}

	w.Write(nil)
}

func writeRespondentSection(w *csv.Writer, respondents []Respondent) {
	w.Write([]string{"=== RESPONDENT DATA ==="})
	w.Write(nil)

	if len(respondents) == 0 {
		w.Write([]string{"No respondent data available"})
		w.Write(nil)
		return
	}

	w.Write([]string{"Respondent ID", "Name", "Email", "Anonymous", "Total Answers", "First Submission"})
	for _, r := range respondents {
		w.Write([]string{
			r.RespondentID,
			r.Name,
			stringLabel(r.Email),
			strconv.FormatBool(r.IsAnonymous),
			strconv.Itoa(r.TotalAnswersSubmitted),
			r.FirstSubmissionAt.Format(exportTimeLayout),
		})
	}
	w.Write(nil)
}

func writeRawResponseSection(w *csv.Writer, respondents []Respondent) {
	w.Write([]string{"=== RAW RESPONSES ==="})
	w.Write(nil)
	w.Write([]string{"Respondent", "Question ID", "Question", "Answer", "Rating", "Submitted At"})

	for _, r := range respondents {
		for _, detail := range r.Responses {
			w.Write([]string{
				r.RespondentID,
				strconv.FormatUint(uint64(detail.QuestionID), 10),
				detail.QuestionText,
				stringLabel(detail.AnswerText),
				intLabel(detail.RatingValue),
				detail.SubmittedAt.Format(exportTimeLayout),
			})
		}
	}
	w.Write(nil)
}

// sortedOptionKeys gives a stable row order for the option breakdown:
// descending count, option key as tie-break.
func sortedOptionKeys(counts map[string]int) []string {
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if counts[keys[i]] != counts[keys[j]] {
			return counts[keys[i]] > counts[keys[j]]
		}
		return keys[i] < keys[j]
	})
	return keys
}

func orderLabel(n *int) string {
	if n == nil {
		return "N/A"
	}
	return strconv.Itoa(*n)
}

func intLabel(n *int) string {
	if n == nil {
		return "N/A"
	}
	return strconv.Itoa(*n)
}

func floatLabel(f *float64) string {
	if f == nil {
		return "N/A"
	}
	return strconv.FormatFloat(*f, 'f', -1, 64)
}

func stringLabel(s *string) string {
	if s == nil {
		return "N/A"
	}
	return *s
}

// ExportFilename builds the attachment name for a survey download.
func ExportFilename(surveyID uint) string {
	return fmt.Sprintf("survey_%d_analysis_%s.csv", surveyID, time.Now().Format("2006-01-02"))
}
