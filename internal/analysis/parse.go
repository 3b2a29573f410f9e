package analysis

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"outreach/internal/models"
)

var (
	jsonFencePrefix = regexp.MustCompile("(?i)^```json\\s*")
	fencePrefix     = regexp.MustCompile("^```\\s*")
	fenceSuffix     = regexp.MustCompile("\\s*```$")
	jsonObject      = regexp.MustCompile(`(?s)\{.*\}`)
)

type rawAnalysis struct {
	Summary        string   `json:"summary"`
	Keywords       []string `json:"keywords"`
	CommentDraft   string   `json:"commentDraft"`
	CommentDraftKo string   `json:"commentDraftKo"`
	CommentDraftEn string   `json:"commentDraftEn"`
}

// ParseResponse extracts the JSON object from model output and converts it
// to an Analysis. Code fences and surrounding prose are ignored.
func ParseResponse(text, language string) (*models.Analysis, error) {
	s := strings.TrimSpace(text)
	if s == "" {
		return nil, ErrEmptyResponse
	}

	if jsonFencePrefix.MatchString(s) {
		s = fenceSuffix.ReplaceAllString(jsonFencePrefix.ReplaceAllString(s, ""), "")
	} else if strings.HasPrefix(s, "```") {
		s = fenceSuffix.ReplaceAllString(fencePrefix.ReplaceAllString(s, ""), "")
	}
	if m := jsonObject.FindString(s); m != "" {
		s = m
	}
	s = strings.TrimSpace(s)

	if open, closed := strings.Count(s, "{"), strings.Count(s, "}"); open != closed {
		return nil, fmt.Errorf("%w: %d opening and %d closing braces", ErrTruncated, open, closed)
	}

	var raw rawAnalysis
	if err := json.Unmarshal([]byte(s), &raw); err != nil {
		var syntaxErr *json.SyntaxError
		if errors.As(err, &syntaxErr) && strings.Contains(syntaxErr.Error(), "unexpected end") {
			return nil, fmt.Errorf("%w: %v", ErrTruncated, err)
		}
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	result := &models.Analysis{
		Summary:       raw.Summary,
		Keywords:      raw.Keywords,
		CommentDrafts: []models.CommentDraft{},
	}
	if result.Keywords == nil {
		result.Keywords = []string{}
	}

	switch language {
	case models.LanguageKorean, models.LanguageEnglish:
		if raw.CommentDraft != "" {
			result.CommentDrafts = append(result.CommentDrafts, models.CommentDraft{Language: language, Text: raw.CommentDraft})
		}
	default:
		if raw.CommentDraftKo != "" {
			result.CommentDrafts = append(result.CommentDrafts, models.CommentDraft{Language: models.LanguageKorean, Text: raw.CommentDraftKo})
		}
		if raw.CommentDraftEn != "" {
			result.CommentDrafts = append(result.CommentDrafts, models.CommentDraft{Language: models.LanguageEnglish, Text: raw.CommentDraftEn})
		}
	}
	return result, nil
}
