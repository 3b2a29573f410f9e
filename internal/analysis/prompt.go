package analysis

import (
	"fmt"
	"strings"

	"outreach/internal/models"
)

// Generation parameters.
const (
	Temperature = 0.7
	TopP        = 0.95
)

// MaxOutputTokens returns the output budget for a language. Korean output
// uses more tokens than English; both languages need room for two drafts.
func MaxOutputTokens(language string) int {
	switch language {
	case models.LanguageKorean:
		return 1536
	case models.LanguageEnglish:
		return 1024
	default:
		return 2048
	}
}

// BuildPrompt renders the analysis prompt for in. The language and audience
// must already be defaulted.
func BuildPrompt(in Input) string {
	var keywordLanguage, draftInstruction, schema string
	switch in.Language {
	case models.LanguageKorean:
		keywordLanguage = "한국어로만"
		draftInstruction = "한국어로만 작성된 커뮤니티 댓글 초안 1개 (2-3문장, 광고X, 자연스럽게)"
		schema = `{"summary":"...","keywords":["..."],"commentDraft":"..."}`
	case models.LanguageEnglish:
		keywordLanguage = "영어로만"
		draftInstruction = "영어로만 작성된 커뮤니티 댓글 초안 1개 (2-3문장, 광고X, 자연스럽게)"
		schema = `{"summary":"...","keywords":["..."],"commentDraft":"..."}`
	default:
		keywordLanguage = "한국어와 영어를 혼합하여"
		draftInstruction = "다음 2가지 버전의 커뮤니티 댓글 초안을 각각 작성 (각 2-3문장, 광고X, 자연스럽게):\n- 한국어 버전 1개\n- 영어 버전 1개"
		schema = `{"summary":"...","keywords":["..."],"commentDraftKo":"...","commentDraftEn":"..."}`
	}

	var b strings.Builder
	fmt.Fprintf(&b, "제목: %s\n내용:\n%s", in.Title, in.Content)
	b.WriteString(seoContext(in.SEO))
	fmt.Fprintf(&b, "\n\n%s 관점에서:\n", in.TargetAudience)
	b.WriteString("1. 요약 (3문장)\n")
	fmt.Fprintf(&b, "2. 키워드 5개 (%s, SEO 정보를 참고하여 보강)\n", keywordLanguage)
	fmt.Fprintf(&b, "3. %s\n\n", draftInstruction)
	fmt.Fprintf(&b, "JSON만 정확히 출력:\n%s\n\n", schema)
	b.WriteString("위 JSON 형식만 출력하고, 그 외 텍스트/마크다운/코드블록은 절대 넣지 마.")
	return b.String()
}

func seoContext(seo models.SEOInfo) string {
	if seo.IsEmpty() {
		return ""
	}

	var parts []string
	if seo.Description != "" {
		parts = append(parts, "메타 설명: "+seo.Description)
	}
	if len(seo.Keywords) > 0 {
		parts = append(parts, "메타 키워드: "+strings.Join(seo.Keywords, ", "))
	}
	if seo.OGTitle != "" {
		parts = append(parts, "OG 제목: "+seo.OGTitle)
	}
	if seo.OGDescription != "" {
		parts = append(parts, "OG 설명: "+seo.OGDescription)
	}
	if seo.OGKeywords != "" {
		parts = append(parts, "OG 키워드: "+seo.OGKeywords)
	}
	return "\n\nSEO 정보:\n" + strings.Join(parts, "\n") + "\n\n위 SEO 정보를 참고하여 키워드를 보강하세요."
}
