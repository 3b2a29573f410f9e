// Package tracking builds attribution links for outreach comments.
package tracking

import (
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"outreach/internal/models"
)

// DefaultCampaign is used when no campaign is given.
const DefaultCampaign = "community_outreach"

// ErrInvalidURL is returned when the original URL is not absolute.
var ErrInvalidURL = errors.New("invalid url")

var whitespaceRun = regexp.MustCompile(`\s+`)

// GenerateURL returns originalURL with utm_source, utm_medium=comment and
// utm_campaign set. Existing utm_source, utm_medium and utm_campaign pairs
// are removed and the new ones appended after every other query segment,
// which is kept byte-for-byte in its original order.
func GenerateURL(originalURL, source, campaign string) (string, error) {
	u, err := url.Parse(originalURL)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("%w: %q is not an absolute url", ErrInvalidURL, originalURL)
	}
	if campaign == "" {
		campaign = DefaultCampaign
	}

	var segments []string
	if u.RawQuery != "" {
		for _, seg := range strings.Split(u.RawQuery, "&") {
			if !isUTMSegment(seg) {
				segments = append(segments, seg)
			}
		}
	}
	segments = append(segments,
		"utm_source="+url.QueryEscape(source),
		"utm_medium="+url.QueryEscape(models.MediumComment),
		"utm_campaign="+url.QueryEscape(campaign),
	)
	u.RawQuery = strings.Join(segments, "&")
	u.ForceQuery = false

	return u.String(), nil
}

func isUTMSegment(seg string) bool {
	key, _, _ := strings.Cut(seg, "=")
	if decoded, err := url.QueryUnescape(key); err == nil {
		key = decoded
	}
	switch key {
	case "utm_source", "utm_medium", "utm_campaign":
		return true
	}
	return false
}

// KeywordCampaign derives a campaign name from a keyword, e.g.
// "steel beam" becomes "keyword_steel_beam". An empty keyword gives
// DefaultCampaign.
func KeywordCampaign(keyword string) string {
	if keyword == "" {
		return DefaultCampaign
	}
	return "keyword_" + whitespaceRun.ReplaceAllString(keyword, "_")
}
