package validation

import (
	"fmt"
	"net"
	"net/url"
	"regexp"
	"strings"
	"unicode/utf8"
)

// CampaignPattern defines the valid utm_campaign/utm_source format: letters
// (any script), digits, dots, hyphens and underscores.
var CampaignPattern = regexp.MustCompile(`^[\p{L}\p{N}._-]+$`)

// MaxBatchURLs limits the number of URLs in one processing request.
const MaxBatchURLs = 20

// ValidateCampaign checks an attribution parameter value. Empty is allowed
// and means "use the default".
func ValidateCampaign(campaign string) bool {
	if campaign == "" {
		return true
	}
	if utf8.RuneCountInString(campaign) > 100 {
		return false
	}
	return CampaignPattern.MatchString(campaign)
}

// ValidateURL checks if a URL is valid and uses an allowed scheme (http/https only).
// This prevents javascript:, data:, vbscript:, and other dangerous URL schemes.
func ValidateURL(urlStr string) (bool, string) {
	if urlStr == "" {
		return false, "URL is required"
	}

	// Parse the URL
	u, err := url.Parse(urlStr)
	if err != nil {
		return false, "Invalid URL format"
	}

	// Check scheme - only allow http and https
	scheme := strings.ToLower(u.Scheme)
	if scheme != "http" && scheme != "https" {
		return false, "URL must use http:// or https:// scheme"
	}

	// Ensure host is present
	if u.Host == "" {
		return false, "URL must have a valid host"
	}

	return true, ""
}

// IsPrivateIP checks if an IP address is in a private/reserved range.
// Used to prevent SSRF attacks against internal networks.
func IsPrivateIP(ip net.IP) bool {
	if ip == nil {
		return false
	}

	// Check for loopback
	if ip.IsLoopback() {
		return true
	}

	// Check for link-local
	if ip.IsLinkLocalUnicast() || ip.IsLinkLocalMulticast() {
		return true
	}

	// Check for private ranges
	if ip.IsPrivate() {
		return true
	}

	// Check for unspecified (0.0.0.0 or ::)
	if ip.IsUnspecified() {
		return true
	}

	// Cloud metadata IP (AWS, GCP, Azure)
	// 169.254.169.254 is the standard metadata endpoint
	metadataIP := net.ParseIP("169.254.169.254")
	if ip.Equal(metadataIP) {
		return true
	}

	// Additional cloud metadata endpoints
	// Azure also uses 168.63.129.16
	azureMetadata := net.ParseIP("168.63.129.16")
	if ip.Equal(azureMetadata) {
		return true
	}

	return false
}

// IsPrivateHost checks if a hostname resolves to a private IP address.
// Returns true if the host is private/blocked, false if it's safe to access.
func IsPrivateHost(host string) (bool, error) {
	// Remove port if present
	hostname := host
	if h, _, err := net.SplitHostPort(host); err == nil {
		hostname = h
	}

	// Resolve the hostname
	ips, err := net.LookupIP(hostname)
	if err != nil {
		// If we can't resolve, be conservative and block
		return true, err
	}

	// Check all resolved IPs
	for _, ip := range ips {
		if IsPrivateIP(ip) {
			return true, nil
		}
	}

	return false, nil
}

// ValidateURLForFetch validates a URL is safe for the server to fetch.
// Blocks private IPs, localhost, and cloud metadata endpoints.
func ValidateURLForFetch(urlStr string) (bool, string) {
	// First do basic URL validation
	valid, msg := ValidateURL(urlStr)
	if !valid {
		return false, msg
	}

	u, _ := url.Parse(urlStr)

	// Check if host resolves to private IP
	isPrivate, err := IsPrivateHost(u.Host)
	if err != nil {
		return false, "Cannot resolve hostname"
	}
	if isPrivate {
		return false, "URL points to a private or reserved IP address"
	}

	return true, ""
}

// ValidateURLBatch checks the URL list of a processing request: non-empty,
// at most MaxBatchURLs entries, each a valid http(s) URL.
func ValidateURLBatch(urls []string) (bool, string) {
	if len(urls) == 0 {
		return false, "At least one URL is required"
	}
	if len(urls) > MaxBatchURLs {
		return false, fmt.Sprintf("At most %d URLs can be processed at once", MaxBatchURLs)
	}
	for _, u := range urls {
		if valid, msg := ValidateURL(u); !valid {
			return false, fmt.Sprintf("%s: %s", msg, u)
		}
	}
	return true, ""
}
