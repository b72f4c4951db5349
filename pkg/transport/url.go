package transport

import (
	"fmt"
	"net/url"
	"strings"
)

const subscribePath = "/notifications/subscribe"

// BuildURL returns the subscribe endpoint:
//
//	{apiURL}/notifications/subscribe?userId={id}[&departmentIds={d1,d2}]
//
// A trailing slash on apiURL is dropped. Values are percent-encoded, so the
// department list separator is sent as %2C.
func BuildURL(apiURL, userID string, departmentIDs []string) (string, error) {
	if err := ValidateBaseURL(apiURL); err != nil {
		return "", err
	}
	if strings.TrimSpace(userID) == "" {
		return "", ErrMissingUserID
	}

	var b strings.Builder
	b.WriteString(strings.TrimRight(apiURL, "/"))
	b.WriteString(subscribePath)
	b.WriteString("?userId=")
	b.WriteString(escape(userID))

	if ids := SplitIDs(departmentIDs...); len(ids) > 0 {
		b.WriteString("&departmentIds=")
		b.WriteString(escape(strings.Join(ids, ",")))
	}
	return b.String(), nil
}

// ValidateBaseURL checks that raw is an absolute http or https URL.
func ValidateBaseURL(raw string) error {
	if raw == "" {
		return fmt.Errorf("%w: URL is required", ErrInvalidURL)
	}
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%w: only http and https schemes are supported", ErrInvalidURL)
	}
	if u.Host == "" {
		return fmt.Errorf("%w: host is required", ErrInvalidURL)
	}
	return nil
}

// SplitIDs flattens values that may themselves be comma-separated lists,
// trimming whitespace and dropping empty entries.
func SplitIDs(values ...string) []string {
	var out []string
	for _, v := range values {
		for _, id := range strings.Split(v, ",") {
			if id = strings.TrimSpace(id); id != "" {
				out = append(out, id)
			}
		}
	}
	return out
}

// escape percent-encodes a query value, using %20 for spaces.
func escape(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}
