package services

import (
	"strings"

	"github.com/rpupo63/blog-publishing-backend/models"
)

// DetermineSocialMediaType classifies an embed code snippet by provider.
// facebook.com is checked before twitter-tweet; snippets matching neither
// yield an empty label.
func DetermineSocialMediaType(embedCode string) string {
	if strings.Contains(embedCode, "facebook.com") {
		return models.SocialMediaFacebook
	}
	if strings.Contains(embedCode, "twitter-tweet") {
		return models.SocialMediaTwitter
	}
	return ""
}
