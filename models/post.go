package models

import (
	"time"

	"github.com/google/uuid"
)

// Social media labels assigned by embed-code classification.
const (
	SocialMediaFacebook = "facebook"
	SocialMediaTwitter  = "twitter"
)

// Post belongs to exactly one blog. ImageURL, ScrapedData and
// SocialMediaType are nullable: edits recompute all three from the incoming
// request, they are never carried over from the previous revision.
type Post struct {
	ID              uuid.UUID `json:"id" gorm:"type:uuid;primaryKey;not null"`
	Title           string    `json:"title" gorm:"type:text;not null"`
	Description     string    `json:"description" gorm:"type:text;not null"`
	ImageURL        *string   `json:"imageUrl" gorm:"column:image_url;type:text"`
	EmbedCode       string    `json:"embedCode" gorm:"type:text"`
	ScrapedData     *string   `json:"scrapedData" gorm:"type:text"`
	SocialMediaType *string   `json:"socialMediaType" gorm:"type:text"`
	BlogID          uuid.UUID `json:"blogId" gorm:"type:uuid;not null;index"`
	CreatedAt       time.Time `json:"createdAt" gorm:"type:timestamptz;not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt       time.Time `json:"updatedAt" gorm:"type:timestamptz;not null;default:CURRENT_TIMESTAMP"`
}
