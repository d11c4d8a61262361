package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Blog owns an ordered list of post ids. The list is append-only from the
// blog's side: post creation pushes the new id, post deletion never removes
// it (stale ids are skipped at population time).
type Blog struct {
	ID          uuid.UUID      `json:"id" gorm:"type:uuid;primaryKey;not null"`
	Name        string         `json:"name" gorm:"type:text;not null"`
	IsPublished bool           `json:"isPublished" gorm:"not null;default:false"`
	PostIDs     datatypes.JSON `json:"-" gorm:"column:post_ids;type:jsonb;not null;default:'[]'"`
	Posts       []Post         `json:"posts" gorm:"-"`
	CreatedAt   time.Time      `json:"createdAt" gorm:"type:timestamptz;not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt   time.Time      `json:"updatedAt" gorm:"type:timestamptz;not null;default:CURRENT_TIMESTAMP"`
}

// PostIDList decodes the persisted post_ids array.
func (b *Blog) PostIDList() ([]uuid.UUID, error) {
	if len(b.PostIDs) == 0 {
		return nil, nil
	}
	var ids []uuid.UUID
	if err := json.Unmarshal(b.PostIDs, &ids); err != nil {
		return nil, err
	}
	return ids, nil
}

// AppendPostID pushes a post id onto the persisted list.
func (b *Blog) AppendPostID(id uuid.UUID) error {
	ids, err := b.PostIDList()
	if err != nil {
		return err
	}
	ids = append(ids, id)
	encoded, err := json.Marshal(ids)
	if err != nil {
		return err
	}
	b.PostIDs = datatypes.JSON(encoded)
	return nil
}

// BlogPage is the listing envelope returned by paginated blog queries.
type BlogPage struct {
	Results      []*Blog `json:"results"`
	Page         int     `json:"page"`
	Limit        int     `json:"limit"`
	TotalPages   int     `json:"totalPages"`
	TotalResults int64   `json:"totalResults"`
}
