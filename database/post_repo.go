package database

import (
	"errors"

	"github.com/google/uuid"
	"github.com/rpupo63/blog-publishing-backend/models"
	"gorm.io/gorm"
)

type PostRepo struct {
	db *gorm.DB
}

func NewPostRepo(db *gorm.DB) *PostRepo {
	return &PostRepo{db}
}

// FindByID returns a post by its ID, or nil when no post has that ID
func (r *PostRepo) FindByID(id uuid.UUID) (*models.Post, error) {
	var post models.Post
	err := r.db.First(&post, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &post, nil
}

// AddToBlog inserts the post and appends its id to the owning blog's
// post_ids list in a single transaction, so a failed append never leaves an
// unlinked post behind.
func (r *PostRepo) AddToBlog(post *models.Post, blog *models.Blog) error {
	if post.ID == uuid.Nil {
		post.ID = uuid.New()
	}
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(post).Error; err != nil {
			return err
		}
		if err := blog.AppendPostID(post.ID); err != nil {
			return err
		}
		return tx.Save(blog).Error
	})
}

// Update replaces an existing post in the database
func (r *PostRepo) Update(post *models.Post) error {
	return r.db.Save(post).Error
}

// Delete removes a post from the database by id. The owning blog's
// post_ids list is deliberately not updated, matching the lifecycle the
// rest of the system expects: population skips ids that no longer resolve.
func (r *PostRepo) Delete(id uuid.UUID) error {
	return r.db.Delete(&models.Post{}, "id = ?", id).Error
}
