package database

import (
	"errors"

	"github.com/google/uuid"
	"github.com/rpupo63/blog-publishing-backend/models"
	"gorm.io/gorm"
)

type BlogRepo struct {
	db *gorm.DB
}

func NewBlogRepo(db *gorm.DB) *BlogRepo {
	return &BlogRepo{db}
}

// Add inserts a new blog into the database
func (r *BlogRepo) Add(blog *models.Blog) error {
	if blog.ID == uuid.Nil {
		blog.ID = uuid.New()
	}
	if len(blog.PostIDs) == 0 {
		blog.PostIDs = []byte("[]")
	}
	if err := r.db.Create(blog).Error; err != nil {
		return err
	}
	if blog.Posts == nil {
		blog.Posts = []models.Post{}
	}
	return nil
}

// FindByID returns a blog by its ID with its posts populated, or nil when
// no blog has that ID.
func (r *BlogRepo) FindByID(id uuid.UUID) (*models.Blog, error) {
	var blog models.Blog
	err := r.db.First(&blog, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if err := r.populate(&blog); err != nil {
		return nil, err
	}
	return &blog, nil
}

// Save persists changes to an existing blog
func (r *BlogRepo) Save(blog *models.Blog) error {
	return r.db.Save(blog).Error
}

// Delete removes a blog from the database by id. Posts belonging to the
// blog are left untouched: they stay fetchable by id.
func (r *BlogRepo) Delete(id uuid.UUID) error {
	return r.db.Delete(&models.Blog{}, "id = ?", id).Error
}

// Paginate returns one page of blogs ordered by creation time descending
// (id as the stable tie-break), each with its posts populated.
func (r *BlogRepo) Paginate(onlyPublished bool, page, limit int) (*models.BlogPage, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}

	query := r.db.Model(&models.Blog{})
	if onlyPublished {
		query = query.Where("is_published = ?", true)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, err
	}

	var blogs []*models.Blog
	err := query.
		Order("created_at DESC, id DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&blogs).Error
	if err != nil {
		return nil, err
	}

	for _, blog := range blogs {
		if err := r.populate(blog); err != nil {
			return nil, err
		}
	}

	totalPages := int((total + int64(limit) - 1) / int64(limit))
	if blogs == nil {
		blogs = []*models.Blog{}
	}

	return &models.BlogPage{
		Results:      blogs,
		Page:         page,
		Limit:        limit,
		TotalPages:   totalPages,
		TotalResults: total,
	}, nil
}

// populate resolves the blog's post_ids list into full post records,
// preserving list order. Ids that no longer resolve (posts deleted out from
// under the blog) are skipped.
func (r *BlogRepo) populate(blog *models.Blog) error {
	ids, err := blog.PostIDList()
	if err != nil {
		return err
	}
	blog.Posts = []models.Post{}
	if len(ids) == 0 {
		return nil
	}

	var posts []models.Post
	if err := r.db.Where("id IN ?", ids).Find(&posts).Error; err != nil {
		return err
	}

	byID := make(map[uuid.UUID]models.Post, len(posts))
	for _, post := range posts {
		byID[post.ID] = post
	}
	for _, id := range ids {
		if post, ok := byID[id]; ok {
			blog.Posts = append(blog.Posts, post)
		}
	}
	return nil
}
