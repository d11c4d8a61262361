package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rpupo63/blog-publishing-backend/errs"
	"github.com/rpupo63/blog-publishing-backend/models"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// blogStore is the slice of database.BlogRepo the blog handler needs.
type blogStore interface {
	Add(blog *models.Blog) error
	FindByID(id uuid.UUID) (*models.Blog, error)
	Save(blog *models.Blog) error
	Delete(id uuid.UUID) error
	Paginate(onlyPublished bool, page, limit int) (*models.BlogPage, error)
}

// blogNotifier broadcasts blog lifecycle events after the response is sent.
type blogNotifier interface {
	BlogDeleted(id uuid.UUID)
	BlogPublished(blog *models.Blog)
}

type blogHandler struct {
	responder Responder
	logger    zerolog.Logger
	blogRepo  blogStore
	notifier  blogNotifier
}

func newBlogHandler(blogRepo blogStore, notifier blogNotifier) blogHandler {
	logger := log.With().Str("handlerName", "blogHandler").Logger()

	return blogHandler{
		responder: NewResponder(logger),
		logger:    logger,
		blogRepo:  blogRepo,
		notifier:  notifier,
	}
}

type newBlogRequest struct {
	Name string `json:"name"`
}

const (
	defaultPage  = 1
	defaultLimit = 10
)

func pageParams(r *http.Request) (page, limit int) {
	page = defaultPage
	limit = defaultLimit
	if raw := r.URL.Query().Get("page"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			page = parsed
		}
	}
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			limit = parsed
		}
	}
	return page, limit
}

// getAllBlogs returns one page of blogs across all publish states, newest
// first, posts populated. An empty collection is a 404, not an empty page.
func (h blogHandler) getAllBlogs() http.HandlerFunc {
	return h.listBlogs(false)
}

// getPublishedBlogs is getAllBlogs filtered to isPublished == true.
func (h blogHandler) getPublishedBlogs() http.HandlerFunc {
	return h.listBlogs(true)
}

func (h blogHandler) listBlogs(onlyPublished bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		page, limit := pageParams(r)

		result, err := h.blogRepo.Paginate(onlyPublished, page, limit)
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("paginate", "blogs", err))
			return
		}

		if result.TotalResults == 0 {
			h.responder.WriteError(w, errs.NewNotFoundError("No blogs found!"))
			return
		}

		h.responder.WriteSuccess(w, http.StatusOK, "Blogs retrieved successfully!", result)
	}
}

// createBlog creates a blog from `{name}`. New blogs start unpublished with
// an empty post list.
func (h blogHandler) createBlog() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req newBlogRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			h.logger.Error().Err(err).Msg("Failed to decode blog request body")
			h.responder.WriteError(w, errs.NewBadRequestError("malformed request body"))
			return
		}

		if req.Name == "" {
			h.responder.WriteError(w, errs.NewBadRequestError("Missing required keys: name"))
			return
		}

		blog := models.Blog{Name: req.Name}
		if err := h.blogRepo.Add(&blog); err != nil {
			h.responder.WriteError(w, wrapDatabaseError("create", "blog", err))
			return
		}

		h.responder.WriteSuccess(w, http.StatusCreated, "Blog created successfully!", blog)
	}
}

// getBlogDetails returns one blog by id with its posts populated.
func (h blogHandler) getBlogDetails() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		blogID, err := uuid.Parse(chi.URLParam(r, "blogID"))
		if err != nil {
			h.responder.WriteError(w, errs.NewBadRequestError("Invalid blogId format"))
			return
		}

		blog, err := h.blogRepo.FindByID(blogID)
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("find", "blog", err))
			return
		}
		if blog == nil {
			h.responder.WriteError(w, errs.NewNotFoundError("Blog not found!"))
			return
		}

		h.responder.WriteSuccess(w, http.StatusOK, "Blog details retrieved successfully!", blog)
	}
}

// deleteBlog removes the blog and then announces the deletion. Posts are
// not cascade-deleted; the event fires after the response is written, so
// listeners can never affect the HTTP outcome.
func (h blogHandler) deleteBlog() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		blogID, err := uuid.Parse(chi.URLParam(r, "blogID"))
		if err != nil {
			h.responder.WriteError(w, errs.NewBadRequestError("Invalid blogId format"))
			return
		}

		blog, err := h.blogRepo.FindByID(blogID)
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("find", "blog", err))
			return
		}
		if blog == nil {
			h.responder.WriteError(w, errs.NewNotFoundError("Blog not found!"))
			return
		}

		if err := h.blogRepo.Delete(blogID); err != nil {
			h.responder.WriteError(w, wrapDatabaseError("delete", "blog", err))
			return
		}

		h.responder.WriteSuccess(w, http.StatusOK, "Blog deleted successfully!", nil)

		h.notifier.BlogDeleted(blogID)
	}
}

// togglePublishBlog flips the publish flag and announces the updated blog.
func (h blogHandler) togglePublishBlog() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		blogID, err := uuid.Parse(chi.URLParam(r, "blogID"))
		if err != nil {
			h.responder.WriteError(w, errs.NewBadRequestError("Invalid blogId format"))
			return
		}

		blog, err := h.blogRepo.FindByID(blogID)
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("find", "blog", err))
			return
		}
		if blog == nil {
			h.responder.WriteError(w, errs.NewNotFoundError("Blog not found!"))
			return
		}

		blog.IsPublished = !blog.IsPublished
		if err := h.blogRepo.Save(blog); err != nil {
			h.responder.WriteError(w, wrapDatabaseError("update", "blog", err))
			return
		}

		h.responder.WriteSuccess(w, http.StatusOK, "Publish status toggled successfully!", blog)

		h.notifier.BlogPublished(blog)
	}
}
