package api

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rpupo63/blog-publishing-backend/errs"
	"github.com/rpupo63/blog-publishing-backend/models"
	"github.com/rpupo63/blog-publishing-backend/services"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const maxUploadMemory = 32 << 20 // 32 MiB

// postForm keys that must be present on create/edit. Values may be empty;
// an empty embedCode or link simply skips the corresponding step.
var requiredPostKeys = []string{"title", "description", "embedCode", "link"}

// postStore is the slice of database.PostRepo the post handler needs.
type postStore interface {
	FindByID(id uuid.UUID) (*models.Post, error)
	AddToBlog(post *models.Post, blog *models.Blog) error
	Update(post *models.Post) error
	Delete(id uuid.UUID) error
}

// imageUploader pushes an uploaded image to external storage and returns
// its public URL.
type imageUploader interface {
	Upload(ctx context.Context, filename string, reader io.Reader, contentType string) (string, error)
}

// metadataScraper extracts link metadata as a JSON blob. Errors are
// downgraded to "no data" by the caller.
type metadataScraper interface {
	Scrape(ctx context.Context, url string) (string, error)
}

type postHandler struct {
	responder Responder
	logger    zerolog.Logger
	postRepo  postStore
	blogRepo  blogStore
	uploader  imageUploader
	scraper   metadataScraper
}

func newPostHandler(postRepo postStore, blogRepo blogStore, uploader imageUploader, scraper metadataScraper) postHandler {
	logger := log.With().Str("handlerName", "postHandler").Logger()

	return postHandler{
		responder: NewResponder(logger),
		logger:    logger,
		postRepo:  postRepo,
		blogRepo:  blogRepo,
		uploader:  uploader,
		scraper:   scraper,
	}
}

type postForm struct {
	title       string
	description string
	embedCode   string
	link        string
	image       multipart.File
	imageName   string
	imageType   string
}

func (f *postForm) close() {
	if f.image != nil {
		f.image.Close()
	}
}

// parsePostForm reads the multipart body and verifies the required keys are
// present. The image part is optional.
func parsePostForm(r *http.Request) (*postForm, error) {
	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		return nil, errs.NewBadRequestError("malformed multipart form")
	}

	var missing []string
	for _, key := range requiredPostKeys {
		if _, ok := r.MultipartForm.Value[key]; !ok {
			missing = append(missing, key)
		}
	}
	if len(missing) > 0 {
		return nil, errs.NewBadRequestError(fmt.Sprintf("Missing required keys: %s", strings.Join(missing, ", ")))
	}

	form := &postForm{
		title:       r.FormValue("title"),
		description: r.FormValue("description"),
		embedCode:   r.FormValue("embedCode"),
		link:        r.FormValue("link"),
	}

	file, header, err := r.FormFile("image")
	switch {
	case err == nil:
		form.image = file
		form.imageName = header.Filename
		form.imageType = header.Header.Get("Content-Type")
	case errors.Is(err, http.ErrMissingFile):
		// no image attached
	default:
		return nil, errs.NewBadRequestError("malformed image upload")
	}

	return form, nil
}

// assemble computes the derived post fields from the submitted form: the
// uploaded image URL, the embed classification and the scraped link
// metadata. Fields whose inputs are absent come back nil, never carried
// over from a previous revision.
func (h postHandler) assemble(ctx context.Context, form *postForm) (imageURL, socialMediaType, scrapedData *string, err error) {
	if form.image != nil {
		if h.uploader == nil {
			return nil, nil, nil, errs.NewInternalError("image storage not configured")
		}
		url, uploadErr := h.uploader.Upload(ctx, form.imageName, form.image, form.imageType)
		if uploadErr != nil {
			return nil, nil, nil, errs.NewInternalErrorWithCause("image upload failed", uploadErr)
		}
		imageURL = &url
	}

	if form.embedCode != "" {
		if label := services.DetermineSocialMediaType(form.embedCode); label != "" {
			socialMediaType = &label
		}
	}

	if form.link != "" {
		data, scrapeErr := h.scraper.Scrape(ctx, form.link)
		if scrapeErr != nil {
			// scrape failure degrades silently to "no data"
			h.logger.Warn().Err(scrapeErr).Str("link", form.link).Msg("Failed to scrape link metadata")
		} else {
			scrapedData = &data
		}
	}

	return imageURL, socialMediaType, scrapedData, nil
}

// createPost creates a post under an existing blog. The post insert and the
// blog's post-list append are persisted together.
func (h postHandler) createPost() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		blogID, err := uuid.Parse(chi.URLParam(r, "blogID"))
		if err != nil {
			h.responder.WriteError(w, errs.NewBadRequestError("Invalid blogId format"))
			return
		}

		form, err := parsePostForm(r)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		defer form.close()

		blog, err := h.blogRepo.FindByID(blogID)
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("find", "blog", err))
			return
		}
		if blog == nil {
			h.responder.WriteError(w, errs.NewNotFoundError("Blog not found!"))
			return
		}

		imageURL, socialMediaType, scrapedData, err := h.assemble(r.Context(), form)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		post := models.Post{
			Title:           form.title,
			Description:     form.description,
			ImageURL:        imageURL,
			EmbedCode:       form.embedCode,
			ScrapedData:     scrapedData,
			SocialMediaType: socialMediaType,
			BlogID:          blogID,
		}

		if err := h.postRepo.AddToBlog(&post, blog); err != nil {
			h.responder.WriteError(w, wrapDatabaseError("create", "post", err))
			return
		}

		h.responder.WriteSuccess(w, http.StatusCreated, "Post created successfully!", post)
	}
}

// editPost replaces the post's fields wholesale. Derived fields are
// recomputed from this request alone: editing without a new image clears
// imageUrl rather than preserving the previous upload.
func (h postHandler) editPost() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		postID, err := uuid.Parse(chi.URLParam(r, "postID"))
		if err != nil {
			h.responder.WriteError(w, errs.NewBadRequestError("Invalid postId format"))
			return
		}

		form, err := parsePostForm(r)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		defer form.close()

		post, err := h.postRepo.FindByID(postID)
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("find", "post", err))
			return
		}
		if post == nil {
			h.responder.WriteError(w, errs.NewNotFoundError("Post not found!"))
			return
		}

		imageURL, socialMediaType, scrapedData, err := h.assemble(r.Context(), form)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		post.Title = form.title
		post.Description = form.description
		post.EmbedCode = form.embedCode
		post.ImageURL = imageURL
		post.SocialMediaType = socialMediaType
		post.ScrapedData = scrapedData

		if err := h.postRepo.Update(post); err != nil {
			h.responder.WriteError(w, wrapDatabaseError("update", "post", err))
			return
		}

		h.responder.WriteSuccess(w, http.StatusOK, "Post updated successfully!", post)
	}
}

// deletePost removes the post unconditionally. The owning blog's post list
// is not updated; population skips ids that no longer resolve.
func (h postHandler) deletePost() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		postID, err := uuid.Parse(chi.URLParam(r, "postID"))
		if err != nil {
			h.responder.WriteError(w, errs.NewBadRequestError("Invalid postId format"))
			return
		}

		if err := h.postRepo.Delete(postID); err != nil {
			h.responder.WriteError(w, wrapDatabaseError("delete", "post", err))
			return
		}

		h.responder.WriteSuccess(w, http.StatusOK, "Post deleted successfully!", nil)
	}
}
