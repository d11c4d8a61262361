package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/rpupo63/blog-publishing-backend/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func doMultipart(t *testing.T, env *testEnv, method, path string, fields map[string]string, imageName string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	body, contentType, err := multipartBody(fields, imageName)
	require.NoError(t, err)

	req := httptest.NewRequest(method, path, body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)

	var resp envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp), "response is not an envelope: %s", rec.Body.String())
	return rec, resp
}

func createPost(t *testing.T, env *testEnv, blogID string, fields map[string]string, imageName string) models.Post {
	t.Helper()
	rec, resp := doMultipart(t, env, http.MethodPost, "/api/v1/posts/"+blogID, fields, imageName)
	require.Equal(t, http.StatusCreated, rec.Code, "create post failed: %s", resp.Message)

	var post models.Post
	require.NoError(t, json.Unmarshal(resp.Data, &post))
	return post
}

func TestCreatePostUnderMissingBlog(t *testing.T) {
	env := newTestEnv()

	rec, resp := doMultipart(t, env, http.MethodPost, "/api/v1/posts/"+uuid.NewString(),
		postFormFields("valid", "payload", "", ""), "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Blog not found!", resp.Message)
}

func TestCreatePostInvalidBlogID(t *testing.T) {
	env := newTestEnv()

	rec, resp := doMultipart(t, env, http.MethodPost, "/api/v1/posts/not-a-uuid",
		postFormFields("t", "d", "", ""), "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid blogId format", resp.Message)
}

func TestCreatePostMissingRequiredKeys(t *testing.T) {
	env := newTestEnv()
	blog := createBlog(t, env, "Tech")

	rec, resp := doMultipart(t, env, http.MethodPost, "/api/v1/posts/"+blog.ID.String(),
		map[string]string{"title": "Hi", "description": "d"}, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Missing required keys: embedCode, link", resp.Message)
}

// The full minimal flow: blog, post with empty optional values, detail view.
func TestCreatePostMinimalFlow(t *testing.T) {
	env := newTestEnv()
	blog := createBlog(t, env, "Tech")

	post := createPost(t, env, blog.ID.String(), postFormFields("Hi", "d", "", ""), "")
	assert.Equal(t, blog.ID, post.BlogID)
	assert.Nil(t, post.ImageURL)
	assert.Nil(t, post.SocialMediaType)
	assert.Nil(t, post.ScrapedData)

	// empty embedCode and link skip classification and scraping entirely
	assert.Empty(t, env.scraper.urls)
	assert.Empty(t, env.uploader.filenames)

	rec, resp := doJSON(t, env, http.MethodGet, "/api/v1/blogs/"+blog.ID.String(), "")
	require.Equal(t, http.StatusOK, rec.Code)

	var fetched models.Blog
	require.NoError(t, json.Unmarshal(resp.Data, &fetched))
	require.Len(t, fetched.Posts, 1)
	assert.Equal(t, post.ID, fetched.Posts[0].ID)
	assert.Equal(t, "Hi", fetched.Posts[0].Title)
}

func TestCreatePostUploadsImage(t *testing.T) {
	env := newTestEnv()
	blog := createBlog(t, env, "Tech")

	post := createPost(t, env, blog.ID.String(), postFormFields("Hi", "d", "", ""), "pic.png")
	require.NotNil(t, post.ImageURL)
	assert.Equal(t, "https://images.example.com/uploads/pic.png", *post.ImageURL)
	assert.Equal(t, []string{"pic.png"}, env.uploader.filenames)
}

func TestCreatePostUploadFailureFailsRequest(t *testing.T) {
	env := newTestEnv()
	env.uploader.err = errors.New("bucket unavailable")
	blog := createBlog(t, env, "Tech")

	rec, resp := doMultipart(t, env, http.MethodPost, "/api/v1/posts/"+blog.ID.String(),
		postFormFields("Hi", "d", "", ""), "pic.png")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "error", resp.Status)
	// internal detail stays server-side
	assert.Equal(t, "Internal server error", resp.Message)
}

func TestCreatePostClassifiesEmbedCode(t *testing.T) {
	env := newTestEnv()
	blog := createBlog(t, env, "Tech")

	post := createPost(t, env, blog.ID.String(),
		postFormFields("fb", "d", `<iframe src="https://www.facebook.com/plugins/post.php"></iframe>`, ""), "")
	require.NotNil(t, post.SocialMediaType)
	assert.Equal(t, models.SocialMediaFacebook, *post.SocialMediaType)

	post = createPost(t, env, blog.ID.String(),
		postFormFields("tw", "d", `<blockquote class="twitter-tweet"></blockquote>`, ""), "")
	require.NotNil(t, post.SocialMediaType)
	assert.Equal(t, models.SocialMediaTwitter, *post.SocialMediaType)

	post = createPost(t, env, blog.ID.String(),
		postFormFields("other", "d", `<div>plain embed</div>`, ""), "")
	assert.Nil(t, post.SocialMediaType)
}

func TestCreatePostScrapesLinkMetadata(t *testing.T) {
	env := newTestEnv()
	blog := createBlog(t, env, "Tech")

	post := createPost(t, env, blog.ID.String(),
		postFormFields("linked", "d", "", "https://example.com/article"), "")
	require.NotNil(t, post.ScrapedData)
	assert.JSONEq(t, env.scraper.data, *post.ScrapedData)
	assert.Equal(t, []string{"https://example.com/article"}, env.scraper.urls)
}

func TestCreatePostScrapeFailureDegradesSilently(t *testing.T) {
	env := newTestEnv()
	env.scraper.err = errors.New("connection refused")
	blog := createBlog(t, env, "Tech")

	post := createPost(t, env, blog.ID.String(),
		postFormFields("linked", "d", "", "https://unreachable.example.com"), "")
	assert.Nil(t, post.ScrapedData)
}

func TestEditPostReplacesFields(t *testing.T) {
	env := newTestEnv()
	blog := createBlog(t, env, "Tech")
	post := createPost(t, env, blog.ID.String(), postFormFields("before", "old", "", ""), "")

	rec, resp := doMultipart(t, env, http.MethodPut, "/api/v1/posts/"+post.ID.String(),
		postFormFields("after", "new", "", ""), "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Post updated successfully!", resp.Message)

	var updated models.Post
	require.NoError(t, json.Unmarshal(resp.Data, &updated))
	assert.Equal(t, post.ID, updated.ID)
	assert.Equal(t, "after", updated.Title)
	assert.Equal(t, "new", updated.Description)
}

func TestEditPostWithoutImageClearsImageURL(t *testing.T) {
	env := newTestEnv()
	blog := createBlog(t, env, "Tech")

	post := createPost(t, env, blog.ID.String(), postFormFields("pic post", "d", "", ""), "pic.png")
	require.NotNil(t, post.ImageURL)

	rec, resp := doMultipart(t, env, http.MethodPut, "/api/v1/posts/"+post.ID.String(),
		postFormFields("pic post", "d", "", ""), "")
	require.Equal(t, http.StatusOK, rec.Code)

	var updated models.Post
	require.NoError(t, json.Unmarshal(resp.Data, &updated))
	assert.Nil(t, updated.ImageURL)

	stored, err := env.store.FindPostByID(post.ID)
	require.NoError(t, err)
	assert.Nil(t, stored.ImageURL)
}

func TestEditPostNotFound(t *testing.T) {
	env := newTestEnv()

	rec, resp := doMultipart(t, env, http.MethodPut, "/api/v1/posts/"+uuid.NewString(),
		postFormFields("t", "d", "", ""), "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Post not found!", resp.Message)
}

func TestDeletePostLeavesBlogListDangling(t *testing.T) {
	env := newTestEnv()
	blog := createBlog(t, env, "Tech")
	post := createPost(t, env, blog.ID.String(), postFormFields("t", "d", "", ""), "")

	rec, resp := doJSON(t, env, http.MethodDelete, "/api/v1/posts/"+post.ID.String(), "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Post deleted successfully!", resp.Message)

	// the stored blog still holds the stale id, but population skips it
	stored, err := env.store.FindByID(blog.ID)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Empty(t, stored.Posts)

	ids, err := stored.PostIDList()
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{post.ID}, ids)
}

func TestDeletePostIsUnconditional(t *testing.T) {
	env := newTestEnv()

	// no existence check: deleting an unknown post succeeds
	rec, resp := doJSON(t, env, http.MethodDelete, "/api/v1/posts/"+uuid.NewString(), "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Post deleted successfully!", resp.Message)
}
