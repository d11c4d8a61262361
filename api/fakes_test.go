package api

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rpupo63/blog-publishing-backend/models"
)

// fakeStore is an in-memory stand-in for the blog and post repos, sharing
// state the way the real repos share a database.
type fakeStore struct {
	mu        sync.Mutex
	blogs     map[uuid.UUID]*models.Blog
	posts     map[uuid.UUID]*models.Post
	blogOrder []uuid.UUID
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		blogs: make(map[uuid.UUID]*models.Blog),
		posts: make(map[uuid.UUID]*models.Post),
	}
}

func (s *fakeStore) Add(blog *models.Blog) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if blog.ID == uuid.Nil {
		blog.ID = uuid.New()
	}
	if len(blog.PostIDs) == 0 {
		blog.PostIDs = []byte("[]")
	}
	blog.CreatedAt = time.Now()
	blog.UpdatedAt = blog.CreatedAt
	blog.Posts = []models.Post{}
	stored := *blog
	s.blogs[blog.ID] = &stored
	s.blogOrder = append(s.blogOrder, blog.ID)
	return nil
}

func (s *fakeStore) FindByID(id uuid.UUID) (*models.Blog, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.blogs[id]
	if !ok {
		return nil, nil
	}
	blog := *stored
	if err := s.populate(&blog); err != nil {
		return nil, err
	}
	return &blog, nil
}

func (s *fakeStore) Save(blog *models.Blog) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.blogs[blog.ID]; !ok {
		return errors.New("blog does not exist")
	}
	stored := *blog
	s.blogs[blog.ID] = &stored
	return nil
}

func (s *fakeStore) Delete(id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.blogs, id)
	for i, ordered := range s.blogOrder {
		if ordered == id {
			s.blogOrder = append(s.blogOrder[:i], s.blogOrder[i+1:]...)
			break
		}
	}
	return nil
}

func (s *fakeStore) Paginate(onlyPublished bool, page, limit int) (*models.BlogPage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// newest first
	var matched []*models.Blog
	for i := len(s.blogOrder) - 1; i >= 0; i-- {
		blog, ok := s.blogs[s.blogOrder[i]]
		if !ok {
			continue
		}
		if onlyPublished && !blog.IsPublished {
			continue
		}
		matched = append(matched, blog)
	}

	total := int64(len(matched))
	start := (page - 1) * limit
	end := start + limit
	if start > len(matched) {
		start = len(matched)
	}
	if end > len(matched) {
		end = len(matched)
	}

	results := []*models.Blog{}
	for _, stored := range matched[start:end] {
		blog := *stored
		if err := s.populate(&blog); err != nil {
			return nil, err
		}
		results = append(results, &blog)
	}

	return &models.BlogPage{
		Results:      results,
		Page:         page,
		Limit:        limit,
		TotalPages:   int((total + int64(limit) - 1) / int64(limit)),
		TotalResults: total,
	}, nil
}

func (s *fakeStore) populate(blog *models.Blog) error {
	ids, err := blog.PostIDList()
	if err != nil {
		return err
	}
	blog.Posts = []models.Post{}
	for _, id := range ids {
		if post, ok := s.posts[id]; ok {
			blog.Posts = append(blog.Posts, *post)
		}
	}
	return nil
}

func (s *fakeStore) FindPostByID(id uuid.UUID) (*models.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.posts[id]
	if !ok {
		return nil, nil
	}
	post := *stored
	return &post, nil
}

func (s *fakeStore) AddToBlog(post *models.Post, blog *models.Blog) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.blogs[blog.ID]
	if !ok {
		return errors.New("blog does not exist")
	}
	if post.ID == uuid.Nil {
		post.ID = uuid.New()
	}
	post.CreatedAt = time.Now()
	post.UpdatedAt = post.CreatedAt
	storedPost := *post
	s.posts[post.ID] = &storedPost
	if err := stored.AppendPostID(post.ID); err != nil {
		return err
	}
	return nil
}

func (s *fakeStore) Update(post *models.Post) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.posts[post.ID]; !ok {
		return errors.New("post does not exist")
	}
	stored := *post
	s.posts[post.ID] = &stored
	return nil
}

func (s *fakeStore) DeletePost(id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.posts, id)
	return nil
}

// postStoreAdapter maps the postStore interface onto fakeStore's
// post-prefixed methods (fakeStore already uses the blog names).
type postStoreAdapter struct {
	store *fakeStore
}

func (a postStoreAdapter) FindByID(id uuid.UUID) (*models.Post, error) {
	return a.store.FindPostByID(id)
}

func (a postStoreAdapter) AddToBlog(post *models.Post, blog *models.Blog) error {
	return a.store.AddToBlog(post, blog)
}

func (a postStoreAdapter) Update(post *models.Post) error {
	return a.store.Update(post)
}

func (a postStoreAdapter) Delete(id uuid.UUID) error {
	return a.store.DeletePost(id)
}

type fakeNotifier struct {
	mu        sync.Mutex
	deleted   []uuid.UUID
	published []*models.Blog
}

func (n *fakeNotifier) BlogDeleted(id uuid.UUID) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.deleted = append(n.deleted, id)
}

func (n *fakeNotifier) BlogPublished(blog *models.Blog) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.published = append(n.published, blog)
}

type fakeUploader struct {
	mu        sync.Mutex
	filenames []string
	err       error
}

func (u *fakeUploader) Upload(_ context.Context, filename string, reader io.Reader, _ string) (string, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.err != nil {
		return "", u.err
	}
	if _, err := io.Copy(io.Discard, reader); err != nil {
		return "", err
	}
	u.filenames = append(u.filenames, filename)
	return "https://images.example.com/uploads/" + filename, nil
}

type fakeScraper struct {
	mu   sync.Mutex
	urls []string
	data string
	err  error
}

func (s *fakeScraper) Scrape(_ context.Context, url string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.urls = append(s.urls, url)
	if s.err != nil {
		return "", s.err
	}
	return s.data, nil
}

type testEnv struct {
	router   *chi.Mux
	store    *fakeStore
	notifier *fakeNotifier
	uploader *fakeUploader
	scraper  *fakeScraper
}

func newTestEnv() *testEnv {
	store := newFakeStore()
	notifier := &fakeNotifier{}
	uploader := &fakeUploader{}
	scraper := &fakeScraper{data: `{"url":"https://example.com","title":"Example"}`}

	handlers := &routeHandlers{
		blogHandler: newBlogHandler(store, notifier),
		postHandler: newPostHandler(postStoreAdapter{store}, store, uploader, scraper),
	}

	router := chi.NewRouter()
	setupRoutes(router, handlers, http.NotFoundHandler())

	return &testEnv{
		router:   router,
		store:    store,
		notifier: notifier,
		uploader: uploader,
		scraper:  scraper,
	}
}

// multipartBody builds a post form body with the given field values and an
// optional image part.
func multipartBody(fields map[string]string, imageName string) (*bytes.Buffer, string, error) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	for key, value := range fields {
		if err := writer.WriteField(key, value); err != nil {
			return nil, "", err
		}
	}
	if imageName != "" {
		part, err := writer.CreateFormFile("image", imageName)
		if err != nil {
			return nil, "", err
		}
		if _, err := fmt.Fprint(part, "not really a png"); err != nil {
			return nil, "", err
		}
	}
	if err := writer.Close(); err != nil {
		return nil, "", err
	}
	return body, writer.FormDataContentType(), nil
}

func postFormFields(title, description, embedCode, link string) map[string]string {
	return map[string]string{
		"title":       title,
		"description": description,
		"embedCode":   embedCode,
		"link":        link,
	}
}
