package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

// setupRoutes mounts the versioned API and the notification stream.
func setupRoutes(r chi.Router, handlers *routeHandlers, events http.Handler) {
	// Registered before the subrouter is mounted so unmatched paths under
	// /api/v1 inherit the envelope-shaped 404 as well.
	notFound := func(w http.ResponseWriter, r *http.Request) {
		responder := NewResponder(log.Logger)
		responder.writeJSON(w, http.StatusNotFound, errorResponse{
			Status:  "error",
			Message: "Not found",
		})
	}
	r.NotFound(notFound)
	// Method mismatches surface as 404 too, the way the API treats any
	// unmatched route.
	r.MethodNotAllowed(notFound)

	r.Route("/api/v1", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(ColoredHTTPLoggingMiddleware)

			// Blog endpoints
			r.Get("/blogs", handlers.blogHandler.getAllBlogs())
			r.Get("/blogs/published", handlers.blogHandler.getPublishedBlogs())
			r.Post("/blogs", handlers.blogHandler.createBlog())
			r.Get("/blogs/{blogID}", handlers.blogHandler.getBlogDetails())
			r.Delete("/blogs/{blogID}", handlers.blogHandler.deleteBlog())
			r.Post("/blogs/{blogID}/publish", handlers.blogHandler.togglePublishBlog())

			// Post endpoints
			r.Post("/posts/{blogID}", handlers.postHandler.createPost())
			r.Put("/posts/{postID}", handlers.postHandler.editPost())
			r.Delete("/posts/{postID}", handlers.postHandler.deletePost())
		})

		// Notification stream for deleteBlog / publishBlog events
		r.Get("/events", events.ServeHTTP)
	})
}
