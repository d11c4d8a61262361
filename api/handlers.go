package api

import (
	"github.com/rpupo63/blog-publishing-backend/database"
)

// routeHandlers contains all the handlers for different route types
type routeHandlers struct {
	blogHandler blogHandler
	postHandler postHandler
}

// initializeHandlers creates and returns all handlers organized in a routeHandlers struct
func initializeHandlers(database database.Database, uploader imageUploader, scraper metadataScraper, notifier blogNotifier) *routeHandlers {
	return &routeHandlers{
		blogHandler: newBlogHandler(database.BlogRepo(), notifier),
		postHandler: newPostHandler(database.PostRepo(), database.BlogRepo(), uploader, scraper),
	}
}
