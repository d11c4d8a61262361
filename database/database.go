package database

import (
	"gorm.io/gorm"
)

type Database struct {
	blogRepo *BlogRepo
	postRepo *PostRepo
}

// New initializes a new Database struct with each repository using a shared GORM database instance
func New(db *gorm.DB) Database {
	return Database{
		blogRepo: NewBlogRepo(db),
		postRepo: NewPostRepo(db),
	}
}

// Accessor methods for each repository

func (d Database) BlogRepo() *BlogRepo {
	return d.blogRepo
}

func (d Database) PostRepo() *PostRepo {
	return d.postRepo
}
