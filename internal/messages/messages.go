// Package messages holds the user-facing wording shared by the terminal
// and web front ends.
package messages

import (
	"fmt"

	"github.com/lepinkainen/booklist/internal/errors"
)

// Fixed messages.
const (
	Welcome         = "Welcome to the CLI Book Library!"
	NoBooks         = "No books found."
	AlreadyFavorite = "Book is already in favorites."
	MissingDetails  = "Please provide all details."
	NotFound        = "Book not found."
	InvalidChoice   = "Invalid choice."
	InvalidMenu     = "Invalid choice. Please try again."
	Goodbye         = "Goodbye! Happy reading!"
	Offline         = "Failed to fetch books. Please check your internet connection."
	TooManySearches = "Too many searches, please wait a moment."
)

// FetchFailure describes a failed catalog query.
func FetchFailure(err error) string {
	if remoteErr, ok := errors.AsRemoteError(err); ok {
		return fmt.Sprintf("Error %d: Unable to fetch books.", remoteErr.StatusCode)
	}
	return Offline
}

// Favorited confirms a book was added to favorites.
func Favorited(title string) string {
	return fmt.Sprintf("Added '%s' to favorites!", title)
}

// Created confirms a custom book was added.
func Created(title string) string {
	return fmt.Sprintf("Book '%s' added successfully!", title)
}

// Removed confirms a removal, echoing the title as the user typed it.
func Removed(title string) string {
	return fmt.Sprintf("Removed '%s'.", title)
}

// Found summarises a successful search.
func Found(count int, label string) string {
	if count == 0 {
		return NoBooks
	}
	noun := "books"
	if count == 1 {
		noun = "book"
	}
	return fmt.Sprintf("Found %d %s in %s.", count, noun, label)
}

// ForCollectionError maps a collection error to its message.
func ForCollectionError(err error) string {
	switch {
	case errors.IsAlreadyExistsError(err):
		return AlreadyFavorite
	case errors.IsNotFoundError(err):
		return NotFound
	case errors.IsValidationError(err):
		return MissingDetails
	default:
		return err.Error()
	}
}
