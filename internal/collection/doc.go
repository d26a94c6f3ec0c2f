// Package collection stores flashcard decks, notes, cards and media in a
// single SQLite file and exports it, whole or per deck, as a package file.
//
// Deck names are hierarchical with "::" separators. Creating a deck also
// creates its missing ancestors, and creation is idempotent by name.
package collection
