// Package workflow drives the two operator runs: publishing the verb of the
// day and bringing the flashcard decks up to date with the posted verbs.
//
// Both runs hold a file lock; a second invocation against the same data
// directory fails with services.ErrRunAborted.
package workflow
