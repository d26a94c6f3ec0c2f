// Package main hosts the votd CLI entrypoint and command graph.
//
// The Cobra command tree exposes the verb-of-the-day workflows: dictionary
// lookups, publishing a post, updating the flashcard decks from the posting
// history, and inspecting the verb cache. It resolves configuration,
// credentials and logging once per invocation so subcommands only wire
// internal packages together.
package main
