// Package leo looks German verbs up on dict.leo.org and assembles a Record:
// the human-approved English glosses, deep-link keys, and the German and
// English conjugation tables.
//
// The Builder consults the verb cache first and only runs the lookup steps
// whose fields are missing, so a fully cached verb costs no network traffic
// and no interactive review.
package leo
