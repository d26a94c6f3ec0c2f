// Package conjugation models verb inflection tables and extracts them from
// dictionary table pages.
//
// A Table is an ordered mapping mood → tense → Inflection. An Inflection is a
// tagged union: either a single bare Form (impersonal tenses such as
// participles) or a list of pronoun/form pairs. Consumers must switch on Kind
// before reading either side.
package conjugation
