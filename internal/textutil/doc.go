// Package textutil provides text cleanup helpers shared by the scraping and
// packaging code.
//
// The primary use cases are:
//   - Stripping control, format, and other invisible code points from scraped
//     markup before it is pattern matched
//   - Collapsing whitespace in extracted cell text
//   - Sanitizing filenames for cached audio and exported packages
package textutil
