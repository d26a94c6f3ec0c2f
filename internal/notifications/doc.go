// Package notifications pushes run outcomes to an ntfy topic.
//
// NewService returns a no-op implementation when no topic is configured, so
// commands notify unconditionally and leave delivery to configuration.
package notifications
