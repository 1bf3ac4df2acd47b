// Package notifications pushes action outcomes to an ntfy topic.
//
// The CLI publishes when a deck draft or video build finishes or fails.
// Without a configured topic the service is a no-op.
package notifications
