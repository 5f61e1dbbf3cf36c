// Package session tracks per-user conversational context across the stateless
// chat transport.
//
// A Session records the selected media link and where the user is in the
// link, action, quality/language, delivery workflow. The Store creates sessions
// lazily, hands out value snapshots, serializes message handling per user via
// Lock, and drops idle sessions through RunJanitor. Nothing is persisted; a
// restart starts every user from NoSource.
package session
