// Package telegram is the Bot API transport: long-poll update intake,
// text replies with reply keyboards, and multipart file uploads.
//
// Poller dispatches updates on per-chat lanes. Messages from one chat are
// handled strictly in arrival order; different chats run concurrently up to
// a configured limit.
package telegram
