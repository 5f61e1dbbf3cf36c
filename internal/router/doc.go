// Package router is the intent state machine: a pure function from the
// session's state and the inbound text to a Decision.
//
// Link recognition comes first and always wins, even over text that equals a
// label. Otherwise the text is looked up exactly (after trimming and Unicode
// normalization) in the label Table. Any label sent before a link is chosen
// yields ActionMissingSource; a label that belongs to a different menu than
// the one showing is treated as chat. Back is accepted everywhere.
package router
