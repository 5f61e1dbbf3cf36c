// Package bot handles one inbound chat message end to end: directory
// upsert, commands, routing through the intent state machine, delivery and
// the reply.
//
// Handler implements telegram.Handler. Messages from one user are
// serialized through the session store's per-user lock; nothing else is
// held while collaborators run.
package bot
