// Package preflight provides readiness checks for the filesystem paths,
// external binaries and remote services Aurora depends on.
//
// These checks run in two contexts:
//   - "aurora run" calls RunAll and CheckSystemDeps before polling starts and
//     refuses to start when a required check fails. The LLM check only warns.
//   - "aurora doctor" prints every result, including the Telegram token check.
//
// Remote checks (LLM, Telegram) make a single attempt with a short timeout.
package preflight
