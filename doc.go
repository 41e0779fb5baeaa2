// Package portal implements the identity and access-control core of a
// job-portal backend: token issuance, principal resolution across three
// disjoint collections, role-gated authorization, and the application
// status lifecycle.
//
// Principals:
//   - Job seekers, recruiters, and administrators live in separate
//     collections, each owning its own hashed password and activation flag.
//     Email is unique within a collection only; the same address may exist
//     in more than one collection.
//   - Every issued token carries an explicit principal-kind tag, and the
//     resolver honors that tag strictly. A token is never resolved against
//     a collection other than the one it was issued for.
//
// Application lifecycle:
//   - Applications move pending -> approved or pending -> rejected.
//     Re-setting the current status is an idempotent no-op; approved and
//     rejected are terminal.
//   - The state machine publishes status-changed events through an
//     ActivitySink so a notifier collaborator can subscribe without
//     blocking the request path.
package portal
