// Package pollservice implements poll and vote operations inside the
// poll-operations context.
//
// The module owns poll lifecycle (create, flag toggles, cascade delete),
// one-vote-per-user admission, derived tally reads gated on publication, and
// poll/vote event production through an outbox-backed relay. Business rules
// live in the domain and application layers; storage and transport sit behind
// ports and adapters.
package pollservice
