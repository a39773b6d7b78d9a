// Package delivery keeps track of finished archives until they are
// downloaded.
//
// Archives live in per-job scratch directories. The Registry hands out a
// ULID token per archive and indexes the latest token per username. After
// the first download the archive is deleted once a grace period has passed;
// archives nobody downloads expire after a TTL. Sweep also reclaims scratch
// directories abandoned by crashed or interrupted jobs.
//
// Nothing is persisted: a restart forgets every token, and the startup
// sweep removes what was left on disk.
package delivery
