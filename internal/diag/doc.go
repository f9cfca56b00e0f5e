// Package diag defines the core diagnostic model shared by every layer
// of the toolkit.
//
// # Purpose
//
//   - Provide deterministic, serialisable data structures that capture
//     one compiler-emitted finding: severity, code, message, spans and
//     footers.
//   - Offer light-weight utilities (Reporter, Bag, Tally) that let
//     producers emit diagnostics without coupling to concrete storage
//     or formatting layers.
//
// # Scope
//
// Package diag does not perform any formatting, IO, or CLI integration.
// Rendering responsibilities live in internal/diagfmt; batch
// orchestration lives in internal/driver.
//
// # Data model
//
// Diagnostic is the central record. It contains:
//
//   - Severity – tri-level enum (Note, Warning, Error) defined in severity.go.
//   - Code – short opaque identifier ("E0277"); empty means uncoded.
//   - Message – human oriented text; keep it short and actionable.
//   - Primary span – the canonical source.Span pointing to the issue,
//     with an optional inline label.
//   - Secondary – optional labelled spans for additional context.
//   - Footers – ordered note/help lines rendered after the snippet.
//     Their order is the producer's order; they are never reordered or
//     deduplicated.
//
// Secondary labels should be used sparingly: each one must add new
// context ("value declared here") rather than repeating the message.
//
// # Emitting diagnostics
//
// Producers should use a diag.Reporter to decouple emission from
// storage. A bundle loader, for example, constructs a ReportBuilder via
// NewReportBuilder (or the helpers ReportError/ReportWarning) and
// chains WithLabel / WithSecondary / WithNote / WithHelp before calling
// Emit. diag.BagReporter aggregates into a Bag, which supports sorting,
// deduplication and merging.
//
// Batch summary state ("aborting due to N previous errors") is owned by
// an explicit Tally value threaded through the batch loop, never by
// package-level mutable state.
//
// # Consumers
//
//   - internal/diagfmt: renders Diagnostics into pretty/short/json/sarif.
//   - internal/driver: collects bags per bundle and carries them to the CLI.
//
// Keep the data model deterministic: new fields must stay side-effect
// free so diagnostics can be serialised for caching and testing.
package diag
