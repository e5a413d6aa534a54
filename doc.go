package templateguard

// Package templateguard governs a single evolving configuration schema (the
// "template") shared across independent consumers. It provides:
//
// - Validation of concrete configuration documents against the current or a
//   pinned historical schema version (Validate), with a stable error model
//   via Issues (JSON Pointer path, code, message)
// - Enforcement that schema edits are backwards compatible and properly
//   versioned before being accepted into history (Check, Gate)
// - An append-only archive of accepted schema versions (Archive), with
//   filesystem and sqlite backends under store/
//
// Design policy:
// - Keep only public APIs in the root package; the root stays free of I/O.
// - Place format loaders under source/, storage backends under store/, and
//   the CLI under cmd/templateguard.
// - Prefer black-box testing against public APIs.
//
// Typical usage:
//
//	s, err := templateguard.Load(raw)
//	res := templateguard.Validate(doc, s, false)
//
//	gate := templateguard.NewGate(store)
//	dec, err := gate.Propose(ctx, candidate)
