// Package engine implements the substitution engine.
//
// The engine is the core of stovokor: given a node offered by the document
// layer and the path rule that selected it, it resolves the rule's generator
// expression against the node's text, dispatches the generator, and reports
// whether the text should be replaced.
//
// Processing is single-threaded and synchronous. The run-scoped cache is the
// only mutable state; it is owned by the engine instance, never a hidden
// singleton, so independent runs can process independent files with
// independent caches. Rules are evaluated in declaration order and a node is
// claimed by the first selector that matches it.
//
// Failure policy: configuration problems abort a run before it starts, but
// a single bad value never does. Argument-level generator failures and
// unsupported inputs (for example an invalid IBAN) degrade to leaving the
// node unmodified, which the caller may annotate.
package engine
