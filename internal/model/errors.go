package model

import "github.com/rotisserie/eris"

// Sentinel errors for the generation pipeline. Callers distinguish them with
// errors.Is; only ErrTemplateNotFound and ErrUnreadableTemplate abort a request.
var (
	// ErrTemplateNotFound means the template identifier resolved to no record.
	ErrTemplateNotFound = eris.New("template not found")

	// ErrEntityNotFound means an entity identifier resolved to no record.
	// Collection degrades to missing fields; it never aborts the request.
	ErrEntityNotFound = eris.New("entity not found")

	// ErrUnreadableTemplate means the template bytes could not be decoded at
	// all. Distinct from "zero placeholders found", which is not an error.
	ErrUnreadableTemplate = eris.New("template content unreadable")

	// ErrInferenceUnavailable means the AI tier was unreachable, timed out, or
	// returned an unparseable response. Non-fatal: affected placeholders fall
	// through to the synthetic tier.
	ErrInferenceUnavailable = eris.New("inference service unavailable")

	// ErrRenderFailed means a single output encoding could not be produced.
	// Other encodings in the same request are unaffected.
	ErrRenderFailed = eris.New("render failed")

	// ErrSuggestionFinal means a review transition was attempted on a
	// suggestion already in a terminal state.
	ErrSuggestionFinal = eris.New("suggestion already reviewed")
)
