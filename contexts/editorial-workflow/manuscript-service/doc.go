// Package manuscriptservice implements the editorial workflow for journal
// manuscripts: submission, reviewer assignment, peer review, editor
// decisions and issue placement.
//
// Domain rules live in domain/services and are pure. Application use cases
// resolve the caller through the user directory, apply the rules and hand a
// compare-and-set mutation to the repository ports, which persist state and
// outbox events in one unit.
package manuscriptservice
