// Package simbackend is a stand-in for the simulation service. It accepts
// POST requests whose JSON body matches the bundled OpenAPI contract and
// answers 202 with a queued simulation id.
//
// A forced failure status makes every request fail, which is how the wizard's
// error banner and retry path are exercised without a real backend.
package simbackend
