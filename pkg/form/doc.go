// Package form interprets schema descriptors into controls bound to a
// configuration value tree.
//
// Controls are snapshots: an edit emits a patch and updates the control's own
// value, but visibility is decided when the tree is interpreted. Callers
// re-interpret after each change so rules such as
// `parameters.kalmanType == "window"` see the new state.
package form
