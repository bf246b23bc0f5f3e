// Package text renders wizard pages as plain text: a form preview for the
// current step and a summary table of the whole configuration.
package text
