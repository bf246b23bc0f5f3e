// Package schema declares the field, section and strategy descriptors the
// wizard renders from, and loads them from JSON/YAML documents.
package schema
