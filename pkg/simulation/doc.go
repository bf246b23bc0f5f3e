// Package simulation defines the request sent to start a strategy simulation,
// the OpenAPI contract it must satisfy and the HTTP client that posts it.
package simulation
