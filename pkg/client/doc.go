// Package client implements the wizard backend over the Waggy JSON API,
// optionally checking every response against the embedded OpenAPI
// description.
package client
