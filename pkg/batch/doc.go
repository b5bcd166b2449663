// Package batch applies ordered lists of parameter writes, either at once or
// spread over time.
package batch
