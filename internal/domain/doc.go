// Package domain defines core data models and interfaces shared across the app.
// It contains plain types (values, sealed cell state), the container
// contract and the error taxonomy only.
//
// # Value model
//
// Every stored value is a Value: bytes, text, int64, float64, bool, a
// list of Values, a string-keyed map of Values, or the sealed state of
// an encryption cell. Arbitrary Go object graphs are not storable; use
// FromAny to convert plain Go data.
package domain
