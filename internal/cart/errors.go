// Package cart implements the transactional write path for the shopping-cart
// aggregate and the read collaborator it depends on.
package cart

import "errors"

var (
	// ErrNotFound signals that a referenced cart or item does not exist.
	ErrNotFound = errors.New("cart: not found")

	// ErrVersionInvalid signals an update version token that is not a
	// quoted small integer, e.g. `"3"`.
	ErrVersionInvalid = errors.New("cart: version token is invalid")

	// ErrVersionOutdated signals an optimistic-concurrency conflict: the
	// supplied version is behind the persisted one.
	ErrVersionOutdated = errors.New("cart: version is outdated")
)
