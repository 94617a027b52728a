package domain

import "errors"

var (
	// ErrProductNotFound is returned when a product id is unknown so handlers can respond with 404.
	ErrProductNotFound = errors.New("product not found")
	// ErrInvalidProduct marks a product record that violates the engine's input preconditions.
	ErrInvalidProduct = errors.New("invalid product")
	// ErrNothingToRestock is returned when a restock is requested for a product that is not urgent.
	ErrNothingToRestock = errors.New("product does not need restocking")
)
