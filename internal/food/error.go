package food

import "errors"

var (
	// -- Validation & Input --
	ErrInvalidFood  = errors.New("invalid food item")
	ErrEmptyName    = errors.New("food name cannot be empty")
	ErrInvalidPrice = errors.New("food price cannot be negative")
	ErrNoUpdate     = errors.New("no fields to update")

	// -- Resource State --
	ErrFoodNotFound = errors.New("food not found")

	// -- Database & Operation Failures --
	ErrFailedListFoods   = errors.New("failed to list foods")
	ErrFailedCreateFood  = errors.New("failed to create food")
	ErrFailedUpdateFood  = errors.New("failed to update food")
	ErrFailedDeleteFood  = errors.New("failed to delete food")
	ErrFailedSetFeatured = errors.New("failed to set featured flag")
)
