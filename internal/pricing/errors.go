package pricing

import (
	"errors"
	"fmt"
)

var ErrEmptyCart = errors.New("cart is empty")

// BadQuantityError reports a cart line whose quantity is missing, zero,
// negative or not a whole number.
type BadQuantityError struct {
	ProductID int
}

func (e *BadQuantityError) Error() string {
	return fmt.Sprintf("bad quantity for product %d", e.ProductID)
}

// ProductNotFoundError reports a cart line referencing an unknown product.
type ProductNotFoundError struct {
	ProductID int
}

func (e *ProductNotFoundError) Error() string {
	return fmt.Sprintf("product %d not found", e.ProductID)
}
