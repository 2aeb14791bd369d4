package domain

import (
	"fmt"

	"auction-engine/pkg/utils"
)

type ProductStatus int

const (
	ProductAvailable ProductStatus = iota
	ProductSold
)

func (s ProductStatus) String() string {
	switch s {
	case ProductAvailable:
		return "available"
	case ProductSold:
		return "sold"
	default:
		return "unknown"
	}
}

// Product is the sellable item behind an auction. It transitions to sold
// exactly once, when the auction it belongs to ends with a winning bid.
type Product struct {
	ID          string
	OwnerID     string
	Name        string
	Description string
	ImageURL    string
	Status      ProductStatus
}

func NewProduct(ownerID, name, description, imageURL string) (*Product, error) {
	if len(name) < 3 || len(name) > 100 {
		return nil, fmt.Errorf("%w: got %d characters", ErrInvalidProductName, len(name))
	}
	return &Product{
		ID:          utils.GenerateID("product"),
		OwnerID:     ownerID,
		Name:        name,
		Description: description,
		ImageURL:    imageURL,
		Status:      ProductAvailable,
	}, nil
}

func (p *Product) clone() *Product {
	clone := *p
	return &clone
}
