package id

import "github.com/google/uuid"

// UUIDGenerator mints random identifiers for orders, products and images.
type UUIDGenerator struct{}

func NewUUIDGenerator() UUIDGenerator { return UUIDGenerator{} }

func (UUIDGenerator) NewID() string { return uuid.NewString() }
