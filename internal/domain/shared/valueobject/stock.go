package valueobject

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Stock is a value object representing textile stock as a boxes/meters pair.
// Goods move in whole boxes while billing happens on measured meters, so the
// two counters always travel together.
// It is immutable - all operations return new Stock instances
type Stock struct {
	boxes  int64
	meters decimal.Decimal
}

// NewStock creates a new Stock with the specified boxes and meters
func NewStock(boxes int64, meters decimal.Decimal) (Stock, error) {
	if boxes < 0 {
		return Stock{}, errors.New("boxes cannot be negative")
	}
	if meters.IsNegative() {
		return Stock{}, errors.New("meters cannot be negative")
	}
	return Stock{boxes: boxes, meters: meters}, nil
}

// NewStockFromFloat creates Stock with meters given as a float64
func NewStockFromFloat(boxes int64, meters float64) (Stock, error) {
	return NewStock(boxes, decimal.NewFromFloat(meters))
}

// MustNewStock creates a Stock and panics on error
func MustNewStock(boxes int64, meters decimal.Decimal) Stock {
	s, err := NewStock(boxes, meters)
	if err != nil {
		panic(err)
	}
	return s
}

// ZeroStock returns an empty stock
func ZeroStock() Stock {
	return Stock{boxes: 0, meters: decimal.Zero}
}

// Boxes returns the box count
func (s Stock) Boxes() int64 {
	return s.boxes
}

// Meters returns the measured meters
func (s Stock) Meters() decimal.Decimal {
	return s.meters
}

// IsZero returns true if both counters are zero
func (s Stock) IsZero() bool {
	return s.boxes == 0 && s.meters.IsZero()
}

// Add returns a new Stock with both counters summed
func (s Stock) Add(other Stock) Stock {
	return Stock{
		boxes:  s.boxes + other.boxes,
		meters: s.meters.Add(other.meters),
	}
}

// Subtract returns a new Stock with both counters reduced.
// Returns error if either counter would go negative.
func (s Stock) Subtract(other Stock) (Stock, error) {
	boxes := s.boxes - other.boxes
	meters := s.meters.Sub(other.meters)
	if boxes < 0 || meters.IsNegative() {
		return Stock{}, errors.New("resulting stock would be negative")
	}
	return Stock{boxes: boxes, meters: meters}, nil
}

// MustSubtract subtracts stock, panics on underflow
func (s Stock) MustSubtract(other Stock) Stock {
	result, err := s.Subtract(other)
	if err != nil {
		panic(err)
	}
	return result
}

// CanCover reports whether this stock has at least the other's boxes and meters
func (s Stock) CanCover(other Stock) bool {
	return s.boxes >= other.boxes && s.meters.GreaterThanOrEqual(other.meters)
}

// Equals returns true if both counters match
func (s Stock) Equals(other Stock) bool {
	return s.boxes == other.boxes && s.meters.Equal(other.meters)
}

// String returns a string representation of the Stock
func (s Stock) String() string {
	return fmt.Sprintf("%d boxes / %s m", s.boxes, s.meters.StringFixed(2))
}
