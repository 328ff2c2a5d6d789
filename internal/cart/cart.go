// Package cart normalizes the lines a shopper submits at checkout.
package cart

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// MaxQuantity caps a single line, merged lines included.
const MaxQuantity = 999

var (
	ErrEmpty           = errors.New("cart is empty")
	ErrInvalidQuantity = errors.New("quantity must be between 1 and 999")
)

type Line struct {
	ProductID uint64          `json:"productId"`
	Name      string          `json:"name"`
	Image     string          `json:"image,omitempty"`
	Price     decimal.Decimal `json:"price"`
	Size      string          `json:"size"`
	Quantity  int             `json:"quantity"`
}

func (l Line) Total() decimal.Decimal {
	return l.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

func (l Line) key() string {
	return fmt.Sprintf("%d|%s", l.ProductID, strings.ToUpper(strings.TrimSpace(l.Size)))
}

type Cart struct {
	lines []Line
}

// New builds a cart by adding each line in order.
func New(lines []Line) (*Cart, error) {
	c := &Cart{}
	for _, l := range lines {
		if err := c.Add(l); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// Add merges a line with an existing one of the same product and size, or appends it.
func (c *Cart) Add(l Line) error {
	if l.Quantity <= 0 || l.Quantity > MaxQuantity {
		return fmt.Errorf("%w: product %d", ErrInvalidQuantity, l.ProductID)
	}
	l.Size = strings.TrimSpace(l.Size)
	for i := range c.lines {
		if c.lines[i].key() == l.key() {
			if c.lines[i].Quantity > MaxQuantity-l.Quantity {
				return fmt.Errorf("%w: product %d", ErrInvalidQuantity, l.ProductID)
			}
			c.lines[i].Quantity += l.Quantity
			return nil
		}
	}
	c.lines = append(c.lines, l)
	return nil
}

// Remove drops the line for product and size. It reports whether a line was removed.
func (c *Cart) Remove(productID uint64, size string) bool {
	k := Line{ProductID: productID, Size: size}.key()
	for i := range c.lines {
		if c.lines[i].key() == k {
			c.lines = append(c.lines[:i], c.lines[i+1:]...)
			return true
		}
	}
	return false
}

// Resize rewrites the size of the matching line, e.g. to the catalog spelling.
func (c *Cart) Resize(productID uint64, size, to string) {
	k := Line{ProductID: productID, Size: size}.key()
	for i := range c.lines {
		if c.lines[i].key() == k {
			c.lines[i].Size = to
			return
		}
	}
}

// Reprice replaces the price, name and image of every line of the given product.
func (c *Cart) Reprice(productID uint64, name, image string, price decimal.Decimal) {
	for i := range c.lines {
		if c.lines[i].ProductID != productID {
			continue
		}
		c.lines[i].Price = price
		c.lines[i].Name = name
		if image != "" {
			c.lines[i].Image = image
		}
	}
}

func (c *Cart) Lines() []Line {
	out := make([]Line, len(c.lines))
	copy(out, c.lines)
	return out
}

func (c *Cart) Len() int {
	return len(c.lines)
}

func (c *Cart) Quantity() int {
	n := 0
	for _, l := range c.lines {
		n += l.Quantity
	}
	return n
}

func (c *Cart) Subtotal() decimal.Decimal {
	sum := decimal.Zero
	for _, l := range c.lines {
		sum = sum.Add(l.Total())
	}
	return sum
}

func (c *Cart) Total(shipping decimal.Decimal) decimal.Decimal {
	return c.Subtotal().Add(shipping)
}

func (c *Cart) Validate() error {
	if len(c.lines) == 0 {
		return ErrEmpty
	}
	return nil
}
