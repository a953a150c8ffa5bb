package cart

import (
	"fmt"

	"github.com/fjod/go_cart/storefront/internal/domain"
)

// Store holds the lines of one cart in insertion order, keyed by pizza and
// size. It is owned by a single session and is not safe for concurrent use.
type Store struct {
	order []domain.LineKey
	lines map[domain.LineKey]*domain.CartLine
}

func NewStore() *Store {
	return &Store{
		lines: make(map[domain.LineKey]*domain.CartLine),
	}
}

// AddItem adds one unit of item in the given size. An existing line for the
// same pizza and size is incremented; otherwise a new line is appended with
// the menu price captured at this moment.
func (s *Store) AddItem(item domain.MenuItem, size domain.Size) domain.CartLine {
	key := domain.LineKey{PizzaID: item.ID.String(), Size: size}
	if line, ok := s.lines[key]; ok {
		line.Quantity++
		return copyLine(line)
	}

	line := &domain.CartLine{
		PizzaID:   item.ID,
		Name:      item.Name,
		Size:      size,
		Quantity:  1,
		UnitPrice: item.Price,
		Toppings:  []string{},
	}
	s.lines[key] = line
	s.order = append(s.order, key)
	return copyLine(line)
}

// UpdateQuantity adds delta to the line's quantity and drops the line when
// the result is zero or less.
func (s *Store) UpdateQuantity(key domain.LineKey, delta int) error {
	line, ok := s.lines[key]
	if !ok {
		return fmt.Errorf("%w: %s", ErrLineNotFound, key)
	}
	line.Quantity += delta
	if line.Quantity <= 0 {
		s.remove(key)
	}
	return nil
}

// UpdateQuantityAt is UpdateQuantity addressed by position in Lines.
func (s *Store) UpdateQuantityAt(index, delta int) error {
	if index < 0 || index >= len(s.order) {
		return fmt.Errorf("%w: %d (cart has %d lines)", ErrInvalidIndex, index, len(s.order))
	}
	return s.UpdateQuantity(s.order[index], delta)
}

func (s *Store) Remove(key domain.LineKey) error {
	if _, ok := s.lines[key]; !ok {
		return fmt.Errorf("%w: %s", ErrLineNotFound, key)
	}
	s.remove(key)
	return nil
}

func (s *Store) Clear() {
	s.order = nil
	s.lines = make(map[domain.LineKey]*domain.CartLine)
}

// Lines returns a copy of the cart lines in insertion order.
func (s *Store) Lines() []domain.CartLine {
	out := make([]domain.CartLine, 0, len(s.order))
	for _, key := range s.order {
		out = append(out, copyLine(s.lines[key]))
	}
	return out
}

func (s *Store) Line(key domain.LineKey) (domain.CartLine, bool) {
	line, ok := s.lines[key]
	if !ok {
		return domain.CartLine{}, false
	}
	return copyLine(line), true
}

func (s *Store) Len() int {
	return len(s.order)
}

func (s *Store) IsEmpty() bool {
	return len(s.order) == 0
}

// ItemCount is the number of pizzas in the cart across all lines.
func (s *Store) ItemCount() int {
	n := 0
	for _, line := range s.lines {
		n += line.Quantity
	}
	return n
}

func (s *Store) remove(key domain.LineKey) {
	delete(s.lines, key)
	for i, k := range s.order {
		if k == key {
			s.order = append(s.order[:i], s.order[i+1:]...)
			return
		}
	}
}

func copyLine(line *domain.CartLine) domain.CartLine {
	c := *line
	c.Toppings = append([]string{}, line.Toppings...)
	return c
}
