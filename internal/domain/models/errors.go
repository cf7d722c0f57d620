package models

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNoLineItems indicates a sale was submitted without any line.
	ErrNoLineItems = errors.New("sale has no line items")
	// ErrBuyerRequired indicates the buyer name is blank.
	ErrBuyerRequired = errors.New("buyer name is required")
	// ErrNegativeDiscount indicates a discount below zero.
	ErrNegativeDiscount = errors.New("discount must not be negative")
)

// ItemNotFoundError reports a line whose (team, kit) has no stock row.
type ItemNotFoundError struct {
	Team string
	Kit  string
}

func (e *ItemNotFoundError) Error() string {
	return fmt.Sprintf("Item not found: %s / %s", e.Team, e.Kit)
}

// InsufficientStockError reports a line asking for more than is available.
type InsufficientStockError struct {
	Team      string
	Kit       string
	Size      string
	Available int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("Not enough stock for %s %s size %s: available %d", e.Team, e.Kit, e.Size, e.Available)
}

// InvalidQuantityError reports a line with a zero or negative quantity.
type InvalidQuantityError struct {
	Team     string
	Kit      string
	Size     string
	Quantity int
}

func (e *InvalidQuantityError) Error() string {
	return fmt.Sprintf("Invalid quantity %d for %s %s size %s", e.Quantity, e.Team, e.Kit, e.Size)
}

// InvalidSizeError reports a line whose size is not one of the size columns.
type InvalidSizeError struct {
	Team string
	Kit  string
	Size string
}

func (e *InvalidSizeError) Error() string {
	return fmt.Sprintf("Invalid size %q for %s %s", e.Size, e.Team, e.Kit)
}

// ValidationError collects every problem found before a sale is committed.
type ValidationError struct {
	Problems []error
}

func (e *ValidationError) Error() string {
	msgs := make([]string, 0, len(e.Problems))
	for _, p := range e.Problems {
		msgs = append(msgs, p.Error())
	}
	return "sale rejected: " + strings.Join(msgs, "; ")
}

func (e *ValidationError) Unwrap() []error {
	return e.Problems
}

// Messages returns the problems as operator-facing strings.
func (e *ValidationError) Messages() []string {
	msgs := make([]string, 0, len(e.Problems))
	for _, p := range e.Problems {
		msgs = append(msgs, p.Error())
	}
	return msgs
}

// CommitError reports a sale that failed part way through commit. Receipt lists
// which lines reached the store; nothing is rolled back.
type CommitError struct {
	Receipt SaleReceipt
	Line    int
	Step    string
	Err     error
}

func (e *CommitError) Error() string {
	return fmt.Sprintf("sale partially committed: line %d failed at %s after %d committed: %v",
		e.Line+1, e.Step, e.Receipt.Committed(), e.Err)
}

func (e *CommitError) Unwrap() error {
	return e.Err
}
