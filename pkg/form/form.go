package form

import (
	"errors"
	"fmt"
	"strings"

	"github.com/helmcode/lossnote/pkg/model"
)

var (
	// ErrIndexOutOfRange is returned by per-stock updates addressing a missing entry.
	ErrIndexOutOfRange = errors.New("stock index out of range")
	// ErrUnknownOption is returned for values outside a fixed catalog.
	ErrUnknownOption = errors.New("unknown option")
	// ErrInvalidRange is returned for a custom period that ends before it starts.
	ErrInvalidRange = errors.New("custom period ends before it starts")
)

// StockUpdate is a partial update. Nil fields are left alone.
type StockUpdate struct {
	Status       *model.Status
	Period       *string
	CustomPeriod *string
}

// Form holds the form data of one analysis. It is not safe for concurrent
// use; the session controller serializes access.
type Form struct {
	data model.FormData
}

// New returns an empty form.
func New() *Form {
	return &Form{data: model.FormData{
		Stocks:        []model.StockEntry{},
		DecisionBasis: []string{},
	}}
}

// Snapshot returns a deep copy of the current data.
func (f *Form) Snapshot() model.FormData {
	return f.data.Clone()
}

// IndexOf returns the position of the named stock or -1.
func (f *Form) IndexOf(name string) int {
	for i, s := range f.data.Stocks {
		if s.Name == name {
			return i
		}
	}
	return -1
}

// AddStock appends a stock with default details. Blank and duplicate names
// are ignored; the return value reports whether the list changed.
func (f *Form) AddStock(name string) bool {
	name = strings.TrimSpace(name)
	if name == "" || f.IndexOf(name) >= 0 {
		return false
	}
	f.data.Stocks = append(f.data.Stocks, model.StockEntry{
		Name:     name,
		Status:   model.StatusHolding,
		Period:   model.Periods[0],
		Patterns: []string{},
	})
	return true
}

// RemoveStock deletes the named stock if present.
func (f *Form) RemoveStock(name string) bool {
	i := f.IndexOf(name)
	if i < 0 {
		return false
	}
	f.data.Stocks = append(f.data.Stocks[:i], f.data.Stocks[i+1:]...)
	return true
}

// UpdateStockDetail merges u into the stock at index. An out of range index
// fails with ErrIndexOutOfRange and leaves the form unchanged.
func (f *Form) UpdateStockDetail(index int, u StockUpdate) error {
	s, err := f.stock(index)
	if err != nil {
		return err
	}
	next := *s
	if u.Status != nil {
		if *u.Status != model.StatusHolding && *u.Status != model.StatusSold {
			return fmt.Errorf("status %q: %w", *u.Status, ErrUnknownOption)
		}
		next.Status = *u.Status
	}
	if u.Period != nil {
		if !model.InCatalog(model.Periods, *u.Period) {
			return fmt.Errorf("period %q: %w", *u.Period, ErrUnknownOption)
		}
		next.Period = *u.Period
	}
	if u.CustomPeriod != nil {
		if err := checkOrder(*u.CustomPeriod); err != nil {
			return err
		}
		next.CustomPeriod = *u.CustomPeriod
	}
	*s = next
	return nil
}

// TogglePattern adds pattern to the stock at index, or removes it if present.
func (f *Form) TogglePattern(index int, pattern string) error {
	s, err := f.stock(index)
	if err != nil {
		return err
	}
	if !model.InCatalog(model.TradePatterns, pattern) {
		return fmt.Errorf("pattern %q: %w", pattern, ErrUnknownOption)
	}
	s.Patterns = toggle(s.Patterns, pattern)
	return nil
}

// ToggleDecisionBasis adds or removes a decision basis tag.
func (f *Form) ToggleDecisionBasis(tag string) error {
	if !model.InCatalog(model.DecisionOptions, tag) {
		return fmt.Errorf("decision basis %q: %w", tag, ErrUnknownOption)
	}
	f.data.DecisionBasis = toggle(f.data.DecisionBasis, tag)
	return nil
}

// SetPeriodSegment replaces one segmented date field of the stock at index
// and re-encodes its custom period. Typing a date switches the stock to the
// custom period. A value that completes a range ending before its start
// fails with ErrInvalidRange and leaves the stock unchanged.
func (f *Form) SetPeriodSegment(index int, seg Segment, value string) error {
	s, err := f.stock(index)
	if err != nil {
		return err
	}
	encoded := AssembleParts(ParseParts(s.CustomPeriod).With(seg, value))
	if err := checkOrder(encoded); err != nil {
		return err
	}
	s.CustomPeriod = encoded
	s.Period = model.PeriodCustom
	return nil
}

func (f *Form) stock(index int) (*model.StockEntry, error) {
	if index < 0 || index >= len(f.data.Stocks) {
		return nil, fmt.Errorf("index %d of %d: %w", index, len(f.data.Stocks), ErrIndexOutOfRange)
	}
	return &f.data.Stocks[index], nil
}

func toggle(set []string, v string) []string {
	for i, existing := range set {
		if existing == v {
			out := make([]string, 0, len(set)-1)
			out = append(out, set[:i]...)
			return append(out, set[i+1:]...)
		}
	}
	return append(set, v)
}

// StepValid is the gate for leaving form step n.
func StepValid(step int, data model.FormData) bool {
	switch step {
	case 1:
		return len(data.Stocks) > 0
	case 2:
		if len(data.Stocks) == 0 {
			return false
		}
		for _, s := range data.Stocks {
			if len(s.Patterns) == 0 {
				return false
			}
		}
		return true
	case 3:
		return len(data.DecisionBasis) > 0
	default:
		return false
	}
}
