package session

import (
	"fmt"

	"github.com/helmcode/lossnote/pkg/form"
	"github.com/helmcode/lossnote/pkg/model"
)

// withForm runs fn against the form if the form screen is showing.
func (c *Controller) withForm(op string, fn func(f *form.Form) error) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state.Screen != ScreenForm {
		return fmt.Errorf("%s on %s: %w", op, c.state, ErrInvalidState)
	}
	return fn(c.form)
}

// AddStock adds a stock by name. It reports whether the list changed.
func (c *Controller) AddStock(name string) (bool, error) {
	var added bool
	err := c.withForm("add stock", func(f *form.Form) error {
		added = f.AddStock(name)
		return nil
	})
	return added, err
}

// RemoveStock removes a stock and its UI flags.
func (c *Controller) RemoveStock(name string) (bool, error) {
	var removed bool
	err := c.withForm("remove stock", func(f *form.Form) error {
		removed = f.RemoveStock(name)
		if removed {
			delete(c.customFlag, name)
		}
		return nil
	})
	return removed, err
}

// UpdateStock merges u into the stock at index. Choosing the custom period
// opens its date input.
func (c *Controller) UpdateStock(index int, u form.StockUpdate) error {
	return c.withForm("update stock", func(f *form.Form) error {
		if err := f.UpdateStockDetail(index, u); err != nil {
			return err
		}
		if u.Period != nil {
			c.customFlag[f.Snapshot().Stocks[index].Name] = *u.Period == model.PeriodCustom
		}
		return nil
	})
}

// SetPeriodSegment types digits into one date box of a stock's custom period.
func (c *Controller) SetPeriodSegment(index int, seg form.Segment, value string) error {
	return c.withForm("set period", func(f *form.Form) error {
		if err := f.SetPeriodSegment(index, seg, value); err != nil {
			return err
		}
		c.customFlag[f.Snapshot().Stocks[index].Name] = true
		return nil
	})
}

func (c *Controller) TogglePattern(index int, pattern string) error {
	return c.withForm("toggle pattern", func(f *form.Form) error {
		return f.TogglePattern(index, pattern)
	})
}

func (c *Controller) ToggleDecisionBasis(tag string) error {
	return c.withForm("toggle decision basis", func(f *form.Form) error {
		return f.ToggleDecisionBasis(tag)
	})
}

// IndexOf returns the form position of the named stock or -1.
func (c *Controller) IndexOf(name string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.form.IndexOf(name)
}
