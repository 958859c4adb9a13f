// Package widget is the converter's UI controller: an explicit state machine over the
// selected currencies, the typed amount and the currency picker.
//
// The picker is either closed or open for one Slot. Every action that changes state
// reconverts the amount and returns the resulting View.
package widget

import (
	"errors"
	"fmt"
	"sync"
	"time"

	converter "go-currency-converter"
	"go-currency-converter/display"
	"go-currency-converter/exchange"
	"go-currency-converter/refresh"
)

var (
	// ErrPickerClosed a currency was selected while the picker was not open
	ErrPickerClosed = errors.New("currency picker is closed")

	// ErrClosed the widget has been torn down
	ErrClosed = errors.New("widget is closed")
)

// Table rates the widget converts with and lists in its picker
type Table interface {
	converter.Rates
	Entries() []converter.Entry
}

// State the user's choices
type State struct {
	Source      converter.Currency
	Destination converter.Currency
	Input       string
}

// DefaultState KGS to USD with nothing typed
func DefaultState() State {
	return State{
		Source:      converter.KGS,
		Destination: converter.USD,
	}
}

// Option configures a Widget
type Option func(*Widget)

// WithState starts the widget from state instead of DefaultState
func WithState(state State) Option {
	return func(w *Widget) {
		w.state = state
	}
}

// WithClock sets the clock used for the timestamp label
func WithClock(now func() time.Time) Option {
	return func(w *Widget) {
		w.now = now
	}
}

// Widget is safe for concurrent use, so a refresh continuation may call Refreshed
// from another goroutine.
type Widget struct {
	table Table
	now   func() time.Time

	lock      sync.Mutex
	state     State
	picker    *Slot
	output    string
	timestamp string
	closed    bool
}

// New constructs a Widget and performs the initial conversion.
func New(table Table, opts ...Option) (*Widget, error) {
	w := &Widget{
		table: table,
		state: DefaultState(),
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(w)
	}
	for _, code := range []converter.Currency{w.state.Source, w.state.Destination} {
		if _, err := table.Lookup(code); err != nil {
			return nil, fmt.Errorf("new widget: %w", err)
		}
	}
	w.timestamp = Timestamp(w.now())
	if err := w.convert(); err != nil {
		return nil, err
	}
	return w, nil
}

// State a copy of the current state
func (w *Widget) State() State {
	w.lock.Lock()
	defer w.lock.Unlock()
	return w.state
}

// View renders the current state
func (w *Widget) View() View {
	w.lock.Lock()
	defer w.lock.Unlock()
	return w.view()
}

// Input stores the typed amount text and reconverts
func (w *Widget) Input(text string) (View, error) {
	return w.update(func() error {
		w.state.Input = text
		return nil
	})
}

// Open opens the picker for slot, highlighting the slot's current currency
func (w *Widget) Open(slot Slot) (View, error) {
	return w.update(func() error {
		if slot != SlotSource && slot != SlotDestination {
			return fmt.Errorf("open picker: unknown slot %v", slot)
		}
		w.picker = &slot
		return nil
	})
}

// Select puts code into the slot the picker was opened for, closes the picker and reconverts
func (w *Widget) Select(code converter.Currency) (View, error) {
	return w.update(func() error {
		if w.picker == nil {
			return ErrPickerClosed
		}
		if _, err := w.table.Lookup(code); err != nil {
			return fmt.Errorf("select: %w", err)
		}
		if *w.picker == SlotSource {
			w.state.Source = code
		} else {
			w.state.Destination = code
		}
		w.picker = nil
		return nil
	})
}

// Dismiss closes the picker without changing the selection
func (w *Widget) Dismiss() (View, error) {
	return w.update(func() error {
		w.picker = nil
		return nil
	})
}

// Swap exchanges source and destination and carries the converted amount over as the new input
func (w *Widget) Swap() (View, error) {
	return w.update(func() error {
		w.state.Source, w.state.Destination = w.state.Destination, w.state.Source
		w.state.Input = w.output
		return nil
	})
}

// Refreshed re-renders after the rate table has been refreshed. A failed refresh keeps
// the previous rates, so the view is simply redrawn.
func (w *Widget) Refreshed(_ refresh.Result) (View, error) {
	return w.update(func() error { return nil })
}

// Close tears the widget down. Later calls return ErrClosed.
func (w *Widget) Close() {
	w.lock.Lock()
	defer w.lock.Unlock()
	w.closed = true
	w.picker = nil
}

// update applies change and reconverts. A failed change leaves the state as it was.
func (w *Widget) update(change func() error) (View, error) {
	w.lock.Lock()
	defer w.lock.Unlock()

	if w.closed {
		return View{}, ErrClosed
	}

	state, picker := w.state, w.picker
	if err := change(); err != nil {
		w.state, w.picker = state, picker
		return w.view(), err
	}
	if err := w.convert(); err != nil {
		w.state, w.picker = state, picker
		return w.view(), err
	}
	return w.view(), nil
}

func (w *Widget) convert() error {
	amount := display.ParseAmount(w.state.Input)
	result, err := exchange.Convert(amount, w.state.Source, w.state.Destination, w.table)
	if err != nil {
		return err
	}
	w.output = display.Format(result)
	return nil
}

func (w *Widget) view() View {
	entries := w.table.Entries()
	v := View{
		Source:      Selection{Code: w.state.Source, Flag: Flag(w.state.Source)},
		Destination: Selection{Code: w.state.Destination, Flag: Flag(w.state.Destination)},
		Input:       w.state.Input,
		Output:      w.output,
		Reference:   Reference(entries),
		Timestamp:   w.timestamp,
	}
	if w.picker != nil {
		selected := w.state.Source
		if *w.picker == SlotDestination {
			selected = w.state.Destination
		}
		v.Picker = &Picker{
			Slot:    *w.picker,
			Choices: Choices(entries, selected),
		}
	}
	return v
}
