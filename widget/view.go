package widget

import (
	"fmt"
	"strings"
	"time"

	converter "go-currency-converter"
	"go-currency-converter/display"
)

// timestampLayout ru-RU "на 15:04 02.01.2006"
const timestampLayout = "на 15:04 02.01.2006"

// Timestamp renders t the way the rate table header shows it
func Timestamp(t time.Time) string {
	return t.Format(timestampLayout)
}

// Slot which side of the conversion the picker edits
type Slot int

const (
	SlotSource Slot = iota
	SlotDestination
)

func (s Slot) String() string {
	switch s {
	case SlotSource:
		return "source"
	case SlotDestination:
		return "destination"
	default:
		return fmt.Sprintf("slot(%d)", int(s))
	}
}

// ParseSlot accepts "source"/"from" and "destination"/"to"
func ParseSlot(text string) (Slot, error) {
	switch strings.ToLower(strings.TrimSpace(text)) {
	case "source", "from":
		return SlotSource, nil
	case "destination", "to":
		return SlotDestination, nil
	default:
		return 0, fmt.Errorf("unknown slot: %q", text)
	}
}

func (s Slot) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *Slot) UnmarshalText(text []byte) error {
	parsed, err := ParseSlot(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// View everything a presentation surface needs to draw the widget
type View struct {
	Source      Selection      `json:"source"`
	Destination Selection      `json:"destination"`
	Input       string         `json:"input"`
	Output      string         `json:"output"`
	Picker      *Picker        `json:"picker,omitempty"`
	Reference   []ReferenceRow `json:"reference"`
	Timestamp   string         `json:"timestamp"`
}

// Selection a currency chosen for one side
type Selection struct {
	Code converter.Currency `json:"code"`
	Flag string             `json:"flag"`
}

// Picker the open currency list
type Picker struct {
	Slot    Slot     `json:"slot"`
	Choices []Choice `json:"choices"`
}

// Choice one line of the picker
type Choice struct {
	Code     converter.Currency `json:"code"`
	Name     string             `json:"name"`
	Flag     string             `json:"flag"`
	Selected bool               `json:"selected"`
}

// ReferenceRow buy and sell rates of one reference currency
type ReferenceRow struct {
	Code converter.Currency `json:"code"`
	Name string             `json:"name"`
	Buy  string             `json:"buy"`
	Sell string             `json:"sell"`
}

// Flag css class of the flag shown next to a currency, e.g. flag-us for USD
func Flag(code converter.Currency) string {
	c := strings.ToLower(string(code))
	if len(c) > 2 {
		c = c[:2]
	}
	return "flag-" + c
}

// Choices the picker lines for every entry, marking selected
func Choices(entries []converter.Entry, selected converter.Currency) []Choice {
	choices := make([]Choice, 0, len(entries))
	for _, e := range entries {
		choices = append(choices, Choice{
			Code:     e.Code,
			Name:     e.Name,
			Flag:     Flag(e.Code),
			Selected: e.Code == selected,
		})
	}
	return choices
}

// Reference rows of the reference currencies found in entries
func Reference(entries []converter.Entry) []ReferenceRow {
	byCode := make(map[converter.Currency]converter.Entry, len(entries))
	for _, e := range entries {
		byCode[e.Code] = e
	}
	rows := make([]ReferenceRow, 0, len(converter.ReferenceCodes))
	for _, code := range converter.ReferenceCodes {
		e, ok := byCode[code]
		if !ok {
			continue
		}
		rows = append(rows, ReferenceRow{
			Code: e.Code,
			Name: e.Name,
			Buy:  display.FormatRate(e.Buy, e.Precision),
			Sell: display.FormatRate(e.Sell, e.Precision),
		})
	}
	return rows
}
