package exchange

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/go-kit/log"
	"github.com/stretchr/testify/assert"

	converter "go-currency-converter"
)

func TestService_Convert(t *testing.T) {
	service := NewService(converter.NewDefaultTable())

	type args struct {
		amount string
		from   converter.Currency
		to     converter.Currency
	}
	tests := []struct {
		name    string
		args    args
		want    Exchanged
		wantErr bool
	}{
		{
			"kgs -> usd",
			args{"100", converter.KGS, converter.USD},
			Exchanged{Rate: d("0.0114025085518814"), Amount: d("1.1402508551881414"), Display: "1.14"},
			false,
		},
		{
			"usd -> kgs",
			args{"10", converter.USD, converter.KGS},
			Exchanged{Rate: d("87.2"), Amount: d("872"), Display: "872.0"},
			false,
		},
		{
			"usd -> eur",
			args{"10", converter.USD, converter.EUR},
			Exchanged{Rate: d("0.8523949169110459"), Amount: d("8.5239491691104594"), Display: "8.52"},
			false,
		},
		{
			"zero",
			args{"0", converter.EUR, converter.GBP},
			Exchanged{Rate: d("0.9085201793721973"), Amount: d("0"), Display: "0"},
			false,
		},
		{
			"usd -> xyz",
			args{"10", converter.USD, "XYZ"},
			Exchanged{},
			true,
		},
		{
			"abc -> usd",
			args{"10", "ABC", converter.USD},
			Exchanged{},
			true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := service.Convert(context.Background(), d(tt.args.amount), tt.args.from, tt.args.to)
			if (err != nil) != tt.wantErr {
				t.Errorf("Convert() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if tt.wantErr {
				assert.True(t, errors.Is(err, converter.ErrUnknownCurrency))
				return
			}
			assert.True(t, tt.want.Rate.Equal(got.Rate), "rate got %v, want %v", got.Rate, tt.want.Rate)
			assert.True(t, tt.want.Amount.Equal(got.Amount), "amount got %v, want %v", got.Amount, tt.want.Amount)
			assert.Equal(t, tt.want.Display, got.Display)
		})
	}
}

func TestLoggingService_Convert(t *testing.T) {
	var buf bytes.Buffer
	service := NewLoggingService(log.NewLogfmtLogger(&buf), NewService(converter.NewDefaultTable()))

	got, err := service.Convert(context.Background(), d("10"), converter.USD, converter.KGS)

	assert.NoError(t, err)
	assert.Equal(t, "872.0", got.Display)
	assert.Contains(t, buf.String(), "method=convert")
	assert.Contains(t, buf.String(), "from=USD")
	assert.Contains(t, buf.String(), "converted_amount=872")
}
