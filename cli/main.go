package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/fatih/color"
	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"golang.org/x/term"

	converter "go-currency-converter"
	"go-currency-converter/config"
	"go-currency-converter/ratesapi"
	"go-currency-converter/refresh"
	"go-currency-converter/widget"
)

const usage = `Commands:
  amount <text>   type an amount in the source currency
  from | to       open the currency picker for that side
  pick <code>     choose a currency from the open picker
  esc             close the picker
  swap            swap source and destination
  rates           show the reference rates
  quit`

func main() {
	logger := log.NewLogfmtLogger(log.NewSyncWriter(os.Stderr))
	logger = level.NewFilter(logger, level.AllowWarn())

	cfg, err := config.Load()
	if err != nil {
		level.Error(logger).Log("msg", "loading config", "err", err)
		os.Exit(1)
	}

	if !term.IsTerminal(int(os.Stdout.Fd())) {
		color.NoColor = true
	}

	table := converter.NewDefaultTable()
	w, err := widget.New(table)
	if err != nil {
		level.Error(logger).Log("msg", "widget setup failed", "err", err)
		os.Exit(1)
	}
	defer w.Close()

	out := &printer{w: os.Stdout}
	out.view(w.View())
	fmt.Fprintln(out.w, usage)

	if cfg.RefreshOnStart {
		ratesService := ratesapi.NewLoggingService(log.With(logger, "component", "rates_api"), ratesapi.NewService(cfg.RatesAPIURL, cfg.HTTPTimeout))
		results := refresh.Start(context.Background(), ratesService, table)
		go func() {
			result := <-results
			if !result.OK() {
				level.Warn(logger).Log("msg", "using default rates", "err", result.Err)
				return
			}
			v, err := w.Refreshed(result)
			if err != nil {
				return
			}
			out.notice("rates updated")
			out.view(v)
		}()
	}

	if err := run(os.Stdin, w, out); err != nil {
		level.Error(logger).Log("msg", "reading input", "err", err)
		os.Exit(1)
	}
}

// run reads commands until quit or end of input
func run(in io.Reader, w *widget.Widget, out *printer) error {
	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		cmd, arg, _ := strings.Cut(strings.TrimSpace(scanner.Text()), " ")
		var (
			v   widget.View
			err error
		)
		switch strings.ToLower(cmd) {
		case "":
			continue
		case "quit", "exit":
			return nil
		case "amount":
			v, err = w.Input(arg)
		case "from":
			v, err = w.Open(widget.SlotSource)
		case "to":
			v, err = w.Open(widget.SlotDestination)
		case "pick":
			v, err = w.Select(converter.Currency(strings.ToUpper(strings.TrimSpace(arg))))
		case "esc":
			v, err = w.Dismiss()
		case "swap":
			v, err = w.Swap()
		case "rates":
			out.reference(w.View())
			continue
		default:
			err = fmt.Errorf("unknown command %q", cmd)
		}
		if errors.Is(err, widget.ErrClosed) {
			return nil
		}
		if err != nil {
			out.problem(err)
			continue
		}
		out.view(v)
	}
	return scanner.Err()
}

// printer writes widget views; safe for use from the refresh goroutine
type printer struct {
	lock sync.Mutex
	w    io.Writer
}

var (
	codeColor     = color.New(color.FgCyan, color.Bold)
	amountColor   = color.New(color.FgGreen, color.Bold)
	selectedColor = color.New(color.FgYellow, color.Bold)
	problemColor  = color.New(color.FgRed)
	noticeColor   = color.New(color.Faint)
)

func (p *printer) view(v widget.View) {
	p.lock.Lock()
	defer p.lock.Unlock()

	input := v.Input
	if input == "" {
		input = "0"
	}
	fmt.Fprintf(p.w, "%s %s  ->  %s %s\n",
		input, codeColor.Sprint(v.Source.Code),
		amountColor.Sprint(v.Output), codeColor.Sprint(v.Destination.Code))

	if v.Picker == nil {
		return
	}
	fmt.Fprintf(p.w, "choose %s currency:\n", v.Picker.Slot)
	for _, c := range v.Picker.Choices {
		line := fmt.Sprintf("  %s  %s", c.Code, c.Name)
		if c.Selected {
			line = selectedColor.Sprint("* " + strings.TrimPrefix(line, "  "))
		}
		fmt.Fprintln(p.w, line)
	}
}

func (p *printer) reference(v widget.View) {
	p.lock.Lock()
	defer p.lock.Unlock()

	fmt.Fprintf(p.w, "Курсы валют %s\n", v.Timestamp)
	fmt.Fprintf(p.w, "  %-4s %10s %10s\n", "", "покупка", "продажа")
	for _, row := range v.Reference {
		fmt.Fprintf(p.w, "  %-4s %10s %10s  %s\n", codeColor.Sprint(row.Code), row.Buy, row.Sell, row.Name)
	}
}

func (p *printer) problem(err error) {
	p.lock.Lock()
	defer p.lock.Unlock()
	problemColor.Fprintln(p.w, err)
}

func (p *printer) notice(msg string) {
	p.lock.Lock()
	defer p.lock.Unlock()
	noticeColor.Fprintln(p.w, msg)
}
