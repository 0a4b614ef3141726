package cli

import (
	"context"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/MobeenIkhtiar/kalshi-front/internal/client/api"
)

// Markets starts browsing from the first page.
func (a *App) Markets(ctx context.Context) error {
	return a.guarded(ctx, "markets", func(ctx context.Context) error {
		a.pager.Reset()
		return a.showNextPage(ctx)
	})
}

// NextPage advances to the next page of markets.
func (a *App) NextPage(ctx context.Context) error {
	return a.guarded(ctx, "markets", func(ctx context.Context) error {
		if !a.pager.HasNext() {
			printlnFn("Already on the last page.")
			return nil
		}
		return a.showNextPage(ctx)
	})
}

// PrevPage goes back to the previous page of markets.
func (a *App) PrevPage(ctx context.Context) error {
	return a.guarded(ctx, "markets", func(ctx context.Context) error {
		if !a.pager.HasPrev() {
			printlnFn("Already on the first page.")
			return nil
		}
		page, err := a.pager.Prev(ctx)
		if err != nil {
			printlnFn(err.Error())
			return nil
		}
		a.renderPage(page)
		return nil
	})
}

func (a *App) showNextPage(ctx context.Context) error {
	page, err := a.pager.Next(ctx)
	if err != nil {
		printlnFn(err.Error())
		return nil
	}
	a.renderPage(page)
	return nil
}

func (a *App) renderPage(page *api.MarketPage) {
	if len(page.Markets) == 0 {
		printlnFn("No markets found.")
		return
	}

	var b strings.Builder
	w := tabwriter.NewWriter(&b, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "QUESTION\tCATEGORY\tPRICE\tROI\tVOLUME")
	for _, m := range page.Markets {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", m.Question, m.Category, m.Price, m.ROI, m.Volume)
	}
	w.Flush()
	printlnFn(b.String())

	printlnFn(fmt.Sprintf("Page %d. Commands: (n)ext, (p)rev.", a.pager.Page()))
}
