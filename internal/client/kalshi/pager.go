package kalshi

import (
	"context"
	"fmt"

	"github.com/MobeenIkhtiar/kalshi-front/internal/client/api"
	"github.com/MobeenIkhtiar/kalshi-front/internal/common"
)

// Pager walks the market list page by page. The backend only hands out
// forward cursors, so "previous" is reconstructed client-side: the pager
// remembers the cursor each page was fetched with and going back pops that
// stack instead of asking the server.
type Pager struct {
	api    api.Client
	limit  int
	filter api.MarketsParams

	// used[i] holds the cursor page i+1 was fetched with; used[0] is always
	// the empty cursor of the first page.
	used []string

	// next is the cursor for the page after the current one, empty on the
	// last page.
	next string
}

// NewPager builds a pager fetching limit markets per page. The Cursor and
// Limit fields of filter are ignored; the pager owns them.
func NewPager(client api.Client, limit int, filter api.MarketsParams) *Pager {
	return &Pager{api: client, limit: limit, filter: filter}
}

// Page returns the 1-based index of the current page, 0 before the first
// fetch.
func (p *Pager) Page() int { return len(p.used) }

// HasNext reports whether a further page is known to exist.
func (p *Pager) HasNext() bool { return p.Page() == 0 || p.next != "" }

// HasPrev reports whether Prev can go back.
func (p *Pager) HasPrev() bool { return p.Page() > 1 }

func (p *Pager) fetch(ctx context.Context, cursor string) (*api.MarketPage, error) {
	params := p.filter
	params.Limit = p.limit
	params.Cursor = cursor
	page, err := p.api.Markets(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("fetch markets: %w", err)
	}
	return page, nil
}

// Next fetches the first page on the initial call and the following page on
// later ones. A failed fetch leaves the pager position unchanged.
func (p *Pager) Next(ctx context.Context) (*api.MarketPage, error) {
	cursor := ""
	if p.Page() > 0 {
		if p.next == "" {
			return nil, common.ErrNoNextPage
		}
		cursor = p.next
	}

	page, err := p.fetch(ctx, cursor)
	if err != nil {
		return nil, err
	}

	p.used = append(p.used, cursor)
	p.next = page.Cursor
	return page, nil
}

// Prev refetches the previous page using the cursor it was originally
// fetched with; the server has no backward cursor.
func (p *Pager) Prev(ctx context.Context) (*api.MarketPage, error) {
	if !p.HasPrev() {
		return nil, common.ErrNoPreviousPage
	}

	cursor := p.used[p.Page()-2]
	page, err := p.fetch(ctx, cursor)
	if err != nil {
		return nil, err
	}

	p.used = p.used[:p.Page()-1]
	p.next = page.Cursor
	return page, nil
}

// Reset forgets all pagination state; the next call to Next starts over from
// the first page.
func (p *Pager) Reset() {
	p.used = nil
	p.next = ""
}
