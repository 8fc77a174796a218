package eval

import (
	"context"
	"fmt"
	"time"

	yfgo "github.com/komsit37/yf-go"
)

// Quote is the live price portion of an evaluation.
type Quote struct {
	// Price is the formatted regular market price.
	Price string
	// Name is the instrument's short (preferred) or long name.
	Name string
}

// QuoteService fetches the live quote for a symbol.
type QuoteService interface {
	Quote(ctx context.Context, symbol string) (Quote, error)
}

// YFQuoteService implements QuoteService using yf-go.
type YFQuoteService struct {
	client  *yfgo.Client
	timeout time.Duration
}

// NewYFQuoteService returns a quote service with a per-call timeout.
func NewYFQuoteService(timeout time.Duration) *YFQuoteService {
	return &YFQuoteService{client: yfgo.NewClient(), timeout: timeout}
}

func (s *YFQuoteService) Quote(ctx context.Context, symbol string) (Quote, error) {
	if symbol == "" {
		return Quote{}, nil
	}
	cctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	res, err := s.client.QuoteSummaryTyped(cctx, symbol, []yfgo.QuoteSummaryModule{yfgo.ModulePrice})
	if err != nil {
		return Quote{}, err
	}
	if res.Price == nil {
		return Quote{}, fmt.Errorf("no price for %s", symbol)
	}

	var q Quote
	p := res.Price.RegularMarketPrice
	if p.Raw != nil {
		q.Price = fmt.Sprintf("$%.2f", *p.Raw)
	} else if p.Fmt != "" {
		q.Price = p.Fmt
	}
	if res.Price.ShortName != "" {
		q.Name = res.Price.ShortName
	} else if res.Price.LongName != "" {
		q.Name = res.Price.LongName
	}
	return q, nil
}
