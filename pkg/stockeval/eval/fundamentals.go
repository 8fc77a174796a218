package eval

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog"
)

const quoteSummaryURL = "https://query2.finance.yahoo.com/v10/finance/quoteSummary/"

// quoteSummaryModules are the statement modules needed to derive the eight
// metrics.
const quoteSummaryModules = "summaryProfile,summaryDetail,financialData,incomeStatementHistory,balanceSheetHistory,cashflowStatementHistory"

// Fundamentals holds the statement-level inputs the metric derivations need.
// Zero values stand in for anything the source did not report.
type Fundamentals struct {
	Country string

	DividendYield float64 // decimal fraction, e.g. 0.03
	TrailingPE    float64
	ForwardPE     float64
	GrossMargins  float64 // decimal fraction

	OperatingIncome   float64
	InterestExpense   float64
	NetIncome         float64
	TotalRevenue      float64
	OperatingCashflow float64

	TotalAssets        float64
	CurrentLiabilities float64
	GrossProfit        float64
}

// FundamentalsService fetches statement fundamentals for a symbol.
type FundamentalsService interface {
	Fundamentals(ctx context.Context, symbol string) (Fundamentals, error)
}

// fmtValue mirrors Yahoo's {raw, fmt} value objects.
type fmtValue struct {
	Raw *float64 `json:"raw"`
	Fmt string   `json:"fmt"`
}

func (v fmtValue) value() float64 {
	if v.Raw == nil {
		return 0
	}
	return *v.Raw
}

type quoteSummaryResponse struct {
	QuoteSummary struct {
		Result []quoteSummaryResult `json:"result"`
		Error  *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"quoteSummary"`
}

type quoteSummaryResult struct {
	SummaryProfile *struct {
		Country string `json:"country"`
	} `json:"summaryProfile"`
	SummaryDetail *struct {
		DividendYield fmtValue `json:"dividendYield"`
		TrailingPE    fmtValue `json:"trailingPE"`
		ForwardPE     fmtValue `json:"forwardPE"`
	} `json:"summaryDetail"`
	FinancialData *struct {
		GrossMargins      fmtValue `json:"grossMargins"`
		GrossProfits      fmtValue `json:"grossProfits"`
		OperatingCashflow fmtValue `json:"operatingCashflow"`
	} `json:"financialData"`
	IncomeStatementHistory *struct {
		Statements []struct {
			OperatingIncome fmtValue `json:"operatingIncome"`
			InterestExpense fmtValue `json:"interestExpense"`
			NetIncome       fmtValue `json:"netIncome"`
			TotalRevenue    fmtValue `json:"totalRevenue"`
		} `json:"incomeStatementHistory"`
	} `json:"incomeStatementHistory"`
	BalanceSheetHistory *struct {
		Statements []struct {
			TotalAssets      fmtValue `json:"totalAssets"`
			TotalCurrentLiab fmtValue `json:"totalCurrentLiabilities"`
		} `json:"balanceSheetStatements"`
	} `json:"balanceSheetHistory"`
	CashflowStatementHistory *struct {
		Statements []struct {
			TotalCashFromOperatingActivities fmtValue `json:"totalCashFromOperatingActivities"`
		} `json:"cashflowStatements"`
	} `json:"cashflowStatementHistory"`
}

// YahooFundamentals implements FundamentalsService against the public
// quoteSummary endpoint.
type YahooFundamentals struct {
	client  *http.Client
	baseURL string
	log     zerolog.Logger
}

// NewYahooFundamentals returns a fundamentals service with a per-call
// timeout. baseURL overrides the endpoint in tests; empty means production.
func NewYahooFundamentals(timeout time.Duration, baseURL string, log zerolog.Logger) *YahooFundamentals {
	if baseURL == "" {
		baseURL = quoteSummaryURL
	}
	return &YahooFundamentals{
		client:  &http.Client{Timeout: timeout},
		baseURL: baseURL,
		log:     log,
	}
}

func (s *YahooFundamentals) Fundamentals(ctx context.Context, symbol string) (Fundamentals, error) {
	u := s.baseURL + url.PathEscape(symbol) + "?modules=" + url.QueryEscape(quoteSummaryModules)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return Fundamentals{}, err
	}
	req.Header.Set("User-Agent", "stockeval/1.0")

	resp, err := s.client.Do(req)
	if err != nil {
		return Fundamentals{}, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return Fundamentals{}, fmt.Errorf("quoteSummary %s: status %s", symbol, resp.Status)
	}

	var body quoteSummaryResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return Fundamentals{}, fmt.Errorf("quoteSummary %s: %w", symbol, err)
	}
	if e := body.QuoteSummary.Error; e != nil {
		return Fundamentals{}, fmt.Errorf("quoteSummary %s: %s", symbol, e.Description)
	}
	if len(body.QuoteSummary.Result) == 0 {
		return Fundamentals{}, fmt.Errorf("quoteSummary %s: empty result", symbol)
	}

	f := flatten(body.QuoteSummary.Result[0])
	s.log.Debug().Str("symbol", symbol).Msg("fundamentals fetched")
	return f, nil
}

// flatten picks the most recent statement from each history and copies the
// scalar fields. Missing modules leave zeros; the lenient-parsing policy
// turns those into zero metrics downstream.
func flatten(r quoteSummaryResult) Fundamentals {
	var f Fundamentals
	if p := r.SummaryProfile; p != nil {
		f.Country = p.Country
	}
	if d := r.SummaryDetail; d != nil {
		f.DividendYield = d.DividendYield.value()
		f.TrailingPE = d.TrailingPE.value()
		f.ForwardPE = d.ForwardPE.value()
	}
	if d := r.FinancialData; d != nil {
		f.GrossMargins = d.GrossMargins.value()
		f.GrossProfit = d.GrossProfits.value()
		f.OperatingCashflow = d.OperatingCashflow.value()
	}
	if h := r.IncomeStatementHistory; h != nil && len(h.Statements) > 0 {
		st := h.Statements[0]
		f.OperatingIncome = st.OperatingIncome.value()
		f.InterestExpense = math.Abs(st.InterestExpense.value())
		f.NetIncome = st.NetIncome.value()
		f.TotalRevenue = st.TotalRevenue.value()
	}
	if h := r.BalanceSheetHistory; h != nil && len(h.Statements) > 0 {
		st := h.Statements[0]
		f.TotalAssets = st.TotalAssets.value()
		f.CurrentLiabilities = st.TotalCurrentLiab.value()
	}
	if h := r.CashflowStatementHistory; h != nil && len(h.Statements) > 0 {
		if cfo := h.Statements[0].TotalCashFromOperatingActivities.value(); cfo != 0 {
			f.OperatingCashflow = cfo
		}
	}
	return f
}
