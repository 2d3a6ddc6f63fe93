package instrument

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"
)

// Kind classifies an instrument by asset class
type Kind string

const (
	KindStock    Kind = "stock"
	KindBond     Kind = "bond"
	KindETF      Kind = "etf"
	KindCurrency Kind = "currency"
)

// String returns string representation
func (k Kind) String() string {
	return string(k)
}

// RiskTier is a coarse risk bucket used by the heuristic strategy path
type RiskTier string

const (
	RiskLow    RiskTier = "low"
	RiskMedium RiskTier = "medium"
	RiskHigh   RiskTier = "high"
)

// DefaultSector is assigned to tickers outside the reference table
const DefaultSector = "Other"

// Instrument describes one entry of the static reference table
type Instrument struct {
	Ticker       string
	Name         string
	Kind         Kind
	Sector       string
	Risk         RiskTier
	TypicalPrice decimal.Decimal
}

// Reference is the static ticker lookup table. It is read-only after
// construction and safe for concurrent use.
type Reference struct {
	byTicker map[string]Instrument
}

// NewReference builds the built-in Russian market reference table.
func NewReference() *Reference {
	ref := &Reference{byTicker: make(map[string]Instrument, len(defaultInstruments))}
	for _, inst := range defaultInstruments {
		ref.byTicker[inst.Ticker] = inst
	}
	return ref
}

// Lookup returns the instrument for a ticker.
func (r *Reference) Lookup(ticker string) (Instrument, bool) {
	inst, ok := r.byTicker[normalize(ticker)]
	return inst, ok
}

// IsKnown reports whether the ticker is in the reference table.
func (r *Reference) IsKnown(ticker string) bool {
	_, ok := r.byTicker[normalize(ticker)]
	return ok
}

// SectorOf returns the sector for a ticker, DefaultSector if unknown.
func (r *Reference) SectorOf(ticker string) string {
	if inst, ok := r.byTicker[normalize(ticker)]; ok {
		return inst.Sector
	}
	return DefaultSector
}

// TypicalPriceOf returns the reference price used for cost estimation
// when no live price is available.
func (r *Reference) TypicalPriceOf(ticker string) (decimal.Decimal, bool) {
	inst, ok := r.byTicker[normalize(ticker)]
	if !ok {
		return decimal.Zero, false
	}
	return inst.TypicalPrice, true
}

// Tickers returns all known tickers sorted alphabetically.
func (r *Reference) Tickers() []string {
	out := make([]string, 0, len(r.byTicker))
	for ticker := range r.byTicker {
		out = append(out, ticker)
	}
	sort.Strings(out)
	return out
}

// BySector returns instruments of a sector sorted by ticker.
func (r *Reference) BySector(sector string) []Instrument {
	var out []Instrument
	for _, inst := range r.byTicker {
		if inst.Sector == sector {
			out = append(out, inst)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Ticker < out[j].Ticker })
	return out
}

// ByKind returns instruments of one asset class sorted by ticker.
func (r *Reference) ByKind(kind Kind) []Instrument {
	var out []Instrument
	for _, inst := range r.byTicker {
		if inst.Kind == kind {
			out = append(out, inst)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Ticker < out[j].Ticker })
	return out
}

func normalize(ticker string) string {
	return strings.ToUpper(strings.TrimSpace(ticker))
}

func price(v string) decimal.Decimal {
	return decimal.RequireFromString(v)
}

// defaultInstruments is the curated Moscow Exchange universe the advisor
// is allowed to recommend. Typical prices are coarse reference values for
// commission estimates, not live quotes.
var defaultInstruments = []Instrument{
	{Ticker: "SBER", Name: "Sberbank", Kind: KindStock, Sector: "Finance", Risk: RiskMedium, TypicalPrice: price("300")},
	{Ticker: "VTBR", Name: "VTB", Kind: KindStock, Sector: "Finance", Risk: RiskMedium, TypicalPrice: price("0.028")},
	{Ticker: "TCSG", Name: "TCS Group", Kind: KindStock, Sector: "Finance", Risk: RiskHigh, TypicalPrice: price("3500")},
	{Ticker: "MOEX", Name: "Moscow Exchange", Kind: KindStock, Sector: "Finance", Risk: RiskMedium, TypicalPrice: price("150")},
	{Ticker: "GAZP", Name: "Gazprom", Kind: KindStock, Sector: "Energy", Risk: RiskLow, TypicalPrice: price("160")},
	{Ticker: "LKOH", Name: "Lukoil", Kind: KindStock, Sector: "Energy", Risk: RiskLow, TypicalPrice: price("760")},
	{Ticker: "ROSN", Name: "Rosneft", Kind: KindStock, Sector: "Energy", Risk: RiskMedium, TypicalPrice: price("580")},
	{Ticker: "NVTK", Name: "Novatek", Kind: KindStock, Sector: "Energy", Risk: RiskMedium, TypicalPrice: price("1700")},
	{Ticker: "HYDR", Name: "RusHydro", Kind: KindStock, Sector: "Energy", Risk: RiskMedium, TypicalPrice: price("0.80")},
	{Ticker: "TRNFP", Name: "Transneft", Kind: KindStock, Sector: "Energy", Risk: RiskMedium, TypicalPrice: price("170000")},
	{Ticker: "GMKN", Name: "Norilsk Nickel", Kind: KindStock, Sector: "Metals", Risk: RiskHigh, TypicalPrice: price("16000")},
	{Ticker: "PLZL", Name: "Polyus", Kind: KindStock, Sector: "Metals", Risk: RiskHigh, TypicalPrice: price("11000")},
	{Ticker: "POLY", Name: "Polymetal", Kind: KindStock, Sector: "Metals", Risk: RiskHigh, TypicalPrice: price("1200")},
	{Ticker: "YNDX", Name: "Yandex", Kind: KindStock, Sector: "IT", Risk: RiskHigh, TypicalPrice: price("3500")},
	{Ticker: "OZON", Name: "Ozon", Kind: KindStock, Sector: "IT", Risk: RiskHigh, TypicalPrice: price("2300")},
	{Ticker: "MTSS", Name: "MTS", Kind: KindStock, Sector: "Telecom", Risk: RiskMedium, TypicalPrice: price("270")},
	{Ticker: "RTKM", Name: "Rostelecom", Kind: KindStock, Sector: "Telecom", Risk: RiskMedium, TypicalPrice: price("70")},
	{Ticker: "MGNT", Name: "Magnit", Kind: KindStock, Sector: "Retail", Risk: RiskMedium, TypicalPrice: price("5500")},
	{Ticker: "AFKS", Name: "AFK Sistema", Kind: KindStock, Sector: "Holding", Risk: RiskHigh, TypicalPrice: price("0.15")},
	{Ticker: "PHOR", Name: "PhosAgro", Kind: KindStock, Sector: "Chemicals", Risk: RiskMedium, TypicalPrice: price("5000")},
	{Ticker: "SU26230", Name: "OFZ-26230", Kind: KindBond, Sector: "Government", Risk: RiskLow, TypicalPrice: price("1000")},
	{Ticker: "SU26238", Name: "OFZ-26238", Kind: KindBond, Sector: "Government", Risk: RiskLow, TypicalPrice: price("1000")},
	{Ticker: "SU26242", Name: "OFZ-26242", Kind: KindBond, Sector: "Government", Risk: RiskLow, TypicalPrice: price("1000")},
}
