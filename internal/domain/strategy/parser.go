package strategy

import (
	"encoding/json"
	"regexp"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"midas/internal/domain/instrument"
	"midas/internal/domain/trade"
)

const defaultRationale = "AI optimization"

// Parser turns free-form model output into a Strategy. Two passes are
// tried in order: a balanced-brace JSON block, then a tolerant
// line-oriented scan for BUY/SELL recommendations. Parse reports false
// when neither pass yields a usable action.
type Parser struct {
	ref *instrument.Reference
}

// NewParser creates a parser over the instrument reference. Tickers not
// present in the reference are discarded during parsing.
func NewParser(ref *instrument.Reference) *Parser {
	return &Parser{ref: ref}
}

// Parse extracts a strategy from the response text.
func (p *Parser) Parse(response string) (*Strategy, bool) {
	if s, ok := p.parseJSON(response); ok {
		return s, true
	}
	return p.parseLines(response)
}

// aiStrategy is the wire shape the model is asked to answer in. Numeric
// fields are flexNumber because models routinely quote numbers or wrap
// them in prose.
type aiStrategy struct {
	StrategyName     string                `json:"strategy_name"`
	TargetReturn     *flexNumber           `json:"target_return"`
	RiskLevel        string                `json:"risk_level"`
	TimeHorizon      string                `json:"time_horizon"`
	Actions          []aiAction            `json:"actions"`
	TargetAllocation map[string]flexNumber `json:"target_allocation"`
}

type aiAction struct {
	Action         string     `json:"action"`
	Ticker         string     `json:"ticker"`
	Quantity       flexNumber `json:"quantity"`
	Reason         string     `json:"reason"`
	ExpectedImpact flexNumber `json:"expected_impact"`
	Urgency        string     `json:"urgency"`
}

func (p *Parser) parseJSON(response string) (*Strategy, bool) {
	block, ok := balancedJSONBlock(response)
	if !ok {
		return nil, false
	}

	var wire aiStrategy
	if err := json.Unmarshal([]byte(block), &wire); err != nil {
		return nil, false
	}
	// Required fields; a block missing any of them is not a strategy.
	if wire.StrategyName == "" || wire.TargetReturn == nil || wire.RiskLevel == "" || wire.Actions == nil {
		return nil, false
	}
	targetReturn := decimal.NewFromFloat(float64(*wire.TargetReturn))
	if !targetReturnInBand(targetReturn) {
		return nil, false
	}

	var actions []trade.Action
	for _, a := range wire.Actions {
		action, ok := p.convertAction(a)
		if !ok {
			continue
		}
		actions = append(actions, action)
	}
	if len(actions) == 0 {
		return nil, false
	}

	allocation := make(map[string]decimal.Decimal, len(wire.TargetAllocation))
	for class, pct := range wire.TargetAllocation {
		allocation[class] = decimal.NewFromFloat(float64(pct))
	}

	return &Strategy{
		Name:             wire.StrategyName,
		TargetReturnPct:  targetReturn,
		RiskLevel:        normalizeRisk(wire.RiskLevel),
		TimeHorizon:      wire.TimeHorizon,
		Actions:          actions,
		TargetAllocation: allocation,
		Source:           trade.SourceAI,
	}, true
}

func (p *Parser) convertAction(a aiAction) (trade.Action, bool) {
	side := trade.Side(strings.ToUpper(strings.TrimSpace(a.Action)))
	if side != trade.SideBuy && side != trade.SideSell {
		// HOLD and anything else carry no executable trade.
		return trade.Action{}, false
	}
	ticker := strings.ToUpper(strings.TrimSpace(a.Ticker))
	if !p.ref.IsKnown(ticker) {
		return trade.Action{}, false
	}
	qty := int64(a.Quantity)
	if qty <= 0 {
		qty = 1
	}
	rationale := strings.TrimSpace(a.Reason)
	if rationale == "" {
		rationale = defaultRationale
	}
	return trade.Action{
		Side:             side,
		Ticker:           ticker,
		Quantity:         qty,
		Rationale:        rationale,
		ExpectedYieldPct: decimal.NewFromFloat(float64(a.ExpectedImpact)),
		Urgency:          normalizeUrgency(a.Urgency),
		Source:           trade.SourceAI,
	}, true
}

var yieldPattern = regexp.MustCompile(`(\d+(?:[.,]\d+)?)\s*%`)

// parseLines scans the response for lines shaped like
// "BUY SBER 10 rationale 12.5%". Case and spacing are tolerated; only
// known tickers are accepted.
func (p *Parser) parseLines(response string) (*Strategy, bool) {
	var actions []trade.Action

	for _, line := range strings.Split(response, "\n") {
		action, ok := p.parseLine(line)
		if !ok {
			continue
		}
		actions = append(actions, action)
	}
	if len(actions) == 0 {
		return nil, false
	}

	return &Strategy{
		Name:            "AI Optimized Strategy",
		TargetReturnPct: decimal.NewFromInt(12),
		RiskLevel:       RiskMedium,
		TimeHorizon:     "1-3 months",
		Actions:         actions,
		TargetAllocation: map[string]decimal.Decimal{
			"stocks": decimal.NewFromInt(70),
			"bonds":  decimal.NewFromInt(20),
			"cash":   decimal.NewFromInt(10),
		},
		Source: trade.SourceAI,
	}, true
}

func (p *Parser) parseLine(line string) (trade.Action, bool) {
	fields := strings.Fields(line)

	sideIdx := -1
	var side trade.Side
	for i, f := range fields {
		switch strings.ToUpper(strings.Trim(f, ".,:;!-*")) {
		case string(trade.SideBuy):
			side, sideIdx = trade.SideBuy, i
		case string(trade.SideSell):
			side, sideIdx = trade.SideSell, i
		}
		if sideIdx >= 0 {
			break
		}
	}
	if sideIdx < 0 {
		return trade.Action{}, false
	}

	tickerIdx := -1
	var ticker string
	for i := sideIdx + 1; i < len(fields); i++ {
		candidate := strings.ToUpper(strings.Trim(fields[i], ".,:;!()-*"))
		if p.ref.IsKnown(candidate) {
			ticker, tickerIdx = candidate, i
			break
		}
	}
	if tickerIdx < 0 {
		return trade.Action{}, false
	}

	qty := int64(1)
	qtyIdx := -1
	for i := tickerIdx + 1; i < len(fields); i++ {
		token := strings.Trim(fields[i], ".,:;()")
		if strings.HasSuffix(token, "%") {
			continue
		}
		if n, err := strconv.ParseInt(token, 10, 64); err == nil && n > 0 {
			qty, qtyIdx = n, i
			break
		}
	}

	rationale := defaultRationale
	rest := fields[tickerIdx+1:]
	if qtyIdx >= 0 {
		rest = fields[qtyIdx+1:]
	}
	if len(rest) > 0 {
		rationale = strings.TrimSpace(yieldPattern.ReplaceAllString(strings.Join(rest, " "), ""))
		if rationale == "" {
			rationale = defaultRationale
		}
	}

	expected := decimal.Zero
	if m := yieldPattern.FindStringSubmatch(line); m != nil {
		if v, err := decimal.NewFromString(strings.ReplaceAll(m[1], ",", ".")); err == nil {
			expected = v
		}
	}

	return trade.Action{
		Side:             side,
		Ticker:           ticker,
		Quantity:         qty,
		Rationale:        rationale,
		ExpectedYieldPct: expected,
		Urgency:          trade.UrgencyMedium,
		Source:           trade.SourceAI,
	}, true
}

// balancedJSONBlock returns the first balanced {...} block in the text,
// tracking string literals so braces inside values do not break the
// depth count.
func balancedJSONBlock(text string) (string, bool) {
	start := strings.IndexByte(text, '{')
	if start < 0 {
		return "", false
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(text); i++ {
		c := text[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return text[start : i+1], true
			}
		}
	}
	return "", false
}

func normalizeRisk(s string) RiskLevel {
	r := RiskLevel(strings.ToLower(strings.TrimSpace(s)))
	if !r.Valid() {
		return RiskMedium
	}
	return r
}

func normalizeUrgency(s string) trade.Urgency {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "high":
		return trade.UrgencyHigh
	case "low":
		return trade.UrgencyLow
	default:
		return trade.UrgencyMedium
	}
}

// flexNumber decodes a JSON number, a quoted number, or a string with a
// number embedded in prose ("рост на 2.5%").
type flexNumber float64

var numberPattern = regexp.MustCompile(`-?\d+(?:[.,]\d+)?`)

func (n *flexNumber) UnmarshalJSON(data []byte) error {
	var f float64
	if err := json.Unmarshal(data, &f); err == nil {
		*n = flexNumber(f)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		if m := numberPattern.FindString(s); m != "" {
			if f, err := strconv.ParseFloat(strings.ReplaceAll(m, ",", "."), 64); err == nil {
				*n = flexNumber(f)
				return nil
			}
		}
	}
	*n = 0
	return nil
}
