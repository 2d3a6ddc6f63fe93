package strategy

import (
	"fmt"
	"strings"

	"midas/internal/domain/portfolio"
)

const analysisSystemPrompt = `Ты — профессиональный инвестиционный консультант по российскому фондовому рынку. ` +
	`Анализируй портфель и предлагай конкретные сделки для максимизации доходности при разумном риске. ` +
	`Используй только российские инструменты.`

// buildAnalysisPrompt renders the consolidated portfolio and market
// context into the user prompt, ending with the JSON shape the model is
// asked to answer in.
func buildAnalysisPrompt(p *portfolio.Consolidated, marketContext string) string {
	var b strings.Builder

	b.WriteString("ДАННЫЕ ПОРТФЕЛЯ:\n")
	fmt.Fprintf(&b, "- Общая стоимость: %s руб.\n", p.TotalValue.StringFixed(2))
	fmt.Fprintf(&b, "- Доступные средства: %s руб.\n", p.TotalCash.StringFixed(2))
	fmt.Fprintf(&b, "- Текущая доходность: %s%%\n", p.TotalYieldPct.StringFixed(1))

	b.WriteString("\nТЕКУЩИЕ ПОЗИЦИИ:\n")
	for _, acc := range p.Accounts {
		for _, pos := range acc.Positions {
			fmt.Fprintf(&b, "- %s (%s): %d шт. × %s руб. = %s руб. (доходность: %s%%)\n",
				pos.Name, pos.Ticker, pos.Quantity,
				pos.CurrentPrice.StringFixed(2),
				pos.MarketValue.StringFixed(2),
				pos.YieldPct.StringFixed(1))
		}
	}

	b.WriteString("\nРЫНОЧНЫЙ КОНТЕКСТ:\n")
	if strings.TrimSpace(marketContext) == "" {
		b.WriteString("Российский рынок акций и облигаций\n")
	} else {
		b.WriteString(marketContext)
		b.WriteString("\n")
	}

	b.WriteString(`
СГЕНЕРИРУЙ ОПТИМАЛЬНУЮ ТОРГОВУЮ СТРАТЕГИЮ.

ФОРМАТ ОТВЕТА (JSON):
{
    "strategy_name": "название стратегии",
    "target_return": 15.5,
    "risk_level": "low/medium/high",
    "time_horizon": "1-3 months",
    "actions": [
        {
            "action": "BUY/SELL/HOLD",
            "ticker": "SBER",
            "quantity": 10,
            "reason": "обоснование действия",
            "expected_impact": 2.5,
            "urgency": "high/medium/low"
        }
    ],
    "target_allocation": {
        "stocks": 65.0,
        "bonds": 25.0,
        "cash": 10.0
    }
}
`)
	return b.String()
}
