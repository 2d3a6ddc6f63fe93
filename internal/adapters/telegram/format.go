package telegram

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"

	"midas/internal/adapters/ai"
	"midas/internal/domain/portfolio"
	"midas/internal/domain/strategy"
	"midas/internal/domain/tariff"
	"midas/internal/domain/trade"
	"midas/internal/services/advisor"
)

// rub renders a decimal as a grouped ruble amount.
func rub(v decimal.Decimal) string {
	return humanize.CommafWithDigits(v.InexactFloat64(), 2) + " ₽"
}

func pct(v decimal.Decimal) string {
	return v.StringFixed(2) + "%"
}

// RenderPortfolio formats the consolidated portfolio for chat.
func RenderPortfolio(p *portfolio.Consolidated, failedAccounts []string) string {
	var b strings.Builder

	b.WriteString("📊 *Консолидированный портфель*\n\n")
	fmt.Fprintf(&b, "💼 Общая стоимость: *%s*\n", rub(p.TotalValue))
	fmt.Fprintf(&b, "💰 Вложено: %s\n", rub(p.TotalInvested))
	fmt.Fprintf(&b, "💳 Свободные средства: %s\n", rub(p.TotalCash))
	fmt.Fprintf(&b, "📈 Доходность: %s (%s)\n", rub(p.TotalYield), pct(p.TotalYieldPct))

	for _, acc := range p.Accounts {
		fmt.Fprintf(&b, "\n*%s* — %s\n", acc.Name, rub(acc.TotalValue))
		for _, pos := range acc.Positions {
			fmt.Fprintf(&b, "• %s (%s): %d шт. = %s (%s)\n",
				pos.Name, pos.Ticker, pos.Quantity, rub(pos.MarketValue), pct(pos.YieldPct))
		}
	}

	if len(failedAccounts) > 0 {
		fmt.Fprintf(&b, "\n⚠️ Не удалось загрузить счета: %s\n", strings.Join(failedAccounts, ", "))
	}
	return b.String()
}

// RenderTariff formats the detected fee schedule.
func RenderTariff(info tariff.Info) string {
	var b strings.Builder

	b.WriteString("📋 *Тарифный план*\n\n")
	fmt.Fprintf(&b, "Тариф: *%s*\n", info.Name)
	fmt.Fprintf(&b, "Комиссия за покупку: %s\n", pct(info.BuyRatePct))
	fmt.Fprintf(&b, "Комиссия за продажу: %s\n", pct(info.SellRatePct))
	fmt.Fprintf(&b, "Минимальная комиссия: %s\n", rub(info.MinCommission))
	if info.MonthlyFee.IsPositive() {
		fmt.Fprintf(&b, "Ежемесячная плата: %s\n", rub(info.MonthlyFee))
	}
	if len(info.Features) > 0 {
		b.WriteString("\nОсобенности:\n")
		for _, f := range info.Features {
			fmt.Fprintf(&b, "• %s\n", f)
		}
	}
	b.WriteString("\n_Тариф определён эвристически по метаданным счетов._")
	return b.String()
}

// RenderStrategy formats a costed strategy.
func RenderStrategy(s *strategy.Strategy) string {
	var b strings.Builder

	b.WriteString("🎯 *Торговая стратегия*\n\n")
	fmt.Fprintf(&b, "Название: *%s*\n", s.Name)
	fmt.Fprintf(&b, "Целевая доходность: %s\n", pct(s.TargetReturnPct))
	fmt.Fprintf(&b, "Уровень риска: %s\n", s.RiskLevel)
	if s.TimeHorizon != "" {
		fmt.Fprintf(&b, "Горизонт: %s\n", s.TimeHorizon)
	}

	if len(s.Actions) == 0 {
		b.WriteString("\n✅ Портфель сбалансирован, действия не требуются.\n")
	} else {
		b.WriteString("\n*Действия:*\n")
		for i, a := range s.Actions {
			fmt.Fprintf(&b, "%d. %s %s × %d — %s\n", i+1, sideLabel(a.Side), a.Ticker, a.Quantity, a.Rationale)
			if a.Cost != nil {
				fmt.Fprintf(&b, "   Сумма: %s, комиссия: %s, итого: %s\n",
					rub(a.Cost.GrossAmount), rub(a.Cost.Commission), rub(a.Cost.TotalCost))
			}
		}
	}

	if len(s.TargetAllocation) > 0 {
		b.WriteString("\n*Целевое распределение:*\n")
		for _, class := range []string{"stocks", "bonds", "cash"} {
			if v, ok := s.TargetAllocation[class]; ok {
				fmt.Fprintf(&b, "• %s: %s\n", allocationLabel(class), pct(v))
			}
		}
	}

	if s.Source == trade.SourceAlgorithm {
		b.WriteString("\n🤖 _AI недоступен: стратегия построена алгоритмически._")
	}
	return b.String()
}

// RenderCost formats a cost estimate for one action.
func RenderCost(action trade.Action, cost trade.CostBreakdown) string {
	var b strings.Builder

	b.WriteString("🧮 *Оценка сделки*\n\n")
	fmt.Fprintf(&b, "%s %s × %d\n", sideLabel(action.Side), action.Ticker, action.Quantity)
	fmt.Fprintf(&b, "Цена: %s", rub(cost.Price))
	if cost.PriceEstimate {
		b.WriteString(" _(типовая цена, не рыночная)_")
	}
	b.WriteString("\n")
	fmt.Fprintf(&b, "Сумма: %s\n", rub(cost.GrossAmount))
	fmt.Fprintf(&b, "Комиссия: %s (%s)\n", rub(cost.Commission), pct(cost.CommissionPct))
	if action.Side == trade.SideSell {
		fmt.Fprintf(&b, "К получению: *%s*\n", rub(cost.TotalCost))
	} else {
		fmt.Fprintf(&b, "К оплате: *%s*\n", rub(cost.TotalCost))
	}
	return b.String()
}

// RenderProviders formats the AI router state.
func RenderProviders(info ai.ProviderInfo) string {
	var b strings.Builder

	b.WriteString("🧠 *AI провайдеры*\n\n")
	fmt.Fprintf(&b, "Активный: *%s*\n", info.Active)
	fmt.Fprintf(&b, "Доступно: %d\n", info.Count)
	for _, name := range info.Available {
		marker := "•"
		if name == info.Active {
			marker = "▶"
		}
		fmt.Fprintf(&b, "%s %s\n", marker, name)
	}
	if info.FallbackAvailable {
		b.WriteString("Резервный режим: есть\n")
	}
	return b.String()
}

// RenderExecution formats the outcome of submitting a strategy's
// high-urgency actions as orders.
func RenderExecution(recommended int, results []advisor.ExecutionResult) string {
	var b strings.Builder

	b.WriteString("⚡ *Выполнение стратегии*\n\n")
	fmt.Fprintf(&b, "Рекомендаций: %d\n", recommended)
	fmt.Fprintf(&b, "Отправлено заявок: %d\n", len(results))
	if len(results) == 0 {
		b.WriteString("\nСрочных действий нет, заявки не выставлялись.")
		return b.String()
	}

	b.WriteString("\n")
	for _, r := range results {
		if r.Err != nil {
			fmt.Fprintf(&b, "• %s %s ×%d — ❌ отклонено\n", sideLabel(r.Action.Side), r.Action.Ticker, r.Action.Quantity)
			continue
		}
		fmt.Fprintf(&b, "• %s %s ×%d — %s, заявка %s\n", sideLabel(r.Action.Side), r.Action.Ticker, r.Action.Quantity, r.Status, r.OrderID)
	}
	return b.String()
}

func sideLabel(side trade.Side) string {
	switch side {
	case trade.SideBuy:
		return "🟢 Купить"
	case trade.SideSell:
		return "🔴 Продать"
	default:
		return string(side)
	}
}

func allocationLabel(class string) string {
	switch class {
	case "stocks":
		return "Акции"
	case "bonds":
		return "Облигации"
	case "cash":
		return "Денежные средства"
	default:
		return class
	}
}
