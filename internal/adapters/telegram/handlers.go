package telegram

import (
	"context"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/shopspring/decimal"

	"midas/internal/domain/trade"
	"midas/internal/services/advisor"
	"midas/pkg/errors"
	"midas/pkg/logger"
)

const helpText = `🤖 *Инвестиционный советник*

Команды:
/portfolio — консолидированный портфель по всем счетам
/tariff — тарифный план и комиссии
/strategy — AI-стратегия для портфеля
/execute — выполнить срочные действия стратегии
/analysis — текстовый AI-анализ портфеля
/cost BUY|SELL TICKER QTY [PRICE] — оценка стоимости сделки
/providers — состояние AI провайдеров
/help — эта справка`

// handlerTimeout bounds one command end to end, including aggregation
// and the AI call chain.
const handlerTimeout = 2 * time.Minute

// Handler routes bot commands to the advisor service.
type Handler struct {
	bot     *Bot
	advisor *advisor.Service
	log     *logger.Logger
}

// NewHandler creates the command router and registers it on the bot.
func NewHandler(bot *Bot, svc *advisor.Service, log *logger.Logger) *Handler {
	h := &Handler{
		bot:     bot,
		advisor: svc,
		log:     log.With("component", "telegram_handler"),
	}
	bot.SetMessageHandler(h.Route)
	return h
}

// Route dispatches one update. Non-command messages get the help text.
func (h *Handler) Route(update tgbotapi.Update) {
	if update.Message == nil {
		return
	}
	msg := update.Message
	chatID := msg.Chat.ID

	ctx, cancel := context.WithTimeout(context.Background(), handlerTimeout)
	defer cancel()

	var reply string
	switch msg.Command() {
	case "start", "help":
		reply = helpText
	case "portfolio":
		reply = h.portfolio(ctx)
	case "tariff", "commission":
		reply = RenderTariff(h.advisor.GetTariffInfo(ctx))
	case "strategy":
		reply = h.strategy(ctx, msg.CommandArguments())
	case "execute":
		reply = h.execute(ctx, msg.CommandArguments())
	case "analysis":
		reply = h.analysis(ctx, msg.CommandArguments())
	case "cost":
		reply = h.cost(msg.CommandArguments())
	case "providers":
		reply = RenderProviders(h.advisor.ProviderInfo())
	default:
		reply = helpText
	}

	if err := h.bot.SendMessage(ctx, chatID, reply); err != nil {
		h.log.Errorf("failed to reply to chat %d: %v", chatID, err)
	}
}

func (h *Handler) portfolio(ctx context.Context) string {
	p, failed, err := h.advisor.GetPartialPortfolio(ctx)
	if err != nil {
		h.log.Errorf("portfolio aggregation failed: %v", err)
		return "❌ Не удалось получить данные портфеля. Попробуйте позже."
	}
	return RenderPortfolio(p, failed)
}

func (h *Handler) strategy(ctx context.Context, marketContext string) string {
	p, err := h.advisor.GetConsolidatedPortfolio(ctx)
	if err != nil {
		h.log.Errorf("portfolio aggregation failed: %v", err)
		return "❌ Не удалось получить портфель для анализа."
	}

	s, err := h.advisor.BuildStrategy(ctx, p, marketContext)
	if err != nil {
		h.log.Errorf("strategy synthesis failed: %v", err)
		return "❌ Не удалось построить стратегию."
	}
	return RenderStrategy(s)
}

// execute rebuilds the strategy for the current portfolio and submits
// its high-urgency actions as orders on the primary account.
func (h *Handler) execute(ctx context.Context, marketContext string) string {
	p, err := h.advisor.GetConsolidatedPortfolio(ctx)
	if err != nil {
		h.log.Errorf("portfolio aggregation failed: %v", err)
		return "❌ Не удалось получить портфель для анализа."
	}
	if len(p.Accounts) == 0 {
		return "❌ Нет доступных счетов для выставления заявок."
	}

	s, err := h.advisor.BuildStrategy(ctx, p, marketContext)
	if err != nil {
		h.log.Errorf("strategy synthesis failed: %v", err)
		return "❌ Не удалось построить стратегию."
	}

	results := h.advisor.ExecuteActions(ctx, p.Accounts[0].ID, s.Actions)
	return RenderExecution(len(s.Actions), results)
}

func (h *Handler) analysis(ctx context.Context, marketContext string) string {
	p, err := h.advisor.GetConsolidatedPortfolio(ctx)
	if err != nil {
		h.log.Errorf("portfolio aggregation failed: %v", err)
		return "❌ Не удалось получить портфель для анализа."
	}

	text, err := h.advisor.AnalyzePortfolio(ctx, p, marketContext)
	if err != nil {
		h.log.Errorf("portfolio analysis failed: %v", err)
		return "❌ Не удалось выполнить анализ портфеля."
	}
	return text
}

func (h *Handler) cost(args string) string {
	action, err := parseCostArgs(args)
	if err != nil {
		return "Формат: `/cost BUY|SELL TICKER QTY [PRICE]`\nНапример: `/cost BUY SBER 10 300`"
	}

	cost, err := h.advisor.EstimateCost(action)
	if err != nil {
		if errors.Is(err, errors.ErrInvalidAction) {
			return "❌ Некорректные параметры сделки."
		}
		h.log.Errorf("cost estimate failed: %v", err)
		return "❌ Не удалось оценить сделку."
	}
	return RenderCost(action, cost)
}

// parseCostArgs parses "BUY SBER 10 300" into a trade action.
func parseCostArgs(args string) (action trade.Action, err error) {
	fields := strings.Fields(args)
	if len(fields) < 3 {
		return action, errors.Wrap(errors.ErrInvalidInput, "too few arguments")
	}

	switch strings.ToUpper(fields[0]) {
	case string(trade.SideBuy):
		action.Side = trade.SideBuy
	case string(trade.SideSell):
		action.Side = trade.SideSell
	default:
		return action, errors.Wrapf(errors.ErrInvalidInput, "unknown side %q", fields[0])
	}
	action.Ticker = strings.ToUpper(fields[1])

	qty, err := strconv.ParseInt(fields[2], 10, 64)
	if err != nil {
		return action, errors.Wrapf(errors.ErrInvalidInput, "bad quantity %q", fields[2])
	}
	action.Quantity = qty

	if len(fields) > 3 {
		price, perr := decimal.NewFromString(strings.ReplaceAll(fields[3], ",", "."))
		if perr != nil {
			return action, errors.Wrapf(errors.ErrInvalidInput, "bad price %q", fields[3])
		}
		action.PriceHint = price
	}
	return action, nil
}
