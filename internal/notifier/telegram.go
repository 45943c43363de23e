// Package notifier sends Telegram alerts for large bets. It formats a placed
// bet into a short MarkdownV2 message and delivers it with retry, so a flaky
// Telegram API never fails a placement.
package notifier

import (
	"fmt"
	"strconv"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/atarjan/memebet/internal/models"
)

// Client delivers bet alerts to a Telegram chat.
type Client struct {
	bot            *tgbotapi.BotAPI
	chatID         int64
	maxRetries     int
	retryDelayBase time.Duration
}

// NewClient creates a Telegram notifier client.
func NewClient(botToken, chatID string, maxRetries int, retryDelayBase time.Duration) (*Client, error) {
	bot, err := tgbotapi.NewBotAPI(botToken)
	if err != nil {
		return nil, fmt.Errorf("failed to create Telegram bot: %w", err)
	}

	chatIDInt, err := strconv.ParseInt(chatID, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid chat ID: %w", err)
	}

	if maxRetries <= 0 {
		maxRetries = 3
	}
	if retryDelayBase <= 0 {
		retryDelayBase = time.Second
	}

	return &Client{
		bot:            bot,
		chatID:         chatIDInt,
		maxRetries:     maxRetries,
		retryDelayBase: retryDelayBase,
	}, nil
}

// SendBigBet announces a large placed bet. potentialPayout is the unrounded
// payout; it is formatted for display here.
func (c *Client) SendBigBet(record models.BetRecord, potentialPayout float64) error {
	message := c.formatBigBet(record, potentialPayout)

	msg := tgbotapi.NewMessage(c.chatID, message)
	msg.ParseMode = "MarkdownV2"

	var lastErr error
	for i := 0; i < c.maxRetries; i++ {
		_, err := c.bot.Send(msg)
		if err == nil {
			return nil
		}
		lastErr = err
		time.Sleep(c.retryDelayBase * time.Duration(i+1))
	}
	return fmt.Errorf("failed to send message after %d retries: %w", c.maxRetries, lastErr)
}

// formatBigBet formats a bet record into a MarkdownV2 alert.
func (c *Client) formatBigBet(record models.BetRecord, potentialPayout float64) string {
	directionEmoji := "📈"
	if record.Direction == models.DirectionDown {
		directionEmoji = "📉"
	}

	amountStr := escapeMarkdownV2(fmt.Sprintf("%d", record.Amount))
	payoutStr := escapeMarkdownV2(fmt.Sprintf("%.2f", potentialPayout))
	oddsStr := escapeMarkdownV2(fmt.Sprintf("%.2f", record.Odds))
	name := escapeMarkdownV2(record.ItemName)
	symbol := escapeMarkdownV2(record.Symbol)

	message := "🐳 *Whale Bet Alert*\n\n"
	message += fmt.Sprintf("%s *%s* points on %s \\(%s\\) going %s\n", directionEmoji, amountStr, name, symbol, record.Direction)
	message += fmt.Sprintf("🎲 Odds: %s\n", oddsStr)
	message += fmt.Sprintf("💰 Potential payout: %s points\n", payoutStr)
	return message
}

// escapeMarkdownV2 escapes special characters for Telegram MarkdownV2.
func escapeMarkdownV2(text string) string {
	result := ""
	for _, char := range text {
		switch char {
		case '_', '*', '[', ']', '(', ')', '~', '`', '>', '#', '+', '-', '=', '|', '{', '}', '.', '!':
			result += "\\" + string(char)
		default:
			result += string(char)
		}
	}
	return result
}
