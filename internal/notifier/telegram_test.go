package notifier

import (
	"strings"
	"testing"
	"time"

	"github.com/atarjan/memebet/internal/models"
)

func TestEscapeMarkdownV2(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"Much Wow!", "Much Wow\\!"},
		{"1,000.50", "1,000\\.50"},
		{"plain", "plain"},
		{"(DOGE)", "\\(DOGE\\)"},
	}

	for _, tt := range tests {
		result := escapeMarkdownV2(tt.input)
		if result != tt.expected {
			t.Errorf("escapeMarkdownV2(%q) = %q, expected %q", tt.input, result, tt.expected)
		}
	}
}

func TestFormatBigBet(t *testing.T) {
	c := &Client{}
	record := models.BetRecord{
		ID:        "bet-1",
		UserID:    "user-1",
		ItemID:    "meme-1",
		ItemName:  "Much Wow!",
		Symbol:    "DOGE",
		Amount:    50000,
		Direction: models.DirectionUp,
		Odds:      2.2,
		Status:    models.BetPending,
		Timestamp: time.Now(),
	}

	msg := c.formatBigBet(record, 110000.0)

	if !strings.Contains(msg, "Whale Bet Alert") {
		t.Error("expected alert header in message")
	}
	if !strings.Contains(msg, "50000") {
		t.Error("expected amount in message")
	}
	if !strings.Contains(msg, "Much Wow\\!") {
		t.Error("expected escaped item name in message")
	}
	if !strings.Contains(msg, "110000\\.00") {
		t.Error("expected formatted payout in message")
	}
	if !strings.Contains(msg, "📈") {
		t.Error("expected up-direction emoji in message")
	}
}
