package notify

import (
	"context"
	"errors"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alias1177/Sentinel/models"
)

type fakeSender struct {
	sent   []tgbotapi.MessageConfig
	failOn map[int64]bool
}

func (f *fakeSender) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	msg := c.(tgbotapi.MessageConfig)
	if f.failOn[msg.ChatID] {
		return tgbotapi.Message{}, errors.New("chat not found")
	}
	f.sent = append(f.sent, msg)
	return tgbotapi.Message{MessageID: len(f.sent)}, nil
}

func TestBroadcast(t *testing.T) {
	sender := &fakeSender{failOn: map[int64]bool{2: true}}
	n := NewNotifier(sender)
	n.interval = time.Millisecond

	result, err := n.Broadcast(context.Background(), []int64{1, 2, 3}, "hello")
	require.NoError(t, err)

	assert.Equal(t, BroadcastResult{Sent: 2, Failed: 1}, result)
	require.Len(t, sender.sent, 2)
	assert.Equal(t, int64(1), sender.sent[0].ChatID)
	assert.Equal(t, int64(3), sender.sent[1].ChatID)
	assert.Equal(t, tgbotapi.ModeMarkdown, sender.sent[0].ParseMode)
	assert.Equal(t, "hello", sender.sent[0].Text)
}

func TestBroadcast_Paced(t *testing.T) {
	sender := &fakeSender{}
	n := NewNotifier(sender)
	n.interval = 20 * time.Millisecond

	start := time.Now()
	_, err := n.Broadcast(context.Background(), []int64{1, 2, 3}, "hello")
	require.NoError(t, err)

	// two pauses between three sends, none after the last
	assert.GreaterOrEqual(t, time.Since(start), 40*time.Millisecond)
}

func TestBroadcast_Cancelled(t *testing.T) {
	sender := &fakeSender{}
	n := NewNotifier(sender)
	n.interval = time.Hour

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := n.Broadcast(ctx, []int64{1, 2, 3}, "hello")
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, result.Sent)
}

func TestBroadcast_NoChats(t *testing.T) {
	n := NewNotifier(&fakeSender{})

	result, err := n.Broadcast(context.Background(), nil, "hello")
	require.NoError(t, err)
	assert.Equal(t, BroadcastResult{}, result)
}

func TestFilterBySeverity(t *testing.T) {
	anomalies := []models.AnomalyRecord{
		{Timestamp: "a", Severity: models.SeverityLow},
		{Timestamp: "b", Severity: models.SeverityHigh},
		{Timestamp: "c", Severity: models.SeverityMedium},
	}

	tests := []struct {
		min  models.Severity
		want []string
	}{
		{models.SeverityLow, []string{"a", "b", "c"}},
		{models.SeverityMedium, []string{"b", "c"}},
		{models.SeverityHigh, []string{"b"}},
	}

	for _, tt := range tests {
		t.Run(string(tt.min), func(t *testing.T) {
			got := FilterBySeverity(anomalies, tt.min)
			var ids []string
			for _, a := range got {
				ids = append(ids, a.Timestamp)
			}
			assert.Equal(t, tt.want, ids)
		})
	}
}

func TestFormatAlert(t *testing.T) {
	report := &models.FraudReport{
		Asset:   "SOL",
		Metrics: models.MarketSummary{TokenPrice: 101.5, Volume24h: 1000, RealVolume24h: 600},
		WashTrading: models.WashTradingReport{
			Current: models.WashTradingSnapshot{WashPercentage: 40},
		},
	}
	anomalies := []models.AnomalyRecord{{
		Timestamp:       "2024-01-08T00:00:00.000Z",
		Volume:          50,
		VolumeZ:         30.75,
		VolumeChangePct: 3.667,
		PriceChangePct:  0.005,
		Severity:        models.SeverityHigh,
	}}

	text := FormatAlert(report, anomalies)

	assert.Contains(t, text, "SOL")
	assert.Contains(t, text, "Estimated wash trading: 40.0%")
	assert.Contains(t, text, "*1 flagged spike(s)*")
	assert.Contains(t, text, "2024-01-08: volume 50 (z=30.75")
	assert.Contains(t, text, "price +0.50%")
	assert.Contains(t, text, "HIGH")
	assert.NotContains(t, text, "T00:00:00")
}
