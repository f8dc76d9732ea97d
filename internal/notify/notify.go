package notify

import (
	"context"
	"fmt"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/Alias1177/Sentinel/models"
)

// Telegram allows 30 messages per second for bots
const DefaultSendInterval = 50 * time.Millisecond

// Sender is satisfied by *tgbotapi.BotAPI
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// BroadcastResult counts delivered and failed messages
type BroadcastResult struct {
	Sent   int
	Failed int
}

// Notifier delivers alert text to a set of Telegram chats
type Notifier struct {
	sender   Sender
	interval time.Duration
	logger   zerolog.Logger
}

func NewNotifier(sender Sender) *Notifier {
	return &Notifier{
		sender:   sender,
		interval: DefaultSendInterval,
		logger:   log.With().Str("component", "notifier").Logger(),
	}
}

// Broadcast sends text to every chat, pausing between sends.
// A failed chat is counted and skipped; only cancellation stops the loop.
func (n *Notifier) Broadcast(ctx context.Context, chatIDs []int64, text string) (BroadcastResult, error) {
	var result BroadcastResult

	for i, chatID := range chatIDs {
		msg := tgbotapi.NewMessage(chatID, text)
		msg.ParseMode = tgbotapi.ModeMarkdown

		if _, err := n.sender.Send(msg); err != nil {
			n.logger.Error().Err(err).Int64("chat_id", chatID).Msg("Failed to send alert")
			result.Failed++
		} else {
			n.logger.Info().Int64("chat_id", chatID).Msgf("Alert sent [%d/%d]", i+1, len(chatIDs))
			result.Sent++
		}

		if i < len(chatIDs)-1 {
			select {
			case <-ctx.Done():
				return result, ctx.Err()
			case <-time.After(n.interval):
			}
		}
	}

	return result, nil
}

// FilterBySeverity keeps anomalies at or above minSeverity, preserving order
func FilterBySeverity(anomalies []models.AnomalyRecord, minSeverity models.Severity) []models.AnomalyRecord {
	out := make([]models.AnomalyRecord, 0, len(anomalies))
	for _, a := range anomalies {
		if a.Severity.Rank() >= minSeverity.Rank() {
			out = append(out, a)
		}
	}
	return out
}

// FormatAlert renders a Markdown summary of flagged anomalies and current wash trading
func FormatAlert(report *models.FraudReport, anomalies []models.AnomalyRecord) string {
	var sb strings.Builder

	asset := tgbotapi.EscapeText(tgbotapi.ModeMarkdown, report.Asset)
	fmt.Fprintf(&sb, "🚨 *Volume anomaly alert: %s*\n\n", asset)
	fmt.Fprintf(&sb, "Price: $%.4f\n", report.Metrics.TokenPrice)
	fmt.Fprintf(&sb, "24h volume: $%.0f (real $%.0f)\n", report.Metrics.Volume24h, report.Metrics.RealVolume24h)
	fmt.Fprintf(&sb, "Estimated wash trading: %.1f%%\n\n", report.WashTrading.Current.WashPercentage)

	fmt.Fprintf(&sb, "*%d flagged spike(s)*\n", len(anomalies))
	for _, a := range anomalies {
		fmt.Fprintf(&sb, "• %s: volume %.0f (z=%.2f, %+.1f%% vs mean), price %+.2f%%, %s\n",
			day(a.Timestamp), a.Volume, a.VolumeZ, a.VolumeChangePct*100, a.PriceChangePct*100, strings.ToUpper(string(a.Severity)))
	}

	return sb.String()
}

func day(instant string) string {
	if len(instant) < 10 {
		return instant
	}
	return instant[:10]
}
