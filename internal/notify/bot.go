package notify

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/Alias1177/Sentinel/internal/anomaly"
	"github.com/Alias1177/Sentinel/internal/api/messari"
	"github.com/Alias1177/Sentinel/models"
)

const (
	buttonReport    = "Fraud Report"
	buttonSentiment = "Social Sentiment"
	buttonNews      = "News"

	maxBotHeadlines = 5
)

// ReportSource produces fraud reports
type ReportSource interface {
	Analyze(ctx context.Context, asset string, days int) (*models.FraudReport, error)
}

// SentimentSource produces social sentiment and the tagged news feed
type SentimentSource interface {
	Social(ctx context.Context, asset string) (*models.SocialSentiment, error)
	News(ctx context.Context, topic string, limit int) (*models.NewsFeed, error)
}

// Bot answers on-demand report requests in Telegram chats
type Bot struct {
	sender       Sender
	reports      ReportSource
	sentiment    SentimentSource
	defaultAsset string
	newsTopic    string
	logger       zerolog.Logger
}

func NewBot(sender Sender, reports ReportSource, sentiment SentimentSource, defaultAsset, newsTopic string) *Bot {
	return &Bot{
		sender:       sender,
		reports:      reports,
		sentiment:    sentiment,
		defaultAsset: defaultAsset,
		newsTopic:    newsTopic,
		logger:       log.With().Str("component", "telegram_bot").Logger(),
	}
}

// Run handles updates until the channel closes or ctx is done
func (b *Bot) Run(ctx context.Context, updates tgbotapi.UpdatesChannel) {
	for {
		select {
		case <-ctx.Done():
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			if update.Message != nil {
				b.HandleMessage(ctx, update.Message)
			}
		}
	}
}

// HandleMessage replies to one incoming message
func (b *Bot) HandleMessage(ctx context.Context, message *tgbotapi.Message) {
	chatID := message.Chat.ID

	msg := tgbotapi.NewMessage(chatID, b.Reply(ctx, message.Text))
	msg.ParseMode = tgbotapi.ModeMarkdown
	if isMenuRequest(message.Text) {
		msg.ReplyMarkup = mainMenuKeyboard()
	}

	if _, err := b.sender.Send(msg); err != nil {
		b.logger.Error().Err(err).Int64("chat_id", chatID).Msg("Failed to send reply")
	}
}

// Reply computes the Markdown answer to a command or menu button
func (b *Bot) Reply(ctx context.Context, text string) string {
	command, arg := parseCommand(text)

	switch command {
	case "/start", "/help":
		return "Welcome to the Sentinel volume monitor!\n\n" +
			"/report ASSET - volume anomalies and wash trading\n" +
			"/sentiment ASSET - social sentiment proxy\n" +
			"/news TOPIC - latest tagged headlines"
	case "/report", buttonReport:
		return b.report(ctx, b.assetOrDefault(arg))
	case "/sentiment", buttonSentiment:
		return b.social(ctx, b.assetOrDefault(arg))
	case "/news", buttonNews:
		topic := b.newsTopic
		if arg != "" {
			topic = strings.ToLower(arg)
		}
		return b.news(ctx, topic)
	default:
		return "Unknown command. Send /help to see what I can do."
	}
}

func (b *Bot) report(ctx context.Context, asset string) string {
	report, err := b.reports.Analyze(ctx, asset, 0)
	if err != nil {
		return b.failure(err, asset)
	}

	text := FormatAlert(report, report.Anomalies)
	if len(report.Anomalies) == 0 {
		text += "No volume spikes without matching price movement.\n"
	}
	return text
}

func (b *Bot) social(ctx context.Context, asset string) string {
	s, err := b.sentiment.Social(ctx, asset)
	if err != nil {
		return b.failure(err, asset)
	}

	return fmt.Sprintf("*%s social sentiment*\n\nScore: %.2f (0.5 is neutral)\n24h change: %+.4f\nFollowers: %.0f (%+.0f in 24h)\n",
		tgbotapi.EscapeText(tgbotapi.ModeMarkdown, s.Asset), s.CurrentSentiment, s.SentimentChange24h,
		s.TwitterMetrics.Followers, s.TwitterMetrics.FollowersChange24h)
}

func (b *Bot) news(ctx context.Context, topic string) string {
	feed, err := b.sentiment.News(ctx, topic, maxBotHeadlines)
	if err != nil {
		return b.failure(err, topic)
	}
	if len(feed.News) == 0 {
		return "No news for " + tgbotapi.EscapeText(tgbotapi.ModeMarkdown, topic)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "*Latest %s news*\n\n", tgbotapi.EscapeText(tgbotapi.ModeMarkdown, topic))
	for _, item := range feed.News {
		fmt.Fprintf(&sb, "• %s: %s\n", item.Sentiment, tgbotapi.EscapeText(tgbotapi.ModeMarkdown, item.Title))
	}
	return sb.String()
}

func (b *Bot) failure(err error, subject string) string {
	b.logger.Error().Err(err).Str("subject", subject).Msg("Bot request failed")

	var upstream *messari.UpstreamFetchError
	switch {
	case errors.As(err, &upstream):
		return "Market data is unavailable right now, please try again later."
	case errors.Is(err, anomaly.ErrMalformedSeries):
		return "Market data for this asset looks malformed, analysis skipped."
	default:
		return "Sorry, there was an error. Please try again later."
	}
}

func (b *Bot) assetOrDefault(arg string) string {
	if arg == "" {
		return b.defaultAsset
	}
	return strings.ToUpper(arg)
}

// parseCommand splits "/report@SentinelBot sol" into ("/report", "sol")
func parseCommand(text string) (string, string) {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "/") {
		return text, ""
	}

	fields := strings.Fields(text)
	command := strings.ToLower(fields[0])
	if at := strings.Index(command, "@"); at > 0 {
		command = command[:at]
	}

	arg := ""
	if len(fields) > 1 {
		arg = fields[1]
	}
	return command, arg
}

func isMenuRequest(text string) bool {
	command, _ := parseCommand(text)
	return command == "/start" || command == "/help"
}

func mainMenuKeyboard() tgbotapi.ReplyKeyboardMarkup {
	return tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(buttonReport),
			tgbotapi.NewKeyboardButton(buttonSentiment),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(buttonNews),
		),
	)
}
