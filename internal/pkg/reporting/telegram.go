package reporting

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/courtsight/flashcourt/internal/pkg/config"
	"github.com/courtsight/flashcourt/internal/pkg/models"
)

// Min interval between any two Telegram messages to the same chat to avoid 429 Too Many Requests (~30/min limit).
const telegramSendInterval = 2 * time.Second

type messageType int

const (
	messageTypeSummary messageType = iota
	messageTypeFailure
	messageTypeTest
)

type queuedMessage struct {
	msgType messageType
	dateKey string
	summary models.RunSummary
	stage   string
	errText string
	text    string
}

// TelegramNotifier pushes run summaries and failure alerts to a chat.
// Construction failures return nil and every method tolerates a nil
// receiver, so a missing bot token just disables notifications.
type TelegramNotifier struct {
	bot      *tgbotapi.BotAPI
	chatID   int64
	mu       sync.Mutex
	lastSend time.Time

	queue     chan queuedMessage
	queueDone chan struct{}
	wg        sync.WaitGroup
	ctx       context.Context
	cancel    context.CancelFunc
}

func NewTelegramNotifier(cfg *config.TelegramConfig) *TelegramNotifier {
	if cfg == nil || cfg.BotToken == "" || cfg.ChatID == 0 {
		return nil
	}

	bot, err := tgbotapi.NewBotAPI(cfg.BotToken)
	if err != nil {
		slog.Error("Failed to create telegram bot", "error", err)
		return nil
	}
	bot.Debug = false

	if _, err := bot.GetMe(); err != nil {
		slog.Error("Failed to get bot info", "error", err)
		return nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	notifier := &TelegramNotifier{
		bot:       bot,
		chatID:    cfg.ChatID,
		queue:     make(chan queuedMessage, 100),
		queueDone: make(chan struct{}),
		ctx:       ctx,
		cancel:    cancel,
	}

	notifier.wg.Add(1)
	go notifier.messageSender()

	slog.Info("Telegram notifier initialized", "chat_id", cfg.ChatID)
	return notifier
}

// messageSender runs in background and sends queued messages with proper intervals.
func (n *TelegramNotifier) messageSender() {
	defer n.wg.Done()

	for {
		select {
		case <-n.ctx.Done():
			// Drain remaining messages before exit
			for {
				select {
				case msg := <-n.queue:
					n.sendQueuedMessage(msg)
				default:
					close(n.queueDone)
					return
				}
			}
		case msg := <-n.queue:
			n.sendQueuedMessage(msg)
		}
	}
}

func (n *TelegramNotifier) sendQueuedMessage(msg queuedMessage) {
	var messageText string
	switch msg.msgType {
	case messageTypeSummary:
		messageText = formatRunSummary(msg.dateKey, msg.summary)
	case messageTypeFailure:
		messageText = formatFailureAlert(msg.stage, msg.errText)
	case messageTypeTest:
		messageText = msg.text
	default:
		slog.Error("Unknown message type", "type", msg.msgType)
		return
	}

	tgMsg := tgbotapi.NewMessage(n.chatID, messageText)
	tgMsg.ParseMode = tgbotapi.ModeMarkdown

	// Wait for proper interval
	n.mu.Lock()
	elapsed := time.Since(n.lastSend)
	if elapsed < telegramSendInterval {
		waitTime := telegramSendInterval - elapsed
		n.mu.Unlock()
		select {
		case <-n.ctx.Done():
			slog.Warn("Telegram send: cancelled during wait", "type", msg.msgType)
			return
		case <-time.After(waitTime):
		}
		n.mu.Lock()
	}
	n.lastSend = time.Now()
	_, err := n.bot.Send(tgMsg)
	n.mu.Unlock()

	if err != nil {
		slog.Error("Telegram send: failed", "error", err, "type", msg.msgType)
		return
	}
	slog.Info("Telegram send: success", "type", msg.msgType, "queue_length", len(n.queue))
}

// SendRunSummary queues the end-of-run summary message (non-blocking).
func (n *TelegramNotifier) SendRunSummary(ctx context.Context, dateKey string, summary models.RunSummary) error {
	if n == nil || n.bot == nil {
		return fmt.Errorf("telegram notifier not initialized")
	}

	select {
	case <-n.ctx.Done():
		return fmt.Errorf("notifier stopped")
	case <-ctx.Done():
		return ctx.Err()
	case n.queue <- queuedMessage{msgType: messageTypeSummary, dateKey: dateKey, summary: summary}:
		return nil
	default:
		slog.Warn("Telegram message queue is full, dropping message", "date_key", dateKey)
		return fmt.Errorf("message queue is full")
	}
}

// SendFailureAlert queues an alert about an aborted run (non-blocking).
func (n *TelegramNotifier) SendFailureAlert(ctx context.Context, stage string, runErr error) error {
	if n == nil || n.bot == nil {
		return fmt.Errorf("telegram notifier not initialized")
	}

	errText := ""
	if runErr != nil {
		errText = runErr.Error()
	}

	select {
	case <-n.ctx.Done():
		return fmt.Errorf("notifier stopped")
	case <-ctx.Done():
		return ctx.Err()
	case n.queue <- queuedMessage{msgType: messageTypeFailure, stage: stage, errText: errText}:
		return nil
	default:
		slog.Warn("Telegram message queue is full, dropping failure alert", "stage", stage)
		return fmt.Errorf("message queue is full")
	}
}

// SendTestAlert sends a connectivity check message (non-blocking).
func (n *TelegramNotifier) SendTestAlert(ctx context.Context, message string) error {
	if n == nil || n.bot == nil {
		return fmt.Errorf("telegram notifier not initialized")
	}

	text := fmt.Sprintf("🧪 *Test Alert*\n\n%s\n\n_Time: %s_", message, time.Now().UTC().Format("2006-01-02 15:04:05 UTC"))

	select {
	case <-n.ctx.Done():
		return fmt.Errorf("notifier stopped")
	case <-ctx.Done():
		return ctx.Err()
	case n.queue <- queuedMessage{msgType: messageTypeTest, text: text}:
		return nil
	default:
		slog.Warn("Telegram test alert: queue full, dropping", "message", message)
		return fmt.Errorf("message queue is full")
	}
}

// Stop stops the notifier and waits for all queued messages to be sent.
func (n *TelegramNotifier) Stop() {
	if n == nil {
		return
	}
	n.cancel()
	<-n.queueDone
	n.wg.Wait()
}

func formatRunSummary(dateKey string, summary models.RunSummary) string {
	var builder strings.Builder
	builder.WriteString(fmt.Sprintf("🏀 *Scrape Run Complete* (%s)\n\n", escapeMarkdown(dateKey)))
	builder.WriteString(fmt.Sprintf("📅 Scheduled: *%d*\n", summary.Scheduled))
	builder.WriteString(fmt.Sprintf("✅ Complete: *%d*\n", summary.Complete))
	builder.WriteString(fmt.Sprintf("⚠️ Incomplete: *%d*\n", summary.Incomplete))
	builder.WriteString(fmt.Sprintf("⏭ Previously processed: *%d*\n", summary.PreviouslyProcessed))
	if summary.Skipped > 0 {
		builder.WriteString(fmt.Sprintf("🚫 Skipped: *%d*\n", summary.Skipped))
	}
	return builder.String()
}

func formatFailureAlert(stage string, errText string) string {
	var builder strings.Builder
	builder.WriteString("🚨 *Scrape Run Failed*\n\n")
	builder.WriteString(fmt.Sprintf("Stage: *%s*\n", escapeMarkdown(stage)))
	if errText != "" {
		builder.WriteString(fmt.Sprintf("Error: `%s`\n", errText))
	}
	return builder.String()
}

func escapeMarkdown(text string) string {
	replacer := strings.NewReplacer(
		"_", "\\_",
		"*", "\\*",
		"[", "\\[",
		"]", "\\]",
		"(", "\\(",
		")", "\\)",
		"~", "\\~",
		"`", "\\`",
		">", "\\>",
		"#", "\\#",
		"+", "\\+",
		"-", "\\-",
		"=", "\\=",
		"|", "\\|",
		"{", "\\{",
		"}", "\\}",
		".", "\\.",
		"!", "\\!",
	)
	return replacer.Replace(text)
}
