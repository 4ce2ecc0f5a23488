package telegram

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"ai-weekly-planner/internal/app"
	"ai-weekly-planner/internal/config"
	"ai-weekly-planner/internal/item"
	"ai-weekly-planner/internal/logger"
	"ai-weekly-planner/internal/metrics"
	"ai-weekly-planner/internal/planner"
	"ai-weekly-planner/internal/schedule"
	"ai-weekly-planner/internal/shopping"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// API is the part of the Telegram client the bot uses.
type API interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// UsageReporter provides the collaborator usage shown by /metrics.
type UsageReporter interface {
	GetDailyUsage(ctx context.Context, days int) ([]metrics.DailyUsage, error)
}

// Bot wraps the Telegram API around the planner application.
type Bot struct {
	api      API
	app      *app.App
	usage    UsageReporter
	sessions *SessionRepository
	cfg      *config.Config
	log      *logger.Logger
}

// reply is one outgoing message. Audio replies are sent as a document.
type reply struct {
	text  string
	audio []byte
}

// NewBot initializes the Telegram Bot and sets the Webhook.
func NewBot(cfg *config.Config, a *app.App, usage UsageReporter, sessions *SessionRepository, log *logger.Logger) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(cfg.TelegramBotToken)
	if err != nil {
		return nil, fmt.Errorf("failed to init telegram api: %w", err)
	}
	log.Info("authorized on telegram", "account", api.Self.UserName)

	wh, err := tgbotapi.NewWebhook(cfg.TelegramWebhookURL)
	if err != nil {
		return nil, fmt.Errorf("invalid webhook url %s: %w", cfg.TelegramWebhookURL, err)
	}
	resp, err := api.Request(wh)
	if err != nil {
		return nil, fmt.Errorf("failed to set webhook to %s: %w", cfg.TelegramWebhookURL, err)
	}
	log.Info("webhook set", "response", resp.Description)

	return newBot(api, cfg, a, usage, sessions, log), nil
}

func newBot(api API, cfg *config.Config, a *app.App, usage UsageReporter, sessions *SessionRepository, log *logger.Logger) *Bot {
	if log == nil {
		log = logger.NewNop()
	}
	if sessions == nil {
		sessions = NewSessionRepository(context.Background(), nil, "", time.Hour, log)
	}
	return &Bot{api: api, app: a, usage: usage, sessions: sessions, cfg: cfg, log: log}
}

// RegisterHandlers registers the webhook and health handlers on mux.
func (b *Bot) RegisterHandlers(mux *http.ServeMux) {
	mux.HandleFunc("/webhook", b.handleWebhook)
	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})
}

func (b *Bot) handleWebhook(w http.ResponseWriter, r *http.Request) {
	var update tgbotapi.Update
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		b.log.Warn("error parsing update", "error", err)
		http.Error(w, "bad update", http.StatusBadRequest)
		return
	}
	w.WriteHeader(http.StatusOK)

	msg := update.Message
	if msg == nil || msg.From == nil {
		return
	}
	if !b.isAllowed(msg.From.ID) {
		b.log.Warn("unauthorized access attempt", "user_id", msg.From.ID, "username", msg.From.UserName)
		return
	}

	// Telegram retries webhooks that take too long; answer first, work after.
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Minute)
		defer cancel()
		b.processMessage(ctx, msg)
	}()
}

func (b *Bot) isAllowed(userID int64) bool {
	if userID != 0 && userID == b.cfg.AdminTelegramID {
		return true
	}
	for _, id := range b.cfg.TelegramAllowedUserIDs {
		if userID == id {
			return true
		}
	}
	return false
}

func (b *Bot) isAdmin(userID int64) bool {
	return b.cfg.AdminTelegramID != 0 && userID == b.cfg.AdminTelegramID
}

func (b *Bot) processMessage(ctx context.Context, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID
	statusID := 0
	if isSlow(msg.Text) {
		status := tgbotapi.NewMessage(chatID, "⏳ *Thinking...*")
		status.ParseMode = tgbotapi.ModeMarkdown
		sent, err := b.api.Send(status)
		if err != nil {
			b.log.Warn("failed to send status reply", "error", err)
		} else {
			statusID = sent.MessageID
		}
	}

	for i, r := range b.handleCommand(ctx, msg.From.ID, msg.Text) {
		var c tgbotapi.Chattable
		switch {
		case r.audio != nil:
			doc := tgbotapi.NewDocument(chatID, tgbotapi.FileBytes{Name: "narration.pcm", Bytes: r.audio})
			doc.Caption = "24 kHz 16-bit mono PCM"
			c = doc
		case i == 0 && statusID != 0:
			edit := tgbotapi.NewEditMessageText(chatID, statusID, r.text)
			edit.ParseMode = tgbotapi.ModeMarkdown
			c = edit
		default:
			m := tgbotapi.NewMessage(chatID, r.text)
			m.ParseMode = tgbotapi.ModeMarkdown
			c = m
		}
		if _, err := b.api.Send(c); err != nil {
			b.log.Warn("failed to send reply", "chat_id", chatID, "error", err)
		}
	}
}

// isSlow reports whether a message triggers a generative collaborator.
func isSlow(text string) bool {
	switch command(text) {
	case "/import", "/suggest", "/shopping", "/narrate", "/illustrate", "/publish":
		return true
	case "":
		return strings.TrimSpace(text) != ""
	}
	return false
}

// command returns the lowercased command of a message without any @botname
// suffix, or "" for plain text.
func command(text string) string {
	fields := strings.Fields(text)
	if len(fields) == 0 || !strings.HasPrefix(fields[0], "/") {
		return ""
	}
	cmd := strings.ToLower(fields[0])
	if i := strings.Index(cmd, "@"); i >= 0 {
		cmd = cmd[:i]
	}
	return cmd
}

func (b *Bot) handleCommand(ctx context.Context, userID int64, text string) []reply {
	text = strings.TrimSpace(text)
	cmd := command(text)
	var args []string
	rest := text
	if cmd != "" {
		fields := strings.Fields(text)
		args = fields[1:]
		rest = strings.TrimSpace(strings.TrimPrefix(text, fields[0]))
	}

	switch cmd {
	case "/start", "/help":
		return one(b.helpText())
	case "/items":
		return one(formatItemList(b.app.Items(rest)))
	case "/show":
		if len(args) != 1 {
			return usage("/show <id>")
		}
		it, ok := b.app.Item(args[0])
		if !ok {
			return fail(fmt.Errorf("%w: %s", app.ErrNotFound, args[0]))
		}
		return one(formatItem(b.app.Kind, it))
	case "/plan":
		return one(formatWeek(b.app.Week()))
	case "/assign":
		if len(args) != 3 {
			return usage(fmt.Sprintf("/assign <day> <%s|%s> <id>", b.app.Layout()[0], b.app.Layout()[1]))
		}
		if err := b.app.Assign(ctx, args[0], args[1], args[2]); err != nil {
			return fail(err)
		}
		return one(formatWeek(b.app.Week()))
	case "/clear":
		if len(args) != 2 {
			return usage("/clear <day> <slot>")
		}
		if err := b.app.ClearSlot(ctx, args[0], args[1]); err != nil {
			return fail(err)
		}
		return one(formatWeek(b.app.Week()))
	case "/reset":
		b.app.ResetPlan(ctx)
		return one("🗑️ The week is empty.")
	case "/shopping":
		return b.shoppingList(ctx)
	case "/import":
		if rest == "" {
			return usage("/import <url or text>")
		}
		return b.importItem(ctx, rest)
	case "/suggest":
		if rest == "" {
			return usage("/suggest <what you feel like>")
		}
		return b.suggest(ctx, userID, rest)
	case "/adopt":
		return b.adopt(ctx, userID)
	case "/rate":
		if len(args) != 2 {
			return usage(fmt.Sprintf("/rate <id> <0-%d>", item.MaxRating))
		}
		rating, err := strconv.Atoi(args[1])
		if err != nil {
			return usage(fmt.Sprintf("/rate <id> <0-%d>", item.MaxRating))
		}
		if err := b.app.RateItem(ctx, args[0], rating); err != nil {
			return fail(err)
		}
		return one(fmt.Sprintf("⭐ Rated %s.", tgbotapi.EscapeText(tgbotapi.ModeMarkdown, args[0])))
	case "/delete":
		if len(args) != 1 {
			return usage("/delete <id>")
		}
		if err := b.app.DeleteItem(ctx, args[0]); err != nil {
			return fail(err)
		}
		return one("🗑️ Deleted.")
	case "/narrate":
		return b.narrate(ctx, args)
	case "/illustrate":
		if len(args) != 1 {
			return usage("/illustrate <id>")
		}
		if err := b.app.Illustrate(ctx, args[0]).Failure(); err != nil {
			return fail(err)
		}
		return one("🎨 Picture saved.")
	case "/publish":
		if !b.isAdmin(userID) {
			return one("⛔ *Access Denied*: Admin only.")
		}
		if len(args) != 1 {
			return usage("/publish <id>")
		}
		post, err := b.app.Publish(ctx, args[0], true)
		if err != nil {
			return fail(err)
		}
		return one(fmt.Sprintf("✅ *Published!*\n\n*Title:* %s\n*URL:* %s", esc(post.Title), esc(post.URL)))
	case "/metrics":
		if !b.isAdmin(userID) {
			return one("⛔ *Access Denied*: Admin only.")
		}
		return b.metricsReport(ctx)
	case "":
		// A bare link is an import; anything else is a suggestion request.
		if strings.HasPrefix(text, "http://") || strings.HasPrefix(text, "https://") {
			return b.importItem(ctx, text)
		}
		if text == "" {
			return nil
		}
		return b.suggest(ctx, userID, text)
	}
	return one("Unknown command. Try /help.")
}

func (b *Bot) shoppingList(ctx context.Context) []reply {
	list, err := b.app.ShoppingList(ctx).Unwrap()
	if errors.Is(err, planner.ErrSuperseded) {
		return one("A newer request replaced this one.")
	}
	if err != nil {
		return fail(err)
	}
	return one(fmt.Sprintf("🛒 *%s*\n\n```\n%s```", listTitle(b.app.Kind), shopping.Format(list)))
}

func (b *Bot) importItem(ctx context.Context, input string) []reply {
	var saved item.Item
	var err error
	if strings.HasPrefix(input, "http://") || strings.HasPrefix(input, "https://") {
		saved, err = b.app.ImportURL(ctx, input).Unwrap()
	} else {
		saved, err = b.app.ImportText(ctx, input).Unwrap()
	}
	if err != nil {
		return fail(err)
	}
	return one(fmt.Sprintf("✅ *Saved!*\n\n%s", formatItem(b.app.Kind, saved)))
}

func (b *Bot) suggest(ctx context.Context, userID int64, request string) []reply {
	s, err := b.app.Suggest(ctx, request).Unwrap()
	if err != nil {
		return fail(err)
	}

	var sb strings.Builder
	if len(s.Matched) == 0 && s.NewItem == nil {
		return one("🤷 Nothing fits that request.")
	}
	if len(s.Matched) > 0 {
		sb.WriteString("📚 *From your collection*\n")
		for _, it := range s.Matched {
			fmt.Fprintf(&sb, "• %s (`%s`)\n", esc(it.Title), it.ID)
		}
	}
	if s.NewItem != nil {
		if sb.Len() > 0 {
			sb.WriteString("\n")
		}
		fmt.Fprintf(&sb, "✨ *Something new:* %s\n", esc(s.NewItem.Title))
		if s.NewItem.Description != "" {
			fmt.Fprintf(&sb, "_%s_\n", esc(s.NewItem.Description))
		}
		sb.WriteString("Send /adopt to save it.")
		b.sessions.Create(ctx, userID, request, *s.NewItem)
	}
	return one(sb.String())
}

func (b *Bot) adopt(ctx context.Context, userID int64) []reply {
	session, ok := b.sessions.GetActive(userID)
	if !ok {
		return one("Nothing to adopt. Ask for a /suggest first.")
	}
	saved, err := b.app.AdoptSuggestion(ctx, session.Pending)
	if err != nil {
		return fail(err)
	}
	b.sessions.Delete(ctx, userID)
	return one(fmt.Sprintf("✅ *Saved!*\n\n%s", formatItem(b.app.Kind, saved)))
}

func (b *Bot) narrate(ctx context.Context, args []string) []reply {
	if len(args) < 1 || len(args) > 2 {
		return usage("/narrate <id> [step]")
	}
	step := -1
	if len(args) == 2 {
		n, err := strconv.Atoi(args[1])
		if err != nil || n < 1 {
			return usage("/narrate <id> [step]")
		}
		step = n - 1
	}
	audio, err := b.app.Narrate(ctx, args[0], step).Unwrap()
	if err != nil {
		return fail(err)
	}
	return []reply{{audio: audio}}
}

func (b *Bot) metricsReport(ctx context.Context) []reply {
	var sb strings.Builder
	sb.WriteString("📊 *Usage & Health Report*\n\n")

	sb.WriteString("🗓 *Recent LLM Activity*\n")
	if b.usage == nil {
		sb.WriteString("_Metrics are disabled_\n")
	} else {
		usage, err := b.usage.GetDailyUsage(ctx, 7)
		if err != nil {
			b.log.Error("failed to fetch metrics", "error", err)
			return one("❌ Error fetching metrics.")
		}
		if len(usage) == 0 {
			sb.WriteString("_No data yet_\n")
		}
		for _, d := range usage {
			fmt.Fprintf(&sb, "• *%s*: %d tokens (%d execs, %d failed)\n", d.Date, d.TotalPrompt+d.TotalCompletion, d.TotalExecution, d.Failures)
		}
	}

	status := b.app.AggregationStatus()
	fmt.Fprintf(&sb, "\n🛒 *%s*: %s", listTitle(b.app.Kind), status.Phase)
	if status.Message != "" {
		fmt.Fprintf(&sb, " (%s)", esc(status.Message))
	}
	sb.WriteString("\n")

	health := metrics.GetHealth(b.cfg.DataDir, b.cfg.DatabasePath)
	sb.WriteString("\n🧠 *System Health*\n")
	fmt.Fprintf(&sb, "• RAM: %dMB (Alloc) / %dMB (Sys)\n", health.AllocMB, health.SysMB)
	fmt.Fprintf(&sb, "• Goroutines: %d\n", health.Goroutines)
	fmt.Fprintf(&sb, "• Snapshots: %d files, %s\n", health.Snapshots, health.SnapshotSize())
	fmt.Fprintf(&sb, "• Database: %s\n", health.DatabaseSize())
	return one(sb.String())
}

func (b *Bot) helpText() string {
	layout := b.app.Layout()
	var sb strings.Builder
	fmt.Fprintf(&sb, "👋 *Weekly %s planner*\n\n", b.app.Kind)
	sb.WriteString("/items \\[query] - list or search\n")
	sb.WriteString("/show <id> - one item\n")
	sb.WriteString("/plan - the week\n")
	fmt.Fprintf(&sb, "/assign <day> <%s|%s> <id>\n", layout[0], layout[1])
	sb.WriteString("/clear <day> <slot>\n")
	sb.WriteString("/reset - empty the week\n")
	fmt.Fprintf(&sb, "/shopping - %s\n", strings.ToLower(listTitle(b.app.Kind)))
	sb.WriteString("/import <url or text>\n")
	sb.WriteString("/suggest <request>, then /adopt\n")
	sb.WriteString("/rate <id> <stars>\n")
	sb.WriteString("/delete <id>\n")
	sb.WriteString("/narrate <id> \\[step]\n")
	sb.WriteString("/illustrate <id>\n")
	sb.WriteString("\nA bare link imports it; any other text asks for suggestions.")
	return sb.String()
}

func one(text string) []reply {
	return []reply{{text: text}}
}

func usage(u string) []reply {
	return one("Usage: " + esc(u))
}

func fail(err error) []reply {
	safeErr := strings.ReplaceAll(err.Error(), "`", "'")
	return one(fmt.Sprintf("❌ *Error:*\n```\n%s\n```", safeErr))
}

func esc(s string) string {
	return tgbotapi.EscapeText(tgbotapi.ModeMarkdown, s)
}

func listTitle(kind item.Kind) string {
	if kind == item.KindAdventure {
		return "Gear list"
	}
	return "Shopping list"
}

func formatItemList(items []item.Item) string {
	if len(items) == 0 {
		return "_No items._"
	}
	var sb strings.Builder
	for _, it := range items {
		fmt.Fprintf(&sb, "• %s (`%s`)%s\n", esc(it.Title), it.ID, stars(it.Rating))
	}
	return sb.String()
}

func formatItem(kind item.Kind, it item.Item) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "*%s* (`%s`)%s\n", esc(it.Title), it.ID, stars(it.Rating))
	if it.Description != "" {
		fmt.Fprintf(&sb, "_%s_\n", esc(it.Description))
	}
	if len(it.SubItems) > 0 {
		fmt.Fprintf(&sb, "\n*%s*\n", esc(heading(kind.SubItemsLabel())))
		for _, s := range it.SubItems {
			fmt.Fprintf(&sb, "• %s\n", esc(s))
		}
	}
	if len(it.Steps) > 0 {
		fmt.Fprintf(&sb, "\n*%s*\n", esc(heading(kind.StepsLabel())))
		for i, s := range it.Steps {
			fmt.Fprintf(&sb, "%d. %s\n", i+1, esc(s))
		}
	}
	return sb.String()
}

func formatWeek(entries []schedule.Entry) string {
	var sb strings.Builder
	sb.WriteString("📅 *This week*\n")
	var day schedule.Day
	for _, e := range entries {
		if e.Day != day {
			day = e.Day
			fmt.Fprintf(&sb, "\n*%s*\n", e.Day.Title())
		}
		title := "-"
		if e.Item != nil {
			title = fmt.Sprintf("%s (`%s`)", esc(e.Item.Title), e.Item.ID)
		}
		fmt.Fprintf(&sb, "  %s: %s\n", e.Slot, title)
	}
	return sb.String()
}

func stars(rating int) string {
	if rating <= 0 {
		return ""
	}
	return " " + strings.Repeat("★", rating)
}

func heading(label string) string {
	if label == "" {
		return ""
	}
	return strings.ToUpper(label[:1]) + label[1:]
}
