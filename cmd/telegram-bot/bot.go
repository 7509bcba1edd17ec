package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api"
	"github.com/google/uuid"

	"tasklist/internal/controller"
	"tasklist/internal/logger"
	"tasklist/internal/manager"
	"tasklist/internal/models"
	"tasklist/internal/notify"
	"tasklist/internal/render"
)

// botAPI is the part of tgbotapi.BotAPI the bot uses.
type botAPI interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	DeleteMessage(config tgbotapi.DeleteMessageConfig) (tgbotapi.APIResponse, error)
}

type Bot struct {
	api    botAPI
	chatID int64
	ctl    *controller.Controller
	repo   *manager.TaskManager
	view   render.View
}

func NewBot(api botAPI, chatID int64) *Bot {
	return &Bot{api: api, chatID: chatID}
}

// Bind attaches the controller driving this bot. The controller is built
// with the bot as its presenter, so it cannot be passed to NewBot.
func (b *Bot) Bind(ctl *controller.Controller, repo *manager.TaskManager) {
	b.ctl = ctl
	b.repo = repo
}

// Serve handles updates one at a time until ctx is cancelled or the
// channel closes.
func (b *Bot) Serve(ctx context.Context, updates <-chan tgbotapi.Update, afterEach func()) {
	for {
		select {
		case <-ctx.Done():
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			if update.Message == nil {
				continue
			}
			b.handleMessage(update.Message)
			if afterEach != nil {
				afterEach()
			}
		}
	}
}

func (b *Bot) handleMessage(msg *tgbotapi.Message) {
	ctx := context.Background()

	if msg.Chat == nil || msg.Chat.ID != b.chatID {
		logger.Debug(ctx, "message from foreign chat ignored")
		return
	}
	logger.Info(ctx, "message received", "text", msg.Text)

	if !msg.IsCommand() {
		b.sendMessage("Use /help for the list of commands.")
		return
	}

	args := strings.TrimSpace(msg.CommandArguments())
	switch msg.Command() {
	case "start", "help":
		b.sendHelp()
	case "add":
		b.addTask(args)
	case "list":
		b.listTasks(args)
	case "toggle", "done":
		b.toggleTask(args)
	case "delete":
		b.deleteTask(args)
	case "yes":
		b.answerDelete(true)
	case "no":
		b.answerDelete(false)
	default:
		b.sendMessage("Unknown command. Use /help for the list of commands.")
	}
}

func (b *Bot) addTask(args string) {
	if args == "" {
		b.sendMessage("Usage: /add Buy milk | 2026-10-20 | daily")
		return
	}

	parts := strings.Split(args, "|")
	form := controller.Form{Title: parts[0]}
	if len(parts) > 1 {
		form.Date = strings.TrimSpace(parts[1])
	}
	if len(parts) > 2 {
		form.Priority = strings.TrimSpace(parts[2])
	}
	b.ctl.Submit(form)
}

func (b *Bot) listTasks(args string) {
	filter := models.FilterAll
	if args != "" {
		f, err := models.ParseFilter(args)
		if err != nil {
			b.sendMessage("Filter must be one of: all, todo, done")
			return
		}
		filter = f
	}
	b.ctl.SelectFilter(filter)
	b.sendMessage(formatView(b.view))
}

func (b *Bot) toggleTask(args string) {
	id, ok := b.taskID(args, "/toggle")
	if !ok {
		return
	}
	b.ctl.Toggle(id)
}

func (b *Bot) deleteTask(args string) {
	id, ok := b.taskID(args, "/delete")
	if !ok {
		return
	}
	b.ctl.RequestDelete(id)
}

func (b *Bot) answerDelete(confirmed bool) {
	if _, pending := b.ctl.PendingDelete(); !pending {
		b.sendMessage("Nothing to confirm.")
		return
	}
	if confirmed {
		b.ctl.ConfirmDelete()
		return
	}
	b.ctl.CancelDelete()
	b.sendMessage("Kept.")
}

func (b *Bot) taskID(args, command string) (int64, bool) {
	if args == "" {
		b.sendMessage(fmt.Sprintf("Usage: %s ID", command))
		return 0, false
	}
	id, err := strconv.ParseInt(args, 10, 64)
	if err != nil {
		b.sendMessage("Task ID must be a number")
		return 0, false
	}
	if _, err := b.repo.GetTask(id); err != nil {
		b.sendMessage(fmt.Sprintf("Task %d not found", id))
		return 0, false
	}
	return id, true
}

func (b *Bot) sendHelp() {
	b.sendMessage(`Commands:
/add title | YYYY-MM-DD | important|daily - add a task
/list [all|todo|done] - show tasks
/toggle ID - mark done or reopen
/delete ID - delete, then /yes or /no
/help - this message`)
}

func (b *Bot) sendMessage(text string) {
	if _, err := b.api.Send(tgbotapi.NewMessage(b.chatID, text)); err != nil {
		logger.Error(context.Background(), err, "send message")
	}
}

func formatView(v render.View) string {
	if v.Empty {
		return fmt.Sprintf("No tasks (%s)", v.Filter)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Tasks (%s):\n\n", v.Filter)
	for _, r := range v.Rows {
		status := "⬜"
		if r.Done {
			status = "✅"
		}
		mark := ""
		if r.Priority == models.PriorityImportant {
			mark = " ❗"
		}
		fmt.Fprintf(&sb, "%s %d: %s (%s)%s\n", status, r.ID, r.Title, r.DateLabel, mark)
	}
	return sb.String()
}

// Presenter methods. The bot only speaks when there is something to say.

func (b *Bot) ShowView(v render.View)   { b.view = v }
func (b *Bot) ShowFilter(models.Filter) {}
func (b *Bot) ClearTitle()              {}
func (b *Bot) Alert(msg string)         { b.sendMessage("⚠️ " + msg) }
func (b *Bot) AskConfirm(prompt string) { b.sendMessage(prompt + " /yes or /no") }

func (b *Bot) ShowTitleError(msg string) {
	if msg != "" {
		b.sendMessage("Title: " + msg)
	}
}

func (b *Bot) ShowDateError(msg string) {
	if msg != "" {
		b.sendMessage("Date: " + msg)
	}
}

// chatSink posts notifications to the chat and deletes them when they
// expire.
type chatSink struct {
	api    botAPI
	chatID int64

	mu   sync.Mutex
	sent map[uuid.UUID]int
	gone map[uuid.UUID]bool
}

func newChatSink(api botAPI, chatID int64) *chatSink {
	return &chatSink{
		api:    api,
		chatID: chatID,
		sent:   make(map[uuid.UUID]int),
		gone:   make(map[uuid.UUID]bool),
	}
}

func (s *chatSink) Show(n notify.Notification) {
	m, err := s.api.Send(tgbotapi.NewMessage(s.chatID, "» "+n.Message))
	if err != nil {
		logger.Error(context.Background(), err, "send notification")
	}

	s.mu.Lock()
	if s.gone[n.ID] {
		// expired before the send returned
		delete(s.gone, n.ID)
		s.mu.Unlock()
		if err == nil {
			s.delete(m.MessageID)
		}
		return
	}
	s.sent[n.ID] = m.MessageID
	s.mu.Unlock()
}

func (s *chatSink) Dismiss(n notify.Notification) {
	s.mu.Lock()
	msgID, ok := s.sent[n.ID]
	if ok {
		delete(s.sent, n.ID)
	} else {
		s.gone[n.ID] = true
	}
	s.mu.Unlock()

	if ok && msgID != 0 {
		s.delete(msgID)
	}
}

func (s *chatSink) delete(msgID int) {
	if _, err := s.api.DeleteMessage(tgbotapi.DeleteMessageConfig{ChatID: s.chatID, MessageID: msgID}); err != nil {
		logger.Error(context.Background(), err, "delete notification", "message_id", msgID)
	}
}
