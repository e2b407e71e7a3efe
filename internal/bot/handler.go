// Package bot is the Telegram front end: it owns the command surface,
// classifies inbound JSON through ingest, and reads and writes the shared
// crm store. All texts it sends are built in render.go.
package bot

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"
	"gopkg.in/telebot.v3/middleware"

	"github.com/pandr/coldcallbot/internal/crm"
	"github.com/pandr/coldcallbot/internal/ingest"
	"github.com/pandr/coldcallbot/internal/metrics"
)

// Pusher mirrors accepted records to the web dashboard. A nil Pusher
// disables sync entirely.
type Pusher interface {
	PushProfile(crm.Profile) error
	PushCallResult(crm.CallResult) error
}

type Bot struct {
	api   *tele.Bot
	store *crm.Store
	push  Pusher
	log   *zap.Logger
	cfg   Config

	// openFile overrides document downloads in tests.
	openFile func(doc *tele.Document) (io.ReadCloser, error)
}

type Config struct {
	Token     string
	GroupID   int64  // chat recorded call results are forwarded to
	WebappURL string // shown in /help; sync itself goes through Pusher
}

func New(cfg Config, store *crm.Store, push Pusher, log *zap.Logger) (*Bot, error) {
	pref := tele.Settings{
		Token:  cfg.Token,
		Poller: &tele.LongPoller{Timeout: 10 * time.Second},
		OnError: func(err error, c tele.Context) {
			log.Error("handler failed", zap.Error(err))
			if c != nil {
				_ = c.Send(noticeInternalError)
			}
		},
	}

	api, err := tele.NewBot(pref)
	if err != nil {
		return nil, err
	}

	bot := &Bot{api: api, store: store, push: push, log: log, cfg: cfg}
	bot.api.Use(middleware.Recover())
	bot.register()
	return bot, nil
}

// Start begins long polling and blocks until Stop is called.
func (b *Bot) Start() {
	b.log.Info("bot online", zap.String("username", b.api.Me.Username))
	b.api.Start()
}

func (b *Bot) Stop() {
	b.api.Stop()
}

func (b *Bot) register() {
	b.api.Handle("/start", b.handleStart)
	b.api.Handle("/stats", b.handleStats)
	b.api.Handle("/inbox", b.handleInbox)
	b.api.Handle("/clear_inbox", b.handleClearInbox)
	b.api.Handle("/help", b.handleHelp)

	b.api.Handle(tele.OnDocument, b.handleDocument)
	b.api.Handle(tele.OnText, b.handleText)
}

func (b *Bot) handleStart(c tele.Context) error {
	return c.Send(welcomeText, &tele.SendOptions{ParseMode: tele.ModeMarkdown})
}

func (b *Bot) handleHelp(c tele.Context) error {
	return c.Send(helpText(b.cfg.WebappURL), &tele.SendOptions{ParseMode: tele.ModeMarkdown})
}

func (b *Bot) handleStats(c tele.Context) error {
	return c.Send(statsText(b.store.Stats()), &tele.SendOptions{ParseMode: tele.ModeMarkdown})
}

func (b *Bot) handleInbox(c tele.Context) error {
	profiles := b.store.ListInbox()
	if len(profiles) == 0 {
		return c.Send(noticeEmptyInbox)
	}
	return c.Send(inboxText(profiles), &tele.SendOptions{ParseMode: tele.ModeMarkdown})
}

func (b *Bot) handleClearInbox(c tele.Context) error {
	n := b.store.ClearInbox()
	metrics.SetInboxSize(0)
	b.log.Info("inbox cleared", zap.Int("count", n))
	return c.Send(clearedText(n))
}

// handleDocument accepts uploaded .json files. Documents only ever carry
// profiles; call results arrive as text.
func (b *Bot) handleDocument(c tele.Context) error {
	msg := c.Message()
	if msg == nil || msg.Document == nil {
		return nil
	}
	doc := msg.Document

	if !strings.HasSuffix(doc.FileName, ".json") {
		metrics.RecordReject("not-json-file")
		return c.Send(noticeNotJSONFile)
	}

	rc, err := b.openDocument(doc)
	if err != nil {
		b.log.Error("document download failed", zap.String("file", doc.FileName), zap.Error(err))
		return c.Send(fmt.Sprintf("❌ Error processing file: %v", err))
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		b.log.Error("document read failed", zap.String("file", doc.FileName), zap.Error(err))
		return c.Send(fmt.Sprintf("❌ Error processing file: %v", err))
	}

	p, err := ingest.DecodeProfile(data, metaFor(msg))
	switch {
	case errors.Is(err, ingest.ErrMissingNameFields):
		metrics.RecordReject("missing-names")
		return c.Send(noticeMissingNames)
	case err != nil:
		metrics.RecordReject("bad-payload")
		return c.Send(noticeBadFile)
	}

	total := b.store.AddProfile(p)
	metrics.RecordMessage("profile")
	metrics.RecordProfileIngested(total)
	b.log.Info("profile ingested",
		zap.String("id", p.ID),
		zap.String("from", p.ReceivedFrom),
		zap.Int("inbox", total))
	b.syncProfile(p)
	return c.Send(profileAddedText(p, total, true), &tele.SendOptions{ParseMode: tele.ModeMarkdown})
}

// handleText classifies pasted JSON. Anything not shaped like a JSON object
// gets the gentle usage hint instead of an error.
func (b *Bot) handleText(c tele.Context) error {
	msg := c.Message()
	if msg == nil {
		return nil
	}

	text := strings.TrimSpace(msg.Text)
	if !strings.HasPrefix(text, "{") || !strings.HasSuffix(text, "}") {
		return c.Send(noticePlainText)
	}

	res, err := ingest.Classify([]byte(text), metaFor(msg))
	switch {
	case errors.Is(err, ingest.ErrUnknownSchema):
		metrics.RecordMessage("unknown")
		metrics.RecordReject("unknown-schema")
		return c.Send(noticeUnknownSchema)
	case err != nil:
		metrics.RecordReject("bad-payload")
		return c.Send(noticeBadJSON)
	}

	switch res.Kind {
	case ingest.KindProfile:
		total := b.store.AddProfile(res.Profile)
		metrics.RecordMessage("profile")
		metrics.RecordProfileIngested(total)
		b.log.Info("profile ingested",
			zap.String("id", res.Profile.ID),
			zap.String("from", res.Profile.ReceivedFrom),
			zap.Int("inbox", total))
		b.syncProfile(res.Profile)
		return c.Send(profileAddedText(res.Profile, total, false), &tele.SendOptions{ParseMode: tele.ModeMarkdown})

	case ingest.KindCallResult:
		b.store.AddCallResult(res.CallResult)
		metrics.RecordMessage("call-result")
		metrics.RecordCallResultIngested()
		b.log.Info("call result recorded",
			zap.String("outcome", res.CallResult.Outcome),
			zap.String("script", res.CallResult.ScriptName))
		b.forwardResult(res.CallResult)
		b.syncCallResult(res.CallResult)
		return c.Send(noticeCallRecorded)
	}
	return nil
}

func (b *Bot) openDocument(doc *tele.Document) (io.ReadCloser, error) {
	if b.openFile != nil {
		return b.openFile(doc)
	}
	return b.api.File(&doc.File)
}

// forwardResult posts a recorded result to the results group, matching the
// "posted automatically" promise in the welcome text.
func (b *Bot) forwardResult(r crm.CallResult) {
	if b.api == nil || b.cfg.GroupID == 0 {
		return
	}
	group := &tele.Chat{ID: b.cfg.GroupID}
	if _, err := b.api.Send(group, callResultText(r), &tele.SendOptions{ParseMode: tele.ModeMarkdown}); err != nil {
		b.log.Warn("result forward failed", zap.Int64("group", b.cfg.GroupID), zap.Error(err))
	}
}

func (b *Bot) syncProfile(p crm.Profile) {
	if b.push == nil {
		return
	}
	go func() {
		if err := b.push.PushProfile(p); err != nil {
			metrics.RecordWebappPush("error")
			b.log.Warn("webapp profile sync failed", zap.Error(err))
			return
		}
		metrics.RecordWebappPush("ok")
	}()
}

func (b *Bot) syncCallResult(r crm.CallResult) {
	if b.push == nil {
		return
	}
	go func() {
		if err := b.push.PushCallResult(r); err != nil {
			metrics.RecordWebappPush("error")
			b.log.Warn("webapp call result sync failed", zap.Error(err))
			return
		}
		metrics.RecordWebappPush("ok")
	}()
}

func metaFor(msg *tele.Message) ingest.Meta {
	m := ingest.Meta{ReceivedAt: time.Now()}
	if msg.Sender != nil {
		m.ReceivedFrom = msg.Sender.Username
		if m.ReceivedFrom == "" {
			m.ReceivedFrom = msg.Sender.FirstName
		}
	}
	return m
}
