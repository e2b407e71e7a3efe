package bot

import (
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"

	"github.com/pandr/coldcallbot/internal/crm"
)

// MockContext definition for internal use
type MockContext struct {
	tele.Context
	Msg     *tele.Message
	SentMsg interface{}
}

func (m *MockContext) Message() *tele.Message {
	return m.Msg
}
func (m *MockContext) Send(what interface{}, opts ...interface{}) error {
	m.SentMsg = what
	return nil
}

func newTestBot() *Bot {
	return &Bot{
		store: crm.NewStore(),
		log:   zap.NewNop(),
		cfg:   Config{WebappURL: "https://dash.example.com"},
	}
}

func sent(t *testing.T, ctx *MockContext) string {
	t.Helper()
	msg, ok := ctx.SentMsg.(string)
	if !ok {
		t.Fatalf("nothing sent, got %v", ctx.SentMsg)
	}
	return msg
}

const profileJSON = `{"firstName":"Ada","lastName":"Lovelace","company":"Analytical Engines","phoneNumber":"+1-555-0100","city":"London","state":"UK"}`
const callResultJSON = `{"outcome":"won","scriptName":"discovery-v2","duration":125,"stats":{"positive":3,"negative":1,"neutral":2}}`

func TestCommandHandlers(t *testing.T) {
	b := newTestBot()

	t.Run("Start", func(t *testing.T) {
		ctx := &MockContext{Msg: &tele.Message{}}
		if err := b.handleStart(ctx); err != nil {
			t.Fatal(err)
		}
		if !strings.Contains(sent(t, ctx), "🎯 **Cold Call Bot** - Welcome!") {
			t.Errorf("Expected welcome, got: %s", sent(t, ctx))
		}
	})

	t.Run("Help", func(t *testing.T) {
		ctx := &MockContext{Msg: &tele.Message{}}
		if err := b.handleHelp(ctx); err != nil {
			t.Fatal(err)
		}
		msg := sent(t, ctx)
		if !strings.Contains(msg, "📚 **Help - Cold Call Bot**") {
			t.Errorf("Expected help header, got: %s", msg)
		}
		if !strings.Contains(msg, "https://dash.example.com") {
			t.Errorf("Expected webapp url in help, got: %s", msg)
		}
	})

	t.Run("Stats Empty", func(t *testing.T) {
		ctx := &MockContext{Msg: &tele.Message{}}
		if err := b.handleStats(ctx); err != nil {
			t.Fatal(err)
		}
		msg := sent(t, ctx)
		for _, want := range []string{
			"📊 **Overall Statistics**",
			"• Total Calls: 0",
			"• Win Rate: 0.0%",
			"• Avg Duration: 0:00",
			"**Sentiment Score:** 0",
		} {
			if !strings.Contains(msg, want) {
				t.Errorf("Missing %q in: %s", want, msg)
			}
		}
	})

	t.Run("Inbox Empty", func(t *testing.T) {
		ctx := &MockContext{Msg: &tele.Message{}}
		if err := b.handleInbox(ctx); err != nil {
			t.Fatal(err)
		}
		if sent(t, ctx) != noticeEmptyInbox {
			t.Errorf("Expected empty inbox notice, got: %s", sent(t, ctx))
		}
	})

	t.Run("Clear Empty", func(t *testing.T) {
		ctx := &MockContext{Msg: &tele.Message{}}
		if err := b.handleClearInbox(ctx); err != nil {
			t.Fatal(err)
		}
		if sent(t, ctx) != "🗑️ Cleared 0 profiles from inbox." {
			t.Errorf("Expected zero cleared, got: %s", sent(t, ctx))
		}
	})
}

func TestTextProfileFlow(t *testing.T) {
	b := newTestBot()

	ctx := &MockContext{Msg: &tele.Message{
		Text:   profileJSON,
		Sender: &tele.User{Username: "closer_joe"},
	}}
	if err := b.handleText(ctx); err != nil {
		t.Fatal(err)
	}

	msg := sent(t, ctx)
	if !strings.Contains(msg, "✅ **Profile Added to Inbox**") {
		t.Errorf("Expected confirmation, got: %s", msg)
	}
	if !strings.Contains(msg, "**Name:** Ada Lovelace") {
		t.Errorf("Expected name echo, got: %s", msg)
	}
	if !strings.Contains(msg, "Total profiles in inbox: 1") {
		t.Errorf("Expected running count, got: %s", msg)
	}
	// Pasted profiles keep the short confirmation without the phone line.
	if strings.Contains(msg, "**Phone:**") {
		t.Errorf("Text confirmation should omit phone, got: %s", msg)
	}

	if b.store.InboxSize() != 1 {
		t.Errorf("Expected 1 profile stored, got %d", b.store.InboxSize())
	}
	p := b.store.ListInbox()[0]
	if p.ReceivedFrom != "closer_joe" {
		t.Errorf("Expected sender stamp, got: %q", p.ReceivedFrom)
	}
	if p.ID == "" {
		t.Error("Expected assigned profile id")
	}

	// Inbox listing shows the stored entry.
	lst := &MockContext{Msg: &tele.Message{}}
	if err := b.handleInbox(lst); err != nil {
		t.Fatal(err)
	}
	listing := sent(t, lst)
	for _, want := range []string{
		"📬 **Inbox (1 profiles)**",
		"1. **Ada Lovelace**",
		"• Company: Analytical Engines",
		"• Phone: +1-555-0100",
		"• Location: London, UK",
	} {
		if !strings.Contains(listing, want) {
			t.Errorf("Missing %q in listing: %s", want, listing)
		}
	}
}

func TestTextProfileFallsBackToFirstName(t *testing.T) {
	b := newTestBot()

	ctx := &MockContext{Msg: &tele.Message{
		Text:   profileJSON,
		Sender: &tele.User{FirstName: "Joe"},
	}}
	if err := b.handleText(ctx); err != nil {
		t.Fatal(err)
	}
	if got := b.store.ListInbox()[0].ReceivedFrom; got != "Joe" {
		t.Errorf("Expected first-name fallback, got: %q", got)
	}
}

func TestTextCallResultFlow(t *testing.T) {
	b := newTestBot()

	ctx := &MockContext{Msg: &tele.Message{Text: callResultJSON}}
	if err := b.handleText(ctx); err != nil {
		t.Fatal(err)
	}
	if sent(t, ctx) != noticeCallRecorded {
		t.Errorf("Expected recorded notice, got: %s", sent(t, ctx))
	}

	stats := &MockContext{Msg: &tele.Message{}}
	if err := b.handleStats(stats); err != nil {
		t.Fatal(err)
	}
	msg := sent(t, stats)
	for _, want := range []string{
		"• Total Calls: 1",
		"• Won: 1 ✅",
		"• Win Rate: 100.0%",
		"• Avg Duration: 2:05",
		"• Positive Responses: 3 👍",
		"**Sentiment Score:** 2",
	} {
		if !strings.Contains(msg, want) {
			t.Errorf("Missing %q in: %s", want, msg)
		}
	}
}

func TestTextRejections(t *testing.T) {
	cases := []struct {
		name string
		text string
		want string
	}{
		{"Unknown Schema", `{"foo":"bar"}`, noticeUnknownSchema},
		{"Half Profile", `{"firstName":"Ada"}`, noticeUnknownSchema},
		{"Broken JSON", `{"broken": }`, noticeBadJSON},
		{"Plain Text", "hello there", noticePlainText},
		{"Not An Object", "[1,2,3]", noticePlainText},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			b := newTestBot()
			ctx := &MockContext{Msg: &tele.Message{Text: tc.text}}
			if err := b.handleText(ctx); err != nil {
				t.Fatal(err)
			}
			if sent(t, ctx) != tc.want {
				t.Errorf("Expected %q, got: %s", tc.want, sent(t, ctx))
			}
			if b.store.InboxSize() != 0 || b.store.Stats().Total != 0 {
				t.Error("Rejected payload must not be stored")
			}
		})
	}
}

func TestClearInboxAfterAdds(t *testing.T) {
	b := newTestBot()

	for i := 0; i < 2; i++ {
		ctx := &MockContext{Msg: &tele.Message{Text: profileJSON}}
		if err := b.handleText(ctx); err != nil {
			t.Fatal(err)
		}
	}

	clearCtx := &MockContext{Msg: &tele.Message{}}
	if err := b.handleClearInbox(clearCtx); err != nil {
		t.Fatal(err)
	}
	if sent(t, clearCtx) != "🗑️ Cleared 2 profiles from inbox." {
		t.Errorf("Expected cleared count, got: %s", sent(t, clearCtx))
	}

	after := &MockContext{Msg: &tele.Message{}}
	if err := b.handleInbox(after); err != nil {
		t.Fatal(err)
	}
	if sent(t, after) != noticeEmptyInbox {
		t.Errorf("Expected empty inbox after clear, got: %s", sent(t, after))
	}
}

func TestDocumentHandlers(t *testing.T) {
	docMsg := func(name string) *tele.Message {
		return &tele.Message{
			Document: &tele.Document{FileName: name},
			Sender:   &tele.User{Username: "closer_joe"},
		}
	}
	withFile := func(b *Bot, content string) {
		b.openFile = func(doc *tele.Document) (io.ReadCloser, error) {
			return io.NopCloser(strings.NewReader(content)), nil
		}
	}

	t.Run("Rejects Non JSON Filename", func(t *testing.T) {
		b := newTestBot()
		ctx := &MockContext{Msg: docMsg("leads.txt")}
		if err := b.handleDocument(ctx); err != nil {
			t.Fatal(err)
		}
		if sent(t, ctx) != noticeNotJSONFile {
			t.Errorf("Expected file-type rejection, got: %s", sent(t, ctx))
		}
	})

	t.Run("Profile Upload", func(t *testing.T) {
		b := newTestBot()
		withFile(b, profileJSON)
		ctx := &MockContext{Msg: docMsg("lead.json")}
		if err := b.handleDocument(ctx); err != nil {
			t.Fatal(err)
		}
		msg := sent(t, ctx)
		if !strings.Contains(msg, "✅ **Profile Added to Inbox**") {
			t.Errorf("Expected confirmation, got: %s", msg)
		}
		// Uploads echo the phone line.
		if !strings.Contains(msg, "**Phone:** +1-555-0100") {
			t.Errorf("Upload confirmation should show phone, got: %s", msg)
		}
		if b.store.InboxSize() != 1 {
			t.Errorf("Expected stored profile, got %d", b.store.InboxSize())
		}
	})

	t.Run("Missing Names", func(t *testing.T) {
		b := newTestBot()
		withFile(b, `{"company":"Tech Corp"}`)
		ctx := &MockContext{Msg: docMsg("lead.json")}
		if err := b.handleDocument(ctx); err != nil {
			t.Fatal(err)
		}
		if sent(t, ctx) != noticeMissingNames {
			t.Errorf("Expected name validation, got: %s", sent(t, ctx))
		}
	})

	t.Run("Broken File", func(t *testing.T) {
		b := newTestBot()
		withFile(b, "{not json")
		ctx := &MockContext{Msg: docMsg("lead.json")}
		if err := b.handleDocument(ctx); err != nil {
			t.Fatal(err)
		}
		if sent(t, ctx) != noticeBadFile {
			t.Errorf("Expected bad file notice, got: %s", sent(t, ctx))
		}
	})

	t.Run("Download Failure", func(t *testing.T) {
		b := newTestBot()
		b.openFile = func(doc *tele.Document) (io.ReadCloser, error) {
			return nil, errors.New("telegram timeout")
		}
		ctx := &MockContext{Msg: docMsg("lead.json")}
		if err := b.handleDocument(ctx); err != nil {
			t.Fatal(err)
		}
		if !strings.Contains(sent(t, ctx), "❌ Error processing file") {
			t.Errorf("Expected processing error, got: %s", sent(t, ctx))
		}
	})
}

// mockPusher verifies the fire-and-forget dashboard sync.
type mockPusher struct {
	mock.Mock
	pushed chan struct{}
}

func newMockPusher() *mockPusher {
	return &mockPusher{pushed: make(chan struct{}, 2)}
}

func (m *mockPusher) PushProfile(p crm.Profile) error {
	args := m.Called(p)
	m.pushed <- struct{}{}
	return args.Error(0)
}

func (m *mockPusher) PushCallResult(r crm.CallResult) error {
	args := m.Called(r)
	m.pushed <- struct{}{}
	return args.Error(0)
}

func waitPush(t *testing.T, p *mockPusher) {
	t.Helper()
	select {
	case <-p.pushed:
	case <-time.After(2 * time.Second):
		t.Fatal("push never happened")
	}
}

func TestWebappSync(t *testing.T) {
	t.Run("Profile", func(t *testing.T) {
		push := newMockPusher()
		push.On("PushProfile", mock.AnythingOfType("crm.Profile")).Return(nil)

		b := newTestBot()
		b.push = push

		ctx := &MockContext{Msg: &tele.Message{Text: profileJSON}}
		if err := b.handleText(ctx); err != nil {
			t.Fatal(err)
		}
		waitPush(t, push)
		push.AssertExpectations(t)
	})

	t.Run("Call Result", func(t *testing.T) {
		push := newMockPusher()
		push.On("PushCallResult", mock.AnythingOfType("crm.CallResult")).Return(nil)

		b := newTestBot()
		b.push = push

		ctx := &MockContext{Msg: &tele.Message{Text: callResultJSON}}
		if err := b.handleText(ctx); err != nil {
			t.Fatal(err)
		}
		waitPush(t, push)
		push.AssertExpectations(t)
	})

	t.Run("Push Failure Does Not Break Reply", func(t *testing.T) {
		push := newMockPusher()
		push.On("PushProfile", mock.AnythingOfType("crm.Profile")).Return(errors.New("dashboard down"))

		b := newTestBot()
		b.push = push

		ctx := &MockContext{Msg: &tele.Message{Text: profileJSON}}
		if err := b.handleText(ctx); err != nil {
			t.Fatal(err)
		}
		waitPush(t, push)
		if !strings.Contains(sent(t, ctx), "✅ **Profile Added to Inbox**") {
			t.Errorf("Reply must not depend on sync, got: %s", sent(t, ctx))
		}
	})
}
