package bot

import (
	"fmt"
	"strings"

	"github.com/pandr/coldcallbot/internal/crm"
)

// All chat-facing text lives here. Everything Markdown-heavy is built by a
// function; one-line notices are plain constants.

const (
	noticeNotJSONFile   = "❌ Please send a valid JSON file."
	noticeBadFile       = "❌ Invalid JSON file. Please check the format."
	noticeMissingNames  = "❌ Invalid profile. Must include firstName and lastName."
	noticeBadJSON       = "❌ Invalid JSON format."
	noticeUnknownSchema = "❌ Unknown JSON format. Send a profile or call result."
	noticeCallRecorded  = "✅ Call result recorded!"
	noticePlainText     = "Send me a JSON profile file or use /help to see available commands."
	noticeInternalError = "❌ An error occurred. Please try again or contact support."
	noticeEmptyInbox    = "📭 Inbox is empty. Send a profile JSON to add one!"
)

const welcomeText = `🎯 **Cold Call Bot** - Welcome!

**Commands:**
/start - Show this welcome message
/stats - View overall statistics
/inbox - View profiles in inbox
/clear_inbox - Clear all profiles from inbox
/help - Show help information

**How to use:**
1. Send a JSON profile file or text to add it to inbox
2. Call results will be automatically posted here
3. Use /stats to see your performance

Send me a profile JSON to get started!`

func helpText(webappURL string) string {
	if webappURL == "" {
		webappURL = "(not configured)"
	}
	return fmt.Sprintf(`📚 **Help - Cold Call Bot**

**Profile Format:**
Send JSON file or text:
`+"```json"+`
{
  "firstName": "John",
  "lastName": "Doe",
  "company": "Tech Corp",
  "position": "Engineer",
  "phoneNumber": "+1234567890",
  "city": "New York",
  "state": "NY"
}
`+"```"+`

**Features:**
• Profiles automatically sync to web app
• Call results posted automatically
• Statistics tracking
• Easy inbox management

**Web App Integration:**
Bot syncs with: %s`, webappURL)
}

func statsText(st crm.CallStats) string {
	avg, err := crm.FormatDuration(st.AvgDurationSecs)
	if err != nil {
		avg = "0:00"
	}

	var sb strings.Builder
	sb.WriteString("📊 **Overall Statistics**\n\n")
	sb.WriteString("**Call Summary:**\n")
	fmt.Fprintf(&sb, "• Total Calls: %d\n", st.Total)
	fmt.Fprintf(&sb, "• Won: %d ✅\n", st.Won)
	fmt.Fprintf(&sb, "• Lost: %d ❌\n", st.Lost)
	fmt.Fprintf(&sb, "• Follow-up: %d 📝\n", st.FollowUp)
	fmt.Fprintf(&sb, "• Win Rate: %.1f%%\n", st.WinRate)
	sb.WriteString("\n**Performance:**\n")
	fmt.Fprintf(&sb, "• Avg Duration: %s\n", avg)
	fmt.Fprintf(&sb, "• Positive Responses: %d 👍\n", st.TotalPositive)
	fmt.Fprintf(&sb, "• Negative Responses: %d 👎\n", st.TotalNegative)
	fmt.Fprintf(&sb, "• Neutral Responses: %d 😐\n", st.TotalNeutral)
	fmt.Fprintf(&sb, "\n**Sentiment Score:** %d", st.SentimentScore())
	return sb.String()
}

func inboxText(profiles []crm.Profile) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "📬 **Inbox (%d profiles)**\n\n", len(profiles))
	for i, p := range profiles {
		fmt.Fprintf(&sb, "%d. **%s %s**\n", i+1, orNA(p.FirstName), orNA(p.LastName))
		fmt.Fprintf(&sb, "   • Company: %s\n", orNA(p.Company))
		fmt.Fprintf(&sb, "   • Phone: %s\n", orNA(p.PhoneNumber))
		fmt.Fprintf(&sb, "   • Location: %s, %s\n\n", orNA(p.City), orNA(p.State))
	}
	return strings.TrimRight(sb.String(), "\n")
}

// profileAddedText confirms an accepted profile. Uploaded files echo the
// phone number; pasted text keeps the shorter form.
func profileAddedText(p crm.Profile, total int, showPhone bool) string {
	var sb strings.Builder
	sb.WriteString("✅ **Profile Added to Inbox**\n\n")
	fmt.Fprintf(&sb, "**Name:** %s %s\n", p.FirstName, p.LastName)
	fmt.Fprintf(&sb, "**Company:** %s\n", orNA(p.Company))
	if showPhone {
		fmt.Fprintf(&sb, "**Phone:** %s\n", orNA(p.PhoneNumber))
	}
	fmt.Fprintf(&sb, "\nTotal profiles in inbox: %d", total)
	return sb.String()
}

func clearedText(n int) string {
	return fmt.Sprintf("🗑️ Cleared %d profiles from inbox.", n)
}

// callResultText is the copy forwarded to the results group.
func callResultText(r crm.CallResult) string {
	var sb strings.Builder
	sb.WriteString("📞 **Call Result**\n\n")
	fmt.Fprintf(&sb, "**Outcome:** %s\n", r.Outcome)
	fmt.Fprintf(&sb, "**Script:** %s\n", r.ScriptName)
	if d, err := crm.FormatDuration(r.Duration); err == nil {
		fmt.Fprintf(&sb, "**Duration:** %s\n", d)
	}
	fmt.Fprintf(&sb, "**Sentiment:** %d 👍 / %d 👎 / %d 😐\n", r.Stats.Positive, r.Stats.Negative, r.Stats.Neutral)
	if r.ReceivedFrom != "" {
		fmt.Fprintf(&sb, "\nRecorded by %s", r.ReceivedFrom)
	}
	return sb.String()
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}
