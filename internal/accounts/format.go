package accounts

import (
	"strings"
	"time"

	tgbot "github.com/go-telegram/bot"
)

// TimestampLayout renders the "Last updated" time, e.g. "3:04:05 PM".
const TimestampLayout = "3:04:05 PM"

var codeEscaper = strings.NewReplacer(`\`, `\\`, "`", "\\`")

// FormatCodeMessage renders the MarkdownV2 body for an account's code:
// the account name in monospace, the code in a fenced block and the
// update time.
func FormatCodeMessage(accountName, code string, at time.Time) string {
	var sb strings.Builder
	sb.WriteString("`")
	sb.WriteString(codeEscaper.Replace(accountName))
	sb.WriteString("`\n\n```")
	sb.WriteString(codeEscaper.Replace(code))
	sb.WriteString("```\n\n")
	sb.WriteString(tgbot.EscapeMarkdown("Last updated: " + at.Format(TimestampLayout)))
	return sb.String()
}
