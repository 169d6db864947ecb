package support

import "strings"

// Keywords trigger an escalation offer when they appear anywhere in a user message.
var Keywords = []string{
	"contact", "not helpful", "dont understand", "don't understand", "escalate",
	"talk to human", "speak with representative",
	"kontakt", "hilfe", "verstehe nicht", "eskalieren", "mit mensch sprechen",
}

// NeedsEscalation is a case-insensitive substring match against Keywords.
func NeedsEscalation(message string) bool {
	text := strings.ToLower(message)
	for _, keyword := range Keywords {
		if strings.Contains(text, strings.ToLower(keyword)) {
			return true
		}
	}
	return false
}
