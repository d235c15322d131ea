package chat

import (
	"strings"

	"github.com/evotyindia/chatbot-project-intel-hpe/internal/llm"
)

// groundingDirective sets the answering policy: the provided data comes
// first, general knowledge fills the gaps, and the assistant never refuses
// outright.
const groundingDirective = "Answer from the university information provided below first. " +
	"If the information needed is not in it, answer from your general knowledge " +
	"about university systems and note that it is general information the student " +
	"should verify with the admissions office. Never refuse to help."

// BuildMessages assembles the message list sent to the model: a system
// message carrying the instruction, grounding directive, and context block,
// the trailing conversation history, then the current user message.
//
// The total is bounded at maxPromptChars by dropping history oldest-first.
// The context block is never cut: a partial context would silently change
// which facts answers are grounded on.
func BuildMessages(systemInstruction, contextBlock string, history []Exchange, message string) []llm.Message {
	var sys strings.Builder
	sys.WriteString(systemInstruction)
	sys.WriteString("\n\n")
	sys.WriteString(groundingDirective)
	if contextBlock != "" {
		sys.WriteString("\n\nUNIVERSITY INFORMATION:\n")
		sys.WriteString(contextBlock)
	}

	if len(history) > maxHistoryExchanges {
		history = history[len(history)-maxHistoryExchanges:]
	}

	fixed := sys.Len() + len(message)
	for len(history) > 0 && fixed+historyLen(history) > maxPromptChars {
		history = history[1:]
	}

	messages := make([]llm.Message, 0, 2*len(history)+2)
	messages = append(messages, llm.Message{Role: llm.RoleSystem, Content: sys.String()})
	for _, ex := range history {
		messages = append(messages, llm.Message{Role: llm.RoleUser, Content: ex.User})
		messages = append(messages, llm.Message{Role: llm.RoleAssistant, Content: ex.Assistant})
	}
	messages = append(messages, llm.Message{Role: llm.RoleUser, Content: message})
	return messages
}

func historyLen(history []Exchange) int {
	n := 0
	for _, ex := range history {
		n += len(ex.User) + len(ex.Assistant)
	}
	return n
}
