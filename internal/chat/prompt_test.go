package chat

import (
	"strings"
	"testing"

	"github.com/evotyindia/chatbot-project-intel-hpe/internal/llm"
)

func TestBuildMessagesStructure(t *testing.T) {
	history := []Exchange{{User: "q1", Assistant: "a1"}}
	messages := BuildMessages("instruction", "campus facts", history, "q2")

	if len(messages) != 4 {
		t.Fatalf("expected 4 messages, got %d", len(messages))
	}
	if messages[0].Role != llm.RoleSystem {
		t.Error("first message must be the system message")
	}
	sys := messages[0].Content
	if !strings.Contains(sys, "instruction") || !strings.Contains(sys, "campus facts") {
		t.Error("system message must carry the instruction and context")
	}
	if !strings.Contains(sys, "university information provided below first") {
		t.Error("system message must carry the grounding directive")
	}
	if messages[1].Role != llm.RoleUser || messages[2].Role != llm.RoleAssistant {
		t.Error("history must alternate user/assistant")
	}
	if messages[3].Role != llm.RoleUser || messages[3].Content != "q2" {
		t.Error("final message must be the current user message")
	}
}

func TestBuildMessagesEmptyContext(t *testing.T) {
	messages := BuildMessages("instruction", "", nil, "hello")
	if strings.Contains(messages[0].Content, "UNIVERSITY INFORMATION") {
		t.Error("empty context must not add a context block")
	}
}

func TestGroundingDirectiveAllowsGeneralKnowledge(t *testing.T) {
	messages := BuildMessages("instruction", "", nil, "Who is the dean?")
	sys := messages[0].Content

	if !strings.Contains(sys, "general knowledge") {
		t.Error("directive must allow falling back to general knowledge")
	}
	if !strings.Contains(sys, "Never refuse") {
		t.Error("directive must forbid refusing outright")
	}
	if strings.Contains(sys, "ONLY") {
		t.Error("directive must not restrict answers to the context block")
	}
	if strings.Contains(sys, "don't have that information") {
		t.Error("directive must not instruct the model to refuse")
	}
}

func TestBuildMessagesTrimsHistory(t *testing.T) {
	var history []Exchange
	for i := 0; i < 10; i++ {
		history = append(history, Exchange{User: "question", Assistant: "answer"})
	}
	messages := BuildMessages("i", "ctx", history, "current")
	// system + 5 exchanges + current
	if len(messages) != 12 {
		t.Errorf("expected history trimmed to 5 exchanges, got %d messages", len(messages))
	}
}

func TestBuildMessagesDropsOldestToFit(t *testing.T) {
	big := strings.Repeat("x", 35000)
	history := []Exchange{
		{User: "old " + big, Assistant: big},
		{User: "recent question", Assistant: "recent answer"},
	}
	messages := BuildMessages("i", "ctx", history, "current")

	total := 0
	for _, m := range messages {
		total += len(m.Content)
	}
	if total > maxPromptChars {
		t.Errorf("prompt exceeds bound: %d chars", total)
	}
	for _, m := range messages {
		if strings.HasPrefix(m.Content, "old ") {
			t.Error("oldest exchange should have been dropped")
		}
	}
	found := false
	for _, m := range messages {
		if m.Content == "recent question" {
			found = true
		}
	}
	if !found {
		t.Error("recent exchange should survive")
	}
}

func TestBuildMessagesNeverTruncatesContext(t *testing.T) {
	ctx := strings.Repeat("fact ", 20000) // well past the prompt bound on its own
	messages := BuildMessages("i", ctx, []Exchange{{User: "q", Assistant: "a"}}, "current")

	if !strings.Contains(messages[0].Content, ctx) {
		t.Error("context block must be carried whole")
	}
	// All history is dropped instead.
	if len(messages) != 2 {
		t.Errorf("expected only system and current message, got %d", len(messages))
	}
}
