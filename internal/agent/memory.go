package agent

import (
	"fmt"

	"codegraph/internal/llm"
)

// memory is the sliding conversation window §4.6 describes: it retains the
// last 2*stepBudget messages and summarizes everything older exactly once,
// following the same budget-then-cap shape as the teacher's tiered context
// builder (allocate a budget, and once something falls outside it, fold it
// into a single rolled-up entry rather than re-processing it every turn).
type memory struct {
	stepBudget     int
	messages       []llm.Message
	summaryMessage *llm.Message // nil until the first compaction
}

func newMemory(stepBudget int, system llm.Message) *memory {
	return &memory{
		stepBudget: stepBudget,
		messages:   []llm.Message{system},
	}
}

func (m *memory) windowSize() int {
	n := 2 * m.stepBudget
	if n < 2 {
		n = 2
	}
	return n
}

// Append adds msg, then compacts the window if it has grown past budget.
// The system prompt (messages[0]) is never folded into the summary.
func (m *memory) Append(msg llm.Message) {
	m.messages = append(m.messages, msg)
	m.compact()
}

func (m *memory) compact() {
	limit := m.windowSize()
	if len(m.messages) <= limit+1 { // +1 for the system message
		return
	}

	system := m.messages[0]
	rest := m.messages[1:]
	if m.summaryMessage != nil {
		rest = m.messages[2:] // messages[1] is the summary itself
	}
	keep := limit
	if keep > len(rest) {
		keep = len(rest)
	}
	splitIndex := len(rest) - keep
	toFold := rest[:splitIndex]
	recent := rest[splitIndex:]

	if m.summaryMessage == nil {
		m.summaryMessage = summarizeTurns(toFold)
	} else {
		// Already summarized once; fold the newly-expired turns into the
		// existing summary text rather than re-summarizing from scratch.
		m.summaryMessage.Content = m.summaryMessage.Content + "; " + summarizeTurns(toFold).Content
	}

	newMessages := make([]llm.Message, 0, 2+len(recent))
	newMessages = append(newMessages, system, *m.summaryMessage)
	newMessages = append(newMessages, recent...)
	m.messages = newMessages
}

func summarizeTurns(turns []llm.Message) *llm.Message {
	return &llm.Message{
		Role:    llm.RoleAssistant,
		Content: fmt.Sprintf("[earlier reasoning summarized: %d turns omitted for brevity]", len(turns)),
	}
}

// Messages returns the current window, suitable for passing to Chat.
func (m *memory) Messages() []llm.Message {
	out := make([]llm.Message, len(m.messages))
	copy(out, m.messages)
	return out
}
