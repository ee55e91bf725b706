package llm

import (
	"fmt"
	"testing"
)

func turns(n int) []Message {
	var msgs []Message
	for i := 0; i < n; i++ {
		msgs = append(msgs,
			Message{Role: RoleUser, Content: fmt.Sprintf("question %d", i)},
			Message{Role: RoleAssistant, Content: fmt.Sprintf("answer %d", i)},
		)
	}
	return msgs
}

func TestTrimTurns(t *testing.T) {
	tests := []struct {
		name      string
		history   []Message
		limit     int
		wantLen   int
		wantFirst string
	}{
		{"under the limit", turns(3), 5, 6, "question 0"},
		{"at the limit", turns(5), 5, 10, "question 0"},
		{"over the limit keeps newest turns", turns(8), 5, 10, "question 3"},
		{"limit one", turns(4), 1, 2, "question 3"},
		{"zero means unbounded", turns(30), 0, 60, "question 0"},
		{"negative means unbounded", turns(4), -1, 8, "question 0"},
		{"empty history", nil, 5, 0, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := TrimTurns(tt.history, tt.limit)
			if len(got) != tt.wantLen {
				t.Fatalf("len = %d, want %d", len(got), tt.wantLen)
			}
			if tt.wantLen == 0 {
				return
			}
			if got[0].Content != tt.wantFirst {
				t.Errorf("first message = %q, want %q", got[0].Content, tt.wantFirst)
			}
			// A trimmed history always starts a fresh turn.
			if got[0].Role != RoleUser {
				t.Errorf("first message role = %q, want user", got[0].Role)
			}
		})
	}
}
