package anthropic

import (
	"testing"

	"branching-chat-be/pkg/llm"
)

func TestParseStreamLine(t *testing.T) {
	tests := []struct {
		name    string
		line    string
		want    string
		wantErr bool
	}{
		{
			name: "text delta",
			line: `data: {"type":"content_block_delta","index":0,"delta":{"type":"text_delta","text":"Hello"}}`,
			want: "Hello",
		},
		{
			name: "non-text delta",
			line: `data: {"type":"content_block_delta","index":0,"delta":{"type":"input_json_delta","partial_json":"{}"}}`,
			want: "",
		},
		{
			name: "event marker line",
			line: "event: content_block_delta",
			want: "",
		},
		{
			name: "message stop",
			line: `data: {"type":"message_stop"}`,
			want: "",
		},
		{
			name: "blank keepalive",
			line: "",
			want: "",
		},
		{
			name:    "stream error event",
			line:    `data: {"type":"error","error":{"type":"overloaded_error","message":"Overloaded"}}`,
			wantErr: true,
		},
		{
			name:    "malformed payload",
			line:    `data: {not json`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseStreamLine(tt.line)

			if (err != nil) != tt.wantErr {
				t.Errorf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("fragment = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSplitSystem(t *testing.T) {
	history := []llm.Message{
		{Role: "system", Content: "Be terse."},
		{Role: "user", Content: "Hi"},
		{Role: "assistant", Content: "Hello"},
	}

	system, messages := splitSystem(history)

	if system != "Be terse." {
		t.Errorf("system = %q, want %q", system, "Be terse.")
	}
	if len(messages) != 2 {
		t.Fatalf("messages = %d, want 2", len(messages))
	}
	if messages[0].Role != "user" || messages[1].Role != "assistant" {
		t.Errorf("roles = %q, %q; system turn should be lifted out", messages[0].Role, messages[1].Role)
	}
}
