package tokenizer

import (
	"reflect"
	"testing"
)

func TestTokenize(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{
			name: "simple sentence",
			text: "The dog runs fast.",
			want: []string{"the", "dog", "runs", "fast"},
		},
		{
			name: "mixed case",
			text: "HELLO World",
			want: []string{"hello", "world"},
		},
		{
			name: "punctuation dropped",
			text: `"Wait," she said; then: silence!`,
			want: []string{"wait", "she", "said", "then", "silence"},
		},
		{
			name: "kept symbols",
			text: "3+4=7 is 100% true",
			want: []string{"3", "+", "4", "=", "7", "is", "100", "%", "true"},
		},
		{
			name: "contractions split",
			text: "don't stop",
			want: []string{"don", "t", "stop"},
		},
		{
			name: "digits",
			text: "Room 101 awaits",
			want: []string{"room", "101", "awaits"},
		},
		{
			name: "empty",
			text: "",
			want: []string{},
		},
		{
			name: "whitespace only",
			text: "   \t\n  ",
			want: []string{},
		},
		{
			name: "punctuation only",
			text: "?!...,",
			want: []string{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Tokenize(tt.text)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Tokenize(%q) = %v, want %v", tt.text, got, tt.want)
			}
		})
	}
}

func TestTokenizeDeterministic(t *testing.T) {
	text := "The quick brown fox, they say, jumps over 2 lazy dogs!"
	first := Tokenize(text)
	for i := 0; i < 100; i++ {
		if got := Tokenize(text); !reflect.DeepEqual(got, first) {
			t.Fatalf("run %d produced %v, first run produced %v", i, got, first)
		}
	}
}
