package language

import (
	"strings"
	"testing"
)

func TestToISO2(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"en", "en"},
		{"EN", "en"},
		{"eng", "en"},
		{"fre", "fr"},
		{"chi", "zh"},
		{"zho", "zh"},
		{"chinese", "zh"},
		{"zh-Hans", "zh"},
		{"zh-CN", "zh"},
		{"pt-BR", "pt"},
		{"ja-JP", "ja"},
		{"xy", "xy"},
		{"", ""},
		{" ", ""},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := ToISO2(tt.input); got != tt.expected {
				t.Errorf("ToISO2(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestDisplayName(t *testing.T) {
	if got := DisplayName("en"); got != "English" {
		t.Fatalf("got %q want English", got)
	}
	if got := DisplayName("jpn"); got != "Japanese" {
		t.Fatalf("got %q want Japanese", got)
	}
	if got := DisplayName("zh-Hans"); !strings.Contains(got, "Chinese") {
		t.Fatalf("expected Chinese in %q", got)
	}
	if got := DisplayName(""); got != "Unknown" {
		t.Fatalf("got %q want Unknown", got)
	}
}

func TestHasScript(t *testing.T) {
	tests := []struct {
		text string
		code string
		want bool
	}{
		{"你好，世界", "zh", true},
		{"Hello world", "zh", false},
		{"Hello 世界", "zh-Hans", true},
		{"こんにちは", "ja", true},
		{"カタカナ", "ja", true},
		{"안녕하세요", "ko", true},
		{"안녕하세요", "zh", false},
		{"Привет", "ru", true},
		{"مرحبا", "ar", true},
		{"नमस्ते", "hi", true},
		{"漢字", "unknown-lang", true},
		{"", "zh", false},
		{"12:00 -->", "zh", false},
	}
	for _, tt := range tests {
		if got := HasScript(tt.text, tt.code); got != tt.want {
			t.Errorf("HasScript(%q, %q) = %v, want %v", tt.text, tt.code, got, tt.want)
		}
	}
}

func TestMatcherMatchesHasScript(t *testing.T) {
	isTarget := Matcher("zh")
	for _, text := range []string{"中文", "English", "[UNTRANSLATED]", "混合 mixed"} {
		if isTarget(text) != HasScript(text, "zh") {
			t.Fatalf("Matcher and HasScript disagree on %q", text)
		}
	}
}
