package segment

import "testing"

func TestEndsWithSentenceFinal(t *testing.T) {
	tests := []struct {
		text string
		want bool
	}{
		{"done.", true},
		{"done!", true},
		{"really?", true},
		{"trailing... ", true},
		{"続きます。", true},
		{"本当？", true},
		{"he said.”", true},
		{"(done.)", true},
		{"done", false},
		{"first,", false},
		{"また、", false},
		{"", false},
		{"”", false},
	}

	for _, tt := range tests {
		if got := endsWithSentenceFinal(tt.text); got != tt.want {
			t.Errorf("endsWithSentenceFinal(%q) = %v, want %v", tt.text, got, tt.want)
		}
	}
}

func TestEndsWithClauseBreak(t *testing.T) {
	tests := []struct {
		text string
		want bool
	}{
		{"first,", true},
		{"pause;", true},
		{"また、", true},
		{"全部，", true},
		{"done.", false},
		{"word", false},
		{"", false},
	}

	for _, tt := range tests {
		if got := endsWithClauseBreak(tt.text); got != tt.want {
			t.Errorf("endsWithClauseBreak(%q) = %v, want %v", tt.text, got, tt.want)
		}
	}
}

func TestSplitLeadingPunct(t *testing.T) {
	tests := []struct {
		input    string
		wantRun  string
		wantRest string
	}{
		{"。まだ", "。", "まだ"},
		{"...!?rest", "...!?", "rest"},
		{"、続く", "、", "続く"},
		{"word", "", "word"},
		{"(hello", "", "(hello"},
		{"「開く", "", "「開く"},
		{"...", "...", ""},
	}

	for _, tt := range tests {
		run, rest := splitLeadingPunct(tt.input)
		if run != tt.wantRun || rest != tt.wantRest {
			t.Errorf("splitLeadingPunct(%q) = %q, %q, want %q, %q",
				tt.input, run, rest, tt.wantRun, tt.wantRest)
		}
	}
}

func TestIsPurePunct(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"...", true},
		{"。", true},
		{"?!", true},
		{"~", true},
		{"a.", false},
		{"5", false},
		{"", false},
	}

	for _, tt := range tests {
		if got := isPurePunct(tt.input); got != tt.want {
			t.Errorf("isPurePunct(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestJoinWords(t *testing.T) {
	tests := []struct {
		a, b string
		want string
	}{
		{"Hello", "world", "Hello world"},
		{"こんにちは", "世界", "こんにちは世界"},
		{"です。", "まだ", "です。まだ"},
		{"これは", "Apple", "これは Apple"},
		{"", "solo", "solo"},
		{"solo", "", "solo"},
	}

	for _, tt := range tests {
		if got := joinWords(tt.a, tt.b); got != tt.want {
			t.Errorf("joinWords(%q, %q) = %q, want %q", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestCollapseSpacing(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"こ ん に ち は", "こんにちは"},
		{"これ は 5 個", "これは 5 個"},
		{"Hello  world", "Hello world"},
		{"です 。", "です。"},
		{"mixed 日本 語 text", "mixed 日本語 text"},
		{"untouched", "untouched"},
	}

	for _, tt := range tests {
		if got := collapseSpacing(tt.input); got != tt.want {
			t.Errorf("collapseSpacing(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestContainsCJK(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"日本語", true},
		{"カタカナ", true},
		{"한국어", true},
		{"mixed 語 text", true},
		{"plain latin", false},
		{"", false},
	}

	for _, tt := range tests {
		if got := containsCJK(tt.input); got != tt.want {
			t.Errorf("containsCJK(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestSplitGlyphs(t *testing.T) {
	got := splitGlyphs("私はGo言語が好き")
	want := []string{"私", "は", "Go", "言", "語", "が", "好", "き"}
	if len(got) != len(want) {
		t.Fatalf("splitGlyphs = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("glyph %d = %q, want %q", i, got[i], want[i])
		}
	}
}
