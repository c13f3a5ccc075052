package command

import "testing"

func TestParseExactCommands(t *testing.T) {
	cases := []struct {
		text string
		want Kind
	}{
		{"/start", KindStart},
		{"/contact", KindContact},
		{"/see_questions", KindSeeQuestions},
		{"/see_answers", KindSeeAnswers},
		{"/answer", KindAnswer},
		{"hello there", KindText},
		{"/unknown", KindText},
		{"", KindText},
	}
	for _, tc := range cases {
		got := Parse(tc.text)
		if got.Kind != tc.want {
			t.Errorf("Parse(%q).Kind = %v, want %v", tc.text, got.Kind, tc.want)
		}
		if got.Err != nil {
			t.Errorf("Parse(%q).Err = %v, want nil", tc.text, got.Err)
		}
	}
}

func TestParseAnswerShortcut(t *testing.T) {
	got := Parse("/answer_15")
	if got.Kind != KindAnswerShortcut {
		t.Fatalf("Kind = %v, want KindAnswerShortcut", got.Kind)
	}
	if got.Err != nil {
		t.Fatalf("Err = %v, want nil", got.Err)
	}
	if got.ID != 15 {
		t.Fatalf("ID = %d, want 15", got.ID)
	}
}

func TestParseAnswerShortcutMalformed(t *testing.T) {
	for _, text := range []string{"/answer_", "/answer_abc", "/answer_1x"} {
		got := Parse(text)
		if got.Kind != KindAnswerShortcut {
			t.Errorf("Parse(%q).Kind = %v, want KindAnswerShortcut", text, got.Kind)
		}
		if got.Err == nil {
			t.Errorf("Parse(%q).Err = nil, want error", text)
		}
	}
}

func TestParseID(t *testing.T) {
	cases := []struct {
		text    string
		want    int64
		wantErr bool
	}{
		{"15", 15, false},
		{" 3 ", 3, false},
		{"/answer_7", 7, false},
		{"abc", 0, true},
		{"/answer_abc", 0, true},
		{"", 0, true},
	}
	for _, tc := range cases {
		got, err := ParseID(tc.text)
		if tc.wantErr {
			if err == nil {
				t.Errorf("ParseID(%q) = %d, want error", tc.text, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseID(%q) error: %v", tc.text, err)
			continue
		}
		if got != tc.want {
			t.Errorf("ParseID(%q) = %d, want %d", tc.text, got, tc.want)
		}
	}
}
