package usecase

import "testing"

func TestIsFarewell(t *testing.T) {
	cases := []struct {
		utterance string
		want      bool
	}{
		{"شكرا جزيلا", true},
		{"مع السلامة", true},
		{"ok goodbye now", true},
		{"Thank You", true},
		{"أريد موعد", false},
		{"what are your hours", false},
		{"", false},
	}
	for _, tc := range cases {
		if got := isFarewell(tc.utterance); got != tc.want {
			t.Errorf("isFarewell(%q) = %v, want %v", tc.utterance, got, tc.want)
		}
	}
}

func tableReply(t *testing.T, language, keyword string) string {
	t.Helper()
	for _, entry := range keywordReplies[language] {
		if entry.Keyword == keyword {
			return entry.Reply
		}
	}
	t.Fatalf("No table entry for %s/%s", language, keyword)
	return ""
}

func TestKeywordReply(t *testing.T) {
	reply, ok := keywordReply("ar", "أريد موعد غدا")
	if !ok {
		t.Fatal("Expected appointment keyword hit")
	}
	if reply != tableReply(t, "ar", "موعد") {
		t.Errorf("Unexpected reply %q", reply)
	}

	if _, ok := keywordReply("ar", "كيف حالك"); ok {
		t.Error("Expected no keyword hit for small talk")
	}
	if _, ok := keywordReply("sw", "appointment"); ok {
		t.Error("Languages without a table should never hit")
	}
}

func TestKeywordReplyOrderIsStable(t *testing.T) {
	// An utterance touching two topics must always get the first declared
	// entry's reply
	utterance := "كم سعر حجز موعد عندكم"
	want := tableReply(t, "ar", "موعد")
	for i := 0; i < 50; i++ {
		reply, ok := keywordReply("ar", utterance)
		if !ok {
			t.Fatal("Expected a keyword hit")
		}
		if reply != want {
			t.Fatalf("Iteration %d returned %q, want the appointment reply", i, reply)
		}
	}
}

func TestLanguageForFallback(t *testing.T) {
	if lang := languageFor("xx", "ar"); lang.Code != "ar" {
		t.Errorf("Expected fallback to ar, got %s", lang.Code)
	}
	if lang := languageFor("en-US", "ar"); lang.Code != "en" {
		t.Errorf("Expected region suffix stripped, got %s", lang.Code)
	}
	if lang := languageFor("", ""); lang.Code != "en" {
		t.Errorf("Expected ultimate fallback en, got %s", lang.Code)
	}
}

func TestMatchedInterrupt(t *testing.T) {
	if kw, ok := matchedInterrupt("يرجى التوقف الآن"); !ok || kw != "توقف" {
		t.Errorf("Expected interrupt hit on توقف, got %q %v", kw, ok)
	}
	if _, ok := matchedInterrupt("please continue"); ok {
		t.Error("Expected no interrupt hit")
	}
}

func TestEveryLanguageIsComplete(t *testing.T) {
	for code, lang := range supportedLanguages {
		if lang.Greeting == "" || lang.Farewell == "" || lang.Reprompt == "" || lang.Placeholder == "" {
			t.Errorf("Language %s has empty prompts: %+v", code, lang)
		}
		if lang.Code != code {
			t.Errorf("Language %s code mismatch: %s", code, lang.Code)
		}
		if lang.Locale == "" {
			t.Errorf("Language %s missing locale", code)
		}
	}
}
