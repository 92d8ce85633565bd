package telephony

import (
	"strings"
	"testing"
	"time"
)

func TestRenderSayAndGather(t *testing.T) {
	instr := NewInstruction(
		Speak{Text: "أهلاً وسهلاً! كيف يمكنني مساعدتك؟", Voice: "alice", Language: "ar-SA"},
		Gather{
			Mode:            GatherSpeech,
			Language:        "ar-SA",
			Timeout:         5 * time.Second,
			BargeIn:         true,
			BargeInKeywords: []string{"توقف", "stop"},
			CallbackURL:     "/api/voice/speech/sess-1",
		},
	)

	out, err := RenderTwiML(instr)
	if err != nil {
		t.Fatalf("RenderTwiML failed: %v", err)
	}

	for _, want := range []string{
		"<Response>",
		`voice="alice"`,
		`language="ar-SA"`,
		"أهلاً وسهلاً",
		`input="speech"`,
		`timeout="5"`,
		`bargeIn="true"`,
		`action="/api/voice/speech/sess-1"`,
		"توقف, stop",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected rendered twiml to contain %q:\n%s", want, out)
		}
	}
}

func TestRenderNestsPromptInBargeInGather(t *testing.T) {
	instr := NewInstruction(
		Speak{Text: "كيف يمكنني مساعدتك؟", Voice: "alice", Language: "ar-SA"},
		Gather{
			Mode:        GatherSpeech,
			Language:    "ar-SA",
			Timeout:     5 * time.Second,
			BargeIn:     true,
			CallbackURL: "/api/voice/speech/sess-1",
		},
	)

	out, err := RenderTwiML(instr)
	if err != nil {
		t.Fatalf("RenderTwiML failed: %v", err)
	}

	gatherOpen := strings.Index(out, "<Gather")
	sayOpen := strings.Index(out, "<Say")
	gatherClose := strings.Index(out, "</Gather>")
	if gatherOpen < 0 || sayOpen < 0 || gatherClose < 0 {
		t.Fatalf("Missing Gather or Say verb:\n%s", out)
	}
	if !(gatherOpen < sayOpen && sayOpen < gatherClose) {
		t.Errorf("Prompt must render inside the listening Gather so the caller can interrupt it:\n%s", out)
	}
}

func TestRenderKeepsPromptSiblingWithoutBargeIn(t *testing.T) {
	instr := NewInstruction(
		Speak{Text: "Please hold.", Voice: "alice", Language: "en-US"},
		Gather{
			Mode:        GatherSpeech,
			Language:    "en-US",
			Timeout:     5 * time.Second,
			CallbackURL: "/api/voice/speech/sess-2",
		},
	)

	out, err := RenderTwiML(instr)
	if err != nil {
		t.Fatalf("RenderTwiML failed: %v", err)
	}

	sayClose := strings.Index(out, "</Say>")
	gatherOpen := strings.Index(out, "<Gather")
	if sayClose < 0 || gatherOpen < 0 {
		t.Fatalf("Missing Say or Gather verb:\n%s", out)
	}
	if sayClose > gatherOpen {
		t.Errorf("Without barge-in the prompt must finish before listening starts:\n%s", out)
	}
}

func TestRenderPlayForArtifact(t *testing.T) {
	instr := NewInstruction(
		Speak{ArtifactURL: "/api/voice/artifact/abc.mp3"},
		Hangup{},
	)

	out, err := RenderTwiML(instr)
	if err != nil {
		t.Fatalf("RenderTwiML failed: %v", err)
	}

	if !strings.Contains(out, "<Play>/api/voice/artifact/abc.mp3</Play>") {
		t.Errorf("Expected Play verb for artifact speak:\n%s", out)
	}
	if !strings.Contains(out, "<Hangup>") {
		t.Errorf("Expected Hangup verb:\n%s", out)
	}
}

func TestRenderRecordAndRedirect(t *testing.T) {
	instr := NewInstruction(
		Record{
			MaxLength:      120 * time.Second,
			SilenceTimeout: 3 * time.Second,
			CallbackURL:    "/api/voice/recording/sess-1",
		},
		Redirect{CallbackURL: "/api/voice/incoming"},
	)

	out, err := RenderTwiML(instr)
	if err != nil {
		t.Fatalf("RenderTwiML failed: %v", err)
	}

	for _, want := range []string{
		`maxLength="120"`,
		`timeout="3"`,
		`playBeep="true"`,
		`method="POST"`,
		">/api/voice/incoming</Redirect>",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected rendered twiml to contain %q:\n%s", want, out)
		}
	}
}

func TestRenderEmptyInstruction(t *testing.T) {
	out, err := RenderTwiML(NewInstruction())
	if err != nil {
		t.Fatalf("RenderTwiML failed: %v", err)
	}
	if !strings.Contains(out, "<Response>") {
		t.Errorf("Expected a bare Response document:\n%s", out)
	}
}
