// Package usecase implements the turn orchestration logic: one controller
// drives every call from greeting to hangup, delegating recognition, reply
// generation and synthesis to fallback chains.
package usecase

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/hatifai/hatif/domain/entities"
	"github.com/hatifai/hatif/domain/repositories"
	"github.com/hatifai/hatif/internal/artifact"
	"github.com/hatifai/hatif/internal/audiofx"
	"github.com/hatifai/hatif/internal/cache"
	"github.com/hatifai/hatif/internal/monitor"
	"github.com/hatifai/hatif/internal/sessions"
	"github.com/hatifai/hatif/internal/speechmarkup"
	"github.com/hatifai/hatif/internal/telephony"
)

// Callback paths the signaling gateway posts results to. The API layer must
// mount its routes on the same paths.
const (
	SpeechCallbackPath    = "/api/voice/speech/"
	RecordingCallbackPath = "/api/voice/recording/"
	PartialCallbackPath   = "/api/voice/partial/"
	ArtifactPath          = "/api/voice/artifact/"
)

// persistTimeout bounds the detached writes that outlive a webhook request
const persistTimeout = 10 * time.Second

// Config tunes per-call behavior of the controller
type Config struct {
	// PrimaryLanguage is the default conversation language code, e.g. "ar"
	PrimaryLanguage string

	// GatewayVoice names the gateway's built-in voice used when synthesis
	// degrades to inline text
	GatewayVoice string

	GatherTimeout        time.Duration
	RecordMaxLength      time.Duration
	RecordSilenceTimeout time.Duration

	// SampleRate and Encoding describe recorded caller audio as delivered
	// by the gateway
	SampleRate int
	Encoding   string

	CacheTTL time.Duration

	// ProcessInbound runs the audio pipeline over recordings before
	// recognition; ProcessOutbound runs it over synthesized replies
	ProcessInbound  bool
	ProcessOutbound bool

	// UseRecording switches turn capture from gateway speech recognition
	// to raw recordings transcribed by the engine's own STT chain
	UseRecording bool
}

// Dependencies collects everything the controller orchestrates
type Dependencies struct {
	Sessions  *sessions.Store
	Cache     *cache.Cache
	Artifacts *artifact.Store
	Pipeline  *audiofx.Pipeline
	Markup    *speechmarkup.Builder
	Monitor   *monitor.Hub

	STT   *STTChain
	Reply *ReplyChain
	TTS   *TTSChain

	// Conversations and Customers may be nil when persistence is not
	// configured; the call flow does not depend on either.
	Conversations repositories.ConversationRepository
	Customers     repositories.CustomerRepository

	Logger *zap.Logger
}

// TurnController owns the call state machine. All mutation of a session
// happens here; webhook handlers only translate transport to method calls.
type TurnController struct {
	config Config
	deps   Dependencies
	logger *zap.Logger
}

// NewTurnController creates the controller and applies config defaults
func NewTurnController(config Config, deps Dependencies) *TurnController {
	if config.PrimaryLanguage == "" {
		config.PrimaryLanguage = "ar"
	}
	if config.GatherTimeout <= 0 {
		config.GatherTimeout = 5 * time.Second
	}
	if config.RecordMaxLength <= 0 {
		config.RecordMaxLength = 30 * time.Second
	}
	if config.RecordSilenceTimeout <= 0 {
		config.RecordSilenceTimeout = 3 * time.Second
	}
	if config.CacheTTL <= 0 {
		config.CacheTTL = 5 * time.Minute
	}
	return &TurnController{
		config: config,
		deps:   deps,
		logger: deps.Logger,
	}
}

// StartCall registers a new session and returns the greeting instruction.
// A repeated start for a live session replays the greeting rather than
// resetting the call.
func (tc *TurnController) StartCall(ctx context.Context, sessionID, callerID, languageHint string) (telephony.Instruction, error) {
	if sessionID == "" {
		return telephony.Instruction{}, fmt.Errorf("session id is required")
	}

	lang := languageFor(languageHint, tc.config.PrimaryLanguage)

	if existing, err := tc.deps.Sessions.Get(sessionID); err == nil {
		tc.logger.Warn("Duplicate call start, replaying greeting",
			zap.String("session_id", sessionID))
		return tc.speakAndListen(ctx, existing, languageFor(existing.Language, tc.config.PrimaryLanguage).Greeting), nil
	}

	session := entities.NewCallSession(sessionID, callerID, lang.Code)
	if err := session.Validate(); err != nil {
		return telephony.Instruction{}, fmt.Errorf("invalid call start: %w", err)
	}
	tc.deps.Sessions.Put(session)

	tc.logger.Info("Call started",
		zap.String("session_id", sessionID),
		zap.String("caller_id", callerID),
		zap.String("language", lang.Code))

	tc.publish(monitor.Event{
		Type:      monitor.EventCallStarted,
		SessionID: sessionID,
		CallerID:  callerID,
		State:     string(session.State),
	})
	tc.recordCustomerCall(callerID, lang.Code)

	instruction := tc.speakAndListen(ctx, session, lang.Greeting)
	if err := session.Transition(entities.CallStateAwaitingSpeech); err != nil {
		tc.logger.Error("Greeting transition failed", zap.Error(err))
	}
	return instruction, nil
}

// HandleSpeech processes a recognized utterance posted by the gateway
func (tc *TurnController) HandleSpeech(ctx context.Context, sessionID, transcript, languageHint string) (telephony.Instruction, error) {
	session, err := tc.deps.Sessions.Get(sessionID)
	if err != nil {
		tc.logger.Warn("Speech for unknown session dropped",
			zap.String("session_id", sessionID))
		return telephony.Instruction{}, err
	}

	if languageHint != "" {
		if lang, ok := supportedLanguages[normalizeLanguageCode(languageHint)]; ok && lang.Code != session.Language {
			tc.logger.Info("Switching session language",
				zap.String("session_id", sessionID),
				zap.String("from", session.Language),
				zap.String("to", lang.Code))
			session.Language = lang.Code
		}
	}

	if transcript == "" {
		return tc.HandleSilence(ctx, sessionID)
	}

	session.Reprompted = false
	if err := session.Transition(entities.CallStateProcessing); err != nil {
		tc.logger.Warn("Speech arrived in unexpected state, dropping",
			zap.String("session_id", sessionID),
			zap.String("state", string(session.State)))
		return telephony.Instruction{}, err
	}
	return tc.processUtterance(ctx, session, transcript), nil
}

// HandleRecording transcribes recorded caller audio and continues the turn
func (tc *TurnController) HandleRecording(ctx context.Context, sessionID string, audio []byte) (telephony.Instruction, error) {
	session, err := tc.deps.Sessions.Get(sessionID)
	if err != nil {
		tc.logger.Warn("Recording for unknown session dropped",
			zap.String("session_id", sessionID))
		return telephony.Instruction{}, err
	}

	if len(audio) == 0 {
		return tc.HandleSilence(ctx, sessionID)
	}

	session.Reprompted = false
	if err := session.Transition(entities.CallStateProcessing); err != nil {
		tc.logger.Warn("Recording arrived in unexpected state, dropping",
			zap.String("session_id", sessionID),
			zap.String("state", string(session.State)))
		return telephony.Instruction{}, err
	}

	if tc.config.ProcessInbound && tc.deps.Pipeline != nil {
		audio = tc.deps.Pipeline.Process(audio)
	}

	lang := languageFor(session.Language, tc.config.PrimaryLanguage)
	transcription := tc.deps.STT.Run(ctx, repositories.TranscribeRequest{
		Audio:      audio,
		SampleRate: tc.config.SampleRate,
		Encoding:   tc.config.Encoding,
		Language:   lang.Locale,
	})

	tc.logger.Info("Recording transcribed",
		zap.String("session_id", sessionID),
		zap.Float64("confidence", transcription.Confidence),
		zap.Int("audio_bytes", len(audio)))

	return tc.processUtterance(ctx, session, transcription.Text), nil
}

// HandleSilence reacts to a no-input timeout: one re-prompt, then a polite
// hangup on the second consecutive silence.
func (tc *TurnController) HandleSilence(ctx context.Context, sessionID string) (telephony.Instruction, error) {
	session, err := tc.deps.Sessions.Get(sessionID)
	if err != nil {
		tc.logger.Warn("Silence for unknown session dropped",
			zap.String("session_id", sessionID))
		return telephony.Instruction{}, err
	}

	lang := languageFor(session.Language, tc.config.PrimaryLanguage)

	if !session.Reprompted {
		session.Reprompted = true
		if err := session.Transition(entities.CallStateAwaitingSpeech); err != nil {
			return telephony.Instruction{}, err
		}
		tc.logger.Info("No input, re-prompting once",
			zap.String("session_id", sessionID))
		return tc.speakAndListen(ctx, session, lang.Reprompt), nil
	}

	tc.logger.Info("Second silence, ending call",
		zap.String("session_id", sessionID))
	return tc.endCall(ctx, session), nil
}

// HandlePartial observes an interim transcript mid-playback. Interrupt
// keywords are logged and surfaced to the monitor; the gateway's own
// barge-in does the actual cutting.
func (tc *TurnController) HandlePartial(sessionID, partial string) {
	session, err := tc.deps.Sessions.Get(sessionID)
	if err != nil {
		return
	}

	if kw, ok := matchedInterrupt(partial); ok {
		tc.logger.Info("Interrupt keyword observed",
			zap.String("session_id", sessionID),
			zap.String("keyword", kw))
		tc.publish(monitor.Event{
			Type:      monitor.EventInterruptObserved,
			SessionID: sessionID,
			State:     string(session.State),
			Text:      kw,
		})
	}
}

// EndIdleSession force-closes an abandoned session. Wired as the session
// reaper's expiry callback; no instruction is produced because nobody is
// listening anymore.
func (tc *TurnController) EndIdleSession(sessionID string) {
	session, err := tc.deps.Sessions.Get(sessionID)
	if err != nil {
		return
	}

	tc.logger.Info("Reaping idle session",
		zap.String("session_id", sessionID),
		zap.Duration("duration", session.Duration()))
	tc.closeSession(session)
}

// FetchArtifact hands a synthesized clip to the gateway
func (tc *TurnController) FetchArtifact(name string) ([]byte, error) {
	return tc.deps.Artifacts.Fetch(name)
}

// ActiveCalls reports the number of live sessions
func (tc *TurnController) ActiveCalls() int {
	return tc.deps.Sessions.Len()
}

// processUtterance runs the reply resolution sequence for one caller turn.
// The session must already be in the Processing state.
func (tc *TurnController) processUtterance(ctx context.Context, session *entities.CallSession, utterance string) telephony.Instruction {
	session.AddTurn(entities.TurnRoleUser, utterance)

	if isFarewell(utterance) {
		tc.logger.Info("Farewell detected",
			zap.String("session_id", session.ID))
		return tc.endCall(ctx, session)
	}

	reply := tc.resolveReply(ctx, session, utterance)
	session.AddTurn(entities.TurnRoleAssistant, reply)

	if err := session.Transition(entities.CallStateSpeaking); err != nil {
		tc.logger.Error("Speaking transition failed", zap.Error(err))
	}

	tc.publish(monitor.Event{
		Type:      monitor.EventTurnCompleted,
		SessionID: session.ID,
		State:     string(session.State),
		Text:      reply,
	})

	instruction := tc.speakAndListen(ctx, session, reply)
	if err := session.Transition(entities.CallStateAwaitingSpeech); err != nil {
		tc.logger.Error("Listen transition failed", zap.Error(err))
	}
	return instruction
}

// resolveReply checks the cache, then the static keyword table, and only
// then spends a reply-chain invocation. Chain results are cached; keyword
// hits are too, so repeats stay cheap either way.
func (tc *TurnController) resolveReply(ctx context.Context, session *entities.CallSession, utterance string) string {
	key := cache.Key(utterance)
	if reply, ok := tc.deps.Cache.Get(key); ok {
		tc.logger.Debug("Reply cache hit", zap.String("session_id", session.ID))
		return reply
	}

	if reply, ok := keywordReply(session.Language, utterance); ok {
		tc.deps.Cache.Set(key, reply, tc.config.CacheTTL)
		return reply
	}

	reply := tc.deps.Reply.Run(ctx, repositories.ReplyRequest{
		Utterance: utterance,
		Language:  session.Language,
		History:   tc.history(session),
	})
	tc.deps.Cache.Set(key, reply, tc.config.CacheTTL)
	return reply
}

// history converts the transcript so far into chat messages, excluding the
// just-appended user turn carried separately in the request.
func (tc *TurnController) history(session *entities.CallSession) []repositories.ChatMessage {
	turns := session.Turns
	if len(turns) > 0 && turns[len(turns)-1].Role == entities.TurnRoleUser {
		turns = turns[:len(turns)-1]
	}
	messages := make([]repositories.ChatMessage, 0, len(turns))
	for _, t := range turns {
		role := repositories.UserRole
		if t.Role == entities.TurnRoleAssistant {
			role = repositories.AssistantRole
		}
		messages = append(messages, repositories.ChatMessage{Role: role, Content: t.Text})
	}
	return messages
}

// endCall speaks the farewell and tears the session down
func (tc *TurnController) endCall(ctx context.Context, session *entities.CallSession) telephony.Instruction {
	if err := session.Transition(entities.CallStateEnding); err != nil {
		tc.logger.Error("Ending transition failed", zap.Error(err))
	}

	lang := languageFor(session.Language, tc.config.PrimaryLanguage)
	farewell := lang.Farewell
	session.AddTurn(entities.TurnRoleAssistant, farewell)

	speak := tc.speak(ctx, session, farewell)
	tc.closeSession(session)
	return telephony.NewInstruction(speak, telephony.Hangup{})
}

// closeSession finalizes state, removes the session and kicks off the
// detached persistence write.
func (tc *TurnController) closeSession(session *entities.CallSession) {
	if err := session.Close(); err != nil {
		// Reaper can race a handler into an already-closed session;
		// force the terminal state.
		session.State = entities.CallStateClosed
	}
	tc.deps.Sessions.Remove(session.ID)

	tc.logger.Info("Call ended",
		zap.String("session_id", session.ID),
		zap.Duration("duration", session.Duration()),
		zap.Int("turns", len(session.Turns)))

	tc.publish(monitor.Event{
		Type:      monitor.EventCallEnded,
		SessionID: session.ID,
		CallerID:  session.CallerID,
		State:     string(session.State),
	})
	tc.persistConversation(session)
}

// speakAndListen pairs a spoken reply with the next capture action: a
// speech gather normally, a raw recording when the engine does its own
// recognition.
func (tc *TurnController) speakAndListen(ctx context.Context, session *entities.CallSession, text string) telephony.Instruction {
	lang := languageFor(session.Language, tc.config.PrimaryLanguage)
	if tc.config.UseRecording {
		return telephony.NewInstruction(
			tc.speak(ctx, session, text),
			telephony.Record{
				MaxLength:      tc.config.RecordMaxLength,
				SilenceTimeout: tc.config.RecordSilenceTimeout,
				CallbackURL:    RecordingCallbackPath + session.ID,
			},
		)
	}
	return telephony.NewInstruction(
		tc.speak(ctx, session, text),
		telephony.Gather{
			Mode:            telephony.GatherSpeech,
			Language:        lang.Locale,
			Timeout:         tc.config.GatherTimeout,
			BargeIn:         true,
			BargeInKeywords: interruptKeywords,
			CallbackURL:     SpeechCallbackPath + session.ID,
			PartialURL:      PartialCallbackPath + session.ID,
		},
	)
}

// speak synthesizes text through the TTS chain. A produced clip is parked in
// the artifact store and referenced by URL; chain exhaustion degrades to the
// gateway's built-in voice reading the plain text.
func (tc *TurnController) speak(ctx context.Context, session *entities.CallSession, text string) telephony.Speak {
	lang := languageFor(session.Language, tc.config.PrimaryLanguage)

	markup := text
	if tc.deps.Markup != nil {
		markup = tc.deps.Markup.BuildEnriched(ctx, text, lang.Locale)
	}

	result := tc.deps.TTS.Run(ctx, repositories.SynthesisRequest{
		Text:     markup,
		Language: lang.Locale,
	})
	if result.UseGatewayVoice {
		return telephony.Speak{
			Text:     text,
			Voice:    tc.config.GatewayVoice,
			Language: lang.Locale,
		}
	}

	audio := result.Audio
	if tc.config.ProcessOutbound && tc.deps.Pipeline != nil {
		audio = tc.deps.Pipeline.ProcessOutput(audio)
	}
	name := tc.deps.Artifacts.Put(audio)
	return telephony.Speak{
		ArtifactURL: ArtifactPath + name,
		Language:    lang.Locale,
	}
}

func (tc *TurnController) publish(event monitor.Event) {
	if tc.deps.Monitor != nil {
		tc.deps.Monitor.Publish(event)
	}
}

// recordCustomerCall upserts the caller profile off the request path
func (tc *TurnController) recordCustomerCall(callerID, language string) {
	if tc.deps.Customers == nil || callerID == "" {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
		defer cancel()
		if _, err := tc.deps.Customers.RecordCall(ctx, callerID, language); err != nil {
			tc.logger.Error("Failed to record customer call", zap.Error(err))
		}
	}()
}

// persistConversation writes the closed call transcript off the request path
func (tc *TurnController) persistConversation(session *entities.CallSession) {
	if tc.deps.Conversations == nil {
		return
	}
	conversation := entities.NewConversation(session)
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
		defer cancel()
		if err := tc.deps.Conversations.Save(ctx, conversation); err != nil {
			tc.logger.Error("Failed to persist conversation",
				zap.String("session_id", conversation.SessionID),
				zap.Error(err))
		}
	}()
}
