package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/hatifai/hatif/adapters/llm"
	"github.com/hatifai/hatif/adapters/mongo"
	"github.com/hatifai/hatif/adapters/stt"
	"github.com/hatifai/hatif/adapters/tts"
	"github.com/hatifai/hatif/domain/repositories"
	"github.com/hatifai/hatif/internal/api"
	"github.com/hatifai/hatif/internal/artifact"
	"github.com/hatifai/hatif/internal/audiofx"
	"github.com/hatifai/hatif/internal/auth"
	"github.com/hatifai/hatif/internal/cache"
	"github.com/hatifai/hatif/internal/chain"
	"github.com/hatifai/hatif/internal/config"
	"github.com/hatifai/hatif/internal/monitor"
	"github.com/hatifai/hatif/internal/sessions"
	"github.com/hatifai/hatif/internal/speechmarkup"
	"github.com/hatifai/hatif/usecase"
)

func main() {
	// Initialize logger
	logger, _ := zap.NewProduction()
	defer logger.Sync()

	cfg := config.Load()

	// Create Echo instance
	e := echo.New()

	// Middleware
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())

	// Provider chains; each falls through to its mock so a bare environment
	// still answers calls.
	sttProviders := []chain.Provider[repositories.TranscribeRequest, repositories.Transcription]{
		usecase.STTProvider("google", cfg.STTTimeout, stt.NewGoogleSpeechToText(logger)),
		usecase.STTProvider("mock", cfg.STTTimeout, stt.NewMockSpeechToText(logger)),
	}

	var replyProviders []chain.Provider[repositories.ReplyRequest, string]
	gemini, err := llm.NewGeminiReplyGenerator(llm.NewGeminiConfigFromEnv(), logger)
	if err != nil {
		logger.Warn("Gemini unavailable, replies degrade to mock", zap.Error(err))
	} else {
		replyProviders = append(replyProviders,
			usecase.ReplyProvider("gemini", cfg.ReplyTimeout, gemini))
	}
	replyProviders = append(replyProviders,
		usecase.ReplyProvider("mock", cfg.ReplyTimeout, llm.NewMockReplyGenerator()))

	var ttsProviders []chain.Provider[repositories.SynthesisRequest, repositories.Synthesis]
	elevenLabs, err := tts.NewElevenLabsTTS(tts.NewElevenLabsConfigFromEnv(), logger)
	if err != nil {
		logger.Warn("ElevenLabs unavailable, synthesis degrades to gateway voice", zap.Error(err))
	} else {
		ttsProviders = append(ttsProviders,
			usecase.TTSProvider("elevenlabs", cfg.TTSTimeout, elevenLabs))
	}

	// Diacritics enrichment for Arabic replies: Mishkal service first, then
	// Gemini, then the static phrase table.
	var enrichers []speechmarkup.Enricher
	if cfg.MishkalBaseURL != "" {
		enrichers = append(enrichers, speechmarkup.NewMishkalEnricher(cfg.MishkalBaseURL))
	}
	if gemini != nil {
		enrichers = append(enrichers, llm.NewGeminiDiacriticsEnricher(gemini))
	}
	enrichers = append(enrichers, speechmarkup.StaticEnricher{})

	// Persistence is optional; the call flow runs entirely in memory
	var conversations repositories.ConversationRepository
	var customers repositories.CustomerRepository
	mongoClient, err := mongo.NewClient(logger)
	if err != nil {
		logger.Warn("MongoDB unavailable, running without persistence", zap.Error(err))
	} else {
		conversations = mongo.NewConversationRepository(mongoClient.Database)
		customers = mongo.NewCustomerRepository(mongoClient.Database)
		defer mongoClient.Close(context.Background())
	}

	sessionStore := sessions.NewStore()
	hub := monitor.NewHub(logger)

	primary := usecase.Config{
		PrimaryLanguage:      cfg.PrimaryLanguage,
		GatewayVoice:         cfg.GatewayVoice,
		GatherTimeout:        cfg.GatherTimeout,
		RecordMaxLength:      cfg.RecordMaxLength,
		RecordSilenceTimeout: cfg.RecordSilenceTimeout,
		SampleRate:           cfg.RecordingSampleRate,
		Encoding:             cfg.RecordingEncoding,
		CacheTTL:             cfg.CacheTTL,
		ProcessInbound:       cfg.ProcessInbound,
		ProcessOutbound:      cfg.ProcessOutbound,
		UseRecording:         cfg.UseRecording,
	}

	controller := usecase.NewTurnController(primary, usecase.Dependencies{
		Sessions:  sessionStore,
		Cache:     cache.New(cfg.CacheCapacity),
		Artifacts: artifact.NewStore(cfg.ArtifactGrace, logger),
		Pipeline:  audiofx.NewPipeline(cfg.AudioFX, logger),
		Markup: speechmarkup.NewBuilder(speechmarkup.Config{
			SentencePause: 300 * time.Millisecond,
		}, enrichers, logger),
		Monitor:       hub,
		STT:           usecase.NewSTTChain(sttProviders, cfg.MinSTTConfidence, usecase.PlaceholderFor(cfg.PrimaryLanguage), logger),
		Reply:         usecase.NewReplyChain(replyProviders, logger),
		TTS:           usecase.NewTTSChain(ttsProviders, logger),
		Conversations: conversations,
		Customers:     customers,
		Logger:        logger,
	})

	reaper := sessions.NewReaper(sessionStore, cfg.SessionIdleBound, cfg.ReapInterval, controller.EndIdleSession, logger)
	reaper.Start()
	defer reaper.Stop()

	// Initialize API routes
	handler := api.NewHandler(
		controller,
		hub,
		auth.NewManager(cfg.JWTSecret, cfg.JWTTTL),
		cfg.OperatorKey,
		conversations,
		customers,
		logger,
	)
	api.InitRoutes(e, handler)

	// Graceful shutdown
	go func() {
		if err := e.Start(":" + cfg.Port); err != nil && err != http.ErrServerClosed {
			logger.Fatal("shutting down the server", zap.Error(err))
		}
	}()

	logger.Info("Voice engine started",
		zap.String("port", cfg.Port),
		zap.String("primary_language", cfg.PrimaryLanguage))

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	logger.Info("Server is shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(ctx); err != nil {
		logger.Fatal("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited")
}
