// Package api exposes the webhook surface for the signaling gateway and the
// token-guarded operator endpoints.
package api

import (
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/hatifai/hatif/domain/repositories"
	"github.com/hatifai/hatif/internal/artifact"
	"github.com/hatifai/hatif/internal/auth"
	"github.com/hatifai/hatif/internal/monitor"
	"github.com/hatifai/hatif/internal/telephony"
	"github.com/hatifai/hatif/usecase"
)

// maxRecordingBytes caps how much recorded audio one callback may pull in
const maxRecordingBytes = 10 << 20

// Handler wires HTTP routes to the turn controller and operator services
type Handler struct {
	controller    *usecase.TurnController
	hub           *monitor.Hub
	tokens        *auth.Manager
	operatorKey   string
	conversations repositories.ConversationRepository
	customers     repositories.CustomerRepository
	httpClient    *http.Client
	logger        *zap.Logger
}

// NewHandler creates the API handler. conversations and customers may be
// nil when persistence is not configured.
func NewHandler(
	controller *usecase.TurnController,
	hub *monitor.Hub,
	tokens *auth.Manager,
	operatorKey string,
	conversations repositories.ConversationRepository,
	customers repositories.CustomerRepository,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		controller:    controller,
		hub:           hub,
		tokens:        tokens,
		operatorKey:   operatorKey,
		conversations: conversations,
		customers:     customers,
		httpClient:    &http.Client{Timeout: 15 * time.Second},
		logger:        logger,
	}
}

// InitRoutes initializes all API routes
func InitRoutes(e *echo.Echo, h *Handler) {
	e.GET("/health", h.health)

	// Gateway webhooks; authenticated by network placement
	voice := e.Group("/api/voice")
	voice.POST("/incoming", h.incoming)
	voice.POST("/speech/:sessionID", h.speech)
	voice.POST("/recording/:sessionID", h.recording)
	voice.POST("/partial/:sessionID", h.partial)
	voice.GET("/artifact/:name", h.artifactClip)

	e.POST("/api/auth/token", h.issueToken)

	// Operator read side
	ops := e.Group("/api", h.operatorAuth)
	ops.GET("/conversations/:phoneNumber", h.listConversations)
	ops.GET("/customer/:phoneNumber", h.customer)
	ops.GET("/analytics", h.analytics)

	e.GET("/ws/monitor", h.monitorSocket, h.operatorAuth)
}

func (h *Handler) health(c echo.Context) error {
	return c.JSON(http.StatusOK, HealthResponse{
		Status:      "ok",
		Service:     "hatif",
		ActiveCalls: h.controller.ActiveCalls(),
	})
}

// incoming handles a new call webhook from the gateway
func (h *Handler) incoming(c echo.Context) error {
	sessionID := c.FormValue("CallSid")
	callerID := c.FormValue("From")
	language := c.FormValue("Language")

	if sessionID == "" {
		return c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "missing_call_sid",
			Message: "CallSid is required",
		})
	}

	instruction, err := h.controller.StartCall(c.Request().Context(), sessionID, callerID, language)
	if err != nil {
		h.logger.Error("Failed to start call", zap.Error(err))
		return h.respondHangup(c)
	}
	return h.respondInstruction(c, instruction)
}

// speech handles a recognized-utterance webhook. An empty transcript is the
// gateway's no-input signal.
func (h *Handler) speech(c echo.Context) error {
	sessionID := c.Param("sessionID")
	transcript := c.FormValue("SpeechResult")
	language := c.FormValue("Language")

	instruction, err := h.controller.HandleSpeech(c.Request().Context(), sessionID, transcript, language)
	if err != nil {
		return h.respondHangup(c)
	}
	return h.respondInstruction(c, instruction)
}

// recording downloads the recorded audio referenced by the webhook and runs
// it through recognition.
func (h *Handler) recording(c echo.Context) error {
	sessionID := c.Param("sessionID")
	recordingURL := c.FormValue("RecordingUrl")

	audio, err := h.downloadRecording(c, recordingURL)
	if err != nil {
		h.logger.Error("Failed to download recording",
			zap.String("session_id", sessionID),
			zap.Error(err))
		audio = nil // treated as silence downstream
	}

	instruction, err := h.controller.HandleRecording(c.Request().Context(), sessionID, audio)
	if err != nil {
		return h.respondHangup(c)
	}
	return h.respondInstruction(c, instruction)
}

// partial receives interim transcripts during playback
func (h *Handler) partial(c echo.Context) error {
	sessionID := c.Param("sessionID")
	text := c.FormValue("UnstableSpeechResult")
	if text == "" {
		text = c.FormValue("SpeechResult")
	}
	h.controller.HandlePartial(sessionID, text)
	return c.NoContent(http.StatusNoContent)
}

// artifactClip serves a synthesized clip to the gateway exactly once
func (h *Handler) artifactClip(c echo.Context) error {
	name := c.Param("name")
	audio, err := h.controller.FetchArtifact(name)
	if err != nil {
		if err == artifact.ErrArtifactMissing {
			return c.JSON(http.StatusNotFound, ErrorResponse{
				Error:   "artifact_not_found",
				Message: "Clip expired or never existed",
			})
		}
		return c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "artifact_fetch_failed",
			Message: "Failed to fetch clip",
		})
	}
	return c.Blob(http.StatusOK, "audio/mpeg", audio)
}

// issueToken authenticates an operator against the shared access key
func (h *Handler) issueToken(c echo.Context) error {
	var req TokenRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_request",
			Message: "Invalid request format",
		})
	}
	if req.OperatorID == "" || req.AccessKey == "" {
		return c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "missing_fields",
			Message: "Operator id and access key are required",
		})
	}
	if h.operatorKey == "" || req.AccessKey != h.operatorKey {
		h.logger.Warn("Operator authentication failed",
			zap.String("operator_id", req.OperatorID))
		return c.JSON(http.StatusUnauthorized, ErrorResponse{
			Error:   "authentication_failed",
			Message: "Invalid access key",
		})
	}

	token, err := h.tokens.GenerateOperatorToken(req.OperatorID, "operator")
	if err != nil {
		h.logger.Error("Failed to generate operator token", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "token_generation_failed",
			Message: "Failed to generate token",
		})
	}
	return c.JSON(http.StatusOK, TokenResponse{
		Token:     token,
		ExpiresAt: time.Now().Add(24 * time.Hour),
	})
}

func (h *Handler) listConversations(c echo.Context) error {
	if h.conversations == nil {
		return h.persistenceDisabled(c)
	}
	phoneNumber := c.Param("phoneNumber")
	limit, _ := strconv.Atoi(c.QueryParam("limit"))

	list, err := h.conversations.ListByCaller(c.Request().Context(), phoneNumber, limit)
	if err != nil {
		h.logger.Error("Failed to list conversations", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "query_failed",
			Message: "Failed to list conversations",
		})
	}
	return c.JSON(http.StatusOK, list)
}

func (h *Handler) customer(c echo.Context) error {
	if h.customers == nil {
		return h.persistenceDisabled(c)
	}
	phoneNumber := c.Param("phoneNumber")

	customer, err := h.customers.GetByPhoneNumber(c.Request().Context(), phoneNumber)
	if err != nil {
		h.logger.Error("Failed to get customer", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "query_failed",
			Message: "Failed to get customer",
		})
	}
	if customer == nil {
		return c.JSON(http.StatusNotFound, ErrorResponse{
			Error:   "customer_not_found",
			Message: "No calls recorded for this number",
		})
	}
	return c.JSON(http.StatusOK, customer)
}

func (h *Handler) analytics(c echo.Context) error {
	resp := AnalyticsResponse{ActiveCalls: h.controller.ActiveCalls()}

	if h.conversations != nil {
		if count, err := h.conversations.Count(c.Request().Context()); err == nil {
			resp.TotalConversations = count
		}
	}
	if h.customers != nil {
		if count, err := h.customers.Count(c.Request().Context()); err == nil {
			resp.TotalCustomers = count
		}
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *Handler) monitorSocket(c echo.Context) error {
	return h.hub.HandleWebSocket(c)
}

// operatorAuth validates the bearer token on operator endpoints. Websocket
// clients may pass the token as a query parameter instead.
func (h *Handler) operatorAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		token := ""
		if header := c.Request().Header.Get("Authorization"); strings.HasPrefix(header, "Bearer ") {
			token = strings.TrimPrefix(header, "Bearer ")
		}
		if token == "" {
			token = c.QueryParam("token")
		}
		if token == "" {
			return c.JSON(http.StatusUnauthorized, ErrorResponse{
				Error:   "missing_token",
				Message: "Bearer token is required",
			})
		}

		claims, err := h.tokens.ValidateToken(token)
		if err != nil {
			return c.JSON(http.StatusUnauthorized, ErrorResponse{
				Error:   "invalid_token",
				Message: "Invalid or expired token",
			})
		}
		c.Set("operator_id", claims.OperatorID)
		return next(c)
	}
}

func (h *Handler) persistenceDisabled(c echo.Context) error {
	return c.JSON(http.StatusServiceUnavailable, ErrorResponse{
		Error:   "persistence_disabled",
		Message: "No storage backend is configured",
	})
}

// respondInstruction renders call-control actions as TwiML
func (h *Handler) respondInstruction(c echo.Context, instruction telephony.Instruction) error {
	doc, err := telephony.RenderTwiML(instruction)
	if err != nil {
		h.logger.Error("Failed to render instruction", zap.Error(err))
		return h.respondHangup(c)
	}
	return c.Blob(http.StatusOK, "text/xml; charset=utf-8", []byte(doc))
}

// respondHangup is the terminal response for unknown sessions and render
// failures; the gateway always needs a well-formed document back.
func (h *Handler) respondHangup(c echo.Context) error {
	doc, err := telephony.RenderTwiML(telephony.NewInstruction(telephony.Hangup{}))
	if err != nil {
		return c.NoContent(http.StatusInternalServerError)
	}
	return c.Blob(http.StatusOK, "text/xml; charset=utf-8", []byte(doc))
}

func (h *Handler) downloadRecording(c echo.Context, url string) ([]byte, error) {
	if url == "" {
		return nil, fmt.Errorf("recording url is empty")
	}

	req, err := http.NewRequestWithContext(c.Request().Context(), http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := h.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("recording fetch returned status %d", resp.StatusCode)
	}
	return io.ReadAll(io.LimitReader(resp.Body, maxRecordingBytes))
}
