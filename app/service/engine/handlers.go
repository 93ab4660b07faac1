package engine

import (
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"quartz/app/service/interview"
	"quartz/app/service/roster"
	"quartz/app/storage"

	"github.com/gofiber/fiber/v2"
)

type messagePayload struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Messages  []messagePayload `json:"messages"`
	SessionID string           `json:"session_id"`
	AgentName string           `json:"agent_name"`
}

type createSessionRequest struct {
	Agent string `json:"agent"`
}

type addMessageRequest struct {
	Role      string `json:"role"`
	Content   string `json:"content"`
	CreatedAt string `json:"created_at"`
}

type initializeRequest struct {
	AgentName string `json:"agent_name"`
}

func (s *Service) handleInfo(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":    "Backend Running",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"routes": []string{
			"GET / - This info",
			"GET /health - Health check",
			"GET /data - View the agent roster",
			"GET /agents - List all agents",
			"GET /agent/:name - Get agent details",
			"GET /conversation_analysis/:id - Analyze conversation state",
			"POST /create_session - Create new chat session",
			"POST /initialize_session - Create and initialize a session",
			"POST /initialize_session/:id - Initialize an existing session",
			"GET /sessions - List all sessions",
			"GET /sessions/:id - Get session details",
			"POST /sessions/:id/messages - Add message to session",
			"POST /chat_with_ai - Run one interview turn",
		},
	})
}

func (s *Service) handleHealth(c *fiber.Ctx) error {
	database := "connected"
	if err := s.store.Ping(c.Context()); err != nil {
		database = "unreachable"
	}

	return c.JSON(fiber.Map{
		"status":       "healthy",
		"timestamp":    time.Now().UTC().Format(time.RFC3339),
		"agents_count": len(s.rosterSvc.List()),
		"database":     database,
	})
}

func (s *Service) handleData(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"agents": s.rosterSvc.List()})
}

func (s *Service) handleListAgents(c *fiber.Ctx) error {
	agents := s.rosterSvc.List()

	out := make([]fiber.Map, 0, len(agents))
	for _, agent := range agents {
		out = append(out, fiber.Map{
			"name":     agent.Name,
			"agent_id": agent.AgentID,
		})
	}

	return c.JSON(out)
}

func (s *Service) handleAgentDetails(c *fiber.Ctx) error {
	agent, ok := s.rosterSvc.Find(c.Params("name"))
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Agent not found"})
	}

	return c.JSON(agent)
}

func (s *Service) handleCreateSession(c *fiber.Ctx) error {
	var req createSessionRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	if req.Agent == "" {
		req.Agent = "unknown"
	}

	session, err := s.store.CreateSession(c.Context(), req.Agent)
	if err != nil {
		slog.Error("Failed to create session", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Database error occurred"})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"id":         session.ID,
		"agent":      session.Agent,
		"created_at": session.CreatedAt.Format(time.RFC3339),
	})
}

func (s *Service) handleListSessions(c *fiber.Ctx) error {
	sessions, err := s.store.ListSessions(c.Context())
	if err != nil {
		slog.Error("Failed to list sessions", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Database error occurred"})
	}

	out := make([]fiber.Map, 0, len(sessions))
	for _, session := range sessions {
		var lastMessageAt *string
		if session.LastMessageAt != nil {
			formatted := session.LastMessageAt.Format(time.RFC3339)
			lastMessageAt = &formatted
		}

		out = append(out, fiber.Map{
			"id":              session.ID,
			"agent":           session.Agent,
			"created_at":      session.CreatedAt.Format(time.RFC3339),
			"last_message_at": lastMessageAt,
		})
	}

	return c.JSON(out)
}

func (s *Service) handleGetSession(c *fiber.Ctx) error {
	sessionID := c.Params("id")

	session, err := s.store.GetSession(c.Context(), sessionID)
	if err != nil {
		return s.storageError(c, err)
	}

	messages, err := s.store.ListMessages(c.Context(), sessionID)
	if err != nil {
		return s.storageError(c, err)
	}

	msgOut := make([]fiber.Map, 0, len(messages))
	for _, msg := range messages {
		msgOut = append(msgOut, fiber.Map{
			"id":         msg.ID,
			"role":       msg.Role,
			"content":    msg.Content,
			"created_at": msg.CreatedAt.Format(time.RFC3339),
		})
	}

	return c.JSON(fiber.Map{
		"id":         session.ID,
		"agent":      session.Agent,
		"created_at": session.CreatedAt.Format(time.RFC3339),
		"messages":   msgOut,
	})
}

func (s *Service) handleAddMessage(c *fiber.Ctx) error {
	sessionID := c.Params("id")

	var req addMessageRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	if req.Role == "" {
		req.Role = interview.RoleUser
	}

	createdAt := time.Now().UTC()
	if req.CreatedAt != "" {
		if parsed, err := time.Parse(time.RFC3339, req.CreatedAt); err == nil {
			createdAt = parsed
		}
	}

	messageID, err := s.store.AddMessage(c.Context(), sessionID, req.Role, req.Content, createdAt)
	if err != nil {
		return s.storageError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message_id": messageID,
		"session_id": sessionID,
	})
}

func (s *Service) handleInitializeNewSession(c *fiber.Ctx) error {
	var req initializeRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	if req.AgentName == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Agent name required"})
	}

	agent, ok := s.rosterSvc.Find(req.AgentName)
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Agent not found"})
	}

	session, err := s.store.CreateSession(c.Context(), agent.Name)
	if err != nil {
		slog.Error("Failed to create session", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to initialize session"})
	}

	opening := s.interviewSvc.Opening(agent)

	if _, err = s.store.AddMessage(c.Context(), session.ID, interview.RoleAssistant, opening, time.Now().UTC()); err != nil {
		return s.storageError(c, err)
	}

	if err = s.persistSnapshot(c, session.ID, agent); err != nil {
		return s.storageError(c, err)
	}

	return c.JSON(fiber.Map{
		"session_id":  session.ID,
		"message":     "Session started successfully",
		"ai_response": opening,
	})
}

func (s *Service) handleInitializeSession(c *fiber.Ctx) error {
	sessionID := c.Params("id")

	var req initializeRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	if req.AgentName == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Agent name required"})
	}

	agent, ok := s.rosterSvc.Find(req.AgentName)
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Agent not found"})
	}

	if _, err := s.store.GetSession(c.Context(), sessionID); err != nil {
		return s.storageError(c, err)
	}

	opening := s.interviewSvc.Opening(agent)

	messages, err := s.store.ListMessages(c.Context(), sessionID)
	if err != nil {
		return s.storageError(c, err)
	}

	// Repeated initialization must not duplicate the opening message.
	if lastAssistantContent(messages) != opening {
		if _, err = s.store.AddMessage(c.Context(), sessionID, interview.RoleAssistant, opening, time.Now().UTC()); err != nil {
			return s.storageError(c, err)
		}
	}

	if err = s.persistSnapshot(c, sessionID, agent); err != nil {
		return s.storageError(c, err)
	}

	return c.JSON(fiber.Map{
		"success":     true,
		"ai_response": opening,
	})
}

func (s *Service) handleChat(c *fiber.Ctx) error {
	var req chatRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	if len(req.Messages) == 0 || req.SessionID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "No messages or session_id provided"})
	}

	if _, err := s.store.GetSession(c.Context(), req.SessionID); err != nil {
		return s.storageError(c, err)
	}

	var agent *roster.Agent
	if req.AgentName != "" {
		agent, _ = s.rosterSvc.Find(req.AgentName)
	}

	messages := make([]interview.Message, 0, len(req.Messages))
	for _, msg := range req.Messages {
		messages = append(messages, interview.Message{Role: msg.Role, Content: msg.Content})
	}

	reply, done := s.interviewSvc.ProcessTurn(c.Context(), messages, agent, req.SessionID)

	if _, err := s.store.AddMessage(c.Context(), req.SessionID, interview.RoleAssistant, reply, time.Now().UTC()); err != nil {
		return s.storageError(c, err)
	}

	if done {
		slog.Info("Interview completed", "session_id", req.SessionID)
	}

	return c.JSON(fiber.Map{"response": reply})
}

func (s *Service) handleAnalysis(c *fiber.Ctx) error {
	sessionID := c.Params("id")

	session, err := s.store.GetSession(c.Context(), sessionID)
	if err != nil {
		return s.storageError(c, err)
	}

	stored, err := s.store.ListMessages(c.Context(), sessionID)
	if err != nil {
		return s.storageError(c, err)
	}

	messages := make([]interview.Message, 0, len(stored))
	for _, msg := range stored {
		messages = append(messages, interview.Message{Role: msg.Role, Content: msg.Content})
	}

	agent, _ := s.rosterSvc.Find(session.Agent)
	state := s.interviewSvc.Analyze(messages, agent, sessionID)

	return c.JSON(fiber.Map{
		"session_id":         sessionID,
		"agent":              session.Agent,
		"conversation_state": state,
		"message_count":      len(messages),
	})
}

func (s *Service) persistSnapshot(c *fiber.Ctx, sessionID string, agent *roster.Agent) error {
	state := s.interviewSvc.Analyze(nil, agent, sessionID)

	stateJSON, err := json.Marshal(state)
	if err != nil {
		return err
	}

	return s.store.UpdateConversationState(c.Context(), sessionID, string(stateJSON))
}

func (s *Service) storageError(c *fiber.Ctx, err error) error {
	if errors.Is(err, storage.ErrSessionNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "session not found"})
	}

	slog.Error("Storage error", "error", err)
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Database error occurred"})
}

func lastAssistantContent(messages []storage.Message) string {
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role == interview.RoleAssistant {
			return messages[i].Content
		}
	}
	return ""
}
