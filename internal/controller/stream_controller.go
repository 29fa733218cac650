package controller

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"branching-chat-be/internal/config"
	"branching-chat-be/internal/dto"
	"branching-chat-be/internal/pkg/serverutils"
	"branching-chat-be/internal/service"
	"branching-chat-be/pkg/events"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
	"github.com/valyala/fasthttp"
)

type IStreamController interface {
	RegisterRoutes(r fiber.Router)
	StreamSSE(ctx *fiber.Ctx) error
}

type streamController struct {
	streamService service.IStreamService
	cfg           *config.Config
}

func NewStreamController(streamService service.IStreamService, cfg *config.Config) IStreamController {
	return &streamController{
		streamService: streamService,
		cfg:           cfg,
	}
}

func (c *streamController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/chat/v1")
	h.Use(serverutils.JwtMiddleware)
	h.Get("stream", c.StreamSSE)
	h.Get("ws", websocket.New(c.streamWS))
}

// signalPayload renders one control signal in the SSE/WS wire shape: a JSON
// object keyed by the signal kind.
func signalPayload(signal events.StreamSignal) []byte {
	var body map[string]interface{}
	switch signal.Kind {
	case events.SignalDone:
		body = map[string]interface{}{"done": true}
	default:
		body = map[string]interface{}{signal.Kind: signal.Value}
	}
	data, _ := json.Marshal(body)
	return data
}

func (c *streamController) parseStreamRequest(userText, systemMessage, model, conversationId, parentMessageId string) *dto.StreamChatRequest {
	if model == "" {
		model = c.cfg.Ai.DefaultModel
	}
	req := &dto.StreamChatRequest{
		UserText:      userText,
		SystemMessage: systemMessage,
		Model:         model,
	}
	// An unparseable conversation id starts a new conversation instead of
	// failing the stream.
	if id, err := uuid.Parse(conversationId); err == nil {
		req.ConversationId = &id
	}
	if id, err := uuid.Parse(parentMessageId); err == nil {
		req.ParentMessageId = &id
	}
	return req
}

// sseEmitter writes control signals as server-sent events. A failed flush
// means the client is gone; the stream context is cancelled so the provider
// call stops producing.
type sseEmitter struct {
	w      *bufio.Writer
	cancel context.CancelFunc
}

func (e *sseEmitter) Emit(signal events.StreamSignal) error {
	if _, err := fmt.Fprintf(e.w, "data: %s\n\n", signalPayload(signal)); err != nil {
		e.cancel()
		return err
	}
	if err := e.w.Flush(); err != nil {
		e.cancel()
		return err
	}
	return nil
}

func (c *streamController) StreamSSE(ctx *fiber.Ctx) error {
	userId := userIdFromCtx(ctx)
	req := c.parseStreamRequest(
		ctx.Query("userText"),
		ctx.Query("systemMessage"),
		ctx.Query("llm"),
		ctx.Query("conversationId"),
		ctx.Query("parentMessageId"),
	)
	if err := serverutils.ValidateRequest(req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, err.Error()))
	}

	ctx.Set("Content-Type", "text/event-stream")
	ctx.Set("Cache-Control", "no-cache")
	ctx.Set("Connection", "keep-alive")

	ctx.Context().SetBodyStreamWriter(fasthttp.StreamWriter(func(w *bufio.Writer) {
		streamCtx, cancel := context.WithCancel(context.Background())
		defer cancel()

		emitter := &sseEmitter{w: w, cancel: cancel}
		_ = c.streamService.StreamChat(streamCtx, userId, req, emitter)
	}))
	return nil
}

// wsEmitter pushes control signals over a websocket connection.
type wsEmitter struct {
	mu     sync.Mutex
	conn   *websocket.Conn
	cancel context.CancelFunc
}

func (e *wsEmitter) Emit(signal events.StreamSignal) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.conn.WriteMessage(websocket.TextMessage, signalPayload(signal)); err != nil {
		e.cancel()
		return err
	}
	return nil
}

type wsStreamRequest struct {
	UserText        string `json:"userText"`
	SystemMessage   string `json:"systemMessage"`
	Model           string `json:"llm"`
	ConversationId  string `json:"conversationId"`
	ParentMessageId string `json:"parentMessageId"`
}

// streamWS accepts one chat request per connection message and streams the
// response back as JSON frames, mirroring the SSE wire shape.
func (c *streamController) streamWS(conn *websocket.Conn) {
	defer conn.Close()

	userIdStr, _ := conn.Locals("user_id").(string)
	userId, err := uuid.Parse(userIdStr)
	if err != nil {
		return
	}

	for {
		var wsReq wsStreamRequest
		if err := conn.ReadJSON(&wsReq); err != nil {
			return
		}

		req := c.parseStreamRequest(
			wsReq.UserText,
			wsReq.SystemMessage,
			wsReq.Model,
			wsReq.ConversationId,
			wsReq.ParentMessageId,
		)
		if err := serverutils.ValidateRequest(req); err != nil {
			payload, _ := json.Marshal(map[string]interface{}{"error": err.Error()})
			if writeErr := conn.WriteMessage(websocket.TextMessage, payload); writeErr != nil {
				return
			}
			continue
		}

		streamCtx, cancel := context.WithCancel(context.Background())
		emitter := &wsEmitter{conn: conn, cancel: cancel}
		_ = c.streamService.StreamChat(streamCtx, userId, req, emitter)
		cancel()
	}
}
