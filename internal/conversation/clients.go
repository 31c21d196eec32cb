package conversation

//go:generate mockgen -destination=./clients_mock_test.go -package=conversation -source=clients.go MessageClient

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"partselect-chat/internal/domain"

	"github.com/google/uuid"
	jsoniter "github.com/json-iterator/go"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const instrumentationName = "partselect-chat/conversation"

// MessageClient is the contract for exchanging one query with the assistant service.
type MessageClient interface {
	// GetMessage returns the assistant's reply. It never fails: any error is logged
	// and replaced with domain.Fallback().
	GetMessage(ctx context.Context, conversationID uuid.UUID, query string) domain.Turn
}

// httpMessageClient talks to the assistant service over HTTP.
type httpMessageClient struct {
	httpClient *http.Client
	url        string
	logger     logrus.FieldLogger
	tracer     trace.Tracer
	duration   metric.Float64Histogram
}

// NewHTTPMessageClient is the constructor for the exchange client.
// The http.Client has no timeout; the caller's context is the only deadline.
func NewHTTPMessageClient(url string, logger logrus.FieldLogger) MessageClient {
	duration, err := otel.Meter(instrumentationName).Float64Histogram(
		"chat.exchange.duration",
		metric.WithDescription("Duration of one get-message exchange in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		logger.WithError(err).Warn("could not create exchange duration histogram")
		duration = nil
	}

	return &httpMessageClient{
		httpClient: &http.Client{},
		url:        url,
		logger:     logger,
		tracer:     otel.Tracer(instrumentationName),
		duration:   duration,
	}
}

// DTOs for the assistant service.
type getMessageRequest struct {
	Query string `json:"query"`
}

// Pointers let a missing field be told apart from an empty one.
type getMessageResponse struct {
	Role    *string `json:"role"`
	Content *string `json:"content"`
}

// GetMessage implements MessageClient.
func (c *httpMessageClient) GetMessage(ctx context.Context, conversationID uuid.UUID, query string) domain.Turn {
	requestID := uuid.New()
	ctx, span := c.tracer.Start(ctx, "conversation.exchange", trace.WithAttributes(
		attribute.String("request.id", requestID.String()),
		attribute.String("conversation.id", conversationID.String()),
	))
	defer span.End()

	start := time.Now()
	outcome := "reply"

	turn, err := c.exchange(ctx, requestID, conversationID, query)
	if err != nil {
		outcome = "fallback"
		span.RecordError(err)
		span.SetStatus(codes.Error, "exchange failed")
		c.logger.WithFields(logrus.Fields{
			"request_id":      requestID.String(),
			"conversation_id": conversationID.String(),
		}).WithError(err).Error("message exchange failed, using fallback reply")
		turn = domain.Fallback()
	}

	if c.duration != nil {
		c.duration.Record(ctx, durationMillis(time.Since(start)),
			metric.WithAttributes(attribute.String("outcome", outcome)))
	}
	return turn
}

func (c *httpMessageClient) exchange(ctx context.Context, requestID, conversationID uuid.UUID, query string) (domain.Turn, error) {
	reqBody, err := json.Marshal(getMessageRequest{Query: query})
	if err != nil {
		return domain.Turn{}, fmt.Errorf("could not marshal get-message request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(reqBody))
	if err != nil {
		return domain.Turn{}, fmt.Errorf("could not create get-message http request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set(domain.HeaderRequestID, requestID.String())
	req.Header.Set(domain.HeaderConversationID, conversationID.String())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return domain.Turn{}, fmt.Errorf("get-message request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return domain.Turn{}, fmt.Errorf("assistant service returned non-2xx status: %d", resp.StatusCode)
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return domain.Turn{}, fmt.Errorf("could not read get-message response: %w", err)
	}

	var body getMessageResponse
	if err := json.Unmarshal(raw, &body); err != nil {
		return domain.Turn{}, fmt.Errorf("could not decode get-message response: %w", err)
	}
	if body.Role == nil || body.Content == nil {
		return domain.Turn{}, fmt.Errorf("%w: reply is missing role or content", domain.ErrInvalidTurn)
	}

	turn := domain.Turn{Role: *body.Role, Content: *body.Content}
	if err := turn.Validate(); err != nil {
		return domain.Turn{}, err
	}
	if turn.Role != domain.RoleAssistant {
		return domain.Turn{}, fmt.Errorf("%w: reply role is %q", domain.ErrInvalidTurn, turn.Role)
	}
	return turn, nil
}

// stubMessageClient answers every query with a fixed reply.
type stubMessageClient struct{}

// NewStubMessageClient creates a client that needs no backend.
func NewStubMessageClient() MessageClient {
	return &stubMessageClient{}
}

func (s *stubMessageClient) GetMessage(ctx context.Context, conversationID uuid.UUID, query string) domain.Turn {
	return domain.Turn{Role: domain.RoleAssistant, Content: "Connect your backend here...."}
}

// durationMillis converts d to fractional milliseconds.
func durationMillis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
