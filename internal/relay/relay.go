package relay

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"ipsqr-service/internal/ipsqr"
	"ipsqr-service/internal/services"
	"ipsqr-service/models"
)

var ErrMalformedMessage = errors.New("relay: malformed scan message")

// PayloadDecoder is implemented by services.DecodeService.
type PayloadDecoder interface {
	Decode(ctx context.Context, source, payload string) (*ipsqr.Result, error)
}

type Publisher interface {
	Publish(channel string, message any) error
}

// Relay decodes payloads published by scanners and publishes the decoded
// record on the result channel.
type Relay struct {
	decoder       PayloadDecoder
	publisher     Publisher
	resultChannel string
	defaultFormat ipsqr.Format
	logger        *slog.Logger
}

func New(decoder PayloadDecoder, publisher Publisher, resultChannel string, defaultFormat ipsqr.Format, logger *slog.Logger) *Relay {
	return &Relay{
		decoder:       decoder,
		publisher:     publisher,
		resultChannel: resultChannel,
		defaultFormat: defaultFormat,
		logger:        logger,
	}
}

// Run handles messages until ctx is done or messages is closed.
func (r *Relay) Run(ctx context.Context, messages <-chan any) {
	for {
		select {
		case msg, ok := <-messages:
			if !ok {
				return
			}
			if err := r.Handle(ctx, msg); err != nil {
				r.logger.Warn("relay: message skipped", "error", err)
			}

		case <-ctx.Done():
			r.logger.Info("relay stopped")
			return
		}
	}
}

// Handle decodes one scan message and publishes its result. Malformed
// messages are returned as ErrMalformedMessage and nothing is published.
func (r *Relay) Handle(ctx context.Context, msg any) error {
	scan, err := parseMessage(msg)
	if err != nil {
		return err
	}

	if scan.ID == "" {
		scan.ID = uuid.NewString()
	}
	result := models.ScanResult{ID: scan.ID}

	format := r.defaultFormat
	if scan.Format != "" {
		if format, err = ipsqr.ParseFormat(scan.Format); err != nil {
			result.Error = err.Error()
			return r.publish(result)
		}
	}

	res, err := r.decoder.Decode(ctx, services.SourceRelay, scan.Payload)
	if err != nil {
		result.Error = err.Error()
		return r.publish(result)
	}

	out, err := ipsqr.Render(res.Record, format)
	if err != nil {
		return fmt.Errorf("relay: render %s: %w", scan.ID, err)
	}
	switch v := out.(type) {
	case map[string]string:
		result.Fields = v
	case string:
		result.JSON = v
	}
	result.Complete = res.Complete()
	result.Warnings = res.Warnings

	return r.publish(result)
}

func (r *Relay) publish(result models.ScanResult) error {
	if err := r.publisher.Publish(r.resultChannel, result); err != nil {
		return fmt.Errorf("relay: publish %s: %w", result.ID, err)
	}
	r.logger.Debug("relay: result published", "id", result.ID, "channel", r.resultChannel)
	return nil
}

// parseMessage accepts a raw payload string, a JSON encoded scan message or
// an already decoded JSON object.
func parseMessage(msg any) (*models.ScanMessage, error) {
	var scan models.ScanMessage

	switch v := msg.(type) {
	case string:
		s := strings.TrimSpace(v)
		if strings.HasPrefix(s, "{") {
			if err := json.Unmarshal([]byte(s), &scan); err != nil {
				return nil, fmt.Errorf("%w: %v", ErrMalformedMessage, err)
			}
		} else {
			scan.Payload = s
		}

	case map[string]any:
		b, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedMessage, err)
		}
		if err := json.Unmarshal(b, &scan); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedMessage, err)
		}

	default:
		return nil, fmt.Errorf("%w: unexpected type %T", ErrMalformedMessage, msg)
	}

	if scan.Payload == "" {
		return nil, fmt.Errorf("%w: empty payload", ErrMalformedMessage)
	}
	return &scan, nil
}
