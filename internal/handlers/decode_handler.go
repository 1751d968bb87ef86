package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v5"

	"ipsqr-service/internal/ipsqr"
	"ipsqr-service/internal/services"
	"ipsqr-service/internal/status"
	"ipsqr-service/models"
	"ipsqr-service/utils"
)

// PayloadDecoder is implemented by services.DecodeService.
type PayloadDecoder interface {
	Decode(ctx context.Context, source, payload string) (*ipsqr.Result, error)
}

type DecodeHandler struct {
	decodeService   PayloadDecoder
	defaultFormat   ipsqr.Format
	maxPayloadBytes int64
}

func NewDecodeHandler(decodeService PayloadDecoder, defaultFormat ipsqr.Format, maxPayloadBytes int) *DecodeHandler {
	return &DecodeHandler{
		decodeService:   decodeService,
		defaultFormat:   defaultFormat,
		maxPayloadBytes: int64(maxPayloadBytes),
	}
}

// Decode - Decode an IPS QR payload sent as JSON or as a text/plain body
func (h *DecodeHandler) Decode(c echo.Context) error {
	req, err := h.readRequest(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
	}
	if req.Payload == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "payload is required"})
	}

	formatStr := req.Format
	if formatStr == "" {
		formatStr = c.QueryParam("format")
	}
	format := h.defaultFormat
	if formatStr != "" {
		if format, err = ipsqr.ParseFormat(formatStr); err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
		}
	}

	res, err := h.decodeService.Decode(c.Request().Context(), services.SourceHTTP, req.Payload)
	if errors.Is(err, status.ErrPayloadTooLarge) {
		return c.JSON(http.StatusRequestEntityTooLarge, map[string]string{"error": err.Error()})
	}
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to decode payload"})
	}

	requestID := uuid.NewString()
	resp, err := models.NewDecodeResponse(requestID, res, format)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to render record"})
	}

	c.Response().Header().Set("X-Request-ID", requestID)
	return c.JSON(http.StatusOK, resp)
}

func (h *DecodeHandler) readRequest(c echo.Context) (*models.DecodeRequest, error) {
	var req models.DecodeRequest

	contentType := c.Request().Header.Get(echo.HeaderContentType)
	if strings.HasPrefix(contentType, echo.MIMETextPlain) {
		var r io.Reader = c.Request().Body
		if h.maxPayloadBytes > 0 {
			// one byte over the limit so the service can report it
			r = io.LimitReader(r, h.maxPayloadBytes+1)
		}
		body, err := io.ReadAll(r)
		if err != nil {
			return nil, err
		}
		req.Payload = utils.TrimLineEnding(string(body))
		return &req, nil
	}

	if err := c.Bind(&req); err != nil {
		return nil, err
	}
	return &req, nil
}

// GetFields - List tags, canonical field names and grammars
func (h *DecodeHandler) GetFields(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{
		"fields": models.FieldCatalog(),
	})
}
