package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"ipsqr-service/internal/ipsqr"
	"ipsqr-service/internal/services"
	"ipsqr-service/internal/status"
)

const samplePayload = "K:PR|V:01|C:1|R:160000000003465595|N:JKP INFOSTAN TEHNOLOGIJE BEOGRAD|I:RSD9999,99|SF:122|S:OBJEDINJENA NAPLATA|RO:11800515599052-20060-1"

type MockDecoder struct {
	mock.Mock
}

func (m *MockDecoder) Decode(ctx context.Context, source, payload string) (*ipsqr.Result, error) {
	args := m.Called(ctx, source, payload)
	if fn, ok := args.Get(0).(func(context.Context, string, string) *ipsqr.Result); ok {
		return fn(ctx, source, payload), args.Error(1)
	}
	res, _ := args.Get(0).(*ipsqr.Result)
	return res, args.Error(1)
}

// passthrough decodes with the real decoder
func passthrough() *MockDecoder {
	m := &MockDecoder{}
	m.On("Decode", mock.Anything, services.SourceHTTP, mock.AnythingOfType("string")).
		Return(func(_ context.Context, _, payload string) *ipsqr.Result { return ipsqr.Decode(payload) }, nil)
	return m
}

func newJSONRequest(t *testing.T, body string, target string) (*http.Request, *httptest.ResponseRecorder) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	return req, httptest.NewRecorder()
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestDecodeHandler_Decode_Array(t *testing.T) {
	dec := &MockDecoder{}
	dec.On("Decode", mock.Anything, services.SourceHTTP, samplePayload).Return(ipsqr.Decode(samplePayload), nil).Once()
	handler := NewDecodeHandler(dec, ipsqr.FormatArray, 2048)

	req, rec := newJSONRequest(t, fmt.Sprintf(`{"payload":%q}`, samplePayload), "/api/v1/ips/decode")
	c := echo.New().NewContext(req, rec)

	require.NoError(t, handler.Decode(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))

	body := decodeBody(t, rec)
	assert.Equal(t, "array", body["format"])
	assert.Equal(t, false, body["complete"])
	assert.Equal(t, "9999.99", body["amount"])

	fields := body["fields"].(map[string]any)
	assert.Equal(t, "PR", fields["IdentificationCode"])
	assert.Equal(t, "RSD", fields["Currency"])
	assert.NotContains(t, fields, "PayeeApprovalReferenceCode")

	warnings := body["warnings"].([]any)
	require.Len(t, warnings, 1)
	assert.Equal(t, "PayeeApprovalReferenceCode", warnings[0].(map[string]any)["field"])
	dec.AssertExpectations(t)
}

func TestDecodeHandler_Decode_JSONFormat(t *testing.T) {
	handler := NewDecodeHandler(passthrough(), ipsqr.FormatArray, 2048)

	req, rec := newJSONRequest(t, `{"payload":"K:PR|SF:122","format":"json"}`, "/api/v1/ips/decode")
	c := echo.New().NewContext(req, rec)

	require.NoError(t, handler.Decode(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody(t, rec)
	assert.Equal(t, "json", body["format"])
	assert.Nil(t, body["fields"])
	assert.JSONEq(t, `{"IdentificationCode":"PR","PaymentCode":"122"}`, body["json"].(string))
}

func TestDecodeHandler_Decode_FormatFromQuery(t *testing.T) {
	handler := NewDecodeHandler(passthrough(), ipsqr.FormatArray, 2048)

	req, rec := newJSONRequest(t, `{"payload":"K:PR"}`, "/api/v1/ips/decode?format=json")
	c := echo.New().NewContext(req, rec)

	require.NoError(t, handler.Decode(c))
	assert.Equal(t, "json", decodeBody(t, rec)["format"])
}

func TestDecodeHandler_Decode_DefaultFormat(t *testing.T) {
	handler := NewDecodeHandler(passthrough(), ipsqr.FormatJSON, 2048)

	req, rec := newJSONRequest(t, `{"payload":"K:PR"}`, "/api/v1/ips/decode")
	c := echo.New().NewContext(req, rec)

	require.NoError(t, handler.Decode(c))
	assert.Equal(t, "json", decodeBody(t, rec)["format"])
}

func TestDecodeHandler_Decode_TextPlain(t *testing.T) {
	handler := NewDecodeHandler(passthrough(), ipsqr.FormatArray, 2048)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/ips/decode", strings.NewReader("K:PR|V:01\n"))
	req.Header.Set(echo.HeaderContentType, "text/plain; charset=utf-8")
	rec := httptest.NewRecorder()
	c := echo.New().NewContext(req, rec)

	require.NoError(t, handler.Decode(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	fields := decodeBody(t, rec)["fields"].(map[string]any)
	assert.Equal(t, "01", fields["Version"])
}

func TestDecodeHandler_Decode_TextPlainKeepsValueLineBreaks(t *testing.T) {
	handler := NewDecodeHandler(passthrough(), ipsqr.FormatArray, 2048)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/ips/decode", strings.NewReader("K:PR|N:JKP INFOSTAN\nBEOGRAD\n\n"))
	req.Header.Set(echo.HeaderContentType, echo.MIMETextPlain)
	rec := httptest.NewRecorder()
	c := echo.New().NewContext(req, rec)

	require.NoError(t, handler.Decode(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	fields := decodeBody(t, rec)["fields"].(map[string]any)
	assert.Equal(t, "JKP INFOSTAN\nBEOGRAD\n", fields["PayeeNameAndPlace"])
}

func TestDecodeHandler_Decode_UnsupportedFormat(t *testing.T) {
	dec := &MockDecoder{}
	handler := NewDecodeHandler(dec, ipsqr.FormatArray, 2048)

	req, rec := newJSONRequest(t, `{"payload":"K:PR","format":"xml"}`, "/api/v1/ips/decode")
	c := echo.New().NewContext(req, rec)

	require.NoError(t, handler.Decode(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	dec.AssertNotCalled(t, "Decode", mock.Anything, mock.Anything, mock.Anything)
}

func TestDecodeHandler_Decode_InvalidJSON(t *testing.T) {
	handler := NewDecodeHandler(&MockDecoder{}, ipsqr.FormatArray, 2048)

	req, rec := newJSONRequest(t, "invalid json", "/api/v1/ips/decode")
	c := echo.New().NewContext(req, rec)

	require.NoError(t, handler.Decode(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDecodeHandler_Decode_EmptyPayload(t *testing.T) {
	handler := NewDecodeHandler(&MockDecoder{}, ipsqr.FormatArray, 2048)

	req, rec := newJSONRequest(t, `{"payload":""}`, "/api/v1/ips/decode")
	c := echo.New().NewContext(req, rec)

	require.NoError(t, handler.Decode(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "payload is required", decodeBody(t, rec)["error"])
}

func TestDecodeHandler_Decode_PayloadTooLarge(t *testing.T) {
	dec := &MockDecoder{}
	dec.On("Decode", mock.Anything, services.SourceHTTP, mock.Anything).
		Return(nil, fmt.Errorf("3000 bytes: %w", status.ErrPayloadTooLarge))
	handler := NewDecodeHandler(dec, ipsqr.FormatArray, 2048)

	req, rec := newJSONRequest(t, `{"payload":"K:PR"}`, "/api/v1/ips/decode")
	c := echo.New().NewContext(req, rec)

	require.NoError(t, handler.Decode(c))
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

func TestDecodeHandler_Decode_ServiceError(t *testing.T) {
	dec := &MockDecoder{}
	dec.On("Decode", mock.Anything, services.SourceHTTP, mock.Anything).Return(nil, errors.New("boom"))
	handler := NewDecodeHandler(dec, ipsqr.FormatArray, 2048)

	req, rec := newJSONRequest(t, `{"payload":"K:PR"}`, "/api/v1/ips/decode")
	c := echo.New().NewContext(req, rec)

	require.NoError(t, handler.Decode(c))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestDecodeHandler_GetFields(t *testing.T) {
	handler := NewDecodeHandler(&MockDecoder{}, ipsqr.FormatArray, 2048)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/ips/fields", nil)
	rec := httptest.NewRecorder()
	c := echo.New().NewContext(req, rec)

	require.NoError(t, handler.GetFields(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	fields := decodeBody(t, rec)["fields"].([]any)
	assert.Len(t, fields, 18)
	first := fields[0].(map[string]any)
	assert.Equal(t, "K", first["tag"])
	assert.Equal(t, "IdentificationCode", first["name"])
}

func TestHealthHandler_Health(t *testing.T) {
	tests := []struct {
		name  string
		check func(ctx context.Context) error
		want  string
	}{
		{"no cache check", nil, "ok"},
		{"healthy cache", func(context.Context) error { return nil }, "ok"},
		{"failing cache", func(context.Context) error { return errors.New("redis health check failed") }, "redis health check failed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/health", nil)
			rec := httptest.NewRecorder()
			c := echo.New().NewContext(req, rec)

			require.NoError(t, NewHealthHandler(tt.check).Health(c))
			assert.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, tt.want, decodeBody(t, rec)["cache"])
		})
	}
}
