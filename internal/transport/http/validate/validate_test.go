package validate

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/baechuer/church-service/internal/domain"
)

type contactReq struct {
	Name    string `json:"name" validate:"notblank,max=100"`
	Email   string `json:"email" validate:"required,email"`
	Phone   string `json:"phone" validate:"omitempty,max=30"`
	Message string `json:"message" validate:"notblank"`
}

func TestStruct(t *testing.T) {
	t.Run("ok", func(t *testing.T) {
		assert.NoError(t, Struct(&contactReq{Name: "Ann", Email: "ann@example.com", Message: "hi"}))
	})

	t.Run("lists_missing_fields_by_json_name", func(t *testing.T) {
		err := Struct(&contactReq{Name: "   ", Email: ""})
		ae, ok := domain.AsAppError(err)
		require.True(t, ok)
		assert.Equal(t, domain.CodeValidation, ae.Code)
		assert.Equal(t, "email,message,name", ae.Meta["missing"])
		assert.Empty(t, ae.Meta["invalid"])
	})

	t.Run("malformed_values_are_invalid", func(t *testing.T) {
		err := Struct(&contactReq{Name: "Ann", Email: "not-an-email", Message: "hi", Phone: strings.Repeat("1", 40)})
		ae, ok := domain.AsAppError(err)
		require.True(t, ok)
		assert.Equal(t, "email,phone", ae.Meta["invalid"])
		assert.NotContains(t, ae.Meta, "missing")
	})
}

func TestDecodeJSON(t *testing.T) {
	t.Run("malformed", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":`))
		var dst contactReq
		err := DecodeJSON(req, &dst)
		assert.True(t, domain.HasCode(err, domain.CodeValidation))
	})

	t.Run("too_large", func(t *testing.T) {
		rr := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"`+strings.Repeat("a", 64)+`"}`))
		req.Body = http.MaxBytesReader(rr, req.Body, 16)
		var dst contactReq
		err := DecodeJSON(req, &dst)
		assert.True(t, domain.HasCode(err, domain.CodePayloadTooLarge))
	})

	t.Run("decode_then_validate", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"Ann"}`))
		var dst contactReq
		err := DecodeAndValidate(req, &dst)
		ae, ok := domain.AsAppError(err)
		require.True(t, ok)
		assert.Equal(t, "email,message", ae.Meta["missing"])
	})
}

func TestIsUUID(t *testing.T) {
	assert.True(t, IsUUID("6f1c1c5e-8a55-4d4e-9a0c-1e0b9f3f2a11"))
	assert.False(t, IsUUID("123"))
}
