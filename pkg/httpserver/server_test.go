package httpserver

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/andreyxaxa/wikimedia-consumer/pkg/logger"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_Options(t *testing.T) {
	s := New(logger.NewWithWriter(io.Discard, "error"),
		Port("8081"),
		ReadTimeout(2*time.Second),
		WriteTimeout(3*time.Second),
		ShutdownTimeout(4*time.Second),
	)

	assert.Equal(t, ":8081", s.address)
	assert.False(t, s.prefork)
	assert.Equal(t, 2*time.Second, s.readTimeout)
	assert.Equal(t, 3*time.Second, s.writeTimeout)
	assert.Equal(t, 4*time.Second, s.shutdownTimeout)
	assert.Equal(t, 2*time.Second, s.App.Config().ReadTimeout)
}

func TestNew_JSONEncoding(t *testing.T) {
	s := New(logger.NewWithWriter(io.Discard, "error"))
	s.App.Get("/ping", func(ctx *fiber.Ctx) error {
		return ctx.JSON(map[string]string{"status": "ok"})
	})

	resp, err := s.App.Test(httptest.NewRequest(http.MethodGet, "/ping", nil))
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.JSONEq(t, `{"status":"ok"}`, string(body))
}
