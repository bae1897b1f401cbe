package logging_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/km-arc/go-opengenerics/framework/config"
	"github.com/km-arc/go-opengenerics/framework/logging"
)

func cfg(env, level string) *config.Config {
	return &config.Config{
		App: config.AppConfig{Name: "test", Env: env},
		Log: config.LogConfig{Level: level},
	}
}

func TestNew(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		env     string
		level   string
		enabled zapcore.Level
		hidden  zapcore.Level
	}{
		{name: "development defaults to debug", env: "local", enabled: zapcore.DebugLevel, hidden: zapcore.DebugLevel - 1},
		{name: "production defaults to info", env: "production", enabled: zapcore.InfoLevel, hidden: zapcore.DebugLevel},
		{name: "level override", env: "production", level: "warn", enabled: zapcore.WarnLevel, hidden: zapcore.InfoLevel},
	}
	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			logger, err := logging.New(cfg(tc.env, tc.level))
			require.NoError(t, err)
			assert.True(t, logger.Core().Enabled(tc.enabled))
			assert.False(t, logger.Core().Enabled(tc.hidden))
		})
	}
}

func TestNew_Testing(t *testing.T) {
	t.Parallel()
	logger, err := logging.New(cfg("testing", "debug"))
	require.NoError(t, err)
	assert.False(t, logger.Core().Enabled(zapcore.ErrorLevel))
}

func TestNew_BadLevel(t *testing.T) {
	t.Parallel()
	_, err := logging.New(cfg("local", "loud"))
	assert.ErrorContains(t, err, "LOG_LEVEL")
}

func TestMiddleware(t *testing.T) {
	t.Parallel()
	core, logs := observer.New(zap.InfoLevel)
	h := logging.Middleware(zap.New(core))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
		_, _ = w.Write([]byte("short and stout"))
	}))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/pot", nil))

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, "http", entry.LoggerName)
	fields := entry.ContextMap()
	assert.Equal(t, "/pot", fields["path"])
	assert.EqualValues(t, http.StatusTeapot, fields["status"])
	assert.EqualValues(t, len("short and stout"), fields["bytes"])
}
