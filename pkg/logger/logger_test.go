package logger

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestInitRejectsBadInput(t *testing.T) {
	_, err := Init("loud", "json")
	require.Error(t, err)
	_, err = Init("info", "xml")
	require.Error(t, err)
}

func TestReplaceRoutesGlobalLogger(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	prev := global
	Replace(zap.New(core))
	t.Cleanup(func() { Replace(prev) })

	L().Info("landing job started", zap.String("landing_id", "l-1"))
	L().Debug("dropped below level")

	entries := logs.All()
	require.Len(t, entries, 1)
	require.Equal(t, "landing job started", entries[0].Message)
	require.Equal(t, "l-1", entries[0].ContextMap()["landing_id"])
}
