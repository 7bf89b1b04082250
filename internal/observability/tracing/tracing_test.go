package tracing

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestInit_DisabledWithoutEndpoint(t *testing.T) {
	shutdown, err := Init(context.Background(), Config{ServiceName: "storefront-api"}, zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, shutdown(context.Background()))
}
