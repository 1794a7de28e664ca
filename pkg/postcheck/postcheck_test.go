package postcheck

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestRunOK(t *testing.T) {
	outcome, err := Run(context.Background(), "sh", []string{"-c", "exit 0"}, time.Second, nil)
	require.NoError(t, err)
	require.Equal(t, OutcomeOK, outcome)
}

func TestRunFail(t *testing.T) {
	outcome, err := Run(context.Background(), "sh", []string{"-c", "exit 3"}, time.Second, nil)
	require.Error(t, err)
	require.Equal(t, OutcomeFail, outcome)
}

func TestRunTimeout(t *testing.T) {
	start := time.Now()
	outcome, err := Run(context.Background(), "sleep", []string{"10"}, 100*time.Millisecond, nil)
	require.Error(t, err)
	require.Equal(t, OutcomeTimeout, outcome)
	require.Less(t, time.Since(start), 5*time.Second)
}
