package app_errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestKind(t *testing.T) {
	require.Equal(t, CodeValidation, Kind(Validation("field missing")))
	require.Equal(t, CodeNotFound, Kind(NotFound("no row")))
	require.Equal(t, CodeDependencyUnavailable, Kind(DependencyUnavailable(errors.New("timeout"), "store call failed")))
	require.Empty(t, Kind(errors.New("plain error")))
	require.Empty(t, Kind(nil))
}

func TestKindSurvivesWrapping(t *testing.T) {
	err := fmt.Errorf("outer context: %w", ConflictExhausted("lost the race"))
	require.Equal(t, CodeConflictExhausted, Kind(err))
}
