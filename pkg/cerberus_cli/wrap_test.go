package cerberus_cli

import (
	"fmt"
	"testing"

	"github.com/CodeMonkeyCybersecurity/cerberus/pkg/cerberus_err"
	"github.com/CodeMonkeyCybersecurity/cerberus/pkg/cerberus_io"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrapRecoversPanicIntoError(t *testing.T) {
	fn := Wrap(func(rc *cerberus_io.RuntimeContext, cmd *cobra.Command, args []string) error {
		panic("boom")
	})

	err := fn(&cobra.Command{Use: "test"}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")
}

func TestWrapPassesThroughExpectedErrors(t *testing.T) {
	expected := cerberus_err.NewExpectedError(fmt.Errorf("daemon not running"))
	fn := Wrap(func(rc *cerberus_io.RuntimeContext, cmd *cobra.Command, args []string) error {
		return expected
	})

	err := fn(&cobra.Command{Use: "test"}, nil)
	require.Error(t, err)
	assert.True(t, cerberus_err.IsExpectedUserError(err))
}

func TestWrapReturnsNilOnSuccess(t *testing.T) {
	fn := Wrap(func(rc *cerberus_io.RuntimeContext, cmd *cobra.Command, args []string) error {
		return nil
	})

	assert.NoError(t, fn(&cobra.Command{Use: "test"}, nil))
}
