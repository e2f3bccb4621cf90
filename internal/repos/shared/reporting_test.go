package shared_test

import (
	"bytes"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/require"

	"github.com/temirov/deploysync/internal/repos/shared"
)

func TestWriterReporterWritesPlainTextWithoutTerminal(t *testing.T) {
	previousNoColor := color.NoColor
	color.NoColor = true
	t.Cleanup(func() {
		color.NoColor = previousNoColor
	})

	var buffer bytes.Buffer
	reporter := shared.NewWriterReporter(&buffer)

	reporter.Successf("Updated %d of %d repositories\n", 2, 2)
	reporter.Failuref("Updated %d of %d repositories\n", 1, 2)

	require.Equal(t, "Updated 2 of 2 repositories\nUpdated 1 of 2 repositories\n", buffer.String())
}
