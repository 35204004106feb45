package main

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrintJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, printJSON(&buf, map[string]int{"sent": 2}))
	assert.JSONEq(t, `{"sent": 2}`, buf.String())
}

func TestAppListsCommands(t *testing.T) {
	app := newApp(&bytes.Buffer{})
	var names []string
	for _, c := range app.Commands {
		names = append(names, c.Name)
	}
	assert.ElementsMatch(t, []string{"reminders", "digest", "scrape", "reprocess"}, names)
}

func TestReprocessRequiresIds(t *testing.T) {
	app := newApp(&bytes.Buffer{})
	err := app.Run(context.Background(), []string{"grantctl", "reprocess", "--env", ""})
	require.Error(t, err)
}
