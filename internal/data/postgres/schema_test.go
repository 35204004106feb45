package postgres

import (
	"strings"
	"testing"
)

func TestSchemaUsesEmbeddingDimension(t *testing.T) {
	stmts := schemaStatements(768)
	found := false
	for _, s := range stmts {
		if strings.Contains(s, "vector(768)") {
			found = true
		}
	}
	if !found {
		t.Fatal("chunk table must declare the configured vector dimension")
	}
	if !strings.Contains(stmts[0], "vector") {
		t.Errorf("extension must be created first, got %q", stmts[0])
	}
}
