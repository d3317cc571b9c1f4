package integration_test

import (
	"testing"

	"goapforge/internal/audit"
)

func loadAuditTypes(t *testing.T, dbPath string) map[string]int {
	t.Helper()
	counts, err := audit.NewLogger(dbPath).CountByType()
	if err != nil {
		t.Fatalf("count audit events in %s: %v", dbPath, err)
	}
	return counts
}

func requireAuditEvents(t *testing.T, dbPath string, want []string) {
	t.Helper()
	types := loadAuditTypes(t, dbPath)
	for _, eventType := range want {
		if types[eventType] == 0 {
			t.Fatalf("missing audit event %s in %s (have %v)", eventType, dbPath, types)
		}
	}
}
