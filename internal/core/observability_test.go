package core_test

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"dircore/internal/core"
	"dircore/pkg/domain"
	"dircore/providers/pibling"
)

func TestExpvarMetricsRecorderAggregates(t *testing.T) {
	rec := core.NewExpvarMetricsRecorder("")
	ctx := context.Background()

	rec.Observe(ctx, "pibling", core.OutcomeEmitted, 10*time.Millisecond)
	rec.Observe(ctx, "pibling", core.OutcomeEmitted, 5*time.Millisecond)
	rec.Observe(ctx, "pibling", core.OutcomeAbsent, time.Millisecond)
	rec.Observe(ctx, "", core.OutcomeEmitted, time.Second) // ignored

	snap := rec.Snapshot()
	if got := snap.Outcomes["pibling"][core.OutcomeEmitted]; got != 2 {
		t.Fatalf("emitted count = %d", got)
	}
	if got := snap.Outcomes["pibling"][core.OutcomeAbsent]; got != 1 {
		t.Fatalf("absent count = %d", got)
	}
	if got := snap.DurationsMS["pibling"]; got < 15.9 || got > 16.1 {
		t.Fatalf("durations = %v", got)
	}
	if rec.Name() == "" {
		t.Fatalf("expected generated expvar name")
	}
}

func TestPrometheusMetricsRecorderCountsOutcomes(t *testing.T) {
	reg := prometheus.NewRegistry()
	rec, err := core.NewPrometheusMetricsRecorder(reg)
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	ctx := context.Background()
	rec.Observe(ctx, "pibling", core.OutcomeEmitted, 3*time.Millisecond)
	rec.Observe(ctx, "pibling", core.OutcomeAbsent, time.Millisecond)
	rec.Observe(ctx, "pibling", core.OutcomeAbsent, time.Millisecond)

	count, err := testutil.GatherAndCount(reg, "dircore_vattr_generate_total", "dircore_vattr_generate_duration_seconds")
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	if count == 0 {
		t.Fatalf("expected registered metric families")
	}
	if got := testutil.ToFloat64(rec.OutcomeCounter("pibling", core.OutcomeAbsent)); got != 2 {
		t.Fatalf("absent counter = %v", got)
	}
}

func TestServiceRecordsGenerationOutcomes(t *testing.T) {
	rec := core.NewExpvarMetricsRecorder("")
	svc := core.NewInMemoryService(suffix(), core.NewDefaultRulesEngine(), core.WithMetrics(rec))
	seedDepartment(t, svc)
	if _, err := svc.InstallProvider("departmentPhones", pibling.New(), piblingSettings()); err != nil {
		t.Fatalf("install: %v", err)
	}

	entry, _ := svc.GetEntry(domain.MustParseDN("cn=alice,ou=people,dc=example,dc=com"))
	if svc.GenerateVirtual(context.Background(), entry, "departmentPhones") == nil {
		t.Fatalf("expected attribute")
	}
	root, _ := svc.GetEntry(suffix())
	svc.GenerateVirtual(context.Background(), root, "departmentPhones")

	snap := rec.Snapshot()
	if got := snap.Outcomes["pibling"][core.OutcomeEmitted]; got != 1 {
		t.Fatalf("emitted = %d", got)
	}
	if got := snap.Outcomes["pibling"][core.OutcomeAbsent]; got != 1 {
		t.Fatalf("absent = %d", got)
	}
}
