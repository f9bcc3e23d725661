// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package server

import (
	"context"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/streamkit/tazos-engine/pkg/metrics"
)

func TestMetricsServer_ExposesApplicationMetrics(t *testing.T) {
	m := metrics.New()
	srv := NewMetricsServer(0, "/metrics")
	if err := srv.Setup(m.Register); err != nil {
		t.Fatalf("Setup() error = %v", err)
	}
	m.Bet("slots", 25)

	rec := httptest.NewRecorder()
	srv.server.Handler.ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, _ := io.ReadAll(rec.Body)
	if !strings.Contains(string(body), `tazos_bets_total{game="slots"} 1`) {
		t.Errorf("metrics output missing bet counter:\n%s", body)
	}
}

func TestSetupTelemetry(t *testing.T) {
	shutdown, err := SetupTelemetry(context.Background(), "", "tazos-engine", "test", 0)
	if err != nil {
		t.Fatalf("SetupTelemetry() error = %v", err)
	}
	if err := shutdown(context.Background()); err != nil {
		t.Errorf("shutdown error = %v", err)
	}
}

func TestGRPCServer_Setup(t *testing.T) {
	s := NewGRPCServer(0, nil, nil)
	if err := s.Setup(); err != nil {
		t.Fatalf("Setup() error = %v", err)
	}
	info := s.server.GetServiceInfo()
	if _, ok := info["tazos.v1.CommandService"]; !ok {
		t.Errorf("command service not registered: %v", info)
	}
	s.server.Stop()
}
