// Cartful - Supermarket Transaction Analytics Engine
// Copyright 2026 Cartful Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cartfulhq/cartful

package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecordLoad(t *testing.T) {
	before := testutil.ToFloat64(IngestRowsTotal.WithLabelValues("dropped"))

	RecordLoad(100, 3, 250*time.Millisecond)

	after := testutil.ToFloat64(IngestRowsTotal.WithLabelValues("dropped"))
	if after-before != 3 {
		t.Errorf("dropped counter delta = %v, want 3", after-before)
	}
	if got := testutil.ToFloat64(SnapshotTransactions); got != 100 {
		t.Errorf("SnapshotTransactions = %v, want 100", got)
	}
}

func TestRecordMining(t *testing.T) {
	RecordMining(1490, time.Second)
	if got := testutil.ToFloat64(RuleCount); got != 1490 {
		t.Errorf("RuleCount = %v, want 1490", got)
	}
}

func TestRecordClustering(t *testing.T) {
	RecordClustering(7, time.Second)
	if got := testutil.ToFloat64(OutliersRemoved); got != 7 {
		t.Errorf("OutliersRemoved = %v, want 7", got)
	}
}

func TestRecordAPIRequest(t *testing.T) {
	before := testutil.ToFloat64(APIRequestsTotal.WithLabelValues("GET", "/rules", "200"))
	RecordAPIRequest("GET", "/rules", 200, 5*time.Millisecond)
	after := testutil.ToFloat64(APIRequestsTotal.WithLabelValues("GET", "/rules", "200"))
	if after-before != 1 {
		t.Errorf("request counter delta = %v, want 1", after-before)
	}
}
