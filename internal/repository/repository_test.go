package repository

import (
	"testing"

	"github.com/yourusername/stock-scout/internal/models"
)

// TestBuildMemoWhereEmpty tests filter building with no filters set
func TestBuildMemoWhereEmpty(t *testing.T) {
	where, args := buildMemoWhere(MemoFilter{})
	if where != "" {
		t.Errorf("expected empty WHERE clause, got %q", where)
	}
	if len(args) != 0 {
		t.Errorf("expected no args, got %d", len(args))
	}
}

// TestBuildMemoWhereAllFilters tests filter building with every filter set
func TestBuildMemoWhereAllFilters(t *testing.T) {
	minConviction := 70.0
	where, args := buildMemoWhere(MemoFilter{
		Status:        models.MemoStatusPending,
		Analyst:       "bill_ackman",
		Signal:        models.SignalBullish,
		Ticker:        "NKE",
		MinConviction: &minConviction,
	})

	expected := " WHERE status = $1 AND analyst = $2 AND signal = $3 AND ticker = $4 AND conviction >= $5"
	if where != expected {
		t.Errorf("expected %q, got %q", expected, where)
	}
	if len(args) != 5 {
		t.Errorf("expected 5 args, got %d", len(args))
	}
}

// TestBuildInvestmentWhereStatusOnly tests single-filter building
func TestBuildInvestmentWhereStatusOnly(t *testing.T) {
	where, args := buildInvestmentWhere(InvestmentFilter{Status: models.InvestmentStatusActive})

	if where != " WHERE status = $1" {
		t.Errorf("unexpected WHERE clause: %q", where)
	}
	if len(args) != 1 || args[0] != models.InvestmentStatusActive {
		t.Errorf("unexpected args: %v", args)
	}
}

// TestMarshalNullableEmpty tests that empty slices persist as SQL NULL
func TestMarshalNullableEmpty(t *testing.T) {
	data, err := marshalNullable([]string(nil))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if data != nil {
		t.Errorf("expected nil for empty slice, got %s", data)
	}

	data, err = marshalNullable([]string{"catalyst"})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if string(data) != `["catalyst"]` {
		t.Errorf("unexpected JSON: %s", data)
	}
}
