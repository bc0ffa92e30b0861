package tools

import (
	"context"
	"strings"
	"testing"
)

func TestIdentityTool_Invoke(t *testing.T) {
	tool := NewIdentityTool()

	tests := []struct {
		name      string
		input     string
		wantMatch bool
		wantErr   bool
	}{
		{
			name:      "exact match",
			input:     `{"lessor_name":"홍길동","owner_name":"홍길동"}`,
			wantMatch: true,
		},
		{
			name:      "match ignoring spaces",
			input:     `{"lessor_name":"홍 길동","owner_name":"홍길동"}`,
			wantMatch: true,
		},
		{
			name:      "mismatch",
			input:     `{"lessor_name":"홍길동","owner_name":"김철수"}`,
			wantMatch: false,
		},
		{
			name:    "missing owner name",
			input:   `{"lessor_name":"홍길동"}`,
			wantErr: true,
		},
		{
			name:    "malformed json",
			input:   `{"lessor_name":`,
			wantErr: true,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := tool.Invoke(context.Background(), []byte(tc.input))
			if tc.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("Invoke failed: %v", err)
			}
			if tc.wantMatch && !strings.Contains(got, "NAME MATCH") {
				t.Errorf("expected match statement, got %q", got)
			}
			if !tc.wantMatch && !strings.Contains(got, "MISMATCH") {
				t.Errorf("expected mismatch warning, got %q", got)
			}
		})
	}
}

func TestThinkTool_Invoke(t *testing.T) {
	tool := NewThinkTool()

	got, err := tool.Invoke(context.Background(), []byte(`{"reflection":"enough evidence on priority repayment"}`))
	if err != nil {
		t.Fatalf("Invoke failed: %v", err)
	}
	want := "Reflection recorded: enough evidence on priority repayment"
	if got != want {
		t.Errorf("Invoke = %q, want %q", got, want)
	}

	if _, err := tool.Invoke(context.Background(), []byte(`{}`)); err == nil {
		t.Error("expected error for empty reflection")
	}
}
