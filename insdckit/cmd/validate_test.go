package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Doomsbay/InsdcKit/insdckit/insdc"
)

func TestValidateFilesReport(t *testing.T) {
	gb, err := os.ReadFile(testdata("U49845.gb"))
	if err != nil {
		t.Fatalf("read testdata: %v", err)
	}
	gp, err := os.ReadFile(testdata("AAD51968.gp"))
	if err != nil {
		t.Fatalf("read testdata: %v", err)
	}
	unterminated := strings.TrimSuffix(strings.TrimSpace(string(gb)), "//")
	input := writeInput(t, "mixed.gb", unterminated+string(gb)+string(gp))
	report := filepath.Join(t.TempDir(), "reports", "validate.json")

	stats, err := validateFiles(context.Background(), testSession(), []string{input}, validateConfig{ReportPath: report, MaxProblems: 10})
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if stats.Records != 2 || stats.Invalid != 1 || stats.Proteins != 1 {
		t.Fatalf("unexpected stats %+v", stats)
	}
	if stats.ByKind["malformed_sequence"] != 1 {
		t.Fatalf("unexpected kinds %v", stats.ByKind)
	}

	data, err := os.ReadFile(report)
	if err != nil {
		t.Fatalf("read report: %v", err)
	}
	var got validateStats
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("decode report: %v", err)
	}
	if len(got.Problems) != 1 {
		t.Fatalf("expected 1 problem, got %+v", got.Problems)
	}
	p := got.Problems[0]
	if p.File != input || p.Kind != "malformed_sequence" || p.Section != "footer" || p.Line == 0 {
		t.Fatalf("unexpected problem %+v", p)
	}
}

func TestValidateFilesProblemLimit(t *testing.T) {
	var b strings.Builder
	for i := 0; i < 3; i++ {
		b.WriteString("LOCUS       BROKEN\nDEFINITION  no sequence section.\n//\n")
	}
	input := writeInput(t, "broken.gb", b.String())
	stats, err := validateFiles(context.Background(), testSession(), []string{input}, validateConfig{MaxProblems: 2})
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if stats.Invalid != 3 || len(stats.Problems) != 2 || stats.Dropped != 1 {
		t.Fatalf("unexpected stats %+v", stats)
	}
}

func TestKindName(t *testing.T) {
	for _, k := range kindNames {
		wrapped := fmt.Errorf("wrapped: %w", k.err)
		if got := kindName(wrapped); got != k.name {
			t.Fatalf("kindName(%v) = %q, want %q", k.err, got, k.name)
		}
	}
	if got := kindName(errors.New("boom")); got != "other" {
		t.Fatalf("kindName(other) = %q", got)
	}
	if got := kindName(insdc.ErrUnterminatedQuote); got != "unterminated_quote" {
		t.Fatalf("kindName = %q", got)
	}
}
