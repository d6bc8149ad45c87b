package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	toml "github.com/pelletier/go-toml/v2"

	"sticqr/internal/config"
	"sticqr/internal/testsupport"
)

func writeTestConfig(t *testing.T) (string, *config.Config) {
	t.Helper()
	t.Setenv("STICQR_DATABASE", "")

	cfg := testsupport.NewConfig(t, testsupport.WithTemplate(240, 240))
	data, err := toml.Marshal(cfg)
	if err != nil {
		t.Fatalf("marshal config: %v", err)
	}
	path := filepath.Join(testsupport.BaseDir(cfg), "config.toml")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path, cfg
}

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestConfigInitWritesSampleAndRefusesOverwrite(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "config.toml")

	out, err := runCLI(t, "config", "init", "--path", target)
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	if !strings.Contains(out, target) {
		t.Fatalf("expected output to mention %s, got %q", target, out)
	}
	if _, err := os.Stat(target); err != nil {
		t.Fatalf("expected sample config: %v", err)
	}

	if _, err := runCLI(t, "config", "init", "--path", target); err == nil {
		t.Fatal("expected second init without --overwrite to fail")
	}
	if _, err := runCLI(t, "config", "init", "--path", target, "--overwrite"); err != nil {
		t.Fatalf("config init --overwrite: %v", err)
	}
}

func TestConfigValidateReportsChecks(t *testing.T) {
	path, _ := writeTestConfig(t)

	out, err := runCLI(t, "--config", path, "config", "validate")
	if err != nil {
		t.Fatalf("config validate: %v\n%s", err, out)
	}
	if !strings.Contains(out, "Sticker template") || !strings.Contains(out, "Configuration valid") {
		t.Fatalf("unexpected validate output:\n%s", out)
	}
}

func TestConfigValidateFailsWithoutTemplate(t *testing.T) {
	t.Setenv("STICQR_DATABASE", "")
	cfg := testsupport.NewConfig(t)
	data, err := toml.Marshal(cfg)
	if err != nil {
		t.Fatalf("marshal config: %v", err)
	}
	path := filepath.Join(testsupport.BaseDir(cfg), "config.toml")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	out, err := runCLI(t, "--config", path, "config", "validate")
	if err == nil {
		t.Fatalf("expected validate to fail, output:\n%s", out)
	}
	if !strings.Contains(out, "FAIL") {
		t.Fatalf("expected a failed check line, got:\n%s", out)
	}
}

func TestGenerateClaimRedirectFlow(t *testing.T) {
	path, cfg := writeTestConfig(t)

	out, err := runCLI(t, "--config", path, "--json", "generate", "--count", "2", "--batch-id", "cli-batch")
	if err != nil {
		t.Fatalf("generate: %v\n%s", err, out)
	}
	var run runView
	if err := json.Unmarshal([]byte(out), &run); err != nil {
		t.Fatalf("decode generate output: %v\n%s", err, out)
	}
	if run.BatchID != "cli-batch" || len(run.Items) != 2 {
		t.Fatalf("unexpected run: %+v", run)
	}
	if run.PDFPath == "" || filepath.Dir(run.PDFPath) != cfg.PDFDir() {
		t.Fatalf("unexpected pdf path %q", run.PDFPath)
	}
	id := run.Items[0].Identifier

	out, err = runCLI(t, "--config", path, "redirect", id)
	if err != nil {
		t.Fatalf("redirect: %v", err)
	}
	if strings.TrimSpace(out) != "www.sticqr.docpulp.com/claim/"+id {
		t.Fatalf("unexpected unclaimed redirect %q", out)
	}

	out, err = runCLI(t, "--config", path, "--json", "claim", id, "--phone", "+1 555 123 4567")
	if err != nil {
		t.Fatalf("claim: %v", err)
	}
	var claim claimView
	if err := json.Unmarshal([]byte(out), &claim); err != nil {
		t.Fatalf("decode claim output: %v\n%s", err, out)
	}
	if !claim.Success || claim.Outcome != "claimed" {
		t.Fatalf("expected successful claim, got %+v", claim)
	}

	out, err = runCLI(t, "--config", path, "--json", "claim", id, "--phone", "+1 555 999 0000")
	if err != nil {
		t.Fatalf("second claim: %v", err)
	}
	claim = claimView{}
	if err := json.Unmarshal([]byte(out), &claim); err != nil {
		t.Fatalf("decode second claim: %v", err)
	}
	if claim.Success || claim.Outcome != "already_claimed" {
		t.Fatalf("expected already claimed, got %+v", claim)
	}

	out, err = runCLI(t, "--config", path, "redirect", id)
	if err != nil {
		t.Fatalf("redirect after claim: %v", err)
	}
	if strings.TrimSpace(out) != "www.sticqr.docpulp.com/contact/"+id {
		t.Fatalf("unexpected claimed redirect %q", out)
	}

	out, err = runCLI(t, "--config", path, "--json", "show", id)
	if err != nil {
		t.Fatalf("show: %v", err)
	}
	var rec recordView
	if err := json.Unmarshal([]byte(out), &rec); err != nil {
		t.Fatalf("decode show output: %v", err)
	}
	if !rec.Claimed || len(rec.Claims) != 1 || rec.Claims[0].MaskedNumber != "*******4567" {
		t.Fatalf("unexpected record view: %+v", rec)
	}

	out, err = runCLI(t, "--config", path, "--json", "stats")
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	var stats statsView
	if err := json.Unmarshal([]byte(out), &stats); err != nil {
		t.Fatalf("decode stats: %v", err)
	}
	if stats.Total != 2 || stats.Claimed != 1 || stats.Unclaimed != 1 || stats.Batches != 1 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
}

func TestClaimUnknownIdentifier(t *testing.T) {
	path, _ := writeTestConfig(t)

	out, err := runCLI(t, "--config", path, "--json", "claim", "missing", "--phone", "5551234")
	if err != nil {
		t.Fatalf("claim: %v", err)
	}
	var claim claimView
	if err := json.Unmarshal([]byte(out), &claim); err != nil {
		t.Fatalf("decode claim output: %v", err)
	}
	if claim.Success || claim.Outcome != "not_found" {
		t.Fatalf("expected not found, got %+v", claim)
	}

	if _, err := runCLI(t, "--config", path, "redirect", "missing"); err == nil {
		t.Fatal("expected redirect for unknown identifier to fail")
	}
}

func TestClaimRequiresPhone(t *testing.T) {
	path, _ := writeTestConfig(t)
	if _, err := runCLI(t, "--config", path, "claim", "abc"); err == nil {
		t.Fatal("expected missing --phone to fail")
	}
}

func TestBatchListAndPDF(t *testing.T) {
	path, _ := writeTestConfig(t)

	if _, err := runCLI(t, "--config", path, "generate", "--count", "1", "--batch-id", "b-one", "--no-pdf"); err != nil {
		t.Fatalf("generate: %v", err)
	}

	out, err := runCLI(t, "--config", path, "batch", "list")
	if err != nil {
		t.Fatalf("batch list: %v", err)
	}
	if !strings.Contains(out, "b-one") {
		t.Fatalf("expected batch in list, got:\n%s", out)
	}

	out, err = runCLI(t, "--config", path, "--json", "batch", "pdf", "b-one")
	if err != nil {
		t.Fatalf("batch pdf: %v", err)
	}
	var run runView
	if err := json.Unmarshal([]byte(out), &run); err != nil {
		t.Fatalf("decode batch pdf: %v", err)
	}
	if run.Pages != 1 {
		t.Fatalf("expected one page, got %d", run.Pages)
	}
	if _, err := os.Stat(run.PDFPath); err != nil {
		t.Fatalf("expected pdf on disk: %v", err)
	}

	if _, err := runCLI(t, "--config", path, "batch", "show", "nope"); err == nil {
		t.Fatal("expected unknown batch to fail")
	}
}

func TestSingleCommand(t *testing.T) {
	path, cfg := writeTestConfig(t)

	out, err := runCLI(t, "--config", path, "--json", "single", "--identifier", "front-desk")
	if err != nil {
		t.Fatalf("single: %v", err)
	}
	var item itemView
	if err := json.Unmarshal([]byte(out), &item); err != nil {
		t.Fatalf("decode single: %v", err)
	}
	if item.Identifier != "front-desk" {
		t.Fatalf("unexpected identifier %q", item.Identifier)
	}
	if filepath.Dir(item.StickerPath) != cfg.StickerDir() {
		t.Fatalf("unexpected sticker path %q", item.StickerPath)
	}
}

func TestHumanLabel(t *testing.T) {
	cases := map[string]string{
		"already_claimed": "Already Claimed",
		"active":          "Active",
		"":                "-",
	}
	for in, want := range cases {
		if got := humanLabel(in); got != want {
			t.Errorf("humanLabel(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestConfigValidateWarnsOnMissingIcon(t *testing.T) {
	t.Setenv("STICQR_DATABASE", "")
	cfg := testsupport.NewConfig(t, testsupport.WithTemplate(240, 240))
	cfg.Paths.Icon = filepath.Join(testsupport.BaseDir(cfg), "assets", "missing-icon.png")
	data, err := toml.Marshal(cfg)
	if err != nil {
		t.Fatalf("marshal config: %v", err)
	}
	path := filepath.Join(testsupport.BaseDir(cfg), "config.toml")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	out, err := runCLI(t, "--config", path, "config", "validate")
	if err != nil {
		t.Fatalf("missing icon must not fail validation: %v\n%s", err, out)
	}
	if !strings.Contains(out, "[WARN]") || !strings.Contains(out, "Configuration valid") {
		t.Fatalf("expected icon warning, got:\n%s", out)
	}
}
