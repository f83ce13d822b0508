package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/and161185/onboarding/internal/clipboard"
	"github.com/and161185/onboarding/internal/config"
	"github.com/and161185/onboarding/internal/errs"
	"github.com/and161185/onboarding/internal/schema"
)

type result struct {
	out, errOut string
	err         error
	cfg         config.CLI
}

func runCLI(t *testing.T, fb *fakeBackend, cp *fakeCopier, stdin string, args ...string) result {
	t.Helper()
	var out, errOut bytes.Buffer
	a := newApp(strings.NewReader(stdin), &out, &errOut)
	a.dial = func(config.CLI) (backend, error) { return fb, nil }
	if cp == nil {
		cp = &fakeCopier{method: clipboard.MethodSystem}
	}
	a.copier = cp
	a.now = func() time.Time { return time.Date(2025, 3, 7, 9, 5, 3, 0, time.UTC) }

	root := newRootCmd(a)
	root.SetArgs(append([]string{"--config", filepath.Join(t.TempDir(), "config.yaml")}, args...))
	err := root.ExecuteContext(context.Background())
	return result{out: out.String(), errOut: errOut.String(), err: err, cfg: a.cfg}
}

func Test_version(t *testing.T) {
	r := runCLI(t, newFakeBackend(), nil, "", "version")
	if r.err != nil || r.out != "ob dev (unknown)\n" {
		t.Fatalf("version: %q %v", r.out, r.err)
	}
}

func Test_flagsOverrideConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("server: from-file:1\npublic_url: https://skjema.example.no\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	var out bytes.Buffer
	a := newApp(strings.NewReader(""), &out, &out)
	var dialed config.CLI
	a.dial = func(c config.CLI) (backend, error) { dialed = c; return newFakeBackend(), nil }

	root := newRootCmd(a)
	root.SetArgs([]string{"--config", path, "--server", "from-flag:2", "--timeout", "3s", "clients", "list"})
	if err := root.Execute(); err != nil {
		t.Fatalf("execute: %v", err)
	}
	if dialed.Server != "from-flag:2" || dialed.Timeout != 3*time.Second {
		t.Fatalf("flags not applied: %+v", dialed)
	}
	if dialed.PublicURL != "https://skjema.example.no" {
		t.Fatalf("file value lost: %+v", dialed)
	}
}

func Test_clients_CreateListShow(t *testing.T) {
	fb := newFakeBackend()
	r := runCLI(t, fb, nil, "", "clients", "create", "Acme", "AS")
	if r.err != nil {
		t.Fatalf("create: %v", r.err)
	}
	lines := strings.Split(strings.TrimSpace(r.out), "\n")
	if len(lines) != 2 || !strings.HasPrefix(lines[1], "http://localhost:8080/kundeskjema/") {
		t.Fatalf("create output: %q", r.out)
	}
	id := lines[0]

	r = runCLI(t, fb, nil, "", "clients", "list")
	if r.err != nil || !strings.Contains(r.out, "Acme AS") || !strings.Contains(r.out, id) {
		t.Fatalf("list: %q %v", r.out, r.err)
	}

	r = runCLI(t, fb, nil, "", "clients", "show", id)
	if r.err != nil || !strings.Contains(r.out, `"name": "Acme AS"`) {
		t.Fatalf("show: %q %v", r.out, r.err)
	}
}

func Test_clients_Errors(t *testing.T) {
	fb := newFakeBackend()

	r := runCLI(t, fb, nil, "", "clients", "show", "not-a-uuid")
	if !errors.Is(r.err, errs.ErrInvalidArgument) {
		t.Fatalf("want invalid argument, got %v", r.err)
	}
	r = runCLI(t, fb, nil, "", "clients", "show", "7f1c8f0e-8a43-4a57-9b0a-0d9c3f0b3c11")
	if !errors.Is(r.err, errs.ErrNotFound) {
		t.Fatalf("want not found, got %v", r.err)
	}
	r = runCLI(t, fb, nil, "", "clients", "lookup", "nope")
	if !errors.Is(r.err, errs.ErrNotFound) {
		t.Fatalf("lookup: want not found, got %v", r.err)
	}
}

func Test_clients_DeleteNeedsConfirmation(t *testing.T) {
	fb := newFakeBackend()
	c := fb.add("Acme AS")

	r := runCLI(t, fb, nil, "n\n", "clients", "delete", c.ID.String())
	if !errors.Is(r.err, errCanceled) {
		t.Fatalf("want canceled, got %v", r.err)
	}
	if got, _ := fb.GetClient(context.Background(), c.ID); got == nil {
		t.Fatalf("client deleted without confirmation")
	}

	r = runCLI(t, fb, nil, "ja\n", "clients", "delete", c.ID.String())
	if r.err != nil || r.out != "deleted\n" {
		t.Fatalf("delete: %q %v", r.out, r.err)
	}
	if got, _ := fb.GetClient(context.Background(), c.ID); got != nil {
		t.Fatalf("client still present")
	}

	c = fb.add("Beta AS")
	if r = runCLI(t, fb, nil, "", "clients", "delete", "--yes", c.ID.String()); r.err != nil {
		t.Fatalf("delete --yes: %v", r.err)
	}
}

func Test_share_CopyFallback(t *testing.T) {
	fb := newFakeBackend()
	c := fb.add("Acme AS")

	cp := &fakeCopier{err: clipboard.ErrUnavailable}
	r := runCLI(t, fb, cp, "", "share", "--copy", c.ID.String())
	if r.err != nil {
		t.Fatalf("share: %v", r.err)
	}
	want := "http://localhost:8080/kundeskjema/" + c.ShareToken
	if strings.TrimSpace(r.out) != want {
		t.Fatalf("share link: %q", r.out)
	}
	if len(cp.got) != 1 || cp.got[0] != want {
		t.Fatalf("copier got %v", cp.got)
	}
	if !strings.Contains(r.errOut, "clipboard unavailable") {
		t.Fatalf("missing fallback notice: %q", r.errOut)
	}
}

func Test_form_SetShowClear(t *testing.T) {
	fb := newFakeBackend()
	c := fb.add("Acme AS")
	id := c.ID.String()

	r := runCLI(t, fb, nil, "", "form", "set", id, "klaviyoExists=Ja")
	if !errors.Is(r.err, errs.ErrUnknownField) {
		t.Fatalf("want unknown field, got %v", r.err)
	}
	r = runCLI(t, fb, nil, "", "form", "set", id, "noequals")
	if !errors.Is(r.err, errs.ErrInvalidArgument) {
		t.Fatalf("want invalid argument, got %v", r.err)
	}

	r = runCLI(t, fb, nil, "", "form", "set", id, "companyName=Acme AS", "website=acme.no")
	if r.err != nil || r.out != "saved 2 field(s)\n" {
		t.Fatalf("set: %q %v", r.out, r.err)
	}
	r = runCLI(t, fb, nil, "", "form", "set", id, "website=")
	if r.err != nil {
		t.Fatalf("set empty: %v", r.err)
	}
	d, _ := fb.form(c.ID)
	if d["companyName"] != "Acme AS" || d["website"] != "" {
		t.Fatalf("stored form: %v", d)
	}

	r = runCLI(t, fb, nil, "", "form", "show", id)
	if r.err != nil || !strings.Contains(r.out, "Juridisk firmanavn") || strings.Contains(r.out, "Hjemmeside") {
		t.Fatalf("show: %q %v", r.out, r.err)
	}
	r = runCLI(t, fb, nil, "", "form", "show", "--all", id)
	if got := strings.Count(r.out, "\n"); got != len(schema.Keys()) {
		t.Fatalf("show --all printed %d lines", got)
	}

	r = runCLI(t, fb, nil, "\n", "form", "clear", id)
	if !errors.Is(r.err, errCanceled) {
		t.Fatalf("want canceled, got %v", r.err)
	}
	r = runCLI(t, fb, nil, "", "form", "clear", "-y", id)
	if r.err != nil {
		t.Fatalf("clear: %v", r.err)
	}
	d, ok := fb.form(c.ID)
	if !ok || len(d) != 0 {
		t.Fatalf("form after clear: %v %v", d, ok)
	}
}

func Test_form_EditSession(t *testing.T) {
	fb := newFakeBackend()
	c := fb.add("Acme AS")

	in := strings.Join([]string{
		"companyName=Acme AS",
		"extraNotes=linje 1\\nlinje 2",
		"companyName",
		"nope=1",
		"alsoNope",
		":bogus",
		":quit",
		"website=never.read",
	}, "\n") + "\n"
	r := runCLI(t, fb, nil, in, "form", "edit", c.ID.String())
	if r.err != nil {
		t.Fatalf("edit: %v", r.err)
	}
	d, _ := fb.form(c.ID)
	if d["companyName"] != "Acme AS" || d["extraNotes"] != "linje 1\nlinje 2" {
		t.Fatalf("stored: %v", d)
	}
	if _, ok := d["website"]; ok {
		t.Fatalf("input after :quit was applied")
	}
	if _, ok := d["nope"]; ok {
		t.Fatalf("unknown field reached the store")
	}
	if !strings.Contains(r.out, "Juridisk firmanavn: Acme AS\n") {
		t.Fatalf("field read-back missing: %q", r.out)
	}
	if !strings.Contains(r.errOut, "unknown field \"nope\"; run `ob fields`") || !strings.Contains(r.errOut, "unknown command :bogus") {
		t.Fatalf("errors not reported: %q", r.errOut)
	}
	if !strings.Contains(r.errOut, "unknown field \"alsoNope\"") {
		t.Fatalf("read of unknown field not reported: %q", r.errOut)
	}
}

func Test_form_EditClearAndEOF(t *testing.T) {
	fb := newFakeBackend()
	c := fb.add("Acme AS")
	if err := fb.SaveFormData(context.Background(), c.ID, map[string]string{"website": "acme.no"}); err != nil {
		t.Fatal(err)
	}

	// no :quit, input simply ends
	r := runCLI(t, fb, nil, ":clear\nj\nehf=Ja", "form", "edit", c.ID.String())
	if r.err != nil {
		t.Fatalf("edit: %v", r.err)
	}
	d, _ := fb.form(c.ID)
	if len(d) != 1 || d["ehf"] != "Ja" {
		t.Fatalf("stored: %v", d)
	}
	if !strings.Contains(r.out, "cleared") {
		t.Fatalf("clear not reported: %q", r.out)
	}
}

func Test_export_OutAndCopy(t *testing.T) {
	fb := newFakeBackend()
	c := fb.add("Acme AS")
	_ = fb.SaveFormData(context.Background(), c.ID, map[string]string{"companyName": "Acme AS"})

	path := filepath.Join(t.TempDir(), "moteskjema.txt")
	cp := &fakeCopier{method: clipboard.MethodOSC52}
	r := runCLI(t, fb, cp, "", "export", "--copy", "-o", path, c.ID.String())
	if r.err != nil {
		t.Fatalf("export: %v", r.err)
	}
	if r.out != "" {
		t.Fatalf("export to file also printed: %q", r.out)
	}
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(b), "1.1 Juridisk firmanavn: Acme AS") || !strings.Contains(string(b), "Generert: 07.03.2025, 09:05:03") {
		t.Fatalf("export text: %s", b)
	}
	if len(cp.got) != 1 || cp.got[0] != string(b) || !strings.Contains(r.errOut, "copied via terminal") {
		t.Fatalf("copy: %v %q", cp.got, r.errOut)
	}
}

func Test_checklistAndFields(t *testing.T) {
	fb := newFakeBackend()
	c := fb.add("Acme AS")

	r := runCLI(t, fb, nil, "", "checklist", c.ID.String())
	if r.err != nil || !strings.Contains(r.out, "Acme AS") || !strings.Contains(r.out, "[ ] ") {
		t.Fatalf("checklist: %q %v", r.out, r.err)
	}

	r = runCLI(t, fb, nil, "", "fields")
	if r.err != nil || strings.Count(r.out, "\n") != len(schema.Keys()) {
		t.Fatalf("fields: %v", r.err)
	}
	if !strings.Contains(r.out, "emailPlatform") {
		t.Fatalf("fields output: %q", r.out)
	}
}

func Test_loadTLS_Variants(t *testing.T) {
	tc, err := loadTLS("")
	if err != nil || tc == nil || tc.RootCAs != nil {
		t.Fatalf("default tls: %v %v", tc, err)
	}

	tmp := filepath.Join(t.TempDir(), "bad.pem")
	_ = os.WriteFile(tmp, []byte("not pem"), 0o600)
	if tc, err = loadTLS(tmp); err == nil || tc != nil {
		t.Fatalf("bad CA should error, got %v", tc)
	}
	if _, err = loadTLS(filepath.Join(t.TempDir(), "missing.pem")); err == nil {
		t.Fatalf("missing CA should error")
	}
}
