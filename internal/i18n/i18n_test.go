// Copyright (c) 2026 ToeiRei
// AllSQLAdmin - database credential vault and connection broker
// This source code is licensed under the MIT license found in the LICENSE file.

package i18n

import (
	"strings"
	"testing"
)

func TestAvailableLocales(t *testing.T) {
	got := strings.Join(AvailableLocales(), ",")
	if got != "en,pt" {
		t.Fatalf("AvailableLocales = %q", got)
	}
}

func TestT_BasicAndFormatting(t *testing.T) {
	Init("en")
	if GetLang() != "en" {
		t.Fatalf("expected lang 'en', got %q", GetLang())
	}
	if got := T("tables.none"); got != "No tables found." {
		t.Fatalf("unexpected translation: %q", got)
	}
	if got := T("exec.rows_affected", 3); got != "3 row(s) affected." {
		t.Fatalf("unexpected formatted translation: %q", got)
	}

	SetLang("pt")
	if got := T("profiles.saved", "prod"); got != `Perfil "prod" guardado.` {
		t.Fatalf("unexpected Portuguese translation: %q", got)
	}
	Init("en")
}

func TestT_FallbacksToEnglishAndID(t *testing.T) {
	Init("fr")
	if got := T("tables.none"); got != "No tables found." {
		t.Fatalf("expected English fallback, got %q", got)
	}
	if got := T("no.such.message"); got != "no.such.message" {
		t.Fatalf("unknown id should be returned unchanged, got %q", got)
	}
	Init("en")
}

func TestLocalesHaveSameKeys(t *testing.T) {
	ids := []string{
		"app.short", "profiles.none", "profiles.saved", "profiles.updated",
		"profiles.removed", "profiles.copied", "profiles.no_password",
		"profiles.load_warning", "profiles.decrypt_failed", "connect.password_prompt",
		"connect.connected", "connect.missing_target", "tables.none",
		"exec.rows_affected", "exec.rows_affected_unknown", "exec.truncated",
		"exec.row_count", "config.written", "config.exists",
	}
	for _, lang := range AvailableLocales() {
		Init(lang)
		for _, id := range ids {
			if T(id) == id {
				t.Fatalf("locale %s is missing %s", lang, id)
			}
		}
	}
	Init("en")
}
