package resolver

import (
	"sort"
	"testing"
)

func TestExtractRequiresBothForms(t *testing.T) {
	content := `
local http = require("x.y")
local fs = require 'z'
`
	modules := ExtractRequires(content)
	sort.Strings(modules)

	if len(modules) != 2 {
		t.Fatalf("expected 2 modules, got %d: %v", len(modules), modules)
	}
	if modules[0] != "x.y" || modules[1] != "z" {
		t.Errorf("expected [x.y z], got %v", modules)
	}
}

func TestExtractRequiresQuoteStyles(t *testing.T) {
	content := `
require("a.b")
require('c.d')
require "e.f"
require 'g'
`
	modules := ExtractRequires(content)
	if len(modules) != 4 {
		t.Fatalf("expected 4 modules, got %d: %v", len(modules), modules)
	}
}

func TestExtractRequiresDeduplicates(t *testing.T) {
	content := `
require("luci.http")
local h = require("luci.http")
require "luci.http"
`
	modules := ExtractRequires(content)
	if len(modules) != 1 {
		t.Errorf("expected duplicates to collapse, got %v", modules)
	}
	if modules[0] != "luci.http" {
		t.Errorf("expected luci.http, got %v", modules)
	}
}

func TestExtractRequiresNone(t *testing.T) {
	if modules := ExtractRequires("local x = 1\nreturn x\n"); len(modules) != 0 {
		t.Errorf("expected no modules, got %v", modules)
	}
}
