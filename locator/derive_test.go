package locator

import (
	"strings"
	"testing"
)

func svgDoc() []string {
	return strings.Split(strings.TrimLeft(`
import React from 'react';

export function Icon() {
  return (
    <svg viewBox="0 0 24 24">
      <path d="M5 5 L15 5 Z" fill="none" />
      <path d="M10 10 L20 10 L20 20 Z" fill="none" />
    </svg>
  );
}`, "\n"), "\n")
}

func TestEffectiveLine_FindsElementByAttributes(t *testing.T) {
	// WHAT: with no usable reported line, the deriver locates the right
	// <path> among two by its d attribute.
	desc := Descriptor{
		TagName:    "path",
		Attributes: AttrList{{Name: "d", Value: "M10 10 L20 10 L20 20 Z"}},
	}
	got := EffectiveLine(svgDoc(), desc)
	if got != 7 {
		t.Errorf("got line %d, want 7", got)
	}
}

func TestEffectiveLine_FirstMatchWins(t *testing.T) {
	desc := Descriptor{
		TagName:    "path",
		Attributes: AttrList{{Name: "d", Value: "M5 5 L15 5 Z"}},
	}
	got := EffectiveLine(svgDoc(), desc)
	if got != 6 {
		t.Errorf("got line %d, want 6", got)
	}
}

func TestEffectiveLine_AllAttributesMustMatch(t *testing.T) {
	// WHY: one matching attribute is not enough evidence — a partial
	// match must give up gracefully instead of repointing the edit.
	desc := Descriptor{
		TagName: "path",
		Attributes: AttrList{
			{Name: "d", Value: "M5 5 L15 5 Z"},
			{Name: "stroke", Value: "deep-ocean-blue"},
		},
	}
	got := EffectiveLine(svgDoc(), desc)
	if got != 1 {
		t.Errorf("got line %d, want 1 (give up)", got)
	}
}

func TestEffectiveLine_NoStableAttributes(t *testing.T) {
	desc := Descriptor{
		TagName:    "div",
		Attributes: AttrList{{Name: "class", Value: "box"}},
	}
	got := EffectiveLine(svgDoc(), desc)
	if got != 1 {
		t.Errorf("got line %d, want 1", got)
	}
}

func TestEffectiveLine_NoTagName(t *testing.T) {
	desc := Descriptor{
		Attributes: AttrList{{Name: "href", Value: "/x"}},
	}
	if got := EffectiveLine(svgDoc(), desc); got != 1 {
		t.Errorf("got line %d, want 1", got)
	}
}

func TestEffectiveLine_CaseInsensitiveTag(t *testing.T) {
	lines := []string{
		"export function Toolbar() {",
		`  return <Button aria-label="Save document">Save</Button>;`,
		"}",
	}
	desc := Descriptor{
		TagName:    "button",
		Attributes: AttrList{{Name: "aria-label", Value: "Save document"}},
	}
	if got := EffectiveLine(lines, desc); got != 2 {
		t.Errorf("got line %d, want 2", got)
	}
}

func TestEffectiveLine_MatchesAcrossWrappedTag(t *testing.T) {
	lines := []string{
		"const x = 1;",
		"<img",
		`  src="/hero-banner-large.png"`,
		`  alt="Hero" />`,
	}
	desc := Descriptor{
		TagName:    "img",
		Attributes: AttrList{{Name: "src", Value: "/hero-banner-large.png"}},
	}
	if got := EffectiveLine(lines, desc); got != 2 {
		t.Errorf("got line %d, want 2", got)
	}
}
