package model

import "testing"

func TestContextHas(t *testing.T) {
	c := Context{"purpose": "billing", "empty": nil}
	if !c.Has("purpose") {
		t.Fatal("present key must report true")
	}
	if !c.Has("empty") {
		t.Fatal("nil value still counts as present")
	}
	if c.Has("absent") {
		t.Fatal("absent key must report false")
	}
}

func TestContextBoolCoercion(t *testing.T) {
	c := Context{
		"native":    true,
		"str_true":  "true",
		"str_false": "false",
		"garbage":   "yes",
		"number":    1,
	}

	if !c.Bool("native", false) {
		t.Fatal("native bool lost")
	}
	if !c.Bool("str_true", false) {
		t.Fatal(`"true" must coerce to true`)
	}
	if c.Bool("str_false", true) {
		t.Fatal(`"false" must coerce to false`)
	}
	if !c.Bool("garbage", true) || c.Bool("garbage", false) {
		t.Fatal("unrecognized strings fall back to the default")
	}
	if !c.Bool("number", true) {
		t.Fatal("numbers fall back to the default")
	}
	if c.Bool("absent", false) {
		t.Fatal("absent key must use the default")
	}
}

func TestContextString(t *testing.T) {
	c := Context{"purpose": "billing", "count": 3}
	if got := c.String("purpose", ""); got != "billing" {
		t.Fatalf("got %q", got)
	}
	if got := c.String("count", "fallback"); got != "fallback" {
		t.Fatalf("non-string must use default, got %q", got)
	}
	if got := c.String("absent", "fallback"); got != "fallback" {
		t.Fatalf("got %q", got)
	}
}

func TestContextHarm(t *testing.T) {
	tests := []struct {
		ctx  Context
		want HarmLevel
	}{
		{Context{"harm_assessment": "none"}, HarmNone},
		{Context{"harm_assessment": "high"}, HarmHigh},
		{Context{}, HarmUnknown},
		{Context{"harm_assessment": 3}, HarmUnknown},
	}
	for _, tt := range tests {
		if got := tt.ctx.Harm(); got != tt.want {
			t.Errorf("Harm(%v) = %s, want %s", tt.ctx, got, tt.want)
		}
	}
}
