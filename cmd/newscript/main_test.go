package main

import (
	"strings"
	"testing"

	"spectral/internal/engine"
	"spectral/internal/scripting"
)

func TestToSnakeCase(t *testing.T) {
	cases := map[string]string{
		"EnemyChaser": "enemy_chaser",
		"Rotator":     "rotator",
		"HUD":         "h_u_d",
	}
	for in, want := range cases {
		if got := toSnakeCase(in); got != want {
			t.Errorf("toSnakeCase(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestValidName(t *testing.T) {
	for _, ok := range []string{"Chaser", "Enemy2", "Big_Boss"} {
		if err := validName(ok); err != nil {
			t.Errorf("validName(%q): %v", ok, err)
		}
	}
	for _, bad := range []string{"", "chaser", "Enemy-Chaser", "Émile", "Two Words"} {
		if err := validName(bad); err == nil {
			t.Errorf("validName(%q) accepted", bad)
		}
	}
}

func TestTemplateIsLoadableLua(t *testing.T) {
	src := render("EnemyChaser", "assets/scripts/enemy_chaser.lua")
	if strings.Contains(src, "{{") {
		t.Fatalf("unexpanded placeholder:\n%s", src)
	}
	inst, err := scripting.NewLuaRuntime("").LoadString("enemy_chaser", src)
	if err != nil {
		t.Fatalf("generated script does not load: %v", err)
	}
	defer inst.Close()

	s := engine.NewScene("test")
	e, _ := s.CreateEntity("chaser")
	if err := inst.OnCreate(e); err != nil {
		t.Errorf("OnCreate: %v", err)
	}
	if err := inst.OnUpdate(e, 1.0/60); err != nil {
		t.Errorf("OnUpdate: %v", err)
	}
}
