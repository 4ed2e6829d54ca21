package main

import (
	"context"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/qvajs/ebiten-rive/assets"
	"github.com/qvajs/ebiten-rive/config"
	"github.com/qvajs/ebiten-rive/rive/rivetest"
	"github.com/qvajs/ebiten-rive/sprite"
)

func TestInspectorLines(t *testing.T) {
	rt := rivetest.New(nil)
	file := rivetest.Encode(rivetest.FileSpec{Artboards: []rivetest.ArtboardSpec{
		{Name: "Demo", Width: 100, Height: 100, Animations: []string{"idle"},
			StateMachines: []rivetest.MachineSpec{{Name: "Button"}}},
		{Name: "Badge", Width: 50, Height: 50},
	}})

	loaded, err := sprite.Load(context.Background(), sprite.Options{Runtime: rt, Asset: assets.FromBytes(file)})
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	defer loaded.Destroy()

	pending := sprite.New(context.Background(), sprite.Options{Runtime: rt, Asset: assets.FromBytes(file)})
	defer pending.Destroy()

	failed := sprite.New(context.Background(), sprite.Options{Runtime: rt, Asset: assets.FromBytes([]byte("not a file"))})
	defer failed.Destroy()
	deadline := time.Now().Add(2 * time.Second)
	for !failed.Poll() {
		if time.Now().After(deadline) {
			t.Fatalf("load did not complete")
		}
		time.Sleep(time.Millisecond)
	}

	lines := inspectorLines([]*entry{
		{spec: config.SpriteSpec{Name: "button"}, sprite: loaded},
		{spec: config.SpriteSpec{Name: "slow"}, sprite: pending},
		{spec: config.SpriteSpec{Name: "broken"}, sprite: failed},
	})

	want := []string{
		"button: Demo",
		"  artboards: Demo, Badge",
		"  state machines: Button",
		"  animations: idle",
		"slow: loading",
	}
	if len(lines) != len(want)+1 {
		t.Fatalf("unexpected lines %q", lines)
	}
	if !reflect.DeepEqual(lines[:len(want)], want) {
		t.Fatalf("expected %q, got %q", want, lines[:len(want)])
	}
	if !strings.HasPrefix(lines[len(want)], "broken: ") {
		t.Fatalf("expected the load error, got %q", lines[len(want)])
	}
}
