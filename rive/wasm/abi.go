package wasm

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
	"github.com/tetratelabs/wazero/imports/wasi_snapshot_preview1"

	"github.com/qvajs/ebiten-rive/rive"
)

// Guest exports.
const (
	fnAlloc = "rive_alloc"
	fnFree  = "rive_free"

	fnFileLoad            = "file_load"
	fnFileDelete          = "file_delete"
	fnFileArtboardCount   = "file_artboard_count"
	fnFileArtboardDefault = "file_artboard_default"
	fnFileArtboardByIndex = "file_artboard_by_index"
	fnFileArtboardByName  = "file_artboard_by_name"

	fnArtboardName                = "artboard_name"
	fnArtboardBounds              = "artboard_bounds"
	fnArtboardAnimationCount      = "artboard_animation_count"
	fnArtboardAnimationByIndex    = "artboard_animation_by_index"
	fnArtboardAnimationByName     = "artboard_animation_by_name"
	fnArtboardStateMachineCount   = "artboard_state_machine_count"
	fnArtboardStateMachineByIndex = "artboard_state_machine_by_index"
	fnArtboardStateMachineByName  = "artboard_state_machine_by_name"
	fnArtboardAdvance             = "artboard_advance"
	fnArtboardDraw                = "artboard_draw"
	fnArtboardDelete              = "artboard_delete"
	fnAnimationName               = "animation_name"
	fnAnimationInstanceNew        = "animation_instance_new"
	fnAnimationInstanceAdvance    = "animation_instance_advance"
	fnAnimationInstanceApply      = "animation_instance_apply"
	fnAnimationInstanceTime       = "animation_instance_time"
	fnAnimationInstanceDelete     = "animation_instance_delete"
	fnStateMachineName            = "state_machine_name"
	fnStateMachineInstanceNew     = "state_machine_instance_new"
	fnStateMachineInstanceAdvance = "state_machine_instance_advance"
	fnStateMachineInputCount      = "state_machine_instance_input_count"
	fnStateMachineInput           = "state_machine_instance_input"
	fnStateMachineChangedCount    = "state_machine_instance_state_changed_count"
	fnStateMachineChangedName     = "state_machine_instance_state_changed_name"
	fnStateMachinePointerDown     = "state_machine_instance_pointer_down"
	fnStateMachinePointerUp       = "state_machine_instance_pointer_up"
	fnStateMachinePointerMove     = "state_machine_instance_pointer_move"
	fnStateMachineInstanceDelete  = "state_machine_instance_delete"
	fnInputName                   = "input_name"
	fnInputType                   = "input_type"
	fnInputGetBool                = "input_get_bool"
	fnInputSetBool                = "input_set_bool"
	fnInputGetNumber              = "input_get_number"
	fnInputSetNumber              = "input_set_number"
	fnInputFire                   = "input_fire"
)

var requiredExports = []string{
	fnAlloc, fnFree,
	fnFileLoad, fnFileDelete, fnFileArtboardCount, fnFileArtboardDefault,
	fnFileArtboardByIndex, fnFileArtboardByName,
	fnArtboardName, fnArtboardBounds, fnArtboardAnimationCount, fnArtboardAnimationByIndex,
	fnArtboardAnimationByName, fnArtboardStateMachineCount, fnArtboardStateMachineByIndex,
	fnArtboardStateMachineByName, fnArtboardAdvance, fnArtboardDraw, fnArtboardDelete,
	fnAnimationName, fnAnimationInstanceNew, fnAnimationInstanceAdvance,
	fnAnimationInstanceApply, fnAnimationInstanceTime, fnAnimationInstanceDelete,
	fnStateMachineName, fnStateMachineInstanceNew, fnStateMachineInstanceAdvance,
	fnStateMachineInputCount, fnStateMachineInput, fnStateMachineChangedCount,
	fnStateMachineChangedName, fnStateMachinePointerDown, fnStateMachinePointerUp,
	fnStateMachinePointerMove, fnStateMachineInstanceDelete,
	fnInputName, fnInputType, fnInputGetBool, fnInputSetBool, fnInputGetNumber,
	fnInputSetNumber, fnInputFire,
}

type signature struct {
	params  []api.ValueType
	results []api.ValueType
}

func sig(params []api.ValueType, results ...api.ValueType) signature {
	return signature{params: params, results: results}
}

func (s signature) String() string {
	return fmt.Sprintf("(%s) -> (%s)", valueTypes(s.params), valueTypes(s.results))
}

func valueTypes(ts []api.ValueType) string {
	names := make([]string, len(ts))
	for i, t := range ts {
		names[i] = api.ValueTypeName(t)
	}
	return strings.Join(names, ", ")
}

var (
	sigHandle       = []api.ValueType{i32}
	sigHandleIndex  = []api.ValueType{i32, i32}
	sigHandleString = []api.ValueType{i32, i32, i32}
	sigHandleF64    = []api.ValueType{i32, f64t}
	sigHandlePoint  = []api.ValueType{i32, f64t, f64t}
)

// exportSignatures is the calling convention each guest export must match.
var exportSignatures = map[string]signature{
	fnAlloc: sig(sigHandle, i32),
	fnFree:  sig(sigHandle),

	fnFileLoad:            sig(sigHandleIndex, i32),
	fnFileDelete:          sig(sigHandle),
	fnFileArtboardCount:   sig(sigHandle, i32),
	fnFileArtboardDefault: sig(sigHandle, i32),
	fnFileArtboardByIndex: sig(sigHandleIndex, i32),
	fnFileArtboardByName:  sig(sigHandleString, i32),

	fnArtboardName:                sig(sigHandle, i64),
	fnArtboardBounds:              sig(sigHandleIndex, i32),
	fnArtboardAnimationCount:      sig(sigHandle, i32),
	fnArtboardAnimationByIndex:    sig(sigHandleIndex, i32),
	fnArtboardAnimationByName:     sig(sigHandleString, i32),
	fnArtboardStateMachineCount:   sig(sigHandle, i32),
	fnArtboardStateMachineByIndex: sig(sigHandleIndex, i32),
	fnArtboardStateMachineByName:  sig(sigHandleString, i32),
	fnArtboardAdvance:             sig(sigHandleF64, i32),
	fnArtboardDraw:                sig(sigHandleIndex),
	fnArtboardDelete:              sig(sigHandle),

	fnAnimationName:            sig(sigHandle, i64),
	fnAnimationInstanceNew:     sig(sigHandleIndex, i32),
	fnAnimationInstanceAdvance: sig(sigHandleF64, i32),
	fnAnimationInstanceApply:   sig(sigHandleF64),
	fnAnimationInstanceTime:    sig(sigHandle, f64t),
	fnAnimationInstanceDelete:  sig(sigHandle),

	fnStateMachineName:            sig(sigHandle, i64),
	fnStateMachineInstanceNew:     sig(sigHandleIndex, i32),
	fnStateMachineInstanceAdvance: sig(sigHandleF64, i32),
	fnStateMachineInputCount:      sig(sigHandle, i32),
	fnStateMachineInput:           sig(sigHandleIndex, i32),
	fnStateMachineChangedCount:    sig(sigHandle, i32),
	fnStateMachineChangedName:     sig(sigHandleIndex, i64),
	fnStateMachinePointerDown:     sig(sigHandlePoint),
	fnStateMachinePointerUp:       sig(sigHandlePoint),
	fnStateMachinePointerMove:     sig(sigHandlePoint),
	fnStateMachineInstanceDelete:  sig(sigHandle),

	fnInputName:      sig(sigHandle, i64),
	fnInputType:      sig(sigHandle, i32),
	fnInputGetBool:   sig(sigHandle, i32),
	fnInputSetBool:   sig(sigHandleIndex),
	fnInputGetNumber: sig(sigHandle, f64t),
	fnInputSetNumber: sig(sigHandleF64),
	fnInputFire:      sig(sigHandle),
}

// ErrABIMismatch reports a module that is not a build of the flat runtime
// ABI, such as the Emscripten binaries published for browsers.
var ErrABIMismatch = errors.New("wasm: module does not implement the flat rive ABI")

// checkABI validates a compiled module before it is instantiated.
func checkABI(compiled wazero.CompiledModule) error {
	for _, def := range compiled.ImportedFunctions() {
		mod, name, _ := def.Import()
		if mod == wasi_snapshot_preview1.ModuleName || mod == hostModule {
			continue
		}
		return fmt.Errorf("%w: unsupported import %s.%s", ErrABIMismatch, mod, name)
	}
	exports := compiled.ExportedFunctions()
	for _, name := range requiredExports {
		def, ok := exports[name]
		if !ok {
			return fmt.Errorf("%w: missing export %q", ErrABIMismatch, name)
		}
		want := exportSignatures[name]
		got := signature{params: def.ParamTypes(), results: def.ResultTypes()}
		if !slices.Equal(got.params, want.params) || !slices.Equal(got.results, want.results) {
			return fmt.Errorf("%w: export %q is %s, want %s", ErrABIMismatch, name, got, want)
		}
	}
	if len(compiled.ExportedMemories()) == 0 {
		return fmt.Errorf("%w: module exports no memory", ErrABIMismatch)
	}
	return nil
}

// Host module imported by the guest for drawing.
const (
	hostModule = "rive_renderer"

	hostSave      = "save"
	hostRestore   = "restore"
	hostTransform = "transform"
	hostMoveTo    = "move_to"
	hostLineTo    = "line_to"
	hostCubicTo   = "cubic_to"
	hostClose     = "close"
	hostFill      = "fill"
	hostStroke    = "stroke"
)

// Input type codes reported by input_type.
const (
	inputTypeNumber  = 56
	inputTypeTrigger = 58
	inputTypeBool    = 59
)

func inputKind(code uint32) rive.InputKind {
	switch code {
	case inputTypeBool:
		return rive.InputBool
	case inputTypeTrigger:
		return rive.InputTrigger
	case inputTypeNumber:
		return rive.InputNumber
	default:
		return 0
	}
}

func unpackString(v uint64) (ptr, n uint32) {
	return uint32(v >> 32), uint32(v)
}
