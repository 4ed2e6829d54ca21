// Package wasm runs the animation runtime as a WebAssembly module on
// wazero and adapts it to the rive interfaces.
//
// The guest exposes a flat, handle-based ABI. Every native object is an
// i32 handle where zero means "absent". Strings cross the boundary as a
// guest-owned (ptr, len) pair packed into an i64 as ptr<<32 | len, valid
// until the next guest call. Host strings are copied into memory obtained
// from rive_alloc and released with rive_free.
//
// Drawing is delegated back to the host: artboard_draw(artboard, renderer)
// calls the functions of the "rive_renderer" host module with the renderer
// handle, and those calls are replayed onto the rive.Renderer it names.
//
// The module may import only wasi_snapshot_preview1 and rive_renderer, and
// must export linear memory plus every function of the ABI with the exact
// signatures listed in exportSignatures. It is a build of the C++ runtime
// for wasm32-wasi with a thin C shim over File, Artboard, the animation
// instances and the state machine inputs, linked as a reactor so that
// _initialize runs once on instantiation. The Emscripten binaries published
// for browsers import "env" and fail New with ErrABIMismatch.
//
// Importing the package registers Factory with rive.SetFactory.
package wasm
