// Package shader holds compiled shader libraries and the exports they
// declare.
//
// A Library is an opaque blob plus the list of entry point names it exports.
// Libraries produced by an external DXIL toolchain are wrapped with
// NewLibrary. WGSL sources can be compiled in-process with CompileWGSL,
// which runs the naga front end and SPIR-V back end and discovers the export
// list from the module's entry points.
package shader
