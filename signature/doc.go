// Package signature builds argument layouts (root and local signatures) for
// raytracing shaders.
//
// A [Builder] accumulates named arguments: inline 32-bit constants, single
// SRV/UAV/CBV descriptors bound by GPU address, and descriptor-table ranges.
// [Builder.Build] orders the arguments, compiles the native signature on the
// device and returns an immutable [Layout] that knows where every argument
// lives inside a shader record.
//
// # Record Layout
//
// A shader record starts with the shader identifier
// (rtcore.ShaderIdentifierSize bytes). Arguments follow in final order:
//
//	[identifier 32B][constants ...][descriptor 8B]...[descriptor table 8B]
//
// Constants are moved in front of descriptors, keeping their relative order,
// so that several small constant blocks pack together instead of each being
// padded against an 8-byte pointer. Every constant block is padded to
// rtcore.DescriptorHandleSize. If descriptor ranges were added, a single
// descriptor table argument named [DescriptorTableArgument] is appended last.
package signature
