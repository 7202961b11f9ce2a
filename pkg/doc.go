// Package pkg provides the core libraries for piclet composition.
//
// # Overview
//
// piclet wraps photonic design submissions into complete, measurable test
// circuits. The pkg directory is organized into these areas:
//
//  1. [geom] - Fixed-point geometry kernel (points, boxes, quarter-turn transforms)
//  2. [layout] - Cell/instance arena, hierarchy search, JSON serialization
//  3. [place] - Declarative placement rules solved to exact transforms
//  4. [route] - Optical and electrical connection synthesis
//  5. [parts] - Part definitions and the materialized-cell library
//  6. [compose] - The template state machine that assembles a piclet
//  7. [verify] - Structural audits over composed results
//
// # Architecture
//
// The typical data flow through piclet:
//
//	Submission layout (JSON)
//	         ↓
//	compose.Composer (place parts, attach inlet, route)
//	         ↓
//	verify.Run (structural checks)
//	         ↓
//	Piclet layout (JSON)
//
// All coordinates are int64 database units (1 nm); every placement and
// route is computed in exact integer arithmetic, so identical inputs
// always produce identical output files.
package pkg
