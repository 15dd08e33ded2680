package shaders

import (
	_ "embed"
)

//go:embed ray_marching_full.wgsl
var RayMarchingFullWGSL string

//go:embed ray_marching_minimal.wgsl
var RayMarchingMinimalWGSL string
