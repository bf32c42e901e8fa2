package mesh

import (
	v2 "github.com/deadsy/sdfx/vec/v2"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

func v2At(x, y float64) v2.Vec { return v2.Vec{X: x, Y: y} }

func v3At(x, y, z float64) v3.Vec { return v3.Vec{X: x, Y: y, Z: z} }
