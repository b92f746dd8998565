package raster

import (
	"fmt"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// Shader turns a fragment into a color. Implementations are called
// concurrently from raster jobs and must not mutate shared state.
type Shader interface {
	Shade(f Fragment) RGB
}

// ShaderFunc adapts a function to Shader.
type ShaderFunc func(f Fragment) RGB

func (fn ShaderFunc) Shade(f Fragment) RGB { return fn(f) }

// ShaderNames lists the built-in shaders accepted by ParseShader.
var ShaderNames = []string{"normal", "depth", "lambert"}

// ParseShader returns a built-in shader by name. Lambert shading uses a light
// gray base color.
func ParseShader(name string) (Shader, error) {
	switch name {
	case "normal", "":
		return NormalShader{}, nil
	case "depth":
		return DepthShader{}, nil
	case "lambert":
		return NewLambertShader(RGB{200, 200, 200}), nil
	}
	return nil, fmt.Errorf("raster: unknown shader %q", name)
}

// NormalShader encodes each normal component from [-1, 1] into [0, 255].
type NormalShader struct{}

func (NormalShader) Shade(f Fragment) RGB {
	return RGB{encodeNormal(f.Normal[0]), encodeNormal(f.Normal[1]), encodeNormal(f.Normal[2])}
}

func encodeNormal(n float32) uint8 {
	return clamp255((n*0.5 + 0.5) * 255)
}

// DepthShader maps depth to gray, white at the near plane.
type DepthShader struct{}

func (DepthShader) Shade(f Fragment) RGB {
	g := clamp255((1 - f.Depth) * 255)
	return RGB{g, g, g}
}

// LightConfig holds precomputed lighting parameters.
type LightConfig struct {
	LightDir  mgl32.Vec3
	RimDir    mgl32.Vec3
	ViewDir   mgl32.Vec3
	HalfMain  mgl32.Vec3 // precomputed half-vector for Blinn-Phong
	Ambient   float32
	Hemi      float32
	Direct    float32
	Rim       float32
	SpecInt   float32
	SpecPow   float32
	Exposure  float32
	SRGBGamma float32
	InvGamma  float32
}

// DefaultLightConfig returns a key light from the upper right, a cool rim
// light from behind and a camera looking down +Z.
func DefaultLightConfig() LightConfig {
	lightDir := mgl32.Vec3{180, 260, -140}.Normalize()
	rimDir := mgl32.Vec3{-160, 130, 210}.Normalize()
	viewDir := mgl32.Vec3{0, 0, 1}

	halfMain := lightDir.Sub(viewDir).Normalize()

	return LightConfig{
		LightDir:  lightDir,
		RimDir:    rimDir,
		ViewDir:   viewDir,
		HalfMain:  halfMain,
		Ambient:   0.15,
		Hemi:      0.25,
		Direct:    0.85,
		Rim:       0.30,
		SpecInt:   0.35,
		SpecPow:   24.0,
		Exposure:  1.0,
		SRGBGamma: 2.2,
		InvGamma:  1.0 / 2.2,
	}
}

// ComputeShade returns the combined lighting scalar for a unit normal.
func (lc *LightConfig) ComputeShade(normal mgl32.Vec3) float32 {
	// Lambertian, one-sided
	ndlMain := math32.Max(normal.Dot(lc.LightDir), 0)
	ndlRim := math32.Max(normal.Dot(lc.RimDir), 0)

	// Hemisphere fill
	hemi := normal[1]*0.5 + 0.5
	hemiLight := hemi * lc.Hemi

	// Blinn-Phong specular
	ndh := normal.Dot(lc.HalfMain)
	if ndh < 0 {
		ndh = 0
	}
	spec := math32.Pow(ndh, lc.SpecPow) * lc.SpecInt

	return lc.Ambient + hemiLight + ndlMain*lc.Direct + ndlRim*lc.Rim + spec
}

// LambertShader lights a base color with LightConfig, then tone maps with ACES
// and encodes to sRGB.
type LambertShader struct {
	Base  RGB
	Light LightConfig
}

// NewLambertShader uses DefaultLightConfig.
func NewLambertShader(base RGB) LambertShader {
	return LambertShader{Base: base, Light: DefaultLightConfig()}
}

func (s LambertShader) Shade(f Fragment) RGB {
	n := f.Normal
	if l := n.Len(); l > 1e-8 {
		n = n.Mul(1 / l)
	}
	shade := s.Light.ComputeShade(n) * s.Light.Exposure

	var out RGB
	for k := 0; k < 3; k++ {
		lin := srgbToLinear[s.Base[k]] * shade
		out[k] = clamp255(math32.Pow(ACESTonemap(lin), s.Light.InvGamma) * 255)
	}
	return out
}

// Precomputed sRGB-to-linear lookup table (256 entries).
var srgbToLinear [256]float32

func init() {
	for i := 0; i < 256; i++ {
		srgbToLinear[i] = math32.Pow(float32(i)/255.0, 2.2)
	}
}

// ACESTonemap applies ACES Filmic tone mapping to a linear value.
func ACESTonemap(x float32) float32 {
	return (x * (2.51*x + 0.03)) / (x*(2.43*x+0.59) + 0.14)
}

func clamp255(v float32) uint8 {
	if !(v > 0) {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v + 0.5)
}
