package scene

import "github.com/geomagical/geosynth/kind"

// Named accessors for the builtin kinds.

func (s *Scene) CubeEnvironmentMap() *kind.Data      { return s.builtin(kind.CubeEnvironmentMap) }
func (s *Scene) Depth() *kind.Data                   { return s.builtin(kind.Depth) }
func (s *Scene) Extrinsics() *kind.Data              { return s.builtin(kind.Extrinsics) }
func (s *Scene) Gravity() *kind.Data                 { return s.builtin(kind.Gravity) }
func (s *Scene) HDRCubeEnvironmentMap() *kind.Data   { return s.builtin(kind.HDRCubeEnvironmentMap) }
func (s *Scene) HDRReflectance() *kind.Data          { return s.builtin(kind.HDRReflectance) }
func (s *Scene) HDRResidual() *kind.Data             { return s.builtin(kind.HDRResidual) }
func (s *Scene) HDRRGB() *kind.Data                  { return s.builtin(kind.HDRRGB) }
func (s *Scene) HDRShading() *kind.Data              { return s.builtin(kind.HDRShading) }
func (s *Scene) HDRSphereEnvironmentMap() *kind.Data { return s.builtin(kind.HDRSphereEnvironmentMap) }
func (s *Scene) InstanceSegmentation() *kind.Data    { return s.builtin(kind.InstanceSegmentation) }
func (s *Scene) Intrinsics() *kind.Data              { return s.builtin(kind.Intrinsics) }
func (s *Scene) LayoutLinesFull() *kind.Data         { return s.builtin(kind.LayoutLinesFull) }
func (s *Scene) LayoutLinesOccluded() *kind.Data     { return s.builtin(kind.LayoutLinesOccluded) }
func (s *Scene) LayoutLinesVisible() *kind.Data      { return s.builtin(kind.LayoutLinesVisible) }
func (s *Scene) Lighting() *kind.Data                { return s.builtin(kind.Lighting) }
func (s *Scene) Normals() *kind.Data                 { return s.builtin(kind.Normals) }
func (s *Scene) Reflectance() *kind.Data             { return s.builtin(kind.Reflectance) }
func (s *Scene) Residual() *kind.Data                { return s.builtin(kind.Residual) }
func (s *Scene) RGB() *kind.Data                     { return s.builtin(kind.RGB) }
func (s *Scene) SemanticSegmentation() *kind.Data    { return s.builtin(kind.SemanticSegmentation) }
func (s *Scene) Shading() *kind.Data                 { return s.builtin(kind.Shading) }
func (s *Scene) SphereEnvironmentMap() *kind.Data    { return s.builtin(kind.SphereEnvironmentMap) }
