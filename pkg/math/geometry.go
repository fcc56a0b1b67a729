package math

import "github.com/go-gl/mathgl/mgl32"

// Normalize returns v scaled to unit length, or v itself when its length is zero.
func Normalize(v Vec3) Vec3 {
	return v.Normalize()
}

// Cross returns the right-handed cross product a x b.
func Cross(a, b Vec3) Vec3 {
	return a.Cross(b)
}

// FaceNormal returns the unit normal of the plane through p1, p2 and p3.
// The normal is (p3-p2) x (p1-p2), so points listed counter-clockwise
// when seen from the front produce a normal facing the viewer.
func FaceNormal(p1, p2, p3 Vec3) Vec3 {
	return Cross(p3.Sub(p2), p1.Sub(p2)).Normalize()
}

// RotateX rotates p counter-clockwise around the X axis by degrees.
func RotateX(p Vec3, degrees float32) Vec3 {
	return FromMGL(mgl32.Rotate3DX(mgl32.DegToRad(degrees)).Mul3x1(p.MGL()))
}

// RotateY rotates p counter-clockwise around the Y axis by degrees.
func RotateY(p Vec3, degrees float32) Vec3 {
	return FromMGL(mgl32.Rotate3DY(mgl32.DegToRad(degrees)).Mul3x1(p.MGL()))
}

// RotateZ rotates p counter-clockwise around the Z axis by degrees.
func RotateZ(p Vec3, degrees float32) Vec3 {
	return FromMGL(mgl32.Rotate3DZ(mgl32.DegToRad(degrees)).Mul3x1(p.MGL()))
}
