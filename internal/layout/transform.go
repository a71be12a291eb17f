package layout

// View is the renderable state derived for a surface at commit time: the
// combined visibility and opacity of the surface and its containing layer,
// and the full transform from surface content coordinates to output
// coordinates.
type View struct {
	Visible   bool
	Alpha     float64
	Transform Matrix
}

// ComposeView derives a surface's renderable view from its own committed
// properties, the committed properties of its containing layer, and the
// output resolution. It is a pure function of its inputs so the transform
// pipeline can be tested in isolation.
//
// The transform applies, innermost first: the combined scale (layer dest/src
// ratio times surface dest/src ratio per axis), the surface orientation
// about the center of the layer's destination box, the surface and layer
// destination translations, and the layer orientation about the output
// center. Any stage whose underlying dimensions are zero is skipped rather
// than dividing by zero; callers resolve zero source/destination rectangles
// from buffer dimensions before composing.
func ComposeView(lp LayerProperties, sp SurfaceProperties, outputWidth, outputHeight int32) View {
	m := Identity()

	if outputWidth > 0 && outputHeight > 0 {
		m = m.Multiply(orientationMatrix(lp.Orientation, float64(outputWidth), float64(outputHeight)))
	}
	m = m.Multiply(Translate(float64(lp.Dest.X), float64(lp.Dest.Y)))
	m = m.Multiply(Translate(float64(sp.Dest.X), float64(sp.Dest.Y)))
	if lp.Dest.Width > 0 && lp.Dest.Height > 0 {
		m = m.Multiply(orientationMatrix(sp.Orientation, float64(lp.Dest.Width), float64(lp.Dest.Height)))
	}
	if sx, sy, ok := scaleFactors(lp, sp); ok {
		m = m.Multiply(Scale(sx, sy))
	}

	return View{
		Visible:   lp.Visible && sp.Visible,
		Alpha:     lp.Opacity * sp.Opacity,
		Transform: m,
	}
}

// orientationMatrix rotates about the center of a width-by-height box. The
// 90 and 270 degree cases swap an anisotropic scale equal to the box's aspect
// ratio so the rotated content keeps filling the box.
func orientationMatrix(o Orientation, width, height float64) Matrix {
	var cos, sin float64
	sx, sy := 1.0, 1.0

	switch o {
	case Orientation90:
		sin = 1
		sx = width / height
		sy = height / width
	case Orientation180:
		cos = -1
	case Orientation270:
		sin = -1
		sx = width / height
		sy = height / width
	default:
		cos = 1
	}

	cx, cy := width/2, height/2
	return Translate(cx, cy).
		Multiply(Scale(sx, sy)).
		Multiply(RotateXY(cos, sin)).
		Multiply(Translate(-cx, -cy))
}

// scaleFactors returns the combined per-axis scale of the layer and surface
// destination/source ratios. Returns ok=false when any source dimension is
// zero, in which case the scale stage is skipped.
func scaleFactors(lp LayerProperties, sp SurfaceProperties) (float64, float64, bool) {
	if lp.Source.Width == 0 || lp.Source.Height == 0 ||
		sp.Source.Width == 0 || sp.Source.Height == 0 {
		return 0, 0, false
	}

	sx := (float64(lp.Dest.Width) / float64(lp.Source.Width)) *
		(float64(sp.Dest.Width) / float64(sp.Source.Width))
	sy := (float64(lp.Dest.Height) / float64(lp.Source.Height)) *
		(float64(sp.Dest.Height) / float64(sp.Source.Height))
	return sx, sy, true
}
