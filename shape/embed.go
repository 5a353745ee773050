package shape

import (
	"whiteboard/geometry"
)

// Object fit modes for images.
const (
	ObjectFitFill    = "fill"
	ObjectFitContain = "contain"
	ObjectFitCover   = "cover"
)

// PortalVariant embeds another page or an external reference.
func PortalVariant() *Variant {
	return &Variant{
		Type: TypePortal,
		Caps: Capabilities{
			CanBind:          true,
			CanEdit:          true,
			CanActivate:      true,
			HideRotateHandle: true,
		},
		Defaults: func() Props {
			return boxDefaults(geometry.Pt(400, 300))
		},
		Bounds: rectBounds,
		Resize: resizeRect,
	}
}

// ImageVariant shows an asset referenced by AssetID.
func ImageVariant() *Variant {
	return &Variant{
		Type: TypeImage,
		Caps: Capabilities{
			CanBind:             true,
			CanFlip:             true,
			IsAspectRatioLocked: true,
		},
		Defaults: func() Props {
			p := boxDefaults(geometry.Pt(300, 300))
			p.StrokeWidth = 0
			p.ObjectFit = ObjectFitFill
			return p
		},
		Bounds: rectBounds,
		Resize: resizeRect,
		Flip:   flipRect,
	}
}

// YouTubeVariant embeds a video player at a fixed 16:9 ratio.
func YouTubeVariant() *Variant {
	return &Variant{
		Type: TypeYouTube,
		Caps: Capabilities{
			CanBind:             true,
			CanActivate:         true,
			IsAspectRatioLocked: true,
			HideRotateHandle:    true,
		},
		Defaults: func() Props {
			p := boxDefaults(geometry.Pt(480, 270))
			p.StrokeWidth = 0
			return p
		},
		Bounds: rectBounds,
		Resize: resizeRect,
		Validate: func(current Props, patch Patch) Patch {
			if patch.Size != nil {
				s := *patch.Size
				patch.Size = Ptr(geometry.ClampSize(geometry.Pt(s[0], s[0]*9/16)))
			}
			return patch
		},
	}
}
