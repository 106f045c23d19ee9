package vis

import (
	"image"

	"github.com/LdDl/mot-eval/motio"
	"github.com/fogleman/gg"
	"github.com/pkg/errors"
	"golang.org/x/image/font"
)

const (
	// Extra space around label text inside its background box
	labelPadX = 3.0
	labelPadY = 4.0
)

// Drawer draws tracked boxes with identifiers over frames
type Drawer struct {
	lineWidth float64
	// nil means gg's built-in face
	face font.Face
}

// NewDrawer creates drawer. Font is loaded once here and reused for every frame.
func NewDrawer(style StyleConfig) (*Drawer, error) {
	drawer := Drawer{
		lineWidth: style.LineWidth,
	}
	if style.FontPath != "" {
		face, err := gg.LoadFontFace(style.FontPath, style.FontSize)
		if err != nil {
			return nil, errors.Wrapf(err, "Can't load font %s", style.FontPath)
		}
		drawer.face = face
	}
	return &drawer, nil
}

// Draw returns copy of the frame with every record drawn on it: colored box outline,
// filled label background in the same color at the top-left corner and white identifier text.
// Source frame is not modified.
func (drawer *Drawer) Draw(frame image.Image, records []motio.Record) image.Image {
	ctx := gg.NewContextForImage(frame)
	if drawer.face != nil {
		ctx.SetFontFace(drawer.face)
	}
	ctx.SetLineWidth(drawer.lineWidth)

	for _, rec := range records {
		// Boxes are drawn on whole pixels
		box := rec.Rect()
		box.X = float64(int(box.X))
		box.Y = float64(int(box.Y))
		box.Width = float64(int(box.Width))
		box.Height = float64(int(box.Height))
		corners := box.Corners()

		trackColor := TrackColor(rec.ID)
		label := TrackLabel(rec.ID)

		ctx.SetColor(trackColor)
		ctx.DrawRectangle(corners.X1, corners.Y1, corners.X2-corners.X1, corners.Y2-corners.Y1)
		ctx.Stroke()

		textW, textH := ctx.MeasureString(label)
		ctx.DrawRectangle(corners.X1, corners.Y1, textW+labelPadX, textH+labelPadY)
		ctx.Fill()

		ctx.SetRGB(1, 1, 1)
		ctx.DrawString(label, corners.X1, corners.Y1+textH+labelPadY)
	}
	return ctx.Image()
}
