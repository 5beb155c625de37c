package render

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"log/slog"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/shelfshare/shelfshare-server/internal/domain"
	"github.com/shelfshare/shelfshare-server/internal/errors"
)

// Palette.
var (
	colorBackground = color.RGBA{R: 0x15, G: 0x17, B: 0x1e, A: 0xff}
	colorAccent     = color.RGBA{R: 0xf5, G: 0x9e, B: 0x0b, A: 0xff}
	colorText       = color.RGBA{R: 0xf4, G: 0xf4, B: 0xf5, A: 0xff}
	colorMuted      = color.RGBA{R: 0x9c, G: 0xa3, B: 0xaf, A: 0xff}
	colorSlot       = color.RGBA{R: 0x27, G: 0x2a, B: 0x33, A: 0xff}
)

const (
	margin      = 48
	headerSpace = 150
	slotGap     = 24
)

// Renderer composes lists and cover art into PNGs.
type Renderer struct {
	logger *slog.Logger
}

// NewRenderer creates a renderer.
func NewRenderer(logger *slog.Logger) *Renderer {
	return &Renderer{logger: logger}
}

// Render produces a PNG for the list at the given size. covers is parallel
// to list.Items; nil slots fall back to an empty placeholder box. Returns
// NOT_FOUND for an unknown template and VALIDATION for an unsupported size.
func (r *Renderer) Render(list *domain.List, covers []image.Image, size Size) ([]byte, error) {
	templateID := list.TemplateID
	if templateID == "" {
		templateID = DefaultTemplateID(list.Type)
	}

	template, err := GetTemplate(templateID)
	if err != nil {
		return nil, err
	}
	if !template.Supports(size) {
		return nil, errors.Validationf("template %q does not support size %q", template.ID, size)
	}

	width, height := size.Dimensions()
	canvas := image.NewRGBA(image.Rect(0, 0, width, height))

	// Background and accent bar.
	draw.Draw(canvas, canvas.Bounds(), image.NewUniform(colorBackground), image.Point{}, draw.Src)
	draw.Draw(canvas, image.Rect(0, 0, width, 8), image.NewUniform(colorAccent), image.Point{}, draw.Src)

	// Title and subtitle.
	drawText(canvas, truncate(list.Name, 36), margin, 70, 3, colorText)
	drawText(canvas, subtitle(list), margin, 110, 2, colorMuted)

	if len(covers) > template.Slots {
		covers = covers[:template.Slots]
	}
	template.layout(canvas, list, covers)

	var buf bytes.Buffer
	if err := png.Encode(&buf, canvas); err != nil {
		return nil, errors.Wrap(err, errors.CodeInternal, "encode png")
	}

	r.logger.Debug("rendered share image",
		"list_id", list.ID,
		"template", template.ID,
		"size", size,
		"bytes", buf.Len(),
	)
	return buf.Bytes(), nil
}

func subtitle(list *domain.List) string {
	if list.Type == domain.ListTypeTier {
		return "Tier ranking on Shelfshare"
	}
	return "Recommended on Shelfshare"
}

// layoutStrip places up to 5 covers in a single row.
func layoutStrip(canvas *image.RGBA, _ *domain.List, covers []image.Image) {
	bounds := canvas.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()

	const slots = 5
	slotW := (width - 2*margin - (slots-1)*slotGap) / slots
	slotH := height - headerSpace - margin
	if slotH > slotW*3/2 {
		slotH = slotW * 3 / 2
	}
	top := headerSpace + (height-headerSpace-margin-slotH)/2

	for i := 0; i < slots; i++ {
		x := margin + i*(slotW+slotGap)
		rect := image.Rect(x, top, x+slotW, top+slotH)
		drawSlot(canvas, rect, coverAt(covers, i))
	}
}

// layoutGrid places up to 9 covers in a 3x3 grid. Square output only.
func layoutGrid(canvas *image.RGBA, _ *domain.List, covers []image.Image) {
	bounds := canvas.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()

	const cols, rows = 3, 3
	slotW := (width - 2*margin - (cols-1)*slotGap) / cols
	slotH := (height - headerSpace - margin - (rows-1)*slotGap) / rows

	for i := 0; i < cols*rows; i++ {
		col := i % cols
		row := i / cols
		x := margin + col*(slotW+slotGap)
		y := headerSpace + row*(slotH+slotGap)
		drawSlot(canvas, image.Rect(x, y, x+slotW, y+slotH), coverAt(covers, i))
	}
}

// layoutTierBoard draws one row per tier with the tier label on the left and
// that tier's covers across. Unassigned items are skipped.
func layoutTierBoard(canvas *image.RGBA, list *domain.List, covers []image.Image) {
	bounds := canvas.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()

	tiers := list.Tiers
	if len(tiers) == 0 {
		return
	}

	const labelWidth = 140
	rowGap := 16
	rowH := (height - headerSpace - margin - (len(tiers)-1)*rowGap) / len(tiers)
	slotW := rowH * 2 / 3
	if slotW < 40 {
		slotW = 40
	}
	maxPerRow := (width - 2*margin - labelWidth) / (slotW + slotGap)

	for ti, label := range tiers {
		y := headerSpace + ti*(rowH+rowGap)

		// Tier label block.
		labelRect := image.Rect(margin, y, margin+labelWidth-slotGap, y+rowH)
		draw.Draw(canvas, labelRect, image.NewUniform(colorSlot), image.Point{}, draw.Src)
		drawText(canvas, truncate(label, 8), margin+16, y+rowH/2+8, 2, colorAccent)

		// Covers assigned to this tier, in item order.
		placed := 0
		for i, item := range list.Items {
			if item.Tier != ti || i >= len(covers) {
				continue
			}
			if placed >= maxPerRow {
				break
			}
			x := margin + labelWidth + placed*(slotW+slotGap)
			drawSlot(canvas, image.Rect(x, y, x+slotW, y+rowH), covers[i])
			placed++
		}
	}
}

func coverAt(covers []image.Image, i int) image.Image {
	if i < len(covers) {
		return covers[i]
	}
	return nil
}

// drawSlot fills rect with the cover scaled to fit, or an empty box.
func drawSlot(canvas *image.RGBA, rect image.Rectangle, cover image.Image) {
	draw.Draw(canvas, rect, image.NewUniform(colorSlot), image.Point{}, draw.Src)
	if cover == nil {
		return
	}

	// Scale preserving aspect ratio, centered in the slot.
	src := cover.Bounds()
	scale := min(
		float64(rect.Dx())/float64(src.Dx()),
		float64(rect.Dy())/float64(src.Dy()),
	)
	w := int(float64(src.Dx()) * scale)
	h := int(float64(src.Dy()) * scale)
	x := rect.Min.X + (rect.Dx()-w)/2
	y := rect.Min.Y + (rect.Dy()-h)/2

	draw.CatmullRom.Scale(canvas, image.Rect(x, y, x+w, y+h), cover, src, draw.Over, nil)
}

// drawText renders text with the basic pixel font, scaled up by an integer
// factor for legibility at poster sizes.
func drawText(canvas *image.RGBA, text string, x, y, scale int, c color.Color) {
	if text == "" {
		return
	}
	face := basicfont.Face7x13

	// Draw at 1x into a temp image sized to the text.
	w := font.MeasureString(face, text).Ceil()
	h := face.Metrics().Height.Ceil()
	if w == 0 {
		return
	}
	tmp := image.NewRGBA(image.Rect(0, 0, w, h))
	drawer := font.Drawer{
		Dst:  tmp,
		Src:  image.NewUniform(c),
		Face: face,
		Dot:  fixed.P(0, face.Metrics().Ascent.Ceil()),
	}
	drawer.DrawString(text)

	// Integer upscale keeps the pixel font crisp.
	dst := image.Rect(x, y-h*scale, x+w*scale, y)
	draw.NearestNeighbor.Scale(canvas, dst, tmp, tmp.Bounds(), draw.Over, nil)
}

// truncate shortens s to at most max characters, cutting on rune boundaries
// so the font drawer never sees a split multibyte sequence.
func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	if max <= 1 {
		return string(runes[:max])
	}
	return string(runes[:max-1]) + "…"
}
