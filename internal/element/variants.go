package element

// Text is a run of text drawn inside the element box
type Text struct {
	Source     Source
	FontFamily string // "regular", "bold" or "mono"
	FontSize   float64
	Weight     string // "normal" or "bold"
	Color      string
	Align      string // "left", "center" or "right"
}

func (t *Text) Kind() Kind { return KindText }
func (t *Text) source() Source { return t.Source }
func (t *Text) withSource(s Source) Body {
	c := *t
	c.Source = s
	return &c
}
func (t *Text) clone() Body {
	c := *t
	return &c
}

// Barcode is an EAN-13 symbol scaled into the element box
type Barcode struct {
	Source Source
	Color  string
	Format string
}

func (b *Barcode) Kind() Kind { return KindBarcode }
func (b *Barcode) source() Source { return b.Source }
func (b *Barcode) withSource(s Source) Body {
	c := *b
	c.Source = s
	return &c
}
func (b *Barcode) clone() Body {
	c := *b
	return &c
}

// QR is a square QR code; its edge is the element width
type QR struct {
	Source     Source
	Color      string
	Background string
}

func (q *QR) Kind() Kind { return KindQR }
func (q *QR) source() Source { return q.Source }
func (q *QR) withSource(s Source) Body {
	c := *q
	c.Source = s
	return &c
}
func (q *QR) clone() Body {
	c := *q
	return &c
}

// Image is a bitmap loaded from a URL or local path
type Image struct {
	Source Source
}

func (i *Image) Kind() Kind { return KindImage }
func (i *Image) source() Source { return i.Source }
func (i *Image) withSource(s Source) Body {
	c := *i
	c.Source = s
	return &c
}
func (i *Image) clone() Body {
	c := *i
	return &c
}

// NewText creates a text element with default styling
func NewText(id string, src Source, pos Point, size Size) *Element {
	return &Element{
		ID:       id,
		Position: pos,
		Size:     size,
		Body: &Text{
			Source:     src,
			FontFamily: "regular",
			FontSize:   10,
			Weight:     "normal",
			Color:      "#000000",
			Align:      "left",
		},
	}
}

// NewBarcode creates an EAN-13 barcode element
func NewBarcode(id string, src Source, pos Point, size Size) *Element {
	return &Element{
		ID:       id,
		Position: pos,
		Size:     size,
		Body:     &Barcode{Source: src, Color: "#000000", Format: FormatEAN13},
	}
}

// NewQR creates a square QR element with the given edge length
func NewQR(id string, src Source, pos Point, edge float64) *Element {
	return &Element{
		ID:       id,
		Position: pos,
		Size:     Size{Width: edge, Height: edge},
		Body:     &QR{Source: src, Color: "#000000", Background: "#FFFFFF"},
	}
}

// NewImage creates an image element
func NewImage(id string, src Source, pos Point, size Size) *Element {
	return &Element{
		ID:       id,
		Position: pos,
		Size:     size,
		Body:     &Image{Source: src},
	}
}
