package render

import (
	"fmt"
	"io"
	"math"
	"strconv"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/tsawler/textpos"
)

// defaultBox is used for pages without a usable box.
var defaultBox = [4]float64{0, 0, 612, 792}

const pageStyle = `.page{position:relative;margin:1em auto;border:1px solid #ccc;overflow:hidden}
.page span{position:absolute;white-space:pre;line-height:1}`

// pageBox normalises box to [llx lly urx ury], falling back to US Letter.
func pageBox(box []float64) [4]float64 {
	if len(box) != 4 {
		return defaultBox
	}
	b := [4]float64{
		math.Min(box[0], box[2]), math.Min(box[1], box[3]),
		math.Max(box[0], box[2]), math.Max(box[1], box[3]),
	}
	if b[2]-b[0] <= 0 || b[3]-b[1] <= 0 {
		return defaultBox
	}
	return b
}

// WriteHTML writes a standalone HTML document with one box per page, sized
// from the page's box, and one absolutely positioned span per item
// measured from the box's lower left corner. Text is escaped by the HTML
// renderer.
func WriteHTML(w io.Writer, pages []textpos.PageItems) error {
	doc := &html.Node{Type: html.DocumentNode}
	doc.AppendChild(&html.Node{Type: html.DoctypeNode, Data: "html"})

	root := element(atom.Html)
	doc.AppendChild(root)

	head := element(atom.Head)
	root.AppendChild(head)
	head.AppendChild(element(atom.Meta, html.Attribute{Key: "charset", Val: "utf-8"}))
	title := element(atom.Title)
	title.AppendChild(textNode("textpos"))
	head.AppendChild(title)
	style := element(atom.Style)
	style.AppendChild(textNode(pageStyle))
	head.AppendChild(style)

	body := element(atom.Body)
	root.AppendChild(body)
	for _, p := range pages {
		box := pageBox(p.Box)
		page := element(atom.Div,
			html.Attribute{Key: "class", Val: "page"},
			html.Attribute{Key: "data-page", Val: strconv.Itoa(p.Page)},
			html.Attribute{Key: "style", Val: fmt.Sprintf("width:%gpt;height:%gpt", box[2]-box[0], box[3]-box[1])},
		)
		for _, item := range p.Items {
			x, y := item.X-box[0], item.Y-box[1]
			span := element(atom.Span,
				html.Attribute{Key: "style", Val: fmt.Sprintf("left:%.2fpt;bottom:%.2fpt;font-size:%.2fpt", x, y, item.FontSize)},
			)
			span.AppendChild(textNode(item.Text))
			page.AppendChild(span)
		}
		body.AppendChild(page)
	}

	return html.Render(w, doc)
}

func element(a atom.Atom, attrs ...html.Attribute) *html.Node {
	return &html.Node{
		Type:     html.ElementNode,
		DataAtom: a,
		Data:     a.String(),
		Attr:     attrs,
	}
}

func textNode(s string) *html.Node {
	return &html.Node{Type: html.TextNode, Data: s}
}
