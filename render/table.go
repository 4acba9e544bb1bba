package render

import (
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/tsawler/textpos"
)

// WriteTable writes every item as one row of a table with page, text,
// position and size columns.
func WriteTable(w io.Writer, pages []textpos.PageItems) error {
	t := table.NewWriter()
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Page", "Text", "X", "Y", "Size"})
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Align: text.AlignRight},
		{Number: 3, Align: text.AlignRight},
		{Number: 4, Align: text.AlignRight},
		{Number: 5, Align: text.AlignRight},
	})

	for i, p := range pages {
		if i > 0 {
			t.AppendSeparator()
		}
		for _, item := range p.Items {
			t.AppendRow(table.Row{
				p.Page,
				fmt.Sprintf("%q", item.Text),
				fmt.Sprintf("%.2f", item.X),
				fmt.Sprintf("%.2f", item.Y),
				fmt.Sprintf("%.2f", item.FontSize),
			})
		}
	}

	_, err := io.WriteString(w, t.Render()+"\n")
	return err
}
