package pdf

import (
	"context"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
)

type MarotoProvider struct{}

func NewMaroto() *MarotoProvider {
	return &MarotoProvider{}
}

func (p *MarotoProvider) GenerateReport(ctx context.Context, data ReportData) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageNumber(props.PageNumber{
			Pattern: "Page {current} of {total}",
			Place:   props.RightBottom,
		}).
		Build()

	m := maroto.New(cfg)

	m.AddRow(20,
		text.NewCol(12, data.Title, props.Text{
			Size:  16,
			Style: fontstyle.Bold,
			Align: align.Left,
		}),
	)
	if data.PeriodLabel != "" {
		m.AddRow(10,
			text.NewCol(12, data.PeriodLabel, props.Text{Size: 9}),
		)
	}

	if len(data.Columns) > 0 {
		width := columnWidth(len(data.Columns))
		m.AddRow(10, headerCols(data.Columns, width)...)
		for _, r := range data.Rows {
			m.AddRow(8, bodyCols(r.Cells, width, len(data.Columns))...)
		}
	}

	doc, err := m.Generate()
	if err != nil {
		return nil, err
	}
	return doc.GetBytes(), nil
}

func headerCols(columns []string, width int) []core.Col {
	cols := make([]core.Col, 0, len(columns))
	for _, name := range columns {
		cols = append(cols, text.NewCol(width, name, props.Text{Style: fontstyle.Bold, Size: 9}))
	}
	return cols
}

func bodyCols(cells []string, width, n int) []core.Col {
	cols := make([]core.Col, 0, n)
	for i := 0; i < n; i++ {
		value := ""
		if i < len(cells) {
			value = cells[i]
		}
		cols = append(cols, text.NewCol(width, value, props.Text{Size: 9}))
	}
	return cols
}

func columnWidth(n int) int {
	if n <= 0 {
		return 12
	}
	w := 12 / n
	if w < 1 {
		w = 1
	}
	return w
}
