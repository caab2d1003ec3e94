package pdf

import (
	"context"
	_ "embed"
	"sync"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/core/entity"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"github.com/johnfercher/maroto/v2/pkg/repository"
)

// fontFamily names the embedded UTF-8 font used for every text cell.
const fontFamily = "dejavu"

var (
	//go:embed fonts/DejaVuSans.ttf
	regularFont []byte
	//go:embed fonts/DejaVuSans-Bold.ttf
	boldFont []byte

	loadFonts = sync.OnceValues(func() ([]*entity.CustomFont, error) {
		return repository.New().
			AddUTF8FontFromBytes(fontFamily, fontstyle.Normal, regularFont).
			AddUTF8FontFromBytes(fontFamily, fontstyle.Bold, boldFont).
			Load()
	})
)

type MarotoProvider struct{}

func NewMaroto() *MarotoProvider {
	return &MarotoProvider{}
}

func (p *MarotoProvider) Engine() string { return "maroto" }

func (p *MarotoProvider) RenderBill(ctx context.Context, doc BillDocument) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	fonts, err := loadFonts()
	if err != nil {
		return nil, err
	}

	cfg := config.NewBuilder().
		WithCustomFonts(fonts).
		WithDefaultFont(&props.Font{Family: fontFamily, Size: 11}).
		WithPageNumber(props.PageNumber{
			Pattern: "Page {current} of {total}",
			Place:   props.RightBottom,
		}).
		Build()

	m := maroto.New(cfg)

	m.AddRow(16,
		text.NewCol(12, doc.Title, props.Text{
			Size:  20,
			Style: fontstyle.Bold,
			Align: align.Center,
		}),
	)
	m.AddRow(6, col.New(12))

	fields := []struct {
		label string
		value string
	}{
		{"Name", doc.Name},
		{"Email", doc.Email},
		{"Customer ID", doc.CustomerID},
		{"Billing Month", doc.BillingMonth},
		{"Generated Date", doc.GeneratedDate},
	}
	for _, f := range fields {
		m.AddRow(8,
			text.NewCol(4, f.label+":", props.Text{Size: 11, Style: fontstyle.Bold}),
			text.NewCol(8, f.value, props.Text{Size: 11}),
		)
	}

	m.AddRow(8, col.New(12))

	// Totals
	m.AddRow(10,
		text.NewCol(8, "Billing Total Consumption", props.Text{Size: 11, Style: fontstyle.Bold}),
		text.NewCol(4, doc.TotalConsumption, props.Text{Size: 11, Align: align.Right}),
	)
	m.AddRow(10,
		text.NewCol(8, "Total Billing Value", props.Text{Size: 12, Style: fontstyle.Bold}),
		text.NewCol(4, doc.TotalValue, props.Text{Size: 12, Style: fontstyle.Bold, Align: align.Right}),
	)

	out, err := m.Generate()
	if err != nil {
		return nil, err
	}
	data := out.GetBytes()
	if len(data) == 0 {
		return nil, ErrEmptyDocument
	}
	return data, nil
}
