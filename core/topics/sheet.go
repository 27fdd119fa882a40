package topics

import (
	"archive/zip"
	"bytes"
	"encoding/csv"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/antchfx/xmlquery"
	"github.com/antchfx/xpath"
	"github.com/xuri/excelize/v2"

	"github.com/FocuswithJustin/synopsis/core/errors"
)

// maxRepeat caps table:number-columns-repeated and table:number-rows-repeated
// expansion. Spreadsheet applications pad sheets with repeats in the
// thousands.
const maxRepeat = 256

var (
	odsTableExpr = xpath.MustCompile(`//*[local-name()='table']`)
	odsRowExpr   = xpath.MustCompile(`.//*[local-name()='table-row']`)
	odsCellExpr  = xpath.MustCompile(`./*[local-name()='table-cell' or local-name()='covered-table-cell']`)
	odsParaExpr  = xpath.MustCompile(`./*[local-name()='p']`)
)

// ReadSheet reads the first sheet of a spreadsheet into rows of cell text.
// The format is chosen by the extension of name: .csv, .xlsx or .ods.
func ReadSheet(name string, r io.Reader) ([][]string, error) {
	switch ext := strings.ToLower(filepath.Ext(name)); ext {
	case ".csv":
		return readCSV(r)
	case ".xlsx":
		return readXLSX(r)
	case ".ods":
		return readODS(r)
	default:
		return nil, errors.NewValidation("sheet", "unsupported sheet format "+strconv.Quote(ext))
	}
}

func readCSV(r io.Reader) ([][]string, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	rows, err := cr.ReadAll()
	if err != nil {
		return nil, errors.NewParse("csv", "", err.Error())
	}
	if len(rows) > 0 && len(rows[0]) > 0 {
		rows[0][0] = strings.TrimPrefix(rows[0][0], "\uFEFF")
	}
	return rows, nil
}

func readXLSX(r io.Reader) ([][]string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, errors.NewParse("xlsx", "", err.Error())
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.NewValidation("sheet", "workbook has no sheets")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, errors.NewParse("xlsx", sheets[0], err.Error())
	}
	return rows, nil
}

func readODS(r io.Reader) ([][]string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.NewIO("read", "ods", err)
	}
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, errors.NewParse("ods", "", err.Error())
	}

	var content *zip.File
	for _, f := range zr.File {
		if f.Name == "content.xml" {
			content = f
			break
		}
	}
	if content == nil {
		return nil, errors.NewParse("ods", "", "missing content.xml")
	}

	rc, err := content.Open()
	if err != nil {
		return nil, errors.NewIO("open", "content.xml", err)
	}
	defer rc.Close()

	doc, err := xmlquery.Parse(rc)
	if err != nil {
		return nil, errors.NewParse("ods", "content.xml", err.Error())
	}
	return odsRows(doc), nil
}

// odsRows extracts the cell text of the first table in an OpenDocument
// spreadsheet body.
func odsRows(doc *xmlquery.Node) [][]string {
	table := xmlquery.QuerySelector(doc, odsTableExpr)
	if table == nil {
		return nil
	}

	var rows [][]string
	for _, rowNode := range xmlquery.QuerySelectorAll(table, odsRowExpr) {
		var row []string
		for _, cell := range xmlquery.QuerySelectorAll(rowNode, odsCellExpr) {
			text := odsCellText(cell)
			n := repeatCount(cell, "number-columns-repeated")
			for i := 0; i < n; i++ {
				row = append(row, text)
			}
		}
		row = trimTrailingEmpty(row)
		if len(row) == 0 {
			continue
		}
		n := repeatCount(rowNode, "number-rows-repeated")
		for i := 0; i < n; i++ {
			rows = append(rows, append([]string(nil), row...))
		}
	}
	return rows
}

func odsCellText(cell *xmlquery.Node) string {
	paras := xmlquery.QuerySelectorAll(cell, odsParaExpr)
	if len(paras) == 0 {
		return strings.TrimSpace(cell.InnerText())
	}
	parts := make([]string, 0, len(paras))
	for _, p := range paras {
		parts = append(parts, strings.TrimSpace(p.InnerText()))
	}
	return strings.TrimSpace(strings.Join(parts, " "))
}

func repeatCount(n *xmlquery.Node, local string) int {
	for _, attr := range n.Attr {
		if attr.Name.Local != local {
			continue
		}
		count, err := strconv.Atoi(attr.Value)
		if err != nil || count < 1 {
			return 1
		}
		if count > maxRepeat {
			return maxRepeat
		}
		return count
	}
	return 1
}

func trimTrailingEmpty(row []string) []string {
	end := len(row)
	for end > 0 && row[end-1] == "" {
		end--
	}
	return row[:end]
}
