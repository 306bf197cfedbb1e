package layout

import (
	"math"

	"quill/pkg/css"
	"quill/pkg/geom"
)

// tableCell is a cell in the slot grid of a table.
type tableCell struct {
	idx              int
	row, col         int
	rowSpan, colSpan int
	height           float64 // border-box height from content
}

// tableRow is a row box with the cells that start in it.
type tableRow struct {
	idx   int
	group int // row group node, -1 when the row sits directly under the table
	cells []*tableCell
	y     float64
	h     float64
}

type tableInfo struct {
	captions []int
	groups   []int // row groups in display order: headers, bodies, footers
	rows     []*tableRow
	numCols  int
	spacing  float64
	minW     []float64
	maxW     []float64
	fixedW   []float64 // specified widths, NaN when auto
	colW     []float64
	colX     []float64
}

// cellSpan returns the colspan and rowspan of a cell, at least one each.
func (le *layoutEngine) cellSpan(idx int) (cols, rows int) {
	cols, rows = 1, 1
	n := le.node(idx)
	if le.spans != nil && !n.IsAnonymous() {
		cols, rows = le.spans.CellSpan(n.DomNode)
	}
	return max(1, cols), max(1, rows)
}

// buildTableInfo collects captions, row groups, rows and cells of a table
// and assigns every cell to its slots, honoring rowspan and colspan.
func (le *layoutEngine) buildTableInfo(idx int) *tableInfo {
	ti := &tableInfo{spacing: le.resolveOr(idx, css.PropBorderSpacing, 0, 0)}
	var heads, bodies, feet []int
	var loose []int
	for _, ch := range le.node(idx).Children {
		n := le.node(ch)
		switch {
		case n.FC.OutOfFlow:
		case n.Display == css.DisplayTableCaption:
			ti.captions = append(ti.captions, ch)
		case n.Display == css.DisplayTableHeaderGroup:
			heads = append(heads, ch)
		case n.Display == css.DisplayTableFooterGroup:
			feet = append(feet, ch)
		case n.FC.Kind == TableRowGroupContext:
			bodies = append(bodies, ch)
		case n.FC.Kind == TableRowContext:
			// Rows directly under the table keep their place among bodies.
			bodies = append(bodies, ch)
			loose = append(loose, ch)
		}
	}
	isLoose := make(map[int]bool, len(loose))
	for _, r := range loose {
		isLoose[r] = true
	}
	for _, g := range append(append(heads, bodies...), feet...) {
		if isLoose[g] {
			ti.rows = append(ti.rows, &tableRow{idx: g, group: -1})
			continue
		}
		ti.groups = append(ti.groups, g)
		for _, r := range le.node(g).Children {
			if le.node(r).FC.Kind == TableRowContext {
				ti.rows = append(ti.rows, &tableRow{idx: r, group: g})
			}
		}
	}

	occupied := make(map[[2]int]bool)
	for ri, row := range ti.rows {
		col := 0
		for _, c := range le.node(row.idx).Children {
			if le.node(c).FC.Kind != TableCellContext {
				continue
			}
			for occupied[[2]int{ri, col}] {
				col++
			}
			cs, rs := le.cellSpan(c)
			rs = min(rs, len(ti.rows)-ri)
			cell := &tableCell{idx: c, row: ri, col: col, rowSpan: rs, colSpan: cs}
			for r := ri; r < ri+rs; r++ {
				for k := col; k < col+cs; k++ {
					occupied[[2]int{r, k}] = true
				}
			}
			row.cells = append(row.cells, cell)
			col += cs
			ti.numCols = max(ti.numCols, col)
		}
	}
	return ti
}

// columnBounds computes the min and max width of every column from the
// intrinsic sizes of its cells. Spanning cells spread what the spanned
// columns lack evenly.
func (le *layoutEngine) columnBounds(ti *tableInfo, cbInline float64) {
	ti.minW = make([]float64, ti.numCols)
	ti.maxW = make([]float64, ti.numCols)
	ti.fixedW = make([]float64, ti.numCols)
	for i := range ti.fixedW {
		ti.fixedW[i] = nan
	}
	var spanning []*tableCell
	for _, row := range ti.rows {
		for _, cell := range row.cells {
			if cell.colSpan > 1 {
				spanning = append(spanning, cell)
				continue
			}
			lo, hi, fixed := le.cellWidths(cell.idx, cbInline)
			k := cell.col
			ti.minW[k] = math.Max(ti.minW[k], lo)
			ti.maxW[k] = math.Max(ti.maxW[k], hi)
			if isDefinite(fixed) {
				ti.fixedW[k] = math.Max(geom.Finite(ti.fixedW[k]), fixed)
			}
		}
	}
	for _, cell := range spanning {
		lo, hi, _ := le.cellWidths(cell.idx, cbInline)
		inner := ti.spacing * float64(cell.colSpan-1)
		haveMin, haveMax := inner, inner
		for k := cell.col; k < cell.col+cell.colSpan; k++ {
			haveMin += ti.minW[k]
			haveMax += ti.maxW[k]
		}
		n := float64(cell.colSpan)
		for k := cell.col; k < cell.col+cell.colSpan; k++ {
			if lo > haveMin {
				ti.minW[k] += (lo - haveMin) / n
			}
			if hi > haveMax {
				ti.maxW[k] += (hi - haveMax) / n
			}
		}
	}
	for k := range ti.maxW {
		ti.maxW[k] = math.Max(ti.maxW[k], ti.minW[k])
	}
}

// cellWidths returns the min and max border-box width of a cell and its
// specified width (NaN when auto).
func (le *layoutEngine) cellWidths(idx int, cbInline float64) (lo, hi, fixed float64) {
	n := le.node(idx)
	bp := le.resolveBoxProps(idx, cbInline)
	sz := le.sizeProps(idx, !n.Mode.IsVertical(), cbInline, bp)
	lo, hi = n.Intrinsic.MinContent, n.Intrinsic.MaxContent
	if isDefinite(sz.size) {
		fixed = sz.size
		lo = math.Max(lo, sz.size)
		hi = lo
	} else {
		fixed = nan
	}
	m := bp.Margin.MainSum(n.Mode)
	return lo + m, hi + m, fixed
}

// tableMinMax is the intrinsic inline size of the table grid (columns and
// spacing, without the table's own border and padding).
func (le *layoutEngine) tableMinMax(idx int) (lo, hi float64) {
	ti := le.buildTableInfo(idx)
	le.columnBounds(ti, nan)
	spacing := ti.spacing * float64(ti.numCols+1)
	lo, hi = spacing, spacing
	for k := 0; k < ti.numCols; k++ {
		lo += ti.minW[k]
		hi += ti.maxW[k]
	}
	for _, c := range ti.captions {
		lo = math.Max(lo, le.node(c).Intrinsic.MinContent)
		hi = math.Max(hi, le.node(c).Intrinsic.MaxContent)
	}
	return lo, hi
}

// calculateColumnWidths distributes the content width of the table across
// its columns with the fixed or the automatic algorithm.
func (le *layoutEngine) calculateColumnWidths(idx int, ti *tableInfo, inline float64) {
	n := ti.numCols
	ti.colW = make([]float64, n)
	if n == 0 {
		return
	}
	avail := math.Max(0, inline-ti.spacing*float64(n+1))
	if keywordOf(le, idx, css.PropTableLayout, css.TableLayoutAuto) == css.TableLayoutFixed {
		used, free := 0.0, 0
		for k := range ti.colW {
			if isDefinite(ti.fixedW[k]) {
				ti.colW[k] = ti.fixedW[k]
				used += ti.fixedW[k]
			} else {
				free++
			}
		}
		left := math.Max(0, avail-used)
		for k := range ti.colW {
			switch {
			case free > 0 && !isDefinite(ti.fixedW[k]):
				ti.colW[k] = left / float64(free)
			case free == 0:
				ti.colW[k] += left / float64(n)
			}
		}
		return
	}

	var sumMin, sumMax float64
	for k := 0; k < n; k++ {
		sumMin += ti.minW[k]
		sumMax += ti.maxW[k]
	}
	switch {
	case avail <= sumMin:
		copy(ti.colW, ti.minW)
	case avail <= sumMax:
		f := (avail - sumMin) / (sumMax - sumMin)
		for k := range ti.colW {
			ti.colW[k] = ti.minW[k] + (ti.maxW[k]-ti.minW[k])*f
		}
	default:
		extra := avail - sumMax
		for k := range ti.colW {
			if sumMax > 0 {
				ti.colW[k] = ti.maxW[k] + extra*ti.maxW[k]/sumMax
			} else {
				ti.colW[k] = avail / float64(n)
			}
		}
	}
}

func (ti *tableInfo) spanWidth(col, span int) float64 {
	w := ti.spacing * float64(span-1)
	for k := col; k < col+span; k++ {
		w += ti.colW[k]
	}
	return w
}

// calculateRowHeights lays out every cell at its column width and sizes the
// rows from the cells' content, spreading rowspans over the last spanned
// row.
func (le *layoutEngine) calculateRowHeights(ti *tableInfo, wm geom.WritingMode, cb geom.LogicalSize) {
	heights := make([]float64, len(ti.rows))
	for i, row := range ti.rows {
		if v, ok := le.resolve(row.idx, css.PropHeight, nan); ok {
			heights[i] = v
		}
	}
	var spanning []*tableCell
	for _, row := range ti.rows {
		for _, cell := range row.cells {
			w := ti.spanWidth(cell.col, cell.colSpan)
			out := le.layoutNode(cell.idx, LayoutConstraints{
				AvailableSize:       geom.SizeFromMainCross(wm, w, nan),
				WritingMode:         wm,
				ContainingBlockSize: cb,
				ForcedSize:          geom.SizeFromMainCross(wm, w, nan),
			}, nil)
			cell.height = out.Size.Cross(wm)
			if cell.rowSpan > 1 {
				spanning = append(spanning, cell)
				continue
			}
			heights[cell.row] = math.Max(heights[cell.row], cell.height)
		}
	}
	for _, cell := range spanning {
		have := ti.spacing * float64(cell.rowSpan-1)
		for r := cell.row; r < cell.row+cell.rowSpan; r++ {
			have += heights[r]
		}
		if cell.height > have {
			heights[cell.row+cell.rowSpan-1] += cell.height - have
		}
	}
	for i, row := range ti.rows {
		row.h = heights[i]
	}
}

// positionTableCells places captions, row groups, rows and cells. Cells are
// stretched to the height of their rows and their content is shifted per
// vertical-align.
func (le *layoutEngine) positionTableCells(ti *tableInfo, wm geom.WritingMode, inline float64, cb geom.LogicalSize) float64 {
	y := 0.0
	for _, c := range ti.captions {
		out := le.layoutNode(c, LayoutConstraints{
			AvailableSize:       geom.SizeFromMainCross(wm, inline, nan),
			WritingMode:         wm,
			ContainingBlockSize: cb,
			ForcedSize:          nanSize(),
		}, nil)
		m := le.node(c).BoxProps.Margin
		le.node(c).RelativePosition = geom.PosFromMainCross(wm, m.MainStart(wm), y+m.CrossStart(wm))
		y += out.Size.Cross(wm) + m.CrossSum(wm)
	}
	gridTop := y
	y += ti.spacing
	for i, row := range ti.rows {
		if i > 0 {
			y += ti.spacing
		}
		row.y = y
		y += row.h
	}
	bottom := y + ti.spacing
	if len(ti.rows) == 0 {
		bottom = gridTop
	}

	ti.colX = make([]float64, ti.numCols)
	x := ti.spacing
	for k := range ti.colX {
		ti.colX[k] = x
		x += ti.colW[k] + ti.spacing
	}

	groupTop := make(map[int]float64)
	groupBottom := make(map[int]float64)
	for _, row := range ti.rows {
		if row.group < 0 {
			continue
		}
		if _, ok := groupTop[row.group]; !ok {
			groupTop[row.group] = row.y
		}
		groupBottom[row.group] = row.y + row.h
	}
	for _, g := range ti.groups {
		gn := le.node(g)
		gn.BoxProps = geom.BoxProps{}
		top, ok := groupTop[g]
		if !ok {
			top = gridTop
		}
		gn.RelativePosition = geom.PosFromMainCross(wm, 0, top)
		gn.UsedSize = geom.SizeFromMainCross(wm, inline, groupBottom[g]-top)
		gn.OverflowSize = gn.UsedSize
		gn.HasUsedSize = true
	}

	for ri, row := range ti.rows {
		rn := le.node(row.idx)
		rn.BoxProps = geom.BoxProps{}
		ry := row.y
		if row.group >= 0 {
			ry -= groupTop[row.group]
		}
		rn.RelativePosition = geom.PosFromMainCross(wm, 0, ry)
		rn.UsedSize = geom.SizeFromMainCross(wm, inline, row.h)
		rn.OverflowSize = rn.UsedSize
		rn.HasUsedSize = true
		for _, cell := range row.cells {
			h := ti.spacing * float64(cell.rowSpan-1)
			for r := ri; r < ri+cell.rowSpan; r++ {
				h += ti.rows[r].h
			}
			w := ti.spanWidth(cell.col, cell.colSpan)
			le.layoutNode(cell.idx, LayoutConstraints{
				AvailableSize:       geom.SizeFromMainCross(wm, w, h),
				WritingMode:         wm,
				ContainingBlockSize: cb,
				ForcedSize:          geom.SizeFromMainCross(wm, w, h),
			}, nil)
			cn := le.node(cell.idx)
			cn.RelativePosition = geom.PosFromMainCross(wm, ti.colX[cell.col], 0)
			free := math.Max(0, h-cell.height)
			shift := 0.0
			switch keywordOf(le, cell.idx, css.PropVerticalAlign, css.VerticalAlignBaseline) {
			case css.VerticalAlignMiddle:
				shift = free / 2
			case css.VerticalAlignBottom:
				shift = free
			}
			cn.contentShift = geom.PosFromMainCross(wm, 0, shift)
		}
	}
	return bottom
}

// layoutTable is the table formatting context: column bounds, column widths,
// row heights, then placement. Border-collapse is not supported; cells are
// separated by border-spacing.
func (le *layoutEngine) layoutTable(idx int, c LayoutConstraints) contentResult {
	wm := c.WritingMode
	inline := c.AvailableSize.Main(wm)
	ti := le.buildTableInfo(idx)
	le.columnBounds(ti, inline)
	le.calculateColumnWidths(idx, ti, inline)
	le.calculateRowHeights(ti, wm, c.ContainingBlockSize)
	height := le.positionTableCells(ti, wm, inline, c.ContainingBlockSize)
	for _, ch := range le.node(idx).Children {
		if le.node(ch).FC.OutOfFlow {
			le.node(ch).StaticPosition = geom.LogicalPosition{}
		}
	}
	width := ti.spacing
	for _, w := range ti.colW {
		width += w + ti.spacing
	}
	le.debug(DebugPositionCalculation, idx, "table: %d columns, %d rows, grid %.1fx%.1f", ti.numCols, len(ti.rows), width, height)
	res := emptyContent()
	res.cross = height
	res.overflow = geom.SizeFromMainCross(wm, math.Max(inline, width), height)
	return res
}
