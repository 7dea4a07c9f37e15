package catalog

import (
	"fmt"
	"io"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/xuri/excelize/v2"

	"github.com/ANIKETSHETTY47/offgrid-solar-sizing/internal/domain"
)

// Sheet names used by the sizing workbook.
const (
	SheetConfig    = "Configuracoes"
	SheetEquipment = "Equipamentos"
	SheetInverters = "Inversores"
	SheetBatteries = "Baterias"
)

type column struct {
	name     string
	aliases  []string
	optional bool
}

var (
	colModel = column{name: "MODELO", aliases: []string{"MODEL", "NAME"}}

	colPower      = column{name: "POTENCIA", aliases: []string{"POWER", "POWER W", "POTENCIA W"}}
	colPeakFactor = column{name: "FATOR PICO", aliases: []string{"PEAK FACTOR"}, optional: true}

	colNominal     = column{name: "P. NOMINAL", aliases: []string{"P NOMINAL", "NOMINAL KW"}}
	colPeak        = column{name: "P. PICO", aliases: []string{"P PICO", "PEAK KW"}}
	colMaxInverter = column{name: "QTD. MAX. INV.", aliases: []string{"QTD MAX INV", "MAX PARALLEL"}}

	colDoD         = column{name: "DOD", aliases: []string{"DOD PCT"}}
	colEfficiency  = column{name: "EFICIENCIA", aliases: []string{"EFFICIENCY", "EFFICIENCY PCT"}}
	colCapacity    = column{name: "CAPACIDADE AH", aliases: []string{"CAPACITY AH"}}
	colMaxSeries   = column{name: "PILHA MAX", aliases: []string{"MAX SERIES"}}
	colMaxParallel = column{name: "PARALELO MAX", aliases: []string{"MAX PARALLEL"}}

	colParam = column{name: "PARAMETRO", aliases: []string{"PARAMETER"}}
	colValue = column{name: "VALOR", aliases: []string{"VALUE"}}
)

// ParseWorkbook reads an xlsx workbook into a typed catalog. Missing
// sheets yield empty catalog sections; a workbook with none of them is
// rejected.
func ParseWorkbook(r io.Reader) (*domain.Catalog, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNotWorkbook, err)
	}
	defer f.Close()

	present := map[string]string{}
	for _, name := range f.GetSheetList() {
		present[normalizeHeader(name)] = name
	}

	cat := &domain.Catalog{}
	found := 0
	parsers := []struct {
		sheet string
		parse func(*sheet) error
	}{
		{SheetConfig, func(s *sheet) error { return parseConfig(s, &cat.Parameters) }},
		{SheetEquipment, func(s *sheet) (err error) { cat.Equipment, err = parseEquipment(s); return }},
		{SheetInverters, func(s *sheet) (err error) { cat.Inverters, err = parseInverters(s); return }},
		{SheetBatteries, func(s *sheet) (err error) { cat.Batteries, err = parseBatteries(s); return }},
	}
	for _, p := range parsers {
		actual, ok := present[normalizeHeader(p.sheet)]
		if !ok {
			log.Warn().Str("sheet", p.sheet).Msg("catalog sheet missing; treating as empty")
			continue
		}
		found++
		rows, err := f.GetRows(actual, excelize.Options{RawCellValue: true})
		if err != nil {
			return nil, fmt.Errorf("catalog: read sheet %q: %w", actual, err)
		}
		if err := p.parse(&sheet{name: actual, rows: rows}); err != nil {
			return nil, err
		}
	}
	if found == 0 {
		return nil, ErrMissingSheet
	}

	log.Info().
		Int("equipment", len(cat.Equipment)).
		Int("inverters", len(cat.Inverters)).
		Int("batteries", len(cat.Batteries)).
		Msg("catalog parsed")
	return cat, nil
}

// sheet is a header row plus data rows.
type sheet struct {
	name  string
	rows  [][]string
	index map[string]int
}

// columns resolves every requested column in the header row. An empty
// sheet has no header and resolves nothing.
func (s *sheet) columns(cols ...column) error {
	s.index = map[string]int{}
	if len(s.rows) == 0 {
		return nil
	}
	header := map[string]int{}
	for i, h := range s.rows[0] {
		header[normalizeHeader(h)] = i
	}
	for _, c := range cols {
		idx, ok := header[normalizeHeader(c.name)]
		for _, a := range c.aliases {
			if ok {
				break
			}
			idx, ok = header[normalizeHeader(a)]
		}
		if !ok {
			if c.optional {
				continue
			}
			return fmt.Errorf("%w %q in sheet %q", ErrMissingColumn, c.name, s.name)
		}
		s.index[c.name] = idx
	}
	return nil
}

// each calls fn for every non-blank data row with its spreadsheet row number.
func (s *sheet) each(fn func(rowNum int, row []string) error) error {
	for i := 1; i < len(s.rows); i++ {
		if blank(s.rows[i]) {
			continue
		}
		if err := fn(i+1, s.rows[i]); err != nil {
			return err
		}
	}
	return nil
}

func (s *sheet) text(row []string, c column) string {
	idx, ok := s.index[c.name]
	if !ok || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

func (s *sheet) cellErr(rowNum int, c column, value, reason string) error {
	return &CellError{Sheet: s.name, Row: rowNum, Column: c.name, Value: value, Reason: reason}
}

func (s *sheet) model(rowNum int, row []string) (string, error) {
	name := s.text(row, colModel)
	if name == "" {
		return "", s.cellErr(rowNum, colModel, name, "model name is required")
	}
	return name, nil
}

// number reads a numeric cell and checks it against floor. When strict is
// set the value must be greater than floor, otherwise at least floor.
func (s *sheet) number(rowNum int, row []string, c column, floor float64, strict bool) (float64, error) {
	raw := s.text(row, c)
	v, ok := parseNumber(raw)
	if !ok {
		return 0, s.cellErr(rowNum, c, raw, "not a number")
	}
	if v < floor || (strict && v == floor) {
		op := ">="
		if strict {
			op = ">"
		}
		return 0, s.cellErr(rowNum, c, raw, fmt.Sprintf("must be %s %g", op, floor))
	}
	return v, nil
}

func (s *sheet) percent(rowNum int, row []string, c column) (float64, error) {
	v, err := s.number(rowNum, row, c, 0, true)
	if err != nil {
		return 0, err
	}
	if v > 100 {
		return 0, s.cellErr(rowNum, c, s.text(row, c), "must be <= 100")
	}
	return v, nil
}

func (s *sheet) count(rowNum int, row []string, c column) (int, error) {
	raw := s.text(row, c)
	v, ok := parseWhole(raw)
	if !ok {
		return 0, s.cellErr(rowNum, c, raw, "not a whole number")
	}
	if v < 1 {
		return 0, s.cellErr(rowNum, c, raw, "must be >= 1")
	}
	return v, nil
}

func parseEquipment(s *sheet) ([]domain.Equipment, error) {
	if err := s.columns(colModel, colPower, colPeakFactor); err != nil {
		return nil, err
	}
	var out []domain.Equipment
	err := s.each(func(rowNum int, row []string) error {
		name, err := s.model(rowNum, row)
		if err != nil {
			return err
		}
		power, err := s.number(rowNum, row, colPower, 0, true)
		if err != nil {
			return err
		}
		factor := 1.0
		if s.text(row, colPeakFactor) != "" {
			if factor, err = s.number(rowNum, row, colPeakFactor, 1, false); err != nil {
				return err
			}
		}
		out = append(out, domain.Equipment{Position: len(out), Name: name, PowerW: power, PeakFactor: factor})
		return nil
	})
	return out, err
}

func parseInverters(s *sheet) ([]domain.InverterModel, error) {
	if err := s.columns(colModel, colNominal, colPeak, colMaxInverter); err != nil {
		return nil, err
	}
	var out []domain.InverterModel
	err := s.each(func(rowNum int, row []string) error {
		inv := domain.InverterModel{Position: len(out)}
		var err error
		if inv.Name, err = s.model(rowNum, row); err != nil {
			return err
		}
		if inv.NominalKW, err = s.number(rowNum, row, colNominal, 0, true); err != nil {
			return err
		}
		if inv.PeakKW, err = s.number(rowNum, row, colPeak, 0, false); err != nil {
			return err
		}
		if inv.MaxParallel, err = s.count(rowNum, row, colMaxInverter); err != nil {
			return err
		}
		out = append(out, inv)
		return nil
	})
	return out, err
}

func parseBatteries(s *sheet) ([]domain.BatteryModel, error) {
	if err := s.columns(colModel, colDoD, colEfficiency, colCapacity, colMaxSeries, colMaxParallel); err != nil {
		return nil, err
	}
	var out []domain.BatteryModel
	err := s.each(func(rowNum int, row []string) error {
		b := domain.BatteryModel{Position: len(out)}
		var err error
		if b.Name, err = s.model(rowNum, row); err != nil {
			return err
		}
		if b.DoDPct, err = s.percent(rowNum, row, colDoD); err != nil {
			return err
		}
		if b.EfficiencyPct, err = s.percent(rowNum, row, colEfficiency); err != nil {
			return err
		}
		if b.CapacityAh, err = s.number(rowNum, row, colCapacity, 0, true); err != nil {
			return err
		}
		if b.MaxSeries, err = s.count(rowNum, row, colMaxSeries); err != nil {
			return err
		}
		if b.MaxParallel, err = s.count(rowNum, row, colMaxParallel); err != nil {
			return err
		}
		out = append(out, b)
		return nil
	})
	return out, err
}

// Parameter names of the configuration sheet.
var configKeys = map[string]func(*domain.ParameterOverrides, float64){
	"TENSAO DO SISTEMA V":  func(o *domain.ParameterOverrides, v float64) { o.VoltageV = &v },
	"AUTONOMIA DIAS":       func(o *domain.ParameterOverrides, v float64) { o.AutonomyDays = &v },
	"FATOR SIMULTANEIDADE": func(o *domain.ParameterOverrides, v float64) { o.Simultaneity = &v },
	"MARGEM SEGURANCA":     func(o *domain.ParameterOverrides, v float64) { o.SafetyMargin = &v },
	"EFICIENCIA SISTEMA":   func(o *domain.ParameterOverrides, v float64) { o.Efficiency = &v },
}

func parseConfig(s *sheet, out *domain.ParameterOverrides) error {
	if err := s.columns(colParam, colValue); err != nil {
		return err
	}
	return s.each(func(rowNum int, row []string) error {
		key := s.text(row, colParam)
		set, ok := configKeys[normalizeHeader(key)]
		if !ok {
			log.Debug().Str("parameter", key).Msg("ignoring unknown configuration parameter")
			return nil
		}
		raw := s.text(row, colValue)
		v, ok := parseNumber(raw)
		if !ok {
			return s.cellErr(rowNum, colValue, raw, "not a number")
		}
		set(out, v)
		return nil
	})
}
