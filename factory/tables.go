/*
Package factory builds versioned band tables from configuration.

PURPOSE:
  Band tables (income tax bands, NI thresholds, student-loan thresholds,
  pension tiers) are statutory values that change every tax year. They are
  configuration, not code: this package loads them from YAML documents and
  carries compiled-in defaults for 2025-26, so historical years can be
  replayed by pointing the server at a tables file carrying the versions
  that were in force.

YAML SHAPE:
  tax_years:
    - year: "2025-26"
      monthly_gross_ceiling: "1000000"
      income_tax:
        - {name: basic, rate: "0.20", annual_limit: "37700"}
        - {name: higher, rate: "0.40", annual_limit: "125140"}
        - {name: additional, rate: "0.45", unbounded: true}
      national_insurance: ...
      student_loans: ...
      pension: ...

  Numbers are YAML strings parsed with decimal.NewFromString, so rates
  like 0.20 survive loading exactly.

SEE ALSO:
  - paye/bands.go: the table types and their Validate
  - cmd/server/main.go: wiring the loaded tables into the handler
*/
package factory

import (
	"fmt"
	"os"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/warp/payroll-engine/paye"
)

// =============================================================================
// YAML DOCUMENT TYPES
// =============================================================================

type tablesFile struct {
	TaxYears []taxYearYAML `yaml:"tax_years"`
}

type taxYearYAML struct {
	Year                string                    `yaml:"year"`
	MonthlyGrossCeiling string                    `yaml:"monthly_gross_ceiling"`
	IncomeTax           []bandYAML                `yaml:"income_tax"`
	NationalInsurance   niYAML                    `yaml:"national_insurance"`
	StudentLoans        map[string]loanYAML       `yaml:"student_loans"`
	Pension             pensionYAML               `yaml:"pension"`
}

type bandYAML struct {
	Name        string `yaml:"name"`
	Rate        string `yaml:"rate"`
	AnnualLimit string `yaml:"annual_limit"`
	Unbounded   bool   `yaml:"unbounded"`
}

type niYAML struct {
	LowerEarningsLimit string `yaml:"lower_earnings_limit"`
	PrimaryThreshold   string `yaml:"primary_threshold"`
	UpperEarningsLimit string `yaml:"upper_earnings_limit"`
	SecondaryThreshold string `yaml:"secondary_threshold"`
	Rates              struct {
		EmployeeMain       string `yaml:"employee_main"`
		EmployeeAdditional string `yaml:"employee_additional"`
		EmployerMain       string `yaml:"employer_main"`
		EmployerAdditional string `yaml:"employer_additional"`
	} `yaml:"rates"`
}

type loanYAML struct {
	AnnualThreshold string `yaml:"annual_threshold"`
	Rate            string `yaml:"rate"`
}

type pensionYAML struct {
	EmployerRate string     `yaml:"employer_rate"`
	Tiers        []tierYAML `yaml:"tiers"`
}

type tierYAML struct {
	AnnualUpper  string `yaml:"annual_upper"`
	Unbounded    bool   `yaml:"unbounded"`
	EmployeeRate string `yaml:"employee_rate"`
}

// =============================================================================
// LOADING
// =============================================================================

// LoadTables reads a YAML tables file and returns tables keyed by year
// label. Every table is validated before being returned.
func LoadTables(path string) (map[string]paye.TaxYearTables, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read tables file %s: %w", path, err)
	}

	var file tablesFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse tables YAML: %w", err)
	}
	if len(file.TaxYears) == 0 {
		return nil, fmt.Errorf("tables file %s declares no tax years", path)
	}

	tables := make(map[string]paye.TaxYearTables, len(file.TaxYears))
	for _, y := range file.TaxYears {
		t, err := buildTables(y)
		if err != nil {
			return nil, fmt.Errorf("tax year %q: %w", y.Year, err)
		}
		if err := t.Validate(); err != nil {
			return nil, err
		}
		tables[t.Year] = t
	}
	return tables, nil
}

func buildTables(y taxYearYAML) (paye.TaxYearTables, error) {
	var t paye.TaxYearTables
	t.Year = y.Year

	var err error
	if t.MonthlyGrossCeiling, err = dec("monthly_gross_ceiling", y.MonthlyGrossCeiling); err != nil {
		return t, err
	}

	for i, b := range y.IncomeTax {
		band := paye.TaxBand{Name: b.Name, Unbounded: b.Unbounded}
		if band.Rate, err = dec(fmt.Sprintf("income_tax[%d].rate", i), b.Rate); err != nil {
			return t, err
		}
		if !b.Unbounded {
			if band.AnnualLimit, err = dec(fmt.Sprintf("income_tax[%d].annual_limit", i), b.AnnualLimit); err != nil {
				return t, err
			}
		}
		t.IncomeTax = append(t.IncomeTax, band)
	}

	ni := y.NationalInsurance
	if t.NI.LowerEarningsLimit, err = dec("ni.lower_earnings_limit", ni.LowerEarningsLimit); err != nil {
		return t, err
	}
	if t.NI.PrimaryThreshold, err = dec("ni.primary_threshold", ni.PrimaryThreshold); err != nil {
		return t, err
	}
	if t.NI.UpperEarningsLimit, err = dec("ni.upper_earnings_limit", ni.UpperEarningsLimit); err != nil {
		return t, err
	}
	if t.NI.SecondaryThreshold, err = dec("ni.secondary_threshold", ni.SecondaryThreshold); err != nil {
		return t, err
	}
	if t.NI.Rates.EmployeeMain, err = dec("ni.rates.employee_main", ni.Rates.EmployeeMain); err != nil {
		return t, err
	}
	if t.NI.Rates.EmployeeAdditional, err = dec("ni.rates.employee_additional", ni.Rates.EmployeeAdditional); err != nil {
		return t, err
	}
	if t.NI.Rates.EmployerMain, err = dec("ni.rates.employer_main", ni.Rates.EmployerMain); err != nil {
		return t, err
	}
	if t.NI.Rates.EmployerAdditional, err = dec("ni.rates.employer_additional", ni.Rates.EmployerAdditional); err != nil {
		return t, err
	}

	t.StudentLoans = make(map[paye.StudentLoanPlan]paye.StudentLoanTable, len(y.StudentLoans))
	for name, l := range y.StudentLoans {
		var table paye.StudentLoanTable
		if table.AnnualThreshold, err = dec("student_loans."+name+".annual_threshold", l.AnnualThreshold); err != nil {
			return t, err
		}
		if table.Rate, err = dec("student_loans."+name+".rate", l.Rate); err != nil {
			return t, err
		}
		t.StudentLoans[paye.StudentLoanPlan(name)] = table
	}

	if t.Pension.EmployerRate, err = dec("pension.employer_rate", y.Pension.EmployerRate); err != nil {
		return t, err
	}
	for i, tier := range y.Pension.Tiers {
		pt := paye.PensionTier{Unbounded: tier.Unbounded}
		if pt.EmployeeRate, err = dec(fmt.Sprintf("pension.tiers[%d].employee_rate", i), tier.EmployeeRate); err != nil {
			return t, err
		}
		if !tier.Unbounded {
			if pt.AnnualUpper, err = dec(fmt.Sprintf("pension.tiers[%d].annual_upper", i), tier.AnnualUpper); err != nil {
				return t, err
			}
		}
		t.Pension.Tiers = append(t.Pension.Tiers, pt)
	}

	return t, nil
}

func dec(field, s string) (decimal.Decimal, error) {
	if s == "" {
		return decimal.Decimal{}, fmt.Errorf("%s: value is required", field)
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("%s: %w", field, err)
	}
	return d, nil
}

// =============================================================================
// COMPILED-IN DEFAULTS
// =============================================================================

// Default2025_26 returns the 2025-26 tables. These are the fallback when no
// tables file is supplied; a file with the same year label overrides them.
func Default2025_26() paye.TaxYearTables {
	d := decimal.RequireFromString
	return paye.TaxYearTables{
		Year:                "2025-26",
		MonthlyGrossCeiling: d("1000000"),
		IncomeTax: paye.IncomeTaxBands{
			{Name: "basic", Rate: d("0.20"), AnnualLimit: d("37700")},
			{Name: "higher", Rate: d("0.40"), AnnualLimit: d("125140")},
			{Name: "additional", Rate: d("0.45"), Unbounded: true},
		},
		NI: paye.NITable{
			LowerEarningsLimit: d("533"),
			PrimaryThreshold:   d("1048"),
			UpperEarningsLimit: d("4189"),
			SecondaryThreshold: d("417"),
			Rates: paye.NIRates{
				EmployeeMain:       d("0.08"),
				EmployeeAdditional: d("0.02"),
				EmployerMain:       d("0.15"),
				EmployerAdditional: d("0.15"),
			},
		},
		StudentLoans: map[paye.StudentLoanPlan]paye.StudentLoanTable{
			paye.StudentLoanPlan1: {AnnualThreshold: d("26065"), Rate: d("0.09")},
			paye.StudentLoanPlan2: {AnnualThreshold: d("28470"), Rate: d("0.09")},
			paye.StudentLoanPlan4: {AnnualThreshold: d("32745"), Rate: d("0.09")},
		},
		Pension: paye.PensionTable{
			EmployerRate: d("0.237"),
			Tiers: []paye.PensionTier{
				{AnnualUpper: d("13259"), EmployeeRate: d("0.052")},
				{AnnualUpper: d("27288"), EmployeeRate: d("0.065")},
				{AnnualUpper: d("33247"), EmployeeRate: d("0.083")},
				{AnnualUpper: d("49913"), EmployeeRate: d("0.098")},
				{AnnualUpper: d("62924"), EmployeeRate: d("0.107")},
				{Unbounded: true, EmployeeRate: d("0.125")},
			},
		},
	}
}

// DefaultTables returns the compiled-in table set keyed by year label.
func DefaultTables() map[string]paye.TaxYearTables {
	t := Default2025_26()
	return map[string]paye.TaxYearTables{t.Year: t}
}
