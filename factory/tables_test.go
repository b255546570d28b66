package factory_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/payroll-engine/factory"
	"github.com/warp/payroll-engine/paye"
)

const sampleTablesYAML = `
tax_years:
  - year: "2024-25"
    monthly_gross_ceiling: "1000000"
    income_tax:
      - {name: basic, rate: "0.20", annual_limit: "37700"}
      - {name: higher, rate: "0.40", annual_limit: "125140"}
      - {name: additional, rate: "0.45", unbounded: true}
    national_insurance:
      lower_earnings_limit: "533"
      primary_threshold: "1048"
      upper_earnings_limit: "4189"
      secondary_threshold: "758"
      rates:
        employee_main: "0.10"
        employee_additional: "0.02"
        employer_main: "0.138"
        employer_additional: "0.138"
    student_loans:
      plan1: {annual_threshold: "24990", rate: "0.09"}
      plan2: {annual_threshold: "27295", rate: "0.09"}
    pension:
      employer_rate: "0.237"
      tiers:
        - {annual_upper: "13259", employee_rate: "0.052"}
        - {unbounded: true, employee_rate: "0.125"}
`

func writeTables(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tables.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadTables_ParsesYearExactly(t *testing.T) {
	tables, err := factory.LoadTables(writeTables(t, sampleTablesYAML))
	require.NoError(t, err)
	require.Len(t, tables, 1)

	year, ok := tables["2024-25"]
	require.True(t, ok)

	// String-valued numbers survive loading exactly
	assert.True(t, year.IncomeTax.RateAt(0).Equal(decimal.RequireFromString("0.20")))
	assert.True(t, year.NI.PrimaryThreshold.Equal(decimal.NewFromInt(1048)))
	assert.True(t, year.NI.Rates.RateFor(paye.NIEmployeeMain).Equal(decimal.RequireFromString("0.10")))

	plan1, ok := year.StudentLoans[paye.StudentLoanPlan1]
	require.True(t, ok)
	assert.True(t, plan1.AnnualThreshold.Equal(decimal.NewFromInt(24990)))

	require.Len(t, year.Pension.Tiers, 2)
	assert.True(t, year.Pension.Tiers[1].Unbounded)
}

func TestLoadTables_LoadedTablesDriveCalculation(t *testing.T) {
	// A historical year loaded from file replays with ITS rates: 10%
	// employee NI, not the default year's 8%.
	tables, err := factory.LoadTables(writeTables(t, sampleTablesYAML))
	require.NoError(t, err)

	calc := paye.NICalculator{Table: tables["2024-25"].NI, Logf: t.Logf}
	res, err := calc.Calculate(decimal.NewFromInt(3000))
	require.NoError(t, err)

	// 10% of (3000-1048) = 195.20
	assert.True(t, res.Employee.Equal(decimal.RequireFromString("195.20")),
		"employee NI = %s", res.Employee)
}

func TestLoadTables_MissingFileRejected(t *testing.T) {
	_, err := factory.LoadTables(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoadTables_EmptyDocumentRejected(t *testing.T) {
	_, err := factory.LoadTables(writeTables(t, "tax_years: []\n"))
	assert.Error(t, err)
}

func TestLoadTables_MalformedNumberRejected(t *testing.T) {
	bad := `
tax_years:
  - year: "2024-25"
    monthly_gross_ceiling: "a lot"
    income_tax:
      - {name: basic, rate: "0.20", unbounded: true}
`
	_, err := factory.LoadTables(writeTables(t, bad))
	assert.Error(t, err)
}

func TestDefaultTables_Validate(t *testing.T) {
	tables := factory.DefaultTables()
	require.NotEmpty(t, tables)
	for year, tbl := range tables {
		assert.NoError(t, tbl.Validate(), "year %s", year)
		assert.Equal(t, year, tbl.Year)
	}
}
