package cleaner

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/David-Botos/s3-ingress/pkg/model"
)

func buildRecordSet(t *testing.T, columns []string, rows ...[]string) *model.RecordSet {
	t.Helper()
	rs, err := model.NewRecordSet(columns)
	require.NoError(t, err)
	for _, row := range rows {
		require.NoError(t, rs.AppendRow(row))
	}
	return rs
}

func newTestCleaner(t *testing.T, profile Profile) *DataCleaner {
	t.Helper()
	c, err := NewDataCleaner(zaptest.NewLogger(t), profile)
	require.NoError(t, err)
	return c
}

func TestNewDataCleaner(t *testing.T) {
	_, err := NewDataCleaner(nil, ProfileBaseline)
	assert.Error(t, err)

	_, err = NewDataCleaner(zaptest.NewLogger(t), Profile("aggressive"))
	assert.Error(t, err)

	c, err := NewDataCleaner(zaptest.NewLogger(t), "")
	require.NoError(t, err)
	assert.Equal(t, ProfileBaseline, c.Profile())
}

func TestResolveDataset(t *testing.T) {
	tests := []struct {
		fileName string
		want     Dataset
	}{
		{fileName: "customers.csv", want: DatasetCustomers},
		{fileName: "customers_new.csv", want: DatasetCustomersNew},
		{fileName: "sales_2015.csv", want: DatasetSales2015},
		{fileName: "sales_2016.csv", want: DatasetSales2016},
		{fileName: "sales_2017.csv", want: DatasetSales2017},
		{fileName: "returns.csv", want: DatasetReturns},
		{fileName: "products.csv", want: DatasetProducts},
		{fileName: "Customers.csv", want: DatasetUnknown},
		{fileName: "customers", want: DatasetUnknown},
		{fileName: "customers.csv.bak", want: DatasetUnknown},
		{fileName: "raw/customers.csv", want: DatasetUnknown},
		{fileName: "sales_2018.csv", want: DatasetUnknown},
		{fileName: "", want: DatasetUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.fileName, func(t *testing.T) {
			assert.Equal(t, tt.want, ResolveDataset(tt.fileName))
		})
	}
}

func TestDataCleaner_ResolveIsStable(t *testing.T) {
	c := newTestCleaner(t, ProfileExtended)

	for fileName := range datasetsByFileName {
		d1, fn1 := c.Resolve(fileName)
		d2, fn2 := c.Resolve(fileName)
		assert.Equal(t, d1, d2)
		assert.Equal(t, reflect.ValueOf(fn1).Pointer(), reflect.ValueOf(fn2).Pointer(), fileName)
	}
}

func TestParseProfile(t *testing.T) {
	p, err := ParseProfile("")
	require.NoError(t, err)
	assert.Equal(t, ProfileBaseline, p)

	p, err = ParseProfile(" Extended ")
	require.NoError(t, err)
	assert.Equal(t, ProfileExtended, p)

	_, err = ParseProfile("full")
	assert.Error(t, err)
}

var customerColumns = []string{
	"CustomerKey", "Prefix", "FirstName", "LastNa", "BirthDate", "MaritalStatus", "Gender",
	"EmailAddress", "AnnualIncome", "TotalChildren", "EducationLevel", "Occupation", "HomeOwner",
}

func TestDataCleaner_CleanCustomers(t *testing.T) {
	c := newTestCleaner(t, ProfileBaseline)
	rs := buildRecordSet(t, customerColumns,
		[]string{"11000", "MR", "JON", "YANG", "4/8/1966", "M", "M", "jon@example.com", "$90,000", "2", "Bachelors", "Professional", "Y"},
		[]string{"AW11001", "MrR", "EUGENE9", "HUANG", "5/14/1965", "S", "M", "eugene10@adventure-works.com", "$60,000", "3", "Partial College", "Skilled Manual!", ""},
		[]string{"11002", "MS", "RUBEN", "TORRES", "not a date", "X", "F", "broken-address", "$60,000", "3", "", "Clerical", "N"},
	)

	report, err := c.Clean("customers.csv", rs)
	require.NoError(t, err)

	wantColumns := []string{
		"CustomerKey", "Prefix", "FirstName", "LastName", "BirthDate", "MaritalStatus", "Gender",
		"EmailAddress", "AnnualIncome", "TotalChildren", "EducationLevel", "Occupation", "HomeOwner",
	}
	assert.Equal(t, wantColumns, rs.Columns())
	assert.Equal(t, [][]string{
		{"11000", "MR", "JON", "YANG", "1966-04-08", "Married", "M", "example.com", "$90,000", "2", "College Degree", "Professional", "True"},
		{"11001", "MR", "EUGENE", "HUANG", "1965-05-14", "Single", "M", "adventure-works.com", "$60,000", "3", "College Degree", "Skilled Manual", "False"},
		{"11002", "MS", "RUBEN", "TORRES", DateSentinel, "X", "F", EmailDomainSentinel, "$60,000", "3", "College Degree", "Clerical", "False"},
	}, rs.Records())

	assert.Equal(t, "customers", report.Dataset)
	assert.Equal(t, 3, report.Rows)
	assert.Empty(t, report.MissingColumns)
	assert.False(t, report.IsNoOp())
	assert.Contains(t, report.CleanedColumns(), "LastName")
}

func TestDataCleaner_CleanCustomers_SingleRow(t *testing.T) {
	c := newTestCleaner(t, ProfileBaseline)
	rs := buildRecordSet(t, []string{"CustomerKey", "MaritalStatus", "EmailAddress", "HomeOwner"},
		[]string{"1", "M", "jon@example.com", ""},
	)

	_, err := c.Clean("customers.csv", rs)
	require.NoError(t, err)

	marital, _ := rs.Value(0, "MaritalStatus")
	email, _ := rs.Value(0, "EmailAddress")
	homeOwner, _ := rs.Value(0, "HomeOwner")
	assert.Equal(t, "Married", marital)
	assert.Equal(t, "example.com", email)
	assert.Equal(t, "False", homeOwner)
}

func TestDataCleaner_CleanCustomers_MissingColumns(t *testing.T) {
	c := newTestCleaner(t, ProfileBaseline)
	rs := buildRecordSet(t, []string{"CustomerKey", "EmailAddress"},
		[]string{"AW1", "a@b.com"},
	)

	report, err := c.Clean("customers.csv", rs)
	require.NoError(t, err)

	assert.Equal(t, []string{"CustomerKey", "EmailAddress", "EducationLevel"}, rs.Columns())
	assert.Equal(t, [][]string{{"1", "b.com", "College Degree"}}, rs.Records())
	assert.ElementsMatch(t,
		[]string{"LastNa", "MaritalStatus", "Prefix", "FirstName", "Occupation", "BirthDate", "HomeOwner"},
		report.MissingColumns)
}

func TestDataCleaner_CleanCustomers_RenameConflict(t *testing.T) {
	c := newTestCleaner(t, ProfileBaseline)
	rs := buildRecordSet(t, []string{"LastNa", "LastName"}, []string{"a", "b"})

	_, err := c.Clean("customers.csv", rs)
	assert.Error(t, err)
}

func TestDataCleaner_CleanCustomers_RowCountUnchanged(t *testing.T) {
	c := newTestCleaner(t, ProfileBaseline)
	rs := buildRecordSet(t, customerColumns,
		[]string{"", "", "", "", "", "", "", "", "", "", "", "", ""},
		[]string{"", "", "", "", "", "", "", "", "", "", "", "", ""},
	)

	_, err := c.Clean("customers.csv", rs)
	require.NoError(t, err)
	assert.Equal(t, 2, rs.Len())
}

func TestDataCleaner_BaselineNoOps(t *testing.T) {
	fileNames := []string{
		"customers_new.csv", "sales_2015.csv", "sales_2016.csv", "sales_2017.csv",
		"returns.csv", "products.csv", "unknown.csv", "Customers.csv",
	}

	for _, fileName := range fileNames {
		t.Run(fileName, func(t *testing.T) {
			c := newTestCleaner(t, ProfileBaseline)
			columns := []string{"CustomerKey", "OrderDate", "Social Media Accounts", "ProductSize", "Qty"}
			rs := buildRecordSet(t, columns,
				[]string{"AW1", "1/1/2015", "", "0", " 3 "},
				[]string{"", "bad", "Facebook, Twitter", "", "x"},
			)
			before := rs.Records()

			report, err := c.Clean(fileName, rs)
			require.NoError(t, err)

			assert.Equal(t, columns, rs.Columns())
			assert.Equal(t, before, rs.Records())
			assert.True(t, report.IsNoOp())
		})
	}
}

func TestDataCleaner_NilRecordSet(t *testing.T) {
	c := newTestCleaner(t, ProfileBaseline)
	_, err := c.Clean("customers.csv", nil)
	assert.Error(t, err)
}

func TestDatasetString(t *testing.T) {
	assert.Equal(t, "customers", DatasetCustomers.String())
	assert.Equal(t, "unknown", DatasetUnknown.String())
	assert.Equal(t, "Dataset(99)", Dataset(99).String())
}
