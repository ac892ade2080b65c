package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewLoadTarget(t *testing.T) {
	tests := []struct {
		name          string
		key           string
		prefix        string
		schema        string
		wantFile      string
		wantTable     string
		wantStaging   string
		wantQualified string
	}{
		{
			name:          "top-level file",
			key:           "customers.csv",
			wantFile:      "customers.csv",
			wantTable:     "customers",
			wantStaging:   "customers_processed.csv",
			wantQualified: "customers",
		},
		{
			name:          "nested key with schema and prefix",
			key:           "raw/2017/sales_2017.csv",
			prefix:        "processed/",
			schema:        "adventureworks",
			wantFile:      "sales_2017.csv",
			wantTable:     "sales_2017",
			wantStaging:   "processed/sales_2017_processed.csv",
			wantQualified: "adventureworks.sales_2017",
		},
		{
			name:          "multiple dots keep only the first segment",
			key:           "returns.backup.csv",
			wantFile:      "returns.backup.csv",
			wantTable:     "returns",
			wantStaging:   "returns_processed.csv",
			wantQualified: "returns",
		},
		{
			name:          "no extension",
			key:           "products",
			wantFile:      "products",
			wantTable:     "products",
			wantStaging:   "products_processed.csv",
			wantQualified: "products",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			target := NewLoadTarget("e-commerce-raw", tt.key, "e-commerce-processed", tt.prefix, tt.schema)

			assert.Equal(t, tt.wantFile, target.FileName)
			assert.Equal(t, tt.wantTable, target.Table)
			assert.Equal(t, tt.wantStaging, target.StagingKey)
			assert.Equal(t, tt.wantQualified, target.QualifiedTable())
		})
	}
}

func TestLoadTarget_URIs(t *testing.T) {
	target := NewLoadTarget("e-commerce-raw", "in/customers.csv", "e-commerce-processed", "", "")

	assert.Equal(t, "s3://e-commerce-raw/in/customers.csv", target.SourceURI())
	assert.Equal(t, "s3://e-commerce-processed/customers_processed.csv", target.StagingURI())
}

func TestNewLoadTarget_DirectoryKey(t *testing.T) {
	target := NewLoadTarget("b", "folder/", "s", "", "")
	assert.Empty(t, target.FileName)
	assert.Empty(t, target.Table)
}

func TestCleaningReport(t *testing.T) {
	report := &CleaningReport{Dataset: "customers"}
	assert.True(t, report.IsNoOp())

	report.Record("BirthDate", "normalize_date", 3)
	report.Record("EmailAddress", "email_domain", 2)
	report.Record("BirthDate", "trim", 1)
	report.Missing("Prefix")
	report.Missing("Prefix")

	assert.False(t, report.IsNoOp())
	assert.Equal(t, 6, report.ValuesChanged())
	assert.Equal(t, []string{"BirthDate", "EmailAddress"}, report.CleanedColumns())
	assert.Equal(t, []string{"Prefix"}, report.MissingColumns)
}
