// pkg/cleaner/extended.go
package cleaner

import (
	"sort"
	"strings"

	"github.com/David-Botos/s3-ingress/pkg/model"
)

const (
	colSocialMedia    = "Social Media Accounts"
	noSocialMedia     = "NoSocialMedia"
	socialMediaSep    = ", "
	colOrderQuantity  = "OrderQuantity"
	colOrderDate      = "OrderDate"
	colOrderYear      = "OrderYear"
	colReturnQuantity = "ReturnQuantity"
)

var salesRules = []ColumnRule{
	{Column: colOrderQuantity, Operation: "normalize_numeric", Normalize: NormalizeNumeric},
	{Column: "ProductKey", Operation: "normalize_numeric", Normalize: NormalizeNumeric},
	{Column: colCustomerKey, Operation: "normalize_numeric", Normalize: NormalizeNumeric},
	{Column: "TerritoryKey", Operation: "normalize_numeric", Normalize: NormalizeNumeric},
	{Column: "OrderLineItem", Operation: "normalize_numeric", Normalize: NormalizeNumeric},
	{Column: colOrderDate, Operation: "normalize_date", Normalize: NormalizeDate},
	{Column: "StockDate", Operation: "normalize_date", Normalize: NormalizeDate},
}

var returnsRules = []ColumnRule{
	{Column: "ReturnDate", Operation: "normalize_date", Normalize: NormalizeDate},
	{Column: "TerritoryKey", Operation: "normalize_numeric", Normalize: NormalizeNumeric},
	{Column: "ProductKey", Operation: "normalize_numeric", Normalize: NormalizeNumeric},
	{Column: colReturnQuantity, Operation: "normalize_numeric", Normalize: NormalizeNumeric},
}

var productsRules = []ColumnRule{
	{Column: "ProductKey", Operation: "normalize_numeric", Normalize: NormalizeNumeric},
	{Column: "ProductSubcategoryKey", Operation: "normalize_numeric", Normalize: NormalizeNumeric},
	{Column: "ProductCost", Operation: "normalize_decimal", Normalize: NormalizeDecimal},
	{Column: "ProductPrice", Operation: "normalize_decimal", Normalize: NormalizeDecimal},
	{Column: "ProductSKU", Operation: "default_if_empty", Normalize: DefaultIfEmpty("Unknown")},
	{Column: "ProductName", Operation: "default_if_empty", Normalize: DefaultIfEmpty("Unknown")},
	{Column: "ModelName", Operation: "default_if_empty", Normalize: DefaultIfEmpty("Unknown")},
	{Column: "ProductDescription", Operation: "default_if_empty", Normalize: DefaultIfEmpty("No Description")},
	{Column: "ProductColor", Operation: "default_if_empty", Normalize: DefaultIfEmpty("NA")},
	{Column: "ProductSize", Operation: "default_if_empty", Normalize: DefaultIfEmpty("NA")},
	{Column: "ProductStyle", Operation: "default_if_empty", Normalize: DefaultIfEmpty("NA")},
	{Column: "ProductSize", Operation: "map_zero_to_na", Normalize: MapValues(map[string]string{"0": "NA"})},
	{Column: "ProductStyle", Operation: "map_zero_to_na", Normalize: MapValues(map[string]string{"0": "NA"})},
}

// cleanSales normalizes a yearly sales file and derives OrderYear
func cleanSales(rs *model.RecordSet, report *model.CleaningReport) error {
	cols := rs.Columns()
	if len(cols) == 0 {
		return nil
	}

	// The quantity column arrives under varying names; it is always last
	if last := cols[len(cols)-1]; last != colOrderQuantity {
		if _, err := rs.RenameColumn(last, colOrderQuantity); err != nil {
			return err
		}
		report.Record(colOrderQuantity, "rename_column", 0)
	}

	applyRules(rs, salesRules, report)

	derived, err := rs.DeriveColumn(colOrderYear, colOrderDate, func(date string) string {
		return date[:4]
	})
	if err != nil {
		return err
	}
	if derived {
		report.Record(colOrderYear, "derive_year", rs.Len())
	}
	return nil
}

// cleanReturns normalizes the returns file
func cleanReturns(rs *model.RecordSet, report *model.CleaningReport) error {
	applyRules(rs, returnsRules, report)
	return nil
}

// cleanProducts normalizes the products file and fills missing descriptive fields
func cleanProducts(rs *model.RecordSet, report *model.CleaningReport) error {
	applyRules(rs, productsRules, report)
	return nil
}

// cleanCustomersNew expands the social media list into one indicator column per account
func cleanCustomersNew(rs *model.RecordSet, report *model.CleaningReport) error {
	if !rs.HasColumn(colCustomerKey) || !rs.HasColumn(colSocialMedia) {
		if !rs.HasColumn(colCustomerKey) {
			report.Missing(colCustomerKey)
		}
		if !rs.HasColumn(colSocialMedia) {
			report.Missing(colSocialMedia)
		}
		return nil
	}

	filled, _ := rs.Apply(colSocialMedia, DefaultIfEmpty(noSocialMedia))
	report.Record(colSocialMedia, "default_if_empty", filled)

	// Collect the accounts of every row and the distinct account names
	accountsByRow := make([]map[string]bool, rs.Len())
	distinct := make(map[string]bool)
	for i := 0; i < rs.Len(); i++ {
		raw, _ := rs.Value(i, colSocialMedia)
		accountsByRow[i] = make(map[string]bool)
		for _, account := range strings.Split(raw, socialMediaSep) {
			account = NormalizeText(account)
			if account == "" {
				continue
			}
			accountsByRow[i][account] = true
			distinct[account] = true
		}
	}

	accounts := make([]string, 0, len(distinct))
	for account := range distinct {
		accounts = append(accounts, account)
	}
	sort.Strings(accounts)

	columns := append([]string{colCustomerKey}, accounts...)
	rows := make([][]string, rs.Len())
	for i := range rows {
		key, _ := rs.Value(i, colCustomerKey)
		row := make([]string, 0, len(columns))
		row = append(row, key)
		for _, account := range accounts {
			if accountsByRow[i][account] {
				row = append(row, "1")
			} else {
				row = append(row, "0")
			}
		}
		rows[i] = row
	}

	if err := rs.Project(columns, rows); err != nil {
		return err
	}
	report.Record(colSocialMedia, "expand_indicators", len(accounts))
	return nil
}
