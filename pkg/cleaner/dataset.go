// pkg/cleaner/dataset.go
package cleaner

import (
	"fmt"
	"strings"
)

// Dataset identifies a known source file
type Dataset int

const (
	// DatasetUnknown is any file without a dedicated cleaner; it passes through unchanged
	DatasetUnknown Dataset = iota
	DatasetCustomers
	DatasetCustomersNew
	DatasetSales2015
	DatasetSales2016
	DatasetSales2017
	DatasetReturns
	DatasetProducts
)

// datasetsByFileName is matched exactly; no prefix or case-insensitive matching
var datasetsByFileName = map[string]Dataset{
	"customers.csv":     DatasetCustomers,
	"customers_new.csv": DatasetCustomersNew,
	"sales_2015.csv":    DatasetSales2015,
	"sales_2016.csv":    DatasetSales2016,
	"sales_2017.csv":    DatasetSales2017,
	"returns.csv":       DatasetReturns,
	"products.csv":      DatasetProducts,
}

// ResolveDataset returns the dataset for a source file name
func ResolveDataset(fileName string) Dataset {
	if d, ok := datasetsByFileName[fileName]; ok {
		return d
	}
	return DatasetUnknown
}

// String returns a string representation of the dataset
func (d Dataset) String() string {
	switch d {
	case DatasetUnknown:
		return "unknown"
	case DatasetCustomers:
		return "customers"
	case DatasetCustomersNew:
		return "customers_new"
	case DatasetSales2015:
		return "sales_2015"
	case DatasetSales2016:
		return "sales_2016"
	case DatasetSales2017:
		return "sales_2017"
	case DatasetReturns:
		return "returns"
	case DatasetProducts:
		return "products"
	default:
		return fmt.Sprintf("Dataset(%d)", int(d))
	}
}

// IsSales reports whether d is one of the yearly sales files
func (d Dataset) IsSales() bool {
	return d == DatasetSales2015 || d == DatasetSales2016 || d == DatasetSales2017
}

// Profile selects how much cleaning the non-customers datasets receive
type Profile string

const (
	// ProfileBaseline cleans customers only; every other dataset is a no-op
	ProfileBaseline Profile = "baseline"
	// ProfileExtended also cleans customers_new, sales, returns and products
	ProfileExtended Profile = "extended"
)

// ParseProfile converts a configuration value into a Profile
func ParseProfile(s string) (Profile, error) {
	switch Profile(strings.ToLower(strings.TrimSpace(s))) {
	case "", ProfileBaseline:
		return ProfileBaseline, nil
	case ProfileExtended:
		return ProfileExtended, nil
	default:
		return "", fmt.Errorf("unknown cleaning profile %q", s)
	}
}
