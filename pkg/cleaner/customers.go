// pkg/cleaner/customers.go
package cleaner

import (
	"github.com/David-Botos/s3-ingress/pkg/model"
)

// Customers columns
const (
	colCustomerKey    = "CustomerKey"
	colPrefix         = "Prefix"
	colFirstName      = "FirstName"
	colLastNameTypo   = "LastNa"
	colLastName       = "LastName"
	colBirthDate      = "BirthDate"
	colMaritalStatus  = "MaritalStatus"
	colEmailAddress   = "EmailAddress"
	colEducationLevel = "EducationLevel"
	colOccupation     = "Occupation"
	colHomeOwner      = "HomeOwner"

	educationLevelValue = "College Degree"
)

// ColumnRule binds a normalizer to one column of a dataset
type ColumnRule struct {
	Column    string
	Operation string
	Normalize Normalizer
}

var customerRules = []ColumnRule{
	{Column: colMaritalStatus, Operation: "map_marital_status", Normalize: MapValues(map[string]string{
		"M": "Married",
		"S": "Single",
	})},
	{Column: colPrefix, Operation: "map_prefix", Normalize: MapValues(map[string]string{
		"MrR": "MR",
	})},
	{Column: colFirstName, Operation: "strip_digits", Normalize: StripDigits},
	{Column: colOccupation, Operation: "strip_punctuation", Normalize: StripPunctuation},
	{Column: colEmailAddress, Operation: "email_domain", Normalize: EmailDomain},
	{Column: colBirthDate, Operation: "normalize_date", Normalize: NormalizeDate},
	{Column: colCustomerKey, Operation: "normalize_numeric", Normalize: NormalizeNumeric},
	{Column: colHomeOwner, Operation: "yes_no_to_bool", Normalize: YesNoToBool},
}

// cleanCustomers applies the customers rules in place
func cleanCustomers(rs *model.RecordSet, report *model.CleaningReport) error {
	renamed, err := rs.RenameColumn(colLastNameTypo, colLastName)
	if err != nil {
		return err
	}
	if renamed {
		report.Record(colLastName, "rename_column", 0)
	} else if !rs.HasColumn(colLastName) {
		report.Missing(colLastNameTypo)
	}

	// Education level is grouped into a single value
	if rs.HasColumn(colEducationLevel) {
		changed, _ := rs.Apply(colEducationLevel, Constant(educationLevelValue))
		report.Record(colEducationLevel, "set_constant", changed)
	} else {
		if err := rs.AddColumn(colEducationLevel, educationLevelValue); err != nil {
			return err
		}
		report.Record(colEducationLevel, "set_constant", rs.Len())
	}

	applyRules(rs, customerRules, report)
	return nil
}

// applyRules runs each rule over its column, noting columns that are absent
func applyRules(rs *model.RecordSet, rules []ColumnRule, report *model.CleaningReport) {
	for _, rule := range rules {
		changed, ok := rs.Apply(rule.Column, rule.Normalize)
		if !ok {
			report.Missing(rule.Column)
			continue
		}
		report.Record(rule.Column, rule.Operation, changed)
	}
}

// passThrough leaves the record set untouched
func passThrough(*model.RecordSet, *model.CleaningReport) error {
	return nil
}
