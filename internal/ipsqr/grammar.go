package ipsqr

import "regexp"

// Free-text fields use (?s) so embedded line breaks count as characters.
// Lengths are counted in runes.
var grammars = [numFields]*regexp.Regexp{
	IdentificationCode:          regexp.MustCompile(`^(PR|PT|PK|EK)$`),
	Version:                     regexp.MustCompile(`^\d{1,2}$`),
	CharacterSet:                regexp.MustCompile(`^1$`),
	BankAccountNumber:           regexp.MustCompile(`^\d{18}$`),
	PayeeNameAndPlace:           regexp.MustCompile(`(?s)^.{1,70}$`),
	CurrencyAndAmount:           regexp.MustCompile(`^RSD\d{1,12},\d{0,2}$`),
	PayerAccountNumber:          regexp.MustCompile(`^\d{18}$`),
	PayerNameAndPlace:           regexp.MustCompile(`(?s)^.{0,70}$`),
	PaymentCode:                 regexp.MustCompile(`^\d{3}$`),
	PaymentPurpose:              regexp.MustCompile(`(?s)^.{1,35}$`),
	MCC:                         regexp.MustCompile(`^\d{4}$`),
	OneTimePaymentCode:          regexp.MustCompile(`^\d{5}$`),
	PayeeApprovalReferenceCode:  regexp.MustCompile(`^\d{0,35}$`),
	PayeeReferenceCode:          regexp.MustCompile(`^\d{0,140}$`),
	POSTransactionReferenceCode: regexp.MustCompile(`^\d{19}$`),
	Currency:                    regexp.MustCompile(`^RSD$`),
	AmountInteger:               regexp.MustCompile(`^\d{1,12}$`),
	AmountDecimals:              regexp.MustCompile(`^\d{0,2}$`),
}

// Validate reports whether value fully matches the grammar of field.
func Validate(field Field, value string) bool {
	if !field.valid() {
		return false
	}
	return grammars[field].MatchString(value)
}

// Pattern returns the grammar of field as a regular expression.
func Pattern(field Field) string {
	if !field.valid() {
		return ""
	}
	return grammars[field].String()
}
