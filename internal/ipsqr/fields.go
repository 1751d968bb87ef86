package ipsqr

// Tag is the short code that prefixes a segment of the raw payload.
type Tag string

const (
	TagIdentificationCode          Tag = "K"
	TagVersion                     Tag = "V"
	TagCharacterSet                Tag = "C"
	TagBankAccountNumber           Tag = "R"
	TagPayeeNameAndPlace           Tag = "N"
	TagCurrencyAndAmount           Tag = "I"
	TagPayerAccountNumber          Tag = "O"
	TagPayerNameAndPlace           Tag = "P"
	TagPaymentCode                 Tag = "SF"
	TagPaymentPurpose              Tag = "S"
	TagMCC                         Tag = "M"
	TagOneTimePaymentCode          Tag = "JS"
	TagPayeeApprovalReferenceCode  Tag = "RO"
	TagPayeeReferenceCode          Tag = "RL"
	TagPOSTransactionReferenceCode Tag = "RP"
)

// Field is a canonical record field.
type Field int

const (
	IdentificationCode Field = iota
	Version
	CharacterSet
	BankAccountNumber
	PayeeNameAndPlace
	CurrencyAndAmount
	PayerAccountNumber
	PayerNameAndPlace
	PaymentCode
	PaymentPurpose
	MCC
	OneTimePaymentCode
	PayeeApprovalReferenceCode
	PayeeReferenceCode
	POSTransactionReferenceCode

	// derived from CurrencyAndAmount
	Currency
	AmountInteger
	AmountDecimals

	numFields
)

var fieldNames = [numFields]string{
	IdentificationCode:          "IdentificationCode",
	Version:                     "Version",
	CharacterSet:                "CharacterSet",
	BankAccountNumber:           "BankAccountNumber",
	PayeeNameAndPlace:           "PayeeNameAndPlace",
	CurrencyAndAmount:           "CurrencyAndAmount",
	PayerAccountNumber:          "PayerAccountNumber",
	PayerNameAndPlace:           "PayerNameAndPlace",
	PaymentCode:                 "PaymentCode",
	PaymentPurpose:              "PaymentPurpose",
	MCC:                         "MCC",
	OneTimePaymentCode:          "OneTimePaymentCode",
	PayeeApprovalReferenceCode:  "PayeeApprovalReferenceCode",
	PayeeReferenceCode:          "PayeeReferenceCode",
	POSTransactionReferenceCode: "POSTransactionReferenceCode",
	Currency:                    "Currency",
	AmountInteger:               "AmountInteger",
	AmountDecimals:              "AmountDecimals",
}

// tagOrder is the canonical order of tags on the wire.
var tagOrder = []Tag{
	TagIdentificationCode,
	TagVersion,
	TagCharacterSet,
	TagBankAccountNumber,
	TagPayeeNameAndPlace,
	TagCurrencyAndAmount,
	TagPayerAccountNumber,
	TagPayerNameAndPlace,
	TagPaymentCode,
	TagPaymentPurpose,
	TagMCC,
	TagOneTimePaymentCode,
	TagPayeeApprovalReferenceCode,
	TagPayeeReferenceCode,
	TagPOSTransactionReferenceCode,
}

var tagFields = map[Tag]Field{
	TagIdentificationCode:          IdentificationCode,
	TagVersion:                     Version,
	TagCharacterSet:                CharacterSet,
	TagBankAccountNumber:           BankAccountNumber,
	TagPayeeNameAndPlace:           PayeeNameAndPlace,
	TagCurrencyAndAmount:           CurrencyAndAmount,
	TagPayerAccountNumber:          PayerAccountNumber,
	TagPayerNameAndPlace:           PayerNameAndPlace,
	TagPaymentCode:                 PaymentCode,
	TagPaymentPurpose:              PaymentPurpose,
	TagMCC:                         MCC,
	TagOneTimePaymentCode:          OneTimePaymentCode,
	TagPayeeApprovalReferenceCode:  PayeeApprovalReferenceCode,
	TagPayeeReferenceCode:          PayeeReferenceCode,
	TagPOSTransactionReferenceCode: POSTransactionReferenceCode,
}

var (
	fieldTags    = make(map[Field]Tag, len(tagFields))
	fieldsByName = make(map[string]Field, numFields)
)

func init() {
	for tag, f := range tagFields {
		fieldTags[f] = tag
	}
	for f, name := range fieldNames {
		fieldsByName[name] = Field(f)
	}
}

// LookupTag resolves a payload tag to its canonical field.
// Unknown tags report false and are meant to be skipped.
func LookupTag(tag string) (Field, bool) {
	f, ok := tagFields[Tag(tag)]
	return f, ok
}

// FieldByName resolves a canonical field name such as "BankAccountNumber".
func FieldByName(name string) (Field, bool) {
	f, ok := fieldsByName[name]
	return f, ok
}

// Fields returns every canonical field, tag-backed ones first.
func Fields() []Field {
	fields := make([]Field, numFields)
	for i := range fields {
		fields[i] = Field(i)
	}
	return fields
}

// Tags returns the known tags in wire order.
func Tags() []Tag {
	return append([]Tag(nil), tagOrder...)
}

func (f Field) String() string {
	if !f.valid() {
		return "Field(invalid)"
	}
	return fieldNames[f]
}

// Tag returns the payload tag of f. Derived fields have no tag.
func (f Field) Tag() (Tag, bool) {
	tag, ok := fieldTags[f]
	return tag, ok
}

// Derived reports whether f is produced by amount decomposition rather than read from a tag.
func (f Field) Derived() bool {
	return f >= Currency && f < numFields
}

func (f Field) valid() bool {
	return f >= 0 && f < numFields
}
