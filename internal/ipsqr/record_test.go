package ipsqr

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ipsqr-service/internal/status"
)

func TestRecord_SetGet(t *testing.T) {
	r := NewRecord()

	_, ok := r.Get(MCC)
	assert.False(t, ok)

	r.Set(MCC, "5411")
	v, ok := r.Get(MCC)
	assert.True(t, ok)
	assert.Equal(t, "5411", v)
	assert.Equal(t, 1, r.Len())

	// Set does no validation.
	r.Set(MCC, "not-a-code")
	v, _ = r.Get(MCC)
	assert.Equal(t, "not-a-code", v)
}

func TestRecord_InvalidFieldIgnored(t *testing.T) {
	r := NewRecord()
	r.Set(Field(99), "x")

	_, ok := r.Get(Field(99))
	assert.False(t, ok)
	assert.Zero(t, r.Len())
}

func TestRecord_EmptyValueIsPresent(t *testing.T) {
	r := NewRecord()
	r.Set(PayerNameAndPlace, "")

	v, ok := r.Get(PayerNameAndPlace)
	assert.True(t, ok)
	assert.Empty(t, v)
}

func TestRecord_GetMany(t *testing.T) {
	r := NewRecord()
	r.Set(Version, "01")
	r.Set(PaymentCode, "122")

	got := r.GetMany(PaymentCode, MCC, Version)
	assert.Equal(t, []Value{
		{Text: "122", Present: true},
		{},
		{Text: "01", Present: true},
	}, got)
}

func TestRecord_AllSortedByName(t *testing.T) {
	r := Decode(infostanPayload).Record

	entries := r.All()
	require.Len(t, entries, r.Len())
	for i := 1; i < len(entries); i++ {
		assert.Less(t, entries[i-1].Name, entries[i].Name)
	}
	assert.Equal(t, "AmountDecimals", entries[0].Name)
	assert.Equal(t, "Version", entries[len(entries)-1].Name)
}

func TestRecord_JSONRoundTrip(t *testing.T) {
	r := Decode(infostanPayload).Record

	b, err := json.Marshal(r)
	require.NoError(t, err)

	var back Record
	require.NoError(t, json.Unmarshal(b, &back))
	assert.Equal(t, r.Map(), back.Map())
	assert.Equal(t, *r, back)
}

func TestRecord_JSONKeysSorted(t *testing.T) {
	r := NewRecord()
	r.Set(Version, "01")
	r.Set(IdentificationCode, "PR")
	r.Set(CharacterSet, "1")

	b, err := json.Marshal(r)
	require.NoError(t, err)
	assert.Equal(t, `{"CharacterSet":"1","IdentificationCode":"PR","Version":"01"}`, string(b))
}

func TestRecord_UnmarshalUnknownField(t *testing.T) {
	var r Record
	err := json.Unmarshal([]byte(`{"IdentificationCode":"PR","Tip":"5"}`), &r)

	assert.True(t, errors.Is(err, status.ErrUnknownField))
}

func TestFields_Lookup(t *testing.T) {
	f, ok := LookupTag("RO")
	require.True(t, ok)
	assert.Equal(t, PayeeApprovalReferenceCode, f)
	assert.Equal(t, "PayeeApprovalReferenceCode", f.String())

	_, ok = LookupTag("X")
	assert.False(t, ok)
	_, ok = LookupTag("")
	assert.False(t, ok)

	byName, ok := FieldByName("POSTransactionReferenceCode")
	require.True(t, ok)
	assert.Equal(t, POSTransactionReferenceCode, byName)
}

func TestFields_TagMapIsInjective(t *testing.T) {
	seen := make(map[Field]Tag)
	for _, tag := range Tags() {
		f, ok := LookupTag(string(tag))
		require.True(t, ok, tag)
		_, dup := seen[f]
		assert.False(t, dup, "field %s mapped twice", f)
		seen[f] = tag

		back, ok := f.Tag()
		require.True(t, ok)
		assert.Equal(t, tag, back)
	}
	assert.Len(t, seen, 15)
}

func TestFields_Derived(t *testing.T) {
	assert.Len(t, Fields(), 18)
	for _, f := range []Field{Currency, AmountInteger, AmountDecimals} {
		assert.True(t, f.Derived())
		_, ok := f.Tag()
		assert.False(t, ok)
	}
	assert.False(t, CurrencyAndAmount.Derived())
}
