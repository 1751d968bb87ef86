package models

import (
	"fmt"

	"github.com/shopspring/decimal"

	"ipsqr-service/internal/ipsqr"
)

type DecodeRequest struct {
	Payload string `json:"payload"`
	Format  string `json:"format,omitempty"` // array, json
}

type DecodeResponse struct {
	RequestID string            `json:"request_id"`
	Format    ipsqr.Format      `json:"format"`
	Fields    map[string]string `json:"fields"` // null for the json format
	JSON      string            `json:"json,omitempty"`
	Amount    *decimal.Decimal  `json:"amount,omitempty"`
	Complete  bool              `json:"complete"`
	Warnings  []ipsqr.Warning   `json:"warnings"`
}

// NewDecodeResponse shapes res according to format.
func NewDecodeResponse(requestID string, res *ipsqr.Result, format ipsqr.Format) (*DecodeResponse, error) {
	out, err := ipsqr.Render(res.Record, format)
	if err != nil {
		return nil, err
	}

	resp := &DecodeResponse{
		RequestID: requestID,
		Format:    format,
		Complete:  res.Complete(),
		Warnings:  res.Warnings,
	}
	if resp.Warnings == nil {
		resp.Warnings = []ipsqr.Warning{}
	}

	switch v := out.(type) {
	case map[string]string:
		resp.Fields = v
	case string:
		resp.JSON = v
	default:
		return nil, fmt.Errorf("decode response: unexpected render type %T", out)
	}

	if amount, ok := res.Record.Amount(); ok {
		resp.Amount = &amount
	}
	return resp, nil
}

type FieldInfo struct {
	Name    string `json:"name"`
	Tag     string `json:"tag,omitempty"`
	Pattern string `json:"pattern"`
	Derived bool   `json:"derived"`
}

// FieldCatalog describes every canonical field.
func FieldCatalog() []FieldInfo {
	fields := ipsqr.Fields()
	catalog := make([]FieldInfo, 0, len(fields))
	for _, f := range fields {
		info := FieldInfo{
			Name:    f.String(),
			Pattern: ipsqr.Pattern(f),
			Derived: f.Derived(),
		}
		if tag, ok := f.Tag(); ok {
			info.Tag = string(tag)
		}
		catalog = append(catalog, info)
	}
	return catalog
}

// ScanMessage is a payload published by a scanner on the relay channel.
type ScanMessage struct {
	ID      string `json:"id"`
	Payload string `json:"payload"`
	Format  string `json:"format,omitempty"`
}

type ScanResult struct {
	ID       string            `json:"id"`
	Fields   map[string]string `json:"fields,omitempty"`
	JSON     string            `json:"json,omitempty"`
	Complete bool              `json:"complete"`
	Warnings []ipsqr.Warning   `json:"warnings,omitempty"`
	Error    string            `json:"error,omitempty"`
}
