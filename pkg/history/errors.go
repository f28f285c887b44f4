package history

import "errors"

var (
	ErrOpenStore      = errors.New("open history store")
	ErrRecordReceipt  = errors.New("record receipt")
	ErrQueryReceipts  = errors.New("query receipts")
	ErrReceiptMissing = errors.New("receipt not found")
	ErrEncodeDetails  = errors.New("encode receipt details")
	ErrDecodeDetails  = errors.New("decode receipt details")
)
