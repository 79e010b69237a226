package types

import (
	"time"
)

// Rail identifies one of the two settlement paths a payer can choose.
type Rail string

const (
	RailOnChain Rail = "onchain"
	RailBackend Rail = "backend"
)

func (r Rail) String() string {
	return string(r)
}

// Valid reports whether r names a supported rail.
func (r Rail) Valid() bool {
	return r == RailOnChain || r == RailBackend
}

// FieldKind is the declared input kind of a custom field.
type FieldKind string

const (
	FieldText     FieldKind = "text"
	FieldTextarea FieldKind = "textarea"
	FieldSelect   FieldKind = "select"
)

// CustomFieldDef describes one extra input the link creator asked for.
type CustomFieldDef struct {
	// Name is the unique key under which the value is submitted.
	Name string `json:"name" validate:"required"`

	// Kind is the input kind. Unknown kinds are treated as text.
	Kind FieldKind `json:"type" validate:"omitempty,oneof=text textarea select"`

	Required bool `json:"required,omitempty"`

	// Options lists the accepted values for select fields.
	Options []string `json:"options,omitempty"`
}

// PaymentLinkDescriptor is the immutable description of what is being paid for.
type PaymentLinkDescriptor struct {
	ID string `json:"id" validate:"required"`

	// FixedAmount, when set, is the only amount the payer may submit.
	FixedAmount string `json:"amount,omitempty"`

	Description string `json:"description,omitempty"`

	// PayTo is the payee address for the on-chain rail. Empty means the
	// configured default payee is used.
	PayTo string `json:"payTo,omitempty"`

	CustomFields []CustomFieldDef `json:"customFields"`
}

// HasFixedAmount reports whether the link pins the amount.
func (d *PaymentLinkDescriptor) HasFixedAmount() bool {
	return d.FixedAmount != ""
}

// Field returns the definition with the given name.
func (d *PaymentLinkDescriptor) Field(name string) (CustomFieldDef, bool) {
	for _, f := range d.CustomFields {
		if f.Name == name {
			return f, true
		}
	}
	return CustomFieldDef{}, false
}

// FormSubmission is the payer input collected by the wizard.
type FormSubmission struct {
	Amount       string            `json:"amount"`
	CustomFields map[string]string `json:"customFields"`
	PayerName    string            `json:"payerName,omitempty"`
	PayerEmail   string            `json:"payerEmail,omitempty"`
	Rail         Rail              `json:"rail"`
	ChainID      uint64            `json:"chainId,omitempty"`
}

// Clone returns a deep copy so callers can hold a snapshot while the form
// keeps changing.
func (s FormSubmission) Clone() FormSubmission {
	out := s
	out.CustomFields = make(map[string]string, len(s.CustomFields))
	for k, v := range s.CustomFields {
		out.CustomFields[k] = v
	}
	return out
}

// SettleRequest is the body of the backend settlement call.
type SettleRequest struct {
	LinkID       string            `json:"linkId"`
	Amount       string            `json:"amount"`
	CustomFields map[string]string `json:"customFields"`
	PayerName    string            `json:"payerName,omitempty"`
	PayerEmail   string            `json:"payerEmail,omitempty"`
	AuthToken    string            `json:"authToken"`
}

// BackendReceipt is returned by the backend settlement endpoint.
type BackendReceipt struct {
	ID           string            `json:"id"`
	Amount       string            `json:"amount"`
	PayerName    string            `json:"payerName,omitempty"`
	PayerEmail   string            `json:"payerEmail,omitempty"`
	CustomFields map[string]string `json:"customFields,omitempty"`
	Status       string            `json:"status,omitempty"`
	CreatedAt    *time.Time        `json:"createdAt,omitempty"`
}

// Record statuses.
const (
	StatusConfirmed = "confirmed"
	StatusSettled   = "settled"
)

// TransactionRecord is the durable record posted after a successful payment.
type TransactionRecord struct {
	LinkID       string            `json:"linkId"`
	Rail         Rail              `json:"rail"`
	Amount       string            `json:"amount"`
	PayerName    string            `json:"payerName,omitempty"`
	PayerEmail   string            `json:"payerEmail,omitempty"`
	CustomFields map[string]string `json:"customFields"`
	Status       string            `json:"status"`
	Memo         string            `json:"memo,omitempty"`

	// On-chain only.
	TxHash      string `json:"txHash,omitempty"`
	From        string `json:"from,omitempty"`
	To          string `json:"to,omitempty"`
	Network     string `json:"network,omitempty"`
	BlockNumber uint64 `json:"blockNumber,omitempty"`
	GasUsed     string `json:"gasUsed,omitempty"`
	GasPrice    string `json:"gasPrice,omitempty"`

	// Backend only.
	ReceiptID string `json:"receiptId,omitempty"`
}
