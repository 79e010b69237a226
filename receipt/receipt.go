// Package receipt turns a finished payment attempt into what the payer is
// shown.
package receipt

import (
	"errors"
	"sort"
	"strings"

	"github.com/vitwit/paylink/executor"
	"github.com/vitwit/paylink/types"
	"github.com/vitwit/paylink/utils"
)

const (
	HeadlineOnChain = "Payment Successful!"
	HeadlineBackend = "Payment Logged!"
	HeadlineFailed  = "Payment Failed"
	HeadlinePending = "Payment Pending"
)

// Field is one custom field, in display order.
type Field struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

type View struct {
	LinkID   string     `json:"linkId"`
	Rail     types.Rail `json:"rail"`
	Success  bool       `json:"success"`
	Headline string     `json:"headline"`

	// Reference is the transaction hash on-chain, or the receipt id.
	Reference   string `json:"reference,omitempty"`
	ExplorerURL string `json:"explorerUrl,omitempty"`
	Network     string `json:"network,omitempty"`
	Token       string `json:"token,omitempty"`
	From        string `json:"from,omitempty"`

	Amount       string  `json:"amount"`
	PayerName    string  `json:"payerName,omitempty"`
	PayerEmail   string  `json:"payerEmail,omitempty"`
	CustomFields []Field `json:"customFields,omitempty"`

	Code      string `json:"code,omitempty"`
	Message   string `json:"message,omitempty"`
	Retryable bool   `json:"retryable,omitempty"`
}

// Present projects a. It never fails; a nil attempt yields the zero View.
func Present(a *executor.Attempt) View {
	if a == nil {
		return View{}
	}

	v := View{
		LinkID:     a.LinkID,
		Rail:       a.Rail,
		Amount:     a.Submission.Amount,
		PayerName:  a.Submission.PayerName,
		PayerEmail: a.Submission.PayerEmail,
	}
	v.CustomFields = fields(a.Submission.CustomFields)

	switch a.Status {
	case executor.Succeeded:
		v.Success = true
	case executor.Failed:
		v.Headline = HeadlineFailed
		v.Code = a.Code()
		v.Message = message(a.Err)
		v.Retryable = a.Retryable()
		return v
	default:
		v.Headline = HeadlinePending
		return v
	}

	if o := a.OnChain; o != nil {
		v.Headline = HeadlineOnChain
		v.Reference = o.TxHash.Hex()
		v.Network = o.Network
		v.From = utils.ShortAddress(o.From.Hex())
		if a.Chain != nil {
			if base := a.Chain.Explorer(); base != "" {
				v.ExplorerURL = strings.TrimRight(base, "/") + "/tx/" + v.Reference
			}
			if a.Chain.Token != nil {
				v.Token = a.Chain.Token.Symbol
			}
		}
		return v
	}

	v.Headline = HeadlineBackend
	if r := a.Receipt; r != nil {
		v.Reference = r.ID
		if r.Amount != "" {
			v.Amount = r.Amount
		}
		if r.PayerName != "" {
			v.PayerName = r.PayerName
		}
		if r.PayerEmail != "" {
			v.PayerEmail = r.PayerEmail
		}
		if len(r.CustomFields) > 0 {
			v.CustomFields = fields(r.CustomFields)
		}
	}
	return v
}

func message(err error) string {
	if err == nil {
		return ""
	}
	var pe *types.PaylinkError
	if errors.As(err, &pe) {
		return pe.Message
	}
	return err.Error()
}

func fields(m map[string]string) []Field {
	if len(m) == 0 {
		return nil
	}
	out := make([]Field, 0, len(m))
	for k, v := range m {
		out = append(out, Field{Name: k, Value: v})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
