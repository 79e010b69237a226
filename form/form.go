// Package form holds the payer's input for one payment link and validates it
// against the link's descriptor.
package form

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/vitwit/paylink/types"
	"github.com/vitwit/paylink/utils"
)

var (
	ErrFrozen      = errors.New("form: submission is frozen while a payment is in flight")
	ErrAmountFixed = errors.New("form: amount is fixed by the payment link")
)

// Problem is one reason the submission cannot advance.
type Problem struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

// State is the mutable submission for a single descriptor. It is safe for
// concurrent use.
type State struct {
	mu     sync.Mutex
	desc   *types.PaymentLinkDescriptor
	sub    types.FormSubmission
	frozen bool
}

// New starts an empty submission, pre-filling the fixed amount if the link
// has one.
func New(desc *types.PaymentLinkDescriptor, defaultChain uint64) *State {
	return &State{
		desc: desc,
		sub: types.FormSubmission{
			Amount:       desc.FixedAmount,
			CustomFields: make(map[string]string, len(desc.CustomFields)),
			Rail:         types.RailOnChain,
			ChainID:      defaultChain,
		},
	}
}

func (s *State) Descriptor() *types.PaymentLinkDescriptor {
	return s.desc
}

func (s *State) SetAmount(amount string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.frozen {
		return ErrFrozen
	}
	amount = strings.TrimSpace(amount)
	if s.desc.HasFixedAmount() && !utils.AmountsEqual(amount, s.desc.FixedAmount) {
		return ErrAmountFixed
	}
	s.sub.Amount = amount
	return nil
}

// SetField stores a custom field value. Names the descriptor does not define
// are rejected.
func (s *State) SetField(name, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.frozen {
		return ErrFrozen
	}
	if _, ok := s.desc.Field(name); !ok {
		return types.Errorf(types.ErrValidation, "unknown field %q", name).
			WithData([]Problem{{Field: name, Reason: "not defined by this payment link"}})
	}
	s.sub.CustomFields[name] = value
	return nil
}

func (s *State) SetPayer(name, email string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.frozen {
		return ErrFrozen
	}
	s.sub.PayerName = strings.TrimSpace(name)
	s.sub.PayerEmail = strings.TrimSpace(email)
	return nil
}

func (s *State) SetRail(r types.Rail) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.frozen {
		return ErrFrozen
	}
	if !r.Valid() {
		return types.Errorf(types.ErrValidation, "unknown payment rail %q", r)
	}
	s.sub.Rail = r
	return nil
}

// SelectChain records the network the on-chain rail should settle on. The
// id is checked against the registry at payment time.
func (s *State) SelectChain(chainID uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.frozen {
		return ErrFrozen
	}
	s.sub.ChainID = chainID
	return nil
}

// Validate reports every problem that blocks leaving the collecting step as
// a single VALIDATION_ERROR whose Data is []Problem.
func (s *State) Validate() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	problems := s.problems()
	if len(problems) == 0 {
		return nil
	}
	return types.Errorf(types.ErrValidation, "%s", describe(problems[0])).WithData(problems)
}

func (s *State) problems() []Problem {
	var out []Problem

	if s.desc.HasFixedAmount() {
		if !utils.AmountsEqual(s.sub.Amount, s.desc.FixedAmount) {
			out = append(out, Problem{Field: "amount", Reason: fmt.Sprintf("must equal %s", s.desc.FixedAmount)})
		}
	} else if _, err := utils.ValidateAmount(s.sub.Amount); err != nil {
		out = append(out, Problem{Field: "amount", Reason: "enter a valid amount"})
	}

	for _, def := range s.desc.CustomFields {
		value := strings.TrimSpace(s.sub.CustomFields[def.Name])
		if value == "" {
			if def.Required {
				out = append(out, Problem{Field: def.Name, Reason: "required"})
			}
			continue
		}
		if def.Kind == types.FieldSelect && len(def.Options) > 0 && !contains(def.Options, value) {
			out = append(out, Problem{Field: def.Name, Reason: "not one of the allowed options"})
		}
	}

	for name := range s.sub.CustomFields {
		if _, ok := s.desc.Field(name); !ok {
			out = append(out, Problem{Field: name, Reason: "not defined by this payment link"})
		}
	}

	if s.sub.PayerEmail != "" {
		if err := utils.ValidateEmail(s.sub.PayerEmail); err != nil {
			out = append(out, Problem{Field: "payerEmail", Reason: "not a valid email address"})
		}
	}

	if !s.sub.Rail.Valid() {
		out = append(out, Problem{Field: "rail", Reason: "choose on-chain or backend"})
	}

	return out
}

func describe(p Problem) string {
	switch {
	case p.Field == "amount":
		return "Please enter a valid amount"
	case p.Reason == "required":
		return "Please fill the required field: " + p.Field
	default:
		return p.Field + ": " + p.Reason
	}
}

// Snapshot returns a copy of the current submission.
func (s *State) Snapshot() types.FormSubmission {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sub.Clone()
}

// Freeze blocks all setters until Unfreeze.
func (s *State) Freeze() {
	s.mu.Lock()
	s.frozen = true
	s.mu.Unlock()
}

func (s *State) Unfreeze() {
	s.mu.Lock()
	s.frozen = false
	s.mu.Unlock()
}

func (s *State) Frozen() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.frozen
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}
