package form

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vitwit/paylink/types"
)

func openLink(fields ...types.CustomFieldDef) *types.PaymentLinkDescriptor {
	return &types.PaymentLinkDescriptor{ID: "link-1", CustomFields: fields}
}

func problemsOf(t *testing.T, err error) []Problem {
	t.Helper()
	var pe *types.PaylinkError
	require.ErrorAs(t, err, &pe)
	require.Equal(t, types.ErrValidation, pe.Code)
	problems, ok := pe.Data.([]Problem)
	require.True(t, ok)
	return problems
}

func TestAmountValidity(t *testing.T) {
	tests := []struct {
		amount string
		valid  bool
	}{
		{"1", true},
		{"0.01", true},
		{"1000000.123456789", true},
		{"0", false},
		{"-5", false},
		{"", false},
		{"abc", false},
		{"1,5", false},
		{"1e2000000", false},
		{"1e2147483645", false},
		{"1E3", false},
		{"0x10", false},
		{".5", true},
	}

	for _, tt := range tests {
		t.Run(tt.amount, func(t *testing.T) {
			s := New(openLink(), 84532)
			require.NoError(t, s.SetAmount(tt.amount))

			err := s.Validate()
			if tt.valid {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Equal(t, "Please enter a valid amount", err.(*types.PaylinkError).Message)
		})
	}
}

func TestFixedAmount(t *testing.T) {
	desc := &types.PaymentLinkDescriptor{ID: "l", FixedAmount: "10"}
	s := New(desc, 84532)

	assert.Equal(t, "10", s.Snapshot().Amount)
	assert.NoError(t, s.Validate())

	assert.ErrorIs(t, s.SetAmount("11"), ErrAmountFixed)
	assert.NoError(t, s.SetAmount("10.00"))
	assert.NoError(t, s.Validate())
}

func TestRequiredFields(t *testing.T) {
	s := New(openLink(
		types.CustomFieldDef{Name: "table", Kind: types.FieldText, Required: true},
		types.CustomFieldDef{Name: "note", Kind: types.FieldTextarea},
	), 84532)
	require.NoError(t, s.SetAmount("3"))

	err := s.Validate()
	require.Error(t, err)
	problems := problemsOf(t, err)
	assert.Equal(t, []Problem{{Field: "table", Reason: "required"}}, problems)
	assert.Equal(t, "Please fill the required field: table", err.(*types.PaylinkError).Message)

	require.NoError(t, s.SetField("table", "   "))
	assert.Error(t, s.Validate(), "whitespace is empty")

	require.NoError(t, s.SetField("table", "7"))
	assert.NoError(t, s.Validate())
}

func TestUnknownFieldRejected(t *testing.T) {
	s := New(openLink(types.CustomFieldDef{Name: "table"}), 84532)

	err := s.SetField("tip", "5")
	require.Error(t, err)
	assert.Equal(t, types.ErrValidation, types.CodeOf(err))
	_, present := s.Snapshot().CustomFields["tip"]
	assert.False(t, present)
}

func TestSelectOptions(t *testing.T) {
	s := New(openLink(types.CustomFieldDef{
		Name: "size", Kind: types.FieldSelect, Options: []string{"S", "M"},
	}), 84532)
	require.NoError(t, s.SetAmount("1"))

	require.NoError(t, s.SetField("size", "XL"))
	problems := problemsOf(t, s.Validate())
	assert.Equal(t, "size", problems[0].Field)

	require.NoError(t, s.SetField("size", "M"))
	assert.NoError(t, s.Validate())
}

func TestPayerEmail(t *testing.T) {
	s := New(openLink(), 84532)
	require.NoError(t, s.SetAmount("1"))

	require.NoError(t, s.SetPayer("Alice", "alice"))
	problems := problemsOf(t, s.Validate())
	assert.Equal(t, "payerEmail", problems[0].Field)

	require.NoError(t, s.SetPayer(" Alice ", "a@x.com"))
	assert.NoError(t, s.Validate())
	assert.Equal(t, "Alice", s.Snapshot().PayerName)
}

func TestRailAndChain(t *testing.T) {
	s := New(openLink(), 84532)

	assert.Equal(t, types.RailOnChain, s.Snapshot().Rail)
	assert.Equal(t, uint64(84532), s.Snapshot().ChainID)

	assert.Error(t, s.SetRail("card"))
	require.NoError(t, s.SetRail(types.RailBackend))
	require.NoError(t, s.SelectChain(1))

	snap := s.Snapshot()
	assert.Equal(t, types.RailBackend, snap.Rail)
	assert.Equal(t, uint64(1), snap.ChainID)
}

func TestFreeze(t *testing.T) {
	s := New(openLink(types.CustomFieldDef{Name: "a"}), 84532)
	s.Freeze()

	assert.True(t, s.Frozen())
	assert.ErrorIs(t, s.SetAmount("1"), ErrFrozen)
	assert.ErrorIs(t, s.SetField("a", "x"), ErrFrozen)
	assert.ErrorIs(t, s.SetPayer("n", ""), ErrFrozen)
	assert.ErrorIs(t, s.SetRail(types.RailBackend), ErrFrozen)
	assert.ErrorIs(t, s.SelectChain(1), ErrFrozen)

	s.Unfreeze()
	assert.NoError(t, s.SetAmount("1"))
}

func TestSnapshotIsIndependent(t *testing.T) {
	s := New(openLink(types.CustomFieldDef{Name: "a"}), 84532)
	require.NoError(t, s.SetField("a", "1"))

	snap := s.Snapshot()
	require.NoError(t, s.SetField("a", "2"))
	assert.Equal(t, "1", snap.CustomFields["a"])
}
