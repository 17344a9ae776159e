package page

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMatchSignatureShortForms(t *testing.T) {
	cases := []struct {
		sig  []byte
		kind Kind
	}{
		{[]byte{0xF7, 0xF7, 0xF7, 0xF7}, KindRowSize},
		{[]byte{0xF6, 0xF6, 0xF6, 0xF6}, KindColumnSize},
		{[]byte{0x00, 0xFC, 0xFF, 0xFF}, KindCounts},
		{[]byte{0xFF, 0xFF, 0xFC, 0x00}, KindCounts},
		{[]byte{0xFD, 0xFF, 0xFF, 0xFF}, KindColumnText},
		{[]byte{0xFF, 0xFF, 0xFF, 0xFD}, KindColumnText},
		{[]byte{0xFF, 0xFF, 0xFF, 0xFF}, KindColumnName},
		{[]byte{0xFC, 0xFF, 0xFF, 0xFF}, KindColumnAttributes},
		{[]byte{0xFF, 0xFF, 0xFF, 0xFC}, KindColumnAttributes},
		{[]byte{0xFE, 0xFB, 0xFF, 0xFF}, KindFormatAndLabel},
		{[]byte{0xFF, 0xFF, 0xFB, 0xFE}, KindFormatAndLabel},
		{[]byte{0xFE, 0xFF, 0xFF, 0xFF}, KindColumnList},
		{[]byte{0xFF, 0xFF, 0xFF, 0xFE}, KindColumnList},
	}
	for _, tc := range cases {
		payload := make([]byte, 64)
		copy(payload, tc.sig)
		payload[4] = 0x5A // arbitrary tail so long forms cannot match

		kind, err := matchSignature(payload, 4)
		require.NoError(t, err, "signature % x", tc.sig)
		assert.Equal(t, tc.kind, kind, "signature % x", tc.sig)
	}
}

func TestMatchSignatureLongForms(t *testing.T) {
	cases := []struct {
		sig  []byte
		kind Kind
	}{
		{[]byte{0x00, 0x00, 0x00, 0x00, 0xF7, 0xF7, 0xF7, 0xF7}, KindRowSize},
		{[]byte{0xF7, 0xF7, 0xF7, 0xF7, 0x00, 0x00, 0x00, 0x00}, KindRowSize},
		{[]byte{0xF7, 0xF7, 0xF7, 0xF7, 0xFF, 0xFF, 0xFF, 0xFF}, KindRowSize},
		{[]byte{0xF6, 0xF6, 0xF6, 0xF6, 0xFF, 0xFF, 0xFF, 0xFF}, KindColumnSize},
		{[]byte{0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFC, 0x00}, KindCounts},
		{[]byte{0xFD, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF}, KindColumnText},
		{[]byte{0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF}, KindColumnName},
		{[]byte{0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFC}, KindColumnAttributes},
		{[]byte{0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFB, 0xFE}, KindFormatAndLabel},
		{[]byte{0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFE}, KindColumnList},
	}
	for _, tc := range cases {
		payload := make([]byte, 64)
		copy(payload, tc.sig)

		kind, err := matchSignature(payload, 8)
		require.NoError(t, err, "signature % x", tc.sig)
		assert.Equal(t, tc.kind, kind, "signature % x", tc.sig)
	}
}

func TestMatchSignatureLongFormDisambiguates(t *testing.T) {
	// With 4-byte words the first word alone reads as a column-name
	// signature; the two-word form must win.
	payload := make([]byte, 64)
	copy(payload, []byte{0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFC})

	kind, err := matchSignature(payload, 4)
	require.NoError(t, err)
	assert.Equal(t, KindColumnAttributes, kind)
}

func TestMatchSignatureUnknown(t *testing.T) {
	payload := make([]byte, 64)
	copy(payload, []byte{0x12, 0x34, 0x56, 0x78})

	_, err := matchSignature(payload, 4)
	assert.ErrorIs(t, err, ErrUnknownSignature)

	_, err = matchSignature(payload, 8)
	assert.ErrorIs(t, err, ErrUnknownSignature)
}

func TestMatchSignatureWidthEligibility(t *testing.T) {
	// A bare one-word signature must not satisfy an 8-byte-word file.
	payload := make([]byte, 64)
	copy(payload, []byte{0xF7, 0xF7, 0xF7, 0xF7})
	payload[4] = 0x5A

	_, err := matchSignature(payload, 8)
	assert.ErrorIs(t, err, ErrUnknownSignature)
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "row-size", KindRowSize.String())
	assert.Equal(t, "column-size", KindColumnSize.String())
	assert.Equal(t, "format-and-label", KindFormatAndLabel.String())
}
