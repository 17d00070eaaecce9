package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddressScan(t *testing.T) {
	var a Address
	require.NoError(t, a.Scan([]byte(`{"line1":"Jl. Merdeka 1","city":"Bandung","state":"Jawa Barat","pincode":"40111"}`)))
	assert.Equal(t, "Bandung", a.City)

	var b Address
	require.NoError(t, b.Scan(`{"line1":"Jl. Asia 2","city":"Medan"}`))
	assert.Equal(t, "Medan", b.City)

	require.NoError(t, b.Scan(nil))
	assert.Equal(t, "Medan", b.City)

	assert.Error(t, b.Scan(42))
	assert.Error(t, b.Scan([]byte("not json")))
}

func TestAddressesScanEmpty(t *testing.T) {
	for _, src := range []interface{}{nil, []byte{}, ""} {
		var list Addresses
		require.NoError(t, list.Scan(src))
		assert.Empty(t, list)
	}
}

func TestAddressesValueRoundTrip(t *testing.T) {
	in := Addresses{{Line1: "Jl. Merdeka 1", City: "Bandung", Type: "home"}, {Line1: "Jl. Asia 2", City: "Medan"}}
	v, err := in.Value()
	require.NoError(t, err)

	var out Addresses
	require.NoError(t, out.Scan(v))
	assert.Equal(t, in, out)

	v, err = Addresses(nil).Value()
	require.NoError(t, err)
	assert.Equal(t, []byte("[]"), v)
}
