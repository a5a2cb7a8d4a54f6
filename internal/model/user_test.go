package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUser_PublicDropsPassword(t *testing.T) {
	u := &User{ID: "u1", Name: "John", Email: "john@gmail.com", Password: "$2a$10$hash", Role: RoleAdmin}

	pub := u.Public()

	assert.Empty(t, pub.Password)
	assert.Equal(t, "$2a$10$hash", u.Password, "receiver must be untouched")

	raw, err := json.Marshal(pub)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "password")
	assert.Contains(t, string(raw), `"_id":"u1"`)
}

func TestUser_PublicNil(t *testing.T) {
	var u *User
	assert.Nil(t, u.Public())
}

func TestQuantityUpdate_DecodesFlatFields(t *testing.T) {
	var updates []QuantityUpdate
	body := `[{"_id":"a","title":"Phone Mini","quantity":5},{"_id":"b","price":299}]`
	require.NoError(t, json.Unmarshal([]byte(body), &updates))

	require.Len(t, updates, 2)
	assert.Equal(t, "a", updates[0].ID)
	require.NotNil(t, updates[0].Title)
	assert.Equal(t, "Phone Mini", *updates[0].Title)
	require.NotNil(t, updates[0].Quantity)
	assert.Equal(t, 5, *updates[0].Quantity)
	assert.Nil(t, updates[1].Quantity)
	require.NotNil(t, updates[1].Price)
	assert.Equal(t, 299.0, *updates[1].Price)
}
