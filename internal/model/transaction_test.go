package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestGenerateHash(t *testing.T) {
	date := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	a := Transaction{Date: date, Amount: -42.50, Description: "Netflix Subscription"}
	b := Transaction{Date: date, Amount: -42.50, Description: "Netflix Subscription"}
	c := Transaction{Date: date, Amount: -42.51, Description: "Netflix Subscription"}

	assert.Equal(t, a.GenerateHash(), b.GenerateHash())
	assert.NotEqual(t, a.GenerateHash(), c.GenerateHash())
	assert.Len(t, a.GenerateHash(), 64)
}
