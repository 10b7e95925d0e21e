package structs_test

import (
	"testing"

	"github.com/mdouchement/todo/pkg/structs"
	"github.com/stretchr/testify/assert"
)

type params struct {
	Username string `sanitize:"trim"`
	Password string
	Count    int `sanitize:"trim"`
}

func TestGetSetField(t *testing.T) {
	p := &params{Username: "george"}
	assert.Equal(t, "george", structs.GetField(p, "Username"))

	structs.SetField(p, "Username", "ginette")
	assert.Equal(t, "ginette", p.Username)

	assert.Panics(t, func() { structs.GetField(p, "Unknown") })
	assert.Panics(t, func() { structs.SetField(p, "Count", "42") })
}

func TestPick(t *testing.T) {
	p := params{Username: "george", Count: 42}

	assert.Equal(t, map[string]any{"Username": "george", "Count": 42}, structs.Pick(p, "Username", "Count"))
	assert.Len(t, structs.Pick(p), 3)
}

func TestTrimSpaces(t *testing.T) {
	p := &params{Username: "  george\t", Password: " secret ", Count: 1}
	structs.TrimSpaces(p)

	assert.Equal(t, "george", p.Username)
	assert.Equal(t, " secret ", p.Password)
	assert.Equal(t, 1, p.Count)
}
