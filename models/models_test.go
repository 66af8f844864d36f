package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassKeyNormalization(t *testing.T) {
	a := ClassKey{Program: "Stage 1", Day: "Monday", Time: "16:00", Site: "Main Pool"}
	b := ClassKey{Program: "  stage 1 ", Day: "MONDAY", Time: " 16:00", Site: "main pool  "}

	assert.Equal(t, "stage 1|monday|16:00|main pool", a.Key())
	assert.Equal(t, a.Key(), b.Key())
}

func TestStudentIdentityFullName(t *testing.T) {
	assert.Equal(t, "Alex Smith", StudentIdentity{FirstName: "Alex", LastName: "Smith"}.FullName())
	assert.Equal(t, "Alex", StudentIdentity{FirstName: " Alex "}.FullName())
	assert.Equal(t, "Smith", StudentIdentity{LastName: "Smith"}.FullName())
	assert.Equal(t, "", StudentIdentity{}.FullName())
}

func TestStudentIdentityDerivation(t *testing.T) {
	s := Student{ID: "ST-0001", FirstName: "Alex", LastName: "Smith", ClassID: "stage 1|monday|16:00|main pool"}
	assert.Equal(t, StudentIdentity{FirstName: "Alex", LastName: "Smith"}, s.Identity())
}

func TestGridStudentSlotResolved(t *testing.T) {
	assert.False(t, GridStudentSlot{CanonicalRow: -1}.Resolved())
	assert.True(t, GridStudentSlot{CanonicalRow: 0}.Resolved())
}
