package validate

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRequired(t *testing.T) {
	type input struct {
		Username string `json:"username" validate:"required"`
	}

	errs := Struct(input{})
	assert.True(t, HasErrors(errs))
	assert.Contains(t, errs, "username")

	errs = Struct(input{Username: "alice"})
	assert.False(t, HasErrors(errs))
}

func TestEmail(t *testing.T) {
	type input struct {
		Email string `json:"email" validate:"required,email"`
	}

	assert.True(t, HasErrors(Struct(input{Email: "not-an-email"})))
	assert.False(t, HasErrors(Struct(input{Email: "alice@example.com"})))
}

func TestNumericBounds(t *testing.T) {
	type input struct {
		Rating int `json:"rating" validate:"required,gte=1,lte=5"`
	}

	assert.True(t, HasErrors(Struct(input{Rating: 6})))
	assert.True(t, HasErrors(Struct(input{Rating: 0}))) // zero fails required
	assert.False(t, HasErrors(Struct(input{Rating: 3})))
}

func TestStringLength(t *testing.T) {
	type input struct {
		Name string `json:"name" validate:"required,min=3,max=10"`
	}

	assert.True(t, HasErrors(Struct(input{Name: "ab"})))
	assert.True(t, HasErrors(Struct(input{Name: "abcdefghijk"})))
	assert.False(t, HasErrors(Struct(input{Name: "abcdef"})))
}

func TestInWithMultipleValues(t *testing.T) {
	type input struct {
		Status string `json:"status" validate:"required,in=PENDING,PROCESSING,COMPLETED,max=20"`
	}

	errs := Struct(input{Status: "PROCESSING"})
	assert.False(t, HasErrors(errs))

	errs = Struct(input{Status: "SHIPPED"})
	assert.True(t, HasErrors(errs))
	assert.Equal(t, "The selected status is invalid.", errs["status"])
}

func TestNullableSkipsWhenEmpty(t *testing.T) {
	type input struct {
		Phone string `json:"phone" validate:"nullable,phone"`
	}

	assert.False(t, HasErrors(Struct(input{})))
	assert.True(t, HasErrors(Struct(input{Phone: "abc"})))
	assert.False(t, HasErrors(Struct(input{Phone: "9998887766"})))
}

func TestDigits(t *testing.T) {
	type input struct {
		Code string `json:"code" validate:"required,digits=6"`
	}

	assert.True(t, HasErrors(Struct(input{Code: "12345"})))
	assert.True(t, HasErrors(Struct(input{Code: "12a456"})))
	assert.False(t, HasErrors(Struct(input{Code: "123456"})))
}

func TestBetween(t *testing.T) {
	type input struct {
		Qty int `json:"qty" validate:"required,between=1,99"`
	}

	assert.True(t, HasErrors(Struct(input{Qty: 100})))
	assert.False(t, HasErrors(Struct(input{Qty: 50})))
}

func TestFirstFailingRuleWins(t *testing.T) {
	type input struct {
		Email string `json:"email" validate:"required,email,max=5"`
	}

	errs := Struct(input{Email: ""})
	assert.Equal(t, "The email field is required.", errs["email"])
}
