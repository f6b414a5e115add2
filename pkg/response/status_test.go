//go:build !integration

package response

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"marketplace/domain"
)

func TestStatusFor(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{domain.NewValidation("bad"), http.StatusBadRequest},
		{domain.ErrProductNotFound, http.StatusNotFound},
		{domain.ErrCodeWrongOwner, http.StatusForbidden},
		{domain.ErrCodeAlreadyUsed, http.StatusConflict},
		{fmt.Errorf("checkout: %w", domain.NewCapacity("no stock")), http.StatusUnprocessableEntity},
		{&domain.Error{Kind: domain.ErrPersistence, Msg: "disk"}, http.StatusInternalServerError},
		{errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		got, _ := StatusFor(tc.err)
		assert.Equal(t, tc.want, got, tc.err.Error())
	}
}

func TestFromError_HidesUnclassifiedMessages(t *testing.T) {
	_, body := FromError(errors.New("secret dsn leaked"))
	assert.Equal(t, "Internal Server Error", body.Error.Message)

	_, body = FromError(domain.NewCapacity("not enough stock"))
	assert.Equal(t, "not enough stock", body.Error.Message)
	assert.Equal(t, "CAPACITY_EXCEEDED", body.Error.Code)
}
