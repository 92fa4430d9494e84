package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pageza/chef-fhe/backend/internal/contract"
	"github.com/pageza/chef-fhe/backend/internal/fhe"
	"github.com/pageza/chef-fhe/backend/internal/service"
	"github.com/pageza/chef-fhe/backend/internal/types"
	"github.com/pageza/chef-fhe/backend/internal/wallet"
)

// statusFor maps service errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, service.ErrInvalidInput),
		errors.Is(err, wallet.ErrInvalidAddress),
		errors.Is(err, wallet.ErrInvalidSignature),
		errors.Is(err, fhe.ErrMalformed):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrInvalidToken),
		errors.Is(err, wallet.ErrSignerMismatch),
		errors.Is(err, service.ErrSignatureExpired),
		errors.Is(err, service.ErrSignatureWindow),
		errors.Is(err, service.ErrUnknownPublicKey),
		errors.Is(err, service.ErrContractMismatch),
		errors.Is(err, service.ErrChainMismatch):
		return http.StatusUnauthorized
	case errors.Is(err, service.ErrNotOwner):
		return http.StatusForbidden
	case errors.Is(err, service.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrInvalidTransition),
		errors.Is(err, service.ErrNotGenerated):
		return http.StatusConflict
	case errors.Is(err, service.ErrStoreUnavailable),
		errors.Is(err, contract.ErrUnavailable):
		return http.StatusServiceUnavailable
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	}
	return http.StatusInternalServerError
}

func respondError(c *gin.Context, err error) {
	_ = c.Error(err)
	c.JSON(statusFor(err), gin.H{"error": err.Error()})
}

// respondTxError reports a failed mutation with the transaction banner.
func respondTxError(c *gin.Context, prefix string, err error) {
	_ = c.Error(err)
	c.JSON(statusFor(err), gin.H{
		"error": err.Error(),
		"transaction": types.TransactionStatus{
			Status:  types.TxError,
			Message: prefix + err.Error(),
		},
	})
}
