package httperr

import (
	"context"
	"net/http"
	"testing"

	"github.com/zintix-labs/chainspin/errs"
)

func TestStatusCodeMapping(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{context.DeadlineExceeded, http.StatusGatewayTimeout},
		{context.Canceled, http.StatusRequestTimeout},
		{errs.NewKind(errs.KindNotInitialized, "x"), http.StatusServiceUnavailable},
		{errs.NewKind(errs.KindInsufficientBalance, "x"), http.StatusPaymentRequired},
		{errs.NewKind(errs.KindTransactionFailed, "x"), http.StatusBadGateway},
		{errs.NewKind(errs.KindContractError, "x"), http.StatusBadGateway},
		{errs.NewKind(errs.KindNetwork, "x"), http.StatusBadGateway},
		{errs.NewKind(errs.KindTimeout, "x"), http.StatusGatewayTimeout},
		{errs.NewWarn("bad input"), http.StatusBadRequest},
		{errs.NewFatal("boom"), http.StatusInternalServerError},
		{errs.Wrap(errs.NewKind(errs.KindTimeout, "x"), "outer"), http.StatusGatewayTimeout},
	}
	for _, c := range cases {
		if got := StatusCode(c.err); got != c.want {
			t.Fatalf("StatusCode(%v) = %d, want %d", c.err, got, c.want)
		}
	}
}
