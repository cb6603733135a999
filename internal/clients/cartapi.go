package clients

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/itanishqshelar/Flashfits-AI/internal/middleware"
	"github.com/itanishqshelar/Flashfits-AI/internal/mirror"
)

// CartAPIClient talks to the persistent cart endpoint (/api/cart).
type CartAPIClient struct{ c *Client }

func NewCartAPIClient(c *Client) *CartAPIClient { return &CartAPIClient{c: c} }

type addCartItemRequest struct {
	ProductID string         `json:"productId,omitempty"`
	Quantity  int            `json:"quantity"`
	Product   mirror.Product `json:"product"`
}

// MirrorAddition saves one added unit to the signed-in shopper's cart.
// The response body is not interpreted.
func (cc *CartAPIClient) MirrorAddition(ctx context.Context, a mirror.Addition) error {
	headers := http.Header{}
	if a.UserID != "" {
		headers.Set(middleware.HeaderUserID, a.UserID)
	}
	if a.CorrelationID != "" {
		headers.Set(middleware.HeaderCorrelationID, a.CorrelationID)
	}

	resp, err := cc.c.Do(ctx, http.MethodPost, "/api/cart", addCartItemRequest{
		ProductID: a.ProductID,
		Quantity:  a.Quantity,
		Product:   a.Product,
	}, headers)
	if err != nil {
		return fmt.Errorf("%s: post cart item: %w", cc.c.Name, err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return mirror.ErrUnauthenticated
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return fmt.Errorf("%s: post cart item: unexpected status %d", cc.c.Name, resp.StatusCode)
	}
	return nil
}
