package mirror

import (
	"context"
	"errors"
	"sync"

	"github.com/itanishqshelar/Flashfits-AI/internal/cart"
)

var ErrUnauthenticated = errors.New("mirror: unauthenticated")

// SignInNotice is shown to a shopper whose additions could not be saved
// because they are not signed in.
const SignInNotice = "Sign in to save your cart across devices."

type Product struct {
	Name  string  `json:"name"`
	Price float64 `json:"price"`
	Image string  `json:"image"`
}

// Addition is one unit added to a session cart, as sent to the
// persistent stores.
type Addition struct {
	// ProductID is the catalog database id, when the item came from the
	// catalog. Items added from raw product data only carry ItemID.
	ProductID     string
	ItemID        int
	Quantity      int
	Product       Product
	SelectedColor *string
	SelectedSize  *string

	SessionID     string
	UserID        string
	CorrelationID string
}

func FromLine(sessionID, userID string, line cart.LineItem) Addition {
	return Addition{
		ItemID:        line.ID,
		Quantity:      1,
		Product:       Product{Name: line.Name, Price: line.Price, Image: line.Image},
		SelectedColor: line.SelectedColor,
		SelectedSize:  line.SelectedSize,
		SessionID:     sessionID,
		UserID:        userID,
	}
}

type Mirror interface {
	MirrorAddition(ctx context.Context, a Addition) error
}

type Func func(ctx context.Context, a Addition) error

func (f Func) MirrorAddition(ctx context.Context, a Addition) error {
	return f(ctx, a)
}

// Multi sends each addition to every mirror concurrently. The returned
// error joins all failures, so errors.Is(err, ErrUnauthenticated) holds
// when any sink rejected the shopper.
type Multi []Mirror

func (m Multi) MirrorAddition(ctx context.Context, a Addition) error {
	if len(m) == 0 {
		return nil
	}
	if len(m) == 1 {
		return m[0].MirrorAddition(ctx, a)
	}

	errs := make([]error, len(m))
	var wg sync.WaitGroup
	for i, mr := range m {
		wg.Add(1)
		go func(i int, mr Mirror) {
			defer wg.Done()
			errs[i] = mr.MirrorAddition(ctx, a)
		}(i, mr)
	}
	wg.Wait()

	return errors.Join(errs...)
}
