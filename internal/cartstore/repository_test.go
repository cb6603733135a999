package cartstore

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/require"
)

const (
	testUser    = "user-1"
	testProduct = "6f1d8f0c-4f1e-4b7a-9d55-2f0d5a0c1e11"
)

func intPtr(v int) *int           { return &v }
func int64Ptr(v int64) *int64     { return &v }
func floatPtr(v float64) *float64 { return &v }
func strPtr(v string) *string     { return &v }

func TestListItems_NewestFirstWithProduct(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	rows := sqlmock.NewRows([]string{"id", "quantity", "id", "name", "price_cents", "image_url"}).
		AddRow("item-2", 1, testProduct, "Tee", int64(99900), "/tee.jpg").
		AddRow("item-1", 3, "p-2", "Scarf", nil, nil)
	mock.ExpectQuery(regexp.QuoteMeta(listItemsSQL)).
		WithArgs(testUser).
		WillReturnRows(rows)

	items, err := NewRepository(db).ListItems(context.Background(), testUser)
	require.NoError(t, err)
	require.Len(t, items, 2)

	require.Equal(t, "item-2", items[0].ID)
	require.Equal(t, "Tee", items[0].Product.Name)
	require.NotNil(t, items[0].Product.PriceCents)
	require.Equal(t, int64(99900), *items[0].Product.PriceCents)
	require.Equal(t, "/tee.jpg", *items[0].Product.ImageURL)

	require.Equal(t, 3, items[1].Quantity)
	require.Nil(t, items[1].Product.PriceCents)
	require.Nil(t, items[1].Product.ImageURL)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestListItems_EmptyIsNotNil(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta(listItemsSQL)).
		WithArgs(testUser).
		WillReturnRows(sqlmock.NewRows([]string{"id", "quantity", "id", "name", "price_cents", "image_url"}))

	items, err := NewRepository(db).ListItems(context.Background(), testUser)
	require.NoError(t, err)
	require.NotNil(t, items)
	require.Empty(t, items)
}

func TestAddItem_WithProductID(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(ensureCartSQL)).
		WithArgs(testUser).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(regexp.QuoteMeta(upsertItemSQL)).
		WithArgs(testUser, testProduct, 2).
		WillReturnRows(sqlmock.NewRows([]string{"id", "quantity"}).AddRow("line-1", 2))
	mock.ExpectCommit()

	line, err := NewRepository(db).AddItem(context.Background(), testUser, AddRequest{
		ProductID: testProduct,
		Quantity:  intPtr(2),
	})
	require.NoError(t, err)
	require.Equal(t, SavedLine{ID: "line-1", Quantity: 2}, line)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAddItem_ResolvesExistingProductByName(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(ensureCartSQL)).
		WithArgs(testUser).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(regexp.QuoteMeta(findProductByNameSQL)).
		WithArgs("Tee").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(testProduct))
	mock.ExpectQuery(regexp.QuoteMeta(upsertItemSQL)).
		WithArgs(testUser, testProduct, 1).
		WillReturnRows(sqlmock.NewRows([]string{"id", "quantity"}).AddRow("line-1", 1))
	mock.ExpectCommit()

	line, err := NewRepository(db).AddItem(context.Background(), testUser, AddRequest{
		Product: &ProductDetails{Name: "Tee", Price: floatPtr(999)},
	})
	require.NoError(t, err)
	require.Equal(t, 1, line.Quantity)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAddItem_InsertsMissingProduct(t *testing.T) {
	tests := map[string]struct {
		details   ProductDetails
		wantCents int64
		wantImage any
	}{
		"price converted to cents": {
			details:   ProductDetails{Name: "Tee", Price: floatPtr(999.99), Image: strPtr("/tee.jpg")},
			wantCents: 99999,
			wantImage: "/tee.jpg",
		},
		"price_cents wins over price": {
			details:   ProductDetails{Name: "Tee", Price: floatPtr(1), PriceCents: int64Ptr(4500)},
			wantCents: 4500,
			wantImage: nil,
		},
		"image_url wins over image": {
			details:   ProductDetails{Name: "Tee", Image: strPtr("/a.jpg"), ImageURL: strPtr("/b.jpg")},
			wantCents: 0,
			wantImage: "/b.jpg",
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()

			mock.ExpectBegin()
			mock.ExpectExec(regexp.QuoteMeta(ensureCartSQL)).
				WithArgs(testUser).
				WillReturnResult(sqlmock.NewResult(0, 1))
			mock.ExpectQuery(regexp.QuoteMeta(findProductByNameSQL)).
				WithArgs("Tee").
				WillReturnRows(sqlmock.NewRows([]string{"id"}))
			mock.ExpectQuery(regexp.QuoteMeta(insertProductSQL)).
				WithArgs("Tee", tc.wantCents, tc.wantImage).
				WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(testProduct))
			mock.ExpectQuery(regexp.QuoteMeta(upsertItemSQL)).
				WithArgs(testUser, testProduct, 1).
				WillReturnRows(sqlmock.NewRows([]string{"id", "quantity"}).AddRow("line-1", 1))
			mock.ExpectCommit()

			_, err = NewRepository(db).AddItem(context.Background(), testUser, AddRequest{Product: &tc.details})
			require.NoError(t, err)
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestAddItem_RejectsBeforeTouchingDB(t *testing.T) {
	tests := map[string]struct {
		req     AddRequest
		wantErr error
	}{
		"no product at all":     {req: AddRequest{}, wantErr: ErrMissingProduct},
		"product without name": {req: AddRequest{Product: &ProductDetails{Name: "  "}}, wantErr: ErrMissingProduct},
		"malformed product id": {req: AddRequest{ProductID: "3"}, wantErr: ErrInvalidProduct},
		"zero quantity":        {req: AddRequest{ProductID: testProduct, Quantity: intPtr(0)}, wantErr: ErrInvalidQuantity},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()

			_, err = NewRepository(db).AddItem(context.Background(), testUser, tc.req)
			require.ErrorIs(t, err, tc.wantErr)
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestAddItem_UnknownProductRollsBack(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(ensureCartSQL)).
		WithArgs(testUser).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(regexp.QuoteMeta(upsertItemSQL)).
		WithArgs(testUser, testProduct, 1).
		WillReturnError(&pq.Error{Code: foreignKeyViolation})
	mock.ExpectRollback()

	_, err = NewRepository(db).AddItem(context.Background(), testUser, AddRequest{ProductID: testProduct})
	require.ErrorIs(t, err, ErrUnknownProduct)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAddItem_EnsureCartErrorRollsBack(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(ensureCartSQL)).
		WithArgs(testUser).
		WillReturnError(errors.New("connection reset"))
	mock.ExpectRollback()

	_, err = NewRepository(db).AddItem(context.Background(), testUser, AddRequest{ProductID: testProduct})
	require.Error(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}
