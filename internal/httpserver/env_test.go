package httpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/premstore/storebot/internal/catalog"
	"github.com/premstore/storebot/internal/deposits"
	"github.com/premstore/storebot/internal/models"
	"github.com/premstore/storebot/internal/orders"
	"github.com/premstore/storebot/internal/settings"
	"github.com/premstore/storebot/internal/storage"
	"github.com/premstore/storebot/internal/users"
)

type testEnv struct {
	T        *testing.T
	E        *echo.Echo
	Catalog  *catalog.Service
	Orders   *orders.Service
	Users    *users.Service
	Deposits *deposits.Service
	Settings *settings.Service
	Deps     *Deps
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	st, err := storage.NewJSONStore(t.TempDir())
	require.NoError(t, err)

	cat := catalog.NewService(st)
	usr := users.NewService(st)
	ord := orders.NewService(st, cat)
	set := settings.NewService(st)
	dep := deposits.NewService(st, set, usr)

	d := &Deps{
		Products: &ProductHandler{Catalog: cat},
		Orders:   &OrderHandler{Orders: ord},
		Deposits: &DepositHandler{Deposits: dep},
		Settings: &SettingsHandler{Settings: set},
	}

	e := echo.New()
	Register(e, d)

	return &testEnv{
		T:        t,
		E:        e,
		Catalog:  cat,
		Orders:   ord,
		Users:    usr,
		Deposits: dep,
		Settings: set,
		Deps:     d,
	}
}

func (env *testEnv) doJSONRequest(method, path string, body interface{}) (*httptest.ResponseRecorder, echo.Context) {
	var buf bytes.Buffer
	if body != nil {
		require.NoError(env.T, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)

	rec := httptest.NewRecorder()
	c := env.E.NewContext(req, rec)
	return rec, c
}

func (env *testEnv) seedProduct(name, price string, stock int) *models.Product {
	env.T.Helper()
	d := decimal.RequireFromString(price)
	p, err := env.Catalog.Create(context.Background(), catalog.CreateRequest{
		Name:        name,
		Description: "d",
		Price:       &d,
		Category:    "misc",
		Stock:       stock,
	})
	require.NoError(env.T, err)
	return p
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var resp struct {
		Error string `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp.Error
}
