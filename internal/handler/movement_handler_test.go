package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"go-stock-ledger/internal/handler"
	"go-stock-ledger/internal/model"
	"go-stock-ledger/internal/repository"
	"go-stock-ledger/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubMovementService struct {
	recordErr error
	recorded  *service.MovementRequest
}

func (s *stubMovementService) RecordMovement(ctx context.Context, req *service.MovementRequest, actor service.Actor) (*model.Transaction, error) {
	if s.recordErr != nil {
		return nil, s.recordErr
	}
	s.recorded = req
	tx := &model.Transaction{
		ProductID:  req.ProductID,
		LocationID: req.LocationID,
		Type:       req.Type,
		Quantity:   req.Quantity,
	}
	tx.ID = uuid.New()
	return tx, nil
}

func (s *stubMovementService) GetTransactions(filter repository.TransactionFilter) ([]model.Transaction, error) {
	return nil, nil
}

func (s *stubMovementService) GetTransactionByID(id uuid.UUID) (*model.Transaction, error) {
	return nil, service.ErrTransactionNotFound
}

func buildApp(svc service.MovementService) *fiber.App {
	app := fiber.New()
	// Stand-in for the auth middleware
	app.Use(func(c *fiber.Ctx) error {
		c.Locals("user_id", uuid.New().String())
		c.Locals("user_name", "Tester")
		c.Locals("user_email", "tester@example.com")
		return c.Next()
	})
	h := handler.NewMovementHandler(svc)
	app.Post("/movements", h.RecordMovement)
	app.Get("/movements/:id", h.GetMovement)
	return app
}

func postMovement(t *testing.T, app *fiber.App, body interface{}) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, json.NewEncoder(&buf).Encode(body))
	req := httptest.NewRequest(http.MethodPost, "/movements", &buf)
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func TestRecordMovementHandler_Created(t *testing.T) {
	svc := &stubMovementService{}
	app := buildApp(svc)

	resp := postMovement(t, app, service.MovementRequest{
		ProductID:  uuid.New(),
		LocationID: uuid.New(),
		Type:       model.TxIn,
		Quantity:   5,
	})
	defer resp.Body.Close()

	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	require.NotNil(t, svc.recorded)
	assert.Equal(t, 5, svc.recorded.Quantity)
}

func TestRecordMovementHandler_ErrorMapping(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
	}{
		{"insufficient stock", service.ErrInsufficientStock, http.StatusUnprocessableEntity},
		{"product missing", service.ErrProductNotFound, http.StatusNotFound},
		{"location missing", service.ErrLocationNotFound, http.StatusNotFound},
		{"lost race", service.ErrConflict, http.StatusConflict},
		{"bad input", service.ErrInvalidInput, http.StatusBadRequest},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			app := buildApp(&stubMovementService{recordErr: tc.err})

			resp := postMovement(t, app, service.MovementRequest{
				ProductID:  uuid.New(),
				LocationID: uuid.New(),
				Type:       model.TxOut,
				Quantity:   5,
			})
			defer resp.Body.Close()

			assert.Equal(t, tc.status, resp.StatusCode)

			var body map[string]interface{}
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
			assert.NotEmpty(t, body["error"], "rejections carry a human-readable reason")
		})
	}
}

func TestRecordMovementHandler_InvalidJSON(t *testing.T) {
	app := buildApp(&stubMovementService{})

	req := httptest.NewRequest(http.MethodPost, "/movements", bytes.NewBufferString("{not json"))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestGetMovementHandler_NotFound(t *testing.T) {
	app := buildApp(&stubMovementService{})

	req := httptest.NewRequest(http.MethodGet, "/movements/"+uuid.New().String(), nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
