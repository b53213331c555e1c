package web

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"gestorcloud/internal/app"

	"github.com/shopspring/decimal"
)

// saleRequest is the body of POST /api/ventas.
type saleRequest struct {
	CustomerID    int64           `json:"customer_id" validate:"required,gt=0"`
	SaleDate      string          `json:"sale_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	SaleTime      string          `json:"sale_time,omitempty" validate:"omitempty,datetime=15:04"`
	Products      string          `json:"products" validate:"required"`
	TotalValue    decimal.Decimal `json:"total_value"`
	Discount      decimal.Decimal `json:"discount"`
	PaymentMethod string          `json:"payment_method,omitempty"`
	Seller        string          `json:"seller,omitempty" validate:"max=255"`
	Notes         string          `json:"notes,omitempty"`
}

func (s *saleRequest) fromForm(form url.Values) error {
	if v := strings.TrimSpace(form.Get("customer_id")); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid customer_id: must be a whole number")
		}
		s.CustomerID = id
	}
	var err error
	if s.TotalValue, err = formDecimal(form, "total_value"); err != nil {
		return err
	}
	if s.Discount, err = formDecimal(form, "discount"); err != nil {
		return err
	}
	s.SaleDate = form.Get("sale_date")
	s.SaleTime = form.Get("sale_time")
	s.Products = form.Get("products")
	s.PaymentMethod = form.Get("payment_method")
	s.Seller = form.Get("seller")
	s.Notes = form.Get("notes")
	return nil
}

func formDecimal(form url.Values, key string) (decimal.Decimal, error) {
	v := strings.TrimSpace(form.Get(key))
	if v == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(v)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid %s: must be a number", key)
	}
	return d, nil
}

// listSales handles GET /api/ventas.
func (h *Handler) listSales(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.ListSales(r.Context())
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// createSale handles POST /api/ventas.
func (h *Handler) createSale(w http.ResponseWriter, r *http.Request) {
	var req saleRequest
	if !h.decodeBody(w, r, &req, req.fromForm) {
		return
	}

	result, err := h.svc.RecordSale(r.Context(), app.RecordSaleRequest{
		CustomerID:    req.CustomerID,
		SaleDate:      req.SaleDate,
		SaleTime:      req.SaleTime,
		Products:      req.Products,
		TotalValue:    req.TotalValue,
		Discount:      req.Discount,
		PaymentMethod: req.PaymentMethod,
		Seller:        req.Seller,
		Notes:         req.Notes,
	})
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	type response struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
		SaleID  int64  `json:"venta_id"`
		*app.SaleResult
	}
	writeJSON(w, http.StatusCreated, response{
		Success:    true,
		Message:    "sale recorded",
		SaleID:     result.Sale.ID,
		SaleResult: result,
	})
}

// daySales handles GET /api/ventas/hoy[?fecha=YYYY-MM-DD].
func (h *Handler) daySales(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.DaySales(r.Context(), strings.TrimSpace(r.URL.Query().Get("fecha")))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}
