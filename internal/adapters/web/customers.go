package web

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"gestorcloud/internal/app"
)

// customerRequest is the body of POST /api/clientes.
type customerRequest struct {
	FullName string `json:"full_name" validate:"required,max=255"`
	Age      int    `json:"age" validate:"required,min=1,max=119"`
	Address  string `json:"address" validate:"required"`
	Email    string `json:"email" validate:"required,email,max=255"`
	Phone    string `json:"phone" validate:"required,max=32"`
	Company  string `json:"company,omitempty" validate:"max=255"`
	Category string `json:"category,omitempty" validate:"omitempty,oneof=Prospect Regular VIP Inactive"`
	Status   string `json:"status,omitempty" validate:"omitempty,oneof=Active Inactive Prospect"`
	Notes    string `json:"notes,omitempty"`
}

func (c *customerRequest) fromForm(form url.Values) error {
	c.FullName = form.Get("full_name")
	c.Address = form.Get("address")
	c.Email = form.Get("email")
	c.Phone = form.Get("phone")
	c.Company = form.Get("company")
	c.Category = form.Get("category")
	c.Status = form.Get("status")
	c.Notes = form.Get("notes")
	if v := form.Get("age"); v != "" {
		age, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("invalid age: must be a whole number")
		}
		c.Age = age
	}
	return nil
}

// customerPatch is the body of POST|PUT /api/clientes/{id}. Absent fields keep
// their stored value.
type customerPatch struct {
	FullName *string `json:"full_name,omitempty" validate:"omitempty,min=1,max=255"`
	Age      *int    `json:"age,omitempty" validate:"omitempty,min=1,max=119"`
	Address  *string `json:"address,omitempty" validate:"omitempty,min=1"`
	Email    *string `json:"email,omitempty" validate:"omitempty,email,max=255"`
	Phone    *string `json:"phone,omitempty" validate:"omitempty,max=32"`
	Company  *string `json:"company,omitempty" validate:"omitempty,max=255"`
	Category *string `json:"category,omitempty" validate:"omitempty,oneof=Prospect Regular VIP Inactive"`
	Status   *string `json:"status,omitempty" validate:"omitempty,oneof=Active Inactive Prospect"`
	Notes    *string `json:"notes,omitempty"`
}

func (p *customerPatch) fromForm(form url.Values) error {
	field := func(key string) *string {
		if !form.Has(key) {
			return nil
		}
		v := form.Get(key)
		return &v
	}
	p.FullName = field("full_name")
	p.Address = field("address")
	p.Email = field("email")
	p.Phone = field("phone")
	p.Company = field("company")
	p.Category = field("category")
	p.Status = field("status")
	p.Notes = field("notes")
	if v := field("age"); v != nil {
		age, err := strconv.Atoi(strings.TrimSpace(*v))
		if err != nil {
			return fmt.Errorf("invalid age: must be a whole number")
		}
		p.Age = &age
	}
	return nil
}

type customerWritten struct {
	Success    bool   `json:"success"`
	Message    string `json:"message"`
	CustomerID int64  `json:"cliente_id"`
	Customer   any    `json:"customer"`
}

// listCustomers handles GET /api/clientes.
func (h *Handler) listCustomers(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.ListCustomers(r.Context())
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// searchCustomers handles GET /api/clientes/buscar?q=.
func (h *Handler) searchCustomers(w http.ResponseWriter, r *http.Request) {
	q := strings.TrimSpace(r.URL.Query().Get("q"))
	if q == "" {
		writeError(w, r, "query parameter q is required", "BAD_REQUEST", http.StatusBadRequest)
		return
	}
	result, err := h.svc.SearchCustomers(r.Context(), q)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// getCustomer handles GET /api/clientes/{id}.
func (h *Handler) getCustomer(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	result, err := h.svc.GetCustomerDetail(r.Context(), id)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// createCustomer handles POST /api/clientes.
func (h *Handler) createCustomer(w http.ResponseWriter, r *http.Request) {
	var req customerRequest
	if !h.decodeBody(w, r, &req, req.fromForm) {
		return
	}

	result, err := h.svc.RegisterCustomer(r.Context(), app.RegisterCustomerRequest{
		FullName: req.FullName,
		Age:      req.Age,
		Address:  req.Address,
		Email:    req.Email,
		Phone:    req.Phone,
		Company:  req.Company,
		Category: req.Category,
		Status:   req.Status,
		Notes:    req.Notes,
	})
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, customerWritten{
		Success:    true,
		Message:    "customer registered",
		CustomerID: result.Customer.ID,
		Customer:   result.Customer,
	})
}

// updateCustomer handles POST|PUT /api/clientes/{id}.
func (h *Handler) updateCustomer(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var patch customerPatch
	if !h.decodeBody(w, r, &patch, patch.fromForm) {
		return
	}

	result, err := h.svc.EditCustomer(r.Context(), app.EditCustomerRequest{
		ID:       id,
		FullName: patch.FullName,
		Age:      patch.Age,
		Address:  patch.Address,
		Email:    patch.Email,
		Phone:    patch.Phone,
		Company:  patch.Company,
		Category: patch.Category,
		Status:   patch.Status,
		Notes:    patch.Notes,
	})
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, customerWritten{
		Success:    true,
		Message:    "customer updated",
		CustomerID: id,
		Customer:   result.Customer,
	})
}

// deleteCustomer handles DELETE /api/clientes/{id}.
func (h *Handler) deleteCustomer(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := h.svc.RemoveCustomer(r.Context(), id); err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "message": "customer deleted"})
}

// customerSales handles GET /api/clientes/{id}/ventas.
func (h *Handler) customerSales(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	result, err := h.svc.ListCustomerSales(r.Context(), id)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}
