package handler

import (
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	jsoniter "github.com/json-iterator/go"
	"github.com/spf13/cast"

	"github.com/rl1809/shop/internal/core/domain"
	"github.com/rl1809/shop/internal/core/service"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

type HTTPHandler struct {
	products  *service.ProductService
	orders    *service.OrderService
	lifecycle *service.OrderLifecycle
	auth      *service.AuthService
}

func NewHTTPHandler(products *service.ProductService, orders *service.OrderService,
	lifecycle *service.OrderLifecycle, auth *service.AuthService) *HTTPHandler {
	return &HTTPHandler{
		products:  products,
		orders:    orders,
		lifecycle: lifecycle,
		auth:      auth,
	}
}

// NewRouter wires every REST route. Catalog reads are public, catalog writes
// and order status changes need an ADMIN token.
func NewRouter(h *HTTPHandler) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)

	authn := authenticate(h.auth)

	r.Get("/health", h.HealthCheck)

	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", h.Register)
		r.Post("/login", h.Login)
	})
	r.With(authn).Get("/users/me", h.Me)

	r.Route("/products", func(r chi.Router) {
		r.Get("/", h.ListProducts)
		r.Get("/{id}", h.GetProduct)
		r.Group(func(r chi.Router) {
			r.Use(authn, requireAdmin)
			r.Post("/", h.CreateProduct)
			r.Patch("/{id}", h.UpdateProduct)
			r.Delete("/{id}", h.DeleteProduct)
		})
	})

	r.Route("/orders", func(r chi.Router) {
		r.Use(authn)
		r.Post("/", h.PlaceOrder)
		r.Get("/", h.ListOrders)
		r.Get("/{id}", h.GetOrder)
		r.With(requireAdmin).Patch("/{id}/{status}", h.ChangeOrderStatus)
	})

	return r
}

func (h *HTTPHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *HTTPHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	token, err := h.auth.Register(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, TokenResponse{AccessToken: token})
}

func (h *HTTPHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	token, err := h.auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, TokenResponse{AccessToken: token})
}

func (h *HTTPHandler) Me(w http.ResponseWriter, r *http.Request) {
	caller, _ := IdentityFrom(r.Context())
	user, err := h.auth.Profile(r.Context(), caller)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ProfileResponse{ID: user.ID, Email: user.Email, Role: user.Role})
}

func (h *HTTPHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var req CreateProductRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	p, err := h.products.Create(r.Context(), service.CreateProductInput{
		Name:       req.Name,
		PriceCents: *req.PriceCents,
		Stock:      *req.Stock,
		IsActive:   req.IsActive,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, productResponse(*p))
}

func (h *HTTPHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	filter := domain.ProductFilter{Query: strings.TrimSpace(r.URL.Query().Get("q"))}
	if raw := strings.TrimSpace(r.URL.Query().Get("is_active")); raw != "" {
		active, err := cast.ToBoolE(raw)
		if err != nil {
			writeError(w, r, domain.Invalid("is_active", "must be a boolean"))
			return
		}
		filter.IsActive = &active
	}

	products, err := h.products.List(r.Context(), filter)
	if err != nil {
		writeError(w, r, err)
		return
	}
	out := make([]ProductResponse, len(products))
	for i, p := range products {
		out[i] = productResponse(p)
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *HTTPHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	p, err := h.products.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, productResponse(*p))
}

func (h *HTTPHandler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	var req UpdateProductRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	p, err := h.products.Update(r.Context(), chi.URLParam(r, "id"), req.toPatch())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, productResponse(*p))
}

func (h *HTTPHandler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	if err := h.products.SoftDelete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *HTTPHandler) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	caller, _ := IdentityFrom(r.Context())

	var req PlaceOrderRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	order, replayed, err := h.orders.PlaceOrderOnce(r.Context(), caller.UserID,
		r.Header.Get("Idempotency-Key"), toLines(req.Items))
	if err != nil {
		writeError(w, r, err)
		return
	}
	status := http.StatusCreated
	if replayed {
		status = http.StatusOK
	}
	writeJSON(w, status, orderResponse(*order))
}

func (h *HTTPHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	caller, _ := IdentityFrom(r.Context())
	status := service.ParseStatus(r.URL.Query().Get("status"))

	orders, err := h.orders.ListOrders(r.Context(), caller, status)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, orderResponses(orders))
}

func (h *HTTPHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	caller, _ := IdentityFrom(r.Context())
	order, err := h.orders.GetOrderFor(r.Context(), caller, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, orderResponse(*order))
}

func (h *HTTPHandler) ChangeOrderStatus(w http.ResponseWriter, r *http.Request) {
	target := service.ParseStatus(chi.URLParam(r, "status"))
	order, err := h.lifecycle.ChangeStatus(r.Context(), chi.URLParam(r, "id"), target)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, orderResponse(*order))
}

// decodeAndValidate reads exactly one JSON value into dst and runs the struct
// tags. Unknown fields and trailing data are rejected. On failure it writes a
// 400 response and returns false.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil || dec.More() {
		writeError(w, r, domain.Invalid("", "invalid request body"))
		return false
	}
	if err := validate.Struct(dst); err != nil {
		writeError(w, r, validationError(err))
		return false
	}
	return true
}

func validationError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return domain.Invalid("", err.Error())
	}
	fe := verrs[0]
	field := fe.Field()
	if i := strings.Index(fe.Namespace(), "."); i >= 0 {
		field = fe.Namespace()[i+1:]
	}
	reason := fmt.Sprintf("failed %q validation", fe.Tag())
	if fe.Param() != "" {
		reason = fmt.Sprintf("failed %q validation (%s)", fe.Tag(), fe.Param())
	}
	return domain.Invalid(field, reason)
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}
