// Package server is the thin HTTP edge over the order/payment core.
package server

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/sthaarun/storefront/internal/service"
)

func NewRouter(
	carts service.CartService,
	checkout service.CheckoutService,
	orders service.OrderService,
	payments service.PaymentService,
) *chi.Mux {
	cartHandler := NewCartHandler(carts)
	orderHandler := NewOrderHandler(checkout, orders)
	paymentHandler := NewPaymentHandler(payments)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(CustomerIDMiddleware)

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", cartHandler.GetCart)
			r.Post("/items", cartHandler.AddItem)
			r.Delete("/items/{itemID}", cartHandler.RemoveItem)
		})

		r.Route("/orders", func(r chi.Router) {
			r.Post("/", orderHandler.PlaceOrder)
			r.Get("/", orderHandler.ListOrders)
			r.Get("/{publicID}", orderHandler.GetOrder)
			r.Post("/items/{publicID}/cancel", orderHandler.CancelItem)
		})

		r.Route("/payment", func(r chi.Router) {
			r.Post("/signature", paymentHandler.GenerateSignature)
			r.Post("/callback", paymentHandler.Callback)
			r.Post("/abort", paymentHandler.Abort)
		})
	})

	return r
}
