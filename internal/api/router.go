package api

import (
	"net/http"

	"github.com/shopping-cart-api/internal/logging"
	"github.com/shopping-cart-api/internal/middleware"
	httpSwagger "github.com/swaggo/http-swagger"
)

// NewRouter creates a new HTTP router with all routes
func NewRouter(h *Handler, auth *middleware.AuthMiddleware, allowedOrigin string, log logging.Logger) http.Handler {
	mux := http.NewServeMux()

	// Swagger documentation
	mux.Handle("/swagger/", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
		httpSwagger.DeepLinking(true),
		httpSwagger.DocExpansion("list"),
		httpSwagger.DomID("swagger-ui"),
	))

	mux.HandleFunc("GET /health", h.Health)

	// Item routes
	mux.HandleFunc("GET /item/all", h.ListItems)
	mux.Handle("GET /item/admin/all", auth.Authenticate(http.HandlerFunc(h.ListItemsAdmin)))
	mux.HandleFunc("GET /item/{id}", h.GetItem)
	mux.HandleFunc("POST /item", h.CreateItem)
	mux.HandleFunc("PATCH /item/{id}", h.UpdateItem)
	mux.HandleFunc("DELETE /item/{id}", h.DeleteItem)
	mux.HandleFunc("POST /item/updateQuantity", h.UpdateQuantity)

	// User routes
	mux.HandleFunc("GET /user/all", h.ListUsers)
	mux.HandleFunc("POST /user", h.CreateUser)
	mux.HandleFunc("POST /user/login", h.Login)
	mux.HandleFunc("GET /user/{id}", h.GetUser)
	mux.HandleFunc("PATCH /user/{id}", h.UpdateUser)
	mux.HandleFunc("DELETE /user/{id}", h.DeleteUser)

	// Apply global middleware
	handler := middleware.CORS(allowedOrigin)(middleware.JSON(middleware.Logger(log)(mux)))

	return handler
}
