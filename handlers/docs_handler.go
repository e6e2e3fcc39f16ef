package handlers

import (
	_ "embed"
	"net/http"

	httpSwagger "github.com/swaggo/http-swagger"
)

const openAPIPath = "/docs/openapi.json"

//go:embed openapi.json
var openAPIDocument []byte

// OpenAPI отдает встроенное описание API.
func OpenAPI(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(openAPIDocument)
}

// SwaggerUI - интерфейс Swagger поверх OpenAPI.
func SwaggerUI() http.HandlerFunc {
	return httpSwagger.Handler(httpSwagger.URL(openAPIPath))
}
