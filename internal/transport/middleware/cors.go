package middleware

import (
	"net/http"
	"strings"

	"github.com/rs/cors"

	"github.com/heartmarshall/lexreview/internal/config"
)

// CORS returns middleware that answers preflight requests and sets the
// Access-Control-* headers for allowed origins.
func CORS(cfg config.CORSConfig) Middleware {
	c := cors.New(cors.Options{
		AllowedOrigins:   splitList(cfg.AllowedOrigins),
		AllowedMethods:   splitList(cfg.AllowedMethods),
		AllowedHeaders:   splitList(cfg.AllowedHeaders),
		ExposedHeaders:   []string{RequestIDHeader},
		AllowCredentials: cfg.AllowCredentials,
		MaxAge:           cfg.MaxAge,
	})
	return func(next http.Handler) http.Handler {
		return c.Handler(next)
	}
}

func splitList(raw string) []string {
	var out []string
	for _, s := range strings.Split(raw, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
