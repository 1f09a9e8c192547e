package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RegisterSwagger registers minimal Swagger/OpenAPI endpoints for the auth service.
// - GET /swagger/index.html  -> a small HTML page that loads the OpenAPI JSON
// - GET /swagger/doc.json    -> machine-readable OpenAPI JSON
func RegisterSwagger(rg *gin.Engine) {
	rg.GET("/swagger/index.html", func(c *gin.Context) {
		c.Header("Content-Type", "text/html; charset=utf-8")
		c.String(http.StatusOK, swaggerHTML)
	})

	rg.GET("/swagger/doc.json", func(c *gin.Context) {
		c.Data(http.StatusOK, "application/json", []byte(swaggerJSON))
	})
}

const swaggerHTML = `<!doctype html>
<html>
  <head>
    <meta charset="utf-8" />
    <title>taskpilot-auth — Swagger</title>
    <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@4/swagger-ui.css" />
  </head>
  <body>
    <div id="swagger-ui"></div>
    <script src="https://unpkg.com/swagger-ui-dist@4/swagger-ui-bundle.js"></script>
    <script>
      window.ui = SwaggerUIBundle({
        url: '/swagger/doc.json',
        dom_id: '#swagger-ui',
      })
    </script>
  </body>
</html>`

const swaggerJSON = `{
  "openapi": "3.0.0",
  "info": { "title": "taskpilot-auth", "version": "v0.1.0" },
  "paths": {
    "/api/auth/google": {
      "post": {
        "summary": "Verify a Google ID token and return the session user",
        "requestBody": { "content": { "application/json": { "schema": {"type":"object","properties":{"credential":{"type":"string"}},"required":["credential"]}}}},
        "responses": { "200": { "description": "session user" }, "401": { "description": "invalid credential" } }
      }
    },
    "/api/auth/signup": {
      "post": {
        "summary": "Register a local email/password user",
        "requestBody": { "content": { "application/json": { "schema": {"type":"object","properties":{"email":{"type":"string"},"password":{"type":"string"}},"required":["email","password"]}}}},
        "responses": { "201": { "description": "user created" }, "400": { "description": "user already exists or malformed body" } }
      }
    },
    "/api/auth/login": {
      "post": {
        "summary": "Verify a local email/password credential",
        "requestBody": { "content": { "application/json": { "schema": {"type":"object","properties":{"email":{"type":"string"},"password":{"type":"string"}},"required":["email","password"]}}}},
        "responses": { "200": { "description": "session user" }, "401": { "description": "invalid credentials" } }
      }
    },
    "/api/auth/me": {
      "get": { "summary": "Resolve the Bearer Google ID token to the stored user", "responses": { "200": { "description": "session user" }, "401": { "description": "invalid token" } } }
    },
    "/health": { "get": { "summary": "Liveness check", "responses": { "200": { "description": "healthy" } } } },
    "/ready": { "get": { "summary": "Readiness check", "responses": { "200": { "description": "ready" }, "503": { "description": "not ready" } } } }
  }
}`
