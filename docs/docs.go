// Package docs registers the OpenAPI description served under /swagger.
// Regenerate with `swag init -g cmd/gateway/main.go` after changing handler
// annotations.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {},
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/health": {
            "get": {"tags": ["health"], "summary": "Liveness probe", "responses": {"200": {"description": "OK"}}}
        },
        "/health/ready": {
            "get": {
                "tags": ["health"], "summary": "Readiness probe", "produces": ["application/json"],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.readinessResponse"}},
                    "503": {"description": "Service Unavailable", "schema": {"$ref": "#/definitions/handler.readinessResponse"}}
                }
            }
        },
        "/v1/auth/login": {
            "post": {
                "tags": ["auth"], "summary": "Login", "consumes": ["application/json"], "produces": ["application/json"],
                "parameters": [{"description": "Login credentials", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handler.loginRequest"}}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.authResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}},
                    "422": {"description": "Unprocessable Entity", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}}
                }
            }
        },
        "/v1/auth/register": {
            "post": {
                "tags": ["auth"], "summary": "Register a new user", "consumes": ["application/json"], "produces": ["application/json"],
                "parameters": [{"description": "User registration details", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handler.registerRequest"}}],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/handler.authResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}},
                    "422": {"description": "Unprocessable Entity", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}}
                }
            }
        },
        "/v1/auth/refresh": {
            "post": {
                "tags": ["auth"], "summary": "Refresh tokens", "consumes": ["application/json"], "produces": ["application/json"],
                "parameters": [{"description": "Refresh token", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handler.refreshRequest"}}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.authResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}}
                }
            }
        },
        "/v1/session": {
            "get": {
                "tags": ["session"], "summary": "Service session state", "produces": ["application/json"],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/domain.SessionState"}}}
            }
        },
        "/v1/session/login": {
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["session"], "summary": "Authenticate the service session", "produces": ["application/json"],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/domain.SessionState"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}},
                    "503": {"description": "Service Unavailable", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}}
                }
            }
        },
        "/v1/session/logout": {
            "post": {"security": [{"BearerAuth": []}], "tags": ["session"], "summary": "Clear the service session", "responses": {"204": {"description": "No Content"}, "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}}}}
        },
        "/v1/session/route": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["session"], "summary": "Route guard decision", "produces": ["application/json"],
                "parameters": [
                    {"type": "string", "description": "Target path, with query", "name": "path", "in": "query", "required": true},
                    {"type": "string", "description": "Target route name", "name": "name", "in": "query"},
                    {"type": "string", "description": "Current path, with query", "name": "from", "in": "query"},
                    {"type": "string", "description": "Current route name", "name": "from_name", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.routeResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}}
                }
            }
        },
        "/v1/dashboard/realisasi-bulan": {
            "get": {"tags": ["dashboard"], "summary": "Monthly realisation cards", "produces": ["application/json"], "parameters": [{"$ref": "#/parameters/idsatker"}, {"$ref": "#/parameters/tahun"}, {"$ref": "#/parameters/bulan"}], "responses": {"200": {"description": "OK"}, "502": {"description": "Bad Gateway", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}}}}
        },
        "/v1/dashboard/realisasi-tahun": {
            "get": {"tags": ["dashboard"], "summary": "Yearly progress cards", "produces": ["application/json"], "parameters": [{"$ref": "#/parameters/idsatker"}, {"$ref": "#/parameters/tahun"}, {"$ref": "#/parameters/bulan"}], "responses": {"200": {"description": "OK"}, "502": {"description": "Bad Gateway", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}}}}
        },
        "/v1/dashboard/articles": {
            "get": {"tags": ["dashboard"], "summary": "Articles", "produces": ["application/json"], "responses": {"200": {"description": "OK"}, "502": {"description": "Bad Gateway", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}}}}
        },
        "/v1/dashboard/rankings": {
            "get": {"tags": ["dashboard"], "summary": "Performance ranking", "produces": ["application/json"], "parameters": [{"$ref": "#/parameters/idsatker"}, {"$ref": "#/parameters/tahun"}, {"$ref": "#/parameters/bulan"}], "responses": {"200": {"description": "OK"}, "502": {"description": "Bad Gateway", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}}}}
        },
        "/v1/dashboard/stats": {
            "get": {"tags": ["dashboard"], "summary": "Budget realisation statistics", "produces": ["application/json"], "parameters": [{"$ref": "#/parameters/idsatker"}, {"$ref": "#/parameters/tahun"}, {"$ref": "#/parameters/bulan"}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/domain.RealisationStats"}}, "502": {"description": "Bad Gateway", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}}}}
        },
        "/v1/proxy/{path}": {
            "get": {
                "tags": ["proxy"], "summary": "Authorized Gin API pass-through", "produces": ["application/json"],
                "parameters": [{"type": "string", "description": "Gin API path", "name": "path", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK"},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}},
                    "405": {"description": "Method Not Allowed", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}},
                    "502": {"description": "Bad Gateway", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}}
                }
            },
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["proxy"], "summary": "Gin API write with the caller's own token", "consumes": ["application/json"], "produces": ["application/json"],
                "parameters": [{"type": "string", "description": "Gin API path", "name": "path", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK"},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}},
                    "405": {"description": "Method Not Allowed", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}},
                    "413": {"description": "Request Entity Too Large", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}}
                }
            }
        }
    },
    "parameters": {
        "idsatker": {"type": "integer", "description": "Work unit id, 0 for all", "name": "idsatker", "in": "query"},
        "tahun": {"type": "integer", "description": "Year", "name": "tahun", "in": "query"},
        "bulan": {"type": "integer", "description": "Month (1-12)", "name": "bulan", "in": "query"}
    },
    "definitions": {
        "domain.RealisationStats": {
            "type": "object",
            "properties": {
                "total_budget": {"type": "number"},
                "total_realisasi": {"type": "number"},
                "realization_percentage": {"type": "number"},
                "variance": {"type": "number"}
            }
        },
        "domain.SessionState": {
            "type": "object",
            "properties": {
                "is_authenticated": {"type": "boolean"},
                "user": {"$ref": "#/definitions/domain.UserProfile"}
            }
        },
        "domain.TokenPair": {
            "type": "object",
            "properties": {
                "access_token": {"type": "string"},
                "refresh_token": {"type": "string"},
                "expires_at": {"type": "string"}
            }
        },
        "domain.UserProfile": {
            "type": "object",
            "properties": {
                "id": {"type": "integer"},
                "email": {"type": "string"},
                "username": {"type": "string"},
                "name": {"type": "string"},
                "role": {"type": "string"}
            }
        },
        "handler.ErrorResponse": {
            "type": "object",
            "properties": {
                "error": {"type": "string"},
                "kind": {"type": "string"},
                "detail": {"type": "string"}
            }
        },
        "handler.authResponse": {
            "type": "object",
            "properties": {
                "token": {"$ref": "#/definitions/domain.TokenPair"},
                "user": {"$ref": "#/definitions/domain.UserProfile"}
            }
        },
        "handler.loginRequest": {
            "type": "object",
            "required": ["password"],
            "properties": {
                "email": {"type": "string"},
                "username": {"type": "string"},
                "password": {"type": "string"}
            }
        },
        "handler.registerRequest": {
            "type": "object",
            "required": ["email", "password"],
            "properties": {
                "email": {"type": "string"},
                "password": {"type": "string", "minLength": 6},
                "name": {"type": "string"}
            }
        },
        "handler.refreshRequest": {
            "type": "object",
            "required": ["refresh_token"],
            "properties": {
                "refresh_token": {"type": "string"}
            }
        },
        "handler.readinessResponse": {
            "type": "object",
            "properties": {
                "status": {"type": "string"},
                "dependencies": {"type": "object", "additionalProperties": {"type": "object"}}
            }
        },
        "handler.routeResponse": {
            "type": "object",
            "properties": {
                "allow": {"type": "boolean"},
                "redirect_to": {"type": "string"},
                "class": {"type": "string"}
            }
        }
    },
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Sijagur Dashboard Gateway",
	Description:      "Authenticated gateway between the Sijagur dashboard and the Gin API.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
