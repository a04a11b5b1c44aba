// Package docs registers the OpenAPI description served at /swagger.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/healthz": {
            "get": {"tags": ["health"], "summary": "Liveness probe", "responses": {"200": {"description": "OK"}}}
        },
        "/readyz": {
            "get": {"tags": ["health"], "summary": "Readiness probe", "responses": {"200": {"description": "OK"}, "503": {"description": "Dependency unavailable"}}}
        },
        "/api/v1/forecast": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["forecast"],
                "summary": "Forecast from stored bills",
                "parameters": [{"type": "string", "name": "branch", "in": "query"}],
                "responses": {"200": {"description": "Forecast or insufficient_data status"}}
            },
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["forecast"],
                "summary": "Forecast a submitted series",
                "parameters": [{"name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/dto.ForecastRequest"}}],
                "responses": {"200": {"description": "Forecast"}, "400": {"description": "Invalid series"}, "422": {"description": "Fewer than two points"}}
            }
        },
        "/api/v1/forecast/batch": {
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["forecast"],
                "summary": "Forecast one series per branch",
                "responses": {"200": {"description": "Predictions and per-branch errors"}}
            }
        },
        "/api/v1/forecast/analyze": {
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["forecast"],
                "summary": "Summarise a submitted series",
                "responses": {"200": {"description": "Analysis"}, "422": {"description": "Empty series"}}
            }
        },
        "/api/v1/forecast/branches": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["forecast"],
                "summary": "Forecast every branch from stored bills",
                "responses": {"200": {"description": "Predictions and per-branch errors"}}
            }
        },
        "/api/v1/alerts/check": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["alerts"],
                "summary": "Evaluate this month against the limits and notify",
                "parameters": [{"type": "string", "name": "branch", "in": "query"}],
                "responses": {"200": {"description": "Check result"}, "502": {"description": "Bill store unavailable"}}
            }
        },
        "/api/v1/alerts/settings": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["alerts"], "summary": "Get alert settings", "responses": {"200": {"description": "Settings"}}},
            "put": {
                "security": [{"BearerAuth": []}],
                "tags": ["alerts"],
                "summary": "Update alert settings",
                "parameters": [{"name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/dto.UpdateAlertSettingsRequest"}}],
                "responses": {"200": {"description": "Settings"}, "400": {"description": "Validation failed"}}
            }
        },
        "/api/v1/alerts/feed": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["alerts"],
                "summary": "List dashboard alerts",
                "parameters": [
                    {"type": "string", "name": "branch", "in": "query"},
                    {"type": "string", "name": "type", "in": "query"},
                    {"type": "string", "name": "status", "in": "query"},
                    {"type": "integer", "name": "page", "in": "query"},
                    {"type": "integer", "name": "page_size", "in": "query"}
                ],
                "responses": {"200": {"description": "Page of alerts"}}
            }
        },
        "/api/v1/alerts/feed/{id}/ack": {
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["alerts"],
                "summary": "Acknowledge a dashboard alert",
                "parameters": [{"type": "integer", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "Acknowledged"}, "404": {"description": "Not found"}}
            }
        },
        "/api/v1/alerts/test-email": {
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["alerts"],
                "summary": "Send a test alert email",
                "responses": {"200": {"description": "Sent"}, "502": {"description": "Send failed"}, "503": {"description": "No transport configured"}}
            }
        },
        "/api/v1/alerts/cooldowns": {
            "delete": {
                "security": [{"BearerAuth": []}],
                "tags": ["alerts"],
                "summary": "Reset email cooldowns",
                "parameters": [{"type": "string", "name": "branch", "in": "query"}, {"type": "string", "name": "type", "in": "query"}],
                "responses": {"200": {"description": "Reset"}, "400": {"description": "Invalid type"}}
            }
        },
        "/api/v1/alerts/notifications": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["alerts"],
                "summary": "List notification deliveries",
                "responses": {"200": {"description": "Page of deliveries"}}
            }
        }
    },
    "definitions": {
        "dto.SeriesPointDTO": {
            "type": "object",
            "properties": {
                "month": {"type": "string", "example": "2026-03"},
                "units": {"type": "number", "minimum": 0},
                "amount": {"type": "number", "minimum": 0}
            }
        },
        "dto.ForecastRequest": {
            "type": "object",
            "required": ["data"],
            "properties": {"data": {"type": "array", "items": {"$ref": "#/definitions/dto.SeriesPointDTO"}}}
        },
        "dto.UpdateAlertSettingsRequest": {
            "type": "object",
            "properties": {
                "maxMonthlyAmount": {"type": "number", "minimum": 0},
                "maxMonthlyUnits": {"type": "number", "minimum": 0},
                "alertEmails": {"type": "array", "items": {"type": "string"}},
                "enableEmailAlerts": {"type": "boolean"},
                "enablePushAlerts": {"type": "boolean"}
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
	Title:            "Utility Usage Monitor API",
	Description:      "Forecasts monthly utility usage and alerts when limits are crossed.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
