// Package docs holds the swagger document served at /swagger/*any.
// Regenerate with: swag init -g cmd/api/main.go
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {
            "name": "API Support",
            "email": "support@bizmatters.dev"
        },
        "license": {
            "name": "MIT",
            "url": "https://opensource.org/licenses/MIT"
        },
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/about": {
            "get": {
                "description": "Returns the extension name and version",
                "produces": ["application/json"],
                "tags": ["designer"],
                "summary": "About",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/gateway.AboutResponse"}}
                }
            }
        },
        "/auth/login": {
            "post": {
                "description": "Authenticate an operator and return a JWT token",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "User login",
                "parameters": [
                    {"description": "Login credentials", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/models.LoginRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.LoginResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/models.ErrorResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/models.ErrorResponse"}}
                }
            }
        },
        "/designs": {
            "post": {
                "security": [{"BearerAuth": []}],
                "description": "Runs the full design pipeline against the host editor and returns the result",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["designs"],
                "summary": "Run a design request",
                "parameters": [
                    {"description": "Design request", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/gateway.DesignRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.DesignResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/models.ErrorResponse"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/models.ErrorResponse"}},
                    "502": {"description": "Bad Gateway", "schema": {"$ref": "#/definitions/models.ErrorResponse"}},
                    "503": {"description": "Service Unavailable", "schema": {"$ref": "#/definitions/models.ErrorResponse"}}
                }
            }
        },
        "/designs/last": {
            "get": {
                "security": [{"BearerAuth": []}],
                "description": "Returns the design spec, implementation and response of the most recent successful run",
                "produces": ["application/json"],
                "tags": ["designs"],
                "summary": "Last design",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/models.ErrorResponse"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/models.ErrorResponse"}}
                }
            }
        },
        "/designer/open": {
            "post": {
                "security": [{"BearerAuth": []}],
                "description": "Opens the designer iframe inside the host editor",
                "produces": ["application/json"],
                "tags": ["designer"],
                "summary": "Open the designer window",
                "responses": {
                    "204": {"description": "No Content"},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/models.ErrorResponse"}},
                    "502": {"description": "Bad Gateway", "schema": {"$ref": "#/definitions/models.ErrorResponse"}}
                }
            }
        },
        "/settings/ai": {
            "put": {
                "security": [{"BearerAuth": []}],
                "description": "Stores the reasoning and vision API keys and re-initializes the orchestrator",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["settings"],
                "summary": "Configure AI settings",
                "parameters": [
                    {"description": "API keys", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/gateway.AISettingsRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/gateway.AISettingsResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/models.ErrorResponse"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/models.ErrorResponse"}}
                }
            }
        },
        "/ws/designer": {
            "get": {
                "security": [{"BearerAuth": []}],
                "description": "WebSocket carrying PROCESS_USER_INPUT and APPROVAL_RESPONSE in, DESIGN_PROGRESS, ASK_APPROVAL and DESIGN_RESPONSE out",
                "tags": ["designer"],
                "summary": "Designer session",
                "parameters": [
                    {"type": "string", "description": "JWT when the Authorization header cannot be set", "name": "token", "in": "query"}
                ],
                "responses": {
                    "101": {"description": "Switching Protocols"},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/models.ErrorResponse"}}
                }
            }
        }
    },
    "definitions": {
        "gateway.AISettingsRequest": {
            "type": "object",
            "properties": {
                "reasoningApiKey": {"type": "string"},
                "visionApiKey": {"type": "string"}
            }
        },
        "gateway.AISettingsResponse": {
            "type": "object",
            "properties": {
                "active": {"type": "boolean"},
                "message": {"type": "string"}
            }
        },
        "gateway.AboutResponse": {
            "type": "object",
            "properties": {
                "name": {"type": "string"},
                "version": {"type": "string"}
            }
        },
        "gateway.DesignRequest": {
            "type": "object",
            "required": ["input"],
            "properties": {
                "input": {"type": "string"},
                "context": {"type": "object"}
            }
        },
        "models.DesignResponse": {
            "type": "object",
            "properties": {
                "success": {"type": "boolean"},
                "design": {"type": "object"},
                "explanation": {"type": "object"},
                "visualAnalysis": {"type": "object"},
                "improvements": {"type": "array", "items": {"type": "object"}}
            }
        },
        "models.ErrorResponse": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "details": {"type": "object", "additionalProperties": {"type": "string"}},
                "error": {"type": "string"}
            }
        },
        "models.LoginRequest": {
            "type": "object",
            "required": ["email", "password"],
            "properties": {
                "email": {"type": "string"},
                "password": {"type": "string"}
            }
        },
        "models.LoginResponse": {
            "type": "object",
            "properties": {
                "expires_at": {"type": "string"},
                "token": {"type": "string"},
                "user": {
                    "type": "object",
                    "properties": {
                        "email": {"type": "string"},
                        "id": {"type": "string"},
                        "name": {"type": "string"}
                    }
                }
            }
        }
    },
    "securityDefinitions": {
        "BearerAuth": {
            "description": "Type \"Bearer\" followed by a space and the JWT token.",
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8080",
	BasePath:         "/api",
	Schemes:          []string{},
	Title:            "AI Circuit Designer API",
	Description:      "Turns plain-language circuit requests into schematics in the host editor.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
